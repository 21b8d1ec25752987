package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
)

// MenuHandler provides HTTP handlers for menu categories and items.
// Reads are public; writes sit behind the admin gate.
type MenuHandler struct {
	menuService *services.MenuService
}

func NewMenuHandler(menuService *services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// MenuRouter registers category and item routes on the given router.
func MenuRouter(r chi.Router, menuService *services.MenuService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewMenuHandler(menuService)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", handler.ListCategories)
		r.With(authMiddleware, adminOnly).Post("/", handler.CreateCategory)
		r.Route("/{categoryID}", func(r chi.Router) {
			r.With(authMiddleware, adminOnly).Put("/", handler.UpdateCategory)
			r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteCategory)
		})
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", handler.ListItems)
		r.With(authMiddleware, adminOnly).Post("/", handler.CreateItem)
		r.Route("/{itemID}", func(r chi.Router) {
			r.Get("/", handler.GetItem)
			r.With(authMiddleware, adminOnly).Put("/", handler.UpdateItem)
			r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteItem)
		})
	})
}

func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.menuService.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.menuService.CreateCategory(r.Context(), types.MenuCategory{
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCategory) {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CategoryUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.menuService.UpdateCategory(r.Context(), types.MenuCategory{
		ID:        id,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, services.ErrInvalidCategory):
			writeError(w, http.StatusBadRequest, "invalid category")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.menuService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categoryID := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		categoryID, err = strconv.Atoi(raw)
		if err != nil || categoryID < 1 {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
	}

	items, total, err := h.menuService.ListItems(r.Context(), categoryID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list menu items")
		return
	}

	writeJSON(w, http.StatusOK, MenuListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.menuService.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.menuService.CreateItem(r.Context(), req.toItem(0))
	if err != nil {
		if errors.Is(err, services.ErrInvalidMenuItem) {
			writeError(w, http.StatusBadRequest, "invalid menu item")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req MenuItemUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.menuService.UpdateItem(r.Context(), req.toItem(id))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "menu item not found")
		case errors.Is(err, services.ErrInvalidMenuItem):
			writeError(w, http.StatusBadRequest, "invalid menu item")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update menu item")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.menuService.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type CategoryUpsertRequest struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `json:"active"`
}

type MenuItemUpsertRequest struct {
	CategoryID  int      `json:"category_id" validate:"required,gt=0"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	ImageURL    string   `json:"image_url"`
	Tags        []string `json:"tags"`
	Available   bool     `json:"available"`
}

func (req MenuItemUpsertRequest) toItem(id int) types.MenuItem {
	return types.MenuItem{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Available:   req.Available,
	}
}

// MenuListResponse is the paginated menu list payload.
type MenuListResponse struct {
	Items []types.MenuItem `json:"items"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}
