package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
)

// OrderHandler provides HTTP handlers for catering orders. Clients place and
// view their own orders; staff see everything and drive status changes.
type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderRouter registers order routes. All routes require authentication.
func OrderRouter(r chi.Router, orderService *services.OrderService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewOrderHandler(orderService)

	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(RequireRole(types.RoleClient)).Post("/", handler.Place)
		r.Get("/", handler.List)
		r.Get("/{orderID}", handler.Get)
		r.With(RequireRole(types.RoleAdmin)).Put("/{orderID}/status", handler.UpdateStatus)
	})
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := services.PlaceOrderParams{
		EventDate: req.EventDate,
		Address:   req.Address,
		Headcount: req.Headcount,
		Notes:     req.Notes,
	}
	for _, line := range req.Items {
		params.Lines = append(params.Lines, services.OrderLine{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}

	order, err := h.orderService.Place(r.Context(), principal.ID, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOrder):
			writeError(w, http.StatusBadRequest, "invalid order")
		case errors.Is(err, services.ErrUnknownMenuItem):
			writeError(w, http.StatusBadRequest, "unknown or unavailable menu item")
		default:
			writeError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := r.URL.Query().Get("status")

	// Clients only ever see their own orders.
	userID := principal.ID
	if principal.Role == types.RoleAdmin || principal.Role == types.RoleEmployee {
		userID = 0
	}

	orders, total, err := h.orderService.List(r.Context(), userID, status, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	writeJSON(w, http.StatusOK, OrderListResponse{
		Orders: orders,
		Page:   page,
		Limit:  limit,
		Total:  total,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	if principal.Role == types.RoleClient && order.UserID != principal.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrUnknownStatus):
			writeError(w, http.StatusBadRequest, "unknown status")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type PlaceOrderRequest struct {
	EventDate time.Time          `json:"event_date" validate:"required"`
	Address   string             `json:"address" validate:"required"`
	Headcount int                `json:"headcount" validate:"gt=0"`
	Notes     string             `json:"notes"`
	Items     []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderLineRequest struct {
	MenuItemID int `json:"menu_item_id" validate:"required,gt=0"`
	Quantity   int `json:"quantity" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderListResponse is the paginated order list payload.
type OrderListResponse struct {
	Orders []types.Order `json:"orders"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
	Total  int           `json:"total"`
}
