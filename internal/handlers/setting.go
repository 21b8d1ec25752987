package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
)

// SettingHandler exposes the site settings key/value store. Reads are
// public so the marketing site can fetch them; writes are admin only.
type SettingHandler struct {
	settingService *services.SettingService
}

func NewSettingHandler(settingService *services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// SettingRouter registers settings routes on the given router.
func SettingRouter(r chi.Router, settingService *services.SettingService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSettingHandler(settingService)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", handler.List)
		r.With(authMiddleware, adminOnly).Put("/", handler.Set)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", handler.Get)
			r.With(authMiddleware, adminOnly).Delete("/", handler.Delete)
		})
	})
}

func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settingService.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *SettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	setting, err := h.settingService.Set(r.Context(), types.Setting{
		Key:   req.Key,
		Value: req.Value,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidSetting) {
			writeError(w, http.StatusBadRequest, "invalid setting")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *SettingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.settingService.Delete(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type SettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}
