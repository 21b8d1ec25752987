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

// ReservationHandler provides HTTP handlers for tasting reservations.
type ReservationHandler struct {
	reservationService *services.ReservationService
}

func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// ReservationRouter registers reservation routes. All routes require
// authentication.
func ReservationRouter(r chi.Router, reservationService *services.ReservationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewReservationHandler(reservationService)

	r.Route("/reservations", func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(RequireRole(types.RoleClient)).Post("/", handler.Request)
		r.Get("/", handler.List)
		r.Get("/{reservationID}", handler.Get)
		r.With(RequireRole(types.RoleAdmin)).Put("/{reservationID}/status", handler.UpdateStatus)
	})
}

func (h *ReservationHandler) Request(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.reservationService.Request(r.Context(), principal.ID, types.Reservation{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		RequestedDate: req.RequestedDate,
		PartySize:     req.PartySize,
		Message:       req.Message,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidReservation) {
			writeError(w, http.StatusBadRequest, "invalid reservation")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create reservation")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
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

	userID := principal.ID
	if principal.Role == types.RoleAdmin || principal.Role == types.RoleEmployee {
		userID = 0
	}

	reservations, total, err := h.reservationService.List(r.Context(), userID, status, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, ReservationListResponse{
		Reservations: reservations,
		Page:         page,
		Limit:        limit,
		Total:        total,
	})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseIDParam(r, "reservationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch reservation")
		return
	}

	if principal.Role == types.RoleClient && reservation.UserID != principal.ID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "reservationID")
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

	reservation, err := h.reservationService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "reservation not found")
		case errors.Is(err, services.ErrUnknownStatus):
			writeError(w, http.StatusBadRequest, "unknown status")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update reservation status")
		}
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type ReservationRequest struct {
	Name          string    `json:"name" validate:"required"`
	Email         string    `json:"email" validate:"required,email"`
	Phone         string    `json:"phone"`
	RequestedDate time.Time `json:"requested_date" validate:"required"`
	PartySize     int       `json:"party_size" validate:"gt=0"`
	Message       string    `json:"message"`
}

// ReservationListResponse is the paginated reservation list payload.
type ReservationListResponse struct {
	Reservations []types.Reservation `json:"reservations"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	Total        int                 `json:"total"`
}
