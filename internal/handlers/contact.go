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

// ContactHandler handles the public contact form and the staff inbox.
type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRouter registers contact routes. Submitting is public; reading the
// inbox is staff only.
func ContactRouter(r chi.Router, contactService *services.ContactService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewContactHandler(contactService)
	staffOnly := RequireRole(types.RoleAdmin)

	r.Route("/contact", func(r chi.Router) {
		r.Post("/", handler.Submit)
		r.With(authMiddleware, staffOnly).Get("/", handler.List)
		r.With(authMiddleware, staffOnly).Put("/{messageID}/read", handler.MarkRead)
	})
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.contactService.Submit(r.Context(), types.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			writeError(w, http.StatusBadRequest, "invalid message")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, total, err := h.contactService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, ContactListResponse{
		Messages: messages,
		Page:     page,
		Limit:    limit,
		Total:    total,
	})
}

func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "messageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contactService.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" validate:"required"`
}

// ContactListResponse is the paginated inbox payload.
type ContactListResponse struct {
	Messages []types.ContactMessage `json:"messages"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
	Total    int                    `json:"total"`
}
