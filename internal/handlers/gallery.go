package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/pkg/logger"
	"github.com/savoria-catering/apiserver/types"
)

const (
	// maxImageSize bounds a single gallery upload.
	maxImageSize        = 16 << 20
	maxMultipartMemory  = 32 << 20
	formFieldImageTitle = "title"
	formFieldImageFile  = "image"
)

// GalleryHandler serves the public image gallery. Reads are public; the
// image bytes stream straight from object storage.
type GalleryHandler struct {
	galleryService *services.GalleryService
}

func NewGalleryHandler(galleryService *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// GalleryRouter registers gallery routes on the given router.
func GalleryRouter(r chi.Router, galleryService *services.GalleryService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewGalleryHandler(galleryService)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Route("/gallery", func(r chi.Router) {
		r.Get("/", handler.List)
		r.With(authMiddleware, adminOnly).Post("/", handler.Upload)
		r.Route("/{imageID}", func(r chi.Router) {
			r.Get("/", handler.Get)
			r.Get("/image", handler.ServeFile)
			r.With(authMiddleware, adminOnly).Delete("/", handler.Delete)
		})
	})
}

func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	images, total, err := h.galleryService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list gallery images")
		return
	}

	writeJSON(w, http.StatusOK, GalleryListResponse{
		Images: images,
		Page:   page,
		Limit:  limit,
		Total:  total,
	})
}

func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "imageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.galleryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch image")
		return
	}
	writeJSON(w, http.StatusOK, image)
}

// ServeFile streams the stored object to the client.
func (h *GalleryHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "imageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, body, err := h.galleryService.Open(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "image not found")
		case errors.Is(err, services.ErrStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "gallery storage unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to open image")
		}
		return
	}
	defer body.Close()

	if image.ContentType != "" {
		w.Header().Set("Content-Type", image.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.Get().Error().Err(err).Int("image_id", id).Msg("gallery stream interrupted")
	}
}

func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue(formFieldImageTitle))

	file, header, err := r.FormFile(formFieldImageFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	image, err := h.galleryService.Upload(r.Context(), title, header.Filename, contentType, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidImage):
			writeError(w, http.StatusBadRequest, "invalid image")
		case errors.Is(err, services.ErrStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "gallery storage unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}
	writeJSON(w, http.StatusCreated, image)
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "imageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.galleryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GalleryListResponse is the paginated gallery payload.
type GalleryListResponse struct {
	Images []types.GalleryImage `json:"images"`
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
	Total  int                  `json:"total"`
}
