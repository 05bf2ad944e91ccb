package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/validation"
	"slide-generator/internal/models"
	"slide-generator/internal/presentation"
)

const pptxMimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// PresentationHandler serves /api/v1/presentations.
type PresentationHandler struct {
	svc          *presentation.Service
	logger       logger.Logger
	maxBodyBytes int64
	now          func() time.Time
}

func NewPresentationHandler(svc *presentation.Service, log logger.Logger, maxBodyBytes int64) *PresentationHandler {
	return &PresentationHandler{
		svc:          svc,
		logger:       log.With(map[string]interface{}{"component": "api"}),
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

// Health handles GET /health
func (h *PresentationHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Count(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, models.HealthResponse{
		Status:             "healthy",
		Timestamp:          h.now().UTC().Format(time.RFC3339),
		PresentationsCount: count,
	})
}

// Create handles POST /
func (h *PresentationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePresentationRequest
	if err := h.decode(w, r, validation.SchemaCreatePresentation, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	RespondJSON(w, http.StatusCreated, models.CreatePresentationResponse{
		ID:     d.ID,
		Topic:  d.Topic,
		Status: "created",
	})
}

// Get handles GET /{id}
func (h *PresentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// Download handles GET /{id}/download
func (h *PresentationHandler) Download(w http.ResponseWriter, r *http.Request) {
	path, d, err := h.svc.Render(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filename := d.Topic + ".pptx"
	w.Header().Set("Content-Type", pptxMimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// Configure handles POST /{id}/configure
func (h *PresentationHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var update models.DeckUpdate
	if err := h.decode(w, r, validation.SchemaConfigurePresentation, &update); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.Configure(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// Preview handles GET /{id}/slides/{n}/preview
func (h *PresentationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		h.fail(w, r, apperrors.NewInvalidInputError("Slide number must be an integer", chi.URLParam(r, "n")))
		return
	}

	preview, err := h.svc.Preview(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, preview)
}

// decode checks the content type, validates the raw body against schema and
// unmarshals it into dst.
func (h *PresentationHandler) decode(w http.ResponseWriter, r *http.Request, schema string, dst interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return apperrors.NewInvalidInputError("Request must be JSON", r.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewInvalidInputError("Request body too large", strconv.FormatInt(tooLarge.Limit, 10))
		}
		return apperrors.NewInvalidInputError("Request body could not be read", err.Error())
	}
	if !json.Valid(body) {
		return apperrors.NewInvalidInputError("Request must be JSON", "malformed JSON body")
	}

	result, err := validation.ValidateJSON(schema, body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return apperrors.NewValidationFailedError(result.FirstMessage()).
			WithMetadata("fields", result.Fields())
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	return nil
}

func (h *PresentationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Classify(err)
	fields := map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"requestID": middleware.GetReqID(r.Context()),
		"errorCode": string(stdErr.Code),
	}
	log := h.logger.WithError(err)
	if stdErr.HTTPStatus() >= http.StatusInternalServerError {
		log.Error("Request failed", fields)
	} else {
		log.Warn("Request rejected", fields)
	}
	RespondError(w, stdErr)
}
