package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "wellpulse/internal/errors"
)

// DataHandler handles artifact inventory and download requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/reports", h.GetReports)

	// Download route - supports nested paths such as charts/histogram.png
	r.Get("/download/{filepath:.*}", h.DownloadArtifact)

	return r
}

// GetReports handles GET /api/data/reports with RFC 7807 errors
func (h *DataHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "listing report artifacts",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	artifacts, err := h.service.ListArtifacts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list artifacts",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   artifacts,
		"count":  len(artifacts),
	})
}

// DownloadArtifact handles GET /api/data/download/{filepath} with nested path support
func (h *DataHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	raw := chi.URLParam(r, "filepath")

	// URL decode the filepath to handle encoded slashes (%2F -> /)
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to decode artifact path",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filepath", raw),
		)
		h.errorHandler.HandleError(w, r, apierrors.NewAppValidationError(
			fmt.Sprintf("invalid artifact path encoding %q", raw)))
		return
	}

	h.logger.InfoContext(r.Context(), "downloading artifact",
		slog.String("request_id", reqID),
		slog.String("artifact", decoded),
	)

	full, err := h.service.ResolveDownload(r.Context(), decoded)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to resolve artifact",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("artifact", decoded),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(full)))
	http.ServeFile(w, r, full)
}
