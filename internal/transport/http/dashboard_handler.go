package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/report"
	"wellpulse/internal/services"
)

// DashboardHandler serves production analytics over the latest cleaned dataset
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/insights", h.GetInsights)
	r.Get("/production", h.GetProduction)
	r.Get("/fields", h.GetFields)
	r.Post("/reload", h.Reload)

	return r
}

// filterFromQuery reads the shared field/from/to query parameters
func filterFromQuery(r *http.Request) services.Filter {
	q := r.URL.Query()
	return services.Filter{
		Field: q.Get("field"),
		From:  q.Get("from"),
		To:    q.Get("to"),
	}
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	f := filterFromQuery(r)

	h.logger.InfoContext(r.Context(), "computing dashboard summary",
		slog.String("request_id", reqID),
		slog.String("field", f.Field),
		slog.String("from", f.From),
		slog.String("to", f.To),
	)

	summary, err := h.service.Summary(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute summary",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetInsights handles GET /api/dashboard/insights
func (h *DashboardHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	f := filterFromQuery(r)

	h.logger.InfoContext(r.Context(), "computing dashboard insights",
		slog.String("request_id", reqID),
		slog.String("field", f.Field),
		slog.String("from", f.From),
		slog.String("to", f.To),
	)

	insights, err := h.service.Insights(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute insights",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   insights,
	})
}

// GetProduction handles GET /api/dashboard/production
func (h *DashboardHandler) GetProduction(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	f := filterFromQuery(r)

	h.logger.InfoContext(r.Context(), "building production series",
		slog.String("request_id", reqID),
		slog.String("field", f.Field),
		slog.String("from", f.From),
		slog.String("to", f.To),
	)

	points, err := h.service.Production(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build production series",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// GetFields handles GET /api/dashboard/fields
func (h *DashboardHandler) GetFields(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "listing field names",
		slog.String("request_id", reqID),
	)

	fields, err := h.service.FieldNames(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list field names",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   fields,
		"count":  len(fields),
	})
}

// Reload handles POST /api/dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "reloading dashboard dataset",
		slog.String("request_id", reqID),
	)

	snap, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reload dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"source_file": snap.SourceFile,
			"rows":        snap.Table.NRows(),
			"loaded_at":   snap.LoadedAt,
		},
	})
}

// Page handles GET /dashboard and renders the chart page for the filtered slice
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	f := filterFromQuery(r)

	h.logger.InfoContext(r.Context(), "rendering dashboard page",
		slog.String("request_id", reqID),
		slog.String("field", f.Field),
		slog.String("from", f.From),
		slog.String("to", f.To),
	)

	table, err := h.service.Filtered(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Render into a buffer so failures can still produce a problem response
	var page bytes.Buffer
	if err := report.ChartsPage(&page, table, nil); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render chart page",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page.Bytes()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write chart page",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
	}
}
