package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default(t.TempDir())
	cfg.Logging.Output = "stdout"

	application, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)
	return application
}

func TestNewApplicationWithConfig(t *testing.T) {
	application := newTestApplication(t)

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.Dashboard)
	assert.NotNil(t, application.Data)
	assert.NotNil(t, application.Health)
	assert.NotNil(t, application.OTelProviders)

	// Data directories are created at startup
	assert.DirExists(t, application.Paths.ProcessedDir)
	assert.DirExists(t, application.Paths.ReportsDir)
}

func TestApplication_Routes(t *testing.T) {
	application := newTestApplication(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"health", "GET", "/api/health", http.StatusOK, `"status":"ok"`},
		{"liveness", "GET", "/api/health/live", http.StatusOK, `"alive"`},
		{"version", "GET", "/api/version", http.StatusOK, "WellPulse"},
		{"summary without dataset", "GET", "/api/dashboard/summary", http.StatusNotFound, "no dataset loaded"},
		{"fields without dataset", "GET", "/api/dashboard/fields", http.StatusNotFound, "no dataset loaded"},
		{"reports empty", "GET", "/api/data/reports", http.StatusOK, `"count":0`},
		{"metrics", "GET", "/metrics", http.StatusOK, ""},
		{"unknown route", "GET", "/api/nope", http.StatusNotFound, "Not Found"},
		{"bad method", "DELETE", "/api/health", http.StatusMethodNotAllowed, "not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			application.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestApplication_RootRedirect(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestApplication_ReadinessReflectsDataset(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")

	// Drop a cleaned export, reload through the API, and readiness flips
	rows := []string{
		"date,field_name,oil_production_bbl,wellhead_pressure_psi,choke_size_in,pump_efficiency_pct",
		"2024-03-01,Majnoon,500,1100,0.50,75",
		"2024-03-02,Majnoon,520,1120,0.50,76",
	}
	name := config.CleanedFileName(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, os.WriteFile(
		filepath.Join(application.Paths.ProcessedDir, name),
		[]byte(strings.Join(rows, "\n")+"\n"), 0o644))

	rec = httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/dashboard/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)
}

func TestApplication_RejectsMalformedBody(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/dashboard/reload", strings.NewReader("{not json"))
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestApplication_createServer(t *testing.T) {
	application := newTestApplication(t)

	assert.Equal(t, ":8050", application.Server.Addr)
	assert.Equal(t, 15*time.Second, application.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, application.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, application.Server.IdleTimeout)
}

func TestApplication_Stop(t *testing.T) {
	application := newTestApplication(t)

	err := application.Stop(context.Background())
	assert.NoError(t, err)
}

func TestApplication_isDevelopmentMode(t *testing.T) {
	application := newTestApplication(t)
	assert.False(t, application.isDevelopmentMode())

	application.Config.Logging.Level = "debug"
	assert.True(t, application.isDevelopmentMode())
}
