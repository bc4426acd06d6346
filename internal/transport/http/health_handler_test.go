package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/services"
)

func newHealthHandler(t *testing.T, ready bool) *HealthHandler {
	t.Helper()

	paths := newTestPaths(t)
	logger := testLogger()
	dashboard := services.NewDashboardService(paths, logger)
	if ready {
		require.NoError(t, os.MkdirAll(paths.ReportsDir, 0o755))
		writeCleanedFixture(t, paths)
		_, err := dashboard.Reload(context.Background())
		require.NoError(t, err)
	}
	svc := services.NewHealthService("1.2.0", "2024-03-15T00:00:00Z", paths, dashboard, logger)
	return NewHealthHandler(svc, logger)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newHealthHandler(t, false)

	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.0", status.Version)
}

func TestLivenessEndpoint(t *testing.T) {
	handler := newHealthHandler(t, false)

	rec := httptest.NewRecorder()
	handler.LivenessCheck(rec, httptest.NewRequest("GET", "/api/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestReadinessEndpointNotReady(t *testing.T) {
	handler := newHealthHandler(t, false)

	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, httptest.NewRequest("GET", "/api/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["dataset"].Status)
	assert.Contains(t, status.Services["dataset"].Message, "run the pipeline")
}

func TestReadinessEndpointReady(t *testing.T) {
	handler := newHealthHandler(t, true)

	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, httptest.NewRequest("GET", "/api/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Contains(t, status.Services["dataset"].Message, "6 rows")
}

func TestVersionEndpoint(t *testing.T) {
	handler := newHealthHandler(t, false)

	rec := httptest.NewRecorder()
	handler.Version(rec, httptest.NewRequest("GET", "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "WellPulse", info["app"])
	assert.Equal(t, "1.2.0", info["version"])
	assert.Equal(t, "2024-03-15T00:00:00Z", info["build_time"])
}
