package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/services"
)

// MockDataService is a mock implementation of DataServiceInterface
type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) ListArtifacts(ctx context.Context) ([]services.ArtifactInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ArtifactInfo), args.Error(1)
}

func (m *MockDataService) ResolveDownload(ctx context.Context, name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func newDataRouter(t *testing.T) (chi.Router, *config.Paths) {
	t.Helper()

	paths := newTestPaths(t)
	require.NoError(t, os.MkdirAll(filepath.Join(paths.ReportsDir, "charts"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(paths.ReportsDir, "production_report_20240315.pdf"),
		[]byte("%PDF-1.4 report body"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(paths.ReportsDir, "charts", "histogram_oil_production_bbl_20240315.png"),
		[]byte("png bytes"), 0o644))

	logger := testLogger()
	svc := services.NewDataService(paths, logger)
	handler := NewDataHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/data", handler.Routes())
	return r, paths
}

func TestDataReportsEndpoint(t *testing.T) {
	router, _ := newDataRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/data/reports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, 2, env.Count)

	var artifacts []services.ArtifactInfo
	require.NoError(t, json.Unmarshal(env.Data, &artifacts))
	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		names = append(names, a.Path)
	}
	assert.Contains(t, names, "production_report_20240315.pdf")
	assert.Contains(t, names, "charts/histogram_oil_production_bbl_20240315.png")
}

func TestDataReportsEndpointError(t *testing.T) {
	mockService := new(MockDataService)
	mockService.On("ListArtifacts").Return(nil, apierrors.NewStorageError("failed to walk reports", os.ErrPermission))

	logger := testLogger()
	handler := NewDataHandler(mockService, logger, apierrors.NewErrorHandler(logger, false))

	rec := httptest.NewRecorder()
	handler.GetReports(rec, httptest.NewRequest("GET", "/api/data/reports", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
	mockService.AssertExpectations(t)
}

func TestDataDownloadArtifact(t *testing.T) {
	router, _ := newDataRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/data/download/production_report_20240315.pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 report body", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "production_report_20240315.pdf")
}

func TestDataDownloadNestedArtifact(t *testing.T) {
	router, _ := newDataRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/data/download/charts/histogram_oil_production_bbl_20240315.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png bytes", rec.Body.String())
}

func TestDataDownloadMissingArtifact(t *testing.T) {
	router, _ := newDataRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/data/download/nope.pdf", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resource Not Found")
}

func TestDataDownloadRejectsTraversal(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, os.MkdirAll(paths.ReportsDir, 0o755))

	logger := testLogger()
	svc := services.NewDataService(paths, logger)
	handler := NewDataHandler(svc, logger, apierrors.NewErrorHandler(logger, false))

	req := httptest.NewRequest("GET", "/api/data/download/artifact", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("filepath", "../secrets.txt")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.DownloadArtifact(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid artifact path")
}
