package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	svc := NewHealthService("1.2.0", "", newTestPaths(t), nil, testLogger())

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.0", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Minute)
}

func TestLivenessCheck(t *testing.T) {
	svc := NewHealthService("1.2.0", "", newTestPaths(t), nil, testLogger())

	status := svc.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "uptime_seconds")
}

func TestReadinessWithoutDataset(t *testing.T) {
	paths := newTestPaths(t)
	dashboard := NewDashboardService(paths, testLogger())
	svc := NewHealthService("1.2.0", "", paths, dashboard, testLogger())

	status := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["storage"].Status)
	assert.Equal(t, "not_ready", status.Services["dataset"].Status)
	assert.Contains(t, status.Services["dataset"].Message, "run the pipeline")
}

func TestReadinessAfterReload(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, os.MkdirAll(paths.ReportsDir, 0o755))
	writeCleanedFixture(t, paths, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	dashboard := NewDashboardService(paths, testLogger())
	_, err := dashboard.Reload(context.Background())
	require.NoError(t, err)

	svc := NewHealthService("1.2.0", "", paths, dashboard, testLogger())
	status := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "ready", status.Services["storage"].Status)
	assert.Contains(t, status.Services["dataset"].Message, "6 rows")
}

func TestVersionInfo(t *testing.T) {
	svc := NewHealthService("1.2.0", "2026-08-01T00:00:00Z", newTestPaths(t), nil, testLogger())

	info := svc.Version(context.Background())
	assert.Equal(t, "1.2.0", info["version"])
	assert.Equal(t, "2026-08-01T00:00:00Z", info["build_time"])
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "app")
}
