package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"wellpulse/internal/config"
)

// HealthService reports process and dependency health for the dashboard.
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	dashboard *DashboardService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth is the health of one dependency.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. The dashboard dependency is
// optional; without it the dataset check is skipped.
func NewHealthService(version, buildTime string, paths *config.Paths, dashboard *DashboardService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		dashboard: dashboard,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns the overall health status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// LivenessCheck reports that the process is alive.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports whether the dashboard can serve data. The process
// is ready once the directory layout is reachable and a dataset snapshot
// has been loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"storage": hs.checkStorage(),
			"dataset": hs.checkDataset(),
		},
	}

	for _, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// Version returns build and runtime information.
func (hs *HealthService) Version(ctx context.Context) map[string]interface{} {
	info := map[string]interface{}{
		"app":            config.AppName,
		"version":        hs.version,
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"start_time":     hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		info["build_time"] = hs.buildTime
	}
	return info
}

// checkStorage verifies the data directories exist.
func (hs *HealthService) checkStorage() ServiceHealth {
	for _, dir := range []string{hs.paths.ProcessedDir, hs.paths.ReportsDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("directory not found: %s", dir),
			}
		}
	}
	return ServiceHealth{Status: "ready"}
}

// checkDataset verifies a dataset snapshot is loaded.
func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.dashboard == nil {
		return ServiceHealth{Status: "ready", Message: "dataset check disabled"}
	}
	snap, ok := hs.dashboard.Snapshot()
	if !ok {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "no cleaned dataset loaded; run the pipeline first",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d rows from %s", snap.Table.NRows(), snap.SourceFile),
	}
}
