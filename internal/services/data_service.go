package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wellpulse/internal/config"
	apierrors "wellpulse/internal/errors"
	"wellpulse/internal/files"
)

// DataService provides read access to the generated report artifacts.
type DataService struct {
	paths     *config.Paths
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewDataService creates a data service over the configured layout.
func NewDataService(paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		paths:     paths,
		discovery: files.NewDiscovery(paths.BaseDir),
		logger:    logger.With(slog.String("component", "data_service")),
	}
}

// ArtifactInfo describes one generated artifact. Path is relative to the
// reports directory and doubles as the download identifier.
type ArtifactInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

// ListArtifacts walks the reports tree and returns every artifact, newest
// first. A missing reports directory is an empty inventory, not an error.
func (s *DataService) ListArtifacts(ctx context.Context) ([]ArtifactInfo, error) {
	if _, err := os.Stat(s.paths.ReportsDir); os.IsNotExist(err) {
		return []ArtifactInfo{}, nil
	}

	found, err := s.discovery.ListArtifacts(s.paths.ReportsDir)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to scan report artifacts", err)
	}

	artifacts := make([]ArtifactInfo, 0, len(found))
	for _, f := range found {
		rel, err := filepath.Rel(s.paths.ReportsDir, f.Path)
		if err != nil {
			continue
		}
		artifacts = append(artifacts, ArtifactInfo{
			Name:      f.Name,
			Path:      filepath.ToSlash(rel),
			Category:  artifactCategory(f.Name),
			SizeBytes: f.Size,
			Modified:  f.ModTime,
		})
	}

	s.logger.DebugContext(ctx, "report artifacts listed",
		slog.Int("count", len(artifacts)))
	return artifacts, nil
}

// artifactCategory buckets an artifact by its place in the report set.
func artifactCategory(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "report"
	case strings.HasSuffix(lower, ".xlsx"):
		return "workbook"
	case strings.HasPrefix(lower, "predictions_") && strings.HasSuffix(lower, ".csv"):
		return "predictions"
	case strings.HasSuffix(lower, ".png"):
		return "chart"
	case strings.HasSuffix(lower, ".html"):
		return "page"
	default:
		return "other"
	}
}

// ResolveDownload maps a relative artifact path to an absolute file under
// the reports directory. Paths that escape the reports tree are rejected.
func (s *DataService) ResolveDownload(ctx context.Context, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", apierrors.NewAppValidationError(fmt.Sprintf("invalid artifact path %q", name))
	}

	full := filepath.Join(s.paths.ReportsDir, clean)
	rel, err := filepath.Rel(s.paths.ReportsDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apierrors.NewAppValidationError(fmt.Sprintf("invalid artifact path %q", name))
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return "", apierrors.NewNotFoundError(fmt.Sprintf("artifact %s", name))
	}
	if err != nil {
		return "", apierrors.NewStorageError(fmt.Sprintf("failed to stat artifact %s", name), err)
	}
	if info.IsDir() {
		return "", apierrors.NewAppValidationError(fmt.Sprintf("artifact path %q is a directory", name))
	}

	s.logger.DebugContext(ctx, "artifact download resolved",
		slog.String("name", name),
		slog.String("path", full))
	return full, nil
}
