package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
	apierrors "wellpulse/internal/errors"
)

// seedArtifacts lays out a generated report set with staggered
// modification times, newest first in the returned order.
func seedArtifacts(t *testing.T, paths *config.Paths) []string {
	t.Helper()

	names := []string{
		"production_report_20240315.pdf",
		"model_report_20240315.xlsx",
		"predictions_20240315.csv",
		"charts/histogram_oil_production_bbl_20240315.png",
		"charts/production_charts_20240315.html",
		"notes.txt",
	}

	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		full := filepath.Join(paths.ReportsDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(name), 0o644))
		stamp := base.Add(-time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(full, stamp, stamp))
	}
	return names
}

func TestListArtifactsNewestFirst(t *testing.T) {
	paths := newTestPaths(t)
	names := seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	artifacts, err := svc.ListArtifacts(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, len(names))

	for i, name := range names {
		assert.Equal(t, name, artifacts[i].Path)
		assert.Equal(t, filepath.Base(name), artifacts[i].Name)
		assert.Positive(t, artifacts[i].SizeBytes)
	}
}

func TestListArtifactsCategories(t *testing.T) {
	paths := newTestPaths(t)
	seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	artifacts, err := svc.ListArtifacts(context.Background())
	require.NoError(t, err)

	categories := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		categories[a.Name] = a.Category
	}
	assert.Equal(t, "report", categories["production_report_20240315.pdf"])
	assert.Equal(t, "workbook", categories["model_report_20240315.xlsx"])
	assert.Equal(t, "predictions", categories["predictions_20240315.csv"])
	assert.Equal(t, "chart", categories["histogram_oil_production_bbl_20240315.png"])
	assert.Equal(t, "page", categories["production_charts_20240315.html"])
	assert.Equal(t, "other", categories["notes.txt"])
}

func TestListArtifactsMissingDirectory(t *testing.T) {
	svc := NewDataService(newTestPaths(t), testLogger())

	artifacts, err := svc.ListArtifacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestResolveDownload(t *testing.T) {
	paths := newTestPaths(t)
	seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	full, err := svc.ResolveDownload(context.Background(), "production_report_20240315.pdf")
	require.NoError(t, err)
	assert.Equal(t, paths.ReportFile("production_report_20240315.pdf"), full)

	nested, err := svc.ResolveDownload(context.Background(), "charts/histogram_oil_production_bbl_20240315.png")
	require.NoError(t, err)
	assert.FileExists(t, nested)
}

func TestResolveDownloadRejectsTraversal(t *testing.T) {
	paths := newTestPaths(t)
	seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	for _, name := range []string{
		"../secrets.txt",
		"charts/../../secrets.txt",
		"/etc/passwd",
		".",
		"",
	} {
		_, err := svc.ResolveDownload(context.Background(), name)
		require.Error(t, err, "path %q", name)
		assert.Contains(t, err.Error(), "invalid artifact path", "path %q", name)
	}
}

func TestResolveDownloadMissingArtifact(t *testing.T) {
	paths := newTestPaths(t)
	seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	_, err := svc.ResolveDownload(context.Background(), "production_report_19990101.pdf")
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFoundError(err))
}

func TestResolveDownloadRejectsDirectory(t *testing.T) {
	paths := newTestPaths(t)
	seedArtifacts(t, paths)
	svc := NewDataService(paths, testLogger())

	_, err := svc.ResolveDownload(context.Background(), "charts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
