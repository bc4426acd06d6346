package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all resolved application paths.
// This is the single source of truth for file locations: every component
// that writes or discovers artifacts goes through it.
type Paths struct {
	BaseDir      string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	ChartsDir    string
	LogsDir      string
	FontsDir     string
}

// NewPaths resolves the directory layout from a DataConfig. Relative
// directories are joined onto BaseDir; absolute ones are kept as given.
func NewPaths(dc DataConfig) (*Paths, error) {
	base := dc.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(abs, dir)
	}

	return &Paths{
		BaseDir:      abs,
		RawDir:       resolve(dc.RawDir, DefaultRawDir),
		ProcessedDir: resolve(dc.ProcessedDir, DefaultProcessedDir),
		ReportsDir:   resolve(dc.ReportsDir, DefaultReportsDir),
		ChartsDir:    resolve(dc.ChartsDir, DefaultChartsDir),
		LogsDir:      resolve(dc.LogsDir, DefaultLogsDir),
		FontsDir:     resolve(dc.FontsDir, DefaultFontsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs all resolved paths at startup for debugging.
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("raw_dir", p.RawDir),
		slog.String("processed_dir", p.ProcessedDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("logs_dir", p.LogsDir))
}

// CleanedFile returns the absolute path of the cleaned export for the
// given timestamp.
func (p *Paths) CleanedFile(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// ReportFile returns the absolute path of a report artifact.
func (p *Paths) ReportFile(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// ChartFile returns the absolute path of a chart artifact.
func (p *Paths) ChartFile(name string) string {
	return filepath.Join(p.ChartsDir, name)
}

// FontFile resolves a font file name against the fonts directory.
// Absolute paths pass through unchanged.
func (p *Paths) FontFile(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.FontsDir, name)
}
