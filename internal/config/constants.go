package config

import "time"

// Application constants for the WellPulse system.
const (
	// Application Info
	AppName    = "WellPulse"
	AppVersion = "1.2.0"

	// Directory layout (relative to the configured base directory)
	DefaultDataDir      = "data"
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultReportsDir   = "reports"
	DefaultChartsDir    = "reports/charts"
	DefaultLogsDir      = "logs"
	DefaultFontsDir     = "fonts"

	// File naming
	DateStampLayout    = "20060102"
	DateLayout         = "2006-01-02"
	RawFilePrefix      = "oil_field_production_data"
	CleanedFilePrefix  = "cleaned_oil_field_production_data_"
	CleanedFilePattern = CleanedFilePrefix + "*.csv"
	PDFReportPrefix    = "production_report_"
	ModelReportPrefix  = "model_report_"
	PredictionsPrefix  = "predictions_"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Timeouts
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultPipelineTimeout = 30 * time.Minute
	DefaultStepTimeout     = 10 * time.Minute

	// Modeling defaults
	DefaultForestTrees   = 100
	DefaultTestRatio     = 0.2
	DefaultRandomSeed    = 42
	DefaultMinTrainRows  = 10
	DefaultMinSplit      = 2

	// Cleaning defaults
	DefaultOutlierStrategy = "clip"
	DefaultZScoreLimit     = 3.0
	// Missing share below which mean imputation is preferred over median.
	DefaultMeanImputeShare = 0.05
)

// CleanedFileName returns the dated name of a cleaned dataset export.
func CleanedFileName(t time.Time) string {
	return CleanedFilePrefix + t.Format(DateStampLayout) + ".csv"
}

// DatedName builds "<prefix><YYYYMMDD><ext>" artifact names.
func DatedName(prefix string, t time.Time, ext string) string {
	return prefix + t.Format(DateStampLayout) + ext
}
