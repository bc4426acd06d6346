package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Cleaning CleaningConfig `yaml:"cleaning" envconfig:"CLEANING"`
	Model    ModelConfig    `yaml:"model" envconfig:"MODEL"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8050"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8050"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/wellpulse.log"`
}

// DataConfig contains dataset locations and the input file override.
// Relative directories are resolved against BaseDir.
type DataConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" default:"data/raw"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" default:"data/processed"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	ChartsDir    string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"reports/charts"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	FontsDir     string `yaml:"fonts_dir" envconfig:"FONTS_DIR" default:"fonts"`
	InputFile    string `yaml:"input_file" envconfig:"INPUT_FILE"`
}

// CleaningConfig selects the deterministic cleaning strategies.
type CleaningConfig struct {
	// OutlierStrategy is "clip" (IQR bounds) or "zscore" (row removal).
	OutlierStrategy string  `yaml:"outlier_strategy" envconfig:"OUTLIER_STRATEGY" default:"clip"`
	ZScoreLimit     float64 `yaml:"zscore_limit" envconfig:"ZSCORE_LIMIT" default:"3.0"`
	// MeanImputeShare is the missing-value share below which the column
	// mean is used for imputation; the median is used at or above it.
	MeanImputeShare float64 `yaml:"mean_impute_share" envconfig:"MEAN_IMPUTE_SHARE" default:"0.05"`
}

// ModelConfig configures the forest trainer.
type ModelConfig struct {
	Trees           int     `yaml:"trees" envconfig:"TREES" default:"100"`
	TestRatio       float64 `yaml:"test_ratio" envconfig:"TEST_RATIO" default:"0.2"`
	Seed            int64   `yaml:"seed" envconfig:"SEED" default:"42"`
	MaxDepth        int     `yaml:"max_depth" envconfig:"MAX_DEPTH" default:"0"`
	MinSamplesSplit int     `yaml:"min_samples_split" envconfig:"MIN_SAMPLES_SPLIT" default:"2"`
	// MaxFeatures is "", "all", "sqrt", or a fraction in (0,1].
	MaxFeatures string `yaml:"max_features" envconfig:"MAX_FEATURES"`
	MinRows     int    `yaml:"min_rows" envconfig:"MIN_ROWS" default:"10"`
}

// ReportConfig configures report generation.
type ReportConfig struct {
	// ArabicFontFile is a Unicode TTF with Arabic glyph coverage,
	// resolved against FontsDir when relative. Empty disables Arabic
	// output in the PDF.
	ArabicFontFile   string `yaml:"arabic_font_file" envconfig:"ARABIC_FONT_FILE"`
	IncludeHTML      bool   `yaml:"include_html" envconfig:"INCLUDE_HTML" default:"true"`
	PredictionSample int    `yaml:"prediction_sample" envconfig:"PREDICTION_SAMPLE" default:"200"`
}

// Load loads configuration from environment variables and, when present,
// the wellpulse.yaml file next to the working directory. Environment
// variables take precedence over file values.
func Load() (*Config, error) {
	return LoadFromFile(getConfigFilePath())
}

// LoadFromFile loads configuration from the given YAML file merged with
// WELLPULSE_* environment overrides. A missing file is not an error; the
// defaults plus environment are used.
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("WELLPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if cfg.Data.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg.Data.BaseDir = wd
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Data.BaseDir == "" {
		envConfig.Data.BaseDir = fileConfig.Data.BaseDir
	}
	if envConfig.Data.InputFile == "" {
		envConfig.Data.InputFile = fileConfig.Data.InputFile
	}
	if envConfig.Cleaning.OutlierStrategy == "" {
		envConfig.Cleaning.OutlierStrategy = fileConfig.Cleaning.OutlierStrategy
	}
	if envConfig.Model.Trees == 0 {
		envConfig.Model.Trees = fileConfig.Model.Trees
	}
	if envConfig.Model.Seed == 0 {
		envConfig.Model.Seed = fileConfig.Model.Seed
	}
	if envConfig.Report.ArabicFontFile == "" {
		envConfig.Report.ArabicFontFile = fileConfig.Report.ArabicFontFile
	}
	return envConfig
}

// validate checks the configuration for invalid values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch strings.ToLower(c.Cleaning.OutlierStrategy) {
	case "clip", "zscore":
	default:
		return fmt.Errorf("invalid outlier strategy: %q (want clip or zscore)", c.Cleaning.OutlierStrategy)
	}
	if c.Cleaning.ZScoreLimit <= 0 {
		return fmt.Errorf("zscore limit must be positive, got %g", c.Cleaning.ZScoreLimit)
	}
	if c.Cleaning.MeanImputeShare < 0 || c.Cleaning.MeanImputeShare > 1 {
		return fmt.Errorf("mean impute share must be within [0,1], got %g", c.Cleaning.MeanImputeShare)
	}

	if c.Model.Trees < 1 {
		return fmt.Errorf("model needs at least one tree, got %d", c.Model.Trees)
	}
	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		return fmt.Errorf("test ratio must be within (0,1), got %g", c.Model.TestRatio)
	}
	if c.Model.MinSamplesSplit < 2 {
		return fmt.Errorf("min samples split must be at least 2, got %d", c.Model.MinSamplesSplit)
	}
	if c.Model.MinRows < 2 {
		return fmt.Errorf("min rows must be at least 2, got %d", c.Model.MinRows)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// BuildPaths resolves the directory layout from the configuration.
func (c *Config) BuildPaths() (*Paths, error) {
	return NewPaths(c.Data)
}

// getConfigFilePath returns the default configuration file location.
func getConfigFilePath() string {
	if path := os.Getenv("WELLPULSE_CONFIG"); path != "" {
		return path
	}
	return "wellpulse.yaml"
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Default returns a configuration with all defaults applied, rooted at
// the given base directory. Used by tests and the data generator.
func Default(baseDir string) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8050"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: filepath.Join(DefaultLogsDir, "wellpulse.log"),
		},
		Data: DataConfig{
			BaseDir:      baseDir,
			RawDir:       DefaultRawDir,
			ProcessedDir: DefaultProcessedDir,
			ReportsDir:   DefaultReportsDir,
			ChartsDir:    DefaultChartsDir,
			LogsDir:      DefaultLogsDir,
			FontsDir:     DefaultFontsDir,
		},
		Cleaning: CleaningConfig{
			OutlierStrategy: DefaultOutlierStrategy,
			ZScoreLimit:     DefaultZScoreLimit,
			MeanImputeShare: DefaultMeanImputeShare,
		},
		Model: ModelConfig{
			Trees:           DefaultForestTrees,
			TestRatio:       DefaultTestRatio,
			Seed:            DefaultRandomSeed,
			MinSamplesSplit: DefaultMinSplit,
			MinRows:         DefaultMinTrainRows,
		},
		Report: ReportConfig{
			IncludeHTML:      true,
			PredictionSample: 200,
		},
	}
}
