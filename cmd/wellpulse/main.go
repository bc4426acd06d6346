package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"wellpulse/internal/config"
	"wellpulse/internal/infrastructure"
	"wellpulse/internal/pipeline"
)

func main() {
	steps := flag.String("steps", "", "comma-separated steps to run: clean,eda,model,report (default all)")
	input := flag.String("input", "", "explicit raw CSV input (defaults to the newest raw file)")
	configFile := flag.String("config", "", "configuration file (defaults to wellpulse.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths, err := cfg.BuildPaths()
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics := initMetrics(logger)

	runner := pipeline.NewRunner(cfg, paths, metrics, logger)

	req := pipeline.Request{InputFile: *input}
	if *steps != "" {
		req.Steps = strings.Split(*steps, ",")
	}

	logger.Info("Starting pipeline run",
		slog.String("steps", *steps),
		slog.String("input", *input),
		slog.String("base_dir", paths.BaseDir))

	res, err := runner.Run(context.Background(), req)
	if err != nil {
		if res != nil {
			printResult(res)
		}
		if step := pipeline.FailingStep(err); step != "" {
			fmt.Fprintf(os.Stderr, "wellpulse: step %s failed: %v\n", step, err)
		} else {
			fmt.Fprintf(os.Stderr, "wellpulse: %v\n", err)
		}
		os.Exit(1)
	}

	printResult(res)
}

// loadConfig loads the named file, or the default locations when empty
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// initMetrics wires pipeline instrumentation; failures disable it
func initMetrics(logger *slog.Logger) *infrastructure.PipelineMetrics {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		logger.Warn("Telemetry disabled", slog.String("error", err.Error()))
		return nil
	}
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		logger.Warn("Pipeline metrics disabled", slog.String("error", err.Error()))
		return nil
	}
	return metrics
}

func printResult(res *pipeline.Result) {
	fmt.Printf("run %s: %s in %s\n", res.ID, res.Status, res.Duration.Round(time.Millisecond))
	for _, step := range res.Steps {
		line := fmt.Sprintf("  %-8s %-10s %10s", step.ID, step.Status, step.Duration.Round(time.Millisecond))
		if step.Message != "" {
			line += "  " + step.Message
		}
		if step.Error != "" {
			line += "  " + step.Error
		}
		fmt.Println(line)
	}

	if res.CleanedFile != "" {
		fmt.Printf("cleaned: %s (%d rows)\n", res.CleanedFile, res.Rows)
	}
	if res.Summary != nil {
		fmt.Printf("model: R2=%.4f RMSE=%.2f MAE=%.2f (%d trees)\n",
			res.Summary.Metrics.R2, res.Summary.Metrics.RMSE, res.Summary.Metrics.MAE,
			res.Summary.Trees)
	}
	if res.Artifacts != nil {
		if res.Artifacts.PDF != "" {
			fmt.Printf("report: %s\n", res.Artifacts.PDF)
		}
		if res.Artifacts.Workbook != "" {
			fmt.Printf("workbook: %s\n", res.Artifacts.Workbook)
		}
		if res.Artifacts.Predictions != "" {
			fmt.Printf("predictions: %s\n", res.Artifacts.Predictions)
		}
		for _, chart := range res.Artifacts.Charts {
			fmt.Printf("chart: %s\n", chart)
		}
		for _, page := range res.Artifacts.Pages {
			fmt.Printf("charts page: %s\n", page)
		}
	}
}
