package main

import (
	"flag"
	"log/slog"
	"os"

	"wellpulse/internal/app"
	"wellpulse/internal/config"
)

func main() {
	port := flag.Int("port", 0, "listen port (overrides configuration)")
	configFile := flag.String("config", "", "configuration file (defaults to wellpulse.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	application, err := app.NewApplicationWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig loads the named file, or the default locations when empty
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
