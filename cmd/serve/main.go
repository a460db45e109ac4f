package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config.yaml (default: ./config.yaml, built-ins otherwise)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := server.New(cfg, logger)

	logger.Info("starting sprite-splitter server",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.Bool("naming_enabled", cfg.Naming.Endpoint != ""))

	if err := srv.Router().Run(cfg.Server.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
