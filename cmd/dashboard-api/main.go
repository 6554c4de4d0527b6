package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"engagement-dashboard/internal/api"
	"engagement-dashboard/internal/config"
	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/pipeline"
	"engagement-dashboard/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		DateLayouts:         cfg.Dataset.DateLayouts,
		NormalizeCategories: cfg.Dataset.NormalizeCategories,
	}
	if start, ok := cfg.Dataset.SyntheticStart(); ok {
		opts.SyntheticStart = start
	}

	s, err := session.Open(ctx, cfg.Dataset.Source, opts)
	if err != nil {
		logging.Error().Err(err).Str("source", cfg.Dataset.Source).Msg("failed to load dataset")
		os.Exit(1)
	}

	r := api.NewRouter(s)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := r.Start(ctx, srv); err != nil {
		logging.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
