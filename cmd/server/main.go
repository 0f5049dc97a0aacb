package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Brownie44l1/mri-api/internal/config"
	"github.com/Brownie44l1/mri-api/internal/handlers"
	"github.com/Brownie44l1/mri-api/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// If running from cmd/server, resolve model paths from the project root
	if wd, err := os.Getwd(); err == nil && filepath.Base(wd) == "server" {
		root := filepath.Join(wd, "../..")
		if !filepath.IsAbs(cfg.Model.Path) {
			cfg.Model.Path = filepath.Join(root, cfg.Model.Path)
		}
		if !filepath.IsAbs(cfg.Model.MetadataPath) {
			cfg.Model.MetadataPath = filepath.Join(root, cfg.Model.MetadataPath)
		}
	}

	if cfg.Model.Drive.Enabled() {
		if err := fetchModel(ctx, cfg.Model); err != nil {
			log.Fatal().Err(err).Msg("failed to fetch model artifacts")
		}
	}

	log.Info().Str("path", cfg.Model.Path).Msg("loading model")
	runner, err := model.NewRunner(cfg.Model.Path, cfg.Model.MetadataPath, cfg.Model.RuntimeLibrary)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model runner")
	}
	defer runner.Close()
	log.Info().Strs("classes", runner.Metadata().Classes).Msg("model loaded")

	handler := handlers.NewHandler(runner, cfg.Server.MaxUploadBytes)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown with error")
		}
	}()

	log.Info().
		Str("port", cfg.Server.Port).
		Strs("endpoints", []string{"GET /", "GET /health", "POST /predict", "POST /predict/tensor"}).
		Msg("server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("shutdown complete")
}

func fetchModel(ctx context.Context, cfg config.ModelConfig) error {
	fetcher, err := model.NewDriveFetcher(ctx, option.WithCredentialsJSON([]byte(cfg.Drive.CredentialsJSON)))
	if err != nil {
		return err
	}
	if cfg.Drive.ModelID != "" {
		if err := fetcher.EnsureFile(ctx, cfg.Drive.ModelID, cfg.Path); err != nil {
			return err
		}
	}
	if cfg.Drive.MetadataID != "" {
		if err := fetcher.EnsureFile(ctx, cfg.Drive.MetadataID, cfg.MetadataPath); err != nil {
			return err
		}
	}
	return nil
}
