package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Brownie44l1/mri-api/internal/client"
	"github.com/Brownie44l1/mri-api/internal/config"
	"github.com/Brownie44l1/mri-api/internal/predictor"
	"github.com/Brownie44l1/mri-api/internal/terminal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var configPath, file, url, locale, previewOut string
	var noColor bool

	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&file, "file", "", "image to analyze")
	flag.StringVar(&url, "url", "", "prediction service base URL (overrides config)")
	flag.StringVar(&locale, "locale", "", "message language: en|es (overrides config)")
	flag.StringVar(&previewOut, "preview-out", "", "write the image preview data URL to this file")
	flag.BoolVar(&noColor, "no-color", false, "disable colored output")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if url != "" {
		cfg.Client.BaseURL = url
	}
	if locale != "" {
		cfg.Client.Locale = locale
	}

	messages, err := predictor.MessagesFor(cfg.Client.Locale)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid locale")
	}

	var input predictor.StaticInput
	if file != "" {
		input = append(input, predictor.FileFromPath(file))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := predictor.New(
		client.New(client.Options{BaseURL: cfg.Client.BaseURL, Timeout: cfg.Client.Timeout}),
		input,
		terminal.NewResultLine(os.Stdout, !noColor),
		&terminal.PreviewFile{Path: previewOut},
		predictor.WithMessages(messages),
		predictor.WithLogger(log.Logger),
	)

	inv := p.Trigger(ctx)
	outcome, err := inv.WaitPrediction(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// The preview may still be in flight; it does not affect the exit code.
	_ = inv.Wait()

	if outcome.Kind != predictor.Success {
		os.Exit(1)
	}
}
