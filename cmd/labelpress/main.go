package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dlpedro/labelpress/internal/api"
	"github.com/dlpedro/labelpress/internal/classifier"
	"github.com/dlpedro/labelpress/internal/composer"
	"github.com/dlpedro/labelpress/internal/config"
	"github.com/dlpedro/labelpress/internal/flyer"
	"github.com/dlpedro/labelpress/internal/pdftext"
	"github.com/dlpedro/labelpress/internal/pipeline"
	"github.com/dlpedro/labelpress/internal/printer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "train":
		err = runTrain(cfg, log)
	case "run":
		err = runOnce(cfg, log)
	case "serve":
		err = runServe(cfg, log)
	default:
		fmt.Fprintln(os.Stderr, "usage: labelpress [train|run|serve]")
		os.Exit(2)
	}
	if err != nil {
		log.Error("labelpress failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func newExtractor(cfg config.Config) *pdftext.Extractor {
	return &pdftext.Extractor{FallbackPdftotext: cfg.PDFFallbackPdftotext}
}

func newRunner(cfg config.Config, log *slog.Logger) (*pipeline.Runner, error) {
	pred, err := classifier.NewFromDir(cfg.ModelDir, newExtractor(cfg))
	if err != nil {
		return nil, err
	}
	gen := flyer.New(cfg.FlyerTemplate, cfg.TempDir, cfg.ShopURL, log)
	comp := composer.New(cfg.DPI, cfg.JPEGQuality, cfg.ScissorAsset, log)

	var sink printer.Sink = printer.CUPS{}
	if !cfg.PrintEnabled {
		sink = printer.Null{}
	}
	return pipeline.NewRunner(cfg, pred, gen, comp, sink, log), nil
}

func runTrain(cfg config.Config, log *slog.Logger) error {
	art, err := classifier.Train(classifier.TrainConfig{
		DataDirs:      cfg.TrainingDirs(),
		StopwordsPath: cfg.StopwordsPath,
		MaxFeatures:   cfg.MaxFeatures,
		Seed:          42,
	}, newExtractor(cfg), log)
	if err != nil {
		return err
	}
	if err := art.Save(cfg.ModelDir); err != nil {
		return err
	}
	log.Info("artifact saved", "dir", cfg.ModelDir)
	return nil
}

func runOnce(cfg config.Config, log *slog.Logger) error {
	runner, err := newRunner(cfg, log)
	if err != nil {
		return err
	}
	res, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	log.Info("label generated",
		"category", res.Category,
		"output", res.OutputPath,
		"printed", res.Printed,
	)
	return nil
}

func runServe(cfg config.Config, log *slog.Logger) error {
	runner, err := newRunner(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	station := pipeline.NewStation(runner, cfg.JobTTL, log)
	station.Start(ctx)

	srv := api.NewServer(station, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		station.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting labelpress station", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
