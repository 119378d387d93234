package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardscan-go/internal/api"
	"cardscan-go/internal/app"
	"cardscan-go/internal/config"
	"cardscan-go/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg, err := config.Load() // loads .env
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}

	log := logger.New()
	log.WithField("service", "cardscan-go").WithField("ner_backend", cfg.NERBackend).Info("starting service")

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}
	defer application.Close()

	cards := api.NewCardHandler(application.Processor, application.Store, api.HandlerConfig{
		MaxUploadBytes: cfg.MaxUploadBytes,
		BatchWorkers:   cfg.BatchWorkers,
	}, log)
	srv := api.NewServer(api.ServerConfig{
		Port:           cfg.Port,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, cards, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server terminated")
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}
