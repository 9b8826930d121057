package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"boiler-status-backend/config"
	"boiler-status-backend/internal/api"
	"boiler-status-backend/internal/logger"
	"boiler-status-backend/internal/notification"
	"boiler-status-backend/internal/poller"
	"boiler-status-backend/internal/stokercloud"
	"boiler-status-backend/internal/store"
	"boiler-status-backend/internal/translate"
)

func main() {
	log := logger.Get(os.Getenv("LOG_LEVEL"))

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalw("failed to load configuration", "path", configPath, "err", err)
	}
	log.Infow("configuration loaded", "path", configPath)

	if cfg.StokerCloud.Username == "" {
		log.Fatalw("stokercloud.username must be configured")
	}

	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	appStore := store.New()

	sc := cfg.StokerCloud
	client := stokercloud.NewClient(sc.BaseURL, sc.TranslationBaseURL, sc.HTTPProxy,
		time.Duration(sc.TimeoutSeconds)*time.Second, log)
	session := stokercloud.NewSession(client, stokercloud.NewTokenStore(), sc.Username)
	translations := translate.NewCache(client, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, log)
	pollerSvc := poller.NewService(cfg, session, translations, appStore, pool, log)
	go pollerSvc.Run(ctx)

	router := api.NewRouter(appStore, webpushOptions, cfg.Server.RateLimitPerSec,
		time.Duration(cfg.Server.CacheTTLSeconds)*time.Second)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infow("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("HTTP server failed", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Infow("shutdown signal received, stopping services")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("HTTP server shutdown failed", "err", err)
	}

	log.Infow("server gracefully stopped")
}
