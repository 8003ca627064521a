package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"storytime/internal/app"
	"storytime/internal/config"
	"storytime/internal/server"
	"storytime/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	feedCacheTTL, err := config.ParseFeedCacheTTL(cfg.FeedCacheTTL)
	if err != nil {
		log.Fatalf("failed to parse feed cache TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		Secret:         cfg.Secret,
		SessionTTL:     sessionTTL,
		StorageDir:     cfg.StorageDir,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		FeedCacheTTL:   feedCacheTTL,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	uploadsDir := ""
	if cfg.MinioEndpoint == "" {
		uploadsDir = cfg.StorageDir
		if uploadsDir == "" {
			uploadsDir = "uploads"
		}
	}

	httpServer := server.New(server.Config{
		App:        appCore,
		CORSOrigin: cfg.CORSOrigin,
		UploadsDir: uploadsDir,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
