package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groblegark/kleads/internal/auth"
	"github.com/groblegark/kleads/internal/config"
	"github.com/groblegark/kleads/internal/events"
	"github.com/groblegark/kleads/internal/server"
	"github.com/groblegark/kleads/internal/store/postgres"
	leadsync "github.com/groblegark/kleads/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the leads HTTP server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (LEADS_NATS_URL not set)")
		}

		// Pick the authenticator: JWT when a secret is configured, static
		// tokens otherwise. Neither set means auth is disabled (dev only).
		var authenticator auth.Authenticator
		switch {
		case cfg.JWTSecret != "":
			authenticator = auth.NewJWTAuthenticator(cfg.JWTSecret)
			logger.Info("auth enabled", "mode", "jwt")
		case cfg.AuthTokens != "":
			sa, err := auth.NewStaticAuthenticator(cfg.AuthTokens)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			authenticator = sa
			logger.Info("auth enabled", "mode", "static")
		default:
			logger.Warn("auth disabled (LEADS_JWT_SECRET and LEADS_AUTH_TOKENS not set)")
		}

		// Create server components.
		leadsServer := server.NewLeadsServer(store, publisher)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: leadsServer.NewHTTPHandler(authenticator),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the backup scheduler if an S3 destination is configured.
		var scheduler *leadsync.Scheduler
		if cfg.SyncInterval > 0 && cfg.SyncS3Bucket != "" {
			s3Dest, err := leadsync.NewS3Destination(
				context.Background(),
				cfg.SyncS3Bucket,
				cfg.SyncS3Key,
				cfg.SyncS3Region,
				cfg.SyncS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 sync destination", "err", err)
			} else {
				scheduler = leadsync.NewScheduler(store, []leadsync.Destination{s3Dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started",
					"interval", cfg.SyncInterval,
					"bucket", cfg.SyncS3Bucket,
					"key", cfg.SyncS3Key,
				)
			}
		}

		logger.Info("leads server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
