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

	"github.com/Lixing-Zhang/vintage-drops/internal/app"
	"github.com/Lixing-Zhang/vintage-drops/internal/config"
	"github.com/Lixing-Zhang/vintage-drops/internal/handlers"
	"github.com/Lixing-Zhang/vintage-drops/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting vintage drops api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	repos, conn, err := app.OpenStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	var pinger handlers.Pinger
	if conn != nil {
		pinger = conn
		defer conn.Close()
	}

	server, err := app.New(ctx, cfg, repos, pinger, log)
	if err != nil {
		log.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	stats, err := server.Evaluator.GetStats(ctx)
	if err != nil {
		log.Error("failed to load coupon stats", "error", err)
		os.Exit(1)
	}
	log.Info("coupon codes indexed",
		"total_coupons", stats.Total,
		"active_coupons", stats.Active,
		"spin_prizes", stats.SpinPrizes,
	)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
