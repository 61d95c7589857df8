package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nekogravitycat/room-booking-backend/internal/app"
	"github.com/nekogravitycat/room-booking-backend/internal/config"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/kafka"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "room-booking",
	})
	slog.SetDefault(log)

	// Init components
	container, err := app.NewContainer(app.Config{
		IsProduction:     cfg.IsProduction,
		AllowedOrigins:   cfg.AllowedOrigins(),
		EnforceConflicts: cfg.EnforceConflicts,
		EventBuffer:      cfg.EventBuffer,
		SeedDemoData:     cfg.SeedDemoData,
		SeedDemoBookings: cfg.SeedDemoData,
		Logger:           log,
	})
	if err != nil {
		return err
	}

	// Optional Kafka forwarding of change events
	var wg sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		writer, err := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		forwarder := kafka.NewForwarder(writer, log)
		sub := container.Bus.Subscribe(0)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sub.Close()
			if err := forwarder.Run(ctx, sub); err != nil {
				log.Error("kafka forwarder stopped", "error", err)
			}
			if err := forwarder.Close(); err != nil {
				log.Error("failed to close kafka writer", "error", err)
			}
		}()
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}
	// Event streams never finish on their own.
	server.RegisterOnShutdown(container.Bus.CloseSubscriptions)

	// Run server in separate goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr, "production", cfg.IsProduction)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for Ctrl+C or a listener failure
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", "error", err)
	}

	stop()
	wg.Wait()

	log.Info("server exited gracefully")
	return nil
}
