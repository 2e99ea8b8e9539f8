// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/handler"
	"github.com/unclebandit/customer-service/internal/logger"
	"github.com/unclebandit/customer-service/internal/metrics"
	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/server"
	"github.com/unclebandit/customer-service/internal/service"
	"github.com/unclebandit/customer-service/internal/storage"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, l); err != nil {
		l.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init store once; every request shares the pool
	store, err := storage.Open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer store.Close()

	q, closeQueue, err := openQueue(cfg, l)
	if err != nil {
		return err
	}
	defer closeQueue()

	reg := metrics.New()

	customerService := &service.CustomerService{
		CustomerRepo: store.Customers,
		Queue:        q,
		Topic:        cfg.EventsQueue,
		Observer:     reg,
		Logger:       l,
	}

	router := server.NewRouter(server.Deps{
		Customers:      handler.NewCustomerHandler(customerService, l),
		Metrics:        reg,
		Logger:         l,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	srv := server.New(":"+cfg.Port, router, l)

	errCh := make(chan error, 1)
	go func() {
		l.Info("🚀 Server running", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openQueue connects to RabbitMQ when configured, otherwise falls back to an
// in-process queue whose only subscriber logs each change.
func openQueue(cfg *config.Config, l *slog.Logger) (queue.Queue, func(), error) {
	if cfg.AMQPURL == "" {
		q := queue.NewInMemoryQueue(l)
		if err := q.Subscribe(cfg.EventsQueue, service.Subscriber(service.LogEvent(l), l)); err != nil {
			return nil, nil, err
		}
		l.Info("change notifications stay in-process (AMQP_URL not set)")
		return q, q.Wait, nil
	}

	q, err := queue.DialAMQP(cfg.AMQPURL, l)
	if err != nil {
		return nil, nil, fmt.Errorf("events queue: %w", err)
	}
	l.Info("✅ Connected to RabbitMQ", "queue", cfg.EventsQueue)
	return q, func() { q.Close() }, nil
}
