package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/logger"
	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.AMQPURL == "" {
		l.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.AMQPURL, l)
	if err != nil {
		l.Error("failed to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer q.Close()

	worker := service.NewWorker(service.LogEvent(l), l)

	err = q.Subscribe(cfg.EventsQueue, service.Subscriber(worker.Process, l))
	if err != nil {
		l.Error("failed to register consumer", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("Worker running, waiting for messages...", "queue", cfg.EventsQueue)
	select {
	case <-ctx.Done():
	case amqpErr := <-q.NotifyClose():
		l.Error("broker connection closed", "err", amqpErr)
	}
}
