package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/config"
	"github.com/example/otaku-market/internal/email"
	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/logging"
	"github.com/example/otaku-market/internal/notification"
	"github.com/example/otaku-market/internal/store"
)

// The notifier consumes shop events and sends transactional email. It runs
// in its own consumer group so it can lag or restart without affecting the
// API.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Connect(cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	alerts := store.NewStockAlertRepository(db)
	sender := email.NewService(cfg.SMTP)
	handler := notification.NewHandler(sender, alerts, cfg.Server.PublicBaseURL, logger)

	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("notifier consuming",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID))

	if err := consumer.Consume(ctx, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
