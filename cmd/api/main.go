package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/api"
	"github.com/example/otaku-market/internal/auth"
	"github.com/example/otaku-market/internal/cache"
	"github.com/example/otaku-market/internal/catalog"
	"github.com/example/otaku-market/internal/config"
	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/logging"
	"github.com/example/otaku-market/internal/metrics"
	"github.com/example/otaku-market/internal/order"
	"github.com/example/otaku-market/internal/payment"
	"github.com/example/otaku-market/internal/sitemap"
	"github.com/example/otaku-market/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if len(cfg.JWT.Secret) < 32 {
		logger.Fatal("JWT_SECRET must be set and at least 32 characters")
	}

	db, err := store.Connect(cfg.Postgres)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Migrate(migrateCtx, db); err != nil {
		migrateCancel()
		logger.Fatal("run migrations", zap.Error(err))
	}
	migrateCancel()
	logger.Info("connected to postgres")

	rdb, err := cache.Connect(cfg.Redis)
	if err != nil {
		// The cache layers degrade to the database on their own.
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	}

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	defer producer.Close()

	products := store.NewProductRepository(db)
	users := store.NewUserRepository(db)
	wishlist := store.NewWishlistRepository(db)
	alerts := store.NewStockAlertRepository(db)
	addresses := store.NewAddressRepository(db)

	productCache := cache.NewProductCache(products, rdb, logger)
	catalogSvc := catalog.NewService(products, productCache, wishlist, alerts, productCache, producer, logger)

	paymentClient := payment.NewHTTPClient(cfg.Payment)
	orderSvc := order.NewService(order.NewPGStore(db), paymentClient, producer, cfg.Shop, logger)

	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	sitemapSvc := sitemap.NewService(catalogSvc, rdb, cfg.Server.PublicBaseURL, logger)
	serverMetrics := metrics.NewServerMetrics()

	handlers := api.NewHandlers(catalogSvc, orderSvc, users, addresses, tokens, sitemapSvc, serverMetrics)
	router := api.NewRouter(handlers, tokens, serverMetrics, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
