package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/tradehub/internal/auth"
	"github.com/fjod/tradehub/internal/bulk"
	"github.com/fjod/tradehub/internal/cart"
	"github.com/fjod/tradehub/internal/config"
	"github.com/fjod/tradehub/internal/events"
	h "github.com/fjod/tradehub/internal/http"
	"github.com/fjod/tradehub/internal/listing"
	"github.com/fjod/tradehub/internal/logger"
	"github.com/fjod/tradehub/internal/orders"
	"github.com/fjod/tradehub/internal/query"
	"github.com/fjod/tradehub/internal/storage"
	"github.com/fjod/tradehub/internal/store"
	"github.com/fjod/tradehub/internal/wishlist"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	seed, err := store.LoadFixtures()
	if err != nil {
		return err
	}
	catalog := store.NewMemoryStore(seed, cfg.Latency)

	state, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer state.Close()
	log.Info("client state storage ready", "driver", cfg.Storage.Driver)

	var publisher events.Publisher = events.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers...)
		log.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", events.Topic)
	}
	defer publisher.Close()

	shoppingCart, err := cart.New(ctx, state, publisher, log.With("component", "cart"))
	if err != nil {
		return err
	}
	wl, err := wishlist.New(ctx, state, shoppingCart, log.With("component", "wishlist"))
	if err != nil {
		return err
	}
	session, err := auth.New(ctx, state)
	if err != nil {
		return err
	}

	engine := query.NewEngine(catalog)
	handlers := h.Handlers{
		Catalog:  h.NewCatalogHandler(engine, catalog, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(shoppingCart, catalog, cfg.RequestTimeout),
		Wishlist: h.NewWishlistHandler(wl, catalog, cfg.RequestTimeout),
		Listings: h.NewListingHandler(
			listing.NewManager(catalog, publisher, log.With("component", "listing")),
			engine,
			bulk.NewCoordinator(catalog, publisher, log.With("component", "bulk")),
			cfg.SellerID,
			cfg.RequestTimeout,
		),
		Orders: h.NewOrdersHandler(orders.NewService(catalog), cfg.RequestTimeout),
		Auth:   h.NewAuthHandler(session, cfg.RequestTimeout),
	}

	router := h.NewRouter(handlers, session, log, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
