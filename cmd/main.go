package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SgtSlaughter1/flipkart-bff/internal/cartsvc"
	"github.com/SgtSlaughter1/flipkart-bff/internal/cartview"
	"github.com/SgtSlaughter1/flipkart-bff/internal/catalog"
	"github.com/SgtSlaughter1/flipkart-bff/internal/config"
	"github.com/SgtSlaughter1/flipkart-bff/internal/events"
	"github.com/SgtSlaughter1/flipkart-bff/internal/httpapi"
	"github.com/SgtSlaughter1/flipkart-bff/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	log.Info().
		Str("port", cfg.HTTPPort).
		Str("catalog", cfg.CatalogBaseURL).
		Str("cart", cfg.CartBaseURL).
		Msg("starting cart BFF")

	// Shared outbound client with tracing on every remote call.
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.RequestTimeout,
	}

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, httpClient)
	cartClient := cartsvc.NewClient(cfg.CartBaseURL, httpClient)

	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
	} else {
		store = session.NewMemoryStore()
		log.Info().Msg("using in-memory session store")
	}

	bus := events.NewBus()
	publisher := events.Multi{bus}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = append(publisher, kp)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).
			Msg("mirroring cart events to kafka")
	}

	views := cartview.NewManager(cfg.PlatformFee, cfg.ViewIdleTTL, cartClient, catalogClient, publisher)
	defer views.Close()

	// Cart-count badge refresher listens on the event channel.
	refresherCtx, cancelRefresher := context.WithCancel(context.Background())
	defer cancelRefresher()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go session.NewRefresher(store, cartClient).Run(refresherCtx, ch)

	router := httpapi.NewRouter(views, store, catalogClient, cfg.DefaultUserID, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
