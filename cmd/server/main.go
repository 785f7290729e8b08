package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"foodcart-routing-service/internal/adapters/geocoder"
	"foodcart-routing-service/internal/api"
	"foodcart-routing-service/internal/config"
	"foodcart-routing-service/internal/services"
	"foodcart-routing-service/internal/store"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Yandex geocoder) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if envErr != nil {
		zap.L().Info("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := st.UseGeocodeCache(ctx, cfg.GeocodeCache); err != nil {
		return err
	}

	client, err := geocoder.NewYandexClient(cfg.Geocoder.APIKey,
		geocoder.WithBaseURL(cfg.Geocoder.BaseURL),
		geocoder.WithTimeout(cfg.Geocoder.Timeout()),
		geocoder.WithMaxAttempts(cfg.Geocoder.MaxAttempts),
		geocoder.WithRateLimit(cfg.Geocoder.RateLimit),
	)
	if err != nil {
		return fmt.Errorf("geocoder: %w", err)
	}

	resolver := services.NewGeocodeResolver(st.GeocodeCache, client,
		services.WithStaleAfter(cfg.GeocodeCache.StaleAfter()),
		services.WithConcurrency(cfg.Routing.GeocodeConcurrency),
	)

	router := api.NewRouter(api.Deps{
		Orders:      st.Orders,
		Restaurants: st.Restaurants,
		Products:    st.Products,
		Pass:        services.NewRoutingPass(resolver),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Timeouts are tuned for cold-cache routing passes (external API latency).
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server listening",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", st.Driver),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen: %w", err)
	}

	return nil
}
