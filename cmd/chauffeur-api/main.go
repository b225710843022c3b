// README: Entry point; loads config, wires the pricing service and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"chauffeur/internal/config"
	httptransport "chauffeur/internal/http"
	"chauffeur/internal/http/middleware"
	"chauffeur/internal/infra"
	"chauffeur/internal/maps"
	"chauffeur/internal/modules/pricing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newConfigStore(ctx, cfg)
	if err != nil {
		logger.Fatal("config store init", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; quotes will not be kept until it recovers", zap.Error(err))
	}

	var distance pricing.DistanceProvider
	var geocoder pricing.AddressResolver
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		places, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		distance, geocoder = routes, places
	} else {
		logger.Warn("CHAUFFEUR_MAPS_API_KEY not set; quotes without a route fall back to the base fee")
	}

	pricingSvc := pricing.NewService(store, distance, geocoder, pricing.NewRedisCache(redisClient), logger, pricing.Options{
		QuoteTTL:        cfg.Redis.QuoteTTL,
		RouteTTL:        cfg.Redis.RouteTTL,
		DefaultTimezone: cfg.Pricing.Timezone,
		DefaultCurrency: cfg.Pricing.Currency,
	})

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx, 10*time.Minute)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing:      pricingSvc,
		Logger:       logger,
		RateLimiter:  limiter,
		QuoteTimeout: cfg.Maps.Timeout,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("store", cfg.Store.Driver))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}

// newConfigStore opens the configured widget store and returns its closer.
func newConfigStore(ctx context.Context, cfg config.Config) (pricing.ConfigStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreFirestore:
		client, err := infra.NewFirestore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return pricing.NewFirestoreStore(client), func() { _ = client.Close() }, nil
	default:
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pricing.NewStore(pool), pool.Close, nil
	}
}
