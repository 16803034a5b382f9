package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"pricehound/config"
	"pricehound/handlers"
	"pricehound/internal/aggregator"
	"pricehound/internal/discovery"
	"pricehound/logger"
	"pricehound/middleware"
	"pricehound/services/cache"
	"pricehound/services/fetcher"
	"pricehound/services/publisher"
	"pricehound/services/search"
	"pricehound/services/store"
	"pricehound/services/updater"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("domains", cfg.Domains).
		Msg("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	pipeline := discovery.NewPipeline(services.Search, services.Fetcher, cfg.Domains)
	offers := aggregator.NewAggregator(services.Search, services.Fetcher, cfg.Domains)

	var refresher *updater.Updater
	if services.Products != nil {
		refresher = updater.NewUpdater(pipeline, services.Products, services.Publisher)
		if cfg.RefreshSchedule != "" {
			if err := refresher.StartSchedule(cfg.RefreshSchedule); err != nil {
				log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Invalid refresh schedule")
			}
			defer refresher.StopSchedule()
		}
	}

	h := handlers.NewHandlers(pipeline, offers, services.Products, refresher)
	router := mux.NewRouter()
	h.Register(router)

	handler := middleware.CORS()(middleware.RateLimit(5)(middleware.Logging(router)))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		serverDone <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Search    search.Client
	Fetcher   *fetcher.HTTPFetcher
	Publisher publisher.Publisher
	Products  store.ProductStore
	pgStore   *store.PostgresStore
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.pgStore != nil {
		s.pgStore.Close()
	}
}

// initializeServices initializes all required services. Memcache, redis and
// postgres are optional; the corresponding features degrade when absent.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	log := logger.Default
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	}

	services.Search = search.NewTavilyClient(
		cfg.SearchAPIURL,
		cfg.SearchAPIKey,
		cfg.SearchTimeout,
		services.Cache,
		cfg.SearchCacheTTL,
	)
	services.Fetcher = fetcher.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent)

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
	}

	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.CreateTables(); err != nil {
			return nil, err
		}
		services.pgStore = pg
		services.Products = pg
	} else {
		log.Warn().Msg("POSTGRES_DSN not set, product tracking disabled")
	}

	return services, nil
}
