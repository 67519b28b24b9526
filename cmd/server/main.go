package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basketwise/internal/bundle"
	bundlehandler "basketwise/internal/bundle/handler"
	cataloghandler "basketwise/internal/catalog/handler"
	catalogsvc "basketwise/internal/catalog/service"
	catalogstore "basketwise/internal/catalog/store"
	directoryhandler "basketwise/internal/directory/handler"
	directorysvc "basketwise/internal/directory/service"
	directorystore "basketwise/internal/directory/store"
	"basketwise/internal/geo"
	"basketwise/internal/platform/config"
	"basketwise/internal/platform/httpserver"
	"basketwise/internal/platform/logger"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/postgres"
	platformredis "basketwise/internal/platform/redis"
	"basketwise/internal/prefs"
	"basketwise/internal/session"
	sessionhandler "basketwise/internal/session/handler"
	"basketwise/internal/signup/events"
	signuphandler "basketwise/internal/signup/handler"
	signupsvc "basketwise/internal/signup/service"
	signupstore "basketwise/internal/signup/store"
	"basketwise/internal/token"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages. Every backing service is optional:
// a missing postgres, redis, or kafka degrades to the in-memory path so a
// bare `go run` serves the seeded datasets.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	// Seeded in-memory datasets double as the fallback when postgres is
	// configured and as the primary when it is not.
	dirMem := directorystore.NewInMemory()
	directorystore.SeedDirectory(dirMem)
	catMem := catalogstore.NewInMemory()
	catalogstore.SeedCatalog(catMem)

	var (
		dirPrimary    directorysvc.Store = dirMem
		catPrimary    catalogsvc.Store   = catMem
		signupPrimary signupsvc.Store    = signupstore.NewInMemory()
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			log.Error("postgres unavailable, serving seeded datasets", "error", err.Error())
		} else {
			defer db.Close()
			dirPrimary = directorystore.NewPostgres(db)
			catPrimary = catalogstore.NewPostgres(db)
			signupPrimary = signupstore.NewPostgres(db)
			log.Info("postgres connected")
		}
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable, caching disabled", "error", err.Error())
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafka(cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("kafka unavailable, signup events disabled", "error", err.Error())
		} else {
			publisher = kafka
			defer kafka.Close()
		}
	}

	locator := geo.WithTimeout(
		geo.Static{Pos: geo.Position{Lat: cfg.GeoLat, Lng: cfg.GeoLng}},
		cfg.GeoTimeout,
	)

	dirSvc := directorysvc.New(dirPrimary, dirMem, locator, cfg.DefaultRegion, log)

	catOpts := []catalogsvc.Option{catalogsvc.WithMetrics(m)}
	if redisClient != nil {
		catOpts = append(catOpts, catalogsvc.WithCache(redisClient, cfg.CatalogCacheTTL))
	}
	catSvc := catalogsvc.New(catPrimary, catMem, log, catOpts...)

	defs := bundle.DefaultDefinitions()
	if cfg.BundlesFile != "" {
		loaded, err := bundle.LoadDefinitions(cfg.BundlesFile)
		if err != nil {
			log.Error("bundle definitions file rejected, using defaults",
				"path", cfg.BundlesFile,
				"error", err.Error(),
			)
		} else {
			defs = loaded
		}
	}
	matcher := bundle.NewMatcher(defs, m)

	var prefStore prefs.Store = prefs.NewMemory()
	if redisClient != nil {
		prefStore = prefs.NewRedis(redisClient, log)
	}

	sessionSvc := session.New(dirSvc, catSvc, matcher, prefStore, cfg.DefaultRegion, m, log)
	signupSvc := signupsvc.New(signupPrimary, publisher, m, log)
	tokens := token.NewService(cfg.AdminSigningKey, "basketwise")

	router := chi.NewRouter()
	router.Get("/health", healthHandler(redisClient))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	directoryhandler.New(dirSvc, tokens, m, log).Register(router)
	cataloghandler.New(catSvc, dirSvc, tokens, m, log).Register(router)
	bundlehandler.New(matcher, catSvc, m, log).Register(router)
	sessionhandler.New(sessionSvc, m, log).Register(router)
	signuphandler.New(signupSvc, dirSvc, m, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("basketwise listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}

func healthHandler(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
	}
}
