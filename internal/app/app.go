package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"property_search/internal/config"
	"property_search/internal/lib/aisearch"
	"property_search/internal/lib/auth"
	"property_search/internal/lib/backend"
	"property_search/internal/lib/cache"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/lib/meili"
	"property_search/internal/lib/metrics"
	"property_search/internal/repository/property_repository"
	"property_search/internal/services/catalog"
	"property_search/internal/services/limits"
	"property_search/internal/services/query"
	"property_search/internal/services/search"
	"property_search/internal/services/session"
	"property_search/internal/transport/searchhttp"

	aisearchsvc "property_search/internal/services/aisearch"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	catalogBackend  = "backend"
	catalogPostgres = "postgres"
	textMeili       = "meilisearch"
	cacheRedis      = "redis"
	cacheMemory     = "memory"
)

type App struct {
	log        *slog.Logger
	cfg        *config.Config
	HTTPServer *http.Server
	Catalog    *catalog.Service
	Sessions   *session.Registry
	Metrics    *metrics.CallMetrics

	pool  *pgxpool.Pool
	redis *redis.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{log: log, cfg: cfg}

	callMetrics := metrics.GetCallMetrics(log)
	backendClient := backend.NewClient(cfg.Backend, log)
	aiClient := aisearch.NewClient(cfg.AISearch, log)

	// Источник каталога и загрузка записей по ID
	var (
		source  catalog.Source
		fetcher cache.Fetcher = backendClient
	)
	switch cfg.Catalog.Source {
	case catalogPostgres:
		pool, err := pgxpool.New(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.pool = pool

		repo := property_repository.NewPropertyRepository(pool, log)
		source = repo
		fetcher = repo
	case catalogBackend, "":
		// С сервисным токеном бэкенд отдаёт полный каталог, видимость режет поиск.
		source = backend.CatalogSource{Client: backendClient, Privileged: cfg.Backend.Token != ""}
	default:
		return nil, fmt.Errorf("%s: unknown catalog source %q", op, cfg.Catalog.Source)
	}

	var text search.TextSearcher = backendClient
	if cfg.TextSearch.Driver == textMeili {
		meiliClient := meili.NewClient(cfg.TextSearch, log)
		text = meiliClient
		source = meili.IndexingSource{Source: source, Client: meiliClient}
	}

	switch cfg.Cache.Driver {
	case cacheRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		fetcher = cache.NewCachedFetcher(log, fetcher, cache.NewRedisStore(a.redis), cfg.Cache.TTL)
	case cacheMemory:
		fetcher = cache.NewCachedFetcher(log, fetcher, cache.NewMemoryStore(cfg.Cache.TTL), cfg.Cache.TTL)
	}

	catalogService := catalog.New(log, source, limits.NewResolver(cfg.Limits), callMetrics)

	concurrency := cfg.AISearch.FetchConcurrency
	if concurrency <= 0 {
		concurrency = aisearchsvc.DefaultFetchConcurrency
	}

	registry := session.NewRegistry(ctx, log, session.Deps{
		Query:            backendClient,
		Text:             text,
		AI:               aiClient,
		Fetcher:          fetcher,
		Catalog:          catalogService,
		Builder:          query.NewBuilder(catalogService),
		Metrics:          callMetrics,
		Debounce:         cfg.Search.Debounce,
		FetchConcurrency: concurrency,
	}, cfg.Search.SessionTTL)

	router := searchhttp.NewRouter(log, registry, catalogService, auth.NewParser(cfg.Auth), cfg.HTTPServer.AllowedOrigins)

	a.HTTPServer = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	a.Catalog = catalogService
	a.Sessions = registry
	a.Metrics = callMetrics

	log.Info("search services initialized",
		slog.String("catalog_source", cfg.Catalog.Source),
		slog.String("text_driver", cfg.TextSearch.Driver),
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.Bool("ai_enabled", aiClient.IsEnabled()),
		slog.Bool("auth_disabled", cfg.Auth.DisableAuth),
	)

	return a, nil
}

// Run загружает каталог, запускает его обновление и HTTP-сервер. Блокирует до остановки сервера.
// Ошибка первой загрузки не фатальна: до успешной загрузки действуют лимиты по умолчанию.
func (a *App) Run(ctx context.Context) error {
	const op = "app.Run"

	log := a.log.With(slog.String("op", op))

	if err := a.Catalog.Load(ctx); err != nil {
		log.Warn("initial catalog load failed", sl.Err(err))
	}
	if err := a.Catalog.Start(ctx, a.cfg.Catalog.RefreshSpec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("http server started", slog.String("address", a.HTTPServer.Addr))
	if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MustRun запускает приложение и паникует при ошибке.
func (a *App) MustRun(ctx context.Context) {
	if err := a.Run(ctx); err != nil {
		panic(err)
	}
}

// Stop останавливает сервер, обновление каталога и закрывает соединения.
func (a *App) Stop(ctx context.Context) {
	const op = "app.Stop"

	log := a.log.With(slog.String("op", op))
	log.Info("stopping application")

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", sl.Err(err))
	}
	a.Catalog.Stop()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("redis close failed", sl.Err(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
