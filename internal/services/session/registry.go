package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"property_search/internal/domain"
	"property_search/internal/lib/metrics"
	"property_search/internal/services/aisearch"
	"property_search/internal/services/mode"
	"property_search/internal/services/search"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Deps коллабораторы, общие для всех сессий.
type Deps struct {
	Query            search.QuerySearcher
	Text             search.TextSearcher
	AI               aisearch.PromptSearcher
	Fetcher          aisearch.PropertyFetcher
	Catalog          CatalogView
	Builder          search.QueryBuilder
	Metrics          *metrics.CallMetrics
	Debounce         time.Duration
	FetchConcurrency int64
}

// Registry хранит сессии в памяти. Неактивные сессии вытесняются по TTL.
type Registry struct {
	log     *slog.Logger
	deps    Deps
	ttl     time.Duration
	baseCtx context.Context
	items   *cache.Cache
}

func NewRegistry(ctx context.Context, log *slog.Logger, deps Deps, ttl time.Duration) *Registry {
	items := cache.New(ttl, ttl/2)
	items.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.debounce.Stop()
		}
		log.Debug("search session expired", slog.String("session", id))
	})

	return &Registry{
		log:     log,
		deps:    deps,
		ttl:     ttl,
		baseCtx: ctx,
		items:   items,
	}
}

// Create создаёт сессию для зрителя с фильтрами по умолчанию.
func (r *Registry) Create(viewer search.Viewer) *Session {
	const op = "session.Registry.Create"

	id := uuid.NewString()
	log := r.log.With(slog.String("session", id))
	limits := r.deps.Catalog.Limits()
	results := search.NewResultSet()

	s := &Session{
		id:      id,
		log:     log,
		baseCtx: r.baseCtx,
		catalog: r.deps.Catalog,
		results: results,
		modes:   mode.NewCoordinator(log, results),
		state:   domain.DefaultFilterState(limits),
		limits:  limits,
	}
	s.searcher = search.NewDispatcher(log, r.deps.Query, r.deps.Text, r.deps.Catalog, r.deps.Builder,
		viewer, s, results, r.deps.Metrics)
	s.ai = aisearch.New(log, r.deps.AI, r.deps.Fetcher, r.deps.Catalog, s, results,
		r.deps.Metrics, r.deps.FetchConcurrency)
	s.debounce = search.NewDebouncer(r.deps.Debounce, s.runDebouncedText)

	r.items.Set(id, s, cache.DefaultExpiration)
	r.log.Info("search session created",
		slog.String("op", op),
		slog.String("session", id),
		slog.Bool("privileged", viewer.IsPrivilegedViewer()),
	)
	return s
}

// Get возвращает сессию и продлевает её TTL.
func (r *Registry) Get(id string) (*Session, error) {
	const op = "session.Registry.Get"

	v, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrSessionNotFound)
	}
	s := v.(*Session)
	r.items.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete закрывает сессию.
func (r *Registry) Delete(id string) {
	r.items.Delete(id)
}

// Len количество живых сессий.
func (r *Registry) Len() int {
	return r.items.ItemCount()
}
