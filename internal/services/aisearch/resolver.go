package aisearch

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/lib/metrics"
	"property_search/internal/services/search"

	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"
)

// DefaultFetchConcurrency сколько записей догружается одновременно, если не задано в конфиге.
const DefaultFetchConcurrency = 8

// PromptSearcher AI-поиск по описанию на естественном языке.
type PromptSearcher interface {
	SearchByAIPrompt(ctx context.Context, prompt string) ([]domain.AIResultRef, error)
}

// PropertyFetcher загрузка полной записи по ID.
type PropertyFetcher interface {
	FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error)
}

// Resolver превращает облегчённые AI-ссылки в полные записи с сохранением порядка AI.
type Resolver struct {
	log         *slog.Logger
	ai          PromptSearcher
	fetcher     PropertyFetcher
	catalog     search.Catalog
	reporter    search.ErrorReporter
	results     *search.ResultSet
	metrics     *metrics.CallMetrics
	concurrency int64
}

func New(
	log *slog.Logger,
	ai PromptSearcher,
	fetcher PropertyFetcher,
	catalog search.Catalog,
	reporter search.ErrorReporter,
	results *search.ResultSet,
	m *metrics.CallMetrics,
	concurrency int64,
) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Resolver{
		log:         log,
		ai:          ai,
		fetcher:     fetcher,
		catalog:     catalog,
		reporter:    reporter,
		results:     results,
		metrics:     m,
		concurrency: concurrency,
	}
}

// Search выполняет AI-поиск. Пустой запрос возвращает ValidationError без сетевых вызовов.
// Записи, которые не удалось догрузить, пропускаются.
func (r *Resolver) Search(ctx context.Context, prompt string) ([]domain.Property, error) {
	const op = "aisearch.Resolver.Search"
	log := r.log.With(slog.String("op", op))

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		r.results.SetError(domain.MsgEmptyPrompt)
		return nil, domain.NewValidationError("prompt", domain.MsgEmptyPrompt)
	}

	ticket := r.results.Begin()

	refs, err := metrics.WrapWithMetrics(ctx, r.metrics, metrics.ServiceAISearch,
		func(ctx context.Context) ([]domain.AIResultRef, error) {
			return r.ai.SearchByAIPrompt(ctx, prompt)
		})
	if err != nil {
		netErr := &domain.NetworkError{Op: op, Err: err}
		log.Error("ai search failed", sl.Err(err))
		if r.results.Deliver(ticket, []domain.Property{}, domain.MsgAISearchFailed) {
			r.reporter.Report(ctx, netErr)
		}
		return []domain.Property{}, netErr
	}

	resolved := r.resolve(ctx, log, refs)

	if !r.results.Deliver(ticket, resolved, "") {
		log.Debug("stale ai response discarded", slog.Uint64("ticket", ticket))
	}

	log.Info("ai search resolved",
		slog.Int("refs", len(refs)),
		slog.Int("resolved", len(resolved)),
	)

	return resolved, nil
}

// resolve берёт записи из снимка каталога, недостающие догружает параллельно.
// Каждая загрузка пишет в свой слот, поэтому порядок AI сохраняется.
func (r *Resolver) resolve(ctx context.Context, log *slog.Logger, refs []domain.AIResultRef) []domain.Property {
	if len(refs) == 0 {
		return []domain.Property{}
	}

	loaded := make(map[int64]domain.Property)
	for _, p := range r.catalog.GetLoadedProperties() {
		loaded[p.ID] = p
	}

	slots := make([]*domain.Property, len(refs))
	sem := semaphore.NewWeighted(r.concurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if p, ok := loaded[ref.ID]; ok {
			slots[i] = &p
			continue
		}

		wg.Add(1)
		go func(index int, id int64) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				log.Warn("property fetch cancelled", sl.Err(&domain.PartialResolutionError{ID: id, Err: err}))
				return
			}
			defer sem.Release(1)

			p, err := metrics.WrapWithMetrics(ctx, r.metrics, metrics.ServiceFetchByID,
				func(ctx context.Context) (domain.Property, error) {
					return r.fetcher.FetchPropertyByID(ctx, id)
				})
			if err != nil {
				log.Warn("failed to resolve ai result", sl.Err(&domain.PartialResolutionError{ID: id, Err: err}))
				return
			}
			slots[index] = &p
		}(i, ref.ID)
	}

	wg.Wait()

	out := make([]domain.Property, 0, len(refs))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	// AI может вернуть одну запись дважды; в выдаче остаётся первая позиция.
	return lo.UniqBy(out, func(p domain.Property) int64 { return p.ID })
}
