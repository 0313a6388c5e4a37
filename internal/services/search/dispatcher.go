package search

import (
	"context"
	"log/slog"
	"strings"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/lib/metrics"
)

// QuerySearcher поиск по фасетам (/property/search).
type QuerySearcher interface {
	SearchByQuery(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error)
}

// TextSearcher текстовый поиск по заголовку и описанию.
type TextSearcher interface {
	SearchByText(ctx context.Context, text string) ([]domain.Property, error)
}

// Catalog снимок загруженного каталога, только чтение.
type Catalog interface {
	GetLoadedProperties() []domain.Property
}

// Viewer роль текущего зрителя.
type Viewer interface {
	IsPrivilegedViewer() bool
}

// ErrorReporter внешний получатель ошибок для показа пользователю.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// QueryBuilder строит минимальный запрос из состояния фильтров.
type QueryBuilder interface {
	Build(state domain.FilterState, limits domain.RangeLimits) domain.ServerQuery
}

// Dispatcher запускает поиск, применяет пост-фильтры и пишет результат в ResultSet.
type Dispatcher struct {
	log      *slog.Logger
	query    QuerySearcher
	text     TextSearcher
	catalog  Catalog
	builder  QueryBuilder
	viewer   Viewer
	reporter ErrorReporter
	results  *ResultSet
	metrics  *metrics.CallMetrics
}

func NewDispatcher(
	log *slog.Logger,
	query QuerySearcher,
	text TextSearcher,
	catalog Catalog,
	builder QueryBuilder,
	viewer Viewer,
	reporter ErrorReporter,
	results *ResultSet,
	m *metrics.CallMetrics,
) *Dispatcher {
	return &Dispatcher{
		log:      log,
		query:    query,
		text:     text,
		catalog:  catalog,
		builder:  builder,
		viewer:   viewer,
		reporter: reporter,
		results:  results,
		metrics:  m,
	}
}

// Results видимая выдача, в которую пишет диспетчер.
func (d *Dispatcher) Results() *ResultSet {
	return d.results
}

// Apply выполняет поиск по фасетам. Ошибка бэкенда превращается в пустую выдачу
// и сообщение; наружу возвращается *domain.NetworkError.
func (d *Dispatcher) Apply(ctx context.Context, state domain.FilterState, limits domain.RangeLimits) ([]domain.Property, error) {
	const op = "search.Dispatcher.Apply"
	log := d.log.With(slog.String("op", op))

	ticket := d.results.Begin()
	q := d.builder.Build(state, limits)

	found, err := metrics.WrapWithMetrics(ctx, d.metrics, metrics.ServiceBackendSearch,
		func(ctx context.Context) ([]domain.Property, error) {
			return d.query.SearchByQuery(ctx, q)
		})
	if err != nil {
		return d.fail(ctx, log, ticket, op, err)
	}

	filtered := FilterRooms(FilterVisible(found, d.viewer.IsPrivilegedViewer()), state.Rooms)
	d.deliver(log, ticket, filtered)

	return filtered, nil
}

// ApplyText выполняет текстовый поиск. Пустой текст показывает весь видимый каталог.
func (d *Dispatcher) ApplyText(ctx context.Context, text string) ([]domain.Property, error) {
	const op = "search.Dispatcher.ApplyText"
	log := d.log.With(slog.String("op", op))

	ticket := d.results.Begin()
	text = strings.TrimSpace(text)

	var found []domain.Property
	if text == "" {
		found = d.catalog.GetLoadedProperties()
	} else {
		var err error
		found, err = metrics.WrapWithMetrics(ctx, d.metrics, metrics.ServiceTextSearch,
			func(ctx context.Context) ([]domain.Property, error) {
				return d.text.SearchByText(ctx, text)
			})
		if err != nil {
			return d.fail(ctx, log, ticket, op, err)
		}
	}

	filtered := FilterVisible(found, d.viewer.IsPrivilegedViewer())
	d.deliver(log, ticket, filtered)

	return filtered, nil
}

func (d *Dispatcher) deliver(log *slog.Logger, ticket uint64, items []domain.Property) {
	if !d.results.Deliver(ticket, items, "") {
		log.Debug("stale search response discarded", slog.Uint64("ticket", ticket))
		return
	}
	log.Debug("search results delivered", slog.Int("count", len(items)), slog.Uint64("ticket", ticket))
}

func (d *Dispatcher) fail(ctx context.Context, log *slog.Logger, ticket uint64, op string, err error) ([]domain.Property, error) {
	netErr := &domain.NetworkError{Op: op, Err: err}
	log.Error("search failed", sl.Err(err), slog.Uint64("ticket", ticket))

	// Устаревший запрос не должен затирать выдачу и показывать ошибку.
	if d.results.Deliver(ticket, []domain.Property{}, domain.MsgSearchFailed) {
		d.reporter.Report(ctx, netErr)
	}

	return []domain.Property{}, netErr
}
