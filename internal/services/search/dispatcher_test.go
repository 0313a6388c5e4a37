package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"property_search/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockQuerySearcher
type MockQuerySearcher struct {
	SearchByQueryFunc func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error)
	calls             int
}

func (m *MockQuerySearcher) SearchByQuery(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
	m.calls++
	if m.SearchByQueryFunc != nil {
		return m.SearchByQueryFunc(ctx, q)
	}
	return nil, nil
}

// MockTextSearcher
type MockTextSearcher struct {
	SearchByTextFunc func(ctx context.Context, text string) ([]domain.Property, error)
	calls            int
}

func (m *MockTextSearcher) SearchByText(ctx context.Context, text string) ([]domain.Property, error) {
	m.calls++
	if m.SearchByTextFunc != nil {
		return m.SearchByTextFunc(ctx, text)
	}
	return nil, nil
}

type staticCatalog []domain.Property

func (c staticCatalog) GetLoadedProperties() []domain.Property { return c }

type staticViewer bool

func (v staticViewer) IsPrivilegedViewer() bool { return bool(v) }

// MockReporter
type MockReporter struct {
	reported []error
}

func (m *MockReporter) Report(_ context.Context, err error) {
	m.reported = append(m.reported, err)
}

type fakeBuilder struct {
	last domain.FilterState
}

func (b *fakeBuilder) Build(state domain.FilterState, _ domain.RangeLimits) domain.ServerQuery {
	b.last = state
	return domain.ServerQuery{Operation: state.Operation.String()}
}

func testLimits() domain.RangeLimits {
	return domain.RangeLimits{
		Price: map[domain.Currency]domain.Bound{
			domain.CurrencyUSD: {Max: 100000, Step: 5000},
		},
		Area:    domain.Bound{Max: 1000, Step: 10},
		Covered: domain.Bound{Max: 1000, Step: 10},
	}
}

type dispatcherDeps struct {
	query    *MockQuerySearcher
	text     *MockTextSearcher
	reporter *MockReporter
	builder  *fakeBuilder
}

func newTestDispatcher(privileged bool, catalog []domain.Property) (*Dispatcher, *dispatcherDeps) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	deps := &dispatcherDeps{
		query:    &MockQuerySearcher{},
		text:     &MockTextSearcher{},
		reporter: &MockReporter{},
		builder:  &fakeBuilder{},
	}
	d := NewDispatcher(log, deps.query, deps.text, staticCatalog(catalog), deps.builder,
		staticViewer(privileged), deps.reporter, NewResultSet(), nil)
	return d, deps
}

func TestDispatcher_Apply_HidesUnavailableForPublicViewer(t *testing.T) {
	d, deps := newTestDispatcher(false, nil)
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		return []domain.Property{
			{ID: 1, Status: "DISPONIBLE"},
			{ID: 2, Status: "vendido"},
		}, nil
	}

	got, err := d.Apply(context.Background(), domain.DefaultFilterState(testLimits()), testLimits())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	snap := d.Results().Snapshot()
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Results, 1)
}

func TestDispatcher_Apply_PrivilegedSeesEverything(t *testing.T) {
	d, deps := newTestDispatcher(true, nil)
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		return []domain.Property{
			{ID: 1, Status: "disponible"},
			{ID: 2, Status: "vendido"},
		}, nil
	}

	got, err := d.Apply(context.Background(), domain.DefaultFilterState(testLimits()), testLimits())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDispatcher_Apply_RoomsPostFilter(t *testing.T) {
	d, deps := newTestDispatcher(true, nil)
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		return []domain.Property{
			{ID: 1, Rooms: 2},
			{ID: 2, Rooms: 3},
			{ID: 3, Rooms: 4},
		}, nil
	}

	state := domain.DefaultFilterState(testLimits())
	state.Rooms = []int{3}

	got, err := d.Apply(context.Background(), state, testLimits())
	require.NoError(t, err)
	ids := []int64{}
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestDispatcher_Apply_BackendFailure(t *testing.T) {
	d, deps := newTestDispatcher(false, nil)
	backendErr := errors.New("connection refused")
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		return nil, backendErr
	}

	got, err := d.Apply(context.Background(), domain.DefaultFilterState(testLimits()), testLimits())
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Empty(t, got)

	snap := d.Results().Snapshot()
	assert.NotNil(t, snap.Results)
	assert.Empty(t, snap.Results)
	assert.Equal(t, domain.MsgSearchFailed, snap.Error)
	assert.False(t, snap.Busy)
	assert.Len(t, deps.reporter.reported, 1)
}

func TestDispatcher_Apply_StaleResponseDiscarded(t *testing.T) {
	d, deps := newTestDispatcher(true, nil)
	limits := testLimits()

	first := true
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		if first {
			first = false
			// Пока первый запрос в полёте, пользователь успевает запустить второй.
			_, err := d.Apply(ctx, domain.DefaultFilterState(limits), limits)
			require.NoError(t, err)
			return []domain.Property{{ID: 100}}, nil
		}
		return []domain.Property{{ID: 200}}, nil
	}

	_, err := d.Apply(context.Background(), domain.DefaultFilterState(limits), limits)
	require.NoError(t, err)

	snap := d.Results().Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, int64(200), snap.Results[0].ID)
	assert.Equal(t, 2, deps.query.calls)
}

func TestDispatcher_Apply_StaleFailureNotReported(t *testing.T) {
	d, deps := newTestDispatcher(true, nil)
	limits := testLimits()

	first := true
	deps.query.SearchByQueryFunc = func(ctx context.Context, q domain.ServerQuery) ([]domain.Property, error) {
		if first {
			first = false
			_, err := d.Apply(ctx, domain.DefaultFilterState(limits), limits)
			require.NoError(t, err)
			return nil, errors.New("timeout")
		}
		return []domain.Property{{ID: 7}}, nil
	}

	_, err := d.Apply(context.Background(), domain.DefaultFilterState(limits), limits)
	require.Error(t, err)

	snap := d.Results().Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Empty(t, snap.Error)
	assert.Empty(t, deps.reporter.reported)
}

func TestDispatcher_ApplyText_EmptyShowsCatalog(t *testing.T) {
	catalog := []domain.Property{
		{ID: 1, Status: "disponible"},
		{ID: 2, Status: "reservado"},
	}
	d, deps := newTestDispatcher(false, catalog)

	got, err := d.ApplyText(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 0, deps.text.calls)
}

func TestDispatcher_ApplyText_TrimsQuery(t *testing.T) {
	d, deps := newTestDispatcher(true, nil)
	var gotText string
	deps.text.SearchByTextFunc = func(ctx context.Context, text string) ([]domain.Property, error) {
		gotText = text
		return []domain.Property{{ID: 3}, {ID: 3}}, nil
	}

	_, err := d.ApplyText(context.Background(), "  casa quinta ")
	require.NoError(t, err)
	assert.Equal(t, "casa quinta", gotText)

	// дубликаты по ID схлопываются в выдаче
	assert.Len(t, d.Results().Snapshot().Results, 1)
}
