package aisearch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"property_search/internal/domain"
	"property_search/internal/services/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPromptSearcher
type MockPromptSearcher struct {
	SearchByAIPromptFunc func(ctx context.Context, prompt string) ([]domain.AIResultRef, error)
	calls                atomic.Int32
}

func (m *MockPromptSearcher) SearchByAIPrompt(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
	m.calls.Add(1)
	if m.SearchByAIPromptFunc != nil {
		return m.SearchByAIPromptFunc(ctx, prompt)
	}
	return nil, nil
}

// MockFetcher
type MockFetcher struct {
	FetchPropertyByIDFunc func(ctx context.Context, id int64) (domain.Property, error)

	mu      sync.Mutex
	fetched []int64
}

func (m *MockFetcher) FetchPropertyByID(ctx context.Context, id int64) (domain.Property, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, id)
	m.mu.Unlock()
	if m.FetchPropertyByIDFunc != nil {
		return m.FetchPropertyByIDFunc(ctx, id)
	}
	return domain.Property{ID: id}, nil
}

func (m *MockFetcher) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetched)
}

type staticCatalog []domain.Property

func (c staticCatalog) GetLoadedProperties() []domain.Property { return c }

type MockReporter struct {
	mu       sync.Mutex
	reported []error
}

func (m *MockReporter) Report(_ context.Context, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reported = append(m.reported, err)
}

func newTestResolver(ai PromptSearcher, fetcher PropertyFetcher, catalog []domain.Property) (*Resolver, *search.ResultSet, *MockReporter) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	results := search.NewResultSet()
	reporter := &MockReporter{}
	return New(log, ai, fetcher, staticCatalog(catalog), reporter, results, nil, 2), results, reporter
}

func ids(items []domain.Property) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestResolver_Search_EmptyPromptMakesNoCalls(t *testing.T) {
	ai := &MockPromptSearcher{}
	fetcher := &MockFetcher{}
	r, results, _ := newTestResolver(ai, fetcher, nil)

	got, err := r.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.Nil(t, got)

	ve, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domain.MsgEmptyPrompt, ve.Message)
	assert.Equal(t, int32(0), ai.calls.Load())
	assert.Equal(t, 0, fetcher.calls())
	assert.Equal(t, domain.MsgEmptyPrompt, results.Snapshot().Error)
}

func TestResolver_Search_PreservesOrderAndDropsFailures(t *testing.T) {
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			assert.Equal(t, "casa con pileta", prompt)
			return []domain.AIResultRef{{ID: 2}, {ID: 1}, {ID: 3}}, nil
		},
	}
	fetcher := &MockFetcher{
		FetchPropertyByIDFunc: func(ctx context.Context, id int64) (domain.Property, error) {
			if id == 2 {
				return domain.Property{}, errors.New("backend unavailable")
			}
			return domain.Property{ID: id, Title: "fetched"}, nil
		},
	}
	r, results, _ := newTestResolver(ai, fetcher, nil)

	got, err := r.Search(context.Background(), "  casa con pileta ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(got))
	assert.Equal(t, []int64{1, 3}, ids(results.Snapshot().Results))
}

func TestResolver_Search_UsesCatalogBeforeFetching(t *testing.T) {
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			return []domain.AIResultRef{{ID: 5}, {ID: 9}, {ID: 4}}, nil
		},
	}
	fetcher := &MockFetcher{}
	catalog := []domain.Property{{ID: 4, Title: "loaded"}, {ID: 5, Title: "loaded"}}
	r, _, _ := newTestResolver(ai, fetcher, catalog)

	got, err := r.Search(context.Background(), "depto")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 9, 4}, ids(got))
	assert.Equal(t, []int64{9}, fetcher.fetched)
	assert.Equal(t, "loaded", got[0].Title)
}

func TestResolver_Search_ZeroRefs(t *testing.T) {
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			return []domain.AIResultRef{}, nil
		},
	}
	r, results, _ := newTestResolver(ai, &MockFetcher{}, nil)

	got, err := r.Search(context.Background(), "algo raro")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	snap := results.Snapshot()
	assert.NotNil(t, snap.Results)
	assert.Empty(t, snap.Error)
}

func TestResolver_Search_AIFailure(t *testing.T) {
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			return nil, errors.New("502 bad gateway")
		},
	}
	r, results, reporter := newTestResolver(ai, &MockFetcher{}, nil)

	got, err := r.Search(context.Background(), "quinta")
	require.Error(t, err)
	assert.Empty(t, got)

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)

	snap := results.Snapshot()
	assert.Empty(t, snap.Results)
	assert.Equal(t, domain.MsgAISearchFailed, snap.Error)
	assert.Len(t, reporter.reported, 1)
}

func TestResolver_Search_ManyFetchesBounded(t *testing.T) {
	refs := make([]domain.AIResultRef, 0, 20)
	for i := int64(1); i <= 20; i++ {
		refs = append(refs, domain.AIResultRef{ID: i})
	}
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			return refs, nil
		},
	}

	var inFlight, peak atomic.Int32
	fetcher := &MockFetcher{
		FetchPropertyByIDFunc: func(ctx context.Context, id int64) (domain.Property, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			return domain.Property{ID: id}, nil
		},
	}
	r, _, _ := newTestResolver(ai, fetcher, nil)

	got, err := r.Search(context.Background(), "lote")
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(20), got[19].ID)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestResolver_Search_DuplicateRefsMatchVisibleResults(t *testing.T) {
	ai := &MockPromptSearcher{
		SearchByAIPromptFunc: func(ctx context.Context, prompt string) ([]domain.AIResultRef, error) {
			return []domain.AIResultRef{{ID: 4}, {ID: 9}, {ID: 4}}, nil
		},
	}
	r, results, _ := newTestResolver(ai, &MockFetcher{}, []domain.Property{{ID: 4, Title: "Casa"}})

	got, err := r.Search(context.Background(), "casa")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, ids(got))
	assert.Equal(t, ids(results.Snapshot().Results), ids(got))
}
