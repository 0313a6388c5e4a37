package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"property_search/internal/config"
	"property_search/internal/domain"
	"property_search/internal/services/limits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSource
type MockSource struct {
	LoadCatalogFunc func(ctx context.Context) ([]domain.Property, error)
}

func (m *MockSource) LoadCatalog(ctx context.Context) ([]domain.Property, error) {
	if m.LoadCatalogFunc != nil {
		return m.LoadCatalogFunc(ctx)
	}
	return nil, nil
}

func testLimitsConfig() config.LimitsConfig {
	return config.LimitsConfig{
		USDMax: 1000000, USDStep: 5000,
		ARSMax: 1000000000, ARSStep: 500000,
		AreaMax: 1000, AreaStep: 10,
		CoveredMax: 1000, CoveredStep: 10,
	}
}

func sampleCatalog() []domain.Property {
	return []domain.Property{
		{
			ID: 1, Operation: domain.OperationSale, Currency: domain.CurrencyUSD, Price: 72000, Area: 240,
			Neighborhood: domain.Neighborhood{ID: 10, Name: "Palihue", City: "Bahía Blanca", Type: "abierto"},
			Type:         domain.PropertyType{ID: 1, Name: "Casa"},
			Amenities:    []domain.Amenity{{ID: 3, Name: "Pileta"}},
		},
		{
			ID: 2, Operation: domain.OperationRent, Currency: domain.CurrencyARS, Price: 450000, Area: 60,
			Neighborhood: domain.Neighborhood{ID: 11, Name: "Centro", City: "bahia blanca ", Type: "abierto"},
			Type:         domain.PropertyType{ID: 2, Name: "Departamento"},
			Amenities:    []domain.Amenity{{ID: 3, Name: "Pileta"}, {ID: 4, Name: "Ascensor"}},
		},
		{
			ID: 3, Operation: domain.OperationSale, Currency: domain.CurrencyUSD, Price: 130000,
			Neighborhood: domain.Neighborhood{ID: 12, Name: "Los Álamos", City: "Monte Hermoso", Type: "cerrado"},
			Type:         domain.PropertyType{ID: 1, Name: "Casa"},
		},
	}
}

func newTestService(source Source) *Service {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return New(log, source, limits.NewResolver(testLimitsConfig()), nil)
}

func TestService_BeforeLoadUsesDefaults(t *testing.T) {
	s := newTestService(&MockSource{})

	assert.Empty(t, s.GetLoadedProperties())
	assert.Equal(t, limits.Defaults(testLimitsConfig()), s.Limits())
	assert.True(t, s.LoadedAt().IsZero())
}

func TestService_Load(t *testing.T) {
	s := newTestService(&MockSource{
		LoadCatalogFunc: func(ctx context.Context) ([]domain.Property, error) {
			return sampleCatalog(), nil
		},
	})

	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.GetLoadedProperties(), 3)

	facets := s.Facets()
	assert.Equal(t, []string{"Bahía Blanca", "Monte Hermoso"}, facets.Cities)
	assert.Equal(t, []domain.Operation{domain.OperationSale, domain.OperationRent}, facets.Operations)
	assert.Equal(t, []string{"abierto", "cerrado"}, facets.NeighborhoodTypes)
	assert.Len(t, facets.Types, 2)
	assert.Len(t, facets.Amenities, 2)

	l := s.Limits()
	assert.Equal(t, 130000.0, l.Price[domain.CurrencyUSD].Max)
	assert.Equal(t, 500000.0, l.Price[domain.CurrencyARS].Max)
	assert.Equal(t, 240.0, l.Area.Max)
}

func TestService_Lookups(t *testing.T) {
	s := newTestService(&MockSource{
		LoadCatalogFunc: func(ctx context.Context) ([]domain.Property, error) {
			return sampleCatalog(), nil
		},
	})
	require.NoError(t, s.Load(context.Background()))

	name, ok := s.AmenityName(4)
	assert.True(t, ok)
	assert.Equal(t, "Ascensor", name)

	_, ok = s.AmenityName(99)
	assert.False(t, ok)

	city, ok := s.NeighborhoodCity("los alamos")
	assert.True(t, ok)
	assert.Equal(t, "Monte Hermoso", city)
}

func TestService_LoadFailureKeepsSnapshot(t *testing.T) {
	fail := false
	s := newTestService(&MockSource{
		LoadCatalogFunc: func(ctx context.Context) ([]domain.Property, error) {
			if fail {
				return nil, errors.New("db down")
			}
			return sampleCatalog(), nil
		},
	})
	require.NoError(t, s.Load(context.Background()))

	fail = true
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, s.GetLoadedProperties(), 3)
}

func TestService_GetLoadedPropertiesReturnsCopy(t *testing.T) {
	s := newTestService(&MockSource{
		LoadCatalogFunc: func(ctx context.Context) ([]domain.Property, error) {
			return sampleCatalog(), nil
		},
	})
	require.NoError(t, s.Load(context.Background()))

	got := s.GetLoadedProperties()
	got[0].Title = "changed"
	assert.NotEqual(t, "changed", s.GetLoadedProperties()[0].Title)
}

func TestService_StartRejectsBadSpec(t *testing.T) {
	s := newTestService(&MockSource{})
	assert.Error(t, s.Start(context.Background(), "not a cron spec"))
}
