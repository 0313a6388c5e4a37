package chips

import (
	"context"
	"testing"

	"property_search/internal/domain"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockActions мок действий сессии (с testify)
type MockActions struct {
	mock.Mock
}

func (m *MockActions) CommitToggle(ctx context.Context, key domain.ParamKey, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockActions) CommitPatch(ctx context.Context, patch domain.FilterPatch) error {
	args := m.Called(ctx, patch)
	return args.Error(0)
}

func (m *MockActions) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testLimits() domain.RangeLimits {
	return domain.RangeLimits{
		Price: map[domain.Currency]domain.Bound{
			domain.CurrencyUSD: {Min: 0, Max: 90000, Step: 1000},
			domain.CurrencyARS: {Min: 0, Max: 9000000, Step: 100000},
		},
		Area:    domain.Bound{Min: 0, Max: 500, Step: 10},
		Covered: domain.Bound{Min: 0, Max: 300, Step: 10},
	}
}

func fullState(t *testing.T, limits domain.RangeLimits) domain.FilterState {
	t.Helper()

	s := domain.DefaultFilterState(limits)
	steps := []struct {
		key   domain.ParamKey
		value string
	}{
		{domain.ParamRooms, "2"},
		{domain.ParamOperation, "VENTA"},
		{domain.ParamCurrency, "USD"},
		{domain.ParamCredit, "true"},
		{domain.ParamFinancing, "true"},
		{domain.ParamTypes, "Casa"},
		{domain.ParamCities, "Bahía Blanca"},
		{domain.ParamNeighborhoods, "Centro"},
		{domain.ParamNeighborhoodTypes, "Barrio Privado"},
		{domain.ParamRooms, "3"},
	}
	for _, st := range steps {
		var err error
		s, err = s.Toggle(st.key, st.value, limits)
		require.NoError(t, err)
	}
	s = s.ToggleAmenity(1)

	var err error
	s, err = s.WithPatch(domain.FilterPatch{
		AreaRange:  &domain.Range{From: 10, To: 499},
		PriceRange: &domain.Range{From: 20000, To: 60000},
	}, limits)
	require.NoError(t, err)
	return s
}

func TestDerive_OrderAndLabels(t *testing.T) {
	limits := testLimits()
	chips := Derive(fullState(t, limits), limits, &MockActions{})

	labels := lo.Map(chips, func(c Chip, _ int) string { return c.Label })
	assert.Equal(t, []string{
		"VENTA",
		"USD",
		"Apto Crédito",
		"Financiamiento",
		"Casa",
		"Bahía Blanca",
		"Centro",
		"Barrio Privado",
		"2",
		"3+",
		"USD 20000-60000",
		"Sup 10-499",
		"1 caracts",
	}, labels)
}

func TestDerive_DefaultStateHasNoChips(t *testing.T) {
	limits := testLimits()
	assert.Empty(t, Derive(domain.DefaultFilterState(limits), limits, &MockActions{}))

	// Валюта без сужения цены даёт только чип валюты.
	s, err := domain.DefaultFilterState(limits).Toggle(domain.ParamCurrency, "ARS", limits)
	require.NoError(t, err)
	chips := Derive(s, limits, &MockActions{})
	require.Len(t, chips, 1)
	assert.Equal(t, "ARS", chips[0].Label)
}

func TestDerive_ClearActions(t *testing.T) {
	limits := testLimits()
	ctx := context.Background()
	actions := &MockActions{}
	chips := Derive(fullState(t, limits), limits, actions)

	fullArea := limits.Area.Full()
	actions.On("CommitToggle", ctx, domain.ParamOperation, "VENTA").Return(nil).Once()
	actions.On("CommitToggle", ctx, domain.ParamRooms, "3").Return(nil).Once()
	actions.On("Reset", ctx).Return(nil).Once()
	actions.On("CommitPatch", ctx, domain.FilterPatch{AreaRange: &fullArea}).Return(nil).Once()
	actions.On("CommitPatch", ctx, domain.FilterPatch{Amenities: []int64{}}).Return(nil).Once()

	for _, key := range []string{"operation:VENTA", "rooms:3", "price", "area", "amenities"} {
		chip, ok := Find(chips, key)
		require.True(t, ok, key)
		require.NoError(t, chip.Clear(ctx))
	}

	actions.AssertExpectations(t)
}

func TestDerive_CoveredChip(t *testing.T) {
	limits := testLimits()
	s, err := domain.DefaultFilterState(limits).WithPatch(domain.FilterPatch{
		CoveredRange: &domain.Range{From: 50, To: 300},
	}, limits)
	require.NoError(t, err)

	chips := Derive(s, limits, &MockActions{})
	require.Len(t, chips, 1)
	assert.Equal(t, "covered", chips[0].Key)
	assert.Equal(t, "Cub 50-300", chips[0].Label)
}
