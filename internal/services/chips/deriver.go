package chips

import (
	"context"
	"fmt"
	"strconv"

	"property_search/internal/domain"
)

// Actions зафиксированные (с отправкой запроса) мутации, через которые чипы снимают фильтр.
type Actions interface {
	CommitToggle(ctx context.Context, key domain.ParamKey, value string) error
	CommitPatch(ctx context.Context, patch domain.FilterPatch) error
	Reset(ctx context.Context) error
}

// Chip активный фильтр в сводке: подпись и действие, выполняющее обратную мутацию.
type Chip struct {
	Key   string                          `json:"key"`
	Label string                          `json:"label"`
	Clear func(ctx context.Context) error `json:"-"`
}

const (
	labelCredit    = "Apto Crédito"
	labelFinancing = "Financiamiento"
)

// Derive строит упорядоченный список чипов. Порядок стабилен:
// операция, валюта, кредит, финансирование, множества в порядке вставки, цена, площади, характеристики.
// Пустой список означает, что ни один фильтр не активен.
func Derive(state domain.FilterState, limits domain.RangeLimits, actions Actions) []Chip {
	out := make([]Chip, 0, 8)

	toggle := func(key domain.ParamKey, value, label string) {
		out = append(out, Chip{
			Key:   fmt.Sprintf("%s:%s", key, value),
			Label: label,
			Clear: func(ctx context.Context) error {
				return actions.CommitToggle(ctx, key, value)
			},
		})
	}

	if state.Operation != "" {
		toggle(domain.ParamOperation, state.Operation.String(), state.Operation.String())
	}
	if state.Currency != "" {
		toggle(domain.ParamCurrency, state.Currency.String(), state.Currency.String())
	}
	if state.Credit {
		toggle(domain.ParamCredit, "true", labelCredit)
	}
	if state.Financing {
		toggle(domain.ParamFinancing, "true", labelFinancing)
	}

	for _, set := range []struct {
		key    domain.ParamKey
		values []string
	}{
		{domain.ParamTypes, state.Types},
		{domain.ParamCities, state.Cities},
		{domain.ParamNeighborhoods, state.Neighborhoods},
		{domain.ParamNeighborhoodTypes, state.NeighborhoodTypes},
	} {
		for _, v := range set.values {
			toggle(set.key, v, v)
		}
	}
	for _, n := range state.Rooms {
		toggle(domain.ParamRooms, strconv.Itoa(n), roomsLabel(n))
	}

	// Частичный сброс цены не определён, поэтому чип цены делает полный reset.
	if state.Currency != "" && state.PriceRange != limits.DefaultPriceRange(state.Currency) {
		out = append(out, Chip{
			Key:   "price",
			Label: fmt.Sprintf("%s %s", state.Currency, formatRange(state.PriceRange)),
			Clear: actions.Reset,
		})
	}

	if !limits.Area.IsFullRange(state.AreaRange) {
		full := limits.Area.Full()
		out = append(out, Chip{
			Key:   "area",
			Label: "Sup " + formatRange(state.AreaRange),
			Clear: func(ctx context.Context) error {
				return actions.CommitPatch(ctx, domain.FilterPatch{AreaRange: &full})
			},
		})
	}
	if !limits.Covered.IsFullRange(state.CoveredRange) {
		full := limits.Covered.Full()
		out = append(out, Chip{
			Key:   "covered",
			Label: "Cub " + formatRange(state.CoveredRange),
			Clear: func(ctx context.Context) error {
				return actions.CommitPatch(ctx, domain.FilterPatch{CoveredRange: &full})
			},
		})
	}

	if len(state.Amenities) > 0 {
		out = append(out, Chip{
			Key:   "amenities",
			Label: fmt.Sprintf("%d caracts", len(state.Amenities)),
			Clear: func(ctx context.Context) error {
				return actions.CommitPatch(ctx, domain.FilterPatch{Amenities: []int64{}})
			},
		})
	}

	return out
}

// Find ищет чип по ключу.
func Find(list []Chip, key string) (Chip, bool) {
	for _, c := range list {
		if c.Key == key {
			return c, true
		}
	}
	return Chip{}, false
}

func roomsLabel(n int) string {
	if n >= domain.RoomsThreshold {
		return strconv.Itoa(n) + "+"
	}
	return strconv.Itoa(n)
}

func formatRange(r domain.Range) string {
	return strconv.FormatFloat(r.From, 'f', -1, 64) + "-" + strconv.FormatFloat(r.To, 'f', -1, 64)
}
