package query

import (
	"strconv"

	"property_search/internal/domain"

	"github.com/samber/lo"
)

// AmenityCatalog отдаёт имя характеристики по ID. Бэкенд фильтрует характеристики по имени.
type AmenityCatalog interface {
	AmenityName(id int64) (string, bool)
}

// Builder превращает FilterState в минимальный запрос к бэкенду.
type Builder struct {
	amenities AmenityCatalog
}

func NewBuilder(amenities AmenityCatalog) *Builder {
	return &Builder{amenities: amenities}
}

// Build строит запрос, опуская фасеты в значении по умолчанию.
// rooms не отправляется никогда: порог "3+" применяется после ответа.
func (b *Builder) Build(state domain.FilterState, limits domain.RangeLimits) domain.ServerQuery {
	var q domain.ServerQuery

	if state.Currency != "" {
		q.Currency = state.Currency.String()
		if state.PriceRange != limits.DefaultPriceRange(state.Currency) {
			q.PriceFrom = lo.ToPtr(state.PriceRange.From)
			q.PriceTo = lo.ToPtr(state.PriceRange.To)
		}
	}

	if !limits.Area.IsFullRange(state.AreaRange) {
		q.AreaFrom = lo.ToPtr(state.AreaRange.From)
		q.AreaTo = lo.ToPtr(state.AreaRange.To)
	}
	if !limits.Covered.IsFullRange(state.CoveredRange) {
		q.CoveredAreaFrom = lo.ToPtr(state.CoveredRange.From)
		q.CoveredAreaTo = lo.ToPtr(state.CoveredRange.To)
	}

	q.Operation = state.Operation.String()
	if state.Operation == domain.OperationSale {
		if state.Credit {
			q.Credit = lo.ToPtr(true)
		}
		if state.Financing {
			q.Financing = lo.ToPtr(true)
		}
	}

	q.Types = nonEmpty(state.Types)
	q.Cities = nonEmpty(state.Cities)
	q.Neighborhoods = nonEmpty(state.Neighborhoods)
	q.NeighborhoodTypes = nonEmpty(state.NeighborhoodTypes)
	if len(state.Amenities) > 0 {
		q.Amenities = lo.Map(state.Amenities, func(id int64, _ int) string {
			return b.amenityName(id)
		})
	}

	return q
}

func (b *Builder) amenityName(id int64) string {
	if b.amenities != nil {
		if name, ok := b.amenities.AmenityName(id); ok {
			return name
		}
	}
	return strconv.FormatInt(id, 10)
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}
