package domain

// Bound числовая граница фасета для слайдера.
type Bound struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Full возвращает полный диапазон границы.
func (b Bound) Full() Range {
	return Range{From: b.Min, To: b.Max}
}

// IsFullRange диапазон на полной границе считается неактивным фасетом.
func (b Bound) IsFullRange(r Range) bool {
	return r == b.Full()
}

// RangeLimits динамические границы, вычисленные по загруженному каталогу.
// Не хранятся в FilterState.
type RangeLimits struct {
	Price   map[Currency]Bound `json:"price"`
	Area    Bound              `json:"area"`
	Covered Bound              `json:"covered"`
}

// PriceBound возвращает границу цены для валюты.
func (l RangeLimits) PriceBound(c Currency) (Bound, bool) {
	b, ok := l.Price[c]
	return b, ok
}

// DefaultPriceRange диапазон цены по умолчанию для валюты. Без валюты цена не задана.
func (l RangeLimits) DefaultPriceRange(c Currency) Range {
	if c == "" {
		return Range{}
	}
	b, ok := l.PriceBound(c)
	if !ok {
		return Range{}
	}
	return b.Full()
}

// Equal сравнивает две границы покомпонентно.
func (l RangeLimits) Equal(other RangeLimits) bool {
	if l.Area != other.Area || l.Covered != other.Covered || len(l.Price) != len(other.Price) {
		return false
	}
	for c, b := range l.Price {
		if ob, ok := other.Price[c]; !ok || ob != b {
			return false
		}
	}
	return true
}
