package domain

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Range упорядоченная пара значений слайдера.
type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// IsOrdered проверяет инвариант From <= To.
func (r Range) IsOrdered() bool {
	return r.From <= r.To
}

// ParamKey ключ фасета для toggleParam.
type ParamKey string

const (
	ParamOperation         ParamKey = "operation"
	ParamCurrency          ParamKey = "currency"
	ParamCredit            ParamKey = "credit"
	ParamFinancing         ParamKey = "financing"
	ParamTypes             ParamKey = "types"
	ParamCities            ParamKey = "cities"
	ParamNeighborhoods     ParamKey = "neighborhoods"
	ParamNeighborhoodTypes ParamKey = "neighborhoodTypes"
	ParamRooms             ParamKey = "rooms"
)

// RoomsThreshold значение rooms, означающее "3 и больше".
const RoomsThreshold = 3

// FilterState каноническое состояние всех фасетов поиска.
// Все переходы возвращают новое значение; слайсы исходного состояния не изменяются.
type FilterState struct {
	Operation         Operation `json:"operation"`
	Currency          Currency  `json:"currency"`
	PriceRange        Range     `json:"priceRange"`
	AreaRange         Range     `json:"areaRange"`
	CoveredRange      Range     `json:"coveredRange"`
	Rooms             []int     `json:"rooms"`
	Types             []string  `json:"types"`
	Cities            []string  `json:"cities"`
	Neighborhoods     []string  `json:"neighborhoods"`
	NeighborhoodTypes []string  `json:"neighborhoodTypes"`
	Amenities         []int64   `json:"amenities"`
	Credit            bool      `json:"credit"`
	Financing         bool      `json:"financing"`
}

// DefaultFilterState состояние по умолчанию: полные диапазоны, пустые множества, флаги выключены.
func DefaultFilterState(limits RangeLimits) FilterState {
	return FilterState{
		AreaRange:         limits.Area.Full(),
		CoveredRange:      limits.Covered.Full(),
		Rooms:             []int{},
		Types:             []string{},
		Cities:            []string{},
		Neighborhoods:     []string{},
		NeighborhoodTypes: []string{},
		Amenities:         []int64{},
	}
}

// Toggle переключает значение фасета. Для множеств значение добавляется или удаляется,
// для скаляров сбрасывается при совпадении с текущим, иначе устанавливается.
func (s FilterState) Toggle(key ParamKey, value string, limits RangeLimits) (FilterState, error) {
	next := s
	value = strings.TrimSpace(value)

	switch key {
	case ParamOperation:
		o := ParseOperation(value)
		if o == "" || !o.IsValid() {
			return s, invalidValue(key)
		}
		if next.Operation == o {
			next.Operation = ""
		} else {
			next.Operation = o
		}
	case ParamCurrency:
		c := ParseCurrency(value)
		if c == "" || !c.IsValid() {
			return s, invalidValue(key)
		}
		if next.Currency == c {
			next.Currency = ""
		} else {
			next.Currency = c
		}
		next.PriceRange = limits.DefaultPriceRange(next.Currency)
	case ParamCredit, ParamFinancing:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return s, invalidValue(key)
		}
		flag := &next.Credit
		if key == ParamFinancing {
			flag = &next.Financing
		}
		if *flag == v {
			v = false
		}
		// Кредит и финансирование имеют смысл только для продажи.
		if v && next.Operation != OperationSale {
			return s, nil
		}
		*flag = v
	case ParamRooms:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > RoomsThreshold {
			return s, invalidValue(key)
		}
		next.Rooms = toggleIn(next.Rooms, n)
	case ParamTypes, ParamCities, ParamNeighborhoods, ParamNeighborhoodTypes:
		if value == "" {
			return s, invalidValue(key)
		}
		switch key {
		case ParamTypes:
			next.Types = toggleIn(next.Types, value)
		case ParamCities:
			next.Cities = toggleIn(next.Cities, value)
		case ParamNeighborhoods:
			next.Neighborhoods = toggleIn(next.Neighborhoods, value)
		case ParamNeighborhoodTypes:
			next.NeighborhoodTypes = toggleIn(next.NeighborhoodTypes, value)
		}
	default:
		return s, &ValidationError{Field: string(key), Message: MsgInvalidValue, Err: ErrUnknownParam}
	}

	return next.normalized(), nil
}

// ToggleAmenity переключает характеристику.
func (s FilterState) ToggleAmenity(id int64) FilterState {
	next := s
	next.Amenities = toggleIn(next.Amenities, id)
	return next
}

// FilterPatch частичная замена состояния (setParams). nil-поля не меняются.
type FilterPatch struct {
	Operation         *Operation `json:"operation,omitempty"`
	Currency          *Currency  `json:"currency,omitempty"`
	PriceRange        *Range     `json:"priceRange,omitempty"`
	AreaRange         *Range     `json:"areaRange,omitempty"`
	CoveredRange      *Range     `json:"coveredRange,omitempty"`
	Rooms             []int      `json:"rooms,omitempty"`
	Types             []string   `json:"types,omitempty"`
	Cities            []string   `json:"cities,omitempty"`
	Neighborhoods     []string   `json:"neighborhoods,omitempty"`
	NeighborhoodTypes []string   `json:"neighborhoodTypes,omitempty"`
	Amenities         []int64    `json:"amenities,omitempty"`
	Credit            *bool      `json:"credit,omitempty"`
	Financing         *bool      `json:"financing,omitempty"`
}

// WithPatch применяет патч с проверкой диапазонов. При ошибке возвращается исходное состояние.
// Смена валюты без явного PriceRange сбрасывает цену на границы новой валюты.
func (s FilterState) WithPatch(p FilterPatch, limits RangeLimits) (FilterState, error) {
	next := s

	if p.Operation != nil {
		o := ParseOperation(p.Operation.String())
		if !o.IsValid() {
			return s, invalidValue(ParamOperation)
		}
		next.Operation = o
	}
	if p.Currency != nil {
		c := ParseCurrency(p.Currency.String())
		if !c.IsValid() {
			return s, invalidValue(ParamCurrency)
		}
		if c != s.Currency && p.PriceRange == nil {
			next.PriceRange = limits.DefaultPriceRange(c)
		}
		next.Currency = c
	}

	ranges := []struct {
		field string
		src   *Range
		dst   *Range
		msg   string
	}{
		{"priceRange", p.PriceRange, &next.PriceRange, MsgPriceOrder},
		{"areaRange", p.AreaRange, &next.AreaRange, MsgAreaOrder},
		{"coveredRange", p.CoveredRange, &next.CoveredRange, MsgCoveredOrder},
	}
	for _, r := range ranges {
		if r.src == nil {
			continue
		}
		if r.src.From < 0 || r.src.To < 0 {
			return s, NewValidationError(r.field, MsgNegativeValue)
		}
		if !r.src.IsOrdered() {
			return s, NewValidationError(r.field, r.msg)
		}
		*r.dst = *r.src
	}

	if p.Rooms != nil {
		for _, n := range p.Rooms {
			if n < 1 || n > RoomsThreshold {
				return s, invalidValue(ParamRooms)
			}
		}
		next.Rooms = lo.Uniq(p.Rooms)
	}
	if p.Types != nil {
		next.Types = lo.Uniq(p.Types)
	}
	if p.Cities != nil {
		next.Cities = lo.Uniq(p.Cities)
	}
	if p.Neighborhoods != nil {
		next.Neighborhoods = lo.Uniq(p.Neighborhoods)
	}
	if p.NeighborhoodTypes != nil {
		next.NeighborhoodTypes = lo.Uniq(p.NeighborhoodTypes)
	}
	if p.Amenities != nil {
		next.Amenities = lo.Uniq(p.Amenities)
	}
	if p.Credit != nil {
		next.Credit = *p.Credit
	}
	if p.Financing != nil {
		next.Financing = *p.Financing
	}

	return next.normalized(), nil
}

// Reclamp переносит диапазоны на новые границы, если пользователь их не сужал,
// то есть они всё ещё равны значениям по умолчанию для prev.
func (s FilterState) Reclamp(prev, next RangeLimits) FilterState {
	out := s
	if s.AreaRange == prev.Area.Full() {
		out.AreaRange = next.Area.Full()
	}
	if s.CoveredRange == prev.Covered.Full() {
		out.CoveredRange = next.Covered.Full()
	}
	if s.Currency != "" && s.PriceRange == prev.DefaultPriceRange(s.Currency) {
		out.PriceRange = next.DefaultPriceRange(s.Currency)
	}
	return out
}

// NeighborhoodSelectable проверяет, можно ли выбрать баррио из города city
// при текущем фильтре по городам. Уже выбранные баррио не снимаются.
func (s FilterState) NeighborhoodSelectable(city string) bool {
	if len(s.Cities) == 0 {
		return true
	}
	return lo.ContainsBy(s.Cities, func(c string) bool {
		return CitiesMatch(c, city)
	})
}

// HasRoom проверяет, выбрано ли количество комнат n.
func (s FilterState) HasRoom(n int) bool {
	return lo.Contains(s.Rooms, n)
}

func (s FilterState) normalized() FilterState {
	if s.Operation != OperationSale {
		s.Credit = false
		s.Financing = false
	}
	return s
}

func toggleIn[T comparable](set []T, v T) []T {
	if lo.Contains(set, v) {
		return lo.Without(set, v)
	}
	out := make([]T, 0, len(set)+1)
	out = append(out, set...)
	return append(out, v)
}

func invalidValue(key ParamKey) *ValidationError {
	return NewValidationError(string(key), MsgInvalidValue)
}
