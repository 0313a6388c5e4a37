package domain

import (
	"net/url"
	"strconv"
)

// ServerQuery минимальный запрос к /property/search. nil и пустые поля не отправляются.
type ServerQuery struct {
	PriceFrom         *float64 `json:"priceFrom,omitempty"`
	PriceTo           *float64 `json:"priceTo,omitempty"`
	AreaFrom          *float64 `json:"areaFrom,omitempty"`
	AreaTo            *float64 `json:"areaTo,omitempty"`
	CoveredAreaFrom   *float64 `json:"coveredAreaFrom,omitempty"`
	CoveredAreaTo     *float64 `json:"coveredAreaTo,omitempty"`
	Operation         string   `json:"operation,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	Credit            *bool    `json:"credit,omitempty"`
	Financing         *bool    `json:"financing,omitempty"`
	Types             []string `json:"types,omitempty"`
	Cities            []string `json:"cities,omitempty"`
	Neighborhoods     []string `json:"neighborhoods,omitempty"`
	NeighborhoodTypes []string `json:"neighborhoodTypes,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`
}

// Values кодирует запрос в query-параметры; множества идут повторяющимися параметрами.
func (q ServerQuery) Values() url.Values {
	v := url.Values{}

	setFloat := func(key string, f *float64) {
		if f != nil {
			v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	setFloat("priceFrom", q.PriceFrom)
	setFloat("priceTo", q.PriceTo)
	setFloat("areaFrom", q.AreaFrom)
	setFloat("areaTo", q.AreaTo)
	setFloat("coveredAreaFrom", q.CoveredAreaFrom)
	setFloat("coveredAreaTo", q.CoveredAreaTo)

	if q.Operation != "" {
		v.Set("operation", q.Operation)
	}
	if q.Currency != "" {
		v.Set("currency", q.Currency)
	}
	if q.Credit != nil {
		v.Set("credit", strconv.FormatBool(*q.Credit))
	}
	if q.Financing != nil {
		v.Set("financing", strconv.FormatBool(*q.Financing))
	}

	for key, values := range map[string][]string{
		"types":             q.Types,
		"cities":            q.Cities,
		"neighborhoods":     q.Neighborhoods,
		"neighborhoodTypes": q.NeighborhoodTypes,
		"amenities":         q.Amenities,
	} {
		for _, item := range values {
			v.Add(key, item)
		}
	}

	return v
}
