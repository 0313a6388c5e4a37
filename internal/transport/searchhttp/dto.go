package searchhttp

import (
	"time"

	"property_search/internal/domain"
	"property_search/internal/services/catalog"
	"property_search/internal/services/session"
)

type toggleRequest struct {
	Key    string `json:"key" validate:"required,oneof=operation currency credit financing types cities neighborhoods neighborhoodTypes rooms"`
	Value  string `json:"value" validate:"max=200"`
	Commit bool   `json:"commit"`
}

type paramsRequest struct {
	domain.FilterPatch
	Commit bool `json:"commit"`
}

type textRequest struct {
	Text string `json:"text" validate:"max=500"`
	// Submit выполняет поиск сразу, иначе после паузы ввода
	Submit bool `json:"submit"`
}

type aiRequest struct {
	Prompt string `json:"prompt" validate:"max=2000"`
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

type facetsResponse struct {
	Facets   catalog.Facets     `json:"facets"`
	Limits   domain.RangeLimits `json:"limits"`
	LoadedAt time.Time          `json:"loadedAt"`
}

type errorResponse struct {
	Error string        `json:"error"`
	View  *session.View `json:"view,omitempty"`
}
