package limits

import (
	"math"

	"property_search/internal/config"
	"property_search/internal/domain"
)

// Resolver вычисляет границы слайдеров по загруженному каталогу.
// Чистая функция: без состояния кроме значений по умолчанию.
type Resolver struct {
	defaults domain.RangeLimits
}

func NewResolver(cfg config.LimitsConfig) *Resolver {
	return &Resolver{defaults: Defaults(cfg)}
}

// Defaults границы из конфигурации, используются для пустого каталога.
func Defaults(cfg config.LimitsConfig) domain.RangeLimits {
	return domain.RangeLimits{
		Price: map[domain.Currency]domain.Bound{
			domain.CurrencyUSD: {Min: 0, Max: cfg.USDMax, Step: cfg.USDStep},
			domain.CurrencyARS: {Min: 0, Max: cfg.ARSMax, Step: cfg.ARSStep},
		},
		Area:    domain.Bound{Min: 0, Max: cfg.AreaMax, Step: cfg.AreaStep},
		Covered: domain.Bound{Min: 0, Max: cfg.CoveredMax, Step: cfg.CoveredStep},
	}
}

// Defaults возвращает копию границ по умолчанию.
func (r *Resolver) Defaults() domain.RangeLimits {
	return cloneLimits(r.defaults)
}

// Resolve считает границы: цена по каждой валюте [0, max округлённый вверх до шага],
// площадь и покрытая площадь по всем объектам независимо от валюты.
func (r *Resolver) Resolve(properties []domain.Property) domain.RangeLimits {
	out := cloneLimits(r.defaults)

	maxPrice := make(map[domain.Currency]float64, len(domain.Currencies))
	var maxArea, maxCovered float64

	for _, p := range properties {
		if p.Price > 0 {
			if _, known := out.Price[p.Currency]; known && p.Price > maxPrice[p.Currency] {
				maxPrice[p.Currency] = p.Price
			}
		}
		maxArea = math.Max(maxArea, p.Area)
		maxCovered = math.Max(maxCovered, p.CoveredArea)
	}

	for c, b := range out.Price {
		if m := maxPrice[c]; m > 0 {
			out.Price[c] = domain.Bound{Min: 0, Max: roundUp(m, b.Step), Step: b.Step}
		}
	}
	if maxArea > 0 {
		out.Area = domain.Bound{Min: 0, Max: roundUp(maxArea, out.Area.Step), Step: out.Area.Step}
	}
	if maxCovered > 0 {
		out.Covered = domain.Bound{Min: 0, Max: roundUp(maxCovered, out.Covered.Step), Step: out.Covered.Step}
	}

	return out
}

func roundUp(v, step float64) float64 {
	if step <= 0 {
		return math.Ceil(v)
	}
	return math.Ceil(v/step) * step
}

func cloneLimits(l domain.RangeLimits) domain.RangeLimits {
	out := l
	out.Price = make(map[domain.Currency]domain.Bound, len(l.Price))
	for c, b := range l.Price {
		out.Price[c] = b
	}
	return out
}
