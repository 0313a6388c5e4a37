package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/lib/metrics"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
)

// Source откуда загружается каталог: REST-бэкенд или реплика БД.
type Source interface {
	LoadCatalog(ctx context.Context) ([]domain.Property, error)
}

// LimitsResolver вычисляет границы слайдеров по каталогу.
type LimitsResolver interface {
	Defaults() domain.RangeLimits
	Resolve(properties []domain.Property) domain.RangeLimits
}

// Facets значения для списков фильтров, выведенные из каталога.
type Facets struct {
	Cities            []string              `json:"cities"`
	Operations        []domain.Operation    `json:"operations"`
	Neighborhoods     []domain.Neighborhood `json:"neighborhoods"`
	NeighborhoodTypes []string              `json:"neighborhoodTypes"`
	Types             []domain.PropertyType `json:"types"`
	Amenities         []domain.Amenity      `json:"amenities"`
}

// Service хранит снимок загруженного каталога и периодически его обновляет.
// Читатели получают копии.
type Service struct {
	log      *slog.Logger
	source   Source
	resolver LimitsResolver
	metrics  *metrics.CallMetrics

	mu         sync.RWMutex
	properties []domain.Property
	facets     Facets
	limits     domain.RangeLimits
	amenities  map[int64]string
	loadedAt   time.Time

	cron *cron.Cron
}

func New(log *slog.Logger, source Source, resolver LimitsResolver, m *metrics.CallMetrics) *Service {
	return &Service{
		log:        log,
		source:     source,
		resolver:   resolver,
		metrics:    m,
		properties: []domain.Property{},
		limits:     resolver.Defaults(),
		amenities:  map[int64]string{},
		cron:       cron.New(),
	}
}

// Load перечитывает каталог из источника. При ошибке остаётся предыдущий снимок.
func (s *Service) Load(ctx context.Context) error {
	const op = "catalog.Service.Load"
	log := s.log.With(slog.String("op", op))

	properties, err := metrics.WrapWithMetrics(ctx, s.metrics, metrics.ServiceCatalogLoad, s.source.LoadCatalog)
	if err != nil {
		log.Error("failed to load catalog", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if properties == nil {
		properties = []domain.Property{}
	}

	facets := deriveFacets(properties)
	limits := s.resolver.Resolve(properties)
	amenities := lo.SliceToMap(facets.Amenities, func(a domain.Amenity) (int64, string) {
		return a.ID, a.Name
	})

	s.mu.Lock()
	s.properties = properties
	s.facets = facets
	s.limits = limits
	s.amenities = amenities
	s.loadedAt = time.Now()
	s.mu.Unlock()

	log.Info("catalog loaded",
		slog.Int("properties", len(properties)),
		slog.Int("cities", len(facets.Cities)),
		slog.Int("amenities", len(facets.Amenities)),
	)
	return nil
}

// Start запускает периодическое обновление по cron-выражению.
func (s *Service) Start(ctx context.Context, spec string) error {
	const op = "catalog.Service.Start"

	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Load(ctx); err != nil {
			s.log.Warn("scheduled catalog refresh failed", slog.String("op", op), sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cron.Start()
	s.log.Info("catalog refresh scheduled", slog.String("op", op), slog.String("spec", spec))
	return nil
}

// Stop останавливает обновление и ждёт завершения текущего запуска.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

// GetLoadedProperties копия текущего снимка.
func (s *Service) GetLoadedProperties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Property, len(s.properties))
	copy(out, s.properties)
	return out
}

// Limits границы слайдеров по текущему снимку.
func (s *Service) Limits() domain.RangeLimits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

func (s *Service) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facets
}

// AmenityName имя характеристики по ID.
func (s *Service) AmenityName(id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.amenities[id]
	return name, ok
}

// NeighborhoodCity город баррио по имени.
func (s *Service) NeighborhoodCity(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := lo.Find(s.facets.Neighborhoods, func(n domain.Neighborhood) bool {
		return domain.NormalizeText(n.Name) == domain.NormalizeText(name)
	})
	if !ok {
		return "", false
	}
	return n.City, true
}

// LoadedAt время последней успешной загрузки.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func deriveFacets(properties []domain.Property) Facets {
	neighborhoods := lo.UniqBy(
		lo.FilterMap(properties, func(p domain.Property, _ int) (domain.Neighborhood, bool) {
			return p.Neighborhood, p.Neighborhood.Name != ""
		}),
		func(n domain.Neighborhood) string { return domain.NormalizeText(n.Name) },
	)

	operations := lo.Uniq(lo.FilterMap(properties, func(p domain.Property, _ int) (domain.Operation, bool) {
		return p.Operation, p.Operation != ""
	}))

	neighborhoodTypes := lo.Uniq(lo.FilterMap(neighborhoods, func(n domain.Neighborhood, _ int) (string, bool) {
		return n.Type, n.Type != ""
	}))

	types := lo.UniqBy(
		lo.FilterMap(properties, func(p domain.Property, _ int) (domain.PropertyType, bool) {
			return p.Type, p.Type.Name != ""
		}),
		func(t domain.PropertyType) string { return t.Name },
	)

	amenities := lo.UniqBy(
		lo.FlatMap(properties, func(p domain.Property, _ int) []domain.Amenity { return p.Amenities }),
		func(a domain.Amenity) int64 { return a.ID },
	)

	return Facets{
		Cities:            domain.UniqueCities(neighborhoods),
		Operations:        operations,
		Neighborhoods:     neighborhoods,
		NeighborhoodTypes: neighborhoodTypes,
		Types:             types,
		Amenities:         amenities,
	}
}
