package metrics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceType коллаборатор, вызовы которого измеряются.
type ServiceType string

const (
	ServiceBackendSearch ServiceType = "backend_search"
	ServiceTextSearch    ServiceType = "text_search"
	ServiceAISearch      ServiceType = "ai_search"
	ServiceFetchByID     ServiceType = "fetch_by_id"
	ServiceCatalogLoad   ServiceType = "catalog_load"
)

// Services все измеряемые коллабораторы.
var Services = []ServiceType{
	ServiceBackendSearch,
	ServiceTextSearch,
	ServiceAISearch,
	ServiceFetchByID,
	ServiceCatalogLoad,
}

type counters struct {
	callsTotal     atomic.Int64
	errorsTotal    atomic.Int64
	latencyTotalMs atomic.Int64
	lastLatencyMs  atomic.Int64
}

// CallMetrics метрики вызовов внешних коллабораторов поиска.
// Счётчики доступны через GetStats и экспортируются в Prometheus.
type CallMetrics struct {
	log      *slog.Logger
	counters map[ServiceType]*counters

	calls   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

var (
	globalMetrics *CallMetrics
	metricsOnce   sync.Once
)

// New создаёт метрики и регистрирует их в reg. reg может быть nil.
func New(log *slog.Logger, reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		log:      log,
		counters: make(map[ServiceType]*counters, len(Services)),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "property_search",
			Name:      "collaborator_calls_total",
			Help:      "Total calls to search collaborators.",
		}, []string{"service"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "property_search",
			Name:      "collaborator_errors_total",
			Help:      "Failed calls to search collaborators.",
		}, []string{"service"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "property_search",
			Name:      "collaborator_latency_seconds",
			Help:      "Latency of calls to search collaborators.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
	}
	for _, s := range Services {
		m.counters[s] = &counters{}
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.errors, m.latency)
	}
	return m
}

// GetCallMetrics возвращает глобальный экземпляр, зарегистрированный в prometheus.DefaultRegisterer.
func GetCallMetrics(log *slog.Logger) *CallMetrics {
	metricsOnce.Do(func() {
		globalMetrics = New(log, prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// RecordCall записывает вызов коллаборатора.
func (m *CallMetrics) RecordCall(service ServiceType, latency time.Duration, err error) {
	c, ok := m.counters[service]
	if !ok {
		return
	}

	latencyMs := latency.Milliseconds()
	c.callsTotal.Add(1)
	c.latencyTotalMs.Add(latencyMs)
	c.lastLatencyMs.Store(latencyMs)

	label := string(service)
	m.calls.WithLabelValues(label).Inc()
	m.latency.WithLabelValues(label).Observe(latency.Seconds())
	if err != nil {
		c.errorsTotal.Add(1)
		m.errors.WithLabelValues(label).Inc()
	}

	if m.log != nil {
		attrs := []any{
			slog.String("service", label),
			slog.Int64("latency_ms", latencyMs),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			m.log.Warn("collaborator call failed", attrs...)
		} else {
			m.log.Debug("collaborator call completed", attrs...)
		}
	}
}

// CallTimer помогает измерять время вызовов.
type CallTimer struct {
	metrics   *CallMetrics
	service   ServiceType
	startTime time.Time
}

// StartTimer начинает измерение времени вызова.
func (m *CallMetrics) StartTimer(service ServiceType) *CallTimer {
	return &CallTimer{
		metrics:   m,
		service:   service,
		startTime: time.Now(),
	}
}

// Stop останавливает таймер и записывает метрики.
func (t *CallTimer) Stop(err error) {
	t.metrics.RecordCall(t.service, time.Since(t.startTime), err)
}

// ServiceStats статистика по одному коллаборатору.
type ServiceStats struct {
	CallsTotal    int64   `json:"calls_total"`
	ErrorsTotal   int64   `json:"errors_total"`
	ErrorRate     float64 `json:"error_rate"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	LastLatencyMs int64   `json:"last_latency_ms"`
}

// GetStats возвращает текущую статистику по всем коллабораторам.
func (m *CallMetrics) GetStats() map[ServiceType]ServiceStats {
	out := make(map[ServiceType]ServiceStats, len(m.counters))
	for s, c := range m.counters {
		calls := c.callsTotal.Load()
		errs := c.errorsTotal.Load()

		var errorRate, avgLatency float64
		if calls > 0 {
			errorRate = float64(errs) / float64(calls)
			avgLatency = float64(c.latencyTotalMs.Load()) / float64(calls)
		}

		out[s] = ServiceStats{
			CallsTotal:    calls,
			ErrorsTotal:   errs,
			ErrorRate:     errorRate,
			AvgLatencyMs:  avgLatency,
			LastLatencyMs: c.lastLatencyMs.Load(),
		}
	}
	return out
}

// Reset сбрасывает атомарные счётчики. Prometheus-счётчики монотонны и не сбрасываются.
func (m *CallMetrics) Reset() {
	for _, c := range m.counters {
		c.callsTotal.Store(0)
		c.errorsTotal.Store(0)
		c.latencyTotalMs.Store(0)
		c.lastLatencyMs.Store(0)
	}
}

// WrapWithMetrics оборачивает функцию для автоматического сбора метрик. m может быть nil.
func WrapWithMetrics[T any](
	ctx context.Context,
	m *CallMetrics,
	service ServiceType,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	if m == nil {
		return fn(ctx)
	}
	timer := m.StartTimer(service)
	result, err := fn(ctx)
	timer.Stop(err)
	return result, err
}
