package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal    *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	providerTime  *prometheus.HistogramVec
	fetchOnce     sync.Once
)

func registerFetchCollectors() {
	fetchOnce.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todayweather_fetch_total",
				Help: "Upstream payload lookups by source and the tier that served them",
			},
			[]string{"source", "tier"},
		)
		providerCalls = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todayweather_provider_requests_total",
				Help: "Outbound provider requests by outcome",
			},
			[]string{"provider", "outcome"},
		)
		providerTime = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todayweather_provider_duration_seconds",
				Help:    "Outbound provider request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		)
	})
}

// FetchMetrics implements ports.FetchMetrics and ports.ProviderMetrics.
// Counts are also kept in process for the health endpoint.
type FetchMetrics struct {
	mu        sync.Mutex
	tiers     map[string]int64
	failures  map[string]int64
	successes map[string]int64
}

func NewFetchMetrics() *FetchMetrics {
	registerFetchCollectors()
	return &FetchMetrics{
		tiers:     make(map[string]int64),
		failures:  make(map[string]int64),
		successes: make(map[string]int64),
	}
}

func (m *FetchMetrics) RecordFetch(source, tier string) {
	fetchTotal.WithLabelValues(source, tier).Inc()

	m.mu.Lock()
	m.tiers[tier]++
	m.mu.Unlock()
}

func (m *FetchMetrics) RecordProviderCall(_ context.Context, provider string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	providerCalls.WithLabelValues(provider, outcome).Inc()
	providerTime.WithLabelValues(provider).Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures[provider]++
	} else {
		m.successes[provider]++
	}
}

// TierCounts returns how many lookups each tier served.
func (m *FetchMetrics) TierCounts() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.tiers))
	for k, v := range m.tiers {
		out[k] = v
	}
	return out
}

// ProviderCounts returns the success and failure counts of a provider.
func (m *FetchMetrics) ProviderCounts(provider string) (successes, failures int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successes[provider], m.failures[provider]
}
