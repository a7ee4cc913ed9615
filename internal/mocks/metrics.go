package mocks

import (
	"context"
	"sync"
	"time"

	"todayweather.app/internal/ports"
)

// CacheMetrics counts hits, misses and operations.
type CacheMetrics struct {
	mu         sync.Mutex
	Hits       int64
	Misses     int64
	Operations map[string]int
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{Operations: make(map[string]int)}
}

func (m *CacheMetrics) GetStats() ports.CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.Hits + m.Misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(m.Hits) / float64(total)
	}
	return ports.CacheStats{Hits: m.Hits, Misses: m.Misses, TotalOps: total, HitRatio: ratio, LastUpdated: time.Now()}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits++
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Misses++
}

func (m *CacheMetrics) RecordOperation(operation string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[operation]++
}

// ProviderCall is one recorded outbound call.
type ProviderCall struct {
	Provider string
	Err      error
}

// ProviderMetrics records outbound provider calls.
type ProviderMetrics struct {
	mu    sync.Mutex
	calls []ProviderCall
}

func (m *ProviderMetrics) RecordProviderCall(_ context.Context, provider string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ProviderCall{Provider: provider, Err: err})
}

// Calls returns a copy of the recorded calls.
func (m *ProviderMetrics) Calls() []ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}
