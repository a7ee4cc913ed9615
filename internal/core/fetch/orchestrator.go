// Package fetch implements the cache-aside lookup used for every upstream call:
// request memory, then the durable object cache, then the live provider.
package fetch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// Lookup tiers reported to metrics.
const (
	TierMemory = "memory"
	TierStore  = "store"
	TierRemote = "remote"
)

// RemoteFunc performs the live upstream call.
type RemoteFunc func(ctx context.Context) ([]byte, error)

// Orchestrator memoizes upstream payloads for the lifetime of one value.
// Create one per request; the durable store is shared.
type Orchestrator struct {
	store   ports.CacheProvider
	ttl     time.Duration
	logger  ports.Logger
	metrics ports.FetchMetrics

	group  singleflight.Group
	mu     sync.RWMutex
	memory map[string][]byte
}

// NewOrchestrator creates an orchestrator over store. store and metrics may be nil.
func NewOrchestrator(store ports.CacheProvider, ttl time.Duration, logger ports.Logger, metrics ports.FetchMetrics) *Orchestrator {
	return &Orchestrator{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		memory:  make(map[string][]byte),
	}
}

// Fetch returns the payload for key, calling remote at most once per key.
// A failed remote call is not remembered, so a later Fetch retries it.
func (o *Orchestrator) Fetch(ctx context.Context, key string, remote RemoteFunc) ([]byte, error) {
	if data, ok := o.fromMemory(key); ok {
		o.record(key, TierMemory)
		return data, nil
	}

	result, err, _ := o.group.Do(key, func() (interface{}, error) {
		if data, ok := o.fromMemory(key); ok {
			o.record(key, TierMemory)
			return data, nil
		}

		if data, ok := o.fromStore(ctx, key); ok {
			o.remember(key, data)
			o.record(key, TierStore)
			return data, nil
		}

		data, err := remote(ctx)
		if err != nil {
			return nil, err
		}
		o.record(key, TierRemote)
		o.remember(key, data)
		o.persist(ctx, key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (o *Orchestrator) fromMemory(key string) ([]byte, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	data, ok := o.memory[key]
	return data, ok
}

func (o *Orchestrator) remember(key string, data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.memory[key] = data
}

func (o *Orchestrator) fromStore(ctx context.Context, key string) ([]byte, bool) {
	if o.store == nil {
		return nil, false
	}
	data, err := o.store.Get(ctx, key)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			o.logger.Warn("object cache read failed, fetching live", ports.F("key", key), ports.F("error", err))
		}
		return nil, false
	}
	return data, true
}

func (o *Orchestrator) persist(ctx context.Context, key string, data []byte) {
	if o.store == nil {
		return
	}
	if err := o.store.Set(ctx, key, data, o.ttl); err != nil {
		o.logger.Warn("object cache write failed", ports.F("key", key), ports.F("error", err))
	}
}

func (o *Orchestrator) record(key, tier string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordFetch(Source(key), tier)
}

// Source is the provider family of a cache key: its first path segment.
func Source(key string) string {
	source, _, _ := strings.Cut(key, "/")
	return source
}

// JSON fetches a single JSON document.
func JSON[T any](ctx context.Context, o *Orchestrator, key string, remote func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	data, err := o.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := remote(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, errors.NewMalformedRecordError("cached payload for " + key + " is not valid JSON")
	}
	return value, nil
}

// Records fetches a list stored as newline-delimited JSON, one record per line.
func Records[T any](ctx context.Context, o *Orchestrator, key string, remote func(ctx context.Context) ([]T, error)) ([]T, error) {
	data, err := o.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		records, err := remote(ctx)
		if err != nil {
			return nil, err
		}
		return EncodeLines(records)
	})
	if err != nil {
		return nil, err
	}
	return DecodeLines[T](data)
}

// EncodeLines renders records as newline-delimited JSON.
func EncodeLines[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return nil, errors.NewInternalError("failed to encode record", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeLines parses newline-delimited JSON. Blank lines are skipped.
func DecodeLines[T any](data []byte) ([]T, error) {
	var records []T
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(text, &record); err != nil {
			return nil, errors.NewMalformedRecordError("invalid record on line " + strconv.Itoa(line))
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternalError("failed to read records", err)
	}
	return records, nil
}
