package fetch

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/mocks"
	"todayweather.app/pkg/errors"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	sets    int
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.data[key]
	if !ok {
		return nil, errors.NewNotFoundError("cache miss")
	}
	return data, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.lastTTL = ttl
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string][]byte{}
	return nil
}

type fakeFetchMetrics struct {
	mu    sync.Mutex
	tiers map[string]int
}

func (m *fakeFetchMetrics) RecordFetch(source, tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tiers == nil {
		m.tiers = map[string]int{}
	}
	m.tiers[source+"|"+tier]++
}

func TestFetch_ConcurrentCallersShareOneRemoteCall(t *testing.T) {
	store := newFakeStore()
	orchestrator := NewOrchestrator(store, time.Hour, mocks.NewRecordingLogger(), nil)

	var calls int32
	release := make(chan struct{})
	remote := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("payload"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := orchestrator.Fetch(context.Background(), "kma/vilage/20240701_0500/60_127", remote)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, store.sets)
	for _, data := range results {
		assert.Equal(t, []byte("payload"), data)
	}

	_, err := orchestrator.Fetch(context.Background(), "kma/vilage/20240701_0500/60_127", remote)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_Tiers(t *testing.T) {
	store := newFakeStore()
	store.data["keco/2024070109_ctprvnRltmMesureDnsty"] = []byte("stored")
	metrics := &fakeFetchMetrics{}
	orchestrator := NewOrchestrator(store, time.Hour, mocks.NewRecordingLogger(), metrics)

	remote := func(ctx context.Context) ([]byte, error) {
		t.Fatal("remote must not be called on a store hit")
		return nil, nil
	}

	data, err := orchestrator.Fetch(context.Background(), "keco/2024070109_ctprvnRltmMesureDnsty", remote)
	require.NoError(t, err)
	assert.Equal(t, []byte("stored"), data)
	_, remembered := orchestrator.fromMemory("keco/2024070109_ctprvnRltmMesureDnsty")
	assert.True(t, remembered)

	_, err = orchestrator.Fetch(context.Background(), "keco/2024070109_ctprvnRltmMesureDnsty", remote)
	require.NoError(t, err)

	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 0, store.sets)
	assert.Equal(t, 1, metrics.tiers["keco|store"])
	assert.Equal(t, 1, metrics.tiers["keco|memory"])
}

func TestFetch_StoreErrorsFallThrough(t *testing.T) {
	store := newFakeStore()
	store.getErr = stderrors.New("connection refused")
	store.setErr = stderrors.New("connection refused")
	logger := mocks.NewRecordingLogger()
	orchestrator := NewOrchestrator(store, time.Hour, logger, nil)

	data, err := orchestrator.Fetch(context.Background(), "kma/ncst/20240701_0800/60_127", func(ctx context.Context) ([]byte, error) {
		return []byte("live"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("live"), data)
	assert.True(t, logger.Has("WARN", "object cache read failed, fetching live"))
	assert.True(t, logger.Has("WARN", "object cache write failed"))
}

func TestFetch_FailedRemoteIsNotMemoized(t *testing.T) {
	orchestrator := NewOrchestrator(newFakeStore(), time.Hour, mocks.NewRecordingLogger(), nil)
	upstreamErr := errors.NewProviderUnavailableError("kma", stderrors.New("timeout"))

	calls := 0
	remote := func(ctx context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, upstreamErr
		}
		return []byte("ok"), nil
	}

	_, err := orchestrator.Fetch(context.Background(), "kma/fcst/key", remote)
	assert.True(t, errors.IsProviderUnavailableError(err))
	_, remembered := orchestrator.fromMemory("kma/fcst/key")
	assert.False(t, remembered)

	data, err := orchestrator.Fetch(context.Background(), "kma/fcst/key", remote)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, 2, calls)
}

func TestFetch_WithoutStore(t *testing.T) {
	orchestrator := NewOrchestrator(nil, time.Hour, mocks.NewRecordingLogger(), nil)

	data, err := orchestrator.Fetch(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte("v"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

type record struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestRecords_StoresNewlineDelimitedJSON(t *testing.T) {
	store := newFakeStore()
	orchestrator := NewOrchestrator(store, 30*time.Minute, mocks.NewRecordingLogger(), nil)

	records, err := Records(context.Background(), orchestrator, "kma/asos/108", func(ctx context.Context) ([]record, error) {
		return []record{{Name: "서울", Value: 1.5}, {Name: "부산", Value: 2}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []record{{Name: "서울", Value: 1.5}, {Name: "부산", Value: 2}}, records)

	assert.Equal(t, "{\"name\":\"서울\",\"value\":1.5}\n{\"name\":\"부산\",\"value\":2}\n", string(store.data["kma/asos/108"]))
	assert.Equal(t, 30*time.Minute, store.lastTTL)
}

func TestJSON_RoundTripsThroughStore(t *testing.T) {
	store := newFakeStore()
	first := NewOrchestrator(store, time.Hour, mocks.NewRecordingLogger(), nil)

	_, err := JSON(context.Background(), first, "kakao/coord/37.5665_126.978", func(ctx context.Context) (record, error) {
		return record{Name: "중구", Value: 1}, nil
	})
	require.NoError(t, err)

	second := NewOrchestrator(store, time.Hour, mocks.NewRecordingLogger(), nil)
	value, err := JSON(context.Background(), second, "kakao/coord/37.5665_126.978", func(ctx context.Context) (record, error) {
		return record{}, stderrors.New("must come from the store")
	})
	require.NoError(t, err)
	assert.Equal(t, record{Name: "중구", Value: 1}, value)
}

func TestDecodeLines(t *testing.T) {
	records, err := DecodeLines[record]([]byte("{\"name\":\"a\",\"value\":1}\n\n{\"name\":\"b\",\"value\":2}"))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = DecodeLines[record]([]byte("{\"name\":\"a\"}\nnot json\n"))
	assert.True(t, errors.IsMalformedRecordError(err))
}

func TestSource(t *testing.T) {
	assert.Equal(t, "kma", Source("kma/vilage/20240701_0500/60_127"))
	assert.Equal(t, "keco", Source("keco/2024070109_ctprvnRltmMesureDnsty"))
	assert.Equal(t, "plain", Source("plain"))
}
