package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/mocks"
	"todayweather.app/pkg/errors"
)

func newTestClient(name string, metrics *mocks.ProviderMetrics) *ResilientHTTPClient {
	params := ResilientHTTPClientParams{Name: name}
	if metrics != nil {
		params.Metrics = metrics
	}
	return NewResilientHTTPClient(params)
}

func TestResilientHTTPClient_Get(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr bool
	}{
		{"OK", http.StatusOK, `{"ok":true}`, false},
		{"ServerError", http.StatusInternalServerError, "boom", true},
		{"Unauthorized", http.StatusUnauthorized, "denied", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "value", r.Header.Get("X-Test"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			metrics := &mocks.ProviderMetrics{}
			client := newTestClient("test", metrics)

			header := http.Header{}
			header.Set("X-Test", "value")
			body, err := client.Get(context.Background(), server.URL, header)

			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, errors.IsExternalAPIError(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}

			calls := metrics.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "test", calls[0].Provider)
			assert.Equal(t, tt.expectErr, calls[0].Err != nil)
		})
	}
}

func TestResilientHTTPClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient("kma", nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Get(ctx, server.URL, nil)
		require.Error(t, err)
		assert.True(t, errors.IsExternalAPIError(err))
	}
	assert.Equal(t, "open", client.State())

	_, err := client.Get(ctx, server.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.IsProviderUnavailableError(err))
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

func TestResilientHTTPClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewResilientHTTPClient(ResilientHTTPClientParams{Name: "slow", RatePerSecond: 0.001, RateBurst: 1})
	ctx := context.Background()
	_, err := client.Get(ctx, server.URL, nil)
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = client.Get(canceled, server.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.IsExternalAPIError(err))
}

func TestHTTPClientLoggingDecorator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := mocks.NewRecordingLogger()
	decorated := NewHTTPClientLoggingDecorator(http.DefaultClient, "kma", logger)
	client := NewResilientHTTPClient(ResilientHTTPClientParams{Name: "kma", Client: decorated})

	_, err := client.Get(context.Background(), server.URL+"/ok?serviceKey=secret", nil)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), server.URL+"/missing", nil)
	require.Error(t, err)

	assert.True(t, logger.Has("DEBUG", "Upstream request started"))
	assert.True(t, logger.Has("INFO", "Upstream request completed"))
	assert.True(t, logger.Has("WARN", "Upstream request returned error status"))

	for _, entry := range logger.Entries() {
		assert.Equal(t, "kma", entry.Fields["provider"])
		assert.NotContains(t, entry.Fields["path"], "secret")
	}
}

func TestHTTPClientLoggingDecorator_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger := mocks.NewRecordingLogger()
	decorated := NewHTTPClientLoggingDecorator(http.DefaultClient, "keco", logger)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	_, err = decorated.Do(req)

	require.Error(t, err)
	assert.True(t, logger.Has("ERROR", "Upstream request failed"))
}
