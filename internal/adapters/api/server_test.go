package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/weather"
	"todayweather.app/internal/mocks"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

type mockWeatherUseCase struct{ mock.Mock }

func (m *mockWeatherUseCase) GetWeather(ctx context.Context, request weather.Request) (*weather.Report, error) {
	args := m.Called(ctx, request)
	report, _ := args.Get(0).(*weather.Report)
	return report, args.Error(1)
}

func (m *mockWeatherUseCase) Locate(ctx context.Context, request weather.Request) (*location.Location, error) {
	args := m.Called(ctx, request)
	loc, _ := args.Get(0).(*location.Location)
	return loc, args.Error(1)
}

type stubMetricsCollector struct {
	metrics map[string]interface{}
	err     error
}

func (s stubMetricsCollector) GetMetrics(context.Context) (map[string]interface{}, error) {
	return s.metrics, s.err
}

type stubHealthChecker map[string]ports.HealthStatus

func (s stubHealthChecker) CheckAll(context.Context) map[string]ports.HealthStatus {
	return s
}

type testServer struct {
	router  *gin.Engine
	useCase *mockWeatherUseCase
	logger  *mocks.RecordingLogger
}

func setupTestServer(t *testing.T, health stubHealthChecker, collector stubMetricsCollector) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &mockWeatherUseCase{}
	logger := mocks.NewRecordingLogger()
	if health == nil {
		health = stubHealthChecker{}
	}

	server, err := NewHTTPServerAdapter(ServerOptions{
		Config:           ServerConfig{Port: 8080},
		WeatherUseCase:   useCase,
		MetricsCollector: collector,
		HealthChecker:    health,
		Logger:           logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { useCase.AssertExpectations(t) })

	return &testServer{router: server.GetRouter(), useCase: useCase, logger: logger}
}

func (s *testServer) get(path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestNewHTTPServerAdapter_Validation(t *testing.T) {
	logger := mocks.NewRecordingLogger()
	useCase := &mockWeatherUseCase{}

	tests := []struct {
		name string
		opts ServerOptions
	}{
		{"MissingUseCase", ServerOptions{MetricsCollector: stubMetricsCollector{}, HealthChecker: stubHealthChecker{}, Logger: logger}},
		{"MissingMetrics", ServerOptions{WeatherUseCase: useCase, HealthChecker: stubHealthChecker{}, Logger: logger}},
		{"MissingHealth", ServerOptions{WeatherUseCase: useCase, MetricsCollector: stubMetricsCollector{}, Logger: logger}},
		{"MissingLogger", ServerOptions{WeatherUseCase: useCase, MetricsCollector: stubMetricsCollector{}, HealthChecker: stubHealthChecker{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPServerAdapter(tt.opts)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestGetWeather_ByCoordinate(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{})

	expected := weather.Request{Coordinate: &location.Coordinate{Lat: 37.5665, Lon: 126.978}}
	s.useCase.On("GetWeather", mock.Anything, expected).Return(&weather.Report{
		Location: location.Location{Grid: location.GridCoord{Nx: 60, Ny: 127}},
		Outlook:  "맑겠습니다",
	}, nil)

	w := s.get("/api/weather?lat=37.5665&lon=126.978", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "맑겠습니다", body["midOutlook"])
	grid := body["location"].(map[string]interface{})["grid"].(map[string]interface{})
	assert.Equal(t, float64(60), grid["nx"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestGetWeather_ByAddress(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{})

	s.useCase.On("GetWeather", mock.Anything, weather.Request{Address: "서울 중구"}).
		Return(&weather.Report{}, nil)

	w := s.get("/api/weather?address=%EC%84%9C%EC%9A%B8%20%EC%A4%91%EA%B5%AC", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetWeather_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"Missing", ""},
		{"LatWithoutLon", "?lat=37.5"},
		{"LonWithoutLat", "?lon=126.9"},
		{"NotANumber", "?lat=abc&lon=126.9"},
		{"LatitudeOutOfRange", "?lat=137.5&lon=126.9"},
		{"OutsideForecastDomain", "?lat=35.6762&lon=139.6503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, nil, stubMetricsCollector{})

			w := s.get("/api/weather"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Contains(t, response.Error, "invalid query")
			assert.NotEmpty(t, response.RequestID)
		})
	}
}

func TestGetWeather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"Validation", errors.NewValidationError("coordinate and address are mutually exclusive"), http.StatusBadRequest, "coordinate and address are mutually exclusive"},
		{"NotFound", errors.NewNotFoundError("no match for address"), http.StatusNotFound, "no match for address"},
		{"RegionNotFound", errors.NewRegionNotFoundError("mid-land", "제주"), http.StatusNotFound, ""},
		{"ExternalAPI", errors.NewExternalAPIError("kakao down", nil), http.StatusServiceUnavailable, "External service unavailable"},
		{"ProviderUnavailable", errors.NewProviderUnavailableError("all weather sources", nil), http.StatusServiceUnavailable, "External service unavailable"},
		{"Configuration", errors.NewConfigurationError("bad", nil), http.StatusInternalServerError, "Internal server error"},
		{"Database", errors.NewDatabaseError("db", nil), http.StatusInternalServerError, "Internal server error"},
		{"Internal", errors.NewInternalError("boom", nil), http.StatusInternalServerError, "Internal server error"},
		{"Plain", context.DeadlineExceeded, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, nil, stubMetricsCollector{})
			s.useCase.On("GetWeather", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := s.get("/api/weather?lat=37.5665&lon=126.978", map[string]string{requestIDHeader: "req-1"})

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response.Error)
			}
			assert.Equal(t, "req-1", response.RequestID)
			assert.Equal(t, "req-1", w.Header().Get(requestIDHeader))
			assert.True(t, s.logger.Has("ERROR", "Weather use case error"))
		})
	}
}

func TestGetLocation(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{})

	s.useCase.On("Locate", mock.Anything, weather.Request{Coordinate: &location.Coordinate{Lat: 37.5665, Lon: 126.978}}).
		Return(&location.Location{
			Grid:   location.GridCoord{Nx: 60, Ny: 127},
			Region: location.RegionName{Province: "서울특별시", City: "중구"},
			Keys:   location.RegionKeys{OutlookStnID: "109", LandRegID: "11B00000", TempRegID: "11B10101"},
		}, nil)

	w := s.get("/api/location?lat=37.5665&lon=126.978", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var loc location.Location
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loc))
	assert.Equal(t, "11B10101", loc.Keys.TempRegID)
	assert.Equal(t, "중구", loc.Region.City)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name           string
		health         stubHealthChecker
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Healthy",
			health:         stubHealthChecker{"cache": {Component: "cache", Status: "healthy"}},
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name: "DegradedStillServes",
			health: stubHealthChecker{
				"cache":     {Component: "cache", Status: "healthy"},
				"upstreams": {Component: "upstreams", Status: "degraded"},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name:           "Unhealthy",
			health:         stubHealthChecker{"cache": {Component: "cache", Status: "unhealthy", Error: "connection refused"}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, tt.health, stubMetricsCollector{})

			w := s.get("/health", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body struct {
				Status     string                        `json:"status"`
				Components map[string]ports.HealthStatus `json:"components"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body.Status)
			assert.Len(t, body.Components, len(tt.health))
		})
	}
}

func TestGetMetrics(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{metrics: map[string]interface{}{
		"fetch_tiers": map[string]int64{"memory": 3},
	}})

	w := s.get("/api/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fetch_tiers":{"memory":3}}`, w.Body.String())
}

func TestGetMetrics_Error(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{err: errors.NewInternalError("collector failed", nil)})

	w := s.get("/api/metrics", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{})

	w := s.get("/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRequestLogging(t *testing.T) {
	s := setupTestServer(t, nil, stubMetricsCollector{})

	s.get("/health", map[string]string{requestIDHeader: "abc"})

	entries := s.logger.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "HTTP request", last.Message)
	assert.Equal(t, "abc", last.Fields["request_id"])
	assert.Equal(t, http.StatusOK, last.Fields["status"])
}
