package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/pkg/errors"
)

func setupAirKorea(t *testing.T) *AirKoreaProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("returnType"))
		assert.Equal(t, "test-key", r.URL.Query().Get("serviceKey"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case airKoreaReadingsPath:
			assert.Equal(t, "전국", r.URL.Query().Get("sidoName"))
			_, _ = w.Write([]byte(`{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_CODE"},"body":{"items":[
				{"stationName":"중구","sidoName":"서울","dataTime":"2025-07-15 14:00","pm10Value":"35","pm25Value":"18","khaiValue":"62","pm10Grade":"2","pm25Grade":"2","khaiGrade":"2"},
				{"stationName":"종로구","sidoName":"서울","dataTime":"2025-07-15 14:00","pm10Value":"-","pm25Value":"21","khaiValue":"-","pm10Grade":null,"pm25Grade":"2","khaiGrade":null},
				{"stationName":"","sidoName":"서울","dataTime":"2025-07-15 14:00"}
			]}}}`))
		case airKoreaStationsPath:
			_, _ = w.Write([]byte(`{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_CODE"},"body":{"items":[
				{"stationName":"중구","addr":"서울 중구 덕수궁길 15","dmX":"37.564639","dmY":"126.975961"},
				{"stationName":"이동측정차","addr":"","dmX":"","dmY":""}
			]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	provider, err := NewAirKoreaProvider(AirKoreaProviderParams{
		ServiceKey: "test-key",
		BaseURL:    server.URL,
		Client:     NewResilientHTTPClient(ResilientHTTPClientParams{Name: "keco"}),
	})
	require.NoError(t, err)
	return provider
}

func TestAirKoreaProvider_Readings(t *testing.T) {
	provider := setupAirKorea(t)

	records, err := provider.Readings(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "중구", records[0].StationName)
	require.NotNil(t, records[0].PM10Value)
	assert.Equal(t, 35.0, *records[0].PM10Value)
	assert.Equal(t, 2, records[0].KhaiGrade)

	assert.Equal(t, "종로구", records[1].StationName)
	assert.Nil(t, records[1].PM10Value)
	assert.Nil(t, records[1].KhaiValue)
	assert.Equal(t, 0, records[1].PM10Grade)
	require.NotNil(t, records[1].PM25Value)
	assert.Equal(t, 21.0, *records[1].PM25Value)
}

func TestAirKoreaProvider_Stations(t *testing.T) {
	provider := setupAirKorea(t)

	stations, err := provider.Stations(context.Background())
	require.NoError(t, err)

	require.Len(t, stations, 1)
	assert.Equal(t, "중구", stations[0].Name)
	assert.InDelta(t, 37.564639, stations[0].Lat, 1e-9)
	assert.InDelta(t, 126.975961, stations[0].Lon, 1e-9)
}

func TestNewAirKoreaProvider_Validation(t *testing.T) {
	_, err := NewAirKoreaProvider(AirKoreaProviderParams{Client: NewResilientHTTPClient(ResilientHTTPClientParams{})})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = NewAirKoreaProvider(AirKoreaProviderParams{ServiceKey: "key"})
	assert.True(t, errors.IsConfigurationError(err))
}
