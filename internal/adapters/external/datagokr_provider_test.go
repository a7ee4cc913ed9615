package external

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/mocks"
	"todayweather.app/pkg/errors"
)

func dataGoKrBody(items string) string {
	return fmt.Sprintf(`{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},"body":{"dataType":"JSON","items":{"item":%s},"totalCount":1}}}`, items)
}

// setupDataGoKr serves one canned body per path and records the last query per path.
func setupDataGoKr(t *testing.T, bodies map[string]string) (*DataGoKrProvider, map[string]map[string]string) {
	t.Helper()
	var mu sync.Mutex
	queries := map[string]map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		mu.Lock()
		queries[r.URL.Path] = query
		mu.Unlock()

		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	provider, err := NewDataGoKrProvider(DataGoKrProviderParams{
		ServiceKey:         "test-key",
		BaseURL:            server.URL + "/1360000",
		LivingIndexBaseURL: server.URL + "/living",
		AsosBaseURL:        server.URL + "/asos",
		Client:             NewResilientHTTPClient(ResilientHTTPClientParams{Name: "kma"}),
		Logger:             mocks.NewRecordingLogger(),
	})
	require.NoError(t, err)
	return provider, queries
}

func TestNewDataGoKrProvider_Validation(t *testing.T) {
	client := NewResilientHTTPClient(ResilientHTTPClientParams{Name: "kma"})

	_, err := NewDataGoKrProvider(DataGoKrProviderParams{Client: client})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = NewDataGoKrProvider(DataGoKrProviderParams{ServiceKey: "key"})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestDataGoKrProvider_ShortRange(t *testing.T) {
	path := "/1360000" + series.ShortRangeSpec.Path
	provider, queries := setupDataGoKr(t, map[string]string{
		path: dataGoKrBody(`[
			{"baseDate":"20250715","baseTime":"0500","category":"TMP","fcstDate":"20250715","fcstTime":"0600","fcstValue":"24","nx":60,"ny":127},
			{"baseDate":"20250715","baseTime":"0500","category":"PCP","fcstDate":"20250715","fcstTime":"0600","fcstValue":"강수없음","nx":60,"ny":127}
		]`),
	})

	cycle := time.Date(2025, 7, 15, 5, 0, 0, 0, series.KST)
	resp, err := provider.ShortRange(context.Background(), location.GridCoord{Nx: 60, Ny: 127}, cycle)
	require.NoError(t, err)

	assert.Equal(t, series.ShortRangeSpec.Name, resp.Provider)
	assert.True(t, cycle.Equal(resp.Published))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "TMP", resp.Records[0].Category)
	assert.Equal(t, "20250715", resp.Records[0].Date)
	assert.Equal(t, "0600", resp.Records[0].Time)
	assert.Equal(t, "24", resp.Records[0].Value)
	assert.Equal(t, "강수없음", resp.Records[1].Value)

	query := queries[path]
	assert.Equal(t, "20250715", query["base_date"])
	assert.Equal(t, "0500", query["base_time"])
	assert.Equal(t, "60", query["nx"])
	assert.Equal(t, "127", query["ny"])
	assert.Equal(t, "test-key", query["serviceKey"])
	assert.Equal(t, "JSON", query["dataType"])
}

func TestDataGoKrProvider_Nowcast(t *testing.T) {
	path := "/1360000" + series.NowcastSpec.Path
	provider, _ := setupDataGoKr(t, map[string]string{
		path: dataGoKrBody(`[{"baseDate":"20250715","baseTime":"1400","category":"T1H","obsrValue":31.2,"nx":60,"ny":127}]`),
	})

	cycle := time.Date(2025, 7, 15, 14, 0, 0, 0, series.KST)
	resp, err := provider.Nowcast(context.Background(), location.GridCoord{Nx: 60, Ny: 127}, cycle)
	require.NoError(t, err)

	require.Len(t, resp.Records, 1)
	assert.Equal(t, "20250715", resp.Records[0].Date)
	assert.Equal(t, "1400", resp.Records[0].Time)
	assert.Equal(t, "31.2", resp.Records[0].Value)
}

func TestDataGoKrProvider_LandOutlook(t *testing.T) {
	provider, queries := setupDataGoKr(t, map[string]string{
		"/1360000" + series.MidLandSpec.Path: dataGoKrBody(`[{
			"regId":"11B00000",
			"rnSt3Am":20,"rnSt3Pm":30,"wf3Am":"맑음","wf3Pm":"구름많음",
			"rnSt8":40,"wf8":"흐림",
			"rnSt10":"","wf10":""
		}]`),
	})

	cycle := time.Date(2025, 7, 15, 6, 0, 0, 0, series.KST)
	resp, err := provider.LandOutlook(context.Background(), "11B00000", cycle)
	require.NoError(t, err)

	require.Len(t, resp.Records, 2)
	assert.Equal(t, 3, resp.Records[0].Offset)
	assert.Equal(t, map[string]string{"wfAm": "맑음", "wfPm": "구름많음", "rnStAm": "20", "rnStPm": "30"}, resp.Records[0].Fields)
	assert.Equal(t, 8, resp.Records[1].Offset)
	assert.Equal(t, map[string]string{"wf": "흐림", "rnSt": "40"}, resp.Records[1].Fields)

	query := queries["/1360000"+series.MidLandSpec.Path]
	assert.Equal(t, "11B00000", query["regId"])
	assert.Equal(t, "202507150600", query["tmFc"])
}

func TestDataGoKrProvider_Temperature(t *testing.T) {
	provider, _ := setupDataGoKr(t, map[string]string{
		"/1360000" + series.MidTemperatureSpec.Path: dataGoKrBody(`[{
			"regId":"11B10101","taMin4":22,"taMax4":31,"taMin4Low":1,"taMax4High":2
		}]`),
	})

	resp, err := provider.Temperature(context.Background(), "11B10101", time.Date(2025, 7, 15, 6, 0, 0, 0, series.KST))
	require.NoError(t, err)

	require.Len(t, resp.Records, 1)
	assert.Equal(t, 4, resp.Records[0].Offset)
	assert.Equal(t, "22", resp.Records[0].Fields["taMin"])
	assert.Equal(t, "31", resp.Records[0].Fields["taMax"])
	assert.Equal(t, "1", resp.Records[0].Fields["taMinLow"])
	assert.Equal(t, "2", resp.Records[0].Fields["taMaxHigh"])
}

func TestDataGoKrProvider_Outlook(t *testing.T) {
	provider, queries := setupDataGoKr(t, map[string]string{
		"/1360000" + series.MidOutlookSpec.Path: dataGoKrBody(`[{"wfSv":"○ (강수) 17일(목)은 비가 오겠습니다."}]`),
	})

	resp, err := provider.Outlook(context.Background(), "109", time.Date(2025, 7, 15, 18, 0, 0, 0, series.KST))
	require.NoError(t, err)

	require.Len(t, resp.Records, 1)
	assert.Contains(t, resp.Records[0].Fields["wfSv"], "비가 오겠습니다")
	assert.Equal(t, "109", queries["/1360000"+series.MidOutlookSpec.Path]["stnId"])
}

func TestDataGoKrProvider_UVIndex(t *testing.T) {
	provider, queries := setupDataGoKr(t, map[string]string{
		"/living/getUVIdxV4": dataGoKrBody(`[{"code":"A07_1","areaNo":"1111051500","date":"2025071506","h0":"7","h3":"8"}]`),
	})

	cycle := time.Date(2025, 7, 15, 6, 0, 0, 0, series.KST)
	uv, err := provider.UVIndex(context.Background(), "1111051500", cycle)
	require.NoError(t, err)

	assert.Equal(t, "1111051500", uv.AreaCode)
	assert.Equal(t, 7.0, uv.Value)
	assert.True(t, cycle.Equal(uv.IssuedAt))
	assert.Equal(t, "2025071506", queries["/living/getUVIdxV4"]["time"])
}

func TestDataGoKrProvider_DailyHistory(t *testing.T) {
	provider, queries := setupDataGoKr(t, map[string]string{
		"/asos/getWthrDataList": dataGoKrBody(`[
			{"stnId":"108","tm":"2025-07-14","avgTa":"27.1","minTa":"23.0","maxTa":"31.5","sumRn":""},
			{"stnId":"108","tm":"2025-07-13","avgTa":"26.0","minTa":"22.4","maxTa":"30.2","sumRn":"12.5"}
		]`),
	})

	from := time.Date(2025, 7, 8, 0, 0, 0, 0, series.KST)
	to := time.Date(2025, 7, 14, 0, 0, 0, 0, series.KST)
	days, err := provider.DailyHistory(context.Background(), "108", from, to)
	require.NoError(t, err)

	require.Len(t, days, 2)
	assert.Equal(t, "20250713", days[0].Date)
	require.NotNil(t, days[0].Rain)
	assert.Equal(t, 12.5, *days[0].Rain)
	assert.Equal(t, "20250714", days[1].Date)
	assert.Nil(t, days[1].Rain)
	require.NotNil(t, days[1].MaxTemp)
	assert.Equal(t, 31.5, *days[1].MaxTemp)

	query := queries["/asos/getWthrDataList"]
	assert.Equal(t, "20250708", query["startDt"])
	assert.Equal(t, "20250714", query["endDt"])
	assert.Equal(t, "108", query["stnIds"])
}

func TestDataGoKrProvider_ResultCodes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		check   func(error) bool
		records int
	}{
		{
			name:  "NoData",
			body:  `{"response":{"header":{"resultCode":"03","resultMsg":"NO_DATA"}}}`,
			check: errors.IsNotFoundError,
		},
		{
			name:  "ServiceError",
			body:  `{"response":{"header":{"resultCode":"22","resultMsg":"LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR"}}}`,
			check: errors.IsExternalAPIError,
		},
		{
			name:  "XMLGatewayError",
			body:  `<OpenAPI_ServiceResponse><cmmMsgHeader><errMsg>SERVICE ERROR</errMsg></cmmMsgHeader></OpenAPI_ServiceResponse>`,
			check: errors.IsExternalAPIError,
		},
		{
			name: "EmptyItems",
			body: `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},"body":{"items":""}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, _ := setupDataGoKr(t, map[string]string{
				"/1360000" + series.UltraShortForecastSpec.Path: tt.body,
			})

			resp, err := provider.UltraShortForecast(context.Background(), location.GridCoord{Nx: 1, Ny: 1}, time.Now())
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Records, tt.records)
		})
	}
}
