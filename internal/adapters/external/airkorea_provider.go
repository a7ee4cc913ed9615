package external

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const (
	airKoreaReadingsPath = "/ArpltnInforInqireSvc/getCtprvnRltmMesureDnsty"
	airKoreaStationsPath = "/MsrstnInfoInqireSvc/getMsrstnList"
	airKoreaNationwide   = "전국"
)

// AirKoreaProvider implements AirQualityProvider port for the KECO AirKorea services
type AirKoreaProvider struct {
	serviceKey string
	baseURL    string
	client     *ResilientHTTPClient
}

// AirKoreaProviderParams holds parameters for creating the AirKorea provider
type AirKoreaProviderParams struct {
	ServiceKey string
	BaseURL    string
	Client     *ResilientHTTPClient
}

// NewAirKoreaProvider creates a new AirKorea provider
func NewAirKoreaProvider(params AirKoreaProviderParams) (*AirKoreaProvider, error) {
	if params.ServiceKey == "" {
		return nil, errors.NewConfigurationError("airkorea service key is required", nil)
	}
	if params.Client == nil {
		return nil, errors.NewConfigurationError("airkorea http client is required", nil)
	}
	return &AirKoreaProvider{
		serviceKey: params.ServiceKey,
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		client:     params.Client,
	}, nil
}

type airKoreaReading struct {
	StationName string          `json:"stationName"`
	SidoName    string          `json:"sidoName"`
	DataTime    string          `json:"dataTime"`
	PM10Value   json.RawMessage `json:"pm10Value"`
	PM25Value   json.RawMessage `json:"pm25Value"`
	KhaiValue   json.RawMessage `json:"khaiValue"`
	PM10Grade   json.RawMessage `json:"pm10Grade"`
	PM25Grade   json.RawMessage `json:"pm25Grade"`
	KhaiGrade   json.RawMessage `json:"khaiGrade"`
}

// Readings returns the nationwide real-time readings. The service always serves
// its latest hour, so hour only documents which cycle the caller asked for.
func (p *AirKoreaProvider) Readings(ctx context.Context, hour time.Time) ([]ports.AirQualityRecord, error) {
	params := url.Values{}
	params.Set("sidoName", airKoreaNationwide)
	params.Set("ver", "1.3")

	var items []airKoreaReading
	if err := p.call(ctx, airKoreaReadingsPath, params, &items); err != nil {
		return nil, err
	}

	records := make([]ports.AirQualityRecord, 0, len(items))
	for _, item := range items {
		if item.StationName == "" {
			continue
		}
		records = append(records, ports.AirQualityRecord{
			StationName: item.StationName,
			SidoName:    item.SidoName,
			DataTime:    item.DataTime,
			PM10Value:   rawFloat(item.PM10Value),
			PM25Value:   rawFloat(item.PM25Value),
			KhaiValue:   rawFloat(item.KhaiValue),
			PM10Grade:   rawInt(item.PM10Grade),
			PM25Grade:   rawInt(item.PM25Grade),
			KhaiGrade:   rawInt(item.KhaiGrade),
		})
	}
	return records, nil
}

type airKoreaStation struct {
	StationName string          `json:"stationName"`
	Addr        string          `json:"addr"`
	DmX         json.RawMessage `json:"dmX"`
	DmY         json.RawMessage `json:"dmY"`
}

// Stations returns the measuring-station catalogue. Stations without coordinates are skipped.
func (p *AirKoreaProvider) Stations(ctx context.Context) ([]ports.MeasuringStation, error) {
	var items []airKoreaStation
	if err := p.call(ctx, airKoreaStationsPath, url.Values{}, &items); err != nil {
		return nil, err
	}

	stations := make([]ports.MeasuringStation, 0, len(items))
	for _, item := range items {
		lat, lon := rawFloat(item.DmX), rawFloat(item.DmY)
		if lat == nil || lon == nil {
			continue
		}
		stations = append(stations, ports.MeasuringStation{
			Name: item.StationName,
			Addr: item.Addr,
			Lat:  *lat,
			Lon:  *lon,
		})
	}
	return stations, nil
}

func (p *AirKoreaProvider) call(ctx context.Context, path string, params url.Values, target interface{}) error {
	params.Set("serviceKey", p.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1000")
	params.Set("returnType", "json")

	body, err := p.client.Get(ctx, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return decodeDataGoKr(body, "", target)
}

func rawInt(raw json.RawMessage) int {
	v, err := strconv.Atoi(rawString(raw))
	if err != nil {
		return 0
	}
	return v
}
