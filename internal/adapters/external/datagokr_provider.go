package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const (
	uvIndexPath     = "/getUVIdxV4"
	asosDailyPath   = "/getWthrDataList"
	midFirstDay     = 3
	midLastDay      = 10
	midSplitLastDay = 7
)

// dataGoKrEnvelope is the response wrapper shared by every data.go.kr service.
type dataGoKrEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      json.RawMessage `json:"items"`
			TotalCount int             `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// DataGoKrProviderParams holds parameters for creating the data.go.kr provider
type DataGoKrProviderParams struct {
	ServiceKey         string
	BaseURL            string
	LivingIndexBaseURL string
	AsosBaseURL        string
	Client             *ResilientHTTPClient
	Logger             ports.Logger
}

// DataGoKrProvider serves every KMA endpoint published on data.go.kr. Endpoints
// differ only in path and parameters; the field mapping lives in series.ProviderSpec.
type DataGoKrProvider struct {
	serviceKey         string
	baseURL            string
	livingIndexBaseURL string
	asosBaseURL        string
	client             *ResilientHTTPClient
	logger             ports.Logger
}

// NewDataGoKrProvider creates a new data.go.kr provider
func NewDataGoKrProvider(params DataGoKrProviderParams) (*DataGoKrProvider, error) {
	if params.ServiceKey == "" {
		return nil, errors.NewConfigurationError("data.go.kr service key is required", nil)
	}
	if params.Client == nil {
		return nil, errors.NewConfigurationError("data.go.kr http client is required", nil)
	}
	return &DataGoKrProvider{
		serviceKey:         params.ServiceKey,
		baseURL:            strings.TrimRight(params.BaseURL, "/"),
		livingIndexBaseURL: strings.TrimRight(params.LivingIndexBaseURL, "/"),
		asosBaseURL:        strings.TrimRight(params.AsosBaseURL, "/"),
		client:             params.Client,
		logger:             params.Logger,
	}, nil
}

// gridItem is one category-coded record of the village forecast services.
type gridItem struct {
	BaseDate  string          `json:"baseDate"`
	BaseTime  string          `json:"baseTime"`
	FcstDate  string          `json:"fcstDate"`
	FcstTime  string          `json:"fcstTime"`
	Category  string          `json:"category"`
	FcstValue json.RawMessage `json:"fcstValue"`
	ObsrValue json.RawMessage `json:"obsrValue"`
}

func (p *DataGoKrProvider) ShortRange(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return p.gridForecast(ctx, series.ShortRangeSpec, grid, cycle)
}

func (p *DataGoKrProvider) UltraShortForecast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return p.gridForecast(ctx, series.UltraShortForecastSpec, grid, cycle)
}

func (p *DataGoKrProvider) Nowcast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return p.gridForecast(ctx, series.NowcastSpec, grid, cycle)
}

func (p *DataGoKrProvider) gridForecast(ctx context.Context, spec series.ProviderSpec, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	params := url.Values{}
	params.Set("base_date", series.BaseDate(cycle))
	params.Set("base_time", series.BaseTime(cycle))
	params.Set("nx", strconv.Itoa(grid.Nx))
	params.Set("ny", strconv.Itoa(grid.Ny))

	var items []gridItem
	if err := p.call(ctx, p.baseURL+spec.Path, params, &items); err != nil {
		return nil, err
	}

	resp := &ports.RawResponse{Provider: spec.Name, Published: cycle, Records: make([]ports.RawRecord, 0, len(items))}
	for _, item := range items {
		record := ports.RawRecord{Category: item.Category}
		if item.FcstDate != "" {
			record.Date, record.Time = item.FcstDate, item.FcstTime
			record.Value = rawString(item.FcstValue)
		} else {
			record.Date, record.Time = item.BaseDate, item.BaseTime
			record.Value = rawString(item.ObsrValue)
		}
		resp.Records = append(resp.Records, record)
	}
	return resp, nil
}

// Outlook returns the mid-range prose outlook for a forecast station.
func (p *DataGoKrProvider) Outlook(ctx context.Context, stnID string, cycle time.Time) (*ports.RawResponse, error) {
	params := url.Values{}
	params.Set("stnId", stnID)
	params.Set("tmFc", series.BaseDate(cycle)+series.BaseTime(cycle))

	var items []map[string]json.RawMessage
	if err := p.call(ctx, p.baseURL+series.MidOutlookSpec.Path, params, &items); err != nil {
		return nil, err
	}

	resp := &ports.RawResponse{Provider: series.MidOutlookSpec.Name, Published: cycle}
	for _, item := range items {
		resp.Records = append(resp.Records, ports.RawRecord{Fields: map[string]string{"wfSv": rawString(item["wfSv"])}})
	}
	return resp, nil
}

// LandOutlook returns sky text and rain probability per day. Days up to +7 carry
// separate morning and afternoon values; later days carry one value.
func (p *DataGoKrProvider) LandOutlook(ctx context.Context, regID string, cycle time.Time) (*ports.RawResponse, error) {
	item, err := p.midItem(ctx, series.MidLandSpec.Path, regID, cycle)
	if err != nil {
		return nil, err
	}

	resp := &ports.RawResponse{Provider: series.MidLandSpec.Name, Published: cycle}
	for day := midFirstDay; day <= midLastDay; day++ {
		fields := map[string]string{}
		if day <= midSplitLastDay {
			setPresent(fields, "wfAm", item[fmt.Sprintf("wf%dAm", day)])
			setPresent(fields, "wfPm", item[fmt.Sprintf("wf%dPm", day)])
			setPresent(fields, "rnStAm", item[fmt.Sprintf("rnSt%dAm", day)])
			setPresent(fields, "rnStPm", item[fmt.Sprintf("rnSt%dPm", day)])
		}
		setPresent(fields, "wf", item[fmt.Sprintf("wf%d", day)])
		setPresent(fields, "rnSt", item[fmt.Sprintf("rnSt%d", day)])
		if len(fields) == 0 {
			continue
		}
		resp.Records = append(resp.Records, ports.RawRecord{Offset: day, Fields: fields})
	}
	return resp, nil
}

// Temperature returns the mid-range minimum and maximum temperature per day.
func (p *DataGoKrProvider) Temperature(ctx context.Context, regID string, cycle time.Time) (*ports.RawResponse, error) {
	item, err := p.midItem(ctx, series.MidTemperatureSpec.Path, regID, cycle)
	if err != nil {
		return nil, err
	}

	resp := &ports.RawResponse{Provider: series.MidTemperatureSpec.Name, Published: cycle}
	for day := midFirstDay; day <= midLastDay; day++ {
		fields := map[string]string{}
		setPresent(fields, "taMin", item[fmt.Sprintf("taMin%d", day)])
		setPresent(fields, "taMax", item[fmt.Sprintf("taMax%d", day)])
		setPresent(fields, "taMinLow", item[fmt.Sprintf("taMin%dLow", day)])
		setPresent(fields, "taMinHigh", item[fmt.Sprintf("taMin%dHigh", day)])
		setPresent(fields, "taMaxLow", item[fmt.Sprintf("taMax%dLow", day)])
		setPresent(fields, "taMaxHigh", item[fmt.Sprintf("taMax%dHigh", day)])
		if len(fields) == 0 {
			continue
		}
		resp.Records = append(resp.Records, ports.RawRecord{Offset: day, Fields: fields})
	}
	return resp, nil
}

func (p *DataGoKrProvider) midItem(ctx context.Context, path, regID string, cycle time.Time) (map[string]json.RawMessage, error) {
	params := url.Values{}
	params.Set("regId", regID)
	params.Set("tmFc", series.BaseDate(cycle)+series.BaseTime(cycle))

	var items []map[string]json.RawMessage
	if err := p.call(ctx, p.baseURL+path, params, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.NewNotFoundError("no mid-range forecast for region " + regID)
	}
	return items[0], nil
}

// UVIndex returns the ultraviolet index for an administrative area code.
func (p *DataGoKrProvider) UVIndex(ctx context.Context, areaCode string, cycle time.Time) (*ports.UVIndex, error) {
	params := url.Values{}
	params.Set("areaNo", areaCode)
	params.Set("time", cycle.In(series.KST).Format("2006010215"))

	var items []map[string]json.RawMessage
	if err := p.call(ctx, p.livingIndexBaseURL+uvIndexPath, params, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.NewNotFoundError("no uv index for area " + areaCode)
	}

	value, err := strconv.ParseFloat(rawString(items[0]["h0"]), 64)
	if err != nil {
		return nil, errors.NewMalformedRecordError("uv index h0 is not a number")
	}
	return &ports.UVIndex{AreaCode: areaCode, IssuedAt: cycle, Value: value}, nil
}

// asosDailyItem is one day of the ASOS daily observation service.
type asosDailyItem struct {
	StnID string          `json:"stnId"`
	Tm    string          `json:"tm"`
	AvgTa json.RawMessage `json:"avgTa"`
	MinTa json.RawMessage `json:"minTa"`
	MaxTa json.RawMessage `json:"maxTa"`
	SumRn json.RawMessage `json:"sumRn"`
}

// DailyHistory returns daily ASOS observations between from and to inclusive,
// oldest first.
func (p *DataGoKrProvider) DailyHistory(ctx context.Context, stnID string, from, to time.Time) ([]ports.DailyObservation, error) {
	params := url.Values{}
	params.Set("dataCd", "ASOS")
	params.Set("dateCd", "DAY")
	params.Set("startDt", series.BaseDate(from))
	params.Set("endDt", series.BaseDate(to))
	params.Set("stnIds", stnID)

	var items []asosDailyItem
	if err := p.call(ctx, p.asosBaseURL+asosDailyPath, params, &items); err != nil {
		return nil, err
	}

	days := make([]ports.DailyObservation, 0, len(items))
	for _, item := range items {
		days = append(days, ports.DailyObservation{
			Date:    strings.ReplaceAll(item.Tm, "-", ""),
			StnID:   item.StnID,
			AvgTemp: rawFloat(item.AvgTa),
			MinTemp: rawFloat(item.MinTa),
			MaxTemp: rawFloat(item.MaxTa),
			Rain:    rawFloat(item.SumRn),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// call issues one data.go.kr request and decodes body.items.item into target.
func (p *DataGoKrProvider) call(ctx context.Context, endpoint string, params url.Values, target interface{}) error {
	params.Set("serviceKey", p.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1000")
	params.Set("dataType", "JSON")

	body, err := p.client.Get(ctx, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return decodeDataGoKr(body, "item", target)
}

// decodeDataGoKr unwraps the data.go.kr envelope. itemKey names the array under
// body.items; an empty itemKey means body.items is the array itself.
func decodeDataGoKr(body []byte, itemKey string, target interface{}) error {
	var envelope dataGoKrEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.NewExternalAPIError("data.go.kr returned a non-JSON response", err)
	}

	header := envelope.Response.Header
	switch header.ResultCode {
	case "00":
	case "03":
		return errors.NewNotFoundError("data.go.kr returned no data")
	default:
		return errors.NewExternalAPIError(fmt.Sprintf("data.go.kr error %s: %s", header.ResultCode, header.ResultMsg), nil)
	}

	items := envelope.Response.Body.Items
	if len(items) == 0 || string(items) == "null" || string(items) == `""` {
		return nil
	}
	if itemKey != "" {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(items, &wrapper); err != nil {
			return errors.NewExternalAPIError("data.go.kr items are malformed", err)
		}
		items = wrapper[itemKey]
		if len(items) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(items, target); err != nil {
		return errors.NewExternalAPIError("data.go.kr items are malformed", err)
	}
	return nil
}

// rawString renders a JSON scalar that may be quoted or bare as text.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func rawFloat(raw json.RawMessage) *float64 {
	s := rawString(raw)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func setPresent(fields map[string]string, name string, raw json.RawMessage) {
	if value := rawString(raw); value != "" {
		fields[name] = value
	}
}
