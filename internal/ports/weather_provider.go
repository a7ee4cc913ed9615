package ports

import (
	"context"
	"time"

	"todayweather.app/internal/core/location"
)

// RawRecord is one upstream record before normalization. Which address fields are
// set depends on the provider: Date/Time, Timestamp ("YYYY.MM.DD.HH:mm") or Offset.
// Category-coded providers fill Category/Value, the others fill Fields.
type RawRecord struct {
	Date      string            `json:"date,omitempty"`
	Time      string            `json:"time,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Offset    int               `json:"offset,omitempty"`
	Category  string            `json:"category,omitempty"`
	Value     string            `json:"value,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// RawResponse is a provider response with the publish time its records are relative to.
type RawResponse struct {
	Provider  string      `json:"provider"`
	Published time.Time   `json:"published"`
	Records   []RawRecord `json:"records"`
}

// GridForecastProvider serves forecasts addressed by grid cell.
type GridForecastProvider interface {
	ShortRange(ctx context.Context, grid location.GridCoord, cycle time.Time) (*RawResponse, error)
	UltraShortForecast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*RawResponse, error)
	Nowcast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*RawResponse, error)
}

// RegionForecastProvider serves the multi-day outlooks addressed by region code.
type RegionForecastProvider interface {
	Outlook(ctx context.Context, stnID string, cycle time.Time) (*RawResponse, error)
	LandOutlook(ctx context.Context, regID string, cycle time.Time) (*RawResponse, error)
	Temperature(ctx context.Context, regID string, cycle time.Time) (*RawResponse, error)
}

// StationObservationSource serves scraped station tables.
type StationObservationSource interface {
	MinuteTable(ctx context.Context, at time.Time) (*RawResponse, error)
	CityTable(ctx context.Context, at time.Time) (*RawResponse, error)
}

// AirQualityRecord is one measuring station's real-time reading.
type AirQualityRecord struct {
	StationName string   `json:"stationName"`
	SidoName    string   `json:"sidoName,omitempty"`
	DataTime    string   `json:"dataTime"`
	PM10Value   *float64 `json:"pm10Value,omitempty"`
	PM25Value   *float64 `json:"pm25Value,omitempty"`
	KhaiValue   *float64 `json:"khaiValue,omitempty"`
	PM10Grade   int      `json:"pm10Grade,omitempty"`
	PM25Grade   int      `json:"pm25Grade,omitempty"`
	KhaiGrade   int      `json:"khaiGrade,omitempty"`
}

// MeasuringStation is an air-quality measuring station.
type MeasuringStation struct {
	Name string  `json:"stationName"`
	Addr string  `json:"addr,omitempty"`
	Lat  float64 `json:"dmX"`
	Lon  float64 `json:"dmY"`
}

// AirQualityProvider serves real-time air-quality readings.
type AirQualityProvider interface {
	Readings(ctx context.Context, hour time.Time) ([]AirQualityRecord, error)
	Stations(ctx context.Context) ([]MeasuringStation, error)
}

// UVIndex is the ultraviolet index published for an administrative area.
type UVIndex struct {
	AreaCode string    `json:"areaNo"`
	IssuedAt time.Time `json:"issuedAt"`
	Value    float64   `json:"value"`
}

// UVIndexProvider serves the living-weather UV index.
type UVIndexProvider interface {
	UVIndex(ctx context.Context, areaCode string, cycle time.Time) (*UVIndex, error)
}

// DailyObservation is one day of station history.
type DailyObservation struct {
	Date    string   `json:"date"`
	StnID   string   `json:"stnId"`
	AvgTemp *float64 `json:"avgTa,omitempty"`
	MinTemp *float64 `json:"minTa,omitempty"`
	MaxTemp *float64 `json:"maxTa,omitempty"`
	Rain    *float64 `json:"sumRn,omitempty"`
}

// DailyHistoryProvider serves daily station history.
type DailyHistoryProvider interface {
	DailyHistory(ctx context.Context, stnID string, from, to time.Time) ([]DailyObservation, error)
}

// Geocoder maps coordinates and addresses to administrative names.
type Geocoder interface {
	ByCoordinate(ctx context.Context, coord location.Coordinate) ([]location.RegionName, error)
	ByAddress(ctx context.Context, query string) (location.Coordinate, []location.RegionName, error)
}
