package weather

import (
	"strings"
	"time"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// Request asks for the fused weather of a coordinate or an address.
type Request struct {
	Coordinate *location.Coordinate
	Address    string
}

// Validate checks that exactly one way of locating the point is given.
func (r *Request) Validate() error {
	r.Address = strings.TrimSpace(r.Address)
	switch {
	case r.Coordinate == nil && r.Address == "":
		return errors.NewValidationError("either a coordinate or an address is required")
	case r.Coordinate != nil && r.Address != "":
		return errors.NewValidationError("coordinate and address are mutually exclusive")
	case r.Coordinate != nil:
		return r.Coordinate.Validate()
	default:
		return nil
	}
}

// Current is the latest observed state with both summaries.
type Current struct {
	series.MergedSlot
	Yesterday      *series.MergedSlot `json:"yesterday,omitempty"`
	SummaryWeather string             `json:"summaryWeather"`
	Summary        string             `json:"summary"`
	ObservedAt     time.Time          `json:"observedAt"`
}

// DailyForecast is one day of the daily outlook.
type DailyForecast struct {
	Date      string   `json:"date"`
	FromToday int      `json:"fromToday"`
	DayOfWeek string   `json:"dayOfWeek"`
	TextAM    string   `json:"wfAm,omitempty"`
	TextPM    string   `json:"wfPm,omitempty"`
	SkyAM     int      `json:"skyAm"`
	SkyPM     int      `json:"skyPm"`
	PtyAM     int      `json:"ptyAm"`
	PtyPM     int      `json:"ptyPm"`
	Sky       int      `json:"sky"`
	Pty       int      `json:"pty"`
	PopAM     *float64 `json:"popAm,omitempty"`
	PopPM     *float64 `json:"popPm,omitempty"`
	Pop       *float64 `json:"pop,omitempty"`
	TempMin   *float64 `json:"tmn,omitempty"`
	TempMax   *float64 `json:"tmx,omitempty"`
	SkyIcon   string   `json:"skyIcon"`
}

// AirQuality is the reading of the nearest reporting measuring station.
type AirQuality struct {
	StationName string   `json:"stationName"`
	DataTime    string   `json:"dataTime"`
	PM10        *float64 `json:"pm10Value,omitempty"`
	PM25        *float64 `json:"pm25Value,omitempty"`
	Khai        *float64 `json:"khaiValue,omitempty"`
	PM10Grade   int      `json:"pm10Grade"`
	PM25Grade   int      `json:"pm25Grade"`
	KhaiGrade   int      `json:"khaiGrade"`
	PM10Text    string   `json:"pm10Str,omitempty"`
	PM25Text    string   `json:"pm25Str,omitempty"`
	KhaiText    string   `json:"khaiStr,omitempty"`
}

// UVInfo is the graded UV index of the area.
type UVInfo struct {
	AreaCode string    `json:"areaNo"`
	IssuedAt time.Time `json:"issuedAt"`
	Value    float64   `json:"ultrv"`
	Grade    int       `json:"ultrvGrade"`
	Text     string    `json:"ultrvStr"`
}

// SourceStatus reports how one upstream source contributed.
type SourceStatus struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// Report is the fused weather of one point.
type Report struct {
	Location    location.Location        `json:"location"`
	Current     *Current                 `json:"current,omitempty"`
	Short       series.Series            `json:"short"`
	Daily       []DailyForecast          `json:"daily"`
	Outlook     string                   `json:"midOutlook,omitempty"`
	History     []ports.DailyObservation `json:"history,omitempty"`
	Air         *AirQuality              `json:"airInfo,omitempty"`
	UV          *UVInfo                  `json:"uv,omitempty"`
	Sources     []SourceStatus           `json:"sources"`
	GeneratedAt time.Time                `json:"generatedAt"`
}
