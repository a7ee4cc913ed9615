package weather

import (
	"fmt"
	"time"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
)

// Object cache keys. Each embeds the provider path, the publish cycle and the
// grid or region code so that different requests never share a key.

func gridKey(path string, cycle time.Time, grid location.GridCoord) string {
	return fmt.Sprintf("kma%s/%s_%s/%s", path, series.BaseDate(cycle), series.BaseTime(cycle), grid)
}

func regionKey(path string, cycle time.Time, code string) string {
	return fmt.Sprintf("kma%s/%s_%s/%s", path, series.BaseDate(cycle), series.BaseTime(cycle), code)
}

func scrapeKey(path string, at time.Time) string {
	return fmt.Sprintf("kma-scraper%s/%s", path, at.In(series.KST).Format("200601021504"))
}

func airQualityKey(hour time.Time) string {
	return fmt.Sprintf("keco/%s_ctprvnRltmMesureDnsty", hour.In(series.KST).Format("2006010215"))
}

func measuringStationsKey(day time.Time) string {
	return fmt.Sprintf("keco/msrstn/%s", day.In(series.KST).Format("200601"))
}

func uvKey(cycle time.Time, areaCode string) string {
	return fmt.Sprintf("kma/uv/%s/%s", cycle.In(series.KST).Format("2006010215"), areaCode)
}

func historyKey(stnID string, from, to time.Time) string {
	return fmt.Sprintf("kma/asos-daily/%s/%s_%s", stnID, series.BaseDate(from), series.BaseDate(to))
}

func geocodeKey(coord location.Coordinate) string {
	return fmt.Sprintf("kakao/coord2region/%.4f_%.4f", coord.Lat, coord.Lon)
}

func addressKey(query string) string {
	return fmt.Sprintf("kakao/address/%s", query)
}
