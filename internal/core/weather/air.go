package weather

import (
	"sort"

	"todayweather.app/internal/core/derive"
	"todayweather.app/internal/core/location"
	"todayweather.app/internal/ports"
)

// NearbyMeasuringStations returns the names of the n measuring stations closest to coord.
func NearbyMeasuringStations(stations []ports.MeasuringStation, coord location.Coordinate, n int) []string {
	if n <= 0 || len(stations) == 0 {
		return nil
	}
	sorted := make([]ports.MeasuringStation, len(stations))
	copy(sorted, stations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return location.DistanceKm(coord, location.Coordinate{Lat: sorted[i].Lat, Lon: sorted[i].Lon}) <
			location.DistanceKm(coord, location.Coordinate{Lat: sorted[j].Lat, Lon: sorted[j].Lon})
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	names := make([]string, n)
	for i := range names {
		names[i] = sorted[i].Name
	}
	return names
}

// ByStations returns the records of the named stations in the order of names.
func ByStations(records []ports.AirQualityRecord, names []string) []ports.AirQualityRecord {
	byName := make(map[string]ports.AirQualityRecord, len(records))
	for _, record := range records {
		if _, seen := byName[record.StationName]; !seen {
			byName[record.StationName] = record
		}
	}
	out := make([]ports.AirQualityRecord, 0, len(names))
	for _, name := range names {
		if record, ok := byName[name]; ok {
			out = append(out, record)
		}
	}
	return out
}

// airReport picks the nearest measuring station that reported a value. Without
// a station catalogue it falls back to the first reporting station of the province.
func (uc *UseCase) airReport(raw *gathered, loc location.Location) *AirQuality {
	if len(raw.air) == 0 {
		return nil
	}

	var candidates []ports.AirQualityRecord
	if len(raw.measuring) > 0 {
		names := NearbyMeasuringStations(raw.measuring, loc.Coordinate, uc.config.MeasuringStationCount)
		candidates = ByStations(raw.air, names)
	} else {
		province := location.StripSuffix(loc.Region.Province)
		for _, record := range raw.air {
			if location.StripSuffix(record.SidoName) == province {
				candidates = append(candidates, record)
			}
		}
	}

	for _, record := range candidates {
		if record.PM10Value == nil && record.PM25Value == nil && record.KhaiValue == nil {
			continue
		}
		return gradeAir(record)
	}
	uc.logger.Warn("no nearby air quality reading", ports.F("region", loc.Region.String()), ports.F("candidates", len(candidates)))
	return nil
}

func gradeAir(record ports.AirQualityRecord) *AirQuality {
	air := &AirQuality{
		StationName: record.StationName,
		DataTime:    record.DataTime,
		PM10:        record.PM10Value,
		PM25:        record.PM25Value,
		Khai:        record.KhaiValue,
		PM10Grade:   record.PM10Grade,
		PM25Grade:   record.PM25Grade,
		KhaiGrade:   record.KhaiGrade,
	}
	if air.PM10Grade == 0 && air.PM10 != nil {
		air.PM10Grade = derive.PM10Grade(*air.PM10)
	}
	if air.PM25Grade == 0 && air.PM25 != nil {
		air.PM25Grade = derive.PM25Grade(*air.PM25)
	}
	if air.KhaiGrade == 0 && air.Khai != nil {
		air.KhaiGrade = derive.KhaiGrade(*air.Khai)
	}
	air.PM10Text = derive.AirGradeText(air.PM10Grade)
	air.PM25Text = derive.AirGradeText(air.PM25Grade)
	air.KhaiText = derive.AirGradeText(air.KhaiGrade)
	return air
}

func gradeUV(uv *ports.UVIndex) *UVInfo {
	if uv == nil {
		return nil
	}
	grade := derive.UVGrade(uv.Value)
	return &UVInfo{
		AreaCode: uv.AreaCode,
		IssuedAt: uv.IssuedAt,
		Value:    uv.Value,
		Grade:    grade,
		Text:     derive.UVText(grade),
	}
}
