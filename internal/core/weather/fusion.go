package weather

import (
	"math"
	"sort"
	"time"

	"todayweather.app/internal/core/derive"
	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/core/summary"
	"todayweather.app/internal/ports"
)

const (
	shortRangeDays = 3
	noonHour       = 12
)

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// cityLayer turns the scraped city tables into one observation per hour,
// taken from the nearest station that reported anything for that hour.
func (uc *UseCase) cityLayer(tables []*ports.RawResponse, stations []location.Station) []series.RawObservation {
	var rows []series.RawObservation
	for _, table := range tables {
		rows = append(rows, uc.normalizer.Normalize(table, series.CityObservationSpec)...)
	}

	picked := nearestPerSlot(rows, stations)
	for i := range picked {
		interpretStation(&picked[i])
	}
	return picked
}

// minuteLayer keeps the nearest station's latest minute row per hour and
// flags rain when the rain sensor or the 15-minute gauge saw any.
func (uc *UseCase) minuteLayer(table *ports.RawResponse, stations []location.Station) []series.RawObservation {
	rows := uc.normalizer.Normalize(table, series.MinuteObservationSpec)
	picked := nearestPerSlot(rows, stations)
	for i := range picked {
		obs := &picked[i]
		if name, ok := obs.Text(series.FieldWindName); ok {
			if _, has := obs.Value(series.FieldWindDir); !has {
				if degrees, known := derive.WindDegrees(name); known {
					obs.Values[series.FieldWindDir] = degrees
				}
			}
		}
		rain15m, _ := obs.Value(series.FieldRain15m)
		flag, _ := obs.Value(series.FieldRainFlag)
		if _, ok := obs.Value(series.FieldPrecipType); !ok && (rain15m > 0 || flag == 1) {
			obs.Values[series.FieldPrecipType] = derive.PtyRain
		}
		delete(obs.Values, series.FieldRainFlag)
		delete(obs.Values, series.FieldRain15m)
	}
	return picked
}

// nearestPerSlot chooses, for every slot, the row of the closest station
// that carries at least one numeric value. Rows from other stations are dropped.
func nearestPerSlot(rows []series.RawObservation, stations []location.Station) []series.RawObservation {
	rank := make(map[string]int, len(stations))
	for i, station := range stations {
		rank[station.ID] = i
	}

	best := make(map[series.TimeSlot]series.RawObservation)
	bestRank := make(map[series.TimeSlot]int)
	for _, row := range rows {
		id, _ := row.Text(series.FieldStationID)
		r, nearby := rank[id]
		if !nearby || len(row.Values) == 0 {
			continue
		}
		// Equal rank replaces: later rows of one station are newer minutes of the hour.
		if current, seen := bestRank[row.Slot]; seen && current < r {
			continue
		}
		best[row.Slot] = row
		bestRank[row.Slot] = r
	}

	out := make([]series.RawObservation, 0, len(best))
	for _, row := range best {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot.Less(out[j].Slot) })
	return out
}

// interpretStation fills the forecast-style fields a station row lacks.
func interpretStation(obs *series.RawObservation) {
	if text, ok := obs.Text(series.FieldWeather); ok {
		obs.Values[series.FieldPrecipType] = float64(derive.PrecipTypeFromText(text))
	}
	cloud, _ := obs.Value(series.FieldCloud)
	obs.Values[series.FieldSky] = float64(derive.SkyFromCloud(cloud))
	if name, ok := obs.Text(series.FieldWindName); ok {
		if degrees, known := derive.WindDegrees(name); known {
			obs.Values[series.FieldWindDir] = degrees
		}
	}
}

// enrich computes the derived fields and the weather-only summary of every slot.
// Summaries compare against the slot 24 hours earlier when the series has it.
func (uc *UseCase) enrich(s series.Series, now time.Time) {
	for i := range s {
		uc.deriveSlot(&s[i], now)
	}
	for i := range s {
		var yesterday *series.MergedSlot
		dayBefore := s[i].Slot.AddDays(-1)
		prev, ok := s.Find(dayBefore)
		if !ok {
			prev, ok = s.Find(dayBefore.Normalize())
		}
		if ok {
			yesterday = &prev
		}
		s[i].Derived.Summary = uc.summaries.Weather(conditions(s[i], yesterday, nil))
	}
}

func (uc *UseCase) deriveSlot(slot *series.MergedSlot, now time.Time) {
	d := &slot.Derived
	d.FromToday = slot.Slot.DaysFrom(now)
	d.Night = derive.IsNight(slot.Slot.Hour)

	temp, hasTemp := slot.Value(series.FieldTemperature)
	humidity, hasHumidity := slot.Value(series.FieldHumidity)
	wind, hasWind := slot.Value(series.FieldWindSpeed)

	if observed, ok := slot.Value(series.FieldSensoryTemp); ok {
		d.SensoryTemp = floatPtr(observed)
	} else if hasTemp && hasHumidity {
		d.SensoryTemp = floatPtr(derive.SensoryTemperature(temp, humidity, wind, slot.Slot.Month()))
	}

	if dir, ok := slot.Value(series.FieldWindDir); ok {
		if _, named := slot.Text(series.FieldWindName); !named {
			slot.SetText(series.FieldWindName, derive.WindDirectionName(dir))
		}
	}

	if hasWind {
		d.WindGrade = derive.WindGrade(wind)
		d.WindText = derive.WindText(d.WindGrade)
	}

	if observed, ok := slot.Value(series.FieldDiscomfort); ok {
		d.Discomfort = floatPtr(observed)
	} else if hasTemp && hasHumidity {
		d.Discomfort = floatPtr(derive.DiscomfortIndex(temp, humidity))
	}
	if d.Discomfort != nil {
		d.DiscomfortGrade = derive.DiscomfortGrade(*d.Discomfort)
		d.DiscomfortText = derive.DiscomfortText(d.DiscomfortGrade)
	}

	if sky, ok := slot.Value(series.FieldSky); ok {
		pty, _ := slot.Value(series.FieldPrecipType)
		lightning, _ := slot.Value(series.FieldLightning)
		d.SkyIcon = derive.SkyIcon(int(sky), int(pty), lightning == 1, d.Night, uc.logger)
	}
}

func conditions(slot series.MergedSlot, yesterday *series.MergedSlot, uv *UVInfo) summary.Conditions {
	c := summary.Conditions{
		Hour:            slot.Slot.Hour,
		DiscomfortGrade: slot.Derived.DiscomfortGrade,
		DiscomfortText:  slot.Derived.DiscomfortText,
		SensoryTemp:     slot.Derived.SensoryTemp,
		WindGrade:       slot.Derived.WindGrade,
		WindText:        slot.Derived.WindText,
	}
	if v, ok := slot.Value(series.FieldTemperature); ok {
		c.Temperature = floatPtr(v)
	}
	if yesterday != nil {
		if v, ok := yesterday.Value(series.FieldTemperature); ok {
			c.YesterdayTemp = floatPtr(v)
		}
	}
	if text, ok := slot.Text(series.FieldWeather); ok {
		c.WeatherText = text
		c.WeatherType = derive.PrecipTypeFromText(text)
	}
	if v, ok := slot.Value(series.FieldRain1h); ok {
		c.Rain1h = floatPtr(v)
	}
	if v, ok := slot.Value(series.FieldPrecipType); ok {
		c.PrecipType = int(v)
	}
	if uv != nil {
		c.UVIndex = floatPtr(uv.Value)
	}
	return c
}

// current picks the latest hourly slot at or before now and summarizes it.
func (uc *UseCase) current(hourly series.Series, now time.Time, air *AirQuality, uv *UVInfo) *Current {
	latest, ok := hourly.Latest(series.SlotOf(now))
	if !ok {
		return nil
	}
	uc.deriveSlot(&latest, now)

	cur := &Current{MergedSlot: latest, ObservedAt: latest.Slot.Time()}
	if prev, found := hourly.Find(latest.Slot.AddDays(-1)); found {
		cur.Yesterday = &prev
	}

	c := conditions(latest, cur.Yesterday, uv)
	var a summary.Air
	if air != nil {
		a = summary.Air{PM25Grade: air.PM25Grade, PM10Grade: air.PM10Grade, KhaiGrade: air.KhaiGrade}
	}
	cur.SummaryWeather = uc.summaries.Weather(c)
	cur.Summary = uc.summaries.Full(c, a)
	cur.Derived.Summary = cur.SummaryWeather
	return cur
}

// daily builds the day list: the first days from the merged short series,
// the rest from the mid-range land and temperature outlooks.
func (uc *UseCase) daily(raw *gathered, short series.Series, now time.Time) []DailyForecast {
	byDate := make(map[string]*DailyForecast)

	grouped := make(map[string][]series.MergedSlot)
	for _, slot := range short {
		from := slot.Slot.DaysFrom(now)
		if from < 0 || from >= shortRangeDays {
			continue
		}
		grouped[slot.Slot.DateKey] = append(grouped[slot.Slot.DateKey], slot)
	}
	for date, slots := range grouped {
		day := uc.dayFromSlots(slots)
		day.Date = date
		byDate[date] = &day
	}

	land := uc.normalizer.Normalize(raw.land, series.MidLandSpec)
	temps := uc.normalizer.Normalize(raw.temperature, series.MidTemperatureSpec)
	mid := uc.engine.Overlay(
		series.Layer{Name: series.MidLandSpec.Name, Observations: land},
		series.Layer{Name: series.MidTemperatureSpec.Name, Observations: temps},
	)
	for _, slot := range mid {
		if slot.Slot.DaysFrom(now) < 0 {
			continue
		}
		if _, covered := byDate[slot.Slot.DateKey]; covered {
			continue
		}
		day := dayFromOutlook(slot)
		day.Date = slot.Slot.DateKey
		byDate[day.Date] = &day
	}

	days := make([]DailyForecast, 0, len(byDate))
	for _, day := range byDate {
		slot := series.TimeSlot{DateKey: day.Date}
		day.FromToday = slot.DaysFrom(now)
		if t := slot.Time(); !t.IsZero() {
			day.DayOfWeek = weekdays[t.Weekday()]
		}
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func (uc *UseCase) dayFromSlots(slots []series.MergedSlot) DailyForecast {
	var (
		day              DailyForecast
		ptyAM, ptyPM     []int
		minTemp, maxTemp *float64
	)
	for _, slot := range slots {
		am := slot.Slot.Hour < noonHour
		if sky, ok := slot.Value(series.FieldSky); ok {
			if am {
				day.SkyAM = max(day.SkyAM, int(sky))
			} else {
				day.SkyPM = max(day.SkyPM, int(sky))
			}
		}
		if pty, ok := slot.Value(series.FieldPrecipType); ok {
			if am {
				ptyAM = append(ptyAM, int(pty))
			} else {
				ptyPM = append(ptyPM, int(pty))
			}
		}
		if pop, ok := slot.Value(series.FieldPrecipProb); ok {
			if am {
				day.PopAM = maxPtr(day.PopAM, pop)
			} else {
				day.PopPM = maxPtr(day.PopPM, pop)
			}
		}
		if v, ok := slot.Value(series.FieldTempMin); ok {
			day.TempMin = floatPtr(v)
		}
		if v, ok := slot.Value(series.FieldTempMax); ok {
			day.TempMax = floatPtr(v)
		}
		if v, ok := slot.Value(series.FieldTemperature); ok {
			minTemp = minPtr(minTemp, v)
			maxTemp = maxPtr(maxTemp, v)
		}
	}
	if day.TempMin == nil {
		day.TempMin = minTemp
	}
	if day.TempMax == nil {
		day.TempMax = maxTemp
	}

	day.PtyAM = derive.ResolvePrecipType(ptyAM...)
	day.PtyPM = derive.ResolvePrecipType(ptyPM...)
	day.Pty = derive.ResolvePrecipType(day.PtyAM, day.PtyPM)
	day.Sky = max(day.SkyAM, day.SkyPM)
	day.Pop = maxOf(day.PopAM, day.PopPM)
	if day.Sky > 0 {
		day.SkyIcon = derive.SkyIcon(day.Sky, day.Pty, false, false, uc.logger)
	} else {
		day.SkyIcon = derive.OutlookIcon("")
	}
	return day
}

func dayFromOutlook(slot series.MergedSlot) DailyForecast {
	var day DailyForecast
	single, _ := slot.Text(series.FieldSkyText)
	day.TextAM = firstText(slot, series.FieldSkyTextAM, single)
	day.TextPM = firstText(slot, series.FieldSkyTextPM, single)

	singlePop, hasSingle := slot.Value(series.FieldPrecipProb)
	if v, ok := slot.Value(series.FieldRainProbAM); ok {
		day.PopAM = floatPtr(v)
	} else if hasSingle {
		day.PopAM = floatPtr(singlePop)
	}
	if v, ok := slot.Value(series.FieldRainProbPM); ok {
		day.PopPM = floatPtr(v)
	} else if hasSingle {
		day.PopPM = floatPtr(singlePop)
	}
	day.Pop = maxOf(day.PopAM, day.PopPM)

	day.SkyAM = derive.SkyFromText(day.TextAM)
	day.SkyPM = derive.SkyFromText(day.TextPM)
	day.PtyAM = derive.PrecipTypeFromText(day.TextAM)
	day.PtyPM = derive.PrecipTypeFromText(day.TextPM)
	day.Sky = max(day.SkyAM, day.SkyPM)
	day.Pty = derive.ResolvePrecipType(day.PtyAM, day.PtyPM)

	text := day.TextPM
	if text == "" {
		text = day.TextAM
	}
	day.SkyIcon = derive.OutlookIcon(text)

	if v, ok := slot.Value(series.FieldTempMin); ok {
		day.TempMin = floatPtr(v)
	}
	if v, ok := slot.Value(series.FieldTempMax); ok {
		day.TempMax = floatPtr(v)
	}
	return day
}

func firstText(slot series.MergedSlot, field, fallback string) string {
	if text, ok := slot.Text(field); ok {
		return text
	}
	return fallback
}

// outlookText returns the newest mid-range outlook prose.
func outlookText(observations []series.RawObservation) string {
	for i := len(observations) - 1; i >= 0; i-- {
		if text, ok := observations[i].Text(series.FieldOutlookText); ok {
			return text
		}
	}
	return ""
}

func floatPtr(v float64) *float64 {
	return &v
}

func maxPtr(current *float64, v float64) *float64 {
	if current == nil || v > *current {
		return floatPtr(v)
	}
	return current
}

func minPtr(current *float64, v float64) *float64 {
	if current == nil || v < *current {
		return floatPtr(v)
	}
	return current
}

func maxOf(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return floatPtr(math.Max(*a, *b))
	}
}
