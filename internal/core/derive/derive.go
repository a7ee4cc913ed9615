// Package derive computes secondary weather fields from merged observations.
// Every function is pure; callers decide which slot fields feed them.
package derive

import (
	"math"
	"strings"
	"time"

	"todayweather.app/internal/ports"
)

// Precipitation type codes.
const (
	PtyNone = iota
	PtyRain
	PtyRainSnow
	PtySnow
	PtyShower
	PtyDrizzle
	PtyDrizzleSnowFlurry
	PtySnowFlurry
)

// Sky condition codes.
const (
	SkyClear        = 1
	SkyPartlyCloudy = 2
	SkyMostlyCloudy = 3
	SkyOvercast     = 4
)

// Single-code priority once no combination rule applies.
var ptyPriority = []int{PtySnowFlurry, PtyDrizzleSnowFlurry, PtyShower, PtyDrizzle, PtySnow, PtyRain}

// ResolvePrecipType picks one precipitation type for codes observed in the
// same bucket. The result does not depend on argument order.
func ResolvePrecipType(codes ...int) int {
	present := make(map[int]bool, len(codes))
	for _, code := range codes {
		if code > PtyNone {
			present[code] = true
		}
	}
	if len(present) == 0 {
		return PtyNone
	}
	if present[PtyRainSnow] {
		return PtyRainSnow
	}
	if present[PtyRain] {
		switch {
		case present[PtySnow]:
			return PtyRainSnow
		case present[PtyDrizzleSnowFlurry] || present[PtySnowFlurry]:
			return PtyRainSnow
		case present[PtyShower] || present[PtyDrizzle]:
			return PtyRain
		}
	}
	for _, code := range ptyPriority {
		if present[code] {
			return code
		}
	}
	// Codes outside 1..7: keep the smallest so the result stays order independent.
	lowest := math.MaxInt
	for code := range present {
		if code < lowest {
			lowest = code
		}
	}
	return lowest
}

// IsColdSeason reports whether month falls in October through April.
func IsColdSeason(month time.Month) bool {
	return month >= time.October || month <= time.April
}

// UsesWindChill reports whether the wind-chill formula applies instead of the heat index.
func UsesWindChill(temp, windSpeed float64, month time.Month) bool {
	return IsColdSeason(month) && temp <= 10 && windSpeed >= 1.3
}

// SensoryTemperature returns the apparent temperature rounded to one decimal.
// windSpeed is in m/s, humidity in percent.
func SensoryTemperature(temp, humidity, windSpeed float64, month time.Month) float64 {
	var result float64
	if UsesWindChill(temp, windSpeed, month) {
		v := math.Pow(windSpeed*3.6, 0.16)
		result = 13.12 + 0.6215*temp - 11.37*v + 0.3965*temp*v
	} else {
		tw := wetBulb(temp, humidity)
		result = -0.2442 + 0.55399*tw + 0.45535*temp - 0.0022*tw*tw + 0.00278*tw*temp + 3.0
	}
	return RoundTo(result, 1)
}

func wetBulb(temp, humidity float64) float64 {
	return temp*math.Atan(0.151977*math.Sqrt(humidity+8.313659)) +
		math.Atan(temp+humidity) -
		math.Atan(humidity-1.67633) +
		0.00391838*math.Pow(humidity, 1.5)*math.Atan(0.023101*humidity) -
		4.686035
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

var windTexts = map[int]string{
	1: "바람약함",
	2: "바람약간강함",
	3: "바람강함",
	4: "바람매우강함",
}

// WindGrade buckets a wind speed in m/s into grades 1..4.
func WindGrade(speed float64) int {
	switch {
	case speed < 4:
		return 1
	case speed < 9:
		return 2
	case speed < 14:
		return 3
	default:
		return 4
	}
}

// WindText is the label of a wind grade.
func WindText(grade int) string {
	return windTexts[grade]
}

var discomfortTexts = []string{"낮음", "보통", "높음", "매우높음"}

// DiscomfortIndex computes the temperature-humidity index.
func DiscomfortIndex(temp, humidity float64) float64 {
	return RoundTo(0.81*temp+0.01*humidity*(0.99*temp-14.3)+46.3, 1)
}

// DiscomfortGrade buckets a discomfort index into grades 0..3.
func DiscomfortGrade(index float64) int {
	switch {
	case index < 68:
		return 0
	case index < 75:
		return 1
	case index < 80:
		return 2
	default:
		return 3
	}
}

// DiscomfortText is the label of a discomfort grade.
func DiscomfortText(grade int) string {
	if grade < 0 || grade >= len(discomfortTexts) {
		return ""
	}
	return discomfortTexts[grade]
}

// IsNight reports whether hour is between 18:00 and 06:00.
func IsNight(hour int) bool {
	return hour >= 18 || hour < 6
}

// SkyIcon composes the pictogram key. Unknown sky or precipitation codes are
// logged and leave the key at its best-effort value.
func SkyIcon(sky, pty int, lightning, night bool, logger ports.Logger) string {
	icon := "Sun"
	if night {
		icon = "Moon"
	}

	switch sky {
	case SkyClear:
	case SkyPartlyCloudy:
		icon += "SmallCloud"
	case SkyMostlyCloudy:
		icon += "BigCloud"
	case SkyOvercast:
		icon = "Cloud"
	default:
		logger.Error("unknown sky code", ports.F("sky", sky))
	}

	switch pty {
	case PtyNone:
	case PtyRain, PtyShower, PtyDrizzle:
		icon += "Rain"
	case PtyRainSnow, PtyDrizzleSnowFlurry:
		icon += "RainSnow"
	case PtySnow, PtySnowFlurry:
		icon += "Snow"
	default:
		logger.Error("unknown precipitation type", ports.F("pty", pty))
	}

	if lightning {
		icon += "Lightning"
	}
	return icon
}

// PrecipTypeFromText maps observed weather text to a precipitation type.
// Compound phrases are checked before the words they contain.
func PrecipTypeFromText(weather string) int {
	switch {
	case weather == "":
		return PtyNone
	case strings.Contains(weather, "빗방울눈날림"):
		return PtyDrizzleSnowFlurry
	case strings.Contains(weather, "눈날림"):
		return PtySnowFlurry
	case strings.Contains(weather, "빗방울"):
		return PtyDrizzle
	case strings.Contains(weather, "소나기"):
		return PtyShower
	case strings.Contains(weather, "비") && strings.Contains(weather, "눈"):
		return PtyRainSnow
	case strings.Contains(weather, "비"):
		return PtyRain
	case strings.Contains(weather, "눈"):
		return PtySnow
	default:
		return PtyNone
	}
}

// SkyFromCloud converts observed cloud amount (tenths) to a sky code.
func SkyFromCloud(cloud float64) int {
	if cloud <= 0 {
		return SkyClear
	}
	sky := int(math.Ceil(cloud / 2.5))
	if sky > SkyOvercast {
		return SkyOvercast
	}
	return sky
}

// SkyFromText maps outlook text to a sky code.
func SkyFromText(text string) int {
	switch {
	case strings.Contains(text, "흐림"), strings.Contains(text, "흐리"):
		return SkyOvercast
	case strings.Contains(text, "구름많음"):
		return SkyMostlyCloudy
	case strings.Contains(text, "구름조금"):
		return SkyPartlyCloudy
	default:
		return SkyClear
	}
}

// OutlookIcon is the pictogram of a daily outlook text.
func OutlookIcon(text string) string {
	switch {
	case text == "":
		return "Sun"
	case strings.Contains(text, "비"):
		return "CloudRain"
	case strings.Contains(text, "눈"):
		return "CloudSnow"
	case strings.Contains(text, "흐림"):
		return "Cloud"
	case strings.Contains(text, "구름많음"):
		return "SunBigCloud"
	case strings.Contains(text, "구름조금"):
		return "SunSmallCloud"
	default:
		return "Sun"
	}
}

var compassPoints = [][]string{
	{"N", "북"}, {"NNE", "북북동"}, {"NE", "북동"}, {"ENE", "동북동"},
	{"E", "동"}, {"ESE", "동남동"}, {"SE", "남동"}, {"SSE", "남남동"},
	{"S", "남"}, {"SSW", "남남서"}, {"SW", "남서"}, {"WSW", "서남서"},
	{"W", "서"}, {"WNW", "서북서"}, {"NW", "북서"}, {"NNW", "북북서"},
}

// WindDegrees converts a 16-point wind direction name to degrees.
func WindDegrees(name string) (float64, bool) {
	name = strings.TrimSpace(name)
	for i, names := range compassPoints {
		for _, n := range names {
			if n == name {
				return float64(i) * 22.5, true
			}
		}
	}
	return 0, false
}

// WindDirectionName converts degrees to the Korean 16-point name.
func WindDirectionName(degrees float64) string {
	idx := int(math.Floor(math.Mod(degrees+11.25, 360)/22.5)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx][1]
}

var uvTexts = []string{"낮음", "보통", "높음", "매우높음", "위험"}

// UVGrade buckets a UV index into grades 0..4.
func UVGrade(index float64) int {
	switch {
	case index < 3:
		return 0
	case index < 6:
		return 1
	case index < 8:
		return 2
	case index < 11:
		return 3
	default:
		return 4
	}
}

// UVText is the label of a UV grade.
func UVText(grade int) string {
	if grade < 0 || grade >= len(uvTexts) {
		return ""
	}
	return uvTexts[grade]
}

var airTexts = map[int]string{1: "좋음", 2: "보통", 3: "나쁨", 4: "매우나쁨"}

// AirGradeText is the label of an air-quality grade 1..4.
func AirGradeText(grade int) string {
	return airTexts[grade]
}

// PM10Grade grades a PM10 concentration (µg/m³) when the feed omits the grade.
func PM10Grade(v float64) int {
	return gradeBy(v, 30, 80, 150)
}

// PM25Grade grades a PM2.5 concentration (µg/m³).
func PM25Grade(v float64) int {
	return gradeBy(v, 15, 35, 75)
}

// KhaiGrade grades the composite air-quality index.
func KhaiGrade(v float64) int {
	return gradeBy(v, 50, 100, 250)
}

func gradeBy(v, good, normal, bad float64) int {
	switch {
	case v < 0:
		return 0
	case v <= good:
		return 1
	case v <= normal:
		return 2
	case v <= bad:
		return 3
	default:
		return 4
	}
}
