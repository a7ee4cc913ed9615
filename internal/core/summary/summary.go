// Package summary ranks noteworthy conditions into a short headline.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"todayweather.app/internal/core/derive"
	"todayweather.app/internal/ports"
)

// Candidate is one noteworthy condition.
type Candidate struct {
	Text     string
	Severity float64
}

// Advisory is an active special weather advisory.
type Advisory struct {
	Category int
	Text     string
}

// Conditions are the inputs of the weather candidates. Nil pointers mean not observed.
type Conditions struct {
	Hour            int
	Temperature     *float64
	YesterdayTemp   *float64
	WeatherText     string
	WeatherType     int
	Advisory        *Advisory
	Rain1h          *float64
	PrecipType      int
	DiscomfortGrade int
	DiscomfortText  string
	SensoryTemp     *float64
	UVIndex         *float64
	WindGrade       int
	WindText        string
}

// Air holds air-quality grades 1..4; zero means unknown.
type Air struct {
	PM25Grade int
	PM10Grade int
	KhaiGrade int
}

var precipTexts = map[int]string{
	derive.PtyRain:     "비",
	derive.PtyRainSnow: "비/눈",
	derive.PtySnow:     "눈",
}

// WeatherCandidates builds the candidates derived from weather conditions.
func WeatherCandidates(c Conditions) []Candidate {
	var candidates []Candidate

	if c.Temperature != nil && c.YesterdayTemp != nil {
		delta := *c.Temperature - *c.YesterdayTemp
		severity := math.Round(math.Abs(delta))
		if severity <= 2 {
			severity = 2.5
		}
		candidates = append(candidates, Candidate{Text: temperatureDeltaText(delta), Severity: severity})
	}

	if c.WeatherText != "" {
		severity := 2.5
		if c.WeatherType > 3 {
			severity = 3
		}
		candidates = append(candidates, Candidate{Text: c.WeatherText, Severity: severity})
	}

	if c.Advisory != nil {
		candidates = append(candidates, Candidate{Text: c.Advisory.Text, Severity: float64(c.Advisory.Category) + 5})
	}

	if c.Rain1h != nil && *c.Rain1h > 0 && c.PrecipType != derive.PtyNone {
		amount := strconv.FormatFloat(*c.Rain1h, 'f', -1, 64) + "mm"
		text := strings.TrimSpace(precipTexts[c.PrecipType] + " " + amount)
		candidates = append(candidates, Candidate{Text: text, Severity: *c.Rain1h + 3})
	}

	if c.DiscomfortGrade > 0 && c.Temperature != nil && *c.Temperature >= 20 {
		candidates = append(candidates, Candidate{Text: "불쾌지수 " + c.DiscomfortText, Severity: float64(c.DiscomfortGrade)})
	}

	if c.SensoryTemp != nil && c.Temperature != nil && *c.SensoryTemp != *c.Temperature {
		diff := math.Round(*c.SensoryTemp - *c.Temperature)
		text := "체감온도 " + strconv.FormatFloat(*c.SensoryTemp, 'f', -1, 64) + "°"
		candidates = append(candidates, Candidate{Text: text, Severity: math.Abs(diff)})
	}

	if c.UVIndex != nil && *c.UVIndex > 0 && c.Hour <= 15 {
		grade := derive.UVGrade(*c.UVIndex)
		severity := float64(grade)
		if c.Hour >= 11 {
			severity++
		}
		candidates = append(candidates, Candidate{Text: "자외선 " + derive.UVText(grade), Severity: severity})
	}

	if c.WindGrade > 0 && c.WindText != "" {
		candidates = append(candidates, Candidate{Text: c.WindText, Severity: float64(c.WindGrade) + 1})
	}

	return candidates
}

// AirCandidates returns at most one candidate: the worst of the three grades.
func AirCandidates(a Air) []Candidate {
	grade := 0
	text := ""
	if a.PM25Grade > 0 {
		grade = a.PM25Grade
		text = "미세먼지 " + derive.AirGradeText(a.PM25Grade)
	}
	if a.PM10Grade > grade {
		grade = a.PM10Grade
		text = "미세먼지 " + derive.AirGradeText(a.PM10Grade)
	}
	if a.KhaiGrade > grade {
		grade = a.KhaiGrade
		text = "대기질 " + derive.AirGradeText(a.KhaiGrade)
	}
	if grade == 0 {
		return nil
	}
	return []Candidate{{Text: text, Severity: float64(grade)}}
}

func temperatureDeltaText(delta float64) string {
	rounded := int(math.Round(delta))
	switch {
	case rounded == 0:
		return "어제와 비슷함"
	case rounded > 0:
		return fmt.Sprintf("어제보다 +%d도", rounded)
	default:
		return fmt.Sprintf("어제보다 %d도", rounded)
	}
}

// Generator renders ranked candidates.
type Generator struct {
	logger ports.Logger
}

// NewGenerator creates a summary generator.
func NewGenerator(logger ports.Logger) *Generator {
	return &Generator{logger: logger}
}

// Render sorts candidates by severity and joins the top two.
// No candidates yields "" and an error log.
func (g *Generator) Render(label string, candidates ...Candidate) string {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity > ranked[j].Severity
	})

	switch len(ranked) {
	case 0:
		g.logger.Error("failed to make summary", ports.F("summary", label))
		return ""
	case 1:
		return ranked[0].Text
	default:
		return ranked[0].Text + ", " + ranked[1].Text
	}
}

// Weather renders the weather-only summary.
func (g *Generator) Weather(c Conditions) string {
	return g.Render("weather", WeatherCandidates(c)...)
}

// Full renders the summary including air quality.
func (g *Generator) Full(c Conditions, a Air) string {
	candidates := append(WeatherCandidates(c), AirCandidates(a)...)
	return g.Render("current", candidates...)
}
