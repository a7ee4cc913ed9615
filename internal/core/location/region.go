package location

import (
	"strings"

	"todayweather.app/pkg/errors"
)

// Provider code spaces addressed by region.
const (
	ProviderOutlook     = "mid-outlook"
	ProviderLand        = "mid-land"
	ProviderTemperature = "mid-ta"
)

var administrativeSuffixes = []string{"특별자치도", "특별자치시", "특별시", "광역시"}

// Abbreviations left over once the suffix is stripped from newer province names.
var provinceAliases = map[string]string{
	"전북": "전라북도",
	"전남": "전라남도",
	"강원": "강원도",
	"충북": "충청북도",
	"충남": "충청남도",
	"경북": "경상북도",
	"경남": "경상남도",
	"경기": "경기도",
}

// StripSuffix removes administrative suffixes from a 1st-level region name.
func StripSuffix(name string) string {
	simplified := strings.TrimSpace(name)
	for _, suffix := range administrativeSuffixes {
		if strings.HasSuffix(simplified, suffix) {
			simplified = strings.TrimSuffix(simplified, suffix)
			break
		}
	}
	simplified = strings.TrimSpace(simplified)
	if canonical, ok := provinceAliases[simplified]; ok {
		return canonical
	}
	return simplified
}

type regionEntry struct {
	Code  string
	Names string
}

var outlookStations = []regionEntry{
	{Code: "108", Names: "전국"},
	{Code: "105", Names: "강원도"},
	{Code: "109", Names: "서울,인천,경기도"},
	{Code: "131", Names: "충청북도"},
	{Code: "133", Names: "대전,세종,충청남도"},
	{Code: "146", Names: "전라북도"},
	{Code: "156", Names: "광주,전라남도"},
	{Code: "143", Names: "대구,경상북도"},
	{Code: "159", Names: "부산,울산,경상남도"},
	{Code: "184", Names: "제주도"},
}

const (
	landGangwonWest = "11D10000"
	landGangwonEast = "11D20000"
)

var landRegions = []regionEntry{
	{Code: "11B00000", Names: "서울,인천,경기도"},
	{Code: landGangwonWest, Names: "강원도영서"},
	{Code: landGangwonEast, Names: "강원도영동"},
	{Code: "11C10000", Names: "충청북도"},
	{Code: "11C20000", Names: "대전,세종,충청남도"},
	{Code: "11F10000", Names: "전라북도"},
	{Code: "11F20000", Names: "광주,전라남도"},
	{Code: "11H10000", Names: "대구,경상북도"},
	{Code: "11H20000", Names: "부산,울산,경상남도"},
	{Code: "11G00000", Names: "제주도"},
}

var gangwonWest = []string{"춘천", "원주", "철원", "화천", "양구", "인제", "홍천", "횡성", "평창", "영월", "정선"}

var gangwonEast = []string{"강릉", "속초", "동해", "삼척", "태백", "고성", "양양"}

type temperatureEntry struct {
	Code     string
	Province string
	City     string
}

// The first entry of each province is its fallback when no city matches.
var temperatureRegions = []temperatureEntry{
	{Code: "11B10101", Province: "서울", City: "서울"},
	{Code: "11B20201", Province: "인천", City: "인천"},
	{Code: "11B20601", Province: "경기도", City: "수원"},
	{Code: "11B20305", Province: "경기도", City: "파주"},
	{Code: "11D10301", Province: "강원도", City: "춘천"},
	{Code: "11D10401", Province: "강원도", City: "원주"},
	{Code: "11D20501", Province: "강원도", City: "강릉"},
	{Code: "11C10301", Province: "충청북도", City: "청주"},
	{Code: "11C20401", Province: "대전", City: "대전"},
	{Code: "11C20404", Province: "세종", City: "세종"},
	{Code: "11C20101", Province: "충청남도", City: "서산"},
	{Code: "11C20301", Province: "충청남도", City: "천안"},
	{Code: "11F10201", Province: "전라북도", City: "전주"},
	{Code: "21F10501", Province: "전라북도", City: "군산"},
	{Code: "11F20501", Province: "광주", City: "광주"},
	{Code: "21F20801", Province: "전라남도", City: "목포"},
	{Code: "11F20401", Province: "전라남도", City: "여수"},
	{Code: "11H10701", Province: "대구", City: "대구"},
	{Code: "11H10501", Province: "경상북도", City: "안동"},
	{Code: "11H10201", Province: "경상북도", City: "포항"},
	{Code: "11H20201", Province: "부산", City: "부산"},
	{Code: "11H20101", Province: "울산", City: "울산"},
	{Code: "11H20301", Province: "경상남도", City: "창원"},
	{Code: "11G00201", Province: "제주도", City: "제주"},
	{Code: "11G00401", Province: "제주도", City: "서귀포"},
}

func matchEntry(entries []regionEntry, simplified string) (regionEntry, bool) {
	if simplified == "" {
		return regionEntry{}, false
	}
	for _, entry := range entries {
		if strings.Contains(entry.Names, simplified) {
			return entry, true
		}
	}
	return regionEntry{}, false
}

// OutlookStationID maps a 1st-level name to the mid-range outlook station id.
func OutlookStationID(province string) (string, error) {
	entry, ok := matchEntry(outlookStations, StripSuffix(province))
	if !ok {
		return "", errors.NewRegionNotFoundError(ProviderOutlook, province)
	}
	return entry.Code, nil
}

// LandRegionID maps a region name to the mid-range land outlook region id.
// Gangwon is split into its west and east zones by the 2nd-level name.
func LandRegionID(province, city string) (string, error) {
	entry, ok := matchEntry(landRegions, StripSuffix(province))
	if !ok {
		return "", errors.NewRegionNotFoundError(ProviderLand, province)
	}

	if entry.Code == landGangwonWest || entry.Code == landGangwonEast {
		prefix := leadingRunes(strings.TrimSpace(city), 2)
		switch {
		case containsString(gangwonWest, prefix):
			return landGangwonWest, nil
		case containsString(gangwonEast, prefix):
			return landGangwonEast, nil
		}
	}
	return entry.Code, nil
}

// TemperatureRegionID maps a region name to the mid-range temperature region id.
func TemperatureRegionID(province, city string) (string, error) {
	simplified := StripSuffix(province)
	if simplified == "" {
		return "", errors.NewRegionNotFoundError(ProviderTemperature, province)
	}

	fallback := ""
	for _, entry := range temperatureRegions {
		if !strings.Contains(entry.Province, simplified) {
			continue
		}
		if fallback == "" {
			fallback = entry.Code
		}
		if city != "" && strings.Contains(city, entry.City) {
			return entry.Code, nil
		}
	}
	if fallback == "" {
		return "", errors.NewRegionNotFoundError(ProviderTemperature, province)
	}
	return fallback, nil
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
