package series

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const timestampLayout = "2006.01.02.15:04"

// Strings upstream feeds use for "nothing fell".
var noneSentinels = map[string]float64{
	"강수없음": 0,
	"적설없음": 0,
}

var unitSuffixes = []string{"mm", "cm", "%", "℃", "m/s", "km", "hPa"}

// Canonical fields that are identifiers or prose even when they look numeric.
var textOnlyFields = map[string]bool{
	FieldStationID:   true,
	FieldWeather:     true,
	FieldWindName:    true,
	FieldSkyText:     true,
	FieldSkyTextAM:   true,
	FieldSkyTextPM:   true,
	FieldOutlookText: true,
}

// Values at or below this are upstream missing-value markers.
const missingValueThreshold = -900

// Normalizer converts provider-native records into canonical observations.
type Normalizer struct {
	logger ports.Logger
}

// NewNormalizer creates a normalizer that reports dropped records through logger.
func NewNormalizer(logger ports.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a raw response into observations ordered by slot.
// Category-coded records sharing a slot collapse into one observation; unknown
// categories and unaddressable records are logged and dropped.
func (n *Normalizer) Normalize(resp *ports.RawResponse, spec ProviderSpec) []RawObservation {
	if resp == nil {
		return nil
	}
	if spec.Categorized {
		return n.unpivot(resp, spec)
	}

	observations := make([]RawObservation, 0, len(resp.Records))
	for _, record := range resp.Records {
		slot, err := n.address(resp, spec, record)
		if err != nil {
			n.logger.Warn("dropping unaddressable record", ports.F("provider", spec.Name), ports.F("error", err))
			continue
		}
		obs := NewObservation(spec.Name, slot)
		for name, raw := range record.Fields {
			field, ok := spec.Fields[name]
			if !ok {
				continue
			}
			n.assign(&obs, field, raw)
		}
		observations = append(observations, obs)
	}
	sortObservations(observations)
	return observations
}

func (n *Normalizer) unpivot(resp *ports.RawResponse, spec ProviderSpec) []RawObservation {
	bySlot := make(map[TimeSlot]*RawObservation)
	unknown := make(map[string]int)

	for _, record := range resp.Records {
		field, ok := spec.Fields[record.Category]
		if !ok {
			unknown[record.Category]++
			continue
		}
		slot, err := n.address(resp, spec, record)
		if err != nil {
			n.logger.Warn("dropping unaddressable record", ports.F("provider", spec.Name), ports.F("error", err))
			continue
		}
		obs, exists := bySlot[slot]
		if !exists {
			created := NewObservation(spec.Name, slot)
			obs = &created
			bySlot[slot] = obs
		}
		n.assign(obs, field, record.Value)
	}

	for category, count := range unknown {
		err := errors.NewMalformedRecordError(fmt.Sprintf("unknown category %q", category))
		n.logger.Warn("dropping unknown category",
			ports.F("provider", spec.Name),
			ports.F("category", category),
			ports.F("records", count),
			ports.F("error", err))
	}

	observations := make([]RawObservation, 0, len(bySlot))
	for _, obs := range bySlot {
		observations = append(observations, *obs)
	}
	sortObservations(observations)
	return observations
}

func (n *Normalizer) address(resp *ports.RawResponse, spec ProviderSpec, record ports.RawRecord) (TimeSlot, error) {
	switch spec.Addressing {
	case AddressByDateTime:
		return ParseSlot(record.Date, record.Time)
	case AddressByPublishTime:
		return SlotOf(resp.Published), nil
	case AddressByHourOffset:
		return SlotOf(resp.Published.Add(time.Duration(record.Offset) * time.Hour)), nil
	case AddressByDayOffset:
		published := resp.Published.In(KST)
		day := time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, KST)
		return SlotOf(day.AddDate(0, 0, record.Offset)), nil
	case AddressByTimestamp:
		at, err := time.ParseInLocation(timestampLayout, record.Timestamp, KST)
		if err != nil {
			return TimeSlot{}, errors.NewMalformedRecordError(fmt.Sprintf("invalid timestamp %q", record.Timestamp))
		}
		return SlotOf(at), nil
	default:
		return TimeSlot{}, errors.NewMalformedRecordError(fmt.Sprintf("unsupported addressing %d", spec.Addressing))
	}
}

func (n *Normalizer) assign(obs *RawObservation, field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if textOnlyFields[field] {
		obs.Texts[field] = raw
		return
	}
	value, isNumber := ParseValue(raw)
	if !isNumber {
		obs.Texts[field] = raw
		return
	}
	if value <= missingValueThreshold {
		return
	}
	obs.Values[field] = value
}

// ParseValue converts an upstream value to a number. Sentinels meaning "none"
// become zero and unit suffixes are ignored; anything else is not a number.
func ParseValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if v, ok := noneSentinels[raw]; ok {
		return v, true
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, true
	}
	for _, suffix := range unitSuffixes {
		if trimmed, found := strings.CutSuffix(raw, suffix); found {
			if v, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// LeadingInt reads the integer prefix of a value such as "1mm 미만" or "30.0~50.0mm".
func LeadingInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func sortObservations(observations []RawObservation) {
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Slot.Less(observations[j].Slot)
	})
}
