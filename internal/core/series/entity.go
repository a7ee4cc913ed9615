package series

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"todayweather.app/pkg/errors"
)

// KST is the time zone every upstream feed publishes in. Korea observes no DST.
var KST = time.FixedZone("KST", 9*60*60)

const dateKeyLayout = "20060102"

// TimeSlot addresses one (date, hour) point. Hour 24 means the end of DateKey.
type TimeSlot struct {
	DateKey string `json:"date"`
	Hour    int    `json:"time"`
}

// SlotOf returns the slot containing t in KST.
func SlotOf(t time.Time) TimeSlot {
	local := t.In(KST)
	return TimeSlot{DateKey: local.Format(dateKeyLayout), Hour: local.Hour()}
}

// ParseSlot builds a slot from "YYYYMMDD" and an "HHmm" or "HH" time.
func ParseSlot(date, hhmm string) (TimeSlot, error) {
	if _, err := time.ParseInLocation(dateKeyLayout, date, KST); err != nil {
		return TimeSlot{}, errors.NewMalformedRecordError(fmt.Sprintf("invalid date %q", date))
	}
	value, err := strconv.Atoi(hhmm)
	if err != nil {
		return TimeSlot{}, errors.NewMalformedRecordError(fmt.Sprintf("invalid time %q", hhmm))
	}
	hour := value
	if len(hhmm) > 2 {
		hour = value / 100
	}
	if hour < 0 || hour > 24 {
		return TimeSlot{}, errors.NewMalformedRecordError(fmt.Sprintf("hour out of range %q", hhmm))
	}
	return TimeSlot{DateKey: date, Hour: hour}, nil
}

// Key renders the slot as "YYYYMMDD-H".
func (s TimeSlot) Key() string {
	return fmt.Sprintf("%s-%d", s.DateKey, s.Hour)
}

// Less orders slots by date then hour.
func (s TimeSlot) Less(o TimeSlot) bool {
	if s.DateKey != o.DateKey {
		return s.DateKey < o.DateKey
	}
	return s.Hour < o.Hour
}

// Time returns the start of the slot in KST.
func (s TimeSlot) Time() time.Time {
	day, err := time.ParseInLocation(dateKeyLayout, s.DateKey, KST)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(s.Hour) * time.Hour)
}

// Month is the calendar month of DateKey.
func (s TimeSlot) Month() time.Month {
	day, err := time.ParseInLocation(dateKeyLayout, s.DateKey, KST)
	if err != nil {
		return 0
	}
	return day.Month()
}

// AddDays shifts the slot by whole days keeping the hour.
func (s TimeSlot) AddDays(days int) TimeSlot {
	day, err := time.ParseInLocation(dateKeyLayout, s.DateKey, KST)
	if err != nil {
		return s
	}
	return TimeSlot{DateKey: day.AddDate(0, 0, days).Format(dateKeyLayout), Hour: s.Hour}
}

// Normalize folds hour 24 into hour 0 of the following day.
// The merge engine never calls it; consumers opt in.
func (s TimeSlot) Normalize() TimeSlot {
	if s.Hour != 24 {
		return s
	}
	next := s.AddDays(1)
	next.Hour = 0
	return next
}

// DaysFrom is the whole-day distance from ref's KST date to the slot's date.
func (s TimeSlot) DaysFrom(ref time.Time) int {
	day, err := time.ParseInLocation(dateKeyLayout, s.DateKey, KST)
	if err != nil {
		return 0
	}
	local := ref.In(KST)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KST)
	return int(math.Round(day.Sub(today).Hours() / 24))
}

// RawObservation is one provider's fields for one slot.
type RawObservation struct {
	Provider string             `json:"provider"`
	Slot     TimeSlot           `json:"slot"`
	Values   map[string]float64 `json:"values,omitempty"`
	Texts    map[string]string  `json:"texts,omitempty"`
}

// NewObservation creates an empty observation.
func NewObservation(provider string, slot TimeSlot) RawObservation {
	return RawObservation{
		Provider: provider,
		Slot:     slot,
		Values:   map[string]float64{},
		Texts:    map[string]string{},
	}
}

// Value returns a numeric field.
func (o RawObservation) Value(field string) (float64, bool) {
	v, ok := o.Values[field]
	return v, ok
}

// Text returns a text field.
func (o RawObservation) Text(field string) (string, bool) {
	v, ok := o.Texts[field]
	return v, ok
}

// Derived holds the fields computed from a merged slot.
type Derived struct {
	SensoryTemp     *float64 `json:"sensorytem,omitempty"`
	Night           bool     `json:"night"`
	SkyIcon         string   `json:"skyIcon"`
	FromToday       int      `json:"fromToday"`
	WindGrade       int      `json:"wsdGrade,omitempty"`
	WindText        string   `json:"wsdStr,omitempty"`
	Discomfort      *float64 `json:"dspls,omitempty"`
	DiscomfortGrade int      `json:"dsplsGrade,omitempty"`
	DiscomfortText  string   `json:"dsplsStr,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// MergedSlot is the precedence-resolved union of every observation of one slot.
type MergedSlot struct {
	Slot    TimeSlot           `json:"slot"`
	Values  map[string]float64 `json:"values"`
	Texts   map[string]string  `json:"texts,omitempty"`
	Derived Derived            `json:"derived"`
}

func newMergedSlot(slot TimeSlot) *MergedSlot {
	return &MergedSlot{Slot: slot, Values: map[string]float64{}, Texts: map[string]string{}}
}

// Value returns a numeric field.
func (m MergedSlot) Value(field string) (float64, bool) {
	v, ok := m.Values[field]
	return v, ok
}

// Text returns a text field.
func (m MergedSlot) Text(field string) (string, bool) {
	v, ok := m.Texts[field]
	return v, ok
}

// Set writes a numeric field, replacing any text value of the same field.
func (m *MergedSlot) Set(field string, v float64) {
	delete(m.Texts, field)
	m.Values[field] = v
}

// SetText writes a text field, replacing any numeric value of the same field.
func (m *MergedSlot) SetText(field, v string) {
	delete(m.Values, field)
	m.Texts[field] = v
}

func (m MergedSlot) clone() *MergedSlot {
	out := newMergedSlot(m.Slot)
	for k, v := range m.Values {
		out.Values[k] = v
	}
	for k, v := range m.Texts {
		out.Texts[k] = v
	}
	out.Derived = m.Derived
	return out
}

// Series is ascending by slot with no duplicates.
type Series []MergedSlot

// Sort orders the series by slot.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Slot.Less(s[j].Slot) })
}

// Find returns the slot at ts.
func (s Series) Find(ts TimeSlot) (MergedSlot, bool) {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Slot.Less(ts) })
	if i < len(s) && s[i].Slot == ts {
		return s[i], true
	}
	return MergedSlot{}, false
}

// Latest returns the last slot at or before ts.
func (s Series) Latest(ts TimeSlot) (MergedSlot, bool) {
	i := sort.Search(len(s), func(i int) bool { return ts.Less(s[i].Slot) })
	if i == 0 {
		return MergedSlot{}, false
	}
	return s[i-1], true
}
