package series

import (
	"math"

	"todayweather.app/internal/core/derive"
	"todayweather.app/internal/ports"
)

// Layer is one provider's observations. Later layers take precedence.
type Layer struct {
	Name         string
	Observations []RawObservation
}

// Engine merges provider layers into one series.
type Engine struct {
	logger ports.Logger
}

// NewEngine creates a merge engine.
func NewEngine(logger ports.Logger) *Engine {
	return &Engine{logger: logger}
}

// Merge overlays layers field by field in the given order, folds the hourly
// window (everything up to the hour after the last 23:00 slot) into 3-hour
// buckets and passes later slots through.
func (e *Engine) Merge(layers ...Layer) Series {
	merged := e.Overlay(layers...)
	if len(merged) == 0 {
		return Series{}
	}

	last23 := -1
	for i := len(merged) - 1; i >= 0; i-- {
		if merged[i].Slot.Hour == 23 {
			last23 = i
			break
		}
	}
	windowEnd := -1
	if last23 >= 0 {
		windowEnd = min(last23+1, len(merged)-1)
	}

	out := make(Series, 0, len(merged))
	if windowEnd >= 0 {
		out = append(out, e.fold(merged[:windowEnd+1])...)
	}
	for i := windowEnd + 1; i < len(merged); i++ {
		out = append(out, passThrough(merged[i]))
	}

	out.Sort()
	e.logger.Debug("merged series",
		ports.F("layers", len(layers)),
		ports.F("slots", len(out)),
		ports.F("last23", last23))
	return out
}

// Overlay applies field-level precedence across layers without folding.
func (e *Engine) Overlay(layers ...Layer) Series {
	bySlot := make(map[TimeSlot]*MergedSlot)
	for _, layer := range layers {
		for _, obs := range layer.Observations {
			slot, ok := bySlot[obs.Slot]
			if !ok {
				slot = newMergedSlot(obs.Slot)
				bySlot[obs.Slot] = slot
			}
			for field, v := range obs.Values {
				slot.Set(field, v)
			}
			for field, v := range obs.Texts {
				slot.SetText(field, v)
			}
		}
	}

	out := make(Series, 0, len(bySlot))
	for _, slot := range bySlot {
		out = append(out, *slot)
	}
	out.Sort()
	return out
}

// bucketEnd returns the slot closing the 3-hour bucket that contains s.
// Hours 22 and 23 close at hour 0 of the next day; a literal hour 24 is its own bucket.
func bucketEnd(s TimeSlot) TimeSlot {
	if s.Hour == 24 {
		return s
	}
	end := (s.Hour + 2) / 3 * 3
	if end == 24 {
		next := s.AddDays(1)
		next.Hour = 0
		return next
	}
	return TimeSlot{DateKey: s.DateKey, Hour: end}
}

// fold collapses the window into 3-hour buckets. A bucket whose closing slot is
// missing is still emitted at that slot, built from its latest member; hours 22
// and 23 then close at hour 24 of their own day.
func (e *Engine) fold(window Series) Series {
	present := make(map[TimeSlot]int, len(window))
	for i, slot := range window {
		present[slot.Slot] = i
	}

	members := make(map[TimeSlot][]MergedSlot)
	var order []TimeSlot
	for _, slot := range window {
		end := bucketEnd(slot.Slot)
		if _, ok := present[end]; !ok && end.DateKey != slot.Slot.DateKey {
			end = TimeSlot{DateKey: slot.Slot.DateKey, Hour: 24}
		}
		if _, seen := members[end]; !seen {
			order = append(order, end)
		}
		members[end] = append(members[end], slot)
	}

	out := make(Series, 0, len(order))
	rainPerDay := make(map[string]float64)
	snowPerDay := make(map[string]float64)
	for _, end := range order {
		parts := members[end]
		var bucket *MergedSlot
		if idx, ok := present[end]; ok {
			bucket = window[idx].clone()
		} else {
			bucket = parts[len(parts)-1].clone()
			bucket.Slot = end
		}
		aggregate(bucket, parts)
		accumulate(bucket, FieldRainDay, FieldRain3h, rainPerDay)
		accumulate(bucket, FieldSnowDay, FieldSnow3h, snowPerDay)
		out = append(out, *bucket)
	}
	out.Sort()
	return out
}

func aggregate(bucket *MergedSlot, parts []MergedSlot) {
	if len(parts) < 2 {
		return
	}

	var (
		pop, skySum    float64
		hasPop         bool
		skyCount       int
		ptyCodes       []int
		tmn, tmx       float64
		hasTmn, hasTmx bool
	)
	for _, part := range parts {
		if v, ok := part.Value(FieldPrecipProb); ok && (!hasPop || v > pop) {
			pop, hasPop = v, true
		}
		if v, ok := part.Value(FieldSky); ok {
			skySum += v
			skyCount++
		}
		if v, ok := part.Value(FieldPrecipType); ok {
			ptyCodes = append(ptyCodes, int(v))
		}
		if v, ok := part.Value(FieldTempMin); ok && !hasTmn {
			tmn, hasTmn = v, true
		}
		if v, ok := part.Value(FieldTempMax); ok && !hasTmx {
			tmx, hasTmx = v, true
		}
	}

	if hasPop {
		bucket.Set(FieldPrecipProb, pop)
	}
	if skyCount > 0 {
		bucket.Set(FieldSky, math.Ceil(skySum/float64(skyCount)))
	}
	if len(ptyCodes) > 0 {
		bucket.Set(FieldPrecipType, float64(derive.ResolvePrecipType(ptyCodes...)))
	}
	if hasTmn {
		bucket.Set(FieldTempMin, tmn)
	}
	if hasTmx {
		bucket.Set(FieldTempMax, tmx)
	}
}

// accumulate turns a running daily total into the amount since the previous bucket of the same day.
func accumulate(bucket *MergedSlot, totalField, deltaField string, previous map[string]float64) {
	total, ok := bucket.Value(totalField)
	if !ok {
		return
	}
	bucket.Set(deltaField, total-previous[bucket.Slot.DateKey])
	previous[bucket.Slot.DateKey] = total
}

func passThrough(slot MergedSlot) MergedSlot {
	out := slot.clone()
	if v, ok := amountOf(slot, FieldPrecip); ok {
		out.Set(FieldRain3h, float64(v))
	}
	if v, ok := amountOf(slot, FieldSnow); ok {
		out.Set(FieldSnow3h, float64(v))
	}
	return *out
}

func amountOf(slot MergedSlot, field string) (int, bool) {
	if v, ok := slot.Value(field); ok {
		return int(v), true
	}
	if text, ok := slot.Text(field); ok {
		return LeadingInt(text)
	}
	return 0, false
}
