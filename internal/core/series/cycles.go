package series

import "time"

// Publish lags after which a cycle's data is available upstream.
const (
	shortRangeLag  = 10 * time.Minute
	nowcastLag     = 40 * time.Minute
	ultraShortLag  = 45 * time.Minute
	airQualityLag  = 16 * time.Minute
	shortRangeStep = 3
)

// ShortRangeCycle returns the latest available short-range base time
// (02, 05, ..., 23 o'clock).
func ShortRangeCycle(now time.Time) time.Time {
	t := now.In(KST).Add(-shortRangeLag)
	hour := t.Hour() - 2
	if hour < 0 {
		prev := t.AddDate(0, 0, -1)
		return time.Date(prev.Year(), prev.Month(), prev.Day(), 23, 0, 0, 0, KST)
	}
	hour = hour/shortRangeStep*shortRangeStep + 2
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, KST)
}

// NowcastCycle returns the latest available nowcast hour.
func NowcastCycle(now time.Time) time.Time {
	return now.In(KST).Add(-nowcastLag).Truncate(time.Hour)
}

// UltraShortCycle returns the latest available ultra-short forecast base time (HH30).
func UltraShortCycle(now time.Time) time.Time {
	t := now.In(KST).Add(-ultraShortLag).Truncate(time.Hour)
	return t.Add(30 * time.Minute)
}

// MidCycle returns the latest mid-range announcement (06:00 or 18:00).
func MidCycle(now time.Time) time.Time {
	return twiceDaily(now)
}

// UVCycle returns the latest UV index issue time (06:00 or 18:00).
func UVCycle(now time.Time) time.Time {
	return twiceDaily(now)
}

// AirQualityHour returns the latest hour with published air-quality readings.
func AirQualityHour(now time.Time) time.Time {
	return now.In(KST).Add(-airQualityLag).Truncate(time.Hour)
}

func twiceDaily(now time.Time) time.Time {
	t := now.In(KST)
	switch {
	case t.Hour() < 6:
		prev := t.AddDate(0, 0, -1)
		return time.Date(prev.Year(), prev.Month(), prev.Day(), 18, 0, 0, 0, KST)
	case t.Hour() < 18:
		return time.Date(t.Year(), t.Month(), t.Day(), 6, 0, 0, 0, KST)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 18, 0, 0, 0, KST)
	}
}

// BaseDate formats a cycle as "YYYYMMDD".
func BaseDate(cycle time.Time) string {
	return cycle.In(KST).Format(dateKeyLayout)
}

// BaseTime formats a cycle as "HHmm".
func BaseTime(cycle time.Time) string {
	return cycle.In(KST).Format("1504")
}
