package chart

import "time"

const day = 24 * time.Hour

// Tick is a mark of the time axis. Step is the spacing of the grid level the mark belongs to.
type Tick struct {
	Value int64         `json:"value"`
	Step  time.Duration `json:"step"`
	Label string        `json:"label"`
}

// Label formats t with a layout that depends on the grid step
func Label(t time.Time, step time.Duration) string {
	days := int(step / day)
	switch {
	case days > 364:
		return t.Format("2006")
	case days > 29:
		return t.Format("2006/01")
	case days > 0:
		return t.Format("2006/01/02")
	default:
		return t.Format("2006/01/02 - 15:04")
	}
}

// Ticks computes the marks within [start, end). The granularity follows the span:
// decades beyond 20 years, years beyond 3 years, months beyond 90 days, days beyond
// 2 days, hours beyond 2 hours, minutes otherwise.
func Ticks(start, end time.Time) []Tick {
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return nil
	}

	span := end.Sub(start)
	spanDays := int(span / day)
	spanHours := int(span / time.Hour)

	var ticks []Tick
	add := func(t time.Time, step time.Duration) {
		if !t.Before(start) && t.Before(end) {
			ticks = append(ticks, Tick{Value: t.Unix(), Step: step, Label: Label(t, step)})
		}
	}

	switch {
	case spanDays > 365*20:
		for y := start.Year(); y <= end.Year(); y++ {
			if y%10 == 0 {
				add(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), 10*365*day)
			}
		}

	case spanDays > 365*3:
		for y := start.Year(); y <= end.Year(); y++ {
			add(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), 365*day)
		}

	case spanDays > 30*3:
		for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); m.Before(end); m = m.AddDate(0, 1, 0) {
			add(m, 30*day)
		}

	case spanDays > 2:
		for d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC); d.Before(end); d = d.AddDate(0, 0, 1) {
			add(d, dayStep(d.Day(), spanDays))
		}

	case spanHours > 2:
		for h := start.Truncate(time.Hour); h.Before(end); h = h.Add(time.Hour) {
			add(h, hourStep(h.Hour(), spanHours))
		}

	default:
		for m := start.Truncate(time.Minute); m.Before(end); m = m.Add(time.Minute) {
			add(m, time.Minute)
		}
	}

	return ticks
}

// dayStep returns the coarsest day level a day of month belongs to for a span
func dayStep(dom, spanDays int) time.Duration {
	for _, level := range []struct {
		every   int
		minSpan int
	}{
		{24, 90}, {12, 60}, {6, 30}, {3, 15},
	} {
		if spanDays > level.minSpan && dom%level.every == 0 {
			return time.Duration(level.every) * day
		}
	}
	return day
}

func hourStep(hour, spanHours int) time.Duration {
	switch {
	case spanHours > 25 && hour%6 == 0:
		return 6 * time.Hour
	case spanHours > 15 && hour%3 == 0:
		return 3 * time.Hour
	}
	return time.Hour
}
