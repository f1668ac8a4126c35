// Package chart turns reports into time series ready to plot
package chart

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/model"
)

// Kind selects which measurements a chart shows
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindRain        Kind = "rain"
	KindWind        Kind = "wind"
)

// ErrUnknownKind is returned for a kind other than temperature, rain and wind
var ErrUnknownKind = goerr.New("unknown chart kind")

// ParseKind validates a kind given by a user. Empty means temperature.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "":
		return KindTemperature, nil
	case KindTemperature, KindRain, KindWind:
		return Kind(s), nil
	}
	return "", goerr.Wrap(ErrUnknownKind, "invalid chart kind", goerr.V("kind", s))
}

// Point is a sample. X is a unix timestamp in seconds.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is one named line of a chart
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Chart is everything needed to draw one plot
type Chart struct {
	Title  string   `json:"title"`
	Unit   string   `json:"unit"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
	Bounds Bounds   `json:"bounds"`
	Ticks  []Tick   `json:"ticks"`
}

// Build creates the chart of kind for report, with default bounds and their ticks
func Build(report *model.Report, kind Kind) (*Chart, error) {
	series, err := BuildSeries(report, kind)
	if err != nil {
		return nil, err
	}

	bounds := DefaultBounds(report)
	c := &Chart{
		Series: series,
		Bounds: bounds,
		Ticks:  Ticks(bounds.StartTime(), bounds.EndTime()),
	}
	switch kind {
	case KindTemperature:
		c.Title, c.Unit, c.YLabel = "Temperature", "°C", "Temperature en °C"
	case KindRain:
		c.Title, c.Unit, c.YLabel = "Pluie", "mm", "Pluie en mm/m²"
	case KindWind:
		c.Title, c.Unit, c.YLabel = "Vent", "km/h", "Vent en km/h"
	}
	return c, nil
}

func at(t time.Time, y float64) Point {
	return Point{X: float64(t.Unix()), Y: y}
}

// BuildSeries extracts the lines of kind from report. Daily aggregates sit at noon,
// extremes at the time they were observed.
func BuildSeries(report *model.Report, kind Kind) ([]Series, error) {
	days := report.Days

	switch kind {
	case KindTemperature:
		low := Series{Name: "temperature minimale", Color: "lightblue"}
		mean := Series{Name: "temperature moyenne", Color: "green"}
		high := Series{Name: "temperature maximale", Color: "red"}
		for _, d := range days {
			low.Points = append(low.Points, at(d.LowTempAt, d.LowTemp))
			mean.Points = append(mean.Points, at(d.Noon(), d.MeanTemp))
			high.Points = append(high.Points, at(d.HighTempAt, d.HighTemp))
		}
		return []Series{low, mean, high}, nil

	case KindRain:
		rain := Series{Name: "pluie", Color: "lightblue"}
		for _, d := range days {
			rain.Points = append(rain.Points, at(d.Noon(), d.Rain))
		}
		return []Series{rain}, nil

	case KindWind:
		mean := Series{Name: "vent moyen", Color: "green"}
		high := Series{Name: "vent maximal", Color: "red"}
		for _, d := range days {
			mean.Points = append(mean.Points, at(d.Noon(), d.AvgWindSpeed))
			highAt := d.Noon()
			if d.HighWindAt != nil {
				highAt = *d.HighWindAt
			}
			high.Points = append(high.Points, at(highAt, d.HighWindSpeed))
		}
		return []Series{mean, high}, nil
	}

	return nil, goerr.Wrap(ErrUnknownKind, "cannot build series", goerr.V("kind", kind))
}

// MaxDefaultSpan is the widest window shown before the user zooms out
const MaxDefaultSpan = 60 * 24 * time.Hour

// Bounds is the visible time range of a chart in unix seconds
type Bounds struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (b Bounds) StartTime() time.Time { return time.Unix(b.Start, 0).UTC() }
func (b Bounds) EndTime() time.Time   { return time.Unix(b.End, 0).UTC() }

// DefaultBounds spans from the first day at 00:00:00 to the last day at 23:59:59,
// keeping only the last 60 days
func DefaultBounds(report *model.Report) Bounds {
	start := report.FirstDate()
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := report.LastDate()
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, time.UTC)

	// whole days only: a range of 60 days and some hours is kept as is
	if end.Sub(start).Truncate(24*time.Hour) > MaxDefaultSpan {
		start = end.Add(-MaxDefaultSpan)
	}
	return Bounds{Start: start.Unix(), End: end.Unix()}
}
