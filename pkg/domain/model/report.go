package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrStationMismatch is returned when merging reports from two different stations
var ErrStationMismatch = goerr.New("reports belong to different stations")

// Report is a parsed monthly climatological summary
type Report struct {
	Metadata Metadata `json:"metadata"`
	Days     []Day    `json:"days"`
}

// Metadata describes the station and the month a report covers
type Metadata struct {
	Date      time.Time `json:"date"` // First day of the month, UTC
	Name      string    `json:"name,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Elevation string    `json:"elevation,omitempty"`
	Latitude  string    `json:"latitude,omitempty"`
	Longitude string    `json:"longitude,omitempty"`
}

// Day is one row of the report table. Temperatures are in °C, rain in mm and wind in km/h.
type Day struct {
	Date          time.Time  `json:"date"`
	MeanTemp      float64    `json:"mean_temp"`
	HighTemp      float64    `json:"high_temp"`
	HighTempAt    time.Time  `json:"high_temp_at"`
	LowTemp       float64    `json:"low_temp"`
	LowTempAt     time.Time  `json:"low_temp_at"`
	HeatDegDays   float64    `json:"heat_deg_days"`
	CoolDegDays   float64    `json:"cool_deg_days"`
	Rain          float64    `json:"rain"`
	AvgWindSpeed  float64    `json:"avg_wind_speed"`
	HighWindSpeed float64    `json:"high_wind_speed"`
	HighWindAt    *time.Time `json:"high_wind_at,omitempty"`
	DominantDir   string     `json:"dominant_dir,omitempty"`
}

// Noon returns midday of the day, used to place daily aggregates on a time axis
func (d Day) Noon() time.Time {
	return d.Date.Add(12 * time.Hour)
}

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Aout", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Label returns a human readable name such as "2023 - Mars"
func (r *Report) Label() string {
	date := r.Metadata.Date
	return fmt.Sprintf("%d - %s", date.Year(), frenchMonths[date.Month()-1])
}

// Month returns the report month formatted as YYYY-MM
func (r *Report) Month() string {
	return r.Metadata.Date.Format("2006-01")
}

// FirstDate returns the date of the earliest day, or the report month if it has no day
func (r *Report) FirstDate() time.Time {
	if len(r.Days) == 0 {
		return r.Metadata.Date
	}
	first := r.Days[0].Date
	for _, d := range r.Days[1:] {
		if d.Date.Before(first) {
			first = d.Date
		}
	}
	return first
}

// LastDate returns the date of the latest day, or the report month if it has no day
func (r *Report) LastDate() time.Time {
	if len(r.Days) == 0 {
		return r.Metadata.Date
	}
	last := r.Days[0].Date
	for _, d := range r.Days[1:] {
		if d.Date.After(last) {
			last = d.Date
		}
	}
	return last
}

// Clone returns a deep copy of the report
func (r *Report) Clone() *Report {
	days := make([]Day, len(r.Days))
	copy(days, r.Days)
	for i := range days {
		if days[i].HighWindAt != nil {
			at := *days[i].HighWindAt
			days[i].HighWindAt = &at
		}
	}
	return &Report{Metadata: r.Metadata, Days: days}
}

// Merge adds the days of other into r. Days already present in r are kept as they are.
// The resulting metadata date is the earliest month of both reports.
func (r *Report) Merge(other *Report) error {
	if other == nil {
		return nil
	}
	if r.Metadata.Name != "" && other.Metadata.Name != "" && r.Metadata.Name != other.Metadata.Name {
		return goerr.Wrap(ErrStationMismatch, "failed to merge reports",
			goerr.V("station", r.Metadata.Name),
			goerr.V("other_station", other.Metadata.Name),
		)
	}

	seen := make(map[time.Time]struct{}, len(r.Days))
	for _, d := range r.Days {
		seen[d.Date] = struct{}{}
	}
	for _, d := range other.Clone().Days {
		if _, ok := seen[d.Date]; ok {
			continue
		}
		seen[d.Date] = struct{}{}
		r.Days = append(r.Days, d)
	}
	sort.SliceStable(r.Days, func(i, j int) bool {
		return r.Days[i].Date.Before(r.Days[j].Date)
	})

	if other.Metadata.Date.Before(r.Metadata.Date) {
		r.Metadata.Date = other.Metadata.Date
	}
	if r.Metadata.Name == "" {
		date := r.Metadata.Date
		r.Metadata = other.Metadata
		r.Metadata.Date = date
	}

	return nil
}
