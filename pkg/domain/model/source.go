package model

import "strings"

// ReportSource is a report listed on the station website
type ReportSource struct {
	Name string // Label shown in the site's report selector, e.g. "2023/03"
	URL  string // Absolute download URL
}

// FileName returns the storage name of the report
func (s ReportSource) FileName() string {
	return SanitizeName(s.Name)
}

// IsRolling reports whether the source is one of the rolling NOAA reports of the current
// and previous month, which change until the month is over.
func (s ReportSource) IsRolling() bool {
	return strings.Contains(s.URL, "NOAA")
}

// SanitizeName turns a report label into a flat file name
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
