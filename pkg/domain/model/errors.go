package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNoReport is returned when the store holds no parsable report
	ErrNoReport = goerr.New("no report available")
	// ErrReportNotFound is returned when no report covers the requested month
	ErrReportNotFound = goerr.New("report not found")
	// ErrInvalidMonth is returned for a month not formatted as YYYY-MM
	ErrInvalidMonth = goerr.New("invalid month, expected YYYY-MM")
)
