// Package noaa parses the "MONTHLY CLIMATOLOGICAL SUMMARY" text reports produced by Davis
// weather stations and published by the station website.
package noaa

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/model"
)

var (
	ErrMissingHeader = goerr.New("report header not found")
	ErrMissingTable  = goerr.New("report day table not found")
	ErrInvalidRow    = goerr.New("invalid report row")
)

const missing = "---"

var (
	headerPattern   = regexp.MustCompile(`(?i)(?:for|pour)\s+(\p{L}+)\.?\s+(\d{4})`)
	metadataPattern = regexp.MustCompile(`\b(NAME|CITY|STATE|ELEV|LAT|LONG):`)
)

// month prefixes, longest first where a shorter one would be ambiguous
var monthPrefixes = []struct {
	prefix string
	month  time.Month
}{
	{"juin", time.June},
	{"juil", time.July},
	{"jan", time.January},
	{"feb", time.February},
	{"fév", time.February},
	{"fev", time.February},
	{"mar", time.March},
	{"apr", time.April},
	{"avr", time.April},
	{"may", time.May},
	{"mai", time.May},
	{"jun", time.June},
	{"jul", time.July},
	{"aug", time.August},
	{"aoû", time.August},
	{"aou", time.August},
	{"sep", time.September},
	{"oct", time.October},
	{"nov", time.November},
	{"dec", time.December},
	{"déc", time.December},
}

// Parse parses a monthly report. Line endings may be LF or CRLF.
func Parse(text string) (*model.Report, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")

	report := &model.Report{}
	headerFound := false
	tableStart := -1

	for i, line := range lines {
		if !headerFound && strings.Contains(strings.ToUpper(line), "CLIMATOLOGICAL SUMMARY") {
			date, err := parseHeader(line)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to parse report header", goerr.V("line", i+1))
			}
			report.Metadata.Date = date
			headerFound = true
			continue
		}

		if metadataPattern.MatchString(line) {
			parseMetadata(line, &report.Metadata)
			continue
		}

		fields := strings.Fields(line)
		if headerFound && len(fields) > 0 && fields[0] == "DAY" {
			tableStart = i + 1
			break
		}
	}

	if !headerFound {
		return nil, goerr.Wrap(ErrMissingHeader, "failed to parse report")
	}
	if tableStart < 0 {
		return nil, goerr.Wrap(ErrMissingTable, "failed to parse report")
	}

	days, err := parseTable(lines, tableStart, report.Metadata.Date)
	if err != nil {
		return nil, err
	}
	report.Days = days

	return report, nil
}

func parseHeader(line string) (time.Time, error) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, goerr.Wrap(ErrMissingHeader, "no month and year in header", goerr.V("header", strings.TrimSpace(line)))
	}

	month, ok := parseMonth(m[1])
	if !ok {
		return time.Time{}, goerr.Wrap(ErrMissingHeader, "unknown month", goerr.V("month", m[1]))
	}

	year, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid year", goerr.V("year", m[2]))
	}

	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

func parseMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for _, p := range monthPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.month, true
		}
	}
	return 0, false
}

func parseMetadata(line string, md *model.Metadata) {
	matches := metadataPattern.FindAllStringSubmatchIndex(line, -1)
	for i, m := range matches {
		end := len(line)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		key := line[m[2]:m[3]]
		value := strings.TrimSpace(line[m[1]:end])

		switch key {
		case "NAME":
			md.Name = value
		case "CITY":
			md.City = value
		case "STATE":
			md.State = value
		case "ELEV":
			md.Elevation = value
		case "LAT":
			md.Latitude = value
		case "LONG":
			md.Longitude = value
		}
	}
}

func parseTable(lines []string, start int, month time.Time) ([]model.Day, error) {
	var days []model.Day
	inRows := false

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "---") {
			if inRows {
				break
			}
			inRows = true
			continue
		}
		if !inRows || line == "" {
			continue
		}

		day, ok, err := parseRow(line, month)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse report row", goerr.V("line", i+1))
		}
		if ok {
			days = append(days, day)
		}
	}

	if !inRows {
		return nil, goerr.Wrap(ErrMissingTable, "no table separator after the column header")
	}

	return days, nil
}

// parseRow returns false when the row carries no temperature data
func parseRow(line string, month time.Time) (model.Day, bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 12 {
		return model.Day{}, false, goerr.Wrap(ErrInvalidRow, "not enough columns", goerr.V("columns", len(fields)))
	}

	dayNum, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Day{}, false, goerr.Wrap(ErrInvalidRow, "invalid day number", goerr.V("day", fields[0]))
	}
	date := time.Date(month.Year(), month.Month(), dayNum, 0, 0, 0, 0, time.UTC)
	if dayNum < 1 || date.Month() != month.Month() {
		return model.Day{}, false, goerr.Wrap(ErrInvalidRow, "day out of month", goerr.V("day", dayNum))
	}

	if fields[1] == missing || fields[2] == missing || fields[4] == missing {
		return model.Day{}, false, nil
	}

	p := rowParser{}
	day := model.Day{
		Date:          date,
		MeanTemp:      p.number(fields[1]),
		HighTemp:      p.number(fields[2]),
		HighTempAt:    p.clock(date, fields[3]),
		LowTemp:       p.number(fields[4]),
		LowTempAt:     p.clock(date, fields[5]),
		HeatDegDays:   p.number(fields[6]),
		CoolDegDays:   p.number(fields[7]),
		Rain:          p.number(fields[8]),
		AvgWindSpeed:  p.number(fields[9]),
		HighWindSpeed: p.number(fields[10]),
	}
	if fields[11] != missing {
		at := p.clock(date, fields[11])
		day.HighWindAt = &at
	}
	if len(fields) > 12 && fields[12] != missing {
		day.DominantDir = fields[12]
	}
	if p.err != nil {
		return model.Day{}, false, p.err
	}

	return day, true, nil
}

// rowParser keeps the first conversion error so a row is parsed in one pass
type rowParser struct {
	err error
}

func (p *rowParser) number(s string) float64 {
	if s == missing {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = goerr.Wrap(ErrInvalidRow, "invalid number", goerr.V("value", s))
	}
	return v
}

func (p *rowParser) clock(date time.Time, s string) time.Time {
	if s == missing {
		return date
	}
	hour, minute, err := parseClock(s)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return date
	}
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// parseClock accepts "14:05" as well as the 12 hour "2:05p" and "12:30a" forms
func parseClock(s string) (int, int, error) {
	suffix := byte(0)
	if n := len(s); n > 0 && (s[n-1] == 'a' || s[n-1] == 'p') {
		suffix = s[n-1]
		s = s[:n-1]
	}

	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, goerr.Wrap(ErrInvalidRow, "invalid time", goerr.V("value", s))
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, goerr.Wrap(ErrInvalidRow, "invalid hour", goerr.V("value", s))
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, goerr.Wrap(ErrInvalidRow, "invalid minute", goerr.V("value", s))
	}

	switch suffix {
	case 'a':
		if hour == 12 {
			hour = 0
		}
	case 'p':
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, goerr.Wrap(ErrInvalidRow, "time out of range", goerr.V("value", s))
	}

	return hour, minute, nil
}
