package lang

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is the result of an evaluation: float64, string, bool, Month, *List, Record or Function
type Value any

// Record is a value with named fields
type Record map[string]Value

// List is an ordered collection. X holds the time coordinate (unix seconds) of each
// item when the list derives from report days, and is nil otherwise.
type List struct {
	Items []Value
	X     []float64
}

// Function is a value that can be applied to an argument
type Function interface {
	call(ev *evaluator, arg Value, at Span) (Value, error)
}

// Month is a calendar month. It compares with numbers and with month names such as "Feb".
type Month time.Month

var monthNames = map[string]time.Month{
	"janvier":   time.January,
	"février":   time.February,
	"fevrier":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"aout":      time.August,
	"août":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"décembre":  time.December,
	"decembre":  time.December,
}

// ParseMonth resolves an English name or abbreviation ("Feb", "february") or a French
// name ("Février") into a month
func ParseMonth(name string) (Month, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if m, ok := monthNames[lower]; ok {
		return Month(m), true
	}
	if len(lower) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), lower) {
			return Month(m), true
		}
	}
	return 0, false
}

func (m Month) String() string {
	return time.Month(m).String()[:3]
}

// Point is one sample of a drawn series
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a list of numbers passed to draw
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Result of a query: the final value and every series drawn on the way
type Result struct {
	Value Value     `json:"-"`
	Drawn []*Series `json:"series"`
}

// Format renders a value for terminal output
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "()"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case Month:
		return v.String()
	case *List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Record:
		if date, ok := recordDate(v); ok {
			return date
		}
		return fmt.Sprintf("{%d fields}", len(v))
	case Function:
		return "<function>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func recordDate(r Record) (string, bool) {
	date, ok := r["date"].(Record)
	if !ok {
		return "", false
	}
	y, _ := date["year"].(float64)
	m, _ := date["month"].(Month)
	d, _ := date["day"].(float64)
	return fmt.Sprintf("{date: %04d-%02d-%02d}", int(y), int(m), int(d)), true
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "unit"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "bool"
	case Month:
		return "month"
	case *List:
		return "list"
	case Record:
		return "record"
	case Function:
		return "function"
	default:
		return fmt.Sprintf("%T", v)
	}
}
