package lang

import (
	"fmt"
	"math"
	"strings"

	"github.com/m-mizutani/meteo/pkg/domain/model"
)

// Eval parses and evaluates input with `data` bound to the days of report
func Eval(input string, report *model.Report) (*Result, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return EvalNode(expr, report)
}

// EvalNode evaluates an already parsed expression
func EvalNode(expr Node, report *model.Report) (*Result, error) {
	ev := &evaluator{data: DayList(report)}
	v, err := ev.eval(expr, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Value: v, Drawn: ev.drawn}, nil
}

// DayList converts the days of a report into a list of records placed at noon
func DayList(report *model.Report) *List {
	list := &List{}
	if report == nil {
		return list
	}
	for _, d := range report.Days {
		list.Items = append(list.Items, DayRecord(d))
		list.X = append(list.X, float64(d.Noon().Unix()))
	}
	return list
}

// DayRecord exposes a day as a record
func DayRecord(d model.Day) Record {
	return Record{
		"date": Record{
			"year":  float64(d.Date.Year()),
			"month": Month(d.Date.Month()),
			"day":   float64(d.Date.Day()),
		},
		"temperature": d.MeanTemp,
		"mean":        d.MeanTemp,
		"high":        d.HighTemp,
		"low":         d.LowTemp,
		"rain":        d.Rain,
		"wind":        d.AvgWindSpeed,
		"gust":        d.HighWindSpeed,
	}
}

type scope struct {
	name   string
	value  Value
	parent *scope
}

func (s *scope) lookup(name string) (Value, bool) {
	for ; s != nil; s = s.parent {
		if s.name == name {
			return s.value, true
		}
	}
	return nil, false
}

type evaluator struct {
	data  *List
	drawn []*Series
	depth int
}

// maxEvalDepth bounds recursion over long pipelines and field chains
const maxEvalDepth = 4096

func errorAt(span Span, format string, args ...any) error {
	return &Error{Span: span, Message: fmt.Sprintf(format, args...)}
}

func (ev *evaluator) eval(n Node, env *scope) (Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > maxEvalDepth {
		return nil, errorAt(n.Span(), "expression nested too deeply")
	}
	return ev.evalNode(n, env)
}

func (ev *evaluator) evalNode(n Node, env *scope) (Value, error) {
	switch n := n.(type) {
	case *NumberLit:
		if math.IsNaN(n.Value) {
			return nil, errorAt(n.At, "invalid number `%s`", n.Text)
		}
		return n.Value, nil
	case *StringLit:
		return n.Value, nil
	case *BoolLit:
		return n.Value, nil
	case *Group:
		return ev.eval(n.Inner, env)

	case *Identifier:
		if v, ok := env.lookup(n.Name); ok {
			return v, nil
		}
		if n.Name == "data" {
			return ev.data, nil
		}
		if b, ok := builtins[n.Name]; ok {
			return b, nil
		}
		return nil, errorAt(n.At, "unknown identifier `%s`", n.Name)

	case *FieldAccess:
		target, err := ev.eval(n.Target, env)
		if err != nil {
			return nil, err
		}
		rec, ok := target.(Record)
		if !ok {
			return nil, errorAt(n.At, "cannot access field `%s` of a %s", n.Name, typeName(target))
		}
		v, ok := rec[n.Name]
		if !ok {
			return nil, errorAt(n.At, "unknown field `%s`", n.Name)
		}
		return v, nil

	case *Lambda:
		return &closure{param: n.Param, body: n.Body, env: env}, nil

	case *Apply:
		fn, err := ev.eval(n.Fn, env)
		if err != nil {
			return nil, err
		}
		for _, argNode := range n.Args {
			arg, err := ev.eval(argNode, env)
			if err != nil {
				return nil, err
			}
			if fn, err = ev.apply(fn, arg, n.Fn.Span()); err != nil {
				return nil, err
			}
		}
		return fn, nil

	case *PipeExpr:
		left, err := ev.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		fn, err := ev.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.apply(fn, left, n.Right.Span())

	case *Binary:
		return ev.evalBinary(n, env)
	}

	return nil, errorAt(n.Span(), "unsupported expression")
}

func (ev *evaluator) apply(fn Value, arg Value, at Span) (Value, error) {
	f, ok := fn.(Function)
	if !ok {
		return nil, errorAt(at, "a %s is not a function", typeName(fn))
	}
	return f.call(ev, arg, at)
}

func (ev *evaluator) evalBinary(n *Binary, env *scope) (Value, error) {
	left, err := ev.eval(n.Left, env)
	if err != nil {
		return nil, err
	}

	if n.Op == LogicalOr || n.Op == LogicalAnd {
		lb, ok := left.(bool)
		if !ok {
			return nil, errorAt(n.Left.Span(), "expected bool, found %s", typeName(left))
		}
		if (n.Op == LogicalOr && lb) || (n.Op == LogicalAnd && !lb) {
			return lb, nil
		}
		right, err := ev.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, errorAt(n.Right.Span(), "expected bool, found %s", typeName(right))
		}
		return rb, nil
	}

	right, err := ev.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	cmp, err := compare(left, right)
	if err != nil {
		return nil, errorAt(n.OpAt, "%s", err.Error())
	}
	switch n.Op {
	case Equal:
		return cmp == 0, nil
	case InferiorOrEqual:
		return cmp <= 0, nil
	case StrictInferior:
		return cmp < 0, nil
	case SuperiorOrEqual:
		return cmp >= 0, nil
	case StrictSuperior:
		return cmp > 0, nil
	}
	return nil, errorAt(n.OpAt, "unsupported operator `%s`", n.Op)
}

// compare orders two values, converting month names and numbers when one side is a Month
func compare(a, b Value) (int, error) {
	if m, ok := a.(Month); ok {
		other, err := toMonth(b)
		if err != nil {
			return 0, err
		}
		return cmpInt(int(m), int(other)), nil
	}
	if _, ok := b.(Month); ok {
		c, err := compare(b, a)
		return -c, err
	}

	switch a := a.(type) {
	case float64:
		if b, ok := b.(float64); ok {
			switch {
			case a < b:
				return -1, nil
			case a > b:
				return 1, nil
			}
			return 0, nil
		}
	case string:
		if b, ok := b.(string); ok {
			return strings.Compare(a, b), nil
		}
	case bool:
		if b, ok := b.(bool); ok {
			return cmpInt(boolInt(a), boolInt(b)), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %s with %s", typeName(a), typeName(b))
}

func toMonth(v Value) (Month, error) {
	switch v := v.(type) {
	case Month:
		return v, nil
	case float64:
		if v >= 1 && v <= 12 && v == math.Trunc(v) {
			return Month(v), nil
		}
		return 0, fmt.Errorf("%v is not a month number", v)
	case string:
		if m, ok := ParseMonth(v); ok {
			return m, nil
		}
		return 0, fmt.Errorf("%q is not a month name", v)
	}
	return 0, fmt.Errorf("cannot compare month with %s", typeName(v))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type closure struct {
	param string
	body  Node
	env   *scope
}

func (c *closure) call(ev *evaluator, arg Value, _ Span) (Value, error) {
	return ev.eval(c.body, &scope{name: c.param, value: arg, parent: c.env})
}
