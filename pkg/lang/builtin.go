package lang

import (
	"fmt"
	"math"
	"sort"
)

// builtin is a curried native function; it runs once arity arguments are collected
type builtin struct {
	name  string
	arity int
	args  []Value
	fn    func(ev *evaluator, args []Value, at Span) (Value, error)
}

func (b *builtin) call(ev *evaluator, arg Value, at Span) (Value, error) {
	args := append(append([]Value{}, b.args...), arg)
	if len(args) < b.arity {
		return &builtin{name: b.name, arity: b.arity, args: args, fn: b.fn}, nil
	}
	return b.fn(ev, args, at)
}

var builtins map[string]*builtin

func init() {
	builtins = map[string]*builtin{}
	for _, b := range []*builtin{
		{name: "filter", arity: 2, fn: builtinFilter},
		{name: "map", arity: 2, fn: builtinMap},
		{name: "split", arity: 2, fn: builtinSplit},
		{name: "foreach", arity: 2, fn: builtinForeach},
		{name: "draw", arity: 1, fn: builtinDraw},
		{name: "count", arity: 1, fn: builtinCount},
		{name: "sum", arity: 1, fn: reduceNumbers(func(xs []float64) float64 {
			var total float64
			for _, x := range xs {
				total += x
			}
			return total
		})},
		{name: "mean", arity: 1, fn: reduceNumbers(func(xs []float64) float64 {
			if len(xs) == 0 {
				return math.NaN()
			}
			var total float64
			for _, x := range xs {
				total += x
			}
			return total / float64(len(xs))
		})},
		{name: "max", arity: 1, fn: reduceNumbers(func(xs []float64) float64 {
			if len(xs) == 0 {
				return math.NaN()
			}
			return sorted(xs)[len(xs)-1]
		})},
		{name: "min", arity: 1, fn: reduceNumbers(func(xs []float64) float64 {
			if len(xs) == 0 {
				return math.NaN()
			}
			return sorted(xs)[0]
		})},
	} {
		builtins[b.name] = b
	}
}

// Builtins returns the names of the native functions
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sorted(xs []float64) []float64 {
	c := append([]float64{}, xs...)
	sort.Float64s(c)
	return c
}

func asList(v Value, fnName string, at Span) (*List, error) {
	l, ok := v.(*List)
	if !ok {
		return nil, errorAt(at, "%s expects a list, found %s", fnName, typeName(v))
	}
	return l, nil
}

func asPredicate(ev *evaluator, fn Value, item Value, fnName string, at Span) (bool, error) {
	v, err := ev.apply(fn, item, at)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errorAt(at, "%s predicate returned %s instead of bool", fnName, typeName(v))
	}
	return b, nil
}

// filter pred list
func builtinFilter(ev *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[1], "filter", at)
	if err != nil {
		return nil, err
	}
	out := &List{}
	for i, item := range list.Items {
		keep, err := asPredicate(ev, args[0], item, "filter", at)
		if err != nil {
			return nil, err
		}
		if keep {
			out.Items = append(out.Items, item)
			if list.X != nil {
				out.X = append(out.X, list.X[i])
			}
		}
	}
	return out, nil
}

// map f list keeps the time coordinates of the input
func builtinMap(ev *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[1], "map", at)
	if err != nil {
		return nil, err
	}
	out := &List{Items: make([]Value, len(list.Items)), X: list.X}
	for i, item := range list.Items {
		if out.Items[i], err = ev.apply(args[0], item, at); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// split pred list cuts list into consecutive groups. A new group starts at every item
// matching pred whose predecessor does not match.
func builtinSplit(ev *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[1], "split", at)
	if err != nil {
		return nil, err
	}

	groups := &List{}
	current := &List{}
	previous := false
	for i, item := range list.Items {
		match, err := asPredicate(ev, args[0], item, "split", at)
		if err != nil {
			return nil, err
		}
		if match && !previous && len(current.Items) > 0 {
			groups.Items = append(groups.Items, current)
			current = &List{}
		}
		previous = match
		current.Items = append(current.Items, item)
		if list.X != nil {
			current.X = append(current.X, list.X[i])
		}
	}
	if len(current.Items) > 0 {
		groups.Items = append(groups.Items, current)
	}
	return groups, nil
}

// foreach f lists applies f to every element, typically the groups made by split
func builtinForeach(ev *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[1], "foreach", at)
	if err != nil {
		return nil, err
	}
	out := &List{Items: make([]Value, len(list.Items))}
	for i, item := range list.Items {
		if out.Items[i], err = ev.apply(args[0], item, at); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// draw list records a list of numbers as a series and returns it unchanged
func builtinDraw(ev *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[0], "draw", at)
	if err != nil {
		return nil, err
	}

	series := &Series{Name: seriesName(len(ev.drawn))}
	for i, item := range list.Items {
		y, ok := item.(float64)
		if !ok {
			return nil, errorAt(at, "draw expects numbers, found %s", typeName(item))
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, errorAt(at, "cannot draw %s at index %d", Format(y), i)
		}
		x := float64(i)
		if list.X != nil {
			x = list.X[i]
		}
		series.Points = append(series.Points, Point{X: x, Y: y})
	}
	ev.drawn = append(ev.drawn, series)
	return list, nil
}

func seriesName(i int) string {
	return fmt.Sprintf("series %d", i+1)
}

func builtinCount(_ *evaluator, args []Value, at Span) (Value, error) {
	list, err := asList(args[0], "count", at)
	if err != nil {
		return nil, err
	}
	return float64(len(list.Items)), nil
}

func reduceNumbers(reduce func([]float64) float64) func(*evaluator, []Value, Span) (Value, error) {
	return func(_ *evaluator, args []Value, at Span) (Value, error) {
		list, err := asList(args[0], "aggregate", at)
		if err != nil {
			return nil, err
		}
		xs := make([]float64, len(list.Items))
		for i, item := range list.Items {
			x, ok := item.(float64)
			if !ok {
				return nil, errorAt(at, "expected numbers, found %s", typeName(item))
			}
			xs[i] = x
		}
		return reduce(xs), nil
	}
}
