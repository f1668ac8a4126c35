package lang_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/lang"
)

func asLangError(err error, target **lang.Error) bool {
	return errors.As(err, target)
}

func TestParsePrimary(t *testing.T) {
	t.Run("identifier", func(t *testing.T) {
		node, err := lang.Parse("data")
		gt.NoError(t, err)
		ident, ok := node.(*lang.Identifier)
		gt.True(t, ok)
		gt.Equal(t, ident.Name, "data")
	})

	t.Run("number", func(t *testing.T) {
		node, err := lang.Parse("3.5")
		gt.NoError(t, err)
		num, ok := node.(*lang.NumberLit)
		gt.True(t, ok)
		gt.Equal(t, num.Value, 3.5)
	})

	t.Run("string", func(t *testing.T) {
		node, err := lang.Parse(`"Feb"`)
		gt.NoError(t, err)
		str, ok := node.(*lang.StringLit)
		gt.True(t, ok)
		gt.Equal(t, str.Value, "Feb")
		gt.Equal(t, str.Span(), lang.Span{Start: 0, End: 5})
	})

	t.Run("group", func(t *testing.T) {
		node, err := lang.Parse("( x )")
		gt.NoError(t, err)
		group, ok := node.(*lang.Group)
		gt.True(t, ok)
		gt.Equal(t, group.Span(), lang.Span{Start: 0, End: 5})
	})

	t.Run("missing expression", func(t *testing.T) {
		_, err := lang.Parse("data |>")
		gt.Error(t, err)
	})
}

func TestParse_Precedence(t *testing.T) {
	node, err := lang.Parse(`a == 1 || b < 2 && c`)
	gt.NoError(t, err)

	or, ok := node.(*lang.Binary)
	gt.True(t, ok)
	gt.Equal(t, or.Op, lang.LogicalOr)

	and, ok := or.Right.(*lang.Binary)
	gt.True(t, ok)
	gt.Equal(t, and.Op, lang.LogicalAnd)

	cmp, ok := and.Left.(*lang.Binary)
	gt.True(t, ok)
	gt.Equal(t, cmp.Op, lang.StrictInferior)
}

func TestParse_PipelineAndApplication(t *testing.T) {
	node, err := lang.Parse(`data |> filter (fun d -> d.date.month == "Feb") |> draw`)
	gt.NoError(t, err)

	outer, ok := node.(*lang.PipeExpr)
	gt.True(t, ok)
	gt.Equal(t, outer.Right.(*lang.Identifier).Name, "draw")

	inner, ok := outer.Left.(*lang.PipeExpr)
	gt.True(t, ok)
	apply, ok := inner.Right.(*lang.Apply)
	gt.True(t, ok)
	gt.Equal(t, apply.Fn.(*lang.Identifier).Name, "filter")
	gt.Equal(t, len(apply.Args), 1)

	lambda, ok := apply.Args[0].(*lang.Group).Inner.(*lang.Lambda)
	gt.True(t, ok)
	gt.Equal(t, lambda.Param, "d")

	cmp := lambda.Body.(*lang.Binary)
	field, ok := cmp.Left.(*lang.FieldAccess)
	gt.True(t, ok)
	gt.Equal(t, field.Name, "month")
	gt.Equal(t, field.Target.(*lang.FieldAccess).Name, "date")
}

func TestParse_MissingParen(t *testing.T) {
	src := `data |> filter (fun d -> d.rain > 0`
	_, err := lang.Parse(src)
	gt.Error(t, err)

	var parenErr *lang.MissingParenError
	gt.True(t, errors.As(err, &parenErr))
	gt.Equal(t, parenErr.Open, lang.Span{Start: 15, End: 16})
	gt.Equal(t, parenErr.Found, lang.Span{Start: len(src), End: len(src)})

	rendered := lang.Render(src, err)
	gt.String(t, rendered).Contains("missing closing parenthesis")
	gt.String(t, rendered).Contains("opening parenthesis")
}

func TestParse_TrailingTokens(t *testing.T) {
	_, err := lang.Parse("a < b < c")
	gt.Error(t, err)

	_, err = lang.Parse("data )")
	gt.Error(t, err)
}

func TestRender(t *testing.T) {
	src := "data\n  |> map (fun d -> d.snow)"
	err := &lang.Error{Span: lang.Span{Start: 26, End: 30}, Message: "unknown field `snow`"}

	rendered := lang.Render(src, err)
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	gt.Equal(t, len(lines), 3)
	gt.Equal(t, lines[0], "error: unknown field `snow`")
	gt.Equal(t, lines[1], " 2 |   |> map (fun d -> d.snow)")
	gt.Equal(t, lines[2], "   |                      ^^^^")
}

func TestParse_NestingLimit(t *testing.T) {
	t.Run("at the limit", func(t *testing.T) {
		src := strings.Repeat("(", lang.MaxNesting) + "1" + strings.Repeat(")", lang.MaxNesting)
		_, err := lang.Parse(src)
		gt.NoError(t, err)
	})

	t.Run("deep parentheses", func(t *testing.T) {
		_, err := lang.Parse(strings.Repeat("(", 400000) + "1")
		var langErr *lang.Error
		gt.True(t, asLangError(err, &langErr))
		gt.Equal(t, langErr.Message, "expression nested too deeply")
		gt.Equal(t, langErr.Span, lang.Span{Start: lang.MaxNesting, End: lang.MaxNesting + 1})
	})

	t.Run("deep lambdas", func(t *testing.T) {
		_, err := lang.Parse(strings.Repeat("fun x -> ", lang.MaxNesting+1) + "x")
		var langErr *lang.Error
		gt.True(t, asLangError(err, &langErr))
		gt.Equal(t, langErr.Message, "expression nested too deeply")
	})
}
