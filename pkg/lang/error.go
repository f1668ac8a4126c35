package lang

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a lexing, parsing or evaluation error located in the source
type Error struct {
	Span    Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d..%d", e.Message, e.Span.Start, e.Span.End)
}

// MissingParenError is returned when an opening parenthesis is never closed
type MissingParenError struct {
	Open  Span // the opening parenthesis
	Found Span // where the closing one was expected
}

func (e *MissingParenError) Error() string {
	return fmt.Sprintf("missing closing parenthesis for the one at %d", e.Open.Start)
}

// Render formats err against src, underlining the offending spans:
//
//	error: missing closing parenthesis
//	 1 | data |> filter (fun d -> d.rain
//	   |                ^ opening parenthesis
//	 1 | data |> filter (fun d -> d.rain
//	   |                                ^ expected `)` here
func Render(src string, err error) string {
	var sb strings.Builder

	var langErr *Error
	var parenErr *MissingParenError
	switch {
	case errors.As(err, &parenErr):
		sb.WriteString("error: missing closing parenthesis\n")
		renderSpan(&sb, src, parenErr.Open, "opening parenthesis")
		renderSpan(&sb, src, parenErr.Found, "expected `)` here")
	case errors.As(err, &langErr):
		sb.WriteString("error: " + langErr.Message + "\n")
		renderSpan(&sb, src, langErr.Span, "")
	default:
		sb.WriteString("error: " + err.Error() + "\n")
	}

	return sb.String()
}

func renderSpan(sb *strings.Builder, src string, span Span, label string) {
	start := min(max(span.Start, 0), len(src))
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	lineEnd := strings.IndexByte(src[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += start
	}
	lineNo := strings.Count(src[:lineStart], "\n") + 1

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	if start+width > lineEnd {
		width = max(lineEnd-start, 1)
	}

	gutter := fmt.Sprintf("%d", lineNo)
	pad := strings.Repeat(" ", len(gutter))

	fmt.Fprintf(sb, " %s | %s\n", gutter, src[lineStart:lineEnd])
	fmt.Fprintf(sb, " %s | %s%s", pad, strings.Repeat(" ", start-lineStart), strings.Repeat("^", width))
	if label != "" {
		sb.WriteString(" " + label)
	}
	sb.WriteString("\n")
}
