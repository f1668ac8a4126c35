// Package lang implements the small pipeline language used to query report data:
//
//	data
//	  |> filter (fun d -> d.date.month == "Feb")
//	  |> map (fun d -> d.temperature)
//	  |> draw
package lang

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the kind of a token
type Kind int

const (
	EOF Kind = iota
	Pipe
	Arrow
	Equal
	InferiorOrEqual
	StrictInferior
	SuperiorOrEqual
	StrictSuperior
	LogicalOr
	LogicalAnd
	LeftParen
	RightParen
	Dot
	String
	Ident
	Number
	Fun
	True
	False
)

var kindNames = map[Kind]string{
	EOF:             "end of input",
	Pipe:            "|>",
	Arrow:           "->",
	Equal:           "==",
	InferiorOrEqual: "<=",
	StrictInferior:  "<",
	SuperiorOrEqual: ">=",
	StrictSuperior:  ">",
	LogicalOr:       "||",
	LogicalAnd:      "&&",
	LeftParen:       "(",
	RightParen:      ")",
	Dot:             ".",
	String:          "string",
	Ident:           "identifier",
	Number:          "number",
	Fun:             "fun",
	True:            "true",
	False:           "false",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is a half-open byte range of the source
type Span struct {
	Start int
	End   int
}

// Token is a lexed token. Text holds the unquoted value of strings and the raw text otherwise.
type Token struct {
	Kind   Kind
	Span   Span
	Text   string
	Number float64
}

// two character operators are tried before their one character prefixes
var operators = []struct {
	text string
	kind Kind
}{
	{"|>", Pipe},
	{"->", Arrow},
	{"==", Equal},
	{"<=", InferiorOrEqual},
	{">=", SuperiorOrEqual},
	{"||", LogicalOr},
	{"&&", LogicalAnd},
	{"<", StrictInferior},
	{">", StrictSuperior},
	{"(", LeftParen},
	{")", RightParen},
	{".", Dot},
}

var keywords = map[string]Kind{
	"fun":   Fun,
	"true":  True,
	"false": False,
}

// Lex splits input into tokens. The last token is always EOF.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	i := 0

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
			continue

		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			text := input[start:i]
			kind := Ident
			if k, ok := keywords[text]; ok {
				kind = k
			}
			tokens = append(tokens, Token{Kind: kind, Span: Span{start, i}, Text: text})
			continue

		case isDigit(c):
			start := i
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			for i+1 < len(input) && input[i] == '.' && isDigit(input[i+1]) {
				i++
				for i < len(input) && isDigit(input[i]) {
					i++
				}
			}
			text := input[start:i]
			// dotted forms such as 1.2.3 are numbers for the lexer but have no value
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				v = math.NaN()
			}
			tokens = append(tokens, Token{Kind: Number, Span: Span{start, i}, Text: text, Number: v})
			continue

		case c == '"':
			tok, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.text) {
				tokens = append(tokens, Token{Kind: op.kind, Span: Span{i, i + len(op.text)}, Text: op.text})
				i += len(op.text)
				matched = true
				break
			}
		}
		if !matched {
			return nil, &Error{Span: Span{i, i + 1}, Message: fmt.Sprintf("unexpected character `%c`", c)}
		}
	}

	tokens = append(tokens, Token{Kind: EOF, Span: Span{len(input), len(input)}})
	return tokens, nil
}

func lexString(input string, start int) (Token, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(input) {
		switch input[i] {
		case '"':
			return Token{Kind: String, Span: Span{start, i + 1}, Text: sb.String()}, i + 1, nil
		case '\\':
			if i+1 < len(input) && (input[i+1] == '"' || input[i+1] == '\\') {
				sb.WriteByte(input[i+1])
				i += 2
				continue
			}
		}
		sb.WriteByte(input[i])
		i++
	}
	return Token{}, 0, &Error{Span: Span{start, len(input)}, Message: "unterminated string"}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
