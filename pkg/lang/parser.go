package lang

import "fmt"

// Parser builds the syntax tree of one expression.
//
// Precedence, loosest first: `|>`, `||`, `&&`, comparisons, application, field access.
// A lambda body extends as far to the right as possible.
type Parser struct {
	tokens []Token
	pos    int
	depth  int
}

// MaxNesting bounds the nesting of parentheses and lambdas
const MaxNesting = 256

// NewParser lexes input and returns a parser positioned on its first token
func NewParser(input string) (*Parser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: tokens}, nil
}

// Parse parses a whole expression. Trailing tokens are an error.
func Parse(input string) (Node, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != EOF {
		return nil, &Error{Span: tok.Span, Message: fmt.Sprintf("unexpected %s after the expression", describe(tok))}
	}
	return expr, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

// ParseExpression parses a pipeline
func (p *Parser) ParseExpression() (Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	for p.peek().Kind == Pipe {
		p.next()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = &PipeExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseOr() (Node, error) {
	return p.parseBinary(p.parseAnd, LogicalOr)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.parseBinary(p.parseComparison, LogicalAnd)
}

func (p *Parser) parseBinary(operand func() (Node, error), op Kind) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == op {
		opTok := p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right, OpAt: opTok.Span}
	}
	return left, nil
}

func isComparison(k Kind) bool {
	switch k {
	case Equal, InferiorOrEqual, StrictInferior, SuperiorOrEqual, StrictSuperior:
		return true
	}
	return false
}

// comparisons do not chain: `a < b < c` is rejected as trailing input
func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseApply()
	if err != nil {
		return nil, err
	}
	if !isComparison(p.peek().Kind) {
		return left, nil
	}
	opTok := p.next()
	right, err := p.parseApply()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: opTok.Kind, Left: left, Right: right, OpAt: opTok.Span}, nil
}

func startsPrimary(k Kind) bool {
	switch k {
	case Ident, Number, String, True, False, LeftParen, Fun:
		return true
	}
	return false
}

func (p *Parser) parseApply() (Node, error) {
	fn, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	var args []Node
	for startsPrimary(p.peek().Kind) {
		arg, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return fn, nil
	}
	return &Apply{Fn: fn, Args: args}, nil
}

func (p *Parser) parsePostfix() (Node, error) {
	expr, err := p.ParsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == Dot {
		p.next()
		name := p.next()
		if name.Kind != Ident {
			return nil, &Error{Span: name.Span, Message: fmt.Sprintf("expected field name, found %s", describe(name))}
		}
		expr = &FieldAccess{Target: expr, Name: name.Text, At: name.Span}
	}
	return expr, nil
}

// ParsePrimary parses a literal, an identifier, a lambda or a parenthesized expression
func (p *Parser) ParsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case Ident:
		return &Identifier{Name: tok.Text, At: tok.Span}, nil
	case Number:
		return &NumberLit{Value: tok.Number, Text: tok.Text, At: tok.Span}, nil
	case String:
		return &StringLit{Value: tok.Text, At: tok.Span}, nil
	case True, False:
		return &BoolLit{Value: tok.Kind == True, At: tok.Span}, nil
	case Fun:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		return p.parseLambda(tok)
	case LeftParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.Kind != RightParen {
			return nil, &MissingParenError{Open: tok.Span, Found: closing.Span}
		}
		return &Group{Inner: inner, Open: tok.Span, Close: closing.Span}, nil
	default:
		return nil, &Error{Span: tok.Span, Message: fmt.Sprintf("expected primary expression, found %s", describe(tok))}
	}
}

func (p *Parser) enter(tok Token) error {
	p.depth++
	if p.depth > MaxNesting {
		return &Error{Span: tok.Span, Message: "expression nested too deeply"}
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseLambda(funTok Token) (Node, error) {
	param := p.next()
	if param.Kind != Ident {
		return nil, &Error{Span: param.Span, Message: fmt.Sprintf("expected parameter name, found %s", describe(param))}
	}
	arrow := p.next()
	if arrow.Kind != Arrow {
		return nil, &Error{Span: arrow.Span, Message: fmt.Sprintf("expected `->`, found %s", describe(arrow))}
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &Lambda{Param: param.Text, Body: body, At: funTok.Span}, nil
}

func describe(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("string %q", tok.Text)
	default:
		return fmt.Sprintf("%s `%s`", tok.Kind, tok.Text)
	}
}
