package lang

// Node is an expression of the language
type Node interface {
	Span() Span
	node()
}

// Identifier refers to a variable or a builtin
type Identifier struct {
	Name string
	At   Span
}

// NumberLit is a numeric literal
type NumberLit struct {
	Value float64 // NaN when Text is not a valid number
	Text  string
	At    Span
}

// StringLit is a string literal
type StringLit struct {
	Value string
	At    Span
}

// BoolLit is true or false
type BoolLit struct {
	Value bool
	At    Span
}

// FieldAccess is target.name
type FieldAccess struct {
	Target Node
	Name   string
	At     Span
}

// Apply applies Fn to Args one at a time: `f a b` is `(f a) b`
type Apply struct {
	Fn   Node
	Args []Node
}

// PipeExpr is `Left |> Right`, which applies Right to Left
type PipeExpr struct {
	Left  Node
	Right Node
}

// Lambda is `fun Param -> Body`
type Lambda struct {
	Param string
	Body  Node
	At    Span // the fun keyword
}

// Binary is a comparison or a logical operation
type Binary struct {
	Op    Kind
	Left  Node
	Right Node
	OpAt  Span
}

// Group is a parenthesized expression
type Group struct {
	Inner Node
	Open  Span
	Close Span
}

func (n *Identifier) Span() Span  { return n.At }
func (n *NumberLit) Span() Span   { return n.At }
func (n *StringLit) Span() Span   { return n.At }
func (n *BoolLit) Span() Span     { return n.At }
func (n *FieldAccess) Span() Span { return Span{n.Target.Span().Start, n.At.End} }
func (n *Apply) Span() Span       { return Span{n.Fn.Span().Start, n.Args[len(n.Args)-1].Span().End} }
func (n *PipeExpr) Span() Span    { return Span{n.Left.Span().Start, n.Right.Span().End} }
func (n *Lambda) Span() Span      { return Span{n.At.Start, n.Body.Span().End} }
func (n *Binary) Span() Span      { return Span{n.Left.Span().Start, n.Right.Span().End} }
func (n *Group) Span() Span       { return Span{n.Open.Start, n.Close.End} }

func (*Identifier) node()  {}
func (*NumberLit) node()   {}
func (*StringLit) node()   {}
func (*BoolLit) node()     {}
func (*FieldAccess) node() {}
func (*Apply) node()       {}
func (*PipeExpr) node()    {}
func (*Lambda) node()      {}
func (*Binary) node()      {}
func (*Group) node()       {}
