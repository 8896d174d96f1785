package ast

// Identifier represents a name reference or binding
type Identifier struct {
	Span
	Name string
}

func (i *Identifier) node()        {}
func (i *Identifier) exprNode()    {}
func (i *Identifier) patternNode() {}

// PrivateName represents #name inside a class
type PrivateName struct {
	Span
	Name string
}

func (p *PrivateName) node()     {}
func (p *PrivateName) exprNode() {}

// LiteralKind classifies literal values
type LiteralKind int

const (
	// LiteralString is a quoted string
	LiteralString LiteralKind = iota
	// LiteralNumber is a numeric literal
	LiteralNumber
	// LiteralBigInt is a bigint literal (10n)
	LiteralBigInt
	// LiteralBoolean is true or false
	LiteralBoolean
	// LiteralNull is null
	LiteralNull
	// LiteralRegExp is a regular expression literal
	LiteralRegExp
)

// Literal represents a literal value. Raw keeps the source spelling; Value
// holds the cooked string for strings, the digits for numbers and a bool
// for booleans.
type Literal struct {
	Span
	Kind  LiteralKind
	Raw   string
	Value interface{}
}

func (l *Literal) node()     {}
func (l *Literal) exprNode() {}

// StringValue returns the cooked value of a string literal
func (l *Literal) StringValue() (string, bool) {
	if l == nil || l.Kind != LiteralString {
		return "", false
	}
	s, ok := l.Value.(string)
	return s, ok
}

// TemplateLiteral represents `a ${b} c`. Quasis holds the raw text between
// substitutions, so len(Quasis) == len(Exprs)+1.
type TemplateLiteral struct {
	Span
	Quasis []string
	Exprs  []Expr
}

func (t *TemplateLiteral) node()     {}
func (t *TemplateLiteral) exprNode() {}

// TaggedTemplate represents tag`...`
type TaggedTemplate struct {
	Span
	Tag   Expr
	Quasi *TemplateLiteral
}

func (t *TaggedTemplate) node()     {}
func (t *TaggedTemplate) exprNode() {}

// ArrayLiteral represents [a, , b]; holes are nil
type ArrayLiteral struct {
	Span
	Elements []Expr
}

func (a *ArrayLiteral) node()     {}
func (a *ArrayLiteral) exprNode() {}

// SpreadElement represents ...expr in arrays, calls and objects
type SpreadElement struct {
	Span
	Argument Expr
}

func (s *SpreadElement) node()     {}
func (s *SpreadElement) exprNode() {}

// PropertyKind classifies object literal members
type PropertyKind int

const (
	// PropertyInit is `key: value` or a shorthand `key`
	PropertyInit PropertyKind = iota
	// PropertyMethod is `key() {}`
	PropertyMethod
	// PropertyGet is `get key() {}`
	PropertyGet
	// PropertySet is `set key(v) {}`
	PropertySet
	// PropertySpread is `...expr`
	PropertySpread
)

// Property is one member of an object literal
type Property struct {
	Span
	Kind      PropertyKind
	Key       Expr // *Identifier, *Literal or computed expression; nil for spread
	Computed  bool
	Shorthand bool
	Value     Expr // for methods, a *FunctionExpr
}

func (p *Property) node() {}

// KeyName returns the static name of a non-computed key
func (p *Property) KeyName() (string, bool) {
	if p.Computed {
		return "", false
	}
	switch k := p.Key.(type) {
	case *Identifier:
		return k.Name, true
	case *Literal:
		if s, ok := k.StringValue(); ok {
			return s, true
		}
		if k.Kind == LiteralNumber {
			return k.Raw, true
		}
	}
	return "", false
}

// ObjectLiteral represents { ... }
type ObjectLiteral struct {
	Span
	Properties []*Property
}

func (o *ObjectLiteral) node()     {}
func (o *ObjectLiteral) exprNode() {}

// FunctionExpr represents function expressions, and carries the function
// of declarations and methods
type FunctionExpr struct {
	Span
	Name      *Identifier // nil when anonymous
	Params    []Pattern
	Body      *BlockStmt
	Async     bool
	Generator bool
}

func (f *FunctionExpr) node()     {}
func (f *FunctionExpr) exprNode() {}

// ArrowFunction represents (a, b) => body. Body is a *BlockStmt or an Expr.
type ArrowFunction struct {
	Span
	Params []Pattern
	Body   Node
	Async  bool
}

func (a *ArrowFunction) node()     {}
func (a *ArrowFunction) exprNode() {}

// ClassExpr represents a class expression, and carries the class of
// declarations
type ClassExpr struct {
	Span
	Name       *Identifier
	SuperClass Expr
	Members    []*ClassMember
}

func (c *ClassExpr) node()     {}
func (c *ClassExpr) exprNode() {}

// ClassMember is a method, accessor, field or static block
type ClassMember struct {
	Span
	Kind     PropertyKind // PropertyInit marks a field
	Static   bool
	Key      Expr // nil for static blocks
	Computed bool
	Value    Expr       // method function or field initializer
	Block    *BlockStmt // static initialization block
}

func (c *ClassMember) node() {}

// UnaryExpr represents prefix operators (!x, -x, typeof x, void x, delete x)
type UnaryExpr struct {
	Span
	Operator string
	Operand  Expr
}

func (u *UnaryExpr) node()     {}
func (u *UnaryExpr) exprNode() {}

// UpdateExpr represents ++ and --
type UpdateExpr struct {
	Span
	Operator string
	Prefix   bool
	Operand  Expr
}

func (u *UpdateExpr) node()     {}
func (u *UpdateExpr) exprNode() {}

// BinaryExpr represents binary and logical operations (a + b, a && b, a in b)
type BinaryExpr struct {
	Span
	Left     Expr
	Operator string
	Right    Expr
}

func (b *BinaryExpr) node()     {}
func (b *BinaryExpr) exprNode() {}

// AssignExpr represents assignment, including compound operators
type AssignExpr struct {
	Span
	Operator string // "=", "+=", "??=", ...
	Target   Pattern
	Value    Expr
}

func (a *AssignExpr) node()     {}
func (a *AssignExpr) exprNode() {}

// ConditionalExpr represents test ? a : b
type ConditionalExpr struct {
	Span
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

func (c *ConditionalExpr) node()     {}
func (c *ConditionalExpr) exprNode() {}

// CallExpr represents a function call, including optional calls f?.()
type CallExpr struct {
	Span
	Callee    Expr
	Arguments []Expr
	Optional  bool
}

func (c *CallExpr) node()     {}
func (c *CallExpr) exprNode() {}

// NewExpr represents new Callee(args)
type NewExpr struct {
	Span
	Callee    Expr
	Arguments []Expr
}

func (n *NewExpr) node()     {}
func (n *NewExpr) exprNode() {}

// MemberExpr represents a.b, a[b] and a?.b
type MemberExpr struct {
	Span
	Object   Expr
	Property Expr // *Identifier or *PrivateName unless Computed
	Computed bool
	Optional bool
}

func (m *MemberExpr) node()        {}
func (m *MemberExpr) exprNode()    {}
func (m *MemberExpr) patternNode() {}

// PropertyName returns the static property name of a.b or a['b']
func (m *MemberExpr) PropertyName() (string, bool) {
	switch p := m.Property.(type) {
	case *Identifier:
		if !m.Computed {
			return p.Name, true
		}
	case *Literal:
		if m.Computed {
			return p.StringValue()
		}
	}
	return "", false
}

// SequenceExpr represents a, b, c
type SequenceExpr struct {
	Span
	Exprs []Expr
}

func (s *SequenceExpr) node()     {}
func (s *SequenceExpr) exprNode() {}

// ParenExpr represents a parenthesized expression
type ParenExpr struct {
	Span
	Expr Expr
}

func (p *ParenExpr) node()     {}
func (p *ParenExpr) exprNode() {}

// YieldExpr represents yield and yield*
type YieldExpr struct {
	Span
	Argument Expr
	Delegate bool
}

func (y *YieldExpr) node()     {}
func (y *YieldExpr) exprNode() {}

// AwaitExpr represents await expr
type AwaitExpr struct {
	Span
	Argument Expr
}

func (a *AwaitExpr) node()     {}
func (a *AwaitExpr) exprNode() {}

// ThisExpr represents this
type ThisExpr struct {
	Span
}

func (t *ThisExpr) node()     {}
func (t *ThisExpr) exprNode() {}

// SuperExpr represents super in super.x or super()
type SuperExpr struct {
	Span
}

func (s *SuperExpr) node()     {}
func (s *SuperExpr) exprNode() {}

// MetaProperty represents new.target and import.meta
type MetaProperty struct {
	Span
	Meta     string
	Property string
}

func (m *MetaProperty) node()     {}
func (m *MetaProperty) exprNode() {}

// ImportCall represents dynamic import(source)
type ImportCall struct {
	Span
	Source  Expr
	Options Expr // second argument, nil when absent
}

func (i *ImportCall) node()     {}
func (i *ImportCall) exprNode() {}

// Unparen strips any number of enclosing parentheses
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
