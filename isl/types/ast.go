// Package types defines the ISL data model shared across the toolchain:
// the expression AST produced by the external parser, domain declarations,
// and the execution-trace shapes consumed by the verifier.
package types

// Position locates a point in an ISL source file (1-based)
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceLocation spans a region of an ISL source file
type SourceLocation struct {
	File  string   `json:"file,omitempty"`
	Start Position `json:"start"`
	End   Position `json:"end,omitempty"`
}

// Expr is the closed set of ISL expression nodes. Every node kind the
// parser can emit has exactly one struct here; the evaluator and the
// renderer type-switch over this set exhaustively, so adding a kind
// without handling it in both is a compile-visible omission.
type Expr interface {
	isExpr()
}

// BinaryOp enumerates binary operators in clause expressions
type BinaryOp string

const (
	OpAnd     BinaryOp = "and"
	OpOr      BinaryOp = "or"
	OpImplies BinaryOp = "implies"
	OpEq      BinaryOp = "=="
	OpNe      BinaryOp = "!="
	OpLt      BinaryOp = "<"
	OpLe      BinaryOp = "<="
	OpGt      BinaryOp = ">"
	OpGe      BinaryOp = ">="
)

// UnaryOp enumerates unary operators
type UnaryOp string

const (
	OpNot UnaryOp = "not"
)

// QuantKind enumerates quantifier forms. "all"/"forall" are universal,
// "any"/"exists" existential.
type QuantKind string

const (
	QuantAll    QuantKind = "all"
	QuantForall QuantKind = "forall"
	QuantAny    QuantKind = "any"
	QuantExists QuantKind = "exists"
)

// Universal reports whether the quantifier is a forall form
func (q QuantKind) Universal() bool {
	return q == QuantAll || q == QuantForall
}

// Ident is a bare identifier: a quantifier-bound variable, an input
// parameter, or one of the builtin names (true, false, result)
type Ident struct {
	Name string
}

// BoolLit is a boolean literal
type BoolLit struct {
	Value bool
}

// NumberLit is a numeric literal
type NumberLit struct {
	Value float64
}

// StringLit is a string literal
type StringLit struct {
	Value string
}

// NullLit is the null literal
type NullLit struct{}

// ObjectLit is an inline object literal, used for entity lookup criteria
type ObjectLit struct {
	Fields []ObjectField
}

// ObjectField is one key/value pair of an ObjectLit
type ObjectField struct {
	Key   string
	Value Expr
}

// Binary is a binary operation over two sub-expressions
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary is a unary operation
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// Member accesses a property of an object expression
type Member struct {
	Object   Expr
	Property string
}

// Call is a call expression. The verifier only gives meaning to the
// Entity.exists(criteria) and Entity.lookup(criteria) member-call patterns.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Old re-evaluates its inner expression against the pre-call state snapshot
type Old struct {
	Inner Expr
}

// Result references the behavior's return value, or one of its properties
// when Property is non-empty
type Result struct {
	Property string
}

// Input references a named input parameter of the behavior call
type Input struct {
	Property string
}

// Quantifier binds Variable over Collection and evaluates Predicate per element
type Quantifier struct {
	Kind       QuantKind
	Variable   string
	Collection Expr
	Predicate  Expr
}

// Opaque preserves a node kind this toolchain version does not understand.
// The renderer dumps it structurally; the evaluator treats it as unknown.
type Opaque struct {
	Kind string
	Raw  map[string]any
}

func (*Ident) isExpr()      {}
func (*BoolLit) isExpr()    {}
func (*NumberLit) isExpr()  {}
func (*StringLit) isExpr()  {}
func (*NullLit) isExpr()    {}
func (*ObjectLit) isExpr()  {}
func (*Binary) isExpr()     {}
func (*Unary) isExpr()      {}
func (*Member) isExpr()     {}
func (*Call) isExpr()       {}
func (*Old) isExpr()        {}
func (*Result) isExpr()     {}
func (*Input) isExpr()      {}
func (*Quantifier) isExpr() {}
func (*Opaque) isExpr()     {}
