// Package ast defines the surface-language data model: source locations,
// the tagged-union expression tree the parser produces, and the semantic
// type lattice the emitter assigns to expressions as it evaluates them.
//
// The grammar is deliberately small: every expression is either an atom
// (bool, number, string, identifier) or a list. Lists represent both
// function application and the handful of special forms (define, func,
// rec-func, let, if, rec, the arithmetic operators, vec4, eq, output) that
// the codegen package recognizes by the identifier in head position.
package ast

import "fmt"

// Location is a source position, tracked as the lexer consumes input.
// Depth counts list nesting; the parser records it, but String and the
// diagnostics built on it print only Row and Col.
type Location struct {
	Row   int
	Col   int
	Depth int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Row, l.Col)
}

// ExprKind is the tagged-union interface every expression variant
// implements. The marker method is unexported, so only types declared in
// this package can be expression kinds — which is exactly right, since
// GenExpr (the codegen-only variant, see below) must also live here.
type ExprKind interface {
	exprKind()
}

// Bool is a boolean literal.
type Bool bool

func (Bool) exprKind() {}

// Number is a numeric literal, parsed as a 64-bit float and narrowed to
// 32 bits only at the point the emitter materializes an OpConstant.
type Number float64

func (Number) exprKind() {}

// Str is a string literal. Codegen never produces a value for one — it is
// reserved for diagnostics only.
type Str string

func (Str) exprKind() {}

// Identifier names a built-in form or a user definition.
type Identifier struct {
	Name string
}

func (Identifier) exprKind() {}

// List is both function application and every special form; which one it
// is depends on what the head expression resolves to.
type List struct {
	Values []Expr
}

func (List) exprKind() {}

// GenExpr carries an already-emitted SPIR-V value. It is injected into the
// environment only by the codegen package, when binding rec-func formals to
// their phi-node ids — the parser never constructs one.
type GenExpr struct {
	ID     uint32
	TypeID uint32
	Type   SemType
}

func (GenExpr) exprKind() {}

// Expr is a single AST node: a location plus a tagged-union payload.
// GenExpr is just one more ExprKind implementer, so a single Expr type
// serves both source-parsed and codegen-synthesized nodes.
type Expr struct {
	Loc  Location
	Kind ExprKind
}

// Dump renders an expression back to source-like text, used only for
// diagnostics.
func Dump(e Expr) string {
	switch k := e.Kind.(type) {
	case Bool:
		if k {
			return "true"
		}
		return "false"
	case Number:
		return fmt.Sprintf("%g", float64(k))
	case Str:
		return fmt.Sprintf("%q", string(k))
	case Identifier:
		return k.Name
	case List:
		s := "("
		for i, v := range k.Values {
			if i > 0 {
				s += " "
			}
			s += Dump(v)
		}
		return s + ")"
	case GenExpr:
		return fmt.Sprintf("<value #%d>", k.ID)
	default:
		return "<?>"
	}
}
