package ast

// SemType is the semantic type lattice the emitter assigns to every value
// it produces: a tagged union over a primitive kind, a vector, or a matrix.
// The marker-interface shape mirrors how a multi-target shader IR
// represents its own type lattice (a closed set of variants distinguished
// by an unexported method), adapted here to the handful of shapes this
// surface language actually needs.
type SemType interface {
	semType()
}

// Primitive is a scalar semantic type.
type Primitive uint8

const (
	// Void is the type of a top-level statement (define, output) — it
	// carries no SPIR-V value.
	Void Primitive = iota
	Float
	// BoolPrim is the scalar boolean semantic type. Named distinctly from
	// the Bool expression kind (see ast.go) to avoid colliding with it
	// in this package's identifier namespace.
	BoolPrim
	// RecCall is the sentinel for an expression whose control flow
	// unconditionally diverges into a rec-func back-edge.
	RecCall
	// String and Matrix are representable in the type lattice (so the
	// parser and pretty-printer can talk about them) but no built-in or
	// user form ever produces a value of either type; attempting to do so
	// is a capability error.
	String
	Matrix
)

func (Primitive) semType() {}

// Vector is a fixed-size SPIR-V vector of a primitive component type.
type Vector struct {
	Count     uint8
	Primitive Primitive
}

func (Vector) semType() {}

// MatrixType is declared in the lattice for completeness but is never
// constructed by any emission rule in this compiler.
type MatrixType struct {
	Rows, Cols uint8
	Primitive  Primitive
}

func (MatrixType) semType() {}

// Vec4 is the one vector shape this surface language's built-ins produce.
var Vec4 = Vector{Count: 4, Primitive: Float}

// IsVoid reports whether t is the Void primitive.
func IsVoid(t SemType) bool {
	p, ok := t.(Primitive)
	return ok && p == Void
}

// IsRecCall reports whether t is the RecCall sentinel.
func IsRecCall(t SemType) bool {
	p, ok := t.(Primitive)
	return ok && p == RecCall
}

// Equal reports whether two semantic types describe the same shape. Most
// type-mismatch checks in the emitter compare SPIR-V type ids directly,
// not this structural type; Equal exists for the cases (rec-func
// paramType checks, diagnostics) where only the structural shape is in
// hand.
func Equal(a, b SemType) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av == bv
	case Vector:
		bv, ok := b.(Vector)
		return ok && av == bv
	case MatrixType:
		bv, ok := b.(MatrixType)
		return ok && av == bv
	default:
		return false
	}
}
