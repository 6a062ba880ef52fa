package codegen_test

import (
	"encoding/binary"
	"testing"

	"github.com/lambdav/lambdav/ast"
	"github.com/lambdav/lambdav/codegen"
	"github.com/stretchr/testify/require"
)

func num(v float64) ast.Expr { return ast.Expr{Kind: ast.Number(v)} }
func id(name string) ast.Expr { return ast.Expr{Kind: ast.Identifier{Name: name}} }
func list(vs ...ast.Expr) ast.Expr { return ast.Expr{Kind: ast.List{Values: vs}} }

func countOpcode(body []byte, headerWords int, opcode uint16) int {
	offset := headerWords * 4
	count := 0
	for offset+4 <= len(body) {
		word := binary.LittleEndian.Uint32(body[offset:])
		oc := uint16(word & 0xFFFF)
		wc := int(word >> 16)
		if wc == 0 {
			break
		}
		if oc == opcode {
			count++
		}
		offset += wc * 4
	}
	return count
}

// scenario 1: (output 0 (vec4 1.0 1.0 1.0 1.0))
func TestScenarioOneConstantDedup(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	vec := list(id("vec4"), num(1.0), num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	result, err := cg.Generate(out, defs)
	require.NoError(t, err)
	require.True(t, ast.IsVoid(result.Type))

	body := cg.Finish()
	require.Equal(t, 1, countOpcode(body, 5, 43)) // OpConstant
	require.Equal(t, 1, countOpcode(body, 5, 80)) // OpCompositeConstruct
	require.Equal(t, 1, countOpcode(body, 5, 62)) // OpStore
}

// scenario 2: (output 0 (vec4 (+ 1.0 -0.2) 1.0 0.4 1.0))
func TestScenarioTwoDistinctConstants(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	sum := list(id("+"), num(1.0), num(-0.2))
	vec := list(id("vec4"), sum, num(1.0), num(0.4), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 3, countOpcode(body, 5, 43))  // OpConstant: 1.0, -0.2, 0.4
	require.Equal(t, 1, countOpcode(body, 5, 129)) // OpFAdd
}

// scenario 3: plus2 inlines, no function-call instruction exists in this ISA subset
func TestScenarioThreeInlining(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	plus2 := list(id("func"), list(id("x")), list(id("+"), id("x"), num(2)))
	defs.Insert("plus2", codegen.Definition{Body: plus2, Scope: defs})

	call := list(id("plus2"), num(-1))
	vec := list(id("vec4"), call, num(1.0), num(0.4), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 1, countOpcode(body, 5, 129)) // OpFAdd
}

// scenario 4: currying - plusc applied across two chained calls
func TestScenarioFourCurrying(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	inner := list(id("func"), list(id("y")), list(id("+"), id("x"), id("y")))
	outer := list(id("func"), list(id("x")), inner)
	defs.Insert("plusc", codegen.Definition{Body: outer, Scope: defs})

	curried := list(list(id("plusc"), num(1.0)), num(2.0))
	vec := list(id("vec4"), curried, num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 1, countOpcode(body, 5, 129)) // OpFAdd
}

// eq on floats emits OpFOrdEqual, never the integer OpIEqual
func TestEqEmitsFOrdEqual(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	cmp := list(id("eq"), num(1.0), num(2.0))
	sel := list(id("if"), cmp, num(3.0), num(4.0))
	vec := list(id("vec4"), sel, num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 1, countOpcode(body, 5, 180)) // OpFOrdEqual
	require.Equal(t, 0, countOpcode(body, 5, 170)) // OpIEqual
}

func TestLetBindsNames(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	// (output 0 (vec4 (let ((a 1.0) (b 2.0)) (+ a b)) 3.0 3.0 3.0))
	bindings := list(list(id("a"), num(1.0)), list(id("b"), num(2.0)))
	letExpr := list(id("let"), bindings, list(id("+"), id("a"), id("b")))
	vec := list(id("vec4"), letExpr, num(3.0), num(3.0), num(3.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 3, countOpcode(body, 5, 43))  // OpConstant: 1.0, 2.0, 3.0
	require.Equal(t, 1, countOpcode(body, 5, 129)) // OpFAdd
}

// let bindings close over the enclosing scope, not over each other: in
// (let ((x 2.0) (y x)) y) the y binding's x is the outer definition, and
// the let's own x is never forced. Only the outer 1.0 constant is ever
// materialized — a sequential (let*-style) reading would surface 2.0.
func TestLetBindingsCloseOverEnclosingScope(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	defs.Insert("x", codegen.Definition{Body: num(1.0), Scope: defs})

	bindings := list(list(id("x"), num(2.0)), list(id("y"), id("x")))
	letExpr := list(id("let"), bindings, id("y"))
	vec := list(id("vec4"), letExpr, num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	body := cg.Finish()
	require.Equal(t, 1, countOpcode(body, 5, 43)) // OpConstant: 1.0 only
}

// scenario 6: ill-typed `+` between a float and a bool
func TestScenarioSixIllTyped(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	sum := list(id("+"), num(1.0), ast.Expr{Kind: ast.Bool(true)})
	out := list(id("output"), num(0), sum)

	_, err := cg.Generate(out, defs)
	require.Error(t, err)
}

// a builtin name used bare, with no pending call, is a nesting error
func TestArithOutsideCallPositionIsNestingError(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	_, err := cg.Generate(id("+"), defs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid call nesting")
}

func TestIfAtTopLevelIsNotVoid(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	expr := list(id("if"), ast.Expr{Kind: ast.Bool(true)}, num(1.0), num(2.0))
	result, err := cg.Generate(expr, defs)
	require.NoError(t, err)
	require.False(t, ast.IsVoid(result.Type))
}

func TestRecArgumentTypeMismatch(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	// (rec-func (x) (rec true)) — x loops as a float, rec tries to feed it a bool
	body := list(id("rec"), ast.Expr{Kind: ast.Bool(true)})
	recFn := list(id("rec-func"), list(id("x")), body)
	defs.Insert("bad", codegen.Definition{Body: recFn, Scope: defs})

	call := list(id("bad"), num(1.0))
	out := list(id("output"), num(0), call)

	_, err := cg.Generate(out, defs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rec: argument type mismatch")
}

// requirePhiPredecessorsBranch walks the module's function body and checks
// that every predecessor block named by an OpPhi edge really does transfer
// control to the phi's own block — its terminator is an OpBranch or
// OpBranchConditional with the phi's block among its targets.
func requirePhiPredecessorsBranch(t *testing.T, spv []byte) {
	t.Helper()

	type phi struct {
		block uint32
		froms []uint32
	}
	var phis []phi
	successors := map[uint32][]uint32{} // block label -> terminator targets
	var current uint32

	offset := 20
	for offset+4 <= len(spv) {
		word := binary.LittleEndian.Uint32(spv[offset:])
		oc := uint16(word & 0xFFFF)
		wc := int(word >> 16)
		require.NotZero(t, wc)
		op := func(i int) uint32 { return binary.LittleEndian.Uint32(spv[offset+i*4:]) }
		switch oc {
		case 248: // OpLabel
			current = op(1)
		case 245: // OpPhi: type, result, (value, from)...
			p := phi{block: current}
			for i := 3; i < wc; i += 2 {
				p.froms = append(p.froms, op(i+1))
			}
			phis = append(phis, p)
		case 249: // OpBranch
			successors[current] = []uint32{op(1)}
		case 250: // OpBranchConditional
			successors[current] = []uint32{op(2), op(3)}
		}
		offset += wc * 4
	}

	require.NotEmpty(t, phis)
	for _, p := range phis {
		for _, from := range p.froms {
			require.Contains(t, successors[from], p.block,
				"phi in block %%%d names predecessor %%%d, which never branches to it", p.block, from)
		}
	}
}

// A conditional inside a rec-func initial argument ends in the if's merge
// block, so the loop header's phi must name that block, not the block the
// loop was entered from, as its caller edge.
func TestRecFuncInitArgWithConditional(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	body := list(id("if"), list(id("eq"), id("x"), num(0)),
		id("a"),
		list(id("rec"), list(id("+"), id("x"), num(-1)), list(id("+"), id("a"), id("x"))))
	recFn := list(id("rec-func"), list(id("x"), id("a")), body)
	defs.Insert("nat-fold", codegen.Definition{Body: recFn, Scope: defs})

	init := list(id("if"), ast.Expr{Kind: ast.Bool(true)}, num(3), num(4))
	call := list(id("nat-fold"), init, num(0))
	vec := list(id("vec4"), call, num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	requirePhiPredecessorsBranch(t, cg.Finish())
}

func TestUndefinedIdentifier(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()
	_, err := cg.Generate(id("nope"), defs)
	require.Error(t, err)
}

func TestRecFuncLoop(t *testing.T) {
	cg := codegen.New()
	defs := codegen.NewDefs()

	// (define nat-fold (rec-func (x a) (if (eq x 0) a (rec (+ x -1) (+ a x)))))
	body := list(id("if"), list(id("eq"), id("x"), num(0)),
		id("a"),
		list(id("rec"), list(id("+"), id("x"), num(-1)), list(id("+"), id("a"), id("x"))))
	recFn := list(id("rec-func"), list(id("x"), id("a")), body)
	defs.Insert("nat-fold", codegen.Definition{Body: recFn, Scope: defs})

	call := list(id("nat-fold"), num(7), num(0))
	vec := list(id("vec4"), call, num(1.0), num(1.0), num(1.0))
	out := list(id("output"), num(0), vec)

	_, err := cg.Generate(out, defs)
	require.NoError(t, err)

	spv := cg.Finish()
	require.Equal(t, 1, countOpcode(spv, 5, 246)) // OpLoopMerge
	require.Equal(t, 1, countOpcode(spv, 5, 250)) // OpBranchConditional
	require.Equal(t, 4, countOpcode(spv, 5, 245)) // OpPhi: header x,a + continue x,a
}
