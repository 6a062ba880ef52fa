package codegen

import (
	"github.com/lambdav/lambdav/ast"
	"github.com/lambdav/lambdav/spirv"
)

// builtinFn is the signature every recognized special form implements. It
// receives the full call-argument stack (its own invocation is always the
// top frame) so it can validate shape and pull its own arguments out before
// delegating to whatever remains for any outer pending application.
type builtinFn func(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error)

var builtins map[string]builtinFn

// errNesting reports a builtin invoked with the wrong number of pending
// argument vectors on the call stack (zero, or more than the builtin ever
// consumes) — the Nesting error category, distinct from a Shape error
// (the right number of vectors, wrong argument count inside one).
func errNesting(loc ast.Location) error {
	return errAt(loc, "Invalid call nesting")
}

func init() {
	builtins = map[string]builtinFn{
		"+":      arith(spirv.OpFAdd),
		"-":      arith(spirv.OpFSub),
		"*":      arith(spirv.OpFMul),
		"/":      arith(spirv.OpFDiv),
		"eq":     biEq,
		"vec4":   biVec4,
		"output": biOutput,
		"if":     biIf,
		"let":    biLet,
		"rec":    biRec,
	}
}

// arith builds the `+`/`-`/`*`/`/` generator for the given binary opcode:
// two operands with the same SPIR-V type id in, one value of that type out.
func arith(opcode spirv.OpCode) builtinFn {
	return func(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
		if len(s) != 1 {
			return ast.GenExpr{}, errNesting(loc)
		}
		top := s[0]
		if len(top.Args) != 3 {
			return ast.GenExpr{}, errAt(loc, "arithmetic operator expects 2 arguments")
		}
		a, err := cg.generate(top.Args[1], top.Scope, rec)
		if err != nil {
			return ast.GenExpr{}, err
		}
		b, err := cg.generate(top.Args[2], top.Scope, rec)
		if err != nil {
			return ast.GenExpr{}, err
		}
		if a.TypeID != b.TypeID {
			return ast.GenExpr{}, errAt(loc, "arithmetic operator: operand types differ")
		}
		result := cg.EmitBinary(opcode, a.TypeID, a.ID, b.ID)
		return ast.GenExpr{ID: result, TypeID: a.TypeID, Type: a.Type}, nil
	}
}

func biEq(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if len(s) != 1 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top := s[0]
	if len(top.Args) != 3 {
		return ast.GenExpr{}, errAt(loc, "eq expects 2 arguments")
	}
	a, err := cg.generate(top.Args[1], top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	b, err := cg.generate(top.Args[2], top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	if a.TypeID != cg.FloatType() || b.TypeID != cg.FloatType() {
		return ast.GenExpr{}, errAt(loc, "eq: operands must be float")
	}
	result := cg.EmitBinary(spirv.OpFOrdEqual, cg.BoolType(), a.ID, b.ID)
	return ast.GenExpr{ID: result, TypeID: cg.BoolType(), Type: ast.BoolPrim}, nil
}

func biVec4(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if len(s) != 1 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top := s[0]
	if len(top.Args) != 5 {
		return ast.GenExpr{}, errAt(loc, "vec4 expects 4 arguments")
	}
	components := make([]uint32, 4)
	for i := 0; i < 4; i++ {
		v, err := cg.generate(top.Args[i+1], top.Scope, rec)
		if err != nil {
			return ast.GenExpr{}, err
		}
		if v.TypeID != cg.FloatType() {
			return ast.GenExpr{}, errAt(loc, "vec4: components must be float")
		}
		components[i] = v.ID
	}
	result := cg.EmitCompositeConstruct(cg.Vec4Type(), components)
	return ast.GenExpr{ID: result, TypeID: cg.Vec4Type(), Type: ast.Vec4}, nil
}

func biOutput(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if len(s) != 1 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top := s[0]
	if len(top.Args) != 3 {
		return ast.GenExpr{}, errAt(loc, "output expects 2 arguments")
	}
	numLit, ok := top.Args[1].Kind.(ast.Number)
	if !ok {
		return ast.GenExpr{}, errAt(loc, "output: first argument must be a numeric literal")
	}
	value, err := cg.generate(top.Args[2], top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	id := cg.DeclareOutput(int(numLit), value.TypeID)
	cg.EmitStore(id, value.ID)
	return ast.GenExpr{Type: ast.Void}, nil
}

func biIf(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if len(s) == 0 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top, rest := s.pop()
	if len(top.Args) != 4 {
		return ast.GenExpr{}, errAt(loc, "if: expected (if c t f)")
	}
	condExpr, trueExpr, falseExpr := top.Args[1], top.Args[2], top.Args[3]

	cond, err := cg.generate(condExpr, top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	if cond.TypeID != cg.BoolType() {
		return ast.GenExpr{}, errAt(loc, "if: condition must be bool")
	}

	tID, fID, dID := cg.AllocID(), cg.AllocID(), cg.AllocID()
	cg.EmitSelectionMerge(dID)
	cg.EmitBranchConditional(cond.ID, tID, fID)

	cg.EmitLabel(tID)
	cg.SetBlock(tID)
	tVal, err := cg.generateCall(trueExpr, rest, top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	tFrom := cg.CurrentBlock()
	tRec := ast.IsRecCall(tVal.Type)
	if !tRec {
		cg.EmitBranch(dID)
	}

	cg.EmitLabel(fID)
	cg.SetBlock(fID)
	fVal, err := cg.generateCall(falseExpr, rest, top.Scope, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	fFrom := cg.CurrentBlock()
	fRec := ast.IsRecCall(fVal.Type)
	if !fRec {
		cg.EmitBranch(dID)
	}

	if tRec && fRec {
		return ast.GenExpr{Type: ast.RecCall}, nil
	}

	cg.EmitLabel(dID)
	cg.SetBlock(dID)

	if !tRec && !fRec {
		if tVal.TypeID != fVal.TypeID {
			return ast.GenExpr{}, errAt(loc, "if: branch types differ")
		}
		result := cg.AllocID()
		cg.EmitPhi(result, tVal.TypeID, []PhiEdge{
			{Value: tVal.ID, From: tFrom},
			{Value: fVal.ID, From: fFrom},
		})
		return ast.GenExpr{ID: result, TypeID: tVal.TypeID, Type: tVal.Type}, nil
	}
	if tRec {
		return fVal, nil
	}
	return tVal, nil
}

func biLet(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if len(s) == 0 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top, rest := s.pop()
	if len(top.Args) != 3 {
		return ast.GenExpr{}, errAt(loc, "let: expected (let (bindings) body)")
	}
	bindingsList, ok := top.Args[1].Kind.(ast.List)
	if !ok {
		return ast.GenExpr{}, errAt(loc, "let: expected a binding list")
	}
	additions := make(map[string]Definition, len(bindingsList.Values))
	for _, b := range bindingsList.Values {
		pair, ok := b.Kind.(ast.List)
		if !ok || len(pair.Values) != 2 {
			return ast.GenExpr{}, errAt(b.Loc, "let: binding must be (name expr)")
		}
		name, ok := pair.Values[0].Kind.(ast.Identifier)
		if !ok {
			return ast.GenExpr{}, errAt(b.Loc, "let: binding name must be an identifier")
		}
		additions[name.Name] = Definition{Body: pair.Values[1], Scope: top.Scope}
	}
	bodyDefs := top.Scope.Extend(additions)
	return cg.generateCall(top.Args[2], rest, bodyDefs, rec)
}

// biRec implements `(rec a1 … an)`: only legal inside a rec-func body,
// where it records one back-edge per loop-carried parameter and branches
// to the loop's continue block.
func biRec(cg *Codegen, loc ast.Location, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if rec == nil {
		return ast.GenExpr{}, errAt(loc, "rec used outside rec-func")
	}
	if len(s) != 1 {
		return ast.GenExpr{}, errNesting(loc)
	}
	top := s[0]
	args := top.Args[1:]
	if len(args) != len(rec.paramTypes) {
		return ast.GenExpr{}, errAt(loc, "rec: argument count mismatch")
	}
	values := make([]ast.GenExpr, len(args))
	for i, a := range args {
		v, err := cg.generate(a, top.Scope, rec)
		if err != nil {
			return ast.GenExpr{}, err
		}
		if v.TypeID != rec.paramTypes[i] || !ast.Equal(v.Type, rec.paramSemType[i]) {
			return ast.GenExpr{}, errAt(loc, "rec: argument type mismatch in "+ast.Dump(a))
		}
		values[i] = v
	}
	from := cg.CurrentBlock()
	for i, v := range values {
		rec.backEdges[i] = append(rec.backEdges[i], PhiEdge{Value: v.ID, From: from})
	}
	cg.EmitBranch(rec.continueID)
	return ast.GenExpr{Type: ast.RecCall}, nil
}
