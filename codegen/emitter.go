package codegen

import (
	"github.com/lambdav/lambdav/ast"
)

// frame is one entry of the call-argument stack: the argument vector of a
// pending application together with the Defs that was current when the
// application's list was pushed. Carrying the scope alongside the
// arguments (rather than a bare []ast.Expr) is what keeps currying correct:
// an argument thunk's free identifiers must resolve in the scope active at
// push time, not whatever scope happens to be current when the thunk is
// finally forced.
type frame struct {
	Args  []ast.Expr
	Scope *Defs
}

type stack []frame

func (s stack) push(args []ast.Expr, scope *Defs) stack {
	return append(s, frame{Args: args, Scope: scope})
}

func (s stack) pop() (frame, stack) {
	top := s[len(s)-1]
	return top, s[:len(s)-1]
}

// recData, when non-nil, is the emitter's pointer into the body of the
// innermost enclosing rec-func: the header/continue block ids a `rec` call
// branches back to, the parameter ids it must feed, and the side table of
// recorded back-edges finish-of-loop uses to build the continue block's
// OpPhis.
type recData struct {
	header       uint32
	continueID   uint32
	paramIDs     []uint32
	paramTypes   []uint32
	paramSemType []ast.SemType // structural mirror of paramTypes, for diagnostics
	backEdges    [][]PhiEdge   // backEdges[i] holds every recorded (value, fromBlock) for parameter i
}

func newRecData(header, continueID uint32, paramIDs, paramTypes []uint32, paramSemType []ast.SemType) *recData {
	return &recData{
		header:       header,
		continueID:   continueID,
		paramIDs:     paramIDs,
		paramTypes:   paramTypes,
		paramSemType: paramSemType,
		backEdges:    make([][]PhiEdge, len(paramIDs)),
	}
}

// Generate evaluates a top-level expression for its value, with no
// enclosing rec-func and no pending call — the entry point the top-level
// driver uses for every non-`define` expression.
func (cg *Codegen) Generate(expr ast.Expr, defs *Defs) (ast.GenExpr, error) {
	return cg.generate(expr, defs, nil)
}

// generate evaluates expr for its value with no pending call, the entry
// point for "what is the value of this expression".
func (cg *Codegen) generate(expr ast.Expr, defs *Defs, rec *recData) (ast.GenExpr, error) {
	switch k := expr.Kind.(type) {
	case ast.Bool, ast.Number, ast.Str, ast.GenExpr:
		return cg.generateCall(expr, nil, defs, rec)
	case ast.Identifier:
		return cg.generateCall(expr, nil, defs, rec)
	case ast.List:
		s := stack(nil).push(k.Values, defs)
		if len(k.Values) == 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Empty expression")
		}
		return cg.generateCall(k.Values[0], s, defs, rec)
	default:
		return ast.GenExpr{}, errAt(expr.Loc, "Unrecognized expression")
	}
}

// generateCall produces the value of expr applied to the pending argument
// lists in s, innermost last.
func (cg *Codegen) generateCall(expr ast.Expr, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	switch k := expr.Kind.(type) {
	case ast.Bool:
		if len(s) != 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Literal is not callable")
		}
		id := cg.idFalse
		if k {
			id = cg.idTrue
		}
		return ast.GenExpr{ID: id, TypeID: cg.tBool, Type: ast.BoolPrim}, nil

	case ast.Number:
		if len(s) != 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Literal is not callable")
		}
		return ast.GenExpr{ID: cg.Constant(float32(k)), TypeID: cg.tFloat, Type: ast.Float}, nil

	case ast.Str:
		if len(s) != 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Literal is not callable")
		}
		return ast.GenExpr{}, errAt(expr.Loc, "Strings have no representable value")

	case ast.GenExpr:
		if len(s) != 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Value is not callable")
		}
		return k, nil

	case ast.Identifier:
		return cg.generateIdentifier(expr.Loc, k.Name, s, defs, rec)

	case ast.List:
		if head, ok := headIdentifier(k); ok && (head == "func" || head == "rec-func") {
			if len(s) == 0 {
				return ast.GenExpr{}, errNesting(expr.Loc)
			}
			top, rest := s.pop()
			if head == "func" {
				return cg.generateFunc(expr, k, top, rest, defs, rec)
			}
			return cg.generateRecFunc(expr, k, top, rest, defs, rec)
		}
		next := s.push(k.Values, defs)
		if len(k.Values) == 0 {
			return ast.GenExpr{}, errAt(expr.Loc, "Empty expression")
		}
		return cg.generateCall(k.Values[0], next, defs, rec)

	default:
		return ast.GenExpr{}, errAt(expr.Loc, "Unrecognized expression")
	}
}

func headIdentifier(l ast.List) (string, bool) {
	if len(l.Values) == 0 {
		return "", false
	}
	id, ok := l.Values[0].Kind.(ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (cg *Codegen) generateIdentifier(loc ast.Location, name string, s stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	if b, ok := builtins[name]; ok {
		return b(cg, loc, s, defs, rec)
	}
	def, ok := defs.Lookup(name)
	if !ok {
		return ast.GenExpr{}, errAt(loc, "Undefined identifier \""+name+"\"")
	}
	return cg.generateCall(def.Body, s, def.Scope, rec)
}

// generateFunc implements plain inlining: each formal is
// bound to the matching call-site argument expression, evaluated lazily in
// the scope captured alongside that argument frame (the caller's scope).
// The body itself is evaluated in the lexical scope where this `func` form
// is written (defs), extended with those formal bindings — distinct from
// the caller's scope whenever the form is reached through indirection or
// curried nesting.
func (cg *Codegen) generateFunc(expr ast.Expr, form ast.List, top frame, rest stack, defs *Defs, rec *recData) (ast.GenExpr, error) {
	params, body, err := parseFuncForm(expr.Loc, form)
	if err != nil {
		return ast.GenExpr{}, err
	}
	cargs := top.Args
	if len(cargs)-1 != len(params) {
		return ast.GenExpr{}, errAt(expr.Loc, "func: argument count mismatch")
	}
	additions := make(map[string]Definition, len(params))
	for i, p := range params {
		additions[p] = Definition{Body: cargs[i+1], Scope: top.Scope}
	}
	// The body is cloned from the scope where this `func` form textually
	// lives (defs), not from the caller's argument scope (top.Scope) —
	// only each formal's own thunk closes over the caller's scope.
	bodyDefs := defs.Extend(additions)
	return cg.generateCall(body, rest, bodyDefs, rec)
}

func parseFuncForm(loc ast.Location, form ast.List) ([]string, ast.Expr, error) {
	if len(form.Values) != 3 {
		return nil, ast.Expr{}, errAt(loc, "func: expected (func (params...) body)")
	}
	paramList, ok := form.Values[1].Kind.(ast.List)
	if !ok {
		return nil, ast.Expr{}, errAt(loc, "func: expected a parameter list")
	}
	params := make([]string, 0, len(paramList.Values))
	for _, p := range paramList.Values {
		id, ok := p.Kind.(ast.Identifier)
		if !ok {
			return nil, ast.Expr{}, errAt(loc, "func: parameter must be an identifier")
		}
		params = append(params, id.Name)
	}
	return params, form.Values[2], nil
}

// generateRecFunc lowers `rec-func` into a structured SPIR-V loop. The
// outer recData (the caller's innermost enclosing loop, if any) applies
// while the initial arguments are evaluated — they are caller-context
// expressions — and is then shadowed by this loop's own recData for the
// body.
func (cg *Codegen) generateRecFunc(expr ast.Expr, form ast.List, top frame, rest stack, callerDefs *Defs, outer *recData) (ast.GenExpr, error) {
	params, body, err := parseFuncForm(expr.Loc, form)
	if err != nil {
		return ast.GenExpr{}, err
	}
	cargs := top.Args
	if len(cargs)-1 != len(params) {
		return ast.GenExpr{}, errAt(expr.Loc, "rec-func: argument count mismatch")
	}

	initIDs := make([]uint32, len(params))
	initTypes := make([]uint32, len(params))
	for i := range params {
		v, err := cg.generate(cargs[i+1], top.Scope, outer)
		if err != nil {
			return ast.GenExpr{}, err
		}
		initIDs[i] = v.ID
		initTypes[i] = v.TypeID
	}
	// The predecessor edge into the header must name the block that is
	// open after the initial arguments have been emitted: an `if` inside
	// an init argument leaves its merge block current, not the block this
	// rec-func was entered from.
	fromCaller := cg.CurrentBlock()

	header := cg.AllocID()
	loop := cg.AllocID()
	continueBlock := cg.AllocID()
	merge := cg.AllocID()

	paramIDs := make([]uint32, len(params))
	contIDs := make([]uint32, len(params))
	additions := make(map[string]Definition, len(params))
	for i, p := range params {
		paramIDs[i] = cg.AllocID()
		contIDs[i] = cg.AllocID()
		additions[p] = Definition{
			Body:  ast.Expr{Loc: expr.Loc, Kind: ast.GenExpr{ID: paramIDs[i], TypeID: initTypes[i], Type: typeOfID(initTypes[i], cg)}},
			Scope: callerDefs,
		}
	}
	bodyDefs := callerDefs.Extend(additions)

	cg.EmitBranch(header)
	cg.EmitLabel(header)
	for i := range params {
		cg.EmitPhi(paramIDs[i], initTypes[i], []PhiEdge{
			{Value: initIDs[i], From: fromCaller},
			{Value: contIDs[i], From: continueBlock},
		})
	}
	cg.EmitLoopMerge(merge, continueBlock)
	cg.EmitBranch(loop)
	cg.EmitLabel(loop)
	cg.SetBlock(loop)

	paramSemType := make([]ast.SemType, len(params))
	for i := range params {
		paramSemType[i] = typeOfID(initTypes[i], cg)
	}
	rec := newRecData(header, continueBlock, paramIDs, initTypes, paramSemType)
	result, err := cg.generateCall(body, rest, bodyDefs, rec)
	if err != nil {
		return ast.GenExpr{}, err
	}
	if !ast.IsRecCall(result.Type) {
		cg.EmitBranch(merge)
	}

	cg.EmitLabel(continueBlock)
	for i := range params {
		edges := rec.backEdges[i]
		if len(edges) == 0 {
			edges = []PhiEdge{{Value: paramIDs[i], From: loop}}
		}
		cg.EmitPhi(contIDs[i], initTypes[i], edges)
	}
	cg.EmitBranch(header)

	cg.EmitLabel(merge)
	cg.SetBlock(merge)

	if ast.IsRecCall(result.Type) {
		return ast.GenExpr{Type: ast.RecCall}, nil
	}
	return result, nil
}

// typeOfID resolves the structural SemType for a rec-func parameter's
// SPIR-V type id: the pre-reserved float, bool and vec4 type ids map to
// Float, BoolPrim and Vec4. Any other id maps to Float; no error is
// reported for it.
func typeOfID(typeID uint32, cg *Codegen) ast.SemType {
	switch typeID {
	case cg.tFloat:
		return ast.Float
	case cg.tBool:
		return ast.BoolPrim
	case cg.tVec4:
		return ast.Vec4
	default:
		return ast.Float
	}
}
