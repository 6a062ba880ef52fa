// Package lambdav compiles the S-expression fragment-shader language into
// a SPIR-V binary module. Compile is the package's sole entry point; the
// ast, parser, codegen and spirv packages underneath it are reusable on
// their own but this is the driver most callers want.
package lambdav

import (
	"github.com/lambdav/lambdav/ast"
	"github.com/lambdav/lambdav/codegen"
	"github.com/lambdav/lambdav/parser"
)

// Compile reads successive top-level expressions out of source and returns
// the assembled SPIR-V module, or the first error encountered (parse or
// codegen). A `define` binds a name in the global scope; any other
// expression is emitted for effect and must evaluate to Void.
func Compile(source string) ([]byte, error) {
	p := parser.New(source)
	defs := codegen.NewDefs()
	cg := codegen.New()

	for !p.AtEnd() {
		expr, err := p.Next()
		if err != nil {
			return nil, err
		}

		if name, body, ok := asDefine(expr); ok {
			defs.Insert(name, codegen.Definition{Body: body, Scope: defs})
			continue
		}
		if isDefineForm(expr) {
			return nil, &codegen.Error{Loc: expr.Loc, Msg: "Define needs 2 arguments"}
		}

		result, err := cg.Generate(expr, defs)
		if err != nil {
			return nil, err
		}
		if !ast.IsVoid(result.Type) {
			return nil, &codegen.Error{Loc: expr.Loc, Msg: "Expression wasn't toplevel"}
		}
	}

	return cg.Finish(), nil
}

func isDefineForm(expr ast.Expr) bool {
	list, ok := expr.Kind.(ast.List)
	if !ok || len(list.Values) == 0 {
		return false
	}
	id, ok := list.Values[0].Kind.(ast.Identifier)
	return ok && id.Name == "define"
}

func asDefine(expr ast.Expr) (name string, body ast.Expr, ok bool) {
	list, isList := expr.Kind.(ast.List)
	if !isList || len(list.Values) != 3 {
		return "", ast.Expr{}, false
	}
	head, isID := list.Values[0].Kind.(ast.Identifier)
	if !isID || head.Name != "define" {
		return "", ast.Expr{}, false
	}
	nameID, isID := list.Values[1].Kind.(ast.Identifier)
	if !isID {
		return "", ast.Expr{}, false
	}
	return nameID.Name, list.Values[2], true
}
