package codegen

import "github.com/lambdav/lambdav/ast"

// Definition is one binding in a Defs mapping: an unevaluated body plus the
// scope it closes over. The scope back-reference is what makes lexical
// closure work — when the emitter later resolves the body's free
// identifiers, it switches to this scope, not whatever scope was current
// at the call site.
type Definition struct {
	Body  ast.Expr
	Scope *Defs
}

// Defs is a lexically scoped mapping from identifier to Definition. It is
// logically value-copied on every scope extension: Extend clones the
// current mapping and adds bindings on top, so sibling scopes never
// observe each other's names and inner bindings shadow outer ones.
type Defs map[string]Definition

// NewDefs returns an empty top-level scope.
func NewDefs() *Defs {
	d := make(Defs)
	return &d
}

// Extend returns a new scope containing every binding in d plus the given
// additions, without mutating d. Callers pass the resulting pointer as the
// scope for anything defined "inside" this extension (a let body, a func
// body, a rec-func body).
func (d *Defs) Extend(additions map[string]Definition) *Defs {
	next := make(Defs, len(*d)+len(additions))
	for k, v := range *d {
		next[k] = v
	}
	for k, v := range additions {
		next[k] = v
	}
	return &next
}

// Lookup resolves name in d, returning ok=false if unbound.
func (d *Defs) Lookup(name string) (Definition, bool) {
	def, ok := (*d)[name]
	return def, ok
}

// Insert binds name in place — used only by the top-level driver for
// `define`, which mutates the single global Defs directly: a
// redefinition replaces the prior binding rather than shadowing it.
func (d *Defs) Insert(name string, def Definition) {
	(*d)[name] = def
}
