package codegen

import "github.com/lambdav/lambdav/ast"

// Error is a codegen-time diagnostic, prefixed "row:col: " per the
// compiler's fail-fast error convention. Every error
// this package returns is one of these, so callers can recover the
// source location with errors.As when building tooling around the
// compiler (an editor integration, a richer CLI report, etc.).
type Error struct {
	Loc ast.Location
	Msg string
}

func (e *Error) Error() string {
	return e.Loc.String() + ": " + e.Msg
}

func errAt(loc ast.Location, msg string) error {
	return &Error{Loc: loc, Msg: msg}
}
