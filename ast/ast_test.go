package ast_test

import (
	"testing"

	"github.com/lambdav/lambdav/ast"
	"github.com/stretchr/testify/require"
)

func TestLocationString(t *testing.T) {
	loc := ast.Location{Row: 3, Col: 7}
	require.Equal(t, "3:7", loc.String())
}

func TestDump(t *testing.T) {
	expr := ast.Expr{Kind: ast.List{Values: []ast.Expr{
		{Kind: ast.Identifier{Name: "+"}},
		{Kind: ast.Number(1.5)},
		{Kind: ast.Bool(true)},
	}}}
	require.Equal(t, "(+ 1.5 true)", ast.Dump(expr))
}

func TestDumpString(t *testing.T) {
	expr := ast.Expr{Kind: ast.Str("hi")}
	require.Equal(t, `"hi"`, ast.Dump(expr))
}

func TestIsVoidAndIsRecCall(t *testing.T) {
	require.True(t, ast.IsVoid(ast.Void))
	require.False(t, ast.IsVoid(ast.Float))
	require.True(t, ast.IsRecCall(ast.RecCall))
	require.False(t, ast.IsRecCall(ast.Void))
}

func TestEqual(t *testing.T) {
	require.True(t, ast.Equal(ast.Float, ast.Float))
	require.False(t, ast.Equal(ast.Float, ast.BoolPrim))
	require.True(t, ast.Equal(ast.Vec4, ast.Vector{Count: 4, Primitive: ast.Float}))
	require.False(t, ast.Equal(ast.Vec4, ast.Vector{Count: 3, Primitive: ast.Float}))
	require.False(t, ast.Equal(ast.Float, ast.MatrixType{Rows: 2, Cols: 2, Primitive: ast.Float}))
}
