package parser_test

import (
	"testing"

	"github.com/lambdav/lambdav/ast"
	"github.com/lambdav/lambdav/parser"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) ast.Expr {
	t.Helper()
	p := parser.New(src)
	expr, err := p.Next()
	require.NoError(t, err)
	return expr
}

func TestNumbers(t *testing.T) {
	for _, src := range []string{"1", "1.5", "-2.25", "+3", "1e10", "-1.5e-3"} {
		expr := parseOne(t, src)
		_, ok := expr.Kind.(ast.Number)
		require.True(t, ok, "expected number for %q", src)
	}
}

func TestBooleans(t *testing.T) {
	expr := parseOne(t, "true")
	require.Equal(t, ast.Bool(true), expr.Kind)
	expr = parseOne(t, "false")
	require.Equal(t, ast.Bool(false), expr.Kind)
}

func TestIdentifier(t *testing.T) {
	expr := parseOne(t, "plusc")
	id, ok := expr.Kind.(ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "plusc", id.Name)
}

func TestString(t *testing.T) {
	expr := parseOne(t, `"hello world"`)
	require.Equal(t, ast.Str("hello world"), expr.Kind)
}

func TestList(t *testing.T) {
	expr := parseOne(t, "(+ 1 2)")
	list, ok := expr.Kind.(ast.List)
	require.True(t, ok)
	require.Len(t, list.Values, 3)
}

func TestNestedList(t *testing.T) {
	expr := parseOne(t, "((plusc 1.0) 2.0)")
	outer, ok := expr.Kind.(ast.List)
	require.True(t, ok)
	require.Len(t, outer.Values, 2)
	_, ok = outer.Values[0].Kind.(ast.List)
	require.True(t, ok)
}

func TestComment(t *testing.T) {
	p := parser.New("; a comment\n42")
	expr, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, ast.Number(42), expr.Kind)
}

func TestMultipleTopLevelExpressions(t *testing.T) {
	p := parser.New("1 2 3")
	var got []ast.Expr
	for !p.AtEnd() {
		expr, err := p.Next()
		require.NoError(t, err)
		got = append(got, expr)
	}
	require.Len(t, got, 3)
}

func TestUnterminatedString(t *testing.T) {
	p := parser.New(`"abc`)
	_, err := p.Next()
	require.Error(t, err)
}

func TestUnterminatedList(t *testing.T) {
	p := parser.New("(+ 1 2")
	_, err := p.Next()
	require.Error(t, err)
}

func TestInvalidTermination(t *testing.T) {
	p := parser.New(")")
	_, err := p.Next()
	require.Error(t, err)
}

func TestEmptyExpression(t *testing.T) {
	p := parser.New("   ")
	_, err := p.Next()
	require.Error(t, err)
}

func TestLocationTracking(t *testing.T) {
	p := parser.New("(a\n  b)")
	expr, err := p.Next()
	require.NoError(t, err)
	list := expr.Kind.(ast.List)
	require.Equal(t, 1, list.Values[1].Loc.Row)
}
