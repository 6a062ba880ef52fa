package lambdav_test

import (
	"encoding/binary"
	"testing"

	"github.com/lambdav/lambdav"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleOutput(t *testing.T) {
	src := `(output 0 (vec4 1.0 1.0 1.0 1.0))`
	out, err := lambdav.Compile(src)
	require.NoError(t, err)
	require.Equal(t, uint32(0x07230203), binary.LittleEndian.Uint32(out[0:4]))
}

func TestCompileDefineAndUse(t *testing.T) {
	src := `
		(define x 1.0)
		(output 0 (vec4 x x x x))
	`
	out, err := lambdav.Compile(src)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestCompileRedefinitionReplaces(t *testing.T) {
	src := `
		(define x 1.0)
		(define x 2.0)
		(output 0 (vec4 x x x x))
	`
	_, err := lambdav.Compile(src)
	require.NoError(t, err)
}

func TestCompileBadDefineArity(t *testing.T) {
	src := `(define x)`
	_, err := lambdav.Compile(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Define needs 2 arguments")
}

func TestCompileNonToplevelExpression(t *testing.T) {
	src := `(if true 1.0 2.0)`
	_, err := lambdav.Compile(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expression wasn't toplevel")
}

func TestCompileParseError(t *testing.T) {
	_, err := lambdav.Compile(`(output 0`)
	require.Error(t, err)
}

func TestRoundTripWordCounts(t *testing.T) {
	out, err := lambdav.Compile(`(output 0 (vec4 1.0 1.0 1.0 1.0))`)
	require.NoError(t, err)

	offset := 20
	total := 20
	for offset+4 <= len(out) {
		word := binary.LittleEndian.Uint32(out[offset:])
		wordCount := int(word >> 16)
		require.NotZero(t, wordCount)
		offset += wordCount * 4
		total += wordCount * 4
	}
	require.Equal(t, len(out), total)
}

func TestRecompileIsDeterministic(t *testing.T) {
	src := `(output 0 (vec4 1.0 1.0 1.0 1.0))`
	a, err := lambdav.Compile(src)
	require.NoError(t, err)
	b, err := lambdav.Compile(src)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
