// Package parser turns source text into an ast.Expr tree. It is a small,
// hand-written recursive-descent reader for the S-expression surface
// syntax: no separate token stream, because the grammar is simple enough
// that scanning and structuring happen in the same pass.
package parser

import (
	"strconv"

	"github.com/lambdav/lambdav/ast"
)

// Error is a parse-time diagnostic, prefixed "row:col: " per the
// compiler's fail-fast error convention.
type Error struct {
	Loc ast.Location
	Msg string
}

func (e *Error) Error() string {
	return e.Loc.String() + ": " + e.Msg
}

// Parser reads successive top-level expressions out of source text.
type Parser struct {
	source string
	pos    int
	loc    ast.Location
}

// New creates a parser over source.
func New(source string) *Parser {
	return &Parser{source: source}
}

// AtEnd reports whether the source is exhausted once whitespace and
// comments are skipped.
func (p *Parser) AtEnd() bool {
	p.skipWS()
	return p.pos >= len(p.source)
}

func (p *Parser) errorf(loc ast.Location, msg string) error {
	return &Error{Loc: loc, Msg: msg}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// isDelimiter reports whether c terminates an identifier token:
// whitespace plus parens.
func isDelimiter(c byte) bool {
	return isSpace(c) || c == '(' || c == ')'
}

func (p *Parser) advance() byte {
	c := p.source[p.pos]
	p.pos++
	if c == '\n' {
		p.loc.Row++
		p.loc.Col = 0
	} else {
		p.loc.Col++
	}
	return c
}

func (p *Parser) skipWS() {
	for p.pos < len(p.source) {
		c := p.source[p.pos]
		if c == ';' {
			for p.pos < len(p.source) && p.source[p.pos] != '\n' {
				p.advance()
			}
			continue
		}
		if isSpace(c) {
			p.advance()
			continue
		}
		break
	}
}

// Next parses and returns the next top-level expression.
func (p *Parser) Next() (ast.Expr, error) {
	return p.nextExpression(0)
}

func (p *Parser) nextExpression(depth int) (ast.Expr, error) {
	p.skipWS()
	if p.pos >= len(p.source) {
		return ast.Expr{}, p.errorf(p.loc, "Empty expression")
	}

	start := p.loc
	start.Depth = depth
	c := p.source[p.pos]

	switch {
	case c == '"':
		return p.parseString(start)
	case c == '(':
		return p.parseList(start, depth)
	case c == ')':
		return ast.Expr{}, p.errorf(start, "Invalid termination of expression")
	}

	if expr, ok, err := p.tryParseNumber(start); ok || err != nil {
		return expr, err
	}

	return p.parseIdentifier(start)
}

func (p *Parser) parseString(start ast.Location) (ast.Expr, error) {
	p.advance() // opening quote
	begin := p.pos
	for p.pos < len(p.source) && p.source[p.pos] != '"' {
		p.advance()
	}
	if p.pos >= len(p.source) {
		return ast.Expr{}, p.errorf(p.loc, "Unterminated '\"'")
	}
	text := p.source[begin:p.pos]
	p.advance() // closing quote
	return ast.Expr{Loc: start, Kind: ast.Str(text)}, nil
}

func (p *Parser) parseList(start ast.Location, depth int) (ast.Expr, error) {
	p.advance() // '('
	var values []ast.Expr
	for {
		p.skipWS()
		if p.pos >= len(p.source) {
			return ast.Expr{}, p.errorf(p.loc, "Unterminated '('")
		}
		if p.source[p.pos] == ')' {
			p.advance()
			break
		}
		expr, err := p.nextExpression(depth + 1)
		if err != nil {
			return ast.Expr{}, err
		}
		values = append(values, expr)
	}
	return ast.Expr{Loc: start, Kind: ast.List{Values: values}}, nil
}

func (p *Parser) parseIdentifier(start ast.Location) (ast.Expr, error) {
	begin := p.pos
	for p.pos < len(p.source) && !isDelimiter(p.source[p.pos]) {
		p.advance()
	}
	name := p.source[begin:p.pos]
	switch name {
	case "true":
		return ast.Expr{Loc: start, Kind: ast.Bool(true)}, nil
	case "false":
		return ast.Expr{Loc: start, Kind: ast.Bool(false)}, nil
	}
	return ast.Expr{Loc: start, Kind: ast.Identifier{Name: name}}, nil
}

// tryParseNumber scans the maximal numeric-literal prefix at the current
// position (sign, digits, optional fraction, optional exponent — the
// shape a C strtod accepts) and, if at least one digit is present, parses
// it as a float64. A candidate prefix with no digits (e.g. a bare "-" that
// is actually the start of an identifier) is reported as ok=false so the
// caller falls through to identifier parsing.
func (p *Parser) tryParseNumber(start ast.Location) (ast.Expr, bool, error) {
	i := p.pos
	n := len(p.source)
	j := i
	if j < n && (p.source[j] == '+' || p.source[j] == '-') {
		j++
	}
	sawDigit := false
	for j < n && isDigit(p.source[j]) {
		j++
		sawDigit = true
	}
	if j < n && p.source[j] == '.' {
		j++
		for j < n && isDigit(p.source[j]) {
			j++
			sawDigit = true
		}
	}
	if !sawDigit {
		return ast.Expr{}, false, nil
	}
	if j < n && (p.source[j] == 'e' || p.source[j] == 'E') {
		k := j + 1
		if k < n && (p.source[k] == '+' || p.source[k] == '-') {
			k++
		}
		if k < n && isDigit(p.source[k]) {
			for k < n && isDigit(p.source[k]) {
				k++
			}
			j = k
		}
	}
	// A number token must end at a delimiter; anything else is an
	// identifier that merely starts with digits.
	if j < n && !isDelimiter(p.source[j]) {
		return ast.Expr{}, false, nil
	}
	text := p.source[i:j]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return ast.Expr{}, false, nil
	}
	for p.pos < j {
		p.advance()
	}
	return ast.Expr{Loc: start, Kind: ast.Number(value)}, true, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
