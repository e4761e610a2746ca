package parser

import (
	"fmt"
	"go/scanner"
	"go/token"

	"github.com/seitarof/gen-pad/internal/diag"
)

type tokenInfo struct {
	pos token.Pos
	tok token.Token
	lit string
}

// cursor walks the token stream of one .pad file.
type cursor struct {
	fset *token.FileSet
	file *token.File
	src  []byte
	toks []tokenInfo
	i    int
}

func tokenize(fset *token.FileSet, filename string, src []byte) (*cursor, error) {
	file := fset.AddFile(filename, -1, len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, scanner.ScanComments)

	c := &cursor{fset: fset, file: file, src: src}
	for {
		pos, tok, lit := s.Scan()
		c.toks = append(c.toks, tokenInfo{pos: pos, tok: tok, lit: lit})
		if tok == token.EOF {
			break
		}
	}
	if len(errs) > 0 {
		errs.Sort()
		return nil, diag.Syntax(errs[0].Pos, "%s", errs[0].Msg)
	}
	return c, nil
}

func (c *cursor) peek() tokenInfo {
	return c.toks[c.i]
}

func (c *cursor) peekAt(n int) tokenInfo {
	if c.i+n >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[c.i+n]
}

func (c *cursor) next() tokenInfo {
	t := c.toks[c.i]
	if t.tok != token.EOF {
		c.i++
	}
	return t
}

func (c *cursor) position(p token.Pos) token.Position {
	return c.fset.Position(p)
}

func (c *cursor) offset(p token.Pos) int {
	return c.file.Offset(p)
}

func (c *cursor) line(p token.Pos) int {
	return c.file.Line(p)
}

// end returns the source offset just past t.
func (c *cursor) end(t tokenInfo) int {
	off := c.offset(t.pos)
	switch {
	case t.tok == token.SEMICOLON && t.lit == "\n", t.tok == token.EOF:
		return off
	case t.lit != "":
		return off + len(t.lit)
	default:
		return off + len(t.tok.String())
	}
}

// text returns the source between the start of from and the end of to.
func (c *cursor) text(from, to tokenInfo) string {
	return string(c.src[c.offset(from.pos):c.end(to)])
}

func (c *cursor) errorf(t tokenInfo, format string, args ...any) error {
	return diag.Syntax(c.position(t.pos), format, args...)
}

func describe(t tokenInfo) string {
	switch {
	case t.tok == token.EOF:
		return "end of file"
	case t.tok == token.SEMICOLON && t.lit == "\n":
		return "newline"
	case t.lit != "":
		return fmt.Sprintf("%q", t.lit)
	default:
		return fmt.Sprintf("%q", t.tok.String())
	}
}

// skipComments advances past comment tokens and returns them in order.
func (c *cursor) skipComments() []tokenInfo {
	var out []tokenInfo
	for c.peek().tok == token.COMMENT {
		out = append(out, c.next())
	}
	return out
}

// skipBalanced advances past one bracketed group starting at the current
// opening token and returns the closing token.
func (c *cursor) skipBalanced() (tokenInfo, error) {
	open := c.next()
	depth := 1
	for {
		t := c.next()
		switch t.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
			if depth == 0 {
				return t, nil
			}
		case token.EOF:
			return t, c.errorf(open, "unbalanced %s", describe(open))
		}
	}
}
