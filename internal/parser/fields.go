package parser

import (
	"errors"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/seitarof/gen-pad/internal/diag"
)

// fieldList parses the entries between lbrace and the matching closing
// brace, which it returns.
func (w *walker) fieldList(d *Decl, lbrace tokenInfo) (tokenInfo, error) {
	c := w.c
	prevLine := c.line(lbrace.pos)

	for {
		lead := c.skipComments()
		switch t := c.peek(); t.tok {
		case token.RBRACE:
			for _, cm := range lead {
				d.Trailer = append(d.Trailer, cm.lit)
			}
			return c.next(), nil
		case token.EOF:
			return t, c.errorf(lbrace, "unterminated field list of %s", d.Name)
		case token.COMMA:
			return t, c.errorf(t, "unexpected ',' in field list of %s", d.Name)
		}

		first := c.peek()
		if len(lead) > 0 {
			first = lead[0]
		}

		e, last, err := w.entry()
		if err != nil {
			return last, err
		}
		for _, cm := range lead {
			e.Doc = append(e.Doc, cm.lit)
		}
		e.SpaceBefore = len(d.Entries) > 0 && c.line(first.pos) > prevLine+1

		endLine := c.line(last.pos)
		sep := false
		if t := c.peek(); t.tok == token.COMMA || t.tok == token.SEMICOLON {
			c.next()
			sep = true
		}
		if t := c.peek(); t.tok == token.SEMICOLON && t.lit == "\n" {
			c.next()
			sep = true
		}
		if t := c.peek(); t.tok == token.COMMENT && c.line(t.pos) == endLine {
			e.Comment = t.lit
			c.next()
			if t := c.peek(); t.tok == token.COMMA || t.tok == token.SEMICOLON {
				c.next()
				sep = true
			}
			endLine = commentEndLine(c, t)
		}
		if t := c.peek(); !sep && t.tok != token.RBRACE {
			return t, c.errorf(t, "expected ',' or newline after field, found %s", describe(t))
		}

		d.Entries = append(d.Entries, e)
		prevLine = endLine
	}
}

// entry parses one field entry; the kind is decided by one token of
// lookahead: an integer literal starts an annotated entry.
func (w *walker) entry() (FieldEntry, tokenInfo, error) {
	c := w.c
	t := c.peek()
	switch t.tok {
	case token.INT:
		return w.annotated()
	case token.FLOAT, token.IMAG:
		return FieldEntry{}, t, c.errorf(t, "offset %s is not an unsigned integer literal", t.lit)
	case token.IDENT, token.MUL:
		return w.plain()
	default:
		return FieldEntry{}, t, c.errorf(t, "expected field name, offset or embedded type, found %s", describe(t))
	}
}

func (w *walker) annotated() (FieldEntry, tokenInfo, error) {
	c := w.c
	lit := c.next()

	value, err := strconv.ParseUint(lit.lit, 0, 64)
	if err != nil {
		return FieldEntry{}, lit, diag.New(diag.PhaseParse, diag.KindInvalidOffset).
			At(c.position(lit.pos)).
			Detail("offset %s does not fit in 64 bits", lit.lit).
			Cause(err).
			Build()
	}

	eq := c.peek()
	if eq.tok != token.ASSIGN {
		return FieldEntry{}, eq, c.errorf(eq, "expected '=>' after offset %s, found %s", lit.lit, describe(eq))
	}
	c.next()
	if gt := c.peek(); gt.tok != token.GTR || gt.pos != eq.pos+1 {
		return FieldEntry{}, eq, c.errorf(eq, "expected '=>' after offset %s, found '='", lit.lit)
	}
	c.next()

	name, err := w.fieldName()
	if err != nil {
		return FieldEntry{}, c.peek(), err
	}
	if c.peek().tok == token.COLON {
		c.next()
	}

	e := FieldEntry{
		Kind:   Annotated,
		Offset: Offset{Lit: lit.lit, Value: value, Pos: c.position(lit.pos)},
		Name:   name,
		Pos:    c.position(lit.pos),
	}
	last, err := w.typeAndTag(&e)
	return e, last, err
}

// fieldName accepts an identifier or the "_" placeholder. The placeholder
// gets its own variant: it names a real field that occupies space.
func (w *walker) fieldName() (FieldName, error) {
	c := w.c
	t := c.peek()
	if t.tok != token.IDENT {
		return FieldName{}, c.errorf(t, "expected field name after '=>', found %s", describe(t))
	}
	c.next()
	if t.lit == "_" {
		return Placeholder(), nil
	}
	return Named(t.lit), nil
}

func (w *walker) plain() (FieldEntry, tokenInfo, error) {
	c := w.c
	t := c.peek()
	e := FieldEntry{Kind: Plain, Pos: c.position(t.pos)}

	if t.tok == token.IDENT {
		switch c.peekAt(1).tok {
		case token.COMMA, token.SEMICOLON, token.RBRACE, token.STRING, token.COMMENT, token.PERIOD:
			if t.lit == "_" {
				return e, t, c.errorf(t, "placeholder field needs a type")
			}
			if multiName(c) {
				return e, t, c.errorf(t, "multi-name fields are not supported; declare %s on its own line", t.lit)
			}
			// embedded field
		default:
			name, err := w.fieldName()
			if err != nil {
				return e, t, err
			}
			e.Name = name
			if c.peek().tok == token.COLON {
				c.next()
			}
		}
	}

	last, err := w.typeAndTag(&e)
	return e, last, err
}

// multiName reports whether the identifier at the cursor starts a list such
// as "x, y uint32": identifiers joined by commas on one line, followed by
// the start of a type.
func multiName(c *cursor) bool {
	first := c.peek()
	line := c.line(first.pos)
	j := 1
	for c.peekAt(j).tok == token.COMMA {
		next := c.peekAt(j + 1)
		if next.tok != token.IDENT || c.line(next.pos) != line {
			return false
		}
		j += 2
	}
	if j == 1 {
		return false
	}
	switch c.peekAt(j).tok {
	case token.SEMICOLON, token.RBRACE, token.STRING, token.COMMENT, token.PERIOD, token.EOF:
		return false
	}
	return true
}

// typeAndTag reads the type expression up to the next top-level separator,
// then an optional struct tag. It returns the last token consumed.
func (w *walker) typeAndTag(e *FieldEntry) (tokenInfo, error) {
	c := w.c
	start := c.peek()
	if isEntryEnd(start.tok) {
		return start, c.errorf(start, "expected field type, found %s", describe(start))
	}

	depth := 0
	var last tokenInfo
loop:
	for {
		t := c.peek()
		switch t.tok {
		case token.EOF:
			return t, c.errorf(start, "unterminated field type")
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK:
			depth--
		case token.RBRACE:
			if depth == 0 {
				break loop
			}
			depth--
		default:
			if depth == 0 && isEntryEnd(t.tok) {
				break loop
			}
		}
		last = c.next()
	}

	src := c.text(start, last)
	expr, err := goparser.ParseExprFrom(w.f.Fset, "", src, goparser.SkipObjectResolution)
	if err != nil {
		return last, c.errorf(start, "invalid field type %q: %s", src, firstMessage(err))
	}
	if !isTypeExpr(expr) {
		return last, c.errorf(start, "%q is not a type", src)
	}
	e.Type = expr
	e.TypeSrc = src

	if t := c.peek(); t.tok == token.STRING {
		e.Tag = t.lit
		last = c.next()
	}
	return last, nil
}

func isEntryEnd(tok token.Token) bool {
	switch tok {
	case token.COMMA, token.SEMICOLON, token.RBRACE, token.STRING, token.COMMENT, token.EOF:
		return true
	}
	return false
}

func isTypeExpr(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.ArrayType, *ast.StructType, *ast.FuncType,
		*ast.InterfaceType, *ast.MapType, *ast.ChanType, *ast.IndexExpr, *ast.IndexListExpr:
		return true
	case *ast.StarExpr:
		return isTypeExpr(t.X)
	case *ast.ParenExpr:
		return isTypeExpr(t.X)
	default:
		return false
	}
}

func firstMessage(err error) string {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Msg
	}
	return err.Error()
}
