package parser

import (
	"fmt"
	"go/token"
	"os"
)

// Parser reads .pad sources into field entry sequences.
type Parser interface {
	ParseFile(filename string) (*File, error)
	ParseSource(filename string, src []byte) (*File, error)
}

type parserImpl struct{}

// New returns default parser.
func New() Parser {
	return &parserImpl{}
}

func (p *parserImpl) ParseFile(filename string) (*File, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", filename, err)
	}
	return p.ParseSource(filename, src)
}

// ParseSource parses one .pad source. Parsing is all-or-nothing: the first
// malformed entry fails the whole file.
func (p *parserImpl) ParseSource(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	c, err := tokenize(fset, filename, src)
	if err != nil {
		return nil, err
	}

	w := &walker{c: c, f: &File{Name: filename, Fset: fset}}
	if err := w.walk(); err != nil {
		return nil, err
	}
	return w.f, nil
}

type walker struct {
	c      *cursor
	f      *File
	copied int // source offset up to which text has been emitted as chunks
}

func (w *walker) walk() error {
	c := w.c
	depth := 0
	for {
		t := c.peek()
		switch t.tok {
		case token.EOF:
			w.flush(len(c.src))
			return nil
		case token.PACKAGE:
			c.next()
			if name := c.peek(); depth == 0 && name.tok == token.IDENT {
				w.f.Package = name.lit
			}
			continue
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.TYPE:
			if depth == 0 {
				if err := w.typeDecl(); err != nil {
					return err
				}
				continue
			}
		}
		c.next()
	}
}

func (w *walker) flush(upTo int) {
	if upTo > w.copied {
		w.f.Chunks = append(w.f.Chunks, Chunk{Text: string(w.c.src[w.copied:upTo])})
		w.copied = upTo
	}
}

// typeDecl handles "type Spec" and "type ( Spec; ... )" at the cursor.
func (w *walker) typeDecl() error {
	c := w.c
	docs := w.docBefore(c.i)
	kw := c.next()

	if c.peek().tok != token.LPAREN {
		return w.typeSpec(docs, &kw)
	}

	prev := c.next()
	for {
		specDocs := c.skipComments()
		for c.peek().tok == token.SEMICOLON {
			prev = c.next()
			specDocs = c.skipComments()
		}
		specDocs = dropTrailing(c, prev, specDocs)
		switch t := c.peek(); t.tok {
		case token.RPAREN:
			c.next()
			return nil
		case token.EOF:
			return c.errorf(t, "unterminated type group")
		case token.IDENT:
			if err := w.typeSpec(contiguous(c, specDocs, t), nil); err != nil {
				return err
			}
		default:
			return c.errorf(t, "expected type name, found %s", describe(t))
		}
		if err := w.skipSpec(); err != nil {
			return err
		}
		prev = c.toks[c.i-1]
	}
}

// skipSpec advances to the end of the current type spec inside a group.
func (w *walker) skipSpec() error {
	c := w.c
	for {
		switch t := c.peek(); t.tok {
		case token.SEMICOLON:
			c.next()
			return nil
		case token.RPAREN, token.EOF:
			return nil
		case token.LPAREN, token.LBRACK, token.LBRACE:
			if _, err := c.skipBalanced(); err != nil {
				return err
			}
		default:
			c.next()
		}
	}
}

// typeSpec parses "Name [TypeParams] struct { ... }" and records it as a
// declaration. Specs of any other shape are left in the verbatim text.
func (w *walker) typeSpec(docs []tokenInfo, kw *tokenInfo) error {
	c := w.c
	name := c.peek()
	if name.tok != token.IDENT {
		return nil
	}

	n := 1
	if c.peekAt(n).tok == token.LBRACK {
		if !looksLikeTypeParams(c, n) {
			return nil
		}
		c.next()
		open := c.peek()
		close, err := c.skipBalanced()
		if err != nil {
			return err
		}
		if c.peek().tok != token.STRUCT || c.peekAt(1).tok != token.LBRACE {
			return nil
		}
		return w.structDecl(docs, kw, name, c.text(open, close))
	}
	if c.peekAt(n).tok != token.STRUCT || c.peekAt(n+1).tok != token.LBRACE {
		return nil
	}
	c.next()
	return w.structDecl(docs, kw, name, "")
}

func (w *walker) structDecl(docs []tokenInfo, kw *tokenInfo, name tokenInfo, typeParams string) error {
	c := w.c
	c.next() // struct
	lbrace := c.next()

	d := &Decl{
		Name:       name.lit,
		Keyword:    kw != nil,
		TypeParams: typeParams,
		Pos:        c.position(name.pos),
	}
	for _, doc := range docs {
		d.Doc = append(d.Doc, doc.lit)
	}

	rbrace, err := w.fieldList(d, lbrace)
	if err != nil {
		return err
	}

	start := name
	if kw != nil {
		start = *kw
	}
	if len(docs) > 0 {
		start = docs[0]
	}
	w.flush(c.offset(start.pos))
	w.f.Chunks = append(w.f.Chunks, Chunk{Decl: d})
	w.f.Decls = append(w.f.Decls, d)
	w.copied = c.end(rbrace)
	return nil
}

// docBefore returns the comment group that ends on the line right above
// token i.
func (w *walker) docBefore(i int) []tokenInfo {
	c := w.c
	j := i
	for j > 0 && c.toks[j-1].tok == token.COMMENT {
		j--
	}
	comments := c.toks[j:i]
	if j > 0 {
		comments = dropTrailing(c, c.toks[j-1], comments)
	}
	return contiguous(c, comments, c.toks[i])
}

// dropTrailing removes a leading comment that sits on the same line as the
// token before it; such a comment belongs to that line, not to what follows.
func dropTrailing(c *cursor, prev tokenInfo, comments []tokenInfo) []tokenInfo {
	if len(comments) > 0 && c.line(comments[0].pos) == c.line(prev.pos) {
		return comments[1:]
	}
	return comments
}

// contiguous keeps the trailing run of comments that has no blank line
// between itself and the token that follows.
func contiguous(c *cursor, comments []tokenInfo, next tokenInfo) []tokenInfo {
	line := c.line(next.pos)
	start := len(comments)
	for k := len(comments) - 1; k >= 0; k-- {
		if line-commentEndLine(c, comments[k]) > 1 {
			break
		}
		start = k
		line = c.line(comments[k].pos)
	}
	return comments[start:]
}

func commentEndLine(c *cursor, t tokenInfo) int {
	return c.line(t.pos + token.Pos(len(t.lit)-1))
}

// looksLikeTypeParams distinguishes "Name[T any] struct" from the array
// type in "Name [4]struct".
func looksLikeTypeParams(c *cursor, lbrack int) bool {
	first := c.peekAt(lbrack + 1)
	if first.tok != token.IDENT {
		return false
	}
	switch c.peekAt(lbrack + 2).tok {
	case token.IDENT, token.COMMA, token.TILDE, token.INTERFACE, token.LBRACK,
		token.FUNC, token.MAP, token.CHAN, token.STRUCT:
		return true
	default:
		return false
	}
}
