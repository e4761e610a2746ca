// Package assembler splices synthesized field lists back into declarations
// of the same outer shape as their source.
package assembler

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"

	"github.com/seitarof/gen-pad/internal/padding"
	"github.com/seitarof/gen-pad/internal/parser"
)

// File is an assembled output file: verbatim source text interleaved with
// rewritten declarations, in source order.
type File struct {
	Source  string
	Package string
	Chunks  []Chunk
	Decls   []*Decl
}

// Chunk is verbatim text or one assembled declaration.
type Chunk struct {
	Text string
	Decl *Decl
}

// NeedsUnsafe reports whether any declaration refers to package unsafe.
func (f *File) NeedsUnsafe() bool {
	for _, d := range f.Decls {
		if d.Padded() || len(d.Assertions) > 0 {
			return true
		}
	}
	return false
}

// Decl is one assembled struct declaration.
type Decl struct {
	Doc        []string
	Keyword    bool
	Name       string
	TypeParams string
	Fields     []Field
	Trailer    []string
	Assertions []Assertion
	Placements []padding.Placement
}

// Padded reports whether the declaration received any padding field.
func (d *Decl) Padded() bool {
	for _, f := range d.Fields {
		if f.Padding {
			return true
		}
	}
	return false
}

// Field is one rendered field line.
type Field struct {
	Doc         []string
	Name        string // empty for embedded fields
	Type        string
	Tag         string
	Comment     string
	SpaceBefore bool
	Padding     bool
}

// Assertion pins one named field to its declared offset at compile time.
type Assertion struct {
	Field  string
	Offset string
}

// Options controls optional output.
type Options struct {
	// Assert emits compile-time offset checks for non-generic declarations.
	Assert bool
}

// Assembler reassembles declarations from synthesized field lists.
type Assembler interface {
	Assemble(fset *token.FileSet, res *padding.Result) (*Decl, error)
	AssembleFile(src *parser.File, results []*padding.Result) (*File, error)
}

type assemblerImpl struct {
	opts Options
}

// New creates an assembler.
func New(opts Options) Assembler {
	return &assemblerImpl{opts: opts}
}

// Assemble substitutes the synthesized field list into the declaration's
// outer shape. Doc, name and type parameters are carried over verbatim.
func (a *assemblerImpl) Assemble(fset *token.FileSet, res *padding.Result) (*Decl, error) {
	src := res.Decl
	d := &Decl{
		Doc:        src.Doc,
		Keyword:    src.Keyword,
		Name:       src.Name,
		TypeParams: src.TypeParams,
		Trailer:    src.Trailer,
		Fields:     make([]Field, 0, len(res.Fields)),
		Placements: res.Placements,
	}

	// A padding field takes over the blank line and doc comment of the field
	// it positions, so the pair stays together in the output.
	grouped := false
	for i, f := range res.Fields {
		if f.IsPadding() {
			typ, err := render(fset, padding.ArrayOf(f.Padding.Len))
			if err != nil {
				return nil, fmt.Errorf("render padding %s of %s: %w", f.Padding.Name, src.Name, err)
			}
			pad := Field{Name: f.Padding.Name, Type: typ, Padding: true}
			if i+1 < len(res.Fields) && !res.Fields[i+1].IsPadding() {
				next := res.Fields[i+1].Entry
				pad.Doc = next.Doc
				pad.SpaceBefore = next.SpaceBefore
				grouped = true
			}
			d.Fields = append(d.Fields, pad)
			continue
		}
		e := f.Entry
		field := Field{
			Doc:         e.Doc,
			Name:        e.Name.String(),
			Type:        e.TypeSrc,
			Tag:         e.Tag,
			Comment:     e.Comment,
			SpaceBefore: e.SpaceBefore,
		}
		if grouped {
			field.Doc = nil
			field.SpaceBefore = false
			grouped = false
		}
		d.Fields = append(d.Fields, field)
	}

	if a.opts.Assert && !src.Generic() {
		for _, p := range res.Placements {
			if p.Name.Kind != parser.NameIdent {
				continue
			}
			d.Assertions = append(d.Assertions, Assertion{
				Field:  p.Name.Ident,
				Offset: fmt.Sprintf("%#x", p.Offset),
			})
		}
	}
	return d, nil
}

// AssembleFile assembles every declaration of src. results must be in the
// order of src.Decls.
func (a *assemblerImpl) AssembleFile(src *parser.File, results []*padding.Result) (*File, error) {
	if len(results) != len(src.Decls) {
		return nil, fmt.Errorf("%d results for %d declarations", len(results), len(src.Decls))
	}

	byDecl := make(map[*parser.Decl]*Decl, len(results))
	out := &File{Source: src.Name, Package: src.Package}
	for _, res := range results {
		d, err := a.Assemble(src.Fset, res)
		if err != nil {
			return nil, err
		}
		byDecl[res.Decl] = d
		out.Decls = append(out.Decls, d)
	}

	for _, c := range src.Chunks {
		if c.Decl == nil {
			out.Chunks = append(out.Chunks, Chunk{Text: c.Text})
			continue
		}
		d, ok := byDecl[c.Decl]
		if !ok {
			return nil, fmt.Errorf("declaration %s has no synthesized field list", c.Decl.Name)
		}
		out.Chunks = append(out.Chunks, Chunk{Decl: d})
	}
	return out, nil
}

func render(fset *token.FileSet, node ast.Node) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
