package parser

import (
	"go/ast"
	"go/token"
)

// File holds one parsed .pad source.
type File struct {
	Name    string
	Package string
	Fset    *token.FileSet
	Chunks  []Chunk
	Decls   []*Decl
}

// Chunk is one piece of the output file in source order: either verbatim
// source text or a struct declaration to be rewritten.
type Chunk struct {
	Text string
	Decl *Decl
}

// Decl is one struct type declaration.
type Decl struct {
	Doc        []string // comment lines directly above the declaration, verbatim
	Keyword    bool     // declaration starts with "type" (false inside a type group)
	Name       string
	TypeParams string // verbatim "[T any]" or empty
	Entries    []FieldEntry
	Trailer    []string // comments between the last entry and the closing brace
	Pos        token.Position
}

// Generic reports whether the declaration has type parameters.
func (d *Decl) Generic() bool {
	return d.TypeParams != ""
}

// Annotated returns the number of offset-annotated entries.
func (d *Decl) Annotated() int {
	n := 0
	for _, e := range d.Entries {
		if e.Kind == Annotated {
			n++
		}
	}
	return n
}

// EntryKind classifies a field entry.
type EntryKind int

const (
	Plain EntryKind = iota
	Annotated
)

func (k EntryKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Annotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// FieldEntry is one entry of a struct field list, in declaration order.
type FieldEntry struct {
	Kind        EntryKind
	Doc         []string // leading comments
	Offset      Offset   // set only for Annotated entries
	Name        FieldName
	Type        ast.Expr
	TypeSrc     string
	Tag         string // raw tag literal including quotes
	Comment     string // trailing line comment
	SpaceBefore bool   // a blank line separated this entry from the previous one
	Pos         token.Position
}

// Offset is a declared absolute byte offset.
type Offset struct {
	Lit   string
	Value uint64
	Pos   token.Position
}

// NameKind distinguishes named, placeholder and embedded fields.
type NameKind int

const (
	NameNone NameKind = iota // embedded field, still occupies space
	NameIdent
	NamePlaceholder // a lone "_": a real field, not an elision
)

// FieldName is the name of a field entry.
type FieldName struct {
	Kind  NameKind
	Ident string
}

// Named returns an identifier field name.
func Named(ident string) FieldName {
	return FieldName{Kind: NameIdent, Ident: ident}
}

// Placeholder returns the "_" field name.
func Placeholder() FieldName {
	return FieldName{Kind: NamePlaceholder, Ident: "_"}
}

// String returns the name as written in source, or "" for embedded fields.
func (n FieldName) String() string {
	switch n.Kind {
	case NameIdent:
		return n.Ident
	case NamePlaceholder:
		return "_"
	default:
		return ""
	}
}
