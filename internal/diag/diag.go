// Package diag defines the structured error type shared by every gen-pad stage.
package diag

import (
	"fmt"
	"go/token"
	"strings"
)

// Phase indicates which stage produced the error
type Phase string

const (
	PhaseParse      Phase = "parse"      // .pad source to field entries
	PhaseSynthesize Phase = "synthesize" // padding synthesis
	PhaseGenerate   Phase = "generate"   // rendering and formatting
	PhaseVerify     Phase = "verify"     // post-generation layout check
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"
	KindOffsetOrder    Kind = "offset_order"
	KindInvalidOffset  Kind = "invalid_offset"
	KindLayoutMismatch Kind = "layout_mismatch"
	KindTypeCheck      Kind = "type_check"
	KindNotFound       Kind = "not_found"
	KindTemplate       Kind = "template"
	KindFormat         Kind = "format"
)

// Error is the structured error returned by the parser, the engine and the verifier.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Pos    token.Position
	Decl   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Decl != "" {
		b.WriteString(" in ")
		b.WriteString(e.Decl)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target has the same phase and kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// At sets the source position
func (b *Builder) At(pos token.Position) *Builder {
	b.err.Pos = pos
	return b
}

// Decl sets the enclosing declaration name
func (b *Builder) Decl(name string) *Builder {
	b.err.Decl = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Syntax creates a parse error tied to the offending token.
func Syntax(pos token.Position, format string, args ...any) *Error {
	return New(PhaseParse, KindSyntax).At(pos).Detail(format, args...).Build()
}

// OffsetOrder creates the error raised when declared offsets do not strictly increase.
func OffsetOrder(pos token.Position, decl string, offset, anchor uint64) *Error {
	return &Error{
		Phase:  PhaseSynthesize,
		Kind:   KindOffsetOrder,
		Pos:    pos,
		Decl:   decl,
		Detail: fmt.Sprintf("offset %#x is not greater than previous offset %#x", offset, anchor),
	}
}

// Sentinels for errors.Is matching.
var (
	ErrSyntax         = &Error{Phase: PhaseParse, Kind: KindSyntax}
	ErrOffsetOrder    = &Error{Phase: PhaseSynthesize, Kind: KindOffsetOrder}
	ErrLayoutMismatch = &Error{Phase: PhaseVerify, Kind: KindLayoutMismatch}
	ErrTypeCheck      = &Error{Phase: PhaseVerify, Kind: KindTypeCheck}
	ErrTemplate       = &Error{Phase: PhaseGenerate, Kind: KindTemplate}
	ErrFormat         = &Error{Phase: PhaseGenerate, Kind: KindFormat}
)
