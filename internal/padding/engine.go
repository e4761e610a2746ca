// Package padding synthesizes the padding fields that pin offset-annotated
// fields to their declared byte offsets.
//
// The engine never evaluates a size. Each padding length is emitted as a Go
// constant expression over unsafe.Sizeof and left to the compiler's constant
// folder, so a gap that is too small surfaces later as a negative array
// length rather than here.
package padding

import (
	"go/ast"
	"go/token"
	"strconv"

	"go.uber.org/zap"

	"github.com/seitarof/gen-pad/internal/diag"
	"github.com/seitarof/gen-pad/internal/parser"
)

// DefaultPrefix is prepended to the padding counter to name padding fields.
const DefaultPrefix = "_pad"

// Engine turns one declaration's entries into an explicit field list.
type Engine interface {
	Synthesize(d *parser.Decl) (*Result, error)
}

// Options controls padding field naming.
type Options struct {
	Prefix string
	// Blank names every padding field "_" instead of numbering them.
	Blank bool
}

// Result is the synthesized field list of one declaration.
type Result struct {
	Decl       *parser.Decl
	Fields     []Field
	Placements []Placement
}

// Field is either a source field with its offset stripped or a padding field.
type Field struct {
	Entry   parser.FieldEntry
	Padding *Padding
}

// IsPadding reports whether f was synthesized.
func (f Field) IsPadding() bool {
	return f.Padding != nil
}

// Padding is a synthesized byte-array field.
type Padding struct {
	Name   string
	Len    ast.Expr
	Offset uint64 // the declared offset reached after this padding
}

// Placement records where an annotated field must land.
type Placement struct {
	Name   parser.FieldName
	Offset uint64
	Field  int // index into Result.Fields
}

// Checkpoint is the running anchor of the single pass: the last declared
// offset and the types of every field emitted since then.
type Checkpoint struct {
	Anchor    uint64
	AnchorLit string
	Pending   []ast.Expr
}

// Length returns offset - anchor - Sizeof(t1) - ... - Sizeof(tn) for the
// pending types in emission order.
func (cp *Checkpoint) Length(offset parser.Offset) ast.Expr {
	var expr ast.Expr = &ast.BinaryExpr{
		X:  intLit(offset.Lit),
		Op: token.SUB,
		Y:  intLit(cp.AnchorLit),
	}
	for _, t := range cp.Pending {
		expr = &ast.BinaryExpr{X: expr, Op: token.SUB, Y: SizeOf(t)}
	}
	return expr
}

type engineImpl struct {
	opts Options
}

// New returns the default engine.
func New(opts Options) Engine {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &engineImpl{opts: opts}
}

// Synthesize walks the entries once, left to right. The checkpoint and the
// padding counter live only for the duration of the call.
func (e *engineImpl) Synthesize(d *parser.Decl) (*Result, error) {
	cp := Checkpoint{AnchorLit: "0"}
	count := 0
	res := &Result{Decl: d, Fields: make([]Field, 0, len(d.Entries)+d.Annotated())}

	for _, entry := range d.Entries {
		if entry.Kind != parser.Annotated {
			res.Fields = append(res.Fields, Field{Entry: Strip(entry)})
			cp.Pending = append(cp.Pending, entry.Type)
			continue
		}

		if entry.Offset.Value <= cp.Anchor {
			return nil, diag.OffsetOrder(entry.Offset.Pos, d.Name, entry.Offset.Value, cp.Anchor)
		}

		pad := &Padding{
			Name:   e.name(count),
			Len:    cp.Length(entry.Offset),
			Offset: entry.Offset.Value,
		}
		count++
		res.Fields = append(res.Fields, Field{Padding: pad})
		Logger().Debug("padding synthesized",
			zap.String("decl", d.Name),
			zap.String("field", pad.Name),
			zap.String("before", entry.Name.String()),
			zap.Int("pending", len(cp.Pending)))

		cp = Checkpoint{
			Anchor:    entry.Offset.Value,
			AnchorLit: entry.Offset.Lit,
			Pending:   []ast.Expr{entry.Type},
		}

		res.Placements = append(res.Placements, Placement{
			Name:   entry.Name,
			Offset: entry.Offset.Value,
			Field:  len(res.Fields),
		})
		res.Fields = append(res.Fields, Field{Entry: Strip(entry)})
	}
	return res, nil
}

func (e *engineImpl) name(n int) string {
	if e.opts.Blank {
		return "_"
	}
	return e.opts.Prefix + strconv.Itoa(n)
}

// Strip returns a copy of entry with its offset metadata removed.
func Strip(entry parser.FieldEntry) parser.FieldEntry {
	entry.Kind = parser.Plain
	entry.Offset = parser.Offset{}
	return entry
}
