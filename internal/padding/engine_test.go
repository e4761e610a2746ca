package padding

import (
	"errors"
	"go/types"
	"testing"

	"github.com/seitarof/gen-pad/internal/diag"
	"github.com/seitarof/gen-pad/internal/parser"
)

func parseDecls(t testing.TB, body string) []*parser.Decl {
	t.Helper()
	f, err := parser.New().ParseSource("test.pad", []byte("package p\n\n"+body))
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	return f.Decls
}

type wantField struct {
	name string
	len  string // padding length expression, empty for source fields
}

func checkFields(t *testing.T, res *Result, want []wantField) {
	t.Helper()
	if len(res.Fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(res.Fields), len(want))
	}
	for i, w := range want {
		f := res.Fields[i]
		if w.len == "" {
			if f.IsPadding() {
				t.Fatalf("field %d is padding %s, want %s", i, f.Padding.Name, w.name)
			}
			if f.Entry.Name.String() != w.name {
				t.Fatalf("field %d = %s, want %s", i, f.Entry.Name, w.name)
			}
			if f.Entry.Kind != parser.Plain {
				t.Fatalf("field %d still carries its offset", i)
			}
			continue
		}
		if !f.IsPadding() {
			t.Fatalf("field %d = %s, want padding %s", i, f.Entry.Name, w.name)
		}
		if f.Padding.Name != w.name {
			t.Fatalf("padding %d name = %s, want %s", i, f.Padding.Name, w.name)
		}
		if got := types.ExprString(f.Padding.Len); got != w.len {
			t.Fatalf("padding %s length = %s, want %s", w.name, got, w.len)
		}
	}
}

func TestSynthesize_RegisterBlock(t *testing.T) {
	d := parseDecls(t, `type Block struct {
	0x100 => field uint32
	between uint32
	0xc00 => another struct{ F1, F2 uint64 }
	after uint8
	0xfff => end uint8
}
`)[0]

	res, err := New(Options{}).Synthesize(d)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	checkFields(t, res, []wantField{
		{name: "_pad0", len: "0x100 - 0"},
		{name: "field"},
		{name: "between"},
		{name: "_pad1", len: "0xc00 - 0x100 - unsafe.Sizeof(*new(uint32)) - unsafe.Sizeof(*new(uint32))"},
		{name: "another"},
		{name: "after"},
		{name: "_pad2", len: "0xfff - 0xc00 - unsafe.Sizeof(*new(struct{F1, F2 uint64})) - unsafe.Sizeof(*new(uint8))"},
		{name: "end"},
	})

	wantPlacements := []Placement{
		{Name: parser.Named("field"), Offset: 0x100, Field: 1},
		{Name: parser.Named("another"), Offset: 0xc00, Field: 4},
		{Name: parser.Named("end"), Offset: 0xfff, Field: 7},
	}
	if len(res.Placements) != len(wantPlacements) {
		t.Fatalf("placements = %d, want %d", len(res.Placements), len(wantPlacements))
	}
	for i, w := range wantPlacements {
		if res.Placements[i] != w {
			t.Fatalf("placement %d = %#v, want %#v", i, res.Placements[i], w)
		}
	}
}

func TestSynthesize_LeadingPlainField(t *testing.T) {
	d := parseDecls(t, "type L struct {\n\troot uint8\n\t0x100 => field uint32\n}\n")[0]

	res, err := New(Options{}).Synthesize(d)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	checkFields(t, res, []wantField{
		{name: "root"},
		{name: "_pad0", len: "0x100 - 0 - unsafe.Sizeof(*new(uint8))"},
		{name: "field"},
	})
}

func TestSynthesize_NoAnnotationsIsIdentity(t *testing.T) {
	d := parseDecls(t, "type P struct {\n\ta uint8\n\t_ [3]byte\n\tio.Reader\n\tb uint32 `x:\"y\"`\n}\n")[0]

	res, err := New(Options{}).Synthesize(d)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(res.Fields) != len(d.Entries) || len(res.Placements) != 0 {
		t.Fatalf("fields = %d placements = %d, want %d and 0", len(res.Fields), len(res.Placements), len(d.Entries))
	}
	for i, f := range res.Fields {
		if f.IsPadding() {
			t.Fatalf("field %d is padding", i)
		}
		e := d.Entries[i]
		if f.Entry.Name != e.Name || f.Entry.TypeSrc != e.TypeSrc || f.Entry.Tag != e.Tag {
			t.Fatalf("field %d = %#v, want %#v", i, f.Entry, e)
		}
	}
}

func TestSynthesize_OffsetOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "duplicate", body: "0x100 => a uint32\n\t0x100 => b uint32"},
		{name: "decreasing", body: "0x100 => a uint32\n\t0x80 => b uint32"},
		{name: "zero", body: "0 => a uint32"},
		{name: "after plain", body: "a uint32\n\t0x10 => b uint32\n\tc uint8\n\t0x8 => d uint8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseDecls(t, "type R struct {\n\t"+tt.body+"\n}\n")[0]
			_, err := New(Options{}).Synthesize(d)
			if !errors.Is(err, diag.ErrOffsetOrder) {
				t.Fatalf("error = %v, want offset order error", err)
			}
			var de *diag.Error
			if !errors.As(err, &de) || de.Decl != "R" || !de.Pos.IsValid() {
				t.Fatalf("error details = %#v", de)
			}
		})
	}
}

func TestSynthesize_Naming(t *testing.T) {
	decls := parseDecls(t, `type A struct {
	0x10 => a uint32
	0x20 => b uint32
}

type B struct {
	0x10 => c uint32
}
`)

	t.Run("counter restarts per declaration", func(t *testing.T) {
		e := New(Options{})
		for _, d := range decls {
			res, err := e.Synthesize(d)
			if err != nil {
				t.Fatalf("Synthesize(%s) error = %v", d.Name, err)
			}
			if res.Fields[0].Padding.Name != "_pad0" {
				t.Fatalf("%s first padding = %s, want _pad0", d.Name, res.Fields[0].Padding.Name)
			}
		}
	})

	t.Run("custom prefix", func(t *testing.T) {
		res, err := New(Options{Prefix: "reserved"}).Synthesize(decls[0])
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if res.Fields[0].Padding.Name != "reserved0" || res.Fields[2].Padding.Name != "reserved1" {
			t.Fatalf("names = %s %s", res.Fields[0].Padding.Name, res.Fields[2].Padding.Name)
		}
	})

	t.Run("blank", func(t *testing.T) {
		res, err := New(Options{Blank: true}).Synthesize(decls[0])
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		for _, f := range res.Fields {
			if f.IsPadding() && f.Padding.Name != "_" {
				t.Fatalf("blank padding named %s", f.Padding.Name)
			}
		}
	})
}

func TestSynthesize_PlaceholderKeepsItsSpace(t *testing.T) {
	d := parseDecls(t, "type R struct {\n\t0x4 => _ uint32\n\t0x10 => ctrl uint32\n}\n")[0]

	res, err := New(Options{}).Synthesize(d)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	checkFields(t, res, []wantField{
		{name: "_pad0", len: "0x4 - 0"},
		{name: "_"},
		{name: "_pad1", len: "0x10 - 0x4 - unsafe.Sizeof(*new(uint32))"},
		{name: "ctrl"},
	})
	if res.Placements[0].Name.Kind != parser.NamePlaceholder {
		t.Fatalf("placeholder placement = %#v", res.Placements[0])
	}
}
