// Package verify type-checks generated output and compares the real field
// offsets computed by go/types against the declared ones.
package verify

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/tools/go/packages"

	"github.com/seitarof/gen-pad/internal/assembler"
	"github.com/seitarof/gen-pad/internal/diag"
)

// Layout is the computed layout of one declaration.
type Layout struct {
	Name    string
	Size    int64
	Generic bool // sizes depend on type arguments; not computed
	Fields  []FieldLayout
}

// FieldLayout is one field's computed placement.
type FieldLayout struct {
	Name     string
	Type     string
	Offset   int64
	Size     int64
	Gap      int64 // implicit alignment padding inserted before the field
	Padding  bool
	Declared int64 // declared offset, -1 when the field is not annotated
}

// Verifier checks generated source.
type Verifier interface {
	// Source type-checks a standalone file.
	Source(filename string, src []byte, decls []*assembler.Decl) ([]Layout, error)
	// Package type-checks src as filename inside its package on disk.
	Package(filename string, src []byte, decls []*assembler.Decl) ([]Layout, error)
}

type verifierImpl struct {
	goarch string
}

// New returns a verifier using gc sizes for goarch.
func New(goarch string) Verifier {
	return &verifierImpl{goarch: goarch}
}

func (v *verifierImpl) sizes() (types.Sizes, error) {
	sizes := types.SizesFor("gc", v.goarch)
	if sizes == nil {
		return nil, fmt.Errorf("unsupported architecture %q", v.goarch)
	}
	return sizes, nil
}

func (v *verifierImpl) Source(filename string, src []byte, decls []*assembler.Decl) ([]Layout, error) {
	sizes, err := v.sizes()
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, 0)
	if err != nil {
		return nil, diag.New(diag.PhaseVerify, diag.KindTypeCheck).Detail("parse generated source").Cause(err).Build()
	}

	var typeErrs error
	conf := types.Config{
		Importer: importer.Default(),
		Sizes:    sizes,
		Error: func(err error) {
			typeErrs = multierr.Append(typeErrs, typeCheckError(err))
		},
	}
	pkg, _ := conf.Check(f.Name.Name, fset, []*ast.File{f}, nil)
	if typeErrs != nil {
		return nil, typeErrs
	}
	return check(pkg, sizes, decls)
}

func (v *verifierImpl) Package(filename string, src []byte, decls []*assembler.Decl) ([]Layout, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesSizes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
		Dir:     filepath.Dir(abs),
		Env:     append(os.Environ(), "GOARCH="+v.goarch),
		Overlay: map[string][]byte{abs: src},
	}
	pkgs, err := packages.Load(cfg, "file="+abs)
	if err != nil {
		return nil, fmt.Errorf("load package of %q: %w", filename, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("package of %q not found", filename)
	}

	pkg := pkgs[0]
	var errs error
	for _, e := range pkg.Errors {
		errs = multierr.Append(errs, typeCheckError(e))
	}
	if errs != nil {
		return nil, errs
	}
	return check(pkg.Types, pkg.TypesSizes, decls)
}

func check(pkg *types.Package, sizes types.Sizes, decls []*assembler.Decl) ([]Layout, error) {
	var errs error
	layouts := make([]Layout, 0, len(decls))
	for _, d := range decls {
		l, err := layoutOf(pkg, sizes, d)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		layouts = append(layouts, l)
		errs = multierr.Append(errs, compare(d, l))
	}
	return layouts, errs
}

func layoutOf(pkg *types.Package, sizes types.Sizes, d *assembler.Decl) (Layout, error) {
	obj := pkg.Scope().Lookup(d.Name)
	if obj == nil {
		return Layout{}, diag.New(diag.PhaseVerify, diag.KindNotFound).
			Decl(d.Name).
			Detail("declaration not found in generated package").
			Build()
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return Layout{}, diag.New(diag.PhaseVerify, diag.KindTypeCheck).
			Decl(d.Name).
			Detail("%s is not a struct type", d.Name).
			Build()
	}

	l := Layout{Name: d.Name}
	if d.TypeParams != "" {
		l.Generic = true
		return l, nil
	}

	vars := make([]*types.Var, st.NumFields())
	for i := range vars {
		vars[i] = st.Field(i)
	}
	offsets := sizes.Offsetsof(vars)
	qualifier := types.RelativeTo(pkg)

	declared := make(map[int]int64, len(d.Placements))
	for _, p := range d.Placements {
		declared[p.Field] = int64(p.Offset)
	}

	var end int64
	for i, fv := range vars {
		size := sizes.Sizeof(fv.Type())
		fl := FieldLayout{
			Name:     fv.Name(),
			Type:     types.TypeString(fv.Type(), qualifier),
			Offset:   offsets[i],
			Size:     size,
			Gap:      offsets[i] - end,
			Declared: -1,
		}
		if i < len(d.Fields) {
			fl.Padding = d.Fields[i].Padding
		}
		if off, ok := declared[i]; ok {
			fl.Declared = off
		}
		l.Fields = append(l.Fields, fl)
		end = offsets[i] + size
	}
	l.Size = sizes.Sizeof(st)
	return l, nil
}

// compare reports every annotated field that did not land on its declared offset.
func compare(d *assembler.Decl, l Layout) error {
	if l.Generic {
		return nil
	}
	var errs error
	for _, f := range l.Fields {
		if f.Declared < 0 || f.Offset == f.Declared {
			continue
		}
		errs = multierr.Append(errs, diag.New(diag.PhaseVerify, diag.KindLayoutMismatch).
			Decl(d.Name).
			Detail("field %s is at %#x, declared %#x", f.Name, f.Offset, f.Declared).
			Build())
	}
	return errs
}

func typeCheckError(err error) error {
	b := diag.New(diag.PhaseVerify, diag.KindTypeCheck).Cause(err)
	switch e := err.(type) {
	case types.Error:
		b.At(e.Fset.Position(e.Pos)).Detail("%s", e.Msg).Cause(nil)
	case packages.Error:
		b.Detail("%s: %s", e.Pos, e.Msg).Cause(nil)
	}
	return b.Build()
}
