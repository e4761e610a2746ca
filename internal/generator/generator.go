package generator

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/seitarof/gen-pad/internal/assembler"
	"github.com/seitarof/gen-pad/internal/diag"
)

const headerPrefix = "// Code generated by gen-pad "

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Generator renders assembled files to Go source.
type Generator interface {
	Render(file *assembler.File) ([]byte, error)
	// Generate renders file and writes it to cfg's output, returning the
	// written source.
	Generate(cfg Config, file *assembler.File) ([]byte, error)
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
}

// Formatter formats generated Go code and organizes imports.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type goimportsFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Source string
	Chunks []assembler.Chunk
	Decls  []*assembler.Decl
}

// New creates a code generator.
func New(f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, tmpl: tmpl}
}

// NewGoimportsFormatter creates a formatter backed by goimports.
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

// Render executes the template and returns formatted source. The unsafe
// import is added when any declaration refers to unsafe.Sizeof.
func (g *generatorImpl) Render(file *assembler.File) ([]byte, error) {
	data := templateData{
		Source: filepath.Base(file.Source),
		Chunks: dropHeader(file.Chunks),
		Decls:  file.Decls,
	}
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "pad.go.tmpl", data); err != nil {
		return nil, diag.New(diag.PhaseGenerate, diag.KindTemplate).Detail("execute template").Cause(err).Build()
	}

	src := buf.Bytes()
	if file.NeedsUnsafe() {
		var err error
		src, err = addImport(file.Source, src, "unsafe")
		if err != nil {
			return nil, diag.New(diag.PhaseGenerate, diag.KindFormat).Detail("add unsafe import").Cause(err).Build()
		}
	}

	formatted, err := g.formatter.Format(OutputName(file.Source), src)
	if err != nil {
		return nil, diag.New(diag.PhaseGenerate, diag.KindFormat).Detail("format %s", OutputName(file.Source)).Cause(err).Build()
	}
	return formatted, nil
}

func (g *generatorImpl) Generate(cfg Config, file *assembler.File) ([]byte, error) {
	out, err := g.Render(file)
	if err != nil {
		return nil, err
	}
	if err := g.writer.Write(cfg.OutputFilename(), out); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return out, nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}

// dropHeader removes a gen-pad header left at the top of the input so that
// running over generated output does not stack a second one.
func dropHeader(chunks []assembler.Chunk) []assembler.Chunk {
	if len(chunks) == 0 || chunks[0].Decl != nil {
		return chunks
	}
	text := chunks[0].Text
	if !strings.HasPrefix(text, headerPrefix) {
		return chunks
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimLeft(text[i+1:], "\n")
	} else {
		text = ""
	}
	out := make([]assembler.Chunk, len(chunks))
	copy(out, chunks)
	out[0].Text = text
	return out
}

func addImport(filename string, src []byte, path string) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	if !astutil.AddImport(fset, f, path) {
		return src, nil
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OutputName returns the default output path for a .pad source:
// regs.pad becomes regs_pad.go next to it.
func OutputName(source string) string {
	ext := filepath.Ext(source)
	base := source[:len(source)-len(ext)]
	return base + "_pad.go"
}
