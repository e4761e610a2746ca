package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seitarof/gen-pad/internal/assembler"
	"github.com/seitarof/gen-pad/internal/generator"
	"github.com/seitarof/gen-pad/internal/matcher"
	"github.com/seitarof/gen-pad/internal/padding"
	"github.com/seitarof/gen-pad/internal/parser"
	"github.com/seitarof/gen-pad/internal/verify"
)

// Runner orchestrates parser/padding/assembler/generator layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

type runnerImpl struct {
	parser    parser.Parser
	engine    padding.Engine
	assembler assembler.Assembler
	lint      matcher.CollisionMatcher
	generator generator.Generator
	verifier  verify.Verifier
	reporter  Reporter
	logger    *zap.Logger
}

// NewRunner creates a default runner implementation.
func NewRunner(
	p parser.Parser,
	e padding.Engine,
	a assembler.Assembler,
	m matcher.CollisionMatcher,
	g generator.Generator,
	v verify.Verifier,
	rep Reporter,
	logger *zap.Logger,
) Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runnerImpl{
		parser:    p,
		engine:    e,
		assembler: a,
		lint:      m,
		generator: g,
		verifier:  v,
		reporter:  rep,
		logger:    logger,
	}
}

// Run generates every input. Files are independent: each one is processed
// to completion or to its first error, and all failures are returned
// together.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	jobs := cfg.Targets()
	layouts := make([][]verify.Layout, len(jobs))
	errs := make([]error, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			l, err := r.runFile(cfg, job)
			layouts[i] = l
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", job.Input, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Report && r.reporter != nil {
		for i, job := range jobs {
			if len(layouts[i]) == 0 {
				continue
			}
			if err := r.reporter.Report(job.Input, layouts[i]); err != nil {
				return fmt.Errorf("report: %w", err)
			}
		}
	}
	return multierr.Combine(errs...)
}

func (r *runnerImpl) runFile(cfg *Config, job Job) ([]verify.Layout, error) {
	log := r.logger.With(zap.String("file", job.Input))

	src, err := r.parser.ParseFile(job.Input)
	if err != nil {
		return nil, err
	}

	results := make([]*padding.Result, 0, len(src.Decls))
	for _, d := range src.Decls {
		r.lintDecl(log, d)
		res, err := r.engine.Synthesize(d)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	file, err := r.assembler.AssembleFile(src, results)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	out, err := r.generator.Generate(job, file)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	log.Info("generated", zap.String("output", job.Output), zap.Int("decls", len(file.Decls)))

	if !cfg.Verify || r.verifier == nil {
		return nil, nil
	}
	return r.verify(log, job, out, file.Decls)
}

func (r *runnerImpl) lintDecl(log *zap.Logger, d *parser.Decl) {
	if r.lint == nil {
		return
	}
	for _, c := range r.lint.Match(d) {
		log.Warn("field name has the shape of a synthesized padding name",
			zap.String("decl", c.Decl),
			zap.String("field", c.Field),
			zap.Stringer("pos", c.Pos))
	}
}

func (r *runnerImpl) verify(log *zap.Logger, job Job, src []byte, decls []*assembler.Decl) ([]verify.Layout, error) {
	var (
		layouts []verify.Layout
		err     error
	)
	if inPackage(job.Output) {
		log.Debug("verifying inside package", zap.String("dir", filepath.Dir(job.Output)))
		layouts, err = r.verifier.Package(job.Output, src, decls)
	} else {
		layouts, err = r.verifier.Source(job.Output, src, decls)
	}
	if err != nil {
		return layouts, err
	}
	for _, l := range layouts {
		for _, f := range l.Fields {
			if f.Gap != 0 {
				log.Warn("implicit alignment padding",
					zap.String("decl", l.Name),
					zap.String("before", f.Name),
					zap.Int64("bytes", f.Gap))
			}
		}
	}
	log.Debug("layout verified", zap.Int("decls", len(layouts)))
	return layouts, nil
}

// inPackage reports whether output sits next to other Go files, in which
// case the generated code may refer to their declarations.
func inPackage(output string) bool {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(output), "*.go"))
	if err != nil {
		return false
	}
	for _, m := range matches {
		if filepath.Clean(m) == filepath.Clean(output) || strings.HasSuffix(m, "_test.go") {
			continue
		}
		return true
	}
	return false
}
