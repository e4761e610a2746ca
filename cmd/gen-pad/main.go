package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/seitarof/gen-pad/internal/assembler"
	"github.com/seitarof/gen-pad/internal/cli"
	"github.com/seitarof/gen-pad/internal/generator"
	"github.com/seitarof/gen-pad/internal/matcher"
	"github.com/seitarof/gen-pad/internal/padding"
	"github.com/seitarof/gen-pad/internal/parser"
	"github.com/seitarof/gen-pad/internal/verify"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	logger, err := cli.NewLogger(cfg.Verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	padding.SetLogger(logger.Named("padding"))

	p := parser.New()
	e := padding.New(padding.Options{Prefix: cfg.PadPrefix, Blank: cfg.BlankPadding})
	a := assembler.New(assembler.Options{Assert: cfg.AssertOffsets})
	m := matcher.NewCollisionMatcher(cfg.PadPrefix, cfg.BlankPadding)
	f := generator.NewGoimportsFormatter()
	w := generator.NewFileWriter()
	g := generator.New(f, w)
	v := verify.New(cfg.GOARCH)
	rep := cli.NewReporter(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := cli.NewRunner(p, e, a, m, g, v, rep, logger.Named("gen-pad"))
	if err := runner.Run(ctx, cfg); err != nil {
		stop()
		logger.Fatal("generation failed", zap.Error(err))
	}
}
