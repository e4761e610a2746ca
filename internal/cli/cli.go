package cli

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seitarof/gen-pad/internal/padding"
)

// ParseArgs parses command line arguments into Config.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("gen-pad", pflag.ContinueOnError)
	fs.StringVarP(&cfg.Output, "output", "o", "", "output file name (single input only)")
	fs.StringVar(&cfg.PadPrefix, "pad-prefix", padding.DefaultPrefix, "name prefix of synthesized padding fields")
	fs.BoolVar(&cfg.BlankPadding, "blank-padding", false, "name every padding field _")
	fs.BoolVar(&cfg.AssertOffsets, "assert-offsets", false, "emit compile-time offset assertions")
	fs.BoolVar(&cfg.Verify, "verify", false, "type-check the output and compare real offsets")
	fs.BoolVar(&cfg.Report, "report", false, "print the computed layout of every declaration (implies --verify)")
	fs.StringVar(&cfg.GOARCH, "goarch", runtime.GOARCH, "architecture whose sizes are used by --verify")
	fs.IntVarP(&cfg.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files processed concurrently")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	cfg.Inputs = fs.Args()
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("at least one .pad file is required")
	}
	for _, in := range cfg.Inputs {
		if filepath.Ext(in) != ".pad" {
			return nil, fmt.Errorf("%s: input must have the .pad extension", in)
		}
	}
	if cfg.Output != "" && len(cfg.Inputs) > 1 {
		return nil, fmt.Errorf("--output requires a single input, got %d", len(cfg.Inputs))
	}
	if !cfg.BlankPadding && !isIdent(cfg.PadPrefix) {
		return nil, fmt.Errorf("--pad-prefix %q is not a valid identifier prefix", cfg.PadPrefix)
	}
	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("--jobs must be at least 1")
	}
	if cfg.Report {
		cfg.Verify = true
	}
	return cfg, nil
}

func isIdent(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
