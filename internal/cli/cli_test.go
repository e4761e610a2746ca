package cli

import (
	"runtime"
	"strings"
	"testing"
)

func TestParseArgs_Success(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--pad-prefix", "reserved",
		"--assert-offsets",
		"--goarch", "arm64",
		"-j", "2",
		"regs.pad", "uart.pad",
	})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if cfg.PadPrefix != "reserved" || !cfg.AssertOffsets || cfg.GOARCH != "arm64" || cfg.Jobs != 2 {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "uart.pad" {
		t.Fatalf("inputs = %#v", cfg.Inputs)
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"regs.pad"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if cfg.PadPrefix != "_pad" {
		t.Fatalf("PadPrefix = %q, want _pad", cfg.PadPrefix)
	}
	if cfg.GOARCH != runtime.GOARCH {
		t.Fatalf("GOARCH = %q, want %q", cfg.GOARCH, runtime.GOARCH)
	}
	if cfg.Jobs < 1 || cfg.Verify || cfg.Report || cfg.BlankPadding {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestParseArgs_ReportImpliesVerify(t *testing.T) {
	cfg, err := ParseArgs([]string{"--report", "regs.pad"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if !cfg.Verify {
		t.Fatal("--report should enable --verify")
	}
}

func TestParseArgs_Version(t *testing.T) {
	cfg, err := ParseArgs([]string{"-v"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if !cfg.ShowVersion {
		t.Fatal("ShowVersion should be set")
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no inputs", args: nil, want: "at least one"},
		{name: "wrong extension", args: []string{"regs.go"}, want: ".pad extension"},
		{name: "output with many inputs", args: []string{"-o", "x.go", "a.pad", "b.pad"}, want: "single input"},
		{name: "bad prefix", args: []string{"--pad-prefix", "1x", "a.pad"}, want: "not a valid identifier"},
		{name: "zero jobs", args: []string{"-j", "0", "a.pad"}, want: "at least 1"},
		{name: "unknown flag", args: []string{"--nope", "a.pad"}, want: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParseArgs_BlankPaddingIgnoresPrefix(t *testing.T) {
	if _, err := ParseArgs([]string{"--blank-padding", "--pad-prefix", "", "a.pad"}); err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
}

func TestConfig_Targets(t *testing.T) {
	cfg := &Config{Inputs: []string{"a/regs.pad", "uart.pad"}}
	jobs := cfg.Targets()
	if len(jobs) != 2 || jobs[0].OutputFilename() != "a/regs_pad.go" || jobs[1].Output != "uart_pad.go" {
		t.Fatalf("jobs = %#v", jobs)
	}

	cfg = &Config{Inputs: []string{"regs.pad"}, Output: "gen/out.go"}
	if got := cfg.Targets()[0].OutputFilename(); got != "gen/out.go" {
		t.Fatalf("output = %q, want gen/out.go", got)
	}
}
