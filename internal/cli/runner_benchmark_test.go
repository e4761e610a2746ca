package cli

import (
	"context"
	"testing"

	"github.com/seitarof/gen-pad/internal/padding"
)

func BenchmarkRunnerRun_EndToEnd(b *testing.B) {
	inputs := copyTestdata(b, b.TempDir(), "regs/regs.pad")

	cfg := &Config{
		Inputs:        inputs,
		PadPrefix:     padding.DefaultPrefix,
		AssertOffsets: true,
		GOARCH:        "amd64",
		Jobs:          1,
	}
	runner := newRunner(cfg, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := runner.Run(context.Background(), cfg); err != nil {
			b.Fatal(err)
		}
	}
}
