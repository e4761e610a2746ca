package parser

import "testing"

func BenchmarkParseFile_Regs(b *testing.B) {
	p := New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := p.ParseFile("../../testdata/regs/regs.pad")
		if err != nil {
			b.Fatal(err)
		}
		if len(f.Decls) == 0 {
			b.Fatal("empty parse result")
		}
	}
}
