package diag

import (
	"errors"
	"fmt"
	"go/token"
	"testing"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "syntax",
			err:  Syntax(token.Position{Filename: "regs.pad", Line: 4, Column: 2}, "expected %s", "'=>'"),
			want: "regs.pad:4:2: [parse] syntax: expected '=>'",
		},
		{
			name: "offset order",
			err:  OffsetOrder(token.Position{Filename: "regs.pad", Line: 5, Column: 2}, "Regs", 0x80, 0x100),
			want: "regs.pad:5:2: [synthesize] offset_order in Regs: offset 0x80 is not greater than previous offset 0x100",
		},
		{
			name: "no position with cause",
			err: New(PhaseVerify, KindTypeCheck).
				Decl("Regs").
				Detail("parse generated source").
				Cause(errors.New("boom")).
				Build(),
			want: "[verify] type_check in Regs: parse generated source (caused by: boom)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := fmt.Errorf("regs.pad: %w", New(PhaseVerify, KindLayoutMismatch).Cause(cause).Build())

	if !errors.Is(err, ErrLayoutMismatch) {
		t.Fatal("should match ErrLayoutMismatch")
	}
	if errors.Is(err, ErrTypeCheck) {
		t.Fatal("should not match ErrTypeCheck")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable")
	}

	var de *Error
	if !errors.As(err, &de) || de.Kind != KindLayoutMismatch {
		t.Fatalf("As() = %#v", de)
	}
}
