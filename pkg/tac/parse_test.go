package tac

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseRoundTrip(t *testing.T) {
	// One of everything. Parsing the rendered form of a program must
	// reproduce the program exactly.
	original := &Program{Instrs: []Instruction{
		{Op: Label, Result: "main"},
		{Op: Load, Arg1: "4", Result: "t0"},
		{Op: Load, Arg1: "-2", Result: "t1"},
		{Op: Add, Arg1: "t0", Arg2: "t1", Result: "t2"},
		{Op: Sub, Arg1: "t2", Arg2: "t1", Result: "t3"},
		{Op: Mul, Arg1: "t3", Arg2: "t0", Result: "t4"},
		{Op: Div, Arg1: "t4", Arg2: "t0", Result: "t5"},
		{Op: Eq, Arg1: "t5", Arg2: "t0", Result: "t6"},
		{Op: Ne, Arg1: "t5", Arg2: "t0", Result: "t7"},
		{Op: Lt, Arg1: "t5", Arg2: "t0", Result: "t8"},
		{Op: Le, Arg1: "t5", Arg2: "t0", Result: "t9"},
		{Op: Gt, Arg1: "t5", Arg2: "t0", Result: "t10"},
		{Op: Ge, Arg1: "t5", Arg2: "t0", Result: "t11"},
		{Op: Neg, Arg1: "t11", Result: "t12"},
		{Op: Copy, Arg1: "t12", Result: "x"},
		{Op: IfNot, Arg1: "t6", Result: "L0"},
		{Op: Call, Result: "sub"},
		{Op: Label, Result: "L0"},
		{Op: Print, Arg1: "x"},
		{Op: Read, Result: "x"},
		{Op: Goto, Result: "done"},
		{Op: Label, Result: "sub"},
		{Op: Return},
		{Op: Label, Result: "done"},
		{Op: Halt},
	}}

	parsed, err := Parse(strings.NewReader(original.String()))
	be.Err(t, err, nil)
	be.Equal(t, len(parsed.Instrs), len(original.Instrs))
	for i := range original.Instrs {
		be.Equal(t, parsed.Instrs[i], original.Instrs[i])
	}
}

func TestParseTolerance(t *testing.T) {
	// Blank lines and surrounding whitespace carry nothing.
	listing := "\nmain:\n\n   t0 = LOAD 1\t\n\nHALT\n\n"
	prog, err := Parse(strings.NewReader(listing))
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Instrs), 3)
	be.Equal(t, prog.Instrs[1], Instruction{Op: Load, Arg1: "1", Result: "t0"})
}

func TestParseCopyIsNotComparison(t *testing.T) {
	// "x = t2" assigns; only "==" compares.
	prog, err := Parse(strings.NewReader("x = t2\nt3 = == x t2\n"))
	be.Err(t, err, nil)
	be.Equal(t, prog.Instrs[0].Op, Copy)
	be.Equal(t, prog.Instrs[1].Op, Eq)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		listing string
		wantMsg string
	}{
		{"empty label", ":\n", "empty label"},
		{"unknown unary op", "t0 = FROB x\n", `unknown unary op "FROB"`},
		{"unknown binary op", "t0 = %% a b\n", `unknown binary op "%%"`},
		{"overlong assignment", "t0 = + a b c\n", "malformed assignment"},
		{"goto without target", "GOTO\n", "GOTO wants one target"},
		{"goto with two targets", "GOTO a b\n", "GOTO wants one target"},
		{"ifnot missing goto", "IF_NOT t0 L1\n", "IF_NOT wants"},
		{"return with operand", "RETURN x\n", "RETURN takes no operands"},
		{"halt with operand", "HALT 1\n", "HALT takes no operands"},
		{"print without operand", "PRINT\n", "PRINT wants one operand"},
		{"read without target", "READ\n", "READ wants one target"},
		{"unparseable", "766 HALT NOW\n", "cannot parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.listing))
			be.Err(t, err, tt.wantMsg)
		})
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	listing := "main:\nt0 = LOAD 1\n\nGOTO\n"
	_, err := Parse(strings.NewReader(listing))
	be.Err(t, err, "line 4")
}
