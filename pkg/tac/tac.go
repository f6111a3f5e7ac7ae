// Package tac defines the three-address code instruction set produced by
// the compiler and executed by the virtual machine, together with the
// text listing format that moves programs between the two.
package tac

import (
	"fmt"
	"io"
	"strings"
)

// Op is a TAC operation. Arithmetic ops keep their source spelling;
// comparisons are spelled C-style, with the source language's "=" and
// "#" (or "<>") normalized to "==" and "!=" during lowering. A bare
// "=" in a listing is always a copy, never a comparison.
type Op string

const (
	Load Op = "LOAD" // result = LOAD arg1   (integer literal or memory key)
	Copy Op = "COPY" // rendered "result = arg1"
	Neg  Op = "NEG"  // result = NEG arg1

	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"

	Eq Op = "=="
	Ne Op = "!="
	Lt Op = "<"
	Le Op = "<="
	Gt Op = ">"
	Ge Op = ">="

	Goto   Op = "GOTO"   // GOTO result
	IfNot  Op = "IF_NOT" // IF_NOT arg1 GOTO result   (jump when arg1 is zero)
	Call   Op = "CALL"   // CALL result
	Return Op = "RETURN"
	Halt   Op = "HALT"
	Print  Op = "PRINT" // PRINT arg1
	Read   Op = "READ"  // READ result
	Label  Op = "LABEL" // rendered "result:"
)

// binaryOps are the ops that take two operands and store into a result
// key. Comparisons store 1 for true and 0 for false.
var binaryOps = map[Op]bool{
	Add: true, Sub: true, Mul: true, Div: true,
	Eq: true, Ne: true, Lt: true, Le: true, Gt: true, Ge: true,
}

// IsBinary reports whether op is a two-operand arithmetic or comparison op.
func IsBinary(op Op) bool { return binaryOps[op] }

// Instruction is one TAC quad. Which fields carry meaning depends on Op:
// Result is the destination key or the jump/call target, Arg1 and Arg2
// are source operands.
type Instruction struct {
	Op     Op
	Arg1   string
	Arg2   string
	Result string
}

func (in Instruction) String() string {
	switch in.Op {
	case Label:
		return in.Result + ":"
	case Goto:
		return "GOTO " + in.Result
	case IfNot:
		return fmt.Sprintf("IF_NOT %s GOTO %s", in.Arg1, in.Result)
	case Call:
		return "CALL " + in.Result
	case Return:
		return "RETURN"
	case Halt:
		return "HALT"
	case Print:
		return "PRINT " + in.Arg1
	case Read:
		return "READ " + in.Result
	case Load:
		return fmt.Sprintf("%s = LOAD %s", in.Result, in.Arg1)
	case Neg:
		return fmt.Sprintf("%s = NEG %s", in.Result, in.Arg1)
	case Copy:
		return fmt.Sprintf("%s = %s", in.Result, in.Arg1)
	default:
		return fmt.Sprintf("%s = %s %s %s", in.Result, in.Op, in.Arg1, in.Arg2)
	}
}

// Program is a flat, ordered instruction sequence. Labels are ordinary
// instructions here; the VM's loader resolves them to indices.
type Program struct {
	Instrs []Instruction
}

// Emit appends one instruction.
func (p *Program) Emit(in Instruction) {
	p.Instrs = append(p.Instrs, in)
}

// String renders the whole listing, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for _, in := range p.Instrs {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the listing to w, making Program an io.WriterTo.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.String())
	return int64(n), err
}
