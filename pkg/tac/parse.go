package tac

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse reads a TAC listing back into a Program. It accepts exactly the
// grammar String renders: one instruction per line, blank lines ignored.
// Malformed lines fail with their 1-based line number.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		in, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		prog.Emit(in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func parseLine(line string) (Instruction, error) {
	fields := strings.Fields(line)

	// "name:" label marker
	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		name := strings.TrimSuffix(fields[0], ":")
		if name == "" {
			return Instruction{}, fmt.Errorf("empty label %q", line)
		}
		return Instruction{Op: Label, Result: name}, nil
	}

	// assignment forms: "r = a", "r = LOAD a", "r = NEG a", "r = op a b"
	if len(fields) >= 2 && fields[1] == "=" {
		switch len(fields) {
		case 3:
			return Instruction{Op: Copy, Arg1: fields[2], Result: fields[0]}, nil
		case 4:
			switch Op(fields[2]) {
			case Load:
				return Instruction{Op: Load, Arg1: fields[3], Result: fields[0]}, nil
			case Neg:
				return Instruction{Op: Neg, Arg1: fields[3], Result: fields[0]}, nil
			}
			return Instruction{}, fmt.Errorf("unknown unary op %q", fields[2])
		case 5:
			op := Op(fields[2])
			if !IsBinary(op) {
				return Instruction{}, fmt.Errorf("unknown binary op %q", fields[2])
			}
			return Instruction{Op: op, Arg1: fields[3], Arg2: fields[4], Result: fields[0]}, nil
		}
		return Instruction{}, fmt.Errorf("malformed assignment %q", line)
	}

	switch fields[0] {
	case string(Goto):
		if len(fields) != 2 {
			return Instruction{}, fmt.Errorf("GOTO wants one target, got %q", line)
		}
		return Instruction{Op: Goto, Result: fields[1]}, nil
	case string(IfNot):
		if len(fields) != 4 || fields[2] != "GOTO" {
			return Instruction{}, fmt.Errorf("IF_NOT wants %q, got %q", "IF_NOT cond GOTO label", line)
		}
		return Instruction{Op: IfNot, Arg1: fields[1], Result: fields[3]}, nil
	case string(Call):
		if len(fields) != 2 {
			return Instruction{}, fmt.Errorf("CALL wants one target, got %q", line)
		}
		return Instruction{Op: Call, Result: fields[1]}, nil
	case string(Return):
		if len(fields) != 1 {
			return Instruction{}, fmt.Errorf("RETURN takes no operands, got %q", line)
		}
		return Instruction{Op: Return}, nil
	case string(Halt):
		if len(fields) != 1 {
			return Instruction{}, fmt.Errorf("HALT takes no operands, got %q", line)
		}
		return Instruction{Op: Halt}, nil
	case string(Print):
		if len(fields) != 2 {
			return Instruction{}, fmt.Errorf("PRINT wants one operand, got %q", line)
		}
		return Instruction{Op: Print, Arg1: fields[1]}, nil
	case string(Read):
		if len(fields) != 2 {
			return Instruction{}, fmt.Errorf("READ wants one target, got %q", line)
		}
		return Instruction{Op: Read, Result: fields[1]}, nil
	}

	return Instruction{}, fmt.Errorf("cannot parse %q", line)
}
