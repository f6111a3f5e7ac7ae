package compiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// EvalOption adjusts how Eval runs a program.
type EvalOption func(*evaluator)

// EvalOutput directs write statements to w instead of standard output.
func EvalOutput(w io.Writer) EvalOption {
	return func(ev *evaluator) { ev.out = w }
}

// EvalInput makes read statements consume whitespace-separated integers
// from r instead of standard input.
func EvalInput(r io.Reader) EvalOption {
	return func(ev *evaluator) { ev.in = bufio.NewScanner(r) }
}

type evaluator struct {
	vars  map[string]int64
	procs map[string]*ProcDecl
	out   io.Writer
	in    *bufio.Scanner
}

// Eval interprets a resolved program Block directly, without lowering it
// to three-address code. Variables live under the same storage keys the
// generated code uses, so the returned bindings line up with a machine
// run of the same program. Constants never appear in the result; they
// are read from their symbols.
func Eval(block *Block, opts ...EvalOption) (map[string]int64, error) {
	ev := &evaluator{
		vars:  make(map[string]int64),
		procs: make(map[string]*ProcDecl),
		out:   os.Stdout,
		in:    bufio.NewScanner(os.Stdin),
	}
	for _, opt := range opts {
		opt(ev)
	}
	ev.in.Split(bufio.ScanWords)

	for _, proc := range block.Procs {
		ev.procs[proc.Name] = proc
	}
	if err := ev.stmt(block.Body); err != nil {
		return nil, err
	}
	return ev.vars, nil
}

func (ev *evaluator) stmt(s Stmt) error {
	switch n := s.(type) {
	case *AssignStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		v, err := ev.expr(n.Value)
		if err != nil {
			return err
		}
		ev.vars[n.Sym.Key] = v
		return nil

	case *CallStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		proc, ok := ev.procs[n.Sym.Entry]
		if !ok {
			return fmt.Errorf("eval: procedure %q has no body", n.Sym.Entry)
		}
		return ev.stmt(proc.Body.Body)

	case *CompoundStmt:
		for _, st := range n.Stmts {
			if err := ev.stmt(st); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		c, err := ev.expr(n.Cond)
		if err != nil {
			return err
		}
		if c != 0 {
			return ev.stmt(n.Then)
		}
		return nil

	case *WhileStmt:
		for {
			c, err := ev.expr(n.Cond)
			if err != nil {
				return err
			}
			if c == 0 {
				return nil
			}
			if err := ev.stmt(n.Body); err != nil {
				return err
			}
		}

	case *WriteStmt:
		v, err := ev.expr(n.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(ev.out, "%d\n", v)
		return nil

	case *ReadStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		v, err := ev.read()
		if err != nil {
			return err
		}
		ev.vars[n.Sym.Key] = v
		return nil

	case *EmptyStmt:
		return nil
	}
	panic("compiler: unhandled statement kind in evaluator")
}

func (ev *evaluator) expr(e Expr) (int64, error) {
	switch n := e.(type) {
	case *Number:
		return n.Value, nil

	case *Ident:
		if n.Sym == nil {
			return 0, unresolved(n.Name)
		}
		if n.Sym.Kind == ConstSymbol {
			return n.Sym.Value, nil
		}
		v, ok := ev.vars[n.Sym.Key]
		if !ok {
			return 0, fmt.Errorf("eval: %q used before assignment", n.Sym.Key)
		}
		return v, nil

	case *BinaryExpr:
		left, err := ev.expr(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := ev.expr(n.Right)
		if err != nil {
			return 0, err
		}
		return ev.binary(n.Op, left, right)

	case *UnaryExpr:
		v, err := ev.expr(n.Operand)
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	panic("compiler: unhandled expression kind in evaluator")
}

func (ev *evaluator) binary(op TokenType, left, right int64) (int64, error) {
	switch op {
	case PLUS:
		return left + right, nil
	case MINUS:
		return left - right, nil
	case STAR:
		return left * right, nil
	case SLASH:
		if right == 0 {
			return 0, fmt.Errorf("eval: division by zero")
		}
		return left / right, nil
	case EQUALS:
		return boolWord(left == right), nil
	case NOT_EQ:
		return boolWord(left != right), nil
	case LESS:
		return boolWord(left < right), nil
	case LESS_EQ:
		return boolWord(left <= right), nil
	case GREATER:
		return boolWord(left > right), nil
	case GREATER_EQ:
		return boolWord(left >= right), nil
	}
	panic(fmt.Sprintf("compiler: %s is not a binary operator", tokenNames[op]))
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (ev *evaluator) read() (int64, error) {
	if !ev.in.Scan() {
		if err := ev.in.Err(); err != nil {
			return 0, fmt.Errorf("eval: read: %w", err)
		}
		return 0, fmt.Errorf("eval: read past end of input")
	}
	v, err := strconv.ParseInt(ev.in.Text(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("eval: read %q: not an integer", ev.in.Text())
	}
	return v, nil
}
