package compiler

import (
	"fmt"
	"strconv"

	"plzero/pkg/tac"
)

// Generator lowers a resolved AST into three-address code. Temporaries
// (t0, t1, …) and labels (L0, L1, …) are numbered monotonically across
// one compilation and never reused.
type Generator struct {
	prog      *tac.Program
	nextTemp  int
	nextLabel int
}

// Generate lowers a program Block that has been through Resolve. The
// listing layout is: "main:" label, the program statement, HALT, then
// one labeled region per procedure, each ending in RETURN. Execution
// starts at "main", so control never falls into a procedure body.
func Generate(block *Block) (*tac.Program, error) {
	g := &Generator{prog: &tac.Program{}}

	g.emit(tac.Instruction{Op: tac.Label, Result: "main"})
	if err := g.stmt(block.Body); err != nil {
		return nil, err
	}
	g.emit(tac.Instruction{Op: tac.Halt})

	for _, proc := range block.Procs {
		g.emit(tac.Instruction{Op: tac.Label, Result: proc.Name})
		if err := g.stmt(proc.Body.Body); err != nil {
			return nil, err
		}
		g.emit(tac.Instruction{Op: tac.Return})
	}
	return g.prog, nil
}

func (g *Generator) emit(in tac.Instruction) {
	g.prog.Emit(in)
}

func (g *Generator) newTemp() string {
	t := fmt.Sprintf("t%d", g.nextTemp)
	g.nextTemp++
	return t
}

func (g *Generator) newLabel() string {
	l := fmt.Sprintf("L%d", g.nextLabel)
	g.nextLabel++
	return l
}

func unresolved(name string) error {
	return fmt.Errorf("compiler: identifier %q not resolved; run Resolve before Generate", name)
}

// tacOp maps a source operator token to its TAC spelling. Arithmetic
// carries over unchanged; "=" becomes "==" and "<>" (or "#") "!=".
func tacOp(tt TokenType) tac.Op {
	switch tt {
	case PLUS:
		return tac.Add
	case MINUS:
		return tac.Sub
	case STAR:
		return tac.Mul
	case SLASH:
		return tac.Div
	case EQUALS:
		return tac.Eq
	case NOT_EQ:
		return tac.Ne
	case LESS:
		return tac.Lt
	case LESS_EQ:
		return tac.Le
	case GREATER:
		return tac.Gt
	case GREATER_EQ:
		return tac.Ge
	}
	panic(fmt.Sprintf("compiler: %s is not a binary operator", tokenNames[tt]))
}

func (g *Generator) stmt(s Stmt) error {
	switch n := s.(type) {
	case *AssignStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		src, err := g.expr(n.Value)
		if err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.Copy, Arg1: src, Result: n.Sym.Key})
		return nil

	case *CallStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		g.emit(tac.Instruction{Op: tac.Call, Result: n.Sym.Entry})
		return nil

	case *CompoundStmt:
		for _, st := range n.Stmts {
			if err := g.stmt(st); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		cond, err := g.expr(n.Cond)
		if err != nil {
			return err
		}
		end := g.newLabel()
		g.emit(tac.Instruction{Op: tac.IfNot, Arg1: cond, Result: end})
		if err := g.stmt(n.Then); err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.Label, Result: end})
		return nil

	case *WhileStmt:
		top := g.newLabel()
		g.emit(tac.Instruction{Op: tac.Label, Result: top})
		cond, err := g.expr(n.Cond)
		if err != nil {
			return err
		}
		end := g.newLabel()
		g.emit(tac.Instruction{Op: tac.IfNot, Arg1: cond, Result: end})
		if err := g.stmt(n.Body); err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.Goto, Result: top})
		g.emit(tac.Instruction{Op: tac.Label, Result: end})
		return nil

	case *WriteStmt:
		val, err := g.expr(n.Value)
		if err != nil {
			return err
		}
		g.emit(tac.Instruction{Op: tac.Print, Arg1: val})
		return nil

	case *ReadStmt:
		if n.Sym == nil {
			return unresolved(n.Name)
		}
		g.emit(tac.Instruction{Op: tac.Read, Result: n.Sym.Key})
		return nil

	case *EmptyStmt:
		return nil
	}
	panic("compiler: unhandled statement kind in generator")
}

// expr lowers an expression and returns the key holding its value.
// Operands lower left to right, preserving source evaluation order.
func (g *Generator) expr(e Expr) (string, error) {
	switch n := e.(type) {
	case *Number:
		t := g.newTemp()
		g.emit(tac.Instruction{Op: tac.Load, Arg1: strconv.FormatInt(n.Value, 10), Result: t})
		return t, nil

	case *Ident:
		if n.Sym == nil {
			return "", unresolved(n.Name)
		}
		t := g.newTemp()
		if n.Sym.Kind == ConstSymbol {
			// constants resolve at compile time
			g.emit(tac.Instruction{Op: tac.Load, Arg1: strconv.FormatInt(n.Sym.Value, 10), Result: t})
		} else {
			g.emit(tac.Instruction{Op: tac.Load, Arg1: n.Sym.Key, Result: t})
		}
		return t, nil

	case *BinaryExpr:
		left, err := g.expr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := g.expr(n.Right)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(tac.Instruction{Op: tacOp(n.Op), Arg1: left, Arg2: right, Result: t})
		return t, nil

	case *UnaryExpr:
		operand, err := g.expr(n.Operand)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(tac.Instruction{Op: tac.Neg, Arg1: operand, Result: t})
		return t, nil
	}
	panic("compiler: unhandled expression kind in generator")
}
