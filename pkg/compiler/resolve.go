package compiler

import (
	"strings"

	"plzero/pkg/diag"
)

// Resolver binds every name reference in an AST to its declaration and
// rejects semantically invalid programs before TAC generation runs:
// undeclared references, redeclarations within one scope, calls of
// non-procedures, assignments to constants or procedures.
type Resolver struct {
	table       *SymbolTable
	sourceLines []string
	proc        string // enclosing procedure name; "" at the program level
}

// Resolve walks the program, populates a fresh symbol table and
// annotates Ident, AssignStmt, CallStmt and ReadStmt nodes with their
// symbols. src is used to quote offending lines in error messages.
func Resolve(block *Block, src string) (*SymbolTable, error) {
	r := &Resolver{table: NewSymbolTable(), sourceLines: strings.Split(src, "\n")}
	if err := r.block(block); err != nil {
		return nil, err
	}
	return r.table, nil
}

func (r *Resolver) errorf(tok Token, format string, args ...any) error {
	err := diag.Newf(diag.Semantic, tok.Line, tok.Col, format, args...)
	if tok.Line-1 >= 0 && tok.Line-1 < len(r.sourceLines) {
		err.WithSource(r.sourceLines[tok.Line-1])
	}
	return err
}

// storageKey picks the VM memory key for a variable. Program-level
// variables keep their source name; procedure locals are qualified with
// the procedure name so they cannot collide with globals in the VM's
// flat memory.
func (r *Resolver) storageKey(name string) string {
	if r.proc == "" {
		return name
	}
	return r.proc + "." + name
}

func (r *Resolver) block(b *Block) error {
	for _, c := range b.Consts {
		sym := &Symbol{Name: c.Name, Kind: ConstSymbol, Value: c.Value}
		if err := r.table.Declare(sym); err != nil {
			return r.errorf(c.Tok, "%v", err)
		}
	}
	for _, v := range b.Vars {
		sym := &Symbol{Name: v.Name, Kind: VarSymbol, Key: r.storageKey(v.Name)}
		if err := r.table.Declare(sym); err != nil {
			return r.errorf(v.Tok, "%v", err)
		}
	}

	// Declare all procedures before resolving any body, so a body may
	// call a later sibling or recurse into itself.
	for _, proc := range b.Procs {
		sym := &Symbol{Name: proc.Name, Kind: ProcSymbol, Entry: proc.Name}
		if err := r.table.Declare(sym); err != nil {
			return r.errorf(proc.Tok, "%v", err)
		}
	}
	for _, proc := range b.Procs {
		r.table.EnterScope()
		prev := r.proc
		r.proc = proc.Name
		err := r.block(proc.Body)
		r.proc = prev
		r.table.ExitScope()
		if err != nil {
			return err
		}
	}

	return r.stmt(b.Body)
}

func (r *Resolver) stmt(s Stmt) error {
	switch n := s.(type) {
	case *AssignStmt:
		sym, ok := r.table.Lookup(n.Name)
		if !ok {
			return r.errorf(n.Tok, "undeclared identifier %q", n.Name)
		}
		switch sym.Kind {
		case ConstSymbol:
			return r.errorf(n.Tok, "cannot assign to constant %q", n.Name)
		case ProcSymbol:
			return r.errorf(n.Tok, "cannot assign to procedure %q", n.Name)
		}
		n.Sym = sym
		return r.expr(n.Value)

	case *CallStmt:
		sym, ok := r.table.Lookup(n.Name)
		if !ok {
			return r.errorf(n.Tok, "undeclared identifier %q", n.Name)
		}
		if sym.Kind != ProcSymbol {
			return r.errorf(n.Tok, "call of %s %q, not a procedure", sym.Kind, n.Name)
		}
		n.Sym = sym
		return nil

	case *CompoundStmt:
		for _, st := range n.Stmts {
			if err := r.stmt(st); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		return r.stmt(n.Then)

	case *WhileStmt:
		if err := r.expr(n.Cond); err != nil {
			return err
		}
		return r.stmt(n.Body)

	case *WriteStmt:
		return r.expr(n.Value)

	case *ReadStmt:
		sym, ok := r.table.Lookup(n.Name)
		if !ok {
			return r.errorf(n.Tok, "undeclared identifier %q", n.Name)
		}
		if sym.Kind != VarSymbol {
			return r.errorf(n.Tok, "cannot read into %s %q", sym.Kind, n.Name)
		}
		n.Sym = sym
		return nil

	case *EmptyStmt:
		return nil
	}
	panic("compiler: unhandled statement kind in resolver")
}

func (r *Resolver) expr(e Expr) error {
	switch n := e.(type) {
	case *Number:
		return nil

	case *Ident:
		sym, ok := r.table.Lookup(n.Name)
		if !ok {
			return r.errorf(n.Tok, "undeclared identifier %q", n.Name)
		}
		if sym.Kind == ProcSymbol {
			return r.errorf(n.Tok, "procedure %q used as a value", n.Name)
		}
		n.Sym = sym
		return nil

	case *BinaryExpr:
		if err := r.expr(n.Left); err != nil {
			return err
		}
		return r.expr(n.Right)

	case *UnaryExpr:
		return r.expr(n.Operand)
	}
	panic("compiler: unhandled expression kind in resolver")
}
