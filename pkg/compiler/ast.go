package compiler

import (
	"fmt"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Number is a compile-time integer constant.
//
//	x := 42;
//	     ^^  Number{Value: 42}
type Number struct {
	Value int64
	Tok   Token
}

func (*Number) exprNode()        {}
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }

// Ident is a read of a named constant or variable. Sym is nil until the
// resolver binds the name to its declaration.
//
//	x := y + 1;
//	     ^  Ident{Name: "y"}
type Ident struct {
	Name string
	Tok  Token
	Sym  *Symbol
}

func (*Ident) exprNode()        {}
func (i *Ident) String() string { return i.Name }

// BinaryExpr represents a binary operation: Left Op Right.
// Operands evaluate left to right.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opText(b.Op), b.Right)
}

// UnaryExpr represents unary minus on a term.
//
//	x := -y;
//	     ^^  UnaryExpr{Op: MINUS, Operand: Ident{y}}
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode() {}
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", opText(u.Op), u.Operand)
}

//  Statement nodes

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
	String() string
}

// AssignStmt stores the value of an expression under a variable name.
//
//	x := 4 + 2
//	^    ^^^^^
//	Name Value
type AssignStmt struct {
	Name  string
	Tok   Token // the identifier token, for diagnostics
	Value Expr
	Sym   *Symbol
}

func (*AssignStmt) stmtNode() {}
func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s := %s", a.Name, a.Value)
}

// CallStmt transfers control to a procedure body and returns.
type CallStmt struct {
	Name string
	Tok  Token
	Sym  *Symbol
}

func (*CallStmt) stmtNode()        {}
func (c *CallStmt) String() string { return "call " + c.Name }

// CompoundStmt is a begin ... end sequence.
type CompoundStmt struct {
	Stmts []Stmt
}

func (*CompoundStmt) stmtNode() {}
func (c *CompoundStmt) String() string {
	parts := make([]string, len(c.Stmts))
	for i, s := range c.Stmts {
		parts[i] = s.String()
	}
	return "begin " + strings.Join(parts, "; ") + " end"
}

// IfStmt guards a statement with a condition. There is no else branch.
type IfStmt struct {
	Cond Expr
	Then Stmt
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	return fmt.Sprintf("if %s then %s", i.Cond, i.Then)
}

// WhileStmt repeats a statement while a condition holds.
type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("while %s do %s", w.Cond, w.Body)
}

// WriteStmt prints the value of an expression: ! expr.
type WriteStmt struct {
	Value Expr
}

func (*WriteStmt) stmtNode()        {}
func (w *WriteStmt) String() string { return "! " + w.Value.String() }

// ReadStmt reads an integer into a variable: ? ident.
type ReadStmt struct {
	Name string
	Tok  Token
	Sym  *Symbol
}

func (*ReadStmt) stmtNode()        {}
func (r *ReadStmt) String() string { return "? " + r.Name }

// EmptyStmt is the statement between ";" and "end", and other places the
// grammar allows nothing at all.
type EmptyStmt struct{}

func (*EmptyStmt) stmtNode()      {}
func (*EmptyStmt) String() string { return "" }

//  Declarations

// ConstDecl binds a name to a fixed integer value for the whole block.
type ConstDecl struct {
	Name  string
	Value int64
	Tok   Token
}

// VarDecl introduces a mutable variable.
type VarDecl struct {
	Name string
	Tok  Token
}

// ProcDecl declares a callable procedure. Body never contains further
// procedure declarations (single-level rule).
type ProcDecl struct {
	Name string
	Body *Block
	Tok  Token
}

// Block is the program structure unit: constants, then variables, then
// procedures, then exactly one statement. The whole program is one Block.
type Block struct {
	Consts []*ConstDecl
	Vars   []*VarDecl
	Procs  []*ProcDecl
	Body   Stmt
}

// opText returns the surface spelling of an operator token type as it
// appears in TAC listings. NOT_EQ always spells "<>" even when the source
// wrote "#".
func opText(tt TokenType) string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case EQUALS:
		return "="
	case NOT_EQ:
		return "<>"
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	}
	return tt.String()
}
