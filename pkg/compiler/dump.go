package compiler

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteTokens renders the plain token stream: kinds space-separated in
// source order, lexeme-bearing kinds as KIND(lexeme), one output line
// per source line so the EOL markers stay visible.
func WriteTokens(w io.Writer, tokens []Token) (int64, error) {
	var total int64
	col := 0
	for _, tok := range tokens {
		word := tok.Type.String()
		switch tok.Type {
		case IDENT, NUMBER, ILLEGAL:
			word = fmt.Sprintf("%s(%s)", tok.Type, tok.Lexeme)
		}
		sep := " "
		if col == 0 {
			sep = ""
		}
		n, err := fmt.Fprintf(w, "%s%s", sep, word)
		total += int64(n)
		if err != nil {
			return total, err
		}
		col++
		if tok.Type == EOL || tok.Type == EOF {
			n, err := io.WriteString(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
			col = 0
		}
	}
	return total, nil
}

// tokenJSON is the annotated-token wire shape.
type tokenJSON struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// WriteTokensJSON renders the annotated token stream as a JSON array of
// {type, value, line, column} objects.
func WriteTokensJSON(w io.Writer, tokens []Token) error {
	out := make([]tokenJSON, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenJSON{
			Type:   tok.Type.String(),
			Value:  tok.Lexeme,
			Line:   tok.Line,
			Column: tok.Col,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteAST renders the program as an indented tree, one node per line.
func WriteAST(w io.Writer, block *Block) (int64, error) {
	var sb strings.Builder
	writeBlock(&sb, block, 0)
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func line(sb *strings.Builder, depth int, format string, args ...any) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, format, args...)
	sb.WriteByte('\n')
}

func writeBlock(sb *strings.Builder, b *Block, depth int) {
	line(sb, depth, "Block:")
	for _, c := range b.Consts {
		line(sb, depth+1, "Const: %s = %d", c.Name, c.Value)
	}
	for _, v := range b.Vars {
		line(sb, depth+1, "Var: %s", v.Name)
	}
	for _, p := range b.Procs {
		line(sb, depth+1, "Procedure: %s", p.Name)
		writeBlock(sb, p.Body, depth+2)
	}
	writeStmt(sb, b.Body, depth+1)
}

func writeStmt(sb *strings.Builder, s Stmt, depth int) {
	switch n := s.(type) {
	case *AssignStmt:
		line(sb, depth, "Assign: %s", n.Name)
		writeExpr(sb, n.Value, depth+1)
	case *CallStmt:
		line(sb, depth, "Call: %s", n.Name)
	case *CompoundStmt:
		line(sb, depth, "Compound:")
		for _, st := range n.Stmts {
			writeStmt(sb, st, depth+1)
		}
	case *IfStmt:
		line(sb, depth, "If:")
		line(sb, depth+1, "Cond:")
		writeExpr(sb, n.Cond, depth+2)
		line(sb, depth+1, "Then:")
		writeStmt(sb, n.Then, depth+2)
	case *WhileStmt:
		line(sb, depth, "While:")
		line(sb, depth+1, "Cond:")
		writeExpr(sb, n.Cond, depth+2)
		line(sb, depth+1, "Do:")
		writeStmt(sb, n.Body, depth+2)
	case *WriteStmt:
		line(sb, depth, "Write:")
		writeExpr(sb, n.Value, depth+1)
	case *ReadStmt:
		line(sb, depth, "Read: %s", n.Name)
	case *EmptyStmt:
		line(sb, depth, "Empty")
	default:
		panic("compiler: unhandled statement kind in AST dump")
	}
}

func writeExpr(sb *strings.Builder, e Expr, depth int) {
	switch n := e.(type) {
	case *Number:
		line(sb, depth, "Number: %d", n.Value)
	case *Ident:
		line(sb, depth, "Ident: %s", n.Name)
	case *BinaryExpr:
		line(sb, depth, "Binary: %s", opText(n.Op))
		writeExpr(sb, n.Left, depth+1)
		writeExpr(sb, n.Right, depth+1)
	case *UnaryExpr:
		line(sb, depth, "Unary: -")
		writeExpr(sb, n.Operand, depth+1)
	default:
		panic("compiler: unhandled expression kind in AST dump")
	}
}
