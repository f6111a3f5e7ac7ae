package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"plzero/pkg/diag"
)

// Parser turns a token stream into an AST by recursive descent, one
// function per grammar nonterminal. There is no backtracking and no error
// recovery: the first syntax error aborts the parse.
//
// Grammar (EBNF):
//
//	program   = block "." .
//	block     = [ "const" ident "=" number { "," ident "=" number } ";" ]
//	            [ "var" ident { "," ident } ";" ]
//	            { "procedure" ident ";" block ";" }
//	            statement .
//	statement = ident ":=" expression
//	          | "call" ident
//	          | "begin" statement { ";" statement } "end"
//	          | "if" condition "then" statement
//	          | "while" condition "do" statement
//	          | "!" expression
//	          | "?" ident
//	          | .
//	condition = expression ( "=" | "<>" | "#" | "<" | "<=" | ">" | ">=" ) expression .
//	expression = [ "+" | "-" ] term { ( "+" | "-" ) term } .
//	term      = factor { ( "*" | "/" ) factor } .
//	factor    = ident | number | "(" expression ")" .
//
// Procedure bodies may not declare further procedures (single-level rule).
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

// Parse consumes a full token stream and returns the program's root Block.
// src is the original source text, used only to quote offending lines in
// error messages. EOL tokens are dropped up front: they carry no grammar.
func Parse(tokens []Token, src string) (*Block, error) {
	stream := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type != EOL {
			stream = append(stream, tok)
		}
	}
	p := &Parser{tokens: stream, sourceLines: strings.Split(src, "\n")}
	return p.parseProgram()
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes a token of the given type or fails with the
// expected-vs-found message.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return Token{}, p.errorf(tok, "expected %s, found %s", tokenLabel(tt), foundLabel(tok))
	}
	return p.advance(), nil
}

// errorf builds a positioned syntax error quoting the offending line.
func (p *Parser) errorf(tok Token, format string, args ...any) error {
	err := diag.Newf(diag.Syntax, tok.Line, tok.Col, format, args...)
	if tok.Line-1 >= 0 && tok.Line-1 < len(p.sourceLines) {
		err.WithSource(p.sourceLines[tok.Line-1])
	}
	return err
}

// tokenLabel renders an expected token type the way error messages spell it.
func tokenLabel(tt TokenType) string {
	switch tt {
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	case EOF:
		return "end of input"
	case ASSIGN:
		return `":="`
	case EQUALS:
		return `"="`
	case SEMICOLON:
		return `";"`
	case COMMA:
		return `","`
	case DOT:
		return `"."`
	case LPAREN:
		return `"("`
	case RPAREN:
		return `")"`
	default:
		// keywords spell themselves
		return `"` + strings.ToLower(tt.String()) + `"`
	}
}

// foundLabel renders an actual token for error messages.
func foundLabel(tok Token) string {
	if tok.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// parseProgram: block "." EOF
func (p *Parser) parseProgram() (*Block, error) {
	block, err := p.parseBlock(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(DOT); err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.errorf(tok, "unexpected %s after final %s", foundLabel(tok), `"."`)
	}
	return block, nil
}

// parseBlock: declarations in fixed order, then one statement.
// insideProc forbids further procedure declarations.
func (p *Parser) parseBlock(insideProc bool) (*Block, error) {
	block := &Block{}

	if p.peek().Type == CONST {
		consts, err := p.parseConstDecls()
		if err != nil {
			return nil, err
		}
		block.Consts = consts
	}

	if p.peek().Type == VAR {
		vars, err := p.parseVarDecls()
		if err != nil {
			return nil, err
		}
		block.Vars = vars
	}

	for p.peek().Type == PROCEDURE {
		if insideProc {
			return nil, p.errorf(p.peek(), "nested procedures are not allowed")
		}
		proc, err := p.parseProcDecl()
		if err != nil {
			return nil, err
		}
		block.Procs = append(block.Procs, proc)
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	block.Body = body
	return block, nil
}

// parseConstDecls: "const" ident "=" number { "," ident "=" number } ";"
func (p *Parser) parseConstDecls() ([]*ConstDecl, error) {
	p.advance() // const
	var decls []*ConstDecl
	for {
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQUALS); err != nil {
			return nil, err
		}
		num, err := p.expect(NUMBER)
		if err != nil {
			return nil, err
		}
		val, err := p.parseNumberValue(num)
		if err != nil {
			return nil, err
		}
		decls = append(decls, &ConstDecl{Name: name.Lexeme, Value: val, Tok: name})
		if p.peek().Type != COMMA {
			break
		}
		p.advance() // ,
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return decls, nil
}

// parseVarDecls: "var" ident { "," ident } ";"
func (p *Parser) parseVarDecls() ([]*VarDecl, error) {
	p.advance() // var
	var decls []*VarDecl
	for {
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		decls = append(decls, &VarDecl{Name: name.Lexeme, Tok: name})
		if p.peek().Type != COMMA {
			break
		}
		p.advance() // ,
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return decls, nil
}

// parseProcDecl: "procedure" ident ";" block ";"
func (p *Parser) parseProcDecl() (*ProcDecl, error) {
	p.advance() // procedure
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &ProcDecl{Name: name.Lexeme, Body: body, Tok: name}, nil
}

// parseStatement dispatches on the first token of a statement. An empty
// statement is legal wherever the follow set allows one.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case IDENT:
		name := p.advance()
		if _, err := p.expect(ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: name.Lexeme, Tok: name, Value: value}, nil

	case CALL:
		p.advance()
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Name: name.Lexeme, Tok: name}, nil

	case BEGIN:
		return p.parseCompound()

	case IF:
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(THEN); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Then: body}, nil

	case WHILE:
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(DO); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case BANG:
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &WriteStmt{Value: value}, nil

	case QUESTION:
		p.advance()
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		return &ReadStmt{Name: name.Lexeme, Tok: name}, nil

	case SEMICOLON, END, DOT, EOF:
		// empty statement
		return &EmptyStmt{}, nil

	default:
		return nil, p.errorf(tok, "expected a statement, found %s", foundLabel(tok))
	}
}

// parseCompound: "begin" statement { ";" statement } "end"
func (p *Parser) parseCompound() (Stmt, error) {
	p.advance() // begin
	compound := &CompoundStmt{}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, empty := stmt.(*EmptyStmt); !empty {
		compound.Stmts = append(compound.Stmts, stmt)
	}

	for p.peek().Type == SEMICOLON {
		p.advance() // ;
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, empty := stmt.(*EmptyStmt); !empty {
			compound.Stmts = append(compound.Stmts, stmt)
		}
	}

	if _, err := p.expect(END); err != nil {
		return nil, err
	}
	return compound, nil
}

// parseCondition: expression relop expression
func (p *Parser) parseCondition() (Expr, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	op := p.peek()
	switch op.Type {
	case EQUALS, NOT_EQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		p.advance()
	default:
		return nil, p.errorf(op, "expected a comparison operator, found %s", foundLabel(op))
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op.Type, Left: left, Right: right}, nil
}

// parseExpression: [ "+" | "-" ] term { ( "+" | "-" ) term }
func (p *Parser) parseExpression() (Expr, error) {
	var expr Expr

	// optional sign on the first term; unary plus is a no-op
	switch p.peek().Type {
	case MINUS:
		p.advance()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &UnaryExpr{Op: MINUS, Operand: term}
	case PLUS:
		p.advance()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = term
	default:
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = term
	}

	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseTerm: factor { ( "*" | "/" ) factor }
func (p *Parser) parseTerm() (Expr, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.advance().Type
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseFactor: ident | number | "(" expression ")"
func (p *Parser) parseFactor() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case IDENT:
		p.advance()
		return &Ident{Name: tok.Lexeme, Tok: tok}, nil
	case NUMBER:
		p.advance()
		val, err := p.parseNumberValue(tok)
		if err != nil {
			return nil, err
		}
		return &Number{Value: val, Tok: tok}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf(tok, "expected identifier, number or %s, found %s", `"("`, foundLabel(tok))
	}
}

func (p *Parser) parseNumberValue(tok Token) (int64, error) {
	val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return 0, p.errorf(tok, "number %s out of range", tok.Lexeme)
	}
	return val, nil
}
