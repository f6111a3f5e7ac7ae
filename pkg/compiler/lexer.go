package compiler

import (
	"unicode"

	"plzero/pkg/diag"
)

// Lexer holds all mutable state for a single scanning pass over src.
// Scanning never fails: unrecognized characters come back as ILLEGAL
// tokens and the cursor moves past them.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipBlanks discards spaces, tabs and carriage returns. Newlines are NOT
// blanks here: they become EOL marker tokens.
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

// scanIdent collects a full identifier or keyword token, longest match.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENT
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanNumber collects a maximal run of decimal digits.
// The first digit must still be at l.peek().
func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
}

// NextToken returns the next token in the stream. Newlines come back as
// EOL tokens, the end of input as a final EOF token, and anything the
// language does not know as an ILLEGAL token.
func (l *Lexer) NextToken() Token {
	l.skipBlanks()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Lexeme: "", Line: l.line, Col: l.col}
	}

	ch := l.peek()
	line, col := l.line, l.col

	if ch == '\n' {
		l.advance()
		return Token{EOL, "", line, col}
	}
	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent()
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '(':
		return Token{LPAREN, "(", line, col}
	case ')':
		return Token{RPAREN, ")", line, col}
	case ',':
		return Token{COMMA, ",", line, col}
	case ';':
		return Token{SEMICOLON, ";", line, col}
	case '.':
		return Token{DOT, ".", line, col}
	case '+':
		return Token{PLUS, "+", line, col}
	case '-':
		return Token{MINUS, "-", line, col}
	case '*':
		return Token{STAR, "*", line, col}
	case '/':
		return Token{SLASH, "/", line, col}
	case '=':
		return Token{EQUALS, "=", line, col}
	case '#':
		// alternate spelling of <>
		return Token{NOT_EQ, "#", line, col}
	case '!':
		return Token{BANG, "!", line, col}
	case '?':
		return Token{QUESTION, "?", line, col}
	case ':':
		if l.peek() == '=' { // lookahead: := is the only use of ':'
			l.advance()
			return Token{ASSIGN, ":=", line, col}
		}
		return Token{ILLEGAL, ":", line, col}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line, col}
		}
		if l.peek() == '>' {
			l.advance()
			return Token{NOT_EQ, "<>", line, col}
		}
		return Token{LESS, "<", line, col}
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line, col}
		}
		return Token{GREATER, ">", line, col}
	default:
		return Token{ILLEGAL, string(ch), line, col}
	}
}

// Lex tokenises src and returns the whole stream, ILLEGAL tokens included,
// ending with exactly one EOF token.
func Lex(src string) []Token {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// LexErrors derives one lexical diagnostic per ILLEGAL token in a scanned
// stream. The caller decides whether they are warnings or fatal.
func LexErrors(tokens []Token) []*diag.Error {
	var errs []*diag.Error
	for _, tok := range tokens {
		if tok.Type == ILLEGAL {
			errs = append(errs, diag.Newf(diag.Lexical, tok.Line, tok.Col,
				"unrecognized character %q", tok.Lexeme))
		}
	}
	return errs
}
