package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input, emitted exactly once
	EOL                      // end of source line (diagnostics only, not grammar)
	ILLEGAL                  // unrecognized character; scanning continues past it

	// Literals
	IDENT  // variable / procedure name
	NUMBER // decimal integer literal

	// Keywords
	CONST     // "const"
	VAR       // "var"
	PROCEDURE // "procedure"
	CALL      // "call"
	BEGIN     // "begin"
	END       // "end"
	IF        // "if"
	THEN      // "then"
	WHILE     // "while"
	DO        // "do"

	// Operators
	ASSIGN     // :=
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	EQUALS     // =
	NOT_EQ     // <> (also written #)
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=
	BANG       // ! (write statement)
	QUESTION   // ? (read statement)

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	SEMICOLON // ;
	DOT       // . (program terminator)
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	EOL:        "EOL",
	ILLEGAL:    "ILLEGAL",
	IDENT:      "IDENT",
	NUMBER:     "NUMBER",
	CONST:      "CONST",
	VAR:        "VAR",
	PROCEDURE:  "PROCEDURE",
	CALL:       "CALL",
	BEGIN:      "BEGIN",
	END:        "END",
	IF:         "IF",
	THEN:       "THEN",
	WHILE:      "WHILE",
	DO:         "DO",
	ASSIGN:     "ASSIGN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	LESS_EQ:    "LESS_EQ",
	GREATER:    "GREATER",
	GREATER_EQ: "GREATER_EQ",
	BANG:       "BANG",
	QUESTION:   "QUESTION",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	DOT:        "DOT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// keywords maps reserved words to their token types. Identifier runs not
// found here lex as IDENT.
var keywords = map[string]TokenType{
	"const":     CONST,
	"var":       VAR,
	"procedure": PROCEDURE,
	"call":      CALL,
	"begin":     BEGIN,
	"end":       END,
	"if":        IF,
	"then":      THEN,
	"while":     WHILE,
	"do":        DO,
}

// Token is a single lexical unit produced by the Lexer. Line and Col are
// 1-based and point at the first character of the lexeme.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int
	Col    int
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d, col %d", t.Type, t.Lexeme, t.Line, t.Col)
}
