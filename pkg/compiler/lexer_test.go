package compiler

import (
	"slices"
	"strings"
	"testing"

	"plzero/pkg/diag"
)

// kinds strips a token stream down to its types, dropping the EOL and
// EOF markers so streams with different line breaks compare equal.
func kinds(tokens []Token) []TokenType {
	var out []TokenType
	for _, tok := range tokens {
		if tok.Type == EOL || tok.Type == EOF {
			continue
		}
		out = append(out, tok.Type)
	}
	return out
}

func TestLexKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []TokenType
	}{
		{
			name: "assignment",
			src:  "x := 42;",
			want: []TokenType{IDENT, ASSIGN, NUMBER, SEMICOLON},
		},
		{
			name: "keywords",
			src:  "const var procedure call begin end if then while do",
			want: []TokenType{CONST, VAR, PROCEDURE, CALL, BEGIN, END, IF, THEN, WHILE, DO},
		},
		{
			name: "arithmetic",
			src:  "(a + b) * c / d - 2",
			want: []TokenType{LPAREN, IDENT, PLUS, IDENT, RPAREN, STAR, IDENT, SLASH, IDENT, MINUS, NUMBER},
		},
		{
			name: "comparisons",
			src:  "= <> # < <= > >=",
			want: []TokenType{EQUALS, NOT_EQ, NOT_EQ, LESS, LESS_EQ, GREATER, GREATER_EQ},
		},
		{
			name: "io statements",
			src:  "! x; ? y",
			want: []TokenType{BANG, IDENT, SEMICOLON, QUESTION, IDENT},
		},
		{
			name: "program terminator",
			src:  "end.",
			want: []TokenType{END, DOT},
		},
		{
			name: "keywords are lowercase",
			src:  "BEGIN Begin begin",
			want: []TokenType{IDENT, IDENT, BEGIN},
		},
		{
			name: "identifier with digits and underscore",
			src:  "x1 my_var _tmp",
			want: []TokenType{IDENT, IDENT, IDENT},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Lex(tt.src))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Lex(%q) kinds = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestLexStreamShape(t *testing.T) {
	tokens := Lex("x := 1;\ny := 2.")

	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("last token = %v, want EOF", tokens[len(tokens)-1].Type)
	}
	eofs := 0
	eols := 0
	for _, tok := range tokens {
		switch tok.Type {
		case EOF:
			eofs++
		case EOL:
			eols++
		}
	}
	if eofs != 1 {
		t.Errorf("EOF count = %d, want exactly 1", eofs)
	}
	if eols != 1 {
		t.Errorf("EOL count = %d, want 1 (one newline in source)", eols)
	}
}

func TestLexPositions(t *testing.T) {
	src := "var x;\nx := 42."
	tokens := Lex(src)

	want := []Token{
		{VAR, "var", 1, 1},
		{IDENT, "x", 1, 5},
		{SEMICOLON, ";", 1, 6},
		{EOL, "", 1, 7},
		{IDENT, "x", 2, 1},
		{ASSIGN, ":=", 2, 3},
		{NUMBER, "42", 2, 6},
		{DOT, ".", 2, 8},
		{EOF, "", 2, 9},
	}
	if len(tokens) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], w)
		}
	}
}

func TestLexIllegal(t *testing.T) {
	t.Run("scanning continues past bad characters", func(t *testing.T) {
		src := "x := 4 @ 2$;"
		tokens := Lex(src)

		want := []TokenType{IDENT, ASSIGN, NUMBER, ILLEGAL, NUMBER, ILLEGAL, SEMICOLON}
		if got := kinds(tokens); !slices.Equal(got, want) {
			t.Errorf("kinds = %v, want %v", got, want)
		}

		errs := LexErrors(tokens)
		if len(errs) != 2 {
			t.Fatalf("LexErrors count = %d, want 2", len(errs))
		}
		if errs[0].Kind != diag.Lexical {
			t.Errorf("kind = %v, want lexical", errs[0].Kind)
		}
		if !strings.Contains(errs[0].Message, `"@"`) {
			t.Errorf("first error %q does not name the character", errs[0].Message)
		}
		if errs[0].Line != 1 || errs[0].Col != 8 {
			t.Errorf("first error at %d:%d, want 1:8", errs[0].Line, errs[0].Col)
		}
		if errs[1].Line != 1 || errs[1].Col != 11 {
			t.Errorf("second error at %d:%d, want 1:11", errs[1].Line, errs[1].Col)
		}
	})

	t.Run("lone colon", func(t *testing.T) {
		tokens := Lex("a : b")
		want := []TokenType{IDENT, ILLEGAL, IDENT}
		if got := kinds(tokens); !slices.Equal(got, want) {
			t.Errorf("kinds = %v, want %v", got, want)
		}
	})

	t.Run("clean stream has no errors", func(t *testing.T) {
		if errs := LexErrors(Lex("x := 1.")); errs != nil {
			t.Errorf("LexErrors = %v, want nil", errs)
		}
	})
}

// Re-lexing the space-joined lexemes of a stream must reproduce the
// same token kinds: no token depends on the whitespace around it.
func TestLexIdempotent(t *testing.T) {
	src := `const max = 10;
var counter, _sum;
procedure step;
  counter := counter + 1;
begin
  counter := 0;
  while counter < max do call step;
  if counter >= 10 then ! counter;
  if counter # 11 then ? counter;
  if counter <> 12 then counter := (counter * 2) / 2 - 0
end.`
	first := Lex(src)

	var lexemes []string
	for _, tok := range first {
		if tok.Type == EOL || tok.Type == EOF {
			continue
		}
		lexemes = append(lexemes, tok.Lexeme)
	}
	second := Lex(strings.Join(lexemes, " "))

	if !slices.Equal(kinds(first), kinds(second)) {
		t.Errorf("re-lexed kinds differ:\n first = %v\nsecond = %v", kinds(first), kinds(second))
	}
}
