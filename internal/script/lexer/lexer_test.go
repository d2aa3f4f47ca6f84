package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `num = 1_000; num.times.map(&:abs)
str = "hi\n".upcase!
h = { a: 1, "b" => 2.5e3 }
@ivar && $stdout || obj&.name
Foo::Bar.new(1..3, 1...4) # trailing comment
x += 1 unless y.empty? != true`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "num"},
		{OP_ASSIGN, "="},
		{INTEGER, "1_000"},
		{SEMICOLON, ";"},
		{IDENT, "num"},
		{DOT, "."},
		{IDENT, "times"},
		{DOT, "."},
		{IDENT, "map"},
		{LPAREN, "("},
		{OP_AMP, "&"},
		{SYMBOL, "abs"},
		{RPAREN, ")"},
		{NEWLINE, "\n"},

		{IDENT, "str"},
		{OP_ASSIGN, "="},
		{STRING, "hi\n"},
		{DOT, "."},
		{IDENT, "upcase!"},
		{NEWLINE, "\n"},

		{IDENT, "h"},
		{OP_ASSIGN, "="},
		{LBRACE, "{"},
		{IDENT, "a"},
		{COLON, ":"},
		{INTEGER, "1"},
		{COMMA, ","},
		{STRING, "b"},
		{OP_ARROW, "=>"},
		{FLOAT, "2.5e3"},
		{RBRACE, "}"},
		{NEWLINE, "\n"},

		{IVAR, "@ivar"},
		{OP_AND, "&&"},
		{GVAR, "$stdout"},
		{OP_OR, "||"},
		{IDENT, "obj"},
		{SAFE_NAV, "&."},
		{IDENT, "name"},
		{NEWLINE, "\n"},

		{CONSTANT, "Foo"},
		{COLON2, "::"},
		{CONSTANT, "Bar"},
		{DOT, "."},
		{IDENT, "new"},
		{LPAREN, "("},
		{INTEGER, "1"},
		{DOT2, ".."},
		{INTEGER, "3"},
		{COMMA, ","},
		{INTEGER, "1"},
		{DOT3, "..."},
		{INTEGER, "4"},
		{RPAREN, ")"},
		{COMMENT, "# trailing comment"},
		{NEWLINE, "\n"},

		{IDENT, "x"},
		{OP_OPASSIGN, "+="},
		{INTEGER, "1"},
		{KW_UNLESS, "unless"},
		{IDENT, "y"},
		{DOT, "."},
		{IDENT, "empty?"},
		{OP_NEQ, "!="},
		{KW_TRUE, "true"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordAfterMemberOperator(t *testing.T) {
	tokens := Tokenize("1.class; self.then")
	expected := []TokenType{INTEGER, DOT, IDENT, SEMICOLON, KW_SELF, DOT, IDENT}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("tokens[%d] = %s, want %s", i, tokens[i].Type, tt)
		}
	}
}

func TestTokenOffsets(t *testing.T) {
	input := "num.chr.up"
	tokens := Tokenize(input)
	if len(tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(tokens))
	}
	last := tokens[len(tokens)-1]
	if last.Offset != 8 || last.End != len(input) {
		t.Errorf("last token span = [%d,%d), want [8,%d)", last.Offset, last.End, len(input))
	}
	if got := input[tokens[0].Offset:tokens[2].End]; got != "num.chr" {
		t.Errorf("receiver span = %q, want %q", got, "num.chr")
	}
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	tokens := Tokenize(`x = "abc`)
	last := tokens[len(tokens)-1]
	if last.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %s", last.Type)
	}
}

func TestSymbolsAndColons(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"map(&:", []TokenType{IDENT, LPAREN, OP_AMP, COLON}},
		{":ab", []TokenType{SYMBOL}},
		{`:"quoted sym"`, []TokenType{SYMBOL}},
		{"a ? b : c", []TokenType{IDENT, OP_QUESTION, IDENT, COLON, IDENT}},
		{"A::", []TokenType{CONSTANT, COLON2}},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.input)
		if len(tokens) != len(tt.expected) {
			t.Fatalf("%q: expected %d tokens, got %d (%v)", tt.input, len(tt.expected), len(tokens), tokens)
		}
		for i, want := range tt.expected {
			if tokens[i].Type != want {
				t.Errorf("%q: tokens[%d] = %s, want %s", tt.input, i, tokens[i].Type, want)
			}
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	tokens := Tokenize("a\n  bc")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	bc := tokens[2]
	if bc.Line != 2 || bc.Column != 3 {
		t.Errorf("bc at %d:%d, want 2:3", bc.Line, bc.Column)
	}
}
