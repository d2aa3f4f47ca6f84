package lexer

import "testing"

func TestTokenTypeString(t *testing.T) {
	tests := []struct {
		tokenType TokenType
		expected  string
	}{
		{ILLEGAL, "ILLEGAL"},
		{EOF, "EOF"},
		{NEWLINE, "NEWLINE"},
		{IDENT, "IDENT"},
		{CONSTANT, "CONSTANT"},
		{SYMBOL, "SYMBOL"},
		{KW_SELF, "KW_SELF"},
		{SAFE_NAV, "SAFE_NAV"},
		{COLON2, "COLON2"},
		{RBRACKET, "RBRACKET"},
		{TokenType(999), "TokenType(999)"},
	}

	for _, tt := range tests {
		if got := tt.tokenType.String(); got != tt.expected {
			t.Errorf("TokenType(%d).String() = %q, want %q", tt.tokenType, got, tt.expected)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident    string
		expected TokenType
	}{
		{"self", KW_SELF},
		{"nil", KW_NIL},
		{"end", KW_END},
		{"num", IDENT},
		{"selfish", IDENT},
	}

	for _, tt := range tests {
		if got := LookupIdent(tt.ident); got != tt.expected {
			t.Errorf("LookupIdent(%q) = %s, want %s", tt.ident, got, tt.expected)
		}
	}
}

func TestBracketHelpers(t *testing.T) {
	if !Matches(LPAREN, RPAREN) || !Matches(LBRACKET, RBRACKET) || !Matches(LBRACE, RBRACE) {
		t.Fatal("expected matching bracket pairs")
	}
	if Matches(LPAREN, RBRACKET) {
		t.Error("LPAREN must not match RBRACKET")
	}
	if !IsOpener(LBRACE) || IsOpener(RBRACE) {
		t.Error("IsOpener misclassified braces")
	}
	if !IsCloser(RPAREN) || IsCloser(LPAREN) {
		t.Error("IsCloser misclassified parens")
	}
	if !IsName(KW_CLASS) || !IsName(CONSTANT) || IsName(DOT) {
		t.Error("IsName misclassified tokens")
	}
}
