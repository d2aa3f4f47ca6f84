package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	COMMENT
	NEWLINE

	// Identifiers and literals
	IDENT    // local variables, method names
	CONSTANT // String, Integer
	IVAR     // @name, @@name
	GVAR     // $name
	INTEGER  // 123, 1_000
	FLOAT    // 45.67
	STRING   // "hello", 'world'
	SYMBOL   // :name

	// Keywords
	KW_NIL
	KW_TRUE
	KW_FALSE
	KW_SELF
	KW_DEF
	KW_END
	KW_DO
	KW_IF
	KW_UNLESS
	KW_ELSE
	KW_ELSIF
	KW_WHILE
	KW_UNTIL
	KW_RETURN
	KW_CLASS
	KW_MODULE
	KW_BEGIN
	KW_RESCUE
	KW_ENSURE
	KW_YIELD
	KW_AND
	KW_OR
	KW_NOT
	KW_THEN
	KW_CASE
	KW_WHEN
	KW_IN

	// Operators
	OP_ASSIGN   // =
	OP_OPASSIGN // +=, -=, ||= ...
	OP_PLUS     // +
	OP_MINUS    // -
	OP_ASTERISK // *
	OP_POW      // **
	OP_SLASH    // /
	OP_PERCENT  // %
	OP_BANG     // !
	OP_EQ       // ==
	OP_NEQ      // !=
	OP_LT       // <
	OP_GT       // >
	OP_LTE      // <=
	OP_GTE      // >=
	OP_CMP      // <=>
	OP_MATCH    // =~
	OP_AND      // &&
	OP_OR       // ||
	OP_AMP      // &
	OP_PIPE     // |
	OP_CARET    // ^
	OP_LSHIFT   // <<
	OP_RSHIFT   // >>
	OP_QUESTION // ?
	OP_ARROW    // =>
	OP_LAMBDA   // ->

	// Delimiters
	COMMA     // ,
	COLON     // :
	COLON2    // ::
	SEMICOLON // ;
	DOT       // .
	SAFE_NAV  // &.
	DOT2      // ..
	DOT3      // ...
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
)

var tokenTypeNames = [...]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "EOF",
	COMMENT:     "COMMENT",
	NEWLINE:     "NEWLINE",
	IDENT:       "IDENT",
	CONSTANT:    "CONSTANT",
	IVAR:        "IVAR",
	GVAR:        "GVAR",
	INTEGER:     "INTEGER",
	FLOAT:       "FLOAT",
	STRING:      "STRING",
	SYMBOL:      "SYMBOL",
	KW_NIL:      "KW_NIL",
	KW_TRUE:     "KW_TRUE",
	KW_FALSE:    "KW_FALSE",
	KW_SELF:     "KW_SELF",
	KW_DEF:      "KW_DEF",
	KW_END:      "KW_END",
	KW_DO:       "KW_DO",
	KW_IF:       "KW_IF",
	KW_UNLESS:   "KW_UNLESS",
	KW_ELSE:     "KW_ELSE",
	KW_ELSIF:    "KW_ELSIF",
	KW_WHILE:    "KW_WHILE",
	KW_UNTIL:    "KW_UNTIL",
	KW_RETURN:   "KW_RETURN",
	KW_CLASS:    "KW_CLASS",
	KW_MODULE:   "KW_MODULE",
	KW_BEGIN:    "KW_BEGIN",
	KW_RESCUE:   "KW_RESCUE",
	KW_ENSURE:   "KW_ENSURE",
	KW_YIELD:    "KW_YIELD",
	KW_AND:      "KW_AND",
	KW_OR:       "KW_OR",
	KW_NOT:      "KW_NOT",
	KW_THEN:     "KW_THEN",
	KW_CASE:     "KW_CASE",
	KW_WHEN:     "KW_WHEN",
	KW_IN:       "KW_IN",
	OP_ASSIGN:   "OP_ASSIGN",
	OP_OPASSIGN: "OP_OPASSIGN",
	OP_PLUS:     "OP_PLUS",
	OP_MINUS:    "OP_MINUS",
	OP_ASTERISK: "OP_ASTERISK",
	OP_POW:      "OP_POW",
	OP_SLASH:    "OP_SLASH",
	OP_PERCENT:  "OP_PERCENT",
	OP_BANG:     "OP_BANG",
	OP_EQ:       "OP_EQ",
	OP_NEQ:      "OP_NEQ",
	OP_LT:       "OP_LT",
	OP_GT:       "OP_GT",
	OP_LTE:      "OP_LTE",
	OP_GTE:      "OP_GTE",
	OP_CMP:      "OP_CMP",
	OP_MATCH:    "OP_MATCH",
	OP_AND:      "OP_AND",
	OP_OR:       "OP_OR",
	OP_AMP:      "OP_AMP",
	OP_PIPE:     "OP_PIPE",
	OP_CARET:    "OP_CARET",
	OP_LSHIFT:   "OP_LSHIFT",
	OP_RSHIFT:   "OP_RSHIFT",
	OP_QUESTION: "OP_QUESTION",
	OP_ARROW:    "OP_ARROW",
	OP_LAMBDA:   "OP_LAMBDA",
	COMMA:       "COMMA",
	COLON:       "COLON",
	COLON2:      "COLON2",
	SEMICOLON:   "SEMICOLON",
	DOT:         "DOT",
	SAFE_NAV:    "SAFE_NAV",
	DOT2:        "DOT2",
	DOT3:        "DOT3",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
}

// String implements fmt.Stringer for TokenType.
func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenTypeNames) {
		if name := tokenTypeNames[t]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int

	// Offset and End are byte positions of the token in the input.
	Offset int
	End    int
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"nil":    KW_NIL,
	"true":   KW_TRUE,
	"false":  KW_FALSE,
	"self":   KW_SELF,
	"def":    KW_DEF,
	"end":    KW_END,
	"do":     KW_DO,
	"if":     KW_IF,
	"unless": KW_UNLESS,
	"else":   KW_ELSE,
	"elsif":  KW_ELSIF,
	"while":  KW_WHILE,
	"until":  KW_UNTIL,
	"return": KW_RETURN,
	"class":  KW_CLASS,
	"module": KW_MODULE,
	"begin":  KW_BEGIN,
	"rescue": KW_RESCUE,
	"ensure": KW_ENSURE,
	"yield":  KW_YIELD,
	"and":    KW_AND,
	"or":     KW_OR,
	"not":    KW_NOT,
	"then":   KW_THEN,
	"case":   KW_CASE,
	"when":   KW_WHEN,
	"in":     KW_IN,
}

// LookupIdent checks if an identifier is a keyword and returns the appropriate token type
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// keywordTypes is a set of all keyword token types, derived from the keywords map
var keywordTypes = func() map[TokenType]bool {
	m := make(map[TokenType]bool)
	for _, tokenType := range keywords {
		m[tokenType] = true
	}
	return m
}()

// IsKeyword returns true if the token type is a keyword
func IsKeyword(t TokenType) bool {
	return keywordTypes[t]
}

// Keywords returns every reserved word.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word := range keywords {
		words = append(words, word)
	}
	return words
}

// IsName reports whether the token can name a method or variable.
func IsName(t TokenType) bool {
	return t == IDENT || t == CONSTANT || IsKeyword(t)
}

// IsOpener reports whether t opens a bracketed group.
func IsOpener(t TokenType) bool {
	return t == LPAREN || t == LBRACKET || t == LBRACE
}

// IsCloser reports whether t closes a bracketed group.
func IsCloser(t TokenType) bool {
	return t == RPAREN || t == RBRACKET || t == RBRACE
}

// Matches reports whether closer closes opener.
func Matches(opener, closer TokenType) bool {
	switch opener {
	case LPAREN:
		return closer == RPAREN
	case LBRACKET:
		return closer == RBRACKET
	case LBRACE:
		return closer == RBRACE
	}
	return false
}
