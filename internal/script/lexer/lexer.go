// Package lexer tokenizes the Ruby expressions typed at the prompt.
// It only needs to understand enough of the language to locate receivers,
// statement boundaries and bracket nesting; it never rejects input.
package lexer

import (
	"fmt"
	"strings"
)

// Lexer tokenizes Ruby source code
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number (1-indexed)
	column       int  // current column number (1-indexed)

	// prev is the type of the last significant token, used to lex
	// keywords as method names after a member operator.
	prev TokenType
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		prev:  ILLEGAL,
	}
	l.readChar()
	return l
}

// Tokenize returns every token in input, excluding the trailing EOF.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.position
	line, column := l.line, l.column
	tok := l.scan()
	tok.Line = line
	tok.Column = column
	tok.Offset = start
	tok.End = l.position
	if tok.Type == EOF {
		tok.Offset = len(l.input)
		tok.End = len(l.input)
	}
	if tok.Type != COMMENT {
		l.prev = tok.Type
	}
	return tok
}

func (l *Lexer) scan() Token {
	switch l.ch {
	case 0:
		if l.position >= len(l.input) {
			return Token{Type: EOF}
		}
		return l.single(ILLEGAL)
	case '\n':
		return l.single(NEWLINE)
	case '#':
		return Token{Type: COMMENT, Literal: l.readLineComment()}
	case '=':
		switch l.peekChar() {
		case '=':
			if l.peekCharN(2) == '=' {
				return l.operator(OP_EQ, 3)
			}
			return l.operator(OP_EQ, 2)
		case '~':
			return l.operator(OP_MATCH, 2)
		case '>':
			return l.operator(OP_ARROW, 2)
		}
		return l.single(OP_ASSIGN)
	case '!':
		switch l.peekChar() {
		case '=':
			return l.operator(OP_NEQ, 2)
		case '~':
			return l.operator(OP_MATCH, 2)
		}
		return l.single(OP_BANG)
	case '<':
		switch {
		case l.peekChar() == '=' && l.peekCharN(2) == '>':
			return l.operator(OP_CMP, 3)
		case l.peekChar() == '=':
			return l.operator(OP_LTE, 2)
		case l.peekChar() == '<' && l.peekCharN(2) == '=':
			return l.operator(OP_OPASSIGN, 3)
		case l.peekChar() == '<':
			return l.operator(OP_LSHIFT, 2)
		}
		return l.single(OP_LT)
	case '>':
		switch l.peekChar() {
		case '=':
			return l.operator(OP_GTE, 2)
		case '>':
			return l.operator(OP_RSHIFT, 2)
		}
		return l.single(OP_GT)
	case '+':
		return l.arithmetic(OP_PLUS)
	case '-':
		if l.peekChar() == '>' {
			return l.operator(OP_LAMBDA, 2)
		}
		return l.arithmetic(OP_MINUS)
	case '*':
		if l.peekChar() == '*' {
			if l.peekCharN(2) == '=' {
				return l.operator(OP_OPASSIGN, 3)
			}
			return l.operator(OP_POW, 2)
		}
		return l.arithmetic(OP_ASTERISK)
	case '/':
		return l.arithmetic(OP_SLASH)
	case '%':
		return l.arithmetic(OP_PERCENT)
	case '^':
		return l.arithmetic(OP_CARET)
	case '&':
		switch l.peekChar() {
		case '&':
			if l.peekCharN(2) == '=' {
				return l.operator(OP_OPASSIGN, 3)
			}
			return l.operator(OP_AND, 2)
		case '.':
			return l.operator(SAFE_NAV, 2)
		}
		return l.single(OP_AMP)
	case '|':
		if l.peekChar() == '|' {
			if l.peekCharN(2) == '=' {
				return l.operator(OP_OPASSIGN, 3)
			}
			return l.operator(OP_OR, 2)
		}
		return l.single(OP_PIPE)
	case '?':
		return l.single(OP_QUESTION)
	case ',':
		return l.single(COMMA)
	case ';':
		return l.single(SEMICOLON)
	case '(':
		return l.single(LPAREN)
	case ')':
		return l.single(RPAREN)
	case '{':
		return l.single(LBRACE)
	case '}':
		return l.single(RBRACE)
	case '[':
		return l.single(LBRACKET)
	case ']':
		return l.single(RBRACKET)
	case '.':
		if l.peekChar() == '.' {
			if l.peekCharN(2) == '.' {
				return l.operator(DOT3, 3)
			}
			return l.operator(DOT2, 2)
		}
		return l.single(DOT)
	case ':':
		return l.readColon()
	case '"', '\'', '`':
		quote := l.ch
		content, terminated := l.readString(quote)
		if !terminated {
			return Token{Type: ILLEGAL, Literal: string(quote) + content}
		}
		return Token{Type: STRING, Literal: content}
	case '@':
		position := l.position
		l.readChar()
		if l.ch == '@' {
			l.readChar()
		}
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: IVAR, Literal: l.input[position:l.position]}
	case '$':
		position := l.position
		l.readChar()
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: GVAR, Literal: l.input[position:l.position]}
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return Token{Type: l.identType(ident), Literal: ident}
	}
	if isDigit(l.ch) {
		literal, isFloat := l.readNumber()
		if isFloat {
			return Token{Type: FLOAT, Literal: literal}
		}
		return Token{Type: INTEGER, Literal: literal}
	}
	return l.single(ILLEGAL)
}

// identType classifies an identifier. Keywords following a member
// operator are method names (`x.class`).
func (l *Lexer) identType(ident string) TokenType {
	if isUpper(ident[0]) {
		return CONSTANT
	}
	if l.prev == DOT || l.prev == SAFE_NAV || l.prev == COLON2 {
		return IDENT
	}
	return LookupIdent(ident)
}

// single consumes the current character as a one-byte token.
func (l *Lexer) single(tokenType TokenType) Token {
	tok := Token{Type: tokenType, Literal: string(l.ch)}
	l.readChar()
	return tok
}

// operator consumes n characters as a single token.
func (l *Lexer) operator(tokenType TokenType, n int) Token {
	position := l.position
	for i := 0; i < n; i++ {
		l.readChar()
	}
	return Token{Type: tokenType, Literal: l.input[position:l.position]}
}

// arithmetic handles operators that have an op-assign form (`+=`).
func (l *Lexer) arithmetic(tokenType TokenType) Token {
	if l.peekChar() == '=' {
		return l.operator(OP_OPASSIGN, 2)
	}
	return l.single(tokenType)
}

// readColon lexes `::`, symbols and the bare colon.
func (l *Lexer) readColon() Token {
	next := l.peekChar()
	switch {
	case next == ':':
		return l.operator(COLON2, 2)
	case isLetter(next):
		l.readChar() // consume ':'
		return Token{Type: SYMBOL, Literal: l.readIdentifier()}
	case next == '"' || next == '\'':
		l.readChar()
		quote := l.ch
		content, terminated := l.readString(quote)
		if !terminated {
			return Token{Type: ILLEGAL, Literal: ":" + string(quote) + content}
		}
		return Token{Type: SYMBOL, Literal: content}
	}
	return l.single(COLON)
}

// readChar advances the lexer's position and updates the current character
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharN returns the character n positions ahead without advancing
func (l *Lexer) peekCharN(n int) byte {
	pos := l.position + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// skipWhitespace skips spaces, tabs and escaped line breaks. Newlines are
// statement terminators and are returned as tokens.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\\' && l.peekChar() == '\n':
			l.readChar()
			l.readChar()
		default:
			return
		}
	}
}

// readIdentifier reads an identifier, including a trailing `?` or `!`
// unless it begins an operator such as `!=`.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	if (l.ch == '?' || l.ch == '!') && l.peekChar() != '=' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer or float)
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	isFloat := false
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	// Check for decimal point
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || ((l.peekChar() == '-' || l.peekChar() == '+') && isDigit(l.peekCharN(2)))) {
		isFloat = true
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position], isFloat
}

// readString reads a quoted string. The second result is false when the
// input ends before the closing quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var result strings.Builder
	l.readChar() // consume opening quote

	for l.ch != quote {
		if l.position >= len(l.input) {
			return result.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			if l.position >= len(l.input) {
				return result.String(), false
			}
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '\\', '"', '\'', '`':
				result.WriteByte(l.ch)
			default:
				// For unknown escapes, keep the backslash and character
				result.WriteByte('\\')
				result.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}
		result.WriteByte(l.ch)
		l.readChar()
	}

	l.readChar() // consume closing quote
	return result.String(), true
}

// readLineComment reads a comment until end of line
func (l *Lexer) readLineComment() string {
	position := l.position
	for l.ch != '\n' && l.position < len(l.input) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// isLetter reports whether ch can start an identifier. Bytes of multi-byte
// UTF-8 sequences are accepted so non-ASCII names stay intact.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isUpper(ch byte) bool {
	return 'A' <= ch && ch <= 'Z'
}

// isDigit checks if a character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Error returns a formatted error message with line and column information
func (l *Lexer) Error(msg string) string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", l.line, l.column, msg)
}
