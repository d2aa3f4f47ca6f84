// Package parser builds an AST for the Ruby expressions typed at the prompt.
// It is a Pratt parser over lexer tokens; malformed input produces errors
// collected on the parser, never panics.
package parser

import (
	"fmt"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
)

// Parser represents the parser
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  lexer.Token
	peekToken lexer.Token

	// depth counts open brackets; newlines inside brackets do not end
	// statements.
	depth int

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Operator precedence levels
const (
	_ int = iota
	LOWEST
	LOGIC       // and, or
	ASSIGN      // = +=
	TERNARY     // ?:
	RANGE       // .. ...
	OR          // ||
	AND         // &&
	EQUALS      // == != =~ <=>
	LESSGREATER // > or <
	BITOR       // | ^
	BITAND      // &
	SHIFT       // << >>
	SUM         // +
	PRODUCT     // *
	POW         // **
	PREFIX      // -X or !X
	INDEX       // x[i], f(x)
	MEMBER      // object.method
)

var precedences = map[lexer.TokenType]int{
	lexer.KW_AND:      LOGIC,
	lexer.KW_OR:       LOGIC,
	lexer.OP_ASSIGN:   ASSIGN,
	lexer.OP_OPASSIGN: ASSIGN,
	lexer.OP_QUESTION: TERNARY,
	lexer.DOT2:        RANGE,
	lexer.DOT3:        RANGE,
	lexer.OP_OR:       OR,
	lexer.OP_AND:      AND,
	lexer.OP_EQ:       EQUALS,
	lexer.OP_NEQ:      EQUALS,
	lexer.OP_MATCH:    EQUALS,
	lexer.OP_CMP:      EQUALS,
	lexer.OP_LT:       LESSGREATER,
	lexer.OP_GT:       LESSGREATER,
	lexer.OP_LTE:      LESSGREATER,
	lexer.OP_GTE:      LESSGREATER,
	lexer.OP_PIPE:     BITOR,
	lexer.OP_CARET:    BITOR,
	lexer.OP_AMP:      BITAND,
	lexer.OP_LSHIFT:   SHIFT,
	lexer.OP_RSHIFT:   SHIFT,
	lexer.OP_PLUS:     SUM,
	lexer.OP_MINUS:    SUM,
	lexer.OP_SLASH:    PRODUCT,
	lexer.OP_ASTERISK: PRODUCT,
	lexer.OP_PERCENT:  PRODUCT,
	lexer.OP_POW:      POW,
	lexer.LBRACKET:    INDEX,
	lexer.LPAREN:      INDEX,
	lexer.DOT:         MEMBER,
	lexer.SAFE_NAV:    MEMBER,
	lexer.COLON2:      MEMBER,
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

// New creates a new Parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	// Register prefix parse functions
	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.CONSTANT, p.parseConstant)
	p.registerPrefix(lexer.COLON2, p.parseTopConstant)
	p.registerPrefix(lexer.INTEGER, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.SYMBOL, p.parseSymbolLiteral)
	p.registerPrefix(lexer.KW_NIL, p.parseNilLiteral)
	p.registerPrefix(lexer.KW_TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.KW_FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.KW_SELF, p.parseSelf)
	p.registerPrefix(lexer.IVAR, p.parseInstanceVariable)
	p.registerPrefix(lexer.GVAR, p.parseGlobalVariable)
	p.registerPrefix(lexer.OP_BANG, p.parseUnaryExpression)
	p.registerPrefix(lexer.KW_NOT, p.parseUnaryExpression)
	p.registerPrefix(lexer.OP_MINUS, p.parseUnaryExpression)
	p.registerPrefix(lexer.OP_PLUS, p.parseUnaryExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseHashLiteral)
	p.registerPrefix(lexer.OP_LAMBDA, p.parseLambdaLiteral)

	// Register infix parse functions
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.KW_AND, lexer.KW_OR,
		lexer.OP_OR, lexer.OP_AND,
		lexer.OP_EQ, lexer.OP_NEQ, lexer.OP_MATCH, lexer.OP_CMP,
		lexer.OP_LT, lexer.OP_GT, lexer.OP_LTE, lexer.OP_GTE,
		lexer.OP_PIPE, lexer.OP_CARET, lexer.OP_AMP,
		lexer.OP_LSHIFT, lexer.OP_RSHIFT,
		lexer.OP_PLUS, lexer.OP_MINUS,
		lexer.OP_SLASH, lexer.OP_ASTERISK, lexer.OP_PERCENT, lexer.OP_POW,
	} {
		p.registerInfix(tt, p.parseBinaryExpression)
	}
	p.registerInfix(lexer.OP_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.OP_OPASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.OP_QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.DOT2, p.parseRangeExpression)
	p.registerInfix(lexer.DOT3, p.parseRangeExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.SAFE_NAV, p.parseMemberExpression)
	p.registerInfix(lexer.COLON2, p.parseScopeExpression)

	// Read two tokens to set both curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// ParseExpression parses input that is expected to hold one expression.
// It returns nil together with the parser errors when that is not the case.
func ParseExpression(input string) (Expression, []string) {
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		return nil, p.Errors()
	}
	if len(program.Statements) != 1 {
		return nil, []string{fmt.Sprintf("expected a single expression, got %d", len(program.Statements))}
	}
	return program.Statements[0], nil
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances the parser to the next token
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.readToken()
}

// readToken pulls the next significant token from the lexer, dropping
// comments and newlines that appear inside brackets.
func (p *Parser) readToken() lexer.Token {
	for {
		tok := p.l.NextToken()
		switch {
		case tok.Type == lexer.COMMENT:
			continue
		case tok.Type == lexer.NEWLINE && p.depth > 0:
			continue
		case lexer.IsOpener(tok.Type):
			p.depth++
		case lexer.IsCloser(tok.Type) && p.depth > 0:
			p.depth--
		}
		return tok
	}
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

// addError adds a parsing error
func (p *Parser) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
}

// curTokenIs checks if the current token is of the given type
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs checks if the peek token is of the given type
func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek checks if the next token is of the expected type and advances if so
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// peekError adds an error for unexpected peek token
func (p *Parser) peekError(t lexer.TokenType) {
	p.addError("expected next token to be %v, got %v instead at line %d, column %d",
		t, p.peekToken.Type, p.peekToken.Line, p.peekToken.Column)
}

// peekPrecedence returns the precedence of the peek token
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// curPrecedence returns the precedence of the current token
func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func isTerminator(t lexer.TokenType) bool {
	return t == lexer.SEMICOLON || t == lexer.NEWLINE || t == lexer.EOF
}

// ParseProgram parses the entire program
func (p *Parser) ParseProgram() *Program {
	program := &Program{}
	program.Statements = []Expression{}

	for !p.curTokenIs(lexer.EOF) {
		if isTerminator(p.curToken.Type) {
			p.nextToken()
			continue
		}

		expr := p.parseExpression(LOWEST)
		if expr != nil {
			program.Statements = append(program.Statements, expr)
		}

		if !isTerminator(p.peekToken.Type) {
			p.addError("unexpected %v %q at line %d, column %d",
				p.peekToken.Type, p.peekToken.Literal, p.peekToken.Line, p.peekToken.Column)
			for !isTerminator(p.peekToken.Type) {
				p.nextToken()
			}
		}
		p.nextToken()
	}

	return program
}
