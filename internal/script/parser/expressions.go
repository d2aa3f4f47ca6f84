package parser

import (
	"github.com/atinylittleshell/typecomp/internal/script/lexer"
)

// parseExpression parses an expression with the given precedence
func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError("no prefix parse function for %v %q at line %d, column %d",
			p.curToken.Type, p.curToken.Literal, p.curToken.Line, p.curToken.Column)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !isTerminator(p.peekToken.Type) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

// parseIdentifier parses an identifier
func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parseConstant parses an unscoped constant
func (p *Parser) parseConstant() Expression {
	return &Constant{Token: p.curToken, Name: p.curToken.Literal}
}

// parseTopConstant parses `::Name`
func (p *Parser) parseTopConstant() Expression {
	if !p.expectPeek(lexer.CONSTANT) {
		return nil
	}
	return &Constant{Token: p.curToken, Name: p.curToken.Literal}
}

// parseIntegerLiteral parses an integer literal
func (p *Parser) parseIntegerLiteral() Expression {
	return &IntegerLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseFloatLiteral parses a float literal
func (p *Parser) parseFloatLiteral() Expression {
	return &FloatLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseStringLiteral parses a string literal
func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseSymbolLiteral parses a symbol literal
func (p *Parser) parseSymbolLiteral() Expression {
	return &SymbolLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNilLiteral() Expression {
	return &NilLiteral{Token: p.curToken}
}

// parseBooleanLiteral parses a boolean literal
func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.KW_TRUE)}
}

func (p *Parser) parseSelf() Expression {
	return &SelfExpression{Token: p.curToken}
}

func (p *Parser) parseInstanceVariable() Expression {
	return &InstanceVariable{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseGlobalVariable() Expression {
	return &GlobalVariable{Token: p.curToken, Name: p.curToken.Literal}
}

// parseUnaryExpression parses a prefix unary expression
func (p *Parser) parseUnaryExpression() Expression {
	expression := &UnaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseBinaryExpression parses a binary infix expression
func (p *Parser) parseBinaryExpression(left Expression) Expression {
	expression := &BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.OP_POW) {
		// right associative
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignmentExpression parses `target = value` and `target op= value`
func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	if !isAssignable(left) {
		p.addError("cannot assign to %s at line %d, column %d", left.String(), p.curToken.Line, p.curToken.Column)
		return nil
	}

	expression := &AssignmentExpression{
		Token:    p.curToken,
		Target:   left,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	// right associative: a = b = 1
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func isAssignable(expr Expression) bool {
	switch e := expr.(type) {
	case *Identifier, *InstanceVariable, *GlobalVariable, *Constant, *IndexExpression:
		return true
	case *CallExpression:
		// attribute writer: obj.name = value
		return e.Receiver != nil && len(e.Arguments) == 0 && e.Block == nil && e.BlockArg == nil
	}
	return false
}

// parseTernaryExpression parses `cond ? a : b`
func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	expression := &TernaryExpression{Token: p.curToken, Condition: condition}

	p.nextToken()
	expression.Consequence = p.parseExpression(TERNARY)
	if expression.Consequence == nil {
		return nil
	}
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expression.Alternative = p.parseExpression(TERNARY - 1)
	if expression.Alternative == nil {
		return nil
	}

	return expression
}

// parseRangeExpression parses `a..b`, `a...b` and endless ranges
func (p *Parser) parseRangeExpression(left Expression) Expression {
	expression := &RangeExpression{
		Token:     p.curToken,
		Left:      left,
		Exclusive: p.curTokenIs(lexer.DOT3),
	}

	if isTerminator(p.peekToken.Type) || lexer.IsCloser(p.peekToken.Type) || p.peekTokenIs(lexer.COMMA) {
		return expression
	}

	p.nextToken()
	expression.Right = p.parseExpression(RANGE)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseGroupedExpression parses `( ... )`
func (p *Parser) parseGroupedExpression() Expression {
	group := &GroupedExpression{Token: p.curToken}

	p.nextToken()
	for !p.curTokenIs(lexer.RPAREN) {
		if p.curTokenIs(lexer.EOF) {
			p.addError("unterminated parenthesis at line %d, column %d", group.Token.Line, group.Token.Column)
			return nil
		}
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		group.Body = append(group.Body, expr)
		if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RPAREN) {
			p.peekError(lexer.RPAREN)
			return nil
		}
		p.nextToken()
	}

	return group
}

// parseArrayLiteral parses `[a, b]`
func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

// parseExpressionList parses a comma-separated list ending with end.
// A trailing comma is allowed.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]Expression, bool) {
	list := []Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	for {
		var expr Expression
		if p.curTokenIs(lexer.OP_ASTERISK) {
			expr = p.parseSplat()
		} else {
			expr = p.parseExpression(LOWEST)
		}
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseSplat() Expression {
	splat := &SplatExpression{Token: p.curToken}
	p.nextToken()
	splat.Value = p.parseExpression(PREFIX)
	if splat.Value == nil {
		return nil
	}
	return splat
}

// isLabel reports whether the current token is a `name:` hash label.
func (p *Parser) isLabel() bool {
	switch p.curToken.Type {
	case lexer.IDENT, lexer.CONSTANT, lexer.STRING:
	default:
		return false
	}
	return p.peekTokenIs(lexer.COLON) && p.peekToken.Offset == p.curToken.End
}

// parseHashLiteral parses `{ key => value, label: value }`
func (p *Parser) parseHashLiteral() Expression {
	hash := &HashLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return hash
	}

	p.nextToken()
	for {
		pair, ok := p.parseHashPair()
		if !ok {
			return nil
		}
		hash.Pairs = append(hash.Pairs, pair)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(lexer.RBRACE) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return hash
}

// parseHashPair parses a single entry starting at the current token.
func (p *Parser) parseHashPair() (HashPair, bool) {
	if p.isLabel() {
		key := &SymbolLiteral{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken() // ':'
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return HashPair{}, false
		}
		return HashPair{Key: key, Value: value}, true
	}

	key := p.parseExpression(LOWEST)
	if key == nil || !p.expectPeek(lexer.OP_ARROW) {
		return HashPair{}, false
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return HashPair{}, false
	}
	return HashPair{Key: key, Value: value}, true
}

// parseIndexExpression parses `left[i]`
func (p *Parser) parseIndexExpression(left Expression) Expression {
	expression := &IndexExpression{Token: p.curToken, Left: left}
	indices, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	expression.Indices = indices
	return expression
}

// parseCallExpression parses `name(args)` for receiverless calls
func (p *Parser) parseCallExpression(left Expression) Expression {
	var call *CallExpression
	switch fn := left.(type) {
	case *Identifier:
		call = &CallExpression{Token: fn.Token, Method: fn.Value}
	case *Constant:
		// Kernel conversion methods such as Integer("1")
		if fn.Scope != nil {
			p.addError("cannot call %s at line %d, column %d", fn.String(), p.curToken.Line, p.curToken.Column)
			return nil
		}
		call = &CallExpression{Token: fn.Token, Method: fn.Name}
	default:
		p.addError("cannot call %s at line %d, column %d", left.String(), p.curToken.Line, p.curToken.Column)
		return nil
	}

	if !p.parseArguments(call) {
		return nil
	}
	if !p.parseOptionalBlock(call) {
		return nil
	}
	return call
}

// parseMemberExpression parses `recv.name`, `recv&.name` with optional
// arguments and block.
func (p *Parser) parseMemberExpression(left Expression) Expression {
	operator := p.curToken
	safeNav := operator.Type == lexer.SAFE_NAV

	p.nextToken()
	if !lexer.IsName(p.curToken.Type) {
		p.addError("expected method name after %q, got %v at line %d, column %d",
			operator.Literal, p.curToken.Type, p.curToken.Line, p.curToken.Column)
		return nil
	}

	call := &CallExpression{
		Token:    p.curToken,
		Receiver: left,
		Method:   p.curToken.Literal,
		SafeNav:  safeNav,
	}

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if !p.parseArguments(call) {
			return nil
		}
	}
	if !p.parseOptionalBlock(call) {
		return nil
	}
	return call
}

// parseScopeExpression parses `Scope::Name` and `Scope::method`
func (p *Parser) parseScopeExpression(left Expression) Expression {
	p.nextToken()
	switch p.curToken.Type {
	case lexer.CONSTANT:
		return &Constant{Token: p.curToken, Scope: left, Name: p.curToken.Literal}
	case lexer.IDENT:
		call := &CallExpression{Token: p.curToken, Receiver: left, Method: p.curToken.Literal}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			if !p.parseArguments(call) {
				return nil
			}
		}
		return call
	}
	p.addError("expected constant or method after '::', got %v at line %d, column %d",
		p.curToken.Type, p.curToken.Line, p.curToken.Column)
	return nil
}

// parseArguments parses a parenthesized argument list. The current token
// is '('.
func (p *Parser) parseArguments(call *CallExpression) bool {
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return true
	}

	var labels *HashLiteral
	p.nextToken()
	for {
		switch {
		case p.curTokenIs(lexer.OP_AMP):
			p.nextToken()
			call.BlockArg = p.parseExpression(LOWEST)
			if call.BlockArg == nil {
				return false
			}
		case p.curTokenIs(lexer.OP_ASTERISK):
			splat := p.parseSplat()
			if splat == nil {
				return false
			}
			call.Arguments = append(call.Arguments, splat)
		case p.isLabel():
			if labels == nil {
				labels = &HashLiteral{Token: p.curToken}
				call.Arguments = append(call.Arguments, labels)
			}
			pair, ok := p.parseHashPair()
			if !ok {
				return false
			}
			labels.Pairs = append(labels.Pairs, pair)
		default:
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return false
			}
			if p.peekTokenIs(lexer.OP_ARROW) {
				if labels == nil {
					labels = &HashLiteral{Token: p.curToken}
					call.Arguments = append(call.Arguments, labels)
				}
				p.nextToken()
				p.nextToken()
				value := p.parseExpression(LOWEST)
				if value == nil {
					return false
				}
				labels.Pairs = append(labels.Pairs, HashPair{Key: arg, Value: value})
			} else {
				call.Arguments = append(call.Arguments, arg)
			}
		}

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	return p.expectPeek(lexer.RPAREN)
}

// parseOptionalBlock attaches a `{ }` or `do end` block following a call.
func (p *Parser) parseOptionalBlock(call *CallExpression) bool {
	if !p.peekTokenIs(lexer.LBRACE) && !p.peekTokenIs(lexer.KW_DO) {
		return true
	}
	p.nextToken()
	call.Block = p.parseBlock()
	return call.Block != nil
}

// parseBlock parses a block body. The current token is '{' or 'do'.
func (p *Parser) parseBlock() *BlockLiteral {
	block := &BlockLiteral{Token: p.curToken}
	closing := lexer.RBRACE
	if p.curTokenIs(lexer.KW_DO) {
		closing = lexer.KW_END
	}

	p.nextToken()
	for p.curTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
	switch {
	case p.curTokenIs(lexer.OP_OR):
		// `||` declares no parameters
		p.nextToken()
	case p.curTokenIs(lexer.OP_PIPE):
		p.nextToken()
		for !p.curTokenIs(lexer.OP_PIPE) {
			if p.curTokenIs(lexer.EOF) {
				p.addError("unterminated block parameters at line %d, column %d", block.Token.Line, block.Token.Column)
				return nil
			}
			if p.curTokenIs(lexer.IDENT) {
				block.Params = append(block.Params, p.curToken.Literal)
			}
			p.nextToken()
		}
		p.nextToken()
	}

	for !p.curTokenIs(closing) {
		if p.curTokenIs(lexer.EOF) {
			p.addError("unterminated block at line %d, column %d", block.Token.Line, block.Token.Column)
			return nil
		}
		if isTerminator(p.curToken.Type) {
			p.nextToken()
			continue
		}
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		block.Body = append(block.Body, expr)
		p.nextToken()
	}

	return block
}

// parseLambdaLiteral parses `->(x) { ... }` and `-> { ... }`
func (p *Parser) parseLambdaLiteral() Expression {
	lambda := &LambdaLiteral{Token: p.curToken}

	var params []string
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		p.nextToken()
		for !p.curTokenIs(lexer.RPAREN) {
			if p.curTokenIs(lexer.EOF) {
				p.addError("unterminated lambda parameters at line %d, column %d", lambda.Token.Line, lambda.Token.Column)
				return nil
			}
			if p.curTokenIs(lexer.IDENT) {
				params = append(params, p.curToken.Literal)
			}
			p.nextToken()
		}
	}

	if !p.peekTokenIs(lexer.LBRACE) && !p.peekTokenIs(lexer.KW_DO) {
		p.peekError(lexer.LBRACE)
		return nil
	}
	p.nextToken()
	lambda.Block = p.parseBlock()
	if lambda.Block == nil {
		return nil
	}
	lambda.Block.Params = append(params, lambda.Block.Params...)
	return lambda
}
