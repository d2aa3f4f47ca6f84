// Package analysis infers what can be completed at the end of a piece of
// Ruby code. It never evaluates the code: receivers are typed statically
// from literals, assignments, the binding and the signature store.
package analysis

import (
	"strings"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
	"github.com/atinylittleshell/typecomp/internal/script/parser"
	"github.com/atinylittleshell/typecomp/internal/signature"
)

// Kind identifies what is being completed.
type Kind int

const (
	KindNone Kind = iota
	KindMethod
	KindScope
	KindBlockSymbol
	KindSymbol
	KindIdentifier
	KindInstanceVariable
	KindGlobalVariable
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindScope:
		return "scope"
	case KindBlockSymbol:
		return "block-symbol"
	case KindSymbol:
		return "symbol"
	case KindIdentifier:
		return "identifier"
	case KindInstanceVariable:
		return "ivar"
	case KindGlobalVariable:
		return "gvar"
	}
	return "none"
}

type analyzer struct {
	code    string
	toks    []lexer.Token
	binding Binding
	store   *signature.Store
	self    signature.Type
	env     *env
	st      *structure
}

// Analyze inspects code, the text before the cursor, and reports what can
// be completed there. It returns false when nothing can be completed,
// including when the code is unbalanced or cannot be tokenized.
func Analyze(code string, binding Binding, store *signature.Store) (*Result, bool) {
	if binding == nil {
		binding = NewStaticBinding()
	}
	if store == nil {
		store = signature.NewStore()
	}

	toks, ok := significantTokens(code)
	if !ok {
		return nil, false
	}
	st, ok := analyzeStructure(toks)
	if !ok {
		return nil, false
	}

	a := &analyzer{
		code:    code,
		toks:    toks,
		binding: binding,
		store:   store,
		env:     newEnv(),
		st:      st,
	}
	a.self = a.selfType()
	a.collectAssignments()

	r, ok := a.completionPoint()
	if !ok {
		return nil, false
	}
	r.store = store
	r.binding = binding
	r.env = a.env
	r.self = a.self
	return r, true
}

// Infer statically types a complete expression, such as the right hand side
// of an assignment entered at the prompt.
func Infer(code string, binding Binding, store *signature.Store) ([]signature.Type, bool) {
	if binding == nil {
		binding = NewStaticBinding()
	}
	if store == nil {
		store = signature.NewStore()
	}
	expr, errs := parser.ParseExpression(code)
	if len(errs) > 0 {
		return nil, false
	}
	a := &analyzer{code: code, binding: binding, store: store, env: newEnv()}
	a.self = a.selfType()
	return a.infer(expr), true
}

func (a *analyzer) selfType() signature.Type {
	if types := a.typesFromExpr(a.binding.ReceiverType()); len(types) > 0 {
		return types[0]
	}
	return signature.Instance("Object")
}

// significantTokens tokenizes code and drops comments. It fails when the
// code ends inside a comment or contains a malformed token.
func significantTokens(code string) ([]lexer.Token, bool) {
	all := lexer.Tokenize(code)
	toks := make([]lexer.Token, 0, len(all))
	for i, t := range all {
		switch t.Type {
		case lexer.ILLEGAL:
			return nil, false
		case lexer.COMMENT:
			if i == len(all)-1 {
				return nil, false
			}
			continue
		}
		toks = append(toks, t)
	}
	return toks, true
}

// blockScope is a block opened before the cursor and not yet closed.
type blockScope struct {
	opener int
	params []string
}

type structure struct {
	// match pairs each bracket (and do/end) with its counterpart, -1 when
	// unmatched.
	match []int
	// open lists unclosed openers, innermost last.
	open []int
	// segments are the completed statements before the cursor, as
	// [start, end) token ranges.
	segments [][2]int
	blocks   []blockScope
}

func analyzeStructure(toks []lexer.Token) (*structure, bool) {
	st := &structure{match: make([]int, len(toks))}
	for i := range st.match {
		st.match[i] = -1
	}

	var stack []int
	for i, t := range toks {
		switch {
		case lexer.IsOpener(t.Type) || t.Type == lexer.KW_DO:
			stack = append(stack, i)
		case lexer.IsCloser(t.Type):
			if len(stack) == 0 {
				return nil, false
			}
			top := stack[len(stack)-1]
			if !lexer.Matches(toks[top].Type, t.Type) {
				return nil, false
			}
			st.match[top], st.match[i] = i, top
			stack = stack[:len(stack)-1]
		case t.Type == lexer.KW_END:
			if len(stack) > 0 && toks[stack[len(stack)-1]].Type == lexer.KW_DO {
				top := stack[len(stack)-1]
				st.match[top], st.match[i] = i, top
				stack = stack[:len(stack)-1]
			}
		}
	}
	st.open = stack

	// Split into statements. Terminators inside closed groups do not end
	// a statement; an unclosed opener starts a new one.
	closedDepth := 0
	start := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Type == lexer.SEMICOLON || t.Type == lexer.NEWLINE:
			if closedDepth == 0 {
				st.segments = append(st.segments, [2]int{start, i})
				start = i + 1
			}
		case lexer.IsOpener(t.Type) || t.Type == lexer.KW_DO:
			if st.match[i] >= 0 {
				closedDepth++
				continue
			}
			if closedDepth > 0 {
				continue
			}
			st.segments = append(st.segments, [2]int{start, i})
			start = i + 1
			if t.Type == lexer.LBRACE || t.Type == lexer.KW_DO {
				params, next := blockParams(toks, i+1)
				st.blocks = append(st.blocks, blockScope{opener: i, params: params})
				start = next
				i = next - 1
			}
		case (lexer.IsCloser(t.Type) || t.Type == lexer.KW_END) && st.match[i] >= 0:
			closedDepth--
		}
	}
	return st, true
}

// blockParams reads `|a, b|` starting at i. It returns the parameter names
// and the index of the first token after the closing pipe.
func blockParams(toks []lexer.Token, i int) ([]string, int) {
	if i >= len(toks) {
		return nil, i
	}
	if toks[i].Type == lexer.OP_OR {
		return nil, i + 1
	}
	if toks[i].Type != lexer.OP_PIPE {
		return nil, i
	}
	var params []string
	for j := i + 1; j < len(toks); j++ {
		switch toks[j].Type {
		case lexer.OP_PIPE:
			return params, j + 1
		case lexer.IDENT:
			params = append(params, toks[j].Literal)
		}
	}
	// parameters still being typed
	return params, len(toks)
}

func isFragment(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.CONSTANT, lexer.IVAR, lexer.GVAR, lexer.SYMBOL:
		return true
	}
	return lexer.IsKeyword(t)
}

// startsExpression reports whether an identifier may follow t.
func startsExpression(t lexer.TokenType) bool {
	switch t {
	case lexer.SEMICOLON, lexer.NEWLINE, lexer.COMMA, lexer.COLON,
		lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE,
		lexer.DOT2, lexer.DOT3, lexer.OP_ARROW, lexer.OP_QUESTION:
		return true
	case lexer.KW_IF, lexer.KW_UNLESS, lexer.KW_WHILE, lexer.KW_UNTIL,
		lexer.KW_RETURN, lexer.KW_AND, lexer.KW_OR, lexer.KW_NOT,
		lexer.KW_THEN, lexer.KW_ELSE, lexer.KW_ELSIF, lexer.KW_WHEN,
		lexer.KW_IN, lexer.KW_DO, lexer.KW_YIELD, lexer.KW_CASE, lexer.KW_BEGIN:
		return true
	}
	// operators, including the closing pipe of block parameters
	return t >= lexer.OP_ASSIGN && t <= lexer.OP_LAMBDA
}

func (a *analyzer) completionPoint() (*Result, bool) {
	toks := a.toks
	n := len(toks)

	fragIdx := -1
	if n > 0 && toks[n-1].End == len(a.code) && isFragment(toks[n-1].Type) {
		fragIdx = n - 1
	}
	prefix := ""
	prevIdx := n - 1
	if fragIdx >= 0 {
		prefix = toks[fragIdx].Literal
		prevIdx = fragIdx - 1
	}

	var prev lexer.Token
	if prevIdx >= 0 {
		prev = toks[prevIdx]
	}

	if fragIdx >= 0 {
		switch toks[fragIdx].Type {
		case lexer.IVAR:
			return &Result{Kind: KindInstanceVariable, Prefix: prefix}, true
		case lexer.GVAR:
			return &Result{Kind: KindGlobalVariable, Prefix: prefix}, true
		case lexer.SYMBOL:
			if prevIdx >= 0 && prev.Type == lexer.OP_AMP {
				return a.blockSymbol(prefix)
			}
			return &Result{Kind: KindSymbol, Prefix: prefix}, true
		}
	}

	if prevIdx < 0 {
		return a.identifier(prefix), true
	}

	switch prev.Type {
	case lexer.DOT, lexer.SAFE_NAV:
		recv, ok := a.inferChain(prevIdx - 1)
		if !ok {
			return nil, false
		}
		_, isSelf := recv.expr.(*parser.SelfExpression)
		return &Result{Kind: KindMethod, Prefix: prefix, Receiver: recv.types, Private: isSelf}, true

	case lexer.COLON2:
		if prevIdx == 0 || !isValueEnd(toks[prevIdx-1]) || toks[prevIdx-1].End != prev.Offset {
			return &Result{Kind: KindScope, Prefix: prefix}, true
		}
		recv, ok := a.inferChain(prevIdx - 1)
		if !ok {
			return nil, false
		}
		if c, isConst := recv.expr.(*parser.Constant); isConst {
			if path, ok := c.Path(); ok {
				return &Result{Kind: KindScope, Prefix: prefix, Scope: path}, true
			}
		}
		return &Result{Kind: KindMethod, Prefix: prefix, Receiver: recv.types}, true

	case lexer.COLON:
		if fragIdx < 0 && prev.End == len(a.code) {
			if prevIdx > 0 && toks[prevIdx-1].Type == lexer.OP_AMP && toks[prevIdx-1].End == prev.Offset {
				return a.blockSymbol("")
			}
			return &Result{Kind: KindSymbol}, true
		}
		return a.identifier(prefix), true
	}

	if startsExpression(prev.Type) {
		return a.identifier(prefix), true
	}
	// command-style arguments: `puts fo`
	next := len(a.code)
	if fragIdx >= 0 {
		next = toks[fragIdx].Offset
	}
	if prev.Type == lexer.IDENT && prev.End < next {
		return a.identifier(prefix), true
	}
	return nil, false
}

func (a *analyzer) identifier(prefix string) *Result {
	return &Result{
		Kind:     KindIdentifier,
		Prefix:   prefix,
		Receiver: []signature.Type{a.self},
		Private:  true,
	}
}

// blockSymbol handles `recv.meth(&:prefix`: candidates are methods of the
// element type of recv.
func (a *analyzer) blockSymbol(prefix string) (*Result, bool) {
	r := &Result{Kind: KindBlockSymbol, Prefix: prefix}
	open := a.st.open
	if len(open) == 0 {
		return r, true
	}
	paren := open[len(open)-1]
	if a.toks[paren].Type != lexer.LPAREN || paren == 0 || a.toks[paren-1].Type != lexer.IDENT {
		return r, true
	}
	method := a.toks[paren-1].Literal

	recvTypes := []signature.Type{a.self}
	if paren >= 3 && isMemberOperator(a.toks[paren-2].Type) {
		recv, ok := a.inferChain(paren - 3)
		if !ok {
			return r, true
		}
		recvTypes = recv.types
	}
	r.Receiver = a.yieldedTypes(recvTypes, method)
	return r, true
}

func isMemberOperator(t lexer.TokenType) bool {
	return t == lexer.DOT || t == lexer.SAFE_NAV || t == lexer.COLON2
}

// isValueEnd reports whether t can end an expression.
func isValueEnd(t lexer.Token) bool {
	switch t.Type {
	case lexer.IDENT, lexer.CONSTANT, lexer.IVAR, lexer.GVAR,
		lexer.INTEGER, lexer.FLOAT, lexer.STRING, lexer.SYMBOL,
		lexer.KW_NIL, lexer.KW_TRUE, lexer.KW_FALSE, lexer.KW_SELF, lexer.KW_END,
		lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
		return true
	}
	return false
}

func isPrimary(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.CONSTANT, lexer.IVAR, lexer.GVAR,
		lexer.INTEGER, lexer.FLOAT, lexer.STRING, lexer.SYMBOL,
		lexer.KW_NIL, lexer.KW_TRUE, lexer.KW_FALSE, lexer.KW_SELF:
		return true
	}
	return false
}

// chainStart walks back from end over a receiver chain such as
// `foo.bar(1)[0].baz { }` and returns the index of its first token, or -1.
func (a *analyzer) chainStart(end int) int {
	toks := a.toks
	i := end
	for i >= 0 {
		t := toks[i]
		switch {
		case lexer.IsCloser(t.Type):
			j := a.st.match[i]
			if j < 0 {
				return -1
			}
			i = j
			if j > 0 {
				before := toks[j-1]
				switch {
				case toks[j].Type == lexer.LBRACE && (before.Type == lexer.IDENT || before.Type == lexer.RPAREN):
					// block attached to a call
					i = j - 1
					continue
				case toks[j].Type != lexer.LBRACE && before.End == toks[j].Offset && isValueEnd(before):
					// call arguments or index
					i = j - 1
					continue
				}
			}
		case isPrimary(t.Type):
		default:
			return -1
		}

		if i >= 2 && isMemberOperator(toks[i-1].Type) {
			i -= 2
			continue
		}
		if i >= 1 && toks[i-1].Type == lexer.COLON2 {
			return i - 1
		}
		return i
	}
	return -1
}

type inferred struct {
	expr  parser.Expression
	types []signature.Type
}

// inferChain parses and types the receiver chain ending at token end.
func (a *analyzer) inferChain(end int) (inferred, bool) {
	if end < 0 {
		return inferred{}, false
	}
	start := a.chainStart(end)
	if start < 0 {
		return inferred{}, false
	}
	src := a.code[a.toks[start].Offset:a.toks[end].End]
	expr, errs := parser.ParseExpression(src)
	if len(errs) > 0 {
		return inferred{}, false
	}
	return inferred{expr: expr, types: a.infer(expr)}, true
}

// collectAssignments records the types of variables assigned in the
// statements before the cursor, and of the parameters of open blocks.
func (a *analyzer) collectAssignments() {
	a.assignSegments()
	for _, b := range a.st.blocks {
		a.bindBlockParams(b)
	}
	// statements inside open blocks may use the block parameters
	if len(a.st.blocks) > 0 {
		a.assignSegments()
	}
}

func (a *analyzer) assignSegments() {
	for _, seg := range a.st.segments {
		if seg[0] >= seg[1] {
			continue
		}
		src := a.code[a.toks[seg[0]].Offset:a.toks[seg[1]-1].End]
		p := parser.New(lexer.New(src))
		program := p.ParseProgram()
		if len(p.Errors()) > 0 {
			continue
		}
		for _, stmt := range program.Statements {
			a.assign(stmt)
		}
	}
}

func (a *analyzer) bindBlockParams(b blockScope) {
	if len(b.params) == 0 || b.opener == 0 {
		return
	}
	callEnd := b.opener - 1
	start := a.chainStart(callEnd)
	if start < 0 {
		return
	}
	src := a.code[a.toks[start].Offset:a.toks[callEnd].End]
	expr, errs := parser.ParseExpression(src)
	if len(errs) > 0 {
		return
	}

	var recv []signature.Type
	var method string
	var args []parser.Expression
	switch e := expr.(type) {
	case *parser.CallExpression:
		method, args = e.Method, e.Arguments
		if e.Receiver == nil {
			recv = []signature.Type{a.self}
		} else {
			recv = a.infer(e.Receiver)
		}
	case *parser.Identifier:
		method = e.Value
		recv = []signature.Type{a.self}
	default:
		return
	}

	for i, types := range a.blockParamTypes(recv, method, args, len(b.params)) {
		a.env.locals[b.params[i]] = types
	}
}

func (a *analyzer) typesFromExpr(expr string) []signature.Type {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	te, err := signature.ParseTypeExpr(expr)
	if err != nil {
		return nil
	}
	return a.store.Resolve(te, a.self)
}
