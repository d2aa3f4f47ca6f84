package parser

import (
	"strings"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents an expression node. Every Ruby statement is an
// expression, so there is no separate statement interface.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST
type Program struct {
	Statements []Expression
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	parts := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "; ")
}

// Identifier represents a local variable or a receiverless method call
// without arguments.
type Identifier struct {
	Token lexer.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// Constant represents a constant reference, optionally scoped (`A::B`).
type Constant struct {
	Token lexer.Token
	Scope Expression // nil for unscoped constants
	Name  string
}

func (c *Constant) expressionNode()      {}
func (c *Constant) TokenLiteral() string { return c.Token.Literal }
func (c *Constant) String() string {
	if c.Scope == nil {
		return c.Name
	}
	return c.Scope.String() + "::" + c.Name
}

// Path returns the fully qualified name when every scope is a constant.
func (c *Constant) Path() (string, bool) {
	if c.Scope == nil {
		return c.Name, true
	}
	scope, ok := c.Scope.(*Constant)
	if !ok {
		return "", false
	}
	prefix, ok := scope.Path()
	if !ok {
		return "", false
	}
	return prefix + "::" + c.Name, true
}

// IntegerLiteral represents an integer literal
type IntegerLiteral struct {
	Token lexer.Token
	Value string
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Value }

// FloatLiteral represents a float literal
type FloatLiteral struct {
	Token lexer.Token
	Value string
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Value }

// StringLiteral represents a string literal
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

// SymbolLiteral represents a symbol literal
type SymbolLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *SymbolLiteral) expressionNode()      {}
func (sl *SymbolLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *SymbolLiteral) String() string       { return ":" + sl.Value }

// NilLiteral represents nil
type NilLiteral struct {
	Token lexer.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NilLiteral) String() string       { return "nil" }

// BooleanLiteral represents true or false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// SelfExpression represents self
type SelfExpression struct {
	Token lexer.Token
}

func (se *SelfExpression) expressionNode()      {}
func (se *SelfExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SelfExpression) String() string       { return "self" }

// InstanceVariable represents @name or @@name
type InstanceVariable struct {
	Token lexer.Token
	Name  string
}

func (iv *InstanceVariable) expressionNode()      {}
func (iv *InstanceVariable) TokenLiteral() string { return iv.Token.Literal }
func (iv *InstanceVariable) String() string       { return iv.Name }

// GlobalVariable represents $name
type GlobalVariable struct {
	Token lexer.Token
	Name  string
}

func (gv *GlobalVariable) expressionNode()      {}
func (gv *GlobalVariable) TokenLiteral() string { return gv.Token.Literal }
func (gv *GlobalVariable) String() string       { return gv.Name }

// ArrayLiteral represents an array literal
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

// HashPair is a single key/value entry of a hash literal
type HashPair struct {
	Key   Expression
	Value Expression
}

// HashLiteral represents a hash literal
type HashLiteral struct {
	Token lexer.Token // the '{' token
	Pairs []HashPair
}

func (hl *HashLiteral) expressionNode()      {}
func (hl *HashLiteral) TokenLiteral() string { return hl.Token.Literal }
func (hl *HashLiteral) String() string {
	parts := make([]string, 0, len(hl.Pairs))
	for _, pair := range hl.Pairs {
		parts = append(parts, pair.Key.String()+" => "+pair.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RangeExpression represents `a..b` or `a...b`
type RangeExpression struct {
	Token     lexer.Token
	Left      Expression
	Right     Expression // nil for endless ranges
	Exclusive bool
}

func (re *RangeExpression) expressionNode()      {}
func (re *RangeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RangeExpression) String() string {
	right := ""
	if re.Right != nil {
		right = re.Right.String()
	}
	return "(" + re.Left.String() + re.Token.Literal + right + ")"
}

// UnaryExpression represents a prefix operator expression
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) String() string {
	return "(" + ue.Operator + ue.Right.String() + ")"
}

// BinaryExpression represents an infix operator expression
type BinaryExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// TernaryExpression represents `cond ? a : b`
type TernaryExpression struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

// BlockLiteral represents a `{ |params| body }` or `do |params| body end` block
type BlockLiteral struct {
	Token  lexer.Token
	Params []string
	Body   []Expression
}

func (bl *BlockLiteral) expressionNode()      {}
func (bl *BlockLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BlockLiteral) String() string {
	var out strings.Builder
	out.WriteString("{ ")
	if len(bl.Params) > 0 {
		out.WriteString("|" + strings.Join(bl.Params, ", ") + "| ")
	}
	out.WriteString(joinExpressions(bl.Body))
	out.WriteString(" }")
	return out.String()
}

// LambdaLiteral represents `->(params) { body }`
type LambdaLiteral struct {
	Token lexer.Token
	Block *BlockLiteral
}

func (ll *LambdaLiteral) expressionNode()      {}
func (ll *LambdaLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *LambdaLiteral) String() string       { return "->" + ll.Block.String() }

// CallExpression represents a method call, with or without a receiver
type CallExpression struct {
	Token     lexer.Token // the method name token
	Receiver  Expression  // nil for receiverless calls
	Method    string
	Arguments []Expression
	BlockArg  Expression // the `&expr` argument, if any
	Block     *BlockLiteral
	SafeNav   bool
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out strings.Builder
	if ce.Receiver != nil {
		out.WriteString(ce.Receiver.String())
		if ce.SafeNav {
			out.WriteString("&.")
		} else {
			out.WriteString(".")
		}
	}
	out.WriteString(ce.Method)
	args := joinExpressions(ce.Arguments)
	if ce.BlockArg != nil {
		if args != "" {
			args += ", "
		}
		args += "&" + ce.BlockArg.String()
	}
	out.WriteString("(" + args + ")")
	if ce.Block != nil {
		out.WriteString(" " + ce.Block.String())
	}
	return out.String()
}

// IndexExpression represents `left[index]`
type IndexExpression struct {
	Token   lexer.Token // the '[' token
	Left    Expression
	Indices []Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + joinExpressions(ie.Indices) + "])"
}

// AssignmentExpression represents `target = value` or `target op= value`
type AssignmentExpression struct {
	Token    lexer.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return ae.Target.String() + " " + ae.Operator + " " + ae.Value.String()
}

// GroupedExpression represents `( stmt; stmt )`
type GroupedExpression struct {
	Token lexer.Token
	Body  []Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupedExpression) String() string {
	return "(" + joinExpressions(ge.Body) + ")"
}

// SplatExpression represents `*expr` in an argument list
type SplatExpression struct {
	Token lexer.Token
	Value Expression
}

func (se *SplatExpression) expressionNode()      {}
func (se *SplatExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SplatExpression) String() string       { return "*" + se.Value.String() }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
