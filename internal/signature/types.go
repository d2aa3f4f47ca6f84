// Package signature holds the type knowledge base used for completion:
// classes and modules, their ancestors and the return types of their
// methods. Signatures are declared in YAML files; the core library ships
// embedded in the binary.
package signature

import (
	"fmt"
	"strings"
)

// Well-known class names the inference engine produces for literals.
const (
	NilClass   = "NilClass"
	TrueClass  = "TrueClass"
	FalseClass = "FalseClass"
)

// Type is a resolved type: a class name with optional type arguments.
// Singleton types stand for the class object itself (`String` rather than
// an instance of String).
type Type struct {
	Name      string
	Args      []Type
	Singleton bool
}

// Instance returns a type with the given name and arguments.
func Instance(name string, args ...Type) Type {
	return Type{Name: name, Args: args}
}

// SingletonOf returns the singleton type of the named class or module.
func SingletonOf(name string) Type {
	return Type{Name: name, Singleton: true}
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.Name == ""
}

func (t Type) String() string {
	if t.IsZero() {
		return "untyped"
	}
	if t.Singleton {
		return "singleton(" + t.Name + ")"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "[" + strings.Join(args, ", ") + "]"
}

// Union formats a set of alternative types the way they are echoed at the
// prompt.
func Union(types []Type) string {
	if len(types) == 0 {
		return "untyped"
	}
	parts := make([]string, 0, len(types))
	seen := map[string]bool{}
	for _, t := range types {
		s := t.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	return strings.Join(parts, " | ")
}

// TypeExpr is a parsed, unresolved type expression: one or more
// alternatives separated by `|`.
type TypeExpr struct {
	Alternatives []TypeTerm
}

// TypeTerm is a single alternative. Name is a class name, a type
// parameter or one of the special names (self, instance, class, bool, nil,
// void, untyped, block).
type TypeTerm struct {
	Name     string
	Args     []TypeExpr
	Optional bool
}

func (e TypeExpr) String() string {
	parts := make([]string, len(e.Alternatives))
	for i, term := range e.Alternatives {
		parts[i] = term.String()
	}
	return strings.Join(parts, " | ")
}

func (t TypeTerm) String() string {
	s := t.Name
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		s += "[" + strings.Join(args, ", ") + "]"
	}
	if t.Optional {
		s += "?"
	}
	return s
}

// ParseTypeExpr parses expressions such as `Array[Integer] | nil`,
// `String?` or `Enumerator[Elem]`.
func ParseTypeExpr(input string) (TypeExpr, error) {
	p := &typeExprParser{input: input}
	expr, err := p.parseUnion()
	if err != nil {
		return TypeExpr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return TypeExpr{}, fmt.Errorf("unexpected %q at offset %d in type %q", p.input[p.pos], p.pos, input)
	}
	return expr, nil
}

// MustParseTypeExpr is like ParseTypeExpr but panics on malformed input.
// It is meant for expressions written in Go source.
func MustParseTypeExpr(input string) TypeExpr {
	expr, err := ParseTypeExpr(input)
	if err != nil {
		panic(err)
	}
	return expr
}

type typeExprParser struct {
	input string
	pos   int
}

func (p *typeExprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeExprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeExprParser) parseUnion() (TypeExpr, error) {
	var expr TypeExpr
	for {
		term, err := p.parseTerm()
		if err != nil {
			return TypeExpr{}, err
		}
		expr.Alternatives = append(expr.Alternatives, term)
		if p.peek() != '|' {
			return expr, nil
		}
		p.pos++
	}
}

func (p *typeExprParser) parseTerm() (TypeTerm, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && isTypeNameChar(p.input[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return TypeTerm{}, fmt.Errorf("missing type name at end of %q", p.input)
		}
		return TypeTerm{}, fmt.Errorf("unexpected %q at offset %d in type %q", p.input[p.pos], p.pos, p.input)
	}
	term := TypeTerm{Name: p.input[start:p.pos]}

	if p.peek() == '[' {
		p.pos++
		for {
			arg, err := p.parseUnion()
			if err != nil {
				return TypeTerm{}, err
			}
			term.Args = append(term.Args, arg)
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case ']':
				p.pos++
			default:
				return TypeTerm{}, fmt.Errorf("unterminated type arguments in %q", p.input)
			}
			break
		}
	}

	if p.peek() == '?' {
		p.pos++
		term.Optional = true
	}
	return term, nil
}

func isTypeNameChar(ch byte) bool {
	return ch == '_' || ch == ':' ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}
