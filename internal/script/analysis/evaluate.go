package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
	"github.com/atinylittleshell/typecomp/internal/script/parser"
	"github.com/atinylittleshell/typecomp/internal/signature"
)

// ErrSyntax is returned by Evaluate for code that does not parse.
var ErrSyntax = errors.New("syntax error")

// Assignment is a variable assigned by an evaluated line.
type Assignment struct {
	// Name includes the sigil of instance and global variables.
	Name  string
	Types []signature.Type
	Local bool
}

// Evaluation is the static outcome of a line entered at the prompt.
type Evaluation struct {
	// Types of the last statement.
	Types       []signature.Type
	Assignments []Assignment
}

// Type formats the result type the way it is echoed at the prompt.
func (e *Evaluation) Type() string {
	return signature.Union(e.Types)
}

// Evaluate statically runs every statement of code in order. Assignments
// made by earlier statements are visible to later ones, and all of them
// are reported so the caller can carry them into its binding.
func Evaluate(code string, binding Binding, store *signature.Store) (*Evaluation, error) {
	if binding == nil {
		binding = NewStaticBinding()
	}
	if store == nil {
		store = signature.NewStore()
	}

	p := parser.New(lexer.New(code))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, strings.Join(errs, "; "))
	}

	a := &analyzer{code: code, binding: binding, store: store, env: newEnv()}
	a.self = a.selfType()

	ev := &Evaluation{}
	for _, stmt := range program.Statements {
		ev.Types = a.infer(stmt)
		if as, ok := a.record(stmt, ev.Types); ok {
			ev.Assignments = append(ev.Assignments, as)
		}
	}
	return ev, nil
}

// record stores the target of an assignment statement in the environment.
func (a *analyzer) record(stmt parser.Expression, types []signature.Type) (Assignment, bool) {
	as, ok := stmt.(*parser.AssignmentExpression)
	if !ok {
		return Assignment{}, false
	}
	switch target := as.Target.(type) {
	case *parser.Identifier:
		a.env.locals[target.Value] = types
		return Assignment{Name: target.Value, Types: types, Local: true}, true
	case *parser.InstanceVariable:
		a.env.variables[target.Name] = types
		return Assignment{Name: target.Name, Types: types}, true
	case *parser.GlobalVariable:
		a.env.variables[target.Name] = types
		return Assignment{Name: target.Name, Types: types}, true
	}
	return Assignment{}, false
}
