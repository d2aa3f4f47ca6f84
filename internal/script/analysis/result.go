package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
	"github.com/atinylittleshell/typecomp/internal/signature"
)

// Source tells where a candidate name came from.
type Source string

const (
	SourceLocal            Source = "local"
	SourceMethod           Source = "method"
	SourceMember           Source = "member"
	SourceConstant         Source = "constant"
	SourceKeyword          Source = "keyword"
	SourceSymbol           Source = "symbol"
	SourceInstanceVariable Source = "ivar"
	SourceGlobalVariable   Source = "gvar"
)

// Candidate is a completion name, not yet joined with the typed fragment.
type Candidate struct {
	Name   string
	Source Source
}

// Result describes the completion point found by Analyze.
type Result struct {
	Kind Kind
	// Prefix is the fragment being completed. Candidate names start with it.
	Prefix string
	// Receiver holds the receiver types for method completion, the element
	// types for block symbols and the type of self for identifiers.
	Receiver []signature.Type
	// Scope is the constant path before `::`, empty for top-level
	// constants.
	Scope string
	// Private is set when private methods are callable at this point.
	Private bool

	store   *signature.Store
	binding Binding
	env     *env
	self    signature.Type
}

// Candidates returns every name that can complete the fragment, sorted by
// name. Names are unique.
func (r *Result) Candidates() []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	add := func(src Source, names ...string) {
		for _, name := range names {
			if name == "" || seen[name] || !strings.HasPrefix(name, r.Prefix) {
				continue
			}
			seen[name] = true
			out = append(out, Candidate{Name: name, Source: src})
		}
	}

	switch r.Kind {
	case KindMethod:
		for _, t := range r.Receiver {
			add(SourceMethod, r.store.Methods(t, r.Private)...)
			add(SourceMember, r.binding.Members(memberKey(t))...)
		}
	case KindScope:
		add(SourceConstant, r.store.Constants(r.Scope)...)
		if r.Scope != "" {
			add(SourceMethod, r.store.Methods(signature.SingletonOf(r.Scope), false)...)
			add(SourceMember, r.binding.Members(memberKey(signature.SingletonOf(r.Scope)))...)
		}
	case KindBlockSymbol:
		if len(r.Receiver) == 0 {
			add(SourceSymbol, r.store.AllMethodNames()...)
		}
		for _, t := range r.Receiver {
			add(SourceMethod, r.store.Methods(t, false)...)
			add(SourceMember, r.binding.Members(memberKey(t))...)
		}
	case KindSymbol:
		add(SourceSymbol, r.store.AllMethodNames()...)
	case KindIdentifier:
		add(SourceLocal, r.localNames()...)
		for _, t := range r.Receiver {
			add(SourceMethod, r.store.Methods(t, true)...)
			add(SourceMember, r.binding.Members(memberKey(t))...)
		}
		add(SourceKeyword, lexer.Keywords()...)
		if r.Prefix == "" || startsUpper(r.Prefix) {
			add(SourceConstant, r.store.Constants("")...)
		}
	case KindInstanceVariable:
		add(SourceInstanceVariable, r.variableNames("@")...)
	case KindGlobalVariable:
		add(SourceGlobalVariable, r.variableNames("$")...)
		add(SourceGlobalVariable, r.store.Globals()...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the candidate names only.
func (r *Result) Names() []string {
	return lo.Map(r.Candidates(), func(c Candidate, _ int) string { return c.Name })
}

func memberKey(t signature.Type) string {
	if t.Singleton {
		return t.String()
	}
	return t.Name
}

func startsUpper(s string) bool {
	ch, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(ch)
}

func (r *Result) localNames() []string {
	names := append(lo.Keys(r.env.locals), r.binding.Locals()...)
	sort.Strings(names)
	return names
}

func (r *Result) variableNames(sigil string) []string {
	var names []string
	for name := range r.env.variables {
		if strings.HasPrefix(name, sigil) {
			names = append(names, name)
		}
	}
	if vl, ok := r.binding.(VariableLister); ok {
		if sigil == "@" {
			names = append(names, vl.InstanceVariables()...)
		} else {
			names = append(names, vl.GlobalVariables()...)
		}
	}
	sort.Strings(names)
	return names
}

// DocNamespace resolves the documentation name of the completed fragment:
// `Type#method`, `Type.method`, a constant path or the class of a
// variable.
func (r *Result) DocNamespace() (string, bool) {
	name := r.Prefix
	if name == "" {
		return "", false
	}

	switch r.Kind {
	case KindMethod, KindBlockSymbol:
		return r.methodNamespace(r.Receiver, name, r.Private)

	case KindScope:
		path := name
		if r.Scope != "" {
			path = r.Scope + "::" + name
		}
		if _, ok := r.store.ConstantType(path); ok {
			return path, true
		}
		if r.Scope == "" {
			return "", false
		}
		return r.methodNamespace([]signature.Type{signature.SingletonOf(r.Scope)}, name, false)

	case KindIdentifier:
		a := r.lookup()
		if types, ok := a.lookupLocal(name); ok {
			return className(types)
		}
		if startsUpper(name) {
			if _, ok := r.store.ConstantType(name); ok {
				return name, true
			}
		}
		return r.methodNamespace(r.Receiver, name, true)

	case KindInstanceVariable, KindGlobalVariable:
		return className(r.lookup().lookupVariable(name))
	}
	return "", false
}

func (r *Result) methodNamespace(recv []signature.Type, name string, private bool) (string, bool) {
	for _, t := range recv {
		ref, ok := r.store.FindMethod(t, name)
		if !ok || (ref.Private && !private) {
			continue
		}
		return ref.Namespace(), true
	}
	return "", false
}

// lookup rebuilds an analyzer over the result's environment for variable
// queries.
func (r *Result) lookup() *analyzer {
	return &analyzer{binding: r.binding, store: r.store, env: r.env, self: r.self}
}

func className(types []signature.Type) (string, bool) {
	for _, t := range types {
		if !t.IsZero() {
			return t.Name, true
		}
	}
	return "", false
}
