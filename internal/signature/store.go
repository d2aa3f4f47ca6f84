package signature

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Kind distinguishes classes from modules.
type Kind string

const (
	KindClass  Kind = "class"
	KindModule Kind = "module"
)

// Method is a declared method signature.
type Method struct {
	Name    string
	Returns TypeExpr
	// BlockReturns, when set, is the return type used when the call is
	// given a block.
	BlockReturns *TypeExpr
	Doc          string
	Source       string
}

// Class is a declared class or module.
type Class struct {
	Name             string
	Kind             Kind
	Superclass       *TypeTerm
	Includes         []TypeTerm
	TypeParams       []string
	Methods          map[string]*Method
	PrivateMethods   map[string]*Method
	SingletonMethods map[string]*Method
	Constants        map[string]TypeExpr
	Doc              string
	Source           string
}

func newClass(name string, kind Kind) *Class {
	return &Class{
		Name:             name,
		Kind:             kind,
		Methods:          map[string]*Method{},
		PrivateMethods:   map[string]*Method{},
		SingletonMethods: map[string]*Method{},
		Constants:        map[string]TypeExpr{},
	}
}

// Ancestor is one entry of a method resolution order.
type Ancestor struct {
	Class     *Class
	Type      Type
	Singleton bool

	env map[string]Type
}

// MethodRef locates a method found through an ancestor chain.
type MethodRef struct {
	Owner     string
	Method    *Method
	Private   bool
	Singleton bool

	env map[string]Type
}

// Namespace returns the documentation name of the method: `Owner#name`
// for instance methods and `Owner.name` for singleton methods.
func (r MethodRef) Namespace() string {
	if r.Singleton {
		return r.Owner + "." + r.Method.Name
	}
	return r.Owner + "#" + r.Method.Name
}

// Stats summarizes the store contents.
type Stats struct {
	Classes int
	Modules int
	Methods int
}

// Store is the type knowledge base. It is safe for concurrent use; queries
// issued before loading finishes see whatever has been loaded so far.
type Store struct {
	mu      sync.RWMutex
	classes map[string]*Class
	globals map[string]TypeExpr
	version string

	cacheMu   sync.Mutex
	ancestors map[string][]Ancestor

	loaded    atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore returns an empty, not yet loaded store.
func NewStore() *Store {
	return &Store{
		classes:   map[string]*Class{},
		globals:   map[string]TypeExpr{},
		ancestors: map[string][]Ancestor{},
		ready:     make(chan struct{}),
	}
}

// Loaded is the readiness flag: it reports whether loading has finished.
func (s *Store) Loaded() bool {
	return s.loaded.Load()
}

// Wait blocks until loading has finished or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() {
		s.loaded.Store(true)
		close(s.ready)
	})
}

// Version returns the runtime version the signatures describe.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Class looks up a class or module by its full name.
func (s *Store) Class(name string) (*Class, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[name]
	return c, ok
}

// ClassNames returns the sorted names of every class and module.
func (s *Store) ClassNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := lo.Keys(s.classes)
	sort.Strings(names)
	return names
}

// Constants returns the names of constants directly under scope. An empty
// scope lists top-level constants.
func (s *Store) Constants(scope string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for full := range s.classes {
		if name, ok := childName(scope, full); ok {
			names = append(names, name)
		}
	}
	owner := scope
	if owner == "" {
		owner = "Object"
	}
	if c, ok := s.classes[owner]; ok {
		names = append(names, lo.Keys(c.Constants)...)
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

func childName(scope, full string) (string, bool) {
	if scope == "" {
		return full, !strings.Contains(full, "::")
	}
	rest, ok := strings.CutPrefix(full, scope+"::")
	if !ok || rest == "" || strings.Contains(rest, "::") {
		return "", false
	}
	return rest, true
}

// ConstantType resolves a constant path. Class and module names resolve to
// their singleton type; value constants resolve to their declared type.
func (s *Store) ConstantType(path string) ([]Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.classes[path]; ok {
		return []Type{SingletonOf(path)}, true
	}
	ownerName, name := "Object", path
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		ownerName, name = path[:idx], path[idx+2:]
	}
	owner, ok := s.classes[ownerName]
	if !ok {
		return nil, false
	}
	expr, ok := owner.Constants[name]
	if !ok {
		return nil, false
	}
	return s.resolve(expr, resolveContext{self: SingletonOf(owner.Name)}), true
}

// Globals returns the sorted names of declared global variables.
func (s *Store) Globals() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := lo.Keys(s.globals)
	sort.Strings(names)
	return names
}

// GlobalType resolves the declared type of a global variable.
func (s *Store) GlobalType(name string) ([]Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expr, ok := s.globals[name]
	if !ok {
		return nil, false
	}
	return s.resolve(expr, resolveContext{}), true
}

// Ancestors returns the method resolution order of t.
func (s *Store) Ancestors(t Type) []Ancestor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Ancestor(nil), s.ancestorsLocked(t)...)
}

func (s *Store) ancestorsLocked(t Type) []Ancestor {
	key := t.String()
	s.cacheMu.Lock()
	cached, ok := s.ancestors[key]
	s.cacheMu.Unlock()
	if ok {
		return cached
	}

	var out []Ancestor
	seen := map[string]bool{}
	if t.Singleton {
		meta := "Class"
		for name := t.Name; name != ""; {
			c, ok := s.classes[name]
			if !ok {
				break
			}
			if c.Kind == KindModule {
				meta = "Module"
			}
			out = append(out, Ancestor{Class: c, Type: SingletonOf(name), Singleton: true})
			if c.Superclass == nil {
				break
			}
			name = c.Superclass.Name
		}
		if len(out) > 0 {
			s.appendInstanceAncestors(&out, seen, Instance(meta))
		}
	} else {
		s.appendInstanceAncestors(&out, seen, t)
	}

	s.cacheMu.Lock()
	s.ancestors[key] = out
	s.cacheMu.Unlock()
	return out
}

func (s *Store) appendInstanceAncestors(out *[]Ancestor, seen map[string]bool, t Type) {
	c, ok := s.classes[t.Name]
	if !ok || seen[t.Name] {
		return
	}
	seen[t.Name] = true

	env := bindParams(c.TypeParams, t.Args)
	*out = append(*out, Ancestor{Class: c, Type: t, env: env})

	ctx := resolveContext{env: env, self: t}
	// modules included later take precedence
	for i := len(c.Includes) - 1; i >= 0; i-- {
		if mod, ok := s.resolveSingle(TypeExpr{Alternatives: []TypeTerm{c.Includes[i]}}, ctx); ok {
			s.appendInstanceAncestors(out, seen, mod)
		}
	}
	if c.Superclass != nil {
		if super, ok := s.resolveSingle(TypeExpr{Alternatives: []TypeTerm{*c.Superclass}}, ctx); ok {
			s.appendInstanceAncestors(out, seen, super)
		}
	}
}

func bindParams(params []string, args []Type) map[string]Type {
	if len(params) == 0 {
		return nil
	}
	env := make(map[string]Type, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p] = args[i]
		} else {
			env[p] = Type{}
		}
	}
	return env
}

// Methods returns the sorted names of methods callable on t. Private
// methods are only callable without an explicit receiver.
func (s *Store) Methods(t Type, includePrivate bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, a := range s.ancestorsLocked(t) {
		if a.Singleton {
			names = append(names, lo.Keys(a.Class.SingletonMethods)...)
			continue
		}
		names = append(names, lo.Keys(a.Class.Methods)...)
		if includePrivate {
			names = append(names, lo.Keys(a.Class.PrivateMethods)...)
		}
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// FindMethod finds the first definition of name in the ancestors of t.
// Private methods are included; callers check MethodRef.Private.
func (s *Store) FindMethod(t Type, name string) (MethodRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findMethodLocked(t, name)
}

func (s *Store) findMethodLocked(t Type, name string) (MethodRef, bool) {
	for _, a := range s.ancestorsLocked(t) {
		if a.Singleton {
			if m, ok := a.Class.SingletonMethods[name]; ok {
				return MethodRef{Owner: a.Class.Name, Method: m, Singleton: true, env: a.env}, true
			}
			continue
		}
		if m, ok := a.Class.Methods[name]; ok {
			return MethodRef{Owner: a.Class.Name, Method: m, env: a.env}, true
		}
		if m, ok := a.Class.PrivateMethods[name]; ok {
			return MethodRef{Owner: a.Class.Name, Method: m, Private: true, env: a.env}, true
		}
	}
	return MethodRef{}, false
}

// ReturnType infers the result of calling name on recv. block holds the
// types the attached block evaluates to, if a block is given.
func (s *Store) ReturnType(recv Type, name string, hasBlock bool, block []Type) []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.findMethodLocked(recv, name)
	if !ok {
		return nil
	}
	expr := ref.Method.Returns
	if hasBlock && ref.Method.BlockReturns != nil {
		expr = *ref.Method.BlockReturns
	}
	return s.resolve(expr, resolveContext{env: ref.env, self: recv, block: block})
}

// ElementType returns the types yielded by an Enumerable.
func (s *Store) ElementType(t Type) []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.ancestorsLocked(t) {
		if a.Singleton || a.Class.Name != "Enumerable" {
			continue
		}
		if elem := a.env["Elem"]; !elem.IsZero() {
			return []Type{elem}
		}
		return nil
	}
	return nil
}

// AllMethodNames returns every public instance method name declared
// anywhere in the store.
func (s *Store) AllMethodNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, c := range s.classes {
		names = append(names, lo.Keys(c.Methods)...)
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// Stats counts the declared classes, modules and methods.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, c := range s.classes {
		if c.Kind == KindModule {
			st.Modules++
		} else {
			st.Classes++
		}
		st.Methods += len(c.Methods) + len(c.PrivateMethods) + len(c.SingletonMethods)
	}
	return st
}

type resolveContext struct {
	env   map[string]Type
	self  Type
	block []Type
}

// Resolve evaluates a type expression with self bound to the given type.
func (s *Store) Resolve(expr TypeExpr, self Type) []Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(expr, resolveContext{self: self})
}

func (s *Store) resolve(expr TypeExpr, ctx resolveContext) []Type {
	var out []Type
	for _, term := range expr.Alternatives {
		out = append(out, s.resolveTerm(term, ctx)...)
	}
	return out
}

func (s *Store) resolveSingle(expr TypeExpr, ctx resolveContext) (Type, bool) {
	types := s.resolve(expr, ctx)
	if len(types) == 0 {
		return Type{}, false
	}
	return types[0], true
}

func (s *Store) resolveTerm(term TypeTerm, ctx resolveContext) []Type {
	var out []Type
	switch term.Name {
	case "self":
		if !ctx.self.IsZero() {
			out = append(out, ctx.self)
		}
	case "instance":
		if !ctx.self.IsZero() {
			out = append(out, Type{Name: ctx.self.Name, Args: ctx.self.Args})
		}
	case "class":
		switch {
		case ctx.self.IsZero():
		case ctx.self.Singleton:
			out = append(out, Instance("Class"))
		default:
			out = append(out, SingletonOf(ctx.self.Name))
		}
	case "bool":
		out = append(out, Instance(TrueClass), Instance(FalseClass))
	case "nil":
		out = append(out, Instance(NilClass))
	case "void", "untyped", "top":
	case "block":
		out = append(out, ctx.block...)
	default:
		if bound, ok := ctx.env[term.Name]; ok {
			if !bound.IsZero() {
				out = append(out, bound)
			}
			break
		}
		var args []Type
		for _, a := range term.Args {
			arg, _ := s.resolveSingle(a, ctx)
			args = append(args, arg)
		}
		out = append(out, Instance(term.Name, args...))
	}
	if term.Optional {
		out = append(out, Instance(NilClass))
	}
	return out
}
