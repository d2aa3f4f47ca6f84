package analysis

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Binding is the evaluation context completion runs against. Types are
// given as type expressions understood by the signature package, such as
// "Integer" or "Array[String]".
type Binding interface {
	// LookupLocal returns the type of a local variable.
	LookupLocal(name string) (string, bool)
	// Locals lists the local variable names in scope.
	Locals() []string
	// ReceiverType is the type of self. An empty string means Object.
	ReceiverType() string
	// Members lists methods defined at runtime on top of the known
	// signatures. typeName is a class name, or `singleton(Name)` for
	// methods defined on the class object.
	Members(typeName string) []string
}

// VariableLister is implemented by bindings that also know instance and
// global variables.
type VariableLister interface {
	InstanceVariables() []string
	GlobalVariables() []string
	// LookupVariable returns the type of an `@ivar` or `$gvar`.
	LookupVariable(name string) (string, bool)
}

// StaticBinding is a map-backed Binding. It is safe for concurrent use.
type StaticBinding struct {
	mu        sync.RWMutex
	locals    map[string]string
	variables map[string]string
	members   map[string][]string
	self      string
}

// NewStaticBinding returns an empty binding whose self is an Object.
func NewStaticBinding() *StaticBinding {
	return &StaticBinding{
		locals:    map[string]string{},
		variables: map[string]string{},
		members:   map[string][]string{},
	}
}

// SetLocal declares or updates a local variable.
func (b *StaticBinding) SetLocal(name, typ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locals[name] = typ
}

// SetVariable declares or updates an `@ivar` or `$gvar`.
func (b *StaticBinding) SetVariable(name, typ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.variables[name] = typ
}

// SetSelf sets the type of self.
func (b *StaticBinding) SetSelf(typ string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.self = typ
}

// AddMember records a runtime-defined method on typeName.
func (b *StaticBinding) AddMember(typeName, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !lo.Contains(b.members[typeName], name) {
		b.members[typeName] = append(b.members[typeName], name)
	}
}

// Reset removes every variable and member and restores self to Object.
func (b *StaticBinding) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locals = map[string]string{}
	b.variables = map[string]string{}
	b.members = map[string][]string{}
	b.self = ""
}

func (b *StaticBinding) LookupLocal(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typ, ok := b.locals[name]
	return typ, ok
}

func (b *StaticBinding) Locals() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := lo.Keys(b.locals)
	sort.Strings(names)
	return names
}

func (b *StaticBinding) ReceiverType() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.self
}

func (b *StaticBinding) Members(typeName string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.members[typeName]...)
}

func (b *StaticBinding) InstanceVariables() []string {
	return b.variablesWithSigil('@')
}

func (b *StaticBinding) GlobalVariables() []string {
	return b.variablesWithSigil('$')
}

func (b *StaticBinding) variablesWithSigil(sigil byte) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := lo.Filter(lo.Keys(b.variables), func(name string, _ int) bool {
		return name != "" && name[0] == sigil
	})
	sort.Strings(names)
	return names
}

func (b *StaticBinding) LookupVariable(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typ, ok := b.variables[name]
	return typ, ok
}
