package analysis

import (
	"strings"

	"github.com/samber/lo"

	"github.com/atinylittleshell/typecomp/internal/script/parser"
	"github.com/atinylittleshell/typecomp/internal/signature"
)

// env holds variables whose types were inferred from the code itself.
type env struct {
	locals    map[string][]signature.Type
	variables map[string][]signature.Type
}

func newEnv() *env {
	return &env{
		locals:    map[string][]signature.Type{},
		variables: map[string][]signature.Type{},
	}
}

func instance(name string) []signature.Type {
	return []signature.Type{signature.Instance(name)}
}

func uniqTypes(types []signature.Type) []signature.Type {
	return lo.UniqBy(types, func(t signature.Type) string { return t.String() })
}

// common returns the single type shared by every element, or the zero
// type when they differ.
func common(types []signature.Type) signature.Type {
	types = uniqTypes(types)
	if len(types) == 1 {
		return types[0]
	}
	return signature.Type{}
}

// assign records the effect of an assignment statement on the environment.
func (a *analyzer) assign(stmt parser.Expression) {
	as, ok := stmt.(*parser.AssignmentExpression)
	if !ok {
		return
	}
	types := a.infer(as)
	switch target := as.Target.(type) {
	case *parser.Identifier:
		a.env.locals[target.Value] = types
	case *parser.InstanceVariable:
		a.env.variables[target.Name] = types
	case *parser.GlobalVariable:
		a.env.variables[target.Name] = types
	}
}

func (a *analyzer) lookupLocal(name string) ([]signature.Type, bool) {
	if types, ok := a.env.locals[name]; ok {
		return types, true
	}
	if expr, ok := a.binding.LookupLocal(name); ok {
		return a.typesFromExpr(expr), true
	}
	return nil, false
}

func (a *analyzer) lookupVariable(name string) []signature.Type {
	if types, ok := a.env.variables[name]; ok {
		return types
	}
	if vl, ok := a.binding.(VariableLister); ok {
		if expr, ok := vl.LookupVariable(name); ok {
			return a.typesFromExpr(expr)
		}
	}
	if strings.HasPrefix(name, "$") {
		types, _ := a.store.GlobalType(name)
		return types
	}
	return nil
}

// infer returns the possible types of expr. An empty result means the
// type is unknown.
func (a *analyzer) infer(expr parser.Expression) []signature.Type {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		return instance("Integer")
	case *parser.FloatLiteral:
		return instance("Float")
	case *parser.StringLiteral:
		return instance("String")
	case *parser.SymbolLiteral:
		return instance("Symbol")
	case *parser.NilLiteral:
		return instance(signature.NilClass)
	case *parser.BooleanLiteral:
		if e.Value {
			return instance(signature.TrueClass)
		}
		return instance(signature.FalseClass)
	case *parser.SelfExpression:
		return []signature.Type{a.self}
	case *parser.ArrayLiteral:
		var elems []signature.Type
		for _, el := range e.Elements {
			elems = append(elems, a.infer(el)...)
		}
		return []signature.Type{signature.Instance("Array", common(elems))}
	case *parser.HashLiteral:
		var keys, values []signature.Type
		for _, pair := range e.Pairs {
			keys = append(keys, a.infer(pair.Key)...)
			values = append(values, a.infer(pair.Value)...)
		}
		return []signature.Type{signature.Instance("Hash", common(keys), common(values))}
	case *parser.RangeExpression:
		return []signature.Type{signature.Instance("Range", common(a.infer(e.Left)))}
	case *parser.LambdaLiteral, *parser.BlockLiteral:
		return instance("Proc")
	case *parser.Identifier:
		if types, ok := a.lookupLocal(e.Value); ok {
			return types
		}
		return a.callTypes([]signature.Type{a.self}, e.Value, false, nil)
	case *parser.Constant:
		path, ok := e.Path()
		if !ok {
			return nil
		}
		types, _ := a.store.ConstantType(path)
		return types
	case *parser.InstanceVariable:
		return a.lookupVariable(e.Name)
	case *parser.GlobalVariable:
		return a.lookupVariable(e.Name)
	case *parser.CallExpression:
		return a.inferCall(e)
	case *parser.IndexExpression:
		return a.callTypes(a.infer(e.Left), "[]", false, nil)
	case *parser.UnaryExpression:
		switch e.Operator {
		case "!", "not":
			return []signature.Type{signature.Instance(signature.TrueClass), signature.Instance(signature.FalseClass)}
		case "-":
			right := a.infer(e.Right)
			if types := a.callTypes(right, "-@", false, nil); len(types) > 0 {
				return types
			}
			return right
		}
		return a.infer(e.Right)
	case *parser.BinaryExpression:
		switch e.Operator {
		case "&&", "||", "and", "or":
			return uniqTypes(append(a.infer(e.Left), a.infer(e.Right)...))
		}
		return a.callTypes(a.infer(e.Left), e.Operator, false, nil)
	case *parser.TernaryExpression:
		return uniqTypes(append(a.infer(e.Consequence), a.infer(e.Alternative)...))
	case *parser.AssignmentExpression:
		switch e.Operator {
		case "=":
			return a.infer(e.Value)
		case "||=", "&&=":
			return uniqTypes(append(a.infer(e.Target), a.infer(e.Value)...))
		}
		return a.callTypes(a.infer(e.Target), strings.TrimSuffix(e.Operator, "="), false, nil)
	case *parser.GroupedExpression:
		if len(e.Body) == 0 {
			return instance(signature.NilClass)
		}
		for _, stmt := range e.Body[:len(e.Body)-1] {
			a.assign(stmt)
		}
		return a.infer(e.Body[len(e.Body)-1])
	}
	return nil
}

func (a *analyzer) callTypes(recv []signature.Type, method string, hasBlock bool, block []signature.Type) []signature.Type {
	var out []signature.Type
	for _, t := range recv {
		out = append(out, a.store.ReturnType(t, method, hasBlock, block)...)
	}
	return uniqTypes(out)
}

func (a *analyzer) inferCall(e *parser.CallExpression) []signature.Type {
	recv := []signature.Type{a.self}
	if e.Receiver != nil {
		recv = a.infer(e.Receiver)
	}

	nilable := false
	if e.SafeNav {
		recv = lo.Filter(recv, func(t signature.Type, _ int) bool {
			if t.Name == signature.NilClass && !t.Singleton {
				nilable = true
				return false
			}
			return true
		})
	}

	hasBlock := e.Block != nil || e.BlockArg != nil
	var block []signature.Type
	switch {
	case e.Block != nil:
		block = a.inferBlock(recv, e)
	case e.BlockArg != nil:
		if sym, ok := e.BlockArg.(*parser.SymbolLiteral); ok {
			block = a.callTypes(a.yieldedTypes(recv, e.Method), sym.Value, false, nil)
		}
	}

	out := a.callTypes(recv, e.Method, hasBlock, block)
	if nilable {
		out = uniqTypes(append(out, signature.Instance(signature.NilClass)))
	}
	return out
}

// inferBlock types the value of a block body with its parameters bound.
func (a *analyzer) inferBlock(recv []signature.Type, e *parser.CallExpression) []signature.Type {
	saved := make(map[string][]signature.Type, len(a.env.locals))
	for k, v := range a.env.locals {
		saved[k] = v
	}
	defer func() { a.env.locals = saved }()

	for i, types := range a.blockParamTypes(recv, e.Method, e.Arguments, len(e.Block.Params)) {
		a.env.locals[e.Block.Params[i]] = types
	}
	if len(e.Block.Body) == 0 {
		return instance(signature.NilClass)
	}
	for _, stmt := range e.Block.Body[:len(e.Block.Body)-1] {
		a.assign(stmt)
	}
	return a.infer(e.Block.Body[len(e.Block.Body)-1])
}

// yieldedTypes returns the types a method passes to its block: the element
// type of the enumerator it returns without a block, or that return type
// itself when it is not enumerable.
func (a *analyzer) yieldedTypes(recv []signature.Type, method string) []signature.Type {
	var out []signature.Type
	for _, r := range a.callTypes(recv, method, false, nil) {
		if elem := a.store.ElementType(r); len(elem) > 0 {
			out = append(out, elem...)
			continue
		}
		out = append(out, r)
	}
	return uniqTypes(out)
}

// blockParamTypes types the parameters of a block given to method.
func (a *analyzer) blockParamTypes(recv []signature.Type, method string, args []parser.Expression, n int) [][]signature.Type {
	params := make([][]signature.Type, n)
	if n == 0 {
		return params
	}

	switch method {
	case "each_with_index", "with_index", "each_with_object", "with_object":
		var elems []signature.Type
		for _, r := range recv {
			elems = append(elems, a.store.ElementType(r)...)
		}
		params[0] = uniqTypes(elems)
		if n > 1 {
			if strings.Contains(method, "index") {
				params[1] = instance("Integer")
			} else if len(args) > 0 {
				params[1] = a.infer(args[0])
			}
		}
		return params
	}

	if n > 1 {
		for _, r := range recv {
			if r.Name == "Hash" && !r.Singleton && len(r.Args) == 2 {
				for i, arg := range r.Args {
					if !arg.IsZero() {
						params[i] = []signature.Type{arg}
					}
				}
				return params
			}
		}
	}

	params[0] = a.yieldedTypes(recv, method)
	return params
}
