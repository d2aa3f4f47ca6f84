package completion

import (
	"regexp"
	"sort"
	"strings"

	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
	"github.com/atinylittleshell/typecomp/internal/script/lexer"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/samber/lo"
)

// RegexpProvider completes by matching the target against a fixed set of
// receiver shapes, such as a string literal or a local variable followed by
// a dot. It only looks at the target word.
type RegexpProvider struct {
	store    *signature.Store
	commands *command.Registry
	filter   *EncodingFilter
}

var _ Provider = (*RegexpProvider)(nil)

// NewRegexpProvider creates a RegexpProvider.
func NewRegexpProvider(store *signature.Store, commands *command.Registry, filter *EncodingFilter) *RegexpProvider {
	if store == nil {
		store = signature.NewStore()
	}
	return &RegexpProvider{store: store, commands: commands, filter: filter}
}

// Name implements Provider.
func (p *RegexpProvider) Name() string {
	return "RegexpCompletor"
}

var (
	stringReceiver  = regexp.MustCompile(`^("[^"]*"|'[^']*')\.([^.]*)$`)
	symbolReceiver  = regexp.MustCompile(`^(:[^:.]+)\.([^.]*)$`)
	floatReceiver   = regexp.MustCompile(`^(-?\d[\d_]*\.\d[\d_]*(?:[eE][+-]?\d+)?)\.([^.]*)$`)
	integerReceiver = regexp.MustCompile(`^(-?(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|\d[\d_]*))\.([^.]*)$`)
	arrayReceiver   = regexp.MustCompile(`^(\[.*\])\.([^.]*)$`)
	hashReceiver    = regexp.MustCompile(`^(\{.*\})\.([^.]*)$`)
	topConstant     = regexp.MustCompile(`^::([A-Z][^:.(]*)$`)
	scopedConstant  = regexp.MustCompile(`^([A-Z][\w:]*)::([^:.]*)$`)
	globalVariable  = regexp.MustCompile(`^(\$[^.]*)$`)
	instanceVar     = regexp.MustCompile(`^(@[^.]*)$`)
	wordReceiver    = regexp.MustCompile(`^([^.&]+)(\.|&\.)([^.]*)$`)
)

// match is a recognised target: the text kept before the completed name,
// the candidate names and the receiver types for doc lookup.
type match struct {
	head     string
	prefix   string
	names    []string
	receiver []signature.Type
	scope    string
	ident    bool
}

// Candidates implements Provider.
func (p *RegexpProvider) Candidates(req Request) []string {
	if p.commands != nil && p.commands.IsCommandArgumentPosition(req.Preposing) {
		return commandCandidates(p.commands, req.Target)
	}
	var out []string
	commandPosition := req.Preposing == ""
	if commandPosition {
		out = append(out, commandCandidates(p.commands, req.Target)...)
	}

	m, ok := p.match(req.Target, req.Binding, !commandPosition)
	if !ok {
		return nonNil(out)
	}
	names := lo.Filter(m.names, func(name string, _ int) bool { return strings.HasPrefix(name, m.prefix) })
	for _, name := range p.filter.Filter(names) {
		out = append(out, m.head+name)
	}
	return lo.Uniq(out)
}

// DocNamespace implements Provider.
func (p *RegexpProvider) DocNamespace(req Request) (string, bool) {
	m, ok := p.match(req.Target, req.Binding, true)
	if !ok || m.prefix == "" {
		return "", false
	}
	if m.scope != "" || m.ident && startsWithUpper(m.prefix) {
		path := m.prefix
		if m.scope != "" {
			path = m.scope + "::" + m.prefix
		}
		if _, ok := p.store.ConstantType(path); ok {
			return path, true
		}
	}
	if m.ident && req.Binding != nil {
		if typ, ok := req.Binding.LookupLocal(m.prefix); ok {
			if types := p.resolve(typ); len(types) > 0 {
				return types[0].Name, true
			}
		}
	}
	for _, t := range m.receiver {
		ref, ok := p.store.FindMethod(t, m.prefix)
		if !ok || (ref.Private && !m.ident) {
			continue
		}
		return ref.Namespace(), true
	}
	return "", false
}

func (p *RegexpProvider) match(target string, b analysis.Binding, withLocals bool) (match, bool) {
	literal := func(re *regexp.Regexp, t signature.Type) (match, bool) {
		sm := re.FindStringSubmatch(target)
		if sm == nil {
			return match{}, false
		}
		return match{
			head:     sm[1] + ".",
			prefix:   sm[2],
			names:    p.store.Methods(t, false),
			receiver: []signature.Type{t},
		}, true
	}

	for _, lit := range []struct {
		re *regexp.Regexp
		t  signature.Type
	}{
		{stringReceiver, signature.Instance("String")},
		{symbolReceiver, signature.Instance("Symbol")},
		{floatReceiver, signature.Instance("Float")},
		{integerReceiver, signature.Instance("Integer")},
		{arrayReceiver, signature.Instance("Array", signature.Type{})},
		{hashReceiver, signature.Instance("Hash", signature.Type{}, signature.Type{})},
	} {
		if m, ok := literal(lit.re, lit.t); ok {
			return m, true
		}
	}

	if sm := topConstant.FindStringSubmatch(target); sm != nil {
		return match{head: "::", prefix: sm[1], names: p.store.Constants(""), scope: ""}, true
	}
	if sm := scopedConstant.FindStringSubmatch(target); sm != nil {
		scope := sm[1]
		singleton := signature.SingletonOf(scope)
		return match{
			head:     scope + "::",
			prefix:   sm[2],
			names:    append(p.store.Constants(scope), p.store.Methods(singleton, false)...),
			receiver: []signature.Type{singleton},
			scope:    scope,
		}, true
	}
	if sm := globalVariable.FindStringSubmatch(target); sm != nil {
		names := p.store.Globals()
		if vl, ok := b.(analysis.VariableLister); ok {
			names = append(names, vl.GlobalVariables()...)
		}
		sort.Strings(names)
		return match{prefix: sm[1], names: names}, true
	}
	if sm := instanceVar.FindStringSubmatch(target); sm != nil {
		var names []string
		if vl, ok := b.(analysis.VariableLister); ok {
			names = vl.InstanceVariables()
		}
		return match{prefix: sm[1], names: names}, true
	}
	if sm := wordReceiver.FindStringSubmatch(target); sm != nil {
		recv, op, prefix := sm[1], sm[2], sm[3]
		types := p.receiverTypes(recv, b)
		var names []string
		if len(types) == 0 {
			names = p.store.AllMethodNames()
		}
		for _, t := range types {
			names = append(names, p.store.Methods(t, false)...)
			if b != nil {
				names = append(names, b.Members(memberKey(t))...)
			}
		}
		sort.Strings(names)
		return match{head: recv + op, prefix: prefix, names: names, receiver: types}, true
	}
	if strings.ContainsAny(target, ".:") {
		return match{}, false
	}

	self := p.self(b)
	var names []string
	if withLocals && b != nil {
		names = append(names, b.Locals()...)
	}
	names = append(names, p.store.Methods(self, true)...)
	if b != nil {
		names = append(names, b.Members(memberKey(self))...)
	}
	names = append(names, lexer.Keywords()...)
	if target == "" || startsWithUpper(target) {
		names = append(names, p.store.Constants("")...)
	}
	sort.Strings(names)
	return match{prefix: target, names: names, receiver: []signature.Type{self}, ident: true}, true
}

// receiverTypes types a bare receiver word: a local variable with a
// recorded type, a constant, self or a literal keyword.
func (p *RegexpProvider) receiverTypes(recv string, b analysis.Binding) []signature.Type {
	switch recv {
	case "self":
		return []signature.Type{p.self(b)}
	case "nil":
		return []signature.Type{signature.Instance(signature.NilClass)}
	case "true":
		return []signature.Type{signature.Instance(signature.TrueClass)}
	case "false":
		return []signature.Type{signature.Instance(signature.FalseClass)}
	}
	if b != nil {
		if typ, ok := b.LookupLocal(recv); ok {
			return p.resolve(typ)
		}
	}
	if startsWithUpper(recv) {
		if types, ok := p.store.ConstantType(recv); ok {
			return types
		}
	}
	return nil
}

func (p *RegexpProvider) self(b analysis.Binding) signature.Type {
	if b != nil {
		if types := p.resolve(b.ReceiverType()); len(types) > 0 {
			return types[0]
		}
	}
	return signature.Instance("Object")
}

func (p *RegexpProvider) resolve(typ string) []signature.Type {
	if typ == "" {
		return nil
	}
	expr, err := signature.ParseTypeExpr(typ)
	if err != nil {
		return nil
	}
	return p.store.Resolve(expr, signature.Instance("Object"))
}

func memberKey(t signature.Type) string {
	if t.Singleton {
		return t.String()
	}
	return t.Name
}

func startsWithUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
