package completion

import (
	"fmt"

	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TypeProviderOptions configures a TypeProvider.
type TypeProviderOptions struct {
	Store    *signature.Store
	Commands *command.Registry
	Filter   *EncodingFilter
	// Fallback answers requests while the store is still loading. When
	// nil, requests are analysed against whatever has been loaded.
	Fallback Provider
	Logger   *zap.Logger
}

// TypeProvider completes by statically inferring the type of the receiver
// in the text before the cursor. Nothing is evaluated.
type TypeProvider struct {
	store    *signature.Store
	commands *command.Registry
	filter   *EncodingFilter
	fallback Provider
	logger   *zap.Logger
}

var _ Provider = (*TypeProvider)(nil)

// NewTypeProvider creates a TypeProvider.
func NewTypeProvider(opts TypeProviderOptions) *TypeProvider {
	if opts.Store == nil {
		opts.Store = signature.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &TypeProvider{
		store:    opts.Store,
		commands: opts.Commands,
		filter:   opts.Filter,
		fallback: opts.Fallback,
		logger:   opts.Logger,
	}
}

// Name implements Provider.
func (p *TypeProvider) Name() string {
	return "ReplTypeCompletor"
}

// String describes the provider and the state of its knowledge base.
func (p *TypeProvider) String() string {
	if !p.store.Loaded() {
		return "ReplTypeCompletor(signatures loading)"
	}
	stats := p.store.Stats()
	return fmt.Sprintf("ReplTypeCompletor(version: %s, classes: %d, modules: %d, methods: %d)",
		p.store.Version(), stats.Classes, stats.Modules, stats.Methods)
}

// Candidates implements Provider.
//
// After a command that takes a command name, only command names are
// offered. With nothing before the target, command names are offered
// together with the analysed candidates, minus local variables. Any other
// preposing, including one ending in a statement separator, gets analysed
// candidates only.
func (p *TypeProvider) Candidates(req Request) []string {
	if p.commands != nil && p.commands.IsCommandArgumentPosition(req.Preposing) {
		return commandCandidates(p.commands, req.Target)
	}
	if p.useFallback() {
		return p.fallback.Candidates(req)
	}

	var out []string
	commandPosition := req.Preposing == ""
	if commandPosition {
		out = append(out, commandCandidates(p.commands, req.Target)...)
	}

	result, ok := analysis.Analyze(req.Code(), req.Binding, p.store)
	if !ok {
		return nonNil(out)
	}

	candidates := result.Candidates()
	if commandPosition {
		candidates = lo.Reject(candidates, func(c analysis.Candidate, _ int) bool {
			return c.Source == analysis.SourceLocal
		})
	}
	names := lo.Map(candidates, func(c analysis.Candidate, _ int) string { return c.Name })
	encodable := p.filter.Filter(names)
	if skipped := len(names) - len(encodable); skipped > 0 {
		p.logger.Debug("skipping candidates not representable in external encoding",
			zap.String("encoding", p.filter.Name()),
			zap.Int("skipped", skipped))
	}
	for _, name := range encodable {
		if candidate := replacement(req.Target, result.Prefix, name); candidate != "" {
			out = append(out, candidate)
		}
	}
	return lo.Uniq(out)
}

// DocNamespace implements Provider.
func (p *TypeProvider) DocNamespace(req Request) (string, bool) {
	if p.useFallback() {
		return p.fallback.DocNamespace(req)
	}
	result, ok := analysis.Analyze(req.Code(), req.Binding, p.store)
	if !ok {
		return "", false
	}
	return result.DocNamespace()
}

func (p *TypeProvider) useFallback() bool {
	if p.fallback == nil || p.store.Loaded() {
		return false
	}
	p.logger.Debug("signatures still loading, using fallback completion")
	return true
}

// replacement keeps the typed target and appends the rest of the name
// after the analysed prefix.
func replacement(target, prefix, name string) string {
	if len(name) < len(prefix) {
		return ""
	}
	return target + name[len(prefix):]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
