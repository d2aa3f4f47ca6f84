// Package completion implements the completion providers used by the REPL
// input loop. A provider receives the text before the fragment being
// completed (the preposing), the fragment itself (the target) and the text
// after the cursor, and returns full replacement strings for the target.
package completion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"go.uber.org/zap"
)

// ErrUnknownKind is returned for a completor name that is not supported.
var ErrUnknownKind = errors.New("unknown completor")

// Request is one completion query.
type Request struct {
	Preposing  string
	Target     string
	Postposing string
	Binding    analysis.Binding
}

// Code returns the text analysed for the request.
func (r Request) Code() string {
	return r.Preposing + r.Target
}

// Provider produces completion candidates and documentation names. Both
// methods never fail: input they cannot handle yields no candidates and no
// namespace.
type Provider interface {
	// Name identifies the provider in session info.
	Name() string
	// Candidates returns replacement strings for the target, without
	// duplicates or empty strings.
	Candidates(req Request) []string
	// DocNamespace returns `Type#method`, `Type.method` or a constant name
	// for the completed target.
	DocNamespace(req Request) (string, bool)
}

// Kind selects a provider implementation.
type Kind string

const (
	KindType   Kind = "type"
	KindRegexp Kind = "regexp"
)

// typeCompletionSince is the first runtime version where the type-aware
// provider is the default.
var typeCompletionSince = semver.MustParse("3.4.0")

// ParseKind parses a configured completor name. An empty name parses as
// the empty Kind, meaning "choose by runtime version".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	switch Kind(s) {
	case "":
		return "", nil
	case KindType, KindRegexp:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ResolveKind picks the provider kind. A configured kind always wins;
// otherwise runtimes at or above 3.4 get the type-aware provider. An
// unparseable runtime version falls back to the regexp provider and is
// reported in the error.
func ResolveKind(configured, runtimeVersion string) (Kind, error) {
	kind, err := ParseKind(configured)
	if err != nil {
		return "", err
	}
	if kind != "" {
		return kind, nil
	}
	v, err := semver.NewVersion(runtimeVersion)
	if err != nil {
		return KindRegexp, fmt.Errorf("invalid runtime version %q: %w", runtimeVersion, err)
	}
	release, err := v.SetPrerelease("")
	if err != nil {
		return KindRegexp, fmt.Errorf("invalid runtime version %q: %w", runtimeVersion, err)
	}
	if release.LessThan(typeCompletionSince) {
		return KindRegexp, nil
	}
	return KindType, nil
}

// Options configures New.
type Options struct {
	// Kind is the configured completor name, possibly empty.
	Kind string
	// RuntimeVersion decides the default when Kind is empty. It defaults
	// to the version of the loaded signatures.
	RuntimeVersion string
	Store          *signature.Store
	Commands       *command.Registry
	// Encoding is the external encoding names must be representable in.
	Encoding string
	Logger   *zap.Logger
}

// New builds the provider selected by opts.
func New(opts Options) (Provider, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = signature.NewStore()
	}
	if opts.Commands == nil {
		opts.Commands = command.Default()
	}
	if opts.RuntimeVersion == "" {
		opts.RuntimeVersion = opts.Store.Version()
	}

	filter, err := NewEncodingFilter(opts.Encoding)
	if err != nil {
		return nil, err
	}

	kind, err := ResolveKind(opts.Kind, opts.RuntimeVersion)
	if errors.Is(err, ErrUnknownKind) {
		return nil, err
	}
	if err != nil {
		opts.Logger.Warn("falling back to regexp completion", zap.Error(err))
	}
	opts.Logger.Debug("completion provider selected",
		zap.String("kind", string(kind)),
		zap.String("runtime_version", opts.RuntimeVersion))

	regexp := NewRegexpProvider(opts.Store, opts.Commands, filter)
	if kind == KindRegexp {
		return regexp, nil
	}
	return NewTypeProvider(TypeProviderOptions{
		Store:    opts.Store,
		Commands: opts.Commands,
		Filter:   filter,
		Fallback: regexp,
		Logger:   opts.Logger,
	}), nil
}

// commandCandidates returns the command names for the target.
func commandCandidates(commands *command.Registry, target string) []string {
	if commands == nil {
		return []string{}
	}
	return nonNil(commands.Complete(target))
}
