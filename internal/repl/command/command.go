// Package command holds the built-in REPL commands. The registry is shared
// by the dispatcher and the completion providers, which offer command names
// at the start of a line and after commands that take another command as
// their argument.
package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"mvdan.cc/sh/v3/shell"

	"github.com/atinylittleshell/typecomp/internal/script/lexer"
)

// ErrUnknownCommand is returned by Run for a name that is not registered.
var ErrUnknownCommand = errors.New("unknown command")

// ErrExit is returned by the exit handler to end the session.
var ErrExit = errors.New("exit requested")

// ArgKind describes what a command expects as its argument.
type ArgKind int

const (
	// ArgNone commands take no argument.
	ArgNone ArgKind = iota
	// ArgCommand commands take the name of another command.
	ArgCommand
	// ArgExpression commands take an expression, passed through verbatim.
	ArgExpression
	// ArgWords commands take shell-style words.
	ArgWords
)

// Handler runs a command with its parsed arguments.
type Handler func(ctx context.Context, args []string) error

// Command describes a built-in command.
type Command struct {
	Name        string
	Aliases     []string
	Category    string
	Description string
	Usage       string
	ArgKind     ArgKind

	handler Handler
}

// Registry is a set of commands. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: map[string]*Command{},
		aliases:  map[string]string{},
	}
}

// Default returns a registry with the standard commands. Handlers are
// attached later with SetHandler.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Command{
		{Name: "exit", Aliases: []string{"quit"}, Category: "IRB", Description: "Exit the current session."},
		{Name: "help", Category: "Help", Description: "List all available commands, or describe one.", Usage: "help [command]", ArgKind: ArgCommand},
		{Name: "show_cmds", Category: "Help", Description: "List all available commands and their description."},
		{Name: "show_doc", Aliases: []string{"?"}, Category: "Context", Description: "Look up documentation for a method or class.", Usage: "show_doc Type#method", ArgKind: ArgWords},
		{Name: "show_source", Aliases: []string{"$"}, Category: "Context", Description: "Show where a method or class is declared.", Usage: "show_source Type#method", ArgKind: ArgWords},
		{Name: "ls", Category: "Context", Description: "Show methods and locals in the current scope, or of an expression.", Usage: "ls [expression]", ArgKind: ArgExpression},
		{Name: "whatis", Category: "Context", Description: "Show the inferred type of an expression.", Usage: "whatis expression", ArgKind: ArgExpression},
		{Name: "irb_info", Category: "IRB", Description: "Show information about the session."},
		{Name: "history", Category: "IRB", Description: "Show the input history.", Usage: "history [-g pattern] [count] | -d id | -c", ArgKind: ArgWords},
	} {
		// Default commands are distinct by construction.
		_ = r.Register(c)
	}
	return r
}

// Register adds a command. Names and aliases must be unique.
func (r *Registry) Register(c Command) error {
	if c.Name == "" {
		return fmt.Errorf("command name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range append([]string{c.Name}, c.Aliases...) {
		if r.taken(name) {
			return fmt.Errorf("command %q is already registered", name)
		}
	}
	cmd := c
	r.commands[c.Name] = &cmd
	for _, alias := range c.Aliases {
		r.aliases[alias] = c.Name
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.commands[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// SetHandler attaches the function run for a command.
func (r *Registry) SetHandler(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.lookupLocked(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	cmd.handler = h
	return nil
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.lookupLocked(name)
	if !ok {
		return Command{}, false
	}
	return *cmd, true
}

func (r *Registry) lookupLocked(name string) (*Command, bool) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the sorted command names, without aliases.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.commands)
	sort.Strings(names)
	return names
}

// Commands returns every command sorted by category, then name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := lo.MapToSlice(r.commands, func(_ string, c *Command) Command { return *c })
	sort.Slice(cmds, func(i, j int) bool {
		if cmds[i].Category != cmds[j].Category {
			return cmds[i].Category < cmds[j].Category
		}
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// Complete returns the command names starting with prefix. An empty
// prefix completes nothing.
func (r *Registry) Complete(prefix string) []string {
	if prefix == "" {
		return nil
	}
	return lo.Filter(r.Names(), func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// Suggest returns registered names close to a mistyped one, best first.
func (r *Registry) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, r.Names())
	return lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
}

var argumentPosition = regexp.MustCompile(`\A(\S+)\s+\z`)

// IsCommandArgumentPosition reports whether the text before the cursor is
// a command whose argument is another command name, as in "help ".
func (r *Registry) IsCommandArgumentPosition(preposing string) bool {
	m := argumentPosition.FindStringSubmatch(preposing)
	if m == nil {
		return false
	}
	cmd, ok := r.Lookup(m[1])
	return ok && cmd.ArgKind == ArgCommand
}

// Parse splits a line into a command and its arguments. Expression
// arguments are passed through as one string; other arguments follow shell
// word rules.
func (r *Registry) Parse(line string) (Command, []string, error) {
	name, rest := splitCommandWord(line)
	cmd, ok := r.Lookup(name)
	if !ok {
		return Command{}, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	rest = strings.TrimSpace(rest)

	switch cmd.ArgKind {
	case ArgExpression:
		if rest == "" {
			return cmd, nil, nil
		}
		return cmd, []string{rest}, nil
	default:
		args, err := shell.Fields(rest, func(string) string { return "" })
		if err != nil {
			return cmd, nil, fmt.Errorf("invalid arguments to %s: %w", cmd.Name, err)
		}
		return cmd, args, nil
	}
}

// IsCommand reports whether line starts with a registered command name or
// alias followed by nothing or whitespace. Lines that assign to the command
// word, such as "ls = 1" or "ls += 1", are treated as code.
func (r *Registry) IsCommand(line string) bool {
	name, rest := splitCommandWord(line)
	if name == "" {
		return false
	}
	if _, ok := r.Lookup(name); !ok {
		return false
	}
	if tokens := lexer.Tokenize(rest); len(tokens) > 0 {
		switch tokens[0].Type {
		case lexer.OP_ASSIGN, lexer.OP_OPASSIGN:
			return false
		}
	}
	return true
}

// splitCommandWord splits off the first word of line at any whitespace.
func splitCommandWord(line string) (name, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// Run parses and executes a command line.
func (r *Registry) Run(ctx context.Context, line string) error {
	cmd, args, err := r.Parse(line)
	if err != nil {
		return err
	}
	r.mu.RLock()
	h := r.commands[cmd.Name].handler
	r.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("command %s is not available", cmd.Name)
	}
	return h(ctx, args)
}
