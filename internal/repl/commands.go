package repl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/atinylittleshell/typecomp/internal/history"
	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/atinylittleshell/typecomp/internal/repl/input"
	"github.com/atinylittleshell/typecomp/internal/repl/render"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/atinylittleshell/typecomp/internal/styles"
)

const defaultHistoryCount = 20

var (
	instanceMethodName  = regexp.MustCompile(`\A([A-Z][\w:]*)#(\S+)\z`)
	singletonMethodName = regexp.MustCompile(`\A([A-Z][\w:]*)\.(\S+)\z`)
	constantName        = regexp.MustCompile(`\A[A-Z][\w:]*\z`)
)

// registerCommands attaches the session handlers to the default commands.
func (r *REPL) registerCommands() {
	handlers := map[string]command.Handler{
		"exit":        r.handleExit,
		"help":        r.handleHelp,
		"show_cmds":   r.handleShowCommands,
		"show_doc":    r.handleShowDoc,
		"show_source": r.handleShowSource,
		"ls":          r.handleLs,
		"whatis":      r.handleWhatis,
		"irb_info":    r.handleInfo,
		"history":     r.handleHistory,
	}
	for name, h := range handlers {
		if err := r.commands.SetHandler(name, h); err != nil {
			r.logger.Warn("failed to register command handler", zap.String("command", name), zap.Error(err))
		}
	}
}

// handleBuiltinCommand runs line when it is a built-in command.
// Returns true if the line was handled, and ErrExit if the REPL should exit.
func (r *REPL) handleBuiltinCommand(ctx context.Context, line string) (bool, error) {
	if !r.commands.IsCommand(line) {
		return false, nil
	}

	err := r.commands.Run(ctx, line)
	result := ""
	if err != nil && !errors.Is(err, command.ErrExit) {
		result = err.Error()
		fmt.Fprintln(r.out, styles.ERROR(err.Error()))
	}
	r.record(line, history.KindCommand, result)

	if errors.Is(err, command.ErrExit) {
		return true, err
	}
	return true, nil
}

func (r *REPL) printSuggestions(name string) {
	if suggestions := r.commands.Suggest(name); len(suggestions) > 0 {
		fmt.Fprintln(r.out, styles.HINT("Did you mean? "+strings.Join(suggestions, ", ")))
	}
}

func (r *REPL) handleExit(context.Context, []string) error {
	return command.ErrExit
}

// handleHelp describes one command, or lists them all.
func (r *REPL) handleHelp(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return r.handleShowCommands(ctx, nil)
	}
	cmd, ok := r.commands.Lookup(args[0])
	if !ok {
		r.printSuggestions(args[0])
		return fmt.Errorf("%w: %s", command.ErrUnknownCommand, args[0])
	}

	fmt.Fprintln(r.out, render.HeaderStyle.Render(cmd.Name))
	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	fmt.Fprintf(r.out, "Usage: %s\n", usage)
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(r.out, "Aliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, cmd.Description)
	return nil
}

// handleShowCommands lists the commands grouped by category.
func (r *REPL) handleShowCommands(context.Context, []string) error {
	commands := r.commands.Commands()
	width := lo.Max(lo.Map(commands, func(c command.Command, _ int) int { return len(c.Name) }))

	category := ""
	for _, c := range commands {
		if c.Category != category {
			if category != "" {
				fmt.Fprintln(r.out)
			}
			category = c.Category
			fmt.Fprintln(r.out, render.HeaderStyle.Render(category))
		}
		description := c.Description
		if len(c.Aliases) > 0 {
			description += render.DimStyle.Render(" (alias: " + strings.Join(c.Aliases, ", ") + ")")
		}
		fmt.Fprintf(r.out, "  %-*s  %s\n", width, c.Name, description)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, render.HeaderStyle.Render("Keys"))
	for _, b := range input.DefaultKeyMap().Help() {
		fmt.Fprintf(r.out, "  %-*s  %s\n", width, b.Help().Key, b.Help().Desc)
	}
	return nil
}

func (r *REPL) handleShowDoc(_ context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: show_doc Type#method")
		return nil
	}
	for _, name := range args {
		entry, ok := r.lookupDoc(name)
		if !ok {
			return fmt.Errorf("no documentation found for %s", name)
		}
		render.RenderDoc(r.out, entry, r.termWidth())
	}
	return nil
}

func (r *REPL) handleShowSource(_ context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: show_source Type#method")
		return nil
	}
	entry, ok := r.lookupDoc(args[0])
	if !ok {
		return fmt.Errorf("couldn't locate a definition for %s", args[0])
	}
	render.RenderSource(r.out, entry)
	return nil
}

// lookupDoc finds the documentation of a method, class or constant.
// Anything that is not already a documentation name, such as `1.abs` or a
// local variable, is resolved through the completion provider first.
func (r *REPL) lookupDoc(name string) (render.DocEntry, bool) {
	if entry, ok := r.lookupNamespace(name); ok {
		return entry, true
	}
	ns, ok := r.provider.DocNamespace(completion.Request{Target: name, Binding: r.binding})
	if !ok || ns == name {
		return render.DocEntry{}, false
	}
	return r.lookupNamespace(ns)
}

func (r *REPL) lookupNamespace(name string) (render.DocEntry, bool) {
	if m := instanceMethodName.FindStringSubmatch(name); m != nil {
		return r.methodDoc(signature.Instance(m[1]), m[2])
	}
	if m := singletonMethodName.FindStringSubmatch(name); m != nil {
		if _, ok := r.store.Class(m[1]); ok {
			return r.methodDoc(signature.SingletonOf(m[1]), m[2])
		}
		return render.DocEntry{}, false
	}
	if constantName.MatchString(name) {
		return r.classDoc(name)
	}
	return render.DocEntry{}, false
}

func (r *REPL) methodDoc(t signature.Type, name string) (render.DocEntry, bool) {
	ref, ok := r.store.FindMethod(t, name)
	if !ok {
		return render.DocEntry{}, false
	}
	signatureLine := fmt.Sprintf("%s -> %s", ref.Method.Name, ref.Method.Returns.String())
	if ref.Method.BlockReturns != nil {
		signatureLine += fmt.Sprintf(" (with block: %s)", ref.Method.BlockReturns.String())
	}
	if ref.Private {
		signatureLine = "private " + signatureLine
	}
	return render.DocEntry{
		Namespace: ref.Namespace(),
		Signature: signatureLine,
		Doc:       ref.Method.Doc,
		Source:    ref.Method.Source,
	}, true
}

func (r *REPL) classDoc(name string) (render.DocEntry, bool) {
	c, ok := r.store.Class(name)
	if !ok {
		if types, ok := r.store.ConstantType(name); ok {
			return render.DocEntry{
				Namespace: name,
				Signature: name + ": " + signature.Union(types),
			}, true
		}
		return render.DocEntry{}, false
	}
	signatureLine := string(c.Kind) + " " + c.Name
	if c.Superclass != nil {
		signatureLine += " < " + c.Superclass.String()
	}
	return render.DocEntry{
		Namespace: c.Name,
		Signature: signatureLine,
		Doc:       c.Doc,
		Source:    c.Source,
	}, true
}

// handleLs lists the methods of self, or of the value of an expression.
func (r *REPL) handleLs(_ context.Context, args []string) error {
	var types []signature.Type
	if len(args) == 0 {
		types = r.selfTypes()
	} else {
		ev, err := analysis.Evaluate(args[0], r.binding, r.store)
		if err != nil {
			return err
		}
		types = ev.Types
	}
	if len(types) == 0 {
		fmt.Fprintln(r.out, render.DimStyle.Render("(type unknown)"))
	}

	for _, t := range types {
		methods := r.filter.Filter(r.store.Methods(t, len(args) == 0))
		header := t.Name + "#methods:"
		if t.Singleton {
			header = t.Name + ".methods:"
		}
		fmt.Fprintln(r.out, render.HeaderStyle.Render(header))
		render.RenderMenu(r.out, methods, render.MenuOptions{Width: r.termWidth()})
	}

	if len(args) == 0 {
		if locals := r.filter.Filter(r.binding.Locals()); len(locals) > 0 {
			fmt.Fprintln(r.out, render.HeaderStyle.Render("locals:"))
			render.RenderMenu(r.out, locals, render.MenuOptions{Width: r.termWidth()})
		}
		variables := r.filter.Filter(append(r.binding.InstanceVariables(), r.binding.GlobalVariables()...))
		if len(variables) > 0 {
			fmt.Fprintln(r.out, render.HeaderStyle.Render("variables:"))
			render.RenderMenu(r.out, variables, render.MenuOptions{Width: r.termWidth()})
		}
	}
	return nil
}

func (r *REPL) selfTypes() []signature.Type {
	self := r.binding.ReceiverType()
	if self == "" {
		self = "Object"
	}
	expr, err := signature.ParseTypeExpr(self)
	if err != nil {
		return []signature.Type{signature.Instance("Object")}
	}
	return r.store.Resolve(expr, signature.Instance("Object"))
}

// handleWhatis prints the inferred type of an expression without changing
// the session binding.
func (r *REPL) handleWhatis(_ context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: whatis expression")
		return nil
	}
	ev, err := analysis.Evaluate(args[0], r.binding, r.store)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, render.Result(ev.Type()))
	return nil
}

// handleInfo prints information about the session.
func (r *REPL) handleInfo(context.Context, []string) error {
	runtimeVersion := r.config.RuntimeVersion
	if runtimeVersion == "" {
		runtimeVersion = r.store.Version()
	}

	completor := r.provider.Name()
	if s, ok := r.provider.(fmt.Stringer); ok {
		completor = s.String()
	}

	inputMethod := r.inputMethod
	if inputMethod == "" {
		inputMethod = inputMethodStdio
	}

	signatures := "loading"
	if r.store.Loaded() {
		stats := r.store.Stats()
		signatures = fmt.Sprintf("%s classes, %s modules, %s methods",
			render.Count(stats.Classes), render.Count(stats.Modules), render.Count(stats.Methods))
	}

	historyFile := ""
	if r.history != nil {
		historyFile = r.history.Path()
		if fi, err := os.Stat(historyFile); err == nil {
			historyFile += " (" + render.Size(fi.Size()) + ")"
		}
	}

	render.RenderInfo(r.out, []render.InfoItem{
		{Label: "Runtime version", Value: runtimeVersion},
		{Label: "typecomp version", Value: r.version},
		{Label: "InputMethod", Value: inputMethod},
		{Label: "Completion", Value: "Autocomplete, " + completor},
		{Label: "Signatures", Value: signatures},
		{Label: "Config file", Value: r.configPath},
		{Label: "History file", Value: historyFile},
		{Label: "Encoding", Value: r.config.Encoding},
		{Label: "LANG env", Value: os.Getenv("LANG")},
		{Label: "Session started", Value: humanize.Time(r.startedAt)},
	})
	return nil
}

// handleHistory prints recent lines, optionally filtered with -g pattern.
func (r *REPL) handleHistory(_ context.Context, args []string) error {
	if r.history == nil {
		return errors.New("history is disabled")
	}

	pattern := ""
	count := defaultHistoryCount
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-c":
			if err := r.history.ResetHistory(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(r.out, "History cleared.")
			return nil
		case args[i] == "-d" && i+1 < len(args):
			id, err := strconv.ParseUint(args[i+1], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid history id %q", args[i+1])
			}
			return r.history.DeleteEntry(uint(id))
		case args[i] == "-g" && i+1 < len(args):
			pattern = args[i+1]
			i++
		default:
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid history argument %q", args[i])
			}
			count = n
		}
	}

	var entries []history.HistoryEntry
	var err error
	if pattern != "" {
		entries, err = r.history.SearchHistory(pattern, count)
		slices.Reverse(entries)
	} else {
		entries, err = r.history.GetRecentEntries("", count)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	for _, entry := range entries {
		fmt.Fprintf(r.out, "%5d: %s\n", entry.ID, entry.Line)
	}
	return nil
}

// showWelcomeScreen displays the welcome screen with configuration info.
func (r *REPL) showWelcomeScreen() {
	completor := r.provider.Name()
	if s, ok := r.provider.(fmt.Stringer); ok {
		completor = s.String()
	}
	runtimeVersion := r.config.RuntimeVersion
	if runtimeVersion == "" {
		runtimeVersion = r.store.Version()
	}
	render.RenderWelcome(r.out, render.WelcomeInfo{
		Version:        r.version,
		Completor:      completor,
		RuntimeVersion: runtimeVersion,
	}, r.termWidth())
}
