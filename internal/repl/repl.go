// Package repl provides the interactive typecomp session. Lines are read
// with tab completion, built-in commands are dispatched through the command
// registry, and everything else is evaluated statically against the
// session binding.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/typecomp/internal/core"
	"github.com/atinylittleshell/typecomp/internal/history"
	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/atinylittleshell/typecomp/internal/repl/config"
	"github.com/atinylittleshell/typecomp/internal/repl/input"
	"github.com/atinylittleshell/typecomp/internal/repl/render"
	"github.com/atinylittleshell/typecomp/internal/script/analysis"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/atinylittleshell/typecomp/internal/styles"
)

// storeWaitTimeout bounds how long NewREPL waits for signatures when the
// completor has to be chosen from their runtime version.
const storeWaitTimeout = 5 * time.Second

// Options configures a REPL.
type Options struct {
	// ConfigPath is the YAML configuration file. Empty means
	// ~/.typecomp/config.yaml.
	ConfigPath string
	// Config, when set, is used instead of loading ConfigPath. ConfigPath
	// is then only reported by irb_info.
	Config *config.Config
	// HistoryPath is the history database. Empty means the configured
	// history_file, then ~/.typecomp/history.db.
	HistoryPath string
	// NoHistory disables the history database.
	NoHistory bool
	// Store is the signature knowledge base. When nil, the core and user
	// signatures are loaded in the background.
	Store   *signature.Store
	Logger  *zap.Logger
	In      io.Reader
	Out     io.Writer
	Version string
}

// REPL is one interactive session.
type REPL struct {
	config     *config.Config
	configPath string
	logger     *zap.Logger

	store    *signature.Store
	binding  *analysis.StaticBinding
	commands *command.Registry
	provider completion.Provider
	filter   *completion.EncodingFilter
	history  *history.HistoryManager
	tab      *input.TabCompleter

	in          io.Reader
	out         io.Writer
	inputMethod string
	version     string
	startedAt   time.Time
}

// NewREPL creates a session from opts.
func NewREPL(opts Options) (*REPL, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := opts.Config
	configPath := opts.ConfigPath
	if cfg == nil {
		path := opts.ConfigPath
		if path == "" {
			path = core.ConfigFile()
		}
		result, err := config.NewLoader(logger).LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = result.Config
		configPath = result.Path
	}

	store := opts.Store
	if store == nil {
		store = signature.NewStore()
		paths := append(core.SignatureFiles(), cfg.SignaturePaths...)
		store.LoadAsync(logger, paths...)
	}

	r := &REPL{
		config:     cfg,
		configPath: configPath,
		logger:     logger,
		store:      store,
		binding:    newBinding(cfg),
		commands:   command.Default(),
		in:         opts.In,
		out:        opts.Out,
		version:    opts.Version,
		startedAt:  time.Now(),
	}
	if r.in == nil {
		r.in = os.Stdin
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	r.registerCommands()

	if cfg.Completor == "" && cfg.RuntimeVersion == "" {
		// The default completor depends on the runtime version declared by
		// the signatures.
		ctx, cancel := context.WithTimeout(context.Background(), storeWaitTimeout)
		if err := store.Wait(ctx); err != nil {
			logger.Warn("signatures not loaded in time", zap.Error(err))
		}
		cancel()
	}

	provider, err := completion.New(completion.Options{
		Kind:           cfg.Completor,
		RuntimeVersion: cfg.RuntimeVersion,
		Store:          store,
		Commands:       r.commands,
		Encoding:       cfg.Encoding,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion provider: %w", err)
	}
	r.provider = provider
	// completion.New has already validated the encoding.
	r.filter, _ = completion.NewEncodingFilter(cfg.Encoding)
	r.tab = input.NewTabCompleter(&completionAdapter{provider: provider, binding: r.binding})

	historyPath := opts.HistoryPath
	if historyPath == "" {
		historyPath = cfg.HistoryFile
	}
	if historyPath == "" {
		historyPath = core.HistoryFile()
	}
	if !opts.NoHistory {
		historyManager, err := history.NewHistoryManager(historyPath)
		if err != nil {
			logger.Warn("history disabled", zap.String("path", historyPath), zap.Error(err))
		}
		r.history = historyManager
	}

	logger.Debug("repl created",
		zap.String("completor", provider.Name()),
		zap.String("config", configPath),
		zap.String("history", historyPath))
	return r, nil
}

// newBinding seeds the session binding from the configuration.
func newBinding(cfg *config.Config) *analysis.StaticBinding {
	b := analysis.NewStaticBinding()
	b.SetSelf(cfg.Self)
	for name, typ := range cfg.Locals {
		if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "$") {
			b.SetVariable(name, typ)
			continue
		}
		b.SetLocal(name, typ)
	}
	return b
}

// Config returns the configuration the session runs with.
func (r *REPL) Config() *config.Config {
	return r.config
}

// History returns the history manager, or nil when history is disabled.
func (r *REPL) History() *history.HistoryManager {
	return r.history
}

// Binding returns the session binding.
func (r *REPL) Binding() *analysis.StaticBinding {
	return r.binding
}

// Provider returns the active completion provider.
func (r *REPL) Provider() completion.Provider {
	return r.provider
}

// Close releases the history database.
func (r *REPL) Close() error {
	if r.history == nil {
		return nil
	}
	return r.history.Close()
}

// Run reads and processes lines until end of input, an exit command, or
// cancellation of ctx.
func (r *REPL) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reader, err := r.newLineReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	if r.inputMethod == inputMethodTerminal {
		r.showWelcomeScreen()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		reader.SetPrompt(r.getPrompt())
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := r.processCommand(ctx, line); err != nil {
			if errors.Is(err, command.ErrExit) {
				return nil
			}
			return err
		}
	}
}

// Execute processes one line as if it had been typed at the prompt.
// It returns command.ErrExit for an exit command.
func (r *REPL) Execute(ctx context.Context, line string) error {
	return r.processCommand(ctx, line)
}

func (r *REPL) getPrompt() string {
	return r.config.Prompt
}

// processCommand handles one input line: a built-in command or code.
func (r *REPL) processCommand(ctx context.Context, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	r.logger.Debug("processing line", zap.String("line", trimmed))

	handled, err := r.handleBuiltinCommand(ctx, trimmed)
	if handled {
		return err
	}

	r.evaluate(trimmed)
	return nil
}

// evaluate statically runs code, carries its assignments into the session
// binding and echoes the inferred type.
func (r *REPL) evaluate(code string) {
	ev, err := analysis.Evaluate(code, r.binding, r.store)
	if err != nil {
		fmt.Fprintln(r.out, styles.ERROR(err.Error()))
		r.record(code, history.KindCode, err.Error())
		return
	}

	for _, as := range ev.Assignments {
		if len(as.Types) == 0 {
			continue
		}
		typ := signature.Union(as.Types)
		if as.Local {
			r.binding.SetLocal(as.Name, typ)
		} else {
			r.binding.SetVariable(as.Name, typ)
		}
	}

	result := ev.Type()
	fmt.Fprintln(r.out, render.Result(result))
	if len(ev.Types) == 0 && len(ev.Assignments) == 0 {
		r.suggestCommand(code)
	}
	r.record(code, history.KindCode, result)
}

// suggestCommand prints "did you mean" for a single word that looks like a
// mistyped command.
func (r *REPL) suggestCommand(code string) {
	if strings.ContainsAny(code, " .()") {
		return
	}
	if _, ok := r.binding.LookupLocal(code); ok {
		return
	}
	if suggestions := r.commands.Suggest(code); len(suggestions) > 0 {
		fmt.Fprintln(r.out, styles.HINT("Did you mean? "+strings.Join(suggestions, ", ")))
	}
}

func (r *REPL) record(line string, kind history.EntryKind, result string) {
	if r.history == nil {
		return
	}
	if _, err := r.history.Add(line, kind, result); err != nil {
		r.logger.Warn("failed to record history", zap.Error(err))
	}
}

func (r *REPL) termWidth() int {
	if f, ok := r.in.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
