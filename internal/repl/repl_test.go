package repl

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/atinylittleshell/typecomp/internal/history"
	"github.com/atinylittleshell/typecomp/internal/repl/command"
	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/atinylittleshell/typecomp/internal/repl/config"
	"github.com/atinylittleshell/typecomp/internal/signature"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func coreStore(t *testing.T) *signature.Store {
	t.Helper()
	store, err := signature.NewCoreStore()
	require.NoError(t, err)
	return store
}

// newTestREPL creates a session reading script and writing to the returned
// buffer.
func newTestREPL(t *testing.T, cfg *config.Config, script string) (*REPL, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := &bytes.Buffer{}
	r, err := NewREPL(Options{
		Config:      cfg,
		HistoryPath: filepath.Join(t.TempDir(), "history.db"),
		Store:       coreStore(t),
		Logger:      zaptest.NewLogger(t),
		In:          strings.NewReader(script),
		Out:         out,
		Version:     "1.0.0",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, out
}

func TestNewREPL_DefaultOptions(t *testing.T) {
	tmpDir := t.TempDir()

	repl, err := NewREPL(Options{
		ConfigPath:  filepath.Join(tmpDir, "nonexistent.yaml"),
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		Store:       coreStore(t),
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	require.NotNil(t, repl)
	defer repl.Close()

	assert.Equal(t, "typecomp> ", repl.Config().Prompt)
	assert.Equal(t, "info", repl.Config().LogLevel)
	assert.NotNil(t, repl.History())
	assert.Equal(t, "ReplTypeCompletor", repl.Provider().Name())
}

func TestNewREPL_WithConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	source := `
prompt: "test> "
log_level: debug
completor: regexp
locals:
  n: Integer
  "@name": String
`
	require.NoError(t, os.WriteFile(configPath, []byte(source), 0644))

	repl, err := NewREPL(Options{
		ConfigPath:  configPath,
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		Store:       coreStore(t),
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	defer repl.Close()

	assert.Equal(t, "test> ", repl.Config().Prompt)
	assert.Equal(t, "debug", repl.Config().LogLevel)
	assert.Equal(t, "RegexpCompletor", repl.Provider().Name())

	typ, ok := repl.Binding().LookupLocal("n")
	require.True(t, ok)
	assert.Equal(t, "Integer", typ)
	typ, ok = repl.Binding().LookupVariable("@name")
	require.True(t, ok)
	assert.Equal(t, "String", typ)
}

func TestNewREPL_NilLogger(t *testing.T) {
	tmpDir := t.TempDir()
	repl, err := NewREPL(Options{
		ConfigPath:  filepath.Join(tmpDir, "nonexistent.yaml"),
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		Store:       coreStore(t),
	})
	require.NoError(t, err)
	defer repl.Close()
}

func TestNewREPL_CompletorSelection(t *testing.T) {
	tests := []struct {
		name           string
		completor      string
		runtimeVersion string
		want           string
	}{
		{"signatures version", "", "", "ReplTypeCompletor"},
		{"old runtime", "", "3.3.0", "RegexpCompletor"},
		{"prerelease runtime", "", "3.4.0-preview1", "ReplTypeCompletor"},
		{"configured wins", "type", "3.3.0", "ReplTypeCompletor"},
		{"symbol style", ":regexp", "3.4.0", "RegexpCompletor"},
		{"unparseable version", "", "next", "RegexpCompletor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Completor = tt.completor
			cfg.RuntimeVersion = tt.runtimeVersion
			repl, _ := newTestREPL(t, cfg, "")
			assert.Equal(t, tt.want, repl.Provider().Name())
		})
	}
}

func TestNewREPL_UnknownCompletor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Completor = "magic"
	_, err := NewREPL(Options{
		Config:      cfg,
		HistoryPath: filepath.Join(t.TempDir(), "history.db"),
		Store:       coreStore(t),
	})
	assert.ErrorIs(t, err, completion.ErrUnknownKind)
}

func TestREPL_ProcessCommand_Empty(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")
	ctx := context.Background()

	require.NoError(t, repl.processCommand(ctx, ""))
	require.NoError(t, repl.processCommand(ctx, "   "))
	assert.Empty(t, out.String())

	entries, err := repl.History().GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestREPL_ProcessCommand_Assignment(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")
	ctx := context.Background()

	require.NoError(t, repl.processCommand(ctx, "n = 10"))
	assert.Equal(t, "=> Integer\n", out.String())

	typ, ok := repl.Binding().LookupLocal("n")
	require.True(t, ok)
	assert.Equal(t, "Integer", typ)

	out.Reset()
	require.NoError(t, repl.processCommand(ctx, "s = n.to_s; @x = s"))
	assert.Equal(t, "=> String\n", out.String())
	typ, ok = repl.Binding().LookupVariable("@x")
	require.True(t, ok)
	assert.Equal(t, "String", typ)

	entries, err := repl.History().GetRecentEntries(repl.History().SessionID(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "n = 10", entries[0].Line)
	assert.Equal(t, history.KindCode, entries[0].Kind)
	assert.Equal(t, "Integer", entries[0].Result)
}

func TestREPL_ProcessCommand_SyntaxError(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")

	require.NoError(t, repl.processCommand(context.Background(), "1 +"))
	assert.Contains(t, out.String(), "syntax error")

	entries, err := repl.History().GetRecentEntries("", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Result, "syntax error")
}

func TestREPL_ProcessCommand_SuggestsCommand(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")

	require.NoError(t, repl.processCommand(context.Background(), "shdoc"))
	assert.Contains(t, out.String(), "Did you mean? show_doc")
}

func TestREPL_HandleBuiltinCommand_Exit(t *testing.T) {
	repl, _ := newTestREPL(t, nil, "")
	ctx := context.Background()

	handled, err := repl.handleBuiltinCommand(ctx, "exit")
	assert.True(t, handled)
	assert.ErrorIs(t, err, command.ErrExit)

	handled, err = repl.handleBuiltinCommand(ctx, "quit")
	assert.True(t, handled)
	assert.ErrorIs(t, err, command.ErrExit)

	handled, err = repl.handleBuiltinCommand(ctx, "ls = 1")
	assert.False(t, handled)
	assert.NoError(t, err)

	handled, err = repl.handleBuiltinCommand(ctx, "1.abs")
	assert.False(t, handled)
	assert.NoError(t, err)
}

func TestREPL_Commands(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"help show_doc", []string{"show_doc", "Usage: show_doc Type#method", "Aliases: ?"}},
		{"help", []string{"Context", "show_source", "(alias: $)"}},
		{"help nope", []string{"unknown command: nope"}},
		{"show_cmds", []string{"Help", "IRB", "irb_info", "Show information about the session.", "Keys", "search history"}},
		{"show_doc String#upcase", []string{"String#upcase", "upcase -> String", "Returns a string containing the upcased characters"}},
		{"? 1.abs", []string{"Integer#abs", "Returns the absolute value of self."}},
		{"show_doc n", []string{"class Integer"}},
		{"show_doc Nope#nothing", []string{"no documentation found for Nope#nothing"}},
		{"show_doc", []string{"Usage: show_doc Type#method"}},
		{"show_source String#upcase", []string{"From: core.yaml", "upcase -> String"}},
		{"$ Nope", []string{"couldn't locate a definition for Nope"}},
		{"whatis [1].first", []string{"=> Integer | NilClass"}},
		{"whatis n.to_s", []string{"=> String"}},
		{"whatis 1 +", []string{"syntax error"}},
		{"ls 1", []string{"Integer#methods:", "abs", "bit_length"}},
		{"ls String", []string{"String.methods:"}},
		{"ls", []string{"Object#methods:", "locals:", "n"}},
		{"irb_info", []string{"Completion: Autocomplete, ReplTypeCompletor", "Runtime version: 3.4.0", "typecomp version: 1.0.0", "InputMethod: StdioInputMethod", "Encoding: UTF-8"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Locals = map[string]string{"n": "Integer"}
			repl, out := newTestREPL(t, cfg, "")

			require.NoError(t, repl.processCommand(context.Background(), tt.line))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestREPL_WhatisDoesNotAssign(t *testing.T) {
	repl, _ := newTestREPL(t, nil, "")

	require.NoError(t, repl.processCommand(context.Background(), "whatis x = 1"))
	_, ok := repl.Binding().LookupLocal("x")
	assert.False(t, ok)
}

func TestREPL_History(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")
	ctx := context.Background()

	for _, line := range []string{"a = 1", "b = 'x'", "a.abs", "whatis b"} {
		require.NoError(t, repl.processCommand(ctx, line))
	}

	out.Reset()
	require.NoError(t, repl.processCommand(ctx, "history 2"))
	assert.NotContains(t, out.String(), "a = 1")
	assert.Contains(t, out.String(), "a.abs")
	assert.Contains(t, out.String(), "whatis b")

	out.Reset()
	require.NoError(t, repl.processCommand(ctx, "history -g a"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "a = 1")

	out.Reset()
	require.NoError(t, repl.processCommand(ctx, "history zero"))
	assert.Contains(t, out.String(), `invalid history argument "zero"`)

	entries, err := repl.History().GetRecentEntries("", 100)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, history.KindCommand, last.Kind)
	assert.Contains(t, last.Result, "invalid history argument")
}

func TestREPL_HistoryDeleteAndClear(t *testing.T) {
	repl, out := newTestREPL(t, nil, "")
	ctx := context.Background()

	require.NoError(t, repl.processCommand(ctx, "a = 1"))
	require.NoError(t, repl.processCommand(ctx, "b = 2"))
	entries, err := repl.History().GetRecentEntries("", 10)
	require.NoError(t, err)
	require.Equal(t, "a = 1", entries[0].Line)

	require.NoError(t, repl.processCommand(ctx, fmt.Sprintf("history -d %d", entries[0].ID)))
	assert.NotContains(t, repl.historyLines(), "a = 1")
	assert.Contains(t, repl.historyLines(), "b = 2")

	require.NoError(t, repl.processCommand(ctx, "history -c"))
	assert.Contains(t, out.String(), "History cleared.")
	assert.Equal(t, []string{"history -c"}, repl.historyLines())

	out.Reset()
	require.NoError(t, repl.processCommand(ctx, "history -d x"))
	assert.Contains(t, out.String(), `invalid history id "x"`)
}

func TestREPL_LsSkipsUnencodableNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Locals = map[string]string{"counter": "Integer"}
	repl, out := newTestREPL(t, cfg, "")
	repl.binding.SetLocal("zz_bad\xff", "Integer")

	require.NoError(t, repl.processCommand(context.Background(), "ls"))
	assert.Contains(t, out.String(), "counter")
	assert.NotContains(t, out.String(), "zz_bad")
}

func TestREPL_TabCompletion(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Locals = map[string]string{"n": "Integer"}
	repl, _ := newTestREPL(t, cfg, "")

	line, pos, ok := repl.tab.HandleKey("n.bit_len", 9, '\t')
	require.True(t, ok)
	assert.Equal(t, "n.bit_length", line)
	assert.Equal(t, 12, pos)

	line, _, ok = repl.tab.HandleKey("help sh", 7, '\t')
	require.True(t, ok)
	assert.Equal(t, "help show_", line)

	line, _, ok = repl.tab.HandleKey(line, len(line), '\t')
	require.True(t, ok)
	assert.Equal(t, "help show_", line)
	require.True(t, repl.tab.State().IsVisible())
	assert.Contains(t, repl.tab.State().Suggestions(), "show_cmds")
	assert.Contains(t, repl.tab.State().Suggestions(), "show_source")
}

func TestREPL_HistoryLines(t *testing.T) {
	repl, _ := newTestREPL(t, nil, "")
	ctx := context.Background()

	for _, line := range []string{"a = 1", "b = 2", "a = 1", "a.abs"} {
		require.NoError(t, repl.processCommand(ctx, line))
	}

	lines := repl.historyLines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "a.abs", lines[0])
	assert.Len(t, lines, 3)

	matches := repl.searchHistory("a")
	assert.Contains(t, matches, "a = 1")
	assert.Contains(t, matches, "a.abs")
	assert.NotContains(t, matches, "b = 2")
}

func TestREPL_RenderDocAt(t *testing.T) {
	repl, _ := newTestREPL(t, nil, "")

	doc := repl.renderDocAt("1.abs", 5)
	assert.Contains(t, doc, "Integer#abs")
	assert.Contains(t, doc, "Returns the absolute value of self.")

	assert.Empty(t, repl.renderDocAt("(", 1))
}

func TestCompletionAdapter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Locals = map[string]string{"n": "Integer"}
	repl, _ := newTestREPL(t, cfg, "")
	adapter := &completionAdapter{provider: repl.Provider(), binding: repl.Binding()}

	line := "a = n.chr; a.encoding"
	assert.Equal(t, "String#encoding", adapter.GetHelpInfo(line, len(line)))
	assert.Empty(t, adapter.GetHelpInfo("(", 1))
	assert.Contains(t, adapter.GetCompletions("x = n.ab", 8), "n.abs")
}

func TestREPL_Run_Script(t *testing.T) {
	repl, out := newTestREPL(t, nil, "n = 10\nn.abs\n\nexit\nnot_reached\n")

	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "=> Integer"))

	entries, err := repl.History().GetRecentEntries("", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "exit", entries[2].Line)
}

func TestREPL_Run_EndOfInput(t *testing.T) {
	repl, out := newTestREPL(t, nil, "1.0")

	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, "=> Float\n", out.String())
}

func TestREPL_Run_ContextCancellation(t *testing.T) {
	repl, _ := newTestREPL(t, nil, "1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repl.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestREPL_Close(t *testing.T) {
	tmpDir := t.TempDir()
	repl, err := NewREPL(Options{
		Config:      config.DefaultConfig(),
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		Store:       coreStore(t),
	})
	require.NoError(t, err)
	assert.NoError(t, repl.Close())
}
