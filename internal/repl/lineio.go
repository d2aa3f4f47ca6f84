package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/typecomp/internal/history"
	"github.com/atinylittleshell/typecomp/internal/repl/input"
)

const (
	inputMethodTerminal = "TerminalInputMethod"
	inputMethodStdio    = "StdioInputMethod"
)

const (
	historyNavigationLimit = 500
	historySearchLimit     = 100
)

// lineReader is the source of input lines.
type lineReader interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// newLineReader returns the line editor when the input is a terminal, and
// a plain line scanner otherwise.
func (r *REPL) newLineReader() (lineReader, error) {
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.inputMethod = inputMethodTerminal
		return &editorReader{repl: r, in: f}, nil
	}
	r.inputMethod = inputMethodStdio
	return &scriptReader{scanner: bufio.NewScanner(r.in)}, nil
}

// editorReader runs the line editor once per line.
type editorReader struct {
	repl   *REPL
	in     *os.File
	prompt string
}

func (er *editorReader) ReadLine() (string, error) {
	r := er.repl
	cfg := input.Config{
		Prompt:        er.prompt,
		HistoryValues: r.historyLines(),
		Completer:     r.tab,
		Doc:           r.renderDocAt,
		Highlighter:   input.NewHighlighter(r.commands.IsCommand),
		Width:         r.termWidth(),
		MaxCandidates: r.config.MaxCandidates,
		Logger:        r.logger,
	}
	if r.history != nil {
		cfg.Search = r.searchHistory
	}

	program := tea.NewProgram(input.New(cfg), tea.WithInput(er.in), tea.WithOutput(r.out))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("line editor failed: %w", err)
	}

	result := final.(input.Model).Result()
	switch result.Type {
	case input.ResultEOF:
		return "", io.EOF
	case input.ResultSubmit:
		return result.Value, nil
	}
	// An interrupted line is discarded.
	return "", nil
}

func (er *editorReader) SetPrompt(prompt string) {
	er.prompt = prompt
}

func (er *editorReader) Close() error {
	return nil
}

// historyLines returns recent distinct lines, most recent first.
func (r *REPL) historyLines() []string {
	if r.history == nil {
		return nil
	}
	entries, err := r.history.GetRecentEntries("", historyNavigationLimit)
	if err != nil {
		r.logger.Warn("failed to read history", zap.Error(err))
		return nil
	}
	lines := lo.Map(entries, func(e history.HistoryEntry, _ int) string { return e.Line })
	slices.Reverse(lines)
	return lo.Uniq(lines)
}

// searchHistory backs reverse history search.
func (r *REPL) searchHistory(query string) []string {
	entries, err := r.history.SearchHistory(query, historySearchLimit)
	if err != nil {
		r.logger.Warn("failed to search history", zap.String("query", query), zap.Error(err))
		return nil
	}
	return lo.Uniq(lo.Map(entries, func(e history.HistoryEntry, _ int) string { return e.Line }))
}

// scriptReader reads lines from a non-interactive input without echoing a
// prompt.
type scriptReader struct {
	scanner *bufio.Scanner
}

func (sr *scriptReader) ReadLine() (string, error) {
	if !sr.scanner.Scan() {
		if err := sr.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return sr.scanner.Text(), nil
}

func (sr *scriptReader) SetPrompt(string) {}

func (sr *scriptReader) Close() error {
	return nil
}
