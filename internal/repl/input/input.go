// Package input provides the line editor of the typecomp REPL: a Bubble
// Tea component with tab completion, history navigation, reverse history
// search and syntax highlighting.
package input

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/atinylittleshell/typecomp/internal/repl/render"
)

// ResultType indicates the type of result from the input component.
type ResultType int

const (
	// ResultNone indicates no result yet (still editing).
	ResultNone ResultType = iota
	// ResultSubmit indicates the user submitted the input (Enter).
	ResultSubmit
	// ResultInterrupt indicates the user interrupted (Ctrl+C).
	ResultInterrupt
	// ResultEOF indicates end of input (Ctrl+D on empty line).
	ResultEOF
)

// Result contains the outcome of an input session.
type Result struct {
	Type ResultType
	// Value is the input text (empty for interrupt/EOF).
	Value string
}

// DocFunc renders the documentation of the target ending at the byte
// offset pos, or returns "" when there is none.
type DocFunc func(line string, pos int) string

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// Model is the Bubble Tea model of the line editor. Text editing is
// delegated to a bubbles text input; completion, history and rendering
// are handled here.
type Model struct {
	text   textinput.Model
	keymap *KeyMap
	prompt string

	completer *TabCompleter
	docHint   string
	doc       DocFunc
	panel     string

	highlighter *Highlighter

	// history is most recent first; historyIndex 0 is the line being
	// edited.
	history      []string
	historyIndex int
	savedInput   string
	search       *HistorySearchState

	width         int
	maxCandidates int

	result Result
	logger *zap.Logger
}

// Config holds configuration for creating a new Model.
type Config struct {
	Prompt string

	// HistoryValues are previous lines, most recent first.
	HistoryValues []string

	// Search backs Ctrl+R. Nil searches HistoryValues.
	Search SearchFunc

	// Completer provides tab completion. Nil disables completion.
	Completer *TabCompleter

	// Doc renders documentation for Alt+D.
	Doc DocFunc

	// Highlighter colors the line. Nil highlights code only.
	Highlighter *Highlighter

	// KeyMap provides key bindings. If nil, DefaultKeyMap is used.
	KeyMap *KeyMap

	// Width is the initial terminal width.
	Width int

	// MaxCandidates caps the candidate menu; zero shows all.
	MaxCandidates int

	// Logger for debug output. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// New creates a new input Model with the given configuration.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keymap := cfg.KeyMap
	if keymap == nil {
		keymap = DefaultKeyMap()
	}
	completer := cfg.Completer
	if completer == nil {
		completer = NewTabCompleter(nil)
	}
	highlighter := cfg.Highlighter
	if highlighter == nil {
		highlighter = NewHighlighter(nil)
	}
	search := cfg.Search
	if search == nil {
		search = SliceSearch(cfg.HistoryValues)
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}

	text := textinput.New()
	text.Prompt = ""
	text.KeyMap.Paste.SetEnabled(false)
	text.Cursor.SetMode(cursor.CursorHide)
	text.Focus()

	completer.State().Reset()

	return Model{
		text:          text,
		keymap:        keymap,
		prompt:        cfg.Prompt,
		completer:     completer,
		doc:           cfg.Doc,
		highlighter:   highlighter,
		history:       cfg.HistoryValues,
		search:        NewHistorySearchState(search),
		width:         width,
		maxCandidates: cfg.MaxCandidates,
		logger:        logger,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. It handles all input events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.result.Type != ResultNone {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.search.IsActive() {
			return m.handleSearchKey(msg)
		}
		return m.handleKeyMsg(msg)

	case pasteMsg:
		m.clearOverlays()
		return m.insert(string(msg))
	}

	return m, nil
}

// View implements tea.Model. It renders the input component.
func (m Model) View() string {
	if m.result.Type != ResultNone {
		return m.renderFinalView()
	}

	var b strings.Builder
	if m.search.IsActive() {
		b.WriteString(m.renderSearchLine())
	} else {
		value := m.text.Value()
		b.WriteString(m.prompt)
		b.WriteString(m.highlighter.HighlightWithCursor(value, runeToByteOffset(value, m.text.Position()), cursorStyle))
	}

	if state := m.completer.State(); state.IsVisible() {
		var menu strings.Builder
		render.RenderMenu(&menu, state.Suggestions(), render.MenuOptions{
			Width:    m.width,
			Max:      m.maxCandidates,
			Selected: state.CurrentSuggestion(),
		})
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(menu.String(), "\n"))
	}
	if m.docHint != "" {
		b.WriteString("\n")
		b.WriteString(render.DimStyle.Render(m.docHint))
	}
	if m.panel != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(m.panel, "\n"))
	}
	return b.String()
}

// Result returns the current result. Check Type != ResultNone to see if complete.
func (m Model) Result() Result {
	return m.result
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.text.Value()
}

// Position returns the cursor position in runes.
func (m Model) Position() int {
	return m.text.Position()
}

// SetValue sets the input text and moves cursor to end.
func (m *Model) SetValue(text string) {
	m.text.SetValue(text)
	m.text.CursorEnd()
	m.historyIndex = 0
}

// Prompt returns the current prompt string.
func (m Model) Prompt() string {
	return m.prompt
}

// Completion returns the completion state.
func (m Model) Completion() *CompletionState {
	return m.completer.State()
}

// Search returns the reverse history search state.
func (m Model) Search() *HistorySearchState {
	return m.search
}

// DocHint returns the documentation name shown after a completion.
func (m Model) DocHint() string {
	return m.docHint
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keymap.Lookup(msg)

	if action != ActionComplete && action != ActionCompleteBackward {
		m.clearOverlays()
	}

	switch action {
	case ActionSubmit:
		return m.finish(ResultSubmit, m.text.Value())

	case ActionInterrupt:
		return m.finish(ResultInterrupt, "")

	case ActionEOF:
		if m.text.Value() == "" {
			return m.finish(ResultEOF, "")
		}

	case ActionCancel:
		return m, nil

	case ActionComplete:
		return m.handleComplete()

	case ActionCompleteBackward:
		return m.handleCompleteBackward()

	case ActionHistoryPrevious:
		return m.handleHistoryPrevious()

	case ActionHistoryNext:
		return m.handleHistoryNext()

	case ActionHistorySearch:
		m.search.Start(m.text.Value(), m.text.Position())
		return m, nil

	case ActionShowDoc:
		return m.handleShowDoc()

	case ActionClearScreen:
		return m, tea.ClearScreen

	case ActionPaste:
		return m, Paste
	}

	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	return m, cmd
}

// clearOverlays hides the candidates and documentation shown below the
// line.
func (m *Model) clearOverlays() {
	m.completer.State().Reset()
	m.docHint = ""
	m.panel = ""
}

func (m Model) finish(typ ResultType, value string) (tea.Model, tea.Cmd) {
	m.clearOverlays()
	m.result = Result{Type: typ, Value: value}
	return m, tea.Quit
}

func (m Model) handleComplete() (tea.Model, tea.Cmd) {
	line, pos, ok := m.completer.HandleKey(m.text.Value(), m.text.Position(), keyTab)
	if !ok {
		return m, nil
	}
	return m.afterCompletion(line, pos)
}

func (m Model) handleCompleteBackward() (tea.Model, tea.Cmd) {
	line, pos, ok := m.completer.Back(m.text.Value(), m.text.Position())
	if !ok {
		return m, nil
	}
	return m.afterCompletion(line, pos)
}

func (m Model) afterCompletion(line string, pos int) (tea.Model, tea.Cmd) {
	m.setLine(line, pos)
	m.docHint = m.completer.HelpInfo(line, runeToByteOffset(line, pos))
	m.logger.Debug("completed", zap.String("line", line), zap.String("doc", m.docHint))
	return m, nil
}

func (m Model) handleShowDoc() (tea.Model, tea.Cmd) {
	if m.doc == nil {
		return m, nil
	}
	value := m.text.Value()
	m.panel = m.doc(value, runeToByteOffset(value, m.text.Position()))
	if m.panel == "" {
		m.panel = render.DimStyle.Render("(no documentation)")
	}
	return m, nil
}

func (m Model) handleHistoryPrevious() (tea.Model, tea.Cmd) {
	if m.historyIndex >= len(m.history) {
		return m, nil
	}
	if m.historyIndex == 0 {
		m.savedInput = m.text.Value()
	}
	m.historyIndex++
	m.text.SetValue(m.history[m.historyIndex-1])
	m.text.CursorEnd()
	return m, nil
}

func (m Model) handleHistoryNext() (tea.Model, tea.Cmd) {
	if m.historyIndex == 0 {
		return m, nil
	}
	m.historyIndex--
	if m.historyIndex == 0 {
		m.text.SetValue(m.savedInput)
	} else {
		m.text.SetValue(m.history[m.historyIndex-1])
	}
	m.text.CursorEnd()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) && !msg.Alt && len(msg.Runes) > 0 {
		m.search.Type(msg.Runes)
		return m, nil
	}
	if msg.Type == tea.KeyBackspace {
		m.search.Backspace()
		return m, nil
	}

	switch m.keymap.Lookup(msg) {
	case ActionHistorySearch:
		m.search.Older()
		return m, nil
	case ActionCompleteBackward:
		m.search.Newer()
		return m, nil
	case ActionCancel, ActionInterrupt:
		line, pos := m.search.Cancel()
		m.setLine(line, pos)
		return m, nil
	case ActionSubmit:
		m.SetValue(m.search.Accept())
		return m, nil
	}

	// Any other key accepts the match and is then handled as usual.
	m.SetValue(m.search.Accept())
	return m.handleKeyMsg(msg)
}

func (m Model) renderSearchLine() string {
	label := "(reverse-i-search)"
	if m.search.Query() != "" && m.search.MatchCount() == 0 {
		label = "(failed reverse-i-search)"
	}
	return render.DimStyle.Render(label) + "`" + m.search.Query() + cursorStyle.Render(" ") + "': " +
		m.highlighter.Highlight(m.search.CurrentMatch())
}

func (m Model) insert(text string) (tea.Model, tea.Cmd) {
	runes := sanitizeRunes([]rune(text))
	value := []rune(m.text.Value())
	pos := clamp(m.text.Position(), 0, len(value))
	line := string(value[:pos]) + string(runes) + string(value[pos:])
	m.setLine(line, pos+len(runes))
	return m, nil
}

func (m *Model) setLine(line string, pos int) {
	m.text.SetValue(line)
	m.text.SetCursor(pos)
}

func (m Model) renderFinalView() string {
	if m.result.Type == ResultInterrupt {
		return ""
	}
	return m.prompt + m.highlighter.Highlight(m.result.Value) + "\n"
}

// pasteMsg is sent when paste content is available.
type pasteMsg string

// Paste returns a command that reads from the clipboard.
func Paste() tea.Msg {
	str, err := clipboard.ReadAll()
	if err != nil {
		return nil
	}
	return pasteMsg(str)
}

// sanitizeRunes cleans up input runes by replacing tabs and newlines with spaces.
func sanitizeRunes(runes []rune) []rune {
	result := make([]rune, len(runes))
	for i, r := range runes {
		switch r {
		case '\t', '\n', '\r':
			result[i] = ' '
		default:
			result[i] = r
		}
	}
	return result
}
