package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is an editor operation triggered by a key binding. Plain text
// editing (cursor movement, deletion) is left to the text input.
type Action int

const (
	// ActionNone represents no action (used when a key doesn't match any binding).
	ActionNone Action = iota

	ActionSubmit           // Enter
	ActionInterrupt        // Ctrl+C
	ActionEOF              // Ctrl+D on an empty line
	ActionCancel           // Escape
	ActionComplete         // Tab
	ActionCompleteBackward // Shift+Tab
	ActionHistoryPrevious  // Up, Ctrl+P
	ActionHistoryNext      // Down, Ctrl+N
	ActionHistorySearch    // Ctrl+R
	ActionShowDoc          // Alt+D
	ActionClearScreen      // Ctrl+L
	ActionPaste            // Ctrl+V
)

var actionNames = map[Action]string{
	ActionNone:             "None",
	ActionSubmit:           "Submit",
	ActionInterrupt:        "Interrupt",
	ActionEOF:              "EOF",
	ActionCancel:           "Cancel",
	ActionComplete:         "Complete",
	ActionCompleteBackward: "CompleteBackward",
	ActionHistoryPrevious:  "HistoryPrevious",
	ActionHistoryNext:      "HistoryNext",
	ActionHistorySearch:    "HistorySearch",
	ActionShowDoc:          "ShowDoc",
	ActionClearScreen:      "ClearScreen",
	ActionPaste:            "Paste",
}

// String returns the string representation of an Action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// KeyMap maps key presses to actions. Lookup is O(1) using an internal
// hash map built from the enabled bindings.
type KeyMap struct {
	order    []Action
	bindings map[Action]key.Binding
	lookup   map[string]Action
}

// NewKeyMap creates a KeyMap. Later bindings for the same key win.
func NewKeyMap(bindings map[Action]key.Binding) *KeyMap {
	km := &KeyMap{bindings: map[Action]key.Binding{}}
	for action := ActionSubmit; action <= ActionPaste; action++ {
		if b, ok := bindings[action]; ok {
			km.bindings[action] = b
			km.order = append(km.order, action)
		}
	}
	km.rebuildLookup()
	return km
}

func (km *KeyMap) rebuildLookup() {
	km.lookup = make(map[string]Action)
	for _, action := range km.order {
		b := km.bindings[action]
		if !b.Enabled() {
			continue
		}
		for _, k := range b.Keys() {
			km.lookup[k] = action
		}
	}
}

// DefaultKeyMap returns the default bindings, close to readline's.
func DefaultKeyMap() *KeyMap {
	return NewKeyMap(map[Action]key.Binding{
		ActionSubmit:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate the line")),
		ActionInterrupt:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "discard the line")),
		ActionEOF:              key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit on an empty line")),
		ActionCancel:           key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close the candidates")),
		ActionComplete:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		ActionCompleteBackward: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous candidate")),
		ActionHistoryPrevious:  key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous line")),
		ActionHistoryNext:      key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next line")),
		ActionHistorySearch:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "search history")),
		ActionShowDoc:          key.NewBinding(key.WithKeys("alt+d"), key.WithHelp("alt+d", "show documentation")),
		ActionClearScreen:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear the screen")),
		ActionPaste:            key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
	})
}

// Lookup returns the action bound to msg, or ActionNone.
func (km *KeyMap) Lookup(msg tea.KeyMsg) Action {
	if action, ok := km.lookup[msg.String()]; ok {
		return action
	}
	return ActionNone
}

// SetBinding replaces the binding of an action.
func (km *KeyMap) SetBinding(action Action, b key.Binding) {
	if _, ok := km.bindings[action]; !ok {
		km.order = append(km.order, action)
	}
	km.bindings[action] = b
	km.rebuildLookup()
}

// Disable turns an action off.
func (km *KeyMap) Disable(action Action) {
	b, ok := km.bindings[action]
	if !ok {
		return
	}
	b.SetEnabled(false)
	km.bindings[action] = b
	km.rebuildLookup()
}

// Binding returns the binding of an action.
func (km *KeyMap) Binding(action Action) (key.Binding, bool) {
	b, ok := km.bindings[action]
	return b, ok
}

// Help returns the enabled bindings in action order, for key listings.
func (km *KeyMap) Help() []key.Binding {
	var out []key.Binding
	for _, action := range km.order {
		if b := km.bindings[action]; b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}
