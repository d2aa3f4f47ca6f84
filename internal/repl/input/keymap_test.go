package input

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionNone, "None"},
		{ActionSubmit, "Submit"},
		{ActionComplete, "Complete"},
		{ActionCompleteBackward, "CompleteBackward"},
		{ActionHistorySearch, "HistorySearch"},
		{ActionShowDoc, "ShowDoc"},
		{ActionPaste, "Paste"},
		{Action(999), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestDefaultKeyMapLookup(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, ActionSubmit},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, ActionComplete},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, ActionCompleteBackward},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, ActionHistoryPrevious},
		{"ctrl+p", tea.KeyMsg{Type: tea.KeyCtrlP}, ActionHistoryPrevious},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, ActionHistoryNext},
		{"ctrl+r", tea.KeyMsg{Type: tea.KeyCtrlR}, ActionHistorySearch},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, ActionEOF},
		{"alt+d", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}, Alt: true}, ActionShowDoc},
		{"plain rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}, ActionNone},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := km.Lookup(tt.msg); got != tt.want {
				t.Errorf("Lookup(%s) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestKeyMapSetBindingAndDisable(t *testing.T) {
	km := DefaultKeyMap()

	km.SetBinding(ActionComplete, key.NewBinding(key.WithKeys("ctrl+@")))
	if got := km.Lookup(tea.KeyMsg{Type: tea.KeyCtrlAt}); got != ActionComplete {
		t.Errorf("ctrl+@ = %v, want Complete", got)
	}

	km.Disable(ActionPaste)
	if got := km.Lookup(tea.KeyMsg{Type: tea.KeyCtrlV}); got != ActionNone {
		t.Errorf("disabled paste = %v, want None", got)
	}
	if b, ok := km.Binding(ActionPaste); !ok || b.Enabled() {
		t.Error("Binding(ActionPaste) should exist and be disabled")
	}
	for _, b := range km.Help() {
		if b.Help().Desc == "paste" {
			t.Error("Help() should skip disabled bindings")
		}
	}

	// disabling an unknown action is a no-op
	km.Disable(Action(999))
}

func TestKeyMapHelp(t *testing.T) {
	help := DefaultKeyMap().Help()
	if len(help) != int(ActionPaste) {
		t.Fatalf("Help() returned %d bindings, want %d", len(help), ActionPaste)
	}
	if help[0].Help().Key != "enter" {
		t.Errorf("first binding = %q, want enter", help[0].Help().Key)
	}
}
