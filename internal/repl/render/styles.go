// Package render formats REPL output: candidate menus, documentation
// panels and session information.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI colors used across the REPL output.
const (
	ColorCyan   = lipgloss.Color("12") // Headers and names
	ColorYellow = lipgloss.Color("11") // Types
	ColorGreen  = lipgloss.Color("10") // Success indicator
	ColorRed    = lipgloss.Color("9")  // Error indicator
	ColorGray   = lipgloss.Color("8")  // Dim/secondary
	ColorBlue   = lipgloss.Color("4")
	ColorPurple = lipgloss.Color("5")
)

const (
	SymbolResult  = "=>"
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolMore    = "…"
)

var (
	// HeaderStyle is used for panel titles
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// NameStyle is used for candidate and command names
	NameStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// TypeStyle is used for inferred types
	TypeStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	// DimStyle is used for secondary information like sources and counts
	DimStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// SelectedStyle marks the candidate the completion cycle is on
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorCyan).Reverse(true)

	// PanelStyle frames the documentation panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// StyledSymbol returns a symbol with appropriate styling applied
func StyledSymbol(symbol string) string {
	switch symbol {
	case SymbolResult:
		return DimStyle.Render(symbol)
	case SymbolSuccess:
		return SuccessStyle.Render(symbol)
	case SymbolError:
		return ErrorStyle.Render(symbol)
	case SymbolMore:
		return DimStyle.Render(symbol)
	default:
		return symbol
	}
}

// Result formats the echo of an evaluated line, `=> Type`.
func Result(typ string) string {
	return StyledSymbol(SymbolResult) + " " + TypeStyle.Render(typ)
}
