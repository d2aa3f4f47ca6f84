package render

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// TestMain renders without escape codes so output can be compared as text.
func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestStyledSymbol(t *testing.T) {
	for _, symbol := range []string{SymbolResult, SymbolSuccess, SymbolError, SymbolMore} {
		assert.Contains(t, StyledSymbol(symbol), symbol)
	}
	assert.Equal(t, "plain", StyledSymbol("plain"))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "=> Integer", Result("Integer"))
}
