package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rivo/uniseg"
)

const (
	menuGap          = 2
	defaultMenuWidth = 80
)

// MenuOptions controls the candidate menu layout.
type MenuOptions struct {
	// Width is the terminal width; zero means 80 columns.
	Width int
	// Max caps the number of candidates shown; zero shows all.
	Max int
	// Selected is highlighted when it is one of the candidates.
	Selected string
}

// RenderMenu prints candidates in columns, filled top to bottom like a
// shell completion listing. Display widths account for wide and combining
// characters.
func RenderMenu(w io.Writer, candidates []string, opts MenuOptions) {
	if len(candidates) == 0 {
		return
	}
	width := opts.Width
	if width <= 0 {
		width = defaultMenuWidth
	}

	shown := candidates
	if opts.Max > 0 && len(shown) > opts.Max {
		shown = shown[:opts.Max]
	}

	cellWidth := 0
	for _, c := range shown {
		cellWidth = max(cellWidth, uniseg.StringWidth(c))
	}
	cellWidth += menuGap

	cols := max(1, width/cellWidth)
	rows := (len(shown) + cols - 1) / cols
	cols = (len(shown) + rows - 1) / rows

	cell := lipgloss.NewStyle().Width(cellWidth)
	columns := make([]string, 0, cols)
	for col := 0; col < cols; col++ {
		start := col * rows
		end := min(start+rows, len(shown))
		lines := make([]string, 0, end-start)
		for _, c := range shown[start:end] {
			style := NameStyle
			if c == opts.Selected {
				style = SelectedStyle
			}
			lines = append(lines, style.Render(c))
		}
		columns = append(columns, cell.Render(strings.Join(lines, "\n")))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	for _, line := range strings.Split(out, "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	if hidden := len(candidates) - len(shown); hidden > 0 {
		fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%s and %s more", SymbolMore, humanize.Comma(int64(hidden)))))
	}
}
