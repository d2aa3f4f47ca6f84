package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const minDocWidth = 20

// DocEntry is the documentation of one method or constant.
type DocEntry struct {
	// Namespace is `Type#method`, `Type.method` or a constant name.
	Namespace string
	// Signature is a one-line summary such as `abs -> Integer`.
	Signature string
	Doc       string
	// Source names the signature file the entry was declared in.
	Source string
}

// RenderDoc prints a framed documentation panel wrapped to width.
func RenderDoc(w io.Writer, entry DocEntry, width int) {
	inner := max(minDocWidth, width-4)

	var body strings.Builder
	body.WriteString(HeaderStyle.Render(entry.Namespace))
	if entry.Signature != "" {
		body.WriteString("\n")
		body.WriteString(TypeStyle.Render(wordwrap.String(entry.Signature, inner)))
	}
	body.WriteString("\n\n")
	if strings.TrimSpace(entry.Doc) == "" {
		body.WriteString(DimStyle.Render("(no documentation)"))
	} else {
		body.WriteString(indent.String(wordwrap.String(strings.TrimSpace(entry.Doc), inner-2), 2))
	}
	if entry.Source != "" {
		body.WriteString("\n\n")
		body.WriteString(DimStyle.Render("defined in " + entry.Source))
	}

	fmt.Fprintln(w, PanelStyle.Render(body.String()))
}

// RenderSource prints where an entry is declared, the way show_source does.
func RenderSource(w io.Writer, entry DocEntry) {
	source := entry.Source
	if source == "" {
		source = "(unknown)"
	}
	fmt.Fprintln(w, DimStyle.Render("From:")+" "+source)
	fmt.Fprintln(w)
	if entry.Signature != "" {
		fmt.Fprintln(w, indent.String(entry.Signature, 2))
	}
}
