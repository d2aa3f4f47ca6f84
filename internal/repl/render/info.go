package render

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// InfoItem is one labelled line of session information.
type InfoItem struct {
	Label string
	Value string
}

// RenderInfo prints items as `Label: value` lines. Items with an empty
// value are skipped.
func RenderInfo(w io.Writer, items []InfoItem) {
	for _, item := range items {
		if item.Value == "" {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", item.Label, item.Value)
	}
}

// Count formats a number with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Size formats a file size in bytes.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
