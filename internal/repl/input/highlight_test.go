package input

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestHighlightEmpty(t *testing.T) {
	h := NewHighlighter(nil)
	if got := h.Highlight(""); got != "" {
		t.Errorf("Highlight(\"\") = %q, want empty", got)
	}
	if spans := h.Spans(""); spans != nil {
		t.Errorf("Spans(\"\") = %v, want nil", spans)
	}
}

func TestHighlightSpans(t *testing.T) {
	h := NewHighlighter(nil)
	input := `x = Foo.new(1.5, "a", :sym) if @y # note`

	want := []struct {
		text  string
		class TokenClass
	}{
		{"=", TokenOperator},
		{"Foo", TokenConstant},
		{"1.5", TokenNumber},
		{`"a"`, TokenString},
		{":sym", TokenSymbol},
		{"if", TokenKeyword},
		{"@y", TokenVariable},
		{"# note", TokenComment},
	}

	spans := h.Spans(input)
	if len(spans) != len(want) {
		t.Fatalf("Spans() returned %d spans, want %d: %v", len(spans), len(want), spans)
	}
	last := 0
	for i, span := range spans {
		if span.Start < last {
			t.Errorf("span %d overlaps the previous one", i)
		}
		last = span.End
		if got := input[span.Start:span.End]; got != want[i].text || span.Class != want[i].class {
			t.Errorf("span %d = (%q, %d), want (%q, %d)", i, got, span.Class, want[i].text, want[i].class)
		}
	}
}

func TestHighlightCommandLine(t *testing.T) {
	h := NewHighlighter(func(line string) bool { return line == "  show_doc String#upcase" })

	spans := h.Spans("  show_doc String#upcase")
	if len(spans) != 1 || spans[0] != (Span{Start: 2, End: 10, Class: TokenCommand}) {
		t.Errorf("Spans() = %v, want the command word only", spans)
	}
}

func TestHighlightKeepsText(t *testing.T) {
	h := NewHighlighter(nil)
	inputs := []string{
		"[1, 2].map { |x| x * 2 }",
		`"unterminated`,
		"日本.size",
		"a &.b",
	}
	for _, input := range inputs {
		if got := ansi.Strip(h.Highlight(input)); got != input {
			t.Errorf("Highlight(%q) lost text: %q", input, got)
		}
	}
}

func TestHighlightWithCursor(t *testing.T) {
	h := NewHighlighter(nil)
	cursor := lipgloss.NewStyle()

	tests := []struct {
		input string
		pos   int
		want  string
	}{
		{"1.abs", 5, "1.abs "},
		{"1.abs", 0, "1.abs"},
		{"日本", 3, "日本"},
		{"", 0, " "},
		{"ab", 99, "ab "},
	}
	for _, tt := range tests {
		if got := ansi.Strip(h.HighlightWithCursor(tt.input, tt.pos, cursor)); got != tt.want {
			t.Errorf("HighlightWithCursor(%q, %d) = %q, want %q", tt.input, tt.pos, got, tt.want)
		}
	}
}
