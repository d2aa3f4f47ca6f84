package input

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atinylittleshell/typecomp/internal/repl/render"
	"github.com/atinylittleshell/typecomp/internal/script/lexer"
)

// TokenClass groups lexer tokens that are highlighted alike.
type TokenClass int

const (
	TokenDefault TokenClass = iota
	TokenCommand            // a built-in command at the start of the line
	TokenKeyword
	TokenConstant
	TokenVariable // instance and global variables
	TokenNumber
	TokenString
	TokenSymbol
	TokenOperator
	TokenComment
)

// Span is a highlighted byte range of the input.
type Span struct {
	Start, End int
	Class      TokenClass
}

// Highlighter colors the line being edited.
type Highlighter struct {
	// isCommand, if set, reports whether the first word is a built-in
	// command. Command lines are not lexed as code.
	isCommand func(line string) bool

	styles map[TokenClass]lipgloss.Style
}

// NewHighlighter creates a highlighter. isCommand may be nil.
func NewHighlighter(isCommand func(line string) bool) *Highlighter {
	return &Highlighter{
		isCommand: isCommand,
		styles: map[TokenClass]lipgloss.Style{
			TokenDefault:  lipgloss.NewStyle(),
			TokenCommand:  lipgloss.NewStyle().Foreground(render.ColorGreen),
			TokenKeyword:  lipgloss.NewStyle().Foreground(render.ColorBlue).Bold(true),
			TokenConstant: lipgloss.NewStyle().Foreground(render.ColorCyan),
			TokenVariable: lipgloss.NewStyle().Foreground(render.ColorGreen),
			TokenNumber:   lipgloss.NewStyle().Foreground(render.ColorYellow),
			TokenString:   lipgloss.NewStyle().Foreground(render.ColorPurple),
			TokenSymbol:   lipgloss.NewStyle().Foreground(render.ColorYellow),
			TokenOperator: lipgloss.NewStyle().Foreground(render.ColorYellow),
			TokenComment:  lipgloss.NewStyle().Foreground(render.ColorGray),
		},
	}
}

// Spans classifies the input. Spans are sorted and never overlap; text not
// covered by a span is default text.
func (h *Highlighter) Spans(input string) []Span {
	if input == "" {
		return nil
	}

	if h.isCommand != nil && h.isCommand(input) {
		trimmed := strings.TrimLeft(input, " \t")
		start := len(input) - len(trimmed)
		end := strings.IndexAny(trimmed, " \t")
		if end < 0 {
			end = len(trimmed)
		}
		return []Span{{Start: start, End: start + end, Class: TokenCommand}}
	}

	var spans []Span
	for _, tok := range lexer.Tokenize(input) {
		class := classify(tok.Type)
		if class == TokenDefault || tok.End <= tok.Offset {
			continue
		}
		spans = append(spans, Span{Start: tok.Offset, End: min(tok.End, len(input)), Class: class})
	}
	return spans
}

func classify(t lexer.TokenType) TokenClass {
	switch {
	case lexer.IsKeyword(t):
		return TokenKeyword
	case t >= lexer.OP_ASSIGN && t <= lexer.OP_LAMBDA:
		return TokenOperator
	}
	switch t {
	case lexer.CONSTANT:
		return TokenConstant
	case lexer.IVAR, lexer.GVAR:
		return TokenVariable
	case lexer.INTEGER, lexer.FLOAT:
		return TokenNumber
	case lexer.STRING:
		return TokenString
	case lexer.SYMBOL:
		return TokenSymbol
	case lexer.COMMENT:
		return TokenComment
	}
	return TokenDefault
}

// Highlight returns the input with styles applied.
func (h *Highlighter) Highlight(input string) string {
	return h.render(input, h.Spans(input), 0, len(input))
}

// HighlightWithCursor highlights input and draws a block cursor at the byte
// offset pos. A cursor at the end of the input is drawn on a space.
func (h *Highlighter) HighlightWithCursor(input string, pos int, cursor lipgloss.Style) string {
	pos = clamp(pos, 0, len(input))
	spans := h.Spans(input)

	under := " "
	next := pos
	if pos < len(input) {
		r := []rune(input[pos:])[0]
		under = string(r)
		next = pos + len(under)
	}

	var b strings.Builder
	b.WriteString(h.render(input, spans, 0, pos))
	b.WriteString(cursor.Render(under))
	b.WriteString(h.render(input, spans, next, len(input)))
	return b.String()
}

// render writes input[from:to] with the parts of spans inside it styled.
func (h *Highlighter) render(input string, spans []Span, from, to int) string {
	var b strings.Builder
	last := from
	for _, span := range spans {
		start, end := max(span.Start, from), min(span.End, to)
		if start >= end {
			continue
		}
		if start > last {
			b.WriteString(input[last:start])
		}
		b.WriteString(h.styles[span.Class].Render(input[start:end]))
		last = end
	}
	if last < to {
		b.WriteString(input[last:to])
	}
	return b.String()
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}
