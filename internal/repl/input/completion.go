package input

// CompletionProvider supplies candidates and documentation names to the
// line editor. Positions are byte offsets into line.
type CompletionProvider interface {
	// GetCompletions returns replacements for the target returned by
	// SplitLine, or nothing.
	GetCompletions(line string, pos int) []string

	// GetHelpInfo returns the documentation name of the target, such as
	// Integer#abs, or "".
	GetHelpInfo(line string, pos int) string
}

// CompletionState is the candidate list of an ambiguous completion and the
// position of the cycle through it.
type CompletionState struct {
	active     bool
	candidates []string
	selected   int // -1 before the first cycle

	target     string // fragment as typed
	start, end int    // byte span of the fragment or its replacement
	line       string // line as last written by the completer
}

// NewCompletionState returns an inactive state.
func NewCompletionState() *CompletionState {
	return &CompletionState{selected: -1}
}

// Activate starts a cycle over candidates for the target spanning
// [start, end).
func (cs *CompletionState) Activate(candidates []string, target string, start, end int) {
	*cs = CompletionState{
		active:     true,
		candidates: candidates,
		selected:   -1,
		target:     target,
		start:      start,
		end:        end,
	}
}

// Reset ends the cycle.
func (cs *CompletionState) Reset() {
	*cs = CompletionState{selected: -1}
}

func (cs *CompletionState) IsActive() bool {
	return cs.active
}

// IsVisible reports whether there is a candidate list worth showing.
func (cs *CompletionState) IsVisible() bool {
	return cs.active && len(cs.candidates) > 1
}

func (cs *CompletionState) HasMultipleCompletions() bool {
	return len(cs.candidates) > 1
}

func (cs *CompletionState) Suggestions() []string {
	return cs.candidates
}

func (cs *CompletionState) Selected() int {
	return cs.selected
}

// Target returns the fragment the candidates complete.
func (cs *CompletionState) Target() string {
	return cs.target
}

// Span returns the byte range currently occupied by the target or the
// selected candidate.
func (cs *CompletionState) Span() (start, end int) {
	return cs.start, cs.end
}

// Line returns the line as last written by the completer.
func (cs *CompletionState) Line() string {
	return cs.line
}

func (cs *CompletionState) SetLine(line string) {
	cs.line = line
}

// CurrentSuggestion returns the selected candidate, or "".
func (cs *CompletionState) CurrentSuggestion() string {
	if !cs.active || cs.selected < 0 || cs.selected >= len(cs.candidates) {
		return ""
	}
	return cs.candidates[cs.selected]
}

// NextSuggestion selects the following candidate, wrapping around.
func (cs *CompletionState) NextSuggestion() string {
	return cs.step(1)
}

// PrevSuggestion selects the preceding candidate, wrapping around.
func (cs *CompletionState) PrevSuggestion() string {
	return cs.step(-1)
}

func (cs *CompletionState) step(delta int) string {
	n := len(cs.candidates)
	if !cs.active || n == 0 {
		return ""
	}
	if cs.selected < 0 && delta < 0 {
		cs.selected = n - 1
	} else {
		cs.selected = ((cs.selected+delta)%n + n) % n
	}
	return cs.candidates[cs.selected]
}

// Select writes candidate into line over the current span and moves the
// span's end past it.
func (cs *CompletionState) Select(line, candidate string) (newLine string, newPos int) {
	newLine, newPos = Splice(line, candidate, cs.start, cs.end)
	cs.end = newPos
	cs.line = newLine
	return newLine, newPos
}

// Cancel ends the cycle and returns the line as it was before the first
// candidate was written.
func (cs *CompletionState) Cancel() string {
	original := cs.line
	if cs.selected >= 0 {
		original, _ = Splice(cs.line, cs.target, cs.start, cs.end)
	}
	cs.Reset()
	return original
}

// Splice replaces text[start:end] with replacement and returns the result
// with the cursor after the replacement. Out of range offsets are clamped.
func Splice(text, replacement string, start, end int) (string, int) {
	end = min(max(end, 0), len(text))
	start = min(max(start, 0), end)
	return text[:start] + replacement + text[end:], start + len(replacement)
}
