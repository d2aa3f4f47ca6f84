package input

import (
	"strings"
	"unicode/utf8"
)

// WordBreakCharacters end the fragment being completed. A dot is not a
// break so that `recv.meth` is completed as one target.
const WordBreakCharacters = " \t\n`><=;|&{("

const keyTab = '\t'

// SplitLine splits line around the cursor at pos into the text before the
// completion target, the target itself and the text after the cursor.
// pos is a byte offset and is clamped to the line.
func SplitLine(line string, pos int) (preposing, target, postposing string) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(line) {
		pos = len(line)
	}
	before := line[:pos]
	start := strings.LastIndexAny(before, WordBreakCharacters) + 1
	return before[:start], before[start:], line[pos:]
}

// CommonPrefix returns the longest prefix shared by every candidate.
func CommonPrefix(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	prefix := candidates[0]
	for _, c := range candidates[1:] {
		n := min(len(prefix), len(c))
		i := 0
		for i < n && prefix[i] == c[i] {
			i++
		}
		prefix = prefix[:i]
		if prefix == "" {
			break
		}
	}
	return prefix
}

// TabCompleter drives tab completion for a line editor.
//
// The first tab inserts the single candidate, or the longest common prefix
// of several. When nothing more can be inserted the candidates become
// visible in the completion state, and further tabs cycle through them.
type TabCompleter struct {
	provider CompletionProvider
	state    *CompletionState
}

// NewTabCompleter creates a TabCompleter.
func NewTabCompleter(provider CompletionProvider) *TabCompleter {
	return &TabCompleter{
		provider: provider,
		state:    NewCompletionState(),
	}
}

// State exposes the current completion state.
func (tc *TabCompleter) State() *CompletionState {
	return tc.state
}

// HandleKey completes at a cursor position counted in runes, as line
// editors report it. It returns ok=false for every key it does not consume.
func (tc *TabCompleter) HandleKey(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	newLine, bytePos, ok := tc.Complete(line, runeToByteOffset(line, pos), key)
	if !ok {
		return "", 0, false
	}
	return newLine, utf8.RuneCountInString(newLine[:bytePos]), true
}

// Complete is HandleKey with byte offsets.
func (tc *TabCompleter) Complete(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	if key != keyTab {
		tc.state.Reset()
		return "", 0, false
	}
	if tc.provider == nil {
		return "", 0, false
	}

	if tc.state.IsActive() && tc.state.HasMultipleCompletions() && line == tc.cycledText() {
		return tc.cycle(line, true)
	}
	tc.state.Reset()

	preposing, target, _ := SplitLine(line, pos)
	candidates := tc.provider.GetCompletions(line, pos)
	if len(candidates) == 0 {
		return "", 0, false
	}

	start := len(preposing)
	if len(candidates) == 1 {
		newLine, newPos := Splice(line, candidates[0], start, pos)
		return newLine, newPos, true
	}

	tc.state.Activate(candidates, target, start, pos)
	tc.state.SetLine(line)

	prefix := CommonPrefix(candidates)
	if len(prefix) > len(target) {
		tc.state.Reset()
		newLine, newPos := Splice(line, prefix, start, pos)
		return newLine, newPos, true
	}

	return line, pos, true
}

// Back cycles to the previous candidate. Like HandleKey it counts runes,
// and it only applies while a cycle started by tab is in progress.
func (tc *TabCompleter) Back(line string, pos int) (newLine string, newPos int, ok bool) {
	if !tc.state.IsActive() || !tc.state.HasMultipleCompletions() || line != tc.cycledText() {
		return "", 0, false
	}
	newLine, bytePos, _ := tc.cycle(line, false)
	return newLine, utf8.RuneCountInString(newLine[:bytePos]), true
}

// HelpInfo asks the provider about the target ending at the byte offset
// pos.
func (tc *TabCompleter) HelpInfo(line string, pos int) string {
	if tc.provider == nil {
		return ""
	}
	return tc.provider.GetHelpInfo(line, pos)
}

// cycle replaces the current completion with the next or previous
// candidate.
func (tc *TabCompleter) cycle(line string, forward bool) (string, int, bool) {
	var suggestion string
	if forward {
		suggestion = tc.state.NextSuggestion()
	} else {
		suggestion = tc.state.PrevSuggestion()
	}
	newLine, newPos := tc.state.Select(line, suggestion)
	return newLine, newPos, true
}

func runeToByteOffset(line string, pos int) int {
	if pos <= 0 {
		return 0
	}
	for i := range line {
		if pos == 0 {
			return i
		}
		pos--
	}
	return len(line)
}

// cycledText is the line as it was left by the last completion.
func (tc *TabCompleter) cycledText() string {
	return tc.state.Line()
}
