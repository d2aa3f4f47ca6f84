package input

import (
	"strings"

	"github.com/samber/lo"
)

// SearchFunc returns the history lines containing query, most recent
// first.
type SearchFunc func(query string) []string

// SliceSearch searches lines held in memory, most recent first.
func SliceSearch(lines []string) SearchFunc {
	return func(query string) []string {
		return lo.Uniq(lo.Filter(lines, func(line string, _ int) bool {
			return strings.Contains(line, query)
		}))
	}
}

// HistorySearchState is the reverse incremental history search (Ctrl+R).
type HistorySearchState struct {
	search SearchFunc

	active     bool
	query      string
	matches    []string
	matchIndex int // 0 is the most recent match

	originalInput     string
	originalCursorPos int
}

// NewHistorySearchState creates a search over search.
func NewHistorySearchState(search SearchFunc) *HistorySearchState {
	return &HistorySearchState{search: search}
}

// IsActive returns true if history search mode is active.
func (s *HistorySearchState) IsActive() bool {
	return s.active
}

// Query returns the current search query.
func (s *HistorySearchState) Query() string {
	return s.query
}

// CurrentMatch returns the selected match, or "" without matches.
func (s *HistorySearchState) CurrentMatch() string {
	if s.matchIndex < 0 || s.matchIndex >= len(s.matches) {
		return ""
	}
	return s.matches[s.matchIndex]
}

// MatchCount returns the total number of matches.
func (s *HistorySearchState) MatchCount() int {
	return len(s.matches)
}

// Start begins a search, saving the line being edited.
func (s *HistorySearchState) Start(currentInput string, cursorPos int) {
	s.Reset()
	s.active = true
	s.originalInput = currentInput
	s.originalCursorPos = cursorPos
}

// Type appends runes to the query.
func (s *HistorySearchState) Type(runes []rune) {
	s.setQuery(s.query + string(runes))
}

// Backspace removes the last rune of the query. Returns false when the
// query was already empty.
func (s *HistorySearchState) Backspace() bool {
	if s.query == "" {
		return false
	}
	runes := []rune(s.query)
	s.setQuery(string(runes[:len(runes)-1]))
	return true
}

func (s *HistorySearchState) setQuery(query string) {
	s.query = query
	s.matchIndex = 0
	s.matches = nil
	if query != "" && s.search != nil {
		s.matches = s.search(query)
	}
}

// Older moves to the next older match. Returns true if the match changed.
func (s *HistorySearchState) Older() bool {
	if s.matchIndex < len(s.matches)-1 {
		s.matchIndex++
		return true
	}
	return false
}

// Newer moves to the next more recent match. Returns true if the match
// changed.
func (s *HistorySearchState) Newer() bool {
	if s.matchIndex > 0 {
		s.matchIndex--
		return true
	}
	return false
}

// Cancel ends the search and returns the line to restore.
func (s *HistorySearchState) Cancel() (originalInput string, originalCursorPos int) {
	originalInput, originalCursorPos = s.originalInput, s.originalCursorPos
	s.Reset()
	return originalInput, originalCursorPos
}

// Accept ends the search and returns the selected match, or the original
// line when nothing matched.
func (s *HistorySearchState) Accept() string {
	result := s.CurrentMatch()
	if result == "" {
		result = s.originalInput
	}
	s.Reset()
	return result
}

// Reset clears the search state.
func (s *HistorySearchState) Reset() {
	s.active = false
	s.query = ""
	s.matches = nil
	s.matchIndex = 0
	s.originalInput = ""
	s.originalCursorPos = 0
}
