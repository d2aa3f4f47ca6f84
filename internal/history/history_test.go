package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *HistoryManager {
	t.Helper()
	h, err := NewHistoryManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewHistoryManager_Session(t *testing.T) {
	h := newManager(t)
	_, err := uuid.Parse(h.SessionID())
	assert.NoError(t, err)

	marker, err := os.ReadFile(filepath.Join(filepath.Dir(h.dbPath), "history_schema_version"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(marker))
}

func TestHistoryManager_AddAndRecent(t *testing.T) {
	h := newManager(t)

	_, err := h.Add("n = 10", KindCode, "Integer")
	require.NoError(t, err)
	_, err = h.Add("ls", KindCommand, "")
	require.NoError(t, err)
	entry, err := h.Add("n.to_s", KindCode, "String")
	require.NoError(t, err)
	assert.Equal(t, h.SessionID(), entry.SessionID)

	entries, err := h.GetRecentEntries(h.SessionID(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ls", entries[0].Line)
	assert.Equal(t, "n.to_s", entries[1].Line)
	assert.Equal(t, "String", entries[1].Result)

	entries, err = h.GetRecentEntries("other-session", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = h.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestHistoryManager_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewHistoryManager(path)
	require.NoError(t, err)
	_, err = first.Add("1 + 1", KindCode, "Integer")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewHistoryManager(path)
	require.NoError(t, err)
	defer second.Close()
	assert.NotEqual(t, first.SessionID(), second.SessionID())

	entries, err := second.GetRecentEntries("", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first.SessionID(), entries[0].SessionID)
}

func TestHistoryManager_Search(t *testing.T) {
	h := newManager(t)
	for _, line := range []string{"show_doc String#upcase", "show_source Integer#abs", "shower = 1", "x = 100%"} {
		_, err := h.Add(line, KindCode, "")
		require.NoError(t, err)
	}

	entries, err := h.SearchHistory("show_", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "show_source Integer#abs", entries[0].Line)

	entries, err = h.SearchHistory("Integer", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = h.SearchHistory("%", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x = 100%", entries[0].Line)
}

func TestHistoryManager_DeleteAndReset(t *testing.T) {
	h := newManager(t)
	entry, err := h.Add("a = 1", KindCode, "Integer")
	require.NoError(t, err)
	_, err = h.Add("b = 2", KindCode, "Integer")
	require.NoError(t, err)

	require.NoError(t, h.DeleteEntry(entry.ID))
	assert.Error(t, h.DeleteEntry(entry.ID))

	entries, err := h.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, h.ResetHistory())
	entries, err = h.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
