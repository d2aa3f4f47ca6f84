package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TYPECOMP_HOME", dir)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Equal(t, dir, DataDir())
	assert.Equal(t, filepath.Join(dir, "typecomp.log"), LogFile())
	assert.Equal(t, filepath.Join(dir, "history.db"), HistoryFile())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile())
	assert.Equal(t, filepath.Join(dir, "signatures"), SignaturesDir())
}

func TestSignatureFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TYPECOMP_HOME", dir)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Empty(t, SignatureFiles())

	require.NoError(t, os.MkdirAll(SignaturesDir(), 0755))
	for _, name := range []string{"b.yml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(SignaturesDir(), name), []byte("classes: []\n"), 0644))
	}

	assert.Equal(t, []string{
		filepath.Join(SignaturesDir(), "a.yaml"),
		filepath.Join(SignaturesDir(), "b.yml"),
	}, SignatureFiles())
}
