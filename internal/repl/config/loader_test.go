package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader(nil)
	assert.NotNil(t, loader)
}

func TestLoader_LoadFromBytes_Empty(t *testing.T) {
	loader := NewLoader(zaptest.NewLogger(t))
	result, err := loader.LoadFromBytes(nil)

	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, DefaultConfig(), result.Config)
	assert.Equal(t, "typecomp> ", result.Config.Prompt)
	assert.Equal(t, "info", result.Config.LogLevel)
	assert.Equal(t, "UTF-8", result.Config.Encoding)
}

func TestLoader_LoadFromBytes_AllKeys(t *testing.T) {
	source := `
completor: type
runtime_version: "3.3.0"
encoding: ISO-8859-1
log_level: debug
prompt: "irb> "
signature_paths:
  - /tmp/a.yaml
  - /tmp/b.yaml
history_file: /tmp/history.db
max_candidates: 20
self: String
locals:
  n: Integer
  names: Array[String]
`
	loader := NewLoader(zaptest.NewLogger(t))
	result, err := loader.LoadFromBytes([]byte(source))

	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	cfg := result.Config
	assert.Equal(t, "type", cfg.Completor)
	assert.Equal(t, "3.3.0", cfg.RuntimeVersion)
	assert.Equal(t, "ISO-8859-1", cfg.Encoding)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level())
	assert.Equal(t, "irb> ", cfg.Prompt)
	assert.Equal(t, []string{"/tmp/a.yaml", "/tmp/b.yaml"}, cfg.SignaturePaths)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryFile)
	assert.Equal(t, 20, cfg.MaxCandidates)
	assert.Equal(t, "String", cfg.Self)
	assert.Equal(t, map[string]string{"n": "Integer", "names": "Array[String]"}, cfg.Locals)
}

func TestLoader_LoadFromBytes_PartialKeepsDefaults(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromBytes([]byte("completor: regexp\n"))

	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "regexp", result.Config.Completor)
	assert.Equal(t, "typecomp> ", result.Config.Prompt)
	assert.Equal(t, 50, result.Config.MaxCandidates)
	assert.Equal(t, "Object", result.Config.Self)
}

func TestLoader_LoadFromBytes_InvalidValues(t *testing.T) {
	source := `
completor: magic
encoding: klingon
log_level: loud
max_candidates: -1
prompt: "ok> "
`
	loader := NewLoader(zaptest.NewLogger(t))
	result, err := loader.LoadFromBytes([]byte(source))

	require.NoError(t, err)
	assert.Len(t, result.Errors, 4)

	cfg := result.Config
	assert.Equal(t, "", cfg.Completor)
	assert.Equal(t, "UTF-8", cfg.Encoding)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxCandidates)
	assert.Equal(t, "ok> ", cfg.Prompt)
}

func TestLoader_LoadFromBytes_ParseError(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromBytes([]byte("completor: [unclosed\n"))

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "parse error")
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoader_LoadFromBytes_WrongType(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromBytes([]byte("locals: [1, 2]\n"))

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: \"t> \"\n"), 0644))

	loader := NewLoader(zaptest.NewLogger(t))
	result, err := loader.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, "t> ", result.Config.Prompt)

	result, err = loader.LoadFromFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, result.Path)
	assert.Equal(t, DefaultConfig(), result.Config)

	_, err = loader.LoadFromFile(dir)
	assert.Error(t, err)
}

func TestConfig_Level(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, zapcore.InfoLevel, cfg.Level())

	cfg.LogLevel = "warn"
	assert.Equal(t, zapcore.WarnLevel, cfg.Level())

	cfg.LogLevel = "nonsense"
	assert.Equal(t, zapcore.InfoLevel, cfg.Level())
}
