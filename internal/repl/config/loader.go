package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/atinylittleshell/typecomp/internal/core"
	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loader handles loading and parsing of configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	// Path is the file the configuration came from, empty for defaults.
	Path   string
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// Returns the configuration and any non-fatal errors encountered.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("config file not found, using defaults", zap.String("path", path))
			return &LoadResult{Config: DefaultConfig(), Errors: []error{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := l.LoadFromBytes(content)
	if err != nil {
		return nil, err
	}
	result.Path = path
	return result, nil
}

// LoadFromBytes loads configuration from a YAML document.
func (l *Loader) LoadFromBytes(content []byte) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return result, nil
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		// Continue with defaults on parse errors
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		return result, nil
	}

	loaded := DefaultConfig()
	if err := k.Unmarshal("", loaded); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("invalid config: %w", err))
		return result, nil
	}

	l.validate(loaded, result)
	return result, nil
}

// LoadDefaultConfigPath loads configuration from the default path
// (~/.typecomp/config.yaml).
func (l *Loader) LoadDefaultConfigPath() (*LoadResult, error) {
	return l.LoadFromFile(core.ConfigFile())
}

// validate copies the valid values of loaded into the result and records
// an error for each invalid one, keeping the default.
func (l *Loader) validate(loaded *Config, result *LoadResult) {
	cfg := result.Config
	defaults := DefaultConfig()

	if _, err := completion.ParseKind(loaded.Completor); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("completor: %w", err))
	} else {
		cfg.Completor = loaded.Completor
	}

	if _, err := completion.NewEncodingFilter(loaded.Encoding); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("encoding: %w", err))
	} else {
		cfg.Encoding = loaded.Encoding
	}

	if _, err := zapcore.ParseLevel(loaded.LogLevel); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("log_level: %w", err))
	} else {
		cfg.LogLevel = loaded.LogLevel
	}

	if loaded.MaxCandidates <= 0 {
		result.Errors = append(result.Errors, fmt.Errorf("max_candidates must be positive, got %d", loaded.MaxCandidates))
	} else {
		cfg.MaxCandidates = loaded.MaxCandidates
	}

	cfg.RuntimeVersion = loaded.RuntimeVersion
	cfg.Prompt = loaded.Prompt
	cfg.SignaturePaths = loaded.SignaturePaths
	cfg.HistoryFile = loaded.HistoryFile
	cfg.Self = loaded.Self
	if cfg.Self == "" {
		cfg.Self = defaults.Self
	}
	if loaded.Locals != nil {
		cfg.Locals = loaded.Locals
	}

	for _, err := range result.Errors {
		l.logger.Warn("invalid configuration value", zap.Error(err))
	}
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
