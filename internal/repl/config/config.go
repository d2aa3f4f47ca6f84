// Package config provides configuration management for the typecomp REPL.
// Configuration is a YAML document, normally ~/.typecomp/config.yaml.
package config

// Config holds all REPL configuration.
type Config struct {
	// Completor selects the completion provider: "type", "regexp", or empty
	// to decide by RuntimeVersion.
	Completor string `koanf:"completor"`

	// RuntimeVersion is the version of the runtime being completed for.
	// Empty means the version declared by the loaded signatures.
	RuntimeVersion string `koanf:"runtime_version"`

	// Encoding is the external encoding candidates must be representable in.
	Encoding string `koanf:"encoding"`

	// LogLevel controls logging verbosity.
	LogLevel string `koanf:"log_level"`

	Prompt string `koanf:"prompt"`

	// SignaturePaths are extra signature files loaded after the core ones.
	SignaturePaths []string `koanf:"signature_paths"`

	// HistoryFile is the SQLite history database. Empty means the default
	// location under the data directory.
	HistoryFile string `koanf:"history_file"`

	// MaxCandidates limits how many candidates the menu shows.
	MaxCandidates int `koanf:"max_candidates"`

	// Self is the type of the receiver at the prompt.
	Self string `koanf:"self"`

	// Locals declares local variables and their types, as if assigned
	// before the session started.
	Locals map[string]string `koanf:"locals"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Encoding:      "UTF-8",
		LogLevel:      "info",
		Prompt:        "typecomp> ",
		MaxCandidates: 50,
		Self:          "Object",
		Locals:        map[string]string{},
	}
}
