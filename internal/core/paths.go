package core

import (
	"os"
	"path/filepath"
	"sort"
)

type Paths struct {
	HomeDir       string
	DataDir       string
	LogFile       string
	HistoryFile   string
	ConfigFile    string
	SignaturesDir string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".typecomp")
		if override := os.Getenv("TYPECOMP_HOME"); override != "" {
			dataDir = override
		}

		defaultPaths = &Paths{
			HomeDir:       homeDir,
			DataDir:       dataDir,
			LogFile:       filepath.Join(dataDir, "typecomp.log"),
			HistoryFile:   filepath.Join(dataDir, "history.db"),
			ConfigFile:    filepath.Join(dataDir, "config.yaml"),
			SignaturesDir: filepath.Join(dataDir, "signatures"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// SignaturesDir holds user signature files loaded after the core ones.
func SignaturesDir() string {
	ensureDefaultPaths()
	return defaultPaths.SignaturesDir
}

// SignatureFiles lists the *.yaml and *.yml files in SignaturesDir, sorted
// by name. A missing directory yields no files.
func SignatureFiles() []string {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(SignaturesDir(), pattern))
		if err == nil {
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
