package config

import (
	"path/filepath"
)

const (
	// DefaultConfigFile is the config file `autoscribe init` writes.
	DefaultConfigFile = ".autoscribe.toml"
	// PyprojectFile may carry settings in a [tool.autoscribe] table.
	PyprojectFile = "pyproject.toml"
	// DotEnvFile is consulted for env:NAME references before the process environment.
	DotEnvFile = ".env"
)

// ConfigFileNames lists the files searched in the project directory, in
// priority order. The first one that exists is loaded; the rest are ignored.
var ConfigFileNames = []string{
	DefaultConfigFile,
	".autoscribe.yml",
	".autoscribe.yaml",
	".autoscribe.json",
	PyprojectFile,
}

// FindConfigFile returns the first config file present in dir.
func FindConfigFile(dir string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// ProjectConfigPath returns the path of the default config file in dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, DefaultConfigFile)
}
