// Package config provides layered configuration for autoscribe using koanf.
// Values are loaded with priority: environment variables (AUTOSCRIBE_*) >
// config file (.autoscribe.toml, .autoscribe.yml, .autoscribe.json or the
// [tool.autoscribe] table of pyproject.toml) > defaults. The result is
// validated once at load time; nothing re-validates on assignment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "AUTOSCRIBE_"

// nestedSection is the table holding autoscribe keys in shared config files.
const nestedSection = "tool.autoscribe"

// envIndirection marks a value that names an environment variable.
const envIndirection = "env:"

// Configuration represents the autoscribe configuration.
type Configuration struct {
	// Output is the changelog path, absolute after Load.
	Output string `koanf:"output" validate:"required"`
	// VersionFile is rewritten with the new version number after a release.
	// Absolute after Load; empty disables the update.
	VersionFile string `koanf:"version_file"`
	// VersionPattern locates the version in VersionFile; {version} marks it.
	VersionPattern string `koanf:"version_pattern" validate:"required"`
	// Categories are the enabled changelog sections, in rendering order.
	Categories []string `koanf:"categories" validate:"min=1,dive,category"`

	GitHubRelease bool   `koanf:"github_release"`
	GitHubToken   string `koanf:"github_token"`

	AIEnabled    bool   `koanf:"ai_enabled"`
	AIModel      string `koanf:"ai_model" validate:"required,oneof=gpt-4o-mini gpt-4 gpt-4-turbo gpt-3.5-turbo"`
	OpenAIAPIKey string `koanf:"openai_api_key"`
	AIBaseURL    string `koanf:"ai_base_url" validate:"omitempty,url"`
	// AIConcurrency is the number of changes enhanced in parallel.
	AIConcurrency int `koanf:"ai_concurrency" validate:"min=1,max=16"`

	TagPrefix string `koanf:"tag_prefix"`

	// Dir is the directory relative paths were resolved against.
	Dir string `koanf:"-"`
	// Source is the config file that was loaded, or "" when only defaults
	// and environment were used.
	Source string `koanf:"-"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ConfigPath names the config file explicitly. It must exist.
	ConfigPath string
	// Dir is the project directory searched for config and .env files and
	// used to resolve relative paths (default: current directory).
	Dir string
	// LookupEnv resolves env: references after the .env file (default: os.LookupEnv).
	LookupEnv func(string) (string, bool)
}

// Load loads configuration from the project directory, an optional
// explicit config file and the environment.
func Load(configPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	dir, err := resolveDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	loadDefaults(k)

	source, err := loadConfigFile(k, dir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	lookup, err = withDotEnv(filepath.Join(dir, DotEnvFile), lookup)
	if err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k, dir, source, lookup)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}
}

// loadConfigFile merges the explicit or discovered config file into k and
// returns its path ("" when none was found).
func loadConfigFile(k *koanf.Koanf, dir, explicit string) (string, error) {
	path := explicit
	if path == "" {
		found, ok := FindConfigFile(dir)
		if !ok {
			return "", nil
		}
		path = found
	} else if !fileExists(path) {
		return "", &ValidationError{FilePath: path, Message: "config file not found"}
	}

	fk, err := readConfigFile(path)
	if err != nil {
		return "", err
	}

	switch {
	case fk.Exists(nestedSection):
		fk = fk.Cut(nestedSection)
	case filepath.Base(path) == PyprojectFile:
		// pyproject.toml without a [tool.autoscribe] table carries no settings
		return "", nil
	}

	if err := checkUnknownKeys(fk, path); err != nil {
		return "", err
	}
	if err := k.Merge(fk); err != nil {
		return "", fmt.Errorf("merging config %s: %w", path, err)
	}
	return path, nil
}

// readConfigFile parses a config file with the parser matching its extension.
func readConfigFile(path string) (*koanf.Koanf, error) {
	fk := koanf.New(".")

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yml", ".yaml":
		if err := ValidateYAMLSyntax(path); err != nil {
			return nil, err
		}
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, &ValidationError{FilePath: path, Message: "unsupported config format (use .toml, .yml or .json)"}
	}

	if err := fk.Load(file.Provider(path), parser); err != nil {
		return nil, parseError(path, err)
	}
	return fk, nil
}

// parseError converts a parser failure into a ValidationError, keeping the
// position when the TOML decoder reports one.
func parseError(path string, err error) error {
	var decodeErr *gotoml.DecodeError
	if errors.As(err, &decodeErr) {
		line, column := decodeErr.Position()
		return &ValidationError{FilePath: path, Line: line, Column: column, Message: decodeErr.Error()}
	}
	return &ValidationError{FilePath: path, Message: err.Error()}
}

// loadEnvironmentConfig loads AUTOSCRIBE_* overrides. List-valued keys take
// comma-separated values; unknown variables are ignored.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	provider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		name := envTransform(key)
		schema, ok := KnownKeys[name]
		if !ok {
			return "", nil
		}
		if schema.Type == TypeList {
			return name, splitList(value)
		}
		return name, value
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// envTransform converts environment variable names to config keys
// Example: AUTOSCRIBE_AI_MODEL -> ai_model
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// withDotEnv returns a lookup that consults the .env file before next.
// A missing .env file is not an error.
func withDotEnv(path string, next func(string) (string, bool)) (func(string) (string, bool), error) {
	if !fileExists(path) {
		return next, nil
	}

	dk := koanf.New(".")
	if err := dk.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return nil, &ValidationError{FilePath: path, Message: err.Error()}
	}
	values := dk.All()

	return func(name string) (string, bool) {
		if v, ok := values[name]; ok {
			return fmt.Sprint(v), true
		}
		return next(name)
	}, nil
}

// finalizeConfig unmarshals, resolves secrets and paths, and validates.
func finalizeConfig(k *koanf.Koanf, dir, source string, lookup func(string) (string, bool)) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Dir = dir
	cfg.Source = source

	cfg.GitHubToken = resolveSecret(cfg.GitHubToken, "GITHUB_TOKEN", lookup)
	cfg.OpenAIAPIKey = resolveSecret(cfg.OpenAIAPIKey, "OPENAI_API_KEY", lookup)

	if err := ValidateConfigValues(&cfg, sourceLabel(source)); err != nil {
		return nil, err
	}

	cfg.Output = resolvePath(dir, cfg.Output)
	cfg.VersionFile = resolvePath(dir, cfg.VersionFile)

	return &cfg, nil
}

// resolveSecret expands an env:NAME reference. An empty value falls back to
// the conventional variable.
func resolveSecret(value, fallback string, lookup func(string) (string, bool)) string {
	if name, ok := strings.CutPrefix(value, envIndirection); ok {
		v, _ := lookup(strings.TrimSpace(name))
		return v
	}
	if value == "" {
		v, _ := lookup(fallback)
		return v
	}
	return value
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func sourceLabel(source string) string {
	if source == "" {
		return "config"
	}
	return source
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Overrides are command-line values applied on top of the loaded config.
// Nil pointers and empty strings leave the loaded value in place.
type Overrides struct {
	AIEnabled     *bool
	GitHubRelease *bool
	Output        string
}

// ApplyOverrides returns a copy of c with the overrides applied.
func (c *Configuration) ApplyOverrides(o Overrides) *Configuration {
	out := *c
	out.Categories = append([]string(nil), c.Categories...)

	if o.AIEnabled != nil {
		out.AIEnabled = *o.AIEnabled
	}
	if o.GitHubRelease != nil {
		out.GitHubRelease = *o.GitHubRelease
	}
	if o.Output != "" {
		out.Output = resolvePath(c.Dir, o.Output)
	}
	return &out
}

// CategoryNames returns the enabled categories as typed names. Load has
// already rejected anything outside the closed set.
func (c *Configuration) CategoryNames() []changelog.CategoryName {
	names := make([]changelog.CategoryName, 0, len(c.Categories))
	for _, name := range c.Categories {
		names = append(names, changelog.CategoryName(name))
	}
	return names
}

// AIReady reports whether AI enhancement is enabled and has a key.
func (c *Configuration) AIReady() bool {
	return c.AIEnabled && c.OpenAIAPIKey != ""
}

// ReleaseReady reports whether release publishing is enabled and has a token.
func (c *Configuration) ReleaseReady() bool {
	return c.GitHubRelease && c.GitHubToken != ""
}
