package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// lookupFrom returns a LookupEnv that only sees vars.
func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func load(t *testing.T, dir string, vars map[string]string) (*Configuration, error) {
	t.Helper()
	return LoadWithOptions(LoadOptions{Dir: dir, LookupEnv: lookupFrom(vars)})
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := load(t, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "CHANGELOG.md"), cfg.Output)
	assert.Equal(t, filepath.Join(dir, "pyproject.toml"), cfg.VersionFile)
	assert.Equal(t, "version = '{version}'", cfg.VersionPattern)
	assert.Equal(t, []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}, cfg.Categories)
	assert.True(t, cfg.GitHubRelease)
	assert.True(t, cfg.AIEnabled)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.Equal(t, 1, cfg.AIConcurrency)
	assert.Equal(t, "v", cfg.TagPrefix)
	assert.Empty(t, cfg.GitHubToken)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, dir, cfg.Dir)
}

func TestLoad_DefaultTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, DefaultConfigFile, GetDefaultConfigTemplate())

	cfg, err := load(t, dir, map[string]string{
		"GITHUB_TOKEN":   "gh-secret",
		"OPENAI_API_KEY": "sk-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "gh-secret", cfg.GitHubToken)
	assert.Equal(t, "sk-secret", cfg.OpenAIAPIKey)
	assert.Equal(t, changelog.DefaultCategories(), cfg.CategoryNames())
	assert.True(t, cfg.AIReady())
	assert.True(t, cfg.ReleaseReady())
}

func TestLoad_Formats(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file    string
		content string
	}{
		"toml top level": {
			file:    ".autoscribe.toml",
			content: "output = \"docs/CHANGES.md\"\nai_model = \"gpt-4\"\ncategories = [\"Fixed\", \"Added\"]\nai_concurrency = 4\n",
		},
		"toml nested": {
			file:    ".autoscribe.toml",
			content: "[tool.autoscribe]\noutput = \"docs/CHANGES.md\"\nai_model = \"gpt-4\"\ncategories = [\"Fixed\", \"Added\"]\nai_concurrency = 4\n",
		},
		"yaml": {
			file:    ".autoscribe.yml",
			content: "output: docs/CHANGES.md\nai_model: gpt-4\ncategories: [Fixed, Added]\nai_concurrency: 4\n",
		},
		"json": {
			file:    ".autoscribe.json",
			content: `{"output": "docs/CHANGES.md", "ai_model": "gpt-4", "categories": ["Fixed", "Added"], "ai_concurrency": 4}`,
		},
		"pyproject table": {
			file: "pyproject.toml",
			content: "[project]\nname = \"demo\"\nversion = '0.1.0'\n\n" +
				"[tool.autoscribe]\noutput = \"docs/CHANGES.md\"\nai_model = \"gpt-4\"\ncategories = [\"Fixed\", \"Added\"]\nai_concurrency = 4\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := load(t, dir, nil)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "docs", "CHANGES.md"), cfg.Output)
			assert.Equal(t, "gpt-4", cfg.AIModel)
			assert.Equal(t, []changelog.CategoryName{changelog.Fixed, changelog.Added}, cfg.CategoryNames())
			assert.Equal(t, 4, cfg.AIConcurrency)
			assert.Equal(t, filepath.Join(dir, tt.file), cfg.Source)
		})
	}
}

func TestLoad_PyprojectWithoutTableIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, PyprojectFile, "[project]\nname = \"demo\"\n\n[tool.black]\nline-length = 100\n")

	cfg, err := load(t, dir, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
}

func TestLoad_FirstConfigFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".autoscribe.toml", "ai_model = \"gpt-4\"\n")
	writeFile(t, dir, ".autoscribe.yml", "ai_model: gpt-3.5-turbo\n")

	cfg, err := load(t, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.AIModel)
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	other := t.TempDir()
	path := writeFile(t, other, "custom.toml", "tag_prefix = \"release-\"\n")

	cfg, err := LoadWithOptions(LoadOptions{Dir: dir, ConfigPath: path, LookupEnv: lookupFrom(nil)})
	require.NoError(t, err)
	assert.Equal(t, "release-", cfg.TagPrefix)
	assert.Equal(t, path, cfg.Source)

	_, err = LoadWithOptions(LoadOptions{Dir: dir, ConfigPath: filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file      string
		content   string
		wantField string
		wantMsg   string
		wantLine  bool
	}{
		"invalid category": {
			file:      ".autoscribe.toml",
			content:   "categories = [\"Added\", \"Misc\"]\n",
			wantField: "categories[1]",
			wantMsg:   `invalid category "Misc"`,
		},
		"lowercase category": {
			file:      ".autoscribe.toml",
			content:   "categories = [\"added\"]\n",
			wantField: "categories[0]",
			wantMsg:   `invalid category "added"`,
		},
		"no categories": {
			file:      ".autoscribe.toml",
			content:   "categories = []\n",
			wantField: "categories",
			wantMsg:   "must list at least 1 entry",
		},
		"duplicate category": {
			file:      ".autoscribe.toml",
			content:   "categories = [\"Added\", \"Added\"]\n",
			wantField: "categories",
			wantMsg:   `duplicate category "Added"`,
		},
		"invalid model": {
			file:      ".autoscribe.toml",
			content:   "ai_model = \"gpt-2\"\n",
			wantField: "ai_model",
			wantMsg:   `invalid value "gpt-2"`,
		},
		"pattern without placeholder": {
			file:      ".autoscribe.toml",
			content:   "version_pattern = \"version = 'x'\"\n",
			wantField: "version_pattern",
			wantMsg:   "must contain {version} placeholder",
		},
		"concurrency too low": {
			file:      ".autoscribe.toml",
			content:   "ai_concurrency = 0\n",
			wantField: "ai_concurrency",
			wantMsg:   "must be at least 1",
		},
		"concurrency too high": {
			file:      ".autoscribe.toml",
			content:   "ai_concurrency = 17\n",
			wantField: "ai_concurrency",
			wantMsg:   "must be at most 16",
		},
		"bad base url": {
			file:      ".autoscribe.toml",
			content:   "ai_base_url = \"not a url\"\n",
			wantField: "ai_base_url",
			wantMsg:   "invalid URL",
		},
		"unknown key": {
			file:      ".autoscribe.toml",
			content:   "[tool.autoscribe]\noutput = \"CHANGELOG.md\"\nchangelog_style = \"fancy\"\n",
			wantField: "changelog_style",
			wantMsg:   "unknown configuration key: changelog_style",
		},
		"malformed toml": {
			file:     ".autoscribe.toml",
			content:  "output = \n",
			wantLine: true,
		},
		"malformed yaml": {
			file:     ".autoscribe.yml",
			content:  "output: [unclosed\n",
			wantLine: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			_, err := load(t, dir, nil)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %T: %v", err, err)
			assert.Equal(t, filepath.Join(dir, tt.file), ve.FilePath)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, ve.Field)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, ve.Message, tt.wantMsg)
			}
			if tt.wantLine {
				assert.Positive(t, ve.Line)
			}
		})
	}
}

func TestLoad_SecretIndirection(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		config  string
		dotenv  string
		vars    map[string]string
		wantGH  string
		wantKey string
	}{
		"literal values": {
			config:  "github_token = \"gh-literal\"\nopenai_api_key = \"sk-literal\"\n",
			vars:    map[string]string{"GITHUB_TOKEN": "ignored"},
			wantGH:  "gh-literal",
			wantKey: "sk-literal",
		},
		"env reference": {
			config:  "github_token = \"env:MY_GH\"\nopenai_api_key = \"env:MY_KEY\"\n",
			vars:    map[string]string{"MY_GH": "gh-env", "MY_KEY": "sk-env"},
			wantGH:  "gh-env",
			wantKey: "sk-env",
		},
		"dotenv before process env": {
			config:  "github_token = \"env:MY_GH\"\n",
			dotenv:  "MY_GH=gh-dotenv\nOPENAI_API_KEY=sk-dotenv\n",
			vars:    map[string]string{"MY_GH": "gh-env", "OPENAI_API_KEY": "sk-env"},
			wantGH:  "gh-dotenv",
			wantKey: "sk-dotenv",
		},
		"unset reference resolves empty": {
			config:  "github_token = \"env:NOPE\"\n",
			vars:    map[string]string{"GITHUB_TOKEN": "fallback-not-used"},
			wantGH:  "",
			wantKey: "",
		},
		"fallback variables": {
			config:  "ai_model = \"gpt-4\"\n",
			vars:    map[string]string{"GITHUB_TOKEN": "gh-default", "OPENAI_API_KEY": "sk-default"},
			wantGH:  "gh-default",
			wantKey: "sk-default",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, DefaultConfigFile, tt.config)
			if tt.dotenv != "" {
				writeFile(t, dir, DotEnvFile, tt.dotenv)
			}

			cfg, err := load(t, dir, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.wantGH, cfg.GitHubToken)
			assert.Equal(t, tt.wantKey, cfg.OpenAIAPIKey)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTOSCRIBE_AI_MODEL", "gpt-4-turbo")
	t.Setenv("AUTOSCRIBE_CATEGORIES", "Added, Fixed,,Security")
	t.Setenv("AUTOSCRIBE_AI_CONCURRENCY", "4")
	t.Setenv("AUTOSCRIBE_GITHUB_RELEASE", "false")
	t.Setenv("AUTOSCRIBE_NOT_A_KEY", "ignored")

	dir := t.TempDir()
	writeFile(t, dir, DefaultConfigFile, "ai_model = \"gpt-4\"\ngithub_release = true\n")

	cfg, err := load(t, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4-turbo", cfg.AIModel)
	assert.Equal(t, []string{"Added", "Fixed", "Security"}, cfg.Categories)
	assert.Equal(t, 4, cfg.AIConcurrency)
	assert.False(t, cfg.GitHubRelease)
}

func TestLoad_EnvironmentValidated(t *testing.T) {
	t.Setenv("AUTOSCRIBE_AI_MODEL", "davinci")

	_, err := load(t, t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai_model")
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := load(t, dir, map[string]string{"OPENAI_API_KEY": "sk", "GITHUB_TOKEN": "gh"})
	require.NoError(t, err)

	off := false
	out := cfg.ApplyOverrides(Overrides{AIEnabled: &off, GitHubRelease: &off, Output: "HISTORY.md"})

	assert.False(t, out.AIEnabled)
	assert.False(t, out.GitHubRelease)
	assert.False(t, out.AIReady())
	assert.False(t, out.ReleaseReady())
	assert.Equal(t, filepath.Join(dir, "HISTORY.md"), out.Output)

	assert.True(t, cfg.AIEnabled, "original is not modified")
	assert.Equal(t, filepath.Join(dir, "CHANGELOG.md"), cfg.Output)

	same := cfg.ApplyOverrides(Overrides{})
	assert.Equal(t, cfg, same)
}

func TestValidateYAMLSyntaxFromBytes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data     string
		wantErr  bool
		wantLine int
	}{
		"empty":     {data: "  \n"},
		"valid":     {data: "output: CHANGELOG.md\n"},
		"bad block": {data: "output: a\n  bad: [\n", wantErr: true},
		"tab indent": {
			data:     "categories:\n\t- Added\n",
			wantErr:  true,
			wantLine: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := ValidateYAMLSyntaxFromBytes([]byte(tt.data), "cfg.yml")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, ve.Line)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.toml:3:5: boom", (&ValidationError{FilePath: "a.toml", Line: 3, Column: 5, Message: "boom"}).Error())
	assert.Equal(t, "a.toml: field 'ai_model': bad", (&ValidationError{FilePath: "a.toml", Field: "ai_model", Message: "bad"}).Error())
	assert.Equal(t, "a.toml: bad", (&ValidationError{FilePath: "a.toml", Message: "bad"}).Error())
}

func TestKnownKeysCoverDefaults(t *testing.T) {
	t.Parallel()

	for key := range GetDefaults() {
		_, err := GetKeySchema(key)
		assert.NoError(t, err, key)
	}
	_, err := GetKeySchema("nope")
	assert.Equal(t, ErrUnknownKey{Key: "nope"}, err)
	assert.Equal(t, "list", KnownKeys["categories"].Type.String())
}
