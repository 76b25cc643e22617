package config

// GetDefaultConfigTemplate returns the commented config file written by
// `autoscribe init`.
func GetDefaultConfigTemplate() string {
	return `# Autoscribe configuration
# Every key may also be set through an AUTOSCRIBE_<KEY> environment variable.

[tool.autoscribe]
output = "CHANGELOG.md"                 # Changelog file
version_file = "pyproject.toml"         # File updated with the new version ("" disables)
version_pattern = "version = '{version}'"
tag_prefix = "v"                        # Release tags look like v1.2.3

# Sections, in output order: Added Changed Deprecated Removed Fixed Security
# Documentation Performance Testing Build CI
categories = [
    "Added",
    "Changed",
    "Deprecated",
    "Removed",
    "Fixed",
    "Security",
]

github_release = true
github_token = "env:GITHUB_TOKEN"       # env:NAME reads .env, then the environment

ai_enabled = true
ai_model = "gpt-4o-mini"                # gpt-4o-mini | gpt-4 | gpt-4-turbo | gpt-3.5-turbo
openai_api_key = "env:OPENAI_API_KEY"
ai_concurrency = 1                      # Changes enhanced in parallel (1-16)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"output":          "CHANGELOG.md",
		"version_file":    "pyproject.toml",
		"version_pattern": "version = '{version}'",
		"categories":      []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"},
		"github_release":  true,
		"github_token":    "",
		"ai_enabled":      true,
		"ai_model":        "gpt-4o-mini",
		"openai_api_key":  "",
		"ai_base_url":     "",
		// ai_concurrency: 1 keeps enhancement sequential.
		"ai_concurrency": 1,
		"tag_prefix":     "v",
	}
}
