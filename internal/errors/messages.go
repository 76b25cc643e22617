package errors

import "fmt"

// Common error messages for the autoscribe CLI.
// These templates ensure consistent, actionable error messages.

// NotGitRepository creates an error for commands run outside a repository.
func NotGitRepository(path string, err error) *CLIError {
	e := WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("%s is not inside a git repository", path),
		"Run autoscribe from your project's working tree",
		"Or initialize one with: git init",
	)
	if e == nil {
		e = NewPrerequisiteError(fmt.Sprintf("%s is not inside a git repository", path),
			"Run autoscribe from your project's working tree")
	}
	return e
}

// ConfigParseError creates an error for a config file that cannot be parsed.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config %s", path),
		"Check the file for TOML, YAML or JSON syntax errors",
		"Regenerate a default config with: autoscribe init --force",
	)
}

// ConfigInvalid creates an error for a config value that fails validation.
func ConfigInvalid(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Valid categories: Added, Changed, Deprecated, Removed, Fixed, Security, Documentation, Performance, Testing, Build, CI",
		"Valid ai_model values: gpt-4o-mini, gpt-4, gpt-4-turbo, gpt-3.5-turbo",
		"version_pattern must contain {version}",
	)
}

// VersionExists creates an error when the changelog already has the version.
func VersionExists(number, path string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("version %s already exists in %s", number, path),
		"Pass --version with a new version number",
		"Or replace the existing entry with --force",
	)
}

// InvalidVersion creates an error for a version number that is not semver.
func InvalidVersion(number string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid version %q", number),
		"autoscribe generate --version 1.2.3",
		"Use a semantic version: MAJOR.MINOR.PATCH with optional -prerelease",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	e := WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to %s", path),
		"Check file permissions",
		"Ensure the parent directory exists",
	)
	if e == nil {
		e = NewRuntimeError(fmt.Sprintf("cannot write to %s", path), "Check file permissions")
	}
	return e
}

// ChangelogParseError creates an error for an existing changelog that does
// not follow the Keep a Changelog layout.
func ChangelogParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("failed to read existing changelog %s", path),
		"Fix the reported line so it follows the Keep a Changelog format",
		"Or move the file aside and run: autoscribe init",
	)
}

// ChangelogNotFound creates an error when the changelog file is missing.
func ChangelogNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("changelog not found at %s", path),
		"Create one with: autoscribe init",
		"Or point to it with --output",
	)
}

// InvalidFlagCombination creates an error for mutually exclusive flags.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
	)
}
