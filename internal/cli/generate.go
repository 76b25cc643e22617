package cli

import (
	"github.com/spf13/cobra"

	"github.com/autoscribe-dev/autoscribe/internal/config"
	"github.com/autoscribe-dev/autoscribe/internal/workflow"
)

var (
	generateVersion    string
	generateOutput     string
	generateDraft      bool
	generatePrerelease bool
	generateForce      bool
	generateTag        bool
	generatePush       bool
	generateDryRun     bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Add a changelog section for the commits since the latest tag (gen)",
	Long: `Read the commits since the latest release tag, group them into Keep a
Changelog categories and prepend the new section to the changelog.

Without --version the number is suggested from the latest tag: a breaking
change bumps the major version, a feature the minor version, anything else
the patch version. With no tags the section is "Unreleased".

For released versions the configured version file is updated, and with
github_release enabled a GitHub release is published.`,
	Example: `  # Section for the changes since the latest tag
  autoscribe generate

  # Explicit version, tagged and pushed
  autoscribe generate --version 2.0.0 --tag --push

  # Preview without writing anything
  autoscribe generate --dry-run

  # Skip the AI rewrite and publish a draft release
  autoscribe generate --no-ai --github-release --draft`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := globalProjectOptions()
		opts.Overrides.Output = generateOutput

		var err error
		if opts.Overrides.AIEnabled, err = boolOverride(cmd, "ai"); err != nil {
			return err
		}
		if opts.Overrides.GitHubRelease, err = boolOverride(cmd, "github-release"); err != nil {
			return err
		}

		_, err = runGenerate(cmd, opts, workflow.GenerateOptions{
			Version:    generateVersion,
			Draft:      generateDraft,
			Prerelease: generatePrerelease,
			Force:      generateForce,
			Tag:        generateTag,
			Push:       generatePush,
			DryRun:     generateDryRun,
		})
		return err
	},
}

func init() {
	generateCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVar(&generateVersion, "version", "", "Version number for the new section (default: suggested from the latest tag)")
	flags.StringVarP(&generateOutput, "output", "o", "", "Changelog path (default from config: CHANGELOG.md)")
	flags.Bool("ai", false, "Rewrite descriptions and summarize with AI")
	flags.Bool("no-ai", false, "Use commit descriptions as written")
	flags.Bool("github-release", false, "Publish a GitHub release for the new version")
	flags.Bool("no-github-release", false, "Do not publish a GitHub release")
	flags.BoolVar(&generateDraft, "draft", false, "Create the GitHub release as a draft")
	flags.BoolVar(&generatePrerelease, "prerelease", false, "Mark the GitHub release as a prerelease")
	flags.BoolVarP(&generateForce, "force", "f", false, "Replace an existing section with the same version")
	flags.BoolVar(&generateTag, "tag", false, "Create an annotated tag for the new version")
	flags.BoolVar(&generatePush, "push", false, "Push the new tag to origin (requires --tag)")
	flags.BoolVar(&generateDryRun, "dry-run", false, "Print the new section instead of writing files")
}

func runGenerate(cmd *cobra.Command, opts projectOptions, genOpts workflow.GenerateOptions) (*workflow.GenerateResult, error) {
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if genOpts.DryRun {
		cfg = dryRunConfig(cfg)
	}
	if cfg.Source != "" {
		log.Debugf("[cli] config loaded from %s", cfg.Source)
	}

	repo, err := openRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	runner, err := newRunner(cmd, cfg, log, repo)
	if err != nil {
		return nil, err
	}
	return runner.Generate(cmd.Context(), genOpts)
}

// dryRunConfig keeps a dry run from publishing anything.
func dryRunConfig(cfg *config.Configuration) *config.Configuration {
	off := false
	return cfg.ApplyOverrides(config.Overrides{GitHubRelease: &off})
}
