package cli

import (
	"github.com/spf13/cobra"

	"github.com/autoscribe-dev/autoscribe/internal/config"
	"github.com/autoscribe-dev/autoscribe/internal/workflow"
)

var (
	initForce  bool
	initOutput string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty changelog and a default config file",
	Long: `Create CHANGELOG.md with an empty Unreleased section and write the default
configuration to .autoscribe.toml. Existing files are kept unless --force
is given.`,
	Example: `  # Set up the current project
  autoscribe init

  # Use a different changelog path
  autoscribe init --output docs/CHANGES.md

  # Overwrite existing files
  autoscribe init --force`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := globalProjectOptions()
		opts.Overrides.Output = initOutput
		_, err := runInit(cmd, opts, workflow.InitOptions{Force: initForce})
		return err
	},
}

func init() {
	initCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing changelog and config file")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "", "Changelog path (default from config: CHANGELOG.md)")
}

func runInit(cmd *cobra.Command, opts projectOptions, initOpts workflow.InitOptions) (*workflow.InitResult, error) {
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	runner, err := newRunner(cmd, initConfig(cfg), log, nil)
	if err != nil {
		return nil, err
	}
	return runner.Init(initOpts)
}

// initConfig disables the network collaborators, which init never uses.
func initConfig(cfg *config.Configuration) *config.Configuration {
	off := false
	return cfg.ApplyOverrides(config.Overrides{AIEnabled: &off, GitHubRelease: &off})
}
