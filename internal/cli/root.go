// Package cli implements the autoscribe command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
	"github.com/autoscribe-dev/autoscribe/internal/progress"
)

// Command groups shown in help output.
const (
	GroupGettingStarted = "getting-started"
	GroupChangelog      = "changelog"
)

var (
	configPath string
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "autoscribe",
	Short: "Generate Keep a Changelog entries from Conventional Commits",
	Long: `autoscribe turns the commits since your latest release tag into a new
CHANGELOG.md section. Commits are parsed as Conventional Commits, grouped
into Keep a Changelog categories and optionally rewritten by an AI model.
A release can be tagged and published to GitHub in the same run.`,
	Example: `  # Create CHANGELOG.md and .autoscribe.toml
  autoscribe init

  # Add a section for the changes since the latest tag
  autoscribe generate

  # Release 1.4.0, tag it and push the tag
  autoscribe generate --version 1.4.0 --tag --push

  # Show the latest version
  autoscribe show`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		caps := progress.DetectTerminalCapabilities(os.Stderr)
		if noColor || !caps.SupportsColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupChangelog, Title: "Changelog:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: .autoscribe.toml, then pyproject.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(), "Run: "+cmd.CommandPath()+" --help")
	})
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		clierrors.FprintError(os.Stderr, err)
	}
	return clierrors.ExitCodeFor(err)
}
