package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/autoscribe-dev/autoscribe/internal/build"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/autoscribe-dev/autoscribe"

var (
	versionPlain bool
	versionYAML  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  "Display version, commit, build date, and Go version information for autoscribe",
	Example: `  # Show version info
  autoscribe version

  # Plain output (for scripts)
  autoscribe version --plain`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), build.Current(), versionPlain, versionYAML)
	},
}

func init() {
	versionCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	versionCmd.Flags().BoolVar(&versionYAML, "yaml", false, "Output as YAML")
}

func printVersion(w io.Writer, info build.Info, plain, asYAML bool) error {
	switch {
	case asYAML:
		return encodeYAML(w, info)
	case plain:
		_, err := fmt.Fprintln(w, info.String())
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("autoscribe"), info.Version)
	fmt.Fprintf(w, "  %s %s\n", dim("commit:  "), info.Commit)
	fmt.Fprintf(w, "  %s %s\n", dim("built:   "), info.BuildDate)
	fmt.Fprintf(w, "  %s %s\n", dim("go:      "), info.GoVersion)
	fmt.Fprintf(w, "  %s %s\n", dim("platform:"), info.Platform)
	_, err := fmt.Fprintf(w, "  %s %s\n", dim("source:  "), SourceURL)
	return err
}
