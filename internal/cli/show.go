package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
)

// Output formats accepted by show --format.
const (
	FormatTerminal = "terminal"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

var (
	showFormat string
	showPlain  bool
	showAll    bool
	showOutput string
)

// showOptions are the switches of `autoscribe show`.
type showOptions struct {
	Version string
	Format  string
	Plain   bool
	All     bool
}

var showCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Print a version from the changelog",
	Long: `Print one version of the changelog, by default the latest released one
(or Unreleased when nothing has been released yet).

The version argument is matched leniently: "v1.2.0" finds "1.2.0".`,
	Example: `  # Latest version
  autoscribe show

  # A specific version as Markdown
  autoscribe show 1.2.0 --format markdown

  # The whole changelog as YAML
  autoscribe show --all --format yaml`,
	Args: maxOneArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := globalProjectOptions()
		opts.Overrides.Output = showOutput

		so := showOptions{Format: showFormat, Plain: showPlain, All: showAll}
		if len(args) == 1 {
			so.Version = args[0]
		}
		return runShow(cmd, opts, so)
	},
}

func init() {
	showCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFormat, "format", FormatTerminal, "Output format: terminal, markdown or yaml")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Plain terminal output (no colors/icons)")
	showCmd.Flags().BoolVar(&showAll, "all", false, "Print every version")
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Changelog path (default from config: CHANGELOG.md)")
}

func runShow(cmd *cobra.Command, opts projectOptions, so showOptions) error {
	format := strings.ToLower(so.Format)
	switch format {
	case FormatTerminal, FormatMarkdown, FormatYAML:
	default:
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("invalid format %q", so.Format),
			"autoscribe show [version] --format terminal|markdown|yaml",
		)
	}
	if so.All && so.Version != "" {
		return clierrors.InvalidFlagCombination("--all with a version argument", "Pass either --all or a version")
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	cl, err := changelog.Load(cfg.Output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return clierrors.ChangelogNotFound(cfg.Output)
		}
		return clierrors.ChangelogParseError(cfg.Output, err)
	}

	out := cmd.OutOrStdout()
	if so.All {
		return writeChangelog(out, cl, format, so.Plain)
	}

	v, err := selectVersion(cl, so.Version)
	if err != nil {
		return err
	}
	if v == nil {
		fmt.Fprintf(out, "No versions found in %s.\n", cfg.Output)
		return nil
	}
	return writeVersion(out, *v, format, so.Plain)
}

// selectVersion returns the requested version, or the latest released one
// (falling back to Unreleased) when number is empty. It returns nil for an
// empty changelog.
func selectVersion(cl *changelog.Changelog, number string) (*changelog.Version, error) {
	if number != "" {
		v, err := cl.FindVersion(number)
		if err != nil {
			var notFound *changelog.VersionNotFoundError
			if errors.As(err, &notFound) {
				return nil, clierrors.NewArgumentError(err.Error(), "Run autoscribe show --all to list every version")
			}
			return nil, err
		}
		return &v, nil
	}

	if v, ok := cl.GetLatestVersion(); ok {
		return &v, nil
	}
	if v, ok := cl.GetUnreleasedChanges(); ok {
		return &v, nil
	}
	return nil, nil
}

func writeVersion(w io.Writer, v changelog.Version, format string, plain bool) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, changelog.RenderVersion(v))
		return err
	case FormatYAML:
		return encodeYAML(w, v)
	default:
		return changelog.FormatVersion(v, w, terminalOptions(plain))
	}
}

func writeChangelog(w io.Writer, cl *changelog.Changelog, format string, plain bool) error {
	switch format {
	case FormatMarkdown:
		return changelog.RenderMarkdown(cl, w)
	case FormatYAML:
		return encodeYAML(w, cl)
	default:
		if len(cl.Versions) == 0 {
			_, err := fmt.Fprintln(w, "No versions found.")
			return err
		}
		return changelog.FormatTerminal(cl, w, terminalOptions(plain))
	}
}

func terminalOptions(plain bool) changelog.FormatOptions {
	return changelog.FormatOptions{Plain: plain || color.NoColor}
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
