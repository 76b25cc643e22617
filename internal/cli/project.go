package cli

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/autoscribe-dev/autoscribe/internal/ai"
	"github.com/autoscribe-dev/autoscribe/internal/config"
	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
	"github.com/autoscribe-dev/autoscribe/internal/git"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
	"github.com/autoscribe-dev/autoscribe/internal/progress"
	"github.com/autoscribe-dev/autoscribe/internal/release"
	"github.com/autoscribe-dev/autoscribe/internal/workflow"
)

// projectOptions locate the project and its configuration.
type projectOptions struct {
	ConfigPath string
	// Dir is the project directory; empty means the working directory.
	Dir       string
	Verbose   bool
	Overrides config.Overrides
}

// globalProjectOptions collects the persistent root flags.
func globalProjectOptions() projectOptions {
	return projectOptions{ConfigPath: configPath, Verbose: verbose}
}

func newLogger(w io.Writer, verbose bool) *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(w, level, !color.NoColor)
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(opts projectOptions) (*config.Configuration, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigPath: opts.ConfigPath,
		Dir:        opts.Dir,
	})
	if err != nil {
		return nil, configError(err)
	}
	return cfg.ApplyOverrides(opts.Overrides), nil
}

func configError(err error) error {
	var ve *config.ValidationError
	if !errors.As(err, &ve) {
		return clierrors.Wrap(err, clierrors.Configuration)
	}
	if ve.Field != "" {
		return clierrors.ConfigInvalid(err)
	}
	return clierrors.ConfigParseError(ve.FilePath, err)
}

// openRepository opens the git repository containing the project.
func openRepository(cfg *config.Configuration, log *logging.Logger) (*git.Repository, error) {
	repo, err := git.Open(cfg.Dir, log)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return nil, clierrors.NotGitRepository(cfg.Dir, err)
		}
		return nil, clierrors.Wrap(err, clierrors.Runtime)
	}
	return repo, nil
}

// capabilitiesFor detects terminal features when w is a file.
func capabilitiesFor(w io.Writer) progress.TerminalCapabilities {
	if f, ok := w.(*os.File); ok {
		return progress.DetectTerminalCapabilities(f)
	}
	return progress.TerminalCapabilities{}
}

// newRunner wires the workflow over the real filesystem and whichever
// collaborators the configuration enables.
func newRunner(cmd *cobra.Command, cfg *config.Configuration, log *logging.Logger, vcs workflow.VCS) (*workflow.Runner, error) {
	opts := []workflow.Option{
		workflow.WithLogger(log),
		workflow.WithOutput(cmd.OutOrStdout()),
		workflow.WithSpinner(progress.NewSpinner(cmd.ErrOrStderr(), capabilitiesFor(cmd.ErrOrStderr()))),
	}

	if cfg.AIEnabled {
		if cfg.AIReady() {
			opts = append(opts, workflow.WithEnhancer(ai.New(ai.Options{
				APIKey:      cfg.OpenAIAPIKey,
				Model:       cfg.AIModel,
				BaseURL:     cfg.AIBaseURL,
				Concurrency: cfg.AIConcurrency,
				Log:         log,
			})))
		} else {
			log.Warnf("AI enhancement enabled but openai_api_key is not set, using commit descriptions")
		}
	}

	if cfg.ReleaseReady() {
		pub, err := release.New(release.Options{Token: cfg.GitHubToken, Log: log})
		if err != nil {
			return nil, clierrors.ConfigInvalid(err)
		}
		opts = append(opts, workflow.WithPublisher(pub))
	}

	return workflow.NewRunner(cfg, osfs.New("/"), vcs, opts...), nil
}
