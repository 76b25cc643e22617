// Package workflow runs the autoscribe pipelines: init writes an empty
// changelog and default config, generate turns commits since the latest tag
// into a new changelog section and optionally tags and publishes it.
// Collaborators are injected as interfaces so tests can supply fakes, and
// every file goes through a billy.Filesystem (osfs in production, memfs in
// tests).
package workflow

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/config"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
	"github.com/autoscribe-dev/autoscribe/internal/progress"
	"github.com/autoscribe-dev/autoscribe/internal/release"
)

// VCS is the version-control collaborator.
type VCS interface {
	LatestTag(prefix string) (string, bool)
	CommitsSince(ctx context.Context, since string) []changelog.Commit
	RepoInfo() (owner, repo string, ok bool)
	CreateTag(name, message string) error
	PushTag(ctx context.Context, remote, tag string) error
}

// Publisher is the release-publish collaborator.
type Publisher interface {
	Available(ctx context.Context) bool
	CreateRelease(ctx context.Context, req release.Request) (string, error)
}

// Runner executes the init and generate pipelines.
type Runner struct {
	cfg       *config.Configuration
	fs        billy.Filesystem
	vcs       VCS
	enhancer  changelog.Enhancer
	publisher Publisher
	spinner   *progress.Spinner
	log       *logging.Logger
	out       io.Writer
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithEnhancer enables AI enhancement through e.
func WithEnhancer(e changelog.Enhancer) Option {
	return func(r *Runner) { r.enhancer = e }
}

// WithPublisher enables release publishing through p.
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithSpinner shows s around slow collaborator calls.
func WithSpinner(s *progress.Spinner) Option {
	return func(r *Runner) { r.spinner = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithOutput sets where --dry-run output is written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithClock overrides the time source for version dates.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner over the given configuration, filesystem and
// version-control collaborator.
func NewRunner(cfg *config.Configuration, fs billy.Filesystem, vcs VCS, opts ...Option) *Runner {
	r := &Runner{
		cfg: cfg,
		fs:  fs,
		vcs: vcs,
		log: logging.Discard(),
		out: io.Discard,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// displayPath returns path relative to the project directory when possible.
func (r *Runner) displayPath(path string) string {
	if r.cfg.Dir == "" {
		return path
	}
	rel, err := filepath.Rel(r.cfg.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
