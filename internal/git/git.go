// Package git is the version-control collaborator for autoscribe. It uses the
// go-git library for every operation (log walking, tag listing, remotes, tag
// creation and push), so no git binary is required at runtime.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
	"github.com/autoscribe-dev/autoscribe/internal/version"
)

// DefaultRemote is the remote used for repository info and tag pushes.
const DefaultRemote = "origin"

// DefaultPushTimeout bounds a tag push when the caller's context has no deadline.
const DefaultPushTimeout = 60 * time.Second

// ErrNotRepository is returned by Open when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

// ErrTagExists is returned by CreateTag when the tag name is taken.
var ErrTagExists = errors.New("tag already exists")

// Repository wraps a go-git repository.
type Repository struct {
	repo *git.Repository
	log  *logging.Logger
}

// Open opens the repository containing path, walking up the directory tree
// to find it. An empty path means the current working directory.
func Open(path string, log *logging.Logger) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	log.Debugf("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return New(repo, log), nil
}

// New wraps an already opened repository. Tests pass in-memory ones.
func New(repo *git.Repository, log *logging.Logger) *Repository {
	if log == nil {
		log = logging.Discard()
	}
	return &Repository{repo: repo, log: log}
}

// Root returns the worktree root, or "" for bare repositories.
func (r *Repository) Root() string {
	wt, err := r.repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// Tags returns every tag name, sorted alphabetically.
func (r *Repository) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.Strings(tags)
	return tags, nil
}

// LatestTag returns the tag with the highest semantic version among tags
// starting with prefix. ok is false when there is none or listing fails.
func (r *Repository) LatestTag(prefix string) (tag string, ok bool) {
	tags, err := r.Tags()
	if err != nil {
		r.log.Warnf("could not list tags: %v", err)
		return "", false
	}

	tag, ok = version.LatestTag(tags, prefix)
	r.log.Debugf("[git] LatestTag(%q): %q", prefix, tag)
	return tag, ok
}

// TagExists reports whether a tag with the given name exists.
func (r *Repository) TagExists(name string) bool {
	_, err := r.repo.Tag(name)
	return err == nil
}

// Log returns the commits reachable from HEAD but not from since, newest
// first. An empty since returns the whole history.
func (r *Repository) Log(ctx context.Context, since string) ([]changelog.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	exclude := map[plumbing.Hash]bool{}
	if since != "" {
		exclude, err = r.ancestors(since)
		if err != nil {
			return nil, err
		}
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("creating commit iterator: %w", err)
	}
	defer iter.Close()

	var commits []changelog.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if exclude[c.Hash] {
			return nil
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}

	r.log.Debugf("[git] Log(%q): %d commits", since, len(commits))
	return commits, nil
}

// CommitsSince is Log with failures degraded to an empty list and a warning.
func (r *Repository) CommitsSince(ctx context.Context, since string) []changelog.Commit {
	commits, err := r.Log(ctx, since)
	if err != nil {
		if since == "" {
			r.log.Warnf("could not read commit history: %v", err)
		} else {
			r.log.Warnf("could not read commits since %s: %v", since, err)
		}
		return []changelog.Commit{}
	}
	if commits == nil {
		commits = []changelog.Commit{}
	}
	return commits
}

// ancestors returns the set of commits reachable from rev.
func (r *Repository) ancestors(rev string) (map[plumbing.Hash]bool, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: *hash})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", rev, err)
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", rev, err)
	}
	return seen, nil
}

func toCommit(c *object.Commit) changelog.Commit {
	return changelog.Commit{
		Hash:      c.Hash.String(),
		Message:   c.Message,
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
	}
}

// RemoteURL returns the first URL of the named remote.
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("getting remote %q: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", name)
	}
	return urls[0], nil
}

// RepoInfo returns the GitHub owner and repository name of the origin
// remote. ok is false when there is no origin or it is not on GitHub.
func (r *Repository) RepoInfo() (owner, repo string, ok bool) {
	url, err := r.RemoteURL(DefaultRemote)
	if err != nil {
		r.log.Debugf("[git] RepoInfo: %v", err)
		return "", "", false
	}
	return ParseGitHubURL(url)
}

var githubURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:[^@/]+@)?github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`),
	regexp.MustCompile(`^ssh://git@github\.com(?::\d+)?/([^/]+)/([^/]+?)(?:\.git)?/?$`),
}

// ParseGitHubURL extracts owner and repository from an HTTPS or SSH
// GitHub remote URL.
func ParseGitHubURL(url string) (owner, repo string, ok bool) {
	url = strings.TrimSpace(url)
	for _, re := range githubURLPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repository) CreateTag(name, message string) error {
	if name == "" || message == "" {
		return errors.New("tag name and message are required")
	}
	if r.TagExists(name) {
		return fmt.Errorf("%w: %s", ErrTagExists, name)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}

	r.log.Debugf("[git] CreateTag: %s at %s", name, head.Hash())
	return nil
}

// signature builds the tagger identity from git config, falling back to a
// fixed identity when user.name is not configured.
func (r *Repository) signature() *object.Signature {
	sig := &object.Signature{Name: "autoscribe", Email: "autoscribe@localhost", When: time.Now()}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
		sig.Email = cfg.User.Email
	}
	return sig
}

// PushTag pushes a single tag to the named remote. SSH remotes use the SSH
// agent; HTTPS remotes use credentials from the environment.
func (r *Repository) PushTag(ctx context.Context, remoteName, tag string) error {
	if tag == "" {
		return errors.New("tag name is required")
	}
	if remoteName == "" {
		remoteName = DefaultRemote
	}

	url, err := r.RemoteURL(remoteName)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPushTimeout)
		defer cancel()
	}

	ref := config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))
	r.log.Debugf("[git] pushing %s to %s (%s)", tag, remoteName, url)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{ref},
		Auth:       r.authForURL(url),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing tag %s to %s: %w", tag, remoteName, err)
	}
	return nil
}

// authForURL returns the authentication method for a remote URL.
func (r *Repository) authForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		if !isSSHAgentAvailable() {
			r.log.Debugf("[git] no SSH agent available for %s", url)
			return nil
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			r.log.Debugf("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		// GitHub accepts a token as password with any non-empty username.
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			username, password = "x-access-token", token
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}
	return nil
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// URLs.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
