// Package release publishes changelog sections as GitHub releases.
package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
)

// DefaultTimeout bounds a single API call when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// ErrUnavailable is returned when no token is configured or GitHub rejects it.
var ErrUnavailable = errors.New("GitHub token is required but not provided or invalid")

// ErrNotFound is returned when no release exists for the requested tag or ID.
var ErrNotFound = errors.New("release not found")

// Options configures a Publisher.
type Options struct {
	Token string
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	BaseURL    string
	HTTPClient *http.Client
	Log        *logging.Logger
}

// Request describes a release to create or update.
type Request struct {
	Owner      string
	Repo       string
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
}

func (r Request) validate() error {
	switch {
	case r.Owner == "" || r.Repo == "":
		return errors.New("owner and repository are required")
	case r.TagName == "":
		return errors.New("tag name is required")
	}
	return nil
}

// Release is the subset of a GitHub release autoscribe reads back.
type Release struct {
	ID          int64
	URL         string
	TagName     string
	Name        string
	Body        string
	Draft       bool
	Prerelease  bool
	CreatedAt   time.Time
	PublishedAt time.Time
}

// Publisher creates and manages releases through the GitHub REST API.
type Publisher struct {
	client   *github.Client
	hasToken bool
	log      *logging.Logger

	availableOnce sync.Once
	available     bool
}

// New creates a Publisher. Without a token the publisher reports itself
// unavailable instead of failing.
func New(opts Options) (*Publisher, error) {
	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = u
	}

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Publisher{client: client, hasToken: opts.Token != "", log: log}, nil
}

// Available reports whether a token is configured and accepted by GitHub.
// The check runs once per Publisher.
func (p *Publisher) Available(ctx context.Context) bool {
	p.availableOnce.Do(func() {
		if !p.hasToken {
			p.log.Debugf("[release] no GitHub token configured")
			return
		}

		ctx, cancel := withTimeout(ctx)
		defer cancel()

		user, _, err := p.client.Users.Get(ctx, "")
		if err != nil {
			p.log.Warnf("GitHub API not reachable: %v", err)
			return
		}
		p.available = user.GetLogin() != ""
		p.log.Debugf("[release] authenticated as %s", user.GetLogin())
	})
	return p.available
}

// CreateRelease creates a release and returns its HTML URL.
func (p *Publisher) CreateRelease(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if !p.Available(ctx) {
		return "", ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rel, _, err := p.client.Repositories.CreateRelease(ctx, req.Owner, req.Repo, toGitHub(req))
	if err != nil {
		return "", fmt.Errorf("creating release %s in %s/%s: %w", req.TagName, req.Owner, req.Repo, err)
	}

	p.log.Debugf("[release] created %s (id %d)", rel.GetHTMLURL(), rel.GetID())
	return rel.GetHTMLURL(), nil
}

// UpdateRelease replaces the fields of an existing release.
func (p *Publisher) UpdateRelease(ctx context.Context, id int64, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if !p.Available(ctx) {
		return "", ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rel, _, err := p.client.Repositories.EditRelease(ctx, req.Owner, req.Repo, id, toGitHub(req))
	if err != nil {
		return "", wrapNotFound(err, "updating release %d in %s/%s", id, req.Owner, req.Repo)
	}
	return rel.GetHTMLURL(), nil
}

// GetReleaseByTag looks up the release for a tag.
func (p *Publisher) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (Release, error) {
	if !p.Available(ctx) {
		return Release{}, ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rel, _, err := p.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return Release{}, wrapNotFound(err, "getting release %s in %s/%s", tag, owner, repo)
	}
	return fromGitHub(rel), nil
}

// DeleteRelease deletes a release by ID. The tag itself is left in place.
func (p *Publisher) DeleteRelease(ctx context.Context, owner, repo string, id int64) error {
	if !p.Available(ctx) {
		return ErrUnavailable
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := p.client.Repositories.DeleteRelease(ctx, owner, repo, id); err != nil {
		return wrapNotFound(err, "deleting release %d in %s/%s", id, owner, repo)
	}
	return nil
}

// Body renders the release notes for v: the changelog section without its
// heading, followed by a comparison link when one is known.
func Body(v changelog.Version, compareURL string) string {
	section := changelog.RenderVersion(v)
	if _, rest, ok := strings.Cut(section, "\n"); ok {
		section = rest
	}
	section = strings.TrimSpace(section)

	if compareURL == "" {
		compareURL = v.CompareURL
	}
	if compareURL == "" {
		return section + "\n"
	}
	if section == "" {
		return "**Full Changelog**: " + compareURL + "\n"
	}
	return section + "\n\n**Full Changelog**: " + compareURL + "\n"
}

// CompareURL returns the GitHub comparison link between two tags.
func CompareURL(owner, repo, previousTag, tag string) string {
	return fmt.Sprintf("https://github.com/%s/%s/compare/%s...%s", owner, repo, previousTag, tag)
}

func toGitHub(req Request) *github.RepositoryRelease {
	rel := &github.RepositoryRelease{
		TagName:    github.String(req.TagName),
		Body:       github.String(req.Body),
		Draft:      github.Bool(req.Draft),
		Prerelease: github.Bool(req.Prerelease),
	}
	name := req.Name
	if name == "" {
		name = req.TagName
	}
	rel.Name = github.String(name)
	return rel
}

func fromGitHub(rel *github.RepositoryRelease) Release {
	return Release{
		ID:          rel.GetID(),
		URL:         rel.GetHTMLURL(),
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Body:        rel.GetBody(),
		Draft:       rel.GetDraft(),
		Prerelease:  rel.GetPrerelease(),
		CreatedAt:   rel.GetCreatedAt().Time,
		PublishedAt: rel.GetPublishedAt().Time,
	}
}

func wrapNotFound(err error, format string, args ...any) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
