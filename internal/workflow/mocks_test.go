package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/release"
)

// call records one invocation of a fake collaborator.
type call struct {
	Method string
	Args   []string
}

type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (l *callLog) record(method string, args ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call{Method: method, Args: args})
}

func (l *callLog) Calls(method string) []call {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []call
	for _, c := range l.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// fakeVCS is an in-memory VCS.
type fakeVCS struct {
	callLog

	tag     string
	commits []changelog.Commit
	owner   string
	repo    string

	tagErr  error
	pushErr error
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{}
}

func (f *fakeVCS) WithTag(tag string) *fakeVCS {
	f.tag = tag
	return f
}

func (f *fakeVCS) WithCommits(messages ...string) *fakeVCS {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range messages {
		f.commits = append(f.commits, changelog.Commit{
			Hash:      fmt.Sprintf("%040d", i+1),
			Message:   msg,
			Author:    "Dev",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return f
}

func (f *fakeVCS) WithGitHub(owner, repo string) *fakeVCS {
	f.owner, f.repo = owner, repo
	return f
}

func (f *fakeVCS) WithTagError(err error) *fakeVCS {
	f.tagErr = err
	return f
}

func (f *fakeVCS) WithPushError(err error) *fakeVCS {
	f.pushErr = err
	return f
}

func (f *fakeVCS) LatestTag(prefix string) (string, bool) {
	f.record("LatestTag", prefix)
	if f.tag == "" || !strings.HasPrefix(f.tag, prefix) {
		return "", false
	}
	return f.tag, true
}

func (f *fakeVCS) CommitsSince(_ context.Context, since string) []changelog.Commit {
	f.record("CommitsSince", since)
	return f.commits
}

func (f *fakeVCS) RepoInfo() (string, string, bool) {
	f.record("RepoInfo")
	return f.owner, f.repo, f.owner != ""
}

func (f *fakeVCS) CreateTag(name, message string) error {
	f.record("CreateTag", name, message)
	return f.tagErr
}

func (f *fakeVCS) PushTag(_ context.Context, remote, tag string) error {
	f.record("PushTag", remote, tag)
	return f.pushErr
}

// fakeEnhancer prefixes descriptions and writes a fixed summary.
type fakeEnhancer struct {
	callLog

	available  bool
	summary    string
	enhanceErr error
}

func (f *fakeEnhancer) Available(context.Context) bool {
	f.record("Available")
	return f.available
}

func (f *fakeEnhancer) EnhanceChanges(_ context.Context, changes []changelog.Change) ([]changelog.Change, error) {
	f.record("EnhanceChanges")
	out := make([]changelog.Change, len(changes))
	for i, ch := range changes {
		out[i] = ch.WithDescription("Improved: " + ch.Description)
	}
	return out, f.enhanceErr
}

func (f *fakeEnhancer) SummarizeVersion(_ context.Context, v changelog.Version) (changelog.Version, error) {
	f.record("SummarizeVersion", v.Number)
	return v.WithSummary(f.summary), nil
}

// fakePublisher captures release requests.
type fakePublisher struct {
	callLog

	available bool
	url       string
	err       error
	requests  []release.Request
}

func (f *fakePublisher) Available(context.Context) bool {
	f.record("Available")
	return f.available
}

func (f *fakePublisher) CreateRelease(_ context.Context, req release.Request) (string, error) {
	f.record("CreateRelease", req.TagName)
	f.requests = append(f.requests, req)
	return f.url, f.err
}
