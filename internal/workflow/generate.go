package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-billy/v5/util"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/commit"
	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
	"github.com/autoscribe-dev/autoscribe/internal/release"
	"github.com/autoscribe-dev/autoscribe/internal/version"
)

// GenerateOptions are the per-run switches of `autoscribe generate`.
type GenerateOptions struct {
	// Version is the number to generate; empty suggests one from the
	// latest tag and the kinds of changes.
	Version    string
	Draft      bool
	Prerelease bool
	// Force replaces an existing entry with the same number.
	Force bool
	// Tag creates an annotated tag for the new version; Push also pushes it.
	Tag  bool
	Push bool
	// DryRun prints the rendered section instead of writing anything.
	DryRun bool
}

// GenerateResult reports what a generate run did.
type GenerateResult struct {
	Version     changelog.Version
	PreviousTag string
	Tag         string
	Commits     int
	// NoChanges is set when there was nothing to generate.
	NoChanges bool
	// Rendered is the Markdown section for Version.
	Rendered           string
	ChangelogWritten   bool
	VersionFileUpdated bool
	TagCreated         bool
	TagPushed          bool
	ReleaseURL         string
}

// Generate runs the full pipeline: read history, assemble a version,
// prepend it to the changelog and apply the optional release steps.
func (r *Runner) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Push && !opts.Tag {
		return nil, clierrors.InvalidFlagCombination("--push without --tag", "Add --tag to create the tag that is pushed")
	}

	cl, err := r.loadChangelog(r.cfg.Output)
	if err != nil {
		return nil, err
	}

	prevTag, hasPrev := r.vcs.LatestTag(r.cfg.TagPrefix)
	if hasPrev {
		r.log.Infof("Latest tag: %s", prevTag)
	} else {
		r.log.Infof("No previous tag found, using full history")
	}

	commits := r.vcs.CommitsSince(ctx, prevTag)
	if len(commits) == 0 && opts.Version == "" {
		r.log.Warnf("no commits found since %s, nothing to generate", describeTag(prevTag))
		return &GenerateResult{PreviousTag: prevTag, NoChanges: true}, nil
	}

	number, err := r.resolveVersion(opts.Version, prevTag, hasPrev, commits)
	if err != nil {
		return nil, err
	}

	if number != changelog.Unreleased {
		if _, exists := cl.GetVersion(number); exists {
			if !opts.Force {
				return nil, clierrors.VersionExists(number, r.displayPath(r.cfg.Output))
			}
			cl.RemoveVersion(number)
			r.log.Warnf("replacing existing entry for %s", number)
		}
	}

	v := r.assemble(ctx, number, commits)

	res := &GenerateResult{
		PreviousTag: prevTag,
		Commits:     len(commits),
	}
	released := !v.IsUnreleased()
	if released {
		res.Tag = r.cfg.TagPrefix + number
		if url, ok := r.compareURL(prevTag, res.Tag); ok {
			v = v.WithCompareURL(url)
		}
	}

	cl.RemoveVersion(changelog.Unreleased)
	cl.AddVersion(v)

	res.Version = v
	res.Rendered = changelog.RenderVersion(v)

	if opts.DryRun {
		fmt.Fprint(r.out, res.Rendered)
		return res, nil
	}

	if err := r.writeChangelog(r.cfg.Output, cl); err != nil {
		return res, err
	}
	res.ChangelogWritten = true
	r.log.Successf("Updated %s with version %s", r.displayPath(r.cfg.Output), number)

	if !released {
		return res, nil
	}

	res.VersionFileUpdated = r.updateVersionFile(number)

	if opts.Tag {
		if err := r.tag(ctx, res, opts.Push); err != nil {
			return res, err
		}
	}

	if r.cfg.GitHubRelease {
		res.ReleaseURL = r.publish(ctx, v, res.Tag, opts)
	}

	return res, nil
}

// resolveVersion validates an explicit number or suggests the next one.
func (r *Runner) resolveVersion(explicit, prevTag string, hasPrev bool, commits []changelog.Commit) (string, error) {
	if explicit != "" {
		if explicit == changelog.Unreleased {
			return explicit, nil
		}
		number := changelog.NormalizeVersion(explicit)
		if !version.Valid(number) {
			return "", clierrors.InvalidVersion(explicit)
		}
		return number, nil
	}

	if !hasPrev {
		return changelog.Unreleased, nil
	}

	current, err := version.FromTag(prevTag, r.cfg.TagPrefix)
	if err != nil {
		r.log.Warnf("cannot derive a version from tag %s: %v", prevTag, err)
		return changelog.Unreleased, nil
	}

	breaking, features := summarizeKinds(commits)
	bump := version.SuggestBump(breaking, features)
	next, err := version.Next(current, bump)
	if err != nil {
		return "", fmt.Errorf("bumping %s: %w", current, err)
	}
	r.log.Infof("Suggested version %s (%s bump from %s)", next, bump, current)
	return next, nil
}

// summarizeKinds reports whether any commit is breaking and whether any
// adds a feature.
func summarizeKinds(commits []changelog.Commit) (breaking, features bool) {
	for _, c := range commits {
		p := commit.Parse(c.Message)
		breaking = breaking || p.Breaking
		features = features || p.Type == commit.Feat
	}
	return breaking, features
}

// assemble builds the version, showing a spinner while an enhancer runs.
func (r *Runner) assemble(ctx context.Context, number string, commits []changelog.Commit) changelog.Version {
	opts := []changelog.GeneratorOption{
		changelog.WithLogger(r.log),
		changelog.WithClock(r.now),
	}
	if r.enhancer == nil {
		gen := changelog.NewGenerator(r.cfg.CategoryNames(), opts...)
		return gen.GenerateVersion(ctx, number, commits)
	}

	gen := changelog.NewGenerator(r.cfg.CategoryNames(), append(opts, changelog.WithEnhancer(r.enhancer))...)
	var v changelog.Version
	_ = r.spinner.Run(fmt.Sprintf("Generating %s from %d commits", number, len(commits)), func() error {
		v = gen.GenerateVersion(ctx, number, commits)
		return nil
	})
	return v
}

func (r *Runner) compareURL(prevTag, tag string) (string, bool) {
	if prevTag == "" {
		return "", false
	}
	owner, repo, ok := r.vcs.RepoInfo()
	if !ok {
		return "", false
	}
	return release.CompareURL(owner, repo, prevTag, tag), true
}

// updateVersionFile rewrites the configured version file. A missing file or
// pattern is a warning, not an error.
func (r *Runner) updateVersionFile(number string) bool {
	path := r.cfg.VersionFile
	if path == "" {
		return false
	}

	data, err := util.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debugf("[workflow] version file %s not found, skipping", path)
		} else {
			r.log.Warnf("could not read %s: %v", r.displayPath(path), err)
		}
		return false
	}

	updated, err := version.UpdateContent(string(data), number, r.cfg.VersionPattern)
	if err != nil {
		r.log.Warnf("version not updated in %s: %v", r.displayPath(path), err)
		return false
	}
	if updated == string(data) {
		return false
	}

	if err := r.writeFile(path, []byte(updated)); err != nil {
		r.log.Warnf("%v", err)
		return false
	}
	r.log.Successf("Updated version in %s to %s", r.displayPath(path), number)
	return true
}

// tag creates and optionally pushes the release tag.
func (r *Runner) tag(ctx context.Context, res *GenerateResult, push bool) error {
	if err := r.vcs.CreateTag(res.Tag, "Release "+res.Tag); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime,
			fmt.Sprintf("failed to create tag %s", res.Tag),
			"The changelog was written; create the tag manually with: git tag -a "+res.Tag,
		)
	}
	res.TagCreated = true
	r.log.Successf("Created tag %s", res.Tag)

	if !push {
		return nil
	}

	err := r.spinner.Run("Pushing "+res.Tag, func() error {
		return r.vcs.PushTag(ctx, "", res.Tag)
	})
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime,
			fmt.Sprintf("failed to push tag %s", res.Tag),
			"Push it manually with: git push origin "+res.Tag,
		)
	}
	res.TagPushed = true
	return nil
}

// publish creates the GitHub release. Every failure is a warning.
func (r *Runner) publish(ctx context.Context, v changelog.Version, tag string, opts GenerateOptions) string {
	if r.publisher == nil || !r.publisher.Available(ctx) {
		r.log.Warnf("GitHub release skipped: no valid GitHub token")
		return ""
	}

	owner, repo, ok := r.vcs.RepoInfo()
	if !ok {
		r.log.Warnf("GitHub release skipped: origin is not a GitHub repository")
		return ""
	}

	req := release.Request{
		Owner:      owner,
		Repo:       repo,
		TagName:    tag,
		Name:       tag,
		Body:       release.Body(v, ""),
		Draft:      opts.Draft,
		Prerelease: opts.Prerelease,
	}

	var url string
	err := r.spinner.Run("Publishing GitHub release "+tag, func() error {
		var err error
		url, err = r.publisher.CreateRelease(ctx, req)
		return err
	})
	if err != nil {
		r.log.Warnf("GitHub release failed: %v", err)
		return ""
	}
	r.log.Successf("Published release %s", url)
	return url
}

func describeTag(tag string) string {
	if tag == "" {
		return "the beginning of history"
	}
	return tag
}
