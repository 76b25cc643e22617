package changelog

import (
	"context"
	"time"

	"github.com/autoscribe-dev/autoscribe/internal/commit"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
)

// Enhancer rewrites change descriptions and writes version summaries.
// Implementations are best-effort: EnhanceChanges returns a slice of the
// same length and order as its input, keeping the original entry for any
// item it failed on, and reports those failures through the error.
type Enhancer interface {
	Available(ctx context.Context) bool
	EnhanceChanges(ctx context.Context, changes []Change) ([]Change, error)
	SummarizeVersion(ctx context.Context, v Version) (Version, error)
}

// Generator assembles Versions from commits.
type Generator struct {
	categories []CategoryName
	enhancer   Enhancer
	log        *logging.Logger
	now        func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithEnhancer attaches an enhancement collaborator.
func WithEnhancer(e Enhancer) GeneratorOption {
	return func(g *Generator) { g.enhancer = e }
}

// WithLogger sets the logger used for enhancement warnings.
func WithLogger(l *logging.Logger) GeneratorOption {
	return func(g *Generator) { g.log = l }
}

// WithClock overrides the time source used for version dates.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator that keeps only the given categories,
// in the given order. Invalid and repeated names are ignored.
func NewGenerator(categories []CategoryName, opts ...GeneratorOption) *Generator {
	g := &Generator{
		log: logging.Discard(),
		now: time.Now,
	}

	seen := make(map[CategoryName]bool)
	for _, c := range categories {
		if !c.Valid() || seen[c] {
			continue
		}
		seen[c] = true
		g.categories = append(g.categories, c)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Categories returns the enabled categories in render order.
func (g *Generator) Categories() []CategoryName {
	return append([]CategoryName(nil), g.categories...)
}

// ChangeFromCommit parses and classifies a single commit.
func ChangeFromCommit(c Commit) Change {
	parsed := commit.Parse(c.Message)
	return Change{
		Description:   parsed.Description,
		CommitHash:    c.Hash,
		CommitMessage: c.Message,
		Author:        c.Author,
		Type:          string(parsed.Type),
		Scope:         parsed.Scope,
		Breaking:      parsed.Breaking,
		References:    commit.References(c.Message),
	}
}

// ChangesFromCommits converts commits to changes, preserving order.
func ChangesFromCommits(commits []Commit) []Change {
	changes := make([]Change, 0, len(commits))
	for _, c := range commits {
		changes = append(changes, ChangeFromCommit(c))
	}
	return changes
}

// Categorize groups changes into the enabled categories. Changes whose
// category is not enabled are dropped; empty categories are omitted.
// Within a category, changes keep their input order.
func (g *Generator) Categorize(changes []Change) []Category {
	buckets := make(map[CategoryName][]Change, len(g.categories))
	for _, ch := range changes {
		name := Classify(ch.Type, ch.Breaking)
		buckets[name] = append(buckets[name], ch)
	}

	var out []Category
	for _, name := range g.categories {
		if len(buckets[name]) == 0 {
			continue
		}
		out = append(out, Category{Name: name, Changes: buckets[name]})
	}
	return out
}

// GenerateVersion builds a Version numbered number from commits.
// Enhancement failures never abort assembly; the unenhanced changes and an
// absent summary are used instead.
func (g *Generator) GenerateVersion(ctx context.Context, number string, commits []Commit) Version {
	changes := ChangesFromCommits(commits)

	breaking := false
	for _, ch := range changes {
		if ch.Breaking {
			breaking = true
			break
		}
	}

	available := g.enhancerAvailable(ctx)
	if available {
		changes = g.enhance(ctx, changes)
	}

	v := Version{
		Number:          number,
		Date:            g.now(),
		Categories:      g.Categorize(changes),
		BreakingChanges: breaking,
	}

	if available {
		v = g.summarize(ctx, v)
	}
	return v
}

func (g *Generator) enhancerAvailable(ctx context.Context) bool {
	if g.enhancer == nil {
		return false
	}
	if !g.enhancer.Available(ctx) {
		g.log.Warnf("AI enhancement unavailable, using commit descriptions")
		return false
	}
	return true
}

func (g *Generator) enhance(ctx context.Context, changes []Change) []Change {
	enhanced, err := g.enhancer.EnhanceChanges(ctx, changes)
	if err != nil {
		g.log.Warnf("some changes could not be enhanced: %v", err)
	}
	if len(enhanced) != len(changes) {
		g.log.Warnf("enhancer returned %d changes for %d inputs, keeping originals", len(enhanced), len(changes))
		return changes
	}

	// The breaking flag belongs to the commit, not the rewritten text.
	for i := range enhanced {
		enhanced[i].Breaking = changes[i].Breaking
	}
	return enhanced
}

func (g *Generator) summarize(ctx context.Context, v Version) Version {
	summarized, err := g.enhancer.SummarizeVersion(ctx, v)
	if err != nil {
		g.log.Warnf("could not generate version summary: %v", err)
		return v
	}
	return v.WithSummary(summarized.Summary)
}
