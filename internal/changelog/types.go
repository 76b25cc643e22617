package changelog

import (
	"fmt"
	"strings"
	"time"
)

// CategoryName is one of the closed set of changelog sections.
type CategoryName string

const (
	Added         CategoryName = "Added"
	Changed       CategoryName = "Changed"
	Deprecated    CategoryName = "Deprecated"
	Removed       CategoryName = "Removed"
	Fixed         CategoryName = "Fixed"
	Security      CategoryName = "Security"
	Documentation CategoryName = "Documentation"
	Performance   CategoryName = "Performance"
	Testing       CategoryName = "Testing"
	Build         CategoryName = "Build"
	CI            CategoryName = "CI"
)

// Unreleased is the sentinel version number for changes not yet released.
const Unreleased = "Unreleased"

// AllCategories returns every valid category in canonical order.
func AllCategories() []CategoryName {
	return []CategoryName{
		Added, Changed, Deprecated, Removed, Fixed, Security,
		Documentation, Performance, Testing, Build, CI,
	}
}

// DefaultCategories returns the six Keep a Changelog categories
// (https://keepachangelog.com/en/1.1.0/) in their standard order.
func DefaultCategories() []CategoryName {
	return []CategoryName{Added, Changed, Deprecated, Removed, Fixed, Security}
}

// Valid reports whether c is a member of the closed category set.
func (c CategoryName) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategoryName converts a string to a CategoryName.
// Matching is exact; "added" is not "Added".
func ParseCategoryName(s string) (CategoryName, error) {
	c := CategoryName(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category %q (valid: %s)", s, joinCategories(AllCategories()))
	}
	return c, nil
}

func joinCategories(cats []CategoryName) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Commit is a single commit as read from version control.
type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

// Change is one user-facing changelog line derived from a commit.
// An empty Scope means the commit carried no scope.
type Change struct {
	Description   string   `yaml:"description"`
	CommitHash    string   `yaml:"commit_hash,omitempty"`
	CommitMessage string   `yaml:"commit_message,omitempty"`
	Author        string   `yaml:"author,omitempty"`
	Type          string   `yaml:"type,omitempty"`
	Scope         string   `yaml:"scope,omitempty"`
	Breaking      bool     `yaml:"breaking,omitempty"`
	AIEnhanced    bool     `yaml:"ai_enhanced,omitempty"`
	References    []string `yaml:"references,omitempty"`
}

// WithDescription returns a copy of c carrying an enhanced description.
func (c Change) WithDescription(description string) Change {
	out := c
	out.Description = description
	out.AIEnhanced = true
	if c.References != nil {
		out.References = append([]string(nil), c.References...)
	}
	return out
}

// Category groups changes under one section heading.
type Category struct {
	Name    CategoryName `yaml:"name"`
	Changes []Change     `yaml:"changes"`
}

// Version is one release section of the changelog.
// BreakingChanges is derived: true iff any contained change is breaking.
type Version struct {
	Number          string     `yaml:"number"`
	Date            time.Time  `yaml:"date"`
	Categories      []Category `yaml:"categories"`
	Summary         string     `yaml:"summary,omitempty"`
	BreakingChanges bool       `yaml:"breaking_changes"`
	Yanked          bool       `yaml:"yanked,omitempty"`
	CompareURL      string     `yaml:"compare_url,omitempty"`
}

// IsUnreleased returns true if this version holds unreleased changes.
func (v Version) IsUnreleased() bool {
	return v.Number == Unreleased
}

// ChangeCount returns the number of changes across all categories.
func (v Version) ChangeCount() int {
	n := 0
	for _, c := range v.Categories {
		n += len(c.Changes)
	}
	return n
}

// Category returns the category with the given name, if present.
func (v Version) Category(name CategoryName) (Category, bool) {
	for _, c := range v.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Changes returns all changes in category order.
func (v Version) Changes() []Change {
	all := make([]Change, 0, v.ChangeCount())
	for _, c := range v.Categories {
		all = append(all, c.Changes...)
	}
	return all
}

// WithSummary returns a copy of v with the summary replaced.
func (v Version) WithSummary(summary string) Version {
	out := v
	out.Summary = summary
	return out
}

// WithNumber returns a copy of v renumbered.
func (v Version) WithNumber(number string) Version {
	out := v
	out.Number = number
	return out
}

// WithCompareURL returns a copy of v carrying a comparison link.
func (v Version) WithCompareURL(url string) Version {
	out := v
	out.CompareURL = url
	return out
}
