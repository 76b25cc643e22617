package changelog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan15 = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestRenderVersion_ExactFormat(t *testing.T) {
	t.Parallel()

	v := Version{
		Number:          "1.0.0",
		Date:            jan15,
		Summary:         "A big release.",
		BreakingChanges: true,
		Categories: []Category{
			{Name: Added, Changes: []Change{
				{Description: "add X"},
				{Description: "add login", Scope: "auth"},
			}},
			{Name: Changed, Changes: []Change{
				{Description: "remove Z", Breaking: true},
				{Description: "drop v1 API", Scope: "api", Breaking: true},
			}},
		},
	}

	want := "## [1.0.0] - 2026-01-15\n\n" +
		"A big release.\n\n" +
		"### ⚠️ BREAKING CHANGES\n\n" +
		"### Added\n\n" +
		"- add X\n" +
		"- **auth**: add login\n" +
		"\n" +
		"### Changed\n\n" +
		"- BREAKING CHANGE: remove Z\n" +
		"- BREAKING CHANGE: **api**: drop v1 API\n" +
		"\n"

	assert.Equal(t, want, RenderVersion(v))
}

func TestRenderVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version     Version
		contains    []string
		notContains []string
	}{
		"no summary no breaking": {
			version: Version{Number: "0.1.0", Date: jan15, Categories: []Category{
				{Name: Fixed, Changes: []Change{{Description: "resolve Y"}}},
			}},
			contains:    []string{"## [0.1.0] - 2026-01-15\n\n### Fixed\n\n- resolve Y\n"},
			notContains: []string{"BREAKING"},
		},
		"empty category skipped": {
			version: Version{Number: "0.2.0", Date: jan15, Categories: []Category{
				{Name: Added},
				{Name: Fixed, Changes: []Change{{Description: "resolve Y"}}},
			}},
			contains:    []string{"### Fixed"},
			notContains: []string{"### Added"},
		},
		"unreleased without date": {
			version: Version{Number: Unreleased, Categories: []Category{
				{Name: Added, Changes: []Change{{Description: "wip"}}},
			}},
			contains:    []string{"## [Unreleased]\n\n"},
			notContains: []string{"] - "},
		},
		"yanked": {
			version:  Version{Number: "0.3.0", Date: jan15, Yanked: true},
			contains: []string{"## [0.3.0] - 2026-01-15 [YANKED]"},
		},
		"category order preserved": {
			version: Version{Number: "1.0.0", Date: jan15, Categories: []Category{
				{Name: Security, Changes: []Change{{Description: "s"}}},
				{Name: Added, Changes: []Change{{Description: "a"}}},
			}},
			contains: []string{"### Security\n\n- s\n\n### Added\n\n- a\n"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := RenderVersion(tt.version)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestRenderVersion_ContainsEveryDescription(t *testing.T) {
	t.Parallel()

	v := generateLargeChangelog(37).Versions[0]
	got := RenderVersion(v)

	assert.Contains(t, got, "## ["+v.Number+"]")
	for _, ch := range v.Changes() {
		assert.Contains(t, got, ch.Description)
	}
}

func TestRenderMarkdownString(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddVersion(Version{Number: "1.0.0", Date: jan15, Categories: []Category{
		{Name: Added, Changes: []Change{{Description: "first"}}},
	}})
	c.AddVersion(Version{Number: "1.1.0", Date: jan15.AddDate(0, 1, 0), Categories: []Category{
		{Name: Fixed, Changes: []Change{{Description: "second"}}},
	}})

	got, err := RenderMarkdownString(c)
	require.NoError(t, err)

	want := "# Changelog\n\n" +
		defaultDescription + "\n\n" +
		"## [1.1.0] - 2026-02-15\n\n### Fixed\n\n- second\n\n\n" +
		"## [1.0.0] - 2026-01-15\n\n### Added\n\n- first\n\n\n"
	assert.Equal(t, want, got)
	assert.Less(t, strings.Index(got, "[1.1.0]"), strings.Index(got, "[1.0.0]"))
}

func TestRenderMarkdownEmptyChangelog(t *testing.T) {
	t.Parallel()

	got, err := RenderMarkdownString(New())
	require.NoError(t, err)
	assert.Equal(t, "# Changelog\n\n"+defaultDescription+"\n\n", got)
}

func TestRenderMarkdownIdempotent(t *testing.T) {
	t.Parallel()

	c := generateLargeChangelog(25)
	first, err := RenderMarkdownString(c)
	require.NoError(t, err)
	second, err := RenderMarkdownString(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderMarkdownFooterLinks(t *testing.T) {
	t.Parallel()

	c := &Changelog{Title: "Changelog", Versions: []Version{
		{Number: "1.1.0", Date: jan15, CompareURL: "https://github.com/o/r/compare/v1.0.0...v1.1.0"},
		{Number: "1.0.0", Date: jan15},
	}}

	got, err := RenderMarkdownString(c)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "[1.1.0]: https://github.com/o/r/compare/v1.0.0...v1.1.0\n"))
	assert.NotContains(t, got, "[1.0.0]: ")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderMarkdown_WriteError(t *testing.T) {
	t.Parallel()

	err := RenderMarkdown(New(), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering header")
	assert.Contains(t, err.Error(), "disk full")
}

func TestFormatChangeLine(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		change Change
		want   string
	}{
		"plain":             {change: Change{Description: "x"}, want: "- x"},
		"scoped":            {change: Change{Description: "x", Scope: "ui"}, want: "- **ui**: x"},
		"breaking":          {change: Change{Description: "x", Breaking: true}, want: "- BREAKING CHANGE: x"},
		"breaking + scoped": {change: Change{Description: "x", Scope: "ui", Breaking: true}, want: "- BREAKING CHANGE: **ui**: x"},
		"multi-line": {
			change: Change{Description: "Merge branch dev\n\n* add a\n### Notes  \r"},
			want:   "- Merge branch dev\n\n  * add a\n  ### Notes",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatChangeLine(tt.change))
		})
	}
}
