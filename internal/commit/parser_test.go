package commit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		message string
		want    Parsed
	}{
		"simple feature": {
			message: "feat: add X",
			want:    Parsed{Type: Feat, Description: "add X"},
		},
		"fix with scope": {
			message: "fix(api): resolve Y",
			want:    Parsed{Type: Fix, Scope: "api", Description: "resolve Y"},
		},
		"bang marks breaking": {
			message: "feat!: remove Z",
			want:    Parsed{Type: Feat, Description: "remove Z", Breaking: true},
		},
		"bang with scope": {
			message: "refactor(core)!: drop v1 handlers",
			want:    Parsed{Type: Refactor, Scope: "core", Description: "drop v1 handlers", Breaking: true},
		},
		"breaking footer in body": {
			message: "feat: x\n\nBREAKING CHANGE: y",
			want:    Parsed{Type: Feat, Description: "x", Breaking: true, Body: "BREAKING CHANGE: y"},
		},
		"body without marker": {
			message: "fix: handle nil\n\nThe loader crashed on empty input.",
			want:    Parsed{Type: Fix, Description: "handle nil", Body: "The loader crashed on empty input."},
		},
		"trailing newline from git": {
			message: "docs: update readme\n",
			want:    Parsed{Type: Docs, Description: "update readme"},
		},
		"free-form message": {
			message: "update readme",
			want:    Parsed{Type: Other, Description: "update readme"},
		},
		"unknown type": {
			message: "wip: half done",
			want:    Parsed{Type: Other, Description: "wip: half done"},
		},
		"merge commit keeps whole message": {
			message: "Merge branch 'main'\n\nConflicts resolved",
			want:    Parsed{Type: Other, Description: "Merge branch 'main'\n\nConflicts resolved"},
		},
		"empty message": {
			message: "",
			want:    Parsed{Type: Other, Description: ""},
		},
		"scope keeps its case": {
			message: "docs(README.md): update",
			want:    Parsed{Type: Docs, Scope: "README.md", Description: "update"},
		},
		"upper-case type is not recognised": {
			message: "FEAT: add X",
			want:    Parsed{Type: Other, Description: "FEAT: add X"},
		},
		"mixed-case type is not recognised": {
			message: "Fix(api): resolve Y",
			want:    Parsed{Type: Other, Description: "Fix(api): resolve Y"},
		},
		"empty scope is rejected": {
			message: "feat(): x",
			want:    Parsed{Type: Other, Description: "feat(): x"},
		},
		"blank scope is rejected": {
			message: "feat(  ): x",
			want:    Parsed{Type: Other, Description: "feat(  ): x"},
		},
		"body needs a blank line": {
			message: "feat: x\nBREAKING CHANGE: y",
			want:    Parsed{Type: Other, Description: "feat: x\nBREAKING CHANGE: y"},
		},
		"other drops trailing newline": {
			message: "Merge branch dev\n\n* add a\n* fix b\n",
			want:    Parsed{Type: Other, Description: "Merge branch dev\n\n* add a\n* fix b"},
		},
		"crlf body separator": {
			message: "fix: x\r\n\r\nbody",
			want:    Parsed{Type: Fix, Description: "x", Body: "body"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.message)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BreakingSources(t *testing.T) {
	t.Parallel()

	assert.True(t, Parse("feat!: x").Breaking)
	assert.True(t, Parse("feat: x\n\nBREAKING CHANGE: y").Breaking)
	assert.False(t, Parse("feat: x").Breaking)
	// The marker only counts in the body, never in the header line.
	assert.False(t, Parse("BREAKING CHANGE: everything").Breaking)
}

func TestParse_NeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"(", ")", ":", "!", "feat", "feat(", "feat()", "feat(:", "feat!!: x",
		"feat(a)(b): x", "\n\n\n", "   ", "ünïcödé: ✓", "fix: \x00", "feat: x\r\n\r\nbody",
		"chore(deps): bump x from 1 to 2\n\nSigned-off-by: bot",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := Parse(in)
			assert.NotEmpty(t, got.Type)
			if !got.Type.IsKnown() {
				assert.Equal(t, Other, got.Type)
				assert.Equal(t, strings.TrimRight(in, "\r\n\t "), got.Description)
				assert.False(t, got.Breaking)
				assert.Empty(t, got.Scope)
			}
		}, "input %q", in)
	}
}

func TestKnownTypes(t *testing.T) {
	t.Parallel()

	types := KnownTypes()
	assert.Len(t, types, 11)
	for _, typ := range types {
		assert.True(t, typ.IsKnown(), string(typ))
	}
	assert.False(t, Other.IsKnown())
	assert.False(t, Type("feature").IsKnown())
}
