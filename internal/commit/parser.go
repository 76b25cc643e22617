// Package commit parses commit messages written in the Conventional Commits
// format (https://www.conventionalcommits.org/en/v1.0.0/).
//
// Parsing is total: any message that does not carry a recognised header is
// returned with type "other" and the whole message as its description.
package commit

import (
	"strings"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// Type is a Conventional Commits type token.
type Type string

const (
	Feat     Type = "feat"
	Fix      Type = "fix"
	Docs     Type = "docs"
	Style    Type = "style"
	Refactor Type = "refactor"
	Perf     Type = "perf"
	Test     Type = "test"
	Build    Type = "build"
	CI       Type = "ci"
	Chore    Type = "chore"
	Revert   Type = "revert"

	// Other is returned for messages without a recognised header.
	Other Type = "other"
)

// BreakingMarker flags a breaking change when it appears in the message body.
const BreakingMarker = "BREAKING CHANGE:"

var knownTypes = map[Type]bool{
	Feat: true, Fix: true, Docs: true, Style: true, Refactor: true, Perf: true,
	Test: true, Build: true, CI: true, Chore: true, Revert: true,
}

// KnownTypes returns the recognised header types in a stable order.
func KnownTypes() []Type {
	return []Type{Feat, Fix, Docs, Style, Refactor, Perf, Test, Build, CI, Chore, Revert}
}

// IsKnown reports whether t is one of the recognised header types.
func (t Type) IsKnown() bool {
	return knownTypes[t]
}

// Parsed is the structured form of a commit message.
// Scope is empty when the header carried no scope.
type Parsed struct {
	Type        Type
	Scope       string
	Description string
	Breaking    bool
	Body        string
}

// HasScope reports whether the header named a scope.
func (p Parsed) HasScope() bool {
	return p.Scope != ""
}

// Parse converts a raw commit message into its Conventional Commits parts.
//
// Only the first line is matched against the header grammar
// `<type>[(<scope>)][!]: <description>`. A body must be separated from the
// header by a blank line; it is only scanned for the BREAKING CHANGE marker.
// The type is matched case-sensitively and the scope is kept as written.
func Parse(message string) Parsed {
	other := Parsed{Type: Other, Description: strings.TrimRight(message, "\r\n\t ")}

	header, body, ok := splitMessage(message)
	if !ok {
		return other
	}
	cc, ok := parseHeader(header)
	if !ok {
		return other
	}
	typ, scope, ok := headerPrefix(header)
	if !ok {
		return other
	}

	p := Parsed{
		Type:        typ,
		Scope:       scope,
		Description: strings.TrimSpace(cc.Description),
		Breaking:    cc.Exclamation,
		Body:        body,
	}
	if strings.Contains(body, BreakingMarker) {
		p.Breaking = true
	}
	return p
}

// parseHeader runs the header through the conventional-commits machine and
// rejects anything without a description.
func parseHeader(header string) (*conventionalcommits.ConventionalCommit, bool) {
	if header == "" {
		return nil, false
	}

	machine := parser.NewMachine(parser.WithTypes(conventionalcommits.TypesConventional))
	msg, err := machine.Parse([]byte(header))
	if err != nil || msg == nil {
		return nil, false
	}

	cc, ok := msg.(*conventionalcommits.ConventionalCommit)
	if !ok || cc == nil {
		return nil, false
	}
	if strings.TrimSpace(cc.Description) == "" {
		return nil, false
	}
	return cc, true
}

// headerPrefix reads the type token and scope from the raw header bytes.
// The machine folds both to lower case, so it is only trusted to validate
// the grammar.
func headerPrefix(header string) (Type, string, bool) {
	end := strings.IndexAny(header, "(!:")
	if end <= 0 {
		return "", "", false
	}
	typ := Type(header[:end])
	if !typ.IsKnown() {
		return "", "", false
	}
	if header[end] != '(' {
		return typ, "", true
	}

	closing := strings.IndexByte(header[end:], ')')
	if closing < 0 {
		return "", "", false
	}
	scope := strings.TrimSpace(header[end+1 : end+closing])
	if scope == "" {
		return "", "", false
	}
	return typ, scope, true
}

// splitMessage separates the header line from the body. Trailing newlines
// that git appends to messages are ignored. ok is false when a body follows
// the header without a blank line between them.
func splitMessage(message string) (header, body string, ok bool) {
	trimmed := strings.TrimRight(message, "\r\n\t ")
	header, rest, found := strings.Cut(trimmed, "\n")
	header = strings.TrimRight(header, "\r")
	if !found {
		return header, "", true
	}
	gap, body, _ := strings.Cut(rest, "\n")
	if strings.TrimSpace(gap) != "" {
		return header, "", false
	}
	return header, strings.TrimSpace(body), true
}
