// Package version provides the semantic-version arithmetic autoscribe uses to
// pick release numbers: tag selection, bump suggestion and rewriting the
// version string in a project file.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Placeholder marks where the version goes in a version-file pattern.
const Placeholder = "{version}"

// ErrPatternNotFound is returned when a version file does not contain the
// configured pattern.
var ErrPatternNotFound = errors.New("version pattern not found")

// Bump identifies which component of a version to increment.
type Bump int

const (
	BumpPatch Bump = iota
	BumpMinor
	BumpMajor
)

func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	default:
		return "patch"
	}
}

// ParseBump converts "major", "minor" or "patch" to a Bump.
func ParseBump(s string) (Bump, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	}
	return BumpPatch, fmt.Errorf("invalid bump %q (valid: major, minor, patch)", s)
}

// Parse parses a strict MAJOR.MINOR.PATCH[-pre][+build] version.
// A leading "v" or missing components are rejected.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// Valid reports whether s is a strict semantic version.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Next returns current bumped by b. Bumping drops prerelease and build
// metadata, matching semver precedence rules.
func Next(current string, b Bump) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}

	var next semver.Version
	switch b {
	case BumpMajor:
		next = v.IncMajor()
	case BumpMinor:
		next = v.IncMinor()
	default:
		next = v.IncPatch()
		// IncPatch on a prerelease only strips the prerelease.
		if v.Prerelease() != "" {
			next = next.IncPatch()
		}
	}
	return next.String(), nil
}

// SuggestBump picks the bump a set of changes warrants.
func SuggestBump(breaking, hasFeatures bool) Bump {
	switch {
	case breaking:
		return BumpMajor
	case hasFeatures:
		return BumpMinor
	default:
		return BumpPatch
	}
}

// FromTag strips prefix from tag and validates the remainder.
func FromTag(tag, prefix string) (string, error) {
	if !strings.HasPrefix(tag, prefix) {
		return "", fmt.Errorf("tag %q does not start with %q", tag, prefix)
	}
	number := strings.TrimPrefix(tag, prefix)
	if _, err := Parse(number); err != nil {
		return "", err
	}
	return number, nil
}

// LatestTag returns the tag with the highest version among those that are
// prefix followed by a strict semantic version. Other tags are ignored.
func LatestTag(tags []string, prefix string) (string, bool) {
	var (
		best    string
		bestVer *semver.Version
	)
	for _, tag := range tags {
		number, err := FromTag(tag, prefix)
		if err != nil {
			continue
		}
		v, _ := Parse(number)
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = tag, v
		}
	}
	return best, bestVer != nil
}

func patternRegexp(pattern string) (*regexp.Regexp, error) {
	before, after, ok := strings.Cut(pattern, Placeholder)
	if !ok {
		return nil, fmt.Errorf("pattern %q must contain %s", pattern, Placeholder)
	}
	return regexp.Compile(regexp.QuoteMeta(before) + `([^'"\s]+)` + regexp.QuoteMeta(after))
}

// Extract returns the version found in content at pattern's placeholder.
func Extract(content, pattern string) (string, bool) {
	re, err := patternRegexp(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UpdateContent replaces every occurrence of pattern in content with the
// pattern rendered for newVersion. It returns ErrPatternNotFound when the
// pattern does not occur.
func UpdateContent(content, newVersion, pattern string) (string, error) {
	re, err := patternRegexp(pattern)
	if err != nil {
		return "", err
	}
	if !re.MatchString(content) {
		return "", fmt.Errorf("%w: %s", ErrPatternNotFound, pattern)
	}
	replacement := strings.Replace(pattern, Placeholder, newVersion, 1)
	return re.ReplaceAllLiteralString(content, replacement), nil
}
