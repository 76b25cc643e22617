package changelog

import (
	"fmt"
	"strings"
	"time"
)

const defaultDescription = "All notable changes to this project will be documented in this file.\n\n" +
	"The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),\n" +
	"and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html)."

// Changelog is the whole document, newest version first.
type Changelog struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Versions    []Version `yaml:"versions"`
	LastUpdated time.Time `yaml:"last_updated"`
}

// New returns an empty changelog with the standard title and preamble.
func New() *Changelog {
	return &Changelog{
		Title:       "Changelog",
		Description: defaultDescription,
		LastUpdated: time.Now(),
	}
}

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	if len(e.AvailableVersions) == 0 {
		return fmt.Sprintf("version %q not found (changelog is empty)", e.Version)
	}
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// AddVersion inserts v as the newest version. Duplicates are not rejected;
// callers that care use GetVersion first.
func (c *Changelog) AddVersion(v Version) {
	c.Versions = append([]Version{v}, c.Versions...)
	c.LastUpdated = time.Now()
}

// GetVersion returns the first version whose number equals number exactly.
// With duplicates this is the most recently added one.
func (c *Changelog) GetVersion(number string) (Version, bool) {
	for _, v := range c.Versions {
		if v.Number == number {
			return v, true
		}
	}
	return Version{}, false
}

// FindVersion is GetVersion with lenient matching: "v1.2.0" finds "1.2.0"
// and vice versa. It returns VersionNotFoundError on a miss.
func (c *Changelog) FindVersion(number string) (Version, error) {
	if v, ok := c.GetVersion(number); ok {
		return v, nil
	}

	normalized := NormalizeVersion(number)
	for _, v := range c.Versions {
		if NormalizeVersion(v.Number) == normalized {
			return v, nil
		}
	}

	return Version{}, &VersionNotFoundError{
		Version:           number,
		AvailableVersions: c.ListVersions(),
	}
}

// GetLatestVersion returns the newest version that is not Unreleased.
func (c *Changelog) GetLatestVersion() (Version, bool) {
	for _, v := range c.Versions {
		if !v.IsUnreleased() {
			return v, true
		}
	}
	return Version{}, false
}

// GetUnreleasedChanges returns the Unreleased section, if any.
func (c *Changelog) GetUnreleasedChanges() (Version, bool) {
	return c.GetVersion(Unreleased)
}

// RemoveVersion deletes every version numbered number and reports whether
// anything was removed.
func (c *Changelog) RemoveVersion(number string) bool {
	kept := make([]Version, 0, len(c.Versions))
	removed := false
	for _, v := range c.Versions {
		if v.Number == number {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	c.Versions = kept
	if removed {
		c.LastUpdated = time.Now()
	}
	return removed
}

// ListVersions returns every version number, newest first.
func (c *Changelog) ListVersions() []string {
	versions := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		versions[i] = v.Number
	}
	return versions
}

// ChangeCount returns the total number of changes across all versions.
func (c *Changelog) ChangeCount() int {
	n := 0
	for _, v := range c.Versions {
		n += v.ChangeCount()
	}
	return n
}

// NormalizeVersion strips a leading "v" and lowercases the number.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")
}
