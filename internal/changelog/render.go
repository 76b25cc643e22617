package changelog

import (
	"fmt"
	"io"
	"strings"
)

// DateLayout is the date format used in version headings.
const DateLayout = "2006-01-02"

// BreakingHeading marks a version containing breaking changes. It is a
// heading only; the breaking changes themselves stay in their categories.
const BreakingHeading = "### ⚠️ BREAKING CHANGES"

const (
	breakingPrefix = "BREAKING CHANGE: "
	yankedSuffix   = " [YANKED]"

	// continuationIndent starts every line after the first of a multi-line
	// change, and any summary line the parser would otherwise read as
	// structure.
	continuationIndent = "  "
)

// RenderMarkdown writes the changelog as a Keep a Changelog document
// (https://keepachangelog.com/en/1.1.0/), newest version first.
//
// The output is deterministic: the same Changelog always renders to the
// same bytes.
func RenderMarkdown(c *Changelog, w io.Writer) error {
	if _, err := io.WriteString(w, renderHeader(c)); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, v := range c.Versions {
		if _, err := io.WriteString(w, RenderVersion(v)+"\n"); err != nil {
			return fmt.Errorf("rendering version %s: %w", v.Number, err)
		}
	}

	if _, err := io.WriteString(w, renderFooterLinks(c.Versions)); err != nil {
		return fmt.Errorf("rendering footer links: %w", err)
	}
	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(c *Changelog) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(c, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderHeader(c *Changelog) string {
	title := c.Title
	if title == "" {
		title = "Changelog"
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	if desc := strings.TrimSpace(c.Description); desc != "" {
		b.WriteString(desc + "\n\n")
	}
	return b.String()
}

// RenderVersion renders a single version section. Empty categories are
// skipped even though the generator never produces them.
func RenderVersion(v Version) string {
	var b strings.Builder

	b.WriteString(FormatVersionHeading(v) + "\n\n")

	if v.Summary != "" {
		b.WriteString(renderSummary(v.Summary) + "\n\n")
	}

	if v.BreakingChanges {
		b.WriteString(BreakingHeading + "\n\n")
	}

	for _, cat := range v.Categories {
		if len(cat.Changes) == 0 {
			continue
		}
		b.WriteString("### " + string(cat.Name) + "\n\n")
		for _, ch := range cat.Changes {
			b.WriteString(FormatChangeLine(ch) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatVersionHeading returns the "## [x] - date" line for v.
func FormatVersionHeading(v Version) string {
	heading := "## [" + v.Number + "]"
	if !v.Date.IsZero() {
		heading += " - " + v.Date.Format(DateLayout)
	}
	if v.Yanked {
		heading += yankedSuffix
	}
	return heading
}

// FormatChangeLine returns the bullet line for one change.
func FormatChangeLine(ch Change) string {
	var b strings.Builder
	b.WriteString("- ")
	if ch.Breaking {
		b.WriteString(breakingPrefix)
	}
	if ch.Scope != "" {
		b.WriteString("**" + ch.Scope + "**: ")
	}
	for i, line := range strings.Split(ch.Description, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if i > 0 {
			b.WriteString("\n")
			if line != "" {
				b.WriteString(continuationIndent)
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

// renderSummary indents summary lines the parser would otherwise read as
// document structure. The parser strips the indent again.
func renderSummary(summary string) string {
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") || strings.HasPrefix(line, " ") {
			line = continuationIndent + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// renderFooterLinks writes link reference definitions for versions that
// carry a comparison URL.
func renderFooterLinks(versions []Version) string {
	var b strings.Builder
	for _, v := range versions {
		if v.CompareURL == "" {
			continue
		}
		b.WriteString("[" + v.Number + "]: " + v.CompareURL + "\n")
	}
	return b.String()
}
