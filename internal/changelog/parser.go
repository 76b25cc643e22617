package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// ValidationError reports malformed changelog Markdown.
type ValidationError struct {
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	versionHeadingRe = regexp.MustCompile(`^## \[([^\]]+)\](?: - (\d{4}-\d{2}-\d{2}))?( \[YANKED\])?\s*$`)
	linkDefinitionRe = regexp.MustCompile(`^\[([^\]]+)\]:\s+(\S+)\s*$`)
	scopePrefixRe    = regexp.MustCompile(`^\*\*([^*]+)\*\*: `)
)

const maxLineLength = 1024 * 1024

// Load reads a CHANGELOG.md from path.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	return ParseMarkdown(f)
}

// ParseMarkdown reads a Keep a Changelog document back into the model.
// It accepts everything RenderMarkdown produces. Unknown category headings
// and malformed version headings are reported as ValidationError.
func ParseMarkdown(r io.Reader) (*Changelog, error) {
	p := &markdownParser{c: &Changelog{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}

	p.finish()
	return p.c, nil
}

type markdownParser struct {
	c    *Changelog
	line int

	sawTitle bool
	preamble []string

	version  *Version
	summary  []string
	category *Category

	// blankLines counts blank lines since the last non-blank one.
	blankLines int
}

func (p *markdownParser) parseLine(raw string) error {
	line := strings.TrimRight(raw, " \t\r")

	blanks := p.blankLines
	if line == "" {
		p.blankLines++
	} else {
		p.blankLines = 0
	}

	if p.version != nil && strings.HasPrefix(line, continuationIndent) {
		return p.continueText(strings.TrimPrefix(line, continuationIndent), blanks)
	}

	switch {
	case !p.sawTitle && p.version == nil && strings.HasPrefix(line, "# "):
		p.sawTitle = true
		p.c.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		return nil

	case strings.HasPrefix(line, "## "):
		return p.startVersion(line)

	case linkDefinitionRe.MatchString(line):
		m := linkDefinitionRe.FindStringSubmatch(line)
		p.setCompareURL(m[1], m[2])
		return nil

	case p.version == nil:
		p.preamble = append(p.preamble, line)
		return nil

	case strings.HasPrefix(line, "### "):
		return p.startCategory(strings.TrimSpace(strings.TrimPrefix(line, "### ")))

	case p.category == nil:
		p.summary = append(p.summary, line)
		return nil

	case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
		p.category.Changes = append(p.category.Changes, parseChangeLine(line[2:]))
		return nil

	case line == "":
		return nil

	default:
		// Unindented continuation of the previous bullet.
		if n := len(p.category.Changes); n > 0 {
			last := &p.category.Changes[n-1]
			last.Description += " " + strings.TrimSpace(line)
			return nil
		}
		return &ValidationError{Line: p.line, Message: fmt.Sprintf("unexpected text in %s section: %q", p.category.Name, line)}
	}
}

// continueText handles an indented line inside a version: summary text
// before the first category, otherwise the next line of the last change.
func (p *markdownParser) continueText(text string, blanks int) error {
	if p.category == nil {
		p.summary = append(p.summary, text)
		return nil
	}

	n := len(p.category.Changes)
	if n == 0 {
		return &ValidationError{Line: p.line, Message: fmt.Sprintf("unexpected text in %s section: %q", p.category.Name, text)}
	}
	last := &p.category.Changes[n-1]
	last.Description += strings.Repeat("\n", blanks+1) + text
	return nil
}

func (p *markdownParser) startVersion(line string) error {
	m := versionHeadingRe.FindStringSubmatch(line)
	if m == nil {
		return &ValidationError{Line: p.line, Message: fmt.Sprintf("malformed version heading %q (expected: ## [X.Y.Z] - YYYY-MM-DD)", line)}
	}

	v := Version{Number: m[1], Yanked: m[3] != ""}
	if m[2] != "" {
		date, err := time.Parse(DateLayout, m[2])
		if err != nil {
			return &ValidationError{Line: p.line, Message: fmt.Sprintf("invalid date %q (expected: YYYY-MM-DD)", m[2])}
		}
		v.Date = date
	}

	p.flushVersion()
	p.version = &v
	return nil
}

func (p *markdownParser) startCategory(heading string) error {
	if heading == strings.TrimPrefix(BreakingHeading, "### ") {
		p.flushCategory()
		p.version.BreakingChanges = true
		return nil
	}

	name, err := ParseCategoryName(heading)
	if err != nil {
		return &ValidationError{Line: p.line, Message: err.Error()}
	}

	p.flushCategory()
	if _, dup := p.version.Category(name); dup {
		return &ValidationError{Line: p.line, Message: fmt.Sprintf("duplicate %s section in version %s", name, p.version.Number)}
	}
	p.category = &Category{Name: name}
	return nil
}

func (p *markdownParser) flushCategory() {
	if p.category != nil && len(p.category.Changes) > 0 {
		p.version.Categories = append(p.version.Categories, *p.category)
	}
	p.category = nil
}

func (p *markdownParser) flushVersion() {
	if p.version == nil {
		return
	}
	p.flushCategory()
	p.version.Summary = strings.Trim(strings.Join(p.summary, "\n"), "\n")
	for _, ch := range p.version.Changes() {
		if ch.Breaking {
			p.version.BreakingChanges = true
			break
		}
	}
	p.c.Versions = append(p.c.Versions, *p.version)
	p.version = nil
	p.summary = nil
}

func (p *markdownParser) setCompareURL(number, url string) {
	// Links may precede the final flush.
	if p.version != nil && p.version.Number == number {
		p.version.CompareURL = url
		return
	}
	for i := range p.c.Versions {
		if p.c.Versions[i].Number == number {
			p.c.Versions[i].CompareURL = url
			return
		}
	}
}

func (p *markdownParser) finish() {
	p.flushVersion()
	p.c.Description = strings.TrimSpace(strings.Join(p.preamble, "\n"))
	if p.c.Title == "" {
		p.c.Title = "Changelog"
	}
}

func parseChangeLine(text string) Change {
	ch := Change{}
	if strings.HasPrefix(text, breakingPrefix) {
		ch.Breaking = true
		text = strings.TrimPrefix(text, breakingPrefix)
	}
	if m := scopePrefixRe.FindStringSubmatch(text); m != nil {
		ch.Scope = m[1]
		text = text[len(m[0]):]
	}
	ch.Description = strings.TrimSpace(text)
	return ch
}
