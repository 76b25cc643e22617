package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

var categoryStyles = map[CategoryName]CategoryStyle{
	Added:         {Color: color.New(color.FgGreen), Icon: "✓"},
	Changed:       {Color: color.New(color.FgBlue), Icon: "~"},
	Deprecated:    {Color: color.New(color.FgRed), Icon: "⚠"},
	Removed:       {Color: color.New(color.FgRed), Icon: "✗"},
	Fixed:         {Color: color.New(color.FgYellow), Icon: "⚡"},
	Security:      {Color: color.New(color.FgMagenta), Icon: "🔒"},
	Documentation: {Color: color.New(color.FgCyan), Icon: "📝"},
	Performance:   {Color: color.New(color.FgGreen), Icon: "»"},
	Testing:       {Color: color.New(color.FgCyan), Icon: "✔"},
	Build:         {Color: color.New(color.FgWhite), Icon: "⚙"},
	CI:            {Color: color.New(color.FgWhite), Icon: "↻"},
}

func styleFor(name CategoryName) CategoryStyle {
	if s, ok := categoryStyles[name]; ok {
		return s
	}
	return CategoryStyle{Color: color.New(color.Reset), Icon: "-"}
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes every version of the changelog with terminal styling.
func FormatTerminal(c *Changelog, w io.Writer, opts FormatOptions) error {
	for i, v := range c.Versions {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := FormatVersion(v, w, opts); err != nil {
			return fmt.Errorf("formatting version %s: %w", v.Number, err)
		}
	}
	return nil
}

// FormatVersion writes a single version to the writer.
func FormatVersion(v Version, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionHeader(v, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if v.Summary != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", wrapText(v.Summary, width, "")); err != nil {
			return err
		}
	}

	if v.BreakingChanges {
		warn := "! Contains breaking changes"
		if !opts.Plain {
			warn = color.New(color.FgRed, color.Bold).Sprint("⚠️  Contains breaking changes")
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", warn); err != nil {
			return err
		}
	}

	for _, cat := range v.Categories {
		if len(cat.Changes) == 0 {
			continue
		}
		if err := writeCategorySection(cat, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeVersionHeader(v Version, w io.Writer, opts FormatOptions) error {
	header := v.Number
	if !v.IsUnreleased() {
		header = "v" + strings.TrimPrefix(v.Number, "v")
	}
	if !v.Date.IsZero() {
		header += " (" + v.Date.Format(DateLayout) + ")"
	}
	if v.Yanked {
		header += yankedSuffix
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

func writeCategorySection(cat Category, w io.Writer, opts FormatOptions, width int) error {
	style := styleFor(cat.Name)

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", cat.Name); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(string(cat.Name))); err != nil {
			return err
		}
	}

	for _, ch := range cat.Changes {
		if err := writeChange(ch, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeChange(ch Change, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	text := strings.TrimPrefix(FormatChangeLine(ch), "- ")

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}

// FormatChangeSummary returns a brief one-line summary of a change, used
// in progress output.
func FormatChangeSummary(ch Change, category CategoryName, opts FormatOptions) string {
	text := truncateText(ch.Description, 60)

	if opts.Plain {
		return fmt.Sprintf("[%s] %s", category, text)
	}

	style := styleFor(category)
	colored := style.Color.SprintFunc()
	return fmt.Sprintf("%s %s", colored(style.Icon), text)
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}
