// Package changelog turns commit history into Keep a Changelog documents.
//
// This package implements:
//   - classification of Conventional Commits into changelog categories
//   - version assembly with optional, best-effort description enhancement
//   - the in-memory changelog document and its version queries
//   - Markdown rendering and parsing of CHANGELOG.md
//   - colored terminal output for the show command
//
// CHANGELOG.md is both the output and the persisted state: ParseMarkdown
// reads whatever RenderMarkdown writes, so new versions are prepended to
// the existing history instead of replacing it.
package changelog
