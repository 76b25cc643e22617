package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
)

// loadChangelog reads the changelog at path. A missing file yields an
// empty document; a malformed one is an error.
func (r *Runner) loadChangelog(path string) (*changelog.Changelog, error) {
	data, err := util.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debugf("[workflow] %s not found, starting a new changelog", path)
			return changelog.New(), nil
		}
		return nil, clierrors.ChangelogParseError(r.displayPath(path), err)
	}

	cl, err := changelog.ParseMarkdown(bytes.NewReader(data))
	if err != nil {
		return nil, clierrors.ChangelogParseError(r.displayPath(path), err)
	}
	r.log.Debugf("[workflow] loaded %s: %d versions", path, len(cl.Versions))
	return cl, nil
}

// writeFile writes data to path, creating parent directories.
func (r *Runner) writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return clierrors.FileNotWritable(r.displayPath(path), err)
		}
	}
	if err := util.WriteFile(r.fs, path, data, 0o644); err != nil {
		return clierrors.FileNotWritable(r.displayPath(path), err)
	}
	return nil
}

func (r *Runner) exists(path string) bool {
	_, err := r.fs.Stat(path)
	return err == nil
}

// writeChangelog renders cl and writes it to path.
func (r *Runner) writeChangelog(path string, cl *changelog.Changelog) error {
	content, err := changelog.RenderMarkdownString(cl)
	if err != nil {
		return fmt.Errorf("rendering changelog: %w", err)
	}
	return r.writeFile(path, []byte(content))
}
