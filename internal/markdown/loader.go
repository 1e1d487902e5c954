package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

const defaultPattern = "*.md"

// Document is one placemark file split into front matter and body.
type Document struct {
	Path        string
	FrontMatter FrontMatter
	Body        []byte
}

type LoaderConfig struct {
	// BasePath is the OS directory the filesystem is rooted at. Absolute
	// paths handed to the loader are made relative to it.
	BasePath string
	// Pattern is matched against the file name, or against the whole
	// slash-separated path when it contains a slash. Defaults to *.md.
	Pattern   string
	Recursive bool
}

// Loader finds and reads placemark files in an fs.FS.
type Loader struct {
	fsys      fs.FS
	base      string
	pattern   string
	recursive bool
}

func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	l := &Loader{
		fsys:      fsys,
		pattern:   strings.TrimSpace(filepath.ToSlash(cfg.Pattern)),
		recursive: cfg.Recursive,
	}
	if l.pattern == "" {
		l.pattern = defaultPattern
	}
	l.pattern = strings.ReplaceAll(l.pattern, "**/", "")
	if base := strings.TrimSpace(cfg.BasePath); base != "" {
		l.base = filepath.Clean(base)
	}
	return l
}

func (l *Loader) LoadFile(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %w", err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %s: %w", rel, err)
	}
	return &Document{Path: rel, FrontMatter: meta, Body: body}, nil
}

// Discover returns the sorted paths of matching files under dir.
func (l *Loader) Discover(ctx context.Context, dir string) ([]string, error) {
	root, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}

	var found []string
	err = fs.WalkDir(l.fsys, root, func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case d.IsDir() && p != root && !l.recursive:
			return fs.SkipDir
		case !d.IsDir() && l.matches(p):
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

func (l *Loader) matches(p string) bool {
	target := path.Base(p)
	if strings.Contains(l.pattern, "/") {
		target = p
	}
	ok, err := path.Match(l.pattern, target)
	return err == nil && ok
}

// resolve turns name into a slash-separated path inside the filesystem.
func (l *Loader) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.base == "" {
			return "", fmt.Errorf("markdown loader: absolute path %s needs a base path", name)
		}
		rel, err := filepath.Rel(l.base, clean)
		if err != nil {
			return "", fmt.Errorf("markdown loader: %s is outside %s: %w", name, l.base, err)
		}
		clean = rel
	}
	return path.Clean(filepath.ToSlash(clean)), nil
}
