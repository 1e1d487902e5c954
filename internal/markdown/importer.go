package markdown

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSaverRequired  = errors.New("markdown importer: placemark saver is required")
	ErrLoaderRequired = errors.New("markdown importer: loader is required")
)

const defaultConcurrency = 4

// PlacemarkSaver stores imported placemarks through the regular save flow.
type PlacemarkSaver interface {
	Save(ctx context.Context, req placemarks.SaveRequest) (*placemarks.Placemark, notices.List, error)
	FindBySlug(ctx context.Context, slug string) (*placemarks.Placemark, error)
}

// ImporterConfig wires the importer.
type ImporterConfig struct {
	Loader      *Loader
	Saver       PlacemarkSaver
	Logger      interfaces.Logger
	Concurrency int
}

// Importer turns Markdown files into placemarks.
type Importer struct {
	loader      *Loader
	saver       PlacemarkSaver
	logger      interfaces.Logger
	concurrency int
}

// ImportedFile reports the outcome for one file.
type ImportedFile struct {
	Path    string
	ID      int64
	Title   string
	Updated bool
	Err     error
}

// ImportResult summarises an ImportDir run. Files are ordered by path.
type ImportResult struct {
	Files   []ImportedFile
	Notices notices.List
}

// Imported counts files stored without error.
func (r *ImportResult) Imported() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Errors collects per-file failures.
func (r *ImportResult) Errors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errs
}

// NewImporter builds an Importer.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Importer{
		loader:      cfg.Loader,
		saver:       cfg.Saver,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ImportDir stores every matching file under dir as a placemark. A file whose
// slug already exists updates that placemark. Per-file failures are reported
// in the result; the returned error is reserved for discovery failures and
// cancellation.
func (i *Importer) ImportDir(ctx context.Context, dir string) (*ImportResult, error) {
	if i.loader == nil {
		return nil, ErrLoaderRequired
	}
	if i.saver == nil {
		return nil, ErrSaverRequired
	}

	paths, err := i.loader.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	files := make([]ImportedFile, len(paths))
	fileNotices := make([]notices.List, len(paths))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(i.concurrency)
	for idx, p := range paths {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[idx], fileNotices[idx] = i.importFile(gctx, p)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	collector := notices.NewCollector()
	for _, list := range fileNotices {
		collector.Merge(list)
	}
	result := &ImportResult{Files: files, Notices: collector.List()}

	logging.WithFields(i.logger.WithContext(ctx), map[string]any{
		"directory": dir,
		"files":     len(files),
		"imported":  result.Imported(),
		"notices":   len(result.Notices),
	}).Info("markdown.import.completed")
	return result, nil
}

func (i *Importer) importFile(ctx context.Context, p string) (ImportedFile, notices.List) {
	out := ImportedFile{Path: p}
	logger := logging.WithFields(i.logger.WithContext(ctx), map[string]any{"path": p})

	doc, err := i.loader.LoadFile(ctx, p)
	if err != nil {
		out.Err = err
		logger.Warn("markdown.import.load_failed", "error", err)
		return out, nil
	}

	req := requestFromDocument(doc)
	if existing, err := i.saver.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		req.ID = existing.ID
		out.Updated = true
	} else if err != nil && !placemarks.IsNotFound(err) {
		out.Err = err
		return out, nil
	}

	record, list, err := i.saver.Save(ctx, req)
	if err != nil {
		out.Err = err
		logger.Warn("markdown.import.save_failed", "error", err)
		return out, nil
	}
	out.ID = record.ID
	out.Title = record.Title
	logging.WithPlacemarkContext(logger, record.ID, p, "import").Debug("markdown.import.file_saved")
	return out, list
}

func requestFromDocument(doc *Document) placemarks.SaveRequest {
	meta := doc.FrontMatter
	base := strings.TrimSuffix(path.Base(doc.Path), path.Ext(doc.Path))

	title := meta.Title
	if title == "" {
		title = titleFromFilename(base)
	}
	slug := meta.Slug
	if slug == "" {
		slug = base
	}
	return placemarks.SaveRequest{
		Title:      title,
		Slug:       slug,
		Details:    strings.TrimSpace(string(doc.Body)),
		Address:    meta.Address,
		Icon:       meta.Icon,
		ZIndex:     meta.ZIndex,
		Categories: meta.Categories,
	}
}

func titleFromFilename(base string) string {
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
