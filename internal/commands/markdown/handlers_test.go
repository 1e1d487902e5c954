package markdowncmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-placemarks/internal/markdown"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

type stubImporter struct {
	calls  []string
	result *markdown.ImportResult
	err    error
}

func (s *stubImporter) ImportDir(_ context.Context, dir string) (*markdown.ImportResult, error) {
	s.calls = append(s.calls, dir)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type captureLogger struct {
	fields       []map[string]any
	infoMessages []string
}

var _ interfaces.Logger = (*captureLogger)(nil)

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(msg string, _ ...any) {
	c.infoMessages = append(c.infoMessages, msg)
}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}
func (c *captureLogger) Fatal(string, ...any) {}

func (c *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	c.fields = append(c.fields, copied)
	return c
}

func (c *captureLogger) WithContext(context.Context) interfaces.Logger {
	return c
}

func sampleResult() *markdown.ImportResult {
	collector := notices.NewCollector()
	collector.AddError("The stacking order has to be an integer.")
	return &markdown.ImportResult{
		Files: []markdown.ImportedFile{
			{Path: "pike_place.md", ID: 2, Title: "Pike Place"},
			{Path: "broken.md", Err: errors.New("invalid front matter")},
			{Path: "space-needle.md", ID: 1, Title: "Space Needle"},
		},
		Notices: collector.List(),
	}
}

func TestImportDirectoryHandlerInvokesImporter(t *testing.T) {
	importer := &stubImporter{result: sampleResult()}
	logger := &captureLogger{}
	handler := NewImportDirectoryHandler(importer, logger, func() bool { return true })

	out := notices.NewCollector()
	if err := handler.Execute(context.Background(), ImportDirectoryCommand{Directory: " places ", Notices: out}); err != nil {
		t.Fatalf("execute import directory: %v", err)
	}
	if len(importer.calls) != 1 || importer.calls[0] != "places" {
		t.Fatalf("expected trimmed directory, got %v", importer.calls)
	}
	if !out.List().HasErrors() {
		t.Fatal("expected import notices forwarded")
	}

	var summary map[string]any
	for _, fields := range logger.fields {
		if _, ok := fields["imported_count"]; ok {
			summary = fields
		}
	}
	if summary == nil {
		t.Fatalf("expected summary fields logged, got %v", logger.fields)
	}
	if summary["imported_count"] != 2 || summary["error_count"] != 1 {
		t.Fatalf("unexpected summary %v", summary)
	}
}

func TestImportDirectoryHandlerStrictFailsOnFileErrors(t *testing.T) {
	importer := &stubImporter{result: sampleResult()}
	handler := NewImportDirectoryHandler(importer, nil, nil)

	err := handler.Execute(context.Background(), ImportDirectoryCommand{Directory: "places", Strict: true})
	if err == nil {
		t.Fatal("expected strict import to fail")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestImportDirectoryHandlerFeatureDisabled(t *testing.T) {
	importer := &stubImporter{}
	handler := NewImportDirectoryHandler(importer, nil, func() bool { return false })

	err := handler.Execute(context.Background(), ImportDirectoryCommand{Directory: "places"})
	if !errors.Is(err, ErrMarkdownFeatureDisabled) {
		t.Fatalf("expected feature disabled error, got %v", err)
	}
	if len(importer.calls) != 0 {
		t.Fatalf("expected importer not called")
	}
}

func TestImportDirectoryHandlerValidation(t *testing.T) {
	importer := &stubImporter{}
	handler := NewImportDirectoryHandler(importer, nil, nil)

	err := handler.Execute(context.Background(), ImportDirectoryCommand{Directory: "  "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportDirectoryHandlerPropagatesImporterError(t *testing.T) {
	importer := &stubImporter{err: markdown.ErrSaverRequired}
	handler := NewImportDirectoryHandler(importer, nil, nil)

	err := handler.Execute(context.Background(), ImportDirectoryCommand{Directory: "places"})
	if !errors.Is(err, markdown.ErrSaverRequired) {
		t.Fatalf("expected wrapped importer error, got %v", err)
	}
}
