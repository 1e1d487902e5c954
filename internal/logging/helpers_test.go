package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type argsRecorder struct {
	calls [][]any
}

func (a *argsRecorder) record(args []any)          { a.calls = append(a.calls, args) }
func (a *argsRecorder) Trace(_ string, args ...any) { a.record(args) }
func (a *argsRecorder) Debug(_ string, args ...any) { a.record(args) }
func (a *argsRecorder) Info(_ string, args ...any)  { a.record(args) }
func (a *argsRecorder) Warn(_ string, args ...any)  { a.record(args) }
func (a *argsRecorder) Error(_ string, args ...any) { a.record(args) }
func (a *argsRecorder) Fatal(_ string, args ...any) { a.record(args) }

func (a *argsRecorder) WithContext(context.Context) interfaces.Logger { return a }

func TestWithFieldsAppendsArgsForPlainLoggers(t *testing.T) {
	rec := &argsRecorder{}
	logger := WithFields(rec, map[string]any{"shortcode": "bgmp-map", "skipped": nil})
	logger = WithFields(logger, map[string]any{"attempt": 2})
	logger.WithContext(context.Background()).Info("render", "error", "boom")

	if len(rec.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(rec.calls))
	}
	got := rec.calls[0]
	want := []any{"error", "boom", "attempt", 2, "shortcode", "bgmp-map"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWithFieldsSkipsEmptyInput(t *testing.T) {
	rec := &argsRecorder{}
	if logger := WithFields(rec, map[string]any{"": 1, "nil": nil}); logger != interfaces.Logger(rec) {
		t.Fatalf("expected original logger back, got %T", logger)
	}
	if WithFields(nil, map[string]any{"a": 1}) != nil {
		t.Fatal("expected nil logger to stay nil")
	}
}
