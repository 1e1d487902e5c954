package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// RendererOptions tunes the goldmark engine used for placemark details.
type RendererOptions struct {
	// Extensions are goldmark extension names; empty means gfm and linkify.
	// Unknown names are ignored.
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML embedded in the source.
	SafeMode bool
}

var extensionsByName = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// Renderer turns placemark details written in Markdown into HTML for the
// list shortcode and map info windows.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer(opts RendererOptions) *Renderer {
	var htmlOpts []goldmark.Option
	rendererOpts := renderOptions(opts)
	if len(rendererOpts) > 0 {
		htmlOpts = append(htmlOpts, goldmark.WithRendererOptions(rendererOpts...))
	}
	return &Renderer{md: goldmark.New(append(htmlOpts,
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(extenders(opts.Extensions)...),
	)...)}
}

func (r *Renderer) Render(source []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := r.md.Convert(source, &out); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return out.Bytes(), nil
}

// RenderDetails renders source with surrounding whitespace trimmed. Blank
// input renders as empty.
func (r *Renderer) RenderDetails(_ context.Context, source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	out, err := r.Render([]byte(source))
	if err != nil {
		return "", err
	}
	return template.HTML(bytes.TrimSpace(out)), nil
}

func renderOptions(opts RendererOptions) []renderer.Option {
	var out []renderer.Option
	if opts.HardWraps {
		out = append(out, html.WithHardWraps())
	}
	if !opts.SafeMode {
		out = append(out, html.WithUnsafe())
	}
	return out
}

func extenders(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify}
	}
	seen := make(map[goldmark.Extender]bool, len(names))
	var out []goldmark.Extender
	for _, name := range names {
		ext, ok := extensionsByName[strings.ToLower(strings.TrimSpace(name))]
		if ok && !seen[ext] {
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out
}
