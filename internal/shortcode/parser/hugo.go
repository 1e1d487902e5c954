// Package parser finds shortcode invocations in page content.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// Placeholder is written in place of the n-th extracted invocation.
const Placeholder = "<!-- shortcode:%d -->"

var (
	// {{< name attrs >}} and {{< /name >}}
	tagPattern = regexp.MustCompile(`{{<\s*(/?)\s*([^\s/>]+)([^>]*)>}}`)
	// key="quoted value" | key='quoted value' | key=bare | "positional" | bare
	paramPattern = regexp.MustCompile(`([A-Za-z0-9_\-]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|(\S+))|"([^"]*)"|(\S+)`)
)

// HugoParser handles {{< name >}} invocations. A tag with a matching
// {{< /name >}} later in the content encloses inner content; otherwise it
// stands alone. Placeholders are numbered in the order invocations close,
// so nested shortcodes come before the one wrapping them.
type HugoParser struct{}

func NewHugoParser() *HugoParser {
	return &HugoParser{}
}

func (p *HugoParser) Parse(content string) ([]interfaces.ParsedShortcode, error) {
	_, found, err := p.Extract(content)
	return found, err
}

func (p *HugoParser) Extract(content string) (string, []interfaces.ParsedShortcode, error) {
	tags := tagPattern.FindAllStringSubmatchIndex(content, -1)
	if len(tags) == 0 {
		return content, nil, nil
	}

	type open struct {
		name   string
		params map[string]any
		mark   int
	}
	var (
		out   = make([]byte, 0, len(content))
		stack []open
		found []interfaces.ParsedShortcode
		last  int
	)
	emit := func(sc interfaces.ParsedShortcode) {
		out = fmt.Appendf(out, Placeholder, len(found))
		found = append(found, sc)
	}

	for i, tag := range tags {
		out = append(out, content[last:tag[0]]...)
		last = tag[1]

		closing := tag[3] > tag[2]
		name := content[tag[4]:tag[5]]
		raw := strings.TrimSpace(content[tag[6]:tag[7]])

		if !closing {
			params := parseParams(strings.TrimSpace(strings.TrimSuffix(raw, "/")))
			if !closedLater(content, tags[i+1:], name) {
				emit(interfaces.ParsedShortcode{Name: name, Params: params})
				continue
			}
			stack = append(stack, open{name: name, params: params, mark: len(out)})
			continue
		}

		if raw != "" {
			return "", nil, fmt.Errorf("shortcode: closing tag %s takes no attributes (offset %d)", name, tag[0])
		}
		if len(stack) == 0 {
			return "", nil, fmt.Errorf("shortcode: unexpected closing tag %s (offset %d)", name, tag[0])
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.name != name {
			return "", nil, fmt.Errorf("shortcode: %s closed by %s (offset %d)", top.name, name, tag[0])
		}
		inner := string(out[top.mark:])
		out = out[:top.mark]
		emit(interfaces.ParsedShortcode{Name: name, Params: top.params, Inner: inner})
	}
	out = append(out, content[last:]...)

	if len(stack) > 0 {
		return "", nil, fmt.Errorf("shortcode: %s is never closed", stack[len(stack)-1].name)
	}
	return string(out), found, nil
}

func closedLater(content string, rest [][]int, name string) bool {
	for _, tag := range rest {
		if tag[3] > tag[2] && content[tag[4]:tag[5]] == name {
			return true
		}
	}
	return false
}

// parseParams keys positional values as param1, param2, ... by their
// position among all attributes.
func parseParams(raw string) map[string]any {
	params := map[string]any{}
	if raw == "" {
		return params
	}
	for _, m := range paramPattern.FindAllStringSubmatch(raw, -1) {
		if key := m[1]; key != "" {
			params[key] = firstNonEmpty(m[2], m[3], m[4])
			continue
		}
		params[fmt.Sprintf("param%d", len(params)+1)] = firstNonEmpty(m[5], m[6])
	}
	return params
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
