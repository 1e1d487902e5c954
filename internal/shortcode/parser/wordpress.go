package parser

import (
	"regexp"
	"strings"
)

var bracketPattern = regexp.MustCompile(`\[(/?)([A-Za-z0-9_\-]+)([^\]]*)\]`)

// WordPressPreprocessor rewrites [name attrs] invocations into the
// {{< name attrs >}} form understood by HugoParser. A tag wrapped in double
// brackets, [[name]], is an escape and comes out as the literal [name].
type WordPressPreprocessor struct{}

func NewWordPressPreprocessor() *WordPressPreprocessor {
	return &WordPressPreprocessor{}
}

// Process rewrites every bracket tag.
func (p *WordPressPreprocessor) Process(content string) string {
	return p.ProcessRegistered(content, nil)
}

// ProcessRegistered rewrites only tags for which registered returns true, so
// prose such as markdown link text survives. A nil registered accepts all.
func (p *WordPressPreprocessor) ProcessRegistered(content string, registered func(name string) bool) string {
	if !strings.Contains(content, "[") {
		return content
	}
	tags := bracketPattern.FindAllStringSubmatchIndex(content, -1)
	if len(tags) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content) + len(tags)*6)
	last := 0
	for _, tag := range tags {
		start, end := tag[0], tag[1]
		name := content[tag[4]:tag[5]]
		if registered != nil && !registered(name) {
			continue
		}

		if start > 0 && end < len(content) && content[start-1] == '[' && content[end] == ']' {
			if start-1 < last {
				continue
			}
			b.WriteString(content[last : start-1])
			b.WriteString(content[start:end])
			last = end + 1
			continue
		}

		b.WriteString(content[last:start])
		last = end
		if tag[3] > tag[2] {
			b.WriteString("{{< /" + name + " >}}")
			continue
		}
		attrs := strings.TrimSpace(content[tag[6]:tag[7]])
		attrs = strings.TrimSpace(strings.TrimSuffix(attrs, "/"))
		b.WriteString("{{< " + name)
		if attrs != "" {
			b.WriteString(" " + attrs)
		}
		b.WriteString(" >}}")
	}
	b.WriteString(content[last:])
	return b.String()
}
