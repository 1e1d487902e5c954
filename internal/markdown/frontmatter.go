package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the placemark metadata block at the top of a Markdown file.
type FrontMatter struct {
	Title      string
	Slug       string
	Address    string
	Icon       string
	ZIndex     string
	Categories []string
	Custom     map[string]any
}

// ParseFrontMatter splits source into its metadata and Markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return envelopeToFrontMatter(meta), body, nil
}

type frontMatterEnvelope struct {
	Title      string         `yaml:"title"`
	Slug       string         `yaml:"slug"`
	Address    string         `yaml:"address"`
	Icon       string         `yaml:"icon"`
	ZIndex     any            `yaml:"zindex"`
	Categories any            `yaml:"categories"`
	Custom     map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	fm := FrontMatter{
		Title:      strings.TrimSpace(env.Title),
		Slug:       strings.TrimSpace(env.Slug),
		Address:    strings.TrimSpace(env.Address),
		Icon:       strings.TrimSpace(env.Icon),
		Categories: categoryList(env.Categories),
		Custom:     map[string]any{},
	}
	if env.ZIndex != nil {
		fm.ZIndex = strings.TrimSpace(fmt.Sprint(env.ZIndex))
	}
	for key, value := range env.Custom {
		fm.Custom[key] = value
	}
	return fm
}

// categoryList accepts a YAML list or a comma separated string.
func categoryList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	}

	var out []string
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
