// Package markdown imports placemarks from Markdown files with YAML
// frontmatter and renders placemark details to HTML.
package markdown
