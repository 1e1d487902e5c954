package shortcode

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// blockedElements never survive in shortcode output.
const blockedElements = "script, iframe, object, embed, style"

var urlAttributes = []string{"href", "src", "action", "formaction"}

// Sanitizer strips active content from rendered placemark markup. Markup
// that needs no cleaning is returned untouched.
type Sanitizer struct{}

var _ interfaces.ShortcodeSanitizer = (*Sanitizer)(nil)

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

func (s *Sanitizer) Sanitize(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return markup, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("shortcode: parse output: %w", err)
	}

	dirty := false
	if blocked := doc.Find(blockedElements); blocked.Length() > 0 {
		blocked.Remove()
		dirty = true
	}
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		var unsafe []string
		for _, attr := range sel.Get(0).Attr {
			key := strings.ToLower(attr.Key)
			if strings.HasPrefix(key, "on") || (slices.Contains(urlAttributes, key) && scriptURL(attr.Val)) {
				unsafe = append(unsafe, attr.Key)
			}
		}
		for _, key := range unsafe {
			sel.RemoveAttr(key)
			dirty = true
		}
	})
	if !dirty {
		return markup, nil
	}

	cleaned, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("shortcode: render cleaned output: %w", err)
	}
	return cleaned, nil
}

func scriptURL(raw string) bool {
	cleaned := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	return strings.HasPrefix(cleaned, "javascript:") || strings.HasPrefix(cleaned, "vbscript:")
}
