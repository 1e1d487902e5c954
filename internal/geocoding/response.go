package geocoding

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const statusRequestDenied = "REQUEST_DENIED"

type apiResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	FormattedAddress string      `json:"formatted_address"`
	Geometry         apiGeometry `json:"geometry"`
}

type apiGeometry struct {
	Location apiLocation `json:"location"`
}

type apiLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// stripTags reduces an HTML (or plain text) body to its visible text with
// collapsed whitespace.
func stripTags(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return strings.Join(strings.Fields(string(body)), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
