package geocoding

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies a geocoding failure.
type Kind string

const (
	KindNone          Kind = ""
	KindNetwork       Kind = "network_error"
	KindHTTP          Kind = "http_error"
	KindMalformed     Kind = "malformed_response"
	KindRequestDenied Kind = "request_denied"
	KindNoResults     Kind = "no_results"
)

const (
	TextCodeNetwork       = "GEOCODE_NETWORK_ERROR"
	TextCodeHTTP          = "GEOCODE_HTTP_ERROR"
	TextCodeMalformed     = "GEOCODE_MALFORMED_RESPONSE"
	TextCodeRequestDenied = "GEOCODE_REQUEST_DENIED"
	TextCodeNoResults     = "GEOCODE_NO_RESULTS"
	TextCodeInvalidInput  = "GEOCODE_INVALID_INPUT"
)

const (
	metaStatusText = "status_text"
	metaBody       = "body"
	metaService    = "service_status"
)

var kindTextCodes = map[Kind]string{
	KindNetwork:       TextCodeNetwork,
	KindHTTP:          TextCodeHTTP,
	KindMalformed:     TextCodeMalformed,
	KindRequestDenied: TextCodeRequestDenied,
	KindNoResults:     TextCodeNoResults,
}

func newFailure(kind Kind, message string, source error) *goerrors.Error {
	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryExternal)
	}
	return err.WithTextCode(kindTextCodes[kind])
}

func networkError(source error) error {
	return newFailure(KindNetwork, "geocoder request failed", source)
}

func httpError(code int, statusText, body string) error {
	return newFailure(KindHTTP, fmt.Sprintf("geocoder responded %d %s", code, statusText), nil).
		WithCode(code).
		WithMetadata(map[string]any{
			metaStatusText: statusText,
			metaBody:       body,
		})
}

func malformedResponse(source error) error {
	return newFailure(KindMalformed, "geocoder response was not valid JSON", source)
}

func requestDenied(message string) error {
	err := newFailure(KindRequestDenied, "geocoder denied the request", nil)
	if strings.TrimSpace(message) != "" {
		err = err.WithMetadata(map[string]any{metaService: message})
	}
	return err
}

func noResults(query string) error {
	return newFailure(KindNoResults, "geocoder returned no results", nil).
		WithMetadata(map[string]any{"query": query})
}

// KindOf reports the failure kind carried by err, or KindNone when err was not
// produced by this package.
func KindOf(err error) Kind {
	var target *goerrors.Error
	if err == nil || !goerrors.As(err, &target) {
		return KindNone
	}
	for kind, code := range kindTextCodes {
		if target.TextCode == code {
			return kind
		}
	}
	return KindNone
}

// StatusCode returns the upstream HTTP status for KindHTTP failures and zero otherwise.
func StatusCode(err error) int {
	if KindOf(err) != KindHTTP {
		return 0
	}
	var target *goerrors.Error
	goerrors.As(err, &target)
	return target.Code
}

// Notice renders the operator-facing message for a geocoding failure. The
// plugin name prefixes every message except the no-results hint.
func Notice(plugin string, err error) string {
	if err == nil {
		return ""
	}
	var target *goerrors.Error
	goerrors.As(err, &target)

	switch KindOf(err) {
	case KindNetwork:
		reason := err.Error()
		if target != nil && target.Source != nil {
			reason = target.Source.Error()
		}
		return fmt.Sprintf("%s geocode error: %s", plugin, reason)
	case KindHTTP:
		if target.Code == 0 {
			return fmt.Sprintf("%s geocode error: Response code not present", plugin)
		}
		return fmt.Sprintf("%s geocode error: %d %s. Response: %s",
			plugin, target.Code, metadataString(target, metaStatusText), metadataString(target, metaBody))
	case KindMalformed:
		return fmt.Sprintf("%s geocode error: Response was not formatted in JSON.", plugin)
	case KindRequestDenied:
		return fmt.Sprintf("%s geocode error: Request Denied.", plugin)
	case KindNoResults:
		return "That address couldn't be geocoded, please make sure that it's correct."
	default:
		return fmt.Sprintf("%s geocode error: %s", plugin, err.Error())
	}
}

func metadataString(err *goerrors.Error, key string) string {
	if err == nil || err.Metadata == nil {
		return ""
	}
	if value, ok := err.Metadata[key].(string); ok {
		return value
	}
	return ""
}
