package coordinates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrInvalidCoordinates is returned by Parse for every rejected input.
var ErrInvalidCoordinates = errors.New("coordinates: invalid")

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Parse validates a "lat,lon" string. All whitespace is ignored, exactly one
// comma is required and each side must be a plain base-10 number inside the
// latitude/longitude ranges.
func Parse(text string) (interfaces.Coordinates, error) {
	cleaned := stripSpaces(text)
	if cleaned == "" {
		return interfaces.Coordinates{}, fmt.Errorf("%w: empty input", ErrInvalidCoordinates)
	}
	if strings.Count(cleaned, ",") != 1 {
		return interfaces.Coordinates{}, fmt.Errorf("%w: expected exactly one comma in %q", ErrInvalidCoordinates, cleaned)
	}

	parts := strings.SplitN(cleaned, ",", 2)
	lat, err := parseNumber(parts[0])
	if err != nil {
		return interfaces.Coordinates{}, fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, err)
	}
	lon, err := parseNumber(parts[1])
	if err != nil {
		return interfaces.Coordinates{}, fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, err)
	}

	if lat < MinLatitude || lat > MaxLatitude {
		return interfaces.Coordinates{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, lat)
	}
	if lon < MinLongitude || lon > MaxLongitude {
		return interfaces.Coordinates{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, lon)
	}

	return interfaces.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Validate is the boolean form of Parse.
func Validate(text string) (interfaces.Coordinates, bool) {
	c, err := Parse(text)
	if err != nil {
		return interfaces.Coordinates{}, false
	}
	return c, true
}

// FromParts validates separately stored latitude and longitude fields.
func FromParts(latitude, longitude string) (interfaces.Coordinates, bool) {
	if strings.TrimSpace(latitude) == "" || strings.TrimSpace(longitude) == "" {
		return interfaces.Coordinates{}, false
	}
	return Validate(latitude + "," + longitude)
}

// Format renders c as "lat,lon". The output is accepted by Parse and yields the
// same pair.
func Format(c interfaces.Coordinates) string {
	return FormatNumber(c.Latitude) + "," + FormatNumber(c.Longitude)
}

// FormatNumber renders a single component without exponent notation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(raw string) (float64, error) {
	if !decimalPattern.MatchString(raw) {
		return 0, fmt.Errorf("%q is not a decimal number", raw)
	}
	return strconv.ParseFloat(raw, 64)
}

func stripSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
