package shortcode

import (
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type storedPlacemark struct {
	latitude  string
	longitude string
}

type placemarkLookupStub struct {
	placemarks map[int64]storedPlacemark
	err        error
}

func (s placemarkLookupStub) Exists(_ context.Context, id int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.placemarks[id]
	return ok, nil
}

func (s placemarkLookupStub) PlacemarkCoordinates(_ context.Context, id int64) (interfaces.Coordinates, bool, error) {
	if s.err != nil {
		return interfaces.Coordinates{}, false, s.err
	}
	p, ok := s.placemarks[id]
	if !ok {
		return interfaces.Coordinates{}, false, nil
	}
	c, valid := coordinates.FromParts(p.latitude, p.longitude)
	return c, valid, nil
}

type categoryLookupStub map[string]bool

func (s categoryLookupStub) CategoryExists(_ context.Context, slug string) (bool, error) {
	return s[slug], nil
}

type geocoderStub struct {
	results map[string]interfaces.Coordinates
	err     error
	calls   int
}

func (g *geocoderStub) Geocode(_ context.Context, address string) (interfaces.Coordinates, error) {
	g.calls++
	if c, ok := coordinates.Validate(address); ok {
		return c, nil
	}
	if c, ok := g.results[address]; ok {
		return c, nil
	}
	if g.err != nil {
		return interfaces.Coordinates{}, g.err
	}
	return interfaces.Coordinates{}, errors.New("no results")
}

func (g *geocoderStub) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", errors.New("not implemented")
}

type defaultsStub struct {
	defaults mapoptions.Defaults
}

func (d defaultsStub) MapDefaults(context.Context) (mapoptions.Defaults, error) {
	return d.defaults, nil
}

type markerSourceStub struct {
	markers []mapoptions.Marker
	filter  mapoptions.MarkerFilter
}

func (m *markerSourceStub) ListMarkers(_ context.Context, filter mapoptions.MarkerFilter) ([]mapoptions.Marker, error) {
	m.filter = filter
	return m.markers, nil
}

type listSourceStub struct {
	items      []ListItem
	categories []string
}

func (l *listSourceStub) ListItems(_ context.Context, categories []string) ([]ListItem, error) {
	l.categories = categories
	return l.items, nil
}

func fixtureDefaults() mapoptions.Defaults {
	return mapoptions.Defaults{
		Width:              600,
		Height:             400,
		Center:             interfaces.Coordinates{Latitude: 47.6062095, Longitude: -122.3320708},
		Zoom:               7,
		MapType:            mapoptions.MapTypeRoadmap,
		TypeControl:        mapoptions.TypeControlOff,
		NavigationControl:  mapoptions.NavigationControlDefault,
		StreetViewControl:  true,
		InfoWindowMaxWidth: 500,
		Clustering: mapoptions.ClusterConfig{
			Style:    mapoptions.ClusterStyleDefault,
			MaxZoom:  7,
			GridSize: 40,
		},
	}
}

func fixturePlacemarks() placemarkLookupStub {
	return placemarkLookupStub{placemarks: map[int64]storedPlacemark{
		7: {latitude: "10", longitude: "20"},
		8: {latitude: "", longitude: ""},
	}}
}

func fixtureProcessor(geocoder *geocoderStub) *ArgumentProcessor {
	if geocoder == nil {
		geocoder = &geocoderStub{}
	}
	return NewArgumentProcessor(
		fixturePlacemarks(),
		categoryLookupStub{"parks": true, "museums": true},
		geocoder,
	)
}

func fixtureDependencies(markers *markerSourceStub, list *listSourceStub) Dependencies {
	placemarks := fixturePlacemarks()
	return Dependencies{
		Arguments:       fixtureProcessor(nil),
		Builder:         mapoptions.NewBuilder(placemarks),
		Defaults:        defaultsStub{defaults: fixtureDefaults()},
		Markers:         markers,
		List:            list,
		ValidatePayload: true,
	}
}

func fixtureListItems() []ListItem {
	return []ListItem{
		{ID: 3, Title: "Gas Works Park", Details: template.HTML("<p>Old plant</p>"), Address: "2101 N Northlake Way"},
		{ID: 1, Title: "Pike Place Market", Details: template.HTML("<p>Fish</p>")},
	}
}

func contains(haystack string, needles ...string) (string, bool) {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return n, false
		}
	}
	return "", true
}
