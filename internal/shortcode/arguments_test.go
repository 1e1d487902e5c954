package shortcode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

func attr(v string) *string { return &v }

func TestProcessRejectsOutOfRangeZoom(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Zoom: attr("25")})

	if req.Zoom != nil {
		t.Fatalf("expected zoom to be dropped, got %d", *req.Zoom)
	}
	want := "Basic Google Maps Placemarks shortcode error: 25 is not a valid zoom level."
	if len(diags) != 1 || diags[0] != want {
		t.Fatalf("expected %q, got %v", want, diags)
	}
}

func TestProcessAcceptsZoom(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Zoom: attr("10")})

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if req.Zoom == nil || *req.Zoom != 10 {
		t.Fatalf("expected zoom 10, got %v", req.Zoom)
	}
}

func TestProcessPlacemarkRules(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantID  int64
		wantMsg string
	}{
		{name: "valid", input: "7", wantID: 7},
		{name: "not numeric", input: "abc", wantMsg: "abc is not a valid placemark ID."},
		{name: "negative", input: "-3", wantMsg: "-3 is not a valid placemark ID."},
		{name: "unknown", input: "99", wantMsg: "99 is not a valid placemark ID."},
		{name: "no coordinates", input: "8", wantMsg: "8 does not have a valid address."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Placemark: attr(tc.input)})
			if tc.wantMsg == "" {
				if len(diags) != 0 || req.PlacemarkID == nil || *req.PlacemarkID != tc.wantID {
					t.Fatalf("expected placemark %d, got %v (%v)", tc.wantID, req.PlacemarkID, diags)
				}
				return
			}
			if req.PlacemarkID != nil {
				t.Fatalf("expected placemark to be dropped")
			}
			if len(diags) != 1 || !strings.HasSuffix(diags[0], "shortcode error: "+tc.wantMsg) {
				t.Fatalf("expected %q, got %v", tc.wantMsg, diags)
			}
		})
	}
}

func TestProcessLookupErrorsDropPlacemark(t *testing.T) {
	processor := NewArgumentProcessor(placemarkLookupStub{err: errors.New("db down")}, nil, nil)
	req, diags := processor.Process(context.Background(), RawAttributes{Placemark: attr("7")})
	if req.PlacemarkID != nil || len(diags) != 1 {
		t.Fatalf("expected lookup failure to drop placemark, got %v %v", req.PlacemarkID, diags)
	}
}

func TestProcessCategories(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{
		Categories: "parks, zoos,museums,",
	})

	if len(req.Categories) != 2 || req.Categories[0] != "parks" || req.Categories[1] != "museums" {
		t.Fatalf("expected gapless [parks museums], got %v", req.Categories)
	}
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "zoos is not a valid category.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestProcessCategoriesDropsWrongTypes(t *testing.T) {
	for _, value := range []any{42, []string{}, []any{}} {
		req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Categories: value})
		if req.Categories != nil || len(diags) != 0 {
			t.Fatalf("expected %v to be dropped silently, got %v %v", value, req.Categories, diags)
		}
	}
}

func TestProcessCategoriesAllInvalid(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{
		Categories: []any{"zoos", "aquariums"},
	})
	if req.Categories != nil {
		t.Fatalf("expected categories to be dropped, got %v", req.Categories)
	}
	if len(diags) != 2 {
		t.Fatalf("expected a diagnostic per category, got %v", diags)
	}
}

func TestProcessDimensions(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{
		Width:  attr("640"),
		Height: attr("tall"),
	})
	if req.MapWidth == nil || *req.MapWidth != 640 {
		t.Fatalf("expected width 640, got %v", req.MapWidth)
	}
	if req.MapHeight != nil {
		t.Fatalf("expected height to be dropped")
	}
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "tall is not a valid height.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}

	_, diags = fixtureProcessor(nil).Process(context.Background(), RawAttributes{Width: attr("0")})
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "0 is not a valid width.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestProcessCenter(t *testing.T) {
	geocoder := &geocoderStub{results: map[string]interfaces.Coordinates{
		"Space Needle": {Latitude: 47.6205, Longitude: -122.3493},
	}}
	req, diags := fixtureProcessor(geocoder).Process(context.Background(), RawAttributes{Center: attr("Space Needle")})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if req.Center == nil || req.Center.Latitude != 47.6205 {
		t.Fatalf("expected geocoded center, got %v", req.Center)
	}

	req, diags = fixtureProcessor(geocoder).Process(context.Background(), RawAttributes{Center: attr("Atlantis")})
	if req.Center != nil {
		t.Fatalf("expected failed center to be dropped")
	}
	if len(diags) != 1 || !strings.HasPrefix(diags[0], "Basic Google Maps Placemarks geocode error") {
		t.Fatalf("expected geocode notice, got %v", diags)
	}
}

func TestProcessMapType(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Type: attr("hybrid")})
	if len(diags) != 0 || req.MapType == nil || *req.MapType != mapoptions.MapTypeHybrid {
		t.Fatalf("expected HYBRID, got %v %v", req.MapType, diags)
	}

	_, diags = fixtureProcessor(nil).Process(context.Background(), RawAttributes{Type: attr("moon")})
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "MOON is not a valid map type.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestProcessUsesPluginName(t *testing.T) {
	processor := NewArgumentProcessor(nil, nil, nil, WithPluginName("Atlas"))
	_, diags := processor.Process(context.Background(), RawAttributes{Zoom: attr("x")})
	if len(diags) != 1 || diags[0] != "Atlas shortcode error: x is not a valid zoom level." {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestRawAttributesFromParams(t *testing.T) {
	raw := RawAttributesFromParams(map[string]any{
		"Zoom":       5,
		"categories": []any{"parks"},
		"unknown":    "ignored",
	})
	if raw.Zoom == nil || *raw.Zoom != "5" {
		t.Fatalf("expected zoom \"5\", got %v", raw.Zoom)
	}
	if _, ok := raw.Categories.([]any); !ok {
		t.Fatalf("expected categories to stay a list, got %T", raw.Categories)
	}
	if raw.Placemark != nil || raw.Center != nil {
		t.Fatalf("expected absent attributes to stay nil")
	}
}

func TestProcessDimensionsRejectsOverflow(t *testing.T) {
	for _, raw := range []string{"1e19", "1e30", "99999999999999999999", "2147483648"} {
		req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{
			Width:  attr(raw),
			Height: attr(raw),
		})
		if req.MapWidth != nil || req.MapHeight != nil {
			t.Fatalf("%s: expected dimensions to be dropped, got %v x %v", raw, req.MapWidth, req.MapHeight)
		}
		if len(diags) != 2 || !strings.HasSuffix(diags[0], raw+" is not a valid width.") {
			t.Fatalf("%s: unexpected diagnostics %v", raw, diags)
		}
	}

	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Width: attr("2147483647")})
	if len(diags) != 0 || req.MapWidth == nil || *req.MapWidth != 2147483647 {
		t.Fatalf("expected largest width to be kept, got %v %v", req.MapWidth, diags)
	}
}

func TestProcessRejectsFractionalZoom(t *testing.T) {
	req, diags := fixtureProcessor(nil).Process(context.Background(), RawAttributes{Zoom: attr("10.9")})
	if req.Zoom != nil {
		t.Fatalf("expected zoom to be dropped, got %d", *req.Zoom)
	}
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "10.9 is not a valid zoom level.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}

	req, diags = fixtureProcessor(nil).Process(context.Background(), RawAttributes{Zoom: attr("12.0")})
	if len(diags) != 0 || req.Zoom == nil || *req.Zoom != 12 {
		t.Fatalf("expected whole zoom 12, got %v %v", req.Zoom, diags)
	}
}

func TestProcessCategoriesAcceptNames(t *testing.T) {
	processor := NewArgumentProcessor(nil, categoryLookupStub{"coffee-shops": true, "parks": true}, nil)
	req, diags := processor.Process(context.Background(), RawAttributes{
		Categories: "Coffee Shops, coffee-shops, Parks, !!!",
	})
	if len(req.Categories) != 2 || req.Categories[0] != "coffee-shops" || req.Categories[1] != "parks" {
		t.Fatalf("expected [coffee-shops parks], got %v", req.Categories)
	}
	if len(diags) != 1 || !strings.HasSuffix(diags[0], "!!! is not a valid category.") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}
