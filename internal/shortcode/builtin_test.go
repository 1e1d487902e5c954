package shortcode

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

var payloadAttr = regexp.MustCompile(`data-bgmp-map="([^"]*)"`)

func decodeMapPayload(t *testing.T, markup string) mapoptions.Payload {
	t.Helper()
	m := payloadAttr.FindStringSubmatch(markup)
	if len(m) != 2 {
		t.Fatalf("expected payload attribute in %s", markup)
	}
	var payload mapoptions.Payload
	if err := json.Unmarshal([]byte(html.UnescapeString(m[1])), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

func TestBuiltInDefinitionsRegister(t *testing.T) {
	reg := NewRegistry(NewValidator())
	if err := RegisterBuiltIns(reg, fixtureDependencies(&markerSourceStub{}, &listSourceStub{}), nil); err != nil {
		t.Fatalf("RegisterBuiltIns: %v", err)
	}
	for _, name := range []string{MapShortcodeName, ListShortcodeName} {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("%s definition not registered", name)
		}
	}
}

func TestRegisterBuiltInsRejectsUnknownName(t *testing.T) {
	reg := NewRegistry(NewValidator())
	if err := RegisterBuiltIns(reg, Dependencies{}, []string{"youtube"}); !errors.Is(err, ErrUnknownBuiltIn) {
		t.Fatalf("expected ErrUnknownBuiltIn, got %v", err)
	}
}

func TestMapShortcodeRendersPayload(t *testing.T) {
	markers := &markerSourceStub{markers: []mapoptions.Marker{
		{ID: 7, Title: "Pike Place", Latitude: 10, Longitude: 20, Icon: "default-marker.png"},
	}}
	collector := notices.NewCollector()
	ctx := interfaces.ShortcodeContext{Context: context.Background(), Notices: collector}

	def := mapDefinition(fixtureDependencies(markers, nil))
	params, err := NewValidator().Bind(def, map[string]any{
		"placemark":  "7",
		"categories": "parks,zoos",
		"zoom":       "25",
		"align":      "left",
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	out, err := def.Handler(ctx, params, "")
	if err != nil {
		t.Fatalf("render map: %v", err)
	}
	if missing, ok := contains(string(out), `id="bgmp_map-canvas"`, `class="bgmp_map-canvas"`, "width: 600px"); !ok {
		t.Fatalf("expected %q in %s", missing, out)
	}

	payload := decodeMapPayload(t, string(out))
	if payload.Options.Latitude != 10 || payload.Options.Longitude != 20 {
		t.Fatalf("expected map centred on placemark, got %+v", payload.Options)
	}
	if payload.Options.Zoom != mapoptions.SingleMarkerZoom {
		t.Fatalf("expected single marker zoom, got %d", payload.Options.Zoom)
	}
	if len(payload.Markers) != 1 || payload.Markers[0].Title != "Pike Place" {
		t.Fatalf("unexpected markers %+v", payload.Markers)
	}
	if got := markers.filter.Categories; len(got) != 1 || got[0] != "parks" {
		t.Fatalf("expected marker filter [parks], got %v", got)
	}
	if id := markers.filter.PlacemarkID; id == nil || *id != 7 {
		t.Fatalf("expected marker filter on placemark 7, got %v", id)
	}

	errs := collector.List().Errors()
	if len(errs) != 2 {
		t.Fatalf("expected two diagnostics, got %v", errs)
	}
	if strings.Contains(string(out), "shortcode error") {
		t.Fatal("diagnostics must not leak into markup")
	}
}

func TestListShortcode(t *testing.T) {
	list := &listSourceStub{items: fixtureListItems()}
	def := listDefinition(fixtureDependencies(nil, list))

	out, err := def.Handler(interfaces.ShortcodeContext{}, map[string]any{
		"categories": []any{"parks", ""},
		"viewonmap":  "true",
	}, "")
	if err != nil {
		t.Fatalf("render list: %v", err)
	}

	markup := string(out)
	if missing, ok := contains(markup,
		`<ul id="bgmp_list" class="bgmp_list">`,
		`<h3 class="bgmp_list-placemark-title">Gas Works Park</h3>`,
		`<p>Old plant</p>`,
		`<p class="bgmp_list-address">2101 N Northlake Way</p>`,
		`data-marker-id="1"`,
	); !ok {
		t.Fatalf("expected %q in %s", missing, markup)
	}
	if strings.Index(markup, "Gas Works") > strings.Index(markup, "Pike Place") {
		t.Fatal("expected source order to be preserved")
	}
	if strings.Count(markup, "bgmp_list-address") != 1 {
		t.Fatal("expected address paragraph only when an address is stored")
	}
	if len(list.categories) != 1 || list.categories[0] != "parks" {
		t.Fatalf("expected category filter [parks], got %v", list.categories)
	}
}

func TestListShortcodeEmptyAndWithoutViewOnMap(t *testing.T) {
	def := listDefinition(fixtureDependencies(nil, &listSourceStub{}))
	out, err := def.Handler(interfaces.ShortcodeContext{}, map[string]any{}, "")
	if err != nil {
		t.Fatalf("render list: %v", err)
	}
	if string(out) != "No Placemarks found" {
		t.Fatalf("unexpected empty output %q", out)
	}

	def = listDefinition(fixtureDependencies(nil, &listSourceStub{items: fixtureListItems()}))
	out, err = def.Handler(interfaces.ShortcodeContext{}, map[string]any{"viewonmap": "no"}, "")
	if err != nil {
		t.Fatalf("render list: %v", err)
	}
	if strings.Contains(string(out), "View on Map") {
		t.Fatal("expected no view on map links")
	}
}
