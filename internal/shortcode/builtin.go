package shortcode

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const (
	MapShortcodeName  = "bgmp-map"
	ListShortcodeName = "bgmp-list"
)

// DefaultsSource yields the site wide map settings at render time.
type DefaultsSource interface {
	MapDefaults(ctx context.Context) (mapoptions.Defaults, error)
}

// MarkerSource lists the markers shown on a map.
type MarkerSource interface {
	ListMarkers(ctx context.Context, filter mapoptions.MarkerFilter) ([]mapoptions.Marker, error)
}

// ListItem is one row of the placemark list.
type ListItem struct {
	ID      int64
	Title   string
	Details template.HTML
	Address string
}

// ListSource lists placemarks ordered by title.
type ListSource interface {
	ListItems(ctx context.Context, categories []string) ([]ListItem, error)
}

// Dependencies groups the collaborators used by the built-in shortcodes.
type Dependencies struct {
	Arguments       *ArgumentProcessor
	Builder         *mapoptions.Builder
	Defaults        DefaultsSource
	Markers         MarkerSource
	List            ListSource
	ValidatePayload bool
	ListCacheTTL    time.Duration
	Logger          interfaces.Logger
}

// BuiltInDefinitions returns the placemark shortcodes bound to deps.
func BuiltInDefinitions(deps Dependencies) []interfaces.ShortcodeDefinition {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return []interfaces.ShortcodeDefinition{
		mapDefinition(deps),
		listDefinition(deps),
	}
}

var mapTemplate = template.Must(template.New(MapShortcodeName).Parse(
	`<div id="bgmp_map-canvas" class="bgmp_map-canvas" style="width: {{ .Width }}px; height: {{ .Height }}px;" data-bgmp-map="{{ .Payload }}"></div>`,
))

func mapDefinition(deps Dependencies) interfaces.ShortcodeDefinition {
	stringParam := func(name string) interfaces.ShortcodeParam {
		return interfaces.ShortcodeParam{Name: name, Type: interfaces.ShortcodeParamString}
	}

	return interfaces.ShortcodeDefinition{
		Name:        MapShortcodeName,
		Description: "Embeds a map with every placemark, or a filtered subset",
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				stringParam("placemark"),
				{Name: "categories", Type: interfaces.ShortcodeParamList},
				stringParam("width"),
				stringParam("height"),
				stringParam("center"),
				stringParam("zoom"),
				stringParam("type"),
			},
			AllowUnknown: true,
		},
		Handler: func(ctx interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			return renderMap(ctx, deps, params)
		},
	}
}

func renderMap(sc interfaces.ShortcodeContext, deps Dependencies, params map[string]any) (template.HTML, error) {
	ctx := sc.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Arguments == nil || deps.Defaults == nil {
		return "", fmt.Errorf("shortcode: %s is not configured", MapShortcodeName)
	}

	req, diags := deps.Arguments.Process(ctx, RawAttributesFromParams(params))
	if sc.Notices != nil {
		for _, msg := range diags {
			sc.Notices.AddError(msg)
		}
	}
	if len(diags) > 0 {
		logging.WithFields(deps.Logger.WithContext(ctx), map[string]any{
			"shortcode":   MapShortcodeName,
			"diagnostics": len(diags),
		}).Debug("shortcode.map.attributes_dropped")
	}

	defaults, err := deps.Defaults.MapDefaults(ctx)
	if err != nil {
		return "", fmt.Errorf("shortcode: load map defaults: %w", err)
	}
	builder := deps.Builder
	if builder == nil {
		builder = mapoptions.NewBuilder(nil)
	}
	opts, err := builder.Build(ctx, defaults, req)
	if err != nil {
		return "", fmt.Errorf("shortcode: build map options: %w", err)
	}

	var markers []mapoptions.Marker
	if deps.Markers != nil {
		if markers, err = deps.Markers.ListMarkers(ctx, req.MarkerFilter()); err != nil {
			return "", fmt.Errorf("shortcode: list markers: %w", err)
		}
	}

	encoded, err := mapoptions.Payload{Options: opts, Markers: markers}.Encode()
	if err != nil {
		return "", fmt.Errorf("shortcode: encode map payload: %w", err)
	}
	if deps.ValidatePayload {
		if err := mapoptions.ValidatePayload(encoded); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	err = mapTemplate.Execute(&buf, map[string]any{
		"Width":   opts.MapWidth,
		"Height":  opts.MapHeight,
		"Payload": string(encoded),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const noPlacemarksFound = "No Placemarks found"

var listTemplate = template.Must(template.New(ListShortcodeName).Parse(
	`<ul id="bgmp_list" class="bgmp_list">
{{- range .Items }}
<li id="bgmp_list-item-{{ .ID }}" class="bgmp_list-item">
<h3 class="bgmp_list-placemark-title">{{ .Title }}</h3>
<div class="bgmp_list-description">{{ .Details }}</div>
{{- if .Address }}
<p class="bgmp_list-address">{{ .Address }}</p>
{{- end }}
{{- if $.ViewOnMap }}
<a href="#bgmp_map-canvas" class="bgmp_view-on-map" data-marker-id="{{ .ID }}">View on Map</a>
{{- end }}
</li>
{{- end }}
</ul>`,
))

func listDefinition(deps Dependencies) interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        ListShortcodeName,
		Description: "Lists placemarks alphabetically with their address",
		CacheTTL:    deps.ListCacheTTL,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "categories", Type: interfaces.ShortcodeParamList},
				{Name: "viewonmap", Type: interfaces.ShortcodeParamString, Default: ""},
			},
			AllowUnknown: true,
		},
		Handler: func(ctx interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			return renderList(ctx, deps, params)
		},
	}
}

func renderList(sc interfaces.ShortcodeContext, deps Dependencies, params map[string]any) (template.HTML, error) {
	ctx := sc.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.List == nil {
		return "", fmt.Errorf("shortcode: %s is not configured", ListShortcodeName)
	}

	var categories []string
	if raw, ok := params["categories"]; ok {
		categories, _ = categoryNames(raw)
		categories = compact(categories)
	}

	items, err := deps.List.ListItems(ctx, categories)
	if err != nil {
		return "", fmt.Errorf("shortcode: list placemarks: %w", err)
	}
	if len(items) == 0 {
		return noPlacemarksFound, nil
	}

	var buf bytes.Buffer
	err = listTemplate.Execute(&buf, map[string]any{
		"Items":     items,
		"ViewOnMap": truthy(params["viewonmap"]),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func truthy(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	v, err := parseBool(s)
	return err == nil && v
}
