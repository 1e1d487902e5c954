package mapoptions

import (
	"strings"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const (
	MinZoom = 0
	MaxZoom = 21

	// SingleMarkerZoom is applied when a map is centred on one placemark.
	SingleMarkerZoom = 13
)

// MapType enumerates the base layers understood by the rendering client.
type MapType string

const (
	MapTypeRoadmap   MapType = "ROADMAP"
	MapTypeSatellite MapType = "SATELLITE"
	MapTypeHybrid    MapType = "HYBRID"
	MapTypeTerrain   MapType = "TERRAIN"
)

var mapTypeLabels = map[MapType]string{
	MapTypeRoadmap:   "Street Map",
	MapTypeSatellite: "Satellite Images",
	MapTypeHybrid:    "Hybrid",
	MapTypeTerrain:   "Terrain",
}

// MapTypes lists the supported map types in display order.
func MapTypes() []MapType {
	return []MapType{MapTypeRoadmap, MapTypeSatellite, MapTypeHybrid, MapTypeTerrain}
}

// ParseMapType upper-cases raw and reports whether it names a supported type.
func ParseMapType(raw string) (MapType, bool) {
	candidate := MapType(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := mapTypeLabels[candidate]
	return candidate, ok
}

// Label returns the human readable name of the map type.
func (t MapType) Label() string {
	return mapTypeLabels[t]
}

// Type control positions.
const (
	TypeControlOff          = "off"
	TypeControlDefault      = "DEFAULT"
	TypeControlHorizontal   = "HORIZONTAL_BAR"
	TypeControlDropdownMenu = "DROPDOWN_MENU"
)

// Navigation control styles.
const (
	NavigationControlOff     = "off"
	NavigationControlDefault = "DEFAULT"
	NavigationControlSmall   = "SMALL"
	NavigationControlAndroid = "ANDROID"
	NavigationControlZoomPan = "ZOOM_PAN"
)

// TypeControls lists the accepted type control values.
func TypeControls() []string {
	return []string{TypeControlOff, TypeControlDefault, TypeControlHorizontal, TypeControlDropdownMenu}
}

// NavigationControls lists the accepted navigation control values.
func NavigationControls() []string {
	return []string{NavigationControlOff, NavigationControlDefault, NavigationControlSmall, NavigationControlAndroid, NavigationControlZoomPan}
}

// Request is a validated map request. Every non-nil field already passed its
// validation rule.
type Request struct {
	PlacemarkID *int64
	Categories  []string
	MapWidth    *int
	MapHeight   *int
	Center      *interfaces.Coordinates
	Zoom        *int
	MapType     *MapType
}

// ClusterConfig configures marker clustering.
type ClusterConfig struct {
	Enabled   bool
	MaxZoom   int
	GridSize  int
	Style     string
	ImageBase string
}

// Defaults are the site wide map settings.
type Defaults struct {
	Width              int
	Height             int
	Center             interfaces.Coordinates
	Zoom               int
	MapType            MapType
	TypeControl        string
	NavigationControl  string
	StreetViewControl  bool
	InfoWindowMaxWidth int
	ViewOnMapScroll    bool
	Clustering         ClusterConfig
}

// Options is the resolved structure handed to the rendering client.
type Options struct {
	MapWidth           int               `json:"mapWidth"`
	MapHeight          int               `json:"mapHeight"`
	Latitude           float64           `json:"latitude"`
	Longitude          float64           `json:"longitude"`
	Zoom               int               `json:"zoom"`
	Type               MapType           `json:"type"`
	TypeControl        string            `json:"typeControl"`
	NavigationControl  string            `json:"navigationControl"`
	InfoWindowMaxWidth int               `json:"infoWindowMaxWidth"`
	StreetViewControl  bool              `json:"streetViewControl"`
	ViewOnMapScroll    bool              `json:"viewOnMapScroll"`
	Clustering         ClusteringOptions `json:"clustering"`
}

// ClusteringOptions carries the clustering settings and every style preset.
type ClusteringOptions struct {
	Enabled  bool                      `json:"enabled"`
	MaxZoom  int                       `json:"maxZoom"`
	GridSize int                       `json:"gridSize"`
	Style    string                    `json:"style"`
	Styles   map[string][]ClusterStyle `json:"styles"`
}

// MarkerFilter narrows the markers placed on a map. A placemark ID restricts
// the map to that single placemark.
type MarkerFilter struct {
	PlacemarkID *int64
	Categories  []string
}

// MarkerFilter returns the marker selection implied by the request.
func (r Request) MarkerFilter() MarkerFilter {
	return MarkerFilter{PlacemarkID: r.PlacemarkID, Categories: r.Categories}
}
