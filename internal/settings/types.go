package settings

import (
	"time"

	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Option keys as they are persisted.
const (
	KeyPrefix = "bgmp_"

	KeyMapWidth           = KeyPrefix + "map-width"
	KeyMapHeight          = KeyPrefix + "map-height"
	KeyMapAddress         = KeyPrefix + "map-address"
	KeyMapLatitude        = KeyPrefix + "map-latitude"
	KeyMapLongitude       = KeyPrefix + "map-longitude"
	KeyMapZoom            = KeyPrefix + "map-zoom"
	KeyMapType            = KeyPrefix + "map-type"
	KeyMapTypeControl     = KeyPrefix + "map-type-control"
	KeyMapNavigation      = KeyPrefix + "map-navigation-control"
	KeyStreetViewControl  = KeyPrefix + "street-view-control"
	KeyInfoWindowMaxWidth = KeyPrefix + "map-info-window-width"
	KeyViewOnMapScroll    = KeyPrefix + "view-on-map-scroll"
	KeyClusterEnabled     = KeyPrefix + "marker-clustering"
	KeyClusterMaxZoom     = KeyPrefix + "cluster-max-zoom"
	KeyClusterGridSize    = KeyPrefix + "cluster-grid-size"
	KeyClusterStyle       = KeyPrefix + "cluster-style"
	KeyDBVersion          = KeyPrefix + "db-version"
)

// Settings are the editable site wide map settings. Latitude and Longitude
// hold the geocoded map address and are empty when it could not be resolved.
type Settings struct {
	Width              int
	Height             int
	Address            string
	Latitude           string
	Longitude          string
	Zoom               int
	MapType            mapoptions.MapType
	TypeControl        string
	NavigationControl  string
	StreetViewControl  bool
	InfoWindowMaxWidth int
	ViewOnMapScroll    bool
	ClusterEnabled     bool
	ClusterMaxZoom     int
	ClusterGridSize    int
	ClusterStyle       string
}

// DefaultSettings mirrors the values used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Width:              600,
		Height:             400,
		Address:            "Seattle",
		Latitude:           "47.6062095",
		Longitude:          "-122.3320708",
		Zoom:               7,
		MapType:            mapoptions.MapTypeRoadmap,
		TypeControl:        mapoptions.TypeControlOff,
		NavigationControl:  mapoptions.NavigationControlDefault,
		InfoWindowMaxWidth: 500,
		ClusterMaxZoom:     7,
		ClusterGridSize:    40,
		ClusterStyle:       mapoptions.ClusterStyleDefault,
	}
}

// Setting is one persisted option row.
type Setting struct {
	bun.BaseModel `bun:"table:bgmp_settings,alias:bs"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key       string    `bun:"key,notnull" json:"key"`
	Value     string    `bun:"value" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
