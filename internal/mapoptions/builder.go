package mapoptions

import (
	"context"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// PlacemarkLocator resolves the stored coordinates of a placemark. ok is false
// when the placemark does not exist or has no valid coordinates.
type PlacemarkLocator interface {
	PlacemarkCoordinates(ctx context.Context, id int64) (coords interfaces.Coordinates, ok bool, err error)
}

// Builder merges defaults, single placemark recentring and request overrides.
type Builder struct {
	locator PlacemarkLocator
}

// NewBuilder returns a builder. A nil locator disables recentring.
func NewBuilder(locator PlacemarkLocator) *Builder {
	return &Builder{locator: locator}
}

// Build resolves the options for req. Recentring is applied before request
// overrides, so an explicit zoom or center in req wins over the single
// placemark defaults.
func (b *Builder) Build(ctx context.Context, defaults Defaults, req Request) (Options, error) {
	opts := fromDefaults(defaults)

	if req.PlacemarkID != nil && b != nil && b.locator != nil {
		coords, ok, err := b.locator.PlacemarkCoordinates(ctx, *req.PlacemarkID)
		if err != nil {
			return Options{}, err
		}
		if ok {
			opts.Latitude = coords.Latitude
			opts.Longitude = coords.Longitude
			opts.Zoom = SingleMarkerZoom
		}
	}

	overlay(&opts, req)
	return opts, nil
}

func fromDefaults(d Defaults) Options {
	return Options{
		MapWidth:           d.Width,
		MapHeight:          d.Height,
		Latitude:           d.Center.Latitude,
		Longitude:          d.Center.Longitude,
		Zoom:               d.Zoom,
		Type:               d.MapType,
		TypeControl:        d.TypeControl,
		NavigationControl:  d.NavigationControl,
		InfoWindowMaxWidth: d.InfoWindowMaxWidth,
		StreetViewControl:  d.StreetViewControl,
		ViewOnMapScroll:    d.ViewOnMapScroll,
		Clustering: ClusteringOptions{
			Enabled:  d.Clustering.Enabled,
			MaxZoom:  d.Clustering.MaxZoom,
			GridSize: d.Clustering.GridSize,
			Style:    d.Clustering.Style,
			Styles:   ClusterStyles(d.Clustering.ImageBase),
		},
	}
}

func overlay(opts *Options, req Request) {
	if req.MapWidth != nil {
		opts.MapWidth = *req.MapWidth
	}
	if req.MapHeight != nil {
		opts.MapHeight = *req.MapHeight
	}
	if req.Center != nil {
		opts.Latitude = req.Center.Latitude
		opts.Longitude = req.Center.Longitude
	}
	if req.Zoom != nil {
		opts.Zoom = *req.Zoom
	}
	if req.MapType != nil {
		opts.Type = *req.MapType
	}
}
