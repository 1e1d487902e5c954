package placemarks

import (
	"time"

	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultMarkerIcon is served when a placemark has no icon of its own.
const DefaultMarkerIcon = "default-marker.png"

// Placemark is a titled map pin. Latitude and Longitude are kept as the
// stored text and are empty when the address could not be geocoded.
type Placemark struct {
	bun.BaseModel `bun:"table:bgmp_placemarks,alias:pm"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Title      string    `bun:"title,notnull" json:"title"`
	Slug       string    `bun:"slug,notnull" json:"slug"`
	Details    string    `bun:"details" json:"details,omitempty"`
	Address    string    `bun:"address" json:"address,omitempty"`
	Latitude   string    `bun:"latitude" json:"latitude,omitempty"`
	Longitude  string    `bun:"longitude" json:"longitude,omitempty"`
	Icon       string    `bun:"icon" json:"icon,omitempty"`
	ZIndex     int       `bun:"z_index,notnull,default:0" json:"z_index"`
	Categories []string  `bun:"categories,type:jsonb" json:"categories,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Coordinates parses the stored latitude and longitude.
func (p *Placemark) Coordinates() (interfaces.Coordinates, bool) {
	if p == nil {
		return interfaces.Coordinates{}, false
	}
	return coordinates.FromParts(p.Latitude, p.Longitude)
}

// InCategories reports whether the placemark carries any of slugs. An empty
// filter matches everything.
func (p *Placemark) InCategories(slugs []string) bool {
	if len(slugs) == 0 {
		return true
	}
	for _, want := range slugs {
		for _, have := range p.Categories {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Category groups placemarks. IDs are derived from the slug.
type Category struct {
	bun.BaseModel `bun:"table:bgmp_categories,alias:cat"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug        string    `bun:"slug,notnull" json:"slug"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// ListOptions filters placemark listings.
type ListOptions struct {
	Categories []string
}

func clonePlacemark(p *Placemark) *Placemark {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.Categories != nil {
		cloned.Categories = append([]string(nil), p.Categories...)
	}
	return &cloned
}

func cloneCategory(c *Category) *Category {
	if c == nil {
		return nil
	}
	cloned := *c
	return &cloned
}
