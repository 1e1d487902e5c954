package placemarks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PlacemarkRepository persists placemarks keyed by integer IDs.
type PlacemarkRepository interface {
	Create(ctx context.Context, placemark *Placemark) (*Placemark, error)
	Update(ctx context.Context, placemark *Placemark) (*Placemark, error)
	GetByID(ctx context.Context, id int64) (*Placemark, error)
	// List returns placemarks ordered by title, then ID.
	List(ctx context.Context, opts ListOptions) ([]*Placemark, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists placemark categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a record does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
