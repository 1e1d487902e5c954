package interfaces

import "context"

// CacheProvider holds rendered shortcode markup. GetOrFetch returns the value
// stored under key or stores what fetch returns; fetch errors are passed
// through and never cached. DeleteByPrefix runs whenever placemarks or
// settings change.
type CacheProvider interface {
	GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (string, error)) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
