package placemarks

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryPlacemarkRepository returns an in-memory placemark store.
func NewMemoryPlacemarkRepository() PlacemarkRepository {
	return &memoryPlacemarkRepository{byID: make(map[int64]*Placemark)}
}

type memoryPlacemarkRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*Placemark
	nextID int64
}

func (m *memoryPlacemarkRepository) Create(_ context.Context, placemark *Placemark) (*Placemark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := clonePlacemark(placemark)
	m.nextID++
	record.ID = m.nextID
	m.byID[record.ID] = record
	return clonePlacemark(record), nil
}

func (m *memoryPlacemarkRepository) Update(_ context.Context, placemark *Placemark) (*Placemark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[placemark.ID]; !ok {
		return nil, &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(placemark.ID, 10)}
	}
	record := clonePlacemark(placemark)
	m.byID[record.ID] = record
	return clonePlacemark(record), nil
}

func (m *memoryPlacemarkRepository) GetByID(_ context.Context, id int64) (*Placemark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(id, 10)}
	}
	return clonePlacemark(record), nil
}

func (m *memoryPlacemarkRepository) List(_ context.Context, opts ListOptions) ([]*Placemark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Placemark, 0, len(m.byID))
	for _, record := range m.byID {
		if record.InCategories(opts.Categories) {
			out = append(out, clonePlacemark(record))
		}
	}
	sortByTitle(out)
	return out, nil
}

func (m *memoryPlacemarkRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.byID, id)
	return nil
}

func sortByTitle(records []*Placemark) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Title != records[j].Title {
			return records[i].Title < records[j].Title
		}
		return records[i].ID < records[j].ID
	})
}

// NewMemoryCategoryRepository returns an in-memory category store.
func NewMemoryCategoryRepository() CategoryRepository {
	return &memoryCategoryRepository{
		byID:   make(map[uuid.UUID]*Category),
		bySlug: make(map[string]uuid.UUID),
	}
}

type memoryCategoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Category
	bySlug map[string]uuid.UUID
}

func (m *memoryCategoryRepository) Create(_ context.Context, category *Category) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneCategory(category)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.byID[record.ID] = record
	m.bySlug[record.Slug] = record.ID
	return cloneCategory(record), nil
}

func (m *memoryCategoryRepository) GetBySlug(_ context.Context, slug string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: slug}
	}
	return cloneCategory(m.byID[id]), nil
}

func (m *memoryCategoryRepository) List(_ context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Category, 0, len(m.byID))
	for _, record := range m.byID {
		out = append(out, cloneCategory(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(m.bySlug, record.Slug)
	delete(m.byID, id)
	return nil
}
