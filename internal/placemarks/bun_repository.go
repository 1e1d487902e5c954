package placemarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPlacemarkRepository stores placemarks with auto-increment IDs.
type BunPlacemarkRepository struct {
	db *bun.DB
}

// NewBunPlacemarkRepository creates a placemark repository backed by db.
func NewBunPlacemarkRepository(db *bun.DB) *BunPlacemarkRepository {
	return &BunPlacemarkRepository{db: db}
}

func (r *BunPlacemarkRepository) Create(ctx context.Context, placemark *Placemark) (*Placemark, error) {
	record := clonePlacemark(placemark)
	record.ID = 0
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("placemark repository error: %w", err)
	}
	return record, nil
}

func (r *BunPlacemarkRepository) Update(ctx context.Context, placemark *Placemark) (*Placemark, error) {
	record := clonePlacemark(placemark)
	res, err := r.db.NewUpdate().
		Model(record).
		Column("title", "slug", "details", "address", "latitude", "longitude", "icon", "z_index", "categories", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("placemark repository error: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(record.ID, 10)}
	}
	return record, nil
}

func (r *BunPlacemarkRepository) GetByID(ctx context.Context, id int64) (*Placemark, error) {
	record := new(Placemark)
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("placemark repository error: %w", err)
	}
	return record, nil
}

func (r *BunPlacemarkRepository) List(ctx context.Context, opts ListOptions) ([]*Placemark, error) {
	var records []*Placemark
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.title ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("placemark repository error: %w", err)
	}
	if len(opts.Categories) == 0 {
		return records, nil
	}
	filtered := records[:0]
	for _, record := range records {
		if record.InCategories(opts.Categories) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (r *BunPlacemarkRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*Placemark)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("placemark repository error: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "placemark", Key: strconv.FormatInt(id, 10)}
	}
	return nil
}

// NewCategoryRepository creates the generic repository for categories.
func NewCategoryRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord:          func() *Category { return &Category{} },
		GetID:              func(c *Category) uuid.UUID { return c.ID },
		SetID:              func(c *Category, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(c *Category) string { return c.Slug },
	})
}

const categoryNamespace = "placemark_category"

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	repo         repository.Repository[*Category]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunCategoryRepository creates a category repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache creates a category repository with caching.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	repo := &BunCategoryRepository{repo: base}
	if cacheService != nil && serializer != nil {
		repo.repo = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = categoryNamespace + cache.KeySeparator
	}
	return repo
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	record, err := r.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	return record, r.InvalidateCache(ctx)
}

func (r *BunCategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "category", slug)
	}
	return record, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]*Category, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.slug ASC")
	}))
	return records, err
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Category{ID: id}); err != nil {
		return mapRepositoryError(err, "category", id.String())
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached category lookups.
func (r *BunCategoryRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
