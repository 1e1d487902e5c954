package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/identity"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store persists option values as strings.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// NewMemoryStore returns an in-memory option store.
func NewMemoryStore() Store {
	return &memoryStore{values: make(map[string]string)}
}

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryStore) All(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// NewSettingRepository creates the generic repository for option rows.
func NewSettingRepository(db *bun.DB) repository.Repository[*Setting] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Setting]{
		NewRecord:          func() *Setting { return &Setting{} },
		GetID:              func(s *Setting) uuid.UUID { return s.ID },
		SetID:              func(s *Setting, id uuid.UUID) { s.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(s *Setting) string { return s.Key },
	})
}

// BunStore keeps options in the bgmp_settings table. Row IDs are derived
// from the key so repeated writes address the same row.
type BunStore struct {
	repo repository.Repository[*Setting]
	now  func() time.Time
}

// NewBunStore creates a Bun backed option store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{
		repo: NewSettingRepository(db),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *BunStore) Get(ctx context.Context, key string) (string, bool, error) {
	record, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("settings store error: %w", err)
	}
	return record.Value, true, nil
}

func (s *BunStore) Set(ctx context.Context, key, value string) error {
	existing, err := s.repo.GetByIdentifier(ctx, key)
	switch {
	case err == nil:
		existing.Value = value
		existing.UpdatedAt = s.now()
		_, err = s.repo.Update(ctx, existing)
	case isNotFound(err):
		_, err = s.repo.Create(ctx, &Setting{
			ID:        identity.SettingUUID(key),
			Key:       key,
			Value:     value,
			UpdatedAt: s.now(),
		})
	}
	if err != nil {
		return fmt.Errorf("settings store error: %w", err)
	}
	return nil
}

func (s *BunStore) All(ctx context.Context) (map[string]string, error) {
	records, _, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings store error: %w", err)
	}
	out := make(map[string]string, len(records))
	for _, record := range records {
		out[record.Key] = record.Value
	}
	return out, nil
}

func isNotFound(err error) bool {
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows)
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
