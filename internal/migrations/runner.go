package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

const (
	// Root is the directory inside the embedded filesystem holding one
	// subdirectory per dialect.
	Root = "data/sql/migrations"

	TableName      = "bgmp_schema_migrations"
	LocksTableName = "bgmp_schema_migration_locks"
)

var ErrDatabaseRequired = errors.New("migrations: bun database is required")

// Runner applies the embedded SQL migrations for the database dialect.
type Runner struct {
	db     *bun.DB
	fsys   fs.FS
	root   string
	logger interfaces.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRoot overrides the directory holding the dialect folders.
func WithRoot(root string) Option {
	return func(r *Runner) {
		r.root = root
	}
}

func NewRunner(db *bun.DB, fsys fs.FS, opts ...Option) *Runner {
	r := &Runner{
		db:     db,
		fsys:   fsys,
		root:   Root,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialectDir maps a bun dialect onto its migration directory name.
func DialectDir(name dialect.Name) string {
	if name == dialect.PG {
		return "postgres"
	}
	return "sqlite"
}

// Up applies every migration that has not run yet and returns the names
// applied by this call, oldest first.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, ErrDatabaseRequired
	}

	dir := path.Join(r.root, DialectDir(r.db.Dialect().Name()))
	sub, err := fs.Sub(r.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: open %s: %w", dir, err)
	}

	set := migrate.NewMigrations()
	if err := set.Discover(sub); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "discover migrations").
			WithTextCode("MIGRATIONS_DISCOVER_FAILED").
			WithMetadata(map[string]any{"dir": dir})
	}

	migrator := migrate.NewMigrator(r.db, set,
		migrate.WithTableName(TableName),
		migrate.WithLocksTableName(LocksTableName),
	)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "apply migrations").
			WithTextCode("MIGRATIONS_APPLY_FAILED")
	}

	applied := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		applied = append(applied, m.Name)
	}
	logging.WithFields(r.logger.WithContext(ctx), map[string]any{
		"dir":     dir,
		"applied": len(applied),
	}).Info("migrations.up.completed")
	return applied, nil
}

// Applied lists the migrations already recorded in the tracking table.
func (r *Runner) Applied(ctx context.Context) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, ErrDatabaseRequired
	}
	var names []string
	err := r.db.NewSelect().
		Table(TableName).
		Column("name").
		Order("id ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("migrations: list applied: %w", err)
	}
	return names, nil
}
