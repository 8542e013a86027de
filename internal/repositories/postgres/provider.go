package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/nordmart/storefront/internal/repositories"
)

// Options tune the connection pool and schema migration behaviour.
type Options struct {
	DSN string
	// MigrationsDir points at the directory holding *.up.sql/*.down.sql
	// files. Empty skips migrations.
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
	// Logf, when set, receives migration progress output.
	Logf func(format string, args ...any)
}

type migrateLogger struct {
	printf func(format string, args ...any)
}

func (l migrateLogger) Printf(format string, args ...any) { l.printf(format, args...) }

func (l migrateLogger) Verbose() bool { return false }

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Registry is the Postgres implementation of repositories.Registry. All
// repositories share one *sql.DB; RunInTx threads a transaction through the
// context so nested repository calls join it.
type Registry struct {
	db *sql.DB

	products  *productRepository
	customers *customerRepository
	orders    *orderRepository
	health    *healthRepository
}

// NewRegistry opens the database, verifies connectivity, and applies pending
// migrations.
func NewRegistry(ctx context.Context, opts Options) (*Registry, error) {
	if opts.DSN == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if opts.MigrationsDir != "" {
		if err := runMigrations(db, opts.MigrationsDir, opts.Logf); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	r := &Registry{db: db}
	r.products = &productRepository{registry: r}
	r.customers = &customerRepository{registry: r}
	r.orders = &orderRepository{registry: r}
	r.health = &healthRepository{registry: r}
	return r, nil
}

func runMigrations(db *sql.DB, dir string, logf func(format string, args ...any)) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("postgres: migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("postgres: migrate instance: %w", err)
	}
	if logf != nil {
		m.Log = migrateLogger{printf: logf}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Registry) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *Registry) Products() repositories.ProductRepository   { return r.products }
func (r *Registry) Customers() repositories.CustomerRepository { return r.customers }
func (r *Registry) Orders() repositories.OrderRepository       { return r.orders }
func (r *Registry) Health() repositories.HealthRepository      { return r.health }

// RunInTx executes fn inside a transaction. Repository calls made with the
// context passed to fn run on that transaction.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError("postgres.begin_tx", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapError("postgres.commit_tx", err)
	}
	return nil
}

// q returns the transaction bound to ctx when present, the pool otherwise.
func (r *Registry) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db
}

type healthRepository struct {
	registry *Registry
}

func (h *healthRepository) Ping(ctx context.Context) error {
	if err := h.registry.db.PingContext(ctx); err != nil {
		return wrapError("health.ping", err)
	}
	return nil
}
