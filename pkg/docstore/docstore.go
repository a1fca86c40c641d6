// Package docstore mints supporting-document ids in a relational database.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var (
	// ErrUnsupportedDriver is returned for drivers other than postgres and sqlite3.
	ErrUnsupportedDriver = errors.New("unsupported document store driver")

	// ErrEmptyTitle is returned when a document is created without a title.
	ErrEmptyTitle = errors.New("document title cannot be empty")

	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
)

// IDSource mints an integer id for a supporting document.
type IDSource interface {
	CreateDocument(ctx context.Context, title string) (int64, error)
}

// Document is a row of the documents table.
type Document struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var schemas = map[string]string{
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
}

// Store is an IDSource backed by sqlx.
type Store struct {
	db     *sqlx.DB
	driver string
}

var _ IDSource = (*Store)(nil)

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driverName, dsn string) (*Store, error) {
	if _, ok := schemas[driverName]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driverName)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driverName, err)
	}
	if driverName == DriverSQLite {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, driver: driverName}, nil
}

// NewStore wraps an existing connection.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, ok := schemas[db.DriverName()]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, db.DriverName())
	}
	return &Store{db: db, driver: db.DriverName()}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Migrate creates the documents table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemas[s.driver]); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// CreateDocument inserts a document row and returns its id.
func (s *Store) CreateDocument(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}

	if s.driver == DriverPostgres {
		var id int64
		err := s.db.QueryRowxContext(ctx, `INSERT INTO documents (title) VALUES ($1) RETURNING id`, title).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert document: %w", describe(err))
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO documents (title) VALUES (?)`, title)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read document id: %w", err)
	}
	return id, nil
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	err := s.db.GetContext(ctx, &doc, s.db.Rebind(`SELECT id, title, created_at FROM documents WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns every document, oldest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	docs := []Document{}
	if err := s.db.SelectContext(ctx, &docs, `SELECT id, title, created_at FROM documents ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Reset deletes every document row.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// describe adds the server error code to Postgres errors.
func describe(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (%s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
