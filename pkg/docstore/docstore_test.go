package docstore

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestCreateDocumentMintsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateDocument(ctx, "Trial report")
	require.NoError(t, err)
	second, err := s.CreateDocument(ctx, "Follow-up")
	require.NoError(t, err)
	assert.Greater(t, second, first)

	doc, err := s.GetDocument(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Trial report", doc.Title)
	assert.False(t, doc.CreatedAt.IsZero())

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Follow-up", docs[1].Title)
}

func TestCreateDocumentRejectsEmptyTitle(t *testing.T) {
	_, err := newTestStore(t).CreateDocument(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestGetDocumentNotFound(t *testing.T) {
	_, err := newTestStore(t).GetDocument(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateDocument(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, s.Ping(ctx))
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewStoreWrapsConnection(t *testing.T) {
	db, err := sqlx.Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	id, err := s.CreateDocument(context.Background(), "wrapped")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Same(t, db, s.DB())
}
