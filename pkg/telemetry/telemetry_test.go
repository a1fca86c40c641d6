package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetHandler(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	handler, err := NewParquetHandler(slog.NewTextHandler(&out, nil), dir)
	require.NoError(t, err)
	logger := slog.New(handler).With("component", "test")

	ctx := context.WithValue(context.Background(), types.ContextKeyDocumentID, "doc-1")
	logger.InfoContext(ctx, "not persisted")
	logger.ErrorContext(ctx, "graph write failed", "error", errors.New("connection refused"))

	assert.Contains(t, out.String(), "not persisted")
	assert.Contains(t, out.String(), "graph write failed")

	// Derived handlers share the buffer, so one flush writes everything.
	require.NoError(t, handler.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rows, err := parquet.ReadFile[LogRecord](filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "graph write failed", rows[0].Message)
	assert.Equal(t, "ERROR", rows[0].Level)
	assert.Equal(t, "doc-1", rows[0].DocumentID)
	assert.Contains(t, rows[0].Attributes, "connection refused")
}

func TestParquetHandlerFlushEmpty(t *testing.T) {
	handler, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, handler.Flush())
}

func TestSQLHandler(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	handler, err := NewSQLHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), db)
	require.NoError(t, err)
	logger := slog.New(handler)

	logger.Warn("skipped")
	logger.Error("analysis failed", "proposition", "p1")

	var messages []string
	require.NoError(t, db.Select(&messages, "SELECT message FROM telemetry_logs"))
	assert.Equal(t, []string{"analysis failed"}, messages)
}
