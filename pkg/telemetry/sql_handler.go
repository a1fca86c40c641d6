package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
)

const telemetrySchema = `
CREATE TABLE IF NOT EXISTS telemetry_logs (
	id VARCHAR(36) PRIMARY KEY,
	timestamp TIMESTAMP,
	level VARCHAR(10),
	message TEXT,
	request_id VARCHAR(255),
	request_source VARCHAR(255),
	document_id VARCHAR(255),
	source_file VARCHAR(255),
	line_number INT,
	attributes TEXT
)`

const insertTelemetry = `
INSERT INTO telemetry_logs (id, timestamp, level, message, request_id, request_source, document_id, source_file, line_number, attributes)
VALUES (:id, :timestamp, :level, :message, :request_id, :request_source, :document_id, :source_file, :line_number, :attributes)`

// SQLHandler is a slog.Handler that writes error logs to the documents database
type SQLHandler struct {
	next slog.Handler
	db   *sqlx.DB
}

// NewSQLHandler creates a new SQLHandler using an existing DB connection
func NewSQLHandler(next slog.Handler, db *sqlx.DB) (*SQLHandler, error) {
	if _, err := db.Exec(telemetrySchema); err != nil {
		return nil, fmt.Errorf("failed to ensure telemetry table: %w", err)
	}
	return &SQLHandler{next: next, db: db}, nil
}

// Enabled implements slog.Handler
func (h *SQLHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *SQLHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level < slog.LevelError {
		return nil
	}

	record := newLogRecord(ctx, r)
	if _, err := h.db.NamedExecContext(ctx, insertTelemetry, record); err != nil {
		// Never block the logging chain on a database error
		fmt.Fprintf(os.Stderr, "failed to write log to SQL: %v\n", err)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *SQLHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SQLHandler{next: h.next.WithAttrs(attrs), db: h.db}
}

// WithGroup implements slog.Handler
func (h *SQLHandler) WithGroup(name string) slog.Handler {
	return &SQLHandler{next: h.next.WithGroup(name), db: h.db}
}
