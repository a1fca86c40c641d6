package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// LogRecord represents a single persisted log entry
type LogRecord struct {
	ID            string    `parquet:"id" db:"id"`
	Timestamp     time.Time `parquet:"timestamp" db:"timestamp"`
	Level         string    `parquet:"level" db:"level"`
	Message       string    `parquet:"message" db:"message"`
	RequestID     string    `parquet:"request_id" db:"request_id"`
	RequestSource string    `parquet:"request_source" db:"request_source"`
	DocumentID    string    `parquet:"document_id" db:"document_id"`
	SourceFile    string    `parquet:"source_file" db:"source_file"`
	LineNumber    int       `parquet:"line_number" db:"line_number"`
	Attributes    string    `parquet:"attributes" db:"attributes"` // JSON string
}

func newLogRecord(ctx context.Context, r slog.Record) LogRecord {
	record := LogRecord{
		ID:        uuid.New().String(),
		Timestamp: r.Time.UTC(),
		Level:     r.Level.String(),
		Message:   r.Message,
	}

	if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok {
		record.RequestID = v
	}
	if v, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok {
		record.RequestSource = v
	}
	if v, ok := ctx.Value(types.ContextKeyDocumentID).(string); ok {
		record.DocumentID = v
	}

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		v := a.Value.Resolve().Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs[a.Key] = v
		return true
	})
	attrsJSON, _ := json.Marshal(attrs)
	record.Attributes = string(attrsJSON)

	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		record.SourceFile = f.File
		record.LineNumber = f.Line
	}

	return record
}
