package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// TypeConversionError represents an error during type conversion from database types.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// MustRecordSlice converts a transaction result to []*db.Record.
func MustRecordSlice(v any, field string) ([]*db.Record, error) {
	records, ok := v.([]*db.Record)
	if !ok {
		return nil, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", v), field)
	}
	return records, nil
}

// MustDBNode reads a node value out of a record.
func MustDBNode(record *db.Record, key string) (dbtype.Node, error) {
	v, found := record.Get(key)
	if !found {
		return dbtype.Node{}, NewTypeConversionError("dbtype.Node", "missing", key)
	}
	node, ok := v.(dbtype.Node)
	if !ok {
		return dbtype.Node{}, NewTypeConversionError("dbtype.Node", fmt.Sprintf("%T", v), key)
	}
	return node, nil
}

// MustString reads a string value out of a record.
func MustString(record *db.Record, key string) (string, error) {
	v, found := record.Get(key)
	if !found {
		return "", NewTypeConversionError("string", "missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), key)
	}
	return s, nil
}

// MustInt64 reads an integer value out of a record.
func MustInt64(record *db.Record, key string) (int64, error) {
	v, found := record.Get(key)
	if !found {
		return 0, NewTypeConversionError("int64", "missing", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), key)
	}
	return n, nil
}
