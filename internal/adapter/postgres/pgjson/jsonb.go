// Package pgjson maps JSONB columns onto typed Go values
package pgjson

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB holds a decoded JSONB column. Valid is false for SQL NULL.
type JSONB[T any] struct {
	V     T
	Valid bool
}

var (
	_ sql.Scanner   = (*JSONB[struct{}])(nil)
	_ driver.Valuer = JSONB[struct{}]{}
)

func New[T any](v T) JSONB[T] {
	return JSONB[T]{V: v, Valid: true}
}

func (j *JSONB[T]) Scan(src interface{}) error {
	var zero T
	j.V = zero
	var raw []byte
	switch s := src.(type) {
	case nil:
		j.Valid = false
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", src)
	}
	if err := json.Unmarshal(raw, &j.V); err != nil {
		return fmt.Errorf("failed to decode JSONB: %w", err)
	}
	j.Valid = true
	return nil
}

func (j JSONB[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	return json.Marshal(j.V)
}

// Ptr returns nil for SQL NULL
func (j JSONB[T]) Ptr() *T {
	if !j.Valid {
		return nil
	}
	v := j.V
	return &v
}
