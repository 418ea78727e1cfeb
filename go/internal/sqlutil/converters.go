package sqlutil

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and sql.Null* types

// ToSqlString converts a Go string to sql.NullString, treating "" as NULL
func ToSqlString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}

// ToSqlInt32 converts a Go int pointer to sql.NullInt32
func ToSqlInt32(val *int) sql.NullInt32 {
	if val == nil {
		return sql.NullInt32{Valid: false}
	}
	return sql.NullInt32{Int32: int32(*val), Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}

// FromSqlInt32 converts sql.NullInt32 to Go int with default
func FromSqlInt32(val sql.NullInt32, defaultVal int) int {
	if !val.Valid {
		return defaultVal
	}
	return int(val.Int32)
}

// FromNullRawMessage decodes a nullable jsonb column into v. NULL leaves v untouched.
func FromNullRawMessage(val pqtype.NullRawMessage, v any) error {
	if !val.Valid || len(val.RawMessage) == 0 {
		return nil
	}
	if err := json.Unmarshal(val.RawMessage, v); err != nil {
		return fmt.Errorf("failed to decode jsonb column: %w", err)
	}
	return nil
}
