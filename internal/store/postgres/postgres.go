// Package postgres implements the record store over a Postgres table with
// a JSONB audit_data side column and an AI-populated research audit
// table. Field writes are point updates; audit_data merges use the jsonb
// concatenation operator so sibling field entries survive.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/store"
)

// identifierPattern matches the column names this store will interpolate.
// Anything else is rejected before reaching SQL.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Store is a Postgres-backed store.RecordStore for one record table.
type Store struct {
	db            *sql.DB
	table         string
	researchTable string
}

// New creates a Store over the given record table. The research table
// name defaults to field_research_audit.
func New(db *sql.DB, table string) (*Store, error) {
	if !identifierPattern.MatchString(table) {
		return nil, errors.NewValidationError("table", table, "invalid table name")
	}
	return &Store{db: db, table: table, researchTable: "field_research_audit"}, nil
}

func checkField(fieldName string) error {
	if !identifierPattern.MatchString(fieldName) {
		return errors.NewValidationError("field", fieldName, "invalid column name")
	}
	return nil
}

// GetRecord implements store.RecordStore by selecting the whole row as
// JSON, which keeps the open field set without enumerating columns.
func (s *Store) GetRecord(ctx context.Context, recordID string) (store.Record, error) {
	var raw []byte
	query := fmt.Sprintf(`SELECT row_to_json(t) FROM %s t WHERE id=$1`, s.table)
	err := s.db.QueryRowContext(ctx, query, recordID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("record", recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", recordID, err)
	}

	var record store.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.NewParseError("json", "record row", err.Error(), err)
	}
	return record, nil
}

// GetField implements store.RecordStore.
func (s *Store) GetField(ctx context.Context, recordID, fieldName string) (any, error) {
	if err := checkField(fieldName); err != nil {
		return nil, err
	}

	var raw []byte
	query := fmt.Sprintf(`SELECT to_jsonb(%s) FROM %s WHERE id=$1`, fieldName, s.table)
	err := s.db.QueryRowContext(ctx, query, recordID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("record", recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("get field %s of record %s: %w", fieldName, recordID, err)
	}
	if raw == nil {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.NewParseError("json", "field value", err.Error(), err)
	}
	return value, nil
}

// UpdateField implements store.RecordStore with a single-column point
// write.
func (s *Store) UpdateField(ctx context.Context, recordID, fieldName string, value any) error {
	if err := checkField(fieldName); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s=$1, updated_at=now() WHERE id=$2`, s.table, fieldName)
	result, err := s.db.ExecContext(ctx, query, driverValue(value), recordID)
	if err != nil {
		return fmt.Errorf("update field %s of record %s: %w", fieldName, recordID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("record", recordID)
	}
	return nil
}

// driverValue maps Go values onto driver-friendly ones. String slices go
// through as text[]; everything else passes unchanged.
func driverValue(value any) any {
	if v, ok := value.([]any); ok {
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return value
}

// GetAuditData implements store.RecordStore.
func (s *Store) GetAuditData(ctx context.Context, recordID string) ([]byte, error) {
	var raw []byte
	query := fmt.Sprintf(`SELECT coalesce(audit_data, '{}'::jsonb) FROM %s WHERE id=$1`, s.table)
	err := s.db.QueryRowContext(ctx, query, recordID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("record", recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("get audit_data of record %s: %w", recordID, err)
	}
	return raw, nil
}

// MergeAuditData implements store.RecordStore. The jsonb || operator
// replaces patched field keys and keeps the rest.
func (s *Store) MergeAuditData(ctx context.Context, recordID string, patch []byte) error {
	query := fmt.Sprintf(`UPDATE %s SET audit_data = coalesce(audit_data, '{}'::jsonb) || $1::jsonb WHERE id=$2`, s.table)
	result, err := s.db.ExecContext(ctx, query, patch, recordID)
	if err != nil {
		return fmt.Errorf("merge audit_data of record %s: %w", recordID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("record", recordID)
	}
	return nil
}

// GetResearchRows implements store.RecordStore.
func (s *Store) GetResearchRows(ctx context.Context, recordID string) (map[string]store.ResearchRow, error) {
	query := fmt.Sprintf(`
		SELECT field_name, confidence, coalesce(to_jsonb(suggested_value), 'null'::jsonb), coalesce(reasoning, '')
		FROM %s WHERE record_id=$1`, s.researchTable)
	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("get research rows of record %s: %w", recordID, err)
	}
	defer rows.Close()

	result := make(map[string]store.ResearchRow)
	for rows.Next() {
		var row store.ResearchRow
		var suggested []byte
		if err := rows.Scan(&row.Field, &row.Confidence, &suggested, &row.Reasoning); err != nil {
			return nil, fmt.Errorf("scan research row: %w", err)
		}
		if len(suggested) > 0 {
			var value any
			if err := json.Unmarshal(suggested, &value); err == nil {
				row.SuggestedValue = value
			}
		}
		result[row.Field] = row
	}
	return result, rows.Err()
}
