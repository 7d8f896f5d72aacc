// Package store defines the record store contract consumed by the curation
// engine. A record store holds catalog records (towns and similar entities)
// as open sets of named fields, plus a JSON audit_data side column keyed by
// field name that supports partial merge.
package store

import "context"

// Record is a catalog entity with an open set of named field values.
// Values are heterogeneous: numeric scalars, short strings, long text,
// categorical enums, or lists of string tags.
type Record map[string]any

// ID returns the record identifier, or "" when unset.
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// Field returns the named field value and whether it is present.
func (r Record) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// ResearchRow is one row of the AI-populated research audit table: the last
// machine-derived assessment of a field, kept separately from the manually
// curated audit_data blob.
type ResearchRow struct {
	Field          string `json:"field_name"`
	Confidence     string `json:"confidence"`
	SuggestedValue any    `json:"suggested_value,omitempty"`
	Reasoning      string `json:"reasoning,omitempty"`
}

// RecordStore is the persistence collaborator for records and their audit
// side data. Implementations provide last-write-wins semantics; no
// optimistic concurrency tokens are assumed.
type RecordStore interface {
	// GetRecord loads all field values for a record.
	GetRecord(ctx context.Context, recordID string) (Record, error)

	// GetField reads a single field value.
	GetField(ctx context.Context, recordID, fieldName string) (any, error)

	// UpdateField writes a single field value as a point write, leaving
	// every other column untouched.
	UpdateField(ctx context.Context, recordID, fieldName string, value any) error

	// GetAuditData returns the raw audit_data JSON blob for a record.
	// A record with no audit data yields an empty JSON object.
	GetAuditData(ctx context.Context, recordID string) ([]byte, error)

	// MergeAuditData merges the given JSON object into the record's
	// audit_data blob at the field-name level: keys present in patch
	// replace the same keys in the stored blob, all other keys survive.
	MergeAuditData(ctx context.Context, recordID string, patch []byte) error

	// GetResearchRows returns the AI-populated audit rows for a record,
	// keyed by field name. Implementations without a research table
	// return an empty map.
	GetResearchRows(ctx context.Context, recordID string) (map[string]ResearchRow, error)
}
