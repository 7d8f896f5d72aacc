package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/logging"
	"github.com/townscout/curator/pkg/store"
)

// Store persists per-field audit entries into a record's audit_data side
// column and merges them with the AI-populated research audit table on
// load. Manual entries take priority on conflict.
type Store struct {
	records store.RecordStore
}

// NewStore creates an audit store over the given record store.
func NewStore(records store.RecordStore) *Store {
	return &Store{records: records}
}

// Load merges the two audit sources for a record: research rows seed
// entries carrying only machine confidence, then manually curated
// audit_data entries overlay them.
func (s *Store) Load(ctx context.Context, recordID string) (Map, error) {
	result := Map{}

	rows, err := s.records.GetResearchRows(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("loading research audit for record %s: %w", recordID, err)
	}
	for field, row := range rows {
		result[field] = Entry{
			Status:       StatusUnknown,
			AISuggestion: row.SuggestedValue,
			Confidence:   Confidence(row.Confidence),
		}
	}

	blob, err := s.records.GetAuditData(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("loading audit_data for record %s: %w", recordID, err)
	}
	manual := map[string]Entry{}
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &manual); err != nil {
			return nil, errors.NewParseError("json", "audit_data", err.Error(), err)
		}
	}

	for field, entry := range manual {
		if seed, ok := result[field]; ok {
			result[field] = overlay(seed, entry)
			continue
		}
		result[field] = entry
	}

	return result, nil
}

// overlay merges a manual entry over a research-seeded one. The manual
// status always wins; other parts win when the manual entry set them.
func overlay(seed, manual Entry) Entry {
	merged := seed
	if manual.Status != "" {
		merged.Status = manual.Status
	}
	if manual.FinalValue != nil {
		merged.FinalValue = manual.FinalValue
	}
	if manual.AISuggestion != nil {
		merged.AISuggestion = manual.AISuggestion
	}
	if manual.Confidence != "" {
		merged.Confidence = manual.Confidence
	}
	if manual.Snapshot != nil {
		merged.Snapshot = manual.Snapshot
	}
	if !manual.UpdatedAt.IsZero() {
		merged.UpdatedAt = manual.UpdatedAt
	}
	if manual.AppliedAt != nil {
		merged.AppliedAt = manual.AppliedAt
	}
	return merged
}

// SaveStatus validates and persists a review status change together with
// any metadata in the patch. An empty status is transient UI state and is
// never persisted; the call is a no-op. An unrecognized status is a
// programming mistake.
func (s *Store) SaveStatus(ctx context.Context, recordID, fieldName string, status Status, patch Patch) (Entry, error) {
	if status == "" {
		logging.Ctx(ctx).Debug().
			Str("record_id", recordID).
			Str("field", fieldName).
			Msg("Empty audit status, skipping persistence")
		return Entry{}, nil
	}
	if !status.Valid() {
		return Entry{}, errors.NewConfigError("audit",
			fmt.Sprintf("unknown audit status %q", status), nil)
	}

	return s.save(ctx, recordID, fieldName, &status, patch)
}

// PatchEntry merges metadata into a field's entry without changing its
// review status. Used by the apply engine, whose writes must never flip
// an operator decision.
func (s *Store) PatchEntry(ctx context.Context, recordID, fieldName string, patch Patch) (Entry, error) {
	return s.save(ctx, recordID, fieldName, nil, patch)
}

// save performs the read-merge-write. Merge-patch happens in Go at entry
// granularity; the store's MergeAuditData keeps sibling fields intact.
func (s *Store) save(ctx context.Context, recordID, fieldName string, status *Status, patch Patch) (Entry, error) {
	existing, err := s.Load(ctx, recordID)
	if err != nil {
		return Entry{}, err
	}

	entry := patch.apply(existing[fieldName])
	if status != nil {
		entry.Status = *status
	}
	if entry.Status == "" {
		entry.Status = StatusUnknown
	}

	data, err := json.Marshal(map[string]Entry{fieldName: entry})
	if err != nil {
		return Entry{}, fmt.Errorf("encoding audit entry for %s: %w", fieldName, err)
	}
	if err := s.records.MergeAuditData(ctx, recordID, data); err != nil {
		return Entry{}, fmt.Errorf("persisting audit entry for %s: %w", fieldName, err)
	}

	logging.Ctx(ctx).Debug().
		Str("record_id", recordID).
		Str("field", fieldName).
		Str("status", entry.Status.String()).
		Msg("Audit entry saved")

	return entry, nil
}
