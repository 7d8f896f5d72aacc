// Package apply writes approved final values to the record store and
// records the outcome in each field's audit entry. Applying is a strict
// two-step sequence per field: the point write to the record store first,
// the audit save second, and the field only counts as applied when both
// succeed. Undo is non-destructive: it unlocks re-editing without
// reverting storage.
package apply

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentstation/utc"

	"github.com/townscout/curator/pkg/audit"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/logging"
	"github.com/townscout/curator/pkg/normalize"
	"github.com/townscout/curator/pkg/store"
)

// State is the per-field apply progress within a session. It is
// independent of the field's audit status.
type State string

// Apply states.
const (
	StatePending  State = "pending"
	StateApplying State = "applying"
	StateApplied  State = "applied"
)

// Change is one field edit to apply: the admin's final value in the
// display serialization they edited, plus the audit metadata that rides
// along with the write.
type Change struct {
	Field        string           `json:"field_name"`
	FinalValue   any              `json:"final_value"`
	CurrentValue any              `json:"current_value"`
	AISuggestion any              `json:"ai_suggestion,omitempty"`
	Confidence   audit.Confidence `json:"confidence,omitempty"`
	Status       audit.Status     `json:"status,omitempty"`
}

// BulkOutcome reports one field's result within a bulk apply.
type BulkOutcome struct {
	Field string
	Err   error
}

// BulkResult aggregates a sequential bulk apply.
type BulkResult struct {
	Outcomes []BulkOutcome
	Applied  int
	Failed   int
	Skipped  int
}

// Engine applies field changes for one record-editing session.
type Engine struct {
	records store.RecordStore
	audits  *audit.Store
	norm    *normalize.Normalizer

	mu     sync.Mutex
	states map[string]State
}

// New creates an apply engine.
func New(records store.RecordStore, audits *audit.Store, norm *normalize.Normalizer) *Engine {
	return &Engine{
		records: records,
		audits:  audits,
		norm:    norm,
		states:  make(map[string]State),
	}
}

// State returns the session apply state for a field.
func (e *Engine) State(fieldName string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[fieldName]; ok {
		return s
	}
	return StatePending
}

// begin transitions a field to applying, rejecting overlap: the two-step
// write sequence for one field must never interleave with itself.
func (e *Engine) begin(fieldName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.states[fieldName] == StateApplying {
		return errors.NewValidationError(fieldName, nil, "apply already in progress")
	}
	e.states[fieldName] = StateApplying
	return nil
}

func (e *Engine) setState(fieldName string, s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states[fieldName] = s
}

// ApplySingle writes one field's final value to the record store, then
// persists the audit entry update. If the store write succeeds but the
// audit save fails, the field stays unapplied so a retry remains
// possible, and the failure is surfaced field-scoped.
//
// Independent fields may be applied concurrently by the caller.
func (e *Engine) ApplySingle(ctx context.Context, recordID string, change Change) error {
	log := logging.Ctx(ctx)

	if err := e.begin(change.Field); err != nil {
		return err
	}

	value, err := e.norm.Normalize(change.Field, change.FinalValue, normalize.ModeDB)
	if err != nil {
		e.setState(change.Field, StatePending)
		return err
	}

	// Pre-write value becomes the audit snapshot.
	snapshot, err := e.records.GetField(ctx, recordID, change.Field)
	if err != nil {
		e.setState(change.Field, StatePending)
		return errors.NewFieldError(recordID, change.Field, "store-read", err)
	}

	if err := e.records.UpdateField(ctx, recordID, change.Field, value); err != nil {
		e.setState(change.Field, StatePending)
		return errors.NewFieldError(recordID, change.Field, "store-write", err)
	}

	now := utc.Now()
	_, err = e.audits.PatchEntry(ctx, recordID, change.Field, audit.Patch{
		FinalValue:   audit.Ptr(change.FinalValue),
		AISuggestion: audit.Ptr(change.AISuggestion),
		Confidence:   audit.Ptr(change.Confidence),
		Snapshot:     audit.Ptr(snapshot),
		AppliedAt:    audit.Ptr(&now),
	})
	if err != nil {
		// The store write landed but the audit trail did not; leave the
		// field pending so the operator can retry.
		e.setState(change.Field, StatePending)
		return errors.NewFieldError(recordID, change.Field, "audit-save", err)
	}

	e.setState(change.Field, StateApplied)
	log.Info().
		Str("record_id", recordID).
		Str("field", change.Field).
		Msg("Field applied")
	return nil
}

// ApplyBulk applies the eligible subset of changes sequentially, in list
// order, accumulating per-field outcomes. A change is eligible when its
// audit status is approved, its final value differs from the current
// value in canonical comparison form, and the field is not already
// applied this session. Ineligible fields are skipped silently; they are
// policy exclusions, not errors.
func (e *Engine) ApplyBulk(ctx context.Context, recordID string, changes []Change) BulkResult {
	log := logging.Ctx(ctx)
	result := BulkResult{}

	for _, change := range changes {
		if change.Status != audit.StatusApproved ||
			e.norm.Equal(change.Field, change.FinalValue, change.CurrentValue) ||
			e.State(change.Field) == StateApplied {
			result.Skipped++
			continue
		}

		err := e.ApplySingle(ctx, recordID, change)
		result.Outcomes = append(result.Outcomes, BulkOutcome{Field: change.Field, Err: err})
		if err != nil {
			result.Failed++
			log.Warn().
				Err(err).
				Str("field", change.Field).
				Msg("Bulk apply failed for field")
			continue
		}
		result.Applied++
	}

	log.Info().
		Str("record_id", recordID).
		Int("applied", result.Applied).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Msg("Bulk apply finished")
	return result
}

// Undo clears the session applied marker for a field, permitting re-edit
// and re-apply. The already-written store value and the persisted audit
// entry are left untouched.
func (e *Engine) Undo(fieldName string) {
	e.setState(fieldName, StatePending)
}

// Hydration is the working session state restored from persisted audit
// entries on (re)load.
type Hydration struct {
	// FinalValues holds each audited field's final value converted to
	// display form.
	FinalValues map[string]string

	// Statuses holds each audited field's review status.
	Statuses map[string]audit.Status

	// Audit is the merged audit map the hydration was derived from.
	Audit audit.Map
}

// Hydrate restores session state for a record from its persisted audit
// entries. A field whose status is approved or rejected and whose final
// value equals the live value in canonical form is classified as already
// applied, whichever serialization either side used; this keeps completed
// edits from re-flagging as pending after a reload.
func (e *Engine) Hydrate(ctx context.Context, recordID string, record store.Record) (*Hydration, error) {
	auditMap, err := e.audits.Load(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("hydrating record %s: %w", recordID, err)
	}

	h := &Hydration{
		FinalValues: make(map[string]string, len(auditMap)),
		Statuses:    make(map[string]audit.Status, len(auditMap)),
		Audit:       auditMap,
	}

	for field, entry := range auditMap {
		if entry.FinalValue != nil {
			h.FinalValues[field] = e.norm.Display(entry.FinalValue)
		}
		h.Statuses[field] = entry.Status

		if entry.Status.Reviewed() && entry.FinalValue != nil {
			if live, ok := record.Field(field); ok && e.norm.Equal(field, entry.FinalValue, live) {
				e.setState(field, StateApplied)
			}
		}
	}

	return h, nil
}
