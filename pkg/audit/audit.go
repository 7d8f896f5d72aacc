// Package audit tracks the human review state of catalog record fields.
// Each field carries an AuditEntry: its review status, the admin's final
// value, the last AI suggestion with its confidence, and a snapshot of the
// stored value at audit time. Entries live in a JSON audit_data side
// column on the record and are updated with merge-patch semantics.
package audit

import (
	"github.com/agentstation/utc"
)

// Status is the human review state of a field's value.
type Status string

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// Review statuses.
const (
	StatusUnknown     Status = "unknown"
	StatusNeedsReview Status = "needs_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// statuses is the closed set of persistable review states.
var statuses = map[Status]bool{
	StatusUnknown:     true,
	StatusNeedsReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
}

// Valid reports whether s is one of the four review states.
func (s Status) Valid() bool {
	return statuses[s]
}

// Reviewed reports whether an operator has made a decision on the field.
func (s Status) Reviewed() bool {
	return s == StatusApproved || s == StatusRejected
}

// NextStatus cycles to the next review state. It backs the click-to-cycle
// interaction and is kept separate from persistence so it can be tested on
// its own.
func NextStatus(current Status) Status {
	switch current {
	case StatusUnknown:
		return StatusNeedsReview
	case StatusNeedsReview:
		return StatusApproved
	case StatusApproved:
		return StatusRejected
	case StatusRejected:
		return StatusUnknown
	default:
		return StatusNeedsReview
	}
}

// Confidence grades how reliable a field value is believed to be.
type Confidence string

// String returns the string representation of a Confidence.
func (c Confidence) String() string {
	return string(c)
}

// Confidence levels.
const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceLimited Confidence = "limited"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// Doubtful reports whether the confidence level flags the field for
// attention.
func (c Confidence) Doubtful() bool {
	return c == ConfidenceLow || c == ConfidenceUnknown || c == ""
}

// Icon returns the indicator glyph used in curation summaries.
func (c Confidence) Icon() string {
	switch c {
	case ConfidenceHigh:
		return "⚡"
	case ConfidenceLimited:
		return "⭐"
	case ConfidenceLow:
		return "⚠️"
	default:
		return "❓"
	}
}

// Entry is the persisted audit state for one field of one record.
type Entry struct {
	// Status is the operator's review decision. It never changes as a
	// side effect of editing FinalValue.
	Status Status `json:"status"`

	// FinalValue is the admin's currently intended value, stored in the
	// serialization the admin edited (display form).
	FinalValue any `json:"final_value,omitempty"`

	// AISuggestion is the last value proposed by the research
	// collaborator, nil when none was made.
	AISuggestion any `json:"ai_suggestion,omitempty"`

	// Confidence grades the AI suggestion or the audited value.
	Confidence Confidence `json:"confidence,omitempty"`

	// Snapshot is the stored field value at the time of the audit.
	Snapshot any `json:"current_db_value,omitempty"`

	// UpdatedAt is stamped on every persisted change.
	UpdatedAt utc.Time `json:"updated_at"`

	// AppliedAt is set when the final value was written to the record
	// store, nil before the first apply.
	AppliedAt *utc.Time `json:"applied_at,omitempty"`
}

// Map is the audit state of a whole record, keyed by field name.
type Map map[string]Entry

// Confidence returns the audit confidence for a field, defaulting to
// unknown when the field has no entry.
func (m Map) Confidence(fieldName string) Confidence {
	if e, ok := m[fieldName]; ok && e.Confidence != "" {
		return e.Confidence
	}
	return ConfidenceUnknown
}

// Status returns the review status for a field, defaulting to unknown.
func (m Map) Status(fieldName string) Status {
	if e, ok := m[fieldName]; ok && e.Status != "" {
		return e.Status
	}
	return StatusUnknown
}

// Patch is a merge-patch update for an Entry. Nil pointers leave the
// corresponding Entry parts untouched; set pointers replace them.
type Patch struct {
	FinalValue   *any
	AISuggestion *any
	Confidence   *Confidence
	Snapshot     *any
	AppliedAt    **utc.Time
}

// apply merges the patch into an entry and stamps UpdatedAt.
func (p Patch) apply(e Entry) Entry {
	if p.FinalValue != nil {
		e.FinalValue = *p.FinalValue
	}
	if p.AISuggestion != nil {
		e.AISuggestion = *p.AISuggestion
	}
	if p.Confidence != nil {
		e.Confidence = *p.Confidence
	}
	if p.Snapshot != nil {
		e.Snapshot = *p.Snapshot
	}
	if p.AppliedAt != nil {
		e.AppliedAt = *p.AppliedAt
	}
	e.UpdatedAt = utc.Now()
	return e
}

// Ptr wraps a value for use in a Patch field.
func Ptr[T any](v T) *T {
	return &v
}
