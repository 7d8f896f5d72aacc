package apply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townscout/curator/internal/store/memory"
	"github.com/townscout/curator/pkg/audit"
	curatorerrors "github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/fields"
	"github.com/townscout/curator/pkg/normalize"
	"github.com/townscout/curator/pkg/store"
)

func newEngine(t *testing.T) (*Engine, *memory.Store, *audit.Store) {
	t.Helper()
	catalog, err := fields.New()
	require.NoError(t, err)

	records := memory.New()
	records.Put(store.Record{
		"id":           "town-1",
		"town_name":    "Alicante",
		"country":      "Spain",
		"climate":      "temperate",
		"water_bodies": "Mediterranean Sea",
	})

	audits := audit.NewStore(records)
	return New(records, audits, normalize.New(catalog)), records, audits
}

func TestApplySingle(t *testing.T) {
	ctx := context.Background()
	e, records, audits := newEngine(t)

	change := Change{
		Field:        "water_bodies",
		FinalValue:   "Atlantic Ocean, Mediterranean Sea",
		AISuggestion: "Atlantic Ocean, Mediterranean Sea",
		Confidence:   audit.ConfidenceHigh,
	}
	require.NoError(t, e.ApplySingle(ctx, "town-1", change))
	assert.Equal(t, StateApplied, e.State("water_bodies"))

	// The store holds the db-normalized form.
	value, err := records.GetField(ctx, "town-1", "water_bodies")
	require.NoError(t, err)
	assert.Equal(t, []string{"atlantic ocean", "mediterranean sea"}, value)

	// The audit entry records the write with its pre-write snapshot.
	auditMap, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)
	entry := auditMap["water_bodies"]
	assert.Equal(t, "Atlantic Ocean, Mediterranean Sea", entry.FinalValue)
	assert.Equal(t, "Mediterranean Sea", entry.Snapshot)
	assert.Equal(t, audit.ConfidenceHigh, entry.Confidence)
	require.NotNil(t, entry.AppliedAt)
	assert.False(t, entry.AppliedAt.IsZero())
}

func TestApplySingleMissingRecord(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t)

	err := e.ApplySingle(ctx, "no-such-town", Change{Field: "climate", FinalValue: "arid"})
	require.Error(t, err)
	assert.True(t, curatorerrors.IsNotFound(err))
	assert.Equal(t, StatePending, e.State("climate"), "failed apply leaves the field pending")
}

// failingAuditStore passes reads through but refuses audit writes.
type failingAuditStore struct {
	*memory.Store
}

func (f *failingAuditStore) MergeAuditData(context.Context, string, []byte) error {
	return errors.New("audit backend unavailable")
}

func TestApplySingleAuditSaveFailure(t *testing.T) {
	ctx := context.Background()
	catalog, err := fields.New()
	require.NoError(t, err)

	records := memory.New()
	records.Put(store.Record{"id": "town-1", "climate": "temperate"})

	audits := audit.NewStore(&failingAuditStore{Store: records})
	e := New(records, audits, normalize.New(catalog))

	applyErr := e.ApplySingle(ctx, "town-1", Change{Field: "climate", FinalValue: "arid"})
	require.Error(t, applyErr)

	var fieldErr *curatorerrors.FieldError
	require.ErrorAs(t, applyErr, &fieldErr)
	assert.Equal(t, "audit-save", fieldErr.Stage)
	assert.Equal(t, "climate", fieldErr.Field)

	// The store write landed, but the field is not marked applied, so a
	// retry remains possible.
	value, err := records.GetField(ctx, "town-1", "climate")
	require.NoError(t, err)
	assert.Equal(t, "arid", value)
	assert.Equal(t, StatePending, e.State("climate"))
}

func TestApplyBulkEligibility(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t)

	changes := []Change{
		{
			Field:        "climate",
			FinalValue:   "arid",
			CurrentValue: "temperate",
			Status:       audit.StatusApproved,
		},
		{
			// Not approved: skipped.
			Field:        "town_name",
			FinalValue:   "Alacant",
			CurrentValue: "Alicante",
			Status:       audit.StatusNeedsReview,
		},
		{
			// Equal in canonical form despite differing serialization: skipped.
			Field:        "water_bodies",
			FinalValue:   "mediterranean sea",
			CurrentValue: `{"Mediterranean Sea"}`,
			Status:       audit.StatusApproved,
		},
	}

	result := e.ApplyBulk(ctx, "town-1", changes)

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Outcomes, 1, "skipped fields produce no outcome")
	assert.Equal(t, "climate", result.Outcomes[0].Field)
	assert.NoError(t, result.Outcomes[0].Err)

	assert.Equal(t, StateApplied, e.State("climate"))
	assert.Equal(t, StatePending, e.State("town_name"))
	assert.Equal(t, StatePending, e.State("water_bodies"))
}

func TestApplyBulkSkipsAlreadyApplied(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t)

	change := Change{
		Field:        "climate",
		FinalValue:   "arid",
		CurrentValue: "temperate",
		Status:       audit.StatusApproved,
	}

	first := e.ApplyBulk(ctx, "town-1", []Change{change})
	assert.Equal(t, 1, first.Applied)

	second := e.ApplyBulk(ctx, "town-1", []Change{change})
	assert.Equal(t, 0, second.Applied)
	assert.Equal(t, 1, second.Skipped)
}

func TestApplyBulkContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t)

	changes := []Change{
		{
			Field:        "climate",
			FinalValue:   "arid",
			CurrentValue: "temperate",
			Status:       audit.StatusApproved,
		},
	}
	result := e.ApplyBulk(ctx, "no-such-town", changes)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Applied)
	require.Len(t, result.Outcomes, 1)
	assert.Error(t, result.Outcomes[0].Err)
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	e, records, _ := newEngine(t)

	change := Change{
		Field:        "climate",
		FinalValue:   "arid",
		CurrentValue: "temperate",
		Status:       audit.StatusApproved,
	}
	require.NoError(t, e.ApplySingle(ctx, "town-1", change))
	require.Equal(t, StateApplied, e.State("climate"))

	e.Undo("climate")
	assert.Equal(t, StatePending, e.State("climate"))

	// Undo is non-destructive: the stored value stays.
	value, err := records.GetField(ctx, "town-1", "climate")
	require.NoError(t, err)
	assert.Equal(t, "arid", value)

	// The field may be re-applied after undo.
	result := e.ApplyBulk(ctx, "town-1", []Change{change})
	assert.Equal(t, 1, result.Applied)
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()
	e, records, audits := newEngine(t)

	// An approved edit whose final value matches the live value across
	// serializations counts as applied after reload.
	_, err := audits.SaveStatus(ctx, "town-1", "water_bodies", audit.StatusApproved, audit.Patch{
		FinalValue: audit.Ptr[any]("Mediterranean Sea"),
	})
	require.NoError(t, err)
	require.NoError(t, records.UpdateField(ctx, "town-1", "water_bodies", []string{"mediterranean sea"}))

	// An approved edit not yet written stays pending.
	_, err = audits.SaveStatus(ctx, "town-1", "climate", audit.StatusApproved, audit.Patch{
		FinalValue: audit.Ptr[any]("arid"),
	})
	require.NoError(t, err)

	record, err := records.GetRecord(ctx, "town-1")
	require.NoError(t, err)

	h, err := e.Hydrate(ctx, "town-1", record)
	require.NoError(t, err)

	assert.Equal(t, StateApplied, e.State("water_bodies"))
	assert.Equal(t, StatePending, e.State("climate"))

	assert.Equal(t, "Mediterranean Sea", h.FinalValues["water_bodies"])
	assert.Equal(t, "arid", h.FinalValues["climate"])
	assert.Equal(t, audit.StatusApproved, h.Statuses["water_bodies"])
	assert.Equal(t, audit.StatusApproved, h.Statuses["climate"])
}

func TestHydrateUnreviewedNeverApplied(t *testing.T) {
	ctx := context.Background()
	e, records, audits := newEngine(t)

	_, err := audits.SaveStatus(ctx, "town-1", "climate", audit.StatusNeedsReview, audit.Patch{
		FinalValue: audit.Ptr[any]("temperate"),
	})
	require.NoError(t, err)

	record, err := records.GetRecord(ctx, "town-1")
	require.NoError(t, err)

	_, err = e.Hydrate(ctx, "town-1", record)
	require.NoError(t, err)
	assert.Equal(t, StatePending, e.State("climate"),
		"equal value without a review decision stays pending")
}
