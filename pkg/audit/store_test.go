package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townscout/curator/internal/store/memory"
	"github.com/townscout/curator/pkg/errors"
	"github.com/townscout/curator/pkg/store"
)

func newSeededStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	records := memory.New()
	records.Put(store.Record{"id": "town-1", "town_name": "Alicante", "country": "Spain"})
	return NewStore(records), records
}

func TestStoreSaveStatus(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	entry, err := audits.SaveStatus(ctx, "town-1", "climate", StatusApproved, Patch{
		FinalValue: Ptr[any]("Mediterranean"),
		Confidence: Ptr(ConfidenceHigh),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, entry.Status)
	assert.Equal(t, "Mediterranean", entry.FinalValue)
	assert.Equal(t, ConfidenceHigh, entry.Confidence)
	assert.False(t, entry.UpdatedAt.IsZero())

	loaded, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, loaded.Status("climate"))
	assert.Equal(t, "Mediterranean", loaded["climate"].FinalValue)
}

func TestStoreSaveStatusEmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	entry, err := audits.SaveStatus(ctx, "town-1", "climate", "", Patch{
		FinalValue: Ptr[any]("Mediterranean"),
	})
	require.NoError(t, err)
	assert.Equal(t, Entry{}, entry)

	// Nothing was persisted, not even the patch metadata.
	loaded, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStoreSaveStatusUnknownStatus(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	_, err := audits.SaveStatus(ctx, "town-1", "climate", Status("verified"), Patch{})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err), "unknown status is a config error, got %v", err)
}

func TestStoreMergePatchPreservesSiblings(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	_, err := audits.SaveStatus(ctx, "town-1", "climate", StatusApproved, Patch{
		FinalValue: Ptr[any]("Mediterranean"),
	})
	require.NoError(t, err)
	_, err = audits.SaveStatus(ctx, "town-1", "population", StatusNeedsReview, Patch{
		FinalValue: Ptr[any]("338000"),
	})
	require.NoError(t, err)

	// Updating one field leaves the other field's entry intact.
	_, err = audits.SaveStatus(ctx, "town-1", "climate", StatusRejected, Patch{})
	require.NoError(t, err)

	loaded, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, loaded.Status("climate"))
	assert.Equal(t, "Mediterranean", loaded["climate"].FinalValue, "patch keeps prior entry parts")
	assert.Equal(t, StatusNeedsReview, loaded.Status("population"))
	assert.Equal(t, "338000", loaded["population"].FinalValue)
}

func TestStorePatchEntryKeepsStatus(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	_, err := audits.SaveStatus(ctx, "town-1", "climate", StatusApproved, Patch{})
	require.NoError(t, err)

	entry, err := audits.PatchEntry(ctx, "town-1", "climate", Patch{
		FinalValue: Ptr[any]("Mediterranean"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, entry.Status, "metadata patch never flips a review decision")
}

func TestStorePatchEntryOnFreshFieldDefaultsUnknown(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	entry, err := audits.PatchEntry(ctx, "town-1", "population", Patch{
		FinalValue: Ptr[any]("338000"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, entry.Status)
}

func TestStoreLoadMergesResearchRows(t *testing.T) {
	ctx := context.Background()
	audits, records := newSeededStore(t)

	records.PutResearchRows("town-1", map[string]store.ResearchRow{
		"climate":    {Field: "climate", Confidence: "high", SuggestedValue: "Mediterranean"},
		"population": {Field: "population", Confidence: "low", SuggestedValue: "338000"},
	})

	// Manual curation overrides the research seed for climate only.
	_, err := audits.SaveStatus(ctx, "town-1", "climate", StatusApproved, Patch{
		Confidence: Ptr(ConfidenceLimited),
	})
	require.NoError(t, err)

	loaded, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, loaded.Status("climate"), "manual status wins")
	assert.Equal(t, ConfidenceLimited, loaded.Confidence("climate"), "manual confidence wins")
	assert.Equal(t, "Mediterranean", loaded["climate"].AISuggestion, "research suggestion survives overlay")

	assert.Equal(t, StatusUnknown, loaded.Status("population"), "research-only fields seed as unknown")
	assert.Equal(t, ConfidenceLow, loaded.Confidence("population"))
	assert.Equal(t, "338000", loaded["population"].AISuggestion)
}

func TestStoreLoadRecordWithoutAudit(t *testing.T) {
	ctx := context.Background()
	audits, _ := newSeededStore(t)

	loaded, err := audits.Load(ctx, "town-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
