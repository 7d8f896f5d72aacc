package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusUnknown.Valid())
	assert.True(t, StatusNeedsReview.Valid())
	assert.True(t, StatusApproved.Valid())
	assert.True(t, StatusRejected.Valid())
	assert.False(t, Status("verified").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusReviewed(t *testing.T) {
	assert.True(t, StatusApproved.Reviewed())
	assert.True(t, StatusRejected.Reviewed())
	assert.False(t, StatusUnknown.Reviewed())
	assert.False(t, StatusNeedsReview.Reviewed())
}

func TestNextStatusCycle(t *testing.T) {
	tests := []struct {
		current Status
		want    Status
	}{
		{StatusUnknown, StatusNeedsReview},
		{StatusNeedsReview, StatusApproved},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusUnknown},
		{Status(""), StatusNeedsReview},
		{Status("garbage"), StatusNeedsReview},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NextStatus(tt.current), "from %q", tt.current)
	}
}

func TestNextStatusIsACycle(t *testing.T) {
	s := StatusUnknown
	for i := 0; i < 4; i++ {
		s = NextStatus(s)
	}
	assert.Equal(t, StatusUnknown, s, "four clicks return to start")
}

func TestConfidenceDoubtful(t *testing.T) {
	assert.False(t, ConfidenceHigh.Doubtful())
	assert.False(t, ConfidenceLimited.Doubtful())
	assert.True(t, ConfidenceLow.Doubtful())
	assert.True(t, ConfidenceUnknown.Doubtful())
	assert.True(t, Confidence("").Doubtful())
}

func TestMapDefaults(t *testing.T) {
	m := Map{
		"climate": {Status: StatusApproved, Confidence: ConfidenceHigh},
		"empty":   {},
	}

	assert.Equal(t, ConfidenceHigh, m.Confidence("climate"))
	assert.Equal(t, StatusApproved, m.Status("climate"))

	assert.Equal(t, ConfidenceUnknown, m.Confidence("empty"), "zero entry defaults to unknown")
	assert.Equal(t, StatusUnknown, m.Status("empty"))

	assert.Equal(t, ConfidenceUnknown, m.Confidence("absent"))
	assert.Equal(t, StatusUnknown, m.Status("absent"))
}

func TestPatchApply(t *testing.T) {
	base := Entry{
		Status:       StatusNeedsReview,
		FinalValue:   "old",
		AISuggestion: "suggested",
		Confidence:   ConfidenceLimited,
	}

	patched := Patch{FinalValue: Ptr[any]("new")}.apply(base)

	assert.Equal(t, "new", patched.FinalValue)
	assert.Equal(t, StatusNeedsReview, patched.Status, "status untouched")
	assert.Equal(t, "suggested", patched.AISuggestion, "unset patch parts untouched")
	assert.Equal(t, ConfidenceLimited, patched.Confidence)
	assert.False(t, patched.UpdatedAt.IsZero(), "every patch stamps UpdatedAt")
}
