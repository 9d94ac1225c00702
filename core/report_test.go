package core

import (
	"testing"

	"github.com/huangsam/attrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubjectReport verifies the per-variation rollup and its ordering.
func TestSubjectReport(t *testing.T) {
	subjects := []schema.ExperimentSubject{
		{SubjectID: "v1", ExperimentID: "e2", VariationID: "vA", Timestamp: ts(1)},
		{SubjectID: "v2", ExperimentID: "e1", VariationID: "vB", Timestamp: ts(2)},
		{SubjectID: "v3", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(3)},
		{SubjectID: "v4", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(4)},
	}

	rows := SubjectReport(subjects)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.SubjectReportRow{ExperimentID: "e1", VariationID: "vA", Subjects: 2}, rows[0])
	assert.Equal(t, schema.SubjectReportRow{ExperimentID: "e1", VariationID: "vB", Subjects: 1}, rows[1])
	assert.Equal(t, schema.SubjectReportRow{ExperimentID: "e2", VariationID: "vA", Subjects: 1}, rows[2])
}

// TestBuildReportPolicies confirms the two policies disagree exactly where
// they should: an enriched event with no qualifying decision.
func TestBuildReportPolicies(t *testing.T) {
	decisions := []schema.Decision{
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(10)},
	}
	events := []schema.Event{
		// Before the exposure, but enriched with the pair.
		{VisitorID: "s1", EventName: "purchase", Timestamp: ts(5), Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: "vA"},
		}},
	}

	t.Run("web counts the enriched event", func(t *testing.T) {
		report := BuildReport(decisions, events, Window{}, schema.WebPolicy, schema.VisitorIDField)
		assert.Equal(t, schema.WebPolicy, report.Policy)
		require.Len(t, report.ConversionCounts, 1)
		assert.Equal(t, 1, report.ConversionCounts[0].Conversions)
	})

	t.Run("fullstack rejects the pre-exposure event", func(t *testing.T) {
		report := BuildReport(decisions, events, Window{}, schema.FullStackPolicy, schema.VisitorIDField)
		assert.Equal(t, schema.FullStackPolicy, report.Policy)
		assert.Empty(t, report.ConversionCounts)
		require.Len(t, report.VisitorCounts, 1)
		assert.Equal(t, 1, report.VisitorCounts[0].UniqueVisitors)
	})
}

// TestBuildReportEmptyInputs exercises the degenerate no-data case.
func TestBuildReportEmptyInputs(t *testing.T) {
	report := BuildReport(nil, nil, Window{}, schema.WebPolicy, schema.VisitorIDField)
	assert.Empty(t, report.VisitorCounts)
	assert.Empty(t, report.ConversionCounts)
}
