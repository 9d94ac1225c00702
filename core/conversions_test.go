package core

import (
	"testing"

	"github.com/huangsam/attrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullStackConversionCounts walks the exposure-before-event join: an
// event counts only for pairs whose subject was exposed at or before the
// event time.
func TestFullStackConversionCounts(t *testing.T) {
	decisions := []schema.Decision{
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(10)},
		{VisitorID: "s1", ExperimentID: "e2", VariationID: "vB", Timestamp: ts(20)},
	}

	t.Run("event after one exposure and before another", func(t *testing.T) {
		events := []schema.Event{
			{VisitorID: "s1", EventName: "purchase", Timestamp: ts(12)},
		}
		counts := FullStackConversionCounts(decisions, events, Window{}, schema.VisitorIDField)
		require.Len(t, counts, 1)
		assert.Equal(t, schema.ConversionCount{ExperimentID: "e1", VariationID: "vA", EventName: "purchase", Conversions: 1}, counts[0])
	})

	t.Run("event before any exposure counts nothing", func(t *testing.T) {
		events := []schema.Event{
			{VisitorID: "s1", EventName: "purchase", Timestamp: ts(5)},
		}
		counts := FullStackConversionCounts(decisions, events, Window{}, schema.VisitorIDField)
		assert.Empty(t, counts)
	})

	t.Run("event at the exposure instant counts", func(t *testing.T) {
		events := []schema.Event{
			{VisitorID: "s1", EventName: "purchase", Timestamp: ts(10)},
		}
		counts := FullStackConversionCounts(decisions, events, Window{}, schema.VisitorIDField)
		require.Len(t, counts, 1)
		assert.Equal(t, "e1", counts[0].ExperimentID)
	})

	t.Run("enrichment lists are ignored", func(t *testing.T) {
		events := []schema.Event{
			{VisitorID: "s9", EventName: "purchase", Timestamp: ts(12), Experiments: []schema.ExperimentRef{
				{ExperimentID: "e1", VariationID: "vA"},
			}},
		}
		counts := FullStackConversionCounts(decisions, events, Window{}, schema.VisitorIDField)
		assert.Empty(t, counts)
	})

	t.Run("holdback exposures do not qualify events", func(t *testing.T) {
		held := []schema.Decision{
			{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(10), IsHoldback: true},
		}
		events := []schema.Event{
			{VisitorID: "s1", EventName: "purchase", Timestamp: ts(12)},
		}
		counts := FullStackConversionCounts(held, events, Window{}, schema.VisitorIDField)
		assert.Empty(t, counts)
	})

	t.Run("out-of-window decision does not qualify events", func(t *testing.T) {
		events := []schema.Event{
			{VisitorID: "s1", EventName: "purchase", Timestamp: ts(25)},
		}
		w := Window{Start: ts(15)}
		counts := FullStackConversionCounts(decisions, events, w, schema.VisitorIDField)
		require.Len(t, counts, 1)
		assert.Equal(t, "e2", counts[0].ExperimentID)
	})
}

// TestWebConversionCounts verifies enrichment-list expansion with no
// decision requirement.
func TestWebConversionCounts(t *testing.T) {
	events := []schema.Event{
		{VisitorID: "s1", EventName: "purchase", Timestamp: ts(5), Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: "vA"},
			{ExperimentID: "e2", VariationID: "vB"},
		}},
		{VisitorID: "s2", EventName: "purchase", Timestamp: ts(6), Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: "vA"},
		}},
		{VisitorID: "s3", EventName: "signup", Timestamp: ts(7)},
	}

	t.Run("expands every referenced pair", func(t *testing.T) {
		counts := WebConversionCounts(events, Window{})
		require.Len(t, counts, 2)
		assert.Equal(t, schema.ConversionCount{ExperimentID: "e1", VariationID: "vA", EventName: "purchase", Conversions: 2}, counts[0])
		assert.Equal(t, schema.ConversionCount{ExperimentID: "e2", VariationID: "vB", EventName: "purchase", Conversions: 1}, counts[1])
	})

	t.Run("window excludes early events", func(t *testing.T) {
		counts := WebConversionCounts(events, Window{Start: ts(6)})
		require.Len(t, counts, 1)
		assert.Equal(t, 1, counts[0].Conversions)
	})

	t.Run("counts events the fullstack policy would drop", func(t *testing.T) {
		// No decisions exist at all; web attribution still counts the
		// enriched pairs.
		counts := WebConversionCounts(events[:1], Window{})
		assert.Len(t, counts, 2)
	})
}

// TestWebVisitorCounts verifies the union of enriched event subjects and
// decision subjects.
func TestWebVisitorCounts(t *testing.T) {
	decisions := []schema.Decision{
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(10)},
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(12)},
		{VisitorID: "held", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(11), IsHoldback: true},
	}
	events := []schema.Event{
		{VisitorID: "s2", EventName: "purchase", Timestamp: ts(5), Experiments: []schema.ExperimentRef{
			{ExperimentID: "e1", VariationID: "vA"},
		}},
	}

	counts := WebVisitorCounts(decisions, events, Window{}, schema.VisitorIDField)
	require.Len(t, counts, 1)
	// s1 from decisions, s2 from the enriched event; the holdback row is out.
	assert.Equal(t, 2, counts[0].UniqueVisitors)
}

// TestFullStackVisitorCounts verifies distinct-subject counting over
// in-window, non-holdback decisions only.
func TestFullStackVisitorCounts(t *testing.T) {
	decisions := []schema.Decision{
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(10)},
		{VisitorID: "s1", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(20)},
		{VisitorID: "s2", ExperimentID: "e1", VariationID: "vA", Timestamp: ts(30)},
		{VisitorID: "s3", ExperimentID: "e1", VariationID: "vB", Timestamp: ts(40), IsHoldback: true},
	}

	counts := FullStackVisitorCounts(decisions, Window{}, schema.VisitorIDField)
	require.Len(t, counts, 1)
	got := counts[0]
	assert.Equal(t, "e1", got.ExperimentID)
	assert.Equal(t, "vA", got.VariationID)
	assert.Equal(t, 2, got.UniqueVisitors)

	// Distinct subjects can never exceed decision rows.
	assert.LessOrEqual(t, got.UniqueVisitors, len(decisions))
}
