package core

import (
	"sort"
	"time"

	"github.com/huangsam/attrib/schema"
)

// groupKey identifies one (experiment, variation, subject) group.
type groupKey struct {
	experimentID string
	variationID  string
	subjectID    string
}

// pairKey identifies one (experiment, variation) pair.
type pairKey struct {
	experimentID string
	variationID  string
}

// conversionKey identifies one (experiment, variation, event) triple.
type conversionKey struct {
	experimentID string
	variationID  string
	eventName    string
}

// WebVisitorCounts counts distinct subjects per (experiment, variation)
// under the Web policy: the union of subjects seen through in-window event
// enrichments and subjects with an in-window, non-holdback decision.
func WebVisitorCounts(decisions []schema.Decision, events []schema.Event, w Window, subjectField string) []schema.VisitorCount {
	seen := make(map[groupKey]struct{})

	for _, e := range FilterEvents(events, w) {
		for _, ref := range e.Experiments {
			key := groupKey{experimentID: ref.ExperimentID, variationID: ref.VariationID, subjectID: e.VisitorID}
			seen[key] = struct{}{}
		}
	}
	for _, d := range FilterDecisions(decisions, w) {
		if d.IsHoldback {
			continue
		}
		key := groupKey{experimentID: d.ExperimentID, variationID: d.VariationID, subjectID: d.SubjectID(subjectField)}
		seen[key] = struct{}{}
	}

	return rollupVisitors(seen)
}

// WebConversionCounts counts attributed conversion events per (experiment,
// variation, event) under the Web policy: every in-window event is expanded
// over its enrichment list and counted once per pair, with no requirement
// that a decision exist in the window.
func WebConversionCounts(events []schema.Event, w Window) []schema.ConversionCount {
	counts := make(map[conversionKey]int)
	for _, e := range FilterEvents(events, w) {
		for _, ref := range e.Experiments {
			key := conversionKey{experimentID: ref.ExperimentID, variationID: ref.VariationID, eventName: e.EventName}
			counts[key]++
		}
	}
	return rollupConversions(counts)
}

// FullStackVisitorCounts counts distinct subjects per (experiment,
// variation) under the Full Stack policy: subjects with an in-window,
// non-holdback decision for the pair.
func FullStackVisitorCounts(decisions []schema.Decision, w Window, subjectField string) []schema.VisitorCount {
	seen := make(map[groupKey]struct{})
	for _, d := range FilterDecisions(decisions, w) {
		if d.IsHoldback {
			continue
		}
		key := groupKey{experimentID: d.ExperimentID, variationID: d.VariationID, subjectID: d.SubjectID(subjectField)}
		seen[key] = struct{}{}
	}
	return rollupVisitors(seen)
}

// FullStackConversionCounts counts conversions per (experiment, variation,
// event) under the Full Stack policy. Each (experiment, variation, subject)
// group is reduced to its earliest in-window, non-holdback decision
// timestamp; in-window events then join on subject_id and count toward every
// group whose decision timestamp is no later than the event. Enrichment
// lists play no part here: a subject with no in-window decision contributes
// nothing even if an event references the experiment.
func FullStackConversionCounts(decisions []schema.Decision, events []schema.Event, w Window, subjectField string) []schema.ConversionCount {
	decisionTimes := minDecisionTimes(decisions, w, subjectField)

	// Index the per-subject groups so each event joins without scanning
	// every (experiment, variation) pair.
	bySubject := make(map[string][]groupKey, len(decisionTimes))
	for key := range decisionTimes {
		bySubject[key.subjectID] = append(bySubject[key.subjectID], key)
	}

	counts := make(map[conversionKey]int)
	for _, e := range FilterEvents(events, w) {
		for _, key := range bySubject[e.VisitorID] {
			if e.Timestamp.Before(decisionTimes[key]) {
				continue
			}
			ck := conversionKey{experimentID: key.experimentID, variationID: key.variationID, eventName: e.EventName}
			counts[ck]++
		}
	}
	return rollupConversions(counts)
}

// minDecisionTimes computes the earliest in-window, non-holdback decision
// timestamp per (experiment, variation, subject) group. Same
// minimum-timestamp semantics as AttributeSubjects, collapsed to a scalar
// per group.
func minDecisionTimes(decisions []schema.Decision, w Window, subjectField string) map[groupKey]time.Time {
	mins := make(map[groupKey]time.Time)
	for _, d := range FilterDecisions(decisions, w) {
		if d.IsHoldback {
			continue
		}
		key := groupKey{experimentID: d.ExperimentID, variationID: d.VariationID, subjectID: d.SubjectID(subjectField)}
		if prev, ok := mins[key]; !ok || d.Timestamp.Before(prev) {
			mins[key] = d.Timestamp
		}
	}
	return mins
}

// rollupVisitors collapses a distinct (experiment, variation, subject) set
// into per-pair counts, sorted ascending by (experiment_id, variation_id).
func rollupVisitors(seen map[groupKey]struct{}) []schema.VisitorCount {
	counts := make(map[pairKey]int)
	for key := range seen {
		counts[pairKey{experimentID: key.experimentID, variationID: key.variationID}]++
	}

	out := make([]schema.VisitorCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, schema.VisitorCount{
			ExperimentID:   key.experimentID,
			VariationID:    key.variationID,
			UniqueVisitors: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExperimentID != out[j].ExperimentID {
			return out[i].ExperimentID < out[j].ExperimentID
		}
		return out[i].VariationID < out[j].VariationID
	})
	return out
}

// rollupConversions renders a conversion count map as rows sorted ascending
// by (experiment_id, variation_id, event_name).
func rollupConversions(counts map[conversionKey]int) []schema.ConversionCount {
	out := make([]schema.ConversionCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, schema.ConversionCount{
			ExperimentID: key.experimentID,
			VariationID:  key.variationID,
			EventName:    key.eventName,
			Conversions:  n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExperimentID != out[j].ExperimentID {
			return out[i].ExperimentID < out[j].ExperimentID
		}
		if out[i].VariationID != out[j].VariationID {
			return out[i].VariationID < out[j].VariationID
		}
		return out[i].EventName < out[j].EventName
	})
	return out
}
