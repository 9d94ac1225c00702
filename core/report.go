package core

import (
	"sort"

	"github.com/huangsam/attrib/schema"
)

// SubjectReport rolls the experiment-subjects table up to one row per
// (experiment, variation) with a subject count, ordered ascending by
// (experiment_id, variation_id).
func SubjectReport(subjects []schema.ExperimentSubject) []schema.SubjectReportRow {
	counts := make(map[pairKey]int)
	for _, s := range subjects {
		counts[pairKey{experimentID: s.ExperimentID, variationID: s.VariationID}]++
	}

	out := make([]schema.SubjectReportRow, 0, len(counts))
	for key, n := range counts {
		out = append(out, schema.SubjectReportRow{
			ExperimentID: key.experimentID,
			VariationID:  key.variationID,
			Subjects:     n,
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

// BuildReport computes the visitor and conversion rollups for the
// configured policy over pre-loaded, unfiltered inputs.
func BuildReport(decisions []schema.Decision, events []schema.Event, w Window, policy schema.AttributionPolicy, subjectField string) schema.AttributionReport {
	report := schema.AttributionReport{Policy: policy}
	switch policy {
	case schema.FullStackPolicy:
		report.VisitorCounts = FullStackVisitorCounts(decisions, w, subjectField)
		report.ConversionCounts = FullStackConversionCounts(decisions, events, w, subjectField)
	default:
		report.VisitorCounts = WebVisitorCounts(decisions, events, w, subjectField)
		report.ConversionCounts = WebConversionCounts(events, w)
	}
	return report
}
