package core

import (
	"sort"

	"github.com/huangsam/attrib/schema"
)

// subjectKey identifies one (experiment, subject) partition.
type subjectKey struct {
	experimentID string
	subjectID    string
}

// AttributeSubjects reduces an already-filtered decision slice to one row
// per (experiment_id, subject_id), keeping the earliest decision for each
// pair. Timestamp ties resolve to the first decision in input order, so the
// result is deterministic and re-running on the same input yields identical
// output. Rows are ordered by ascending timestamp, then experiment and
// subject for stability.
func AttributeSubjects(decisions []schema.Decision, subjectField string) []schema.ExperimentSubject {
	first := make(map[subjectKey]schema.ExperimentSubject, len(decisions))

	for _, d := range decisions {
		key := subjectKey{experimentID: d.ExperimentID, subjectID: d.SubjectID(subjectField)}
		if key.subjectID == "" {
			// Decision rows without the chosen subject column cannot be grouped.
			continue
		}
		prev, seen := first[key]
		if seen && !d.Timestamp.Before(prev.Timestamp) {
			continue
		}
		first[key] = schema.ExperimentSubject{
			SubjectID:    key.subjectID,
			ExperimentID: d.ExperimentID,
			VariationID:  d.VariationID,
			Timestamp:    d.Timestamp,
		}
	}

	subjects := make([]schema.ExperimentSubject, 0, len(first))
	for _, s := range first {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		a, b := subjects[i], subjects[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.ExperimentID != b.ExperimentID {
			return a.ExperimentID < b.ExperimentID
		}
		return a.SubjectID < b.SubjectID
	})
	return subjects
}
