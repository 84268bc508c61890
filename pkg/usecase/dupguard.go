package usecase

import (
	"fmt"
	"math"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// SkippedCandidate is a candidate held back by the duplicate guard
type SkippedCandidate struct {
	Candidate *model.TimeEntryCandidate
	Reason    types.SkipReason
	Detail    string
}

// FilterCandidates splits candidates into submittable and skipped against the
// sink's existing entries. An existing entry with the same (project, task,
// day) covers a candidate regardless of hours: the engine never overwrites or
// tops up what is already recorded, it only surfaces the difference.
func FilterCandidates(candidates []*model.TimeEntryCandidate, existing []*model.SinkEntry) (toSubmit []*model.TimeEntryCandidate, toSkip []*SkippedCandidate) {
	existingByKey := map[model.CandidateKey]*model.SinkEntry{}
	for _, entry := range existing {
		existingByKey[entry.Key()] = entry
	}

	for _, candidate := range candidates {
		entry, ok := existingByKey[candidate.Key()]
		if !ok {
			toSubmit = append(toSubmit, candidate)
			continue
		}

		detail := fmt.Sprintf("entry %d already recorded with %.2fh", entry.ID, entry.Hours)
		if math.Abs(entry.Hours-candidate.Hours) >= 0.01 {
			detail = fmt.Sprintf("%s, candidate has %.2fh", detail, candidate.Hours)
		}
		toSkip = append(toSkip, &SkippedCandidate{
			Candidate: candidate,
			Reason:    types.SkipReasonAlreadyExists,
			Detail:    detail,
		})
	}

	return toSubmit, toSkip
}
