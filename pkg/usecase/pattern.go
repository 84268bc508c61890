package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// Suggestion is one ranked project/task proposal for a signature
type Suggestion struct {
	ProjectID   types.ProjectID
	TaskID      types.TaskID
	Confidence  float64
	Occurrences int
	LastSeen    time.Time
}

// PatternStore learns signature→outcome associations from successful commits
// and suggests outcomes for new signatures. Strictly per-user: one user's
// history never influences another's suggestions.
type PatternStore struct {
	repo   interfaces.Repository
	tuning Tuning
	now    func() time.Time
}

func newPatternStore(repo interfaces.Repository, tuning Tuning, now func() time.Time) *PatternStore {
	return &PatternStore{repo: repo, tuning: tuning, now: now}
}

// Learn records one observed signature→outcome pair. Called only after a
// successful sink submission, so the store reflects accepted work only.
func (x *PatternStore) Learn(ctx context.Context, userID types.UserID, signature string, project types.ProjectID, task types.TaskID) error {
	if signature == "" {
		return nil
	}
	if err := x.repo.Pattern().Record(ctx, userID, signature, project, task, x.now()); err != nil {
		return goerr.Wrap(err, "failed to record pattern",
			goerr.V("user_id", userID), goerr.V("signature", signature))
	}
	return nil
}

// Suggest returns ranked outcome proposals for the signature. An empty result
// for a fresh user is normal, not an error.
func (x *PatternStore) Suggest(ctx context.Context, userID types.UserID, signature string) ([]Suggestion, error) {
	patterns, err := x.repo.Pattern().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patterns", goerr.V("user_id", userID))
	}
	return x.rank(patterns, signature), nil
}

// rank scores stored patterns against a signature. A pattern applies when its
// similarity clears the threshold and its support clears the minimum; its
// score is the outcome share weighted by similarity and recency decay.
func (x *PatternStore) rank(patterns []*model.PatternSignature, signature string) []Suggestion {
	if signature == "" {
		return nil
	}

	now := x.now()
	var suggestions []Suggestion
	for _, p := range patterns {
		if p.Occurrences < x.tuning.MinSupport {
			continue
		}

		similarity := model.SignatureSimilarity(signature, p.Signature)
		if similarity < x.tuning.SimilarityThreshold {
			continue
		}

		confidence := p.Confidence() * similarity * x.recencyWeight(now, p.LastSeen)
		suggestions = append(suggestions, Suggestion{
			ProjectID:   p.ProjectID,
			TaskID:      p.TaskID,
			Confidence:  confidence,
			Occurrences: p.Occurrences,
			LastSeen:    p.LastSeen,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Occurrences != suggestions[j].Occurrences {
			return suggestions[i].Occurrences > suggestions[j].Occurrences
		}
		if !suggestions[i].LastSeen.Equal(suggestions[j].LastSeen) {
			return suggestions[i].LastSeen.After(suggestions[j].LastSeen)
		}
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	if len(suggestions) > x.tuning.MaxSuggestions {
		suggestions = suggestions[:x.tuning.MaxSuggestions]
	}
	return suggestions
}

// recencyWeight decays exponentially with the age of the last observation
func (x *PatternStore) recencyWeight(now, lastSeen time.Time) float64 {
	if lastSeen.IsZero() {
		return 1
	}
	ageDays := now.Sub(lastSeen).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	return math.Pow(0.5, ageDays/x.tuning.RecencyHalfLifeDays)
}
