package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type patternOutcome struct {
	project types.ProjectID
	task    types.TaskID
}

type patternRepository struct {
	mu sync.Mutex

	// per user, per signature, per outcome pair count
	counts map[types.UserID]map[string]map[patternOutcome]int
	totals map[types.UserID]map[string]int
	seen   map[types.UserID]map[string]map[patternOutcome]time.Time
}

func newPatternRepository() *patternRepository {
	return &patternRepository{
		counts: make(map[types.UserID]map[string]map[patternOutcome]int),
		totals: make(map[types.UserID]map[string]int),
		seen:   make(map[types.UserID]map[string]map[patternOutcome]time.Time),
	}
}

func (r *patternRepository) Record(ctx context.Context, userID types.UserID, signature string, project types.ProjectID, task types.TaskID, at time.Time) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if signature == "" {
		return goerr.New("signature cannot be empty", goerr.V("user_id", userID))
	}

	// Single mutex serializes learns per store; user partitioning keeps
	// cross-user interference impossible at the data level.
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.counts[userID] == nil {
		r.counts[userID] = make(map[string]map[patternOutcome]int)
		r.totals[userID] = make(map[string]int)
		r.seen[userID] = make(map[string]map[patternOutcome]time.Time)
	}
	if r.counts[userID][signature] == nil {
		r.counts[userID][signature] = make(map[patternOutcome]int)
		r.seen[userID][signature] = make(map[patternOutcome]time.Time)
	}

	outcome := patternOutcome{project: project, task: task}
	r.counts[userID][signature][outcome]++
	r.totals[userID][signature]++
	if at.After(r.seen[userID][signature][outcome]) {
		r.seen[userID][signature][outcome] = at
	}

	return nil
}

func (r *patternRepository) List(ctx context.Context, userID types.UserID) ([]*model.PatternSignature, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var signatures []*model.PatternSignature
	for signature, outcomes := range r.counts[userID] {
		for outcome, count := range outcomes {
			signatures = append(signatures, &model.PatternSignature{
				UserID:           userID,
				Signature:        signature,
				ProjectID:        outcome.project,
				TaskID:           outcome.task,
				Occurrences:      count,
				TotalOccurrences: r.totals[userID][signature],
				LastSeen:         r.seen[userID][signature][outcome],
			})
		}
	}

	return signatures, nil
}
