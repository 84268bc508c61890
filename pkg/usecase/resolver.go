package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// Resolution is one event's mapping outcome. Unmapped is a valid outcome,
// not an error.
type Resolution struct {
	ProjectID   types.ProjectID
	ProjectName string
	TaskID      types.TaskID
	TaskName    string
	Source      types.ResolutionSource
	Confidence  float64
}

// Resolver resolves events against one user's mappings and learned patterns,
// loaded once per run so every event in the run sees the same state.
type Resolver struct {
	recurring map[string]*model.RecurringMapping
	labels    []*model.Mapping
	patterns  []*model.PatternSignature
	store     *PatternStore
	threshold float64
}

// NewResolver loads the user's active mappings and patterns into a resolver
func (uc *UseCases) NewResolver(ctx context.Context, userID types.UserID) (*Resolver, error) {
	recurring, err := uc.repo.RecurringMapping().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recurring mappings", goerr.V("user_id", userID))
	}
	recurringByEvent := make(map[string]*model.RecurringMapping, len(recurring))
	for _, m := range recurring {
		if m.IsActive {
			recurringByEvent[m.RecurringEventID] = m
		}
	}

	labels, err := uc.repo.Mapping().ListActive(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list mappings", goerr.V("user_id", userID))
	}

	patterns, err := uc.repo.Pattern().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patterns", goerr.V("user_id", userID))
	}

	return &Resolver{
		recurring: recurringByEvent,
		labels:    labels,
		patterns:  patterns,
		store:     uc.Pattern,
		threshold: uc.tuning.ConfidenceThreshold,
	}, nil
}

// ResolveEvent maps one event to a project/task. Precedence is strict:
// recurring mapping, then active label mapping, then learned pattern, then
// unmapped. A learned result never overrides an explicit mapping.
func (r *Resolver) ResolveEvent(event *model.CalendarEvent) *Resolution {
	if event.RecurringEventID != "" {
		if m, ok := r.recurring[event.RecurringEventID]; ok {
			return &Resolution{
				ProjectID:   m.ProjectID,
				ProjectName: m.ProjectName,
				TaskID:      m.TaskID,
				TaskName:    m.TaskName,
				Source:      types.ResolutionExplicit,
				Confidence:  1,
			}
		}
	}

	if event.Label != "" {
		for _, m := range r.labels {
			if m.MatchesLabel(event.Label) {
				return &Resolution{
					ProjectID:   m.ProjectID,
					ProjectName: m.ProjectName,
					TaskID:      m.TaskID,
					TaskName:    m.TaskName,
					Source:      types.ResolutionExplicit,
					Confidence:  1,
				}
			}
		}
	}

	signature := model.NormalizeSignature(event.Summary)
	if suggestions := r.store.rank(r.patterns, signature); len(suggestions) > 0 {
		best := suggestions[0]
		if best.Confidence >= r.threshold {
			return &Resolution{
				ProjectID:  best.ProjectID,
				TaskID:     best.TaskID,
				Source:     types.ResolutionLearned,
				Confidence: best.Confidence,
			}
		}
	}

	return &Resolution{Source: types.ResolutionUnmapped}
}
