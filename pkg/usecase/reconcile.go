package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/utils/logging"
)

// PreviewResult is the outcome of a dry reconciliation run. Nothing has been
// written anywhere.
type PreviewResult struct {
	UserID    types.UserID
	WeekStart types.Day

	// Candidates would be submitted on commit
	Candidates []*model.TimeEntryCandidate

	// Skipped candidates are covered by existing sink entries
	Skipped []*SkippedCandidate

	// Unmapped events need a mapping before they can be proposed
	Unmapped []*model.UnmappedEvent

	// Warnings flag events already processed in an earlier run this week
	Warnings []string

	// SkippedEvents counts events excluded before grouping
	SkippedEvents int
}

// CommitOutcome is the result of one candidate during commit
type CommitOutcome struct {
	Candidate   *model.TimeEntryCandidate
	Status      types.RecordStatus
	SinkEntryID types.EntryID
	Detail      string
}

// CommitResult is the outcome of a live reconciliation run
type CommitResult struct {
	UserID    types.UserID
	WeekStart types.Day

	Submitted []*CommitOutcome
	Skipped   []*CommitOutcome
	Failed    []*CommitOutcome
	Unmapped  []*model.UnmappedEvent
	Warnings  []string

	// PartiallyFailed is set when at least one candidate failed while others
	// succeeded; successful submissions are never rolled back
	PartiallyFailed bool
}

// ReconcileUseCase orchestrates one reconciliation run: fetch, resolve,
// group, filter, then preview or commit. Runs are sequential; the only
// concurrency is the independent source and sink fetch.
type ReconcileUseCase struct {
	uc *UseCases
}

func newReconcileUseCase(uc *UseCases) *ReconcileUseCase {
	return &ReconcileUseCase{uc: uc}
}

// pipeline carries everything a run computed up to the filter state
type pipeline struct {
	authCtx  *auth.Context
	events   map[types.EventID]*model.CalendarEvent
	preview  *PreviewResult
	toSubmit []*model.TimeEntryCandidate
	toSkip   []*SkippedCandidate
}

// Preview runs the pipeline without writing anything
func (x *ReconcileUseCase) Preview(ctx context.Context, userID types.UserID, weekStart types.Day) (*PreviewResult, error) {
	p, err := x.build(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	return p.preview, nil
}

// build runs the shared pipeline states: fetch, resolve, group, filter.
// Candidate IDs are deterministic, so a commit following a preview selects
// the same candidates.
func (x *ReconcileUseCase) build(ctx context.Context, userID types.UserID, weekStart types.Day) (*pipeline, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	if err := weekStart.Validate(); err != nil {
		return nil, err
	}

	authCtx, err := x.uc.Credential.GetAuthContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, err := weekStart.Time(time.Local)
	if err != nil {
		return nil, err
	}
	to := from.AddDate(0, 0, 7)
	weekEnd := types.DayOf(from.AddDate(0, 0, 6))

	logger := logging.From(ctx)
	logger.Info("reconciliation run started",
		"user_id", userID, "week_start", weekStart)

	var events []*model.CalendarEvent
	var existing []*model.SinkEntry

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		events, err = x.uc.source.FetchEvents(egCtx, userID, from, to)
		return err
	})
	eg.Go(func() error {
		var err error
		existing, err = x.uc.sink.ListEntries(egCtx, authCtx, weekStart, weekEnd)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	resolver, err := x.uc.NewResolver(ctx, userID)
	if err != nil {
		return nil, err
	}

	grouped := GroupResolved(userID, events, resolver)
	toSubmit, toSkip := FilterCandidates(grouped.Candidates, existing)

	toSubmit, warnings, err := x.dropProcessed(ctx, userID, weekStart, toSubmit)
	if err != nil {
		return nil, err
	}

	eventsByID := make(map[types.EventID]*model.CalendarEvent, len(events))
	for _, event := range events {
		eventsByID[event.ID] = event
	}

	logger.Info("reconciliation pipeline complete",
		"user_id", userID,
		"events", len(events),
		"candidates", len(toSubmit),
		"skipped", len(toSkip),
		"unmapped", len(grouped.Unmapped))

	return &pipeline{
		authCtx: authCtx,
		events:  eventsByID,
		preview: &PreviewResult{
			UserID:        userID,
			WeekStart:     weekStart,
			Candidates:    toSubmit,
			Skipped:       toSkip,
			Unmapped:      grouped.Unmapped,
			Warnings:      warnings,
			SkippedEvents: grouped.SkippedEvents,
		},
		toSubmit: toSubmit,
		toSkip:   toSkip,
	}, nil
}

// dropProcessed removes candidates whose events were already handled by a
// successful run this week. They are warned about, never re-proposed.
func (x *ReconcileUseCase) dropProcessed(ctx context.Context, userID types.UserID, weekStart types.Day, candidates []*model.TimeEntryCandidate) ([]*model.TimeEntryCandidate, []string, error) {
	records, err := x.uc.repo.History().ListByWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list processing history",
			goerr.V("user_id", userID), goerr.V("week_start", weekStart))
	}

	processed := map[types.EventID]struct{}{}
	for _, record := range records {
		if record.Status != types.RecordStatusSuccess {
			continue
		}
		for _, id := range record.EventIDs {
			processed[id] = struct{}{}
		}
	}
	if len(processed) == 0 {
		return candidates, nil, nil
	}

	var kept []*model.TimeEntryCandidate
	var warnings []string
	for _, candidate := range candidates {
		var hit []string
		for _, id := range candidate.EventIDs {
			if _, ok := processed[id]; ok {
				hit = append(hit, id.String())
			}
		}
		if len(hit) == 0 {
			kept = append(kept, candidate)
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"candidate %s not re-proposed: events already processed this week: %s",
			candidate.ID(), strings.Join(hit, ", ")))
	}

	return kept, warnings, nil
}

// Commit runs the pipeline and submits approved candidates to the sink. The
// identity gate runs before the first write: a mismatch aborts the whole run
// with zero entries created. Per-candidate sink failures are recorded and the
// batch continues; successes stand even when later candidates fail.
func (x *ReconcileUseCase) Commit(ctx context.Context, userID types.UserID, weekStart types.Day, approvedIDs []string) (*CommitResult, error) {
	p, err := x.build(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	if _, err := x.uc.Credential.ValidateIdentity(ctx, p.authCtx); err != nil {
		return nil, err
	}

	selected := p.toSubmit
	if len(approvedIDs) > 0 {
		approved := make(map[string]struct{}, len(approvedIDs))
		for _, id := range approvedIDs {
			approved[id] = struct{}{}
		}
		selected = nil
		for _, candidate := range p.toSubmit {
			if _, ok := approved[candidate.ID()]; ok {
				selected = append(selected, candidate)
			}
		}
	}

	result := &CommitResult{
		UserID:    userID,
		WeekStart: weekStart,
		Unmapped:  p.preview.Unmapped,
		Warnings:  p.preview.Warnings,
	}
	logger := logging.From(ctx)

	for _, skipped := range p.toSkip {
		x.appendHistory(ctx, weekStart, skipped.Candidate, types.RecordStatusSkipped, 0, skipped.Detail)
		result.Skipped = append(result.Skipped, &CommitOutcome{
			Candidate: skipped.Candidate,
			Status:    types.RecordStatusSkipped,
			Detail:    skipped.Detail,
		})
	}

	for _, candidate := range selected {
		if err := ctx.Err(); err != nil {
			// Cancellation between candidates: what was written stands,
			// nothing more is attempted
			return result, goerr.Wrap(err, "run cancelled",
				goerr.V("submitted", len(result.Submitted)))
		}

		entryID, err := x.uc.sink.CreateEntry(ctx, p.authCtx, &interfaces.NewEntry{
			ProjectID: candidate.ProjectID,
			TaskID:    candidate.TaskID,
			Day:       candidate.Day,
			Hours:     candidate.Hours,
			Notes:     candidate.Notes,
		})
		if err != nil {
			detail := err.Error()
			logger.Error("candidate submission failed",
				"candidate", candidate.ID(), "error", err)
			x.appendHistory(ctx, weekStart, candidate, types.RecordStatusError, 0, detail)
			result.Failed = append(result.Failed, &CommitOutcome{
				Candidate: candidate,
				Status:    types.RecordStatusError,
				Detail:    detail,
			})
			continue
		}

		x.appendHistory(ctx, weekStart, candidate, types.RecordStatusSuccess, entryID, "")
		result.Submitted = append(result.Submitted, &CommitOutcome{
			Candidate:   candidate,
			Status:      types.RecordStatusSuccess,
			SinkEntryID: entryID,
		})

		x.learn(ctx, candidate, p.events)
	}

	result.PartiallyFailed = len(result.Failed) > 0

	logger.Info("reconciliation run finished",
		"user_id", userID,
		"submitted", len(result.Submitted),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed))

	return result, nil
}

// learn feeds each contributing event's signature into the pattern store.
// Learning failures are logged, never propagated: the entry is already in
// the sink.
func (x *ReconcileUseCase) learn(ctx context.Context, candidate *model.TimeEntryCandidate, events map[types.EventID]*model.CalendarEvent) {
	for _, eventID := range candidate.EventIDs {
		event, ok := events[eventID]
		if !ok {
			continue
		}
		signature := model.NormalizeSignature(event.Summary)
		if err := x.uc.Pattern.Learn(ctx, candidate.UserID, signature, candidate.ProjectID, candidate.TaskID); err != nil {
			logging.From(ctx).Warn("pattern learning failed",
				"user_id", candidate.UserID, "signature", signature, "error", err)
		}
	}
}

// appendHistory writes the immutable record of one candidate outcome. A
// failed write is logged and the run continues: history must not block the
// sink path.
func (x *ReconcileUseCase) appendHistory(ctx context.Context, weekStart types.Day, candidate *model.TimeEntryCandidate, status types.RecordStatus, entryID types.EntryID, detail string) {
	record := &model.ProcessingHistoryRecord{
		ID:          model.NewHistoryID(),
		UserID:      candidate.UserID,
		WeekStart:   weekStart,
		EventIDs:    candidate.EventIDs,
		Summary:     summaryOf(candidate),
		ProjectID:   candidate.ProjectID,
		TaskID:      candidate.TaskID,
		Day:         candidate.Day,
		Hours:       candidate.Hours,
		Status:      status,
		SinkEntryID: entryID,
		ProcessedAt: x.uc.now(),
	}
	if status != types.RecordStatusSuccess {
		record.Error = detail
	}

	if _, err := x.uc.repo.History().Append(ctx, record); err != nil {
		logging.From(ctx).Error("failed to append history record",
			"user_id", candidate.UserID, "candidate", candidate.ID(), "error", err)
	}
}

// History retrieves the user's full processing history in processing order
func (x *ReconcileUseCase) History(ctx context.Context, userID types.UserID) ([]*model.ProcessingHistoryRecord, error) {
	records, err := x.uc.repo.History().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list processing history", goerr.V("user_id", userID))
	}
	return records, nil
}

// summaryOf condenses the candidate's note lines into one history summary
func summaryOf(candidate *model.TimeEntryCandidate) string {
	lines := strings.Split(candidate.Notes, "\n")
	for i, line := range lines {
		if cut := strings.Index(line, " | "); cut > 0 {
			lines[i] = line[:cut]
		}
	}
	return strings.Join(lines, "; ")
}
