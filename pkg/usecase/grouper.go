package usecase

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

const maxDescriptionInNotes = 200

// GroupedEvents is the output of grouping one run's resolved events
type GroupedEvents struct {
	Candidates []*model.TimeEntryCandidate

	// Unmapped events are surfaced for display, never submitted
	Unmapped []*model.UnmappedEvent

	// SkippedEvents counts events excluded before grouping (declined,
	// multi-day, zero duration)
	SkippedEvents int
}

// GroupResolved resolves and groups events into time entry candidates keyed
// by (project, task, day). Durations sum per key and round half-up to two
// decimals. Overlapping events both count; untangling double-booked calendars
// is the user's call, not the engine's.
func GroupResolved(userID types.UserID, events []*model.CalendarEvent, resolver *Resolver) *GroupedEvents {
	out := &GroupedEvents{}
	byKey := map[model.CandidateKey]*model.TimeEntryCandidate{}
	notesByKey := map[model.CandidateKey][]string{}

	for _, event := range events {
		if event.Attendance == model.AttendanceDeclined {
			out.SkippedEvents++
			continue
		}
		if event.IsMultiDay() {
			out.SkippedEvents++
			continue
		}
		if event.Duration() <= 0 {
			out.SkippedEvents++
			continue
		}

		resolution := resolver.ResolveEvent(event)
		if resolution.Source == types.ResolutionUnmapped {
			out.Unmapped = append(out.Unmapped, &model.UnmappedEvent{
				Event:     event,
				Signature: model.NormalizeSignature(event.Summary),
			})
			continue
		}

		key := model.CandidateKey{
			ProjectID: resolution.ProjectID,
			TaskID:    resolution.TaskID,
			Day:       event.Day(),
		}

		candidate, ok := byKey[key]
		if !ok {
			candidate = &model.TimeEntryCandidate{
				UserID:      userID,
				ProjectID:   resolution.ProjectID,
				ProjectName: resolution.ProjectName,
				TaskID:      resolution.TaskID,
				TaskName:    resolution.TaskName,
				Day:         key.Day,
			}
			byKey[key] = candidate
		}

		candidate.Hours += event.Duration().Hours()
		candidate.EventIDs = append(candidate.EventIDs, event.ID)
		notesByKey[key] = append(notesByKey[key], generateNotes(event))
	}

	for key, candidate := range byKey {
		candidate.Hours = model.RoundHours(candidate.Hours)
		if candidate.Hours == 0 {
			continue
		}
		candidate.Notes = strings.Join(notesByKey[key], "\n")
		out.Candidates = append(out.Candidates, candidate)
	}

	sort.Slice(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].ID() < out.Candidates[j].ID()
	})

	return out
}

// generateNotes builds the sink entry note for one event: summary, trimmed
// description when it adds anything, location, and the time window.
func generateNotes(event *model.CalendarEvent) string {
	var parts []string

	if event.Summary != "" {
		parts = append(parts, event.Summary)
	}

	description := strings.TrimSpace(event.Description)
	if description != "" && !strings.EqualFold(description, event.Summary) {
		if len(description) > maxDescriptionInNotes {
			// cut on a rune boundary so the note stays valid UTF-8
			cut := maxDescriptionInNotes - 3
			for cut > 0 && !utf8.RuneStart(description[cut]) {
				cut--
			}
			description = description[:cut] + "..."
		}
		parts = append(parts, description)
	}

	if location := strings.TrimSpace(event.Location); location != "" {
		parts = append(parts, "Location: "+location)
	}

	parts = append(parts, fmt.Sprintf("Time: %s-%s",
		event.Start.Format("15:04"), event.End.Format("15:04")))

	return strings.Join(parts, " | ")
}
