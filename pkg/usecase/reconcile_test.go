package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"golang.org/x/oauth2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/repository/memory"
	"github.com/hourbeam/hourbeam/pkg/service/harvest"
	"github.com/hourbeam/hourbeam/pkg/usecase"
)

const (
	testUser   = types.UserID("U123")
	testWeek   = types.Day("2024-03-04")
	remoteUser = int64(777)
)

type fakeSource struct {
	events []*model.CalendarEvent
	err    error
}

func (x *fakeSource) FetchEvents(ctx context.Context, userID types.UserID, from, to time.Time) ([]*model.CalendarEvent, error) {
	return x.events, x.err
}

type fakeSink struct {
	existing  []*model.SinkEntry
	identity  *model.RemoteIdentity
	created   []*interfaces.NewEntry
	failOn    map[types.ProjectID]error
	onCreate  func()
	nextEntry types.EntryID
}

func (x *fakeSink) ListEntries(ctx context.Context, authCtx *auth.Context, from, to types.Day) ([]*model.SinkEntry, error) {
	return x.existing, nil
}

func (x *fakeSink) CreateEntry(ctx context.Context, authCtx *auth.Context, entry *interfaces.NewEntry) (types.EntryID, error) {
	if err := x.failOn[entry.ProjectID]; err != nil {
		return 0, err
	}
	x.created = append(x.created, entry)
	x.nextEntry++
	if x.onCreate != nil {
		x.onCreate()
	}
	return x.nextEntry, nil
}

func (x *fakeSink) GetIdentity(ctx context.Context, authCtx *auth.Context) (*model.RemoteIdentity, error) {
	if x.identity == nil {
		return &model.RemoteIdentity{ID: remoteUser, Email: "worker@example.com"}, nil
	}
	return x.identity, nil
}

type fakeOAuth struct {
	refreshed  *oauth2.Token
	refreshErr error
}

func (x *fakeOAuth) AuthCodeURL(state string) string { return "https://id.example.com/authorize" }

func (x *fakeOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "exchanged-" + code, RefreshToken: "rt"}, nil
}

func (x *fakeOAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return x.refreshed, x.refreshErr
}

func (x *fakeOAuth) FetchAccountInfo(ctx context.Context, accessToken string) (*harvest.AccountInfo, error) {
	return &harvest.AccountInfo{
		RemoteUserID: remoteUser,
		RemoteEmail:  "worker@example.com",
		AccountID:    42,
		AccountName:  "Example Org",
	}, nil
}

func seedCredential(t *testing.T, repo *memory.Memory) {
	t.Helper()
	gt.NoError(t, repo.PutCredential(context.Background(), &auth.Material{
		UserID: testUser,
		OAuth: &auth.OAuthMaterial{
			AccessToken:  "valid-token",
			RefreshToken: "valid-refresh",
			Expiry:       time.Now().Add(time.Hour),
			AccountID:    42,
			AccountName:  "Example Org",
			RemoteUserID: remoteUser,
			RemoteEmail:  "worker@example.com",
		},
		UpdatedAt: time.Now(),
	}))
}

func seedLabelMapping(t *testing.T, repo *memory.Memory, label string, project types.ProjectID, task types.TaskID) {
	t.Helper()
	_, err := repo.Mapping().Create(context.Background(), &model.Mapping{
		UserID:        testUser,
		CalendarLabel: label,
		ProjectID:     project,
		ProjectName:   "Project " + label,
		TaskID:        task,
		TaskName:      "Task " + label,
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	gt.NoError(t, err).Required()
}

func timedEvent(id string, label string, start string, minutes int) *model.CalendarEvent {
	s, _ := time.ParseInLocation("2006-01-02T15:04", start, time.Local)
	return &model.CalendarEvent{
		ID:         types.EventID(id),
		UserID:     testUser,
		Summary:    "Event " + id,
		Start:      s,
		End:        s.Add(time.Duration(minutes) * time.Minute),
		Label:      label,
		Attendance: model.AttendanceAccepted,
	}
}

func newTestUseCases(repo *memory.Memory, source *fakeSource, sink *fakeSink) *usecase.UseCases {
	return usecase.New(repo,
		usecase.WithSource(source),
		usecase.WithSink(sink),
		usecase.WithOAuth(&fakeOAuth{}),
	)
}

func TestPreviewGroupsEventsByProjectTaskDay(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 45),
		timedEvent("ev-2", "Platform", "2024-03-04T14:00", 45),
		timedEvent("ev-3", "", "2024-03-05T09:00", 60),
	}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	result, err := uc.Reconcile.Preview(context.Background(), testUser, testWeek)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Candidates).Length(1)
	candidate := result.Candidates[0]
	gt.Value(t, candidate.ProjectID).Equal(types.ProjectID(10))
	gt.Value(t, candidate.TaskID).Equal(types.TaskID(20))
	gt.Value(t, candidate.Day).Equal(types.Day("2024-03-04"))
	gt.Value(t, candidate.Hours).Equal(1.5)
	gt.Array(t, candidate.EventIDs).Length(2)

	gt.Array(t, result.Unmapped).Length(1)
	gt.Value(t, result.Unmapped[0].Event.ID).Equal(types.EventID("ev-3"))

	// preview writes nothing
	gt.Array(t, sink.created).Length(0)
	history := gt.R1(repo.History().List(context.Background(), testUser)).NoError(t)
	gt.Array(t, history).Length(0)
}

func TestExplicitMappingWinsOverLearnedPattern(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	// heavily learned conflicting outcome for the same signature
	ctx := context.Background()
	for range [10]struct{}{} {
		gt.NoError(t, repo.Pattern().Record(ctx, testUser, "event ev 1", 99, 98, time.Now()))
	}

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
	}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	result, err := uc.Reconcile.Preview(ctx, testUser, testWeek)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Candidates).Length(1)
	gt.Value(t, result.Candidates[0].ProjectID).Equal(types.ProjectID(10))
}

func TestCommitSubmitsAndLearns(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 90),
	}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Submitted).Length(1)
	gt.Value(t, result.Submitted[0].Status).Equal(types.RecordStatusSuccess)
	gt.Array(t, sink.created).Length(1)
	gt.Value(t, sink.created[0].Hours).Equal(1.5)

	history := gt.R1(repo.History().List(ctx, testUser)).NoError(t)
	gt.Array(t, history).Length(1)
	gt.Value(t, history[0].Status).Equal(types.RecordStatusSuccess)
	gt.Value(t, history[0].SinkEntryID).Equal(types.EntryID(1))

	patterns := gt.R1(repo.Pattern().List(ctx, testUser)).NoError(t)
	gt.Array(t, patterns).Length(1)
	gt.Value(t, patterns[0].ProjectID).Equal(types.ProjectID(10))
}

func TestSecondCommitCreatesNothing(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
	}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	first, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, first.Submitted).Length(1)

	second, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, second.Submitted).Length(0)
	gt.Array(t, second.Warnings).Length(1)
	gt.Array(t, sink.created).Length(1)
}

func TestIdentityMismatchAbortsWithZeroWrites(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
	}}
	sink := &fakeSink{identity: &model.RemoteIdentity{ID: 888, Email: "other@example.com"}}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	_, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrIdentityMismatch)).True()

	gt.Array(t, sink.created).Length(0)
	history := gt.R1(repo.History().List(ctx, testUser)).NoError(t)
	gt.Array(t, history).Length(0)

	audits := gt.R1(repo.Audit().List(ctx, testUser)).NoError(t)
	gt.Array(t, audits).Length(1)
	gt.Value(t, audits[0].Kind).Equal(types.AuditKindIdentityMismatch)
}

func TestPartialFailureContainment(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)
	seedLabelMapping(t, repo, "Research", 30, 40)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
		timedEvent("ev-2", "Research", "2024-03-04T11:00", 60),
	}}
	sink := &fakeSink{failOn: map[types.ProjectID]error{
		30: types.ErrSinkRejected,
	}}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Submitted).Length(1)
	gt.Array(t, result.Failed).Length(1)
	gt.Bool(t, result.PartiallyFailed).True()

	history := gt.R1(repo.History().List(ctx, testUser)).NoError(t)
	gt.Array(t, history).Length(2)

	var statuses []types.RecordStatus
	for _, record := range history {
		statuses = append(statuses, record.Status)
	}
	gt.Array(t, statuses).Has(types.RecordStatusSuccess)
	gt.Array(t, statuses).Has(types.RecordStatusError)
}

func TestAllFailedCommitReportsPartialFailure(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
	}}
	sink := &fakeSink{failOn: map[types.ProjectID]error{
		10: types.ErrSinkRejected,
	}}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Submitted).Length(0)
	gt.Array(t, result.Failed).Length(1)
	gt.Bool(t, result.PartiallyFailed).True()

	history := gt.R1(repo.History().List(ctx, testUser)).NoError(t)
	gt.Array(t, history).Length(1)
	gt.Value(t, history[0].Status).Equal(types.RecordStatusError)
}

func TestCancellationStopsRemainingCandidates(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)
	seedLabelMapping(t, repo, "Research", 30, 40)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
		timedEvent("ev-2", "Research", "2024-03-04T11:00", 60),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &fakeSink{onCreate: cancel}
	uc := newTestUseCases(repo, source, sink)

	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, context.Canceled)).True()

	// the first submission stands, the second is never attempted
	gt.Value(t, result).NotNil()
	gt.Array(t, result.Submitted).Length(1)
	gt.Array(t, result.Failed).Length(0)
	gt.Array(t, sink.created).Length(1)

	history := gt.R1(repo.History().List(context.Background(), testUser)).NoError(t)
	gt.Array(t, history).Length(1)
	gt.Value(t, history[0].Status).Equal(types.RecordStatusSuccess)
}

func TestDuplicateSkippedDespiteDifferentHours(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 90),
	}}
	sink := &fakeSink{existing: []*model.SinkEntry{
		{ID: 501, ProjectID: 10, TaskID: 20, Day: "2024-03-04", Hours: 3.0},
	}}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, nil)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Submitted).Length(0)
	gt.Array(t, result.Skipped).Length(1)
	gt.Value(t, result.Skipped[0].Status).Equal(types.RecordStatusSkipped)
	gt.Bool(t, len(result.Skipped[0].Detail) > 0).True()
	gt.Array(t, sink.created).Length(0)
}

func TestCommitHonorsApprovedSubset(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)
	seedLabelMapping(t, repo, "Research", 30, 40)

	source := &fakeSource{events: []*model.CalendarEvent{
		timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60),
		timedEvent("ev-2", "Research", "2024-03-04T11:00", 60),
	}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	ctx := context.Background()
	result, err := uc.Reconcile.Commit(ctx, testUser, testWeek, []string{"10-20-2024-03-04"})
	gt.NoError(t, err).Required()

	gt.Array(t, result.Submitted).Length(1)
	gt.Value(t, result.Submitted[0].Candidate.ProjectID).Equal(types.ProjectID(10))
	gt.Array(t, sink.created).Length(1)
}

func TestRecurringMappingTakesPrecedence(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)
	seedLabelMapping(t, repo, "Platform", 10, 20)

	ctx := context.Background()
	_, err := repo.RecurringMapping().Create(ctx, &model.RecurringMapping{
		UserID:           testUser,
		RecurringEventID: "series-1",
		EventSummary:     "Weekly sync",
		ProjectID:        50,
		ProjectName:      "Ops",
		TaskID:           60,
		TaskName:         "Meetings",
		IsActive:         true,
	})
	gt.NoError(t, err).Required()

	event := timedEvent("ev-1", "Platform", "2024-03-04T09:00", 60)
	event.RecurringEventID = "series-1"
	source := &fakeSource{events: []*model.CalendarEvent{event}}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	result, err := uc.Reconcile.Preview(ctx, testUser, testWeek)
	gt.NoError(t, err).Required()

	gt.Array(t, result.Candidates).Length(1)
	gt.Value(t, result.Candidates[0].ProjectID).Equal(types.ProjectID(50))
}

func TestSourceFailureAbortsRun(t *testing.T) {
	repo := memory.New()
	seedCredential(t, repo)

	source := &fakeSource{err: types.ErrSourceUnavailable}
	sink := &fakeSink{}
	uc := newTestUseCases(repo, source, sink)

	_, err := uc.Reconcile.Preview(context.Background(), testUser, testWeek)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrSourceUnavailable)).True()
}
