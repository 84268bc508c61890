package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/repository/memory"
	"github.com/hourbeam/hourbeam/pkg/usecase"
)

func TestSuggestRequiresMinSupport(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	// one observation is below the default minimum support
	gt.NoError(t, uc.Pattern.Learn(ctx, testUser, "weekly sync", 10, 20))

	suggestions := gt.R1(uc.Pattern.Suggest(ctx, testUser, "weekly sync")).NoError(t)
	gt.Array(t, suggestions).Length(0)

	gt.NoError(t, uc.Pattern.Learn(ctx, testUser, "weekly sync", 10, 20))
	suggestions = gt.R1(uc.Pattern.Suggest(ctx, testUser, "weekly sync")).NoError(t)
	gt.Array(t, suggestions).Length(1)
	gt.Value(t, suggestions[0].ProjectID).Equal(types.ProjectID(10))
}

func TestSuggestRanksByFrequency(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	for range [5]struct{}{} {
		gt.NoError(t, uc.Pattern.Learn(ctx, testUser, "weekly sync", 10, 20))
	}
	for range [2]struct{}{} {
		gt.NoError(t, uc.Pattern.Learn(ctx, testUser, "weekly sync", 30, 40))
	}

	suggestions := gt.R1(uc.Pattern.Suggest(ctx, testUser, "weekly sync")).NoError(t)
	gt.Array(t, suggestions).Length(2).Required()
	gt.Value(t, suggestions[0].ProjectID).Equal(types.ProjectID(10))
	gt.Value(t, suggestions[1].ProjectID).Equal(types.ProjectID(30))
	gt.Bool(t, suggestions[0].Confidence > suggestions[1].Confidence).True()
}

func TestSuggestIsolatesUsers(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	other := types.UserID("U999")
	for range [5]struct{}{} {
		gt.NoError(t, uc.Pattern.Learn(ctx, other, "weekly sync", 10, 20))
	}

	suggestions := gt.R1(uc.Pattern.Suggest(ctx, testUser, "weekly sync")).NoError(t)
	gt.Array(t, suggestions).Length(0)
}

func TestSuggestMatchesSimilarSignatures(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	for range [3]struct{}{} {
		gt.NoError(t, uc.Pattern.Learn(ctx, testUser, "platform weekly sync", 10, 20))
	}

	// shares 2 of 3 tokens with the stored signature
	suggestions := gt.R1(uc.Pattern.Suggest(ctx, testUser, "platform sync")).NoError(t)
	gt.Array(t, suggestions).Length(1)

	// unrelated signature matches nothing
	suggestions = gt.R1(uc.Pattern.Suggest(ctx, testUser, "quarterly budget review")).NoError(t)
	gt.Array(t, suggestions).Length(0)
}

func TestRecencyDecayLowersConfidence(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	old := time.Now().Add(-90 * 24 * time.Hour)
	gt.NoError(t, repo.Pattern().Record(ctx, testUser, "stale standup", 10, 20, old))
	gt.NoError(t, repo.Pattern().Record(ctx, testUser, "stale standup", 10, 20, old))

	gt.NoError(t, repo.Pattern().Record(ctx, testUser, "fresh standup", 30, 40, time.Now()))
	gt.NoError(t, repo.Pattern().Record(ctx, testUser, "fresh standup", 30, 40, time.Now()))

	uc := usecase.New(repo)
	stale := gt.R1(uc.Pattern.Suggest(ctx, testUser, "stale standup")).NoError(t)
	fresh := gt.R1(uc.Pattern.Suggest(ctx, testUser, "fresh standup")).NoError(t)
	gt.Array(t, stale).Length(1).Required()
	gt.Array(t, fresh).Length(1).Required()
	gt.Bool(t, stale[0].Confidence < fresh[0].Confidence).True()
}

func TestLoadTuningFromTOML(t *testing.T) {
	tuning, err := usecase.ReadTuning(strings.NewReader(`
similarity_threshold = 0.8
min_support = 3
`))
	gt.NoError(t, err).Required()

	gt.Value(t, tuning.SimilarityThreshold).Equal(0.8)
	gt.Value(t, tuning.MinSupport).Equal(3)
	// unset keys keep their defaults
	gt.Value(t, tuning.ConfidenceThreshold).Equal(usecase.DefaultTuning().ConfidenceThreshold)
	gt.Value(t, tuning.MaxSuggestions).Equal(usecase.DefaultTuning().MaxSuggestions)
}

func TestReadTuningRejectsInvalidValues(t *testing.T) {
	_, err := usecase.ReadTuning(strings.NewReader(`similarity_threshold = 1.5`))
	gt.Error(t, err)

	_, err = usecase.ReadTuning(strings.NewReader(`min_support = 0`))
	gt.Error(t, err)
}
