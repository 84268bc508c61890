package usecase

import (
	"time"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
)

type UseCases struct {
	repo     interfaces.Repository
	source   interfaces.CalendarSource
	sink     interfaces.TimeSink
	oauth    OAuthService
	notifier interfaces.AuditNotifier
	tuning   Tuning
	now      func() time.Time

	Credential *CredentialUseCase
	Mapping    *MappingUseCase
	Pattern    *PatternStore
	Reconcile  *ReconcileUseCase
}

type Option func(*UseCases)

func WithSource(source interfaces.CalendarSource) Option {
	return func(uc *UseCases) {
		uc.source = source
	}
}

func WithSink(sink interfaces.TimeSink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

func WithOAuth(oauth OAuthService) Option {
	return func(uc *UseCases) {
		uc.oauth = oauth
	}
}

func WithNotifier(notifier interfaces.AuditNotifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithTuning(tuning Tuning) Option {
	return func(uc *UseCases) {
		uc.tuning = tuning
	}
}

// WithNow overrides the clock (tests)
func WithNow(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		tuning: DefaultTuning(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Credential = newCredentialUseCase(repo, uc.oauth, uc.sink, uc.notifier, uc.now)
	uc.Mapping = newMappingUseCase(repo, uc.now)
	uc.Pattern = newPatternStore(repo, uc.tuning, uc.now)
	uc.Reconcile = newReconcileUseCase(uc)

	return uc
}
