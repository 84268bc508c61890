package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type historyRepository struct {
	mu      sync.RWMutex
	records map[types.UserID][]*model.ProcessingHistoryRecord
}

func newHistoryRepository() *historyRepository {
	return &historyRepository{
		records: make(map[types.UserID][]*model.ProcessingHistoryRecord),
	}
}

func copyHistoryRecord(r *model.ProcessingHistoryRecord) *model.ProcessingHistoryRecord {
	copied := *r
	copied.EventIDs = append([]types.EventID(nil), r.EventIDs...)
	return &copied
}

func (r *historyRepository) Append(ctx context.Context, record *model.ProcessingHistoryRecord) (*model.ProcessingHistoryRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid history record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyHistoryRecord(record)
	if created.ID == "" {
		created.ID = model.NewHistoryID()
	}
	if created.ProcessedAt.IsZero() {
		created.ProcessedAt = time.Now().UTC()
	}

	r.records[created.UserID] = append(r.records[created.UserID], created)
	return copyHistoryRecord(created), nil
}

func (r *historyRepository) ListByWeek(ctx context.Context, userID types.UserID, weekStart types.Day) ([]*model.ProcessingHistoryRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.ProcessingHistoryRecord
	for _, record := range r.records[userID] {
		if record.WeekStart == weekStart {
			records = append(records, copyHistoryRecord(record))
		}
	}

	return records, nil
}

func (r *historyRepository) List(ctx context.Context, userID types.UserID) ([]*model.ProcessingHistoryRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.ProcessingHistoryRecord, 0, len(r.records[userID]))
	for _, record := range r.records[userID] {
		records = append(records, copyHistoryRecord(record))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ProcessedAt.Before(records[j].ProcessedAt)
	})

	return records, nil
}
