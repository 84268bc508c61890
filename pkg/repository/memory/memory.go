package memory

import (
	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = types.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	mapping     *mappingRepository
	recurring   *recurringMappingRepository
	pattern     *patternRepository
	history     *historyRepository
	audit       *auditRepository
	credentials *credentialStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		mapping:     newMappingRepository(),
		recurring:   newRecurringMappingRepository(),
		pattern:     newPatternRepository(),
		history:     newHistoryRepository(),
		audit:       newAuditRepository(),
		credentials: newCredentialStore(),
	}
}

func (m *Memory) Mapping() interfaces.MappingRepository {
	return m.mapping
}

func (m *Memory) RecurringMapping() interfaces.RecurringMappingRepository {
	return m.recurring
}

func (m *Memory) Pattern() interfaces.PatternRepository {
	return m.pattern
}

func (m *Memory) History() interfaces.HistoryRepository {
	return m.history
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

// Close is a no-op for the in-memory backend
func (m *Memory) Close() error {
	return nil
}
