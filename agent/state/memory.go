package state

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps checkpoints and preferences in process memory. It is the
// default for tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
	preferences map[string][]PreferenceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[string]*Checkpoint),
		preferences: make(map[string][]PreferenceRecord),
	}
}

func (s *MemoryStore) LoadCheckpoint(ctx context.Context, threadID string) (*Checkpoint, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[threadID]
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	return cp.Clone(), nil
}

func (s *MemoryStore) SaveCheckpoint(ctx context.Context, cp *Checkpoint) error {
	if cp == nil || cp.Session == nil {
		return ErrNilCheckpoint
	}
	if strings.TrimSpace(cp.ThreadID) == "" {
		return ErrInvalidThread
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[cp.ThreadID] = cp.Clone()
	return nil
}

func (s *MemoryStore) GetPreferences(ctx context.Context, customerID string) ([]PreferenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]PreferenceRecord(nil), s.preferences[customerID]...), nil
}

func (s *MemoryStore) AppendPreference(ctx context.Context, customerID string, rec PreferenceRecord) error {
	if strings.TrimSpace(customerID) == "" {
		return ErrInvalidThread
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences[customerID] = append(s.preferences[customerID], rec)
	return nil
}
