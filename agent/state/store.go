package state

import (
	"context"
	"errors"
)

var (
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrNilCheckpoint      = errors.New("checkpoint is nil")
	ErrInvalidThread      = errors.New("thread id is empty")
)

// Store is the durable per-thread persistence contract used by the workflow
// engine: the latest checkpoint per thread plus the append-only preference
// log keyed by customer identity.
//
// SaveCheckpoint must be atomic per thread. Superseded checkpoints may be
// discarded; only the latest per thread is needed for resumption.
type Store interface {
	LoadCheckpoint(ctx context.Context, threadID string) (*Checkpoint, error)
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	GetPreferences(ctx context.Context, customerID string) ([]PreferenceRecord, error)
	AppendPreference(ctx context.Context, customerID string, rec PreferenceRecord) error
}
