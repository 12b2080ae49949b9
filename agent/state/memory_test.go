package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.LoadCheckpoint(ctx, "t1"); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("t1", now)
	sess.AppendTurn(RoleUser, "hello", now)
	cp := &Checkpoint{ThreadID: "t1", Version: 1, NextStage: "verify_customer", Session: sess, CreatedAt: now}

	if err := store.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("SaveCheckpoint() error = %v", err)
	}

	// Mutating the caller's copy after save must not affect the stored one.
	sess.CustomerID = "customer_1"

	got, err := store.LoadCheckpoint(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadCheckpoint() error = %v", err)
	}
	if got.Session.CustomerID != "" {
		t.Fatalf("post-save mutation leaked into store: %q", got.Session.CustomerID)
	}
	if got.Version != 1 || got.NextStage != "verify_customer" {
		t.Fatalf("unexpected checkpoint: %+v", got)
	}

	// A later save supersedes; only the latest version is retained.
	cp2 := cp.Clone()
	cp2.Version = 2
	cp2.NextStage = "extract_preferences"
	if err := store.SaveCheckpoint(ctx, cp2); err != nil {
		t.Fatalf("SaveCheckpoint() error = %v", err)
	}
	got, err = store.LoadCheckpoint(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadCheckpoint() error = %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("expected latest version 2, got %d", got.Version)
	}
}

func TestMemoryStoreRejectsBadInput(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveCheckpoint(ctx, nil); !errors.Is(err, ErrNilCheckpoint) {
		t.Fatalf("expected ErrNilCheckpoint, got %v", err)
	}
	if err := store.SaveCheckpoint(ctx, &Checkpoint{ThreadID: "t1"}); !errors.Is(err, ErrNilCheckpoint) {
		t.Fatalf("expected ErrNilCheckpoint for missing session, got %v", err)
	}
	if _, err := store.LoadCheckpoint(ctx, "  "); !errors.Is(err, ErrInvalidThread) {
		t.Fatalf("expected ErrInvalidThread, got %v", err)
	}
	if err := store.AppendPreference(ctx, " ", PreferenceRecord{}); !errors.Is(err, ErrInvalidThread) {
		t.Fatalf("expected ErrInvalidThread, got %v", err)
	}
}

func TestMemoryStorePreferencesAppendOnly(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	recs, err := store.GetPreferences(ctx, "customer_1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}

	first := PreferenceRecord{ID: "p1", CustomerID: "customer_1", Text: "Likes jazz", CreatedAt: now}
	second := PreferenceRecord{ID: "p2", CustomerID: "customer_1", Text: "Prefers vinyl", CreatedAt: now.Add(time.Minute)}
	if err := store.AppendPreference(ctx, "customer_1", first); err != nil {
		t.Fatalf("AppendPreference() error = %v", err)
	}
	if err := store.AppendPreference(ctx, "customer_1", second); err != nil {
		t.Fatalf("AppendPreference() error = %v", err)
	}

	recs, err = store.GetPreferences(ctx, "customer_1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "p1" || recs[1].ID != "p2" {
		t.Fatalf("expected insertion order [p1 p2], got %+v", recs)
	}

	// Mutating the returned slice must not affect the store.
	recs[0].Text = "mutated"
	recs, _ = store.GetPreferences(ctx, "customer_1")
	if recs[0].Text != "Likes jazz" {
		t.Fatalf("returned slice aliases the store: %q", recs[0].Text)
	}
}
