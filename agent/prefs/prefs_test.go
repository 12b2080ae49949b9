package prefs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

type fakeProcessor struct {
	output     string
	err        error
	calls      int
	lastSystem string
	lastTurns  []statex.Turn
}

func (f *fakeProcessor) Complete(ctx context.Context, system string, turns []statex.Turn) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastTurns = append([]statex.Turn(nil), turns...)
	return f.output, f.err
}

func (f *fakeProcessor) CompleteStructured(ctx context.Context, system string, turns []statex.Turn, out any) error {
	return errors.New("not used")
}

func newTestService(t *testing.T, store statex.Store, proc contractx.TextProcessor) *Service {
	t.Helper()

	svc, err := NewService(store, proc, "extraction policy")
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestExtractEmptyWhenNoRecords(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, statex.NewMemoryStore(), &fakeProcessor{})

	digest, err := svc.Extract(context.Background(), "customer_1")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if digest != "" {
		t.Fatalf("expected empty digest, got %q", digest)
	}
}

func TestExtractDigestInInsertionOrder(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	ctx := context.Background()
	for i, text := range []string{"Likes jazz", "Prefers vinyl", "Enjoys live albums"} {
		rec := statex.PreferenceRecord{ID: string(rune('a' + i)), CustomerID: "customer_1", Text: text}
		if err := store.AppendPreference(ctx, "customer_1", rec); err != nil {
			t.Fatalf("AppendPreference() error = %v", err)
		}
	}

	svc := newTestService(t, store, &fakeProcessor{})
	digest, err := svc.Extract(ctx, "customer_1")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "## Preferences of user\nLikes jazz\nPrefers vinyl\nEnjoys live albums"
	if digest != want {
		t.Fatalf("digest = %q, want %q", digest, want)
	}
}

func TestRecordAppendsExtractedSentence(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	proc := &fakeProcessor{output: "The customer likes jazz."}
	svc := newTestService(t, store, proc)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := statex.NewSession("t1", now)
	sess.CustomerID = "customer_1"
	sess.LoadedPreferences = "## Preferences of user\nPrefers vinyl"
	sess.AppendTurn(statex.RoleUser, "I really like jazz", now)

	if err := svc.Record(context.Background(), sess); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	recs, err := store.GetPreferences(context.Background(), "customer_1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	if recs[0].Text != "The customer likes jazz." {
		t.Fatalf("unexpected record text: %q", recs[0].Text)
	}
	if recs[0].ID == "" || recs[0].CustomerID != "customer_1" {
		t.Fatalf("incomplete record: %+v", recs[0])
	}

	// The extraction payload carries both the input and the loaded digest.
	if len(proc.lastTurns) != 1 {
		t.Fatalf("expected one payload turn, got %d", len(proc.lastTurns))
	}
	payload := proc.lastTurns[0].Content
	if !strings.Contains(payload, "I really like jazz") || !strings.Contains(payload, "Prefers vinyl") {
		t.Fatalf("payload missing context: %q", payload)
	}
}

func TestRecordSkipsNoOpSentinel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
	}{
		{name: "exact", output: "No preferences found."},
		{name: "no period", output: "no preferences found"},
		{name: "padded", output: "  No Preferences Found.  "},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := statex.NewMemoryStore()
			svc := newTestService(t, store, &fakeProcessor{output: tc.output})

			now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			sess := statex.NewSession("t1", now)
			sess.CustomerID = "customer_1"
			sess.AppendTurn(statex.RoleUser, "what time is it?", now)

			if err := svc.Record(context.Background(), sess); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			recs, _ := store.GetPreferences(context.Background(), "customer_1")
			if len(recs) != 0 {
				t.Fatalf("expected no record for sentinel output, got %+v", recs)
			}
		})
	}
}

func TestRecordRequiresIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, statex.NewMemoryStore(), &fakeProcessor{output: "whatever"})

	sess := statex.NewSession("t1", time.Now())
	sess.AppendTurn(statex.RoleUser, "hello", time.Now())

	if err := svc.Record(context.Background(), sess); !errors.Is(err, contractx.ErrIdentityRequired) {
		t.Fatalf("expected ErrIdentityRequired, got %v", err)
	}
}
