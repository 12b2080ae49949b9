package state

import (
	"testing"
	"time"
)

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short ascii", text: "abc", want: 1},
		{name: "exact block", text: "abcdefgh", want: 2},
		{name: "rounds up", text: "abcdefghi", want: 3},
		{name: "non-ascii counts whole tokens", text: "日本語", want: 3},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := EstimateTokens(tc.text); got != tc.want {
				t.Fatalf("EstimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestSessionAppendAndHistory(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("t1", now)
	if sess.RemainingSteps != DefaultStepBudget {
		t.Fatalf("expected default step budget, got %d", sess.RemainingSteps)
	}

	sess.AppendTurn(RoleUser, "hello there", now)
	sess.AppendTurn(RoleAssistant, "hi, how can I help?", now.Add(time.Second))
	sess.AppendTurn(RoleUser, "show my invoices", now.Add(2*time.Second))

	last, ok := sess.LastUserTurn()
	if !ok || last != "show my invoices" {
		t.Fatalf("LastUserTurn() = %q, %v", last, ok)
	}

	want := 0
	for _, turn := range sess.Turns {
		want += turn.TokenCount
	}
	if got := sess.HistoryTokens(); got != want || got == 0 {
		t.Fatalf("HistoryTokens() = %d, want %d", got, want)
	}
	if !sess.UpdatedAt.Equal(now.Add(2 * time.Second)) {
		t.Fatalf("UpdatedAt not advanced: %v", sess.UpdatedAt)
	}
}

func TestLastUserTurnEmptyHistory(t *testing.T) {
	t.Parallel()

	sess := NewSession("t1", time.Now())
	if _, ok := sess.LastUserTurn(); ok {
		t.Fatal("expected no user turn on fresh session")
	}
}

func TestSessionCloneIsIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("t1", now)
	sess.AppendTurn(RoleUser, "original", now)

	clone := sess.Clone()
	clone.CustomerID = "customer_9"
	clone.Turns[0].Content = "mutated"
	clone.AppendTurn(RoleAssistant, "extra", now)

	if sess.CustomerID != "" {
		t.Fatalf("clone mutation leaked customer id: %q", sess.CustomerID)
	}
	if sess.Turns[0].Content != "original" {
		t.Fatalf("clone mutation leaked turn content: %q", sess.Turns[0].Content)
	}
	if len(sess.Turns) != 1 {
		t.Fatalf("clone append leaked: %d turns", len(sess.Turns))
	}
}

func TestCheckpointCloneIsIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cp := &Checkpoint{
		ThreadID:  "t1",
		Version:   2,
		NextStage: "verify_customer",
		Session:   NewSession("t1", now),
		Suspension: &SuspensionToken{
			Stage:    "verify_customer",
			Prompt:   "who are you?",
			IssuedAt: now,
		},
		CreatedAt: now,
	}

	clone := cp.Clone()
	clone.Session.CustomerID = "customer_1"
	clone.Suspension.Prompt = "changed"

	if cp.Session.CustomerID != "" {
		t.Fatalf("clone mutation leaked into session: %q", cp.Session.CustomerID)
	}
	if cp.Suspension.Prompt != "who are you?" {
		t.Fatalf("clone mutation leaked into suspension: %q", cp.Suspension.Prompt)
	}

	var nilCP *Checkpoint
	if nilCP.Clone() != nil {
		t.Fatal("expected nil clone of nil checkpoint")
	}
}
