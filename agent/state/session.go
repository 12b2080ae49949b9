package state

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultStepBudget bounds responder delegation within a single turn.
const DefaultStepBudget = 10

// Turn is one message in the conversation history.
type Turn struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the per-thread conversation state. It is owned by the Store and
// mutated only by the workflow engine and the stages it invokes.
type Session struct {
	ThreadID          string `json:"thread_id"`
	Turns             []Turn `json:"turns,omitempty"`
	CustomerID        string `json:"customer_id,omitempty"`
	LoadedPreferences string `json:"loaded_preferences,omitempty"`

	// RemainingSteps is decremented once per responder invocation; dispatch
	// fails closed when it reaches zero.
	RemainingSteps int `json:"remaining_steps"`

	// VerifyAttempts counts suspensions issued by verification for this
	// thread, so the retry loop can be bounded.
	VerifyAttempts int `json:"verify_attempts,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// SuspensionToken marks a thread as paused inside a stage, waiting for user
// input. A thread has at most one live token; it is consumed on resume.
type SuspensionToken struct {
	Stage    string    `json:"stage"`
	Prompt   string    `json:"prompt"`
	IssuedAt time.Time `json:"issued_at"`
}

// Checkpoint is an immutable snapshot of a Session plus the next stage to run.
// A stage never mutates a prior checkpoint; it produces the next one with a
// higher version. Only the latest checkpoint per thread must be retained.
type Checkpoint struct {
	ThreadID   string           `json:"thread_id"`
	Version    int64            `json:"version"`
	NextStage  string           `json:"next_stage"`
	Session    *Session         `json:"session"`
	Suspension *SuspensionToken `json:"suspension,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PreferenceRecord is one entry in the append-only preference log.
// Records are never mutated or deleted after write.
type PreferenceRecord struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewSession(threadID string, now time.Time) *Session {
	return &Session{
		ThreadID:       strings.TrimSpace(threadID),
		RemainingSteps: DefaultStepBudget,
		UpdatedAt:      now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn adds a message to the history with an estimated token count.
func (s *Session) AppendTurn(role, content string, now time.Time) {
	s.Turns = append(s.Turns, Turn{
		Role:       role,
		Content:    content,
		TokenCount: EstimateTokens(content),
		Timestamp:  now.UTC(),
	})
	s.Touch(now)
}

// LastUserTurn returns the most recent user-authored turn content.
func (s *Session) LastUserTurn() (string, bool) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content, true
		}
	}
	return "", false
}

// HistoryTokens is the estimated token total of the whole history.
func (s *Session) HistoryTokens() int {
	total := 0
	for _, t := range s.Turns {
		total += t.TokenCount
	}
	return total
}

// Clone deep-copies the session so checkpoints stay immutable after save.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Turns != nil {
		cp.Turns = append([]Turn(nil), s.Turns...)
	}
	return &cp
}

// Clone deep-copies the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Session = c.Session.Clone()
	if c.Suspension != nil {
		tok := *c.Suspension
		cp.Suspension = &tok
	}
	return &cp
}
