// Package prefs derives and persists durable customer music preferences.
// The log is append-only: the digest is a projection computed on read, and
// existing records are never rewritten or removed.
package prefs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

const digestHeader = "## Preferences of user"

// noPreferencesSentinel is the model's no-op marker.
const noPreferencesSentinel = "no preferences found"

type Service struct {
	store  statex.Store
	proc   contractx.TextProcessor
	policy string
	now    func() time.Time
}

func NewService(store statex.Store, proc contractx.TextProcessor, policy string) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: preference store is required", contractx.ErrValidation)
	}
	if proc == nil {
		return nil, fmt.Errorf("%w: text processor is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(policy) == "" {
		return nil, fmt.Errorf("%w: extraction policy prompt is required", contractx.ErrValidation)
	}
	return &Service{
		store:  store,
		proc:   proc,
		policy: policy,
		now:    time.Now,
	}, nil
}

// Extract returns the digest of all stored preference records for the
// customer, in insertion order. Pure read; empty string when none exist.
func (s *Service) Extract(ctx context.Context, customerID string) (string, error) {
	records, err := s.store.GetPreferences(ctx, customerID)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, rec.Text)
	}
	return digestHeader + "\n" + strings.Join(lines, "\n"), nil
}

// Record sends the last user turn plus the loaded digest through the
// extraction policy and appends one new record unless the model reports the
// no-op sentinel.
func (s *Service) Record(ctx context.Context, sess *statex.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(sess.CustomerID) == "" {
		return contractx.ErrIdentityRequired
	}

	input, ok := sess.LastUserTurn()
	if !ok {
		return nil
	}

	payload := fmt.Sprintf("Customer's input:\n%s\n\nPrevious preferences:\n%s", input, sess.LoadedPreferences)
	sentence, err := s.proc.Complete(ctx, s.policy, []statex.Turn{
		{Role: statex.RoleUser, Content: payload},
	})
	if err != nil {
		return err
	}

	if isNoOpSentinel(sentence) {
		return nil
	}

	rec := statex.PreferenceRecord{
		ID:         uuid.NewString(),
		CustomerID: sess.CustomerID,
		Text:       strings.TrimSpace(sentence),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.AppendPreference(ctx, sess.CustomerID, rec); err != nil {
		return err
	}

	log.Debug().Str("customer_id", sess.CustomerID).Str("preference_id", rec.ID).Msg("preference recorded")
	return nil
}

func isNoOpSentinel(sentence string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sentence))
	normalized = strings.TrimSuffix(normalized, ".")
	return normalized == noPreferencesSentinel
}
