package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

// summarizeConversation is a side-effecting pass-through: when the history
// grows past the upper threshold it folds all but the most recent turns into
// a single synopsis turn, then routes to verification or preference
// extraction depending on whether the identity is resolved. It never
// suspends, and re-running it below the threshold is a no-op.
func (e *Engine) summarizeConversation(ctx context.Context, ts *turnState) (stageOutcome, error) {
	sess := ts.Session

	if sess.HistoryTokens() > e.cfg.MaxHistoryTokens {
		if err := e.condenseHistory(ctx, sess); err != nil {
			return stageOutcome{}, err
		}
	}

	if sess.CustomerID == "" {
		return proceed(StageVerify), nil
	}
	return proceed(StageExtract), nil
}

func (e *Engine) condenseHistory(ctx context.Context, sess *statex.Session) error {
	cut := splitPoint(sess.Turns, e.cfg.RetainTokens)
	if cut == 0 {
		return nil
	}

	transcript := renderTranscript(sess.Turns[:cut])
	synopsis, err := e.summarizer.Complete(ctx, e.prompts.Summary, []statex.Turn{
		{Role: statex.RoleUser, Content: transcript},
	})
	if err != nil {
		return err
	}
	synopsis = truncateToTokens(synopsis, e.cfg.MaxSummaryTokens)

	now := e.now().UTC()
	condensed := statex.Turn{
		Role:       statex.RoleAssistant,
		Content:    "Conversation summary: " + synopsis,
		TokenCount: statex.EstimateTokens("Conversation summary: " + synopsis),
		Timestamp:  now,
	}

	folded := cut
	sess.Turns = append([]statex.Turn{condensed}, sess.Turns[cut:]...)
	sess.Touch(now)

	log.Info().
		Str("thread_id", sess.ThreadID).
		Int("turns_folded", folded).
		Int("history_tokens", sess.HistoryTokens()).
		Msg("conversation history condensed")
	return nil
}

// splitPoint returns the index of the first turn to keep verbatim: the
// longest suffix whose token total stays within retainTokens.
func splitPoint(turns []statex.Turn, retainTokens int) int {
	cut := len(turns)
	total := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if total+turns[i].TokenCount > retainTokens {
			break
		}
		total += turns[i].TokenCount
		cut = i
	}
	return cut
}

func renderTranscript(turns []statex.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
	}
	return sb.String()
}

func truncateToTokens(text string, maxTokens int) string {
	runes := []rune(text)
	for len(runes) > 0 && statex.EstimateTokens(string(runes)) > maxTokens {
		runes = runes[:len(runes)*9/10]
	}
	return string(runes)
}
