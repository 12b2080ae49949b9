package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

const (
	couldNotParsePrompt = "Could not parse the response. Please provide the information in the correct format."
	needContactPrompt   = "Please provide your phone number or email for verification."

	verifyGiveUpReply = "I'm sorry, I couldn't verify your identity. Please try again later with your customer ID, phone number, or email."
)

// verifyCustomer resolves the anonymous session to a known identity. An
// unmatched or unparsable claim suspends the turn with a clarification
// prompt; on resume only the user's new input is re-extracted, the prior
// history is not replayed.
func (e *Engine) verifyCustomer(ctx context.Context, ts *turnState) (stageOutcome, error) {
	sess := ts.Session

	turns := sess.Turns
	if ts.ResumeInput != "" {
		turns = []statex.Turn{{Role: statex.RoleUser, Content: ts.ResumeInput}}
	}

	var claim contractx.IdentityClaim
	if err := e.verifier.CompleteStructured(ctx, e.prompts.Verification, turns, &claim); err != nil {
		// A malformed extraction is an empty claim, not a crash.
		if !errors.Is(err, contractx.ErrSchemaViolation) {
			return stageOutcome{}, err
		}
		claim = contractx.IdentityClaim{}
	}

	claim.CustomerID = strings.TrimSpace(claim.CustomerID)
	claim.PhoneNumber = strings.TrimSpace(claim.PhoneNumber)
	claim.Email = strings.TrimSpace(claim.Email)

	if claim.Empty() {
		return e.suspendVerification(sess, couldNotParsePrompt)
	}

	record, err := e.identities.FindByAny(ctx, claim.CustomerID, claim.PhoneNumber, claim.Email)
	if err != nil {
		return stageOutcome{}, err
	}
	if record == nil {
		return e.suspendVerification(sess, needContactPrompt)
	}

	sess.CustomerID = record.ID
	sess.VerifyAttempts = 0
	log.Info().Str("thread_id", sess.ThreadID).Str("customer_id", record.ID).Msg("customer verified")
	return proceed(StageExtract), nil
}

// suspendVerification issues the next suspension, or gives up once the
// attempt bound is hit so a confused thread cannot loop forever.
func (e *Engine) suspendVerification(sess *statex.Session, prompt string) (stageOutcome, error) {
	sess.VerifyAttempts++
	if sess.VerifyAttempts > e.cfg.MaxVerifyAttempts {
		log.Warn().
			Str("thread_id", sess.ThreadID).
			Int("attempts", sess.VerifyAttempts).
			Msg("verification attempt bound reached")
		sess.VerifyAttempts = 0
		return finish(verifyGiveUpReply), nil
	}

	return stageOutcome{
		Suspend: &statex.SuspensionToken{
			Stage:    StageVerify,
			Prompt:   prompt,
			IssuedAt: e.now().UTC(),
		},
	}, nil
}
