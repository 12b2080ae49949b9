package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

const (
	// ResponderCatalog and ResponderBilling are the names the dispatch plan
	// uses to address the pool.
	ResponderCatalog = "catalog"
	ResponderBilling = "billing"
)

const budgetExhaustedReply = "I wasn't able to complete that request right now. Please try again with a simpler question."

// Dispatcher decides which responder(s) handle the current turn, invokes them
// one at a time, and folds their outputs into one reply. Each invocation
// consumes one unit of the session's remaining step budget; dispatch fails
// closed once the budget is spent.
type Dispatcher struct {
	proc          contractx.TextProcessor
	pool          map[string]contractx.Responder
	planPrompt    string
	compilePrompt string
}

func NewDispatcher(proc contractx.TextProcessor, pool map[string]contractx.Responder, planPrompt, compilePrompt string) (*Dispatcher, error) {
	if proc == nil {
		return nil, fmt.Errorf("%w: dispatcher needs a text processor", contractx.ErrValidation)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: dispatcher needs at least one responder", contractx.ErrValidation)
	}
	return &Dispatcher{
		proc:          proc,
		pool:          pool,
		planPrompt:    planPrompt,
		compilePrompt: compilePrompt,
	}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, sess *statex.Session) (string, error) {
	if sess == nil {
		return "", fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(sess.CustomerID) == "" {
		return "", contractx.ErrIdentityRequired
	}

	userMessage, ok := sess.LastUserTurn()
	if !ok {
		return "", fmt.Errorf("%w: no user turn to dispatch", contractx.ErrValidation)
	}

	plan, err := d.plan(ctx, sess, userMessage)
	if err != nil {
		return "", err
	}
	if len(plan.Tasks) == 0 {
		if reply := strings.TrimSpace(plan.Reply); reply != "" {
			return reply, nil
		}
		return "", fmt.Errorf("%w: dispatch plan has neither tasks nor reply", contractx.ErrSchemaViolation)
	}

	outputs := make([]string, 0, len(plan.Tasks))
	exhausted := false
	for _, task := range plan.Tasks {
		if sess.RemainingSteps <= 0 {
			log.Warn().
				Err(contractx.ErrBudgetExhausted).
				Str("thread_id", sess.ThreadID).
				Str("responder", task.Responder).
				Msg("short-circuiting dispatch")
			exhausted = true
			break
		}

		resp, ok := d.pool[strings.TrimSpace(task.Responder)]
		if !ok {
			return "", fmt.Errorf("%w: unknown responder=%q", contractx.ErrSchemaViolation, task.Responder)
		}

		sess.RemainingSteps--
		out, err := resp.Handle(ctx, sess, task.Request)
		if err != nil {
			return "", err
		}
		outputs = append(outputs, strings.TrimSpace(out))
	}

	if len(outputs) == 0 {
		return budgetExhaustedReply, nil
	}

	reply, err := d.fold(ctx, userMessage, outputs)
	if err != nil {
		return "", err
	}
	if exhausted {
		reply += "\n\nI couldn't complete every part of your request."
	}
	return reply, nil
}

func (d *Dispatcher) plan(ctx context.Context, sess *statex.Session, userMessage string) (contractx.DispatchPlan, error) {
	payload, err := json.Marshal(map[string]any{
		"customer_id":  sess.CustomerID,
		"user_message": userMessage,
		"preferences":  sess.LoadedPreferences,
	})
	if err != nil {
		return contractx.DispatchPlan{}, fmt.Errorf("%w: marshal dispatch payload: %v", contractx.ErrValidation, err)
	}

	var plan contractx.DispatchPlan
	turns := []statex.Turn{{Role: statex.RoleUser, Content: string(payload)}}
	if err := d.proc.CompleteStructured(ctx, d.planPrompt, turns, &plan); err != nil {
		return contractx.DispatchPlan{}, err
	}
	return plan, nil
}

// fold assembles responder outputs into one coherent reply. A single output
// is returned as-is; multiple outputs go through the compile prompt.
func (d *Dispatcher) fold(ctx context.Context, userMessage string, outputs []string) (string, error) {
	if len(outputs) == 1 {
		return outputs[0], nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User request:\n%s\n", userMessage)
	for i, out := range outputs {
		fmt.Fprintf(&sb, "\nAnswer %d:\n%s\n", i+1, out)
	}

	return d.proc.Complete(ctx, d.compilePrompt, []statex.Turn{
		{Role: statex.RoleUser, Content: sb.String()},
	})
}
