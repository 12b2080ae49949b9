package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

var (
	ErrInvalidThread  = errors.New("thread id is empty")
	ErrInvalidMessage = errors.New("message is empty")
)

// apologyReply is the user-visible outcome of any stage failure. The failing
// turn saves no checkpoint, so the thread stays resumable from the last good
// one.
const apologyReply = "I'm sorry, something went wrong on our side. Please try again."

// PreferenceService is the preference extraction/persistence capability the
// engine delegates to.
type PreferenceService interface {
	Extract(ctx context.Context, customerID string) (string, error)
	Record(ctx context.Context, sess *statex.Session) error
}

// TurnDispatcher delegates the current turn to the responder pool and folds
// the outputs into one reply.
type TurnDispatcher interface {
	Dispatch(ctx context.Context, sess *statex.Session) (string, error)
}

// Config tunes engine behavior. Zero values fall back to defaults.
type Config struct {
	// MaxVerifyAttempts bounds the verification retry loop: after this many
	// suspensions the turn terminates with an apology instead of asking
	// again.
	MaxVerifyAttempts int `envconfig:"MAX_VERIFY_ATTEMPTS" split_words:"true" default:"5"`

	// StepBudget seeds RemainingSteps on fresh sessions.
	StepBudget int `envconfig:"STEP_BUDGET" split_words:"true" default:"10"`

	// MaxHistoryTokens triggers summarization once exceeded.
	MaxHistoryTokens int `envconfig:"MAX_HISTORY_TOKENS" split_words:"true" default:"8000"`
	// RetainTokens is the budget for the most recent turns kept verbatim.
	RetainTokens int `envconfig:"RETAIN_TOKENS" split_words:"true" default:"4000"`
	// MaxSummaryTokens caps the synthesized synopsis.
	MaxSummaryTokens int `envconfig:"MAX_SUMMARY_TOKENS" split_words:"true" default:"4000"`
}

func (c *Config) applyDefaults() {
	if c.MaxVerifyAttempts <= 0 {
		c.MaxVerifyAttempts = 5
	}
	if c.StepBudget <= 0 {
		c.StepBudget = statex.DefaultStepBudget
	}
	if c.MaxHistoryTokens <= 0 {
		c.MaxHistoryTokens = 8000
	}
	if c.RetainTokens <= 0 {
		c.RetainTokens = 4000
	}
	if c.MaxSummaryTokens <= 0 {
		c.MaxSummaryTokens = 4000
	}
}

// Prompts are the system instructions the engine's own stages send to the
// text processors.
type Prompts struct {
	Verification string
	Summary      string
}

// Engine executes the conversation workflow one turn at a time: it loads the
// thread's latest checkpoint, runs stages per the transition table, persists
// a new checkpoint after every completed stage, and returns either a reply or
// a suspension prompt.
type Engine struct {
	store      statex.Store
	identities contractx.IdentityStore
	verifier   contractx.TextProcessor
	summarizer contractx.TextProcessor
	prefs      PreferenceService
	dispatcher TurnDispatcher

	cfg     Config
	prompts Prompts
	now     func() time.Time

	mu      sync.Mutex
	threads map[string]*threadLock
}

// threadLock is a per-thread mutex with a waiter count so the registry entry
// can be evicted once nobody holds or awaits it.
type threadLock struct {
	mu   sync.Mutex
	refs int
}

func New(
	store statex.Store,
	identities contractx.IdentityStore,
	verifier contractx.TextProcessor,
	summarizer contractx.TextProcessor,
	prefs PreferenceService,
	dispatcher TurnDispatcher,
	prompts Prompts,
	cfg Config,
) (*Engine, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if identities == nil {
		return nil, errors.New("identity store is required")
	}
	if verifier == nil || summarizer == nil {
		return nil, errors.New("text processors are required")
	}
	if prefs == nil {
		return nil, errors.New("preference service is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	cfg.applyDefaults()

	return &Engine{
		store:      store,
		identities: identities,
		verifier:   verifier,
		summarizer: summarizer,
		prefs:      prefs,
		dispatcher: dispatcher,
		cfg:        cfg,
		prompts:    prompts,
		now:        time.Now,
		threads:    make(map[string]*threadLock),
	}, nil
}

// Run processes one user submission for a thread. When the thread is
// suspended, the input is routed as resume data into the awaiting stage;
// otherwise it is appended as a new user turn and the stage graph is entered
// at its start.
func (e *Engine) Run(ctx context.Context, threadID, text string) (contractx.TurnResult, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return contractx.TurnResult{}, ErrInvalidThread
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return contractx.TurnResult{}, ErrInvalidMessage
	}

	unlock := e.lockThread(threadID)
	defer unlock()

	now := e.now().UTC()

	var (
		ts      turnState
		stage   string
		version int64
	)

	cp, err := e.store.LoadCheckpoint(ctx, threadID)
	switch {
	case errors.Is(err, statex.ErrCheckpointNotFound):
		sess := statex.NewSession(threadID, now)
		sess.RemainingSteps = e.cfg.StepBudget
		sess.AppendTurn(statex.RoleUser, text, now)
		ts = turnState{Session: sess}
		stage = StageSummarize
	case err != nil:
		log.Error().Err(err).Str("thread_id", threadID).Msg("load checkpoint failed")
		return contractx.TurnResult{Reply: apologyReply}, nil
	case cp.Suspension != nil:
		// Consume the token: the input resumes the stage named in it.
		ts = turnState{Session: cp.Session.Clone(), ResumeInput: text}
		stage = cp.Suspension.Stage
		version = cp.Version
	default:
		sess := cp.Session.Clone()
		sess.RemainingSteps = e.cfg.StepBudget
		sess.AppendTurn(statex.RoleUser, text, now)
		ts = turnState{Session: sess}
		stage = StageSummarize
		version = cp.Version
	}

	for {
		out, err := e.runStage(ctx, stage, &ts)
		if err != nil {
			log.Error().Err(err).
				Str("thread_id", threadID).
				Str("stage", stage).
				Msg("stage failed, returning apology")
			return contractx.TurnResult{Reply: apologyReply}, nil
		}
		ts.ResumeInput = ""

		if out.Suspend != nil {
			version++
			if err := e.saveCheckpoint(ctx, threadID, version, stage, ts.Session, out.Suspend); err != nil {
				log.Error().Err(err).Str("thread_id", threadID).Msg("save suspension checkpoint failed")
				return contractx.TurnResult{Reply: apologyReply}, nil
			}
			return contractx.TurnResult{Suspended: true, Prompt: out.Suspend.Prompt}, nil
		}

		if out.Done {
			ts.Session.AppendTurn(statex.RoleAssistant, out.Reply, e.now().UTC())
			version++
			if err := e.saveCheckpoint(ctx, threadID, version, StageSummarize, ts.Session, nil); err != nil {
				log.Error().Err(err).Str("thread_id", threadID).Msg("save terminal checkpoint failed")
				return contractx.TurnResult{Reply: apologyReply}, nil
			}
			return contractx.TurnResult{Reply: out.Reply}, nil
		}

		version++
		if err := e.saveCheckpoint(ctx, threadID, version, out.Next, ts.Session, nil); err != nil {
			log.Error().Err(err).Str("thread_id", threadID).Str("stage", stage).Msg("save checkpoint failed")
			return contractx.TurnResult{Reply: apologyReply}, nil
		}
		stage = out.Next
	}
}

func (e *Engine) runStage(ctx context.Context, stage string, ts *turnState) (stageOutcome, error) {
	switch stage {
	case StageSummarize:
		return e.summarizeConversation(ctx, ts)
	case StageVerify:
		return e.verifyCustomer(ctx, ts)
	case StageExtract:
		return e.extractPreferences(ctx, ts)
	case StageDispatch:
		return e.dispatchResponders(ctx, ts)
	case StageRecord:
		return e.savePreferences(ctx, ts)
	default:
		return stageOutcome{}, fmt.Errorf("unknown stage %q", stage)
	}
}

func (e *Engine) extractPreferences(ctx context.Context, ts *turnState) (stageOutcome, error) {
	digest, err := e.prefs.Extract(ctx, ts.Session.CustomerID)
	if err != nil {
		return stageOutcome{}, err
	}
	ts.Session.LoadedPreferences = digest
	return proceed(StageDispatch), nil
}

func (e *Engine) dispatchResponders(ctx context.Context, ts *turnState) (stageOutcome, error) {
	if ts.Session.CustomerID == "" {
		return stageOutcome{}, contractx.ErrIdentityRequired
	}
	reply, err := e.dispatcher.Dispatch(ctx, ts.Session)
	if err != nil {
		return stageOutcome{}, err
	}
	ts.Draft = reply
	return proceed(StageRecord), nil
}

func (e *Engine) savePreferences(ctx context.Context, ts *turnState) (stageOutcome, error) {
	if err := e.prefs.Record(ctx, ts.Session); err != nil {
		return stageOutcome{}, err
	}
	return finish(ts.Draft), nil
}

func (e *Engine) saveCheckpoint(
	ctx context.Context,
	threadID string,
	version int64,
	nextStage string,
	sess *statex.Session,
	token *statex.SuspensionToken,
) error {
	return e.store.SaveCheckpoint(ctx, &statex.Checkpoint{
		ThreadID:   threadID,
		Version:    version,
		NextStage:  nextStage,
		Session:    sess.Clone(),
		Suspension: token,
		CreatedAt:  e.now().UTC(),
	})
}

// lockThread serializes turns per thread; distinct threads do not contend.
// The registry entry is removed when the last holder releases it, so the map
// does not grow with every thread ever seen.
func (e *Engine) lockThread(threadID string) func() {
	e.mu.Lock()
	l, ok := e.threads[threadID]
	if !ok {
		l = &threadLock{}
		e.threads[threadID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.threads, threadID)
		}
		e.mu.Unlock()
	}
}
