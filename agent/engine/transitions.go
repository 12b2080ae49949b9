package engine

import statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"

// Stage names. They are persisted inside checkpoints and suspension tokens,
// so changing one invalidates in-flight threads.
const (
	StageSummarize = "summarize_conversation"
	StageVerify    = "verify_customer"
	StageExtract   = "extract_preferences"
	StageDispatch  = "dispatch_responders"
	StageRecord    = "save_preferences"
)

// turnState is the in-memory scratchpad for one engine turn. It never
// outlives the Run call; everything durable lives in the session checkpoint.
type turnState struct {
	Session *statex.Session

	// ResumeInput carries the user's answer to a suspension prompt. It is
	// consumed by the first stage that runs and never replayed.
	ResumeInput string

	// Draft holds the dispatcher's assembled reply until the terminal stage
	// returns it.
	Draft string
}

// stageOutcome is what one stage execution produced: the next stage to run,
// a suspension, or a terminal reply.
type stageOutcome struct {
	Next    string
	Suspend *statex.SuspensionToken
	Reply   string
	Done    bool
}

func proceed(next string) stageOutcome {
	return stageOutcome{Next: next}
}

func finish(reply string) stageOutcome {
	return stageOutcome{Reply: reply, Done: true}
}
