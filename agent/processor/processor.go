package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
)

const jsonOnlyInstruction = "\n\nRespond with a single JSON object only. No prose, no code fences."

// LLM implements the TextProcessor capability over a compiled eino graph.
type LLM struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.TextProcessor = (*LLM)(nil)

func New(ctx context.Context, chatModel einomodel.BaseChatModel, graphName string) (*LLM, error) {
	runner, err := compileCompletionGraph(ctx, chatModel, graphName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &LLM{runner: runner}, nil
}

func (l *LLM) Complete(ctx context.Context, system string, turns []statex.Turn) (string, error) {
	msg, err := l.invoke(ctx, system, turns)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: model returned empty content", contractx.ErrSchemaViolation)
	}
	return content, nil
}

func (l *LLM) CompleteStructured(ctx context.Context, system string, turns []statex.Turn, out any) error {
	msg, err := l.invoke(ctx, system+jsonOnlyInstruction, turns)
	if err != nil {
		return err
	}

	payload, err := extractJSONObject(msg.Content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("%w: decode structured output: %v", contractx.ErrSchemaViolation, err)
	}
	return nil
}

func (l *LLM) invoke(ctx context.Context, system string, turns []statex.Turn) (*schema.Message, error) {
	msg, err := l.runner.Invoke(ctx, map[string]any{
		"system":       system,
		"conversation": toMessages(turns),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: model returned no message", contractx.ErrModelInvoke)
	}
	return msg, nil
}

func toMessages(turns []statex.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case statex.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(t.Content))
		}
	}
	return msgs
}

// extractJSONObject tolerates models that wrap the object in fences or text.
func extractJSONObject(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in model output", contractx.ErrSchemaViolation)
	}
	return trimmed[start : end+1], nil
}
