package processor

import (
	"errors"
	"testing"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	statex "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/state"
	"github.com/cloudwego/eino/schema"
)

func TestExtractJSONObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "bare object", content: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", content: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounded by prose", content: `Sure! Here you go: {"a":1} Hope that helps.`, want: `{"a":1}`},
		{name: "nested braces", content: `{"a":{"b":2}}`, want: `{"a":{"b":2}}`},
		{name: "no object", content: "I cannot answer that.", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := extractJSONObject(tc.content)
			if tc.wantErr {
				if !errors.Is(err, contractx.ErrSchemaViolation) {
					t.Fatalf("expected ErrSchemaViolation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractJSONObject() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("extractJSONObject() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToMessages(t *testing.T) {
	t.Parallel()

	msgs := toMessages([]statex.Turn{
		{Role: statex.RoleUser, Content: "hello"},
		{Role: statex.RoleAssistant, Content: "hi"},
		{Role: "something_else", Content: "fallback"},
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != schema.User || msgs[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != schema.Assistant || msgs[1].Content != "hi" {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
	// Unknown roles degrade to user messages instead of dropping content.
	if msgs[2].Role != schema.User {
		t.Fatalf("unexpected third message role: %v", msgs[2].Role)
	}
}
