package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	"github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/engine"
)

type fakeEngine struct {
	result     contractx.TurnResult
	err        error
	lastThread string
	lastText   string
}

func (f *fakeEngine) Run(ctx context.Context, threadID, text string) (contractx.TurnResult, error) {
	f.lastThread = threadID
	f.lastText = text
	return f.result, f.err
}

func postMessage(t *testing.T, eng TurnRunner, thread, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/threads/"+thread+"/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewHandler(eng).Routes().ServeHTTP(rec, req)
	return rec
}

func TestPostMessageReturnsReply(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{result: contractx.TurnResult{Reply: "Here are your invoices."}}
	rec := postMessage(t, eng, "thread-1", `{"message":"show my invoices"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res contractx.TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Reply != "Here are your invoices." || res.Suspended {
		t.Fatalf("unexpected result: %+v", res)
	}
	if eng.lastThread != "thread-1" || eng.lastText != "show my invoices" {
		t.Fatalf("engine saw %q/%q", eng.lastThread, eng.lastText)
	}
}

func TestPostMessageReturnsSuspension(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{result: contractx.TurnResult{
		Suspended: true,
		Prompt:    "Please provide your phone number or email for verification.",
	}}
	rec := postMessage(t, eng, "thread-1", `{"message":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res contractx.TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Suspended || res.Prompt == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestPostMessageBadJSON(t *testing.T) {
	t.Parallel()

	rec := postMessage(t, &fakeEngine{}, "thread-1", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageEmptyMessage(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{err: engine.ErrInvalidMessage}
	rec := postMessage(t, eng, "thread-1", `{"message":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageInternalError(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{err: errors.New("redis down")}
	rec := postMessage(t, eng, "thread-1", `{"message":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	NewHandler(&fakeEngine{}).Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
