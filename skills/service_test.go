package skills

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tessera-ai/tessera-go/core"
)

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := core.NewClient("test-key", server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return New(client)
}

func TestInvoke(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/skills/s-1/invoke" {
			t.Errorf("Path = %q, want /skills/s-1/invoke", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var params InvokeParams
		if err := json.Unmarshal(body, &params); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if string(params.Input) != `{"city":"Tokyo"}` {
			t.Errorf("Input = %s", params.Input)
		}
		w.Write([]byte(`{"data":{"output":{"temp":21},"sessionId":"sess-1"},"meta":{"requestId":"req-1"}}`))
	})

	result, err := svc.Invoke(context.Background(), "s-1", InvokeParams{Input: json.RawMessage(`{"city":"Tokyo"}`)})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", result.SessionID)
	}
	var out struct {
		Temp int `json:"temp"`
	}
	if err := json.Unmarshal(result.Output, &out); err != nil || out.Temp != 21 {
		t.Errorf("Output = %s, err = %v", result.Output, err)
	}
}

func TestInvokeStream(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/skills/s-1/invoke/stream" {
			t.Errorf("Path = %q, want /skills/s-1/invoke/stream", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"type":"delta","phase":"do","data":{"content":"a"},"timestamp":"2026-08-31T12:00:00Z"}`+"\n\n")
		io.WriteString(w, `data: {"type":"complete","phase":"act","data":{"sessionId":"sess-2"},"timestamp":"2026-08-31T12:00:01Z"}`+"\n\n")
	})

	stream, err := svc.InvokeStream(context.Background(), "s-1", InvokeParams{Input: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("InvokeStream() error = %v", err)
	}

	completion, err := stream.Subscribe(context.Background(), core.StreamHandlers{})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(completion, &payload); err != nil || payload.SessionID != "sess-2" {
		t.Errorf("completion = %s, err = %v", completion, err)
	}
}

func TestListAll(t *testing.T) {
	pages := 0
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		pages++
		page := r.URL.Query().Get("page")
		w.Write([]byte(`{"data":[{"id":"s-` + page + `","name":"skill"}],` +
			`"meta":{"requestId":"req","pagination":{"page":` + page + `,"limit":1,"total":2,"totalPages":2}}}`))
	})

	items, err := svc.ListAll(context.Background(), ListParams{Limit: 1})
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if pages != 2 || len(items) != 2 {
		t.Errorf("pages = %d, items = %d, want 2 and 2", pages, len(items))
	}
}
