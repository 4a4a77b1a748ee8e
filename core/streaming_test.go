package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// closeRecorder wraps a reader and records Close calls.
type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

// failingReader yields some bytes, then a read error.
type failingReader struct {
	data []byte
	err  error
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		n := copy(p, r.data)
		return n, nil
	}
	return 0, r.err
}

func (r *failingReader) Close() error { return nil }

func streamFrom(t *testing.T, wire string) (*Stream, *closeRecorder) {
	t.Helper()
	body := &closeRecorder{Reader: strings.NewReader(wire)}
	s, err := NewStream(&http.Response{StatusCode: 200, Body: body})
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	return s, body
}

func event(eventType, phase, data string) string {
	return `data: {"type":"` + eventType + `","phase":"` + phase + `","data":` + data +
		`,"timestamp":"2026-08-31T12:00:00Z","visibility":"prominent"}` + "\n\n"
}

func TestStreamIteration(t *testing.T) {
	wire := event("connected", "plan", `{}`) +
		event("delta", "do", `{"content":"Hello"}`) +
		event("delta", "do", `{"content":" World"}`) +
		event("complete", "act", `{"sessionId":"s-1"}`)

	s, body := streamFrom(t, wire)

	var types []EventType
	var contents []string
	for s.Next() {
		ev := s.Current()
		types = append(types, ev.Type)
		if ev.Type == EventDelta {
			contents = append(contents, ev.DeltaContent())
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	wantTypes := []EventType{EventConnected, EventDelta, EventDelta, EventComplete}
	if len(types) != len(wantTypes) {
		t.Fatalf("event count = %d, want %d", len(types), len(wantTypes))
	}
	for i := range wantTypes {
		if types[i] != wantTypes[i] {
			t.Errorf("types[%d] = %q, want %q", i, types[i], wantTypes[i])
		}
	}
	if len(contents) != 2 || contents[0] != "Hello" || contents[1] != " World" {
		t.Errorf("delta contents = %v, want [Hello,  World]", contents)
	}
	if body.closed == 0 {
		t.Error("body not closed after iteration")
	}
}

func TestStreamCollectText(t *testing.T) {
	wire := event("connected", "plan", `{}`) +
		event("delta", "do", `{"content":"Hello"}`) +
		event("thinking_start", "plan", `{}`) +
		event("delta", "do", `{"content":" "}`) +
		event("delta", "do", `{"content":"World"}`) +
		event("complete", "act", `{}`)

	s, _ := streamFrom(t, wire)
	text, err := s.CollectText(context.Background())
	if err != nil {
		t.Fatalf("CollectText() error = %v", err)
	}
	if text != "Hello World" {
		t.Errorf("text = %q, want %q", text, "Hello World")
	}
}

func TestStreamSinglePass(t *testing.T) {
	t.Run("collect after collect", func(t *testing.T) {
		s, _ := streamFrom(t, event("delta", "do", `{"content":"x"}`))
		if _, err := s.CollectText(context.Background()); err != nil {
			t.Fatalf("first CollectText() error = %v", err)
		}
		if _, err := s.CollectText(context.Background()); !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("second CollectText() error = %v, want ErrStreamConsumed", err)
		}
	})

	t.Run("subscribe after iteration", func(t *testing.T) {
		s, _ := streamFrom(t, event("delta", "do", `{"content":"x"}`))
		for s.Next() {
		}
		if _, err := s.Subscribe(context.Background(), StreamHandlers{}); !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("Subscribe() error = %v, want ErrStreamConsumed", err)
		}
	})

	t.Run("next after drain reports consumed", func(t *testing.T) {
		s, _ := streamFrom(t, event("delta", "do", `{"content":"x"}`))
		for s.Next() {
		}
		if err := s.Err(); err != nil {
			t.Fatalf("Err() after clean drain = %v, want nil", err)
		}
		if s.Next() {
			t.Error("Next() after drain = true, want false")
		}
		if !errors.Is(s.Err(), ErrStreamConsumed) {
			t.Errorf("Err() = %v, want ErrStreamConsumed", s.Err())
		}
	})

	t.Run("subscribe mid-iteration", func(t *testing.T) {
		s, _ := streamFrom(t, event("delta", "do", `{"content":"x"}`)+event("complete", "act", `{}`))
		if !s.Next() {
			t.Fatal("Next() = false, want true")
		}
		if _, err := s.Subscribe(context.Background(), StreamHandlers{}); !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("Subscribe() error = %v, want ErrStreamConsumed", err)
		}
	})
}

func TestStreamBlankRecords(t *testing.T) {
	s, _ := streamFrom(t, "\n\n   \n\n")
	count := 0
	for s.Next() {
		count++
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if count != 0 {
		t.Errorf("events = %d, want 0", count)
	}
}

func TestStreamSubscribe(t *testing.T) {
	wire := event("thinking_start", "plan", `{}`) +
		event("delta", "do", `{"content":"Hi"}`) +
		event("complete", "act", `{"sessionId":"s-1"}`)

	s, _ := streamFrom(t, wire)

	var deltas []string
	thinking := 0
	every := 0
	completion, err := s.Subscribe(context.Background(), StreamHandlers{
		OnEvent:    func(StreamEvent) { every++ },
		OnDelta:    func(content string) { deltas = append(deltas, content) },
		OnThinking: func(StreamEvent) { thinking++ },
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if every != 3 {
		t.Errorf("OnEvent calls = %d, want 3", every)
	}
	if len(deltas) != 1 || deltas[0] != "Hi" {
		t.Errorf("deltas = %v, want [Hi]", deltas)
	}
	if thinking != 1 {
		t.Errorf("OnThinking calls = %d, want 1", thinking)
	}

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(completion, &payload); err != nil {
		t.Fatalf("unmarshal completion: %v", err)
	}
	if payload.SessionID != "s-1" {
		t.Errorf("sessionId = %q, want s-1", payload.SessionID)
	}
}

func TestStreamPayloadInterpretation(t *testing.T) {
	t.Run("plain text becomes synthetic delta", func(t *testing.T) {
		s, _ := streamFrom(t, "data: token out\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		ev := s.Current()
		if ev.Type != EventDelta {
			t.Errorf("Type = %q, want delta", ev.Type)
		}
		if ev.Phase != PhaseDo {
			t.Errorf("Phase = %q, want do", ev.Phase)
		}
		if got := ev.DeltaContent(); got != "token out" {
			t.Errorf("content = %q, want %q", got, "token out")
		}
		if ev.Timestamp == "" {
			t.Error("Timestamp empty, want synthesized")
		}
	})

	t.Run("unshaped json is wrapped with event hint", func(t *testing.T) {
		s, _ := streamFrom(t, "event: status\ndata: {\"ready\":true}\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		ev := s.Current()
		if ev.Type != EventType("status") {
			t.Errorf("Type = %q, want status", ev.Type)
		}
		if ev.Visibility != VisibilityProminent {
			t.Errorf("Visibility = %q, want prominent", ev.Visibility)
		}
		var payload struct {
			Ready bool `json:"ready"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil || !payload.Ready {
			t.Errorf("Data = %s, err = %v", ev.Data, err)
		}
	})

	t.Run("unshaped json without hint becomes message", func(t *testing.T) {
		s, _ := streamFrom(t, "data: {\"ready\":true}\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().Type; got != EventMessage {
			t.Errorf("Type = %q, want message", got)
		}
	})

	t.Run("shaped events pass through untouched", func(t *testing.T) {
		s, _ := streamFrom(t, event("citation", "check", `{"source":"doc-1"}`))
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		ev := s.Current()
		if ev.Type != EventCitation || ev.Phase != PhaseCheck {
			t.Errorf("event = %+v", ev)
		}
		if ev.Timestamp != "2026-08-31T12:00:00Z" {
			t.Errorf("Timestamp = %q, want original", ev.Timestamp)
		}
	})
}

func TestStreamWireFormat(t *testing.T) {
	t.Run("multiple data lines concatenate", func(t *testing.T) {
		s, _ := streamFrom(t, "data: {\"type\":\"delta\",\"phase\":\"do\",\ndata: \"data\":{\"content\":\"ab\"},\ndata: \"timestamp\":\"2026-08-31T12:00:00Z\"}\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().DeltaContent(); got != "ab" {
			t.Errorf("content = %q, want ab", got)
		}
	})

	t.Run("comment id and retry lines ignored", func(t *testing.T) {
		s, _ := streamFrom(t, ": keepalive\nid: 42\nretry: 5000\ndata: plain\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().DeltaContent(); got != "plain" {
			t.Errorf("content = %q, want plain", got)
		}
	})

	t.Run("only one leading space stripped", func(t *testing.T) {
		s, _ := streamFrom(t, "data:  two spaces\n\n")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().DeltaContent(); got != " two spaces" {
			t.Errorf("content = %q, want %q", got, " two spaces")
		}
	})

	t.Run("trailing record without delimiter flushes on EOF", func(t *testing.T) {
		s, _ := streamFrom(t, "data: {\"type\":\"complete\",\"phase\":\"act\",\"data\":{},\"timestamp\":\"2026-08-31T12:00:00Z\"}")
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().Type; got != EventComplete {
			t.Errorf("Type = %q, want complete", got)
		}
		if s.Next() {
			t.Error("Next() = true after final record")
		}
	})

	t.Run("split utf-8 rune across reads survives", func(t *testing.T) {
		payload := "data: {\"type\":\"delta\",\"phase\":\"do\",\"data\":{\"content\":\"héllo\"},\"timestamp\":\"2026-08-31T12:00:00Z\"}\n\n"
		wire := []byte(payload)
		// Cut inside the two-byte é sequence.
		cut := strings.Index(payload, "h") + 2
		body := &closeRecorder{Reader: io.MultiReader(
			strings.NewReader(string(wire[:cut])),
			strings.NewReader(string(wire[cut:])),
		)}
		s, err := NewStream(&http.Response{StatusCode: 200, Body: body})
		if err != nil {
			t.Fatalf("NewStream() error = %v", err)
		}
		if !s.Next() {
			t.Fatalf("Next() = false, err = %v", s.Err())
		}
		if got := s.Current().DeltaContent(); got != "héllo" {
			t.Errorf("content = %q, want héllo", got)
		}
	})
}

func TestStreamFailures(t *testing.T) {
	t.Run("missing body", func(t *testing.T) {
		_, err := NewStream(&http.Response{StatusCode: 200, Body: nil})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.Kind != KindConnection {
			t.Errorf("Kind = %q, want connection", apiErr.Kind)
		}
		if !strings.Contains(apiErr.Message, "no stream available") {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("mid-stream read failure", func(t *testing.T) {
		body := &failingReader{
			data: []byte(event("delta", "do", `{"content":"a"}`)),
			err:  errors.New("connection reset"),
		}
		s, err := NewStream(&http.Response{StatusCode: 200, Body: body})
		if err != nil {
			t.Fatalf("NewStream() error = %v", err)
		}

		if !s.Next() {
			t.Fatalf("first Next() = false, err = %v", s.Err())
		}
		if s.Next() {
			t.Error("second Next() = true, want false")
		}
		var apiErr *APIError
		if !errors.As(s.Err(), &apiErr) || apiErr.Kind != KindConnection {
			t.Errorf("Err() = %v, want connection APIError", s.Err())
		}
	})

	t.Run("read failure routes to error callback", func(t *testing.T) {
		body := &failingReader{err: errors.New("connection reset")}
		s, err := NewStream(&http.Response{StatusCode: 200, Body: body})
		if err != nil {
			t.Fatalf("NewStream() error = %v", err)
		}

		var seen error
		_, err = s.Subscribe(context.Background(), StreamHandlers{
			OnError: func(e error) { seen = e },
		})
		if err != nil {
			t.Errorf("Subscribe() error = %v, want nil (handler swallows)", err)
		}
		if seen == nil {
			t.Error("OnError not invoked")
		}
	})

	t.Run("server error event dispatched to callback", func(t *testing.T) {
		wire := event("error", "check", `{"code":"EXEC_FAILED","message":"cell exploded"}`)
		s, _ := streamFrom(t, wire)

		var seen *APIError
		_, err := s.Subscribe(context.Background(), StreamHandlers{
			OnError: func(e error) { errors.As(e, &seen) },
		})
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if seen == nil {
			t.Fatal("OnError not invoked")
		}
		if seen.Code != "EXEC_FAILED" {
			t.Errorf("Code = %q, want EXEC_FAILED", seen.Code)
		}
	})

	t.Run("close releases body and ends iteration", func(t *testing.T) {
		s, body := streamFrom(t, event("delta", "do", `{"content":"a"}`)+event("delta", "do", `{"content":"b"}`))
		if !s.Next() {
			t.Fatal("Next() = false, want true")
		}
		s.Close()
		if body.closed == 0 {
			t.Error("body not closed")
		}
		s.Close() // idempotent
		if body.closed != 1 {
			t.Errorf("body closed %d times, want 1", body.closed)
		}
	})

	t.Run("subscribe honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s, body := streamFrom(t, event("delta", "do", `{"content":"a"}`))
		_, err := s.Subscribe(ctx, StreamHandlers{})
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Kind != KindConnection {
			t.Errorf("Subscribe() error = %v, want connection APIError", err)
		}
		if body.closed == 0 {
			t.Error("body not closed on cancellation")
		}
	})
}
