package core

import (
	"encoding/json"
	"testing"
)

func TestEventTypeIsThinking(t *testing.T) {
	thinking := []EventType{EventThinkingStart, EventAnalysisResult, EventDecisionTrace, EventPDCAStep, EventThinkingComplete}
	for _, et := range thinking {
		if !et.IsThinking() {
			t.Errorf("%q.IsThinking() = false, want true", et)
		}
	}
	others := []EventType{EventConnected, EventDelta, EventComplete, EventError, EventCitation, EventMessage}
	for _, et := range others {
		if et.IsThinking() {
			t.Errorf("%q.IsThinking() = true, want false", et)
		}
	}
}

func TestDeltaContent(t *testing.T) {
	t.Run("delta with content", func(t *testing.T) {
		ev := StreamEvent{Type: EventDelta, Data: json.RawMessage(`{"content":"hi"}`)}
		if got := ev.DeltaContent(); got != "hi" {
			t.Errorf("DeltaContent() = %q, want hi", got)
		}
	})

	t.Run("non-delta yields empty", func(t *testing.T) {
		ev := StreamEvent{Type: EventComplete, Data: json.RawMessage(`{"content":"hi"}`)}
		if got := ev.DeltaContent(); got != "" {
			t.Errorf("DeltaContent() = %q, want empty", got)
		}
	})

	t.Run("callable on a returned value", func(t *testing.T) {
		// Callers chain off Current() and other value-returning accessors,
		// so the method must not require an addressable receiver.
		emit := func() StreamEvent {
			return StreamEvent{Type: EventDelta, Data: json.RawMessage(`{"content":"chained"}`)}
		}
		if got := emit().DeltaContent(); got != "chained" {
			t.Errorf("DeltaContent() = %q, want chained", got)
		}
	})

	t.Run("missing data yields empty", func(t *testing.T) {
		ev := StreamEvent{Type: EventDelta}
		if got := ev.DeltaContent(); got != "" {
			t.Errorf("DeltaContent() = %q, want empty", got)
		}
	})
}

func TestStreamEventRoundTrip(t *testing.T) {
	delay := 250
	in := StreamEvent{
		Type:           EventPDCAStep,
		Phase:          PhaseCheck,
		Data:           json.RawMessage(`{"step":"verify"}`),
		Timestamp:      "2026-08-31T12:00:00Z",
		Visibility:     VisibilityDetail,
		SuggestedDelay: &delay,
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out StreamEvent
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Type != EventPDCAStep || out.Phase != PhaseCheck || out.Visibility != VisibilityDetail {
		t.Errorf("round trip = %+v", out)
	}
	if out.SuggestedDelay == nil || *out.SuggestedDelay != 250 {
		t.Errorf("SuggestedDelay = %v, want 250", out.SuggestedDelay)
	}
}
