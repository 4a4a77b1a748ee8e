package core

import "encoding/json"

// EventType identifies one kind of stream event. The set is closed; servers
// emitting an unknown type still parse, but consumers should treat anything
// outside this enumeration as opaque.
type EventType string

const (
	// Connection and session lifecycle.
	EventConnected    EventType = "connected"
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"

	// Thinking trace.
	EventThinkingStart    EventType = "thinking_start"
	EventAnalysisResult   EventType = "analysis_result"
	EventDecisionTrace    EventType = "decision_trace"
	EventPDCAStep         EventType = "pdca_step"
	EventThinkingComplete EventType = "thinking_complete"

	// Execution and generation lifecycle.
	EventExecutionStart     EventType = "execution_start"
	EventExecutionComplete  EventType = "execution_complete"
	EventGenerationStart    EventType = "generation_start"
	EventGenerationComplete EventType = "generation_complete"

	// Content.
	EventDelta EventType = "delta"

	// Retrieval and citations.
	EventRetrievalStart  EventType = "retrieval_start"
	EventRetrievalResult EventType = "retrieval_result"
	EventCitation        EventType = "citation"

	// Tool calls.
	EventToolCallStart    EventType = "tool_call_start"
	EventToolCallResult   EventType = "tool_call_result"
	EventToolCallComplete EventType = "tool_call_complete"

	// Terminal.
	EventUsage    EventType = "usage"
	EventComplete EventType = "complete"
	EventError    EventType = "error"

	// EventMessage is the fallback type for JSON payloads the server did
	// not shape as stream events.
	EventMessage EventType = "message"
)

// IsThinking reports whether the type belongs to the thinking trace family.
func (t EventType) IsThinking() bool {
	switch t {
	case EventThinkingStart, EventAnalysisResult, EventDecisionTrace,
		EventPDCAStep, EventThinkingComplete:
		return true
	default:
		return false
	}
}

// Phase is the stage of the server's plan-do-check-act cycle that produced
// an event.
type Phase string

const (
	PhasePlan  Phase = "plan"
	PhaseDo    Phase = "do"
	PhaseCheck Phase = "check"
	PhaseAct   Phase = "act"
)

// Visibility is a UI surfacing hint. The parser carries it through without
// enforcement.
type Visibility string

const (
	VisibilityProminent Visibility = "prominent"
	VisibilityDetail    Visibility = "detail"
	VisibilityHidden    Visibility = "hidden"
)

// StreamEvent is one typed event decoded from the SSE wire format.
type StreamEvent struct {
	Type           EventType       `json:"type"`
	Phase          Phase           `json:"phase,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      string          `json:"timestamp"`
	Visibility     Visibility      `json:"visibility,omitempty"`
	SuggestedDelay *int            `json:"suggestedDelay,omitempty"`
}

// DeltaContent returns the content field of a delta event's payload, or ""
// for any other event.
func (e StreamEvent) DeltaContent() string {
	if e.Type != EventDelta || len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return ""
	}
	return payload.Content
}
