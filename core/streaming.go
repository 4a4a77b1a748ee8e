package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStreamConsumed is returned when a stream is consumed a second time.
// Streams are single-pass: once the underlying bytes have been drained by
// one consumption method, every later attempt fails with this error instead
// of silently yielding nothing.
var ErrStreamConsumed = errors.New("stream already consumed: a Stream can be read only once")

// recordSeparator is the SSE blank-line event delimiter.
var recordSeparator = []byte("\n\n")

type streamState int

const (
	streamUnconsumed streamState = iota
	streamConsuming
	streamExhausted
)

// Stream decodes an SSE response body into typed stream events, exactly once.
// It owns the body for the duration of the pass and closes it on every exit
// path: normal completion, early Close, or read failure.
//
// Stream is not safe for concurrent use; one goroutine consumes it.
type Stream struct {
	body  io.ReadCloser
	chunk []byte
	buf   []byte

	state   streamState
	eof     bool
	done    bool
	closed  bool
	pending []StreamEvent
	cur     StreamEvent
	err     error

	now func() time.Time
}

// StreamHandlers bundles the callbacks for Subscribe. Every field is
// optional; nil callbacks are skipped.
type StreamHandlers struct {
	// OnEvent receives every event in arrival order.
	OnEvent func(StreamEvent)

	// OnDelta receives the content of each delta event.
	OnDelta func(content string)

	// OnThinking receives every thinking-trace event (thinking_start,
	// analysis_result, decision_trace, pdca_step, thinking_complete).
	OnThinking func(StreamEvent)

	// OnComplete receives the payload of each complete event.
	OnComplete func(data json.RawMessage)

	// OnError receives stream failures and server error events. When nil,
	// failures are returned from Subscribe instead.
	OnError func(err error)
}

// NewStream wraps a raw streaming response. It fails with a connection-kind
// error when the response has no readable body.
func NewStream(resp *http.Response) (*Stream, error) {
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		return nil, newConnectionError("no stream available", nil)
	}
	return &Stream{
		body:  resp.Body,
		chunk: make([]byte, 4096),
		now:   time.Now,
	}, nil
}

// Next advances to the next event. It returns false when the stream ends or
// fails; check Err afterwards. Calling Next again after the stream has been
// fully drained reports the already-consumed error through Err.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}
	if s.done {
		s.err = ErrStreamConsumed
		return false
	}
	s.state = streamConsuming

	for len(s.pending) == 0 {
		if s.eof || s.closed {
			s.finish()
			return false
		}
		if !s.fill() {
			return false
		}
	}

	s.cur = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Current returns the event read by the last successful Next.
func (s *Stream) Current() StreamEvent {
	return s.cur
}

// Err returns the terminal error, nil after a clean end of stream.
func (s *Stream) Err() error {
	return s.err
}

// Close aborts the stream. Errors from the underlying byte source are
// ignored; Close is safe to call multiple times and after completion.
func (s *Stream) Close() {
	s.closeBody()
	s.finish()
}

// Subscribe drives the full iteration, dispatching each event to the
// registered callbacks, and returns the payload of the last complete event
// seen, if any. When no OnError callback is registered, failures are
// returned; otherwise they are delivered to it and swallowed.
func (s *Stream) Subscribe(ctx context.Context, h StreamHandlers) (json.RawMessage, error) {
	fail := func(err error) (json.RawMessage, error) {
		if h.OnError != nil {
			h.OnError(err)
			return nil, nil
		}
		return nil, err
	}

	if err := s.begin(); err != nil {
		return fail(err)
	}

	var completion json.RawMessage
	for s.Next() {
		if err := ctx.Err(); err != nil {
			s.Close()
			return fail(newConnectionError("stream canceled", err))
		}

		ev := s.Current()
		if h.OnEvent != nil {
			h.OnEvent(ev)
		}

		switch {
		case ev.Type == EventDelta:
			if h.OnDelta != nil {
				h.OnDelta(ev.DeltaContent())
			}
		case ev.Type.IsThinking():
			if h.OnThinking != nil {
				h.OnThinking(ev)
			}
		case ev.Type == EventComplete:
			completion = ev.Data
			if h.OnComplete != nil {
				h.OnComplete(ev.Data)
			}
		case ev.Type == EventError:
			if h.OnError != nil {
				h.OnError(serverEventError(ev))
			}
		}
	}

	if err := s.Err(); err != nil {
		if h.OnError != nil {
			h.OnError(err)
			return completion, nil
		}
		return completion, err
	}
	return completion, nil
}

// CollectText drives the full iteration and returns every delta event's
// content concatenated in order. All other event types are discarded.
func (s *Stream) CollectText(ctx context.Context) (string, error) {
	if err := s.begin(); err != nil {
		return "", err
	}

	var text strings.Builder
	for s.Next() {
		if err := ctx.Err(); err != nil {
			s.Close()
			return text.String(), newConnectionError("stream canceled", err)
		}
		if ev := s.Current(); ev.Type == EventDelta {
			text.WriteString(ev.DeltaContent())
		}
	}
	if err := s.Err(); err != nil {
		return text.String(), err
	}
	return text.String(), nil
}

// begin guards the top-level consumption modes: only an unconsumed stream
// may start a pass.
func (s *Stream) begin() error {
	if s.state != streamUnconsumed {
		return ErrStreamConsumed
	}
	s.state = streamConsuming
	return nil
}

// fill reads one chunk from the body into the buffer and parses any complete
// records. It reports false when iteration cannot continue.
func (s *Stream) fill() bool {
	n, err := s.body.Read(s.chunk)
	if n > 0 {
		s.buf = append(s.buf, s.chunk[:n]...)
		s.drain()
	}
	if err != nil {
		if err == io.EOF {
			s.eof = true
			s.flush()
			s.closeBody()
			return true
		}
		s.err = newConnectionError("stream read failed", err)
		s.closeBody()
		s.finish()
		return false
	}
	return true
}

// drain splits the buffer on the record separator, parsing every complete
// segment in order. The trailing incomplete segment stays buffered.
func (s *Stream) drain() {
	for {
		i := bytes.Index(s.buf, recordSeparator)
		if i < 0 {
			return
		}
		segment := string(s.buf[:i])
		s.buf = s.buf[i+len(recordSeparator):]
		if ev, ok := s.parseSegment(segment); ok {
			s.pending = append(s.pending, ev)
		}
	}
}

// flush pushes any non-whitespace remainder through the segment parser at
// end of stream.
func (s *Stream) flush() {
	rest := string(s.buf)
	s.buf = nil
	if strings.TrimSpace(rest) == "" {
		return
	}
	if ev, ok := s.parseSegment(rest); ok {
		s.pending = append(s.pending, ev)
	}
}

// finish marks the stream exhausted once everything buffered was delivered.
func (s *Stream) finish() {
	s.state = streamExhausted
	if len(s.pending) == 0 {
		s.done = true
	}
}

func (s *Stream) closeBody() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.body.Close()
}

// parseSegment scans one SSE record: data: payloads accumulate, the last
// event: line becomes the type hint, id:/retry:/comment lines are ignored.
// A record with no data payload yields no event.
func (s *Stream) parseSegment(segment string) (StreamEvent, bool) {
	var data strings.Builder
	var hint string
	hasData := false

	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, ":"):
			// Comment line.
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimPrefix(line, "data:")
			payload = strings.TrimPrefix(payload, " ")
			data.WriteString(payload)
			hasData = true
		case strings.HasPrefix(line, "event:"):
			hint = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
			// Ignored per protocol.
		}
	}

	if !hasData || data.Len() == 0 {
		return StreamEvent{}, false
	}
	return s.interpretPayload(data.String(), hint), true
}

// interpretPayload decodes one accumulated data string. Fully-formed events
// (a JSON object with both type and a defined timestamp) pass through as-is;
// other JSON is wrapped as a message-phase event; non-JSON text becomes a
// synthetic delta.
func (s *Stream) interpretPayload(data, hint string) StreamEvent {
	raw := []byte(data)

	var probe struct {
		Type      string           `json:"type"`
		Timestamp *json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil {
		if probe.Type != "" && probe.Timestamp != nil {
			var ev StreamEvent
			if err := json.Unmarshal(raw, &ev); err == nil {
				return ev
			}
		}
	}

	if json.Valid(raw) {
		eventType := EventMessage
		if hint != "" {
			eventType = EventType(hint)
		}
		return StreamEvent{
			Type:       eventType,
			Phase:      PhaseDo,
			Data:       json.RawMessage(raw),
			Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
			Visibility: VisibilityProminent,
		}
	}

	content, _ := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: data})
	return StreamEvent{
		Type:       EventDelta,
		Phase:      PhaseDo,
		Data:       content,
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
		Visibility: VisibilityProminent,
	}
}

// serverEventError converts a server-sent error event into a typed APIError.
func serverEventError(ev StreamEvent) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(ev.Data, &payload)
	if payload.Code == "" {
		payload.Code = "STREAM_ERROR"
	}
	if payload.Message == "" {
		payload.Message = "stream reported an error"
	}
	return &APIError{
		Kind:      KindAPI,
		Code:      payload.Code,
		Message:   payload.Message,
		RequestID: unknownRequestID,
		Err:       ErrServer,
	}
}
