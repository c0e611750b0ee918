package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart is published before every backend call.
	EventTypeStart EventType = "start"
	EventTypeFinal EventType = "final"
	EventTypeError EventType = "error"

	// Model requested a tool call
	EventTypeToolCall EventType = "tool-call"
	// Execution-phase events (we are actually executing tools locally)
	EventTypeToolCallExecute         EventType = "tool-call-execute"
	EventTypeToolCallExecutionResult EventType = "tool-call-execution-result"

	// Backend unreachable, answered by the offline responder
	EventTypeFallback EventType = "fallback"
	// An artifact was stored in the repository
	EventTypeArtifact EventType = "artifact"

	EventTypeInfo EventType = "info"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta"`

	// raw JSON when the event was decoded by NewEventFromJson
	payload []byte
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

var _ Event = &EventImpl{}

// EventMetadata travels with every event.
type EventMetadata struct {
	ID         uuid.UUID      `json:"message_id" yaml:"message_id"`
	SessionID  string         `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	TurnID     string         `json:"turn_id,omitempty" yaml:"turn_id,omitempty"`
	Iteration  int            `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	Provider   string         `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model      string         `json:"model,omitempty" yaml:"model,omitempty"`
	DurationMs *int64         `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Extra      map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// NewMetadata returns metadata with a fresh message id.
func NewMetadata() EventMetadata {
	return EventMetadata{ID: uuid.New()}
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.SessionID != "" {
		e.Str("session_id", em.SessionID)
	}
	if em.TurnID != "" {
		e.Str("turn_id", em.TurnID)
	}
	if em.Iteration > 0 {
		e.Int("iteration", em.Iteration)
	}
	if em.Provider != "" {
		e.Str("provider", em.Provider)
	}
	if em.Model != "" {
		e.Str("model", em.Model)
	}
	if em.DurationMs != nil {
		e.Int64("duration_ms", *em.DurationMs)
	}
	if len(em.Extra) > 0 {
		e.Dict("extra", zerolog.Dict().Fields(em.Extra))
	}
}

type EventStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventStart {
	return &EventStart{EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata}}
}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata}, Text: text}
}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	s := ""
	if err != nil {
		s = err.Error()
	}
	return &EventError{EventImpl: EventImpl{Type_: EventTypeError, Metadata_: metadata}, ErrorString: s}
}

type ToolCall struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Input string `json:"input" yaml:"input"`
}

type ToolResult struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Result string `json:"result" yaml:"result"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type EventToolCall struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
}

func NewToolCallEvent(metadata EventMetadata, toolCall ToolCall) *EventToolCall {
	return &EventToolCall{EventImpl: EventImpl{Type_: EventTypeToolCall, Metadata_: metadata}, ToolCall: toolCall}
}

// EventToolCallExecute captures the intent to execute a tool locally
type EventToolCallExecute struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
}

func NewToolCallExecuteEvent(metadata EventMetadata, toolCall ToolCall) *EventToolCallExecute {
	return &EventToolCallExecute{EventImpl: EventImpl{Type_: EventTypeToolCallExecute, Metadata_: metadata}, ToolCall: toolCall}
}

// EventToolCallExecutionResult captures the result of executing a tool locally
type EventToolCallExecutionResult struct {
	EventImpl
	ToolResult ToolResult `json:"tool_result"`
}

func NewToolCallExecutionResultEvent(metadata EventMetadata, toolResult ToolResult) *EventToolCallExecutionResult {
	return &EventToolCallExecutionResult{
		EventImpl:  EventImpl{Type_: EventTypeToolCallExecutionResult, Metadata_: metadata},
		ToolResult: toolResult,
	}
}

// EventFallback reports that a request was answered offline.
type EventFallback struct {
	EventImpl
	Reason string `json:"reason"`
	Intent string `json:"intent,omitempty"`
}

func NewFallbackEvent(metadata EventMetadata, reason string, intent string) *EventFallback {
	return &EventFallback{EventImpl: EventImpl{Type_: EventTypeFallback, Metadata_: metadata}, Reason: reason, Intent: intent}
}

// EventArtifact reports a stored artifact.
type EventArtifact struct {
	EventImpl
	ArtifactID string `json:"artifact_id"`
	Title      string `json:"title"`
}

func NewArtifactEvent(metadata EventMetadata, id string, title string) *EventArtifact {
	return &EventArtifact{EventImpl: EventImpl{Type_: EventTypeArtifact, Metadata_: metadata}, ArtifactID: id, Title: title}
}

type EventInfo struct {
	EventImpl
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func NewInfoEvent(metadata EventMetadata, message string, data map[string]any) *EventInfo {
	return &EventInfo{EventImpl: EventImpl{Type_: EventTypeInfo, Metadata_: metadata}, Message: message, Data: data}
}

func decode[T any, P interface {
	*T
	Event
}](b []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, err
	}
	return P(&ev), nil
}

// NewEventFromJson decodes an event published through a sink.
func NewEventFromJson(b []byte) (Event, error) {
	var hdr struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(b, &hdr); err != nil {
		return nil, errors.Wrap(err, "decode event header")
	}

	var (
		ev  Event
		err error
	)
	switch hdr.Type {
	case EventTypeStart:
		ev, err = decode[EventStart](b)
	case EventTypeFinal:
		ev, err = decode[EventFinal](b)
	case EventTypeError:
		ev, err = decode[EventError](b)
	case EventTypeToolCall:
		ev, err = decode[EventToolCall](b)
	case EventTypeToolCallExecute:
		ev, err = decode[EventToolCallExecute](b)
	case EventTypeToolCallExecutionResult:
		ev, err = decode[EventToolCallExecutionResult](b)
	case EventTypeFallback:
		ev, err = decode[EventFallback](b)
	case EventTypeArtifact:
		ev, err = decode[EventArtifact](b)
	case EventTypeInfo:
		ev, err = decode[EventInfo](b)
	default:
		ev, err = decode[EventImpl](b)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s event", hdr.Type)
	}
	if p, ok := ev.(interface{ setPayload([]byte) }); ok {
		p.setPayload(b)
	}
	return ev, nil
}

func (e *EventImpl) setPayload(b []byte) {
	e.payload = b
}
