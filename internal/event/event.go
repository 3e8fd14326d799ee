package event

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is a base error type for call-completion records that are
// missing a required field. Records failing validation are rejected at the
// boundary and never reach storage.
var ErrInvalidEvent = errors.New("invalid call event")

// CallEvent is one completed method execution reported by an instrumented
// client. It is immutable once received.
type CallEvent struct {
	CallID       string  `json:"call_id"`
	ParentCallID string  `json:"parent_call_id,omitempty"`
	Owner        string  `json:"owner"`
	Operation    string  `json:"operation"`
	DurationMS   float64 `json:"duration_ms"`
	StartedAtMS  float64 `json:"started_at_ms"`
	StackDepth   int     `json:"stack_depth"`
	SourceFile   string  `json:"source_file,omitempty"`
	SourceLine   uint32  `json:"source_line,omitempty"`
}

// MethodKey returns the aggregation key for the event's method.
func (e CallEvent) MethodKey() string {
	return e.Owner + "." + e.Operation
}

// Validate checks the record shape. Topology problems (unresolved parent,
// duplicate id) are not validation errors and are handled downstream.
func (e CallEvent) Validate() error {
	if e.CallID == "" {
		return fmt.Errorf("%w: missing call_id", ErrInvalidEvent)
	}
	if e.Owner == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidEvent)
	}
	if e.Operation == "" {
		return fmt.Errorf("%w: missing operation", ErrInvalidEvent)
	}
	if e.DurationMS < 0 {
		return fmt.Errorf("%w: negative duration_ms", ErrInvalidEvent)
	}
	if e.StartedAtMS < 0 {
		return fmt.Errorf("%w: negative started_at_ms", ErrInvalidEvent)
	}
	if e.StackDepth < 0 {
		return fmt.Errorf("%w: negative stack_depth", ErrInvalidEvent)
	}
	return nil
}
