// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stream

import "encoding/json"

// EventType is the discriminant carried by every analysis stream frame.
type EventType string

const (
	// EventLog is a progress log line, optionally tagged with a workflow step.
	EventLog EventType = "log"

	// EventNode marks a workflow node starting or finishing.
	EventNode EventType = "node"

	// EventResult carries the final analysis payload.
	EventResult EventType = "result"

	// EventDone marks normal end of stream.
	EventDone EventType = "done"

	// EventError marks abnormal end of stream.
	EventError EventType = "error"
)

// Event is one decoded frame from the analysis stream.
//
// Exactly one shape applies per frame, selected by Type:
//
//	log:    Step (optional), Content (optional)
//	node:   Node, Message (optional)
//	result: Payload
//	done:   no fields
//	error:  Content
//
// Payload is kept as raw JSON; the pipeline layer decides how to decode it.
type Event struct {
	Type    EventType       `json:"type"`
	Step    string          `json:"step,omitempty"`
	Node    string          `json:"node,omitempty"`
	Content string          `json:"content,omitempty"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Index is the zero-based position of the frame within its stream.
	// Assigned by the reader, not part of the wire format.
	Index int `json:"-"`
}

// IsTerminal reports whether the event ends the stream.
func (e *Event) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// Stage returns the stage identifier carried by the frame, if any.
// Log frames carry it in Step, node frames in Node.
func (e *Event) Stage() string {
	if e.Type == EventNode {
		return e.Node
	}
	return e.Step
}

// Text returns the human-readable line carried by the frame, if any.
func (e *Event) Text() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Message
}

// ErrorEvent builds a synthetic error frame.
//
// Transport failures (non-2xx status, aborted connection) never arrive as
// wire frames, so clients fold them into the event sequence with this helper
// and the downstream state machine treats them like any other error frame.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Content: message}
}
