// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stream consumes the streaming HTTP surfaces of the analysis
// backend.
//
// Two wire shapes exist. The analysis pipeline speaks Server-Sent Events
// with one JSON frame per data line; the chat endpoint streams raw token
// text with no framing at all. This file contains the SSE frame parser.
//
// Single Responsibility:
//
//	Parsers ONLY parse. They do not perform I/O, rendering, or state
//	management. This separation enables easy testing.
package stream

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// Event Parser Interface
// =============================================================================

// EventParser parses Server-Sent Events lines into Event structs.
//
// SSE Format Reference (https://developer.mozilla.org/en-US/docs/Web/API/Server-sent_events):
//
//	data: {"type":"log","step":"analyze","content":"Parsing resume..."}\n
//	\n
//	data: {"type":"done"}\n
//	\n
//
// Each line starting with "data: " carries one JSON frame. Empty lines are
// event delimiters. Lines starting with ":" are comments. Everything else
// is noise and is dropped rather than guessed at.
//
// Thread Safety:
//
//	EventParser implementations must be safe for concurrent use.
//	The default implementation is stateless and inherently thread-safe.
type EventParser interface {
	// ParseLine parses a single line of SSE input.
	//
	// Parameters:
	//   - line: A single line from the SSE stream (without trailing newline)
	//
	// Returns:
	//   - *Event: The parsed frame, or nil for lines that carry no frame
	//   - error: Non-nil if a data line carried malformed JSON
	//
	// Line handling:
	//   - Empty lines: Returns nil, nil (event delimiter)
	//   - Comment lines (":"): Returns nil, nil (ignored)
	//   - Data lines ("data: "): Parses JSON payload
	//   - Other lines: Returns nil, nil (dropped)
	ParseLine(line string) (*Event, error)

	// ParseFrame parses a raw JSON frame without the "data: " prefix.
	//
	// Frames missing the "type" field are dropped (nil, nil); the stream
	// must keep flowing past junk the server emits.
	ParseFrame(jsonData []byte) (*Event, error)
}

// =============================================================================
// Event Parser Implementation
// =============================================================================

// sseParser implements EventParser for the analysis stream.
//
// This implementation is stateless and safe for concurrent use.
type sseParser struct{}

// NewEventParser creates a new SSE frame parser.
//
// The returned parser is stateless and can be safely shared across
// goroutines.
func NewEventParser() EventParser {
	return &sseParser{}
}

// ParseLine parses a single SSE line.
func (p *sseParser) ParseLine(line string) (*Event, error) {
	line = strings.TrimSpace(line)

	// Empty lines are event delimiters
	if line == "" {
		return nil, nil
	}

	// Comments start with ":"
	if strings.HasPrefix(line, ":") {
		return nil, nil
	}

	// Data lines start with "data: "
	if strings.HasPrefix(line, "data: ") {
		return p.ParseFrame([]byte(strings.TrimPrefix(line, "data: ")))
	}

	// Also handle "data:" without space (some servers do this)
	if strings.HasPrefix(line, "data:") {
		return p.ParseFrame([]byte(strings.TrimPrefix(line, "data:")))
	}

	// Everything else (event:, id:, retry:, stray text) carries no frame
	return nil, nil
}

// ParseFrame parses a JSON frame into an Event.
//
// Example frames:
//
//	{"type":"log","step":"fetch","content":"Searching job boards"}
//	{"type":"node","node":"synthesize","message":"Building roadmap"}
//	{"type":"result","payload":{...}}
//	{"type":"done"}
func (p *sseParser) ParseFrame(jsonData []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(jsonData, &event); err != nil {
		return nil, err
	}

	// Frames without a discriminant are junk, not errors
	if event.Type == "" {
		return nil, nil
	}

	return &event, nil
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ EventParser = (*sseParser)(nil)
