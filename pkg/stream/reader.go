// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains stream readers that consume io.Reader sources
// and emit parsed events via callbacks.
//
// Single Responsibility:
//
//	Readers handle I/O and event sequencing. They use parsers to convert
//	bytes to events, but do not render output. This separation enables
//	flexible composition with different consumers.
//
// Context Support:
//
//	All readers accept context.Context for cancellation and timeout.
//	When context is cancelled, reading stops and the error is returned.
package stream

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Callback is invoked for each decoded frame. Returning an error stops
// the read and propagates the error to the caller.
type Callback func(event Event) error

// ChunkCallback is invoked for each raw chunk from an unframed stream.
type ChunkCallback func(chunk string) error

// readBufferSize is the transport read size for both readers. Small enough
// to keep token latency low, large enough to avoid syscall churn.
const readBufferSize = 4096

// =============================================================================
// Event Reader Interface
// =============================================================================

// Reader reads an SSE analysis stream and invokes a callback per frame.
//
// Thread Safety:
//
//	Reader implementations must be safe for concurrent use. However, a
//	single Read operation should not be called concurrently on the same
//	reader instance.
//
// Example:
//
//	reader := NewReader(NewEventParser(), logger)
//
//	err := reader.Read(ctx, httpResp.Body, func(event stream.Event) error {
//	    tracker.Apply(event)
//	    return nil
//	})
type Reader interface {
	// Read processes a stream, invoking callback for each decoded frame.
	//
	// Parameters:
	//   - ctx: Context for cancellation. Checked before every chunk.
	//   - r: The source to read from. Caller is responsible for closing.
	//   - callback: Invoked for each frame. Return error to stop.
	//
	// Returns:
	//   - error: nil on successful completion, otherwise the error that
	//     stopped reading (context cancellation, I/O error, or callback error)
	//
	// The stream is considered complete when:
	//   - EOF is reached
	//   - A terminal frame (done/error) is received
	//   - Context is cancelled
	//   - Callback returns an error
	//
	// Frames that fail to decode, and non-data lines, are dropped and
	// logged; they never stop the read. Chunks are reassembled into lines
	// internally, so a frame split across two network reads is delivered
	// exactly once.
	Read(ctx context.Context, r io.Reader, callback Callback) error
}

// =============================================================================
// SSE Reader
// =============================================================================

// sseReader implements Reader for the Server-Sent Events analysis stream.
//
// Incoming chunks are split on newlines. A trailing partial line is carried
// forward and prepended to the next chunk, so line boundaries never have to
// align with network reads.
type sseReader struct {
	parser EventParser
	logger *slog.Logger
}

// NewReader creates a new SSE stream reader.
//
// Parameters:
//   - parser: The frame parser to use for data lines.
//   - logger: Destination for dropped-frame diagnostics. May be nil.
func NewReader(parser EventParser, logger *slog.Logger) Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &sseReader{
		parser: parser,
		logger: logger,
	}
}

// Read processes an SSE stream, invoking callback for each frame.
func (r *sseReader) Read(ctx context.Context, reader io.Reader, callback Callback) error {
	buf := make([]byte, readBufferSize)
	carry := ""
	eventIndex := 0

	for {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := reader.Read(buf)
		if n > 0 {
			text := carry + string(buf[:n])
			lines := strings.Split(text, "\n")

			// The last element is either "" (chunk ended on a newline) or
			// a partial line that the next chunk will complete.
			carry = lines[len(lines)-1]

			for _, line := range lines[:len(lines)-1] {
				done, err := r.handleLine(line, &eventIndex, callback)
				if err != nil {
					return err
				}
				if done {
					return nil
				}
			}
		}

		if readErr == io.EOF {
			// Flush a final line that arrived without a trailing newline
			if carry != "" {
				if _, err := r.handleLine(carry, &eventIndex, callback); err != nil {
					return err
				}
			}
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// handleLine parses one line and dispatches the frame, if any.
// Returns done=true when a terminal frame was delivered.
func (r *sseReader) handleLine(line string, eventIndex *int, callback Callback) (bool, error) {
	event, err := r.parser.ParseLine(line)
	if err != nil {
		// Malformed frames are dropped, not fatal
		framesDropped.Inc()
		r.logger.Debug("dropped malformed stream frame", "error", err)
		return false, nil
	}
	if event == nil {
		return false, nil
	}

	event.Index = *eventIndex
	*eventIndex++
	framesDecoded.WithLabelValues(string(event.Type)).Inc()

	if err := callback(*event); err != nil {
		return false, err
	}

	return event.IsTerminal(), nil
}

// =============================================================================
// Plain Text Reader
// =============================================================================

// PlainReader reads an unframed token stream and invokes a callback per
// chunk. The chat endpoint streams raw text with no SSE framing, so chunks
// are delivered exactly as the transport produced them.
type PlainReader interface {
	// Read processes a raw stream, invoking callback for each chunk.
	//
	// Completes on EOF, context cancellation, or callback error.
	Read(ctx context.Context, r io.Reader, callback ChunkCallback) error
}

// plainReader implements PlainReader with a fixed-size read loop.
type plainReader struct{}

// NewPlainReader creates a reader for the unframed chat stream.
func NewPlainReader() PlainReader {
	return &plainReader{}
}

// Read processes a raw text stream chunk by chunk.
func (r *plainReader) Read(ctx context.Context, reader io.Reader, callback ChunkCallback) error {
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := reader.Read(buf)
		if n > 0 {
			if err := callback(string(buf[:n])); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// =============================================================================
// Compile-time Interface Checks
// =============================================================================

var (
	_ Reader      = (*sseReader)(nil)
	_ PlainReader = (*plainReader)(nil)
)
