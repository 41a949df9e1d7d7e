// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package main contains the ResuMatch CLI service implementations.
//
// This file defines the ChatService interface and its implementation for
// communicating with the coaching agent's streaming chat endpoint. The
// endpoint streams raw token text with no framing, so the layering is:
//
//	HTTP Response Body → PlainReader → Store Upsert → Renderer
//
// # File Organization
//
// This file follows the house Go code style:
//  1. Interfaces (contracts first)
//  2. Configuration structs
//  3. Implementation structs
//  4. Constructor functions
//  5. Methods on structs
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/resumatch/resumatch-cli/pkg/conversation"
	"github.com/resumatch/resumatch-cli/pkg/datatypes"
	"github.com/resumatch/resumatch-cli/pkg/stream"
)

// apologyMessage replaces or finishes the assistant turn when the chat
// stream fails. Mirrors what the backend's own frontend shows.
const apologyMessage = "Sorry, something went wrong. Please try again."

// =============================================================================
// INTERFACES
// =============================================================================

// ChatService sends user turns to the coaching agent and folds the
// streamed reply into the conversation store.
//
// # Description
//
// ChatService is the one writer of assistant messages. Exactly one send
// may be in flight at a time; calls arriving while a send is active are
// dropped silently, matching the one-at-a-time semantics of the chat
// surface. All message state flows through the conversation store, so a
// crash mid-stream loses at most the unstreamed tail of one reply.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. The in-flight gate is
// the serialization point; concurrent callers race for it and losers
// no-op.
type ChatService interface {
	// SendMessage sends one user turn and streams the reply.
	//
	// # Description
	//
	// Appends the user message (hidden when opts.Proactive), opens one
	// streaming POST, creates one placeholder assistant message, and
	// replaces that message's content with the full accumulated buffer
	// on every chunk. On any failure after the user message was
	// appended, the assistant turn carries an apology instead.
	//
	// # Inputs
	//
	//   - ctx: Governs the whole exchange, including the stream.
	//   - text: The user's message. Blank text is a silent no-op.
	//   - conversationID: Target conversation. Empty or while another
	//     send is in flight: silent no-op.
	//   - opts: Proactive flag and analysis context.
	//
	// # Outputs
	//
	//   - error: Transport or stream failure. No-op preconditions return
	//     nil, not an error; the caller cannot tell a dropped send from
	//     a successful one except through the store.
	SendMessage(ctx context.Context, text, conversationID string, opts SendOptions) error

	// InFlight reports whether a send is currently active.
	InFlight() bool

	// Close releases resources and stops further store writes.
	Close() error
}

// SendOptions modifies one SendMessage call.
type SendOptions struct {
	// Proactive marks agent-initiated turns. The user-role record is
	// still stored for agent context but hidden from rendering.
	Proactive bool

	// Context is the opaque analysis context forwarded to the agent.
	Context map[string]any

	// OnChunk, when set, receives each raw chunk as it streams in.
	// Used by the interactive runner to echo tokens live.
	OnChunk func(chunk string)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// CoachChatServiceConfig configures the chat service.
type CoachChatServiceConfig struct {
	// BaseURL of the analysis backend, e.g. "http://localhost:8000".
	BaseURL string

	// ConnectTimeout bounds connection establishment. Zero selects a
	// 30-second default. The stream itself is bounded only by ctx.
	ConnectTimeout time.Duration

	// Logger for diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// IMPLEMENTATION
// =============================================================================

// coachChatService implements ChatService against POST /chat/agent.
type coachChatService struct {
	client   HTTPClient
	store    *conversation.Store
	reader   stream.PlainReader
	baseURL  string
	logger   *slog.Logger
	inFlight atomic.Bool
	closed   atomic.Bool
}

// NewCoachChatService creates the production chat service.
func NewCoachChatService(cfg CoachChatServiceConfig, store *conversation.Store) ChatService {
	return NewCoachChatServiceWithClient(cfg, store, NewHTTPClient(cfg.ConnectTimeout))
}

// NewCoachChatServiceWithClient creates a chat service with an injected
// HTTP client. Used by tests.
func NewCoachChatServiceWithClient(cfg CoachChatServiceConfig, store *conversation.Store, client HTTPClient) ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &coachChatService{
		client:  client,
		store:   store,
		reader:  stream.NewPlainReader(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// SendMessage implements ChatService.
func (s *coachChatService) SendMessage(ctx context.Context, text, conversationID string, opts SendOptions) error {
	if strings.TrimSpace(text) == "" || conversationID == "" {
		s.logger.Debug("send dropped: empty text or no conversation")
		return nil
	}
	if s.closed.Load() {
		s.logger.Debug("send dropped: service closed")
		return nil
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("send dropped: another send in flight")
		return nil
	}
	defer s.inFlight.Store(false)

	s.store.Append(conversationID, conversation.Message{
		Role:    conversation.RoleUser,
		Content: text,
		Hidden:  opts.Proactive,
	})

	assistantID := uuid.New().String()
	placeholderCreated := false

	fail := func() {
		// The assistant turn must exist and explain itself
		if s.closed.Load() {
			return
		}
		if placeholderCreated {
			s.store.UpsertStreaming(conversationID, assistantID, apologyMessage)
		} else {
			s.store.Append(conversationID, conversation.Message{
				Role:    conversation.RoleAssistant,
				Content: apologyMessage,
			})
		}
	}

	body, err := s.buildRequest(text, conversationID, opts.Context)
	if err != nil {
		fail()
		return fmt.Errorf("build chat request: %w", err)
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/chat/agent", "application/json", bytes.NewReader(body))
	if err != nil {
		fail()
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		fail()
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	s.store.UpsertStreaming(conversationID, assistantID, "")
	placeholderCreated = true

	var buf strings.Builder
	err = s.reader.Read(ctx, resp.Body, func(chunk string) error {
		if s.closed.Load() {
			return fmt.Errorf("chat service closed mid-stream")
		}
		buf.WriteString(chunk)
		// Full-buffer replacement: every snapshot in the store is the
		// complete text so far, never a lone token
		s.store.UpsertStreaming(conversationID, assistantID, buf.String())
		if opts.OnChunk != nil {
			opts.OnChunk(chunk)
		}
		return nil
	})
	if err != nil {
		fail()
		return fmt.Errorf("chat stream failed: %w", err)
	}

	return nil
}

// InFlight implements ChatService.
func (s *coachChatService) InFlight() bool {
	return s.inFlight.Load()
}

// Close implements ChatService.
func (s *coachChatService) Close() error {
	s.closed.Store(true)
	return nil
}

// buildRequest validates and serializes the chat request body.
func (s *coachChatService) buildRequest(text, conversationID string, context map[string]any) ([]byte, error) {
	req := datatypes.ChatRequest{
		Message:   text,
		SessionID: conversationID,
		Context:   context,
	}
	req.EnsureDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&req)
}

// =============================================================================
// COMPILE-TIME INTERFACE CHECK
// =============================================================================

var _ ChatService = (*coachChatService)(nil)
