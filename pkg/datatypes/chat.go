// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the wire types exchanged with the analysis
// backend.
//
// This file contains the chat request type for the agent chat endpoint.
// For the analysis result types, see analysis.go.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Request Limits
// =============================================================================

const (
	// MaxMessageContentBytes is the maximum size of a single chat message.
	// Byte length, not rune count, to bound memory on the wire.
	MaxMessageContentBytes = 32 * 1024 // 32KB
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chat datatypes.
// Initialized in init() with custom validators.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()

	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes checks that a string field does not exceed
// MaxMessageContentBytes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	content := fl.Field().String()
	return len(content) <= MaxMessageContentBytes
}

// =============================================================================
// Chat Request Types
// =============================================================================

// ChatRequest represents the body of a POST /chat/agent request.
//
// # Description
//
// ChatRequest carries one user turn to the coaching agent. The session ID
// ties the turn to a conversation so the backend can keep per-session
// memory. The context object carries the most recent analysis result and
// lets the agent answer with knowledge of the user's role, score, and
// skill gaps.
//
// # Fields
//
//   - RequestID: Required. Unique identifier for this request (UUID v4).
//     Used for tracing and log correlation.
//   - Timestamp: Required. Unix timestamp in milliseconds (UTC).
//   - Message: Required. The user's message text, limited to 32KB.
//   - SessionID: Required. The conversation the turn belongs to.
//   - Context: Opaque analysis context forwarded to the agent. Always
//     present on the wire; EnsureDefaults turns nil into an empty object.
//
// # Validation
//
// Uses go-playground/validator:
//   - RequestID: required, must be valid UUID v4
//   - Timestamp: required, must be > 0
//   - Message: required, max 32768 bytes
//   - SessionID: required
//
// # Examples
//
//	req := ChatRequest{
//	    Message:   "How do I close the Kubernetes gap?",
//	    SessionID: "conv-1735817400000",
//	}
//	req.EnsureDefaults()
//	if err := req.Validate(); err != nil { ... }
type ChatRequest struct {
	RequestID string         `json:"request_id" validate:"required,uuid4"`
	Timestamp int64          `json:"timestamp" validate:"required,gt=0"`
	Message   string         `json:"message" validate:"required,maxbytes"`
	SessionID string         `json:"session_id" validate:"required"`
	Context   map[string]any `json:"context"`
}

// Validate validates the ChatRequest fields.
//
// Call after EnsureDefaults and before serializing to the wire.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp if the caller left
// them unset, and defaults a nil Context to an empty object so the wire
// body always carries the context key.
func (r *ChatRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.New().String()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if r.Context == nil {
		r.Context = map[string]any{}
	}
}

// =============================================================================
// Health Types
// =============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Healthy reports whether the backend considers itself serviceable.
func (h *HealthResponse) Healthy() bool {
	return h.Status == "ok" || h.Status == "healthy"
}
