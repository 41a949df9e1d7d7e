// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file defines the AnalysisService interface and its implementation
// for driving the streaming resume analysis endpoint:
//
//	HTTP Response Body → stream.Reader → pipeline.Tracker → AnalysisResult
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
	"github.com/resumatch/resumatch-cli/pkg/pipeline"
	"github.com/resumatch/resumatch-cli/pkg/stream"
)

// =============================================================================
// INTERFACES
// =============================================================================

// AnalysisService runs one streaming resume analysis.
//
// # Description
//
// AnalysisService uploads a resume plus target job description and
// consumes the progress stream until a terminal outcome. Progress is
// reported through the configured callbacks while the final payload is
// decoded into an AnalysisResult.
type AnalysisService interface {
	// Run executes one analysis end to end.
	//
	// # Inputs
	//
	//   - ctx: Governs the upload and the whole stream.
	//   - req: Resume path (required) and job description (optional; a
	//     blank description analyzes against general market trends).
	//
	// # Outputs
	//
	//   - *datatypes.AnalysisResult: The decoded result payload.
	//   - error: Non-nil when the run failed for any reason, including a
	//     stream that ended without a result payload.
	Run(ctx context.Context, req AnalysisRequest) (*datatypes.AnalysisResult, error)
}

// AnalysisRequest is the input of one analysis run.
type AnalysisRequest struct {
	// ResumePath is the local path of the resume file to upload.
	ResumePath string

	// JobDescription is the free-text target job description. Blank
	// analyzes against general market trends.
	JobDescription string
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// AnalysisServiceConfig configures the analysis service.
type AnalysisServiceConfig struct {
	// BaseURL of the analysis backend, e.g. "http://localhost:8000".
	BaseURL string

	// ConnectTimeout bounds connection establishment. Zero selects a
	// 30-second default.
	ConnectTimeout time.Duration

	// OnStage is invoked when the workflow advances to a new stage.
	OnStage func(ordinal int, label string)

	// OnMessage is invoked for each new progress line.
	OnMessage func(message string)

	// Logger for diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// IMPLEMENTATION
// =============================================================================

// streamingAnalysisService implements AnalysisService against
// POST /analyze-stream.
type streamingAnalysisService struct {
	client  HTTPClient
	reader  stream.Reader
	baseURL string
	cfg     AnalysisServiceConfig
	logger  *slog.Logger
}

// NewAnalysisService creates the production analysis service.
func NewAnalysisService(cfg AnalysisServiceConfig) AnalysisService {
	return NewAnalysisServiceWithClient(cfg, NewHTTPClient(cfg.ConnectTimeout))
}

// NewAnalysisServiceWithClient creates an analysis service with an
// injected HTTP client. Used by tests.
func NewAnalysisServiceWithClient(cfg AnalysisServiceConfig, client HTTPClient) AnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &streamingAnalysisService{
		client:  client,
		reader:  stream.NewReader(stream.NewEventParser(), logger),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run implements AnalysisService.
func (s *streamingAnalysisService) Run(ctx context.Context, req AnalysisRequest) (*datatypes.AnalysisResult, error) {
	if req.ResumePath == "" {
		return nil, fmt.Errorf("resume path is required")
	}

	body, contentType, err := buildAnalysisUpload(req)
	if err != nil {
		return nil, err
	}

	tracker := pipeline.NewTracker(pipeline.Config{
		OnStage:   s.cfg.OnStage,
		OnMessage: s.cfg.OnMessage,
		Logger:    s.logger,
	})

	resp, err := s.client.Post(ctx, s.baseURL+"/analyze-stream", contentType, body)
	if err != nil {
		// Transport failures become synthetic error events so the run
		// fails through the same path as wire errors
		tracker.Apply(stream.ErrorEvent(err.Error()))
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		tracker.Apply(stream.ErrorEvent(msg))
		return nil, fmt.Errorf("%s", msg)
	}

	if err := s.reader.Read(ctx, resp.Body, func(event stream.Event) error {
		tracker.Apply(event)
		return nil
	}); err != nil {
		tracker.Apply(stream.ErrorEvent(err.Error()))
		return nil, fmt.Errorf("analysis stream failed: %w", err)
	}

	state := tracker.State()
	switch state.Outcome {
	case pipeline.OutcomeComplete:
		var result datatypes.AnalysisResult
		if err := json.Unmarshal(state.Result, &result); err != nil {
			return nil, fmt.Errorf("decode analysis result: %w", err)
		}
		return &result, nil

	case pipeline.OutcomeFailed:
		return nil, fmt.Errorf("analysis failed: %s", state.ErrorMessage)

	default:
		// Stream ended cleanly without any terminal frame
		return nil, fmt.Errorf("analysis stream ended without completing")
	}
}

// buildAnalysisUpload builds the multipart upload body.
//
// The backend expects a "resume" file part and an optional
// "job_description" form field; the field is omitted entirely when blank.
// The whole body is buffered; resumes are small.
func buildAnalysisUpload(req AnalysisRequest) (io.Reader, string, error) {
	file, err := os.Open(req.ResumePath)
	if err != nil {
		return nil, "", fmt.Errorf("open resume: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("resume", filepath.Base(req.ResumePath))
	if err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read resume: %w", err)
	}

	if strings.TrimSpace(req.JobDescription) != "" {
		if err := writer.WriteField("job_description", req.JobDescription); err != nil {
			return nil, "", fmt.Errorf("build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// =============================================================================
// COMPILE-TIME INTERFACE CHECK
// =============================================================================

var _ AnalysisService = (*streamingAnalysisService)(nil)
