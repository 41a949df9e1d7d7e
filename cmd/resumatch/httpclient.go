// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file defines the HTTPClient abstraction used by the chat and
// analysis services. Tests substitute a mock; production code wraps a
// standard http.Client configured for long-lived streaming responses.
package main

import (
	"context"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// HTTP Client Interface
// =============================================================================

// HTTPClient abstracts the HTTP operations the services need.
//
// Thread Safety: implementations must be safe for concurrent use.
type HTTPClient interface {
	// Post issues a POST with the given content type and body.
	// The caller owns the response body and must close it.
	Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error)

	// Get issues a GET.
	// The caller owns the response body and must close it.
	Get(ctx context.Context, url string) (*http.Response, error)
}

// =============================================================================
// Default Implementation
// =============================================================================

// defaultHTTPClient wraps http.Client.
//
// The overall request deadline comes from the caller's context, not the
// client timeout: streaming responses stay open far longer than any
// sensible per-request timeout.
type defaultHTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates the production HTTP client.
//
// connectTimeout bounds dial and TLS handshake only; zero selects a
// 30-second default.
func NewHTTPClient(connectTimeout time.Duration) HTTPClient {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = connectTimeout

	return &defaultHTTPClient{
		client: &http.Client{Transport: transport},
	}
}

// Post implements HTTPClient.
func (c *defaultHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/event-stream, application/json")
	return c.client.Do(req)
}

// Get implements HTTPClient.
func (c *defaultHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ HTTPClient = (*defaultHTTPClient)(nil)
