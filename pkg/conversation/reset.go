// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"log/slog"
	"sync"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
)

// ResetPolicy decides when a new analysis outcome invalidates the ongoing
// coaching conversation.
//
// Advice given for one role and score is stale once the analysis says
// something materially different, so a changed summary starts a fresh
// conversation rather than letting the agent contradict its own earlier
// guidance. Equal summaries, including repeated runs over the same
// resume, leave the conversation alone.
type ResetPolicy struct {
	mu       sync.Mutex
	store    *Store
	baseline *datatypes.AnalysisSummary
	logger   *slog.Logger
}

// NewResetPolicy creates a policy with no remembered baseline. The first
// summary observed becomes the baseline without causing a reset.
func NewResetPolicy(store *Store, logger *slog.Logger) *ResetPolicy {
	return NewResetPolicyWithBaseline(store, logger, nil)
}

// NewResetPolicyWithBaseline creates a policy seeded with a previously
// persisted baseline, letting the comparison survive process restarts.
func NewResetPolicyWithBaseline(store *Store, logger *slog.Logger, baseline *datatypes.AnalysisSummary) *ResetPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetPolicy{store: store, baseline: baseline, logger: logger}
}

// OnNewSummary observes one analysis summary and resets the conversation
// when it differs from the remembered baseline. The summary becomes the
// new baseline either way. Returns true when a reset occurred.
func (p *ResetPolicy) OnNewSummary(summary datatypes.AnalysisSummary) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.baseline
	p.baseline = &summary

	if prev == nil || prev.Equal(summary) {
		return false
	}

	id := p.store.Create()
	p.logger.Info("analysis changed, starting fresh conversation",
		"role", summary.Role,
		"score", summary.Score,
		"conversation", id)
	return true
}

// Baseline returns the remembered summary, or nil when unset.
func (p *ResetPolicy) Baseline() *datatypes.AnalysisSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.baseline == nil {
		return nil
	}
	b := *p.baseline
	return &b
}
