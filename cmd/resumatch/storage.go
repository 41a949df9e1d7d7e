// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains the local state layer shared by the commands: the
// BadgerDB adapter plus the analysis artifacts remembered between runs.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/resumatch/resumatch-cli/pkg/conversation"
	"github.com/resumatch/resumatch-cli/pkg/datatypes"
)

// Keys for analysis artifacts. Conversation keys live in the
// conversation package; these are owned by the commands.
const (
	lastAnalysisKey = "resumatch_last_analysis"
	lastSummaryKey  = "resumatch_last_summary"
)

// defaultDataDir returns ~/.resumatch, or a relative fallback when the
// home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".resumatch"
	}
	return filepath.Join(home, ".resumatch")
}

// openStateKV opens the durable KV under dataDir.
func openStateKV(dataDir string, logger *slog.Logger) (*conversation.BadgerKV, error) {
	cfg := conversation.DefaultBadgerConfig(filepath.Join(dataDir, "state"))
	cfg.Logger = logger
	kv, err := conversation.OpenBadger(cfg)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	return kv, nil
}

// saveLastAnalysis persists the result and its summary for later chat
// sessions.
func saveLastAnalysis(kv conversation.KV, result *datatypes.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serialize analysis result: %w", err)
	}
	if err := kv.Set(lastAnalysisKey, raw); err != nil {
		return err
	}

	summary, err := json.Marshal(result.Summary())
	if err != nil {
		return fmt.Errorf("serialize analysis summary: %w", err)
	}
	return kv.Set(lastSummaryKey, summary)
}

// loadLastAnalysis returns the remembered result, or nil when absent or
// unreadable.
func loadLastAnalysis(kv conversation.KV, logger *slog.Logger) *datatypes.AnalysisResult {
	raw, found, err := kv.Get(lastAnalysisKey)
	if err != nil || !found {
		return nil
	}
	var result datatypes.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Warn("discarding corrupt analysis state", "error", err)
		return nil
	}
	return &result
}

// conversationStore builds the durable conversation store over kv.
func conversationStore(kv conversation.KV, logger *slog.Logger) *conversation.Store {
	return conversation.NewStore(kv, logger)
}

// newSeededResetPolicy builds a reset policy seeded with the baseline
// remembered from the previous session.
func newSeededResetPolicy(store *conversation.Store, kv conversation.KV, logger *slog.Logger) *conversation.ResetPolicy {
	return conversation.NewResetPolicyWithBaseline(store, logger, loadLastSummary(kv))
}

// loadLastSummary returns the remembered baseline summary, or nil.
func loadLastSummary(kv conversation.KV) *datatypes.AnalysisSummary {
	raw, found, err := kv.Get(lastSummaryKey)
	if err != nil || !found {
		return nil
	}
	var summary datatypes.AnalysisSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}
