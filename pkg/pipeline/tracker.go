// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline tracks the progress of one analysis run.
//
// The analysis backend walks a fixed workflow (analyze, fetch, synthesize)
// and reports progress over the event stream. The tracker folds that event
// sequence into a monotonic stage index plus a terminal outcome, shielding
// consumers from out-of-order, repeated, or unknown stage reports.
package pipeline

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/resumatch/resumatch-cli/pkg/stream"
)

// =============================================================================
// Stages
// =============================================================================

// StageCount is the number of workflow stages.
const StageCount = 3

// Stage describes one workflow stage for display purposes.
type Stage struct {
	Key   string
	Label string
}

// stages is the fixed workflow order. Index in this slice + 1 is the
// stage ordinal; ordinal 0 means no stage has been reported yet.
var stages = [StageCount]Stage{
	{Key: "analyze", Label: "Analyzing profile"},
	{Key: "fetch", Label: "Fetching market data"},
	{Key: "synthesize", Label: "Synthesizing roadmap"},
}

// stageOrdinals maps wire identifiers to ordinals.
var stageOrdinals = map[string]int{
	"analyze":    1,
	"fetch":      2,
	"synthesize": 3,
}

// Stages returns the workflow stages in execution order.
func Stages() []Stage {
	return stages[:]
}

// StageLabel returns the display label for a stage ordinal, or "" for
// ordinal 0 and out-of-range values.
func StageLabel(ordinal int) string {
	if ordinal < 1 || ordinal > StageCount {
		return ""
	}
	return stages[ordinal-1].Label
}

// =============================================================================
// Outcome
// =============================================================================

// Outcome is the terminal state of a run.
type Outcome int

const (
	// OutcomeNone means the run is still in progress.
	OutcomeNone Outcome = iota

	// OutcomeComplete means the run finished with a result payload.
	OutcomeComplete

	// OutcomeFailed means the run ended abnormally.
	OutcomeFailed
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeFailed:
		return "failed"
	default:
		return "running"
	}
}

// =============================================================================
// Tracker
// =============================================================================

// State is a snapshot of a run's progress.
type State struct {
	// StageIndex is the highest stage ordinal reported so far (0..StageCount).
	// It never decreases within a run.
	StageIndex int

	// LatestMessage is the most recent human-readable progress line.
	LatestMessage string

	// Outcome is the terminal state, OutcomeNone while running.
	Outcome Outcome

	// ErrorMessage is set when Outcome is OutcomeFailed.
	ErrorMessage string

	// Result is the raw payload of the result frame, nil until received.
	Result json.RawMessage
}

// Running reports whether no terminal outcome has been reached.
func (s State) Running() bool {
	return s.Outcome == OutcomeNone
}

// Config configures a Tracker.
type Config struct {
	// OnStage is invoked when the stage index advances.
	// Receives the new ordinal and its display label.
	OnStage func(ordinal int, label string)

	// OnMessage is invoked when the latest progress line changes.
	OnMessage func(message string)

	// OnComplete is invoked exactly once, when the run completes with a
	// result payload.
	OnComplete func(payload json.RawMessage)

	// OnError is invoked exactly once, when the run ends abnormally.
	OnError func(message string)

	// Logger for diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Tracker folds analysis stream events into run state.
//
// Apply is safe for concurrent use, though the stream reader delivers
// events from a single goroutine in practice.
//
// Invariants:
//   - The stage index never decreases; repeated or out-of-order stage
//     reports are absorbed.
//   - Unknown stage identifiers are ignored.
//   - The terminal outcome is set at most once; every event after it is
//     discarded.
//   - A done frame without a preceding result frame is a failure, not a
//     success.
type Tracker struct {
	mu    sync.Mutex
	state State
	cfg   Config
}

// NewTracker creates a tracker for one analysis run.
func NewTracker(cfg Config) *Tracker {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Tracker{cfg: cfg}
}

// Apply folds one stream event into the run state.
func (t *Tracker) Apply(event stream.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Terminal outcomes are final
	if t.state.Outcome != OutcomeNone {
		t.cfg.Logger.Debug("event discarded after terminal outcome",
			"type", string(event.Type))
		return
	}

	switch event.Type {
	case stream.EventLog, stream.EventNode:
		t.applyProgressLocked(&event)

	case stream.EventResult:
		t.state.Result = event.Payload

	case stream.EventDone:
		if t.state.Result == nil {
			t.failLocked("analysis stream completed without a result payload")
			return
		}
		t.state.Outcome = OutcomeComplete
		runsTotal.WithLabelValues(OutcomeComplete.String()).Inc()
		if t.cfg.OnComplete != nil {
			t.cfg.OnComplete(t.state.Result)
		}

	case stream.EventError:
		msg := event.Content
		if msg == "" {
			msg = "analysis failed"
		}
		t.failLocked(msg)

	default:
		t.cfg.Logger.Debug("event with unknown type ignored",
			"type", string(event.Type))
	}
}

// applyProgressLocked handles log and node frames.
func (t *Tracker) applyProgressLocked(event *stream.Event) {
	if text := event.Text(); text != "" && text != t.state.LatestMessage {
		t.state.LatestMessage = text
		if t.cfg.OnMessage != nil {
			t.cfg.OnMessage(text)
		}
	}

	key := event.Stage()
	if key == "" {
		return
	}
	ordinal, ok := stageOrdinals[key]
	if !ok {
		// Unknown identifiers carry no transition
		t.cfg.Logger.Debug("unknown stage identifier ignored", "stage", key)
		return
	}
	if ordinal <= t.state.StageIndex {
		return
	}

	t.state.StageIndex = ordinal
	stageAdvances.Inc()
	if t.cfg.OnStage != nil {
		t.cfg.OnStage(ordinal, StageLabel(ordinal))
	}
}

// failLocked sets the failed outcome and fires OnError once.
func (t *Tracker) failLocked(message string) {
	t.state.Outcome = OutcomeFailed
	t.state.ErrorMessage = message
	runsTotal.WithLabelValues(OutcomeFailed.String()).Inc()
	if t.cfg.OnError != nil {
		t.cfg.OnError(message)
	}
}

// State returns a snapshot of the current run state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset clears all state for a new run.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{}
}
