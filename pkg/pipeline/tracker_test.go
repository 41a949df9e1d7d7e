// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/resumatch/resumatch-cli/pkg/stream"
)

func logEvent(step, content string) stream.Event {
	return stream.Event{Type: stream.EventLog, Step: step, Content: content}
}

func nodeEvent(node string) stream.Event {
	return stream.Event{Type: stream.EventNode, Node: node}
}

func resultEvent(payload string) stream.Event {
	return stream.Event{Type: stream.EventResult, Payload: json.RawMessage(payload)}
}

// =============================================================================
// Stage Progression Tests
// =============================================================================

func TestTracker_StageAdvancesInOrder(t *testing.T) {
	var advances []int
	tracker := NewTracker(Config{
		OnStage: func(ordinal int, label string) {
			advances = append(advances, ordinal)
		},
	})

	tracker.Apply(logEvent("analyze", "Parsing resume"))
	tracker.Apply(nodeEvent("fetch"))
	tracker.Apply(logEvent("synthesize", "Building roadmap"))

	state := tracker.State()
	if state.StageIndex != 3 {
		t.Errorf("expected stage index 3, got %d", state.StageIndex)
	}
	if len(advances) != 3 || advances[0] != 1 || advances[1] != 2 || advances[2] != 3 {
		t.Errorf("unexpected advance sequence: %v", advances)
	}
}

func TestTracker_StageNeverRegresses(t *testing.T) {
	tracker := NewTracker(Config{})

	tracker.Apply(logEvent("synthesize", "late stage first"))
	tracker.Apply(logEvent("analyze", "stale report"))
	tracker.Apply(logEvent("fetch", "another stale report"))

	if got := tracker.State().StageIndex; got != 3 {
		t.Errorf("expected stage index to stay at 3, got %d", got)
	}
}

func TestTracker_RepeatedStageFiresOnce(t *testing.T) {
	fired := 0
	tracker := NewTracker(Config{
		OnStage: func(ordinal int, label string) { fired++ },
	})

	tracker.Apply(logEvent("analyze", "a"))
	tracker.Apply(logEvent("analyze", "b"))
	tracker.Apply(nodeEvent("analyze"))

	if fired != 1 {
		t.Errorf("expected one stage advance, got %d", fired)
	}
}

func TestTracker_UnknownStageIgnored(t *testing.T) {
	tracker := NewTracker(Config{})

	tracker.Apply(logEvent("embed", "mystery stage"))

	state := tracker.State()
	if state.StageIndex != 0 {
		t.Errorf("expected no transition for unknown stage, got index %d", state.StageIndex)
	}
	if state.LatestMessage != "mystery stage" {
		t.Errorf("expected message to update even for unknown stage, got %q", state.LatestMessage)
	}
	if !state.Running() {
		t.Error("unknown stages must not terminate the run")
	}
}

func TestTracker_LatestMessageTracksProgress(t *testing.T) {
	var messages []string
	tracker := NewTracker(Config{
		OnMessage: func(m string) { messages = append(messages, m) },
	})

	tracker.Apply(logEvent("analyze", "Parsing resume"))
	tracker.Apply(logEvent("analyze", "Parsing resume"))
	tracker.Apply(stream.Event{Type: stream.EventNode, Node: "fetch", Message: "Searching job boards"})

	if len(messages) != 2 {
		t.Fatalf("expected 2 distinct messages, got %d: %v", len(messages), messages)
	}
	if tracker.State().LatestMessage != "Searching job boards" {
		t.Errorf("unexpected latest message: %q", tracker.State().LatestMessage)
	}
}

// =============================================================================
// Terminal Outcome Tests
// =============================================================================

func TestTracker_DoneAfterResultCompletes(t *testing.T) {
	var payload json.RawMessage
	completions := 0
	tracker := NewTracker(Config{
		OnComplete: func(p json.RawMessage) {
			payload = p
			completions++
		},
	})

	tracker.Apply(resultEvent(`{"role_detected":"Backend Engineer","match_score":71.5}`))
	tracker.Apply(stream.Event{Type: stream.EventDone})

	state := tracker.State()
	if state.Outcome != OutcomeComplete {
		t.Fatalf("expected OutcomeComplete, got %v", state.Outcome)
	}
	if completions != 1 {
		t.Errorf("expected exactly one completion callback, got %d", completions)
	}
	if string(payload) != `{"role_detected":"Backend Engineer","match_score":71.5}` {
		t.Errorf("unexpected payload: %s", payload)
	}
}

func TestTracker_DoneWithoutResultFails(t *testing.T) {
	var errMsg string
	tracker := NewTracker(Config{
		OnError: func(m string) { errMsg = m },
	})

	tracker.Apply(logEvent("analyze", "working"))
	tracker.Apply(stream.Event{Type: stream.EventDone})

	state := tracker.State()
	if state.Outcome != OutcomeFailed {
		t.Fatalf("expected OutcomeFailed, got %v", state.Outcome)
	}
	if errMsg == "" {
		t.Error("expected error callback for done without result")
	}
}

func TestTracker_ErrorEventFails(t *testing.T) {
	var errMsg string
	tracker := NewTracker(Config{
		OnError: func(m string) { errMsg = m },
	})

	tracker.Apply(stream.ErrorEvent("model unavailable"))

	state := tracker.State()
	if state.Outcome != OutcomeFailed {
		t.Fatalf("expected OutcomeFailed, got %v", state.Outcome)
	}
	if errMsg != "model unavailable" {
		t.Errorf("unexpected error message: %q", errMsg)
	}
}

func TestTracker_EventsAfterTerminalDiscarded(t *testing.T) {
	completions := 0
	failures := 0
	tracker := NewTracker(Config{
		OnComplete: func(json.RawMessage) { completions++ },
		OnError:    func(string) { failures++ },
	})

	tracker.Apply(resultEvent(`{}`))
	tracker.Apply(stream.Event{Type: stream.EventDone})
	tracker.Apply(stream.Event{Type: stream.EventDone})
	tracker.Apply(stream.ErrorEvent("too late"))
	tracker.Apply(logEvent("analyze", "too late too"))

	state := tracker.State()
	if state.Outcome != OutcomeComplete {
		t.Fatalf("terminal outcome must not change, got %v", state.Outcome)
	}
	if completions != 1 {
		t.Errorf("expected one completion, got %d", completions)
	}
	if failures != 0 {
		t.Errorf("expected no failure callbacks, got %d", failures)
	}
	if state.StageIndex != 0 {
		t.Errorf("stage must not advance after terminal outcome, got %d", state.StageIndex)
	}
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker(Config{})

	tracker.Apply(logEvent("fetch", "working"))
	tracker.Apply(stream.ErrorEvent("boom"))
	tracker.Reset()

	state := tracker.State()
	if state.StageIndex != 0 || state.Outcome != OutcomeNone || state.LatestMessage != "" {
		t.Errorf("expected pristine state after reset, got %+v", state)
	}
}

// =============================================================================
// Stage Metadata Tests
// =============================================================================

func TestStageLabel(t *testing.T) {
	if got := StageLabel(1); got != "Analyzing profile" {
		t.Errorf("unexpected label for ordinal 1: %q", got)
	}
	if got := StageLabel(0); got != "" {
		t.Errorf("expected empty label for ordinal 0, got %q", got)
	}
	if got := StageLabel(StageCount + 1); got != "" {
		t.Errorf("expected empty label out of range, got %q", got)
	}
}
