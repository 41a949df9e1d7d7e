// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"testing"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
)

func TestResetPolicy_FirstSummarySetsBaselineWithoutReset(t *testing.T) {
	store := NewStore(NewMemoryKV(), nil)
	policy := NewResetPolicy(store, nil)
	original := store.ActiveID()

	reset := policy.OnNewSummary(datatypes.AnalysisSummary{Role: "Backend Engineer", Score: 50})

	if reset {
		t.Error("first summary must not reset")
	}
	if store.ActiveID() != original {
		t.Error("conversation must be untouched by first summary")
	}
	if policy.Baseline() == nil {
		t.Error("expected baseline to be remembered")
	}
}

func TestResetPolicy_ResetOnlyOnChange(t *testing.T) {
	store := NewStore(NewMemoryKV(), nil)
	policy := NewResetPolicy(store, nil)

	resets := 0
	for _, summary := range []datatypes.AnalysisSummary{
		{Role: "Backend Engineer", Score: 50},
		{Role: "Backend Engineer", Score: 50},
		{Role: "Data Engineer", Score: 70},
	} {
		if policy.OnNewSummary(summary) {
			resets++
		}
	}

	if resets != 1 {
		t.Errorf("expected exactly one reset, got %d", resets)
	}
	if got := policy.Baseline(); got == nil || got.Role != "Data Engineer" {
		t.Errorf("expected baseline to track latest summary, got %+v", got)
	}
}

func TestResetPolicy_ScoreChangeAloneResets(t *testing.T) {
	store := NewStore(NewMemoryKV(), nil)
	policy := NewResetPolicy(store, nil)
	policy.OnNewSummary(datatypes.AnalysisSummary{Role: "Backend Engineer", Score: 50})
	before := store.ActiveID()

	reset := policy.OnNewSummary(datatypes.AnalysisSummary{Role: "Backend Engineer", Score: 51})

	if !reset {
		t.Fatal("expected reset on score change")
	}
	if store.ActiveID() == before {
		t.Error("expected a fresh active conversation after reset")
	}
}

func TestResetPolicy_SeededBaselineSuppressesRepeat(t *testing.T) {
	store := NewStore(NewMemoryKV(), nil)
	baseline := &datatypes.AnalysisSummary{Role: "Backend Engineer", Score: 50}
	policy := NewResetPolicyWithBaseline(store, nil, baseline)

	if policy.OnNewSummary(*baseline) {
		t.Error("summary equal to seeded baseline must not reset")
	}
	if !policy.OnNewSummary(datatypes.AnalysisSummary{Role: "Platform Engineer", Score: 80}) {
		t.Error("expected reset when summary diverges from seeded baseline")
	}
}
