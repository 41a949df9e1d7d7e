// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"strings"
	"testing"
)

// =============================================================================
// Strategy Chain Tests
// =============================================================================

func TestExtractor_FencedProject(t *testing.T) {
	e := New(nil)

	text := "Here's a project for you:\n```json\n" +
		`{"title":"URL Shortener","tech_stack":["Go","Redis"],"steps":["Design the API","Ship it"]}` +
		"\n```\nGood luck!"

	result := e.Extract(text)

	if result.Kind != KindProject {
		t.Fatalf("expected project, got %v", result.Kind)
	}
	if result.Project == nil || result.Project.Title != "URL Shortener" {
		t.Fatalf("unexpected project: %+v", result.Project)
	}
	if len(result.Project.TechStack) != 2 || result.Project.TechStack[1] != "Redis" {
		t.Errorf("unexpected tech stack: %v", result.Project.TechStack)
	}
	if strings.Contains(result.CleanText, "```") || strings.Contains(result.CleanText, "URL Shortener") {
		t.Errorf("matched block must be removed from clean text: %q", result.CleanText)
	}
	if !strings.Contains(result.CleanText, "Here's a project for you:") {
		t.Errorf("surrounding prose must survive: %q", result.CleanText)
	}
}

func TestExtractor_BareQuizArray(t *testing.T) {
	e := New(nil)

	text := `Test yourself: [{"question":"What does CAP stand for?","options":["a","b","c"],"answer":"a"}] Have fun.`

	result := e.Extract(text)

	if result.Kind != KindQuiz {
		t.Fatalf("expected quiz, got %v", result.Kind)
	}
	if len(result.Quiz) != 1 {
		t.Fatalf("expected 1 question, got %d", len(result.Quiz))
	}
	if result.Quiz[0].Answer != "a" {
		t.Errorf("unexpected answer: %q", result.Quiz[0].Answer)
	}
	if strings.Contains(result.CleanText, "question") {
		t.Errorf("quiz JSON must be removed from clean text: %q", result.CleanText)
	}
}

func TestExtractor_BareProjectObject(t *testing.T) {
	e := New(nil)

	text := `Try this: {"title":"Chat App","tech_stack":["Go"],"steps":["one"]} when you have time.`

	result := e.Extract(text)

	if result.Kind != KindProject {
		t.Fatalf("expected project, got %v", result.Kind)
	}
	if result.Project.Title != "Chat App" {
		t.Errorf("unexpected title: %q", result.Project.Title)
	}
}

func TestExtractor_AnyFenceQuiz(t *testing.T) {
	e := New(nil)

	text := "```\n" + `[{"question":"q1","options":["x"],"answer":"x"}]` + "\n```"

	result := e.Extract(text)

	if result.Kind != KindQuiz {
		t.Fatalf("expected quiz from untagged fence, got %v", result.Kind)
	}
}

// =============================================================================
// Failure Mode Tests
// =============================================================================

func TestExtractor_PlainProse(t *testing.T) {
	e := New(nil)

	result := e.Extract("Focus on Kubernetes first, then Terraform.")

	if result.Kind != KindNone {
		t.Fatalf("expected none, got %v", result.Kind)
	}
	if result.CleanText != "Focus on Kubernetes first, then Terraform." {
		t.Errorf("plain prose must pass through unchanged: %q", result.CleanText)
	}
}

func TestExtractor_UnparseableCandidateKeepsText(t *testing.T) {
	e := New(nil)

	text := "Some context\n```json\n{not valid json\n```\nmore context"
	result := e.Extract(text)

	if result.Kind != KindNone {
		t.Fatalf("expected none for unparseable candidate, got %v", result.Kind)
	}
	// The failed candidate is not removed; whole text survives
	if !strings.Contains(result.CleanText, "{not valid json") {
		t.Errorf("failed candidate must stay in clean text: %q", result.CleanText)
	}
}

func TestExtractor_NoFallThroughAfterFirstMatch(t *testing.T) {
	e := New(nil)

	// The fence matches first and holds junk; the bare quiz later in the
	// text must NOT be considered.
	text := "```json\n\"just a string\"\n```\n" +
		`[{"question":"ignored","options":[],"answer":""}]`

	result := e.Extract(text)

	if result.Kind != KindNone {
		t.Fatalf("expected none, first strategy owns the candidate, got %v", result.Kind)
	}
}

func TestExtractor_WrongShapeObjectKeepsText(t *testing.T) {
	e := New(nil)

	text := "Config sample: ```json\n{\"host\":\"localhost\",\"port\":8000}\n```"
	result := e.Extract(text)

	if result.Kind != KindNone {
		t.Fatalf("expected none for non-project object, got %v", result.Kind)
	}
	if !strings.Contains(result.CleanText, "localhost") {
		t.Errorf("unclassified candidate must stay in clean text: %q", result.CleanText)
	}
}

// =============================================================================
// Marker Stripping Tests
// =============================================================================

func TestExtractor_StripsMarkerTags(t *testing.T) {
	e := New(nil)

	result := e.Extract("Here you go [QUIZ: kubernetes basics] good luck [PROJECT: urls]")

	if result.Kind != KindNone {
		t.Fatalf("expected none, got %v", result.Kind)
	}
	if strings.Contains(result.CleanText, "[QUIZ") || strings.Contains(result.CleanText, "[PROJECT") {
		t.Errorf("marker tags must be stripped: %q", result.CleanText)
	}
	if !strings.Contains(result.CleanText, "good luck") {
		t.Errorf("prose between tags must survive: %q", result.CleanText)
	}
}

func TestExtractor_StripsMarkersAfterExtraction(t *testing.T) {
	e := New(nil)

	text := "[QUIZ: follow up]\n```json\n" +
		`{"title":"T","tech_stack":["Go"],"steps":["s"]}` +
		"\n```"

	result := e.Extract(text)

	if result.Kind != KindProject {
		t.Fatalf("expected project, got %v", result.Kind)
	}
	if result.CleanText != "" {
		t.Errorf("expected empty clean text after tag and block removal, got %q", result.CleanText)
	}
}
