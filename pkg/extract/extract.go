// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extract recovers structured payloads from assistant message text.
//
// The coaching agent is asked to embed quiz and project payloads as JSON
// inside its replies, but models are unreliable formatters: sometimes the
// JSON arrives inside a ```json fence, sometimes inside a bare fence,
// sometimes naked in the prose. The extractor runs an ordered chain of
// location strategies over the text and classifies whatever the first
// hit produces. Extraction failure is never an error, the text simply
// renders as plain prose.
package extract

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// =============================================================================
// Kinds and Payload Types
// =============================================================================

// Kind classifies an extracted payload.
type Kind string

const (
	KindNone    Kind = "none"
	KindQuiz    Kind = "quiz"
	KindProject Kind = "project"
)

// Project is a suggested portfolio project embedded in a reply.
type Project struct {
	Title       string   `json:"title"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack"`
	Steps       []string `json:"steps"`
}

// QuizQuestion is one question of an embedded skill quiz.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Result is the outcome of one extraction pass.
//
// Exactly one of Project and Quiz is set when Kind is not KindNone.
// CleanText is always set and is what the renderer should display.
type Result struct {
	Kind      Kind
	Project   *Project
	Quiz      []QuizQuestion
	CleanText string
}

// =============================================================================
// Location Strategies
// =============================================================================

// A strategy locates one JSON candidate in the text. The first strategy
// that matches wins; later strategies never run, even if the candidate
// fails to parse.
type strategy struct {
	name string
	re   *regexp.Regexp
}

var strategies = []strategy{
	// Fenced block explicitly tagged as JSON
	{name: "json_fence", re: regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")},

	// Any fenced block
	{name: "any_fence", re: regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")},

	// Bare quiz array, recognized by its "question" key
	{name: "bare_quiz", re: regexp.MustCompile(`(?s)(\[\s*\{.*?"question".*?\}\s*\])`)},

	// Bare project object, recognized by its "title" and "tech_stack" keys
	{name: "bare_project", re: regexp.MustCompile(`(?s)(\{\s*"title".*?"tech_stack".*?\})`)},
}

// markerTags matches bracketed directive tags like [QUIZ: ...] that the
// agent sometimes leaves in its prose. They are stripped from every
// rendered message regardless of extraction outcome.
var markerTags = regexp.MustCompile(`\[[A-Z][A-Z_]*:[^\]]*\]`)

// =============================================================================
// Extractor
// =============================================================================

// Extractor runs the strategy chain over assistant message text.
//
// The zero value is not usable; construct with New.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor. logger may be nil.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract recovers an embedded payload from message text.
//
// Behavior:
//   - The first matching strategy supplies the only candidate considered.
//   - A candidate that fails to parse or classify yields KindNone with the
//     original text intact (minus marker tags). No fall-through to later
//     strategies.
//   - On success the matched region is removed from the text once.
//   - Marker tags are stripped from the clean text in every case.
func (e *Extractor) Extract(text string) Result {
	inner, whole, name, ok := locate(text)
	if !ok {
		return Result{Kind: KindNone, CleanText: clean(text)}
	}

	kind, project, quiz := classify([]byte(inner))
	if kind == KindNone {
		e.logger.Debug("embedded payload did not classify",
			"strategy", name)
		return Result{Kind: KindNone, CleanText: clean(text)}
	}

	remainder := strings.Replace(text, whole, "", 1)
	return Result{
		Kind:      kind,
		Project:   project,
		Quiz:      quiz,
		CleanText: clean(remainder),
	}
}

// locate runs the strategy chain and returns the first candidate.
func locate(text string) (inner, whole, name string, ok bool) {
	for _, s := range strategies {
		m := s.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return m[1], m[0], s.name, true
	}
	return "", "", "", false
}

// classify parses a candidate and decides what it is.
//
// An object with title, tech_stack, and steps keys is a project. An array
// whose first element has a question key is a quiz. Everything else,
// including unparseable candidates, is nothing.
func classify(raw []byte) (Kind, *Project, []QuizQuestion) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return KindNone, nil, nil
	}

	switch v := parsed.(type) {
	case map[string]any:
		if !hasKeys(v, "title", "tech_stack", "steps") {
			return KindNone, nil, nil
		}
		var project Project
		if err := json.Unmarshal(raw, &project); err != nil {
			return KindNone, nil, nil
		}
		return KindProject, &project, nil

	case []any:
		if len(v) == 0 {
			return KindNone, nil, nil
		}
		first, ok := v[0].(map[string]any)
		if !ok || first["question"] == nil {
			return KindNone, nil, nil
		}
		var quiz []QuizQuestion
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return KindNone, nil, nil
		}
		return KindQuiz, nil, quiz
	}

	return KindNone, nil, nil
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// clean strips marker tags and trims surrounding whitespace.
func clean(text string) string {
	return strings.TrimSpace(markerTags.ReplaceAllString(text, ""))
}
