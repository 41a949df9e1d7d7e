// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
	"github.com/resumatch/resumatch-cli/pkg/extract"
)

func TestParsePersonalityLevel(t *testing.T) {
	cases := map[string]PersonalityLevel{
		"full":     PersonalityFull,
		"FULL":     PersonalityFull,
		"standard": PersonalityStandard,
		"minimal":  PersonalityMinimal,
		"machine":  PersonalityMachine,
		"":         PersonalityStandard,
		"bogus":    PersonalityStandard,
	}
	for input, want := range cases {
		if got := ParsePersonalityLevel(input); got != want {
			t.Errorf("ParsePersonalityLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
	}
	for _, tc := range cases {
		if got := relativeTime(tc.t); got != tc.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}

	old := now.Add(-72 * time.Hour)
	if got := relativeTime(old); got != old.Format("Jan 2") {
		t.Errorf("relativeTime(old) = %q, want date format", got)
	}
}

func TestRenderExtracted_Project(t *testing.T) {
	var out bytes.Buffer
	renderExtracted(&out, extract.Result{
		Kind: extract.KindProject,
		Project: &extract.Project{
			Title:       "Job Board Scraper",
			Difficulty:  "intermediate",
			Description: "Scrape postings and rank them.",
			TechStack:   []string{"Go", "PostgreSQL"},
			Steps:       []string{"Design schema", "Write scraper"},
		},
	})

	s := out.String()
	for _, want := range []string{"Job Board Scraper", "intermediate", "Go, PostgreSQL", "1. Design schema", "2. Write scraper"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestRenderExtracted_Quiz(t *testing.T) {
	var out bytes.Buffer
	renderExtracted(&out, extract.Result{
		Kind: extract.KindQuiz,
		Quiz: []extract.QuizQuestion{
			{Question: "What is a goroutine?", Options: []string{"A thread", "A lightweight coroutine"}, Answer: "A lightweight coroutine"},
		},
	})

	s := out.String()
	if !strings.Contains(s, "Q1: What is a goroutine?") {
		t.Errorf("expected question rendered, got:\n%s", s)
	}
	if !strings.Contains(s, "a) A thread") || !strings.Contains(s, "b) A lightweight coroutine") {
		t.Errorf("expected lettered options, got:\n%s", s)
	}
}

func TestRenderExtracted_PlainTextPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	renderExtracted(&out, extract.Result{Kind: extract.KindNone, CleanText: "just prose"})
	if out.Len() != 0 {
		t.Errorf("expected no card output for plain text, got %q", out.String())
	}
}

func TestRenderAnalysisResult(t *testing.T) {
	var out bytes.Buffer
	renderAnalysisResult(&out, &datatypes.AnalysisResult{
		RoleDetected:        "Backend Engineer",
		MatchScore:          72,
		MatchScoreReasoning: "Strong Go background, no Kubernetes experience.",
		HeatmapData: []datatypes.HeatmapItem{
			{Skill: "Go", Status: datatypes.SkillMatch, Score: 0.9},
			{Skill: "Kubernetes", Status: datatypes.SkillGap, Score: 0.2},
		},
		Roadmap: []datatypes.LearningNode{
			{Month: 1, Skill: "Kubernetes", CourseTitle: "K8s Fundamentals"},
		},
		MatchedJobs: []datatypes.MatchedJob{
			{Position: "Backend Engineer", Company: "Acme", Location: "Remote", MatchScore: 81},
		},
		DetailedAnalysis: &datatypes.DetailedAnalysis{
			OverallAssessment: "A strong fit with one infrastructure gap.",
		},
	})

	s := out.String()
	for _, want := range []string{
		"Backend Engineer",
		"72.0%",
		"+ Go",
		"- Kubernetes",
		"Month 1: Kubernetes: K8s Fundamentals",
		"Backend Engineer at Acme (Remote)",
		"A strong fit with one infrastructure gap.",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, s)
		}
	}
}
