// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains output personality handling and small rendering
// helpers shared by the commands.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/resumatch/resumatch-cli/pkg/datatypes"
	"github.com/resumatch/resumatch-cli/pkg/extract"
)

// =============================================================================
// Personality Levels
// =============================================================================

// PersonalityLevel controls how chatty the CLI output is.
type PersonalityLevel string

const (
	// PersonalityFull enables banners, labels, and progress decoration.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard enables labels and progress, no banners.
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal prints content only.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine prints parseable output for scripts and pipes.
	PersonalityMachine PersonalityLevel = "machine"
)

var (
	personalityMu      sync.RWMutex
	currentPersonality = PersonalityStandard
)

// ParsePersonalityLevel converts a string to a PersonalityLevel.
// Unknown strings fall back to standard.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return PersonalityFull
	case "standard", "":
		return PersonalityStandard
	case "minimal":
		return PersonalityMinimal
	case "machine":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// InitPersonality sets the process personality from a flag value, the
// RESUMATCH_PERSONALITY environment variable, or the terminal state, in
// that order. Non-TTY stdout forces machine output.
func InitPersonality(flagValue string) {
	level := PersonalityStandard
	if env := os.Getenv("RESUMATCH_PERSONALITY"); env != "" {
		level = ParsePersonalityLevel(env)
	}
	if flagValue != "" {
		level = ParsePersonalityLevel(flagValue)
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		level = PersonalityMachine
	}

	personalityMu.Lock()
	currentPersonality = level
	personalityMu.Unlock()
}

// GetPersonality returns the process personality level.
func GetPersonality() PersonalityLevel {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

// =============================================================================
// Rendering Helpers
// =============================================================================

// relativeTime renders a timestamp the way the conversation list shows it.
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}

// renderExtracted prints a structured payload recovered from assistant
// text. Plain prose prints nothing here; the caller handles CleanText.
func renderExtracted(w io.Writer, result extract.Result) {
	switch result.Kind {
	case extract.KindProject:
		p := result.Project
		fmt.Fprintf(w, "\n  ── Project: %s", p.Title)
		if p.Difficulty != "" {
			fmt.Fprintf(w, " (%s)", p.Difficulty)
		}
		fmt.Fprintln(w)
		if p.Description != "" {
			fmt.Fprintf(w, "  %s\n", p.Description)
		}
		if len(p.TechStack) > 0 {
			fmt.Fprintf(w, "  Stack: %s\n", strings.Join(p.TechStack, ", "))
		}
		for i, step := range p.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}

	case extract.KindQuiz:
		fmt.Fprintf(w, "\n  ── Quiz (%d questions)\n", len(result.Quiz))
		for i, q := range result.Quiz {
			fmt.Fprintf(w, "  Q%d: %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Fprintf(w, "      %c) %s\n", 'a'+j, opt)
			}
		}
	}
}

// renderAnalysisResult prints the analysis summary for the terminal.
func renderAnalysisResult(w io.Writer, result *datatypes.AnalysisResult) {
	fmt.Fprintf(w, "\nRole detected: %s\n", result.RoleDetected)
	fmt.Fprintf(w, "Match score:   %.1f%%\n", result.MatchScore)
	if result.MatchScoreReasoning != "" {
		fmt.Fprintf(w, "Reasoning:     %s\n", result.MatchScoreReasoning)
	}

	if len(result.HeatmapData) > 0 {
		fmt.Fprintln(w, "\nSkills:")
		for _, item := range result.HeatmapData {
			marker := "+"
			if item.Status == datatypes.SkillGap {
				marker = "-"
			}
			fmt.Fprintf(w, "  %s %-20s %.0f%%\n", marker, item.Skill, item.Score*100)
		}
	}

	if len(result.Roadmap) > 0 {
		fmt.Fprintln(w, "\nRoadmap:")
		for _, node := range result.Roadmap {
			fmt.Fprintf(w, "  Month %d: %s", node.Month, node.Skill)
			if node.CourseTitle != "" {
				fmt.Fprintf(w, ": %s", node.CourseTitle)
			}
			fmt.Fprintln(w)
		}
	}

	if len(result.MatchedJobs) > 0 {
		fmt.Fprintln(w, "\nMatched jobs:")
		for _, job := range result.MatchedJobs {
			fmt.Fprintf(w, "  %.0f%%  %s at %s (%s)\n",
				job.MatchScore, job.Position, job.Company, job.Location)
		}
	}

	if da := result.DetailedAnalysis; da != nil && da.OverallAssessment != "" {
		fmt.Fprintf(w, "\n%s\n", da.OverallAssessment)
	}
}
