// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains the analysis result types delivered by the
// "result" frame of the analysis stream.
package datatypes

import "encoding/json"

// =============================================================================
// Skill Status
// =============================================================================

// SkillStatus classifies a skill against the target job description.
type SkillStatus string

const (
	SkillMatch SkillStatus = "match"
	SkillGap   SkillStatus = "gap"
)

// =============================================================================
// Analysis Result
// =============================================================================

// HeatmapItem scores one skill from the resume against the job market.
type HeatmapItem struct {
	Skill  string      `json:"skill"`
	Status SkillStatus `json:"status"`
	Score  float64     `json:"score"`
}

// SkillRadarItem is one axis of the skill radar chart.
type SkillRadarItem struct {
	Skill     string  `json:"skill"`
	UserScore float64 `json:"userScore"`
}

// LearningNode is one month of the generated learning roadmap.
type LearningNode struct {
	Month       int    `json:"month"`
	Skill       string `json:"skill"`
	CourseTitle string `json:"course_title"`
	CourseURL   string `json:"course_url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// MatchedJob is one live posting matched against the resume.
type MatchedJob struct {
	ID         string  `json:"id"`
	Position   string  `json:"position"`
	Company    string  `json:"company"`
	Location   string  `json:"location"`
	URL        string  `json:"url"`
	Date       string  `json:"date,omitempty"`
	MatchScore float64 `json:"match_score"`
}

// DetailedAnalysis is the free-text portion of the analysis.
type DetailedAnalysis struct {
	OverallAssessment   string   `json:"overall_assessment"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// AnalysisResult is the final payload of an analysis run.
//
// Delivered inside the "result" frame of the analysis stream and reused as
// the chat context object, so the coaching agent sees the same facts the
// report shows.
type AnalysisResult struct {
	Status              string            `json:"status,omitempty"`
	RoleDetected        string            `json:"role_detected"`
	MatchScore          float64           `json:"match_score"`
	MatchScoreReasoning string            `json:"match_score_reasoning,omitempty"`
	SkillRadar          []SkillRadarItem  `json:"skill_radar,omitempty"`
	HeatmapData         []HeatmapItem     `json:"heatmap_data,omitempty"`
	Roadmap             []LearningNode    `json:"roadmap,omitempty"`
	MatchedJobs         []MatchedJob      `json:"matched_jobs,omitempty"`
	DetailedAnalysis    *DetailedAnalysis `json:"detailed_analysis,omitempty"`
}

// TopGap returns the most significant missing skill, or "" when the
// heatmap reports no gaps.
func (r *AnalysisResult) TopGap() string {
	for _, item := range r.HeatmapData {
		if item.Status == SkillGap {
			return item.Skill
		}
	}
	return ""
}

// Summary projects the result down to the fields that identify an
// analysis for comparison purposes.
func (r *AnalysisResult) Summary() AnalysisSummary {
	return AnalysisSummary{
		Role:  r.RoleDetected,
		Score: r.MatchScore,
	}
}

// ContextObject renders the result as the opaque chat context map.
func (r *AnalysisResult) ContextObject() map[string]any {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// =============================================================================
// Analysis Summary
// =============================================================================

// AnalysisSummary identifies one analysis outcome. Two analyses with equal
// summaries are treated as the same analysis by the conversation reset
// policy.
type AnalysisSummary struct {
	Role  string  `json:"role"`
	Score float64 `json:"score"`
}

// Equal reports whether both fields match exactly.
func (s AnalysisSummary) Equal(other AnalysisSummary) bool {
	return s.Role == other.Role && s.Score == other.Score
}
