// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumatch_pipeline_runs_total",
		Help: "Analysis runs reaching a terminal outcome, by outcome.",
	}, []string{"outcome"})

	stageAdvances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resumatch_pipeline_stage_advances_total",
		Help: "Stage index advances across all analysis runs.",
	})
)
