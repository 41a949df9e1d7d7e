// Copyright (C) 2025 ResuMatch Labs (oss@resumatch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumatch_stream_frames_decoded_total",
		Help: "Analysis stream frames decoded, by frame type.",
	}, []string{"type"})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resumatch_stream_frames_dropped_total",
		Help: "Analysis stream data lines dropped due to malformed JSON.",
	})
)
