// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opportunity computes a bounded desirability score per keyword
// record from its metrics and term length.
package opportunity

import (
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const (
	volumeCap         = 50000.0
	defaultDifficulty = 50.0
	defaultTrend      = 0.5
	maxLongtailBonus  = 0.2
	longtailStep      = 0.05

	volumeWeight     = 0.4
	difficultyWeight = 0.3
	trendWeight      = 0.2
	longtailWeight   = 0.1
)

// Score returns a value in [0,1]. Missing volume counts as zero demand;
// missing difficulty and trend take neutral midpoints.
func Score(r types.Record) float64 {
	m := r.Metrics

	var vol float64
	if m.Volume != nil {
		vol = clamp(float64(*m.Volume), 0, volumeCap) / volumeCap
	}
	kd := defaultDifficulty
	if m.Difficulty != nil {
		kd = *m.Difficulty
	}
	kd = clamp(kd, 0, 100) / 100
	trend := defaultTrend
	if m.Trend != nil {
		trend = *m.Trend
	}
	trend = clamp(trend, 0, 1)

	tokens := len(strings.Fields(r.Candidate.Term))
	bonus := clamp(float64(tokens-2)*longtailStep, 0, maxLongtailBonus)

	score := volumeWeight*vol +
		difficultyWeight*(1-kd) +
		trendWeight*trend +
		longtailWeight*(bonus/maxLongtailBonus)
	return clamp(score, 0, 1)
}

// Apply sets Opportunity on every record in place.
func Apply(records []types.Record) {
	for i := range records {
		s := Score(records[i])
		records[i].Opportunity = &s
	}
}

// clamp also maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
