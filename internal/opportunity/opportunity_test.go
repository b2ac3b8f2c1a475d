// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opportunity

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func record(term string, m types.Metrics) types.Record {
	r := types.NewRecord(types.Candidate{Term: term, Source: types.SourceRule})
	r.Metrics = m
	return r
}

func TestScore(t *testing.T) {
	best := types.Metrics{Volume: ptr(100000), Difficulty: ptr(0.0), Trend: ptr(1.0)}

	tests := []struct {
		name    string
		term    string
		metrics types.Metrics
		want    float64
	}{
		{"all missing, two tokens", "espresso machine", types.Metrics{}, 0.25},
		{"best metrics, six tokens", "best espresso machine for small kitchens", best, 1.0},
		{"best metrics, five tokens", "best espresso machine for beginners", best, 0.975},
		{"volume at cap", "a b", types.Metrics{Volume: ptr(50000)}, 0.65},
		{"negative volume", "a b", types.Metrics{Volume: ptr(-10)}, 0.25},
		{"difficulty above range", "a b", types.Metrics{Difficulty: ptr(250.0)}, 0.1},
		{"trend below range", "a b", types.Metrics{Trend: ptr(-3.0)}, 0.15},
		{"one token", "espresso", types.Metrics{}, 0.25},
		{"blank term", "   ", types.Metrics{}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(record(tt.term, tt.metrics)), 1e-9)
		})
	}
}

func TestScoreBounded(t *testing.T) {
	volumes := []*int{nil, ptr(-1), ptr(0), ptr(49999), ptr(1 << 30)}
	floats := []*float64{nil, ptr(-1e9), ptr(0.0), ptr(0.5), ptr(99.0), ptr(1e9), ptr(math.NaN()), ptr(math.Inf(1))}
	terms := []string{"", "a", "a b c d e f g h i j"}

	for _, v := range volumes {
		for _, d := range floats {
			for _, tr := range floats {
				for _, term := range terms {
					s := Score(record(term, types.Metrics{Volume: v, Difficulty: d, Trend: tr}))
					require.GreaterOrEqual(t, s, 0.0)
					require.LessOrEqual(t, s, 1.0)
				}
			}
		}
	}
}

func TestScoreLongtailMonotone(t *testing.T) {
	m := types.Metrics{Volume: ptr(1200), Difficulty: ptr(35.0)}
	prev := -1.0
	for tokens := 1; tokens <= 8; tokens++ {
		term := strings.TrimSpace(strings.Repeat("word ", tokens))
		s := Score(record(term, m))
		assert.GreaterOrEqual(t, s, prev, "tokens=%d", tokens)
		prev = s
	}
}

func TestApply(t *testing.T) {
	records := []types.Record{
		record("espresso machine", types.Metrics{}),
		record("espresso machine for beginners at home", types.Metrics{Volume: ptr(100000), Difficulty: ptr(0.0), Trend: ptr(1.0)}),
	}
	Apply(records)

	require.NotNil(t, records[0].Opportunity)
	require.NotNil(t, records[1].Opportunity)
	assert.InDelta(t, 0.25, *records[0].Opportunity, 1e-9)
	assert.InDelta(t, 1.0, *records[1].Opportunity, 1e-9)
}
