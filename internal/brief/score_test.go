// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopTerms(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		topK int
		want []string
	}{
		{
			name: "frequency then alphabetical",
			docs: []string{"tea tea coffee"},
			topK: 2,
			want: []string{"tea", "coffee"},
		},
		{
			name: "all n-grams of one sentence",
			docs: []string{"Espresso machines brew espresso."},
			topK: 30,
			want: []string{
				"espresso", "brew", "brew espresso", "espresso machines", "espresso machines brew",
				"machines", "machines brew", "machines brew espresso",
			},
		},
		{
			name: "stop words and single letters dropped before n-grams",
			docs: []string{"The best of a espresso"},
			topK: 10,
			want: []string{"best", "best espresso", "espresso"},
		},
		{
			name: "only stop words",
			docs: []string{"the and of"},
			topK: 5,
			want: []string{},
		},
		{
			name: "no documents",
			docs: []string{"", "  "},
			topK: 5,
			want: nil,
		},
		{
			name: "weights summed across documents",
			docs: []string{"grinder burr", "grinder blade"},
			topK: 2,
			want: []string{"grinder", "blade"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopTerms(tt.docs, tt.topK))
		})
	}
}

func TestScore(t *testing.T) {
	var long strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&long, "word%d ", i)
	}

	tests := []struct {
		name        string
		text        string
		entities    []string
		want        float64
		wantCovered []string
		wantMissing []string
	}{
		{
			name:        "half covered, eight terms",
			text:        "Espresso machines brew espresso.",
			entities:    []string{"espresso", "grinder"},
			want:        0.7*0.5 + 0.3*8.0/30,
			wantCovered: []string{"espresso"},
			wantMissing: []string{"grinder"},
		},
		{
			name:        "diversity capped at one",
			text:        long.String() + "espresso",
			entities:    []string{"Espresso"},
			want:        1.0,
			wantCovered: []string{"espresso"},
			wantMissing: []string{},
		},
		{
			name:        "no entities",
			text:        "espresso",
			entities:    []string{" ", ""},
			want:        0,
			wantCovered: []string{},
			wantMissing: []string{},
		},
		{
			name:        "empty text",
			text:        "",
			entities:    []string{"espresso"},
			want:        0,
			wantCovered: []string{},
			wantMissing: []string{"espresso"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.text, tt.entities)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
			assert.Equal(t, tt.wantCovered, got.Covered)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}
