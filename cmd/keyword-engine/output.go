// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const termWidth = 50

// printClusters writes one block per cluster with its keywords ordered by
// opportunity, highest first.
func printClusters(w io.Writer, clusters []types.Cluster) {
	if len(clusters) == 0 {
		fmt.Fprintln(w, "No keywords found.")
		return
	}

	total := 0
	for _, c := range clusters {
		total += len(c.Records)
		fmt.Fprintf(w, "%s (%d keywords)\n", c.Label, len(c.Records))
		fmt.Fprintf(w, "  %-*s  %-8s  %-13s  %s\n", termWidth, "Keyword", "Source", "Intent", "Opportunity")
		fmt.Fprintln(w, "  "+strings.Repeat("-", termWidth+39))

		records := append([]types.Record(nil), c.Records...)
		sort.SliceStable(records, func(i, j int) bool {
			return opportunity(records[i]) > opportunity(records[j])
		})
		for _, r := range records {
			fmt.Fprintf(w, "  %-*s  %-8s  %-13s  %.3f\n",
				termWidth, truncate(r.Candidate.Term, termWidth), r.Candidate.Source, r.Candidate.Intent, opportunity(r))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d keywords in %d clusters\n", total, len(clusters))
}

func opportunity(r types.Record) float64 {
	if r.Opportunity == nil {
		return 0
	}
	return *r.Opportunity
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
