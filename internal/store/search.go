// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const defaultSearchLimit = 20

// TermHit is a stored record matched by a term search.
type TermHit struct {
	RunID  string       `json:"run_id" yaml:"run_id"`
	Record types.Record `json:"record" yaml:"record"`
}

// SearchTerms runs an FTS5 query over record terms of every run, best
// match first. A limit <= 0 uses 20.
func (s *Store) SearchTerms(ctx context.Context, query string, limit int) ([]TermHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.term, r.source, r.intent, r.modifiers, r.metrics, r.top_results,
			r.cluster_id, r.opportunity, r.run_id
		 FROM records_fts
		 JOIN records r ON r.rowid = records_fts.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY records_fts.rank, r.run_id, r.position
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching terms: %w", err)
	}
	defer rows.Close()

	var hits []TermHit
	for rows.Next() {
		var hit TermHit
		rec, err := scanRecord(rows, &hit.RunID)
		if err != nil {
			return nil, err
		}
		hit.Record = rec
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
