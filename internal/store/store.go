// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists keyword research runs in SQLite: one row per run,
// its records in output order, and its clusters. Record terms are indexed
// with FTS5 for search across runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/keyword-engine/internal/pipeline"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

const (
	dbFile = "keyword-engine.db"

	// timeLayout has fixed width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

var now = time.Now

// Run is one persisted pipeline invocation.
type Run struct {
	ID            string          `json:"id" yaml:"id"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	Seeds         []string        `json:"seeds" yaml:"seeds"`
	MaxCandidates int             `json:"max_candidates" yaml:"max_candidates"`
	MinGroupSize  int             `json:"min_group_size" yaml:"min_group_size"`
	Clusters      []types.Cluster `json:"clusters" yaml:"clusters"`
	Report        pipeline.Report `json:"report" yaml:"report"`

	// Records holds every record in output order. Exports carry records
	// through Clusters only.
	Records []types.Record `json:"-" yaml:"-"`
}

// NewRun builds a Run from a clustered pipeline result.
func NewRun(seeds []string, maxCandidates, minGroupSize int, out pipeline.Clustered) *Run {
	return &Run{
		Seeds:         seeds,
		MaxCandidates: maxCandidates,
		MinGroupSize:  minGroupSize,
		Clusters:      out.Clusters,
		Records:       out.Records,
		Report:        out.Report,
	}
}

// RunSummary is a row of the run listing.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	Seeds     []string
	Records   int
	Clusters  int
}

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.DataDir/keyword-engine.db
// and creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			seeds TEXT NOT NULL,
			max_candidates INTEGER,
			min_group_size INTEGER,
			report TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			term TEXT NOT NULL,
			source TEXT NOT NULL,
			intent TEXT,
			modifiers TEXT,
			metrics TEXT,
			top_results TEXT,
			cluster_id TEXT,
			opportunity REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id, position)`,
		`CREATE TABLE IF NOT EXISTS clusters (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			label TEXT,
			centroid TEXT,
			PRIMARY KEY (run_id, id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(term, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, term) VALUES (new.rowid, new.term);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, term) VALUES('delete', old.rowid, old.term);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// SaveRun inserts run and returns its id. A new UUID is assigned when
// run.ID is empty and CreatedAt defaults to now.
func (s *Store) SaveRun(ctx context.Context, run *Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	seedsJSON, _ := json.Marshal(run.Seeds)
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seeds, max_candidates, min_group_size, report)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), string(seedsJSON),
		run.MaxCandidates, run.MinGroupSize, string(reportJSON),
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, term, source, intent, modifiers, metrics, top_results, cluster_id, opportunity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing record insert: %w", err)
	}
	defer recStmt.Close()

	for i, r := range run.recordsInOrder() {
		modsJSON, _ := json.Marshal(r.Candidate.Modifiers)
		metricsJSON, _ := json.Marshal(r.Metrics)
		resultsJSON, _ := json.Marshal(r.TopResults)
		var opp sql.NullFloat64
		if r.Opportunity != nil {
			opp = sql.NullFloat64{Float64: *r.Opportunity, Valid: true}
		}
		if _, err := recStmt.ExecContext(ctx,
			run.ID, i, r.Candidate.Term, string(r.Candidate.Source), string(r.Candidate.Intent),
			string(modsJSON), string(metricsJSON), string(resultsJSON), r.ClusterID, opp,
		); err != nil {
			return "", fmt.Errorf("inserting record %q: %w", r.Candidate.Term, err)
		}
	}

	for i, c := range run.Clusters {
		centroidJSON, _ := json.Marshal(c.Centroid)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clusters (run_id, position, id, label, centroid) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, c.ID, c.Label, string(centroidJSON),
		); err != nil {
			return "", fmt.Errorf("inserting cluster %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// recordsInOrder returns Records, or the cluster members when Records is empty.
func (r *Run) recordsInOrder() []types.Record {
	if len(r.Records) > 0 {
		return r.Records
	}
	var out []types.Record
	for _, c := range r.Clusters {
		out = append(out, c.Records...)
	}
	return out
}

// ListRuns returns run summaries, newest first. A limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, r.seeds,
			(SELECT count(*) FROM records WHERE run_id = r.id),
			(SELECT count(*) FROM clusters WHERE run_id = r.id)
		 FROM runs r
		 ORDER BY r.created_at DESC, r.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum       RunSummary
			createdAt string
			seedsJSON string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &seedsJSON, &sum.Records, &sum.Clusters); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		json.Unmarshal([]byte(seedsJSON), &sum.Seeds)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// LoadRun reads a run with its records and clusters. Cluster members are
// rebuilt from the records' cluster ids in record order.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	var (
		run        = &Run{ID: id}
		createdAt  string
		seedsJSON  string
		reportJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, seeds, max_candidates, min_group_size, report FROM runs WHERE id = ?`, id,
	).Scan(&createdAt, &seedsJSON, &run.MaxCandidates, &run.MinGroupSize, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	json.Unmarshal([]byte(seedsJSON), &run.Seeds)
	if reportJSON.Valid {
		json.Unmarshal([]byte(reportJSON.String), &run.Report)
	}

	records, err := s.queryRecords(ctx,
		`SELECT term, source, intent, modifiers, metrics, top_results, cluster_id, opportunity
		 FROM records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	run.Records = records

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, centroid FROM clusters WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading clusters: %w", err)
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var (
			c            types.Cluster
			label        sql.NullString
			centroidJSON sql.NullString
		)
		if err := rows.Scan(&c.ID, &label, &centroidJSON); err != nil {
			return nil, fmt.Errorf("scanning cluster: %w", err)
		}
		c.Label = label.String
		if centroidJSON.Valid {
			json.Unmarshal([]byte(centroidJSON.String), &c.Centroid)
		}
		index[c.ID] = len(run.Clusters)
		run.Clusters = append(run.Clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, r := range records {
		if i, ok := index[r.ClusterID]; ok {
			run.Clusters[i].Records = append(run.Clusters[i].Records, r)
		}
	}
	return run, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads term, source, intent, modifiers, metrics, top_results,
// cluster_id and opportunity, followed by any extra destinations.
func scanRecord(row scanner, extra ...any) (types.Record, error) {
	var (
		r           types.Record
		source      string
		intent      sql.NullString
		modsJSON    sql.NullString
		metricsJSON sql.NullString
		resultsJSON sql.NullString
		clusterID   sql.NullString
		opp         sql.NullFloat64
	)
	dest := append([]any{&r.Candidate.Term, &source, &intent, &modsJSON, &metricsJSON, &resultsJSON, &clusterID, &opp}, extra...)
	if err := row.Scan(dest...); err != nil {
		return r, fmt.Errorf("scanning record: %w", err)
	}
	r.Candidate.Source = types.CandidateSource(source)
	r.Candidate.Intent = types.Intent(intent.String)
	if modsJSON.Valid {
		json.Unmarshal([]byte(modsJSON.String), &r.Candidate.Modifiers)
	}
	if metricsJSON.Valid {
		json.Unmarshal([]byte(metricsJSON.String), &r.Metrics)
	}
	if resultsJSON.Valid {
		json.Unmarshal([]byte(resultsJSON.String), &r.TopResults)
	}
	if r.TopResults == nil {
		r.TopResults = []types.SearchResult{}
	}
	r.ClusterID = clusterID.String
	if opp.Valid {
		v := opp.Float64
		r.Opportunity = &v
	}
	return r, nil
}
