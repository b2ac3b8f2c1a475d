// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a keyword research run: candidates are
// collected from every source for every seed, deduplicated and capped,
// enriched with top search results, then scored, embedded, clustered and
// grouped. A failing seed, source or lookup degrades only its own output;
// the run continues and the failure is reported as an Outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/keyword-engine/internal/cluster"
	"github.com/pdiddy/keyword-engine/internal/completion"
	"github.com/pdiddy/keyword-engine/internal/embed"
	"github.com/pdiddy/keyword-engine/internal/metrics"
	"github.com/pdiddy/keyword-engine/internal/opportunity"
	"github.com/pdiddy/keyword-engine/internal/sources"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ErrNoSeeds is returned when no non-blank seed is given.
var ErrNoSeeds = errors.New("no seeds provided")

const defaultMinGroupSize = 5

// reasonCircuitOpen prefixes the reason of tasks skipped by an open
// completion circuit breaker.
const reasonCircuitOpen = "circuit open"

// Stage names used in outcomes and metrics.
const (
	StageCollect = "collect"
	StageEnrich  = "enrich"
	StageEmbed   = "embed"
	StageCluster = "cluster"
)

// Status of a single task.
type Status string

const (
	StatusOK       Status = metrics.StatusOK
	StatusDegraded Status = metrics.StatusDegraded
)

// Outcome reports one task: a source run for a seed, an enrichment lookup
// for a term, or a whole-run stage such as embedding.
type Outcome struct {
	Stage  string `json:"stage" yaml:"stage"`
	Source string `json:"source" yaml:"source"`
	// Seed is the seed for collection tasks and the term for enrichment.
	Seed       string `json:"seed,omitempty" yaml:"seed,omitempty"`
	Status     Status `json:"status" yaml:"status"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Candidates int    `json:"candidates" yaml:"candidates"`
}

// Report summarizes a run.
type Report struct {
	Seeds      []string  `json:"seeds" yaml:"seeds"`
	Generated  int       `json:"generated" yaml:"generated"`
	Duplicates int       `json:"duplicates" yaml:"duplicates"`
	Outcomes   []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Degraded returns the outcomes that did not succeed.
func (r Report) Degraded() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status != StatusOK {
			out = append(out, o)
		}
	}
	return out
}

// Result holds unscored, unclustered records.
type Result struct {
	Records []types.Record
	Report  Report
}

// Clustered holds scored records and the clusters that partition them.
type Clustered struct {
	Clusters []types.Cluster
	Records  []types.Record
	Report   Report
}

// Deps are the collaborators of a Pipeline. Nil sources are skipped; a nil
// Search disables enrichment; nil Embedder and Clusterer get defaults from
// the config.
type Deps struct {
	Rules    sources.Source
	Model    sources.Source
	External sources.Source
	Search   sources.SearchBackend

	Embedder  embed.Embedder
	Clusterer cluster.Clusterer

	Logger  *slog.Logger
	Metrics *metrics.Pipeline
}

// Pipeline runs keyword research for a set of seeds.
type Pipeline struct {
	cfg  types.PipelineConfig
	deps Deps
}

// New builds a pipeline from cfg and deps.
func New(cfg types.PipelineConfig, deps Deps) *Pipeline {
	if deps.Embedder == nil {
		deps.Embedder = embed.HashEmbedder{Dim: cfg.Embedding.HashDimension}
	}
	if deps.Clusterer == nil {
		deps.Clusterer = cluster.Engine{Density: !cfg.Cluster.DisableDensity}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{cfg: cfg, deps: deps}
}

// Run collects, deduplicates and enriches candidates for seeds. A
// maxCandidates <= 0 uses the configured MaxCandidates.
func (p *Pipeline) Run(ctx context.Context, seeds []string, maxCandidates int) (Result, error) {
	seeds = cleanSeeds(seeds)
	if len(seeds) == 0 {
		return Result{}, ErrNoSeeds
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.run(ctx, seeds, maxCandidates), nil
}

// RunAndCluster runs the pipeline and then scores, embeds, clusters and
// groups the records. A minGroupSize <= 0 uses the configured value.
func (p *Pipeline) RunAndCluster(ctx context.Context, seeds []string, maxCandidates, minGroupSize int) (Clustered, error) {
	seeds = cleanSeeds(seeds)
	if len(seeds) == 0 {
		return Clustered{}, ErrNoSeeds
	}
	if minGroupSize <= 0 {
		minGroupSize = p.cfg.Cluster.MinGroupSize
	}
	if minGroupSize <= 0 {
		minGroupSize = defaultMinGroupSize
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	res := p.run(ctx, seeds, maxCandidates)
	records := res.Records
	opportunity.Apply(records)

	vectors, embedOutcome := p.embed(ctx, records)
	res.Report.Outcomes = append(res.Report.Outcomes, embedOutcome)

	start := time.Now()
	labels, err := p.deps.Clusterer.Cluster(vectors, minGroupSize)
	if err != nil {
		return Clustered{Records: records, Report: res.Report}, fmt.Errorf("clustering %d records: %w", len(records), err)
	}
	clusters, err := cluster.Group(records, vectors, labels)
	if err != nil {
		return Clustered{Records: records, Report: res.Report}, err
	}
	p.deps.Metrics.ObserveStage(StageCluster, time.Since(start))
	p.observeClusters(clusters)

	p.deps.Logger.Info("run clustered", "records", len(records), "clusters", len(clusters), "min_group_size", minGroupSize)
	return Clustered{Clusters: clusters, Records: records, Report: res.Report}, nil
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RunTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.RunTimeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pipeline) run(ctx context.Context, seeds []string, maxCandidates int) Result {
	if maxCandidates <= 0 {
		maxCandidates = p.cfg.MaxCandidates
	}
	report := Report{Seeds: seeds}

	start := time.Now()
	perSeed, outcomes := p.collect(ctx, seeds)
	report.Outcomes = append(report.Outcomes, outcomes...)
	p.deps.Metrics.ObserveStage(StageCollect, time.Since(start))

	var all []types.Candidate
	for _, cands := range perSeed {
		all = append(all, cands...)
	}
	unique := Dedupe(all, 0)
	report.Generated = len(all)
	report.Duplicates = len(all) - len(unique)
	if maxCandidates > 0 && len(unique) > maxCandidates {
		unique = unique[:maxCandidates]
	}

	records := make([]types.Record, len(unique))
	for i, c := range unique {
		records[i] = types.NewRecord(c)
	}
	p.deps.Metrics.ObserveRecords(len(records))

	start = time.Now()
	report.Outcomes = append(report.Outcomes, p.enrich(ctx, records)...)
	p.deps.Metrics.ObserveStage(StageEnrich, time.Since(start))

	p.deps.Logger.Info("run collected", "seeds", len(seeds), "generated", report.Generated,
		"duplicates", report.Duplicates, "records", len(records), "degraded", len(report.Degraded()))
	return Result{Records: records, Report: report}
}

// collect runs every source for every seed concurrently. The candidates of
// seed i are returned at index i, ordered external, rule, model.
func (p *Pipeline) collect(ctx context.Context, seeds []string) ([][]types.Candidate, []Outcome) {
	var srcs []sources.Source
	for _, s := range []sources.Source{p.deps.External, p.deps.Rules, p.deps.Model} {
		if s != nil {
			srcs = append(srcs, s)
		}
	}

	cands := make([][][]types.Candidate, len(seeds))
	outcomes := make([][]Outcome, len(seeds))
	for i := range seeds {
		cands[i] = make([][]types.Candidate, len(srcs))
		outcomes[i] = make([]Outcome, len(srcs))
	}

	var wg sync.WaitGroup
	for i, seed := range seeds {
		for j, src := range srcs {
			wg.Add(1)
			go func(i, j int, seed string, src sources.Source) {
				defer wg.Done()
				got, err := src.Generate(ctx, seed)
				cands[i][j] = got
				outcomes[i][j] = p.outcome(StageCollect, src.Name(), seed, len(got), err)
				p.deps.Metrics.ObserveCandidates(src.Name(), len(got))
			}(i, j, seed, src)
		}
	}
	wg.Wait()

	perSeed := make([][]types.Candidate, len(seeds))
	var flat []Outcome
	for i := range seeds {
		for j := range srcs {
			perSeed[i] = append(perSeed[i], cands[i][j]...)
		}
		flat = append(flat, outcomes[i]...)
	}
	return perSeed, flat
}

// enrich fills TopResults for the leading EnrichLimit records. Records that
// are not enriched, or whose lookup fails, keep an empty slice.
func (p *Pipeline) enrich(ctx context.Context, records []types.Record) []Outcome {
	n := min(p.cfg.EnrichLimit, len(records))
	if n <= 0 {
		return nil
	}
	if p.deps.Search == nil {
		return []Outcome{p.outcome(StageEnrich, "search", "", 0,
			fmt.Errorf("enrichment: %w", sources.ErrSourceUnavailable))}
	}

	topN := p.cfg.EnrichTopN
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			term := records[i].Candidate.Term
			results, err := p.deps.Search.TopResults(ctx, term, topN)
			if err != nil {
				results = nil
			}
			if topN > 0 && len(results) > topN {
				results = results[:topN]
			}
			if results == nil {
				results = []types.SearchResult{}
			}
			records[i].TopResults = results
			outcomes[i] = p.outcome(StageEnrich, p.deps.Search.Name(), term, len(results), err)
		}(i)
	}
	wg.Wait()
	return outcomes
}

// embed returns one vector per record. An embedder failure falls back to
// the hashed embedder for the whole batch.
func (p *Pipeline) embed(ctx context.Context, records []types.Record) ([][]float64, Outcome) {
	start := time.Now()
	defer func() { p.deps.Metrics.ObserveStage(StageEmbed, time.Since(start)) }()

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Candidate.Term
	}
	vectors, err := p.deps.Embedder.Embed(ctx, texts)
	if err == nil {
		err = embed.CheckShape(vectors, len(texts))
	}
	if err != nil {
		vectors, _ = embed.HashEmbedder{Dim: p.cfg.Embedding.HashDimension}.Embed(ctx, texts)
	}
	return vectors, p.outcome(StageEmbed, "embedder", "", len(vectors), err)
}

func (p *Pipeline) outcome(stage, source, seed string, n int, err error) Outcome {
	o := Outcome{Stage: stage, Source: source, Seed: seed, Status: StatusOK, Candidates: n}
	if err != nil {
		o.Status = StatusDegraded
		o.Reason = err.Error()
		if completion.IsCircuitOpen(err) {
			o.Reason = reasonCircuitOpen + ": " + o.Reason
		}
		p.deps.Logger.Warn("task degraded", "stage", stage, "source", source, "seed", seed, "kept", n, "error", err)
	}
	p.deps.Metrics.ObserveOutcome(source, string(o.Status))
	return o
}

func (p *Pipeline) observeClusters(clusters []types.Cluster) {
	groups, noise := 0, 0
	for _, c := range clusters {
		if c.ID == cluster.NoiseID {
			noise++
		} else {
			groups++
		}
	}
	p.deps.Metrics.ObserveClusters(groups, noise)
}

func cleanSeeds(seeds []string) []string {
	var out []string
	for _, s := range seeds {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
