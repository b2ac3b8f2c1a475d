// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/keyword-engine/internal/cluster"
	"github.com/pdiddy/keyword-engine/internal/completion"
	"github.com/pdiddy/keyword-engine/internal/logging"
	"github.com/pdiddy/keyword-engine/internal/metrics"
	"github.com/pdiddy/keyword-engine/internal/sources"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// --- mocks ---

type mockSource struct {
	name  string
	terms func(seed string) []string
	err   error
	calls atomic.Int32
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Generate(_ context.Context, seed string) ([]types.Candidate, error) {
	m.calls.Add(1)
	var out []types.Candidate
	if m.terms != nil {
		for _, t := range m.terms(seed) {
			out = append(out, types.Candidate{Term: t, Source: types.CandidateSource(m.name)})
		}
	}
	return out, m.err
}

type blockingSource struct{}

func (blockingSource) Name() string { return "slow" }

func (blockingSource) Generate(ctx context.Context, _ string) ([]types.Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockSearch struct {
	fail map[string]bool
}

func (m mockSearch) Name() string { return "mock_search" }
func (m mockSearch) Autocomplete(context.Context, string) ([]types.Candidate, error) {
	return nil, nil
}
func (m mockSearch) PeopleAlsoAsk(context.Context, string) ([]types.Candidate, error) {
	return nil, nil
}
func (m mockSearch) Related(context.Context, string) ([]types.Candidate, error) { return nil, nil }

func (m mockSearch) TopResults(_ context.Context, query string, topN int) ([]types.SearchResult, error) {
	if m.fail[query] {
		return nil, errors.New("serp down")
	}
	var out []types.SearchResult
	for i := 0; i < topN+5; i++ {
		out = append(out, types.SearchResult{Title: query, URL: fmt.Sprintf("https://example.com/%d", i), Rank: i + 1})
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("model offline")
}
func (failingEmbedder) Dimension() int { return 0 }

// raggedEmbedder returns one vector per text with alternating dimensions.
type raggedEmbedder struct{}

func (raggedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = make([]float64, 2+i%2)
		out[i][0] = 1
	}
	return out, nil
}
func (raggedEmbedder) Dimension() int { return 0 }

type failingClusterer struct{}

func (failingClusterer) Cluster([][]float64, int) ([]int, error) {
	return nil, fmt.Errorf("boom: %w", cluster.ErrClustering)
}

func fixed(terms ...string) func(string) []string {
	return func(string) []string { return terms }
}

func prefixed(suffixes ...string) func(string) []string {
	return func(seed string) []string {
		out := make([]string, len(suffixes))
		for i, s := range suffixes {
			out[i] = seed + " " + s
		}
		return out
	}
}

func testConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.EnrichLimit = 0
	return cfg
}

func terms(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Candidate.Term
	}
	return out
}

// --- Run ---

func TestRunRuleExpansionScenario(t *testing.T) {
	cfg := types.DefaultPipelineConfig()
	p := New(cfg, Deps{Rules: sources.RuleSource{}, Logger: logging.Discard()})

	res, err := p.Run(context.Background(), []string{"espresso machine"}, 5)
	require.NoError(t, err)

	require.Len(t, res.Records, 5)
	seen := map[string]bool{}
	for _, r := range res.Records {
		assert.True(t, strings.HasPrefix(r.Candidate.Term, "espresso machine "), r.Candidate.Term)
		assert.False(t, seen[r.Candidate.Key()])
		seen[r.Candidate.Key()] = true
		assert.NotNil(t, r.TopResults)
		assert.Empty(t, r.TopResults)
		assert.Nil(t, r.Opportunity)
		assert.Empty(t, r.ClusterID)
	}
	assert.Equal(t, len(sources.RuleModifiers), res.Report.Generated)

	// No search backend: enrichment degrades instead of failing.
	degraded := res.Report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, StageEnrich, degraded[0].Stage)
}

func TestRunNoSeeds(t *testing.T) {
	p := New(testConfig(), Deps{Rules: sources.RuleSource{}})
	for _, seeds := range [][]string{nil, {}, {"  ", ""}} {
		_, err := p.Run(context.Background(), seeds, 10)
		assert.ErrorIs(t, err, ErrNoSeeds)
		_, err = p.RunAndCluster(context.Background(), seeds, 10, 5)
		assert.ErrorIs(t, err, ErrNoSeeds)
	}
}

func TestRunOrderAndUniqueness(t *testing.T) {
	external := &mockSource{name: "external", terms: prefixed("reviews", "Price")}
	rules := &mockSource{name: "rule", terms: prefixed("price", "guide")}
	model := &mockSource{name: "model", terms: prefixed("GUIDE", "for home")}
	p := New(testConfig(), Deps{Rules: rules, Model: model, External: external})

	res, err := p.Run(context.Background(), []string{" grinder ", "kettle"}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"grinder reviews", "grinder Price", "grinder guide", "grinder for home",
		"kettle reviews", "kettle Price", "kettle guide", "kettle for home",
	}, terms(res.Records))
	assert.Equal(t, []string{"grinder", "kettle"}, res.Report.Seeds)
	assert.Equal(t, 12, res.Report.Generated)
	assert.Equal(t, 4, res.Report.Duplicates)
	assert.Len(t, res.Report.Outcomes, 6)
	assert.Empty(t, res.Report.Degraded())
}

func TestRunMaxCandidatesFallsBackToConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCandidates = 3
	p := New(cfg, Deps{Rules: sources.RuleSource{}})

	res, err := p.Run(context.Background(), []string{"tea"}, 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
}

func TestRunSourceFailureDegrades(t *testing.T) {
	rules := &mockSource{name: "rule", terms: prefixed("a", "b")}
	model := &mockSource{name: "model", err: fmt.Errorf("model expansion: %w", sources.ErrSourceUnavailable)}
	external := &mockSource{name: "external", terms: prefixed("partial"), err: errors.New("related: timeout")}
	p := New(testConfig(), Deps{Rules: rules, Model: model, External: external})

	res, err := p.Run(context.Background(), []string{"tea"}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"tea partial", "tea a", "tea b"}, terms(res.Records))

	degraded := res.Report.Degraded()
	require.Len(t, degraded, 2)
	assert.Equal(t, "external", degraded[0].Source)
	assert.Equal(t, 1, degraded[0].Candidates)
	assert.Equal(t, "model", degraded[1].Source)
	assert.Contains(t, degraded[1].Reason, "source unavailable")
}

func TestRunOpenCircuitReason(t *testing.T) {
	cfg := testConfig()
	cfg.Completion.BreakerFailures = 1
	cfg.Completion.BreakerOpenTimeout = time.Minute
	guard := completion.NewGuard(completion.Stub{}, cfg.Completion, nil)
	failing := completion.NewGuard(failingCompleter{}, cfg.Completion, nil)

	tests := []struct {
		name       string
		completer  completion.Completer
		wantPrefix bool
	}{
		{"unconfigured provider", guard, false},
		{"tripped breaker", failing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(cfg, Deps{Model: sources.ModelSource{Completer: tt.completer}})

			// The first run trips the breaker when the provider fails.
			_, err := p.Run(context.Background(), []string{"tea"}, 0)
			require.NoError(t, err)
			res, err := p.Run(context.Background(), []string{"tea"}, 0)
			require.NoError(t, err)

			degraded := res.Report.Degraded()
			require.Len(t, degraded, 1)
			assert.Equal(t, tt.wantPrefix, strings.HasPrefix(degraded[0].Reason, reasonCircuitOpen+": "), degraded[0].Reason)
		})
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string, int) (string, error) {
	return "", errors.New("provider down")
}

func TestRunEveryCallSucceedsOrDegradesPerSeed(t *testing.T) {
	rules := &mockSource{name: "rule", terms: prefixed("x")}
	p := New(testConfig(), Deps{Rules: rules})

	_, err := p.Run(context.Background(), []string{"a", "b", "c"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), rules.calls.Load())
}

func TestRunTimeoutDegradesBlockedSources(t *testing.T) {
	cfg := testConfig()
	cfg.RunTimeout = 50 * time.Millisecond
	p := New(cfg, Deps{Rules: sources.RuleSource{}, Model: blockingSource{}})

	res, err := p.Run(context.Background(), []string{"tea"}, 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, len(sources.RuleModifiers))

	degraded := res.Report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, "slow", degraded[0].Source)
	assert.Contains(t, degraded[0].Reason, context.DeadlineExceeded.Error())
}

func TestRunEnrichesLeadingRecords(t *testing.T) {
	cfg := testConfig()
	cfg.EnrichLimit = 3
	cfg.EnrichTopN = 4
	rules := &mockSource{name: "rule", terms: fixed("one", "two", "three", "four")}
	p := New(cfg, Deps{Rules: rules, Search: mockSearch{fail: map[string]bool{"two": true}}})

	res, err := p.Run(context.Background(), []string{"seed"}, 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	assert.Len(t, res.Records[0].TopResults, 4)
	assert.Equal(t, 1, res.Records[0].TopResults[0].Rank)
	assert.NotNil(t, res.Records[1].TopResults)
	assert.Empty(t, res.Records[1].TopResults)
	assert.Len(t, res.Records[2].TopResults, 4)
	assert.Empty(t, res.Records[3].TopResults)

	degraded := res.Report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, StageEnrich, degraded[0].Stage)
	assert.Equal(t, "two", degraded[0].Seed)
}

// --- RunAndCluster ---

func TestRunAndCluster(t *testing.T) {
	m := metrics.NewPipeline("test")
	p := New(testConfig(), Deps{Rules: sources.RuleSource{}, Metrics: m})

	out, err := p.RunAndCluster(context.Background(), []string{"espresso machine", "milk frother"}, 0, 5)
	require.NoError(t, err)
	require.Len(t, out.Records, 2*len(sources.RuleModifiers))

	total := 0
	ids := map[string]bool{}
	for _, c := range out.Clusters {
		assert.False(t, ids[c.ID], "duplicate cluster %s", c.ID)
		ids[c.ID] = true
		assert.Equal(t, c.ID, c.Label)
		assert.NotEmpty(t, c.Centroid)
		for _, r := range c.Records {
			assert.Equal(t, c.ID, r.ClusterID)
		}
		total += len(c.Records)
	}
	assert.Equal(t, len(out.Records), total)

	for _, r := range out.Records {
		require.NotNil(t, r.Opportunity)
		assert.GreaterOrEqual(t, *r.Opportunity, 0.0)
		assert.LessOrEqual(t, *r.Opportunity, 1.0)
		assert.True(t, ids[r.ClusterID])
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRunAndClusterSmallRunUsesFallback(t *testing.T) {
	rules := &mockSource{name: "rule", terms: prefixed("a", "b", "c")}
	p := New(testConfig(), Deps{Rules: rules})

	out, err := p.RunAndCluster(context.Background(), []string{"tea"}, 0, 5)
	require.NoError(t, err)
	require.Len(t, out.Records, 3)
	for _, r := range out.Records {
		assert.NotEqual(t, cluster.NoiseID, r.ClusterID)
	}
	assert.Len(t, out.Clusters, 2)
}

func TestRunAndClusterEmbedderFailureFallsBack(t *testing.T) {
	p := New(testConfig(), Deps{Rules: sources.RuleSource{}, Embedder: failingEmbedder{}})

	out, err := p.RunAndCluster(context.Background(), []string{"tea"}, 0, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Clusters)

	degraded := out.Report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, StageEmbed, degraded[0].Stage)
	assert.Contains(t, degraded[0].Reason, "model offline")
}

func TestRunAndClusterMixedDimensionsFallBack(t *testing.T) {
	p := New(testConfig(), Deps{Rules: sources.RuleSource{}, Embedder: raggedEmbedder{}})

	out, err := p.RunAndCluster(context.Background(), []string{"tea"}, 0, 5)
	require.NoError(t, err)
	assert.Len(t, out.Records, len(sources.RuleModifiers))
	assert.NotEmpty(t, out.Clusters)

	degraded := out.Report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, StageEmbed, degraded[0].Stage)
	assert.Contains(t, degraded[0].Reason, "dimension")
}

func TestRunAndClusterClusteringFailureIsFatal(t *testing.T) {
	p := New(testConfig(), Deps{Rules: sources.RuleSource{}, Clusterer: failingClusterer{}})

	_, err := p.RunAndCluster(context.Background(), []string{"tea"}, 0, 5)
	assert.ErrorIs(t, err, cluster.ErrClustering)
}

func TestRunAndClusterNoCandidates(t *testing.T) {
	model := &mockSource{name: "model", err: sources.ErrMalformedResponse}
	p := New(testConfig(), Deps{Model: model})

	out, err := p.RunAndCluster(context.Background(), []string{"tea"}, 0, 5)
	require.NoError(t, err)
	assert.Empty(t, out.Records)
	assert.Empty(t, out.Clusters)
}

// --- NewDeps ---

func TestNewDepsWithoutCredentials(t *testing.T) {
	cfg := types.DefaultPipelineConfig()
	deps := NewDeps(cfg, logging.Discard(), nil)

	require.NotNil(t, deps.Rules)
	require.NotNil(t, deps.Model)
	require.NotNil(t, deps.External)
	require.NotNil(t, deps.Search)

	// Unconfigured completion degrades rather than producing candidates.
	cands, err := deps.Model.Generate(context.Background(), "tea")
	assert.Error(t, err)
	assert.Empty(t, cands)
}
