// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/keyword-engine/internal/pipeline"
	"github.com/pdiddy/keyword-engine/internal/secrets"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("KEYWORD_ENGINE_MAX_CANDIDATES", "42")
	t.Setenv("KEYWORD_ENGINE_SOURCES_TIMEOUT", "5s")
	t.Setenv("KEYWORD_ENGINE_CLUSTER_MIN_GROUP_SIZE", "3")

	v := viper.New()
	v.SetEnvPrefix("KEYWORD_ENGINE")
	v.SetEnvKeyReplacer(keyReplacer)
	v.AutomaticEnv()
	require.NoError(t, setDefaults(v))

	cfg, err := loadConfig(v, secrets.Set{"google-cse-api-key": "k", "google-cse-cx": "cx"})
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.MaxCandidates)
	assert.Equal(t, 5*time.Second, cfg.Sources.Timeout)
	assert.Equal(t, 3, cfg.Cluster.MinGroupSize)
	assert.Equal(t, 20, cfg.EnrichLimit)
	assert.Equal(t, types.ProviderPerplexity, cfg.Completion.ResearchProvider)
	assert.Equal(t, "k", cfg.Sources.GoogleCSEAPIKey)
	assert.Equal(t, "cx", cfg.Sources.GoogleCSECX)
	assert.NotNil(t, cfg.Completion.Providers)
}

func TestPrintClusters(t *testing.T) {
	clusters := []types.Cluster{{
		ID:    "c0",
		Label: "c0",
		Records: []types.Record{
			{Candidate: types.Candidate{Term: "espresso machine review", Source: types.SourceRule}, Opportunity: ptr(0.25)},
			{Candidate: types.Candidate{Term: "best espresso machine for beginners", Source: types.SourceModel}, Opportunity: ptr(0.4)},
		},
	}}

	var buf bytes.Buffer
	printClusters(&buf, clusters)
	out := buf.String()

	assert.Contains(t, out, "c0 (2 keywords)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("best espresso")), bytes.Index(buf.Bytes(), []byte("espresso machine review")),
		"higher opportunity first")
	assert.Contains(t, out, "0.400")
	assert.Contains(t, out, "2 keywords in 1 clusters")

	buf.Reset()
	printClusters(&buf, nil)
	assert.Equal(t, "No keywords found.\n", buf.String())
}

func TestPrintWarnings(t *testing.T) {
	color.NoColor = true
	report := pipeline.Report{Outcomes: []pipeline.Outcome{
		{Stage: pipeline.StageCollect, Source: "rule", Seed: "tea", Status: pipeline.StatusOK},
		{Stage: pipeline.StageCollect, Source: "model", Seed: "tea", Status: pipeline.StatusDegraded, Reason: "no completion provider configured"},
		{Stage: pipeline.StageEmbed, Source: "embedder", Status: pipeline.StatusDegraded, Reason: "model offline"},
	}}

	var buf bytes.Buffer
	printWarnings(&buf, report)
	assert.Equal(t,
		"warning: collect model (tea): no completion provider configured\n"+
			"warning: embed embedder (embed): model offline\n",
		buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestPrintScore(t *testing.T) {
	color.NoColor = true
	tests := []struct {
		name  string
		score types.OptimizationScore
		want  string
	}{
		{
			name:  "all covered",
			score: types.OptimizationScore{Value: 0.9, Covered: []string{"espresso"}, Missing: []string{}},
			want:  "Optimization score: 0.90 (1 covered, 0 missing)\n",
		},
		{
			name:  "missing entities",
			score: types.OptimizationScore{Value: 0.43, Covered: []string{"espresso"}, Missing: []string{"grinder", "tamper"}},
			want:  "Optimization score: 0.43 (1 covered, 2 missing)\nwarning: missing entities: grinder, tamper\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printScore(&buf, tt.score)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.yaml")
	require.NoError(t, writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "title: Guide\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "title: Guide\n", string(data))

	boom := errors.New("encode failed")
	err = writeOutput(filepath.Join(t.TempDir(), "x.yaml"), func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name string
		info func() (*debug.BuildInfo, bool)
		want string
	}{
		{
			name: "no build info",
			info: func() (*debug.BuildInfo, bool) { return nil, false },
			want: "keyword-engine dev\n",
		},
		{
			name: "with vcs settings",
			info: func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{GoVersion: "go1.25.6", Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.modified", Value: "true"},
					{Key: "GOOS", Value: "linux"},
				}}, true
			},
			want: "keyword-engine dev\n  go:       go1.25.6\n  revision: abc123\n  modified: true\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printVersion(&buf, tt.info)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
