// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineWriteTextfile(t *testing.T) {
	m := NewPipeline("keyword-engine")
	m.ObserveCandidates("rule", 19)
	m.ObserveCandidates("rule", 19)
	m.ObserveOutcome("model", StatusDegraded)
	m.ObserveStage("collect", 1500*time.Millisecond)
	m.ObserveRecords(5)
	m.ObserveClusters(2, 1)

	path := filepath.Join(t.TempDir(), "keyword_engine.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `keyword_engine_pipeline_candidates_total{service="keyword-engine",source="rule"} 38`)
	assert.Contains(t, text, `keyword_engine_pipeline_source_outcomes_total{service="keyword-engine",source="model",status="degraded"} 1`)
	assert.Contains(t, text, `keyword_engine_pipeline_stage_duration_seconds_count{service="keyword-engine",stage="collect"} 1`)
	assert.Contains(t, text, `keyword_engine_pipeline_records_total{service="keyword-engine"} 5`)
	assert.Contains(t, text, `keyword_engine_cluster_clusters_total{kind="noise",service="keyword-engine"} 1`)
}

func TestNilPipelineIsNoop(t *testing.T) {
	var m *Pipeline
	assert.NotPanics(t, func() {
		m.ObserveCandidates("rule", 1)
		m.ObserveOutcome("rule", StatusOK)
		m.ObserveStage("collect", time.Second)
		m.ObserveRecords(1)
		m.ObserveClusters(1, 0)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestRegistryGathers(t *testing.T) {
	m := NewPipeline("test")
	m.ObserveRecords(3)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["keyword_engine_pipeline_records_total"])
}
