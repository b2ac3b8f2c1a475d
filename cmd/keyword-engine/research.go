// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/keyword-engine/internal/metrics"
	"github.com/pdiddy/keyword-engine/internal/pipeline"
	"github.com/pdiddy/keyword-engine/internal/store"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

var warn = color.New(color.FgYellow)

var researchCmd = &cobra.Command{
	Use:   "research [seed...]",
	Short: "Discover, score and cluster keywords for seed terms",
	Long: `Research expands each seed through rule-based modifiers, the research
completion provider, and the search backend (autocomplete, people also ask,
related searches). Candidates are deduplicated, capped, enriched with top
search results, scored for opportunity, embedded and clustered.

Seeds come from --seed flags and positional arguments. Sources that are not
configured or fail are reported as warnings; the run continues with the
candidates the other sources produced.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringArray("seed", nil, "seed keyword (repeatable)")
	researchCmd.Flags().Int("max", 0, "maximum number of unique keywords (default from config)")
	researchCmd.Flags().Int("min-group", 0, "minimum cluster size (default from config)")
	researchCmd.Flags().Bool("json", false, "output clusters as JSON")
	researchCmd.Flags().Bool("save", false, "save the run to the local store")
	researchCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	researchCmd.Flags().Bool("no-density", false, "always use hierarchical clustering")

	viper.BindPFlag("cluster.disable_density", researchCmd.Flags().Lookup("no-density"))

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	seedFlags, _ := cmd.Flags().GetStringArray("seed")
	seeds := append(seedFlags, args...)
	maxKeywords, _ := cmd.Flags().GetInt("max")
	minGroup, _ := cmd.Flags().GetInt("min-group")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	if maxKeywords <= 0 {
		maxKeywords = cfg.MaxCandidates
	}
	if minGroup <= 0 {
		minGroup = cfg.Cluster.MinGroupSize
	}
	logger := newLogger(viper.GetViper())
	m := metrics.NewPipeline("keyword-engine")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.New(cfg, pipeline.NewDeps(cfg, logger, m))
	out, err := p.RunAndCluster(ctx, seeds, maxKeywords, minGroup)
	if err != nil {
		return err
	}
	printWarnings(os.Stderr, out.Report)

	if metricsFile != "" {
		if err := m.WriteTextfile(metricsFile); err != nil {
			warn.Fprintf(os.Stderr, "warning: writing metrics to %s: %v\n", metricsFile, err)
		}
	}

	if save {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		id, err := st.SaveRun(ctx, store.NewRun(out.Report.Seeds, maxKeywords, minGroup, out))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", id)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Clusters []types.Cluster `json:"clusters"`
			Report   pipeline.Report `json:"report"`
		}{out.Clusters, out.Report})
	}
	printClusters(os.Stdout, out.Clusters)
	return nil
}

// printWarnings reports each degraded task on w.
func printWarnings(w io.Writer, report pipeline.Report) {
	for _, o := range report.Degraded() {
		target := o.Seed
		if target == "" {
			target = o.Stage
		}
		warn.Fprintf(w, "warning: %s %s (%s): %s\n", o.Stage, o.Source, target, o.Reason)
	}
}
