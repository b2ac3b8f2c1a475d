// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/keyword-engine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, show, search and export saved research runs",
	Long: `Runs manages the local SQLite store of research runs saved with
"research --save". Use subcommands to list runs, show one run's clusters,
search keyword terms across runs, or export a run.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No saved runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-7s  %-8s  %s\n", "ID", "Created", "Records", "Clusters", "Seeds")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-7d  %-8d  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Records, r.Clusters, strings.Join(r.Seeds, ", "))
	}
	return nil
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the clusters of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.LoadRun(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Run %s (%s), seeds: %s\n\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), strings.Join(run.Seeds, ", "))
	printClusters(os.Stdout, run.Clusters)
	printWarnings(os.Stderr, run.Report)
	return nil
}

// --- search subcommand ---

var runsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search of keyword terms across saved runs",
	Long: `Search matches keyword terms of every saved run with an FTS5 query,
for example "espresso AND grinder" or "frother*".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRunsSearch,
}

func runRunsSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	hits, err := st.SearchTerms(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-*s  %-8s  %-8s  %s\n", termWidth, "Keyword", "Cluster", "Score", "Run")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", termWidth+58))
	for _, h := range hits {
		fmt.Fprintf(os.Stdout, "%-*s  %-8s  %-8.3f  %s\n",
			termWidth, truncate(h.Record.Candidate.Term, termWidth), h.Record.ClusterID, opportunity(h.Record), h.RunID)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a saved run as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return writeOutput(outPath, func(w io.Writer) error {
		return st.Export(context.Background(), args[0], format, w)
	})
}

// --- shared helpers ---

func openStore() (*store.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store)
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	runsSearchCmd.Flags().Int("limit", 20, "maximum number of results")
	runsExportCmd.Flags().String("format", store.FormatYAML, "export format: yaml or json")
	runsExportCmd.Flags().String("out", "", "output file (default: stdout)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSearchCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
