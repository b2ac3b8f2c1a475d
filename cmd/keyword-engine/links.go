// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/keyword-engine/internal/linking"
	"github.com/pdiddy/keyword-engine/internal/store"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Suggest internal links between pages with overlapping keywords",
	Long: `Links reads a YAML file mapping page ids to their target keywords and,
for each page, lists the other pages that share the most keywords with it.

Example pages.yaml:

  espresso-guide: [espresso machine, milk frother, grinder]
  grinder-reviews: [grinder, burr grinder]`,
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().String("pages", "pages.yaml", "YAML file mapping page id to keywords")
	linksCmd.Flags().Int("top", linking.DefaultTopK, "maximum suggestions per page")
	linksCmd.Flags().String("format", "", "output format: yaml or json (default: table)")

	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("pages")
	topK, _ := cmd.Flags().GetInt("top")
	format, _ := cmd.Flags().GetString("format")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening pages file: %w", err)
	}
	defer f.Close()

	pages, err := linking.ReadPages(f)
	if err != nil {
		return err
	}
	suggestions := linking.Suggest(pages, topK)

	if format != "" {
		return store.Encode(os.Stdout, suggestions, format)
	}

	ids := make([]string, 0, len(suggestions))
	for id := range suggestions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%s\n", id)
		links := suggestions[id]
		if len(links) == 0 {
			fmt.Println("  (no shared keywords)")
			continue
		}
		for _, l := range links {
			fmt.Printf("  -> %-40s  %d shared\n", l.Page, l.Overlap)
		}
	}
	return nil
}
