// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/keyword-engine/internal/brief"
	"github.com/pdiddy/keyword-engine/internal/store"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

const formatMarkdown = "markdown"

// --- brief command ---

var briefCmd = &cobra.Command{
	Use:   "brief <topic>",
	Short: "Generate a content brief for a topic",
	Long: `Brief asks the research completion provider for a content plan and
parses it into a working title, H1, section outline and FAQs. Save the
brief with --out and pass it to "generate --brief" to write from it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBrief,
}

// --- generate command ---

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a long-form article and score its entity coverage",
	Long: `Generate asks the writing completion provider for a Markdown article,
following the outline and FAQs of a saved brief when --brief is given.
The article is scored by target entity coverage and term diversity, and
social post angles are generated from it.

With --format markdown the article goes to stdout and the score to stderr.`,
	RunE: runGenerate,
}

func init() {
	briefCmd.Flags().StringArray("kw", nil, "target keyword (repeatable)")
	briefCmd.Flags().String("format", store.FormatJSON, "output format: json or yaml")
	briefCmd.Flags().String("out", "", "output file (default: stdout)")

	generateCmd.Flags().String("brief", "", "brief file (YAML or JSON) to write from")
	generateCmd.Flags().Int("length", 1800, "target length in words")
	generateCmd.Flags().String("tone", "", "writing tone (default: expert yet friendly)")
	generateCmd.Flags().String("audience", "", "target audience")
	generateCmd.Flags().StringArray("entity", nil, "target entity to cover (repeatable, default: the topic)")
	generateCmd.Flags().String("format", store.FormatJSON, "output format: json, yaml or markdown")
	generateCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(briefCmd, generateCmd)
}

func newWriter() (*brief.Writer, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return brief.NewWriter(cfg.Completion, newLogger(viper.GetViper())), nil
}

func runBrief(cmd *cobra.Command, args []string) error {
	keywords, _ := cmd.Flags().GetStringArray("kw")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	w, err := newWriter()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := w.Brief(ctx, strings.Join(args, " "), keywords)
	if err != nil {
		return err
	}
	return writeOutput(outPath, func(out io.Writer) error {
		return store.Encode(out, b, format)
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	briefPath, _ := cmd.Flags().GetString("brief")
	length, _ := cmd.Flags().GetInt("length")
	tone, _ := cmd.Flags().GetString("tone")
	audience, _ := cmd.Flags().GetString("audience")
	entities, _ := cmd.Flags().GetStringArray("entity")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	req := brief.ArticleRequest{
		Topic:        strings.Join(args, " "),
		TargetLength: length,
		Tone:         tone,
		Audience:     audience,
		Entities:     entities,
	}
	if briefPath != "" {
		b, err := loadBrief(briefPath)
		if err != nil {
			return err
		}
		req.Brief = &b
	}

	w, err := newWriter()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	article, err := w.Article(ctx, req)
	if err != nil {
		return err
	}
	return writeOutput(outPath, func(out io.Writer) error {
		if strings.EqualFold(format, formatMarkdown) || strings.EqualFold(format, "md") {
			printScore(os.Stderr, article.Score)
			_, err := io.WriteString(out, article.Markdown)
			return err
		}
		return store.Encode(out, article, format)
	})
}

func loadBrief(path string) (types.Brief, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Brief{}, fmt.Errorf("opening brief: %w", err)
	}
	defer f.Close()
	return brief.ReadBrief(f)
}

// printScore writes the optimization score and the entities it missed.
func printScore(w io.Writer, s types.OptimizationScore) {
	fmt.Fprintf(w, "Optimization score: %.2f (%d covered, %d missing)\n", s.Value, len(s.Covered), len(s.Missing))
	if len(s.Missing) > 0 {
		warn.Fprintf(w, "warning: missing entities: %s\n", strings.Join(s.Missing, ", "))
	}
}

// writeOutput runs write against stdout, or against a new file at path.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
