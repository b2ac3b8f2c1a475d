// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the keyword-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/keyword-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// keyReplacer maps nested config keys to environment variable names.
var keyReplacer = strings.NewReplacer(".", "_")

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the keyword-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "keyword-engine",
	Short: "Discover, cluster and rank keywords for content research",
	Long: `keyword-engine expands seed keywords through rule-based modifiers, a
language model, and a search backend, deduplicates the candidates, scores
each one for opportunity, and groups them into semantic clusters.

Runs can be saved to a local SQLite store, searched, and exported as YAML
or JSON. The links command suggests internal links between pages that
target overlapping keywords.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("secrets_dir")
		s, err := secrets.Load(dir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./keyword-engine.yaml or ~/.config/keyword-engine/keyword-engine.yaml)")
	flags.String("secrets-dir", ".secrets", "directory of API key files")
	flags.String("data-dir", "", "directory for the run database (default: data)")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")

	viper.BindPFlag("secrets_dir", flags.Lookup("secrets-dir"))
	viper.BindPFlag("store.data_dir", flags.Lookup("data-dir"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("keyword-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "keyword-engine"))
		}
	}

	viper.SetEnvPrefix("KEYWORD_ENGINE")
	viper.SetEnvKeyReplacer(keyReplacer)
	viper.AutomaticEnv()

	if err := setDefaults(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "warning: config defaults:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
