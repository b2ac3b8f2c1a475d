// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/keyword-engine/internal/logging"
	"github.com/pdiddy/keyword-engine/internal/secrets"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// setDefaults registers every field of the default pipeline config with v
// so that nested keys resolve from the environment as well as the file.
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(types.DefaultPipelineConfig())
	if err != nil {
		return err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, val := range m {
		v.SetDefault(k, val)
	}
	return nil
}

// loadConfig builds the pipeline config from defaults, the config file,
// the environment and flags, then fills missing credentials from secrets.
func loadConfig(v *viper.Viper, s secrets.Set) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.Completion.Providers == nil {
		cfg.Completion.Providers = map[types.Provider]types.AIConfig{}
	}
	s.Apply(&cfg)
	return cfg, nil
}

func newLogger(v *viper.Viper) *slog.Logger {
	return logging.New(os.Stderr, v.GetString("log.format"), v.GetString("log.level"))
}
