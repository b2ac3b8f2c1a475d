// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes run id to w as YAML or JSON. Records are nested under
// their clusters.
func (s *Store) Export(ctx context.Context, id, format string, w io.Writer) error {
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	return Encode(w, run, format)
}

// Encode writes v to w in format.
func Encode(w io.Writer, v any, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		data, err = yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	_, err = w.Write(data)
	return err
}
