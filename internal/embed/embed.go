// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed maps keyword text to fixed-dimension vectors. Model-backed
// embedders call an embedding API; HashEmbedder is the deterministic
// fallback used whenever no model is available or a model call fails.
package embed

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ErrNoModel is returned by New when the configured provider is unknown.
var ErrNoModel = errors.New("no embedding model available")

// DefaultHashDimension is the bucket count of the fallback embedder.
const DefaultHashDimension = 256

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension is the vector length, or 0 when it is not known until the
	// first successful call.
	Dimension() int
}

// HashEmbedder is a hashed bag-of-words embedder: lower-cased whitespace
// tokens are hashed with FNV-1a into Dim buckets, counted, and the count
// vector is L2-normalized. Output is identical across runs and processes.
type HashEmbedder struct {
	Dim int
}

// Dimension returns Dim, or DefaultHashDimension when Dim is unset.
func (h HashEmbedder) Dimension() int {
	if h.Dim <= 0 {
		return DefaultHashDimension
	}
	return h.Dim
}

// Embed never fails.
func (h HashEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	dim := h.Dimension()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t, dim)
	}
	return out, nil
}

func hashVector(text string, dim int) []float64 {
	v := make([]float64, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[h.Sum32()%uint32(dim)]++
	}
	return Normalize(v)
}

// Normalize scales v to unit L2 length in place and returns it. A zero
// vector is returned unchanged.
func Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Fallback uses the primary embedder and switches to the fallback for the
// whole call when the primary is nil, fails, or returns vectors of the
// wrong count or mixed dimensions.
type Fallback struct {
	primary  Embedder
	fallback Embedder
	logger   *slog.Logger
	dim      atomic.Int64
}

// WithFallback wraps primary with fallback. A nil logger discards warnings.
func WithFallback(primary, fallback Embedder, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fallback{primary: primary, fallback: fallback, logger: logger}
}

// Dimension reports the length of the vectors returned by the last call,
// or the fallback's dimension before any call.
func (f *Fallback) Dimension() int {
	if d := f.dim.Load(); d > 0 {
		return int(d)
	}
	return f.fallback.Dimension()
}

// Embed returns the primary's vectors when usable, else the fallback's.
func (f *Fallback) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if f.primary != nil {
		vecs, err := f.primary.Embed(ctx, texts)
		if err == nil {
			err = CheckShape(vecs, len(texts))
		}
		if err == nil {
			f.dim.Store(int64(len(vecs[0])))
			return vecs, nil
		}
		f.logger.Warn("embedding model failed, using hashed fallback", "texts", len(texts), "error", err)
	}
	vecs, err := f.fallback.Embed(ctx, texts)
	if err == nil && len(vecs) > 0 {
		f.dim.Store(int64(len(vecs[0])))
	}
	return vecs, err
}

// CheckShape reports an error unless vecs holds n non-empty vectors of one
// dimension.
func CheckShape(vecs [][]float64, n int) error {
	if len(vecs) != n {
		return fmt.Errorf("embedding returned %d vectors for %d texts", len(vecs), n)
	}
	for i, v := range vecs {
		if len(v) == 0 || len(v) != len(vecs[0]) {
			return fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), len(vecs[0]))
		}
	}
	return nil
}

// New builds the embedder for cfg: a model embedder wrapped in Fallback, or
// the HashEmbedder alone for provider "hash" or "". An unknown provider
// returns the HashEmbedder together with ErrNoModel.
func New(cfg types.EmbeddingConfig, logger *slog.Logger) (Embedder, error) {
	hash := HashEmbedder{Dim: cfg.HashDimension}
	switch strings.ToLower(cfg.Provider) {
	case "", "hash":
		return hash, nil
	case "ollama":
		return WithFallback(NewOllamaEmbedder(cfg), hash, logger), nil
	case "openai":
		return WithFallback(NewOpenAIEmbedder(cfg), hash, logger), nil
	default:
		return hash, fmt.Errorf("embedding provider %q: %w", cfg.Provider, ErrNoModel)
	}
}
