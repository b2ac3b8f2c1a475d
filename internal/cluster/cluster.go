// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster partitions embedded keyword vectors into groups. Density
// clustering (HDBSCAN) is used when the population is large enough; Ward
// agglomerative clustering with a size-derived group count covers the rest.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ErrClustering is returned when no method can label the input.
var ErrClustering = errors.New("clustering failed")

// Noise is the label density clustering assigns to points outside every
// dense region. Fallback labels are always >= 0.
const Noise = -1

// NoiseID is the cluster id given to noise points.
const NoiseID = "noise"

// minSamples is the neighbourhood size for core distances, counting the
// point itself.
const minSamples = 2

// Clusterer assigns one label per vector.
type Clusterer interface {
	Cluster(vectors [][]float64, minGroupSize int) ([]int, error)
}

// Engine selects between density and agglomerative clustering.
type Engine struct {
	// Density enables HDBSCAN for inputs of at least 2*minGroupSize points.
	Density bool
}

// Cluster returns exactly len(vectors) labels in input order.
func (e Engine) Cluster(vectors [][]float64, minGroupSize int) ([]int, error) {
	n := len(vectors)
	if err := checkDimensions(vectors); err != nil {
		return nil, err
	}
	if n <= 1 {
		return make([]int, n), nil
	}

	if e.Density && n >= 2*minGroupSize {
		if labels, err := safeHDBSCAN(vectors, max(2, minGroupSize)); err == nil {
			return labels, nil
		}
	}

	k := n / max(2, minGroupSize)
	k = min(max(k, 2), 10, n)
	return ward(vectors, k), nil
}

func checkDimensions(vectors [][]float64) error {
	for i, v := range vectors {
		if len(v) != len(vectors[0]) {
			return fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(v), len(vectors[0]), ErrClustering)
		}
	}
	return nil
}

func safeHDBSCAN(vectors [][]float64, minClusterSize int) (labels []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hdbscan: %v", r)
		}
	}()
	return hdbscan(vectors, minClusterSize, minSamples), nil
}

// Centroid returns the element-wise mean of vectors scaled to unit length.
// Empty input gives an empty vector; a zero mean stays zero.
func Centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return []float64{}
	}
	c := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range c {
			c[i] += v[i]
		}
	}
	var sum float64
	for i := range c {
		c[i] /= float64(len(vectors))
		sum += c[i] * c[i]
	}
	if sum == 0 {
		return c
	}
	norm := math.Sqrt(sum)
	for i := range c {
		c[i] /= norm
	}
	return c
}

// ID maps a label to its cluster id: "noise" for Noise, else "c<label>".
func ID(label int) string {
	if label == Noise {
		return NoiseID
	}
	return "c" + strconv.Itoa(label)
}

// Group sets ClusterID on each record in place and returns the clusters in
// order of first appearance, each with a centroid computed from its members.
func Group(records []types.Record, vectors [][]float64, labels []int) ([]types.Cluster, error) {
	if len(records) != len(labels) || len(records) != len(vectors) {
		return nil, fmt.Errorf("group %d records with %d vectors and %d labels: %w",
			len(records), len(vectors), len(labels), ErrClustering)
	}

	index := map[string]int{}
	var clusters []types.Cluster
	var members [][][]float64
	for i := range records {
		id := ID(labels[i])
		records[i].ClusterID = id
		j, ok := index[id]
		if !ok {
			j = len(clusters)
			index[id] = j
			clusters = append(clusters, types.Cluster{ID: id, Label: id})
			members = append(members, nil)
		}
		clusters[j].Records = append(clusters[j].Records, records[i])
		members[j] = append(members[j], vectors[i])
	}
	for j := range clusters {
		clusters[j].Centroid = Centroid(members[j])
	}
	return clusters, nil
}

func euclidean(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
