// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"math"
	"slices"
	"sort"
)

// maxLambda caps 1/distance for coincident points.
const maxLambda = 1e12

type mstEdge struct {
	a, b int
	w    float64
}

// linkNode is a merge in the single-linkage tree. Node ids below n are
// points; merge i has id n+i.
type linkNode struct {
	left, right int
	dist        float64
	size        int
}

// condensedEdge records a point or child cluster leaving a cluster at
// lambda = 1/distance. Cluster ids start at n; the root is n.
type condensedEdge struct {
	parent, child int
	lambda        float64
	size          int
}

// hdbscan labels vectors with HDBSCAN using excess-of-mass selection. The
// root cluster is never selected, so the result has at least two clusters
// or only noise.
func hdbscan(vectors [][]float64, minClusterSize, minSamples int) []int {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(vectors[i], vectors[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	core := coreDistances(dist, minSamples)
	edges := primMST(dist, core)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].w < edges[j].w })
	tree := singleLinkage(n, edges)
	condensed := condense(tree, n, minClusterSize)
	selected := selectClusters(condensed, n)
	return labelPoints(condensed, selected, n)
}

// coreDistances returns each point's distance to its k-th nearest
// neighbour, counting the point itself as the first.
func coreDistances(dist [][]float64, k int) []float64 {
	core := make([]float64, len(dist))
	for i, row := range dist {
		sorted := slices.Clone(row)
		slices.Sort(sorted)
		core[i] = sorted[min(k-1, len(sorted)-1)]
	}
	return core
}

// primMST builds the minimum spanning tree of the mutual reachability graph.
func primMST(dist [][]float64, core []float64) []mstEdge {
	n := len(dist)
	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]mstEdge, 0, n-1)
	cur := 0
	inTree[cur] = true
	for len(edges) < n-1 {
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			w := max(dist[cur][j], core[cur], core[j])
			if w < best[j] {
				best[j], from[j] = w, cur
			}
		}
		next := -1
		for j := 0; j < n; j++ {
			if !inTree[j] && (next < 0 || best[j] < best[next]) {
				next = j
			}
		}
		inTree[next] = true
		edges = append(edges, mstEdge{a: from[next], b: next, w: best[next]})
		cur = next
	}
	return edges
}

func singleLinkage(n int, edges []mstEdge) []linkNode {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	tree := make([]linkNode, len(edges))
	size := func(id int) int {
		if id < n {
			return 1
		}
		return tree[id-n].size
	}
	for i, e := range edges {
		ra, rb := find(e.a), find(e.b)
		id := n + i
		tree[i] = linkNode{left: ra, right: rb, dist: e.w, size: size(ra) + size(rb)}
		parent[ra], parent[rb] = id, id
	}
	return tree
}

func condense(tree []linkNode, n, minClusterSize int) []condensedEdge {
	size := func(id int) int {
		if id < n {
			return 1
		}
		return tree[id-n].size
	}
	leaves := func(id int) []int {
		var out []int
		stack := []int{id}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top < n {
				out = append(out, top)
				continue
			}
			stack = append(stack, tree[top-n].right, tree[top-n].left)
		}
		return out
	}

	type frame struct{ node, cluster int }
	var out []condensedEdge
	nextCluster := n + 1
	stack := []frame{{node: 2*n - 2, cluster: n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node < n {
			out = append(out, condensedEdge{parent: f.cluster, child: f.node, lambda: maxLambda, size: 1})
			continue
		}
		node := tree[f.node-n]
		lambda := maxLambda
		if node.dist > 0 {
			lambda = min(1/node.dist, maxLambda)
		}
		ls, rs := size(node.left), size(node.right)

		switch {
		case ls >= minClusterSize && rs >= minClusterSize:
			for _, child := range []int{node.left, node.right} {
				out = append(out, condensedEdge{parent: f.cluster, child: nextCluster, lambda: lambda, size: size(child)})
				stack = append(stack, frame{node: child, cluster: nextCluster})
				nextCluster++
			}
		case ls < minClusterSize && rs < minClusterSize:
			for _, p := range append(leaves(node.left), leaves(node.right)...) {
				out = append(out, condensedEdge{parent: f.cluster, child: p, lambda: lambda, size: 1})
			}
		case ls < minClusterSize:
			for _, p := range leaves(node.left) {
				out = append(out, condensedEdge{parent: f.cluster, child: p, lambda: lambda, size: 1})
			}
			stack = append(stack, frame{node: node.right, cluster: f.cluster})
		default:
			for _, p := range leaves(node.right) {
				out = append(out, condensedEdge{parent: f.cluster, child: p, lambda: lambda, size: 1})
			}
			stack = append(stack, frame{node: node.left, cluster: f.cluster})
		}
	}
	return out
}

// selectClusters applies excess-of-mass selection below the root.
func selectClusters(condensed []condensedEdge, n int) map[int]bool {
	birth := map[int]float64{n: 0}
	children := map[int][]int{}
	maxID := n
	for _, e := range condensed {
		if e.child >= n {
			birth[e.child] = e.lambda
			children[e.parent] = append(children[e.parent], e.child)
			maxID = max(maxID, e.child)
		}
	}
	stability := map[int]float64{}
	for _, e := range condensed {
		stability[e.parent] += (e.lambda - birth[e.parent]) * float64(e.size)
	}

	selected := map[int]bool{}
	var unselect func(int)
	unselect = func(c int) {
		for _, ch := range children[c] {
			selected[ch] = false
			unselect(ch)
		}
	}
	// Child clusters always have larger ids than their parents.
	for c := maxID; c > n; c-- {
		kids := children[c]
		if len(kids) == 0 {
			selected[c] = true
			continue
		}
		var sub float64
		for _, ch := range kids {
			sub += stability[ch]
		}
		if sub > stability[c] {
			selected[c] = false
			stability[c] = sub
		} else {
			selected[c] = true
			unselect(c)
		}
	}
	return selected
}

// labelPoints gives each point the label of its selected ancestor cluster,
// numbered by first appearance, or Noise.
func labelPoints(condensed []condensedEdge, selected map[int]bool, n int) []int {
	pointParent := make([]int, n)
	clusterParent := map[int]int{}
	for _, e := range condensed {
		if e.child < n {
			pointParent[e.child] = e.parent
		} else {
			clusterParent[e.child] = e.parent
		}
	}

	labels := make([]int, n)
	renumber := map[int]int{}
	for p := 0; p < n; p++ {
		labels[p] = Noise
		for c := pointParent[p]; c != n; c = clusterParent[c] {
			if selected[c] {
				l, ok := renumber[c]
				if !ok {
					l = len(renumber)
					renumber[c] = l
				}
				labels[p] = l
				break
			}
		}
	}
	return labels
}
