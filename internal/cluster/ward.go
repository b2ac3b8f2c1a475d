// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

// ward merges clusters bottom-up with the Ward criterion until k remain,
// then labels points by first appearance of their cluster. Distances are
// squared Euclidean updated with the Lance-Williams formula; ties merge
// the lowest index pair first.
func ward(vectors [][]float64, k int) []int {
	n := len(vectors)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			e := euclidean(vectors[i], vectors[j])
			d[i][j], d[j][i] = e*e, e*e
		}
	}

	// owner[p] is the cluster index point p currently belongs to.
	owner := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range owner {
		owner[i], size[i], active[i] = i, 1, true
	}

	for remaining := n; remaining > k; remaining-- {
		bi, bj := -1, -1
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && (bi < 0 || d[i][j] < d[bi][bj]) {
					bi, bj = i, j
				}
			}
		}

		ni, nj := float64(size[bi]), float64(size[bj])
		for m := 0; m < n; m++ {
			if !active[m] || m == bi || m == bj {
				continue
			}
			nm := float64(size[m])
			v := ((ni+nm)*d[bi][m] + (nj+nm)*d[bj][m] - nm*d[bi][bj]) / (ni + nj + nm)
			d[bi][m], d[m][bi] = v, v
		}
		size[bi] += size[bj]
		active[bj] = false
		for p := range owner {
			if owner[p] == bj {
				owner[p] = bi
			}
		}
	}

	labels := make([]int, n)
	renumber := map[int]int{}
	for p, c := range owner {
		l, ok := renumber[c]
		if !ok {
			l = len(renumber)
			renumber[c] = l
		}
		labels[p] = l
	}
	return labels
}
