// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package cluster groups sentence embeddings by average-linkage
// agglomerative clustering on cosine distance.
//
// Clustering has no target count: merging stops at a distance threshold.
// Distances are 1 - cos(a, b), so they lie in [0, 2] and the default
// threshold of 1.5 only keeps strongly dissimilar sentences apart.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultThreshold is the linkage distance at which merging stops.
const DefaultThreshold = 1.5

var (
	// ErrDimensionMismatch is returned when vectors differ in length.
	ErrDimensionMismatch = errors.New("vectors have different dimensions")
	// ErrNonFinite is returned for NaN or infinite vector components.
	ErrNonFinite = errors.New("vector has non-finite component")
	// ErrInvalidThreshold is returned for a negative or NaN threshold.
	ErrInvalidThreshold = errors.New("distance threshold must be a non-negative number")
)

// Config holds clustering parameters.
type Config struct {
	Threshold float64
}

// Cluster returns the groups of vector indices for c.Threshold.
func (c Config) Cluster(vectors [][]float64) ([][]int, error) {
	labels, err := Labels(vectors, c.Threshold)
	if err != nil {
		return nil, err
	}
	return Group(labels), nil
}

// Merge is one step of the hierarchy: the clusters containing points A and B
// joined at Distance into a cluster of Size points.
type Merge struct {
	A, B     int
	Distance float64
	Size     int
}

// Labels assigns a cluster label to every vector. Two clusters are merged
// while their average pairwise distance is strictly below threshold. Labels
// are numbered by first appearance, so vectors[0] is always in cluster 0.
func Labels(vectors [][]float64, threshold float64) ([]int, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	merges, err := Linkage(vectors)
	if err != nil {
		return nil, err
	}

	uf := newUnionFind(len(vectors))
	for _, m := range merges {
		if m.Distance < threshold {
			uf.union(m.A, m.B)
		}
	}

	labels := make([]int, len(vectors))
	byRoot := make(map[int]int)
	for i := range vectors {
		root := uf.find(i)
		label, ok := byRoot[root]
		if !ok {
			label = len(byRoot)
			byRoot[root] = label
		}
		labels[i] = label
	}
	return labels, nil
}

// Group turns labels into index groups. Groups are ordered by their earliest
// member and keep indices ascending within a group.
func Group(labels []int) [][]int {
	var groups [][]int
	pos := make(map[int]int)
	for i, label := range labels {
		g, ok := pos[label]
		if !ok {
			g = len(groups)
			pos[label] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// Linkage builds the full average-linkage hierarchy over vectors and returns
// its n-1 merges ordered by distance. Equal distances keep discovery order.
//
// The hierarchy is built with a nearest-neighbour chain over a condensed
// distance matrix, updated with the Lance-Williams formula for average
// linkage. Ties pick the lowest index.
func Linkage(vectors [][]float64) ([]Merge, error) {
	if err := validate(vectors); err != nil {
		return nil, err
	}
	n := len(vectors)
	if n < 2 {
		return nil, nil
	}

	d := newCondensed(vectors)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	merges := make([]Merge, 0, n-1)
	chain := make([]int, 0, n)
	for len(merges) < n-1 {
		if len(chain) == 0 {
			for i := range active {
				if active[i] {
					chain = append(chain, i)
					break
				}
			}
		}

		var a, b int
		for {
			a = chain[len(chain)-1]
			prev, best := -1, math.Inf(1)
			if len(chain) > 1 {
				prev = chain[len(chain)-2]
				best = d.at(a, prev)
			}
			b = prev
			for k := range active {
				if !active[k] || k == a {
					continue
				}
				if dist := d.at(a, k); dist < best {
					b, best = k, dist
				}
			}
			if b == prev {
				break
			}
			chain = append(chain, b)
		}
		chain = chain[:len(chain)-2]

		// Reciprocal nearest neighbours a and b merge into slot b.
		dist := d.at(a, b)
		na, nb := float64(size[a]), float64(size[b])
		for k := range active {
			if !active[k] || k == a || k == b {
				continue
			}
			d.set(k, b, (na*d.at(k, a)+nb*d.at(k, b))/(na+nb))
		}
		active[a] = false
		size[b] += size[a]
		merges = append(merges, Merge{A: min(a, b), B: max(a, b), Distance: dist, Size: size[b]})
	}

	sort.SliceStable(merges, func(i, j int) bool { return merges[i].Distance < merges[j].Distance })
	return merges, nil
}

func validate(vectors [][]float64) error {
	for i, v := range vectors {
		if len(v) != len(vectors[0]) {
			return fmt.Errorf("%w: vector %d has %d components, want %d", ErrDimensionMismatch, i, len(v), len(vectors[0]))
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: vector %d", ErrNonFinite, i)
			}
		}
	}
	return nil
}

// CosineDistance returns 1 - cos(a, b) clamped to [0, 2]. A zero vector is
// orthogonal to everything, at distance 1.
func CosineDistance(a, b []float64) float64 {
	return cosineDistance(a, b, norm(a), norm(b))
}

func cosineDistance(a, b []float64, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 1
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return min(max(1-dot/(na*nb), 0), 2)
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// condensed stores the upper triangle of a symmetric distance matrix.
type condensed struct {
	n    int
	data []float64
}

func newCondensed(vectors [][]float64) *condensed {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = norm(v)
	}
	c := &condensed{n: n, data: make([]float64, n*(n-1)/2)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c.data[c.index(i, j)] = cosineDistance(vectors[i], vectors[j], norms[i], norms[j])
		}
	}
	return c
}

func (c *condensed) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return c.n*i - i*(i+1)/2 + (j - i - 1)
}

func (c *condensed) at(i, j int) float64 { return c.data[c.index(i, j)] }

func (c *condensed) set(i, j int, v float64) { c.data[c.index(i, j)] = v }

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
