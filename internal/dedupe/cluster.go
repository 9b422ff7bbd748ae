package dedupe

import (
	"sort"

	"github.com/jonathan/careerbase/internal/types"
)

// pairMatrix stores one SimilarityResult per unordered index pair.
type pairMatrix struct {
	n    int
	data []types.SimilarityResult
}

func newPairMatrix(n int) *pairMatrix {
	return &pairMatrix{n: n, data: make([]types.SimilarityResult, n*(n-1)/2)}
}

func (m *pairMatrix) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	// Row-major packing of the strict upper triangle.
	return i*(2*m.n-i-1)/2 + (j - i - 1)
}

func (m *pairMatrix) set(i, j int, sim types.SimilarityResult) {
	m.data[m.index(i, j)] = sim
}

func (m *pairMatrix) at(i, j int) types.SimilarityResult {
	return m.data[m.index(i, j)]
}

// unionFind clusters records connected by above-threshold pair scores.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// components returns the index clusters in deterministic order.
func (uf *unionFind) components() [][]int {
	byRoot := make(map[int][]int)
	for i := range uf.parent {
		root := uf.find(i)
		byRoot[root] = append(byRoot[root], i)
	}

	roots := make([]int, 0, len(byRoot))
	for root := range byRoot {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	out := make([][]int, 0, len(roots))
	for _, root := range roots {
		out = append(out, byRoot[root])
	}
	return out
}
