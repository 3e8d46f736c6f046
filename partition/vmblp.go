// Package partition implements VMBLP (vertex-cut Modified Balanced
// Label Propagation), the graph repartitioner that shapes locality
// across Gibbs iterations, in place of shipping documents to fixed
// shards via a static hash. It borrows only the *shape* of a
// balanced-bucket allocator, built fresh around histogram and
// move-quota machinery.
package partition

import (
	"math/rand"
)

// Edge is an undirected adjacency between two vertices, identified by
// their position in the assignment slice VMBLP.Run operates on.
// Callers own the mapping from their own term/doc ids to that flat
// index space.
type Edge struct {
	Src, Dst int
}

// VMBLP is a vertex-cut partitioner. It takes an explicit *rand.Rand,
// rather than an unseedable system random source, so a run is
// reproducible given the same seed and edge list; see DESIGN.md's
// Open Question resolution.
type VMBLP struct {
	numPartitions int
	rng           *rand.Rand
}

func NewVMBLP(numPartitions int, rng *rand.Rand) *VMBLP {
	if numPartitions <= 0 {
		panic("numPartitions must be > 0")
	}
	return &VMBLP{numPartitions: numPartitions, rng: rng}
}

// Run partitions n vertices connected by edges, starting from assign
// (mutated copy returned; the input is left untouched) and iterating
// numIter+1 times. assign[v] must be in [0, numPartitions) for every
// vertex; vertices with no edges never move.
func (p *VMBLP) Run(n int, edges []Edge, assign []int, numIter int) []int {
	cur := append([]int(nil), assign...)
	adj := buildAdjacency(n, edges)

	for iter := 0; iter <= numIter; iter++ {
		proposals := p.propose(cur, adj)
		moveMatrix := p.buildMoveMatrix(cur, proposals)
		cur = p.applyMoves(cur, proposals, moveMatrix)
	}
	return cur
}

func buildAdjacency(n int, edges []Edge) [][]int {
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.Src] = append(adj[e.Src], e.Dst)
		adj[e.Dst] = append(adj[e.Dst], e.Src)
	}
	return adj
}

// propose draws, for every vertex, a candidate partition via weighted
// random sampling from the histogram of its neighbors' current
// partitions. A vertex with no neighbors proposes to stay put.
func (p *VMBLP) propose(assign []int, adj [][]int) []int {
	proposals := make([]int, len(assign))
	hist := make([]int, p.numPartitions)
	for v := range assign {
		neighbors := adj[v]
		if len(neighbors) == 0 {
			proposals[v] = assign[v]
			continue
		}
		for i := range hist {
			hist[i] = 0
		}
		for _, u := range neighbors {
			hist[assign[u]]++
		}
		proposals[v] = p.sampleFromHistogram(hist, len(neighbors))
	}
	return proposals
}

func (p *VMBLP) sampleFromHistogram(hist []int, total int) int {
	draw := p.rng.Intn(total)
	for part, c := range hist {
		draw -= c
		if draw < 0 {
			return part
		}
	}
	return len(hist) - 1
}

// buildMoveMatrix builds M[i][j], the number of vertices currently in
// partition i proposing to move to partition j != i (step 3).
func (p *VMBLP) buildMoveMatrix(assign, proposals []int) [][]int {
	m := make([][]int, p.numPartitions)
	for i := range m {
		m[i] = make([]int, p.numPartitions)
	}
	for v, from := range assign {
		to := proposals[v]
		if to != from {
			m[from][to]++
		}
	}
	return m
}

// applyMoves accepts each proposed i->j move with probability
// min(M[i][j], M[j][i]) / M[i][j], the flow-matching quota that keeps
// the net i<->j exchange bounded by the smaller side (step 4-5).
func (p *VMBLP) applyMoves(assign, proposals []int, moveMatrix [][]int) []int {
	next := append([]int(nil), assign...)
	for v, from := range assign {
		to := proposals[v]
		if to == from {
			continue
		}
		quota := moveMatrix[to][from]
		demand := moveMatrix[from][to]
		if demand == 0 {
			continue
		}
		accept := float64(quota)
		if quota > demand {
			accept = float64(demand)
		}
		prob := accept / float64(demand)
		if p.rng.Float64() < prob {
			next[v] = to
		}
	}
	return next
}
