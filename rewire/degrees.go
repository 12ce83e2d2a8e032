package rewire

import (
	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/proposal"
)

// FinalDegrees derives each node's post-rebuild degree: surviving stored
// slots (not flagged for deletion) plus accepted additions touching the node.
// The compaction phase must produce rows of exactly these lengths; the verify
// phase cross-checks that.
// Complexity: O(V + E + A).
func FinalDegrees(g *csr.Graph, flags []bool, additions []proposal.EdgeProposal) []int32 {
	n := g.NodeCount()
	degrees := make([]int32, n)

	for u := 0; u < n; u++ {
		for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
			if !flags[e] {
				degrees[u]++
			}
		}
	}
	for _, p := range additions {
		if !p.IsAddition {
			continue
		}
		degrees[p.NodeA]++
		degrees[p.NodeB]++
	}

	return degrees
}
