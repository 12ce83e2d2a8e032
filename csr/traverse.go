package csr

// traverse.go: breadth-first utilities over the stored rows. These back the
// builders' connectivity checks and give callers cheap component queries
// without materialising an adjacency structure.

// ComponentLabels assigns every node the ID of its connected component and
// returns the labels plus the component count. Labels are dense in
// [0, count); isolated nodes form singleton components.
// Complexity: O(V + E).
func (g *Graph) ComponentLabels() ([]int32, int) {
	labels := make([]int32, g.nodeCount)
	for i := range labels {
		labels[i] = -1
	}

	queue := make([]int32, 0, g.nodeCount)
	next := int32(0)
	for root := int32(0); int(root) < g.nodeCount; root++ {
		if labels[root] >= 0 {
			continue
		}
		labels[root] = next
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
				if v := g.ColIndices[e]; labels[v] < 0 {
					labels[v] = next
					queue = append(queue, v)
				}
			}
		}
		next++
	}

	return labels, int(next)
}

// Connected reports whether the graph forms a single component. The empty
// graph counts as connected.
func (g *Graph) Connected() bool {
	if g.nodeCount == 0 {
		return true
	}
	_, count := g.ComponentLabels()

	return count == 1
}
