package dag

import "sort"

// StronglyConnected computes the strongly connected components of the graph
// with Tarjan's algorithm. Nodes and edges are visited in sorted order, every
// component is sorted, and components are ordered by their first member.
func (g *Graph) StronglyConnected() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool, len(g.nodes))
		indices  = make(map[string]int, len(g.nodes))
		lowlinks = make(map[string]int, len(g.nodes))
		comps    [][]string
	)

	var connect func(n *node)
	connect = func(n *node) {
		indices[n.id] = index
		lowlinks[n.id] = index
		index++
		stack = append(stack, n.id)
		onStack[n.id] = true

		for _, nextID := range sortedKeys(n.dependents) {
			if _, visited := indices[nextID]; !visited {
				connect(n.dependents[nextID])
				lowlinks[n.id] = min(lowlinks[n.id], lowlinks[nextID])
			} else if onStack[nextID] {
				lowlinks[n.id] = min(lowlinks[n.id], indices[nextID])
			}
		}

		if lowlinks[n.id] != indices[n.id] {
			return
		}
		var comp []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp = append(comp, top)
			if top == n.id {
				break
			}
		}
		comps = append(comps, comp)
	}

	for _, id := range sortedKeys(g.nodes) {
		if _, visited := indices[id]; !visited {
			connect(g.nodes[id])
		}
	}

	for _, c := range comps {
		sort.Strings(c)
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i][0] < comps[j][0]
	})
	return comps
}

// DetectCycles returns the strongly connected components with two or more
// members. Self-loops are not reported; the graph refuses to store them.
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	for _, c := range g.StronglyConnected() {
		if len(c) >= 2 {
			cycles = append(cycles, c)
		}
	}
	return cycles
}
