package dag

import (
	"fmt"
	"sort"
)

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a package to the graph. Adding a name twice is a no-op.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge records that package toID depends on package fromID. Both must
// already be in the graph. Self-dependencies are rejected; Build filters them
// out before they get here.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("package %s cannot depend on itself", fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("%w: dependency %s", ErrUnknownPackage, fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("%w: dependent %s", ErrUnknownPackage, toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Len returns the number of packages.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns every package name, sorted.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return sortedKeys(g.nodes)
}

// HasEdge reports whether toID depends directly on fromID.
func (g *Graph) HasEdge(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, ok := g.nodes[toID]
	if !ok {
		return false
	}
	_, ok = n.deps[fromID]
	return ok
}

// Dependencies returns the workspace packages id depends on directly.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the workspace packages that depend directly on id.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, id)
	}
	return sortedKeys(n.dependents), nil
}

// Closure returns id and every package it transitively depends on, sorted.
// Running a script for id means running it for the whole closure.
func (g *Graph) Closure(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, id)
	}

	seen := map[string]*node{start.id: start}
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for depID, dep := range n.deps {
			if _, ok := seen[depID]; ok {
				continue
			}
			seen[depID] = dep
			stack = append(stack, dep)
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
