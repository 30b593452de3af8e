// Package graph provides an in-memory representation of the structure
// discovered by a page table walk: one node per visited paging structure
// and one labeled edge per table-to-table reference. It implements
// walk.Sink and is the artifact handed to callers that want to inspect the
// hierarchy programmatically instead of rendering it.
package graph

import (
	"fmt"

	"github.com/nelsongillo/pageviz/walk"
)

// Node describes a single paging structure discovered during a walk.
type Node struct {
	ID    walk.NodeID
	Addr  uint64
	Level walk.Level
	Rows  []walk.Row
}

// Edge describes a reference from slot Slot of the parent table to the
// child table.
type Edge struct {
	Parent walk.NodeID
	Slot   int
	Child  walk.NodeID
}

// Graph accumulates nodes and edges emitted during a walk. The zero value
// is not usable; construct instances via New.
type Graph struct {
	nodes map[walk.NodeID]*Node
	order []walk.NodeID
	edges []Edge
}

// New returns an empty Graph ready to receive walk output.
func New() *Graph {
	return &Graph{nodes: make(map[walk.NodeID]*Node)}
}

// EnsureNode implements walk.Sink. The first call for a physical address
// materializes a node; subsequent calls return the original handle and
// leave the node untouched.
func (g *Graph) EnsureNode(phys uint64, level walk.Level, rows []walk.Row) walk.NodeID {
	id := walk.NodeID(fmt.Sprintf("table_%x", phys))
	if _, exists := g.nodes[id]; exists {
		return id
	}

	g.nodes[id] = &Node{ID: id, Addr: phys, Level: level, Rows: rows}
	g.order = append(g.order, id)
	return id
}

// AddEdge implements walk.Sink.
func (g *Graph) AddEdge(parent walk.NodeID, slot int, child walk.NodeID) {
	g.edges = append(g.edges, Edge{Parent: parent, Slot: slot, Child: child})
}

// Node returns the node with the given handle or nil if no such node was
// emitted.
func (g *Graph) Node(id walk.NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns the emitted nodes in emission order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns the emitted edges in emission order.
func (g *Graph) Edges() []Edge {
	return g.edges
}
