// Package dotviz renders the structure discovered by a page table walk as
// a Graphviz DOT document. Each visited table becomes a record-style node
// listing its present entries and each table reference becomes an edge
// labeled with the slot index it originates from.
package dotviz

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"
	"github.com/nelsongillo/pageviz/pte"
	"github.com/nelsongillo/pageviz/walk"
)

// Sink implements walk.Sink by building a DOT graph incrementally as the
// walk proceeds.
type Sink struct {
	graph *dot.Graph
	nodes map[walk.NodeID]dot.Node
}

// New returns a Sink producing a left-to-right directed graph with the
// dark theme used by the original visualizer.
func New() *Sink {
	g := dot.NewGraph(dot.Directed)
	g.Attr("bgcolor", "#2d2d2d")
	g.Attr("fontcolor", "white")
	g.Attr("rankdir", "LR")
	g.NodeInitializer(func(n dot.Node) {
		n.Attr("fontname", "Inter")
		n.Attr("fontcolor", "white")
		n.Attr("shape", "box")
		n.Attr("style", "filled")
		n.Attr("color", "#444444")
		n.Attr("fillcolor", "#3a3a3a")
	})
	g.EdgeInitializer(func(e dot.Edge) {
		e.Attr("color", "#888888")
		e.Attr("fontcolor", "white")
	})

	return &Sink{graph: g, nodes: make(map[walk.NodeID]dot.Node)}
}

// EnsureNode implements walk.Sink.
func (s *Sink) EnsureNode(phys uint64, level walk.Level, rows []walk.Row) walk.NodeID {
	id := walk.NodeID(fmt.Sprintf("table_%x", phys))
	if _, exists := s.nodes[id]; exists {
		return id
	}

	node := s.graph.Node(string(id))
	node.Attr("label", dot.HTML(tableLabel(phys, level, rows)))
	s.nodes[id] = node
	return id
}

// AddEdge implements walk.Sink.
func (s *Sink) AddEdge(parent walk.NodeID, slot int, child walk.NodeID) {
	edge := s.graph.Edge(s.nodes[parent], s.nodes[child])
	edge.Attr("label", fmt.Sprintf("[%d]", slot))
}

// String returns the DOT source for the graph built so far.
func (s *Sink) String() string {
	return s.graph.String()
}

// tableLabel builds the HTML table label for a node: a header naming the
// level and physical address followed by one row per present entry.
func tableLabel(phys uint64, level walk.Level, rows []walk.Row) string {
	var b strings.Builder
	b.WriteString(`<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">`)
	fmt.Fprintf(&b, `<TR><TD COLSPAN="3" BGCOLOR="#3c3c3c"><B>%s @ 0x%x</B></TD></TR>`, level, phys)
	b.WriteString(`<TR><TD>Index</TD><TD>Entry Addr</TD><TD>Flags</TD></TR>`)
	for _, row := range rows {
		fmt.Fprintf(&b, `<TR><TD>%d</TD><TD>0x%x</TD><TD>%s</TD></TR>`, row.Slot, row.Addr, pte.FlagString(row.Flags))
	}
	b.WriteString(`</TABLE>`)
	return b.String()
}
