// Package walk reconstructs the x86-64 four-level paging hierarchy embedded
// in a physical memory capture. Starting from the PML4 it descends through
// every reachable paging structure and streams the discovered tables and
// their parent/child relationships to a Sink.
package walk

import (
	"github.com/apex/log"
	"github.com/nelsongillo/pageviz/mem"
	"github.com/nelsongillo/pageviz/pte"
	"github.com/pkg/errors"
)

// ErrMisalignedTable is returned by Walk when the supplied PML4 offset is
// not 4Kb aligned. An unaligned top level table cannot describe a valid
// hierarchy so the walk is refused up front.
var ErrMisalignedTable = errors.New("top level table offset is not 4Kb aligned")

// NodeID is an opaque handle identifying a table node emitted to a Sink.
// Handles are produced by the Sink and the Walker only compares and passes
// them back; two calls that reach the same table yield the same handle.
type NodeID string

// Row describes one present entry of a visited table: its slot index, the
// physical address encoded in the entry and the decoded attribute flags.
type Row struct {
	Slot  int
	Addr  uint64
	Flags []pte.Flag
}

// Sink receives the structural graph discovered during a walk. The Walker
// invokes it incrementally as tables are visited, so a Sink may observe a
// partial graph if a subtree turns out to be unreachable.
//
// EnsureNode must be idempotent: repeated calls with the same physical
// address return the original handle without recreating the node or
// duplicating its rows. AddEdge is only ever invoked with handles returned
// by earlier EnsureNode calls.
type Sink interface {
	EnsureNode(phys uint64, level Level, rows []Row) NodeID
	AddEdge(parent NodeID, slot int, child NodeID)
}

// Walker performs depth-first traversals of the paging hierarchy contained
// in a memory capture. A Walker is not safe for concurrent use.
type Walker struct {
	dump    *mem.Dump
	sink    Sink
	logger  log.Interface
	visited map[uint64]NodeID
}

// New returns a Walker that reads tables from the supplied capture and
// emits structure to sink.
func New(dump *mem.Dump, sink Sink) *Walker {
	return &Walker{
		dump:   dump,
		sink:   sink,
		logger: log.Log,
	}
}

// SetLogger overrides the logger used to report skipped subtrees. By
// default the package level apex logger is used.
func (w *Walker) SetLogger(logger log.Interface) {
	w.logger = logger
}

// Walk traverses the paging hierarchy whose PML4 is located at the given
// byte offset inside the capture. It returns ErrMisalignedTable if the
// offset is not 4Kb aligned; any table whose 4Kb window falls outside the
// capture is reported via the logger and its subtree omitted, without
// failing the walk.
func (w *Walker) Walk(pml4Offset uint64) error {
	if !mem.Aligned(pml4Offset, mem.PageSize) {
		return errors.Wrapf(ErrMisalignedTable, "offset %#x", pml4Offset)
	}

	w.visited = make(map[uint64]NodeID)
	w.visit(w.dump.Base()+pml4Offset, LevelPML4)
	return nil
}

// visit emits the table at the given physical address and recursively
// descends into the next level tables referenced by its entries. It returns
// false if the table window is not contained in the capture, in which case
// nothing was emitted for it.
func (w *Walker) visit(phys uint64, level Level) (NodeID, bool) {
	// Tables are identified by their physical address; a table reached a
	// second time (shared subtree or a cycle in a malformed dump) reuses
	// the node emitted on the first visit and is not descended again.
	if id, ok := w.visited[phys]; ok {
		return id, true
	}

	entries, err := w.dump.ReadTable(phys)
	if err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"level": level.String(),
			"addr":  phys,
		}).Warn("skipping table outside dump bounds")
		return "", false
	}

	var rows []Row
	for slot, entry := range entries {
		if !entry.Present() {
			continue
		}
		rows = append(rows, Row{Slot: slot, Addr: entry.TableAddr(), Flags: entry.Flags()})
	}

	id := w.sink.EnsureNode(phys, level, rows)
	w.visited[phys] = id

	next, ok := level.Next()
	if !ok {
		// Leaf table; every present entry maps a 4Kb page.
		return id, true
	}

	for slot, entry := range entries {
		// The PS flag on a PDPT or PD entry marks a huge page mapping:
		// the entry is terminal and its address is a frame, not a table.
		if !entry.Present() || entry.HasFlags(pte.FlagHugePage) {
			continue
		}
		if child, ok := w.visit(entry.TableAddr(), next); ok {
			w.sink.AddEdge(id, slot, child)
		}
	}
	return id, true
}
