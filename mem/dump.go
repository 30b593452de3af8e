// Package mem provides access to raw physical memory captures. A Dump wraps
// a contiguous byte buffer together with the physical address its first byte
// was captured from, and knows how to locate and decode the 4Kb paging
// structures embedded in it.
package mem

import (
	"encoding/binary"

	"github.com/nelsongillo/pageviz/pte"
	"github.com/pkg/errors"
)

const (
	// PageSize defines the size of a paging structure in bytes. Each
	// x86-64 page table occupies exactly one 4Kb physical frame.
	PageSize = 4096

	// TableEntries defines the number of entry slots in a paging
	// structure.
	TableEntries = 512

	// entrySize is the size of a single page table entry in bytes.
	entrySize = 8
)

// ErrOutOfBounds is returned by ReadTable when the 4Kb window required for
// a table falls partially or fully outside the captured region.
var ErrOutOfBounds = errors.New("table window outside dump bounds")

// Aligned returns true if value is a multiple of align. Paging structures
// must reside at 4Kb-aligned physical addresses.
func Aligned(value, align uint64) bool {
	return value%align == 0
}

// Dump represents a contiguous capture of physical memory. The wrapped
// buffer is treated as read-only for the lifetime of the Dump.
type Dump struct {
	data []byte
	base uint64
}

// NewDump wraps a raw capture whose first byte corresponds to the physical
// address base.
func NewDump(data []byte, base uint64) *Dump {
	return &Dump{data: data, base: base}
}

// Base returns the physical address that corresponds to offset 0 of the
// capture.
func (d *Dump) Base() uint64 {
	return d.base
}

// Len returns the size of the capture in bytes.
func (d *Dump) Len() int {
	return len(d.data)
}

// Offset translates a physical address to a byte offset inside the capture.
// The result is signed: addresses below the capture base yield a negative
// offset. Callers are responsible for checking that the region they intend
// to access fits inside the capture.
func (d *Dump) Offset(phys uint64) int64 {
	return int64(phys) - int64(d.base)
}

// ReadTable decodes the paging structure located at the given physical
// address and returns its TableEntries entries in slot order. Non-present
// entries are included so that slice indices always correspond to slot
// indices. ReadTable fails with ErrOutOfBounds if the table's 4Kb window
// does not fit inside the capture.
func (d *Dump) ReadTable(phys uint64) ([]pte.Entry, error) {
	offset := d.Offset(phys)
	if offset < 0 || offset+PageSize > int64(len(d.data)) {
		return nil, errors.Wrapf(ErrOutOfBounds, "table at physical address %#x", phys)
	}

	entries := make([]pte.Entry, TableEntries)
	for slot := 0; slot < TableEntries; slot++ {
		raw := binary.LittleEndian.Uint64(d.data[offset+int64(slot)*entrySize:])
		entries[slot] = pte.Entry(raw)
	}
	return entries, nil
}
