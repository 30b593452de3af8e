// Package pte implements decoding of x86-64 page table entries as they
// appear in raw memory: a 64-bit value combining a set of attribute flags
// with the physical address of the next paging structure or mapped frame.
package pte

import "strings"

// physAddrMask is a mask that allows us to extract the physical memory
// address stored in a page table entry. For this particular architecture,
// bits 12-51 contain the physical memory address.
const physAddrMask = uint64(0x000ffffffffff000)

// Flag describes an attribute flag that can be set on a page table entry.
type Flag uint64

const (
	// FlagPresent is set when the entry is valid and in use.
	FlagPresent Flag = 1 << iota

	// FlagRW is set if the mapped page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode code can access the mapped
	// page. If not set only supervisor code can access it.
	FlagUserAccessible

	// FlagWriteThroughCaching implies write-through caching when set and
	// write-back caching if cleared.
	FlagWriteThroughCaching

	// FlagDoNotCache prevents the mapped page from being cached if set.
	FlagDoNotCache

	// FlagAccessed is set by the CPU when the mapped page is accessed.
	FlagAccessed

	// FlagDirty is set by the CPU when the mapped page is modified.
	FlagDirty

	// FlagHugePage is set on PDPT and PD entries that map a 1Gb or 2Mb
	// page directly instead of pointing to the next level table.
	FlagHugePage

	// FlagGlobal prevents the TLB from flushing the cached translation
	// for the mapped page when the page tables are swapped via CR3.
	FlagGlobal
)

// flagLabels associates each supported flag with its conventional short
// label. The slice order defines the decode order and must not change; the
// rendered flag lists are expected to be stable.
var flagLabels = []struct {
	flag  Flag
	label string
}{
	{FlagPresent, "P"},
	{FlagRW, "R/W"},
	{FlagUserAccessible, "U/S"},
	{FlagWriteThroughCaching, "PWT"},
	{FlagDoNotCache, "PCD"},
	{FlagAccessed, "A"},
	{FlagDirty, "D"},
	{FlagHugePage, "PS"},
	{FlagGlobal, "G"},
}

// String returns the conventional short label for a flag.
func (f Flag) String() string {
	for _, fl := range flagLabels {
		if fl.flag == f {
			return fl.label
		}
	}
	return "?"
}

// Entry describes a single 8-byte page table entry as read from a memory
// dump. Entries encode a physical address and a set of flags.
type Entry uint64

// HasFlags returns true if this entry has all the input flags set.
func (e Entry) HasFlags(flags Flag) bool {
	return (uint64(e) & uint64(flags)) == uint64(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags set.
func (e Entry) HasAnyFlag(flags Flag) bool {
	return (uint64(e) & uint64(flags)) != 0
}

// Present returns true if the entry is marked as present.
func (e Entry) Present() bool {
	return e.HasFlags(FlagPresent)
}

// TableAddr returns the physical address encoded in bits 12-51 of the
// entry. For non-leaf entries this is the address of the next level paging
// structure; for leaf and huge-page entries it is the mapped frame address.
// The returned value is already byte-aligned and requires no shifting.
func (e Entry) TableAddr() uint64 {
	return uint64(e) & physAddrMask
}

// Flags returns the set of flags that are set on this entry in the fixed
// decode order defined by flagLabels.
func (e Entry) Flags() []Flag {
	var flags []Flag
	for _, fl := range flagLabels {
		if e.HasFlags(fl.flag) {
			flags = append(flags, fl.flag)
		}
	}
	return flags
}

// FlagString renders the set flags of this entry as a comma-separated list
// of short labels (e.g. "P, R/W, A").
func (e Entry) FlagString() string {
	return FlagString(e.Flags())
}

// FlagString renders a flag list as a comma-separated list of short labels.
func FlagString(flags []Flag) string {
	labels := make([]string, len(flags))
	for i, f := range flags {
		labels[i] = f.String()
	}
	return strings.Join(labels, ", ")
}
