package pte

import "testing"

func TestFlagDecodeBitIndependence(t *testing.T) {
	specs := []struct {
		bit  uint
		flag Flag
	}{
		{0, FlagPresent},
		{1, FlagRW},
		{2, FlagUserAccessible},
		{3, FlagWriteThroughCaching},
		{4, FlagDoNotCache},
		{5, FlagAccessed},
		{6, FlagDirty},
		{7, FlagHugePage},
		{8, FlagGlobal},
	}

	for specIndex, spec := range specs {
		entry := Entry(uint64(1) << spec.bit)

		flags := entry.Flags()
		if len(flags) != 1 || flags[0] != spec.flag {
			t.Errorf("[spec %d] expected decoding bit %d to yield exactly [%s]; got %v", specIndex, spec.bit, spec.flag, flags)
		}

		// The same bit must not register as any other flag.
		for _, other := range specs {
			if got := entry.HasFlags(other.flag); got != (other.flag == spec.flag) {
				t.Errorf("[spec %d] expected HasFlags(%s) for bit %d to return %t; got %t", specIndex, other.flag, spec.bit, !got, got)
			}
		}
	}
}

func TestFlagDecodeIgnoresUnrelatedBits(t *testing.T) {
	// All address bits plus the NX bit set; none of the 9 attribute bits.
	entry := Entry(0x800ffffffffff000)
	if flags := entry.Flags(); len(flags) != 0 {
		t.Fatalf("expected no flags to decode; got %v", flags)
	}
}

func TestFlagDecodeOrder(t *testing.T) {
	// All nine attribute bits set; the rendered list must follow the
	// fixed declaration order regardless of bit value.
	entry := Entry(0x1ff)
	if exp, got := "P, R/W, U/S, PWT, PCD, A, D, PS, G", entry.FlagString(); exp != got {
		t.Fatalf("expected flag string %q; got %q", exp, got)
	}
}

func TestTableAddrMask(t *testing.T) {
	specs := []struct {
		entry   Entry
		expAddr uint64
	}{
		// Low attribute bits are masked out.
		{Entry(0x1fff), 0x1000},
		// Bits 52-63 are masked out.
		{Entry(0xfff0000000001000), 0x1000},
		// All bits set yields exactly the 12-51 window.
		{Entry(0xffffffffffffffff), 0x000ffffffffff000},
		// Zero stays zero.
		{Entry(0), 0},
		// A typical PDPT pointer with flags.
		{Entry(0x00000000dead1027), 0x00000000dead1000},
	}

	for specIndex, spec := range specs {
		if got := spec.entry.TableAddr(); got != spec.expAddr {
			t.Errorf("[spec %d] expected table address %#x; got %#x", specIndex, spec.expAddr, got)
		}
	}
}

func TestPresent(t *testing.T) {
	if Entry(0).Present() {
		t.Error("expected zero entry to be non-present")
	}
	if !Entry(0x1).Present() {
		t.Error("expected entry with bit 0 set to be present")
	}
	if Entry(0x2).Present() {
		t.Error("expected entry with only R/W set to be non-present")
	}
}

func TestHasAnyFlag(t *testing.T) {
	entry := Entry(0x3) // P | R/W
	if !entry.HasAnyFlag(FlagRW | FlagGlobal) {
		t.Error("expected HasAnyFlag to match on partial overlap")
	}
	if entry.HasAnyFlag(FlagDirty | FlagGlobal) {
		t.Error("expected HasAnyFlag to reject disjoint flags")
	}
}
