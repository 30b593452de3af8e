package dotviz

import (
	"strings"
	"testing"

	"github.com/nelsongillo/pageviz/pte"
	"github.com/nelsongillo/pageviz/walk"
)

func TestEnsureNodeIsIdempotent(t *testing.T) {
	s := New()

	first := s.EnsureNode(0x1000, walk.LevelPML4, nil)
	second := s.EnsureNode(0x1000, walk.LevelPDPT, nil)
	if first != second {
		t.Fatalf("expected both calls to yield the same handle; got %q and %q", first, second)
	}

	out := s.String()
	if !strings.Contains(out, "PML4") {
		t.Fatal("expected the node label from the first EnsureNode call")
	}
	if strings.Contains(out, "PDPT") {
		t.Fatal("expected the second EnsureNode call to leave the original label untouched")
	}
}

func TestNodeLabel(t *testing.T) {
	s := New()
	s.EnsureNode(0x3000, walk.LevelPD, []walk.Row{
		{Slot: 1, Addr: 0x4000, Flags: []pte.Flag{pte.FlagPresent, pte.FlagRW}},
		{Slot: 2, Addr: 0x200000, Flags: []pte.Flag{pte.FlagPresent, pte.FlagHugePage}},
	})

	out := s.String()
	for _, exp := range []string{
		"PD @ 0x3000",
		"<TR><TD>1</TD><TD>0x4000</TD><TD>P, R/W</TD></TR>",
		"<TR><TD>2</TD><TD>0x200000</TD><TD>P, PS</TD></TR>",
		"Index", "Entry Addr", "Flags",
	} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected rendered output to contain %q; output:\n%s", exp, out)
		}
	}
}

func TestEdgeLabel(t *testing.T) {
	s := New()
	parent := s.EnsureNode(0x1000, walk.LevelPML4, nil)
	child := s.EnsureNode(0x2000, walk.LevelPDPT, nil)
	s.AddEdge(parent, 42, child)

	out := s.String()
	if !strings.Contains(out, "[42]") {
		t.Fatalf("expected an edge labeled [42]; output:\n%s", out)
	}
	if !strings.Contains(out, "->") {
		t.Fatalf("expected a directed edge; output:\n%s", out)
	}
}

func TestThemeAttributes(t *testing.T) {
	s := New()
	s.EnsureNode(0x1000, walk.LevelPML4, nil)

	out := s.String()
	for _, exp := range []string{"#2d2d2d", "rankdir", "LR"} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected rendered output to contain %q", exp)
		}
	}
}
