package walk

// pageLevels indicates the number of page table levels supported by the
// amd64 architecture.
const pageLevels = 4

// Level identifies one of the four x86-64 paging hierarchy levels.
type Level uint8

const (
	// LevelPML4 is the top level paging structure; CR3 points at it on a
	// live system.
	LevelPML4 Level = iota

	// LevelPDPT is the page directory pointer table. Entries with the PS
	// flag set map a 1Gb page directly.
	LevelPDPT

	// LevelPD is the page directory. Entries with the PS flag set map a
	// 2Mb page directly.
	LevelPD

	// LevelPT is the leaf page table; every present entry maps a 4Kb
	// page and no further descent is possible.
	LevelPT
)

var levelNames = [pageLevels]string{"PML4", "PDPT", "PD", "PT"}

// String returns the conventional name for a paging level.
func (l Level) String() string {
	if int(l) >= pageLevels {
		return "unknown"
	}
	return levelNames[l]
}

// Next returns the level one step further down the hierarchy. The second
// return value is false when called on LevelPT, which has no next level.
// Transitions only move downward; there is no way to reach a previous or
// sibling level.
func (l Level) Next() (Level, bool) {
	if l >= LevelPT {
		return l, false
	}
	return l + 1, true
}
