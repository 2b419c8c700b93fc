package model

// Outcome is the terminal result of processing a single file.
type Outcome int

const (
	Updated Outcome = iota
	SkippedPresent
	SkippedNoAnchor
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case SkippedPresent:
		return "skipped_present"
	case SkippedNoAnchor:
		return "skipped_no_anchor"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// AnchorMatch is the position of the first anchor line in a file.
type AnchorMatch struct {
	Variant string // The prefix that matched.
	Index   int    // Position of Variant in the configured anchor list.
	Offset  int    // Byte offset of the start of the line.
	Line    int    // 1-based line number.
}

// Entry is one recorded file outcome.
type Entry struct {
	Path    string
	Outcome Outcome
	Detail  string
}

// Summary holds the results of a run for display.
type Summary struct {
	Updated         int
	SkippedPresent  int
	SkippedNoAnchor int
	Errored         int
	Entries         []Entry
}

// Skipped counts both kinds of skip.
func (s Summary) Skipped() int {
	return s.SkippedPresent + s.SkippedNoAnchor
}

// Total is the number of files that received an outcome.
func (s Summary) Total() int {
	return s.Updated + s.Skipped() + s.Errored
}

// Paths returns the paths of entries with the given outcome, in record order.
func (s Summary) Paths(o Outcome) []string {
	var paths []string
	for _, e := range s.Entries {
		if e.Outcome == o {
			paths = append(paths, e.Path)
		}
	}
	return paths
}
