// Package walker handles directory traversal and filename matching
package walker

// Matcher tests a base file name.
type Matcher interface {
	MatchName(name string) bool
}

// Match is one discovered file. Index starts at 1 and follows discovery order.
type Match struct {
	Index int
	Path  string
	Name  string
}

// MatchFunc receives each match synchronously. A non-nil error stops the walk.
type MatchFunc func(m Match) error

// SkippedReason clarifies why a file/directory was not processed.
type SkippedReason string

const (
	ReasonExcluded         SkippedReason = "Excluded (Pattern/Gitignore Rule)"
	ReasonSkippedPermError SkippedReason = "Skipped (Permission Error)"
	ReasonSkippedWalkError SkippedReason = "Skipped (Walk Error)"
	ReasonSkippedPathError SkippedReason = "Skipped (Path Calculation Error)"
	ReasonSymlinkCycle     SkippedReason = "Skipped (Symlink Cycle)"
	ReasonSymlinkDir       SkippedReason = "Skipped (Symlinked Directory Not Followed)"
)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string
	Reason SkippedReason
	IsDir  bool
}

// SkippedTracker collects skipped items in the order they were met.
type SkippedTracker struct {
	items []SkippedItem
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns the tracked skipped items
func (st *SkippedTracker) Items() []SkippedItem {
	return st.items
}

// Stats counts what a walk saw.
type Stats struct {
	Dirs    int
	Files   int
	Matches int
	Skipped int
}
