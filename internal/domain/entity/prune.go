package entity

import "time"

type PruneError struct {
	Path string
	Err  error
}

// PruneReport describes one pruning pass. Removed and Dirs hold paths
// relative to Root.
type PruneReport struct {
	Root    string
	Cutoff  time.Time
	DryRun  bool
	Missing bool
	Removed []string
	Dirs    []string
	Errors  []PruneError
}

func (r *PruneReport) Count() int {
	return len(r.Removed)
}
