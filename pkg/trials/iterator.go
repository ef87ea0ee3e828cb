// Package trials holds the trial-sequence model: a fixed-length ordered list
// of trial slots with matching snapshots, and a generic stepping handler for
// repeated/randomized condition lists.
package trials

import (
	"fmt"

	"github.com/perceptlab/staircase/pkg/domain"
)

// Iterator holds a fixed-length ordered sequence of Trial slots plus matching
// Snapshots. Slots start unset; content of later-indexed slots may stay unset
// until a staircase has filled them in. No attribute-level validation happens
// here; that is the scheduler's job.
type Iterator struct {
	trials    []domain.Trial
	snapshots []*domain.Snapshot
}

// NewIterator creates an iterator with n unset trial slots and n snapshots.
func NewIterator(n int) (*Iterator, error) {
	if n <= 0 {
		return nil, fmt.Errorf("nTrials must be positive, got %d", n)
	}
	it := &Iterator{
		trials:    make([]domain.Trial, n),
		snapshots: make([]*domain.Snapshot, n),
	}
	for i := 0; i < n; i++ {
		it.snapshots[i] = &domain.Snapshot{Index: i, Remaining: n - 1 - i}
	}
	return it, nil
}

// Len returns the current number of trial slots.
func (it *Iterator) Len() int {
	return len(it.trials)
}

// Trial returns the trial at index i. Reading an unset slot returns
// (nil, false), not an error; out-of-range reads do the same.
func (it *Iterator) Trial(i int) (domain.Trial, bool) {
	if i < 0 || i >= len(it.trials) || it.trials[i] == nil {
		return nil, false
	}
	return it.trials[i], true
}

// Snapshot returns the snapshot at index i.
func (it *Iterator) Snapshot(i int) (*domain.Snapshot, bool) {
	if i < 0 || i >= len(it.snapshots) {
		return nil, false
	}
	return it.snapshots[i], true
}

// FirstUnset returns the index of the first slot without content.
func (it *Iterator) FirstUnset() (int, bool) {
	for i, t := range it.trials {
		if t == nil {
			return i, true
		}
	}
	return 0, false
}

// Filled returns the number of slots with content.
func (it *Iterator) Filled() int {
	n := 0
	for _, t := range it.trials {
		if t != nil {
			n++
		}
	}
	return n
}

// Write sets one field on the trial at index i, mirroring the write into the
// matching snapshot and recording the field name there for later export.
// Writes outside the slot range are ignored.
func (it *Iterator) Write(i int, name string, value any) {
	if i < 0 || i >= len(it.trials) {
		return
	}
	if it.trials[i] == nil {
		it.trials[i] = make(domain.Trial)
	}
	it.trials[i][name] = value
	it.snapshots[i].Set(name, value)
}

// Grow appends one unset slot with its snapshot and returns its index.
func (it *Iterator) Grow() int {
	i := len(it.trials)
	it.trials = append(it.trials, nil)
	it.snapshots = append(it.snapshots, &domain.Snapshot{Index: i})
	return i
}

// MarkBoundaryFinished marks the snapshot immediately following the last
// filled slot as finished, so a sink reading that snapshot after the run sees
// the terminal flag. If every slot was legitimately used there is no boundary
// snapshot and nothing is marked.
func (it *Iterator) MarkBoundaryFinished() bool {
	i, ok := it.FirstUnset()
	if !ok {
		return false
	}
	it.snapshots[i].Finished = true
	return true
}
