package trials

import (
	"fmt"
	"sort"

	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/random"
)

// Ordering is the policy used to expand a condition list into a sequence.
type Ordering string

const (
	// OrderSequential presents rows in list order, repetition after repetition.
	OrderSequential Ordering = "sequential"
	// OrderRandom shuffles each repetition block independently.
	OrderRandom Ordering = "random"
	// OrderFullRandom samples rows with replacement for the whole sequence.
	OrderFullRandom Ordering = "fullRandom"
)

// Handler steps through an ordered or repeated/randomized sequence of trial
// rows. It is the generic companion to the scheduler: the scheduler fills
// slots adaptively, while a Handler dispenses a predetermined design.
//
// The sequence is fully materialized at construction from the injected
// random source, so a Handler replays identically for a given seed.
type Handler struct {
	rows     []domain.Trial
	sequence []int
	cursor   int
	iter     *Iterator
}

// NewHandler expands rows into nReps repetitions under the given ordering.
func NewHandler(rows []domain.Trial, nReps int, ordering Ordering, rng *random.Source) (*Handler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("trial rows must be a non-empty list")
	}
	if nReps <= 0 {
		return nil, fmt.Errorf("nReps must be positive, got %d", nReps)
	}
	if rng == nil {
		rng = random.NewFromEntropy()
	}

	total := nReps * len(rows)
	sequence := make([]int, 0, total)
	switch ordering {
	case OrderSequential:
		for rep := 0; rep < nReps; rep++ {
			for i := range rows {
				sequence = append(sequence, i)
			}
		}
	case OrderRandom:
		for rep := 0; rep < nReps; rep++ {
			block := rng.Perm(len(rows))
			sequence = append(sequence, block...)
		}
	case OrderFullRandom:
		for n := 0; n < total; n++ {
			sequence = append(sequence, rng.Intn(len(rows)))
		}
	default:
		return nil, fmt.Errorf("unknown ordering: %q", ordering)
	}

	iter, err := NewIterator(total)
	if err != nil {
		return nil, err
	}
	return &Handler{rows: rows, sequence: sequence, iter: iter}, nil
}

// Total returns the length of the expanded sequence.
func (h *Handler) Total() int {
	return len(h.sequence)
}

// Remaining returns how many trials have not been dispensed yet.
func (h *Handler) Remaining() int {
	return len(h.sequence) - h.cursor
}

// Finished reports whether the sequence is exhausted.
func (h *Handler) Finished() bool {
	return h.cursor >= len(h.sequence)
}

// Next dispenses the next trial in the sequence, recording its fields into
// the backing iterator slot and snapshot. Returns (nil, false) once the
// sequence is exhausted.
func (h *Handler) Next() (domain.Trial, bool) {
	if h.Finished() {
		return nil, false
	}
	row := h.rows[h.sequence[h.cursor]]
	for _, k := range sortedKeys(row) {
		h.iter.Write(h.cursor, k, row[k])
	}
	h.cursor++
	if h.Finished() {
		h.iter.MarkBoundaryFinished()
	}
	return row.Clone(), true
}

// Peek returns the trial n steps ahead of the cursor without advancing.
// Peek(0) is the next trial; out-of-range offsets return (nil, false).
func (h *Handler) Peek(n int) (domain.Trial, bool) {
	i := h.cursor + n
	if n < 0 || i >= len(h.sequence) {
		return nil, false
	}
	return h.rows[h.sequence[i]].Clone(), true
}

// Iterator exposes the backing slot/snapshot view for data export.
func (h *Handler) Iterator() *Iterator {
	return h.iter
}

// sortedKeys gives snapshot writes a stable field order.
func sortedKeys(t domain.Trial) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
