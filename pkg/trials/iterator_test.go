package trials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perceptlab/staircase/pkg/trials"
)

func TestNewIterator_RejectsNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := trials.NewIterator(n)
		assert.Error(t, err, "n=%d", n)
	}
}

func TestIterator_UnsetSlotsReadAsAbsent(t *testing.T) {
	it, err := trials.NewIterator(3)
	require.NoError(t, err)

	assert.Equal(t, 3, it.Len())
	assert.Equal(t, 0, it.Filled())

	// Unset and out-of-range reads look the same: (nil, false), no error.
	for _, i := range []int{0, 2, -1, 3} {
		trial, ok := it.Trial(i)
		assert.Nil(t, trial)
		assert.False(t, ok)
	}

	idx, ok := it.FirstUnset()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestIterator_SnapshotsMatchSlots(t *testing.T) {
	it, err := trials.NewIterator(3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		snap, ok := it.Snapshot(i)
		require.True(t, ok)
		assert.Equal(t, i, snap.Index)
		assert.Equal(t, 2-i, snap.Remaining)
		assert.False(t, snap.Finished)
	}
}

func TestIterator_WriteMirrorsIntoSnapshot(t *testing.T) {
	it, err := trials.NewIterator(2)
	require.NoError(t, err)

	it.Write(0, "contrast", 0.5)
	it.Write(0, "label", "a")
	it.Write(0, "contrast", 0.6) // overwrite, field recorded once

	trial, ok := it.Trial(0)
	require.True(t, ok)
	assert.Equal(t, 0.6, trial["contrast"])
	assert.Equal(t, "a", trial["label"])

	snap, _ := it.Snapshot(0)
	assert.Equal(t, 0.6, snap.Data["contrast"])
	assert.Equal(t, []string{"contrast", "label"}, snap.Fields)

	assert.Equal(t, 1, it.Filled())
	idx, ok := it.FirstUnset()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	// Out-of-range writes are ignored.
	it.Write(5, "contrast", 1.0)
	assert.Equal(t, 2, it.Len())
}

func TestIterator_GrowAppendsSlot(t *testing.T) {
	it, err := trials.NewIterator(1)
	require.NoError(t, err)
	it.Write(0, "x", 1)

	idx := it.Grow()
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, it.Len())

	snap, ok := it.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Index)
}

func TestIterator_MarkBoundaryFinished(t *testing.T) {
	it, err := trials.NewIterator(3)
	require.NoError(t, err)
	it.Write(0, "x", 1)

	require.True(t, it.MarkBoundaryFinished())
	snap, _ := it.Snapshot(1)
	assert.True(t, snap.Finished)

	// A fully used list has no boundary snapshot left to mark.
	it.Write(1, "x", 1)
	it.Write(2, "x", 1)
	assert.False(t, it.MarkBoundaryFinished())
}
