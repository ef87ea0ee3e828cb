package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perceptlab/staircase/pkg/adapters/memory"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports/tests"
)

func fv(v float64) *float64 { return &v }

func TestSink_Contract(t *testing.T) {
	tests.RecordingSinkContractTest(t, memory.NewSink())
}

func TestSink_Reset(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewSink()
	require.NoError(t, sink.AddData(ctx, "k", 1))

	sink.Reset()
	records, err := sink.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSource_Contract(t *testing.T) {
	conditions := []domain.Condition{
		{Label: "a", StartVal: fv(0.5), StartValSd: fv(0.2)},
		{Label: "b", StartVal: fv(0.7), StartValSd: fv(0.2)},
	}
	source := memory.NewSource(nil)
	source.Register("block1", conditions)

	tests.ConditionSourceContractTest(t, source, "block1", conditions)
}

func TestSource_ReturnsCopies(t *testing.T) {
	source := memory.NewSource(nil)
	source.Register("block1", []domain.Condition{{Label: "a", StartVal: fv(0.5)}})

	got, err := source.Load(context.Background(), "block1")
	require.NoError(t, err)
	got[0].Label = "mutated"

	again, err := source.Load(context.Background(), "block1")
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Label)
}
