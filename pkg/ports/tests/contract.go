// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"

	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
)

// RecordingSinkContractTest verifies that an adapter complies with
// ports.RecordingSink: writes succeed, order is preserved, and repeated keys
// are appended rather than deduplicated (experiment data is a log, not a map).
func RecordingSinkContractTest(t *testing.T, sink ports.RecordingSink) {
	t.Helper()
	ctx := context.Background()

	t.Run("AddData_Success", func(t *testing.T) {
		if err := sink.AddData(ctx, "stairs.response", 1); err != nil {
			t.Fatalf("unexpected error adding data: %v", err)
		}
		if err := sink.AddData(ctx, "stairs.intensity", 0.5); err != nil {
			t.Fatalf("unexpected error adding data: %v", err)
		}
		if err := sink.AddData(ctx, "stairs.response", 0); err != nil {
			t.Fatalf("unexpected error adding repeated key: %v", err)
		}
	})

	t.Run("Records_Order", func(t *testing.T) {
		records, err := sink.Records(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading records: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		wantKeys := []string{"stairs.response", "stairs.intensity", "stairs.response"}
		for i, want := range wantKeys {
			if records[i].Key != want {
				t.Errorf("record %d: got key %q, want %q", i, records[i].Key, want)
			}
		}
	})
}

// ConditionSourceContractTest verifies that an adapter complies with
// ports.ConditionSource for a resource known to hold the given conditions.
func ConditionSourceContractTest(t *testing.T, source ports.ConditionSource, resource string, want []domain.Condition) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		got, err := source.Load(ctx, resource)
		if err != nil {
			t.Fatalf("unexpected error loading %q: %v", resource, err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d conditions, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].Label != want[i].Label {
				t.Errorf("condition %d: got label %q, want %q", i, got[i].Label, want[i].Label)
			}
			if (got[i].StartVal == nil) != (want[i].StartVal == nil) {
				t.Errorf("condition %d: startVal presence mismatch", i)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		if _, err := source.Load(ctx, "no-such-resource"); err == nil {
			t.Error("expected error for unknown resource, got nil")
		}
	})
}
