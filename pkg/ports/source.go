package ports

import (
	"context"

	"github.com/perceptlab/staircase/pkg/domain"
)

// ConditionSource resolves a resource name into a condition list. The engine
// only consumes the resulting slice; any I/O (files, HTTP, embedded data)
// lives in the adapter.
type ConditionSource interface {
	// Load returns the conditions registered under the given resource name.
	Load(ctx context.Context, resource string) ([]domain.Condition, error)
}
