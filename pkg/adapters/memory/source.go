package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/perceptlab/staircase/pkg/domain"
)

// Source implements ports.ConditionSource from registered condition lists.
type Source struct {
	mu        sync.RWMutex
	resources map[string][]domain.Condition
}

// NewSource creates a source pre-loaded with the given resources.
func NewSource(resources map[string][]domain.Condition) *Source {
	src := &Source{resources: make(map[string][]domain.Condition)}
	for name, conds := range resources {
		src.resources[name] = conds
	}
	return src
}

// Register adds or replaces a named condition list.
func (s *Source) Register(name string, conditions []domain.Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[name] = conditions
}

// Load returns the conditions registered under the given resource name.
func (s *Source) Load(_ context.Context, resource string) ([]domain.Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conds, ok := s.resources[resource]
	if !ok {
		return nil, fmt.Errorf("conditions resource not found: %s", resource)
	}
	out := make([]domain.Condition, len(conds))
	copy(out, conds)
	return out, nil
}
