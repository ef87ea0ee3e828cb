package dsl

import (
	"fmt"

	"github.com/perceptlab/staircase/pkg/domain"
)

// Builder manages condition set construction.
type Builder struct {
	order      []string
	conditions map[string]*ConditionBuilder
}

// New creates a new condition set builder.
func New() *Builder {
	return &Builder{
		conditions: make(map[string]*ConditionBuilder),
	}
}

// Condition creates a new condition with the given label.
// If the label already exists, it returns the existing builder.
func (b *Builder) Condition(label string) *ConditionBuilder {
	if cb, ok := b.conditions[label]; ok {
		return cb
	}
	cb := &ConditionBuilder{
		cond:    domain.Condition{Label: label},
		builder: b,
	}
	b.order = append(b.order, label)
	b.conditions[label] = cb
	return cb
}

// Build compiles the set into conditions in declaration order. It fails when
// a condition never received a start value, since the scheduler would reject
// it anyway.
func (b *Builder) Build() ([]domain.Condition, error) {
	conditions := make([]domain.Condition, 0, len(b.order))
	for _, label := range b.order {
		cb := b.conditions[label]
		if cb.cond.StartVal == nil {
			return nil, fmt.Errorf("condition %q has no start value", label)
		}
		conditions = append(conditions, cb.cond)
	}
	return conditions, nil
}
