package dsl

import "github.com/perceptlab/staircase/pkg/domain"

// ConditionBuilder provides a fluent API for configuring one condition.
type ConditionBuilder struct {
	cond    domain.Condition
	builder *Builder
}

// StartVal sets the initial threshold guess.
func (c *ConditionBuilder) StartVal(v float64) *ConditionBuilder {
	c.cond.StartVal = &v
	return c
}

// StartValSd sets the standard deviation of the initial guess, required for
// QUEST staircases.
func (c *ConditionBuilder) StartValSd(v float64) *ConditionBuilder {
	c.cond.StartValSd = &v
	return c
}

// NTrials overrides the per-staircase trial count.
func (c *ConditionBuilder) NTrials(n int) *ConditionBuilder {
	c.cond.NTrials = n
	return c
}

// Set attaches an arbitrary attribute forwarded to the procedure factory.
func (c *ConditionBuilder) Set(key string, value any) *ConditionBuilder {
	if c.cond.Extra == nil {
		c.cond.Extra = make(map[string]any)
	}
	c.cond.Extra[key] = value
	return c
}

// Condition starts another condition on the parent builder, enabling chains.
func (c *ConditionBuilder) Condition(label string) *ConditionBuilder {
	return c.builder.Condition(label)
}

// Build compiles the whole set from the parent builder.
func (c *ConditionBuilder) Build() ([]domain.Condition, error) {
	return c.builder.Build()
}
