// Package sim provides simulation collaborators: a convergent stand-in for a
// real adaptive procedure, and a simulated observer that answers trials.
//
// The procedure here is deliberately not QUEST: the Bayesian threshold math
// is a pluggable collaborator of the engine. Estimator implements the same
// port with a simple bracketing rule so full runs can be exercised without
// psychometric machinery.
package sim

import (
	"math"
	"sort"

	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
	"github.com/perceptlab/staircase/pkg/random"
)

// Estimator is a deterministic AdaptiveProcedure: it starts at startVal and
// steps down on a correct response, up on an incorrect one, halving the step
// on every direction reversal. It finishes after nTrials responses.
type Estimator struct {
	label    string
	varName  string
	startVal float64
	startSd  float64
	nTrials  int

	value    float64
	step     float64
	lastDir  int
	nDone    int
	extra    map[string]any
	extraKey []string
}

// NewEstimator builds an estimator from a resolved procedure spec.
func NewEstimator(spec domain.ProcedureSpec) *Estimator {
	step := spec.StartValSd
	if step <= 0 {
		step = math.Abs(spec.StartVal) / 2
		if step == 0 {
			step = 0.5
		}
	}
	keys := make([]string, 0, len(spec.Extra))
	for k := range spec.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Estimator{
		label:    spec.Label,
		varName:  spec.VarName,
		startVal: spec.StartVal,
		startSd:  spec.StartValSd,
		nTrials:  spec.NTrials,
		value:    spec.StartVal,
		step:     step,
		extra:    spec.Extra,
		extraKey: keys,
	}
}

// Name returns the condition label.
func (e *Estimator) Name() string { return e.label }

// Value returns the current estimate.
func (e *Estimator) Value() float64 { return e.value }

// AddResponse steps the estimate. The notify flag is accepted for interface
// compatibility; the estimator keeps no data sink of its own.
func (e *Estimator) AddResponse(response int, value float64, notify bool) {
	_ = notify
	dir := 1
	if response == 1 {
		dir = -1
	}
	if e.lastDir != 0 && dir != e.lastDir {
		e.step /= 2
	}
	e.lastDir = dir
	e.value = value + float64(dir)*e.step
	e.nDone++
}

// Finished reports whether the trial budget is spent.
func (e *Estimator) Finished() bool {
	return e.nDone >= e.nTrials
}

// AttributeNames lists the user-visible attributes in a stable order.
// "name" is first so records always carry the label.
func (e *Estimator) AttributeNames() []string {
	names := []string{"name", "startVal", "startValSd", "nTrials"}
	return append(names, e.extraKey...)
}

// Attribute returns the named attribute value.
func (e *Estimator) Attribute(name string) (any, bool) {
	switch name {
	case "name":
		return e.label, true
	case "startVal":
		return e.startVal, true
	case "startValSd":
		return e.startSd, true
	case "nTrials":
		return e.nTrials, true
	}
	v, ok := e.extra[name]
	return v, ok
}

// NewFactory returns a ProcedureFactory producing Estimators.
func NewFactory() ports.ProcedureFactory {
	return ports.ProcedureFactoryFunc(func(spec domain.ProcedureSpec) (ports.AdaptiveProcedure, error) {
		return NewEstimator(spec), nil
	})
}

// Responder simulates a psychophysical observer: the probability of a
// correct response follows a logistic function of stimulus intensity around
// the observer's true threshold.
type Responder struct {
	Threshold float64
	Slope     float64
	rng       *random.Source
}

// NewResponder creates an observer with the given true threshold. A slope of
// zero defaults to a moderately steep psychometric function.
func NewResponder(threshold, slope float64, rng *random.Source) *Responder {
	if slope <= 0 {
		slope = 10
	}
	if rng == nil {
		rng = random.NewFromEntropy()
	}
	return &Responder{Threshold: threshold, Slope: slope, rng: rng}
}

// Respond answers one trial at the given intensity: 1 for detected, 0 for
// missed. Draws exactly one value from the injected generator per call.
func (r *Responder) Respond(intensity float64) int {
	p := 1 / (1 + math.Exp(-r.Slope*(intensity-r.Threshold)))
	if r.rng.Float64() < p {
		return 1
	}
	return 0
}
