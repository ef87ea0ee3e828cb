// Package testutils provides shared test doubles for the scheduler core.
package testutils

import (
	"context"
	"sync"

	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
)

// ScriptedProcedure is an AdaptiveProcedure test double: it dispenses a fixed
// sequence of values and finishes after a set number of responses.
type ScriptedProcedure struct {
	Label      string
	Values     []float64 // values dispensed per trial; last value repeats
	MaxTrials  int       // finishes once this many responses are recorded
	ForcedDone bool      // overrides MaxTrials when set

	Responses []int
	Notified  []bool
	step      int
	Attrs     map[string]any
	AttrOrder []string
}

// NewScriptedProcedure builds a procedure that always returns value and
// finishes after maxTrials responses.
func NewScriptedProcedure(label string, value float64, maxTrials int) *ScriptedProcedure {
	return &ScriptedProcedure{Label: label, Values: []float64{value}, MaxTrials: maxTrials}
}

func (p *ScriptedProcedure) Name() string { return p.Label }

func (p *ScriptedProcedure) Value() float64 {
	if p.step < len(p.Values) {
		return p.Values[p.step]
	}
	return p.Values[len(p.Values)-1]
}

func (p *ScriptedProcedure) AddResponse(response int, value float64, notify bool) {
	p.Responses = append(p.Responses, response)
	p.Notified = append(p.Notified, notify)
	p.step++
}

func (p *ScriptedProcedure) Finished() bool {
	if p.ForcedDone {
		return true
	}
	return len(p.Responses) >= p.MaxTrials
}

func (p *ScriptedProcedure) AttributeNames() []string {
	if p.AttrOrder != nil {
		return p.AttrOrder
	}
	return []string{"name"}
}

func (p *ScriptedProcedure) Attribute(name string) (any, bool) {
	if name == "name" {
		return p.Label, true
	}
	v, ok := p.Attrs[name]
	return v, ok
}

// ScriptedFactory hands out pre-built procedures by condition label.
type ScriptedFactory struct {
	Procedures map[string]ports.AdaptiveProcedure
}

// New implements ports.ProcedureFactory.
func (f *ScriptedFactory) New(spec domain.ProcedureSpec) (ports.AdaptiveProcedure, error) {
	if p, ok := f.Procedures[spec.Label]; ok {
		return p, nil
	}
	p := NewScriptedProcedure(spec.Label, spec.StartVal, spec.NTrials)
	if f.Procedures == nil {
		f.Procedures = make(map[string]ports.AdaptiveProcedure)
	}
	f.Procedures[spec.Label] = p
	return p, nil
}

// RecordingSink is an in-test DataSink capturing every write in order.
type RecordingSink struct {
	mu      sync.Mutex
	records []ports.Record
}

// AddData implements ports.DataSink.
func (s *RecordingSink) AddData(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ports.Record{Key: key, Value: value})
	return nil
}

// Records returns the captured writes.
func (s *RecordingSink) Records() []ports.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Fv is shorthand for building optional float fields in test conditions.
func Fv(v float64) *float64 { return &v }
