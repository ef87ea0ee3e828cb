// Package runtime implements the multi-staircase scheduling core: it
// interleaves independent adaptive procedures into one linear trial stream
// and populates the shared trial iterator for later export.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perceptlab/staircase/internal/logging"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
	"github.com/perceptlab/staircase/pkg/random"
	"github.com/perceptlab/staircase/pkg/trials"
)

const opAddResponse = "Scheduler.AddResponse"

// DefaultNTrials caps the run length when neither the caller nor a condition
// overrides it.
const DefaultNTrials = 50

// Config collects the scheduler's construction inputs.
type Config struct {
	// Name identifies the scheduler in exported data keys. Defaults to VarName.
	Name string
	// VarName is the stimulus variable each trial sets.
	VarName string
	// StairType selects the kind of procedure. Only QUEST is supported.
	StairType domain.StairType
	// Method is the pass-selection policy.
	Method domain.Method
	// NTrials caps the total number of trials. Defaults to DefaultNTrials.
	NTrials int
	// Conditions configure one procedure each.
	Conditions []domain.Condition
	// Factory builds the adaptive procedures. Required.
	Factory ports.ProcedureFactory
	// Rand is the shared deterministic generator. Defaults to system entropy.
	Rand *random.Source
	// Sink receives "<name>.response" records. Optional.
	Sink ports.DataSink
	// Hooks are observability callbacks. Optional.
	Hooks domain.LifecycleHooks
	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// Scheduler interleaves N independent adaptive procedures trial by trial.
//
// State machine: RUNNING while at least one procedure is unfinished or the
// current pass is non-empty; FINISHED (terminal) once every procedure reports
// finished and the pass is empty. Not safe for concurrent use: one scheduler
// instance, one logical writer at a time.
type Scheduler struct {
	name    string
	varName string
	method  domain.Method

	procs    []ports.AdaptiveProcedure
	pass     []ports.AdaptiveProcedure
	current  ports.AdaptiveProcedure
	finished bool

	rng    *random.Source
	iter   *trials.Iterator
	sink   ports.DataSink
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewScheduler validates the configuration, builds one procedure per
// condition and immediately computes the first trial, so CurrentStaircase
// and Intensity are valid right after construction.
func NewScheduler(ctx context.Context, cfg Config) (*Scheduler, error) {
	if err := ValidateConditions(cfg.StairType, cfg.Conditions); err != nil {
		return nil, err
	}
	if cfg.Factory == nil {
		return nil, domain.NewRunError(opNew, "when resolving collaborators",
			fmt.Errorf("procedure factory is required"))
	}

	nTrials := cfg.NTrials
	if nTrials <= 0 {
		nTrials = DefaultNTrials
	}

	name := cfg.Name
	if name == "" {
		name = cfg.VarName
	}

	rng := cfg.Rand
	if rng == nil {
		rng = random.NewFromEntropy()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	iter, err := trials.NewIterator(nTrials)
	if err != nil {
		return nil, domain.NewRunError(opNew, "when building the trial list", err)
	}

	s := &Scheduler{
		name:    name,
		varName: cfg.VarName,
		method:  cfg.Method,
		rng:     rng,
		iter:    iter,
		sink:    cfg.Sink,
		hooks:   cfg.Hooks,
		logger:  logger.With("scheduler", name),
	}

	for _, cond := range cfg.Conditions {
		spec := domain.ProcedureSpec{
			VarName:  cfg.VarName,
			Label:    cond.Label,
			StartVal: *cond.StartVal,
			NTrials:  nTrials,
			Extra:    cond.Extra,
		}
		if cond.StartValSd != nil {
			spec.StartValSd = *cond.StartValSd
		}
		if cond.NTrials > 0 {
			spec.NTrials = cond.NTrials
		}
		proc, err := cfg.Factory.New(spec)
		if err != nil {
			return nil, domain.NewRunError(opNew, "when building the staircases",
				fmt.Errorf("condition %q: %w", cond.Label, err))
		}
		s.procs = append(s.procs, proc)
	}

	s.nextTrial(ctx)
	return s, nil
}

// nextTrial is the state-machine transition: refill or advance the current
// pass, select the active procedure, and record its estimate into the first
// unset trial slot and matching snapshot.
func (s *Scheduler) nextTrial(ctx context.Context) {
	if len(s.pass) == 0 {
		for _, p := range s.procs {
			if !p.Finished() {
				s.pass = append(s.pass, p)
			}
		}
		switch s.method {
		case domain.MethodRandom:
			s.rng.Shuffle(len(s.pass), func(i, j int) {
				s.pass[i], s.pass[j] = s.pass[j], s.pass[i]
			})
		case domain.MethodFullRandom:
			// One trial per refill, re-drawn next time: sampling with
			// replacement across refills, not a shuffle.
			if len(s.pass) > 0 {
				pick := s.rng.Intn(len(s.pass))
				s.pass = []ports.AdaptiveProcedure{s.pass[pick]}
			}
		}
	}

	if len(s.pass) == 0 {
		s.current = nil
		s.finished = true
		s.iter.MarkBoundaryFinished()
		s.logger.Debug("all staircases finished", "trials", s.iter.Filled())
		if s.hooks.OnRunFinished != nil {
			s.hooks.OnRunFinished(ctx, &domain.RunEvent{
				EventBase:      s.eventBase(domain.EventRunFinished),
				TrialsRecorded: s.iter.Filled(),
			})
		}
		return
	}

	s.current = s.pass[0]
	s.pass = s.pass[1:]

	value := s.current.Value()
	idx, ok := s.iter.FirstUnset()
	if !ok {
		// Capacity exhausted while procedures remain unfinished. The trial
		// list grows rather than dropping the write or aborting the run.
		idx = s.iter.Grow()
		s.logger.Warn("trial list exhausted before staircases finished, growing", "index", idx)
	}

	s.iter.Write(idx, s.varName, value)
	s.iter.Write(idx, domain.KeyIntensity, value)
	for _, attr := range s.current.AttributeNames() {
		key, copyable := ports.AttributeKey(attr)
		if !copyable {
			continue
		}
		if v, present := s.current.Attribute(attr); present {
			s.iter.Write(idx, key, v)
		}
	}

	s.logger.Debug("trial selected", "index", idx, "label", s.current.Name(), "intensity", value)
	if s.hooks.OnTrialSelected != nil {
		s.hooks.OnTrialSelected(ctx, &domain.TrialEvent{
			EventBase:  s.eventBase(domain.EventTrialSelected),
			TrialIndex: idx,
			Label:      s.current.Name(),
			Intensity:  value,
		})
	}
}

// AddResponse validates and records one response, forwards it to the active
// procedure and advances to the next trial.
//
// The response must be exactly 0 or 1; anything else fails with a structured
// error and mutates nothing. After the run has finished, valid responses are
// still recorded to the sink but are otherwise a no-op.
func (s *Scheduler) AddResponse(ctx context.Context, response int, value *float64) error {
	if response != 0 && response != 1 {
		return domain.NewRunError(opAddResponse, "when registering a trial response",
			fmt.Errorf("%w (got %d)", domain.ErrInvalidResponse, response))
	}

	if s.sink != nil {
		if err := s.sink.AddData(ctx, s.name+".response", response); err != nil {
			s.logger.Warn("data sink rejected response record", "error", err)
		}
	}

	if s.finished || s.current == nil {
		return nil
	}

	v := s.current.Value()
	if value != nil {
		v = *value
	}
	active := s.current
	active.AddResponse(response, v, false)

	if s.hooks.OnResponse != nil {
		s.hooks.OnResponse(ctx, &domain.ResponseEvent{
			EventBase: s.eventBase(domain.EventResponse),
			Label:     active.Name(),
			Response:  response,
			Value:     v,
		})
	}

	s.nextTrial(ctx)
	return nil
}

// CurrentStaircase returns the active procedure, or (nil, false) once the run
// has finished.
func (s *Scheduler) CurrentStaircase() (ports.AdaptiveProcedure, bool) {
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Intensity returns the active procedure's current estimate. The second
// return is false when no procedure is active: callers must treat that as
// "no further stimulus to present".
func (s *Scheduler) Intensity() (float64, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.current.Value(), true
}

// Finished reports whether every procedure is done and the pass is empty.
func (s *Scheduler) Finished() bool {
	return s.finished
}

// Name returns the scheduler's export name.
func (s *Scheduler) Name() string {
	return s.name
}

// VarName returns the stimulus variable name.
func (s *Scheduler) VarName() string {
	return s.varName
}

// Iterator exposes the shared trial list and snapshots for data export.
func (s *Scheduler) Iterator() *trials.Iterator {
	return s.iter
}

// Procedures returns the fixed, ordered procedure list.
func (s *Scheduler) Procedures() []ports.AdaptiveProcedure {
	out := make([]ports.AdaptiveProcedure, len(s.procs))
	copy(out, s.procs)
	return out
}

func (s *Scheduler) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Scheduler: s.name}
}
