package staircase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perceptlab/staircase/internal/logging"
	"github.com/perceptlab/staircase/internal/runtime"
	"github.com/perceptlab/staircase/pkg/adapters/memory"
	"github.com/perceptlab/staircase/pkg/adapters/sim"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
	"github.com/perceptlab/staircase/pkg/random"
	"github.com/perceptlab/staircase/pkg/trials"
)

// Session is the high-level entry point for the staircase library.
// It wraps the internal scheduler and provides a simplified API for hosts.
type Session struct {
	scheduler *runtime.Scheduler
	sink      ports.DataSink
	logger    *slog.Logger
}

// config collects construction inputs before they reach the scheduler.
type config struct {
	name       string
	method     domain.Method
	nTrials    int
	seed       *int64
	rand       *random.Source
	conditions []domain.Condition
	source     ports.ConditionSource
	resource   string
	factory    ports.ProcedureFactory
	sink       ports.DataSink
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring a Session.
type Option func(*config)

// WithName sets the scheduler name used in exported data keys.
// Defaults to the stimulus variable name.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithConditions supplies the condition list directly.
func WithConditions(conditions []domain.Condition) Option {
	return func(c *config) { c.conditions = conditions }
}

// WithConditionsResource resolves the condition list from a named resource
// via the given source at construction time.
func WithConditionsResource(source ports.ConditionSource, resource string) Option {
	return func(c *config) {
		c.source = source
		c.resource = resource
	}
}

// WithMethod sets the pass-selection policy (default: sequential).
func WithMethod(method domain.Method) Option {
	return func(c *config) { c.method = method }
}

// WithTrialCap caps the total number of trials (default 50).
func WithTrialCap(n int) Option {
	return func(c *config) { c.nTrials = n }
}

// WithSeed seeds the session's random generator deterministically.
// Without a seed the generator is drawn from system entropy.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = &seed }
}

// WithRandomSource injects a generator directly, taking precedence over
// WithSeed. Useful for tests sharing one generator across collaborators.
func WithRandomSource(src *random.Source) Option {
	return func(c *config) { c.rand = src }
}

// WithProcedureFactory injects the staircase implementation. The default
// factory builds sim.Estimator procedures, which are simulation stand-ins;
// real experiments should inject their QUEST implementation here.
func WithProcedureFactory(factory ports.ProcedureFactory) Option {
	return func(c *config) { c.factory = factory }
}

// WithSink routes per-response experiment data to the given sink.
// Defaults to an in-memory recording sink readable via Data.
func WithSink(sink ports.DataSink) Option {
	return func(c *config) { c.sink = sink }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) { c.hooks = hooks }
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New initializes a session for the given stimulus variable and staircase
// kind. Conditions come from WithConditions or WithConditionsResource.
// Validation failures are fatal: no session object is usable afterward.
//
// The first trial is computed during construction, so CurrentStaircase and
// Intensity are valid immediately.
func New(ctx context.Context, varName string, stairType domain.StairType, opts ...Option) (*Session, error) {
	cfg := &config{
		method:  domain.MethodSequential,
		nTrials: runtime.DefaultNTrials,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	conditions := cfg.conditions
	if conditions == nil && cfg.source != nil {
		loaded, err := cfg.source.Load(ctx, cfg.resource)
		if err != nil {
			return nil, domain.NewRunError("Session.New", "when loading the conditions resource",
				fmt.Errorf("resource %q: %w", cfg.resource, err))
		}
		conditions = loaded
	}

	rng := cfg.rand
	if rng == nil {
		if cfg.seed != nil {
			rng = random.New(*cfg.seed)
		} else {
			rng = random.NewFromEntropy()
		}
	}

	factory := cfg.factory
	if factory == nil {
		factory = sim.NewFactory()
	}

	sink := cfg.sink
	if sink == nil {
		sink = memory.NewSink()
	}

	scheduler, err := runtime.NewScheduler(ctx, runtime.Config{
		Name:       cfg.name,
		VarName:    varName,
		StairType:  stairType,
		Method:     cfg.method,
		NTrials:    cfg.nTrials,
		Conditions: conditions,
		Factory:    factory,
		Rand:       rng,
		Sink:       sink,
		Hooks:      cfg.hooks,
		Logger:     cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		scheduler: scheduler,
		sink:      sink,
		logger:    cfg.logger,
	}, nil
}

// AddResponse registers one response (0 or 1) for the current trial and
// advances to the next one. An optional value overrides the stimulus
// intensity forwarded to the active procedure.
//
// Invalid responses fail with a structured error and mutate nothing; the run
// continues and the caller may retry. Responses after the run has finished
// are ignored.
func (s *Session) AddResponse(ctx context.Context, response int, value ...float64) error {
	var v *float64
	if len(value) > 0 {
		v = &value[0]
	}
	return s.scheduler.AddResponse(ctx, response, v)
}

// Intensity returns the next stimulus intensity to present. The second
// return is false when the run is finished and nothing remains to present.
func (s *Session) Intensity() (float64, bool) {
	return s.scheduler.Intensity()
}

// CurrentStaircase returns the procedure selected for the current trial, or
// (nil, false) once the run has finished.
func (s *Session) CurrentStaircase() (ports.AdaptiveProcedure, bool) {
	return s.scheduler.CurrentStaircase()
}

// Finished reports whether every procedure is done.
func (s *Session) Finished() bool {
	return s.scheduler.Finished()
}

// Name returns the scheduler name used in exported data keys.
func (s *Session) Name() string {
	return s.scheduler.Name()
}

// Iterator exposes the shared trial list and snapshots.
func (s *Session) Iterator() *trials.Iterator {
	return s.scheduler.Iterator()
}

// Procedures returns the fixed, ordered procedure list.
func (s *Session) Procedures() []ports.AdaptiveProcedure {
	return s.scheduler.Procedures()
}

// Data returns the records collected by the session's sink, when the sink
// supports reading back (the default in-memory sink does).
func (s *Session) Data(ctx context.Context) ([]ports.Record, error) {
	rec, ok := s.sink.(ports.RecordingSink)
	if !ok {
		return nil, fmt.Errorf("configured sink does not support reading records back")
	}
	return rec.Records(ctx)
}

// Export walks the filled snapshots in trial order and hands every recorded
// field to the sink in the shape "<name>.<field>".
func (s *Session) Export(ctx context.Context, sink ports.DataSink) error {
	iter := s.scheduler.Iterator()
	for i := 0; i < iter.Len(); i++ {
		snap, ok := iter.Snapshot(i)
		if !ok || snap.Data == nil {
			continue
		}
		for _, field := range snap.Fields {
			key := s.Name() + "." + field
			if err := sink.AddData(ctx, key, snap.Data[field]); err != nil {
				return fmt.Errorf("failed to export trial %d field %q: %w", i, field, err)
			}
		}
	}
	return nil
}
