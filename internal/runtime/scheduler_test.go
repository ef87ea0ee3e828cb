package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perceptlab/staircase/internal/runtime"
	"github.com/perceptlab/staircase/internal/testutils"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/ports"
	"github.com/perceptlab/staircase/pkg/random"
)

func questConditions(labels ...string) []domain.Condition {
	conditions := make([]domain.Condition, 0, len(labels))
	for _, label := range labels {
		conditions = append(conditions, domain.Condition{
			Label:      label,
			StartVal:   testutils.Fv(0.5),
			StartValSd: testutils.Fv(0.2),
		})
	}
	return conditions
}

func newScheduler(t *testing.T, cfg runtime.Config) *runtime.Scheduler {
	t.Helper()
	if cfg.VarName == "" {
		cfg.VarName = "contrast"
	}
	if cfg.StairType == "" {
		cfg.StairType = domain.StairQuest
	}
	if cfg.Factory == nil {
		cfg.Factory = &testutils.ScriptedFactory{}
	}
	s, err := runtime.NewScheduler(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

// labelSequence drives the scheduler to completion answering every trial
// with 1 and returns the visited staircase labels in order.
func labelSequence(t *testing.T, s *runtime.Scheduler) []string {
	t.Helper()
	var labels []string
	for !s.Finished() {
		proc, ok := s.CurrentStaircase()
		require.True(t, ok)
		labels = append(labels, proc.Name())
		require.NoError(t, s.AddResponse(context.Background(), 1, nil))
		require.Less(t, len(labels), 10_000, "scheduler did not terminate")
	}
	return labels
}

func TestNewScheduler_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		stairType  domain.StairType
		conditions []domain.Condition
		wantErr    error
	}{
		{
			name:      "Empty Conditions",
			stairType: domain.StairQuest,
			wantErr:   domain.ErrNoConditions,
		},
		{
			name:       "Simple Staircases Rejected",
			stairType:  domain.StairSimple,
			conditions: questConditions("a"),
			wantErr:    domain.ErrUnsupportedStairType,
		},
		{
			name:       "Unknown Staircase Type",
			stairType:  domain.StairType("psi"),
			conditions: questConditions("a"),
			wantErr:    domain.ErrUnsupportedStairType,
		},
		{
			name:       "Missing StartVal",
			stairType:  domain.StairQuest,
			conditions: []domain.Condition{{Label: "a", StartValSd: testutils.Fv(0.2)}},
			wantErr:    domain.ErrMissingConditionField,
		},
		{
			name:       "Missing Label",
			stairType:  domain.StairQuest,
			conditions: []domain.Condition{{StartVal: testutils.Fv(0.5), StartValSd: testutils.Fv(0.2)}},
			wantErr:    domain.ErrMissingConditionField,
		},
		{
			name:       "Quest Missing StartValSd",
			stairType:  domain.StairQuest,
			conditions: []domain.Condition{{Label: "a", StartVal: testutils.Fv(0.5)}},
			wantErr:    domain.ErrMissingConditionField,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runtime.NewScheduler(ctx, runtime.Config{
				VarName:    "contrast",
				StairType:  tc.stairType,
				Conditions: tc.conditions,
				Factory:    &testutils.ScriptedFactory{},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)

			var runErr *domain.RunError
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, "Scheduler.New", runErr.Origin)
		})
	}

	t.Run("Factory Required", func(t *testing.T) {
		_, err := runtime.NewScheduler(ctx, runtime.Config{
			VarName:    "contrast",
			StairType:  domain.StairQuest,
			Conditions: questConditions("a"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "factory")
	})
}

func TestNewScheduler_FirstTrialReady(t *testing.T) {
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a", "b"),
		NTrials:    10,
	})

	proc, ok := s.CurrentStaircase()
	require.True(t, ok)
	assert.Equal(t, "a", proc.Name())

	intensity, ok := s.Intensity()
	require.True(t, ok)
	assert.Equal(t, 0.5, intensity)

	// The first trial slot is already populated.
	trial, ok := s.Iterator().Trial(0)
	require.True(t, ok)
	assert.Equal(t, 0.5, trial["contrast"])
	assert.Equal(t, 0.5, trial[domain.KeyIntensity])
}

func TestScheduler_SequentialRoundRobin(t *testing.T) {
	factory := &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
		"a": testutils.NewScriptedProcedure("a", 0.1, 3),
		"b": testutils.NewScriptedProcedure("b", 0.2, 2),
		"c": testutils.NewScriptedProcedure("c", 0.3, 3),
	}}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a", "b", "c"),
		Method:     domain.MethodSequential,
		NTrials:    20,
		Factory:    factory,
	})

	// b drops out after its second pass; a and c keep alternating.
	want := []string{"a", "b", "c", "a", "b", "c", "a", "c"}
	assert.Equal(t, want, labelSequence(t, s))
	assert.True(t, s.Finished())
}

func TestScheduler_TerminatesAfterBudget(t *testing.T) {
	factory := &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
		"a": testutils.NewScriptedProcedure("a", 0.1, 4),
		"b": testutils.NewScriptedProcedure("b", 0.2, 4),
	}}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a", "b"),
		NTrials:    20,
		Factory:    factory,
	})

	labels := labelSequence(t, s)
	assert.Len(t, labels, 8)
	assert.Equal(t, 8, s.Iterator().Filled())

	// The snapshot after the last filled slot carries the terminal flag.
	snap, ok := s.Iterator().Snapshot(8)
	require.True(t, ok)
	assert.True(t, snap.Finished)

	_, ok = s.CurrentStaircase()
	assert.False(t, ok)
	_, ok = s.Intensity()
	assert.False(t, ok)
}

func TestScheduler_RandomMethodIsDeterministic(t *testing.T) {
	run := func(seed int64) []string {
		factory := &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
			"a": testutils.NewScriptedProcedure("a", 0.1, 5),
			"b": testutils.NewScriptedProcedure("b", 0.2, 5),
			"c": testutils.NewScriptedProcedure("c", 0.3, 5),
		}}
		s := newScheduler(t, runtime.Config{
			Conditions: questConditions("a", "b", "c"),
			Method:     domain.MethodRandom,
			NTrials:    30,
			Factory:    factory,
			Rand:       random.New(seed),
		})
		return labelSequence(t, s)
	}

	first := run(99)
	second := run(99)
	assert.Equal(t, first, second, "same seed must replay the same schedule")

	// Each pass still contains every unfinished staircase exactly once.
	for pass := 0; pass < 5; pass++ {
		block := first[pass*3 : pass*3+3]
		assert.ElementsMatch(t, []string{"a", "b", "c"}, block, "pass %d", pass)
	}
}

func TestScheduler_FullRandomSamplesWithReplacement(t *testing.T) {
	factory := &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
		"a": testutils.NewScriptedProcedure("a", 0.1, 10),
		"b": testutils.NewScriptedProcedure("b", 0.2, 10),
	}}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a", "b"),
		Method:     domain.MethodFullRandom,
		NTrials:    40,
		Factory:    factory,
		Rand:       random.New(7),
	})

	labels := labelSequence(t, s)
	assert.Len(t, labels, 20)

	// Unlike RANDOM, consecutive repeats of the same staircase are possible,
	// and both staircases still complete their budget.
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	assert.Equal(t, 10, counts["a"])
	assert.Equal(t, 10, counts["b"])
}

func TestScheduler_AddResponseValidation(t *testing.T) {
	ctx := context.Background()
	sink := &testutils.RecordingSink{}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a"),
		NTrials:    5,
		Sink:       sink,
	})
	before, _ := s.Intensity()

	for _, bad := range []int{-1, 2, 100} {
		err := s.AddResponse(ctx, bad, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidResponse)

		var runErr *domain.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, "Scheduler.AddResponse", runErr.Origin)
	}

	// Nothing moved and nothing was recorded.
	after, _ := s.Intensity()
	assert.Equal(t, before, after)
	assert.Empty(t, sink.Records())
	assert.Equal(t, 1, s.Iterator().Filled())
}

func TestScheduler_ResponseRecordingAndForwarding(t *testing.T) {
	ctx := context.Background()
	sink := &testutils.RecordingSink{}
	proc := testutils.NewScriptedProcedure("a", 0.4, 3)
	s := newScheduler(t, runtime.Config{
		Name:       "stairs",
		Conditions: questConditions("a"),
		NTrials:    5,
		Factory:    &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{"a": proc}},
		Sink:       sink,
	})

	require.NoError(t, s.AddResponse(ctx, 1, nil))
	require.NoError(t, s.AddResponse(ctx, 0, testutils.Fv(0.9)))

	records := sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "stairs.response", records[0].Key)
	assert.Equal(t, 1, records[0].Value)
	assert.Equal(t, 0, records[1].Value)

	// The procedure saw both responses, with notify suppressed, and the
	// caller-supplied value overrode the suggested intensity.
	assert.Equal(t, []int{1, 0}, proc.Responses)
	assert.Equal(t, []bool{false, false}, proc.Notified)
}

func TestScheduler_LateResponsesAreRecordedButInert(t *testing.T) {
	ctx := context.Background()
	sink := &testutils.RecordingSink{}
	s := newScheduler(t, runtime.Config{
		Name:       "stairs",
		Conditions: questConditions("a"),
		NTrials:    5,
		Factory: &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
			"a": testutils.NewScriptedProcedure("a", 0.4, 1),
		}},
		Sink: sink,
	})

	require.NoError(t, s.AddResponse(ctx, 1, nil))
	require.True(t, s.Finished())
	filled := s.Iterator().Filled()

	// A valid response after the run still lands in the sink; the state
	// machine does not advance. An invalid one still fails.
	require.NoError(t, s.AddResponse(ctx, 0, nil))
	assert.Len(t, sink.Records(), 2)
	assert.Equal(t, filled, s.Iterator().Filled())
	assert.True(t, s.Finished())

	assert.ErrorIs(t, s.AddResponse(ctx, 5, nil), domain.ErrInvalidResponse)
}

func TestScheduler_TrialAttributesCopied(t *testing.T) {
	proc := testutils.NewScriptedProcedure("a", 0.4, 2)
	proc.AttrOrder = []string{"name", "nTrials", "trialList", "extraInfo"}
	proc.Attrs = map[string]any{
		"nTrials":   2,
		"trialList": []int{1, 2, 3},
		"extraInfo": "secret",
	}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a"),
		NTrials:    5,
		Factory:    &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{"a": proc}},
	})

	trial, ok := s.Iterator().Trial(0)
	require.True(t, ok)

	// "name" is renamed to "label"; bulky internals are excluded.
	assert.Equal(t, "a", trial[domain.KeyLabel])
	assert.NotContains(t, trial, "name")
	assert.NotContains(t, trial, "trialList")
	assert.NotContains(t, trial, "extraInfo")
	assert.Equal(t, 2, trial["nTrials"])

	// The snapshot mirrors the trial fields.
	snap, ok := s.Iterator().Snapshot(0)
	require.True(t, ok)
	assert.Equal(t, "a", snap.Data[domain.KeyLabel])
	assert.Contains(t, snap.Fields, domain.KeyIntensity)
}

func TestScheduler_GrowsWhenTrialListExhausted(t *testing.T) {
	factory := &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
		"a": testutils.NewScriptedProcedure("a", 0.1, 6),
	}}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a"),
		NTrials:    3,
		Factory:    factory,
	})

	labels := labelSequence(t, s)
	assert.Len(t, labels, 6)
	assert.Equal(t, 6, s.Iterator().Filled())
	assert.GreaterOrEqual(t, s.Iterator().Len(), 6)
}

func TestScheduler_LifecycleHooks(t *testing.T) {
	var selected, responded, finished int
	hooks := domain.LifecycleHooks{
		OnTrialSelected: func(_ context.Context, ev *domain.TrialEvent) {
			selected++
			assert.Equal(t, domain.EventTrialSelected, ev.Type)
		},
		OnResponse: func(_ context.Context, ev *domain.ResponseEvent) {
			responded++
		},
		OnRunFinished: func(_ context.Context, ev *domain.RunEvent) {
			finished++
			assert.Equal(t, 2, ev.TrialsRecorded)
		},
	}
	s := newScheduler(t, runtime.Config{
		Conditions: questConditions("a"),
		NTrials:    5,
		Factory: &testutils.ScriptedFactory{Procedures: map[string]ports.AdaptiveProcedure{
			"a": testutils.NewScriptedProcedure("a", 0.4, 2),
		}},
		Hooks: hooks,
	})

	labelSequence(t, s)
	assert.Equal(t, 2, selected)
	assert.Equal(t, 2, responded)
	assert.Equal(t, 1, finished)
}
