package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/perceptlab/staircase/pkg/domain"
)

// Collector holds the engine's Prometheus instruments.
type Collector struct {
	trialsSelected *prometheus.CounterVec
	responses      *prometheus.CounterVec
	intensity      *prometheus.GaugeVec
	runsFinished   prometheus.Counter
}

// NewCollector creates the instruments and registers them with reg.
// Pass prometheus.DefaultRegisterer to use the process-global registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		trialsSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staircase_trials_selected_total",
				Help: "Trials dispensed, by scheduler and staircase label.",
			},
			[]string{"scheduler", "label"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staircase_responses_total",
				Help: "Responses accepted, by scheduler, label and response value.",
			},
			[]string{"scheduler", "label", "response"},
		),
		intensity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "staircase_current_intensity",
				Help: "Last presented stimulus intensity per staircase.",
			},
			[]string{"scheduler", "label"},
		),
		runsFinished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "staircase_runs_finished_total",
				Help: "Completed multi-staircase runs.",
			},
		),
	}
	reg.MustRegister(c.trialsSelected, c.responses, c.intensity, c.runsFinished)
	return c
}

// Hooks returns lifecycle hooks feeding the collector. The hooks run
// synchronously on the engine's goroutine and must stay cheap.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialSelected: func(_ context.Context, ev *domain.TrialEvent) {
			c.trialsSelected.WithLabelValues(ev.Scheduler, ev.Label).Inc()
			c.intensity.WithLabelValues(ev.Scheduler, ev.Label).Set(ev.Intensity)
		},
		OnResponse: func(_ context.Context, ev *domain.ResponseEvent) {
			c.responses.WithLabelValues(ev.Scheduler, ev.Label, strconv.Itoa(ev.Response)).Inc()
		},
		OnRunFinished: func(_ context.Context, ev *domain.RunEvent) {
			c.runsFinished.Inc()
		},
	}
}
