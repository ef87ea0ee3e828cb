package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/perceptlab/staircase"
	"github.com/perceptlab/staircase/internal/presentation/tui"
	"github.com/perceptlab/staircase/pkg/adapters/file"
	"github.com/perceptlab/staircase/pkg/adapters/sim"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/random"
)

// SimulateOptions configures a simulated run.
type SimulateOptions struct {
	ConditionsPath string
	VarName        string
	Name           string
	Method         string
	NTrials        int
	Seed           int64
	SeedSet        bool
	Threshold      float64
	Slope          float64
	JSON           bool
	Debug          bool
}

// TrialRow is one simulated trial in presentation order.
type TrialRow struct {
	Index     int     `json:"index"`
	Label     string  `json:"label"`
	Intensity float64 `json:"intensity"`
	Response  int     `json:"response"`
}

// RunSimulate drives a full session against a simulated observer and
// prints a report of the resulting trial sequence.
func RunSimulate(opts SimulateOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.JSON {
		tui.PrintBanner(staircase.Version)
	}

	conditions, err := file.LoadFile(opts.ConditionsPath)
	if err != nil {
		return fmt.Errorf("loading conditions: %w", err)
	}

	method := domain.MethodSequential
	if opts.Method != "" {
		method, err = domain.ParseMethod(opts.Method)
		if err != nil {
			return err
		}
	}

	sessOpts := []staircase.Option{
		staircase.WithConditions(conditions),
		staircase.WithMethod(method),
		staircase.WithLogger(logger),
	}
	if opts.Name != "" {
		sessOpts = append(sessOpts, staircase.WithName(opts.Name))
	}
	if opts.NTrials > 0 {
		sessOpts = append(sessOpts, staircase.WithTrialCap(opts.NTrials))
	}
	if opts.SeedSet {
		sessOpts = append(sessOpts, staircase.WithSeed(opts.Seed))
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	sess, err := staircase.New(sigCtx, opts.VarName, domain.StairQuest, sessOpts...)
	if err != nil {
		return err
	}

	// The observer gets its own generator so its draws never perturb the
	// scheduler's pass ordering.
	observerRNG := random.NewFromEntropy()
	if opts.SeedSet {
		observerRNG = random.New(opts.Seed + 1)
	}
	responder := sim.NewResponder(opts.Threshold, opts.Slope, observerRNG)

	rows, err := runToCompletion(sigCtx, sess, responder)
	if err != nil {
		return err
	}
	if sigCtx.Err() != nil {
		printSystemMessage("interrupted by %v after %d trials", sigCtx.Signal(), len(rows))
		return sigCtx.Err()
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}

	render := tui.NewRenderer()
	out, err := render(buildReport(sess, rows, opts.Threshold))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// runToCompletion loops the trial cycle until every staircase finishes or
// the context is cancelled.
func runToCompletion(ctx context.Context, sess *staircase.Session, responder staircase.Responder) ([]TrialRow, error) {
	var rows []TrialRow
	for !sess.Finished() {
		if ctx.Err() != nil {
			return rows, nil
		}

		intensity, ok := sess.Intensity()
		if !ok {
			break
		}
		proc, _ := sess.CurrentStaircase()

		response := responder.Respond(intensity)
		rows = append(rows, TrialRow{
			Index:     len(rows),
			Label:     proc.Name(),
			Intensity: intensity,
			Response:  response,
		})

		if err := sess.AddResponse(ctx, response); err != nil {
			return rows, err
		}
	}
	return rows, nil
}
