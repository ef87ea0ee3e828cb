/*
Package staircase is an adaptive trial-sequencing engine for psychophysics
experiments. It interleaves several independent adaptive procedures (e.g.
QUEST-style Bayesian threshold estimators) into one linear trial stream,
selecting which staircase runs next according to a policy and recording
per-trial state for later inspection and data export.

The engine is an embedded library component: rendering, resource management
and persistence are external collaborators. It consumes conditions (one per
procedure), asks a pluggable AdaptiveProcedure for each stimulus intensity,
and hands experiment data to a pluggable DataSink.

# Concept

A Session owns a set of adaptive procedures, one per experimental condition,
and a fixed-length trial list with per-trial snapshots. Trials are dispensed
in "passes": one trial per not-yet-finished procedure, ordered by the
selection method (sequential, shuffled, or fully random per trial). Each
accepted response is forwarded to the active procedure, which updates its
estimate, and the session immediately advances to the next trial.

All randomness is drawn from one seeded generator owned by the session, so a
run replays identically given the same seed and the same response sequence.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/perceptlab/staircase"
		"github.com/perceptlab/staircase/pkg/domain"
	)

	func main() {
		ctx := context.Background()

		sv := func(v float64) *float64 { return &v }
		sess, err := staircase.New(ctx, "contrast", domain.StairQuest,
			staircase.WithConditions([]domain.Condition{
				{Label: "low", StartVal: sv(0.3), StartValSd: sv(0.1)},
				{Label: "high", StartVal: sv(0.7), StartValSd: sv(0.1)},
			}),
			staircase.WithMethod(domain.MethodSequential),
			staircase.WithTrialCap(20),
			staircase.WithSeed(42),
		)
		if err != nil {
			log.Fatal(err)
		}

		// Main loop: present -> respond -> advance.
		for !sess.Finished() {
			intensity, ok := sess.Intensity()
			if !ok {
				break
			}
			response := presentStimulus(intensity) // host's job
			if err := sess.AddResponse(ctx, response); err != nil {
				log.Fatal(err)
			}
		}
	}

The active procedure's estimates, labels and user attributes are written into
the session's trial list and snapshots as the run progresses; Export hands
them to any DataSink in the shape "<name>.<field>".
*/
package staircase
