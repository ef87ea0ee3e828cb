package staircase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/perceptlab/staircase/pkg/domain"
)

// Responder produces a response (0 or 1) for a presented intensity. It lets
// the Runner drive a session without a human, e.g. with a simulated observer.
type Responder interface {
	Respond(intensity float64) int
}

// Runner executes a session loop using the provided IO.
// This allows for easy testing and integration with different frontends:
// an interactive CLI reads responses from Input, while an automated run
// delegates them to a Responder.
type Runner struct {
	Input     io.Reader
	Output    io.Writer
	Headless  bool
	Responder Responder
}

// NewRunner creates a Runner. Callers must set Input/Output explicitly
// (typically os.Stdin/os.Stdout) unless a Responder is provided.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the session until every staircase has finished.
func (r *Runner) Run(ctx context.Context, sess *Session) error {
	writer := r.Output
	if writer == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	var lineReader *bufio.Reader
	if r.Responder == nil {
		if r.Input == nil {
			return fmt.Errorf("input reader must be set (use os.Stdin) or provide a Responder")
		}
		lineReader = bufio.NewReader(r.Input)
	}

	trial := 0
	for !sess.Finished() {
		intensity, ok := sess.Intensity()
		if !ok {
			break
		}
		label := ""
		if proc, active := sess.CurrentStaircase(); active {
			label = proc.Name()
		}

		if !r.Headless {
			fmt.Fprintf(writer, "trial %d  [%s]  intensity=%.4f\n", trial, label, intensity)
		}

		response, err := r.nextResponse(lineReader, writer, intensity)
		if err != nil {
			return err
		}

		if err := sess.AddResponse(ctx, response); err != nil {
			if errors.Is(err, domain.ErrInvalidResponse) {
				fmt.Fprintln(writer, "response must be 0 or 1")
				continue
			}
			return err
		}
		trial++
	}

	if !r.Headless {
		fmt.Fprintf(writer, "run finished after %d trials\n", trial)
	}
	return nil
}

func (r *Runner) nextResponse(lineReader *bufio.Reader, writer io.Writer, intensity float64) (int, error) {
	if r.Responder != nil {
		return r.Responder.Respond(intensity), nil
	}

	for {
		if !r.Headless {
			fmt.Fprint(writer, "response (0/1)> ")
		}
		line, err := lineReader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("failed to read response: %w", err)
		}
		text := strings.TrimSpace(line)
		response, convErr := strconv.Atoi(text)
		if convErr != nil || (response != 0 && response != 1) {
			fmt.Fprintln(writer, "response must be 0 or 1")
			continue
		}
		return response, nil
	}
}
