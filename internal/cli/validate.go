package cli

import (
	"fmt"

	"github.com/perceptlab/staircase/internal/runtime"
	"github.com/perceptlab/staircase/pkg/adapters/file"
	"github.com/perceptlab/staircase/pkg/domain"
)

// RunValidate loads a conditions file and checks it against the scheduler's
// construction rules, so configuration mistakes surface before a run.
func RunValidate(path, stairTypeStr string) error {
	stairType := domain.StairQuest
	if stairTypeStr != "" {
		var err error
		stairType, err = domain.ParseStairType(stairTypeStr)
		if err != nil {
			return err
		}
	}

	conditions, err := file.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading conditions: %w", err)
	}

	if err := runtime.ValidateConditions(stairType, conditions); err != nil {
		return err
	}

	fmt.Printf("%s: %d condition(s) valid for %q staircases\n", path, len(conditions), stairType)
	return nil
}
