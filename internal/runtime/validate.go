package runtime

import (
	"fmt"

	"github.com/perceptlab/staircase/pkg/domain"
)

const opNew = "Scheduler.New"

// ValidateConditions checks the construction inputs. All failures here are
// fatal: no scheduler object is usable afterward.
func ValidateConditions(stairType domain.StairType, conditions []domain.Condition) error {
	if len(conditions) == 0 {
		return domain.NewRunError(opNew, "when validating the conditions", domain.ErrNoConditions)
	}

	switch stairType {
	case domain.StairQuest:
		// supported
	case domain.StairSimple:
		return domain.NewRunError(opNew, "when validating the staircase type",
			fmt.Errorf("%w: simple staircases cannot be interleaved", domain.ErrUnsupportedStairType))
	default:
		return domain.NewRunError(opNew, "when validating the staircase type",
			fmt.Errorf("%w: %q", domain.ErrUnsupportedStairType, stairType))
	}

	for i, cond := range conditions {
		if cond.StartVal == nil {
			return domain.NewRunError(opNew, "when validating the conditions",
				fmt.Errorf("%w: condition %d has no startVal", domain.ErrMissingConditionField, i))
		}
		if cond.Label == "" {
			return domain.NewRunError(opNew, "when validating the conditions",
				fmt.Errorf("%w: condition %d has no label", domain.ErrMissingConditionField, i))
		}
		if stairType == domain.StairQuest && cond.StartValSd == nil {
			return domain.NewRunError(opNew, "when validating the conditions",
				fmt.Errorf("%w: condition %q has no startValSd", domain.ErrMissingConditionField, cond.Label))
		}
	}
	return nil
}
