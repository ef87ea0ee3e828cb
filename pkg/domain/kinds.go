package domain

import "fmt"

// StairType identifies the kind of adaptive procedure driving each condition.
type StairType string

const (
	// StairSimple is the classic up/down staircase. It is recognized but not
	// supported by the multi-staircase scheduler; construction rejects it.
	StairSimple StairType = "simple"
	// StairQuest is a QUEST-style Bayesian threshold procedure.
	StairQuest StairType = "quest"
)

// ParseStairType converts a string (e.g. from a CLI flag or API payload).
func ParseStairType(s string) (StairType, error) {
	switch StairType(s) {
	case StairSimple, StairQuest:
		return StairType(s), nil
	default:
		return "", fmt.Errorf("unknown staircase type: %q", s)
	}
}

// Method is the policy used to select which procedure runs the next trial.
type Method string

const (
	// MethodSequential keeps the procedures' discovery order on every pass.
	MethodSequential Method = "sequential"
	// MethodRandom shuffles each freshly rebuilt pass once.
	MethodRandom Method = "random"
	// MethodFullRandom draws a single procedure per pass refill, producing
	// sampling with replacement across refills.
	MethodFullRandom Method = "fullRandom"
)

// ParseMethod converts a string selection policy name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodSequential, MethodRandom, MethodFullRandom:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown selection method: %q", s)
	}
}
