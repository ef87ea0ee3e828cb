package ports

import "github.com/perceptlab/staircase/pkg/domain"

// AdaptiveProcedure is a single adaptive staircase. The estimation math is a
// collaborator concern; the scheduler only needs the surface below.
//
// The attribute bag is an explicit ordered mapping, not reflection: the
// scheduler copies every attribute into trial records, excluding the internal
// bookkeeping names listed in ExcludedAttributes and renaming "name" to
// "label".
type AdaptiveProcedure interface {
	// Name returns the procedure's label (from its condition).
	Name() string

	// Value returns the current estimate, standing in for the next stimulus
	// intensity to present.
	Value() float64

	// AddResponse updates the procedure with one response (0 or 1) at the
	// given stimulus value. The scheduler validates and records the response
	// before forwarding, so it passes notify=false to suppress duplicate
	// validation and recording inside the procedure.
	AddResponse(response int, value float64, notify bool)

	// Finished reports whether the procedure needs no further trials.
	Finished() bool

	// AttributeNames returns the procedure's user-visible attribute names in
	// a stable order.
	AttributeNames() []string

	// Attribute returns the named attribute's value.
	Attribute(name string) (any, bool)
}

// ExcludedAttributes are procedure attribute names never copied into trial
// records; they are internal bookkeeping on the procedure side.
var ExcludedAttributes = map[string]bool{
	"trialList": true,
	"extraInfo": true,
}

// AttributeKey applies the scheduler's uniform rename rule to a procedure
// attribute name. Returns the trial-record key and whether the attribute
// should be copied at all.
func AttributeKey(name string) (string, bool) {
	if ExcludedAttributes[name] {
		return "", false
	}
	if name == "name" {
		return domain.KeyLabel, true
	}
	return name, true
}

// ProcedureFactory constructs one AdaptiveProcedure per validated condition.
type ProcedureFactory interface {
	New(spec domain.ProcedureSpec) (AdaptiveProcedure, error)
}

// ProcedureFactoryFunc adapts a function to the ProcedureFactory interface.
type ProcedureFactoryFunc func(spec domain.ProcedureSpec) (AdaptiveProcedure, error)

// New implements ProcedureFactory.
func (f ProcedureFactoryFunc) New(spec domain.ProcedureSpec) (AdaptiveProcedure, error) {
	return f(spec)
}
