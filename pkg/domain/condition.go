package domain

// Condition configures a single adaptive procedure. Conditions are loaded
// once at construction and immutable thereafter.
//
// StartVal and Label are required for every condition; StartValSd is
// additionally required for Bayesian (QUEST) procedures. Required numeric
// fields use pointers so "absent" is distinguishable from a legitimate zero.
type Condition struct {
	// Label names the procedure built from this condition.
	Label string `mapstructure:"label" json:"label" yaml:"label"`

	// StartVal is the procedure's initial estimate.
	StartVal *float64 `mapstructure:"startVal" json:"startVal" yaml:"startVal"`

	// StartValSd is the standard deviation of the prior around StartVal.
	// Required when the staircase kind is QUEST.
	StartValSd *float64 `mapstructure:"startValSd" json:"startValSd,omitempty" yaml:"startValSd,omitempty"`

	// NTrials, when positive, overrides the scheduler-wide trial cap for
	// this condition's procedure.
	NTrials int `mapstructure:"nTrials" json:"nTrials,omitempty" yaml:"nTrials,omitempty"`

	// Extra carries any additional per-condition fields verbatim.
	Extra map[string]any `mapstructure:",remain" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ProcedureSpec is the resolved construction input for one adaptive
// procedure, derived from a validated Condition plus scheduler defaults.
type ProcedureSpec struct {
	VarName    string
	Label      string
	StartVal   float64
	StartValSd float64
	NTrials    int
	Extra      map[string]any
}
