package domain

// KeyIntensity is the reserved trial field holding the presented stimulus
// intensity, written alongside the caller's variable name.
const KeyIntensity = "intensity"

// KeyLabel is the trial field holding the selected procedure's label.
// A procedure's "name" attribute is renamed to this key when copied.
const KeyLabel = "label"

// Trial is one row of an experimental design: a mapping from variable name
// to value. A nil Trial marks a slot whose content has not been decided yet;
// later-indexed slots stay unset until a staircase fills them in.
type Trial map[string]any

// Clone returns a shallow copy so callers cannot mutate stored trials
// through a shared map reference. Cloning a nil (unset) trial yields nil.
func (t Trial) Clone() Trial {
	if t == nil {
		return nil
	}
	out := make(Trial, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Snapshot is a cross-section of iterator state as of one specific trial.
// Sinks read snapshots at "flip" time, potentially after the trial cursor has
// already advanced, so a snapshot must retain its trial's true state
// independent of the iterator's current position.
//
// Once the following trial slot has also produced a value, a snapshot's Data
// must no longer change; the only late mutation allowed is the Finished
// walk-back at the true end of the run.
type Snapshot struct {
	// Index is the position of this snapshot's trial in the sequence.
	Index int

	// Remaining is the number of trial slots after this one.
	Remaining int

	// Finished marks the boundary snapshot at the true end of the run.
	Finished bool

	// Data holds the per-trial staircase outputs (label, intensity and any
	// user attributes copied from the selected procedure).
	Data Trial

	// Fields records which Data keys were written by the scheduler, in write
	// order, for later selective export.
	Fields []string
}

// Set writes one field into the snapshot, recording its name exactly once.
func (s *Snapshot) Set(name string, value any) {
	if s.Data == nil {
		s.Data = make(Trial)
	}
	if _, exists := s.Data[name]; !exists {
		s.Fields = append(s.Fields, name)
	}
	s.Data[name] = value
}
