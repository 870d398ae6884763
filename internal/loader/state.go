package loader

import "fmt"

// State is the lifecycle state of a Resource.
type State int32

const (
	// Pending means Load has not been called yet.
	Pending State = iota
	// Loading means the fetch and the deadline timer are racing.
	Loading
	// Loaded means the fetch completed before the deadline.
	Loaded
	// TimedOut means the deadline elapsed before the fetch completed.
	TimedOut
)

var stateNames = map[State]string{
	Pending:  "pending",
	Loading:  "loading",
	Loaded:   "loaded",
	TimedOut: "timed_out",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Loaded || s == TimedOut
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
