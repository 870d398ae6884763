package loader

import "time"

// Event describes a Resource lifecycle transition.
type Event struct {
	Key     string        `json:"key"`
	Address string        `json:"address"`
	Name    string        `json:"name"`
	State   State         `json:"state"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns"`
	At      time.Time     `json:"at"`
}

// Observer receives every Resource transition of a Registry. Observe is called
// outside all engine locks, from whichever goroutine performed the transition.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
