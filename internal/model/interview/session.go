package interview

import (
	"encoding/json"
	"time"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	// StateIdle is the initial state before any audio has arrived.
	StateIdle State = iota
	// StateListening means the session is accepting audio and running the pipeline.
	StateListening
	// StateClosed is terminal. No transition leaves it.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Session captures a transient per-connection coaching session.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}
