// Package hand models the skeletal geometry of an instrumented hand and
// turns per-finger flexion states into fingertip positions relative to the
// wrist-mounted sensor.
package hand

// FlexionState is the discrete flexion label of a single finger. It is both
// the input that drives fingertip placement and the ground-truth label unit
// attached to every generated sample.
type FlexionState int

const (
	Extended FlexionState = iota
	Partial
	Flexed
	Unknown
)

// Fingers lists the tracked finger names in display order.
var Fingers = []string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the wire representation of the state.
func (s FlexionState) String() string {
	switch s {
	case Extended:
		return "extended"
	case Partial:
		return "partial"
	case Flexed:
		return "flexed"
	case Unknown:
		return "unknown"
	}
	return "unknown"
}

// ParseFlexionState maps a wire string back to a FlexionState. Anything
// unrecognized parses as Unknown.
func ParseFlexionState(s string) FlexionState {
	switch s {
	case "extended":
		return Extended
	case "partial":
		return Partial
	case "flexed":
		return Flexed
	}
	return Unknown
}

// StateMap is a per-finger flexion assignment.
type StateMap map[string]FlexionState

// Strings converts a StateMap to its wire form.
func (m StateMap) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for finger, state := range m {
		out[finger] = state.String()
	}
	return out
}

// Clone returns an independent copy of the map.
func (m StateMap) Clone() StateMap {
	out := make(StateMap, len(m))
	for finger, state := range m {
		out[finger] = state
	}
	return out
}
