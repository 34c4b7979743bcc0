package hand

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a value object: per-finger flexion states, the fingertip positions
// they resolve to (mm, sensor-relative), and a timestamp in milliseconds.
// Never mutated after creation.
type Pose struct {
	States      StateMap
	Tips        map[string]r3.Vec
	TimestampMs float64
}

// namedPoses is the table of recognized pose names.
var namedPoses = map[string]StateMap{
	"open": {
		"thumb": Extended, "index": Extended, "middle": Extended, "ring": Extended, "pinky": Extended,
	},
	"fist": {
		"thumb": Flexed, "index": Flexed, "middle": Flexed, "ring": Flexed, "pinky": Flexed,
	},
	"point": {
		"thumb": Flexed, "index": Extended, "middle": Flexed, "ring": Flexed, "pinky": Flexed,
	},
	"pinch": {
		"thumb": Partial, "index": Partial, "middle": Extended, "ring": Extended, "pinky": Extended,
	},
	"peace": {
		"thumb": Flexed, "index": Extended, "middle": Extended, "ring": Flexed, "pinky": Flexed,
	},
	"thumbs_up": {
		"thumb": Extended, "index": Flexed, "middle": Flexed, "ring": Flexed, "pinky": Flexed,
	},
}

// PoseNames returns the recognized pose names.
func PoseNames() []string {
	names := make([]string, 0, len(namedPoses))
	for name := range namedPoses {
		names = append(names, name)
	}
	return names
}

// StatesFor resolves a pose name to per-finger flexion states. An
// unrecognized name falls back to a random per-finger assignment; this is a
// documented fallback, not an error.
func (g *Geometry) StatesFor(poseName string) StateMap {
	if states, ok := namedPoses[poseName]; ok {
		return states.Clone()
	}
	return g.RandomStates()
}

// RandomStates draws an independent random flexion state for every finger.
func (g *Geometry) RandomStates() StateMap {
	states := make(StateMap, len(Fingers))
	for _, finger := range Fingers {
		states[finger] = FlexionState(g.rng.IntN(3)) // extended, partial or flexed
	}
	return states
}

// Pose resolves a full hand pose from per-finger states, with optional
// fingertip position jitter.
func (g *Geometry) Pose(states StateMap, noiseMm, timestampMs float64) Pose {
	tips := make(map[string]r3.Vec, len(states))
	for finger, state := range states {
		tips[finger] = g.TipPosition(finger, state, noiseMm)
	}
	return Pose{States: states.Clone(), Tips: tips, TimestampMs: timestampMs}
}

// Transition produces nFrames interpolated poses between two state maps.
// Fingertip positions interpolate linearly in Cartesian space between the
// start and end tips (not joint angles). The interpolation parameter t also
// drives the reported states: a finger keeps its start state while t < 1/3,
// is undefined for 1/3 <= t <= 2/3 (empty state map), and reports its end
// state for t > 2/3.
func (g *Geometry) Transition(startStates, endStates StateMap, nFrames int, noiseMm float64) []Pose {
	if nFrames <= 0 {
		return nil
	}

	startTips := make(map[string]r3.Vec, len(startStates))
	endTips := make(map[string]r3.Vec, len(endStates))
	for finger, state := range startStates {
		startTips[finger] = g.TipPosition(finger, state, 0)
	}
	for finger, state := range endStates {
		endTips[finger] = g.TipPosition(finger, state, 0)
	}

	poses := make([]Pose, 0, nFrames)
	for i := 0; i < nFrames; i++ {
		t := 1.0
		if nFrames > 1 {
			t = float64(i) / float64(nFrames-1)
		}

		tips := make(map[string]r3.Vec, len(startTips))
		for finger, from := range startTips {
			to, ok := endTips[finger]
			if !ok {
				to = from
			}
			tip := r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
			if noiseMm > 0 {
				tip = r3.Add(tip, g.jitter(noiseMm))
			}
			tips[finger] = tip
		}

		poses = append(poses, Pose{
			States: transitionStates(startStates, endStates, t),
			Tips:   tips,
		})
	}
	return poses
}

// jitter draws one isotropic Gaussian offset in millimeters.
func (g *Geometry) jitter(noiseMm float64) r3.Vec {
	return r3.Vec{
		X: g.rng.NormFloat64() * noiseMm,
		Y: g.rng.NormFloat64() * noiseMm,
		Z: g.rng.NormFloat64() * noiseMm,
	}
}

// transitionStates applies the thirds rule for transition labeling.
func transitionStates(start, end StateMap, t float64) StateMap {
	switch {
	case t < 1.0/3.0:
		return start.Clone()
	case t > 2.0/3.0:
		return end.Clone()
	}
	// Middle third: the hand is in an undefined intermediate configuration.
	return StateMap{}
}
