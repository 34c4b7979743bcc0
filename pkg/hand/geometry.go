package hand

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// FingerGeometry holds the skeletal parameters of one finger: the base-joint
// position relative to the sensor, three segment lengths, the nominal finger
// axis, and the flexion-angle range. All distances are millimeters.
// Immutable after the optional construction-time randomization.
type FingerGeometry struct {
	BaseMm       r3.Vec
	SegmentsMm   [3]float64
	Axis         r3.Vec
	FlexRangeDeg [2]float64
}

// TotalLengthMm is the summed segment length.
func (f FingerGeometry) TotalLengthMm() float64 {
	return f.SegmentsMm[0] + f.SegmentsMm[1] + f.SegmentsMm[2]
}

// Geometry owns the per-finger skeletal parameters and the seeded random
// source used for position jitter and geometry randomization.
type Geometry struct {
	Fingers map[string]FingerGeometry

	rng *rand.Rand
}

// NewGeometry builds the nominal hand skeleton. The sensor sits at the
// origin on the wrist, +X points toward the fingers, +Z out the back of the
// hand. Base positions and segment lengths approximate an adult hand.
func NewGeometry(seed uint64) *Geometry {
	return &Geometry{
		Fingers: map[string]FingerGeometry{
			"thumb": {
				BaseMm:       r3.Vec{X: 35, Y: -30, Z: 0},
				SegmentsMm:   [3]float64{40, 32, 28},
				Axis:         r3.Vec{X: 0.6, Y: -0.78, Z: 0.15},
				FlexRangeDeg: [2]float64{0, 60},
			},
			"index": {
				BaseMm:       r3.Vec{X: 78, Y: -22, Z: 0},
				SegmentsMm:   [3]float64{45, 25, 18},
				Axis:         r3.Vec{X: 1, Y: -0.05, Z: 0},
				FlexRangeDeg: [2]float64{0, 100},
			},
			"middle": {
				BaseMm:       r3.Vec{X: 82, Y: 0, Z: 0},
				SegmentsMm:   [3]float64{50, 29, 19},
				Axis:         r3.Vec{X: 1, Y: 0, Z: 0},
				FlexRangeDeg: [2]float64{0, 100},
			},
			"ring": {
				BaseMm:       r3.Vec{X: 78, Y: 20, Z: 0},
				SegmentsMm:   [3]float64{46, 27, 18},
				Axis:         r3.Vec{X: 1, Y: 0.05, Z: 0},
				FlexRangeDeg: [2]float64{0, 100},
			},
			"pinky": {
				BaseMm:       r3.Vec{X: 70, Y: 38, Z: 0},
				SegmentsMm:   [3]float64{36, 21, 16},
				Axis:         r3.Vec{X: 1, Y: 0.12, Z: 0},
				FlexRangeDeg: [2]float64{0, 95},
			},
		},
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Randomize perturbs the skeleton once, at construction time: each segment
// length by a uniform multiplicative factor in [1-scale, 1+scale] and each
// base position by an additive offset of a few millimeters. This is the
// domain-randomization mechanism across synthetic sessions.
func (g *Geometry) Randomize(scale float64) {
	for name, fg := range g.Fingers {
		for i := range fg.SegmentsMm {
			factor := 1 + (g.rng.Float64()*2-1)*scale
			fg.SegmentsMm[i] *= factor
		}
		fg.BaseMm = r3.Add(fg.BaseMm, r3.Vec{
			X: (g.rng.Float64()*2 - 1) * 3,
			Y: (g.rng.Float64()*2 - 1) * 3,
			Z: (g.rng.Float64()*2 - 1) * 3,
		})
		g.Fingers[name] = fg
	}
}

// TipPosition returns the 3-D fingertip position in millimeters for a given
// flexion state. Extended places the tip along the nominal finger axis at
// full segment length; flexed curls it toward the palm; partial is the
// arithmetic midpoint of the two; unknown is treated as extended. Isotropic
// Gaussian jitter of noiseMm standard deviation is added last.
func (g *Geometry) TipPosition(finger string, state FlexionState, noiseMm float64) r3.Vec {
	fg, ok := g.Fingers[finger]
	if !ok {
		return r3.Vec{}
	}

	tip := tipForState(fg, state)
	if noiseMm > 0 {
		jitter := distuv.Normal{Mu: 0, Sigma: noiseMm, Src: g.rng}
		tip = r3.Add(tip, r3.Vec{X: jitter.Rand(), Y: jitter.Rand(), Z: jitter.Rand()})
	}
	return tip
}

func tipForState(fg FingerGeometry, state FlexionState) r3.Vec {
	total := fg.TotalLengthMm()
	axis := r3.Unit(fg.Axis)
	extended := r3.Add(fg.BaseMm, r3.Scale(total, axis))

	// Fixed curl toward the palm (-Z): the tip pulls back along the axis
	// and drops below the knuckle plane.
	flexed := r3.Add(fg.BaseMm, r3.Add(r3.Scale(0.35*total, axis), r3.Vec{Z: -0.5 * total}))

	switch state {
	case Extended, Unknown:
		return extended
	case Flexed:
		return flexed
	case Partial:
		return r3.Scale(0.5, r3.Add(extended, flexed))
	}
	return extended
}
