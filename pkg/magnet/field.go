package magnet

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// dipoleK scales the dipole kernel (3(m·r̂)r̂ − m)/|r|³, with moments in
	// A·m² equivalents and distances in meters, directly to µT at the
	// sensor. Matches the field scale of the real fingertip captures.
	dipoleK = mu0 * 1e6

	// minSourceDistM guards the 1/r³ singularity when the observation point
	// coincides with a magnet source.
	minSourceDistM = 1e-6

	// mmToM converts the millimeter hand-geometry frame to meters for the
	// field equation.
	mmToM = 1e-3
)

// Source is a point dipole: a position in meters and a moment in A·m²
// equivalents.
type Source struct {
	Position r3.Vec
	Moment   r3.Vec
}

// FieldAt evaluates the magnetic-dipole field at obs produced by a dipole
// with the given moment at src. Positions are in meters; the result is in
// µT. Returns the zero vector when obs and src coincide.
func FieldAt(obs, src, moment r3.Vec) r3.Vec {
	r := r3.Sub(obs, src)
	dist := r3.Norm(r)
	if dist < minSourceDistM {
		return r3.Vec{}
	}

	rhat := r3.Scale(1/dist, r)
	kernel := r3.Sub(r3.Scale(3*r3.Dot(moment, rhat), rhat), moment)
	return r3.Scale(dipoleK/(dist*dist*dist), kernel)
}

// FieldAtPoints evaluates every source at every observation point and sums
// over sources, returning one µT field vector per point. Semantics are
// identical to FieldAt applied pairwise.
func FieldAtPoints(points []r3.Vec, sources []Source) []r3.Vec {
	fields := make([]r3.Vec, len(points))
	for i, p := range points {
		var total r3.Vec
		for _, s := range sources {
			total = r3.Add(total, FieldAt(p, s.Position, s.Moment))
		}
		fields[i] = total
	}
	return fields
}

// TotalField sums the dipole fields of every configured fingertip magnet at
// the sensor position, plus optionally the Earth field. Sensor and fingertip
// positions are in millimeters (the hand-geometry frame); earthUT must
// already be rotated into the sensor frame by the caller. Result is in µT.
func TotalField(sensorPosMm r3.Vec, tipsMm map[string]r3.Vec, setup HandSetup, earthUT r3.Vec, includeEarth bool) r3.Vec {
	obs := r3.Scale(mmToM, sensorPosMm)
	axis := setup.Axis()

	var total r3.Vec
	for finger, spec := range setup.Magnets {
		tip, ok := tipsMm[finger]
		if !ok {
			continue
		}
		src := r3.Scale(mmToM, tip)
		total = r3.Add(total, FieldAt(obs, src, spec.Moment(axis)))
	}

	if includeEarth {
		total = r3.Add(total, earthUT)
	}
	return total
}

// Backend computes the field of a set of magnet sources at a set of
// observation points. The dipole approximation and the sliced-cylinder
// solver are interchangeable behind this interface.
type Backend interface {
	ComputeField(points []r3.Vec, sources []Source) []r3.Vec
}

// DipoleBackend is the closed-form point-dipole backend.
type DipoleBackend struct{}

// ComputeField implements Backend using the exact dipole equation.
func (DipoleBackend) ComputeField(points []r3.Vec, sources []Source) []r3.Vec {
	return FieldAtPoints(points, sources)
}

// CylinderBackend approximates a finite cylinder magnet by stacking point
// dipole slices along its axis and superposing them. Near-field accuracy
// improves with slice count; in the far field it converges to the dipole
// backend.
type CylinderBackend struct {
	HeightMm float64
	Slices   int
}

// ComputeField implements Backend. Each source moment is split evenly over
// Slices sub-dipoles distributed along the moment axis.
func (c CylinderBackend) ComputeField(points []r3.Vec, sources []Source) []r3.Vec {
	slices := c.Slices
	if slices < 1 {
		slices = 64
	}

	fields := make([]r3.Vec, len(points))
	for _, s := range sources {
		n := r3.Norm(s.Moment)
		if n == 0 {
			continue
		}
		axis := r3.Scale(1/n, s.Moment)
		heightM := c.HeightMm * mmToM
		sliceMoment := r3.Scale(1/float64(slices), s.Moment)

		for k := 0; k < slices; k++ {
			// Slice centers span (-h/2, h/2) along the axis.
			offset := heightM * ((float64(k)+0.5)/float64(slices) - 0.5)
			pos := r3.Add(s.Position, r3.Scale(offset, axis))
			for i, p := range points {
				fields[i] = r3.Add(fields[i], FieldAt(p, pos, sliceMoment))
			}
		}
	}
	return fields
}

// BackendFor selects a field backend by name. Unrecognized names fall back
// to the dipole approximation.
func BackendFor(name string, setup HandSetup) Backend {
	if name == "cylinder" {
		height := DefaultSpec().HeightMm
		for _, spec := range setup.Magnets {
			height = spec.HeightMm
			break
		}
		return CylinderBackend{HeightMm: height}
	}
	return DipoleBackend{}
}

// EarthFieldUT is a representative ambient geomagnetic field in µT for a
// mid-northern latitude, in the world frame.
func EarthFieldUT() r3.Vec {
	return r3.Vec{X: 22, Y: 5, Z: -42}
}
