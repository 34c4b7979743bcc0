// Package magnet models the permanent magnets mounted on each fingertip and
// the magnetic field they produce at the wrist-mounted magnetometer.
package magnet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// mu0 is the vacuum permeability in T·m/A.
const mu0 = 4 * math.Pi * 1e-7

// Spec describes a cylindrical fingertip magnet. Dimensions are in
// millimeters; remanence is the field strength of the magnet material in
// Tesla. Polarity flips the moment along the cylinder axis.
type Spec struct {
	DiameterMm float64 `yaml:"diameter_mm" json:"diameter_mm"`
	HeightMm   float64 `yaml:"height_mm" json:"height_mm"`
	RemanenceT float64 `yaml:"remanence_t" json:"remanence_t"`
	Polarity   float64 `yaml:"polarity" json:"polarity"`
}

// DefaultSpec returns the reference fingertip magnet: a 4x1.5 mm bonded
// neodymium disc. Its dipole moment works out to 0.0135 A·m².
func DefaultSpec() Spec {
	return Spec{
		DiameterMm: 4.0,
		HeightMm:   1.5,
		RemanenceT: 0.9,
		Polarity:   1,
	}
}

// Moment returns the dipole moment vector for the magnet in A·m²
// equivalents. Magnitude follows the magnetized-cylinder volume formula
// remanence/µ0 × volume; direction is the cylinder axis scaled by polarity.
func (s Spec) Moment(axis r3.Vec) r3.Vec {
	radiusM := s.DiameterMm / 2 * 1e-3
	heightM := s.HeightMm * 1e-3
	volume := math.Pi * radiusM * radiusM * heightM
	magnitude := s.RemanenceT / mu0 * volume

	n := r3.Norm(axis)
	if n == 0 {
		axis = r3.Vec{Z: 1}
		n = 1
	}
	return r3.Scale(s.Polarity*magnitude/n, axis)
}

// HandSetup maps finger names to the magnet mounted on each fingertip. It is
// the magnet configuration snapshot that lands in session metadata.
type HandSetup struct {
	Magnets map[string]Spec `yaml:"magnets" json:"magnets"`

	// MomentAxis is the shared cylinder-axis direction for all fingertip
	// magnets, in the sensor frame. Defaults to +Z (magnet face toward the
	// back of the finger).
	MomentAxis r3.Vec `yaml:"-" json:"-"`
}

// DefaultHandSetup mounts the reference magnet on all five fingers.
func DefaultHandSetup() HandSetup {
	magnets := make(map[string]Spec, 5)
	for _, finger := range []string{"thumb", "index", "middle", "ring", "pinky"} {
		magnets[finger] = DefaultSpec()
	}
	return HandSetup{
		Magnets:    magnets,
		MomentAxis: r3.Vec{Z: 1},
	}
}

// Axis returns the configured moment axis, defaulting to +Z.
func (h HandSetup) Axis() r3.Vec {
	if r3.Norm(h.MomentAxis) == 0 {
		return r3.Vec{Z: 1}
	}
	return h.MomentAxis
}
