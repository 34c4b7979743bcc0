package session

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationZYX builds a rotation matrix from intrinsic yaw (Z), pitch (Y) and
// roll (X) angles in radians. The matrix maps world-frame vectors into the
// sensor frame.
func RotationZYX(yaw, pitch, roll float64) *mat.Dense {
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	return mat.NewDense(3, 3, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
}

// RandomOrientation draws a uniformly perturbed device orientation bounded
// to ±boundDeg about each axis, emulating natural wrist motion during a
// nominally static pose.
func RandomOrientation(rng *rand.Rand, boundDeg float64) *mat.Dense {
	bound := boundDeg * math.Pi / 180
	yaw := (rng.Float64()*2 - 1) * bound
	pitch := (rng.Float64()*2 - 1) * bound
	roll := (rng.Float64()*2 - 1) * bound
	return RotationZYX(yaw, pitch, roll)
}

// Rotate applies a rotation matrix to a vector.
func Rotate(rot *mat.Dense, v r3.Vec) r3.Vec {
	if rot == nil {
		return v
	}
	var out mat.VecDense
	out.MulVec(rot, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
