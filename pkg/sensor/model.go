package sensor

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model converts true field vectors into realistic sensor readings. It is a
// stateless transform over the Characteristics it was built with; the only
// state is the seeded noise source.
type Model struct {
	chars Characteristics
	rng   *rand.Rand
}

// NewModel builds a sensor model around a fixed calibration state.
func NewModel(chars Characteristics, seed uint64) *Model {
	if chars.SoftIron == nil {
		chars.SoftIron = identity3()
	}
	return &Model{
		chars: chars,
		rng:   rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
	}
}

// Characteristics returns the calibration state the model was built with.
func (m *Model) Characteristics() Characteristics {
	return m.chars
}

// MeasureOptions selects which corruption stages apply.
type MeasureOptions struct {
	Noisy     bool
	Biased    bool
	Distorted bool
	Quantized bool
}

// AllOptions enables the full measurement pipeline.
func AllOptions() MeasureOptions {
	return MeasureOptions{Noisy: true, Biased: true, Distorted: true, Quantized: true}
}

// MagReading is one magnetometer measurement: the raw fixed-point triple,
// its µT conversion, and the true pre-noise field carried alongside for
// offline validation only. The true field never feeds back into the model.
type MagReading struct {
	RawX, RawY, RawZ int
	XUT, YUT, ZUT    float64
	TrueFieldUT      r3.Vec
}

// Measure runs the measurement pipeline on a true field in µT: soft-iron
// matrix multiply, hard-iron offset, Gaussian noise, then fixed-point
// quantization with saturation and the raw→µT back-conversion.
func (m *Model) Measure(trueFieldUT r3.Vec, opts MeasureOptions) MagReading {
	v := trueFieldUT

	if opts.Distorted {
		v = m.applySoftIron(v)
	}
	if opts.Biased {
		v = r3.Add(v, m.chars.HardIronUT)
	}
	if opts.Noisy {
		n := normal(m.chars.NoiseFloorUT, m.rng)
		v = r3.Add(v, r3.Vec{X: n.Rand(), Y: n.Rand(), Z: n.Rand()})
	}

	reading := MagReading{TrueFieldUT: trueFieldUT}
	if opts.Quantized {
		reading.RawX, reading.XUT = quantize(v.X, m.chars.MagLSBPerUT, m.chars.MagRangeUT)
		reading.RawY, reading.YUT = quantize(v.Y, m.chars.MagLSBPerUT, m.chars.MagRangeUT)
		reading.RawZ, reading.ZUT = quantize(v.Z, m.chars.MagLSBPerUT, m.chars.MagRangeUT)
	} else {
		reading.RawX = int(math.Round(v.X * m.chars.MagLSBPerUT))
		reading.RawY = int(math.Round(v.Y * m.chars.MagLSBPerUT))
		reading.RawZ = int(math.Round(v.Z * m.chars.MagLSBPerUT))
		reading.XUT, reading.YUT, reading.ZUT = v.X, v.Y, v.Z
	}
	return reading
}

// IMUReading is one static accelerometer/gyroscope measurement.
type IMUReading struct {
	RawAX, RawAY, RawAZ int
	RawGX, RawGY, RawGZ int
	AXg, AYg, AZg       float64
	GXdps, GYdps, GZdps float64
}

// MeasureStatic simulates the IMU for a motionless pose: gravity rotated by
// the device orientation plus accelerometer noise, and noise-only gyroscope
// output around zero. The orientation matrix maps world frame to sensor
// frame.
func (m *Model) MeasureStatic(orientation *mat.Dense) IMUReading {
	gravity := rotate(orientation, r3.Vec{Z: 1}) // world +Z, in g

	an := normal(m.chars.AccelNoiseG, m.rng)
	accel := r3.Add(gravity, r3.Vec{X: an.Rand(), Y: an.Rand(), Z: an.Rand()})

	gn := normal(m.chars.GyroNoiseDPS, m.rng)
	gyro := r3.Vec{X: gn.Rand(), Y: gn.Rand(), Z: gn.Rand()}

	var r IMUReading
	r.RawAX, r.AXg = quantize(accel.X, m.chars.AccelLSBPerG, m.chars.AccelRangeG)
	r.RawAY, r.AYg = quantize(accel.Y, m.chars.AccelLSBPerG, m.chars.AccelRangeG)
	r.RawAZ, r.AZg = quantize(accel.Z, m.chars.AccelLSBPerG, m.chars.AccelRangeG)
	r.RawGX, r.GXdps = quantize(gyro.X, m.chars.GyroLSBPerDPS, m.chars.GyroRangeDPS)
	r.RawGY, r.GYdps = quantize(gyro.Y, m.chars.GyroLSBPerDPS, m.chars.GyroRangeDPS)
	r.RawGZ, r.GZdps = quantize(gyro.Z, m.chars.GyroLSBPerDPS, m.chars.GyroRangeDPS)
	return r
}

// quantize converts a physical value to raw LSB counts (round to nearest,
// clamp to ±range×lsb) and back to physical units.
func quantize(value, lsbPerUnit, rangeUnits float64) (int, float64) {
	raw := math.Round(value * lsbPerUnit)
	limit := math.Round(rangeUnits * lsbPerUnit)
	if raw > limit {
		raw = limit
	} else if raw < -limit {
		raw = -limit
	}
	return int(raw), raw / lsbPerUnit
}

func (m *Model) applySoftIron(v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m.chars.SoftIron, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// rotate applies a 3x3 rotation matrix to a vector.
func rotate(rot *mat.Dense, v r3.Vec) r3.Vec {
	if rot == nil {
		return v
	}
	var out mat.VecDense
	out.MulVec(rot, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
