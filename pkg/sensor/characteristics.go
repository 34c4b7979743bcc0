// Package sensor simulates the wrist device's magnetometer and IMU: linear
// soft-iron distortion, hard-iron offset, Gaussian noise, and fixed-point
// quantization with saturation, matching the raw-count output of the real
// hardware.
package sensor

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Characteristics is the fixed calibration state of one simulated device.
// Mutable only through Randomized; otherwise treated as configuration for
// the lifetime of a Model.
type Characteristics struct {
	// Magnetometer
	NoiseFloorUT float64    // Gaussian noise sigma, µT RMS
	HardIronUT   r3.Vec     // constant additive bias, µT
	SoftIron     *mat.Dense // 3x3 linear distortion
	MagLSBPerUT  float64    // fixed-point conversion factor
	MagRangeUT   float64    // saturation range, ±µT

	// Accelerometer / gyroscope (static model)
	AccelLSBPerG  float64
	AccelRangeG   float64
	AccelNoiseG   float64
	GyroLSBPerDPS float64
	GyroRangeDPS  float64
	GyroNoiseDPS  float64

	SampleRateHz float64
}

// DefaultCharacteristics returns MPU-9250-class sensor constants: AK8963
// magnetometer (0.15 µT/LSB, ±4912 µT), ±2 g accelerometer at 16384 LSB/g,
// ±250 dps gyro at 131 LSB/dps.
func DefaultCharacteristics() Characteristics {
	return Characteristics{
		NoiseFloorUT:  0.6,
		HardIronUT:    r3.Vec{},
		SoftIron:      identity3(),
		MagLSBPerUT:   1 / 0.15,
		MagRangeUT:    4912,
		AccelLSBPerG:  16384,
		AccelRangeG:   2,
		AccelNoiseG:   0.008,
		GyroLSBPerDPS: 131,
		GyroRangeDPS:  250,
		GyroNoiseDPS:  0.4,
		SampleRateHz:  100,
	}
}

// RandomizationRanges bounds the device-to-device variation drawn by
// Randomized.
type RandomizationRanges struct {
	NoiseFloorUT   [2]float64
	HardIronUT     float64 // per-axis uniform in ±HardIronUT
	SoftIronDiag   float64 // diagonal in 1 ± SoftIronDiag
	SoftIronCross  float64 // off-diagonal in ± SoftIronCross
}

// DefaultRandomizationRanges matches the spread observed across real
// devices.
func DefaultRandomizationRanges() RandomizationRanges {
	return RandomizationRanges{
		NoiseFloorUT:  [2]float64{0.3, 1.2},
		HardIronUT:    30,
		SoftIronDiag:  0.05,
		SoftIronCross: 0.03,
	}
}

// Randomized resamples noise level, hard-iron bias and the soft-iron matrix
// from the configured ranges. Intended to run once per synthetic session to
// emulate device-to-device variation, not per sample.
func (c Characteristics) Randomized(rng *rand.Rand, rr RandomizationRanges) Characteristics {
	out := c

	span := rr.NoiseFloorUT[1] - rr.NoiseFloorUT[0]
	out.NoiseFloorUT = rr.NoiseFloorUT[0] + rng.Float64()*span

	out.HardIronUT = r3.Vec{
		X: (rng.Float64()*2 - 1) * rr.HardIronUT,
		Y: (rng.Float64()*2 - 1) * rr.HardIronUT,
		Z: (rng.Float64()*2 - 1) * rr.HardIronUT,
	}

	soft := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				soft.Set(i, j, 1+(rng.Float64()*2-1)*rr.SoftIronDiag)
			} else {
				soft.Set(i, j, (rng.Float64()*2-1)*rr.SoftIronCross)
			}
		}
	}
	out.SoftIron = soft

	return out
}

// Snapshot is the JSON form of the calibration state recorded in session
// metadata.
type Snapshot struct {
	NoiseFloorUT float64    `json:"noise_floor_ut"`
	HardIronUT   [3]float64 `json:"hard_iron_ut"`
	SoftIron     [9]float64 `json:"soft_iron"`
	MagLSBPerUT  float64    `json:"mag_lsb_per_ut"`
	MagRangeUT   float64    `json:"mag_range_ut"`
	SampleRateHz float64    `json:"sample_rate_hz"`
}

// Snapshot captures the calibration state for session metadata.
func (c Characteristics) Snapshot() Snapshot {
	snap := Snapshot{
		NoiseFloorUT: c.NoiseFloorUT,
		HardIronUT:   [3]float64{c.HardIronUT.X, c.HardIronUT.Y, c.HardIronUT.Z},
		MagLSBPerUT:  c.MagLSBPerUT,
		MagRangeUT:   c.MagRangeUT,
		SampleRateHz: c.SampleRateHz,
	}
	soft := c.SoftIron
	if soft == nil {
		soft = identity3()
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			snap.SoftIron[i*3+j] = soft.At(i, j)
		}
	}
	return snap
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// normal builds a zero-mean Gaussian with the given sigma on the supplied
// source.
func normal(sigma float64, src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
}
