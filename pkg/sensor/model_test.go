package sensor

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMeasureCleanPipeline(t *testing.T) {
	m := NewModel(DefaultCharacteristics(), 1)

	field := r3.Vec{X: 120, Y: -35.2, Z: 48.7}
	reading := m.Measure(field, MeasureOptions{Quantized: true})

	// With no noise, bias or distortion the raw counts are just the
	// quantized true field.
	wantRawX := int(math.Round(field.X * m.chars.MagLSBPerUT))
	if reading.RawX != wantRawX {
		t.Errorf("raw x = %d, want %d", reading.RawX, wantRawX)
	}
	if math.Abs(reading.XUT-field.X) > 0.15 {
		t.Errorf("converted x = %.3f, should be within one LSB of %.3f", reading.XUT, field.X)
	}
	if reading.TrueFieldUT != field {
		t.Errorf("true field decoration changed: %+v", reading.TrueFieldUT)
	}
}

func TestMeasureQuantizationRoundTrip(t *testing.T) {
	chars := DefaultCharacteristics()
	m := NewModel(chars, 42)

	fields := []r3.Vec{
		{X: 135.7, Y: 10.8, Z: -42},
		{X: 0.04, Y: -0.04, Z: 0},
		{X: -200.5, Y: 4911.9, Z: -4912},
	}

	for _, f := range fields {
		reading := m.Measure(f, AllOptions())

		// Re-quantizing the converted triple must reproduce the raw triple.
		rx, _ := quantize(reading.XUT, chars.MagLSBPerUT, chars.MagRangeUT)
		ry, _ := quantize(reading.YUT, chars.MagLSBPerUT, chars.MagRangeUT)
		rz, _ := quantize(reading.ZUT, chars.MagLSBPerUT, chars.MagRangeUT)

		if rx != reading.RawX || ry != reading.RawY || rz != reading.RawZ {
			t.Errorf("field %+v: round-trip (%d,%d,%d) != raw (%d,%d,%d)",
				f, rx, ry, rz, reading.RawX, reading.RawY, reading.RawZ)
		}
	}
}

func TestMeasureSaturation(t *testing.T) {
	chars := DefaultCharacteristics()
	m := NewModel(chars, 1)

	reading := m.Measure(r3.Vec{X: 99999}, MeasureOptions{Quantized: true})

	limit := int(math.Round(chars.MagRangeUT * chars.MagLSBPerUT))
	if reading.RawX != limit {
		t.Errorf("over-range field should clamp to %d, got %d", limit, reading.RawX)
	}

	reading = m.Measure(r3.Vec{X: -99999}, MeasureOptions{Quantized: true})
	if reading.RawX != -limit {
		t.Errorf("under-range field should clamp to %d, got %d", -limit, reading.RawX)
	}
}

func TestMeasureBiasAndDistortion(t *testing.T) {
	chars := DefaultCharacteristics()
	chars.HardIronUT = r3.Vec{X: 10, Y: -5, Z: 2}
	chars.SoftIron = mat.NewDense(3, 3, []float64{
		1.1, 0, 0,
		0, 0.9, 0,
		0, 0, 1,
	})
	m := NewModel(chars, 1)

	field := r3.Vec{X: 100, Y: 100, Z: 100}
	reading := m.Measure(field, MeasureOptions{Biased: true, Distorted: true, Quantized: true})

	if math.Abs(reading.XUT-120) > 0.2 {
		t.Errorf("x should see 1.1 scale + 10 µT bias: got %.2f, want ~120", reading.XUT)
	}
	if math.Abs(reading.YUT-85) > 0.2 {
		t.Errorf("y should see 0.9 scale - 5 µT bias: got %.2f, want ~85", reading.YUT)
	}
	if math.Abs(reading.ZUT-102) > 0.2 {
		t.Errorf("z should see identity scale + 2 µT bias: got %.2f, want ~102", reading.ZUT)
	}
}

func TestMeasureStaticGravity(t *testing.T) {
	chars := DefaultCharacteristics()
	chars.AccelNoiseG = 0
	chars.GyroNoiseDPS = 0
	m := NewModel(chars, 1)

	identity := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	r := m.MeasureStatic(identity)

	if math.Abs(r.AZg-1) > 1e-4 {
		t.Errorf("identity orientation should read 1 g on z, got %.4f", r.AZg)
	}
	if r.AXg != 0 || r.AYg != 0 {
		t.Errorf("x/y accel should be zero without noise, got %.4f/%.4f", r.AXg, r.AYg)
	}
	if r.GXdps != 0 || r.GYdps != 0 || r.GZdps != 0 {
		t.Errorf("static gyro should be exactly zero without noise, got %.4f/%.4f/%.4f", r.GXdps, r.GYdps, r.GZdps)
	}
}

func TestMeasureStaticGyroNoiseOnly(t *testing.T) {
	m := NewModel(DefaultCharacteristics(), 9)
	identity := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

	var sum float64
	const n = 200
	for i := 0; i < n; i++ {
		r := m.MeasureStatic(identity)
		sum += r.GXdps
	}
	mean := sum / n
	if math.Abs(mean) > 0.2 {
		t.Errorf("static gyro output should be zero-mean noise, got mean %.3f dps", mean)
	}
}

func TestRandomizedCharacteristics(t *testing.T) {
	chars := DefaultCharacteristics()
	rr := DefaultRandomizationRanges()

	a := chars.Randomized(rand.New(rand.NewPCG(1, 2)), rr)
	b := chars.Randomized(rand.New(rand.NewPCG(3, 4)), rr)

	if a.HardIronUT == b.HardIronUT {
		t.Error("different seeds should draw different hard-iron bias vectors")
	}

	for _, c := range []Characteristics{a, b} {
		if c.NoiseFloorUT < rr.NoiseFloorUT[0] || c.NoiseFloorUT > rr.NoiseFloorUT[1] {
			t.Errorf("noise floor %.3f outside configured range", c.NoiseFloorUT)
		}
		for _, v := range []float64{c.HardIronUT.X, c.HardIronUT.Y, c.HardIronUT.Z} {
			if math.Abs(v) > rr.HardIronUT {
				t.Errorf("hard-iron component %.2f outside ±%.1f", v, rr.HardIronUT)
			}
		}
		for i := 0; i < 3; i++ {
			if d := c.SoftIron.At(i, i); math.Abs(d-1) > rr.SoftIronDiag {
				t.Errorf("soft-iron diagonal %.4f outside 1±%.2f", d, rr.SoftIronDiag)
			}
		}
	}
}

func TestSnapshot(t *testing.T) {
	chars := DefaultCharacteristics()
	chars.HardIronUT = r3.Vec{X: 1, Y: 2, Z: 3}

	snap := chars.Snapshot()
	if snap.HardIronUT != [3]float64{1, 2, 3} {
		t.Errorf("snapshot hard iron = %v", snap.HardIronUT)
	}
	if snap.SoftIron[0] != 1 || snap.SoftIron[4] != 1 || snap.SoftIron[8] != 1 {
		t.Errorf("snapshot soft iron should carry the identity diagonal, got %v", snap.SoftIron)
	}
	if snap.MagLSBPerUT != chars.MagLSBPerUT {
		t.Errorf("snapshot lsb/µT = %.3f, want %.3f", snap.MagLSBPerUT, chars.MagLSBPerUT)
	}
}
