// Package config loads and validates the generator configuration from YAML,
// following a load-defaults-validate flow.
package config

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tactyl/magsynth/pkg/magnet"
	"github.com/tactyl/magsynth/pkg/sensor"
)

// MagnetData configures one fingertip magnet.
type MagnetData struct {
	DiameterMm float64 `yaml:"diameter_mm"`
	HeightMm   float64 `yaml:"height_mm"`
	RemanenceT float64 `yaml:"remanence_t"`
	Polarity   float64 `yaml:"polarity"`
}

// HandData configures hand geometry randomization.
type HandData struct {
	RandomizeGeometry bool    `yaml:"randomize_geometry"`
	GeometryScale     float64 `yaml:"geometry_scale"`
}

// SensorData configures the simulated sensor.
type SensorData struct {
	Randomize    bool    `yaml:"randomize"`
	NoiseFloorUT float64 `yaml:"noise_floor_ut"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
}

// SessionData configures the pose plan of each generated session.
type SessionData struct {
	Poses               []string `yaml:"poses"`
	SamplesPerPose      int      `yaml:"samples_per_pose"`
	IncludeTransitions  *bool    `yaml:"include_transitions"`
	TransitionSamples   int      `yaml:"transition_samples"`
	PositionNoiseMm     float64  `yaml:"position_noise_mm"`
	OrientationBoundDeg float64  `yaml:"orientation_bound_deg"`
}

// OutputData configures where generated sessions go.
type OutputData struct {
	Dir        string `yaml:"dir"`
	Format     string `yaml:"format"` // json or msgpack
	Pretty     bool   `yaml:"pretty"`
	SQLitePath string `yaml:"sqlite_path"`
}

// BatchData configures the batch driver.
type BatchData struct {
	Count   int    `yaml:"count"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
}

// Data is the complete generator configuration.
type Data struct {
	FieldBackend string                `yaml:"field_backend"`
	EarthFieldUT [3]float64            `yaml:"earth_field_ut"`
	IncludeEarth *bool                 `yaml:"include_earth"`
	Magnets      map[string]MagnetData `yaml:"magnets"`
	Hand         HandData              `yaml:"hand"`
	Sensor       SensorData            `yaml:"sensor"`
	Session      SessionData           `yaml:"session"`
	Output       OutputData            `yaml:"output"`
	Batch        BatchData             `yaml:"batch"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Data {
	yes := true
	spec := magnet.DefaultSpec()
	earth := magnet.EarthFieldUT()

	magnets := make(map[string]MagnetData, 5)
	for _, finger := range []string{"thumb", "index", "middle", "ring", "pinky"} {
		magnets[finger] = MagnetData{
			DiameterMm: spec.DiameterMm,
			HeightMm:   spec.HeightMm,
			RemanenceT: spec.RemanenceT,
			Polarity:   spec.Polarity,
		}
	}

	return &Data{
		FieldBackend: "dipole",
		EarthFieldUT: [3]float64{earth.X, earth.Y, earth.Z},
		IncludeEarth: &yes,
		Magnets:      magnets,
		Hand: HandData{
			RandomizeGeometry: true,
			GeometryScale:     0.1,
		},
		Sensor: SensorData{
			Randomize:    true,
			NoiseFloorUT: sensor.DefaultCharacteristics().NoiseFloorUT,
			SampleRateHz: sensor.DefaultCharacteristics().SampleRateHz,
		},
		Session: SessionData{
			Poses:               []string{"open", "fist", "point", "pinch"},
			SamplesPerPose:      500,
			IncludeTransitions:  &yes,
			TransitionSamples:   100,
			PositionNoiseMm:     1.5,
			OrientationBoundDeg: 25,
		},
		Output: OutputData{
			Dir:    "sessions",
			Format: "json",
		},
		Batch: BatchData{
			Count:   1,
			Workers: 4,
			Seed:    1,
		},
	}
}

// Validate checks the parts of the configuration the generator does not
// guard itself.
func (d *Data) Validate() error {
	switch d.Output.Format {
	case "", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported output format %q", d.Output.Format)
	}
	switch d.FieldBackend {
	case "", "dipole", "cylinder":
	default:
		return fmt.Errorf("unsupported field backend %q", d.FieldBackend)
	}
	if d.Batch.Count < 0 {
		return fmt.Errorf("batch count must be non-negative, got %d", d.Batch.Count)
	}
	if d.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be positive, got %d", d.Batch.Workers)
	}
	for finger, m := range d.Magnets {
		if m.DiameterMm <= 0 || m.HeightMm <= 0 || m.RemanenceT <= 0 {
			return fmt.Errorf("magnet for %s has non-positive dimensions", finger)
		}
	}
	return nil
}

// HandSetup converts the magnet table into the solver's configuration.
func (d *Data) HandSetup() magnet.HandSetup {
	setup := magnet.HandSetup{
		Magnets:    make(map[string]magnet.Spec, len(d.Magnets)),
		MomentAxis: r3.Vec{Z: 1},
	}
	for finger, m := range d.Magnets {
		polarity := m.Polarity
		if polarity == 0 {
			polarity = 1
		}
		setup.Magnets[finger] = magnet.Spec{
			DiameterMm: m.DiameterMm,
			HeightMm:   m.HeightMm,
			RemanenceT: m.RemanenceT,
			Polarity:   polarity,
		}
	}
	return setup
}

// Characteristics converts the sensor section into the simulated sensor's
// calibration, starting from hardware defaults.
func (d *Data) Characteristics() sensor.Characteristics {
	chars := sensor.DefaultCharacteristics()
	if d.Sensor.NoiseFloorUT > 0 {
		chars.NoiseFloorUT = d.Sensor.NoiseFloorUT
	}
	if d.Sensor.SampleRateHz > 0 {
		chars.SampleRateHz = d.Sensor.SampleRateHz
	}
	return chars
}
