package session

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tactyl/magsynth/internal/log"
	"github.com/tactyl/magsynth/pkg/hand"
	"github.com/tactyl/magsynth/pkg/magnet"
	"github.com/tactyl/magsynth/pkg/sensor"
)

// filterAlpha is the one-pole EMA coefficient for the filtered_m* columns,
// mirroring the device-side low-pass on real captures.
const filterAlpha = 0.3

// Params configures one session generation run. Everything is passed by
// value so concurrent generators never share mutable state.
type Params struct {
	Poses              []string
	SamplesPerPose     int
	IncludeTransitions bool
	TransitionSamples  int
	PositionNoiseMm    float64

	RandomizeGeometry bool
	GeometryScale     float64
	RandomizeSensor   bool
	SensorRanges      sensor.RandomizationRanges

	Setup        magnet.HandSetup
	Sensor       sensor.Characteristics
	EarthFieldUT r3.Vec
	IncludeEarth bool
	FieldBackend string

	// OrientationBoundDeg bounds the per-sample device orientation
	// perturbation about each axis.
	OrientationBoundDeg float64

	Seed uint64
}

// DefaultParams returns a generation setup that matches a typical recording
// protocol: four named poses, five seconds static each, with transitions.
func DefaultParams() Params {
	return Params{
		Poses:               []string{"open", "fist", "point", "pinch"},
		SamplesPerPose:      500,
		IncludeTransitions:  true,
		TransitionSamples:   100,
		PositionNoiseMm:     1.5,
		RandomizeGeometry:   true,
		GeometryScale:       0.1,
		RandomizeSensor:     true,
		SensorRanges:        sensor.DefaultRandomizationRanges(),
		Setup:               magnet.DefaultHandSetup(),
		Sensor:              sensor.DefaultCharacteristics(),
		EarthFieldUT:        magnet.EarthFieldUT(),
		IncludeEarth:        true,
		FieldBackend:        "dipole",
		OrientationBoundDeg: 25,
		Seed:                1,
	}
}

// Generator walks a pose plan through alternating static and transition
// phases and measures every resulting hand pose through the simulated
// sensor.
type Generator struct {
	params  Params
	geo     *hand.Geometry
	model   *sensor.Model
	backend magnet.Backend
	rng     *rand.Rand

	// resolvedStates memoizes pose-name resolution so the random fallback
	// for an unrecognized name stays stable across a session.
	resolvedStates map[string]hand.StateMap

	filter emaFilter
}

// NewGenerator builds a generator with its own seeded random state.
// Geometry and sensor randomization happen here, once, so every sample of
// the session sees the same device.
func NewGenerator(p Params) *Generator {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x5deece66d))

	geo := hand.NewGeometry(p.Seed + 1)
	if p.RandomizeGeometry {
		geo.Randomize(p.GeometryScale)
	}

	chars := p.Sensor
	if chars.SampleRateHz <= 0 {
		chars.SampleRateHz = sensor.DefaultCharacteristics().SampleRateHz
	}
	if p.RandomizeSensor {
		chars = chars.Randomized(rng, p.SensorRanges)
	}

	return &Generator{
		params:         p,
		geo:            geo,
		model:          sensor.NewModel(chars, p.Seed+2),
		backend:        magnet.BackendFor(p.FieldBackend, p.Setup),
		rng:            rng,
		resolvedStates: make(map[string]hand.StateMap),
	}
}

// Sensor exposes the (possibly randomized) calibration the generator
// measures with.
func (g *Generator) Sensor() sensor.Characteristics {
	return g.model.Characteristics()
}

func (g *Generator) statesFor(poseName string) hand.StateMap {
	if states, ok := g.resolvedStates[poseName]; ok {
		return states
	}
	states := g.geo.StatesFor(poseName)
	g.resolvedStates[poseName] = states
	return states
}

// StaticBlock generates count samples of one named pose. Each sample draws
// independent fingertip jitter and an independent bounded device
// orientation. Returns the samples and one label segment spanning the block.
func (g *Generator) StaticBlock(poseName string, count int, noiseMm float64, startIndex int) ([]Sample, LabelSegment) {
	states := g.statesFor(poseName)
	rate := g.model.Characteristics().SampleRateHz

	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		idx := startIndex + i
		pose := g.geo.Pose(states, noiseMm, float64(idx)/rate*1000)
		samples = append(samples, g.measure(pose, idx, false))
	}

	segment := LabelSegment{
		StartSample: startIndex,
		EndSample:   startIndex + count,
		Labels: SegmentLabels{
			Pose:        poseName,
			Motion:      "static",
			Calibration: "none",
			Fingers:     states.Strings(),
		},
	}
	return samples, segment
}

// TransitionBlock generates count interpolated samples between two named
// poses and splits the block into up to three label segments: start pose,
// undefined transition, end pose, following the interpolation thirds rule.
func (g *Generator) TransitionBlock(startPose, endPose string, count int, noiseMm float64, startIndex int) ([]Sample, []LabelSegment) {
	startStates := g.statesFor(startPose)
	endStates := g.statesFor(endPose)

	poses := g.geo.Transition(startStates, endStates, count, noiseMm)
	samples := make([]Sample, 0, len(poses))
	for i, pose := range poses {
		samples = append(samples, g.measure(pose, startIndex+i, true))
	}

	// Segment boundaries mirror the thirds rule on the interpolation
	// parameter, so they stay index-exact for any frame count. Short
	// blocks may skip the undefined middle segment entirely.
	lo, hi := 0, 0
	for i := range poses {
		t := 1.0
		if len(poses) > 1 {
			t = float64(i) / float64(len(poses)-1)
		}
		if t < 1.0/3.0 {
			lo = i + 1
		}
		if t <= 2.0/3.0 {
			hi = i + 1
		}
	}

	var segments []LabelSegment
	if lo > 0 {
		segments = append(segments, LabelSegment{
			StartSample: startIndex,
			EndSample:   startIndex + lo,
			Labels: SegmentLabels{
				Pose:        startPose,
				Motion:      "transition",
				Calibration: "none",
				Fingers:     startStates.Strings(),
			},
		})
	}
	if hi > lo {
		segments = append(segments, LabelSegment{
			StartSample: startIndex + lo,
			EndSample:   startIndex + hi,
			Labels: SegmentLabels{
				Pose:        startPose + "_to_" + endPose,
				Motion:      "transition",
				Calibration: "none",
				Fingers:     map[string]string{},
			},
		})
	}
	if len(poses) > hi {
		segments = append(segments, LabelSegment{
			StartSample: startIndex + hi,
			EndSample:   startIndex + len(poses),
			Labels: SegmentLabels{
				Pose:        endPose,
				Motion:      "transition",
				Calibration: "none",
				Fingers:     endStates.Strings(),
			},
		})
	}
	return samples, segments
}

// Generate walks the pose plan, alternating static and transition blocks,
// and wraps the result with session metadata. An empty pose plan yields an
// empty session rather than an error.
func (g *Generator) Generate() Session {
	p := g.params
	g.filter = emaFilter{}

	if len(p.Poses) == 0 {
		log.GetSugaredLogger().Warn("session generation requested with an empty pose plan")
	}

	var samples []Sample
	var labels []LabelSegment
	index := 0

	for i, poseName := range p.Poses {
		block, segment := g.StaticBlock(poseName, p.SamplesPerPose, p.PositionNoiseMm, index)
		samples = append(samples, block...)
		if len(block) > 0 {
			labels = append(labels, segment)
		}
		index += len(block)

		if p.IncludeTransitions && i < len(p.Poses)-1 && p.TransitionSamples > 0 {
			block, segments := g.TransitionBlock(poseName, p.Poses[i+1], p.TransitionSamples, p.PositionNoiseMm, index)
			samples = append(samples, block...)
			labels = append(labels, segments...)
			index += len(block)
		}
	}

	return Session{
		Version:   Version,
		Timestamp: newSessionID(),
		Samples:   samples,
		Labels:    labels,
		Metadata:  g.metadata(),
	}
}

// measure turns one hand pose into a full telemetry sample.
func (g *Generator) measure(pose hand.Pose, index int, moving bool) Sample {
	p := g.params
	chars := g.model.Characteristics()

	orientation := RandomOrientation(g.rng, p.OrientationBoundDeg)
	rotatedEarth := Rotate(orientation, p.EarthFieldUT)

	trueField := g.backend.ComputeField([]r3.Vec{{}}, g.sources(pose.Tips))[0]
	if p.IncludeEarth {
		trueField = r3.Add(trueField, rotatedEarth)
	}

	mag := g.model.Measure(trueField, sensor.AllOptions())
	imu := g.model.MeasureStatic(orientation)
	filtered := g.filter.next(r3.Vec{X: mag.XUT, Y: mag.YUT, Z: mag.ZUT})

	dt := 1 / chars.SampleRateHz
	return Sample{
		AX: imu.RawAX, AY: imu.RawAY, AZ: imu.RawAZ,
		GX: imu.RawGX, GY: imu.RawGY, GZ: imu.RawGZ,
		MX: mag.RawX, MY: mag.RawY, MZ: mag.RawZ,
		AXg: imu.AXg, AYg: imu.AYg, AZg: imu.AZg,
		GXdps: imu.GXdps, GYdps: imu.GYdps, GZdps: imu.GZdps,
		MXut: mag.XUT, MYut: mag.YUT, MZut: mag.ZUT,
		FilteredMX: filtered.X, FilteredMY: filtered.Y, FilteredMZ: filtered.Z,
		DT:         dt,
		T:          float64(index) * dt * 1000,
		IsMoving:   moving,
		GroundTruth: &GroundTruth{
			FingerStates: pose.States.Strings(),
			TrueField:    [3]float64{trueField.X, trueField.Y, trueField.Z},
		},
	}
}

// sources converts fingertip positions (mm) and the magnet setup into point
// dipole sources for the field backend.
func (g *Generator) sources(tipsMm map[string]r3.Vec) []magnet.Source {
	axis := g.params.Setup.Axis()
	sources := make([]magnet.Source, 0, len(g.params.Setup.Magnets))
	for finger, spec := range g.params.Setup.Magnets {
		tip, ok := tipsMm[finger]
		if !ok {
			continue
		}
		sources = append(sources, magnet.Source{
			Position: r3.Scale(1e-3, tip),
			Moment:   spec.Moment(axis),
		})
	}
	return sources
}

func (g *Generator) metadata() Metadata {
	p := g.params
	axis := p.Setup.Axis()

	magnets := make(map[string]MagnetInfo, len(p.Setup.Magnets))
	for finger, spec := range p.Setup.Magnets {
		magnets[finger] = MagnetInfo{
			DiameterMm: spec.DiameterMm,
			HeightMm:   spec.HeightMm,
			RemanenceT: spec.RemanenceT,
			Polarity:   spec.Polarity,
			MomentAm2:  r3.Norm(spec.Moment(axis)),
		}
	}

	backend := p.FieldBackend
	if backend == "" {
		backend = "dipole"
	}

	return Metadata{
		Synthetic:          true,
		MagnetConfig:       magnets,
		EarthField:         [3]float64{p.EarthFieldUT.X, p.EarthFieldUT.Y, p.EarthFieldUT.Z},
		SampleRate:         g.model.Characteristics().SampleRateHz,
		SensorCalibration:  g.model.Characteristics().Snapshot(),
		Seed:               p.Seed,
		Poses:              p.Poses,
		FieldBackend:       backend,
		RandomizedGeometry: p.RandomizeGeometry,
		RandomizedSensor:   p.RandomizeSensor,
		PositionNoiseMm:    p.PositionNoiseMm,
	}
}

// newSessionID builds a capture-style session id: a UTC stamp plus a short
// unique suffix.
func newSessionID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}

// emaFilter is the one-pole low-pass behind the filtered_m* columns. The
// first sample seeds the filter so filtered output never lags from zero.
type emaFilter struct {
	initialized bool
	value       r3.Vec
}

func (f *emaFilter) next(v r3.Vec) r3.Vec {
	if !f.initialized {
		f.initialized = true
		f.value = v
		return v
	}
	f.value = r3.Add(r3.Scale(1-filterAlpha, f.value), r3.Scale(filterAlpha, v))
	return f.value
}
