package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads a YAML configuration file over the defaults and validates the
// result. An empty path returns the defaults unchanged.
func Load(filename string) (*Data, error) {
	data := Default()

	if filename != "" {
		raw, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyDefaults(data)
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// applyDefaults fills the holes an explicit config file may leave.
func applyDefaults(d *Data) {
	base := Default()

	if d.FieldBackend == "" {
		d.FieldBackend = base.FieldBackend
	}
	if d.IncludeEarth == nil {
		d.IncludeEarth = base.IncludeEarth
	}
	if len(d.Magnets) == 0 {
		d.Magnets = base.Magnets
	}
	if d.Hand.GeometryScale == 0 {
		d.Hand.GeometryScale = base.Hand.GeometryScale
	}
	if len(d.Session.Poses) == 0 {
		d.Session.Poses = base.Session.Poses
	}
	if d.Session.SamplesPerPose == 0 {
		d.Session.SamplesPerPose = base.Session.SamplesPerPose
	}
	if d.Session.IncludeTransitions == nil {
		d.Session.IncludeTransitions = base.Session.IncludeTransitions
	}
	if d.Session.TransitionSamples == 0 {
		d.Session.TransitionSamples = base.Session.TransitionSamples
	}
	if d.Session.OrientationBoundDeg == 0 {
		d.Session.OrientationBoundDeg = base.Session.OrientationBoundDeg
	}
	if d.Output.Format == "" {
		d.Output.Format = base.Output.Format
	}
	if d.Output.Dir == "" {
		d.Output.Dir = base.Output.Dir
	}
	if d.Batch.Count == 0 {
		d.Batch.Count = base.Batch.Count
	}
	if d.Batch.Workers == 0 {
		d.Batch.Workers = base.Batch.Workers
	}
	if d.Batch.Seed == 0 {
		d.Batch.Seed = base.Batch.Seed
	}
}
