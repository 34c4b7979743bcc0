// Package session assembles synthetic telemetry sessions: time-ordered
// samples with exact ground-truth labels, wrapped in the session document
// format produced by real device captures.
package session

// Version is the session document schema version.
const Version = "2.1"

// Sample is one telemetry record. Raw triples are integer LSB counts; the
// _g/_dps/_ut fields are their physically converted counterparts. The
// _ground_truth block exists only on synthetic sessions and is used for
// offline validation.
type Sample struct {
	AX int `json:"ax"`
	AY int `json:"ay"`
	AZ int `json:"az"`
	GX int `json:"gx"`
	GY int `json:"gy"`
	GZ int `json:"gz"`
	MX int `json:"mx"`
	MY int `json:"my"`
	MZ int `json:"mz"`

	AXg float64 `json:"ax_g"`
	AYg float64 `json:"ay_g"`
	AZg float64 `json:"az_g"`

	GXdps float64 `json:"gx_dps"`
	GYdps float64 `json:"gy_dps"`
	GZdps float64 `json:"gz_dps"`

	MXut float64 `json:"mx_ut"`
	MYut float64 `json:"my_ut"`
	MZut float64 `json:"mz_ut"`

	FilteredMX float64 `json:"filtered_mx"`
	FilteredMY float64 `json:"filtered_my"`
	FilteredMZ float64 `json:"filtered_mz"`

	DT float64 `json:"dt"` // seconds since previous sample
	T  float64 `json:"t"`  // milliseconds since session start

	IsMoving bool `json:"isMoving"`

	GroundTruth *GroundTruth `json:"_ground_truth,omitempty"`
}

// GroundTruth carries the exact per-sample labels: the true pre-noise field
// in µT and the flexion state of every finger. Empty finger states signal an
// undefined intermediate configuration during transitions.
type GroundTruth struct {
	FingerStates map[string]string `json:"finger_states"`
	TrueField    [3]float64        `json:"true_field"`
}

// LabelSegment labels a half-open sample index range [start, end).
type LabelSegment struct {
	StartSample int           `json:"start_sample"`
	EndSample   int           `json:"end_sample"`
	Labels      SegmentLabels `json:"labels"`
}

// SegmentLabels is the label payload of one segment.
type SegmentLabels struct {
	Pose        string            `json:"pose"`
	Motion      string            `json:"motion"`
	Calibration string            `json:"calibration"`
	Fingers     map[string]string `json:"fingers"`
}

// MagnetInfo is the per-finger magnet description recorded in metadata.
type MagnetInfo struct {
	DiameterMm float64 `json:"diameter_mm"`
	HeightMm   float64 `json:"height_mm"`
	RemanenceT float64 `json:"remanence_t"`
	Polarity   float64 `json:"polarity"`
	MomentAm2  float64 `json:"moment_am2"`
}

// Metadata describes how a synthetic session was generated.
type Metadata struct {
	Synthetic         bool                  `json:"synthetic"`
	MagnetConfig      map[string]MagnetInfo `json:"magnet_config"`
	EarthField        [3]float64            `json:"earth_field"`
	SampleRate        float64               `json:"sample_rate"`
	SensorCalibration interface{}           `json:"sensor_calibration"`

	Seed               uint64   `json:"seed"`
	Poses              []string `json:"poses"`
	FieldBackend       string   `json:"field_backend"`
	RandomizedGeometry bool     `json:"randomized_geometry"`
	RandomizedSensor   bool     `json:"randomized_sensor"`
	PositionNoiseMm    float64  `json:"position_noise_mm"`
}

// Session is the root aggregate: ordered samples, ordered label segments and
// generation metadata. Immutable once generation completes.
type Session struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Samples   []Sample       `json:"samples"`
	Labels    []LabelSegment `json:"labels"`
	Metadata  Metadata       `json:"metadata"`
}
