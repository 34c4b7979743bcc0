// Command magsynth generates batches of synthetic finger-tracking telemetry
// sessions and writes them to disk or a SQLite archive.
package main

import (
	"flag"
	"os"

	"github.com/tactyl/magsynth/internal/batch"
	"github.com/tactyl/magsynth/internal/log"
	"github.com/tactyl/magsynth/internal/session"
	"github.com/tactyl/magsynth/internal/storage"
	"github.com/tactyl/magsynth/pkg/config"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to YAML configuration file")
		count      = flag.Int("count", 0, "number of sessions to generate (overrides config)")
		seed       = flag.Uint64("seed", 0, "base random seed (overrides config)")
		outputDir  = flag.String("output", "", "session output directory (overrides config)")
		format     = flag.String("format", "", "output format: json or msgpack (overrides config)")
		sqlitePath = flag.String("sqlite", "", "also archive sessions to this SQLite database")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug, ""); err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	if *count > 0 {
		cfg.Batch.Count = *count
	}
	if *seed > 0 {
		cfg.Batch.Seed = *seed
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *sqlitePath != "" {
		cfg.Output.SQLitePath = *sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("setting up session storage: %v", err)
	}
	defer store.Close()

	params := paramsFromConfig(cfg)
	log.Infow("generating sessions",
		"count", cfg.Batch.Count,
		"workers", cfg.Batch.Workers,
		"seed", cfg.Batch.Seed,
		"poses", params.Poses,
		"backend", params.FieldBackend,
	)

	sessions, err := batch.NewRunner(cfg.Batch.Workers).Run(params, cfg.Batch.Count)
	if err != nil {
		log.Fatalf("generating sessions: %v", err)
	}

	for i := range sessions {
		if err := store.Save(&sessions[i]); err != nil {
			log.Fatalf("saving session %s: %v", sessions[i].Timestamp, err)
		}
	}

	log.Infof("wrote %d sessions to %s", len(sessions), cfg.Output.Dir)
}

func buildStore(cfg *config.Data) (storage.SessionStore, error) {
	var stores storage.MultiStore

	fileStore, err := storage.NewFileStore(cfg.Output.Dir, cfg.Output.Format, cfg.Output.Pretty)
	if err != nil {
		return nil, err
	}
	stores = append(stores, fileStore)

	if cfg.Output.SQLitePath != "" {
		sqliteStore, err := storage.NewSQLiteStore(cfg.Output.SQLitePath)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores = append(stores, sqliteStore)
	}
	return stores, nil
}

func paramsFromConfig(cfg *config.Data) session.Params {
	p := session.DefaultParams()

	p.Poses = cfg.Session.Poses
	p.SamplesPerPose = cfg.Session.SamplesPerPose
	p.IncludeTransitions = *cfg.Session.IncludeTransitions
	p.TransitionSamples = cfg.Session.TransitionSamples
	p.PositionNoiseMm = cfg.Session.PositionNoiseMm
	p.OrientationBoundDeg = cfg.Session.OrientationBoundDeg

	p.RandomizeGeometry = cfg.Hand.RandomizeGeometry
	p.GeometryScale = cfg.Hand.GeometryScale
	p.RandomizeSensor = cfg.Sensor.Randomize

	p.Setup = cfg.HandSetup()
	p.Sensor = cfg.Characteristics()
	p.EarthFieldUT = r3.Vec{X: cfg.EarthFieldUT[0], Y: cfg.EarthFieldUT[1], Z: cfg.EarthFieldUT[2]}
	p.IncludeEarth = *cfg.IncludeEarth
	p.FieldBackend = cfg.FieldBackend
	p.Seed = cfg.Batch.Seed

	return p
}
