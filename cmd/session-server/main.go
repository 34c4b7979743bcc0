// Command session-server serves synthetic telemetry sessions over HTTP for
// integration testing of downstream consumers.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tactyl/magsynth/internal/log"
	"github.com/tactyl/magsynth/internal/server"
	"github.com/tactyl/magsynth/pkg/config"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tactyl/magsynth/internal/session"
)

func main() {
	var (
		addr       = flag.String("addr", ":8090", "listen address")
		configFile = flag.String("config", "", "path to YAML configuration file")
		logFile    = flag.String("logfile", "", "optional rotated log file")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug, *logFile); err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	ctrl := server.NewController(*addr, paramsFromConfig(cfg), log.GetSugaredLogger())
	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
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
