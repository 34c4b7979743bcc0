package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tactyl/magsynth/internal/session"
	"github.com/tactyl/magsynth/internal/storage"
)

func (c *Controller) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleSession generates a session on demand. Supported query parameters:
// poses (comma-separated), samples (per pose), transitions (bool),
// transition_samples, seed, noise_mm, format (json or msgpack).
func (c *Controller) handleSession(w http.ResponseWriter, r *http.Request) {
	params := c.baseParams
	q := r.URL.Query()

	if poses := q.Get("poses"); poses != "" {
		params.Poses = strings.Split(poses, ",")
	}
	if v := q.Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid samples parameter", http.StatusBadRequest)
			return
		}
		params.SamplesPerPose = n
	}
	if v := q.Get("transitions"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid transitions parameter", http.StatusBadRequest)
			return
		}
		params.IncludeTransitions = b
	}
	if v := q.Get("transition_samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid transition_samples parameter", http.StatusBadRequest)
			return
		}
		params.TransitionSamples = n
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed parameter", http.StatusBadRequest)
			return
		}
		params.Seed = seed
	}
	if v := q.Get("noise_mm"); v != "" {
		noise, err := strconv.ParseFloat(v, 64)
		if err != nil || noise < 0 {
			http.Error(w, "invalid noise_mm parameter", http.StatusBadRequest)
			return
		}
		params.PositionNoiseMm = noise
	}

	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "msgpack" {
		http.Error(w, "invalid format parameter", http.StatusBadRequest)
		return
	}

	s := session.NewGenerator(params).Generate()
	data, err := storage.Encode(&s, format, false)
	if err != nil {
		c.logger.Errorw("failed to encode session", "error", err)
		http.Error(w, "failed to encode session", http.StatusInternalServerError)
		return
	}

	if format == "msgpack" {
		w.Header().Set("Content-Type", "application/msgpack")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(data)

	c.logger.Infow("served synthetic session",
		"session", s.Timestamp,
		"samples", len(s.Samples),
		"format", format,
	)
}
