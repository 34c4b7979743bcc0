package hand

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecClose(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func TestTipPositionStates(t *testing.T) {
	g := NewGeometry(1)
	fg := g.Fingers["index"]

	extended := g.TipPosition("index", Extended, 0)
	flexed := g.TipPosition("index", Flexed, 0)
	partial := g.TipPosition("index", Partial, 0)
	unknown := g.TipPosition("index", Unknown, 0)

	wantExtended := r3.Add(fg.BaseMm, r3.Scale(fg.TotalLengthMm(), r3.Unit(fg.Axis)))
	if !vecClose(extended, wantExtended, 1e-9) {
		t.Errorf("extended tip = %+v, want %+v", extended, wantExtended)
	}

	if !vecClose(unknown, extended, 1e-9) {
		t.Errorf("unknown state should resolve like extended, got %+v", unknown)
	}

	mid := r3.Scale(0.5, r3.Add(extended, flexed))
	if !vecClose(partial, mid, 1e-9) {
		t.Errorf("partial tip should be the midpoint of extended and flexed, got %+v want %+v", partial, mid)
	}

	if flexed.Z >= extended.Z {
		t.Errorf("flexed tip should curl toward the palm (below extended), got z=%.1f vs %.1f", flexed.Z, extended.Z)
	}

	if r3.Norm(r3.Sub(flexed, r3.Vec{})) > r3.Norm(r3.Sub(extended, r3.Vec{})) {
		t.Error("flexed tip should sit closer to the sensor than extended")
	}
}

func TestTipPositionJitter(t *testing.T) {
	g := NewGeometry(7)

	clean := g.TipPosition("middle", Extended, 0)
	noisy := g.TipPosition("middle", Extended, 2.0)

	d := r3.Norm(r3.Sub(noisy, clean))
	if d == 0 {
		t.Error("jitter should perturb the tip position")
	}
	if d > 25 {
		t.Errorf("2 mm jitter moved the tip %.1f mm, far outside plausible range", d)
	}
}

func TestRandomizeGeometry(t *testing.T) {
	g := NewGeometry(3)
	before := make(map[string]FingerGeometry, len(g.Fingers))
	for name, fg := range g.Fingers {
		before[name] = fg
	}

	g.Randomize(0.1)

	changed := false
	for name, fg := range g.Fingers {
		orig := before[name]
		for i := range fg.SegmentsMm {
			ratio := fg.SegmentsMm[i] / orig.SegmentsMm[i]
			if ratio < 0.9-1e-9 || ratio > 1.1+1e-9 {
				t.Errorf("%s segment %d scaled by %.3f, outside [0.9, 1.1]", name, i, ratio)
			}
			if ratio != 1 {
				changed = true
			}
		}
		if r3.Norm(r3.Sub(fg.BaseMm, orig.BaseMm)) > 3*math.Sqrt(3)+1e-9 {
			t.Errorf("%s base moved too far: %+v -> %+v", name, orig.BaseMm, fg.BaseMm)
		}
	}
	if !changed {
		t.Error("randomize should perturb at least one segment length")
	}
}

func TestStatesForNamedPoses(t *testing.T) {
	g := NewGeometry(1)

	tests := []struct {
		pose   string
		finger string
		want   FlexionState
	}{
		{"fist", "index", Flexed},
		{"open", "pinky", Extended},
		{"point", "index", Extended},
		{"point", "middle", Flexed},
		{"pinch", "thumb", Partial},
		{"thumbs_up", "thumb", Extended},
	}

	for _, tt := range tests {
		t.Run(tt.pose+"/"+tt.finger, func(t *testing.T) {
			states := g.StatesFor(tt.pose)
			if got := states[tt.finger]; got != tt.want {
				t.Errorf("pose %q finger %q = %v, want %v", tt.pose, tt.finger, got, tt.want)
			}
		})
	}
}

func TestStatesForUnknownPoseFallback(t *testing.T) {
	g := NewGeometry(11)

	states := g.StatesFor("no-such-pose")
	if len(states) != len(Fingers) {
		t.Fatalf("fallback should assign a state to every finger, got %d entries", len(states))
	}
	for finger, state := range states {
		if state == Unknown {
			t.Errorf("fallback assigned unknown to %s", finger)
		}
	}
}

func TestTransitionThirdsRule(t *testing.T) {
	g := NewGeometry(5)
	start := g.StatesFor("open")
	end := g.StatesFor("fist")

	poses := g.Transition(start, end, 30, 0)
	if len(poses) != 30 {
		t.Fatalf("expected 30 frames, got %d", len(poses))
	}

	for i, p := range poses {
		switch {
		case i < 10:
			if p.States["index"] != Extended {
				t.Errorf("frame %d should carry the start state, got %v", i, p.States["index"])
			}
		case i < 20:
			if len(p.States) != 0 {
				t.Errorf("frame %d should carry an empty state map, got %v", i, p.States)
			}
		default:
			if p.States["index"] != Flexed {
				t.Errorf("frame %d should carry the end state, got %v", i, p.States["index"])
			}
		}
	}
}

func TestTransitionTipInterpolation(t *testing.T) {
	g := NewGeometry(5)
	start := g.StatesFor("open")
	end := g.StatesFor("fist")

	poses := g.Transition(start, end, 3, 0)

	from := g.TipPosition("index", Extended, 0)
	to := g.TipPosition("index", Flexed, 0)
	mid := r3.Scale(0.5, r3.Add(from, to))

	if !vecClose(poses[0].Tips["index"], from, 1e-9) {
		t.Errorf("first frame tip = %+v, want start tip %+v", poses[0].Tips["index"], from)
	}
	if !vecClose(poses[1].Tips["index"], mid, 1e-9) {
		t.Errorf("middle frame tip = %+v, want midpoint %+v", poses[1].Tips["index"], mid)
	}
	if !vecClose(poses[2].Tips["index"], to, 1e-9) {
		t.Errorf("last frame tip = %+v, want end tip %+v", poses[2].Tips["index"], to)
	}
}

func TestFlexionStateStrings(t *testing.T) {
	for _, state := range []FlexionState{Extended, Partial, Flexed, Unknown} {
		if ParseFlexionState(state.String()) != state {
			t.Errorf("state %d did not round-trip through %q", state, state.String())
		}
	}
	if ParseFlexionState("curled?") != Unknown {
		t.Error("unrecognized state string should parse as unknown")
	}
}
