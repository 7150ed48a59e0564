package drowsy

import (
	"math"
	"testing"
)

// frame is one step of a scripted input sequence.
type frame struct {
	ear  float64
	face bool
}

// closedFrames returns n frames of a low EAR with a tracked face.
func closedFrames(n int, ear float64) []frame {
	frames := make([]frame, n)
	for i := range frames {
		frames[i] = frame{ear: ear, face: true}
	}
	return frames
}

func run(d *Detector, frames []frame) []Result {
	results := make([]Result, len(frames))
	for i, f := range frames {
		results[i] = d.Update(f.ear, f.face)
	}
	return results
}

func TestUpdate_EndToEndScenario(t *testing.T) {
	// 30 closed frames, then open frames until the alarm clears.
	d := NewDetector(DefaultConfig())

	results := run(d, closedFrames(30, 0.10))

	// TurnedOn fires exactly once, on the frame where the counter first
	// reaches 25.
	onFrame := -1
	for i, r := range results {
		if r.Transition == TurnedOn {
			if onFrame != -1 {
				t.Fatalf("TurnedOn fired twice: frames %d and %d", onFrame, i)
			}
			onFrame = i
		}
	}
	if onFrame != 24 {
		t.Fatalf("TurnedOn: fired at frame %d, want 24", onFrame)
	}
	for i, r := range results {
		wantStatus := Awake
		if i >= 24 {
			wantStatus = Drowsy
		}
		if r.Status != wantStatus {
			t.Errorf("frame %d: status %v, want %v", i, r.Status, wantStatus)
		}
	}

	// Recovery: the first open frames barely move the windowed average,
	// so the counter keeps rising or holds before it starts decaying
	// through the margin gate. The alarm must stay latched the whole way
	// down and clear exactly when the counter reaches 0.
	count := d.ClosedFrames()
	if count != 30 {
		t.Fatalf("counter after closed run: got %d, want 30", count)
	}

	offFrame := -1
	for i := 0; i < 100; i++ {
		r := d.Update(0.40, true)
		if r.ClosedFrames > 0 && r.Status != Drowsy {
			t.Fatalf("recovery frame %d: alarm cleared with counter %d", i, r.ClosedFrames)
		}
		if r.Transition == TurnedOff {
			offFrame = i
			if r.ClosedFrames != 0 {
				t.Fatalf("TurnedOff with counter %d", r.ClosedFrames)
			}
			break
		}
	}
	if offFrame == -1 {
		t.Fatal("alarm never cleared")
	}
	// One hold frame inside the hysteresis band plus the decay run.
	if offFrame != 32 {
		t.Errorf("TurnedOff: fired at recovery frame %d, want 32", offFrame)
	}
	if d.AlarmOn() {
		t.Error("alarm still latched after TurnedOff")
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	script := append(closedFrames(40, 0.12), []frame{
		{ear: 0.35, face: true},
		{ear: 0, face: false},
		{ear: 0.35, face: true},
		{ear: 0.18, face: true},
	}...)

	first := run(NewDetector(DefaultConfig()), script)
	for i := 0; i < 5; i++ {
		again := run(NewDetector(DefaultConfig()), script)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d frame %d: %+v != %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestUpdate_CounterBounds(t *testing.T) {
	// Counter never goes negative and never moves by more than 1 per frame.
	script := []frame{
		{ear: 0.10, face: true},
		{ear: 0.10, face: true},
		{ear: 0.40, face: true},
		{ear: 0.40, face: true},
		{ear: 0.40, face: true},
		{ear: 0.40, face: true},
		{ear: 0.40, face: true},
		{ear: 0.40, face: true}, // counter already 0: must stay 0
		{ear: 0, face: false},   // no face at 0: must stay 0
		{ear: 0.10, face: true},
	}

	d := NewDetector(DefaultConfig())
	prev := 0
	for i, f := range script {
		r := d.Update(f.ear, f.face)
		if r.ClosedFrames < 0 {
			t.Fatalf("frame %d: negative counter %d", i, r.ClosedFrames)
		}
		if diff := r.ClosedFrames - prev; diff > 1 || diff < -1 {
			t.Fatalf("frame %d: counter jumped by %d", i, diff)
		}
		prev = r.ClosedFrames
	}
}

func TestUpdate_Hysteresis(t *testing.T) {
	// A window of one makes the smoothed value exactly the fed sample,
	// so the hysteresis band can be exercised without rounding effects.
	cfg := DefaultConfig()
	cfg.WindowSize = 1
	threshold := cfg.EARThreshold
	margin := cfg.HysteresisMargin

	tests := []struct {
		name   string
		sample float64
		delta  int // expected counter change
	}{
		{name: "below threshold increments", sample: threshold - 0.01, delta: +1},
		{name: "at threshold holds", sample: threshold, delta: 0},
		{name: "inside margin holds", sample: threshold + margin/2, delta: 0},
		{name: "at margin edge holds", sample: threshold + margin, delta: 0},
		{name: "above margin decrements", sample: threshold + margin + 0.001, delta: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(cfg)
			// Seed a mid-range counter so a decrement is observable.
			d.counter = 10
			before := d.counter
			r := d.Update(tc.sample, true)
			if got := r.ClosedFrames - before; got != tc.delta {
				t.Errorf("sample %v: counter changed by %d, want %d", tc.sample, got, tc.delta)
			}
		})
	}
}

func TestUpdate_AlarmLatch(t *testing.T) {
	d := NewDetector(DefaultConfig())

	fired := 0
	for _, r := range run(d, closedFrames(200, 0.10)) {
		if r.Transition == TurnedOn {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("TurnedOn fired %d times during continuous closure, want 1", fired)
	}
}

func TestUpdate_NoFaceDecay(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, closedFrames(10, 0.10))
	if d.ClosedFrames() != 10 {
		t.Fatalf("setup: counter %d, want 10", d.ClosedFrames())
	}

	// Lost tracking decays one step per frame and floors at zero.
	for i := 9; i >= 0; i-- {
		r := d.Update(0, false)
		if r.ClosedFrames != i {
			t.Fatalf("decay: counter %d, want %d", r.ClosedFrames, i)
		}
	}
	r := d.Update(0, false)
	if r.ClosedFrames != 0 {
		t.Errorf("counter went below zero: %d", r.ClosedFrames)
	}
}

func TestUpdate_NoFaceKeepsAlarmLatched(t *testing.T) {
	// Losing the face mid-alarm must not silence the alert, even after
	// the counter decays all the way to zero.
	d := NewDetector(DefaultConfig())
	run(d, closedFrames(25, 0.10))
	if !d.AlarmOn() {
		t.Fatal("setup: alarm not latched")
	}

	for i := 0; i < 40; i++ {
		r := d.Update(0, false)
		if r.Transition != NoTransition {
			t.Fatalf("no-face frame %d emitted %v", i, r.Transition)
		}
		if r.Status != Drowsy {
			t.Fatalf("no-face frame %d: alarm unlatched", i)
		}
	}
}

func TestUpdate_ZeroEARTreatedAsSignalLoss(t *testing.T) {
	// An estimator fault (EAR 0.0 with a face present) must follow the
	// decay path, not count toward the alarm.
	d := NewDetector(DefaultConfig())

	for i := 0; i < 100; i++ {
		r := d.Update(0, true)
		if r.ClosedFrames != 0 {
			t.Fatalf("frame %d: zero EAR incremented counter to %d", i, r.ClosedFrames)
		}
		if r.Transition == TurnedOn {
			t.Fatalf("frame %d: zero EAR raised the alarm", i)
		}
	}

	// And it must not pollute the smoothing window.
	r := d.Update(0.30, true)
	if math.Abs(r.SmoothedEAR-0.30) > 1e-9 {
		t.Errorf("window polluted by faulty samples: smoothed %v, want 0.30", r.SmoothedEAR)
	}
}

func TestUpdate_SmoothingWindow(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDetector(cfg)

	samples := []float64{0.30, 0.28, 0.26, 0.24, 0.30, 0.30}
	var results []Result
	for _, s := range samples {
		results = append(results, d.Update(s, true))
	}

	// Partial window: mean of what has arrived so far.
	if got, want := results[1].SmoothedEAR, (0.30+0.28)/2; math.Abs(got-want) > 1e-9 {
		t.Errorf("partial window mean: got %v, want %v", got, want)
	}
	// Full window evicts the oldest sample (FIFO).
	if got, want := results[5].SmoothedEAR, (0.28+0.26+0.24+0.30+0.30)/5; math.Abs(got-want) > 1e-9 {
		t.Errorf("full window mean: got %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, closedFrames(30, 0.10))
	if !d.AlarmOn() || d.ClosedFrames() == 0 {
		t.Fatal("setup: expected latched alarm with nonzero counter")
	}

	d.Reset()
	if d.AlarmOn() {
		t.Error("alarm latched after reset")
	}
	if d.ClosedFrames() != 0 {
		t.Errorf("counter after reset: %d", d.ClosedFrames())
	}
	if len(d.window) != 0 {
		t.Errorf("window not empty after reset: %v", d.window)
	}

	// Idempotent: a second reset changes nothing.
	d.Reset()
	if d.AlarmOn() || d.ClosedFrames() != 0 || len(d.window) != 0 {
		t.Error("second reset changed state")
	}

	// After reset the very first sample dominates the window again.
	r := d.Update(0.30, true)
	if math.Abs(r.SmoothedEAR-0.30) > 1e-9 {
		t.Errorf("smoothed after reset: got %v, want 0.30", r.SmoothedEAR)
	}
}

func TestStatusAndTransitionStrings(t *testing.T) {
	if Awake.String() != "Awake" || Drowsy.String() != "Drowsy" {
		t.Error("status strings wrong")
	}
	if NoTransition.String() != "None" || TurnedOn.String() != "TurnedOn" || TurnedOff.String() != "TurnedOff" {
		t.Error("transition strings wrong")
	}
}
