// Package drowsy implements the drowsiness decision engine: a smoothed
// EAR signal, a debounced closed-eye frame counter, and a hysteretic
// alarm latch. One Detector instance tracks one face over one session;
// all state is explicit, so independent sessions and replayed frame
// sequences behave identically.
package drowsy

// Status is the per-frame drowsiness classification.
type Status int

const (
	Awake Status = iota
	Drowsy
)

// String returns the display name for the status.
func (s Status) String() string {
	if s == Drowsy {
		return "Drowsy"
	}
	return "Awake"
}

// Transition marks an alarm state change produced by a single update.
type Transition int

const (
	// NoTransition means the alarm state did not change this frame.
	NoTransition Transition = iota
	// TurnedOn fires once per drowsiness episode, on the frame where the
	// closed counter first reaches the required run length.
	TurnedOn
	// TurnedOff fires on the frame where the counter decays back to zero
	// while the alarm is latched.
	TurnedOff
)

// String returns the event name for the transition.
func (t Transition) String() string {
	switch t {
	case TurnedOn:
		return "TurnedOn"
	case TurnedOff:
		return "TurnedOff"
	default:
		return "None"
	}
}

// Result is the outcome of processing one frame.
type Result struct {
	Status       Status
	Transition   Transition
	SmoothedEAR  float64
	ClosedFrames int
}

// Detector is the drowsiness state machine. It is not safe for
// concurrent use; frames must be fed strictly in arrival order.
type Detector struct {
	cfg Config

	window  []float64
	counter int
	alarmOn bool
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		window: make([]float64, 0, cfg.WindowSize),
	}
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Update processes one frame and returns the resulting status plus any
// alarm transition. combinedEAR is the two-eye average from the
// estimator; faceDetected reports whether the detector tracked a face
// this frame.
//
// A non-positive combinedEAR with a face present means the estimator had
// no usable geometry (wrong landmark count, zero eye width). That case
// follows the same decay path as a lost face instead of counting as
// closure, so detector glitches cannot raise the alarm on their own.
func (d *Detector) Update(combinedEAR float64, faceDetected bool) Result {
	if !faceDetected || combinedEAR <= 0 {
		// Tracking loss: decay one step rather than resetting, so a
		// single dropped frame does not collapse an episode in
		// progress. The alarm stays latched until the face returns and
		// the eyes are verifiably open.
		if d.counter > 0 {
			d.counter--
		}
		return d.result(NoTransition)
	}

	d.push(combinedEAR)
	smoothed := d.smoothed()

	transition := NoTransition
	switch {
	case smoothed < d.cfg.EARThreshold:
		d.counter++
		if d.counter >= d.cfg.RequiredFrames && !d.alarmOn {
			d.alarmOn = true
			transition = TurnedOn
		}

	case smoothed > d.cfg.EARThreshold+d.cfg.HysteresisMargin:
		if d.counter > 0 {
			d.counter--
		}
		if d.counter == 0 && d.alarmOn {
			d.alarmOn = false
			transition = TurnedOff
		}

	default:
		// Inside the hysteresis band: hold. The counter only decays
		// once the signal clears the margin.
	}

	return d.result(transition)
}

// Reset unconditionally clears all temporal state: window emptied,
// counter zeroed, alarm unlatched. No transition event is emitted; this
// is an administrative override, not an observed change.
func (d *Detector) Reset() {
	d.window = d.window[:0]
	d.counter = 0
	d.alarmOn = false
}

// AlarmOn reports whether the alarm latch is currently set.
func (d *Detector) AlarmOn() bool {
	return d.alarmOn
}

// ClosedFrames returns the current consecutive-closed frame count.
func (d *Detector) ClosedFrames() int {
	return d.counter
}

// push appends a sample to the smoothing window, evicting the oldest
// once capacity is reached.
func (d *Detector) push(sample float64) {
	if len(d.window) >= d.cfg.WindowSize {
		copy(d.window, d.window[1:])
		d.window = d.window[:len(d.window)-1]
	}
	d.window = append(d.window, sample)
}

// smoothed returns the arithmetic mean of the window contents.
func (d *Detector) smoothed() float64 {
	if len(d.window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range d.window {
		sum += v
	}
	return sum / float64(len(d.window))
}

func (d *Detector) result(t Transition) Result {
	status := Awake
	if d.alarmOn {
		status = Drowsy
	}
	return Result{
		Status:       status,
		Transition:   t,
		SmoothedEAR:  d.smoothed(),
		ClosedFrames: d.counter,
	}
}
