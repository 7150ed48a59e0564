// Package monitor runs the frame-synchronous detection session: camera
// frames in, drowsiness status and alarm transitions out. Each frame is
// fully processed before the next is read, so the smoothing window and
// closed-frame counter always see frames in arrival order.
package monitor

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/sleepdriver/go-sleepdriver/internal/log"
	"github.com/sleepdriver/go-sleepdriver/pkg/alarm"
	"github.com/sleepdriver/go-sleepdriver/pkg/drowsy"
	"github.com/sleepdriver/go-sleepdriver/pkg/eventlog"
	"github.com/sleepdriver/go-sleepdriver/pkg/overlay"
	"github.com/sleepdriver/go-sleepdriver/pkg/vision"
)

// Snapshot is the per-frame state published to observers (dashboard,
// logs). It is a value copy; observers cannot mutate session state.
type Snapshot struct {
	Frame          int       `json:"frame"`
	Status         string    `json:"status"`
	SmoothedEAR    float64   `json:"smoothed_ear"`
	ClosedFrames   int       `json:"closed_frames"`
	RequiredFrames int       `json:"required_frames"`
	FaceDetected   bool      `json:"face_detected"`
	AlarmOn        bool      `json:"alarm_on"`
	LookingAway    bool      `json:"looking_away"`
	At             time.Time `json:"at"`
}

// FrameSource delivers frames at the processing resolution.
// *camera.Capture satisfies this; tests substitute fakes.
type FrameSource interface {
	Read(dst *gocv.Mat) error
	Close() error
}

// Config holds session-level options.
type Config struct {
	Drowsy drowsy.Config

	// Debug enables the on-frame debug overlay.
	Debug bool

	// FrameQuality is the JPEG quality for the dashboard frame stream.
	FrameQuality int

	// FrameWidth/FrameHeight describe the processing resolution, used
	// for the looking-away heuristic.
	FrameWidth  int
	FrameHeight int
}

// Session owns one detection run. Construct with NewSession, then Run.
// All detection state is internal to the session; two sessions never
// share counters or windows.
type Session struct {
	cfg      Config
	source   FrameSource
	detector vision.Detector
	engine   *drowsy.Detector

	// Optional sinks; nil disables each.
	Alarm   *alarm.Player
	TextLog *eventlog.Writer
	Store   *eventlog.Store

	// Callbacks for the dashboard. Invoked from the session goroutine;
	// they must not block.
	OnSnapshot   func(Snapshot)
	OnFrame      func(jpeg []byte)
	OnTransition func(t drowsy.Transition, snap Snapshot)

	commands chan func()
	frameNum int
}

// NewSession wires a session from its collaborators.
func NewSession(cfg Config, source FrameSource, detector vision.Detector) *Session {
	return &Session{
		cfg:      cfg,
		source:   source,
		detector: detector,
		engine:   drowsy.NewDetector(cfg.Drowsy),
		commands: make(chan func(), 4),
	}
}

// Reset schedules an administrative reset of all temporal state. It is
// applied between frames, never mid-update, and emits no transition
// event. Safe to call from any goroutine.
func (s *Session) Reset() {
	select {
	case s.commands <- s.applyReset:
	default:
		// A reset is already queued; one is enough.
	}
}

func (s *Session) applyReset() {
	s.engine.Reset()
	if s.Alarm != nil {
		s.Alarm.Stop()
	}
	log.Info("detection state reset")
}

// Run processes frames until the context is cancelled or the frame
// source fails. Cancellation is checked between frames only; a per-frame
// update always completes once started.
func (s *Session) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()

	log.Info("detection session started",
		"threshold", s.cfg.Drowsy.EARThreshold,
		"required_frames", s.cfg.Drowsy.RequiredFrames)

	for {
		select {
		case <-ctx.Done():
			if s.Alarm != nil {
				s.Alarm.Stop()
			}
			log.Info("detection session stopped", "frames", s.frameNum)
			return ctx.Err()
		case cmd := <-s.commands:
			cmd()
		default:
		}

		if err := s.source.Read(&frame); err != nil {
			return fmt.Errorf("frame source: %w", err)
		}

		obs, err := s.detector.Detect(&frame)
		if err != nil {
			// A detector fault is tracking loss, not closure.
			log.Warn("detection failed", "error", err)
			obs = vision.Observation{}
		}

		snap := s.process(obs, time.Now())
		s.render(&frame, snap)
	}
}

// process advances the state machine for one observation and fans out
// transitions to the sinks. Split from Run so the decision plumbing is
// testable without camera frames.
func (s *Session) process(obs vision.Observation, at time.Time) Snapshot {
	s.frameNum++

	combined := vision.CombinedEAR(obs)
	res := s.engine.Update(combined, obs.FaceDetected)

	snap := Snapshot{
		Frame:          s.frameNum,
		Status:         res.Status.String(),
		SmoothedEAR:    res.SmoothedEAR,
		ClosedFrames:   res.ClosedFrames,
		RequiredFrames: s.cfg.Drowsy.RequiredFrames,
		FaceDetected:   obs.FaceDetected,
		AlarmOn:        res.Status == drowsy.Drowsy,
		LookingAway:    vision.LookingAway(obs.EyeBoxes, s.cfg.FrameWidth, s.cfg.FrameHeight),
		At:             at,
	}

	switch res.Transition {
	case drowsy.TurnedOn:
		log.Warn("drowsiness detected",
			"frame", s.frameNum, "smoothed_ear", res.SmoothedEAR)
		if s.Alarm != nil {
			s.Alarm.Play()
		}
		if s.TextLog != nil {
			s.TextLog.Record(at)
		}
		if s.Store != nil {
			if err := s.Store.RecordEvent(at, res.SmoothedEAR); err != nil {
				log.Error("event store write failed", "error", err)
			}
		}
	case drowsy.TurnedOff:
		log.Info("driver recovered", "frame", s.frameNum)
		if s.Alarm != nil {
			s.Alarm.Stop()
		}
	}

	if res.Transition != drowsy.NoTransition && s.OnTransition != nil {
		s.OnTransition(res.Transition, snap)
	}
	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}
	return snap
}

// render draws the overlay and publishes the annotated frame.
func (s *Session) render(frame *gocv.Mat, snap Snapshot) {
	overlay.Draw(frame, overlay.Info{
		Status:         snap.Status,
		SmoothedEAR:    snap.SmoothedEAR,
		ClosedFrames:   snap.ClosedFrames,
		RequiredFrames: snap.RequiredFrames,
		FaceDetected:   snap.FaceDetected,
		AlarmOn:        snap.AlarmOn,
		LookingAway:    snap.LookingAway,
		Timestamp:      snap.At,
		Debug:          s.cfg.Debug,
	})

	if s.OnFrame == nil {
		return
	}
	quality := s.cfg.FrameQuality
	if quality <= 0 {
		quality = 70
	}
	jpeg, err := overlay.EncodeJPEG(frame, quality)
	if err != nil {
		log.Debug("frame encode failed", "error", err)
		return
	}
	s.OnFrame(jpeg)
}
