package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sleepdriver/go-sleepdriver/pkg/drowsy"
	"github.com/sleepdriver/go-sleepdriver/pkg/eventlog"
	"github.com/sleepdriver/go-sleepdriver/pkg/landmarks"
	"github.com/sleepdriver/go-sleepdriver/pkg/vision"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	cfg := Config{
		Drowsy:      drowsy.DefaultConfig(),
		FrameWidth:  640,
		FrameHeight: 480,
	}
	// No frame source or vision backend: these tests drive process()
	// directly with scripted observations.
	return NewSession(cfg, nil, nil)
}

// closedEyesMesh is a full face mesh whose eyes estimate well below the
// default threshold.
func closedEyesMesh() []landmarks.Point {
	mesh := make([]landmarks.Point, landmarks.MeshPointCount)
	for _, table := range [][landmarks.EyePointCount]int{
		landmarks.LeftEyeIndices, landmarks.RightEyeIndices,
	} {
		for i := 0; i < landmarks.LidPointCount; i++ {
			x := float64(i) * 0.02
			mesh[table[i]] = landmarks.Point{X: x, Y: 0.495}
			mesh[table[i+landmarks.LidPointCount]] = landmarks.Point{X: x, Y: 0.505}
		}
	}
	return mesh
}

func TestSession_ProcessRaisesAlarm(t *testing.T) {
	s := testSession(t)

	var transitions []drowsy.Transition
	s.OnTransition = func(tr drowsy.Transition, _ Snapshot) {
		transitions = append(transitions, tr)
	}

	obs := vision.Observation{FaceDetected: true, Mesh: closedEyesMesh()}
	var last Snapshot
	for i := 0; i < 30; i++ {
		last = s.process(obs, time.Now())
	}

	if last.Status != "Drowsy" || !last.AlarmOn {
		t.Errorf("final snapshot: %+v, want Drowsy with alarm on", last)
	}
	if last.Frame != 30 {
		t.Errorf("frame counter: got %d, want 30", last.Frame)
	}
	if len(transitions) != 1 || transitions[0] != drowsy.TurnedOn {
		t.Errorf("transitions: got %v, want exactly one TurnedOn", transitions)
	}
}

func TestSession_EventSinksOnTurnedOn(t *testing.T) {
	s := testSession(t)

	logPath := filepath.Join(t.TempDir(), "events.txt")
	s.TextLog = eventlog.NewWriter(logPath)

	store, err := eventlog.OpenStore(":memory:", 0.22, 25)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	s.Store = store

	obs := vision.Observation{FaceDetected: true, Mesh: closedEyesMesh()}
	for i := 0; i < 30; i++ {
		s.process(obs, time.Now())
	}

	events, err := store.RecentEvents(10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("store events: got %d, want 1 (one per episode)", len(events))
	}
}

func TestSession_SnapshotSequence(t *testing.T) {
	s := testSession(t)

	var snaps []Snapshot
	s.OnSnapshot = func(snap Snapshot) { snaps = append(snaps, snap) }

	s.process(vision.Observation{}, time.Now())
	s.process(vision.Observation{FaceDetected: true, Mesh: closedEyesMesh()}, time.Now())

	if len(snaps) != 2 {
		t.Fatalf("snapshot count: got %d, want 2", len(snaps))
	}
	if snaps[0].FaceDetected {
		t.Error("first snapshot should report no face")
	}
	if snaps[0].Frame != 1 || snaps[1].Frame != 2 {
		t.Errorf("frame numbering: %d, %d", snaps[0].Frame, snaps[1].Frame)
	}
	if !snaps[1].FaceDetected {
		t.Error("second snapshot should report a face")
	}
	if snaps[1].SmoothedEAR <= 0 {
		t.Error("second snapshot should carry a positive smoothed EAR")
	}
}

func TestSession_ResetClearsState(t *testing.T) {
	s := testSession(t)

	obs := vision.Observation{FaceDetected: true, Mesh: closedEyesMesh()}
	for i := 0; i < 30; i++ {
		s.process(obs, time.Now())
	}

	s.Reset()
	// The queued command runs between frames; apply it the way the
	// loop would.
	select {
	case cmd := <-s.commands:
		cmd()
	default:
		t.Fatal("Reset queued no command")
	}

	snap := s.process(vision.Observation{FaceDetected: true, Mesh: closedEyesMesh()}, time.Now())
	if snap.ClosedFrames != 1 {
		t.Errorf("counter after reset: got %d, want 1", snap.ClosedFrames)
	}
	if snap.AlarmOn {
		t.Error("alarm latched after reset")
	}
	// Frame numbering is session lifetime, not reset-scoped.
	if snap.Frame != 31 {
		t.Errorf("frame number after reset: got %d, want 31", snap.Frame)
	}
}

func TestSession_ResetQueueCoalesces(t *testing.T) {
	s := testSession(t)
	for i := 0; i < 20; i++ {
		s.Reset()
	}
	// Must not block or panic regardless of how often the dashboard
	// button is mashed between frames.
	drained := 0
	for {
		select {
		case cmd := <-s.commands:
			cmd()
			drained++
		default:
			if drained == 0 {
				t.Error("no reset queued")
			}
			return
		}
	}
}

func TestSession_DetectorFaultIsNotClosure(t *testing.T) {
	s := testSession(t)

	// A face with no usable eye geometry must not build toward an
	// alarm.
	obs := vision.Observation{FaceDetected: true}
	for i := 0; i < 100; i++ {
		snap := s.process(obs, time.Now())
		if snap.ClosedFrames != 0 {
			t.Fatalf("frame %d: counter %d from faulty observations", i, snap.ClosedFrames)
		}
		if snap.AlarmOn {
			t.Fatalf("frame %d: alarm from faulty observations", i)
		}
	}
}
