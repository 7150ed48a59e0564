// Package vision provides face observation backends for the monitor.
// The fine-grained landmark model runs outside this process; this
// package only defines the boundary and the clients that talk to it.
package vision

import (
	"gocv.io/x/gocv"

	"github.com/sleepdriver/go-sleepdriver/pkg/ear"
	"github.com/sleepdriver/go-sleepdriver/pkg/landmarks"
)

// Observation is what a detector reports for one frame.
type Observation struct {
	// FaceDetected reports whether a face was tracked this frame.
	// When false the other fields are meaningless.
	FaceDetected bool

	// Mesh holds the full face landmark set when the backend produces
	// fine landmarks. Nil on the coarse path.
	Mesh []landmarks.Point

	// EyeBoxes holds detected eye bounding boxes in pixels, used for
	// the coarse EAR approximation when Mesh is nil.
	EyeBoxes []ear.Box
}

// HasMesh reports whether fine landmarks are available.
func (o Observation) HasMesh() bool {
	return len(o.Mesh) > 0
}

// Detector is the interface for face observation backends
type Detector interface {
	// Detect analyzes a video frame and reports the face observation.
	// A frame with no face is not an error.
	Detect(frame *gocv.Mat) (Observation, error)

	// Close releases resources
	Close() error
}

// CombinedEAR turns an observation into the combined eye aspect ratio.
// Preference order: fine landmarks, then eye boxes. Returns 0.0 when
// the observation carries no usable eye geometry; callers treat that as
// "no reading", not as closed eyes.
func CombinedEAR(obs Observation) float64 {
	if !obs.FaceDetected {
		return 0.0
	}

	if obs.HasMesh() {
		left := ear.Estimate(landmarks.LeftEye(obs.Mesh))
		right := ear.Estimate(landmarks.RightEye(obs.Mesh))
		return ear.Combine(left, right)
	}

	if len(obs.EyeBoxes) >= 2 {
		return ear.EstimateFromBoxes(obs.EyeBoxes[0], obs.EyeBoxes[1])
	}

	return 0.0
}
