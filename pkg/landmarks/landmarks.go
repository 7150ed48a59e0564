// Package landmarks defines the face-mesh landmark model used for eye tracking.
// Index constants follow the MediaPipe Face Mesh topology.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
package landmarks

// Point is a single face landmark in normalized image coordinates.
// X and Y are in [0,1]; Z is depth relative to the head center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EyePointCount is the number of landmarks describing one eye:
// 8 on the upper lid and 8 on the lower lid.
const (
	LidPointCount = 8
	EyePointCount = 2 * LidPointCount
)

// MeshPointCount is the size of the full face mesh with refined eye landmarks.
const MeshPointCount = 478

// Eye landmark index tables into the full face mesh, ordered outer to inner.
// The order is load-bearing: the first 8 indices of each table are the upper
// lid and the last 8 the lower lid, and the estimator depends on that split.
var (
	LeftEyeIndices = [EyePointCount]int{
		362, 382, 381, 380, 374, 373, 390, 249,
		263, 466, 388, 387, 386, 385, 384, 398,
	}
	RightEyeIndices = [EyePointCount]int{
		33, 7, 163, 144, 145, 153, 154, 155,
		133, 173, 157, 158, 159, 160, 161, 246,
	}
)

// EyeSet holds the 16 landmarks of one eye, split into upper and lower lid.
// A zero EyeSet is invalid; construct through ExtractEye or NewEyeSet.
type EyeSet struct {
	Upper [LidPointCount]Point
	Lower [LidPointCount]Point
	valid bool
}

// Valid reports whether the set was built from a complete eye detection.
func (e EyeSet) Valid() bool {
	return e.valid
}

// Points returns all 16 landmarks, upper lid first.
func (e EyeSet) Points() []Point {
	pts := make([]Point, 0, EyePointCount)
	pts = append(pts, e.Upper[:]...)
	pts = append(pts, e.Lower[:]...)
	return pts
}

// NewEyeSet builds an EyeSet from a flat slice of exactly 16 points,
// upper lid first. Any other length yields an invalid set, which the
// estimator treats as a detector failure for that eye.
func NewEyeSet(pts []Point) EyeSet {
	if len(pts) != EyePointCount {
		return EyeSet{}
	}
	var e EyeSet
	copy(e.Upper[:], pts[:LidPointCount])
	copy(e.Lower[:], pts[LidPointCount:])
	e.valid = true
	return e
}

// ExtractEye picks one eye's landmarks out of a full face mesh using the
// given index table. A mesh too short for any index yields an invalid set.
func ExtractEye(mesh []Point, indices [EyePointCount]int) EyeSet {
	pts := make([]Point, 0, EyePointCount)
	for _, idx := range indices {
		if idx < 0 || idx >= len(mesh) {
			return EyeSet{}
		}
		pts = append(pts, mesh[idx])
	}
	return NewEyeSet(pts)
}

// LeftEye extracts the left eye landmark set from a full face mesh.
func LeftEye(mesh []Point) EyeSet {
	return ExtractEye(mesh, LeftEyeIndices)
}

// RightEye extracts the right eye landmark set from a full face mesh.
func RightEye(mesh []Point) EyeSet {
	return ExtractEye(mesh, RightEyeIndices)
}
