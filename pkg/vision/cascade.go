package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"gocv.io/x/gocv"

	"github.com/sleepdriver/go-sleepdriver/pkg/debug"
	"github.com/sleepdriver/go-sleepdriver/pkg/ear"
)

// Haar cascade model filenames, as shipped with OpenCV.
const (
	faceCascadeFile = "haarcascade_frontalface_default.xml"
	eyeCascadeFile  = "haarcascade_eye.xml"
)

// CascadeDetector finds face and eye bounding boxes with OpenCV Haar
// cascades. It is the fallback observation backend when no landmark
// sidecar is running: no fine landmarks, so downstream EAR estimation
// uses the coarse bounding-box path.
type CascadeDetector struct {
	face gocv.CascadeClassifier
	eyes gocv.CascadeClassifier
}

// NewCascadeDetector loads the face and eye cascades from modelDir.
func NewCascadeDetector(modelDir string) (*CascadeDetector, error) {
	facePath := filepath.Join(modelDir, faceCascadeFile)
	eyePath := filepath.Join(modelDir, eyeCascadeFile)
	for _, p := range []string{facePath, eyePath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("cascade model not found: %s", p)
		}
	}

	d := &CascadeDetector{
		face: gocv.NewCascadeClassifier(),
		eyes: gocv.NewCascadeClassifier(),
	}
	if !d.face.Load(facePath) {
		d.Close()
		return nil, fmt.Errorf("load face cascade: %s", facePath)
	}
	if !d.eyes.Load(eyePath) {
		d.Close()
		return nil, fmt.Errorf("load eye cascade: %s", eyePath)
	}
	return d, nil
}

// Detect finds the largest face in the frame and the eyes inside it.
func (d *CascadeDetector) Detect(frame *gocv.Mat) (Observation, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)

	faces := d.face.DetectMultiScale(gray)
	if len(faces) == 0 {
		return Observation{}, nil
	}

	// Largest face wins; the driver is the closest one to the camera.
	sort.Slice(faces, func(i, j int) bool {
		return faces[i].Dx()*faces[i].Dy() > faces[j].Dx()*faces[j].Dy()
	})
	faceRect := faces[0]

	// Eyes sit in the upper half of the face; restricting the search
	// region cuts false hits from nostrils and mouth corners.
	eyeRegion := image.Rect(
		faceRect.Min.X, faceRect.Min.Y,
		faceRect.Max.X, faceRect.Min.Y+faceRect.Dy()/2,
	)
	roi := gray.Region(eyeRegion)
	defer roi.Close()

	eyeRects := d.eyes.DetectMultiScale(roi)
	boxes := make([]ear.Box, 0, len(eyeRects))
	for _, r := range eyeRects {
		boxes = append(boxes, ear.Box{
			X: eyeRegion.Min.X + r.Min.X,
			Y: eyeRegion.Min.Y + r.Min.Y,
			W: r.Dx(),
			H: r.Dy(),
		})
	}

	// Left-to-right order keeps box pairing stable across frames.
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })

	debug.FrameLog("cascade: face %v, %d eye(s)\n", faceRect, len(boxes))
	if debug.Frames {
		for i, b := range boxes {
			if i >= 2 {
				break
			}
			eyeROI := gray.Region(image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H))
			score := EyeClosureScore(eyeROI)
			eyeROI.Close()
			debug.FrameLog("cascade: eye %d closure score %.3f\n", i, score)
		}
	}

	return Observation{
		FaceDetected: true,
		EyeBoxes:     boxes,
	}, nil
}

// Close releases the cascade classifiers.
func (d *CascadeDetector) Close() error {
	d.face.Close()
	d.eyes.Close()
	return nil
}
