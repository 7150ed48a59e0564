// Package overlay renders monitor state onto video frames for display
// and for the dashboard frame stream. Purely a presentation concern;
// nothing here feeds back into detection.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// Info is the per-frame state drawn onto the image.
type Info struct {
	Status         string
	SmoothedEAR    float64
	ClosedFrames   int
	RequiredFrames int
	FaceDetected   bool
	AlarmOn        bool
	LookingAway    bool
	Timestamp      time.Time

	// Debug enables the counter readout and no-face notices.
	Debug bool
}

var (
	textColor  = color.RGBA{R: 255, A: 255}
	alertColor = color.RGBA{R: 255, A: 255}
	warnColor  = color.RGBA{R: 255, G: 165, A: 255}
)

// Draw paints the status readouts onto the frame in place.
func Draw(frame *gocv.Mat, info Info) {
	gocv.PutText(frame, fmt.Sprintf("EAR: %.2f", info.SmoothedEAR),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, textColor, 2)

	gocv.PutText(frame, "Status: "+info.Status,
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.7, textColor, 2)

	if info.AlarmOn {
		gocv.PutText(frame, "WAKE UP!",
			image.Pt(10, frame.Rows()-10), gocv.FontHersheySimplex, 0.7, alertColor, 2)
	}

	if info.LookingAway {
		gocv.PutText(frame, "Eyes on the road",
			image.Pt(10, 90), gocv.FontHersheySimplex, 0.7, warnColor, 2)
	}

	if info.Debug {
		gocv.PutText(frame,
			fmt.Sprintf("Closed frames: %d/%d", info.ClosedFrames, info.RequiredFrames),
			image.Pt(10, 120), gocv.FontHersheySimplex, 0.7, alertColor, 2)
		if !info.FaceDetected {
			gocv.PutText(frame, "No face detected",
				image.Pt(10, 150), gocv.FontHersheySimplex, 0.7, alertColor, 2)
		}
	}

	stamp := info.Timestamp.Format("Monday 02 January 2006 03:04:05PM")
	gocv.PutText(frame, stamp,
		image.Pt(10, frame.Rows()-40), gocv.FontHersheySimplex, 0.4, alertColor, 1)
}

// EncodeJPEG renders the frame to JPEG bytes for the dashboard stream.
func EncodeJPEG(frame *gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame,
		[]int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
