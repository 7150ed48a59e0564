package vision

import "github.com/sleepdriver/go-sleepdriver/pkg/ear"

// Expected eye position band within the frame for a forward gaze.
// Eyes outside the central 60% horizontally, or outside the upper
// portion vertically, suggest the driver is looking away.
const (
	gazeMarginX   = 0.2
	gazeTopBand   = 0.15
	gazeLowerBand = 0.6
)

// LookingAway reports whether the detected eyes sit far enough from the
// frame center to suggest the driver is not facing the road. It is a
// distraction hint for logging and display, not an alarm input. Needs
// at least two eyes to decide; fewer returns false.
func LookingAway(eyes []ear.Box, frameWidth, frameHeight int) bool {
	if len(eyes) < 2 || frameWidth <= 0 || frameHeight <= 0 {
		return false
	}

	for _, e := range eyes[:2] {
		cx := (float64(e.X) + float64(e.W)/2) / float64(frameWidth)
		cy := (float64(e.Y) + float64(e.H)/2) / float64(frameHeight)

		if cx < gazeMarginX || cx > 1-gazeMarginX {
			return true
		}
		if cy < gazeTopBand || cy > gazeLowerBand {
			return true
		}
	}
	return false
}
