package vision

import "gocv.io/x/gocv"

const closureHistBins = 256

// EyeClosureScore estimates how likely an eye region is closed from its
// intensity distribution. Closed eyes show more dark pixels (lashes,
// lid shadow) than open ones, so after contrast equalization the
// histogram is scored with weights that favor the dark end. Returns a
// value in [0.1, 1.0]; higher means more likely closed. This is a
// supplementary signal for diagnostics, not an alarm input.
func EyeClosureScore(eyeGray gocv.Mat) float64 {
	if eyeGray.Empty() {
		return 0
	}

	eq := gocv.NewMat()
	defer eq.Close()
	gocv.EqualizeHist(eyeGray, &eq)

	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CalcHist([]gocv.Mat{eq}, []int{0}, mask, &hist,
		[]int{closureHistBins}, []float64{0, closureHistBins}, false)

	counts := make([]float64, closureHistBins)
	for i := 0; i < closureHistBins; i++ {
		counts[i] = float64(hist.GetFloatAt(i, 0))
	}
	return closureScore(counts)
}

// closureScore normalizes an intensity histogram and sums it against
// weights falling linearly from 1.0 at the darkest bin to 0.1 at the
// brightest.
func closureScore(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return 0
	}

	n := len(counts)
	score := 0.0
	for i, c := range counts {
		w := 1.0
		if n > 1 {
			w = 1.0 - 0.9*float64(i)/float64(n-1)
		}
		score += (c / total) * w
	}
	return score
}
