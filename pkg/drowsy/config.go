package drowsy

// Config holds all tunable parameters for drowsiness detection
type Config struct {
	// EARThreshold is the smoothed EAR below which eyes count as closed.
	// Lower = less sensitive (only fully closed eyes trigger).
	EARThreshold float64

	// RequiredFrames is how many consecutive closed frames trigger the
	// alarm. At 30fps, 25 frames is just under a second.
	RequiredFrames int

	// HysteresisMargin is how far above the threshold the smoothed EAR
	// must rise before the closed counter is allowed to decay. Prevents
	// flicker when the signal sits right at the threshold.
	HysteresisMargin float64

	// WindowSize is the capacity of the EAR smoothing window.
	WindowSize int
}

// DefaultConfig returns the recommended detection parameters
func DefaultConfig() Config {
	return Config{
		EARThreshold:     0.22,
		RequiredFrames:   25,
		HysteresisMargin: 0.02,
		WindowSize:       5,
	}
}

// SensitiveConfig returns parameters tuned for earlier alerts at the
// cost of more false positives. Matches the CLI tuning used in road
// testing (threshold 0.17, 20 frames).
func SensitiveConfig() Config {
	cfg := DefaultConfig()
	cfg.EARThreshold = 0.17
	cfg.RequiredFrames = 20
	return cfg
}

// Validate returns a list of problems with the configuration.
// An empty list means the config is usable.
func (c Config) Validate() []string {
	var errs []string
	if c.EARThreshold <= 0 || c.EARThreshold >= 1 {
		errs = append(errs, "EARThreshold must be in (0, 1)")
	}
	if c.RequiredFrames < 1 {
		errs = append(errs, "RequiredFrames must be at least 1")
	}
	if c.HysteresisMargin < 0 {
		errs = append(errs, "HysteresisMargin must not be negative")
	}
	if c.WindowSize < 1 {
		errs = append(errs, "WindowSize must be at least 1")
	}
	return errs
}
