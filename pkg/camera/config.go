// Package camera wraps webcam capture for the drowsiness monitor.
// Frames come out resized to a fixed processing resolution so detection
// parameters behave the same across camera hardware.
package camera

import "time"

// Config holds all camera capture parameters.
type Config struct {
	// DeviceIndex selects the capture device (0 = built-in webcam).
	DeviceIndex int `json:"device_index"`

	// Width and Height are the processing resolution. Captured frames
	// are resized to this before detection.
	Width  int `json:"width"`
	Height int `json:"height"`

	// WarmUp is how long to wait after opening the device before the
	// first read, letting the sensor settle exposure.
	WarmUp time.Duration `json:"warm_up"`
}

// DefaultConfig returns the standard processing resolution.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: 0,
		Width:       640,
		Height:      480,
		WarmUp:      time.Second,
	}
}

// Validate returns a list of problems with the configuration.
// An empty list means the config is usable.
func (c Config) Validate() []string {
	var errs []string
	if c.DeviceIndex < 0 {
		errs = append(errs, "DeviceIndex must not be negative")
	}
	if c.Width < 160 || c.Width > 3840 {
		errs = append(errs, "Width must be 160-3840")
	}
	if c.Height < 120 || c.Height > 2160 {
		errs = append(errs, "Height must be 120-2160")
	}
	if c.WarmUp < 0 {
		errs = append(errs, "WarmUp must not be negative")
	}
	return errs
}
