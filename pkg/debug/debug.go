// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging and the on-frame debug overlay
// (closed-frame counter, no-face notices) are active. Read once per
// frame by the rendering side; the decision engine never consults it.
var Enabled bool

// Frames controls very verbose per-frame logs (EAR values, window
// contents). Use --debug-frames to enable.
var Frames bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// FrameLog prints a message only if per-frame debug mode is enabled
func FrameLog(format string, args ...interface{}) {
	if Frames {
		fmt.Printf(format, args...)
	}
}
