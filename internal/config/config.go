// Package config provides environment-based configuration helpers.
// Command-line flags take precedence over these; the env vars exist so
// deployments can set site defaults without wrapper scripts.
package config

import (
	"os"
	"strconv"
)

// Defaults for camera capture and alerting.
const (
	DefaultCameraIndex = 0
	DefaultFrameWidth  = 640
	DefaultFrameHeight = 480
	DefaultAlarmSound  = "alarm.wav"
	DefaultAlarmVolume = 0.9
	DefaultLogFile     = "sleep_detection_log.txt"
)

// CameraIndex returns the capture device index from SLEEPDRIVER_CAMERA.
func CameraIndex() int {
	return envInt("SLEEPDRIVER_CAMERA", DefaultCameraIndex)
}

// AlarmSound returns the alert sound path from SLEEPDRIVER_ALARM_SOUND.
func AlarmSound() string {
	return envString("SLEEPDRIVER_ALARM_SOUND", DefaultAlarmSound)
}

// AlarmVolume returns the alert volume (0.0-1.0) from SLEEPDRIVER_ALARM_VOLUME.
func AlarmVolume() float64 {
	return envFloat("SLEEPDRIVER_ALARM_VOLUME", DefaultAlarmVolume)
}

// LogFile returns the event log path from SLEEPDRIVER_LOG_FILE.
func LogFile() string {
	return envString("SLEEPDRIVER_LOG_FILE", DefaultLogFile)
}

// MeshURL returns the landmark sidecar URL from SLEEPDRIVER_MESH_URL.
// Empty means no sidecar is configured.
func MeshURL() string {
	return os.Getenv("SLEEPDRIVER_MESH_URL")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
