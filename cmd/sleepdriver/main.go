// SleepDriver - eye-closure drowsiness monitor
//
// Watches the camera for sustained eye closure and raises an audible
// alarm, with an optional web dashboard and event log.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sleepdriver/go-sleepdriver/internal/config"
	"github.com/sleepdriver/go-sleepdriver/internal/log"
	"github.com/sleepdriver/go-sleepdriver/pkg/alarm"
	"github.com/sleepdriver/go-sleepdriver/pkg/camera"
	"github.com/sleepdriver/go-sleepdriver/pkg/debug"
	"github.com/sleepdriver/go-sleepdriver/pkg/drowsy"
	"github.com/sleepdriver/go-sleepdriver/pkg/eventlog"
	"github.com/sleepdriver/go-sleepdriver/pkg/monitor"
	"github.com/sleepdriver/go-sleepdriver/pkg/vision"
	"github.com/sleepdriver/go-sleepdriver/pkg/web"
)

func main() {
	defaults := drowsy.DefaultConfig()

	earThreshold := flag.Float64("ear", defaults.EARThreshold,
		"eye aspect ratio threshold (lower = less sensitive)")
	frames := flag.Int("frames", defaults.RequiredFrames,
		"consecutive closed frames required to trigger the alarm")
	cameraIndex := flag.Int("camera", config.CameraIndex(),
		"camera device index")
	enableLog := flag.Bool("log", false,
		"append drowsiness events to the text log")
	dbPath := flag.String("db", "",
		"sqlite event store path (empty disables)")
	debugMode := flag.Bool("debug", false,
		"show debug overlay and verbose logs")
	debugFrames := flag.Bool("debug-frames", false,
		"log per-frame EAR values (very verbose)")
	silent := flag.Bool("silent", false,
		"disable the audio alarm")
	webPort := flag.String("web", "",
		"dashboard port (empty disables)")
	meshURL := flag.String("mesh", config.MeshURL(),
		"landmark sidecar URL (empty uses the Haar cascade fallback)")
	cascadeDir := flag.String("cascade-dir", "models",
		"directory with the Haar cascade XML files")
	logLevel := flag.String("log-level", "info",
		"log level: debug, info, warn, error")
	flag.Parse()

	if *debugMode {
		*logLevel = "debug"
	}
	log.Init(*logLevel)
	debug.Enabled = *debugMode
	debug.Frames = *debugFrames

	drowsyCfg := drowsy.Config{
		EARThreshold:     *earThreshold,
		RequiredFrames:   *frames,
		HysteresisMargin: defaults.HysteresisMargin,
		WindowSize:       defaults.WindowSize,
	}
	if errs := drowsyCfg.Validate(); len(errs) > 0 {
		log.Error("invalid detection parameters", "errors", errs)
		os.Exit(1)
	}

	camCfg := camera.DefaultConfig()
	camCfg.DeviceIndex = *cameraIndex

	log.Info("starting video stream", "camera", camCfg.DeviceIndex)
	capture, err := camera.Open(camCfg)
	if err != nil {
		log.Error("camera open failed", "error", err)
		os.Exit(1)
	}
	defer capture.Close()

	detector, err := openDetector(*meshURL, *cascadeDir)
	if err != nil {
		log.Error("detector setup failed", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	session := monitor.NewSession(monitor.Config{
		Drowsy:      drowsyCfg,
		Debug:       *debugMode,
		FrameWidth:  camCfg.Width,
		FrameHeight: camCfg.Height,
	}, capture, detector)

	session.Alarm = alarm.NewPlayer(config.AlarmSound(), config.AlarmVolume(), *silent)

	if *enableLog {
		session.TextLog = eventlog.NewWriter(config.LogFile())
	}

	var store *eventlog.Store
	if *dbPath != "" {
		store, err = eventlog.OpenStore(*dbPath, drowsyCfg.EARThreshold, drowsyCfg.RequiredFrames)
		if err != nil {
			log.Error("event store open failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		session.Store = store
		log.Info("event store opened", "path", *dbPath, "session", store.SessionID())
	}

	if *webPort != "" {
		server := web.NewServer(*webPort, store)
		server.OnReset = session.Reset
		session.OnSnapshot = server.PublishSnapshot
		session.OnFrame = server.PublishFrame
		server.StartAsync()
		defer server.Shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("session ended", "error", err)
		os.Exit(1)
	}
}

// openDetector picks the observation backend: the landmark sidecar when
// configured, otherwise the local Haar cascade fallback.
func openDetector(meshURL, cascadeDir string) (vision.Detector, error) {
	if meshURL != "" {
		log.Info("using landmark sidecar", "url", meshURL)
		return vision.NewMeshClient(meshURL)
	}
	log.Info("using cascade fallback", "dir", cascadeDir)
	return vision.NewCascadeDetector(cascadeDir)
}
