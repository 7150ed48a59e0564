package camera

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/sleepdriver/go-sleepdriver/internal/log"
)

// Capture owns a video device and hands out frames at the configured
// processing resolution. Not safe for concurrent use; the monitor loop
// is the single consumer.
type Capture struct {
	cfg Config
	dev *gocv.VideoCapture
	buf gocv.Mat
}

// Open opens the capture device and waits out the sensor warm-up.
func Open(cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera config: %v", errs)
	}

	dev, err := gocv.OpenVideoCapture(cfg.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceIndex, err)
	}

	dev.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	dev.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	if cfg.WarmUp > 0 {
		time.Sleep(cfg.WarmUp)
	}

	log.Info("camera opened", "device", cfg.DeviceIndex,
		"width", cfg.Width, "height", cfg.Height)

	return &Capture{
		cfg: cfg,
		dev: dev,
		buf: gocv.NewMat(),
	}, nil
}

// Config returns the capture configuration.
func (c *Capture) Config() Config {
	return c.cfg
}

// Read grabs the next frame, resized to the processing resolution, into
// dst. Returns an error when the device stops delivering frames (cable
// pulled, device claimed by another process).
func (c *Capture) Read(dst *gocv.Mat) error {
	if ok := c.dev.Read(&c.buf); !ok || c.buf.Empty() {
		return fmt.Errorf("camera %d: no frame", c.cfg.DeviceIndex)
	}

	if c.buf.Cols() == c.cfg.Width && c.buf.Rows() == c.cfg.Height {
		c.buf.CopyTo(dst)
		return nil
	}

	// INTER_AREA gives the cleanest downscale for detection input.
	gocv.Resize(c.buf, dst, image.Pt(c.cfg.Width, c.cfg.Height), 0, 0,
		gocv.InterpolationArea)
	return nil
}

// Close releases the device and internal buffers.
func (c *Capture) Close() error {
	c.buf.Close()
	return c.dev.Close()
}
