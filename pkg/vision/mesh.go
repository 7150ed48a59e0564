package vision

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/sleepdriver/go-sleepdriver/internal/httpc"
	"github.com/sleepdriver/go-sleepdriver/pkg/landmarks"
)

// meshResponse is one frame's answer from the landmark sidecar.
type meshResponse struct {
	FaceDetected bool              `json:"face_detected"`
	Landmarks    []landmarks.Point `json:"landmarks"`
}

// MeshClient talks to a face-mesh sidecar process over websocket.
// Each Detect call sends one JPEG frame and waits for the landmark
// reply, keeping the pipeline frame-synchronous.
type MeshClient struct {
	baseURL string
	conn    *websocket.Conn
	mu      sync.Mutex // one in-flight frame at a time

	// JPEG quality for frames sent to the sidecar
	quality int
}

// dial/read deadlines for the sidecar connection. The sidecar is local;
// anything slower than this means it is wedged.
const (
	meshDialTimeout  = 5 * time.Second
	meshReplyTimeout = 2 * time.Second
)

// NewMeshClient connects to the sidecar at baseURL (e.g.
// "http://127.0.0.1:9871"). The sidecar must answer GET /healthz and
// accept frames on /landmarks.
func NewMeshClient(baseURL string) (*MeshClient, error) {
	resp, err := httpc.Get(baseURL + "/healthz")
	if err != nil {
		return nil, fmt.Errorf("sidecar health check: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("sidecar unhealthy: status %d", resp.StatusCode)
	}

	wsURL, err := toWebsocketURL(baseURL, "/landmarks")
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: meshDialTimeout}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial sidecar: %w", err)
	}

	return &MeshClient{
		baseURL: baseURL,
		conn:    conn,
		quality: 80,
	}, nil
}

// Detect sends the frame to the sidecar and returns its observation.
// A transport error is returned as-is; "no face" is a normal result.
func (c *MeshClient) Detect(frame *gocv.Mat) (Observation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame,
		[]int{gocv.IMWriteJpegQuality, c.quality})
	if err != nil {
		return Observation{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := c.conn.WriteMessage(websocket.BinaryMessage, buf.GetBytes()); err != nil {
		return Observation{}, fmt.Errorf("send frame: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(meshReplyTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Observation{}, fmt.Errorf("read landmarks: %w", err)
	}

	var resp meshResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Observation{}, fmt.Errorf("decode landmarks: %w", err)
	}

	return Observation{
		FaceDetected: resp.FaceDetected,
		Mesh:         resp.Landmarks,
	}, nil
}

// Close shuts down the sidecar connection.
func (c *MeshClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func toWebsocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse sidecar url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported sidecar scheme %q", u.Scheme)
	}
	u.Path = path
	return u.String(), nil
}
