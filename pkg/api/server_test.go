package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/tf"
	"github.com/leterax/go-fpsview/pkg/view"
)

type fakeViews struct {
	capacity  int
	submitted []view.Command
	snapshot  view.Snapshot
}

func (f *fakeViews) Submit(cmd view.Command) error {
	if len(f.submitted) >= f.capacity {
		return view.ErrQueueFull
	}
	f.submitted = append(f.submitted, cmd)
	return nil
}

func (f *fakeViews) Snapshot() view.Snapshot { return f.snapshot }

type testContext struct {
	frames *tf.FrameManager
}

func (testContext) QueueRender()                       {}
func (c testContext) Transforms() view.TransformSource { return c.frames }
func (testContext) FixedFrame() string                 { return "map" }
func (testContext) Logger() logger.Logger              { return logger.NewNop() }

type fakeFrames []tf.FrameInfo

func (f fakeFrames) Frames() []tf.FrameInfo { return f }

func newTestServer(capacity int) (*Server, *fakeViews) {
	views := &fakeViews{
		capacity: capacity,
		snapshot: view.Snapshot{
			ClassID:     view.FPSClassID,
			TargetFrame: "map",
			Position:    [3]float64{-10, 0, 1},
		},
	}
	frames := fakeFrames{{Name: "base_link", Latest: time.Unix(10, 0).UTC(), Samples: 3}}
	return NewServer("127.0.0.1:0", views, frames, logger.NewNop()), views
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestGetView(t *testing.T) {
	s, _ := newTestServer(4)

	resp, body := do(t, s, http.MethodGet, "/api/view", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}

	var snap view.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if snap.ClassID != view.FPSClassID || snap.Position != [3]float64{-10, 0, 1} {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestHealthAndFrames(t *testing.T) {
	s, _ := newTestServer(4)

	resp, _ := do(t, s, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", resp.StatusCode)
	}

	resp, body := do(t, s, http.MethodGet, "/api/frames", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var frames []tf.FrameInfo
	if err := json.Unmarshal(body, &frames); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(frames) != 1 || frames[0].Name != "base_link" || frames[0].Samples != 3 {
		t.Errorf("Unexpected frames %+v", frames)
	}
}

func TestMutations(t *testing.T) {
	testCases := map[string]struct {
		method     string
		path       string
		body       string
		capacity   int
		wantStatus int
		wantQueued int
	}{
		"PatchYaw":       {http.MethodPatch, "/api/view", `{"yaw": 1.5}`, 4, http.StatusAccepted, 1},
		"PatchPosition":  {http.MethodPatch, "/api/view", `{"position": [1, 2, 3]}`, 4, http.StatusAccepted, 1},
		"PatchEmpty":     {http.MethodPatch, "/api/view", `{}`, 4, http.StatusBadRequest, 0},
		"PatchMalformed": {http.MethodPatch, "/api/view", `{"yaw": "north"}`, 4, http.StatusBadRequest, 0},
		"Reset":          {http.MethodPost, "/api/view/reset", "", 4, http.StatusAccepted, 1},
		"ResetQueueFull": {http.MethodPost, "/api/view/reset", "", 0, http.StatusServiceUnavailable, 0},
		"LookAt":         {http.MethodPost, "/api/view/look-at", `{"point": [0, 0, 0]}`, 4, http.StatusAccepted, 1},
		"LookAtNoPoint":  {http.MethodPost, "/api/view/look-at", `{}`, 4, http.StatusBadRequest, 0},
	}

	for name, tt := range testCases {
		t.Run(name, func(t *testing.T) {
			s, views := newTestServer(tt.capacity)

			resp, body := do(t, s, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d (%s)", tt.wantStatus, resp.StatusCode, body)
			}
			if len(views.submitted) != tt.wantQueued {
				t.Errorf("Expected %d queued commands, got %d", tt.wantQueued, len(views.submitted))
			}
		})
	}
}

func TestPatchAppliesToController(t *testing.T) {
	s, views := newTestServer(4)

	resp, _ := do(t, s, http.MethodPatch, "/api/view", `{"yaw": 1.5, "position": [1, 2, 3]}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}

	c := view.NewFPSController(view.PolicyYawPitch)
	c.Initialize(testContext{frames: tf.NewFrameManager("map", 0, logger.NewNop())})
	views.submitted[0](c)

	if c.YawProperty().Float() != 1.5 {
		t.Errorf("Expected yaw 1.5, got %v", c.YawProperty().Float())
	}
	if c.PositionProperty().Vector() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Expected position (1,2,3), got %v", c.PositionProperty().Vector())
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(4)

	resp, _ := do(t, s, http.MethodGet, "/ws/view", "")
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("Expected 426, got %d", resp.StatusCode)
	}
}

type fakeStreamConn struct {
	closed  chan struct{}
	written chan view.Snapshot
}

func (c *fakeStreamConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("connection closed")
}

func (c *fakeStreamConn) WriteJSON(v interface{}) error {
	c.written <- v.(view.Snapshot)
	return nil
}

func TestStreamViewEndsWhenClientCloses(t *testing.T) {
	tests := map[string]struct {
		updated   time.Time
		wantWrite bool
	}{
		"Idle":    {time.Time{}, false},
		"Changed": {time.Unix(5, 0), true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, views := newTestServer(1)
			s.StreamInterval = time.Millisecond
			views.snapshot.Updated = tc.updated
			conn := &fakeStreamConn{closed: make(chan struct{}), written: make(chan view.Snapshot, 1)}

			returned := make(chan struct{})
			go func() {
				s.streamView(conn)
				close(returned)
			}()

			if tc.wantWrite {
				select {
				case snap := <-conn.written:
					if !snap.Updated.Equal(tc.updated) {
						t.Errorf("Expected snapshot at %v, got %v", tc.updated, snap.Updated)
					}
				case <-time.After(time.Second):
					t.Fatal("Expected a snapshot to be written")
				}
			}

			close(conn.closed)
			select {
			case <-returned:
			case <-time.After(time.Second):
				t.Fatal("Expected the stream to end after the client closed")
			}
			if len(conn.written) != 0 {
				t.Errorf("Expected no further writes, got %d", len(conn.written))
			}
		})
	}
}
