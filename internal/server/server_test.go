package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gray-scott/internal/render"
	"gray-scott/internal/sims/grayscott"
)

func testConfig() grayscott.Config {
	cfg := grayscott.DefaultConfig()
	cfg.Width = 8
	cfg.Height = 8
	cfg.Steps = 6
	cfg.BatchSize = 2
	return cfg
}

func startServer(t *testing.T, cfg grayscott.Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(cfg, Options{TPS: 200, Scale: 2, Mode: render.ModeRange, Backend: "serial"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Frame) bool) (Frame, []Frame) {
	t.Helper()
	var seen []Frame
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read after %d frames: %v", len(seen), err)
		}
		seen = append(seen, f)
		if match(f) {
			return f, seen
		}
	}
}

func TestServerRunsToCompletion(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	first, _ := readUntil(t, conn, func(Frame) bool { return true })
	if first.Step != 0 || len(first.PNG) != 0 {
		t.Fatalf("initial frame = step %d with %d png bytes, want empty", first.Step, len(first.PNG))
	}

	run := true
	if err := conn.WriteJSON(Control{Run: &run}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	last, seen := readUntil(t, conn, func(f Frame) bool { return f.Step == 6 && !f.More })

	if last.Running {
		t.Fatalf("server still running after target reached")
	}
	if last.Progress != 100 {
		t.Fatalf("progress = %v, want 100", last.Progress)
	}
	if last.Width != 8 || last.Height != 8 || last.Backend != "serial" {
		t.Fatalf("frame = %dx%d on %q", last.Width, last.Height, last.Backend)
	}
	var steps []int
	for _, f := range seen {
		if f.Width > 0 && (len(steps) == 0 || steps[len(steps)-1] != f.Step) {
			steps = append(steps, f.Step)
		}
	}
	if want := []int{2, 4, 6}; !slices.Equal(steps, want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}

	img, err := png.Decode(bytes.NewReader(last.PNG))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("png bounds = %v, want 16x16", b)
	}
}

func TestServerReportsClampWarnings(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, func(Frame) bool { return true })

	if err := conn.WriteJSON(Control{Set: map[string]string{"w": "1"}}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	f, _ := readUntil(t, conn, func(f Frame) bool { return len(f.Warnings) > 0 })
	if !slices.Contains(f.Warnings, "Set width to minimum of 3 cells.") {
		t.Fatalf("warnings = %v", f.Warnings)
	}
	if f.Running {
		t.Fatalf("set alone must not start the run")
	}
}

func TestServerResetClearsOutputs(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, func(Frame) bool { return true })

	run := true
	if err := conn.WriteJSON(Control{Run: &run}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	readUntil(t, conn, func(f Frame) bool { return f.Step == 6 })

	if err := conn.WriteJSON(Control{Reset: true}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	f, _ := readUntil(t, conn, func(f Frame) bool { return f.Step == 0 })
	if f.Width != 0 || len(f.PNG) != 0 || f.More {
		t.Fatalf("reset frame = %+v, want empty outputs", f)
	}
}

func TestStatusOmitsImage(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, func(Frame) bool { return true })

	run := true
	if err := conn.WriteJSON(Control{Run: &run}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	readUntil(t, conn, func(f Frame) bool { return f.Step == 6 && !f.More })

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var f Frame
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if f.Step != 6 || f.Target != 6 || len(f.PNG) != 0 {
		t.Fatalf("status = step %d/%d with %d png bytes", f.Step, f.Target, len(f.PNG))
	}
}
