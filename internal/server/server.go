// Package server hosts a simulation behind a websocket: it re-invokes the
// controller on a fixed cadence while running and streams every batch to the
// connected clients, which in turn send control messages.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gray-scott/internal/core"
	"gray-scott/internal/render"
	"gray-scott/internal/sims/grayscott"
)

// Control is a client request. Set keys are the ones grayscott.FromMap
// accepts; values are clamped before use.
type Control struct {
	Run   *bool             `json:"run,omitempty"`
	Reset bool              `json:"reset,omitempty"`
	Set   map[string]string `json:"set,omitempty"`
}

// Frame is broadcast after every invocation that produced new outputs. PNG
// holds the V field rendered as grayscale and travels base64-encoded.
type Frame struct {
	Step     int      `json:"step"`
	Target   int      `json:"target"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Progress float64  `json:"progress"`
	More     bool     `json:"more"`
	Running  bool     `json:"running"`
	Backend  string   `json:"backend,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
	PNG      []byte   `json:"png,omitempty"`
}

// Options tunes the host loop.
type Options struct {
	TPS     int
	Scale   int
	Mode    render.Mode
	Backend string
}

// DefaultOptions returns ten batches per second, unscaled range-normalized frames.
func DefaultOptions() Options {
	return Options{TPS: 10, Scale: 1, Mode: render.ModeRange}
}

const (
	sendBuffer   = 8
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Server owns one controller. Only the goroutine running Run touches it, so
// every invocation is atomic with respect to the session lifecycle.
type Server struct {
	opts Options

	cfg      grayscott.Config
	ctrl     *grayscott.Controller
	pacer    *core.FixedStep
	running  bool
	warnings []string

	controls chan Control
	stopped  chan struct{}

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  Frame

	upgrader websocket.Upgrader
}

// New returns a server for cfg. Call Run to start the host loop.
func New(cfg grayscott.Config, opts Options) *Server {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	s := &Server{
		opts:     opts,
		ctrl:     grayscott.NewControllerWithBackend(opts.Backend),
		pacer:    core.NewFixedStep(opts.TPS),
		controls: make(chan Control),
		stopped:  make(chan struct{}),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.cfg, s.warnings = cfg.Sanitize()
	return s
}

// Handler returns the HTTP routes: /ws for the websocket and /status for the
// latest frame without image data.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Run drives the controller until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.ctrl.Close()

	ticker := time.NewTicker(s.pacer.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ctl := <-s.controls:
			s.apply(ctl)
		case <-ticker.C:
			for n := s.pacer.Due(); n > 0 && s.running; n-- {
				s.invoke(false)
			}
		}
	}
}

func (s *Server) apply(ctl Control) {
	if len(ctl.Set) > 0 {
		cfg := s.cfg
		cfg.Apply(ctl.Set)
		s.cfg, s.warnings = cfg.Sanitize()
		for _, w := range s.warnings {
			core.Logger().Warn("server: parameter clamped", "warning", w)
		}
	}
	if ctl.Run != nil {
		s.running = *ctl.Run
	}
	if ctl.Reset {
		s.invoke(true)
		return
	}
	if len(ctl.Set) > 0 || ctl.Run != nil {
		s.publish(s.ctrl.Last(), nil)
	}
}

func (s *Server) invoke(reset bool) {
	out, err := s.ctrl.Invoke(grayscott.Input{Run: s.running, Reset: reset, Config: s.cfg})
	if err != nil {
		core.Logger().Error("server: invocation failed", "err", err)
		s.running = false
	}
	if err == nil && !out.More {
		s.running = false
	}
	s.publish(out, err)
}

func (s *Server) publish(out grayscott.Output, err error) {
	f := Frame{
		Step:     out.Step,
		Target:   out.Target,
		Width:    out.Size.W,
		Height:   out.Size.H,
		Progress: out.Progress,
		More:     out.More,
		Running:  s.running,
		Backend:  out.Backend,
		Warnings: s.warnings,
	}
	if err != nil {
		f.Error = err.Error()
	}
	if len(out.V) > 0 {
		img, ierr := render.GrayImage(out.V, out.Size.W, out.Size.H, s.opts.Mode)
		if ierr == nil {
			var buf bytes.Buffer
			if ierr = render.WritePNG(&buf, img, s.opts.Scale); ierr == nil {
				f.PNG = buf.Bytes()
			}
		}
		if ierr != nil {
			core.Logger().Warn("server: frame encoding failed", "err", ierr)
		}
	}
	s.broadcast(f)
}

func (s *Server) broadcast(f Frame) {
	s.mu.Lock()
	s.latest = f
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- f:
		default:
			core.Logger().Debug("server: dropping frame for slow client", "step", f.Step)
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	f := s.latest
	s.mu.RUnlock()
	f.PNG = nil
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f); err != nil {
		core.Logger().Warn("server: status encode failed", "err", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.Logger().Warn("server: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan Frame, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	c.send <- s.latest
	s.mu.Unlock()
	core.Logger().Info("server: client connected", "remote", r.RemoteAddr)

	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writeLoop(c)
	}()

read:
	for {
		var ctl Control
		if err := conn.ReadJSON(&ctl); err != nil {
			core.Logger().Debug("server: read ended", "err", err)
			break
		}
		select {
		case s.controls <- ctl:
		case <-s.stopped:
			break read
		case <-r.Context().Done():
			break read
		}
	}

	s.mu.Lock()
	delete(s.clients, c)
	close(c.send)
	s.mu.Unlock()
	<-written
	core.Logger().Info("server: client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) writeLoop(c *client) {
	for f := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(f); err != nil {
			core.Logger().Debug("server: write failed", "err", err)
			// Unblocks the reader; keep draining until the handler closes send.
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
