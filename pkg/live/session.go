package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/reconcile"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// Frame is the JSON wire envelope between a session and its thin
// client. The server ships patch frames (primitive tree ops); the
// client ships event frames naming a node and event type.
type Frame struct {
	Type    string         `json:"type"`
	Seq     uint64         `json:"seq,omitempty"`
	Ops     []dom.Op       `json:"ops,omitempty"`
	Node    uint64         `json:"node,omitempty"`
	Event   string         `json:"event,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

const (
	FramePatches = "patches"
	FrameEvent   = "event"
	FramePing    = "ping"
	FramePong    = "pong"
	FrameError   = "error"
)

// View produces the current description for a session. It is called on
// every render pass, so it must derive output from session state alone.
type View func(*Session) *vdom.VNode

// Session owns one connected client: a server-side live tree, the
// engine reconciling it, and the socket that streams the resulting
// primitive ops as patch frames.
type Session struct {
	id     string
	logger *slog.Logger
	view   View

	doc    *dom.Document
	engine *reconcile.Engine
	root   *dom.Node

	conn *websocket.Conn
	// writeMu serializes socket writes: patch frames come from the run
	// goroutine, pong and error frames from the read loop.
	writeMu sync.Mutex
	events  chan Frame
	// invalidate has capacity one: any number of invalidations between
	// passes coalesce into a single re-render.
	invalidate chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	seq        uint64

	mu     sync.Mutex
	values map[string]any
}

func newSessionID() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func newSession(view View, engine *reconcile.Engine, logger *slog.Logger) *Session {
	doc := dom.NewDocument()
	s := &Session{
		id:         newSessionID(),
		logger:     logger,
		view:       view,
		doc:        doc,
		engine:     engine,
		root:       doc.CreateElement("div"),
		events:     make(chan Frame, 64),
		invalidate: make(chan struct{}, 1),
		done:       make(chan struct{}),
		values:     make(map[string]any),
	}
	s.logger = logger.With("session", s.id[:8])
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns the session's server-side live tree.
func (s *Session) Document() *dom.Document { return s.doc }

// Set stores a session-scoped value and schedules a re-render.
func (s *Session) Set(key string, v any) {
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	s.Invalidate()
}

// Get reads a session-scoped value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Invalidate schedules one re-render. Calls between passes coalesce.
func (s *Session) Invalidate() {
	select {
	case s.invalidate <- struct{}{}:
	default:
	}
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// render runs one pass and ships whatever primitive ops it produced.
func (s *Session) render(ctx context.Context) {
	if err := s.engine.Render(ctx, s.root, s.view(s)); err != nil {
		s.logger.Error("render pass failed", "error", err)
		s.send(Frame{Type: FrameError, Message: err.Error()})
	}
	ops := s.doc.TakeOps()
	if len(ops) == 0 {
		return
	}
	s.seq++
	s.send(Frame{Type: FramePatches, Seq: s.seq, Ops: ops})
}

func (s *Session) send(f Frame) {
	if s.conn == nil {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("frame encode error", "error", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("write failed, closing session", "error", err)
		s.Close()
	}
}

// run is the session's event loop: events dispatch into the live tree,
// every event or invalidation ends in a render pass, and passes are
// strictly serialized.
func (s *Session) run(ctx context.Context) {
	defer s.Close()

	s.render(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case f := <-s.events:
			s.dispatch(f)
			s.render(ctx)
		case <-s.invalidate:
			s.render(ctx)
		}
	}
}

// dispatch delivers a client event to its target node's listeners.
func (s *Session) dispatch(f Frame) {
	target := s.doc.NodeByID(f.Node)
	if target == nil {
		s.logger.Warn("event for unknown node", "node", f.Node, "event", f.Event)
		return
	}
	n := target.Dispatch(dom.Event{Type: f.Event, Data: f.Data})
	if n == 0 {
		s.logger.Debug("event had no listeners", "node", f.Node, "event", f.Event)
	}
}

// readLoop decodes client frames until the socket closes.
func (s *Session) readLoop(readTimeout time.Duration) {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.logger.Warn("frame decode error", "error", err)
			continue
		}

		switch f.Type {
		case FrameEvent:
			select {
			case s.events <- f:
			default:
				s.send(Frame{Type: FrameError, Message: "event queue full"})
			}
		case FramePing:
			s.send(Frame{Type: FramePong, Seq: f.Seq})
		default:
			s.logger.Warn("unknown frame type", "type", f.Type)
		}
	}
}
