package live

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

func testView(s *Session) *vdom.VNode {
	count := 0
	if v, ok := s.Get("count"); ok {
		count = v.(int)
	}
	return vdom.Div(
		vdom.P(vdom.Class("count"), vdom.Textf("%d", count)),
		vdom.Button(vdom.OnClick(func() { s.Set("count", count+1) }), "inc"),
	)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(testView,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTitle("test"),
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestIndexServesRenderedPage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, frag := range []string{
		"<title>test</title>",
		`<p class="count">0</p>`,
		"<button>inc</button>",
	} {
		if !strings.Contains(page, frag) {
			t.Errorf("page missing %q:\n%s", frag, page)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// findOp returns the first op matching kind, or nil.
func findOp(ops []dom.Op, kind dom.OpKind, tag string) *dom.Op {
	for i, op := range ops {
		if op.Kind == kind && (tag == "" || op.Tag == tag) {
			return &ops[i]
		}
	}
	return nil
}

func TestSessionStreamsPatches(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	initial := readFrame(t, conn)
	if initial.Type != FramePatches || len(initial.Ops) == 0 {
		t.Fatalf("initial frame = %+v, want patches", initial)
	}

	btn := findOp(initial.Ops, dom.OpCreateElement, "button")
	if btn == nil {
		t.Fatalf("no button create op in %v", initial.Ops)
	}

	// Click the button: the view increments and a patch comes back.
	err := conn.WriteJSON(Frame{Type: FrameEvent, Node: btn.Node, Event: "click"})
	if err != nil {
		t.Fatalf("write event: %v", err)
	}

	update := readFrame(t, conn)
	if update.Type != FramePatches {
		t.Fatalf("update frame = %+v", update)
	}
	setText := findOp(update.Ops, dom.OpSetText, "")
	if setText == nil {
		t.Fatalf("expected set-text patch, got %v", update.Ops)
	}
	if setText.Value != "1" {
		t.Errorf("count text = %q, want 1", setText.Value)
	}

	// The re-rendered view rebuilt the click closure; a second click
	// must run the new one and keep counting.
	if err := conn.WriteJSON(Frame{Type: FrameEvent, Node: btn.Node, Event: "click"}); err != nil {
		t.Fatalf("write event: %v", err)
	}
	update = readFrame(t, conn)
	setText = findOp(update.Ops, dom.OpSetText, "")
	if setText == nil || setText.Value != "2" {
		t.Errorf("second click ops = %v, want set-text 2", update.Ops)
	}
}

func TestInterleavedWritesStayWellFormed(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	initial := readFrame(t, conn)
	btn := findOp(initial.Ops, dom.OpCreateElement, "button")
	if btn == nil {
		t.Fatalf("no button create op in %v", initial.Ops)
	}

	// Clicks produce patch frames from the session loop while pings
	// produce pongs from the read loop; every frame must still arrive
	// whole and decodable.
	const rounds = 25
	for i := 0; i < rounds; i++ {
		if err := conn.WriteJSON(Frame{Type: FrameEvent, Node: btn.Node, Event: "click"}); err != nil {
			t.Fatal(err)
		}
		if err := conn.WriteJSON(Frame{Type: FramePing, Seq: uint64(i + 1)}); err != nil {
			t.Fatal(err)
		}
	}

	pongs, patches := 0, 0
	for pongs+patches < 2*rounds {
		switch f := readFrame(t, conn); f.Type {
		case FramePong:
			pongs++
		case FramePatches:
			patches++
		default:
			t.Fatalf("unexpected frame %+v", f)
		}
	}
	if pongs != rounds || patches != rounds {
		t.Errorf("pongs = %d, patches = %d, want %d each", pongs, patches, rounds)
	}
}

func TestPingPong(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	readFrame(t, conn) // initial patches

	if err := conn.WriteJSON(Frame{Type: FramePing, Seq: 7}); err != nil {
		t.Fatal(err)
	}
	f := readFrame(t, conn)
	if f.Type != FramePong || f.Seq != 7 {
		t.Errorf("frame = %+v, want pong seq 7", f)
	}
}

func TestInvalidateCoalesces(t *testing.T) {
	s := newSession(testView, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < 10; i++ {
		s.Invalidate()
	}
	if len(s.invalidate) != 1 {
		t.Errorf("pending invalidations = %d, want 1", len(s.invalidate))
	}
}

func TestSessionCount(t *testing.T) {
	srv, ts := newTestServer(t)
	if srv.SessionCount() != 0 {
		t.Fatal("expected no sessions")
	}

	conn := dialWS(t, ts)
	readFrame(t, conn)
	if srv.SessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", srv.SessionCount())
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not reaped after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
