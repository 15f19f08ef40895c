package render

import (
	"strings"
	"testing"

	"github.com/verdant-ui/verdant/pkg/vdom"
)

func renderString(t *testing.T, desc *vdom.VNode) string {
	t.Helper()
	out, err := NewRenderer().RenderToString(desc)
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	return out
}

func TestRenderElement(t *testing.T) {
	tests := []struct {
		name string
		desc *vdom.VNode
		want string
	}{
		{
			"simple",
			vdom.Div(vdom.ID("x"), "hi"),
			`<div id="x">hi</div>`,
		},
		{
			"sorted attributes",
			vdom.Span(vdom.TitleAttr("t"), vdom.Class("c"), vdom.ID("i")),
			`<span class="c" id="i" title="t"></span>`,
		},
		{
			"void element",
			vdom.Div(vdom.Input(vdom.Type("text")), vdom.Br()),
			`<div><input type="text"><br></div>`,
		},
		{
			"nested",
			vdom.Ul(vdom.Li("a"), vdom.Li("b")),
			`<ul><li>a</li><li>b</li></ul>`,
		},
		{
			"boolean true is bare",
			vdom.Button(vdom.Disabled(), "x"),
			`<button disabled="">x</button>`,
		},
		{
			"style map sorted",
			vdom.Div(vdom.Styles(map[string]string{"width": "1px", "color": "red"})),
			`<div style="color: red; width: 1px"></div>`,
		},
		{
			"class map normalized",
			vdom.Div(vdom.Classes("base", map[string]bool{"on": true, "off": false})),
			`<div class="base on"></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderString(t, tt.desc); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRenderEscapesContent(t *testing.T) {
	got := renderString(t, vdom.P(`<script>alert("x")</script>`))
	if strings.Contains(got, "<script>") {
		t.Fatalf("content not escaped: %q", got)
	}
	want := `<p>&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEscapesAttributes(t *testing.T) {
	got := renderString(t, vdom.Div(vdom.TitleAttr(`"><img src=x>`)))
	if strings.Contains(got, `"><img`) {
		t.Errorf("attribute not escaped: %q", got)
	}
}

func TestRenderSkipsEventProps(t *testing.T) {
	got := renderString(t, vdom.Button(vdom.OnClick(func() {}), "go"))
	if got != `<button>go</button>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderComponent(t *testing.T) {
	badge := func(p vdom.Props) *vdom.VNode {
		return vdom.Span(vdom.Class("badge"), vdom.Text(p["text"].(string)))
	}
	got := renderString(t, vdom.Stateless(badge, vdom.Attr{Key: "text", Value: "new"}))
	if got != `<span class="badge">new</span>` {
		t.Errorf("got %q", got)
	}
}

type clock struct{ at string }

func newClock(p vdom.Props) vdom.Component {
	c := &clock{at: "00:00"}
	if s, ok := p["at"].(string); ok {
		c.at = s
	}
	return c
}

func (c *clock) Render() *vdom.VNode {
	return vdom.CustomElement("time", vdom.Text(c.at))
}

func TestRenderStatefulComponent(t *testing.T) {
	got := renderString(t, vdom.Stateful(newClock, vdom.Attr{Key: "at", Value: "12:30"}))
	if got != `<time>12:30</time>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderNilComponentOutputFails(t *testing.T) {
	nothing := func(vdom.Props) *vdom.VNode { return nil }
	_, err := NewRenderer().RenderToString(vdom.Stateless(nothing))
	if err == nil {
		t.Fatal("nil output should be an error")
	}
}

func TestRenderRecursionCap(t *testing.T) {
	var loop vdom.RenderFunc
	loop = func(vdom.Props) *vdom.VNode { return vdom.Stateless(loop) }
	_, err := NewRenderer().RenderToString(vdom.Stateless(loop))
	if err == nil {
		t.Fatal("unbounded recursion should be an error")
	}
}

func TestWriteStateScript(t *testing.T) {
	var sb strings.Builder
	err := WriteStateScript(&sb, &StatePayload{Props: map[string]any{"n": "</script>"}})
	if err != nil {
		t.Fatalf("WriteStateScript: %v", err)
	}
	got := sb.String()
	if !strings.Contains(got, `id="verdant-state"`) {
		t.Errorf("missing id: %q", got)
	}
	if strings.Contains(got, "</script></script>") {
		t.Errorf("payload can escape the script element: %q", got)
	}
}

func TestIslandWrapper(t *testing.T) {
	got := renderString(t, Island("cart", vdom.Div("3 items")))
	want := `<div data-verdant-island="cart"><div>3 items</div></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWritePage(t *testing.T) {
	var sb strings.Builder
	err := NewRenderer().WritePage(&sb, Page{
		Title:   "demo",
		Root:    vdom.Div(vdom.ID("root"), "hello"),
		State:   &StatePayload{Props: map[string]any{"who": "x"}},
		Scripts: []string{"/client.js"},
	})
	if err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	got := sb.String()
	for _, frag := range []string{
		"<!DOCTYPE html>",
		"<title>demo</title>",
		`<div id="app">`,
		`<div id="root">hello</div>`,
		`id="verdant-state"`,
		`<script src="/client.js" defer></script>`,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("page missing %q:\n%s", frag, got)
		}
	}
}
