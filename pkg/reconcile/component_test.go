package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/verdant-ui/verdant/pkg/vdom"
)

// counter is a stateful test component tracking its lifecycle.
type counter struct {
	label   string
	mounts  *int
	unmnts  *int
	renders int
}

func (c *counter) SetProps(p vdom.Props) {
	if l, ok := p["label"].(string); ok {
		c.label = l
	}
}

func (c *counter) Mount()   { *c.mounts++ }
func (c *counter) Unmount() { *c.unmnts++ }

func (c *counter) Render() *vdom.VNode {
	c.renders++
	return vdom.Div(vdom.Class("counter"), vdom.Text(c.label))
}

func TestStatelessComponentRendersAndUpdates(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	greeting := func(p vdom.Props) *vdom.VNode {
		return vdom.P(vdom.Text("hi " + p["name"].(string)))
	}
	view := func(name string) *vdom.VNode {
		return vdom.Stateless(greeting, vdom.Attr{Key: "name", Value: name})
	}

	mustRender(t, e, root, view("ada"))
	p := root.FirstChild()
	if got := p.FirstChild().Text(); got != "hi ada" {
		t.Fatalf("text = %q", got)
	}

	mustRender(t, e, root, view("grace"))
	if root.FirstChild() != p {
		t.Error("same component identity must patch in place")
	}
	if got := p.FirstChild().Text(); got != "hi grace" {
		t.Errorf("text = %q", got)
	}
}

func TestStatefulLifecycle(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mounts, unmounts := 0, 0
	ctor := func(p vdom.Props) vdom.Component {
		c := &counter{mounts: &mounts, unmnts: &unmounts}
		c.SetProps(p)
		return c
	}
	view := func(label string) *vdom.VNode {
		return vdom.Div(vdom.Stateful(ctor, vdom.Attr{Key: "label", Value: label}))
	}

	mustRender(t, e, root, view("one"))
	if mounts != 1 {
		t.Fatalf("mounts = %d, want 1", mounts)
	}

	mustRender(t, e, root, view("two"))
	if mounts != 1 {
		t.Errorf("stable identity must not remount, mounts = %d", mounts)
	}
	inner := root.FirstChild().FirstChild()
	if got := inner.FirstChild().Text(); got != "two" {
		t.Errorf("text = %q, want two", got)
	}

	mustRender(t, e, root, vdom.Div(vdom.Span("plain")))
	if unmounts != 1 {
		t.Errorf("losing component identity must unmount, unmounts = %d", unmounts)
	}
}

func TestComponentIdentityChangeTearsDown(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mounts, unmounts := 0, 0
	ctorA := func(p vdom.Props) vdom.Component {
		c := &counter{label: "A", mounts: &mounts, unmnts: &unmounts}
		return c
	}
	mountsB, unmountsB := 0, 0
	ctorB := func(p vdom.Props) vdom.Component {
		c := &counter{label: "B", mounts: &mountsB, unmnts: &unmountsB}
		return c
	}

	mustRender(t, e, root, vdom.Stateful(ctorA))
	mustRender(t, e, root, vdom.Stateful(ctorB))

	if unmounts != 1 {
		t.Errorf("old instance unmounts = %d, want 1", unmounts)
	}
	if mountsB != 1 {
		t.Errorf("new instance mounts = %d, want 1", mountsB)
	}
	if got := root.FirstChild().FirstChild().Text(); got != "B" {
		t.Errorf("text = %q, want B", got)
	}
}

func TestComponentKeyIsPartOfIdentity(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mounts, unmounts := 0, 0
	ctor := func(p vdom.Props) vdom.Component {
		return &counter{label: "x", mounts: &mounts, unmnts: &unmounts}
	}

	mustRender(t, e, root, vdom.Stateful(ctor, vdom.Key("one")))
	mustRender(t, e, root, vdom.Stateful(ctor, vdom.Key("two")))

	if mounts != 2 || unmounts != 1 {
		t.Errorf("key change: mounts = %d unmounts = %d, want 2/1", mounts, unmounts)
	}
}

// nested component chains: outer renders inner on the same live node.

func TestNestedComponentChain(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	inner := func(p vdom.Props) *vdom.VNode {
		return vdom.Span(vdom.Text(p["msg"].(string)))
	}
	outer := func(p vdom.Props) *vdom.VNode {
		return vdom.Stateless(inner, vdom.Attr{Key: "msg", Value: p["msg"]})
	}
	view := func(msg string) *vdom.VNode {
		return vdom.Stateless(outer, vdom.Attr{Key: "msg", Value: msg})
	}

	mustRender(t, e, root, view("deep"))
	span := root.FirstChild()
	if span.Tag() != "span" || span.FirstChild().Text() != "deep" {
		t.Fatalf("chain output wrong: %s", span.OuterHTML())
	}

	mustRender(t, e, root, view("deeper"))
	if root.FirstChild() != span {
		t.Error("chain must patch in place on stable identities")
	}
	if got := span.FirstChild().Text(); got != "deeper" {
		t.Errorf("text = %q", got)
	}
}

// boundary is a stateful component that contains descendant render
// errors and shows a fallback instead.
type boundary struct {
	child  *vdom.VNode
	caught error
}

func newBoundary(p vdom.Props) vdom.Component {
	b := &boundary{}
	b.SetProps(p)
	return b
}

func (b *boundary) SetProps(p vdom.Props) {
	if kids, ok := p[vdom.PropChildren].([]*vdom.VNode); ok && len(kids) > 0 {
		b.child = kids[0]
	}
}

func (b *boundary) CatchError(err error) { b.caught = err }
func (b *boundary) ResetError()          { b.caught = nil }

func (b *boundary) Render() *vdom.VNode {
	if b.caught != nil {
		return vdom.Div(vdom.Class("fallback"), vdom.Text("something went wrong"))
	}
	return b.child
}

func explode(vdom.Props) *vdom.VNode {
	panic(errors.New("boom"))
}

func TestErrorBoundaryShowsFallback(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	desc := vdom.Div(
		vdom.Stateful(newBoundary, vdom.Stateless(explode)),
		vdom.P("sibling"),
	)
	mustRender(t, e, root, desc)

	wrap := root.FirstChild()
	if wrap.NumChildren() != 2 {
		t.Fatalf("children = %d, want fallback + sibling", wrap.NumChildren())
	}
	fb := wrap.ChildAt(0)
	if cls, _ := fb.Attr("class"); cls != "fallback" {
		t.Errorf("fallback not rendered: %s", fb.OuterHTML())
	}
	if got := wrap.ChildAt(1).FirstChild().Text(); got != "sibling" {
		t.Errorf("sibling disturbed: %q", got)
	}
}

func TestErrorBoundaryRecoversAfterReset(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	failing := true
	child := func(vdom.Props) *vdom.VNode {
		if failing {
			panic("transient")
		}
		return vdom.P(vdom.Text("recovered"))
	}
	view := func() *vdom.VNode {
		return vdom.Div(vdom.Stateful(newBoundary, vdom.Stateless(child)))
	}

	mustRender(t, e, root, view())
	wrap := root.FirstChild()
	if cls, _ := wrap.FirstChild().Attr("class"); cls != "fallback" {
		t.Fatal("expected fallback on first pass")
	}

	failing = false
	e.ResetBoundaries(root)
	mustRender(t, e, root, view())

	got := wrap.FirstChild()
	if got.Tag() != "p" || got.FirstChild().Text() != "recovered" {
		t.Errorf("after reset got %s", got.OuterHTML())
	}
}

func TestUncontainedErrorSurfacesAndKeepsCommittedTree(t *testing.T) {
	var events []RenderError
	e := New(
		WithLogger(discardLogger()),
		WithErrorHandler(func(ev RenderError) { events = append(events, ev) }),
	)
	_, root := newTestRoot()

	mustRender(t, e, root, vdom.Div(vdom.P("stable")))
	before := root.InnerHTML()

	err := e.Render(context.Background(), root, vdom.Div(vdom.Stateless(explode)))
	if err == nil {
		t.Fatal("expected render error")
	}
	if len(events) != 1 || events[0].Phase != PhaseRender {
		t.Fatalf("events = %+v", events)
	}
	if root.InnerHTML() != before {
		t.Error("committed tree must survive a failed pass")
	}
}

func TestNilComponentOutputIsError(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	nothing := func(vdom.Props) *vdom.VNode { return nil }
	err := e.Render(context.Background(), root, vdom.Stateless(nothing))
	if err == nil {
		t.Fatal("nil render output must be an error")
	}
}

func TestComponentErrorMessageNamesComponent(t *testing.T) {
	ce := &componentError{err: fmt.Errorf("kaput"), component: "widgets.Header"}
	if got := ce.Error(); got != "component widgets.Header: kaput" {
		t.Errorf("Error() = %q", got)
	}
}
