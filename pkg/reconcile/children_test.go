package reconcile

import (
	"testing"

	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

func keyedList(keys ...string) *vdom.VNode {
	return vdom.Ul(vdom.Range(keys, func(k string, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(k), vdom.Text(k))
	}))
}

func childIDs(n *dom.Node) map[string]uint64 {
	out := make(map[string]uint64)
	for _, c := range n.Children() {
		if c.FirstChild() != nil {
			out[c.FirstChild().Text()] = c.ID()
		}
	}
	return out
}

func TestKeyedPermutationPreservesIdentity(t *testing.T) {
	e := newTestEngine()
	doc, root := newTestRoot()

	mustRender(t, e, root, keyedList("a", "b", "c", "d"))
	ul := root.FirstChild()
	before := childIDs(ul)

	mark := doc.Mark()
	mustRender(t, e, root, keyedList("d", "b", "a", "c"))

	after := childIDs(ul)
	for k, id := range before {
		if after[k] != id {
			t.Errorf("key %q changed identity: %d -> %d", k, id, after[k])
		}
	}

	ops := doc.OpsSince(mark)
	if n := countKind(ops, dom.OpCreateElement); n != 0 {
		t.Errorf("permutation created %d elements: %v", n, ops)
	}
	if n := countKind(ops, dom.OpRemoveChild); n != 0 {
		t.Errorf("permutation removed %d children: %v", n, ops)
	}
	if countKind(ops, dom.OpInsertBefore) == 0 {
		t.Error("expected move ops for the reorder")
	}

	var order []string
	for _, c := range ul.Children() {
		order = append(order, c.FirstChild().Text())
	}
	want := []string{"d", "b", "a", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestKeyedRoundTripRestoresOriginalOrder(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mustRender(t, e, root, keyedList("a", "b", "c"))
	ul := root.FirstChild()
	before := childIDs(ul)

	mustRender(t, e, root, keyedList("c", "a", "b"))
	mustRender(t, e, root, keyedList("a", "b", "c"))

	after := childIDs(ul)
	for k, id := range before {
		if after[k] != id {
			t.Errorf("key %q lost identity across round trip", k)
		}
	}
}

func TestKeyedInsertAndRemove(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mustRender(t, e, root, keyedList("a", "b", "c"))
	ul := root.FirstChild()
	before := childIDs(ul)
	removed := ul.ChildAt(1)
	removed.AddEventListener("click", func(dom.Event) {})

	mustRender(t, e, root, keyedList("a", "x", "c"))

	after := childIDs(ul)
	if after["a"] != before["a"] || after["c"] != before["c"] {
		t.Error("survivors must keep identity")
	}
	if _, ok := after["b"]; ok {
		t.Error("b should be gone")
	}
	if _, ok := after["x"]; !ok {
		t.Error("x should be created")
	}
	if removed.Parent() != nil {
		t.Error("removed child still attached")
	}
	if e.Committed(removed) != nil {
		t.Error("removed child still committed")
	}
}

func TestUnkeyedChildrenPatchByPosition(t *testing.T) {
	e := newTestEngine()
	doc, root := newTestRoot()

	list := func(a, b string) *vdom.VNode {
		return vdom.Ul(vdom.Li(vdom.Text(a)), vdom.Li(vdom.Text(b)))
	}

	mustRender(t, e, root, list("one", "two"))
	ul := root.FirstChild()
	first, second := ul.ChildAt(0), ul.ChildAt(1)

	mark := doc.Mark()
	mustRender(t, e, root, list("uno", "two"))

	if ul.ChildAt(0) != first || ul.ChildAt(1) != second {
		t.Error("positional children must patch in place")
	}
	ops := doc.OpsSince(mark)
	if len(ops) != 1 || ops[0].Kind != dom.OpSetText {
		t.Errorf("ops = %v, want one set-text", ops)
	}
}

func TestSingleSidedKeyForcesReplace(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mustRender(t, e, root, vdom.Ul(vdom.Li(vdom.Text("x"))))
	ul := root.FirstChild()
	old := ul.FirstChild()

	mustRender(t, e, root, vdom.Ul(vdom.Li(vdom.Key("k"), vdom.Text("x"))))
	if ul.FirstChild() == old {
		t.Error("gaining a key must replace the node")
	}
}

func TestDuplicateKeysFirstOccurrenceWins(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mustRender(t, e, root, keyedList("a", "a"))
	ul := root.FirstChild()
	first := ul.ChildAt(0)

	mustRender(t, e, root, keyedList("a", "a"))
	if ul.NumChildren() != 2 {
		t.Fatalf("children = %d, want 2", ul.NumChildren())
	}
	if ul.ChildAt(0) != first {
		t.Error("first duplicate should keep its match")
	}
}

func TestShrinkAndGrowList(t *testing.T) {
	e := newTestEngine()
	_, root := newTestRoot()

	mustRender(t, e, root, keyedList("a", "b", "c", "d", "e"))
	ul := root.FirstChild()

	mustRender(t, e, root, keyedList("b", "d"))
	if ul.NumChildren() != 2 {
		t.Fatalf("children = %d, want 2", ul.NumChildren())
	}

	mustRender(t, e, root, keyedList("b", "d", "f", "g"))
	if ul.NumChildren() != 4 {
		t.Fatalf("children = %d, want 4", ul.NumChildren())
	}
	var order []string
	for _, c := range ul.Children() {
		order = append(order, c.FirstChild().Text())
	}
	for i, want := range []string{"b", "d", "f", "g"} {
		if order[i] != want {
			t.Fatalf("order = %v", order)
		}
	}
}
