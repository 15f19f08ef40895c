package dom

import (
	"testing"
)

func TestCreateAndAppend(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	child := doc.CreateText("hi")

	if err := parent.AppendChild(child); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	if parent.NumChildren() != 1 || parent.FirstChild() != child {
		t.Fatal("child not attached")
	}
	if child.Parent() != parent {
		t.Fatal("parent link missing")
	}
}

func TestInsertBeforeOrdering(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	c := doc.CreateElement("li")
	ul.AppendChild(a)
	ul.AppendChild(c)

	if err := ul.InsertBefore(b, c); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	want := []*Node{a, b, c}
	for i, n := range want {
		if ul.ChildAt(i) != n {
			t.Fatalf("child %d out of order", i)
		}
	}
}

func TestInsertBeforeRelocatesAttachedChild(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	ul.AppendChild(a)
	ul.AppendChild(b)

	// Moving b before a must not duplicate it.
	if err := ul.InsertBefore(b, a); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	if ul.NumChildren() != 2 {
		t.Fatalf("children = %d, want 2", ul.NumChildren())
	}
	if ul.ChildAt(0) != b || ul.ChildAt(1) != a {
		t.Fatal("relocation order wrong")
	}
}

func TestInsertBeforeErrors(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	text := doc.CreateText("t")
	li := doc.CreateElement("li")
	stranger := doc.CreateElement("li")

	if err := ul.InsertBefore(nil, nil); err == nil {
		t.Error("nil child should error")
	}
	if err := text.InsertBefore(li, nil); err == nil {
		t.Error("text parent should error")
	}
	if err := ul.InsertBefore(ul, nil); err == nil {
		t.Error("self insert should error")
	}
	if err := ul.InsertBefore(li, stranger); err == nil {
		t.Error("ref not a child should error")
	}
}

func TestReplaceChild(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	old := doc.CreateElement("span")
	repl := doc.CreateElement("p")
	div.AppendChild(old)

	if err := div.ReplaceChild(repl, old); err != nil {
		t.Fatalf("ReplaceChild: %v", err)
	}
	if div.NumChildren() != 1 || div.FirstChild() != repl {
		t.Fatal("replacement not in place")
	}
	if old.Parent() != nil {
		t.Fatal("old child still attached")
	}
}

func TestRemoveAbsentAttributeRecordsNothing(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	mark := doc.Mark()
	n.RemoveAttribute("missing")
	if ops := doc.OpsSince(mark); len(ops) != 0 {
		t.Errorf("ops = %v, want none", ops)
	}
}

func TestListeners(t *testing.T) {
	doc := NewDocument()
	btn := doc.CreateElement("button")

	calls := 0
	l := btn.AddEventListener("click", func(Event) { calls++ })
	if btn.ListenerCount("click") != 1 {
		t.Fatal("listener not registered")
	}

	if n := btn.Dispatch(Event{Type: "click"}); n != 1 {
		t.Fatalf("Dispatch = %d, want 1", n)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	btn.RemoveEventListener(l)
	btn.RemoveEventListener(l) // second removal is a no-op
	if btn.ListenerCount("click") != 0 {
		t.Fatal("listener not removed")
	}
	if n := btn.Dispatch(Event{Type: "click"}); n != 0 {
		t.Fatalf("Dispatch after removal = %d, want 0", n)
	}
}

func TestDispatchSetsTarget(t *testing.T) {
	doc := NewDocument()
	input := doc.CreateElement("input")
	var seen *Node
	input.AddEventListener("input", func(ev Event) { seen = ev.Target })
	input.Dispatch(Event{Type: "input", Data: map[string]any{"value": "x"}})
	if seen != input {
		t.Error("event target not set to dispatching node")
	}
}

func TestOpLog(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	mark := doc.Mark()

	div.SetAttribute("id", "x")
	txt := doc.CreateText("hi")
	div.AppendChild(txt)

	ops := doc.OpsSince(mark)
	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	want := []OpKind{OpSetAttr, OpCreateText, OpInsertBefore}
	if len(kinds) != len(want) {
		t.Fatalf("ops = %v, want kinds %v", ops, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("op %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	drained := doc.TakeOps()
	if len(drained) == 0 {
		t.Fatal("TakeOps returned nothing")
	}
	if len(doc.Ops()) != 0 {
		t.Fatal("TakeOps should drain the log")
	}
}

func TestNodeByID(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	if doc.NodeByID(n.ID()) != n {
		t.Error("NodeByID lookup failed")
	}
	if doc.NodeByID(99999) != nil {
		t.Error("unknown id should return nil")
	}
}

func TestForgetDropsNodeFromIndex(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	id := n.ID()

	doc.Forget(n)
	if doc.NodeByID(id) != nil {
		t.Error("forgotten node still resolvable by id")
	}
	doc.Forget(n)   // idempotent
	doc.Forget(nil) // nil is a no-op
}
