package dom

import (
	"fmt"
	"sort"
)

// NodeKind is the live node type discriminator.
type NodeKind uint8

const (
	ElementNode NodeKind = iota // An element with a tag, attributes, children
	TextNode                    // A leaf holding text content
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	default:
		return "Unknown"
	}
}

// Event is delivered to listeners registered on a node.
type Event struct {
	Type   string         // "click", "input", ...
	Target *Node          // The node the event was dispatched on
	Data   map[string]any // Host-specific payload (input value, key, ...)
}

// EventHandler is invoked when a matching event is dispatched.
type EventHandler func(Event)

// Listener is the registration handle returned by AddEventListener.
// Handlers are functions and therefore not comparable; removal goes
// through the handle instead.
type Listener struct {
	node  *Node
	event string
	fn    EventHandler
}

// Event returns the event name the listener is registered for.
func (l *Listener) Event() string { return l.event }

// Node is a live, persistent node in the host tree. Nodes are created by
// a Document and mutated only through the primitive operations below;
// every mutation is recorded on the owning Document's op log.
type Node struct {
	kind      NodeKind
	id        uint64
	doc       *Document
	tag       string
	attrs     map[string]string
	props     map[string]any
	text      string
	parent    *Node
	children  []*Node
	listeners map[string][]*Listener
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// ID returns the document-unique node id.
func (n *Node) ID() uint64 { return n.id }

// Tag returns the element tag name ("" for text nodes).
func (n *Node) Tag() string { return n.tag }

// Text returns the text content of a text node.
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil for detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// AttrNames returns the present attribute names in sorted order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prop returns a direct property value and whether it is set.
func (n *Node) Prop(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// NumChildren returns the number of child nodes.
func (n *Node) NumChildren() int { return len(n.children) }

// ChildAt returns the child at index i, or nil if out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.ChildAt(0) }

// Children returns a snapshot of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetText updates the content of a text node.
func (n *Node) SetText(text string) {
	n.text = text
	n.doc.record(Op{Kind: OpSetText, Node: n.id, Value: text})
}

// SetAttribute sets an attribute on an element.
func (n *Node) SetAttribute(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	n.doc.record(Op{Kind: OpSetAttr, Node: n.id, Name: name, Value: value})
}

// RemoveAttribute removes an attribute from an element. Removing an
// absent attribute is a no-op and records nothing.
func (n *Node) RemoveAttribute(name string) {
	if _, ok := n.attrs[name]; !ok {
		return
	}
	delete(n.attrs, name)
	n.doc.record(Op{Kind: OpRemoveAttr, Node: n.id, Name: name})
}

// SetProperty assigns a direct settable field on the node (e.g. "value",
// "checked") as opposed to a serialized attribute.
func (n *Node) SetProperty(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
	n.doc.record(Op{Kind: OpSetProp, Node: n.id, Name: name, Value: fmt.Sprintf("%v", value)})
}

// AddEventListener registers a handler for the given event name and
// returns the registration handle used for removal.
func (n *Node) AddEventListener(event string, fn EventHandler) *Listener {
	l := &Listener{node: n, event: event, fn: fn}
	if n.listeners == nil {
		n.listeners = make(map[string][]*Listener)
	}
	n.listeners[event] = append(n.listeners[event], l)
	n.doc.record(Op{Kind: OpAddListener, Node: n.id, Name: event})
	return l
}

// RemoveEventListener removes a previously registered listener. Removing
// a listener twice is a no-op.
func (n *Node) RemoveEventListener(l *Listener) {
	if l == nil || l.node != n {
		return
	}
	regs := n.listeners[l.event]
	for i, reg := range regs {
		if reg == l {
			n.listeners[l.event] = append(regs[:i], regs[i+1:]...)
			n.doc.record(Op{Kind: OpRemoveListener, Node: n.id, Name: l.event})
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for an event.
func (n *Node) ListenerCount(event string) int {
	return len(n.listeners[event])
}

// Dispatch delivers an event to this node's listeners in registration
// order and returns the number of handlers invoked.
func (n *Node) Dispatch(ev Event) int {
	ev.Target = n
	regs := n.listeners[ev.Type]
	// Snapshot: handlers may add or remove listeners while running.
	snapshot := make([]*Listener, len(regs))
	copy(snapshot, regs)
	for _, l := range snapshot {
		l.fn(ev)
	}
	return len(snapshot)
}

// InsertBefore inserts child before ref among this node's children. A nil
// ref appends. If child is already attached anywhere in the document it is
// detached first, so inserting an attached node relocates it.
func (n *Node) InsertBefore(child, ref *Node) error {
	if n.kind != ElementNode {
		return fmt.Errorf("dom: cannot insert into a %s node", n.kind)
	}
	if child == nil {
		return fmt.Errorf("dom: insert of nil child into <%s>", n.tag)
	}
	if child == n {
		return fmt.Errorf("dom: cannot insert <%s> into itself", n.tag)
	}

	// Relocation: detach from the current parent without recording a
	// separate remove op. The insert op carries the move.
	if child.parent != nil {
		child.parent.detach(child)
	}

	idx := len(n.children)
	var refID uint64
	if ref != nil {
		found := false
		for i, c := range n.children {
			if c == ref {
				idx = i
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("dom: reference node is not a child of <%s>", n.tag)
		}
		refID = ref.id
	}

	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n

	n.doc.record(Op{Kind: OpInsertBefore, Node: child.id, Parent: n.id, Ref: refID})
	return nil
}

// AppendChild appends child to this node's children.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// RemoveChild detaches child from this node.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return fmt.Errorf("dom: node is not a child of <%s>", n.tag)
	}
	n.detach(child)
	n.doc.record(Op{Kind: OpRemoveChild, Node: child.id, Parent: n.id})
	return nil
}

// ReplaceChild replaces old with newChild in this node's child list.
func (n *Node) ReplaceChild(newChild, old *Node) error {
	if old == nil || old.parent != n {
		return fmt.Errorf("dom: node to replace is not a child of <%s>", n.tag)
	}
	if newChild.parent != nil {
		newChild.parent.detach(newChild)
	}
	for i, c := range n.children {
		if c == old {
			n.children[i] = newChild
			newChild.parent = n
			old.parent = nil
			n.doc.record(Op{Kind: OpReplaceChild, Node: newChild.id, Parent: n.id, Ref: old.id})
			return nil
		}
	}
	return fmt.Errorf("dom: node to replace is not a child of <%s>", n.tag)
}

// detach removes child from the child list without recording an op.
func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}
