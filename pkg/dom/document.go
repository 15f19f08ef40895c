package dom

// Document owns a live tree: it creates nodes, assigns their ids, and
// records every primitive operation applied to them. Documents are not
// safe for concurrent use; the engine's single-threaded pass model means
// they need no locking.
type Document struct {
	nextID uint64
	byID   map[uint64]*Node
	ops    []Op
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		byID: make(map[uint64]*Node),
	}
}

// CreateElement creates a detached element node.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode)
	n.tag = tag
	d.record(Op{Kind: OpCreateElement, Node: n.id, Tag: tag})
	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Node {
	n := d.newNode(TextNode)
	n.text = text
	d.record(Op{Kind: OpCreateText, Node: n.id, Value: text})
	return n
}

func (d *Document) newNode(kind NodeKind) *Node {
	d.nextID++
	n := &Node{kind: kind, id: d.nextID, doc: d}
	d.byID[n.id] = n
	return n
}

// NodeByID returns the node with the given id, or nil.
func (d *Document) NodeByID(id uint64) *Node {
	return d.byID[id]
}

// Forget drops a node from the id index. Callers forget nodes they have
// permanently detached so long-lived documents do not accumulate every
// node they ever created; a forgotten node can no longer be resolved by
// NodeByID.
func (d *Document) Forget(n *Node) {
	if n == nil {
		return
	}
	delete(d.byID, n.id)
}

// Ops returns a snapshot of the recorded operations.
func (d *Document) Ops() []Op {
	out := make([]Op, len(d.ops))
	copy(out, d.ops)
	return out
}

// Mark returns a position in the op log for later use with OpsSince.
func (d *Document) Mark() int {
	return len(d.ops)
}

// OpsSince returns the operations recorded after the given mark.
func (d *Document) OpsSince(mark int) []Op {
	if mark < 0 || mark > len(d.ops) {
		return nil
	}
	out := make([]Op, len(d.ops)-mark)
	copy(out, d.ops[mark:])
	return out
}

// ResetOps clears the op log.
func (d *Document) ResetOps() {
	d.ops = d.ops[:0]
}

// TakeOps returns all recorded operations and clears the log. Used by
// live sessions to ship one pass's mutations as a frame.
func (d *Document) TakeOps() []Op {
	out := make([]Op, len(d.ops))
	copy(out, d.ops)
	d.ops = d.ops[:0]
	return out
}

func (d *Document) record(op Op) {
	d.ops = append(d.ops, op)
}
