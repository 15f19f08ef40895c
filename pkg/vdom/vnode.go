package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText      VKind = iota // Plain text node
	KindElement                // <div>, <button>, etc.
	KindComponent              // User-defined component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Props holds attributes, event handlers, and component props.
type Props map[string]any

// Reserved prop names. These are consumed by the engine and never written
// to the host tree.
const (
	PropChildren = "children"
	PropKey      = "key"
	PropRef      = "ref"
)

// IsReserved reports whether name is a reserved prop name.
func IsReserved(name string) bool {
	return name == PropChildren || name == PropKey || name == PropRef
}

// RenderFunc is the stateless component calling convention: a plain
// function of props invoked on every pass.
type RenderFunc func(Props) *VNode

// Component is the stateful calling convention. A single persistent
// instance is constructed once per tree position and its Render method is
// invoked on every subsequent pass.
type Component interface {
	Render() *VNode
}

// Ctor constructs a stateful component instance from its initial props.
type Ctor func(Props) Component

// PropsReceiver is implemented by stateful components that want the
// current props assigned onto the instance before each render.
type PropsReceiver interface {
	SetProps(Props)
}

// Mounter is implemented by stateful components that want a hook after
// their instance is first constructed.
type Mounter interface {
	Mount()
}

// Unmounter is implemented by stateful components that need cleanup when
// their identity is lost (type change, key change, or removal).
type Unmounter interface {
	Unmount()
}

// ErrorCatcher marks a stateful component as an error boundary. When a
// descendant's render fails, the nearest ancestor ErrorCatcher receives
// the error and is re-rendered, typically producing fallback content.
type ErrorCatcher interface {
	Component
	CatchError(err error)
}

// ErrorResetter is implemented by boundaries that support an explicit
// reset, clearing the captured error so normal rendering resumes.
type ErrorResetter interface {
	ResetError()
}

// RefFunc receives the live host node backing an element description once
// the node is created or adopted. The argument is a *dom.Node; it is typed
// as any so descriptions stay independent of the host tree package.
type RefFunc func(node any)

// VNode is the immutable description of desired UI for one render pass.
// Exactly one of the three variants applies, selected by Kind.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes, event handlers, component props
	Children []*VNode // Child descriptions (elements only)
	Key      string   // Reconciliation key, unique among siblings
	Text     string   // For KindText
	Fn       RenderFunc // For KindComponent, stateless convention
	Ctor     Ctor       // For KindComponent, stateful convention
	Ref      RefFunc    // Called with the live node after create/adopt
}

// IsText reports whether the description is a text node.
func (v *VNode) IsText() bool { return v != nil && v.Kind == KindText }

// IsElement reports whether the description is an element node.
func (v *VNode) IsElement() bool { return v != nil && v.Kind == KindElement }

// IsComponent reports whether the description is a component node.
func (v *VNode) IsComponent() bool { return v != nil && v.Kind == KindComponent }

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}
