package dom

// OpKind is the type of primitive operation recorded on the op log.
type OpKind uint8

const (
	OpCreateElement  OpKind = 0x01 // New element node
	OpCreateText     OpKind = 0x02 // New text node
	OpSetText        OpKind = 0x03 // Update text content
	OpSetAttr        OpKind = 0x04 // Set/update attribute
	OpRemoveAttr     OpKind = 0x05 // Remove attribute
	OpSetProp        OpKind = 0x06 // Set direct property
	OpAddListener    OpKind = 0x07 // Register event listener
	OpRemoveListener OpKind = 0x08 // Unregister event listener
	OpInsertBefore   OpKind = 0x09 // Insert (or relocate) node
	OpRemoveChild    OpKind = 0x0A // Detach node
	OpReplaceChild   OpKind = 0x0B // Replace node entirely
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetProp:
		return "SetProp"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemoveChild:
		return "RemoveChild"
	case OpReplaceChild:
		return "ReplaceChild"
	default:
		return "Unknown"
	}
}

// Op records one primitive operation applied to the live tree. The op log
// is the unit shipped to thin clients and the measure of reconciliation
// cost in tests.
type Op struct {
	Kind   OpKind `json:"kind"`
	Node   uint64 `json:"node"`             // Target node id
	Name   string `json:"name,omitempty"`   // Attribute/property/event name
	Value  string `json:"value,omitempty"`  // New value
	Tag    string `json:"tag,omitempty"`    // For CreateElement
	Parent uint64 `json:"parent,omitempty"` // For insert/remove/replace
	Ref    uint64 `json:"ref,omitempty"`    // Insert-before reference node
}
