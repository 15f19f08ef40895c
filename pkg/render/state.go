package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/verdant-ui/verdant/pkg/vdom"
)

const (
	// StateScriptID is the element id of the embedded state payload the
	// hydrator looks for inside server-rendered markup.
	StateScriptID = "verdant-state"

	// IslandAttr marks a subtree as an independently hydratable island.
	// Its value is the island name.
	IslandAttr = "data-verdant-island"

	// HydratedAttr is set on an island root once hydration has claimed
	// it.
	HydratedAttr = "data-hydrated"
)

// StatePayload is the serialized state a server render embeds for the
// hydrating engine: the props the root was rendered with plus any named
// values components stashed for the client.
type StatePayload struct {
	Props  map[string]any `json:"props,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// WriteStateScript emits the state payload as an embedded JSON script.
// encoding/json escapes "<" by default, so payload content cannot break
// out of the script element.
func WriteStateScript(w io.Writer, p *StatePayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("render: marshal state payload: %w", err)
	}
	_, err = fmt.Fprintf(w, `<script id=%q type="application/json">%s</script>`, StateScriptID, data)
	return err
}

// Island wraps a description in a named island root, the unit of
// partial hydration. Islands hydrate independently; a mismatch inside
// one island never disturbs its siblings.
func Island(name string, child *vdom.VNode) *vdom.VNode {
	return vdom.Div(
		vdom.Attr{Key: IslandAttr, Value: name},
		child,
	)
}
