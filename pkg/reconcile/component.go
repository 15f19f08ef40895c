package reconcile

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/verdant-ui/verdant/internal/errors"
	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// componentError carries a failed component render up the tree until an
// error boundary catches it or it reaches the root.
type componentError struct {
	err       error
	component string
}

func (c *componentError) Error() string {
	return fmt.Sprintf("component %s: %v", c.component, c.err)
}

func (c *componentError) Unwrap() error { return c.err }

// instance is one level of resolved component logic at a live node.
// Nested components (a component rendering another component) form a
// chain attached to the single live node backing their output.
type instance struct {
	stateless bool
	identity  uintptr
	key       string
	name      string
	fn        vdom.RenderFunc
	comp      vdom.Component
	props     vdom.Props
	rendered  *vdom.VNode
	failed    bool
}

// descIdentity returns the function-pointer identity of a component
// description's render logic. Identity is resolved once per description,
// never re-detected by shape-sniffing during render.
func descIdentity(desc *vdom.VNode) (uintptr, bool) {
	if desc.Fn != nil {
		return reflect.ValueOf(desc.Fn).Pointer(), true
	}
	return reflect.ValueOf(desc.Ctor).Pointer(), false
}

// funcName returns a short diagnostic name for a function pointer.
func funcName(ptr uintptr) string {
	f := runtime.FuncForPC(ptr)
	if f == nil {
		return "anonymous"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// chainCompatible reports whether an existing instance can be reused for
// a component description: same render logic and same key. A mismatch is
// a replace at the component level, not an update.
func chainCompatible(in *instance, desc *vdom.VNode) bool {
	if in == nil || desc == nil || !desc.IsComponent() {
		return false
	}
	id, stateless := descIdentity(desc)
	return in.identity == id && in.stateless == stateless && in.key == desc.Key
}

// newInstance constructs the instance for a component description. The
// stateful constructor runs exactly once here with the initial props.
func (e *Engine) newInstance(desc *vdom.VNode) *instance {
	id, stateless := descIdentity(desc)
	in := &instance{
		stateless: stateless,
		identity:  id,
		key:       desc.Key,
		name:      funcName(id),
	}
	if stateless {
		in.fn = desc.Fn
	} else {
		in.comp = desc.Ctor(desc.Props)
		if m, ok := in.comp.(vdom.Mounter); ok {
			m.Mount()
		}
	}
	return in
}

// renderInstance invokes one instance's render contract with the given
// props, converting panics into component errors.
func (e *Engine) renderInstance(in *instance, props vdom.Props) (out *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			err = &componentError{err: rerr, component: in.name}
		}
	}()

	in.props = props
	if in.stateless {
		out = in.fn(props)
	} else {
		if pr, ok := in.comp.(vdom.PropsReceiver); ok {
			pr.SetProps(props)
		}
		out = in.comp.Render()
	}
	if out == nil {
		return nil, &componentError{
			err:       errors.New("E302"),
			component: in.name,
		}
	}
	return out, nil
}

// resolveChain renders a component description down to its effective
// non-component output, reusing instances from oldChain while identities
// match and constructing new ones past the first mismatch. On error the
// partial chain built so far is returned alongside the error so callers
// can search it for a boundary.
func (e *Engine) resolveChain(oldChain []*instance, desc *vdom.VNode) (*vdom.VNode, []*instance, error) {
	var chain []*instance
	cur := desc
	depth := 0

	for cur != nil && cur.IsComponent() {
		var in *instance
		if depth < len(oldChain) && chainCompatible(oldChain[depth], cur) {
			in = oldChain[depth]
		} else {
			// Identity lost at this level: everything deeper is torn
			// down with it.
			if depth < len(oldChain) {
				teardownChain(oldChain[depth:])
				oldChain = oldChain[:depth]
			}
			in = e.newInstance(cur)
		}

		out, err := e.renderInstance(in, cur.Props)
		if err != nil {
			return nil, append(chain, in), err
		}
		in.rendered = out
		chain = append(chain, in)
		cur = out
		depth++
	}

	// A compatible prefix can shrink: the old chain may have been deeper.
	if depth < len(oldChain) {
		teardownChain(oldChain[depth:])
	}
	return cur, chain, nil
}

// teardownChain runs cleanup hooks innermost-first.
func teardownChain(chain []*instance) {
	for i := len(chain) - 1; i >= 0; i-- {
		if u, ok := chain[i].comp.(vdom.Unmounter); ok {
			u.Unmount()
		}
	}
}

// catchAtBoundary searches a chain innermost-first for an error boundary
// willing to contain err. The boundary captures the error and re-renders;
// its fallback output is constructed fresh and replaces live (when
// attached). Returns the node now holding the fallback, the rebuilt
// chain, and nil — or the original error if no boundary contained it.
func (e *Engine) catchAtBoundary(doc *dom.Document, parent, live *dom.Node, chain []*instance, ce *componentError) (*dom.Node, []*instance, error) {
	for i := len(chain) - 1; i >= 0; i-- {
		in := chain[i]
		bc, ok := in.comp.(vdom.ErrorCatcher)
		if !ok || in.failed {
			// A boundary that already failed this pass cannot catch its
			// own fallback's error; keep searching shallower.
			continue
		}

		in.failed = true
		bc.CatchError(ce.Unwrap())
		if e.metrics != nil {
			e.metrics.boundaryCatches.Inc()
		}
		e.logger.Warn("error boundary captured render error",
			"boundary", in.name,
			"error", ce.Unwrap(),
		)

		teardownChain(chain[i+1:])
		chain = chain[:i+1]

		fallback, err := e.renderInstance(in, in.props)
		if err != nil {
			continue
		}
		in.rendered = fallback

		eff, sub, err := e.resolveChain(nil, fallback)
		if err != nil {
			continue
		}
		chain = append(chain, sub...)

		node, err := e.createTree(doc, eff)
		if err != nil {
			continue
		}

		if live != nil && live.Parent() == parent && parent != nil {
			e.release(live)
			if rerr := parent.ReplaceChild(node, live); rerr != nil {
				return nil, chain, errors.New("E401").Wrap(rerr)
			}
		}
		return node, chain, nil
	}
	return nil, chain, ce
}
