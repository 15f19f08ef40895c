package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/verdant-ui/verdant/internal/errors"
	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// Phase identifies which engine operation an error event came from.
type Phase string

const (
	PhaseRender  Phase = "render"
	PhasePatch   Phase = "patch"
	PhaseHydrate Phase = "hydrate"
)

// RenderError is the host-level event emitted when a component render
// error reaches the root without being caught by an error boundary.
type RenderError struct {
	Err       error
	Phase     Phase
	Component string
	Time      time.Time
}

// listenerReg tracks the single handler the engine owns for one
// (node, event) pair. The node carries one stable trampoline listener
// that reads handler at dispatch time, so swapping handlers is a
// registry update and at most one listener per event name is ever
// attached.
type listenerReg struct {
	handler any
	token   *dom.Listener
}

// Engine performs reconciliation passes against live trees. All of its
// state (committed associations, listener registrations, component
// instances) is owned by the instance; independent engines never share
// state, so multiple roots and tests run without cross-contamination.
type Engine struct {
	logger  *slog.Logger
	metrics *engineMetrics
	tracer  trace.Tracer
	onError func(RenderError)

	// Side tables keyed by live node identity. Entries are created when
	// a node is created or hydrated, updated on every successful patch,
	// and deleted when the node is released. No entry may outlive its
	// node's attachment to the tree.
	committed map[*dom.Node]*vdom.VNode
	listeners map[*dom.Node]map[string]*listenerReg
	chains    map[*dom.Node][]*instance

	inPass map[*dom.Node]bool
	hstats HydrationStats
}

// HydrationStats counts hydration outcomes across an engine's lifetime.
type HydrationStats struct {
	// Mismatches counts recoverable content differences that were
	// corrected in place.
	Mismatches int
	// Fallbacks counts hydration attempts abandoned for a full client
	// render.
	Fallbacks int
}

// Hydration returns the engine's accumulated hydration outcome counts.
func (e *Engine) Hydration() HydrationStats { return e.hstats }

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and error reports.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithErrorHandler installs the sink for uncontained component render
// errors. Without a handler, events are logged only.
func WithErrorHandler(fn func(RenderError)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// WithMetrics registers the engine's Prometheus collectors (pass counts,
// primitive op counts, hydration mismatches) with the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = newEngineMetrics(reg)
	}
}

// WithTracerName enables OpenTelemetry spans around each pass, resolved
// through the global tracer provider under the given name.
func WithTracerName(name string) Option {
	return func(e *Engine) {
		if name == "" {
			name = "verdant"
		}
		e.tracer = otel.Tracer(name)
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:    slog.Default(),
		committed: make(map[*dom.Node]*vdom.VNode),
		listeners: make(map[*dom.Node]map[string]*listenerReg),
		chains:    make(map[*dom.Node][]*instance),
		inPass:    make(map[*dom.Node]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render commits one reconciliation pass: it reconciles the container's
// live content against desc, mutating the live tree minimally. If the
// container holds a previously committed root the pass patches in place;
// otherwise the container is cleared and a fresh tree is constructed.
//
// Render is synchronous and run-to-completion. Initiating a new pass
// against a container that is already mid-pass is an error; callers
// coalesce re-render requests outside the engine.
func (e *Engine) Render(ctx context.Context, container *dom.Node, desc *vdom.VNode) error {
	if container == nil || container.Kind() != dom.ElementNode {
		return fmt.Errorf("reconcile: render container must be an element node")
	}
	if e.inPass[container] {
		return fmt.Errorf("reconcile: re-entrant render pass against the same root")
	}
	e.inPass[container] = true
	defer delete(e.inPass, container)

	// Structural errors abort the pass before any mutation.
	if err := vdom.Validate(desc); err != nil {
		return err
	}

	var span trace.Span
	if e.tracer != nil {
		_, span = e.tracer.Start(ctx, "reconcile.Render")
		defer span.End()
	}

	start := time.Now()
	mark := container.Document().Mark()

	err := e.renderPass(container, desc)

	ops := container.Document().OpsSince(mark)
	if e.metrics != nil {
		e.metrics.observePass(string(PhaseRender), time.Since(start), ops)
	}
	if span != nil {
		span.SetAttributes(
			attribute.Int("reconcile.ops", len(ops)),
		)
	}

	if ce, ok := err.(*componentError); ok {
		// Uncontained component error: surface as a host-level event.
		// Subtrees committed earlier in the pass remain intact.
		e.emitError(RenderError{
			Err:       ce.Unwrap(),
			Phase:     PhaseRender,
			Component: ce.component,
			Time:      time.Now(),
		})
		return errors.FromError(ce.Unwrap(), "E301")
	}
	return err
}

func (e *Engine) renderPass(container *dom.Node, desc *vdom.VNode) error {
	// A previous render leaves exactly one committed root child.
	var live *dom.Node
	for _, c := range container.Children() {
		if _, ok := e.committed[c]; ok {
			live = c
			break
		}
	}

	if live != nil {
		_, err := e.diffNode(container, live, desc)
		return err
	}

	e.clearContainer(container)
	node, err := e.createTree(container.Document(), desc)
	if err != nil {
		return err
	}
	if err := container.AppendChild(node); err != nil {
		return errors.New("E401").Wrap(err)
	}
	return nil
}

// ResetBoundaries clears the captured error state of every error boundary
// under container, propagating the reset to nested boundaries. The caller
// re-renders afterwards to resume normal output.
func (e *Engine) ResetBoundaries(container *dom.Node) {
	e.resetBoundaries(container)
}

func (e *Engine) resetBoundaries(n *dom.Node) {
	for _, in := range e.chains[n] {
		in.failed = false
		if r, ok := in.comp.(vdom.ErrorResetter); ok {
			r.ResetError()
		}
	}
	for _, c := range n.Children() {
		e.resetBoundaries(c)
	}
}

// Committed returns the description last committed for a live node, or
// nil. Exposed for tests and external schedulers.
func (e *Engine) Committed(n *dom.Node) *vdom.VNode {
	return e.committed[n]
}

// ListenerHandler returns the handler currently registered for an event
// on a node, or nil.
func (e *Engine) ListenerHandler(n *dom.Node, event string) any {
	if regs := e.listeners[n]; regs != nil {
		if reg := regs[event]; reg != nil {
			return reg.handler
		}
	}
	return nil
}

func (e *Engine) emitError(ev RenderError) {
	e.logger.Error("uncontained component render error",
		"component", ev.Component,
		"phase", string(ev.Phase),
		"error", ev.Err,
	)
	if e.metrics != nil {
		e.metrics.componentErrors.Inc()
	}
	if e.onError != nil {
		e.onError(ev)
	}
}

// clearContainer releases and detaches all children of a container.
func (e *Engine) clearContainer(container *dom.Node) {
	for _, c := range container.Children() {
		e.release(c)
		container.RemoveChild(c)
	}
}

// release recursively tears down a subtree's resources: children first,
// then listener registrations, committed associations, and component
// instances. Post-order guarantees listeners are unregistered before
// their owning node disappears.
func (e *Engine) release(n *dom.Node) {
	for _, c := range n.Children() {
		e.release(c)
	}
	if regs := e.listeners[n]; regs != nil {
		for _, reg := range regs {
			n.RemoveEventListener(reg.token)
		}
		delete(e.listeners, n)
	}
	if chain := e.chains[n]; chain != nil {
		teardownChain(chain)
		delete(e.chains, n)
	}
	delete(e.committed, n)
	// Released nodes are never addressed again; drop them from the
	// document index so long-lived sessions do not leak them.
	n.Document().Forget(n)
}
