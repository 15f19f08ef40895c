// Package live streams reconciliation output to thin clients. Each
// websocket session owns a server-side live tree and an engine; client
// events dispatch into the tree, the view re-renders, and the primitive
// ops the pass produced ship back as a single patch frame. Invalidations
// between passes coalesce, so a burst of state changes costs one render.
package live
