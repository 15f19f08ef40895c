// Package render serializes description trees to HTML on the server.
//
// The renderer's attribute output matches what the reconciliation engine
// writes to live trees, so markup produced here hydrates cleanly against
// the same description. WriteStateScript embeds the state payload the
// hydrator extracts, and Island marks subtrees for partial hydration.
package render
