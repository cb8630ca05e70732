// Package surface connects the cortex state machine to the external
// collaboration surfaces a design workflow touches: Figma, GitHub, Notion,
// Slack and the analytics backend.
//
// Each surface is represented by an Adapter that reports whether it is
// configured and can verify connectivity. The Coordinator owns the adapter
// registry, exposes the static workflow template catalog, and turns a
// template into an execution plan on a cortex.Machine, refusing to start
// when a required surface is not ready.
package surface
