// Package viz provides a terminal-based live view of a running simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: the Bubble Tea program driving a [sim.Engine] in real time
//   - [Canvas]: Braille-based pixel canvas rendering a z-slice of |δΦ|
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	[]/   - Move the rendered z-slice
//	+/-   - Steps simulated per frame
//	?     - Show help overlay
package viz
