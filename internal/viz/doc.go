// Package viz provides the terminal front end for the particle sandbox.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that steps an engine at 60 frames per second
//   - [NewPicker]: scenario menu and parameter editor in front of the live view
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - Theme selection with 3 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R / C - Reset / Clear
//	Tab   - Cycle interaction mode (gravity, create, destroy, measure)
//	Enter - Apply the mode at the cursor; left click does the same
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	E     - Export a JSON snapshot
//	?     - Show help overlay
//
// # Recording
//
// GIF recordings and JSON snapshots are written to the current directory
// with timestamped names.
package viz
