// Package viz renders the reactor in the terminal.
//
// [Model] is a Bubble Tea control panel that drives a [reactor.Clock] one
// frame at a time and shows the operator readouts, a braille drawing of the
// core and live charts. [AccidentReport] and [RenderPanels] produce the
// post-run text used by the CLI.
//
// # Key Bindings
//
//	Space   - Pause/Resume simulation
//	Up/Down - Speed +/- 0.1x
//	[ / ]   - Withdraw/insert control rods by 5%
//	S       - Stop the run
//	Esc/Q   - Quit
package viz
