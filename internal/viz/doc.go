// Package viz renders experiments in the terminal.
//
// [Monitor] is a Bubble Tea program stepping an experiment in real time. It
// draws the workspace plane on a braille [Canvas] (control point trail,
// objects, walls) next to the scaling factor, measured wrench, constraint
// values, trajectory progress and the live parameter handles.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single cycle
//	R     - Rebuild and restart
//	Tab   - Next parameter
//	Up/K  - Increase parameter
//	Down/J- Decrease parameter
//	+/-   - Cycles per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//
// [PlotSamples] and [PlotTrajectories] chart recorded runs and trajectory
// profiles with asciigraph.
package viz
