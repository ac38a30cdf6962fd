// Package main hosts the vidconv CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes one-shot conversions, source probing,
// the inbox watcher, conversion history, environment diagnostics, and
// configuration scaffolding. Configuration resolution and logger setup live
// here; the conversion work itself belongs to the internal packages.
package main
