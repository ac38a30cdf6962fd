// Package preflight provides readiness checks for the filesystem paths and
// external tools vidconv depends on.
//
// The CLI "vidconv doctor" command renders every result; "vidconv watch"
// runs RunAll before it starts and refuses to start when a check fails.
package preflight
