// Package convert is the entry point for turning a source video into a
// normalized MP4.
//
// A Converter opens the source, builds a composition from its first video and
// first audio track, and starts a passthrough export. Validation and
// composition failures are returned synchronously from Convert; export
// failures arrive asynchronously through the registered Observer as
// *ExportError values. Each call owns its session and its VideoOutput, so a
// single Converter may serve overlapping conversions.
package convert
