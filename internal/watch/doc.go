// Package watch converts media files dropped into an inbox directory.
//
// A Watcher holds an exclusive flock for its lifetime so only one instance
// serves a given inbox. Filesystem events come from fsnotify; each matching
// path is debounced until no further writes arrive for the settle delay and
// then handed to the configured Handler, one path at a time.
package watch
