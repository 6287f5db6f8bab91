// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs shell scripts when files change.
//
// A Watcher registers a directory tree with fsnotify, filters events through
// doublestar patterns and coalesces bursts of events (an editor writing a
// temp file then renaming it) into one run after a quiet period. Runs never
// overlap: a window that closes while the previous run is still going is
// postponed.
package watch
