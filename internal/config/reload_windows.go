//go:build windows

package config

// registerSignalHandler does nothing on Windows, which has no SIGHUP. The
// file watcher still triggers reloads.
func (r *Reloader) registerSignalHandler() {}
