// Package bootstrap gives streamkit binaries one lifecycle: validated config,
// a logger built from it, start hooks, then either a signal wait (Run) or a
// finite task (RunTask), then stop hooks in reverse order.
package bootstrap
