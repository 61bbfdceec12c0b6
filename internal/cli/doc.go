// Package cli maps the monox command line onto the app package. It owns the
// cobra command tree, turns the flags a user actually set into runtime
// overrides, and reports failures as an ExitError carrying the process exit
// code.
package cli
