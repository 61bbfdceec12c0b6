// Package app wires one monox invocation together: it resolves the
// configuration, builds the logger, picks the registry binding, attaches the
// observers (stage reporter, metrics, event stream) and exposes one method
// per user-facing command. Nothing here parses flags, so the same App backs
// the CLI and the system tests.
package app
