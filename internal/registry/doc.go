// Package registry answers "what is the latest published version of this
// dependency".
//
// Two bindings exist. CommandClient asks the package manager binary
// (`<pm> view <dep> version --json`) and is the default. HTTPClient talks to an
// npm-compatible registry directly. Either can be wrapped with NewCached so
// repeated lookups within one process hit an LRU cache.
//
// Every failure is reported as an error wrapping ErrLookupFailed. Callers
// treat it as "latest version unknown".
package registry
