// Package workspace turns a directory tree of package.json files into a list
// of model.Package values.
//
// The Scanner walks the workspace without following symbolic links, prunes
// every directory the ignore predicate rejects, and parses every manifest
// except the one at the workspace root. Unreadable or malformed manifests are
// logged and skipped; only a missing root or an empty result is fatal.
package workspace
