package workspace

import "errors"

var (
	// ErrWorkspaceNotFound is returned when the workspace root does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrWorkspaceEmpty is returned when no package manifest is found below the root.
	ErrWorkspaceEmpty = errors.New("no packages found in workspace")
	// ErrManifestUnreadable marks a manifest that could not be read.
	ErrManifestUnreadable = errors.New("manifest unreadable")
	// ErrManifestUnparseable marks a manifest that is not valid JSON.
	ErrManifestUnparseable = errors.New("manifest unparseable")
)
