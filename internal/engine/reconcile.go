package engine

import "github.com/veland/grimsync/internal/syncstate"

// Classification statuses for one incoming note.
const (
	StatusNew       = "new"
	StatusUnchanged = "unchanged"
	StatusChanged   = "changed"
	StatusRenamed   = "renamed"
)

// Action is the planned file-system operation for one note.
type Action struct {
	Status  string
	Path    string // target output path, vault-relative
	OldPath string // previous output path, set when Status is renamed
}

// classify decides what to do with a note given its rendered fingerprint,
// derived output path, and the record from the last successful sync.
//
// The fingerprint covers the post-injection content, so a vault change that
// produces different links counts as a content change even when the source
// meeting is untouched.
func classify(path, fingerprint string, prior *syncstate.Record) Action {
	switch {
	case prior == nil:
		return Action{Status: StatusNew, Path: path}
	case prior.Path != path:
		return Action{Status: StatusRenamed, Path: path, OldPath: prior.Path}
	case prior.Fingerprint == fingerprint:
		return Action{Status: StatusUnchanged, Path: path}
	default:
		return Action{Status: StatusChanged, Path: path}
	}
}
