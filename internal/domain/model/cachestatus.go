package model

// Transition records what opening the cache did to its schema.
type Transition string

// Transition values.
const (
	TransitionNone      Transition = "none"
	TransitionCreate    Transition = "create"
	TransitionUpgrade   Transition = "upgrade"
	TransitionDowngrade Transition = "downgrade"
	// TransitionRecover is a destructive reset after a previous schema
	// change was interrupted and left the stored version dirty.
	TransitionRecover Transition = "recover"
)

// CacheStatus is a point-in-time snapshot of a cache file's schema state.
// Version is -1 when no schema version has been recorded yet.
type CacheStatus struct {
	Path    string
	Version int
	Dirty   bool
	Table   string
	Exists  bool
	Columns []string
	Rows    int64
}
