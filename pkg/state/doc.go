// Package state persists the sync-state snapshot: one record per target
// the tool has ever written, keyed by absolute target path. The snapshot is
// the sole authority on which targets are managed, and the drift detector's
// only input besides the live filesystem.
package state
