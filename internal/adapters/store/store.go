// Package store abstracts the shared realtime state tree.
//
// The model follows hosted realtime-database semantics: a path-addressed
// JSON tree, value subscriptions that fire with the full value at the
// subscribed path, last-write-wins updates, and multi-path patches that
// apply atomically. Paths are slash-separated, e.g. "teamPickerState/teamA".
package store

import "context"

// Snapshot is one delivered value for a subscribed path. Value is a deep
// copy of the JSON tree at Path (nil when the path is absent).
type Snapshot struct {
	Path     string
	Value    any
	Revision uint64
	OpID     string
}

// Store provides read/write/subscribe access to the shared state tree.
type Store interface {
	// Subscribe registers a listener on path. The channel receives the
	// current value immediately and then every subsequent value, in the
	// order the store applies them. The subscription ends when ctx is
	// cancelled or the store closes.
	Subscribe(ctx context.Context, path string) (<-chan Snapshot, error)

	// ReadOnce returns the current value at path, nil when absent.
	ReadOnce(ctx context.Context, path string) (any, error)

	// Set replaces the value at path. A nil value deletes the subtree.
	Set(ctx context.Context, path string, value any) error

	// Update applies a multi-path patch atomically: either every entry
	// lands or none does. Nil entry values delete their subtree.
	Update(ctx context.Context, patch map[string]any) error

	// Close tears down all subscriptions.
	Close() error
}
