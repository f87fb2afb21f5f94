// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package database

// Snapshot is an immutable, point-in-time read view of committed state.
// It is safe for concurrent use.
type Snapshot interface {
	// Get returns the value stored under key, or nil if there is none.
	// A missing key is not an error.
	Get(key []byte) ([]byte, error)

	// Iterate calls fn for each key with the given prefix in ascending key
	// order until fn returns false. The key and value passed to fn must not
	// be retained.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error

	// Release frees the resources held by the view.
	Release()
}

// Fork is an isolated mutable view over a Snapshot. Changes are buffered in
// memory and become visible to readers only after the owning Database
// merges its Patch. A Fork is owned by a single execution pass and is not
// safe for concurrent use.
type Fork interface {
	Snapshot

	Put(key, value []byte)
	Delete(key []byte)

	// Checkpoint marks the current state of the fork. Rollback discards every
	// change made after the last Checkpoint.
	Checkpoint()
	Rollback()

	// Patch returns the accumulated changes.
	Patch() *Patch
}

// Database is the transactional storage engine.
type Database interface {
	// Snapshot returns a view of the committed state.
	Snapshot() (Snapshot, error)

	// Fork returns a mutable view based on the current committed state.
	Fork() (Fork, error)

	// Merge atomically applies the patch to the committed state.
	Merge(patch *Patch) error

	// Close cleanly shuts down the database and syncs all data.
	Close() error
}

// TableKey builds the storage key of key inside the named table.
func TableKey(table string, key []byte) []byte {
	p := make([]byte, 0, len(table)+1+len(key))
	p = append(p, table...)
	p = append(p, 0)
	return append(p, key...)
}

// TablePrefix is the prefix shared by every key of the named table.
func TablePrefix(table string) []byte {
	return TableKey(table, nil)
}
