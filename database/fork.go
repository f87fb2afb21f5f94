// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package database

import (
	"sort"
	"strings"
)

type change struct {
	value   []byte
	deleted bool
}

// Change is a single buffered write.
type Change struct {
	Key     []byte
	Value   []byte
	Deleted bool
}

// Patch is the set of changes a Fork accumulated. Applying it is the only
// way to modify committed state.
type Patch struct {
	changes map[string]change
}

func (p *Patch) Len() int {
	return len(p.changes)
}

// Changes returns the writes in ascending key order.
func (p *Patch) Changes() []Change {
	keys := make([]string, 0, len(p.changes))
	for k := range p.changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Change, 0, len(keys))
	for _, k := range keys {
		c := p.changes[k]
		out = append(out, Change{Key: []byte(k), Value: c.value, Deleted: c.deleted})
	}
	return out
}

// fork buffers writes over a base snapshot.
type fork struct {
	base    Snapshot
	changes map[string]change
	// journal holds the state of each key touched since the last
	// checkpoint; nil means the key had no buffered change.
	journal map[string]*change
}

var _ Fork = (*fork)(nil)

// NewFork returns a mutable view over base. Releasing the fork releases
// base.
func NewFork(base Snapshot) Fork {
	return &fork{
		base:    base,
		changes: make(map[string]change),
		journal: make(map[string]*change),
	}
}

func (f *fork) Get(key []byte) ([]byte, error) {
	if c, ok := f.changes[string(key)]; ok {
		if c.deleted {
			return nil, nil
		}
		return c.value, nil
	}
	return f.base.Get(key)
}

func (f *fork) record(k string) {
	if _, ok := f.journal[k]; ok {
		return
	}
	if c, ok := f.changes[k]; ok {
		prev := c
		f.journal[k] = &prev
	} else {
		f.journal[k] = nil
	}
}

func (f *fork) Put(key, value []byte) {
	k := string(key)
	f.record(k)
	v := make([]byte, len(value))
	copy(v, value)
	f.changes[k] = change{value: v}
}

func (f *fork) Delete(key []byte) {
	k := string(key)
	f.record(k)
	f.changes[k] = change{deleted: true}
}

func (f *fork) Checkpoint() {
	f.journal = make(map[string]*change)
}

func (f *fork) Rollback() {
	for k, prev := range f.journal {
		if prev == nil {
			delete(f.changes, k)
		} else {
			f.changes[k] = *prev
		}
	}
	f.journal = make(map[string]*change)
}

func (f *fork) Patch() *Patch {
	changes := make(map[string]change, len(f.changes))
	for k, c := range f.changes {
		changes[k] = c
	}
	return &Patch{changes: changes}
}

func (f *fork) Release() {
	f.base.Release()
}

// Iterate merges the buffered changes into the base iteration.
func (f *fork) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	p := string(prefix)
	keys := make([]string, 0)
	for k := range f.changes {
		if strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	i := 0
	stopped := false
	// emit sends the buffered change at keys[i] to fn and advances i.
	emit := func() bool {
		k := keys[i]
		c := f.changes[k]
		i++
		if c.deleted {
			return true
		}
		return fn([]byte(k), c.value)
	}

	err := f.base.Iterate(prefix, func(key, value []byte) bool {
		bk := string(key)
		for i < len(keys) && keys[i] < bk {
			if !emit() {
				stopped = true
				return false
			}
		}
		if i < len(keys) && keys[i] == bk {
			if !emit() {
				stopped = true
				return false
			}
			return true
		}
		if !fn(key, value) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}

	for i < len(keys) {
		if !emit() {
			return nil
		}
	}
	return nil
}
