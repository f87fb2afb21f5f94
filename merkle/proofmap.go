// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package merkle

import (
	"crypto/sha256"
	"errors"

	"github.com/celestiaorg/smt"

	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

var (
	ErrKeyExists  = errors.New("key already exists")
	ErrEmptyValue = errors.New("map values must not be empty")
	errReadOnly   = errors.New("map is read-only")
)

// Sub-tables of a map: entries by key, tree nodes by hash, tree leaves
// by key path, and the current root.
const (
	entryPrefix = 'k'
	nodePrefix  = 'n'
	valuePrefix = 'v'
	rootKey     = 'r'
)

// EmptyMapRoot is the digest of a map without entries.
func EmptyMapRoot() common.Hash {
	return common.ZeroHash
}

// tableStore keeps one part of a sparse Merkle tree in a table of a view.
// Writes go to the fork, so checkpoints and rollbacks cover them.
type tableStore struct {
	view   database.Snapshot
	fork   database.Fork
	table  string
	prefix byte
}

var _ smt.MapStore = (*tableStore)(nil)

func (s *tableStore) key(k []byte) []byte {
	return database.TableKey(s.table, append([]byte{s.prefix}, k...))
}

func (s *tableStore) Get(key []byte) ([]byte, error) {
	v, err := s.view.Get(s.key(key))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &smt.InvalidKeyError{Key: key}
	}
	return v, nil
}

func (s *tableStore) Set(key, value []byte) error {
	if s.fork == nil {
		return errReadOnly
	}
	s.fork.Put(s.key(key), value)
	return nil
}

func (s *tableStore) Delete(key []byte) error {
	if s.fork == nil {
		return errReadOnly
	}
	s.fork.Delete(s.key(key))
	return nil
}

// ProofMap is a read-only authenticated map from 32 byte keys to values,
// stored in one table of a view. Its digest is the root of a sparse Merkle
// tree, so it depends only on the entries and not on insertion order.
type ProofMap struct {
	view database.Snapshot
	fork database.Fork
	name string
}

func NewProofMap(name string, view database.Snapshot) *ProofMap {
	return &ProofMap{view: view, name: name}
}

func (m *ProofMap) entryKey(key common.Hash) []byte {
	return database.TableKey(m.name, append([]byte{entryPrefix}, key[:]...))
}

func (m *ProofMap) tree() (*smt.SparseMerkleTree, error) {
	root, err := m.MerkleRoot()
	if err != nil {
		return nil, err
	}
	nodes := &tableStore{view: m.view, fork: m.fork, table: m.name, prefix: nodePrefix}
	values := &tableStore{view: m.view, fork: m.fork, table: m.name, prefix: valuePrefix}
	return smt.ImportSparseMerkleTree(nodes, values, sha256.New(), root[:]), nil
}

// Get returns the value under key, or nil if there is none.
func (m *ProofMap) Get(key common.Hash) ([]byte, error) {
	return m.view.Get(m.entryKey(key))
}

func (m *ProofMap) Contains(key common.Hash) (bool, error) {
	v, err := m.Get(key)
	return v != nil, err
}

// MerkleRoot is the digest over all entries.
func (m *ProofMap) MerkleRoot() (common.Hash, error) {
	data, err := m.view.Get(database.TableKey(m.name, []byte{rootKey}))
	if err != nil || data == nil {
		return EmptyMapRoot(), err
	}
	var h common.Hash
	copy(h[:], data)
	return h, nil
}

// Iterate walks the entries in ascending key order until fn returns false.
// The value passed to fn must not be retained.
func (m *ProofMap) Iterate(fn func(key common.Hash, value []byte) bool) error {
	prefix := database.TableKey(m.name, []byte{entryPrefix})
	return m.view.Iterate(prefix, func(k, v []byte) bool {
		var key common.Hash
		copy(key[:], k[len(prefix):])
		return fn(key, v)
	})
}

// GetProof builds a proof of presence or absence of key against the
// current root.
func (m *ProofMap) GetProof(key common.Hash) (*MapProof, error) {
	value, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	t, err := m.tree()
	if err != nil {
		return nil, err
	}
	p, err := t.Prove(key[:])
	if err != nil {
		return nil, err
	}

	proof := &MapProof{
		Key:                   key,
		Present:               value != nil,
		Value:                 value,
		SideNodes:             make([]common.HexBytes, len(p.SideNodes)),
		NonMembershipLeafData: p.NonMembershipLeafData,
		SiblingData:           p.SiblingData,
	}
	for i, n := range p.SideNodes {
		proof.SideNodes[i] = n
	}
	return proof, nil
}

// ProofMapMut is the writable form of ProofMap, only available on a Fork.
type ProofMapMut struct {
	ProofMap
}

func NewProofMapMut(name string, fork database.Fork) *ProofMapMut {
	return &ProofMapMut{ProofMap: ProofMap{view: fork, fork: fork, name: name}}
}

// Put stores value under key and rehashes the path from the leaf to the
// root.
func (m *ProofMapMut) Put(key common.Hash, value []byte) error {
	if len(value) == 0 {
		return ErrEmptyValue
	}
	t, err := m.tree()
	if err != nil {
		return err
	}
	root, err := t.Update(key[:], value)
	if err != nil {
		return err
	}
	m.fork.Put(database.TableKey(m.name, []byte{rootKey}), root)
	m.fork.Put(m.entryKey(key), value)
	return nil
}

// Insert is Put for keys that must not exist yet. It returns ErrKeyExists
// and leaves the map untouched if key is present.
func (m *ProofMapMut) Insert(key common.Hash, value []byte) error {
	ok, err := m.Contains(key)
	if err != nil {
		return err
	}
	if ok {
		return ErrKeyExists
	}
	return m.Put(key, value)
}

// MapProof proves the presence (with its value) or the absence of Key.
// SideNodes run from the leaf up to the root.
type MapProof struct {
	Key                   common.Hash       `json:"key"`
	Present               bool              `json:"present"`
	Value                 common.HexBytes   `json:"value,omitempty"`
	SideNodes             []common.HexBytes `json:"side_nodes"`
	NonMembershipLeafData common.HexBytes   `json:"non_membership_leaf,omitempty"`
	SiblingData           common.HexBytes   `json:"sibling,omitempty"`
}

// Verify checks the proof against the map digest root.
func (p *MapProof) Verify(root common.Hash) bool {
	var value []byte
	if p.Present {
		if len(p.Value) == 0 {
			return false
		}
		value = p.Value
	}
	sp := smt.SparseMerkleProof{
		SideNodes:             make([][]byte, len(p.SideNodes)),
		NonMembershipLeafData: p.NonMembershipLeafData,
		SiblingData:           p.SiblingData,
	}
	for i, n := range p.SideNodes {
		sp.SideNodes[i] = n
	}
	return smt.VerifyProof(sp, root[:], p.Key[:], value, sha256.New())
}
