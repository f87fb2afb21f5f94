// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/merkle"
)

const tableTimestamps = "timestamping_service.timestamps"

// Schema reads the timestamps table.
type Schema struct {
	view database.Snapshot
}

func NewSchema(view database.Snapshot) *Schema {
	return &Schema{view: view}
}

// Timestamps is the authenticated map from data hash to record.
func (s *Schema) Timestamps() *merkle.ProofMap {
	return merkle.NewProofMap(tableTimestamps, s.view)
}

// Timestamp returns the record of dataHash, or nil if there is none.
func (s *Schema) Timestamp(dataHash common.Hash) (*Timestamp, error) {
	data, err := s.Timestamps().Get(dataHash)
	if err != nil || data == nil {
		return nil, err
	}
	t := new(Timestamp)
	if err := t.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return t, nil
}

// AllTimestamps returns every record in ascending data hash order.
func (s *Schema) AllTimestamps() ([]Timestamp, error) {
	timestamps := []Timestamp{}
	var derr error
	err := s.Timestamps().Iterate(func(key common.Hash, value []byte) bool {
		var t Timestamp
		if derr = t.UnmarshalBinary(value); derr != nil {
			return false
		}
		timestamps = append(timestamps, t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return timestamps, derr
}

// StateHash is the contribution of the service to the block state hash.
func (s *Schema) StateHash() ([]common.Hash, error) {
	root, err := s.Timestamps().MerkleRoot()
	if err != nil {
		return nil, err
	}
	return []common.Hash{root}, nil
}

// TimestampProof shows that a record is, or is not, in the table with
// root MapRoot.
type TimestampProof struct {
	Timestamp *Timestamp       `json:"timestamp"`
	MapRoot   common.Hash      `json:"map_root"`
	Proof     *merkle.MapProof `json:"proof"`
}

func (s *Schema) TimestampWithProof(dataHash common.Hash) (*TimestampProof, error) {
	t, err := s.Timestamp(dataHash)
	if err != nil {
		return nil, err
	}
	m := s.Timestamps()
	root, err := m.MerkleRoot()
	if err != nil {
		return nil, err
	}
	proof, err := m.GetProof(dataHash)
	if err != nil {
		return nil, err
	}
	return &TimestampProof{Timestamp: t, MapRoot: root, Proof: proof}, nil
}

type SchemaMut struct {
	Schema
	fork database.Fork
}

func NewSchemaMut(fork database.Fork) *SchemaMut {
	return &SchemaMut{Schema: Schema{view: fork}, fork: fork}
}

func (s *SchemaMut) TimestampsMut() *merkle.ProofMapMut {
	return merkle.NewProofMapMut(tableTimestamps, s.fork)
}

// InsertTimestamp adds a new record. It returns merkle.ErrKeyExists if the
// data hash is already recorded.
func (s *SchemaMut) InsertTimestamp(t Timestamp) error {
	data, _ := t.MarshalBinary()
	return s.TimestampsMut().Insert(t.DataHash, data)
}
