// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timeservice

import (
	"fmt"
	"time"

	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/merkle"
)

const (
	tableValidatorsTimes = "time_service.validators_times"
	tableTime            = "time_service.time"
)

var keyTime = database.TableKey(tableTime, nil)

const timeSize = 12

// encodeTime writes secs i64 and nanos u32, both little endian.
func encodeTime(t time.Time) []byte {
	p := make([]byte, timeSize)
	copy(p, common.Int64Bytes(t.Unix()))
	common.PutUint32(p[8:], uint32(t.Nanosecond()))
	return p
}

func decodeTime(p []byte) (time.Time, error) {
	if len(p) != timeSize {
		return time.Time{}, fmt.Errorf("time value has %d bytes, want %d", len(p), timeSize)
	}
	secs, p, _ := common.UnmarshalInt64(p)
	nanos, _, _ := common.UnmarshalUint32(p)
	return time.Unix(secs, int64(nanos)).UTC(), nil
}

// TimeSchema reads the time oracle tables.
type TimeSchema struct {
	view database.Snapshot
}

func NewTimeSchema(view database.Snapshot) *TimeSchema {
	return &TimeSchema{view: view}
}

// ValidatorsTimes maps validator keys to the last time they reported.
func (s *TimeSchema) ValidatorsTimes() *merkle.ProofMap {
	return merkle.NewProofMap(tableValidatorsTimes, s.view)
}

func (s *TimeSchema) ValidatorTime(pub common.PublicKey) (time.Time, bool, error) {
	p, err := s.ValidatorsTimes().Get(common.Hash(pub))
	if err != nil || p == nil {
		return time.Time{}, false, err
	}
	t, err := decodeTime(p)
	return t, err == nil, err
}

// Time returns the consolidated time. ok is false until enough validators
// have reported.
func (s *TimeSchema) Time() (t time.Time, ok bool, err error) {
	p, err := s.view.Get(keyTime)
	if err != nil || p == nil {
		return time.Time{}, false, err
	}
	t, err = decodeTime(p)
	return t, err == nil, err
}

// StateHash is the root of the validator times and the hash of the
// consolidated time, zero while it is unset.
func (s *TimeSchema) StateHash() ([]common.Hash, error) {
	root, err := s.ValidatorsTimes().MerkleRoot()
	if err != nil {
		return nil, err
	}
	p, err := s.view.Get(keyTime)
	if err != nil {
		return nil, err
	}
	timeHash := common.ZeroHash
	if p != nil {
		timeHash = common.Sha(p)
	}
	return []common.Hash{root, timeHash}, nil
}

type TimeSchemaMut struct {
	TimeSchema
	fork database.Fork
}

func NewTimeSchemaMut(fork database.Fork) *TimeSchemaMut {
	return &TimeSchemaMut{TimeSchema: TimeSchema{view: fork}, fork: fork}
}

func (s *TimeSchemaMut) SetValidatorTime(pub common.PublicKey, t time.Time) error {
	return merkle.NewProofMapMut(tableValidatorsTimes, s.fork).Put(common.Hash(pub), encodeTime(t))
}

func (s *TimeSchemaMut) SetTime(t time.Time) {
	s.fork.Put(keyTime, encodeTime(t))
}
