// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ipenkin/ex-timestamping/common"
)

// Timestamp is the proof that DataHash was known at Timestamp. It is
// written once and never changes.
type Timestamp struct {
	Signature common.Hash `json:"signature"`        // sha256(data_hash ++ timestamp)
	Timestamp int64       `json:"timestamp,string"` // seconds since the epoch
	DataHash  common.Hash `json:"data_hash"`
}

var _ common.BinaryMarshallable = (*Timestamp)(nil)

const timestampSize = 2*common.HASH_LENGTH + 8

// FromParts builds the record of dataHash at time t.
func FromParts(t time.Time, dataHash common.Hash) Timestamp {
	secs := t.Unix()
	return Timestamp{
		Signature: common.ShaConcat(dataHash[:], common.Int64Bytes(secs)),
		Timestamp: secs,
		DataHash:  dataHash,
	}
}

func (t *Timestamp) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

func (t *Timestamp) MarshalBinary() (data []byte, err error) {
	var buf bytes.Buffer

	buf.Write(t.Signature[:])
	buf.Write(common.Int64Bytes(t.Timestamp))
	buf.Write(t.DataHash[:])

	return buf.Bytes(), nil
}

func (t *Timestamp) UnmarshalBinary(data []byte) (err error) {
	if len(data) != timestampSize {
		return fmt.Errorf("timestamp has %d bytes, want %d", len(data), timestampSize)
	}
	t.Signature, data, _ = common.UnmarshalHash(data)
	t.Timestamp, data, _ = common.UnmarshalInt64(data)
	t.DataHash, _, _ = common.UnmarshalHash(data)
	return nil
}

func (t *Timestamp) JSONByte() ([]byte, error) {
	return common.EncodeJSON(t)
}

func (t *Timestamp) JSONString() (string, error) {
	return common.EncodeJSONString(t)
}

func (t *Timestamp) JSONBuffer(b *bytes.Buffer) error {
	return common.EncodeJSONToBuffer(t, b)
}

func (t *Timestamp) Spew() string {
	return common.Spew(t)
}

var _ common.Printable = (*Timestamp)(nil)
