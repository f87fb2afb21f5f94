// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

type BinaryMarshallable interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// All fixed width integers on the wire are little endian.

func PutUint16(p []byte, v uint16) { binary.LittleEndian.PutUint16(p, v) }
func PutUint32(p []byte, v uint32) { binary.LittleEndian.PutUint32(p, v) }
func PutUint64(p []byte, v uint64) { binary.LittleEndian.PutUint64(p, v) }

// Int64Bytes returns the 8 byte little endian encoding of v.
func Int64Bytes(v int64) []byte {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, uint64(v))
	return p
}

func UnmarshalUint16(data []byte) (v uint16, newData []byte, err error) {
	if len(data) < 2 {
		return 0, data, fmt.Errorf("Not enough data to unmarshal uint16")
	}
	return binary.LittleEndian.Uint16(data), data[2:], nil
}

func UnmarshalUint32(data []byte) (v uint32, newData []byte, err error) {
	if len(data) < 4 {
		return 0, data, fmt.Errorf("Not enough data to unmarshal uint32")
	}
	return binary.LittleEndian.Uint32(data), data[4:], nil
}

func UnmarshalUint64(data []byte) (v uint64, newData []byte, err error) {
	if len(data) < 8 {
		return 0, data, fmt.Errorf("Not enough data to unmarshal uint64")
	}
	return binary.LittleEndian.Uint64(data), data[8:], nil
}

func UnmarshalInt64(data []byte) (v int64, newData []byte, err error) {
	u, newData, err := UnmarshalUint64(data)
	return int64(u), newData, err
}

func UnmarshalPublicKey(data []byte) (pk PublicKey, newData []byte, err error) {
	if len(data) < PUBKEY_LENGTH {
		err = fmt.Errorf("Not enough data to unmarshal public key")
		return
	}
	copy(pk[:], data[:PUBKEY_LENGTH])
	newData = data[PUBKEY_LENGTH:]
	return
}

// Uint64Key encodes v big endian so that keys sort by value in the
// database.
func Uint64Key(v uint64) []byte {
	p := make([]byte, 8)
	binary.BigEndian.PutUint64(p, v)
	return p
}

func KeyUint64(p []byte) uint64 {
	return binary.BigEndian.Uint64(p)
}
