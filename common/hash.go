// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash is a SHA-256 digest. It is used both as a content identifier
// (document hashes, transaction ids) and as a Merkle root.
type Hash [HASH_LENGTH]byte

// ZeroHash is the hash with all bytes set to zero.
var ZeroHash Hash

//
// Creates a serial hash from a set of "entities"
//
func CreateHash(entities ...BinaryMarshallable) (h Hash, err error) {
	sha := sha256.New()
	for _, entity := range entities {
		data, err := entity.MarshalBinary()
		if err != nil {
			return ZeroHash, err
		}
		sha.Write(data)
	}
	copy(h[:], sha.Sum(nil))
	return
}

// Sha returns the SHA-256 digest of p.
func Sha(p []byte) (h Hash) {
	return Hash(sha256.Sum256(p))
}

// ShaConcat hashes the concatenation of all parts without building the
// joined slice.
func ShaConcat(parts ...[]byte) (h Hash) {
	sha := sha256.New()
	for _, p := range parts {
		sha.Write(p)
	}
	copy(h[:], sha.Sum(nil))
	return
}

// HexToHash decodes a 64 character hex string.
func HexToHash(s string) (h Hash, err error) {
	p, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, err
	}
	if len(p) != HASH_LENGTH {
		return ZeroHash, fmt.Errorf("invalid hash length %d, expected %d", len(p), HASH_LENGTH)
	}
	copy(h[:], p)
	return h, nil
}

// Function makes it easy to unmarshal Hashes.
//
// x.HashThing, data, err = UnmarshalHash(data)
//
func UnmarshalHash(data []byte) (h Hash, newData []byte, err error) {
	if len(data) < HASH_LENGTH {
		err = fmt.Errorf("Not enough data to unmarshal HASH")
		return
	}
	copy(h[:], data[:HASH_LENGTH])
	newData = data[HASH_LENGTH:]
	return
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the digest.
func (h Hash) Bytes() []byte {
	p := make([]byte, HASH_LENGTH)
	copy(p, h[:])
	return p
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Compare two Hashes
func (h Hash) IsSameAs(b Hash) bool {
	return h == b
}

// Less orders hashes by their bytes.
func (h Hash) Less(b Hash) bool {
	return bytes.Compare(h[:], b[:]) < 0
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	v, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// HexBytes is a byte slice that is rendered as hex in JSON.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	p, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	*b = p
	return nil
}
