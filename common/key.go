// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"

	"github.com/agl/ed25519"
)

// Verifyer objects can Verify signed messages
type Verifyer interface {
	Verify(msg []byte, sig *Signature) bool
}

// Signer object can Sign msg
type Signer interface {
	Sign(msg []byte) Signature
}

// PublicKey contains only Public part of Public/Private key pair
type PublicKey [ed25519.PublicKeySize]byte

// PrivateKey contains Public/Private key pair
type PrivateKey struct {
	Key *[ed25519.PrivateKeySize]byte
	Pub PublicKey
}

var _ Signer = PrivateKey{}
var _ Verifyer = PublicKey{}

//Generate creates new PrivateKey / PublicKey pair or returns error
func GenerateKey() (pk PrivateKey, err error) {
	return generateKey(rand.Reader)
}

// NewPrivateKeyFromSeed derives a key pair from a 32 byte seed. The same
// seed always gives the same keys.
func NewPrivateKeyFromSeed(seed []byte) (pk PrivateKey, err error) {
	if len(seed) != 32 {
		return pk, errors.New("Invalid seed length")
	}
	return generateKey(bytes.NewReader(seed))
}

func generateKey(r io.Reader) (pk PrivateKey, err error) {
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return pk, err
	}
	pk.Key = priv
	pk.Pub = *pub
	return pk, nil
}

// Create a new private key from a hex string
func NewPrivateKeyFromHex(s string) (pk PrivateKey, err error) {
	privKeybytes, err := hex.DecodeString(s)
	if err != nil {
		return pk, err
	}
	if len(privKeybytes) != ed25519.PrivateKeySize {
		return pk, errors.New("Invalid private key input string!")
	}
	pk.Key = new([ed25519.PrivateKeySize]byte)
	copy(pk.Key[:], privKeybytes)
	copy(pk.Pub[:], privKeybytes[32:])
	return
}

func (pk PrivateKey) String() string {
	return hex.EncodeToString(pk.Key[:])
}

func (pk PrivateKey) Public() PublicKey {
	return pk.Pub
}

// Sign signs msg with PrivateKey and return Signature
func (pk PrivateKey) Sign(msg []byte) (sig Signature) {
	return Signature(*ed25519.Sign(pk.Key, msg))
}

// HexToPublicKey decodes a 64 character hex string.
func HexToPublicKey(s string) (pk PublicKey, err error) {
	p, err := hex.DecodeString(s)
	if err != nil {
		return pk, err
	}
	if len(p) != ed25519.PublicKeySize {
		return pk, errors.New("Invalid public key input string!")
	}
	copy(pk[:], p)
	return pk, nil
}

func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Verify returns true iff sig is a valid signature of msg by PublicKey.
func (k PublicKey) Verify(msg []byte, sig *Signature) bool {
	key := [ed25519.PublicKeySize]byte(k)
	s := [ed25519.SignatureSize]byte(*sig)
	return ed25519.Verify(&key, msg, &s)
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	v, err := HexToPublicKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
