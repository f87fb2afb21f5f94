// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

import (
	"encoding/hex"
	"fmt"

	"github.com/agl/ed25519"
)

// Signature is a detached ed25519 signature.
type Signature [ed25519.SignatureSize]byte

func (sig Signature) String() string {
	return hex.EncodeToString(sig[:])
}

func UnmarshalSignature(data []byte) (sig Signature, newData []byte, err error) {
	if len(data) < SIGNATURE_LENGTH {
		err = fmt.Errorf("Not enough data to unmarshal signature")
		return
	}
	copy(sig[:], data[:SIGNATURE_LENGTH])
	newData = data[SIGNATURE_LENGTH:]
	return
}

func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

func (sig *Signature) UnmarshalText(text []byte) error {
	p, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(p) != SIGNATURE_LENGTH {
		return fmt.Errorf("invalid signature length %d", len(p))
	}
	copy(sig[:], p)
	return nil
}
