// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/ipenkin/ex-timestamping/common"
)

// RawTransaction is a complete signed message:
//
//	network_id u8 | protocol_version u8 | message_id u16 | service_id u16 |
//	payload_length u32 | body | signature[64]
//
// payload_length is the length of the whole message. The signature covers
// every byte in front of it.
type RawTransaction []byte

// NewMessage builds and signs a message for the given service.
func NewMessage(serviceID, messageID uint16, body []byte, key common.PrivateKey) RawTransaction {
	size := common.MESSAGE_HEADER_LENGTH + len(body) + common.SIGNATURE_LENGTH
	msg := make([]byte, size)
	msg[0] = common.NETWORK_ID
	msg[1] = common.PROTOCOL_VERSION
	common.PutUint16(msg[2:4], messageID)
	common.PutUint16(msg[4:6], serviceID)
	common.PutUint32(msg[6:10], uint32(size))
	copy(msg[common.MESSAGE_HEADER_LENGTH:], body)

	sig := key.Sign(msg[:size-common.SIGNATURE_LENGTH])
	copy(msg[size-common.SIGNATURE_LENGTH:], sig[:])
	return RawTransaction(msg)
}

// Check validates the framing. The accessors below assume it passed.
func (r RawTransaction) Check() error {
	if len(r) < common.MESSAGE_HEADER_LENGTH+common.SIGNATURE_LENGTH {
		return fmt.Errorf("message too short: %d bytes", len(r))
	}
	if len(r) > common.MAX_MESSAGE_SIZE {
		return fmt.Errorf("message too long: %d bytes", len(r))
	}
	if r[0] != common.NETWORK_ID {
		return fmt.Errorf("unexpected network id %d", r[0])
	}
	if r[1] != common.PROTOCOL_VERSION {
		return fmt.Errorf("unsupported protocol version %d", r[1])
	}
	size, _, _ := common.UnmarshalUint32(r[6:10])
	if int(size) != len(r) {
		return fmt.Errorf("payload length %d does not match message length %d", size, len(r))
	}
	return nil
}

func (r RawTransaction) MessageID() uint16 {
	v, _, _ := common.UnmarshalUint16(r[2:4])
	return v
}

func (r RawTransaction) ServiceID() uint16 {
	v, _, _ := common.UnmarshalUint16(r[4:6])
	return v
}

// Body returns the service specific payload.
func (r RawTransaction) Body() []byte {
	return r[common.MESSAGE_HEADER_LENGTH : len(r)-common.SIGNATURE_LENGTH]
}

func (r RawTransaction) Signature() (sig common.Signature) {
	copy(sig[:], r[len(r)-common.SIGNATURE_LENGTH:])
	return
}

// VerifySignature checks the message signature against pub.
func (r RawTransaction) VerifySignature(pub common.PublicKey) bool {
	sig := r.Signature()
	return pub.Verify(r[:len(r)-common.SIGNATURE_LENGTH], &sig)
}

// Hash is the transaction id.
func (r RawTransaction) Hash() common.Hash {
	return common.Sha(r)
}
