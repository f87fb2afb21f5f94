// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ipenkin/ex-timestamping/common"
)

// Block header. The transactions themselves are committed through TxHash.
type Block struct {
	ProposerID uint16      `json:"proposer_id"`
	Height     uint64      `json:"height"`
	TxCount    uint32      `json:"tx_count"`
	PrevHash   common.Hash `json:"prev_hash"`
	TxHash     common.Hash `json:"tx_hash"`
	StateHash  common.Hash `json:"state_hash"`
}

var _ common.BinaryMarshallable = (*Block)(nil)

const blockSize = 2 + 8 + 4 + 3*common.HASH_LENGTH

func (b *Block) MarshalBinary() (data []byte, err error) {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, b.ProposerID)
	binary.Write(&buf, binary.LittleEndian, b.Height)
	binary.Write(&buf, binary.LittleEndian, b.TxCount)
	buf.Write(b.PrevHash[:])
	buf.Write(b.TxHash[:])
	buf.Write(b.StateHash[:])

	return buf.Bytes(), nil
}

func (b *Block) UnmarshalBinary(data []byte) (err error) {
	if len(data) < blockSize {
		return fmt.Errorf("block too short: %d bytes", len(data))
	}
	b.ProposerID, data, _ = common.UnmarshalUint16(data)
	b.Height, data, _ = common.UnmarshalUint64(data)
	b.TxCount, data, _ = common.UnmarshalUint32(data)
	b.PrevHash, data, _ = common.UnmarshalHash(data)
	b.TxHash, data, _ = common.UnmarshalHash(data)
	b.StateHash, _, _ = common.UnmarshalHash(data)
	return nil
}

// Hash identifies the block. Precommits sign it.
func (b *Block) Hash() common.Hash {
	h, _ := common.CreateHash(b)
	return h
}

// Precommit is a validator's vote for a block.
type Precommit struct {
	Validator uint16           `json:"validator"`
	Height    uint64           `json:"height"`
	Round     uint32           `json:"round"`
	BlockHash common.Hash      `json:"block_hash"`
	Time      int64            `json:"time"`
	Signature common.Signature `json:"signature"`
}

func (p *Precommit) signedBytes() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, p.Validator)
	binary.Write(&buf, binary.LittleEndian, p.Height)
	binary.Write(&buf, binary.LittleEndian, p.Round)
	buf.Write(p.BlockHash[:])
	binary.Write(&buf, binary.LittleEndian, p.Time)

	return buf.Bytes()
}

func (p *Precommit) Sign(key common.PrivateKey) {
	p.Signature = key.Sign(p.signedBytes())
}

func (p *Precommit) Verify(pub common.PublicKey) bool {
	return pub.Verify(p.signedBytes(), &p.Signature)
}

// TxLocation is where a committed transaction sits in the chain.
type TxLocation struct {
	BlockHeight     uint64 `json:"block_height"`
	PositionInBlock uint64 `json:"position_in_block"`
}

// Transaction result types.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPanic   = "panic"
)

// PanicCode is the result code of a transaction whose execution panicked.
const PanicCode = 255

// TxStatus is the committed outcome of a transaction.
type TxStatus struct {
	Type        string `json:"type"`
	Code        uint8  `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *TxStatus) IsSuccess() bool {
	return s.Type == StatusSuccess
}

func statusOf(err error) TxStatus {
	if err == nil {
		return TxStatus{Type: StatusSuccess}
	}
	if e, ok := err.(*ExecutionError); ok {
		return TxStatus{Type: StatusError, Code: e.Code, Description: e.Description}
	}
	return TxStatus{Type: StatusPanic, Code: PanicCode, Description: err.Error()}
}
