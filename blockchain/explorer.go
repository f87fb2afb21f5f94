// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/merkle"
)

// Transaction info types.
const (
	TxCommitted = "committed"
	TxInPool    = "in-pool"
)

type BlockInfo struct {
	Block      *Block        `json:"block"`
	Precommits []Precommit   `json:"precommits"`
	Txs        []common.Hash `json:"txs"`
}

type TxInfo struct {
	Type          string            `json:"type"`
	Content       interface{}       `json:"content"`
	Location      *TxLocation       `json:"location,omitempty"`
	LocationProof *merkle.ListProof `json:"location_proof,omitempty"`
	Status        *TxStatus         `json:"status,omitempty"`
}

// Explorer reads blocks and transactions from one snapshot.
type Explorer struct {
	chain  *Blockchain
	schema *Schema
}

func NewExplorer(chain *Blockchain, view database.Snapshot) *Explorer {
	return &Explorer{chain: chain, schema: NewSchema(view)}
}

// Height returns the height of the last committed block.
func (e *Explorer) Height() (uint64, error) {
	height, _, err := e.schema.Height()
	return height, err
}

// Block returns the block at height, or nil if there is none.
func (e *Explorer) Block(height uint64) (*BlockInfo, error) {
	block, err := e.schema.BlockAt(height)
	if block == nil {
		return nil, err
	}
	txs, err := e.schema.BlockTransactions(height)
	if err != nil {
		return nil, err
	}
	precommits, err := e.schema.Precommits(height)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []common.Hash{}
	}
	if precommits == nil {
		precommits = []Precommit{}
	}
	return &BlockInfo{Block: block, Precommits: precommits, Txs: txs}, nil
}

// Transaction returns a committed or pooled transaction, or nil if the
// hash is unknown.
func (e *Explorer) Transaction(hash common.Hash) (*TxInfo, error) {
	raw, err := e.schema.Transaction(hash)
	if raw == nil {
		return nil, err
	}
	tx, err := e.chain.TxFromRaw(raw)
	if err != nil {
		return nil, err
	}
	info := &TxInfo{Type: TxInPool, Content: tx.Content()}

	loc, err := e.schema.TxLocation(hash)
	if loc == nil {
		return info, err
	}
	txs, err := e.schema.BlockTransactions(loc.BlockHeight)
	if err != nil {
		return nil, err
	}
	proof, err := merkle.BuildListProof(txs, loc.PositionInBlock)
	if err != nil {
		return nil, err
	}
	status, err := e.schema.TxResult(hash)
	if err != nil {
		return nil, err
	}

	info.Type = TxCommitted
	info.Location = loc
	info.LocationProof = proof
	info.Status = status
	return info, nil
}
