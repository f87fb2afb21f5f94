// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

// Core tables.
const (
	tableTransactions = "core.transactions"
	tableTxLocations  = "core.tx_location_by_tx_hash"
	tableTxResults    = "core.transaction_results"
	tablePool         = "core.transactions_pool"
	tableBlocks       = "core.blocks"
	tableBlockHashes  = "core.block_hashes_by_height"
	tableBlockTxs     = "core.block_transactions"
	tablePrecommits   = "core.precommits"
	tableChainMeta    = "core.meta"

	keyLastHeight = "last_height"
)

const poolMarker byte = 1

// Schema reads the ledger records from a view.
type Schema struct {
	view database.Snapshot
}

func NewSchema(view database.Snapshot) *Schema {
	return &Schema{view: view}
}

func (s *Schema) get(table string, key []byte, v interface{}) (bool, error) {
	data, err := s.view.Get(database.TableKey(table, key))
	if err != nil || data == nil {
		return false, err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", table)
	}
	return true, nil
}

// Transaction returns the message with the given hash, pooled or committed.
func (s *Schema) Transaction(hash common.Hash) (RawTransaction, error) {
	data, err := s.view.Get(database.TableKey(tableTransactions, hash[:]))
	return RawTransaction(data), err
}

func (s *Schema) TxLocation(hash common.Hash) (*TxLocation, error) {
	loc := new(TxLocation)
	ok, err := s.get(tableTxLocations, hash[:], loc)
	if !ok {
		return nil, err
	}
	return loc, nil
}

func (s *Schema) TxResult(hash common.Hash) (*TxStatus, error) {
	status := new(TxStatus)
	ok, err := s.get(tableTxResults, hash[:], status)
	if !ok {
		return nil, err
	}
	return status, nil
}

func (s *Schema) InPool(hash common.Hash) (bool, error) {
	data, err := s.view.Get(database.TableKey(tablePool, hash[:]))
	return data != nil, err
}

// PoolHashes returns the hashes of all pooled transactions.
func (s *Schema) PoolHashes() ([]common.Hash, error) {
	prefix := database.TablePrefix(tablePool)
	var hashes []common.Hash
	err := s.view.Iterate(prefix, func(k, v []byte) bool {
		var h common.Hash
		copy(h[:], k[len(prefix):])
		hashes = append(hashes, h)
		return true
	})
	return hashes, err
}

// Height returns the height of the last committed block. ok is false
// before the genesis block.
func (s *Schema) Height() (height uint64, ok bool, err error) {
	data, err := s.view.Get(database.TableKey(tableChainMeta, []byte(keyLastHeight)))
	if err != nil || data == nil {
		return 0, false, err
	}
	return common.KeyUint64(data), true, nil
}

func (s *Schema) BlockHash(height uint64) (common.Hash, bool, error) {
	data, err := s.view.Get(database.TableKey(tableBlockHashes, common.Uint64Key(height)))
	if err != nil || data == nil {
		return common.ZeroHash, false, err
	}
	h, _, err := common.UnmarshalHash(data)
	return h, err == nil, err
}

func (s *Schema) Block(hash common.Hash) (*Block, error) {
	data, err := s.view.Get(database.TableKey(tableBlocks, hash[:]))
	if err != nil || data == nil {
		return nil, err
	}
	b := new(Block)
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// BlockAt returns the block at height, or nil if there is none.
func (s *Schema) BlockAt(height uint64) (*Block, error) {
	h, ok, err := s.BlockHash(height)
	if !ok {
		return nil, err
	}
	return s.Block(h)
}

// LastBlock returns the last committed block, or nil before genesis.
func (s *Schema) LastBlock() (*Block, error) {
	height, ok, err := s.Height()
	if !ok {
		return nil, err
	}
	return s.BlockAt(height)
}

func (s *Schema) BlockTransactions(height uint64) ([]common.Hash, error) {
	var hashes []common.Hash
	_, err := s.get(tableBlockTxs, common.Uint64Key(height), &hashes)
	return hashes, err
}

func (s *Schema) Precommits(height uint64) ([]Precommit, error) {
	var precommits []Precommit
	_, err := s.get(tablePrecommits, common.Uint64Key(height), &precommits)
	return precommits, err
}

// SchemaMut is the writable form of Schema.
type SchemaMut struct {
	Schema
	fork database.Fork
}

func NewSchemaMut(fork database.Fork) *SchemaMut {
	return &SchemaMut{Schema: Schema{view: fork}, fork: fork}
}

func (s *SchemaMut) put(table string, key []byte, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", table)
	}
	s.fork.Put(database.TableKey(table, key), data)
	return nil
}

// AddToPool stores the message and marks it as pending.
func (s *SchemaMut) AddToPool(raw RawTransaction) {
	h := raw.Hash()
	s.fork.Put(database.TableKey(tableTransactions, h[:]), raw)
	s.fork.Put(database.TableKey(tablePool, h[:]), []byte{poolMarker})
}

func (s *SchemaMut) removeFromPool(hash common.Hash) {
	s.fork.Delete(database.TableKey(tablePool, hash[:]))
}

func (s *SchemaMut) setTxLocation(hash common.Hash, loc TxLocation) error {
	return s.put(tableTxLocations, hash[:], &loc)
}

func (s *SchemaMut) setTxResult(hash common.Hash, status TxStatus) error {
	return s.put(tableTxResults, hash[:], &status)
}

func (s *SchemaMut) putBlock(b *Block, txHashes []common.Hash) error {
	hash := b.Hash()
	data, _ := b.MarshalBinary()
	s.fork.Put(database.TableKey(tableBlocks, hash[:]), data)
	s.fork.Put(database.TableKey(tableBlockHashes, common.Uint64Key(b.Height)), hash[:])
	s.fork.Put(database.TableKey(tableChainMeta, []byte(keyLastHeight)), common.Uint64Key(b.Height))
	if txHashes == nil {
		txHashes = []common.Hash{}
	}
	return s.put(tableBlockTxs, common.Uint64Key(b.Height), txHashes)
}

func (s *SchemaMut) putPrecommits(height uint64, precommits []Precommit) error {
	return s.put(tablePrecommits, common.Uint64Key(height), precommits)
}
