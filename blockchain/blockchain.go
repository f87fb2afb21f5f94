// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/merkle"
)

// Blockchain executes blocks of transactions against the database and
// dispatches messages to the services that own them.
type Blockchain struct {
	db       database.Database
	services []Service
	byID     map[uint16]Service
}

// NewBlockchain registers the services. Their ids must be unique.
func NewBlockchain(db database.Database, services ...Service) (*Blockchain, error) {
	b := &Blockchain{
		db:   db,
		byID: make(map[uint16]Service, len(services)),
	}
	for _, s := range services {
		if prev, ok := b.byID[s.ID()]; ok {
			return nil, fmt.Errorf("service %s reuses id %d of %s", s.Name(), s.ID(), prev.Name())
		}
		b.byID[s.ID()] = s
		b.services = append(b.services, s)
	}
	sort.Slice(b.services, func(i, j int) bool {
		return b.services[i].ID() < b.services[j].ID()
	})
	return b, nil
}

func (b *Blockchain) DB() database.Database {
	return b.db
}

// Services returns the registered services in ascending id order.
func (b *Blockchain) Services() []Service {
	return b.services
}

func (b *Blockchain) Snapshot() (database.Snapshot, error) {
	return b.db.Snapshot()
}

// TxFromRaw checks the framing of raw and decodes it with the service it
// is addressed to.
func (b *Blockchain) TxFromRaw(raw RawTransaction) (Transaction, error) {
	if err := raw.Check(); err != nil {
		return nil, err
	}
	s, ok := b.byID[raw.ServiceID()]
	if !ok {
		return nil, fmt.Errorf("unknown service id %d", raw.ServiceID())
	}
	return s.TxFromRaw(raw)
}

// StateHash folds the table roots of every service into one digest.
func (b *Blockchain) StateHash(view database.Snapshot) (common.Hash, error) {
	var leaves []common.Hash
	for _, s := range b.services {
		hashes, err := s.StateHash(view)
		if err != nil {
			return common.ZeroHash, errors.Wrapf(err, "state hash of %s", s.Name())
		}
		for i, h := range hashes {
			leaves = append(leaves, ServiceTableHash(s.ID(), uint16(i), h))
		}
	}
	return merkle.MerkleRoot(leaves), nil
}

// StateProof proves the root of one service table against the state hash
// of view. The proof leaf is ServiceTableHash of that table.
func (b *Blockchain) StateProof(view database.Snapshot, serviceID, table uint16) (*merkle.ListProof, error) {
	var leaves []common.Hash
	index := -1
	for _, s := range b.services {
		hashes, err := s.StateHash(view)
		if err != nil {
			return nil, errors.Wrapf(err, "state hash of %s", s.Name())
		}
		for i, h := range hashes {
			if s.ID() == serviceID && uint16(i) == table {
				index = len(leaves)
			}
			leaves = append(leaves, ServiceTableHash(s.ID(), uint16(i), h))
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("service %d has no table %d", serviceID, table)
	}
	return merkle.BuildListProof(leaves, uint64(index))
}

// ServiceTableHash is the leaf of one service table in the state tree.
func ServiceTableHash(serviceID, table uint16, root common.Hash) common.Hash {
	key := make([]byte, 4)
	binary.BigEndian.PutUint16(key[:2], serviceID)
	binary.BigEndian.PutUint16(key[2:], table)
	return common.ShaConcat(key, root[:])
}

// AddToPool stores verified transactions as pending. Already known
// transactions are skipped.
func (b *Blockchain) AddToPool(txs ...Transaction) error {
	fork, err := b.db.Fork()
	if err != nil {
		return err
	}
	defer fork.Release()

	schema := NewSchemaMut(fork)
	for _, tx := range txs {
		known, err := schema.Transaction(tx.Hash())
		if err != nil {
			return err
		}
		if known == nil {
			schema.AddToPool(tx.Raw())
		}
	}
	return b.db.Merge(fork.Patch())
}

// CreateGenesisBlock commits an empty block at height zero unless the chain
// already has one.
func (b *Blockchain) CreateGenesisBlock() error {
	snap, err := b.db.Snapshot()
	if err != nil {
		return err
	}
	_, ok, err := NewSchema(snap).Height()
	snap.Release()
	if err != nil || ok {
		return err
	}

	hash, fork, err := b.CreatePatch(0, 0, nil)
	if err != nil {
		return err
	}
	chainLog.Infof("genesis block %s", hash)
	return b.Commit(fork, hash, nil)
}

// CreatePatch executes the pooled transactions in order on a new fork and
// builds the block on top of them. The caller commits or releases the
// returned fork.
func (b *Blockchain) CreatePatch(proposer uint16, height uint64, txHashes []common.Hash) (common.Hash, database.Fork, error) {
	fork, err := b.db.Fork()
	if err != nil {
		return common.ZeroHash, nil, err
	}

	hash, err := b.createPatch(fork, proposer, height, txHashes)
	if err != nil {
		fork.Release()
		return common.ZeroHash, nil, err
	}
	return hash, fork, nil
}

func (b *Blockchain) createPatch(fork database.Fork, proposer uint16, height uint64, txHashes []common.Hash) (common.Hash, error) {
	schema := NewSchemaMut(fork)

	prevHash := common.ZeroHash
	last, err := schema.LastBlock()
	if err != nil {
		return common.ZeroHash, err
	}
	switch {
	case last == nil && height != 0:
		return common.ZeroHash, fmt.Errorf("block %d proposed before genesis", height)
	case last != nil && height != last.Height+1:
		return common.ZeroHash, fmt.Errorf("block %d proposed at height %d", height, last.Height+1)
	case last != nil:
		prevHash = last.Hash()
	}

	for i, h := range txHashes {
		raw, err := schema.Transaction(h)
		if err != nil {
			return common.ZeroHash, err
		}
		if raw == nil {
			return common.ZeroHash, fmt.Errorf("transaction %s is not in the pool", h)
		}
		if loc, err := schema.TxLocation(h); err != nil || loc != nil {
			if err == nil {
				err = fmt.Errorf("transaction %s already committed at height %d", h, loc.BlockHeight)
			}
			return common.ZeroHash, err
		}
		tx, err := b.TxFromRaw(raw)
		if err != nil {
			return common.ZeroHash, errors.Wrapf(err, "pooled transaction %s", h)
		}

		status, err := b.execute(fork, tx)
		if err != nil {
			return common.ZeroHash, errors.Wrapf(err, "execute %s", h)
		}
		if err := schema.setTxResult(h, status); err != nil {
			return common.ZeroHash, err
		}
		if err := schema.setTxLocation(h, TxLocation{BlockHeight: height, PositionInBlock: uint64(i)}); err != nil {
			return common.ZeroHash, err
		}
		schema.removeFromPool(h)
	}

	stateHash, err := b.StateHash(fork)
	if err != nil {
		return common.ZeroHash, err
	}
	block := &Block{
		ProposerID: proposer,
		Height:     height,
		TxCount:    uint32(len(txHashes)),
		PrevHash:   prevHash,
		TxHash:     merkle.MerkleRoot(txHashes),
		StateHash:  stateHash,
	}
	if err := schema.putBlock(block, txHashes); err != nil {
		return common.ZeroHash, err
	}
	return block.Hash(), nil
}

// execute runs one transaction between a checkpoint and, on failure, a
// rollback, so a failed transaction leaves no writes behind. Only errors
// that are not execution outcomes are returned.
func (b *Blockchain) execute(fork database.Fork, tx Transaction) (status TxStatus, err error) {
	fork.Checkpoint()
	defer func() {
		if r := recover(); r != nil {
			fork.Rollback()
			chainLog.Errorf("transaction %s panicked: %v", tx.Hash(), r)
			status = TxStatus{Type: StatusPanic, Code: PanicCode, Description: fmt.Sprint(r)}
			err = nil
		}
	}()

	if xerr := tx.Execute(fork); xerr != nil {
		fork.Rollback()
		if _, ok := errors.Cause(xerr).(*ExecutionError); !ok {
			return TxStatus{}, xerr
		}
		chainLog.Debugf("transaction %s failed: %v", tx.Hash(), xerr)
		return statusOf(errors.Cause(xerr)), nil
	}
	fork.Checkpoint()
	return statusOf(nil), nil
}

// Commit stores the precommits for the block and merges the fork.
func (b *Blockchain) Commit(fork database.Fork, blockHash common.Hash, precommits []Precommit) error {
	defer fork.Release()

	schema := NewSchemaMut(fork)
	block, err := schema.Block(blockHash)
	if err != nil {
		return err
	}
	if block == nil {
		return fmt.Errorf("block %s is not in the fork", blockHash)
	}
	if precommits == nil {
		precommits = []Precommit{}
	}
	if err := schema.putPrecommits(block.Height, precommits); err != nil {
		return err
	}
	if err := b.db.Merge(fork.Patch()); err != nil {
		return errors.Wrapf(err, "merge block %d", block.Height)
	}
	chainLog.Infof("committed block %d (%d txs) %s", block.Height, block.TxCount, blockHash)
	return nil
}
