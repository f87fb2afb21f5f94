// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package consensus

import (
	"sync"
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
)

// ProcessListMgr orders transactions for the single validator and signs
// its precommits
type ProcessListMgr struct {
	sync.RWMutex
	MyProcessList   *ProcessList
	NextBlockHeight uint64
	ValidatorID     uint16
	serverPrivKey   common.PrivateKey
	limit           int
	inFlight        []*ProcessListItem
}

// create a new process list manager. limit is the number of listed
// transactions that fills a block.
func NewProcessListMgr(height uint64, plSizeHint uint, limit int, validatorID uint16, privKey common.PrivateKey) *ProcessListMgr {
	if limit <= 0 {
		limit = common.MAX_TX_PER_BLOCK
	}
	plMgr := new(ProcessListMgr)
	plMgr.MyProcessList = NewProcessList(plSizeHint)
	plMgr.NextBlockHeight = height
	plMgr.ValidatorID = validatorID
	plMgr.serverPrivKey = privKey
	plMgr.limit = limit
	return plMgr
}

// Add a pooled transaction to MyProcessList
func (plMgr *ProcessListMgr) AddToLeadersProcessList(hash common.Hash) bool {
	plMgr.Lock()
	defer plMgr.Unlock()
	return plMgr.MyProcessList.AddToProcessList(hash)
}

// NextBatch returns the hashes of the next block in list order. The batch
// stays in flight until BlockCommitted or ReturnBatch is called.
func (plMgr *ProcessListMgr) NextBatch() []common.Hash {
	plMgr.Lock()
	defer plMgr.Unlock()

	if plMgr.inFlight != nil {
		plMgr.MyProcessList.PushFront(plMgr.inFlight)
	}
	items := plMgr.MyProcessList.Take(plMgr.limit)
	plMgr.inFlight = items
	hashes := make([]common.Hash, len(items))
	for i, item := range items {
		hashes[i] = item.TxHash
	}
	return hashes
}

// ReturnBatch puts the batch in flight back at the head of the process list
func (plMgr *ProcessListMgr) ReturnBatch() {
	plMgr.Lock()
	defer plMgr.Unlock()

	plMgr.MyProcessList.PushFront(plMgr.inFlight)
	plMgr.inFlight = nil
}

// BlockCommitted forgets the batch in flight and moves to the next height
func (plMgr *ProcessListMgr) BlockCommitted() {
	plMgr.Lock()
	defer plMgr.Unlock()

	plMgr.inFlight = nil
	plMgr.NextBlockHeight++
}

// SignPrecommit votes for the block at NextBlockHeight
func (plMgr *ProcessListMgr) SignPrecommit(blockHash common.Hash, t time.Time) blockchain.Precommit {
	plMgr.Lock()
	defer plMgr.Unlock()

	p := blockchain.Precommit{
		Validator: plMgr.ValidatorID,
		Height:    plMgr.NextBlockHeight,
		BlockHash: blockHash,
		Time:      t.Unix(),
	}
	p.Sign(plMgr.serverPrivKey)
	return p
}

// Check if the number of process list items fills a block
func (plMgr *ProcessListMgr) IsMyPListExceedingLimit() bool {
	plMgr.RLock()
	defer plMgr.RUnlock()
	return plMgr.MyProcessList.Len() >= plMgr.limit
}
