// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package process

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
)

var (
	errPoolFull  = errors.New("Transaction mem pool exceeds the limit.")
	errDuplicate = errors.New("Transaction is already in the mem pool.")
)

// txMemPool holds the verified transactions waiting for a block
type txMemPool struct {
	sync.RWMutex
	pool        map[common.Hash]blockchain.Transaction
	limit       int
	lastUpdated time.Time // last time pool was updated
}

func newTxMemPool(limit int) *txMemPool {
	if limit <= 0 {
		limit = common.MAX_TX_POOL_SIZE
	}
	return &txMemPool{
		pool:  make(map[common.Hash]blockchain.Transaction),
		limit: limit,
	}
}

// Add a verified transaction to the mem pool
func (mp *txMemPool) addMsg(tx blockchain.Transaction) error {
	mp.Lock()
	defer mp.Unlock()

	if _, ok := mp.pool[tx.Hash()]; ok {
		return errDuplicate
	}
	if len(mp.pool) >= mp.limit {
		return errPoolFull
	}
	mp.pool[tx.Hash()] = tx
	mp.lastUpdated = time.Now()
	return nil
}

// Delete the transactions of a block from the mem pool
func (mp *txMemPool) deleteMsgs(hashes []common.Hash) {
	mp.Lock()
	defer mp.Unlock()

	for _, h := range hashes {
		delete(mp.pool, h)
	}
	mp.lastUpdated = time.Now()
}

func (mp *txMemPool) count() int {
	mp.RLock()
	defer mp.RUnlock()
	return len(mp.pool)
}
