// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

// Processor is the engine of the node.
// It admits incoming transactions to the pool and builds blocks from the
// process list on a timed schedule or when a block is full.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/consensus"
	"github.com/ipenkin/ex-timestamping/timeservice"
)

var errQueueFull = errors.New("incoming message queue is full")

// Config holds the processor settings.
type Config struct {
	ValidatorID   uint16
	Key           common.PrivateKey
	BlockInterval time.Duration
	MaxTxPerBlock int
	MaxPoolSize   int
	QueueSize     int
}

// Processor owns every fork of the chain. All writes happen on the
// goroutine running Run.
type Processor struct {
	chain   *blockchain.Blockchain
	plMgr   *consensus.ProcessListMgr
	memPool *txMemPool
	clock   *timeservice.ValidatorClock

	inMsgQueue    chan blockchain.RawTransaction // incoming transactions
	inCtlMsgQueue chan time.Time                 // end-of-block ticks
	blockInterval time.Duration
	now           func() time.Time
}

var _ blockchain.TxSender = (*Processor)(nil)

// NewProcessor creates the genesis block if needed and restores the
// process list from the persistent pool. clock may be nil.
func NewProcessor(chain *blockchain.Blockchain, clock *timeservice.ValidatorClock, cfg Config) (*Processor, error) {
	if err := chain.CreateGenesisBlock(); err != nil {
		return nil, errors.Wrap(err, "genesis block")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BlockInterval <= 0 {
		cfg.BlockInterval = time.Second
	}

	snap, err := chain.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()
	schema := blockchain.NewSchema(snap)
	height, _, err := schema.Height()
	if err != nil {
		return nil, err
	}

	p := &Processor{
		chain:         chain,
		plMgr:         consensus.NewProcessListMgr(height+1, uint(cfg.MaxTxPerBlock), cfg.MaxTxPerBlock, cfg.ValidatorID, cfg.Key),
		memPool:       newTxMemPool(cfg.MaxPoolSize),
		clock:         clock,
		inMsgQueue:    make(chan blockchain.RawTransaction, cfg.QueueSize),
		inCtlMsgQueue: make(chan time.Time, 1),
		blockInterval: cfg.BlockInterval,
		now:           time.Now,
	}

	// pooled transactions come back in hash order
	hashes, err := schema.PoolHashes()
	if err != nil {
		return nil, err
	}
	for _, h := range hashes {
		raw, err := schema.Transaction(h)
		if err != nil {
			return nil, err
		}
		tx, err := chain.TxFromRaw(raw)
		if err != nil {
			procLog.Warningf("pooled transaction %s cannot be decoded: %v", h, err)
			continue
		}
		if err := p.memPool.addMsg(tx); err != nil {
			procLog.Warningf("pooled transaction %s not restored: %v", h, err)
			continue
		}
		p.plMgr.AddToLeadersProcessList(h)
	}
	procLog.Infof("processor at height %d, %d pooled transactions", height, p.memPool.count())
	return p, nil
}

// SendTransaction queues tx for admission. It goes through the same
// checks as transactions received from elsewhere.
func (p *Processor) SendTransaction(tx blockchain.Transaction) error {
	return p.QueueMessage(tx.Raw())
}

// QueueMessage queues a raw transaction for admission.
func (p *Processor) QueueMessage(raw blockchain.RawTransaction) error {
	select {
	case p.inMsgQueue <- raw:
		return nil
	default:
		return errQueueFull
	}
}

// Run processes the incoming messages one by one and builds blocks until
// ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	timer := &BlockTimer{
		interval:      p.blockInterval,
		inCtlMsgQueue: p.inCtlMsgQueue,
	}
	go timer.StartBlockTimer(ctx)

	for {
		select {
		case <-ctx.Done():
			procLog.Info("processor stopped")
			return nil

		case raw := <-p.inMsgQueue:
			if err := p.serveMsgRequest(raw); err != nil {
				procLog.Warningf("transaction dropped: %v", err)
				continue
			}
			if p.plMgr.IsMyPListExceedingLimit() {
				if err := p.buildBlock(); err != nil {
					procLog.Error(err)
				}
			}

		case <-p.inCtlMsgQueue:
			if err := p.buildBlock(); err != nil {
				procLog.Error(err)
			}
		}
	}
}

// serveMsgRequest decodes and verifies one transaction and puts it into the
// pool. Nothing that fails here reaches execution.
func (p *Processor) serveMsgRequest(raw blockchain.RawTransaction) error {
	tx, err := p.chain.TxFromRaw(raw)
	if err != nil {
		return errors.Wrap(err, "undecodable message")
	}
	if !tx.Verify() {
		return fmt.Errorf("transaction %s fails verification", tx.Hash())
	}
	committed, err := p.isCommitted(tx.Hash())
	if err != nil {
		return err
	}
	if committed {
		return fmt.Errorf("transaction %s is already committed", tx.Hash())
	}
	if err := p.memPool.addMsg(tx); err != nil {
		return errors.Wrapf(err, "transaction %s", tx.Hash())
	}
	if err := p.chain.AddToPool(tx); err != nil {
		p.memPool.deleteMsgs([]common.Hash{tx.Hash()})
		return err
	}
	p.plMgr.AddToLeadersProcessList(tx.Hash())
	procLog.Debugf("pooled transaction %s", tx.Hash())
	return nil
}

func (p *Processor) isCommitted(hash common.Hash) (bool, error) {
	snap, err := p.chain.Snapshot()
	if err != nil {
		return false, err
	}
	defer snap.Release()
	loc, err := blockchain.NewSchema(snap).TxLocation(hash)
	return loc != nil, err
}

// buildBlock executes the next batch of the process list, preceded by the
// validator's time transaction, and commits it with this validator's
// precommit. Without transactions no block is built. A block that fails
// gives its batch back to the process list and leaves the height alone.
func (p *Processor) buildBlock() error {
	hashes := p.plMgr.NextBatch()
	if p.clock != nil {
		if tx := p.clock.Tick(); tx != nil {
			committed, err := p.isCommitted(tx.Hash())
			if err != nil {
				p.plMgr.ReturnBatch()
				return err
			}
			if !committed {
				if err := p.chain.AddToPool(tx); err != nil {
					p.plMgr.ReturnBatch()
					return errors.Wrap(err, "pool time transaction")
				}
				hashes = append([]common.Hash{tx.Hash()}, hashes...)
			}
		}
	}
	if len(hashes) == 0 {
		return nil
	}

	height := p.plMgr.NextBlockHeight
	hash, fork, err := p.chain.CreatePatch(p.plMgr.ValidatorID, height, hashes)
	if err != nil {
		p.plMgr.ReturnBatch()
		return errors.Wrapf(err, "block %d with %d transactions dropped", height, len(hashes))
	}
	precommit := p.plMgr.SignPrecommit(hash, p.now())
	if err := p.chain.Commit(fork, hash, []blockchain.Precommit{precommit}); err != nil {
		p.plMgr.ReturnBatch()
		return errors.Wrapf(err, "commit block %d", height)
	}
	p.plMgr.BlockCommitted()
	p.memPool.deleteMsgs(hashes)
	return nil
}
