package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/database/ldb"
	"github.com/ipenkin/ex-timestamping/timeservice"
	"github.com/ipenkin/ex-timestamping/timestamping"
)

type testNode struct {
	chain  *blockchain.Blockchain
	proc   *Processor
	stamps *timestamping.Service
	key    common.PrivateKey
	now    time.Time
}

// flakyDB fails the merge number failIn, counted from the time it is set.
type flakyDB struct {
	*ldb.LevelDb
	failIn int
}

func (db *flakyDB) Merge(patch *database.Patch) error {
	if db.failIn > 0 {
		db.failIn--
		if db.failIn == 0 {
			return errors.New("disk full")
		}
	}
	return db.LevelDb.Merge(patch)
}

func newTestNode(t *testing.T, cfg Config) *testNode {
	db, err := ldb.OpenMemDB()
	if err != nil {
		t.Fatal(err)
	}
	return newTestNodeOn(t, db, cfg)
}

func newTestNodeOn(t *testing.T, db database.Database, cfg Config) *testNode {
	key, _ := common.NewPrivateKeyFromSeed(make([]byte, 32))
	times := timeservice.NewService(4, []common.PublicKey{key.Public()})
	stamps := timestamping.NewService(42)
	chain, err := blockchain.NewBlockchain(db, times, stamps)
	if err != nil {
		t.Fatal(err)
	}

	n := &testNode{chain: chain, stamps: stamps, key: key, now: time.Unix(1000, 0)}
	clock := timeservice.NewValidatorClock(times, key)
	clock.SetNow(func() time.Time {
		n.now = n.now.Add(time.Second)
		return n.now
	})
	cfg.Key = key
	n.proc, err = NewProcessor(chain, clock, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func (n *testNode) height(t *testing.T) uint64 {
	snap, _ := n.chain.Snapshot()
	defer snap.Release()
	h, _, err := blockchain.NewSchema(snap).Height()
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (n *testNode) timestamp(t *testing.T, h common.Hash) *timestamping.Timestamp {
	snap, _ := n.chain.Snapshot()
	defer snap.Release()
	ts, err := timestamping.NewSchema(snap).Timestamp(h)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

// drain admits everything queued so far.
func (n *testNode) drain(t *testing.T) {
	for {
		select {
		case raw := <-n.proc.inMsgQueue:
			if err := n.proc.serveMsgRequest(raw); err != nil {
				t.Logf("dropped: %v", err)
			}
		default:
			return
		}
	}
}

func TestBuildBlock(t *testing.T) {
	n := newTestNode(t, Config{})
	doc := common.Sha([]byte("doc"))

	if err := n.proc.SendTransaction(n.stamps.NewTxCreateTimestamp(doc, n.key)); err != nil {
		t.Fatal(err)
	}
	n.drain(t)
	if n.proc.memPool.count() != 1 {
		t.Fatalf("mem pool holds %d transactions", n.proc.memPool.count())
	}
	if err := n.proc.buildBlock(); err != nil {
		t.Fatal(err)
	}

	if h := n.height(t); h != 1 {
		t.Errorf("height = %d, want 1", h)
	}
	// the time transaction runs first, so the document gets the new time
	ts := n.timestamp(t, doc)
	if ts == nil || ts.Timestamp != 1001 {
		t.Errorf("timestamp = %+v", ts)
	}
	if n.proc.memPool.count() != 0 {
		t.Errorf("mem pool not emptied")
	}

	snap, _ := n.chain.Snapshot()
	defer snap.Release()
	precommits, _ := blockchain.NewSchema(snap).Precommits(1)
	if len(precommits) != 1 || !precommits[0].Verify(n.key.Public()) || precommits[0].Height != 1 {
		t.Errorf("precommits = %+v", precommits)
	}
	txs, _ := blockchain.NewSchema(snap).BlockTransactions(1)
	if len(txs) != 2 {
		t.Errorf("block 1 has %d transactions, want 2", len(txs))
	}
}

func TestFailedMergeKeepsBatch(t *testing.T) {
	// the first merge pools the time transaction, the second commits
	for failIn := 1; failIn <= 2; failIn++ {
		mem, err := ldb.OpenMemDB()
		if err != nil {
			t.Fatal(err)
		}
		db := &flakyDB{LevelDb: mem}
		n := newTestNodeOn(t, db, Config{})
		doc := common.Sha([]byte("doc"))
		if err := n.proc.serveMsgRequest(n.stamps.NewTxCreateTimestamp(doc, n.key).Raw()); err != nil {
			t.Fatal(err)
		}

		db.failIn = failIn
		if err := n.proc.buildBlock(); err == nil {
			t.Fatalf("merge %d: block built on a failing database", failIn)
		}
		if h := n.height(t); h != 0 {
			t.Errorf("merge %d: height = %d after a failed block", failIn, h)
		}
		if n.proc.plMgr.NextBlockHeight != 1 {
			t.Errorf("merge %d: NextBlockHeight = %d", failIn, n.proc.plMgr.NextBlockHeight)
		}
		if n.proc.memPool.count() != 1 {
			t.Errorf("merge %d: mem pool holds %d transactions", failIn, n.proc.memPool.count())
		}

		if err := n.proc.buildBlock(); err != nil {
			t.Fatalf("merge %d: retry: %v", failIn, err)
		}
		if h := n.height(t); h != 1 {
			t.Errorf("merge %d: height = %d, want 1", failIn, h)
		}
		if n.timestamp(t, doc) == nil {
			t.Errorf("merge %d: document not timestamped after retry", failIn)
		}
		if n.proc.memPool.count() != 0 {
			t.Errorf("merge %d: mem pool not emptied", failIn)
		}
		if err := n.proc.buildBlock(); err != nil {
			t.Errorf("merge %d: next block: %v", failIn, err)
		}
		if h := n.height(t); h != 2 {
			t.Errorf("merge %d: height = %d, want 2", failIn, h)
		}
	}
}

func TestTamperedTransactionDropped(t *testing.T) {
	n := newTestNode(t, Config{})
	tx := n.stamps.NewTxCreateTimestamp(common.Sha([]byte("doc")), n.key)

	raw := append(blockchain.RawTransaction(nil), tx.Raw()...)
	raw[len(raw)-1] ^= 0xff
	if err := n.proc.serveMsgRequest(raw); err == nil {
		t.Errorf("tampered transaction admitted")
	}
	if err := n.proc.serveMsgRequest(raw[:5]); err == nil {
		t.Errorf("short message admitted")
	}

	snap, _ := n.chain.Snapshot()
	defer snap.Release()
	if in, _ := blockchain.NewSchema(snap).InPool(tx.Hash()); in {
		t.Errorf("tampered transaction pooled")
	}
}

func TestDuplicatesRefused(t *testing.T) {
	n := newTestNode(t, Config{})
	tx := n.stamps.NewTxCreateTimestamp(common.Sha([]byte("doc")), n.key)

	if err := n.proc.serveMsgRequest(tx.Raw()); err != nil {
		t.Fatal(err)
	}
	if err := n.proc.serveMsgRequest(tx.Raw()); err == nil {
		t.Errorf("pending duplicate admitted")
	}
	if err := n.proc.buildBlock(); err != nil {
		t.Fatal(err)
	}
	if err := n.proc.serveMsgRequest(tx.Raw()); err == nil {
		t.Errorf("committed duplicate admitted")
	}
	// the next block still builds, with the time transaction only
	if err := n.proc.buildBlock(); err != nil {
		t.Fatal(err)
	}
	if h := n.height(t); h != 2 {
		t.Errorf("height = %d, want 2", h)
	}
}

func TestFullBlock(t *testing.T) {
	n := newTestNode(t, Config{MaxTxPerBlock: 2})
	for i := byte(0); i < 3; i++ {
		tx := n.stamps.NewTxCreateTimestamp(common.Sha([]byte{i}), n.key)
		if err := n.proc.serveMsgRequest(tx.Raw()); err != nil {
			t.Fatal(err)
		}
	}
	if !n.proc.plMgr.IsMyPListExceedingLimit() {
		t.Fatalf("three transactions do not fill a block of two")
	}
	if err := n.proc.buildBlock(); err != nil {
		t.Fatal(err)
	}
	if n.timestamp(t, common.Sha([]byte{2})) != nil {
		t.Errorf("third transaction made it into a block of two")
	}
	if n.proc.memPool.count() != 1 {
		t.Errorf("mem pool holds %d transactions, want 1", n.proc.memPool.count())
	}
}

func TestMemPoolLimit(t *testing.T) {
	n := newTestNode(t, Config{MaxPoolSize: 1})
	first := n.stamps.NewTxCreateTimestamp(common.Sha([]byte{1}), n.key)
	second := n.stamps.NewTxCreateTimestamp(common.Sha([]byte{2}), n.key)

	if err := n.proc.serveMsgRequest(first.Raw()); err != nil {
		t.Fatal(err)
	}
	if err := n.proc.serveMsgRequest(second.Raw()); err == nil {
		t.Errorf("transaction admitted to a full mem pool")
	}
}

func TestPoolRestoredOnStart(t *testing.T) {
	n := newTestNode(t, Config{})
	tx := n.stamps.NewTxCreateTimestamp(common.Sha([]byte("pending")), n.key)
	if err := n.chain.AddToPool(tx); err != nil {
		t.Fatal(err)
	}

	restarted, err := NewProcessor(n.chain, nil, Config{Key: n.key})
	if err != nil {
		t.Fatal(err)
	}
	batch := restarted.plMgr.NextBatch()
	if len(batch) != 1 || batch[0] != tx.Hash() {
		t.Errorf("restored batch = %v", batch)
	}
	if restarted.plMgr.NextBlockHeight != 1 {
		t.Errorf("NextBlockHeight = %d, want 1", restarted.plMgr.NextBlockHeight)
	}
}

func TestRun(t *testing.T) {
	n := newTestNode(t, Config{BlockInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- n.proc.Run(ctx) }()

	doc := common.Sha([]byte("running"))
	if err := n.proc.SendTransaction(n.stamps.NewTxCreateTimestamp(doc, n.key)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for n.timestamp(t, doc) == nil {
		if time.Now().After(deadline) {
			t.Fatal("transaction not committed in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Error(err)
	}
}
