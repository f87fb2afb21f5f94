package consensus_test

import (
	"testing"
	"time"

	"github.com/ipenkin/ex-timestamping/common"
	. "github.com/ipenkin/ex-timestamping/consensus"
)

func TestPlist(t *testing.T) {
	pl := NewProcessList(1)

	a, b := common.Sha([]byte("a")), common.Sha([]byte("b"))
	if !pl.AddToProcessList(a) || !pl.AddToProcessList(b) {
		t.Fatalf("new hashes refused")
	}
	if pl.AddToProcessList(a) {
		t.Errorf("duplicate hash accepted")
	}
	if pl.Len() != 2 || !pl.IsValid() {
		t.Errorf("Len = %d, valid = %v", pl.Len(), pl.IsValid())
	}

	items := pl.Take(1)
	if len(items) != 1 || items[0].TxHash != a || items[0].Index != 0 {
		t.Errorf("Take(1) = %+v", items)
	}
	// a left the list, so it may be listed again
	if !pl.AddToProcessList(a) {
		t.Errorf("taken hash refused")
	}
	items = pl.Take(0)
	if len(items) != 2 || items[0].TxHash != b || items[1].Index != 2 {
		t.Errorf("Take(0) = %+v", items)
	}
}

func TestPlistPushFront(t *testing.T) {
	pl := NewProcessList(4)
	for i := byte(0); i < 3; i++ {
		pl.AddToProcessList(common.Sha([]byte{i}))
	}
	taken := pl.Take(2)
	pl.AddToProcessList(common.Sha([]byte{3}))
	pl.PushFront(taken)

	if pl.Len() != 4 || !pl.IsValid() {
		t.Fatalf("Len = %d, valid = %v", pl.Len(), pl.IsValid())
	}
	items := pl.GetPLItems()
	for i, item := range items {
		if item.TxHash != common.Sha([]byte{byte(i)}) {
			t.Errorf("item %d = %+v", i, item)
		}
	}
	if pl.AddToProcessList(common.Sha([]byte{0})) {
		t.Errorf("returned hash listed twice")
	}
}

func TestPlistMgr(t *testing.T) {
	key, _ := common.NewPrivateKeyFromSeed(make([]byte, 32))
	plMgr := NewProcessListMgr(5, 4, 2, 3, key)

	plMgr.AddToLeadersProcessList(common.Sha([]byte{1}))
	if plMgr.IsMyPListExceedingLimit() {
		t.Errorf("one item exceeds a limit of two")
	}
	plMgr.AddToLeadersProcessList(common.Sha([]byte{2}))
	plMgr.AddToLeadersProcessList(common.Sha([]byte{3}))
	if !plMgr.IsMyPListExceedingLimit() {
		t.Errorf("three items do not exceed a limit of two")
	}

	batch := plMgr.NextBatch()
	if len(batch) != 2 || batch[0] != common.Sha([]byte{1}) {
		t.Errorf("NextBatch = %v", batch)
	}

	block := common.Sha([]byte("block"))
	p := plMgr.SignPrecommit(block, time.Unix(77, 0))
	if p.Height != 5 || p.Validator != 3 || p.Time != 77 || p.BlockHash != block {
		t.Errorf("precommit = %+v", p)
	}
	if !p.Verify(key.Public()) {
		t.Errorf("precommit signature does not verify")
	}
	if plMgr.NextBlockHeight != 5 {
		t.Errorf("signing moved NextBlockHeight to %d", plMgr.NextBlockHeight)
	}

	// a failed block gives its batch back
	plMgr.ReturnBatch()
	if again := plMgr.NextBatch(); len(again) != 2 || again[0] != batch[0] || again[1] != batch[1] {
		t.Errorf("batch after ReturnBatch = %v", again)
	}
	plMgr.BlockCommitted()
	if plMgr.NextBlockHeight != 6 {
		t.Errorf("NextBlockHeight = %d", plMgr.NextBlockHeight)
	}
	if rest := plMgr.NextBatch(); len(rest) != 1 || rest[0] != common.Sha([]byte{3}) {
		t.Errorf("batch after commit = %v", rest)
	}
}
