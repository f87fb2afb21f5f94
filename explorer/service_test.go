package explorer_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database/ldb"
	. "github.com/ipenkin/ex-timestamping/explorer"
	"github.com/ipenkin/ex-timestamping/timeservice"
	"github.com/ipenkin/ex-timestamping/timestamping"
	"github.com/ipenkin/ex-timestamping/wsapi"
)

type fixture struct {
	chain  *blockchain.Blockchain
	server *httptest.Server
	txs    []blockchain.Transaction
	block  common.Hash
}

func newFixture(t *testing.T) *fixture {
	db, err := ldb.OpenMemDB()
	if err != nil {
		t.Fatal(err)
	}
	key, _ := common.NewPrivateKeyFromSeed(make([]byte, 32))
	times := timeservice.NewService(4, []common.PublicKey{key.Public()})
	stamps := timestamping.NewService(42)
	chain, err := blockchain.NewBlockchain(db, NewService(2), times, stamps)
	if err != nil {
		t.Fatal(err)
	}
	if err := chain.CreateGenesisBlock(); err != nil {
		t.Fatal(err)
	}

	f := &fixture{chain: chain}
	f.txs = []blockchain.Transaction{
		times.NewTxTime(time.Unix(500, 0), key),
		stamps.NewTxCreateTimestamp(common.Sha([]byte("a")), key),
		stamps.NewTxCreateTimestamp(common.Sha([]byte("a")), key),
	}
	if err := chain.AddToPool(f.txs...); err != nil {
		t.Fatal(err)
	}
	// the duplicate has the same hash and is pooled once
	hashes := []common.Hash{f.txs[0].Hash(), f.txs[1].Hash()}
	hash, fork, err := chain.CreatePatch(0, 1, hashes)
	if err != nil {
		t.Fatal(err)
	}
	p := blockchain.Precommit{Height: 1, BlockHash: hash, Time: 500}
	p.Sign(key)
	if err := chain.Commit(fork, hash, []blockchain.Precommit{p}); err != nil {
		t.Fatal(err)
	}
	f.block = hash

	f.server = httptest.NewServer(wsapi.NewServer("", &blockchain.ApiContext{Blockchain: chain}).Handler())
	return f
}

func (f *fixture) close() {
	f.server.Close()
	f.chain.DB().Close()
}

func (f *fixture) get(t *testing.T, path string, v interface{}) int {
	resp, err := http.Get(f.server.URL + wsapi.ServicesPrefix + "/" + ServiceName + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if v != nil {
		if err := json.Unmarshal(buf.Bytes(), v); err != nil {
			t.Fatalf("GET %s: %v in %s", path, err, buf)
		}
	}
	return resp.StatusCode
}

func TestHeight(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	var height uint64
	if code := f.get(t, "/v0/height", &height); code != http.StatusOK || height != 1 {
		t.Errorf("height = %d (%d), want 1", height, code)
	}
}

func TestBlock(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	var info blockchain.BlockInfo
	if code := f.get(t, "/v0/block/1", &info); code != http.StatusOK {
		t.Fatalf("block 1: %d", code)
	}
	if info.Block.Hash() != f.block || len(info.Txs) != 2 || len(info.Precommits) != 1 {
		t.Errorf("block 1 = %+v", info)
	}

	var msg string
	if code := f.get(t, "/v0/block/7", &msg); code != http.StatusNotFound || msg != "Block is not found" {
		t.Errorf("block 7: %d %q", code, msg)
	}
	if code := f.get(t, "/v0/block/x", nil); code != http.StatusBadRequest {
		t.Errorf("block x: %d", code)
	}
}

func TestTransaction(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	var info struct {
		Type     string
		Content  struct{ DataHash common.Hash `json:"data_hash"` }
		Location blockchain.TxLocation
		Proof    json.RawMessage `json:"location_proof"`
		Status   blockchain.TxStatus
	}
	if code := f.get(t, "/v0/transaction/"+f.txs[1].Hash().String(), &info); code != http.StatusOK {
		t.Fatalf("transaction: %d", code)
	}
	if info.Type != blockchain.TxCommitted || info.Location.PositionInBlock != 1 || !info.Status.IsSuccess() {
		t.Errorf("transaction = %+v", info)
	}
	if info.Content.DataHash != common.Sha([]byte("a")) {
		t.Errorf("content data_hash = %s", info.Content.DataHash)
	}

	var msg string
	code := f.get(t, "/v0/transaction/"+common.Sha([]byte("none")).String(), &msg)
	if code != http.StatusNotFound || msg != "Transaction is not found" {
		t.Errorf("unknown transaction: %d %q", code, msg)
	}
}
