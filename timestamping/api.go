// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"errors"
	"net/http"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/merkle"
	"github.com/ipenkin/ex-timestamping/wsapi"
)

type timestampingApi struct {
	service *Service
	chain   *blockchain.Blockchain
	sender  blockchain.TxSender
	key     common.PrivateKey
}

// TransactionRequestHash is the body of POST /v0/timestamp/hash.
type TransactionRequestHash struct {
	DataHash *common.Hash `json:"data_hash"`
}

// TransactionRequestBase64 is the body of POST /v0/timestamp/base64.
type TransactionRequestBase64 struct {
	Data []byte `json:"data"`
}

type TransactionResponse struct {
	TxHash   common.Hash `json:"tx_hash"`
	DataHash common.Hash `json:"data_hash"`
}

// TimestampProofResponse ties a record to the last committed block: Proof
// leads to MapRoot, StateProof leads from the table leaf to
// Block.StateHash.
type TimestampProofResponse struct {
	Block      *blockchain.Block `json:"block"`
	StateProof *merkle.ListProof `json:"state_proof"`
	*TimestampProof
}

var errNoDataHash = &wsapi.BadRequestError{Msg: "Missing field: `data_hash`"}
var errNoData = &wsapi.BadRequestError{Msg: "Missing field: `data`"}

// handleTimestamp serves GET /v0/timestamp/{data_hash}.
func (a *timestampingApi) handleTimestamp(w http.ResponseWriter, r *http.Request) {
	dataHash, err := wsapi.HashParam(r, "data_hash")
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()

	t, err := NewSchema(snap).Timestamp(dataHash)
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if t == nil {
		wsapi.ReturnNotFound(w, "Timestamp not found")
		return
	}
	wsapi.ReturnOK(w, t)
}

// handleTimestampProof serves GET /v0/timestamp/{data_hash}/proof. It
// answers for absent hashes too, with a proof of absence.
func (a *timestampingApi) handleTimestampProof(w http.ResponseWriter, r *http.Request) {
	dataHash, err := wsapi.HashParam(r, "data_hash")
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()

	resp := new(TimestampProofResponse)
	if resp.TimestampProof, err = NewSchema(snap).TimestampWithProof(dataHash); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if resp.Block, err = blockchain.NewSchema(snap).LastBlock(); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if resp.StateProof, err = a.chain.StateProof(snap, a.service.id, 0); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	wsapi.ReturnOK(w, resp)
}

// handleTimestamps dumps every record. Debug only.
func (a *timestampingApi) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()

	timestamps, err := NewSchema(snap).AllTimestamps()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	wsapi.ReturnOK(w, timestamps)
}

func (a *timestampingApi) handlePostHash(w http.ResponseWriter, r *http.Request) {
	req := new(TransactionRequestHash)
	if err := wsapi.DecodeBody(r, req); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if req.DataHash == nil {
		wsapi.ReturnError(w, errNoDataHash)
		return
	}
	a.sendTx(w, *req.DataHash)
}

func (a *timestampingApi) handlePostBase64(w http.ResponseWriter, r *http.Request) {
	req := new(TransactionRequestBase64)
	if err := wsapi.DecodeBody(r, req); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if len(req.Data) == 0 {
		wsapi.ReturnError(w, errNoData)
		return
	}
	a.sendTx(w, common.Sha(req.Data))
}

// handlePostRaw timestamps the request body itself, whatever its size.
func (a *timestampingApi) handlePostRaw(w http.ResponseWriter, r *http.Request) {
	dataHash, err := wsapi.HashBody(r)
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	a.sendTx(w, dataHash)
}

func (a *timestampingApi) sendTx(w http.ResponseWriter, dataHash common.Hash) {
	if a.sender == nil {
		wsapi.ReturnError(w, errors.New("node does not accept transactions"))
		return
	}
	tx := a.service.NewTxCreateTimestamp(dataHash, a.key)
	if err := a.sender.SendTransaction(tx); err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	tsLog.Debugf("sent %s for %s", tx.Hash(), dataHash)
	wsapi.ReturnOK(w, &TransactionResponse{TxHash: tx.Hash(), DataHash: dataHash})
}
