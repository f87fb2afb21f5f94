// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

// Package explorer serves read access to blocks and transactions. It has
// no transactions and no tables of its own.
package explorer

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/wsapi"
)

const ServiceName = "blockchain"

type Service struct {
	id uint16
}

var _ blockchain.Service = (*Service)(nil)

func NewService(id uint16) *Service {
	return &Service{id: id}
}

func (s *Service) ID() uint16 {
	return s.id
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) StateHash(view database.Snapshot) ([]common.Hash, error) {
	return nil, nil
}

func (s *Service) TxFromRaw(raw blockchain.RawTransaction) (blockchain.Transaction, error) {
	return nil, fmt.Errorf("%s service has no transactions", ServiceName)
}

func (s *Service) WireAPI(ctx *blockchain.ApiContext, router *mux.Router) {
	api := &explorerApi{chain: ctx.Blockchain}
	router.HandleFunc("/v0/height", api.handleHeight).Methods("GET")
	router.HandleFunc("/v0/block/{num}", api.handleBlock).Methods("GET")
	router.HandleFunc("/v0/transaction/{hash}", api.handleTransaction).Methods("GET")
}

type explorerApi struct {
	chain *blockchain.Blockchain
}

// withExplorer runs fn on an explorer over a fresh snapshot.
func (a *explorerApi) withExplorer(w http.ResponseWriter, fn func(*blockchain.Explorer)) {
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()
	fn(blockchain.NewExplorer(a.chain, snap))
}

func (a *explorerApi) handleHeight(w http.ResponseWriter, r *http.Request) {
	a.withExplorer(w, func(e *blockchain.Explorer) {
		height, err := e.Height()
		if err != nil {
			wsapi.ReturnError(w, err)
			return
		}
		wsapi.ReturnOK(w, height)
	})
}

func (a *explorerApi) handleBlock(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.ParseUint(mux.Vars(r)["num"], 10, 64)
	if err != nil {
		wsapi.ReturnError(w, &wsapi.BadRequestError{Msg: "Invalid request param: `num`"})
		return
	}
	a.withExplorer(w, func(e *blockchain.Explorer) {
		info, err := e.Block(num)
		if err != nil {
			wsapi.ReturnError(w, err)
			return
		}
		if info == nil {
			wsapi.ReturnNotFound(w, "Block is not found")
			return
		}
		wsapi.ReturnOK(w, info)
	})
}

func (a *explorerApi) handleTransaction(w http.ResponseWriter, r *http.Request) {
	hash, err := wsapi.HashParam(r, "hash")
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	a.withExplorer(w, func(e *blockchain.Explorer) {
		info, err := e.Transaction(hash)
		if err != nil {
			wsapi.ReturnError(w, err)
			return
		}
		if info == nil {
			wsapi.ReturnNotFound(w, "Transaction is not found")
			return
		}
		wsapi.ReturnOK(w, info)
	})
}
