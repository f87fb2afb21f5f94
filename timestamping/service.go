// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

// Package timestamping records, once per document, a signed proof that the
// document hash existed at the consolidated time of the chain.
package timestamping

import (
	"github.com/gorilla/mux"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

const ServiceName = "timestamping"

type Service struct {
	id  uint16
	txs blockchain.TransactionSet
}

var _ blockchain.Service = (*Service)(nil)

func NewService(id uint16) *Service {
	return &Service{
		id: id,
		txs: blockchain.TransactionSet{
			TxCreateTimestampID: txCreateTimestampFromRaw,
		},
	}
}

func (s *Service) ID() uint16 {
	return s.id
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) StateHash(view database.Snapshot) ([]common.Hash, error) {
	return NewSchema(view).StateHash()
}

func (s *Service) TxFromRaw(raw blockchain.RawTransaction) (blockchain.Transaction, error) {
	return s.txs.Decode(raw)
}

func (s *Service) WireAPI(ctx *blockchain.ApiContext, router *mux.Router) {
	api := &timestampingApi{
		service: s,
		chain:   ctx.Blockchain,
		sender:  ctx.Sender,
		key:     ctx.ServiceKey,
	}
	router.HandleFunc("/v0/timestamp/hash", api.handlePostHash).Methods("POST")
	router.HandleFunc("/v0/timestamp/base64", api.handlePostBase64).Methods("POST")
	router.HandleFunc("/v0/timestamp/raw", api.handlePostRaw).Methods("POST")
	router.HandleFunc("/v0/timestamp/{data_hash}", api.handleTimestamp).Methods("GET")
	router.HandleFunc("/v0/timestamp/{data_hash}/proof", api.handleTimestampProof).Methods("GET")
	router.HandleFunc("/v0/timestamps", api.handleTimestamps).Methods("GET")
}
