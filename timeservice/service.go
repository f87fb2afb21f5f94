// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

// Package timeservice is the time oracle of the chain. Validators submit
// their local clocks as transactions and the service keeps a consolidated
// time that tolerates a third of them lying.
package timeservice

import (
	"github.com/gorilla/mux"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

const ServiceName = "time"

type Service struct {
	id         uint16
	validators []common.PublicKey
	txs        blockchain.TransactionSet
}

var _ blockchain.Service = (*Service)(nil)

// NewService returns the service with the given id, trusting the times of
// the given validator service keys.
func NewService(id uint16, validators []common.PublicKey) *Service {
	s := &Service{id: id, validators: validators}
	s.txs = blockchain.TransactionSet{
		TxTimeID: s.txTimeFromRaw,
	}
	return s
}

func (s *Service) ID() uint16 {
	return s.id
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Validators() []common.PublicKey {
	return s.validators
}

func (s *Service) isValidator(pub common.PublicKey) bool {
	for _, v := range s.validators {
		if v == pub {
			return true
		}
	}
	return false
}

func (s *Service) StateHash(view database.Snapshot) ([]common.Hash, error) {
	return NewTimeSchema(view).StateHash()
}

func (s *Service) TxFromRaw(raw blockchain.RawTransaction) (blockchain.Transaction, error) {
	return s.txs.Decode(raw)
}

func (s *Service) WireAPI(ctx *blockchain.ApiContext, router *mux.Router) {
	api := &timeApi{chain: ctx.Blockchain, service: s}
	router.HandleFunc("/v0/current_time", api.handleCurrentTime).Methods("GET")
	router.HandleFunc("/v0/validators_times", api.handleValidatorsTimes).Methods("GET")
}
