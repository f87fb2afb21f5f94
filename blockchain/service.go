// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/gorilla/mux"

	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

// Transaction is a decoded message of some service.
type Transaction interface {
	// Verify checks everything that can be checked without state, the
	// signature first of all. Transactions failing it never reach the pool.
	Verify() bool

	// Execute applies the transaction to the fork. A domain failure is
	// reported as an *ExecutionError and is committed as the transaction
	// result. Any other error aborts the block.
	Execute(fork database.Fork) error

	Hash() common.Hash
	Raw() RawTransaction

	// Content is the JSON view of the decoded transaction.
	Content() interface{}
}

// Service is a set of transactions, the tables they touch and the API that
// reads those tables.
type Service interface {
	ID() uint16
	Name() string

	// StateHash returns the roots of the service's authenticated tables.
	// They are folded into the block state hash in order.
	StateHash(view database.Snapshot) ([]common.Hash, error)

	TxFromRaw(raw RawTransaction) (Transaction, error)

	WireAPI(ctx *ApiContext, router *mux.Router)
}

// TxSender accepts transactions built by the node itself, such as the ones
// submitted through the REST API.
type TxSender interface {
	SendTransaction(tx Transaction) error
}

// ApiContext is what a service needs to serve its API.
type ApiContext struct {
	Blockchain *Blockchain
	Sender     TxSender
	// ServiceKey signs transactions the node creates on behalf of clients.
	ServiceKey common.PrivateKey
}

// TxDecoder builds a transaction from a message known to have the right
// service and message ids.
type TxDecoder func(raw RawTransaction) (Transaction, error)

// TransactionSet maps the message ids of one service to their decoders.
type TransactionSet map[uint16]TxDecoder

func (s TransactionSet) Decode(raw RawTransaction) (Transaction, error) {
	decode, ok := s[raw.MessageID()]
	if !ok {
		return nil, fmt.Errorf("unknown message id %d for service %d", raw.MessageID(), raw.ServiceID())
	}
	return decode(raw)
}

// ExecutionError is a failed but committed transaction outcome.
type ExecutionError struct {
	Code        uint8
	Description string
}

func NewExecutionError(code uint8, description string) *ExecutionError {
	return &ExecutionError{Code: code, Description: description}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error %d: %s", e.Code, e.Description)
}
