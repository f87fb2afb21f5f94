// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timeservice

import (
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
)

// ValidatorClock turns the local clock of a validator into TxTime
// transactions, one per block.
type ValidatorClock struct {
	service *Service
	key     common.PrivateKey
	now     func() time.Time
}

func NewValidatorClock(s *Service, key common.PrivateKey) *ValidatorClock {
	return &ValidatorClock{service: s, key: key, now: time.Now}
}

// SetNow replaces the clock source.
func (c *ValidatorClock) SetNow(now func() time.Time) {
	c.now = now
}

// Tick returns the transaction reporting the current time, or nil when the
// key is not a validator key.
func (c *ValidatorClock) Tick() blockchain.Transaction {
	if !c.service.isValidator(c.key.Public()) {
		return nil
	}
	return c.service.NewTxTime(c.now(), c.key)
}
