// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timeservice

import (
	"fmt"
	"sort"
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database"
)

// TxTimeID is the message id of TxTime.
const TxTimeID uint16 = 0

var (
	ErrUnknownSender          = blockchain.NewExecutionError(0, "Time submitted by an unknown validator")
	ErrValidatorTimeIsGreater = blockchain.NewExecutionError(1, "Validator time is not later than the stored one")
)

// TxTime is a validator reporting its local time.
type TxTime struct {
	raw     blockchain.RawTransaction
	service *Service
	pubKey  common.PublicKey
	time    time.Time
}

var _ blockchain.Transaction = (*TxTime)(nil)

func (s *Service) NewTxTime(t time.Time, key common.PrivateKey) *TxTime {
	pub := key.Public()
	body := append(pub[:], encodeTime(t)...)
	raw := blockchain.NewMessage(s.id, TxTimeID, body, key)
	return &TxTime{raw: raw, service: s, pubKey: pub, time: time.Unix(t.Unix(), int64(t.Nanosecond())).UTC()}
}

func (s *Service) txTimeFromRaw(raw blockchain.RawTransaction) (blockchain.Transaction, error) {
	if n := len(raw.Body()); n != common.PUBKEY_LENGTH+timeSize {
		return nil, fmt.Errorf("time transaction body has %d bytes, want %d", n, common.PUBKEY_LENGTH+timeSize)
	}
	pub, rest, err := common.UnmarshalPublicKey(raw.Body())
	if err != nil {
		return nil, err
	}
	t, err := decodeTime(rest)
	if err != nil {
		return nil, err
	}
	return &TxTime{raw: raw, service: s, pubKey: pub, time: t}, nil
}

func (tx *TxTime) PubKey() common.PublicKey {
	return tx.pubKey
}

func (tx *TxTime) Time() time.Time {
	return tx.time
}

func (tx *TxTime) Verify() bool {
	return tx.raw.VerifySignature(tx.pubKey)
}

func (tx *TxTime) Hash() common.Hash {
	return tx.raw.Hash()
}

func (tx *TxTime) Raw() blockchain.RawTransaction {
	return tx.raw
}

func (tx *TxTime) Content() interface{} {
	return struct {
		PubKey common.PublicKey `json:"pub_key"`
		Time   time.Time        `json:"time"`
	}{tx.pubKey, tx.time}
}

// Execute stores the reported time and recomputes the consolidated time.
func (tx *TxTime) Execute(fork database.Fork) error {
	if !tx.service.isValidator(tx.pubKey) {
		return ErrUnknownSender
	}

	schema := NewTimeSchemaMut(fork)
	prev, ok, err := schema.ValidatorTime(tx.pubKey)
	if err != nil {
		return err
	}
	if ok && !tx.time.After(prev) {
		return ErrValidatorTimeIsGreater
	}
	if err := schema.SetValidatorTime(tx.pubKey, tx.time); err != nil {
		return err
	}
	return tx.service.consolidate(schema)
}

// consolidate sets the time to the (f+1)-th latest validator time once more
// than 2f validators have reported, f being the number of faulty validators
// tolerated. The consolidated time never goes back.
func (s *Service) consolidate(schema *TimeSchemaMut) error {
	var times []time.Time
	for _, v := range s.validators {
		t, ok, err := schema.ValidatorTime(v)
		if err != nil {
			return err
		}
		if ok {
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })

	f := (len(s.validators) - 1) / 3
	if len(times) <= 2*f {
		return nil
	}
	candidate := times[f]

	current, ok, err := schema.Time()
	if err != nil {
		return err
	}
	if !ok || candidate.After(current) {
		schema.SetTime(candidate)
	}
	return nil
}
