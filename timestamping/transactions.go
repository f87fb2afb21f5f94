// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
)

// TxCreateTimestampID is the message id of TxCreateTimestamp.
const TxCreateTimestampID uint16 = 0

const txCreateTimestampBodySize = common.PUBKEY_LENGTH + common.HASH_LENGTH

// TxCreateTimestamp asks for a timestamp of DataHash. The body is
// pub_key ++ data_hash, signed by pub_key.
type TxCreateTimestamp struct {
	raw      blockchain.RawTransaction
	pubKey   common.PublicKey
	dataHash common.Hash
}

var _ blockchain.Transaction = (*TxCreateTimestamp)(nil)

// NewTxCreateTimestamp signs a request for dataHash with key.
func (s *Service) NewTxCreateTimestamp(dataHash common.Hash, key common.PrivateKey) *TxCreateTimestamp {
	pub := key.Public()
	body := make([]byte, 0, txCreateTimestampBodySize)
	body = append(body, pub[:]...)
	body = append(body, dataHash[:]...)
	return &TxCreateTimestamp{
		raw:      blockchain.NewMessage(s.id, TxCreateTimestampID, body, key),
		pubKey:   pub,
		dataHash: dataHash,
	}
}

func txCreateTimestampFromRaw(raw blockchain.RawTransaction) (blockchain.Transaction, error) {
	body := raw.Body()
	if len(body) != txCreateTimestampBodySize {
		return nil, errBodySize(len(body))
	}
	pub, body, _ := common.UnmarshalPublicKey(body)
	dataHash, _, _ := common.UnmarshalHash(body)
	return &TxCreateTimestamp{raw: raw, pubKey: pub, dataHash: dataHash}, nil
}

func (tx *TxCreateTimestamp) PubKey() common.PublicKey {
	return tx.pubKey
}

func (tx *TxCreateTimestamp) DataHash() common.Hash {
	return tx.dataHash
}

func (tx *TxCreateTimestamp) Hash() common.Hash {
	return tx.raw.Hash()
}

func (tx *TxCreateTimestamp) Raw() blockchain.RawTransaction {
	return tx.raw
}

func (tx *TxCreateTimestamp) Content() interface{} {
	return struct {
		PubKey   common.PublicKey `json:"pub_key"`
		DataHash common.Hash      `json:"data_hash"`
	}{tx.pubKey, tx.dataHash}
}
