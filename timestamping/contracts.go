// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/timeservice"
)

// Verify checks the signature against the key in the body.
func (tx *TxCreateTimestamp) Verify() bool {
	return tx.raw.VerifySignature(tx.pubKey)
}

// Execute records the data hash at the consolidated time. Without a
// consolidated time, or when the hash is already recorded, the fork is left
// untouched and the failure becomes the transaction result.
func (tx *TxCreateTimestamp) Execute(fork database.Fork) error {
	now, ok, err := timeservice.NewTimeSchema(fork).Time()
	if err != nil {
		return err
	}
	if !ok {
		return ErrTimeServiceError
	}

	schema := NewSchemaMut(fork)
	exists, err := schema.Timestamps().Contains(tx.dataHash)
	if err != nil {
		return err
	}
	if exists {
		return ErrDocumentAlreadyExists
	}

	ts := FromParts(now, tx.dataHash)
	if err := schema.InsertTimestamp(ts); err != nil {
		return err
	}
	tsLog.Debugf("timestamp %s at %d", tx.dataHash, ts.Timestamp)
	return nil
}
