// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timestamping

import (
	"fmt"

	"github.com/ipenkin/ex-timestamping/blockchain"
)

// Execution outcomes of TxCreateTimestamp other than success.
var (
	ErrDocumentAlreadyExists = blockchain.NewExecutionError(0, "Document already exists")
	ErrTimeServiceError      = blockchain.NewExecutionError(1, "Time service has no consolidated time")
)

func errBodySize(n int) error {
	return fmt.Errorf("create timestamp body is %d bytes, want %d", n, txCreateTimestampBodySize)
}
