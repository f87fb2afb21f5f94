// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

const (
	//Common constants
	VERSION_0        = byte(0)
	PROTOCOL_VERSION = byte(0)
	NETWORK_ID       = byte(0)

	HASH_LENGTH           = 32
	PUBKEY_LENGTH         = 32
	SIGNATURE_LENGTH      = 64
	MESSAGE_HEADER_LENGTH = 10

	// Limits for the transaction pool and blocks
	MAX_TX_POOL_SIZE = 50000
	MAX_TX_PER_BLOCK = 1000
	MAX_MESSAGE_SIZE = 1024 * 1024
)
