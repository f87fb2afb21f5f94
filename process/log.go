// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package process

import (
	"github.com/ipenkin/ex-timestamping/ledgerlog"
)

var procLog = ledgerlog.NewSubsystem("process")
