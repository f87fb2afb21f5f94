// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package process

import (
	"context"
	"time"
)

// BlockTimer sends end-of-block ticks to the processor
type BlockTimer struct {
	interval      time.Duration
	inCtlMsgQueue chan<- time.Time // end-of-block ticks for the processor
}

// StartBlockTimer ticks every interval until ctx is done. A tick the
// processor is too busy to take is dropped.
func (bt *BlockTimer) StartBlockTimer(ctx context.Context) {
	ticker := time.NewTicker(bt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			select {
			case bt.inCtlMsgQueue <- t:
			default:
				procLog.Debugf("block timer: processor busy, tick at %s dropped", t.Format(time.RFC3339))
			}
		}
	}
}
