// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/ipenkin/ex-timestamping/common"
)

// Process list contains the pooled transactions in the order the leader
// accepted them and is used for block building
type ProcessList struct {
	plItems    []*ProcessListItem
	known      map[common.Hash]bool
	nextIndex  uint32
	totalItems int
}

// ProcessListItem is one accepted transaction
type ProcessListItem struct {
	Index  uint32
	TxHash common.Hash
}

// create a new process list
func NewProcessList(sizeHint uint) *ProcessList {
	return &ProcessList{
		plItems: make([]*ProcessListItem, 0, sizeHint),
		known:   make(map[common.Hash]bool, sizeHint),
	}
}

// Append the transaction unless it is already listed. Returns false for a
// duplicate.
func (pl *ProcessList) AddToProcessList(hash common.Hash) bool {
	if pl.known[hash] {
		return false
	}
	pl.known[hash] = true
	pl.plItems = append(pl.plItems, &ProcessListItem{Index: pl.nextIndex, TxHash: hash})
	pl.nextIndex++
	pl.totalItems++
	return true
}

// Take removes up to max items from the head of the list.
func (pl *ProcessList) Take(max int) []*ProcessListItem {
	if max <= 0 || max > len(pl.plItems) {
		max = len(pl.plItems)
	}
	items := pl.plItems[:max]
	pl.plItems = pl.plItems[max:]
	for _, item := range items {
		delete(pl.known, item.TxHash)
	}
	pl.totalItems -= len(items)
	return items
}

// PushFront puts items taken earlier back at the head of the list, ahead of
// everything added since. Items listed again in the meantime are skipped.
func (pl *ProcessList) PushFront(items []*ProcessListItem) {
	head := make([]*ProcessListItem, 0, len(items)+len(pl.plItems))
	for _, item := range items {
		if pl.known[item.TxHash] {
			continue
		}
		pl.known[item.TxHash] = true
		head = append(head, item)
	}
	pl.plItems = append(head, pl.plItems...)
	pl.totalItems += len(head)
}

// Validate the process list: indexes strictly increase
func (pl *ProcessList) IsValid() bool {
	for i := 1; i < len(pl.plItems); i++ {
		if pl.plItems[i].Index <= pl.plItems[i-1].Index {
			return false
		}
	}
	return true
}

// Get Process list items
func (pl *ProcessList) GetPLItems() []*ProcessListItem {
	return pl.plItems
}

func (pl *ProcessList) Len() int {
	return pl.totalItems
}
