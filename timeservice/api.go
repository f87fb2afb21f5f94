// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package timeservice

import (
	"net/http"
	"time"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/wsapi"
)

type timeApi struct {
	chain   *blockchain.Blockchain
	service *Service
}

type ValidatorTime struct {
	PubKey common.PublicKey `json:"public_key"`
	Time   *time.Time       `json:"time"`
}

// handleCurrentTime answers the consolidated time, or null while there is
// none.
func (a *timeApi) handleCurrentTime(w http.ResponseWriter, r *http.Request) {
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()

	t, ok, err := NewTimeSchema(snap).Time()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	if !ok {
		wsapi.ReturnOK(w, nil)
		return
	}
	wsapi.ReturnOK(w, t)
}

func (a *timeApi) handleValidatorsTimes(w http.ResponseWriter, r *http.Request) {
	snap, err := a.chain.Snapshot()
	if err != nil {
		wsapi.ReturnError(w, err)
		return
	}
	defer snap.Release()

	schema := NewTimeSchema(snap)
	times := make([]ValidatorTime, 0, len(a.service.validators))
	for _, v := range a.service.validators {
		t, ok, err := schema.ValidatorTime(v)
		if err != nil {
			wsapi.ReturnError(w, err)
			return
		}
		vt := ValidatorTime{PubKey: v}
		if ok {
			vt.Time = &t
		}
		times = append(times, vt)
	}
	wsapi.ReturnOK(w, times)
}
