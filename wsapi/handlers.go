// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package wsapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/common"
)

// BadRequestError is input rejected before any transaction is built.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string {
	return e.Msg
}

// BadRequest turns err into a *BadRequestError.
func BadRequest(err error) error {
	return &BadRequestError{Msg: err.Error()}
}

func IsBadRequest(err error) bool {
	_, ok := errors.Cause(err).(*BadRequestError)
	return ok
}

var errEmptyBody = &BadRequestError{Msg: "Empty request body"}
var errBodyTooLarge = &BadRequestError{Msg: fmt.Sprintf("Request body exceeds %d bytes", common.MAX_MESSAGE_SIZE)}

// ReturnJSON writes v as the response body.
func ReturnJSON(w http.ResponseWriter, code int, v interface{}) {
	buf := new(bytes.Buffer)
	if err := common.EncodeJSONToBuffer(v, buf); err != nil {
		wsLog.Error(err)
		code = httpError
		buf.Reset()
		common.EncodeJSONToBuffer(err.Error(), buf)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// ReturnOK writes v with status 200.
func ReturnOK(w http.ResponseWriter, v interface{}) {
	ReturnJSON(w, httpOK, v)
}

// ReturnNotFound writes msg as a JSON string with status 404.
func ReturnNotFound(w http.ResponseWriter, msg string) {
	ReturnJSON(w, httpNotFound, msg)
}

// ReturnError maps err to a status code and writes its message.
func ReturnError(w http.ResponseWriter, err error) {
	code := httpError
	if IsBadRequest(err) {
		code = httpBad
	} else {
		wsLog.Error(err)
	}
	ReturnJSON(w, code, err.Error())
}

// ReadBody returns the request body, rejecting an empty one or one longer
// than MAX_MESSAGE_SIZE.
func ReadBody(r *http.Request) ([]byte, error) {
	p, err := ioutil.ReadAll(io.LimitReader(r.Body, common.MAX_MESSAGE_SIZE+1))
	if err != nil {
		return nil, BadRequest(err)
	}
	if len(p) == 0 {
		return nil, errEmptyBody
	}
	if len(p) > common.MAX_MESSAGE_SIZE {
		return nil, errBodyTooLarge
	}
	return p, nil
}

// HashBody returns the hash of the whole request body without holding it in
// memory. An empty body is rejected.
func HashBody(r *http.Request) (h common.Hash, err error) {
	d := sha256.New()
	n, err := io.Copy(d, r.Body)
	if err != nil {
		return h, BadRequest(err)
	}
	if n == 0 {
		return h, errEmptyBody
	}
	copy(h[:], d.Sum(nil))
	return h, nil
}

// DecodeBody parses the JSON request body into v.
func DecodeBody(r *http.Request, v interface{}) error {
	p, err := ReadBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(p, v); err != nil {
		return BadRequest(err)
	}
	return nil
}

// HashParam decodes the route variable name as a hex hash.
func HashParam(r *http.Request, name string) (common.Hash, error) {
	h, err := common.HexToHash(mux.Vars(r)[name])
	if err != nil {
		return common.ZeroHash, &BadRequestError{Msg: fmt.Sprintf("Invalid request param: `%s`", name)}
	}
	return h, nil
}
