// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package common

import (
	"bytes"
	"encoding/json"

	"github.com/davecgh/go-spew/spew"
)

// Printable records render as JSON for the API and as a spew dump for
// debug logs.
type Printable interface {
	JSONByte() ([]byte, error)
	JSONString() (string, error)
	JSONBuffer(b *bytes.Buffer) error
	Spew() string
}

// spew settings for records: no pointer addresses, stable map order
var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func EncodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func EncodeJSONString(v interface{}) (string, error) {
	p, err := json.Marshal(v)
	return string(p), err
}

// EncodeJSONToBuffer appends the JSON encoding of v to b. Nothing is
// written on error.
func EncodeJSONToBuffer(v interface{}, b *bytes.Buffer) error {
	p, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.Write(p)
	return err
}

func Spew(v interface{}) string {
	return spewConfig.Sdump(v)
}
