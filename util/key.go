// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package util

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/common"
)

// LoadOrCreateKey reads the hex private key in path. When the file does
// not exist a new key is generated and written there.
func LoadOrCreateKey(path string) (key common.PrivateKey, created bool, err error) {
	data, err := ioutil.ReadFile(path)
	if err == nil {
		key, err = common.NewPrivateKeyFromHex(strings.TrimSpace(string(data)))
		return key, false, errors.Wrapf(err, "key file %s", path)
	}
	if !os.IsNotExist(err) {
		return key, false, err
	}

	if key, err = common.GenerateKey(); err != nil {
		return key, false, err
	}
	if err := renameio.WriteFile(path, []byte(key.String()+"\n"), 0600); err != nil {
		return key, false, errors.Wrapf(err, "write key file %s", path)
	}
	return key, true, nil
}
