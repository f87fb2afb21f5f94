// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"

	"github.com/ipenkin/ex-timestamping/common"
)

type TimestampdConfig struct {
	App struct {
		HomeDir string
		LdbPath string
		KeyFile string
	}
	Node struct {
		ValidatorID     uint16
		ServerPrivKey   string
		Validator       []string
		BlockIntervalMs int
		MaxTxPerBlock   int
		MaxPoolSize     int
		QueueSize       int
	}
	Wsapi struct {
		ApplicationName string
		Address         string
		PortNumber      int
	}
	Log struct {
		LogLevel string
		LogPath  string
	}
	Time struct {
		ServiceID uint16
	}
	Timestamping struct {
		ServiceID uint16
	}
	Explorer struct {
		ServiceID uint16
	}
}

// BlockInterval is the block timer period.
func (c *TimestampdConfig) BlockInterval() time.Duration {
	return time.Duration(c.Node.BlockIntervalMs) * time.Millisecond
}

// Validators parses the validator keys. An empty list means the node key
// is the only validator.
func (c *TimestampdConfig) Validators() ([]common.PublicKey, error) {
	keys := make([]common.PublicKey, 0, len(c.Node.Validator))
	for _, s := range c.Node.Validator {
		pub, err := common.HexToPublicKey(s)
		if err != nil {
			return nil, errors.Wrapf(err, "validator key %q", s)
		}
		keys = append(keys, pub)
	}
	return keys, nil
}

// the configuration used when the config file has no value
const defaultConfig = `
; ------------------------------------------------------------------------------
; App settings
; ------------------------------------------------------------------------------
[app]
HomeDir                 = ""
LdbPath                 = "ldb"
KeyFile                 = "node.key"

; ------------------------------------------------------------------------------
; Node settings. An empty ServerPrivKey reads or generates KeyFile.
; ------------------------------------------------------------------------------
[node]
ValidatorID             = 0
ServerPrivKey           = ""
BlockIntervalMs         = 1000
MaxTxPerBlock           = 1000
MaxPoolSize             = 50000
QueueSize               = 1000

[wsapi]
ApplicationName         = "Timestampd/wsapi"
Address                 = ""
PortNumber              = 8000

; ------------------------------------------------------------------------------
; logLevel - allowed values are: debug, info, notice, warning, error, critical, alert, emergency and none
; ------------------------------------------------------------------------------
[log]
LogLevel                = info
LogPath                 = ""

[time]
ServiceID               = 4

[timestamping]
ServiceID               = 42

[explorer]
ServiceID               = 2
`

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *TimestampdConfig {
	cfg := new(TimestampdConfig)
	if err := gcfg.ReadStringInto(cfg, defaultConfig); err != nil {
		panic(err)
	}
	return cfg
}

// ReadConfig reads the config file over the defaults. A missing file
// leaves the defaults in place.
func ReadConfig(path string) (*TimestampdConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}
