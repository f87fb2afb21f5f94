// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/blockchain"
	"github.com/ipenkin/ex-timestamping/common"
	"github.com/ipenkin/ex-timestamping/database/ldb"
	"github.com/ipenkin/ex-timestamping/explorer"
	"github.com/ipenkin/ex-timestamping/ledgerlog"
	"github.com/ipenkin/ex-timestamping/process"
	"github.com/ipenkin/ex-timestamping/timeservice"
	"github.com/ipenkin/ex-timestamping/timestamping"
	"github.com/ipenkin/ex-timestamping/util"
	"github.com/ipenkin/ex-timestamping/wsapi"
)

const version = "0.1.0"

const usage = `timestampd

Usage:
  timestampd [-c <config>] [initializeonly]
  timestampd -h | --help
  timestampd --version

Options:
  -c <config>   Config file [default: timestampd.conf].
  -h --help     Show this screen.
  --version     Show version.
`

type Opts struct {
	Config         string `docopt:"-c"`
	Initializeonly bool
}

func main() {
	os.Exit(run())
}

func run() int {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpAndExit}
	o, err := parser.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 22
	}
	var opts Opts
	if err := o.Bind(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 22
	}

	// Load configuration file and send settings to components
	cfg, err := util.ReadConfig(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := initLog(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := timestampdMain(cfg, opts.Initializeonly); err != nil {
		tsdLog.Error(err)
		return 1
	}
	return 0
}

func initLog(cfg *util.TimestampdConfig) error {
	if cfg.Log.LogPath == "" {
		ledgerlog.Configure(os.Stderr, cfg.Log.LogLevel)
		return nil
	}
	f, err := os.OpenFile(homePath(cfg, cfg.Log.LogPath), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	ledgerlog.Configure(f, cfg.Log.LogLevel)
	return nil
}

func homePath(cfg *util.TimestampdConfig, p string) string {
	if filepath.IsAbs(p) || cfg.App.HomeDir == "" {
		return p
	}
	return filepath.Join(cfg.App.HomeDir, p)
}

func timestampdMain(cfg *util.TimestampdConfig, initializeOnly bool) error {
	key, err := serverKey(cfg)
	if err != nil {
		return err
	}
	validators, err := cfg.Validators()
	if err != nil {
		return err
	}
	if len(validators) == 0 {
		validators = []common.PublicKey{key.Public()}
	}

	db, err := initDB(homePath(cfg, cfg.App.LdbPath))
	if err != nil {
		return err
	}
	defer db.Close()

	times := timeservice.NewService(cfg.Time.ServiceID, validators)
	chain, err := blockchain.NewBlockchain(db,
		explorer.NewService(cfg.Explorer.ServiceID),
		times,
		timestamping.NewService(cfg.Timestamping.ServiceID),
	)
	if err != nil {
		return err
	}

	proc, err := process.NewProcessor(chain, timeservice.NewValidatorClock(times, key), process.Config{
		ValidatorID:   cfg.Node.ValidatorID,
		Key:           key,
		BlockInterval: cfg.BlockInterval(),
		MaxTxPerBlock: cfg.Node.MaxTxPerBlock,
		MaxPoolSize:   cfg.Node.MaxPoolSize,
		QueueSize:     cfg.Node.QueueSize,
	})
	if err != nil {
		return err
	}
	if initializeOnly {
		tsdLog.Info("Initializing only.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := wsapi.NewServer(fmt.Sprintf("%s:%d", cfg.Wsapi.Address, cfg.Wsapi.PortNumber), &blockchain.ApiContext{
		Blockchain: chain,
		Sender:     proc,
		ServiceKey: key,
	})

	procDone := make(chan error, 1)
	go func() {
		procDone <- proc.Run(ctx)
	}()

	err = server.Run(ctx)
	stop()
	if perr := <-procDone; err == nil {
		err = perr
	}
	return err
}

// serverKey uses the configured key, or reads or generates the key file.
func serverKey(cfg *util.TimestampdConfig) (common.PrivateKey, error) {
	if cfg.Node.ServerPrivKey != "" {
		key, err := common.NewPrivateKeyFromHex(cfg.Node.ServerPrivKey)
		return key, errors.Wrap(err, "ServerPrivKey")
	}
	path := homePath(cfg, cfg.App.KeyFile)
	key, created, err := util.LoadOrCreateKey(path)
	if err != nil {
		return key, err
	}
	if created {
		tsdLog.Noticef("generated server key %s in %s", key.Public(), path)
	} else {
		tsdLog.Infof("server key %s", key.Public())
	}
	return key, nil
}

// Initialize the level db, creating it on first start
func initDB(ldbpath string) (*ldb.LevelDb, error) {
	db, err := ldb.OpenLevelDB(ldbpath, false)
	if err != nil {
		tsdLog.Infof("Creating new db ... (%v)", err)
		db, err = ldb.OpenLevelDB(ldbpath, true)
		if err != nil {
			return nil, errors.Wrapf(err, "open db %s", ldbpath)
		}
	}
	tsdLog.Info("Database started from: " + ldbpath)
	return db, nil
}
