package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/gcfg.v1"

	"github.com/ipenkin/ex-timestamping/common"
	. "github.com/ipenkin/ex-timestamping/util"
)

func TestLoadDefaultConfig(t *testing.T) {
	type testConfig struct {
		Test struct {
			Foo string
			Bar int64
		}
	}

	var testConfigFile string = `
	[Test]
	Foo = "Bla"
	Bar = "-1"
	`

	cfg := new(testConfig)
	gcfg.ReadStringInto(cfg, testConfigFile)
	if cfg.Test.Foo != "Bla" {
		t.Errorf("Wrong variable read - %v", cfg.Test.Foo)
	}
	if cfg.Test.Bar != -1 {
		t.Errorf("Wrong variable read - %v", cfg.Test.Bar)
	}

	var testConfigFile2 string = `
	[Test]
	Foo = "Ble"
	`
	gcfg.ReadStringInto(cfg, testConfigFile2)
	if cfg.Test.Foo != "Ble" {
		t.Errorf("Wrong variable read - %v", cfg.Test.Foo)
	}
	if cfg.Test.Bar != -1 {
		t.Errorf("Wrong variable read - %v", cfg.Test.Bar)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.App.LdbPath != "ldb" {
		t.Errorf("Wrong variable read - %v", cfg.App.LdbPath)
	}
	if cfg.BlockInterval() != time.Second {
		t.Errorf("Wrong block interval - %v", cfg.BlockInterval())
	}
	if cfg.Wsapi.PortNumber != 8000 || cfg.Log.LogLevel != "info" {
		t.Errorf("Wrong variable read - %+v %+v", cfg.Wsapi, cfg.Log)
	}
	if cfg.Time.ServiceID != 4 || cfg.Timestamping.ServiceID != 42 || cfg.Explorer.ServiceID != 2 {
		t.Errorf("Wrong service ids - %d %d %d", cfg.Time.ServiceID, cfg.Timestamping.ServiceID, cfg.Explorer.ServiceID)
	}
	if keys, err := cfg.Validators(); err != nil || len(keys) != 0 {
		t.Errorf("Validators = %v, %v", keys, err)
	}
}

func TestReadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg, err := ReadConfig(filepath.Join(dir, "missing.conf"))
	if err != nil || cfg.App.LdbPath != "ldb" {
		t.Fatalf("missing file: %v %v", cfg, err)
	}

	key, _ := common.NewPrivateKeyFromSeed(make([]byte, 32))
	var modifiedConfig string = `
	[app]
	LdbPath         = "/var/lib/timestampd"
	[node]
	BlockIntervalMs = 250
	Validator       = ` + key.Public().String() + `
	Validator       = ` + key.Public().String() + `
	[log]
	LogLevel        = debug
	`
	path := filepath.Join(dir, "timestampd.conf")
	if err := ioutil.WriteFile(path, []byte(modifiedConfig), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.LdbPath != "/var/lib/timestampd" || cfg.Log.LogLevel != "debug" {
		t.Errorf("Wrong variable read - %+v %+v", cfg.App, cfg.Log)
	}
	if cfg.App.KeyFile != "node.key" || cfg.Node.MaxTxPerBlock != 1000 {
		t.Errorf("default lost - %+v %+v", cfg.App, cfg.Node)
	}
	if cfg.BlockInterval() != 250*time.Millisecond {
		t.Errorf("Wrong block interval - %v", cfg.BlockInterval())
	}
	keys, err := cfg.Validators()
	if err != nil || len(keys) != 2 || keys[0] != key.Public() {
		t.Errorf("Validators = %v, %v", keys, err)
	}

	if err := ioutil.WriteFile(path, []byte("[nosuchsection]\nfoo = 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(path); err == nil {
		t.Errorf("expected an error for an unknown section")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	dir, err := ioutil.TempDir("", "key")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "node.key")

	key, created, err := LoadOrCreateKey(path)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	again, created, err := LoadOrCreateKey(path)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if again.Public() != key.Public() {
		t.Errorf("reloaded key differs")
	}

	ioutil.WriteFile(path, []byte("zz"), 0600)
	if _, _, err := LoadOrCreateKey(path); err == nil {
		t.Errorf("expected an error for a corrupt key file")
	}
}
