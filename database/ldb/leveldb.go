// Copyright (c) 2013-2014 Conformal Systems LLC.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ipenkin/ex-timestamping/database"
)

var CurrentDBVersion int32 = 1

type LevelDb struct {
	// lock preventing concurrent merges and close
	dbLock sync.Mutex

	// leveldb pieces
	lDb *leveldb.DB
	ro  *opt.ReadOptions
	wo  *opt.WriteOptions
}

var _ database.Database = (*LevelDb)(nil)

// OpenLevelDB opens the database at dbpath. With create set, missing
// directories and the version file are created.
func OpenLevelDB(dbpath string, create bool) (*LevelDb, error) {
	if create {
		if err := os.MkdirAll(dbpath, 0750); err != nil {
			return nil, errors.Wrapf(err, "mkdir %s", dbpath)
		}
	} else {
		if _, err := os.Stat(dbpath); err != nil {
			return nil, err
		}
	}

	var dbversion int32
	needVersionFile := false
	verfile := dbpath + ".ver"
	fi, ferr := os.Open(verfile)
	if ferr == nil {
		defer fi.Close()

		if ferr = binary.Read(fi, binary.BigEndian, &dbversion); ferr != nil {
			dbversion = ^0
		}
	} else if create {
		needVersionFile = true
		dbversion = CurrentDBVersion
	}

	opts := &opt.Options{
		Compression: opt.NoCompression,
	}

	switch dbversion {
	case 0:
		opts = &opt.Options{}
	case 1:
		// uses defaults from above
	default:
		return nil, errors.Errorf("unsupported db version %v", dbversion)
	}

	tlDb, err := leveldb.OpenFile(dbpath, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", dbpath)
	}

	// If we opened the database successfully on 'create'
	// write the version file next to it
	if needVersionFile {
		ver := make([]byte, 4)
		binary.BigEndian.PutUint32(ver, uint32(dbversion))
		if err := renameio.WriteFile(verfile, ver, 0640); err != nil {
			tlDb.Close()
			return nil, errors.Wrap(err, "write version file")
		}
	}

	dbLog.Infof("Database opened from %s (version %d)", dbpath, dbversion)
	return newLevelDb(tlDb), nil
}

// OpenMemDB returns a database held entirely in memory.
func OpenMemDB() (*LevelDb, error) {
	tlDb, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open memory leveldb")
	}
	return newLevelDb(tlDb), nil
}

func newLevelDb(tlDb *leveldb.DB) *LevelDb {
	return &LevelDb{
		lDb: tlDb,
		ro:  &opt.ReadOptions{},
		wo:  &opt.WriteOptions{Sync: false},
	}
}

// Snapshot returns a read-only view of the committed state.
func (db *LevelDb) Snapshot() (database.Snapshot, error) {
	snap, err := db.lDb.GetSnapshot()
	if err != nil {
		return nil, errors.Wrap(err, "get snapshot")
	}
	return &ldbSnapshot{snap: snap, ro: db.ro}, nil
}

// Fork returns a mutable view over a fresh snapshot.
func (db *LevelDb) Fork() (database.Fork, error) {
	snap, err := db.Snapshot()
	if err != nil {
		return nil, err
	}
	return database.NewFork(snap), nil
}

// Merge writes the whole patch as one batch, so readers see either none
// or all of it.
func (db *LevelDb) Merge(patch *database.Patch) error {
	db.dbLock.Lock()
	defer db.dbLock.Unlock()

	lbatch := new(leveldb.Batch)
	for _, c := range patch.Changes() {
		if c.Deleted {
			lbatch.Delete(c.Key)
		} else {
			lbatch.Put(c.Key, c.Value)
		}
	}

	if err := db.lDb.Write(lbatch, db.wo); err != nil {
		dbLog.Errorf("batch failed %v", err)
		return errors.Wrap(err, "write batch")
	}
	return nil
}

// Close cleanly shuts down database, syncing all data.
func (db *LevelDb) Close() error {
	db.dbLock.Lock()
	defer db.dbLock.Unlock()

	return db.lDb.Close()
}

type ldbSnapshot struct {
	snap *leveldb.Snapshot
	ro   *opt.ReadOptions
}

func (s *ldbSnapshot) Get(key []byte) ([]byte, error) {
	data, err := s.snap.Get(key, s.ro)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "leveldb get")
	}
	return data, nil
}

func (s *ldbSnapshot) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	iter := s.snap.NewIterator(util.BytesPrefix(prefix), s.ro)
	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	iter.Release()
	return errors.Wrap(iter.Error(), "leveldb iterate")
}

func (s *ldbSnapshot) Release() {
	s.snap.Release()
}
