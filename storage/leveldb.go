// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/logger"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentLevelDBVersion = 0x100
)

type levelDB struct {
	sync.RWMutex
	log      *logger.L
	db       *leveldb.DB
	cache    Cache
	readOnly bool
}

func openLevelDB(name string, readOnly bool) (*levelDB, error) {
	log := logger.New("storage")

	db, version, err := getDB(name, readOnly)
	if nil != err {
		return nil, fault.NewPersistenceError("open", name, err)
	}

	// ensure no database downgrade
	if version > currentLevelDBVersion {
		db.Close()
		log.Criticalf("database version: %d > current version: %d", version, currentLevelDBVersion)
		return nil, fault.NewPersistenceError("open", name, fault.ErrIncompatibleVersion)
	}

	if 0 == version && !readOnly {
		// database was empty so tag as current version
		if err := putVersion(db, currentLevelDBVersion); nil != err {
			db.Close()
			return nil, fault.NewPersistenceError("open", name, err)
		}
	}

	log.Infof("leveldb: %q  version: 0x%x  read only: %v", name, currentLevelDBVersion, readOnly)

	return &levelDB{
		log:      log,
		db:       db,
		cache:    newCache(),
		readOnly: readOnly,
	}, nil
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, &ldb_opt.WriteOptions{Sync: true})
}

// prepend the bucket onto the key
func prefixKey(bucket Bucket, key string) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = byte(bucket)
	return append(prefixedKey, key...)
}

func (l *levelDB) Get(bucket Bucket, key string) ([]byte, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, fault.NewPersistenceError("get", key, fault.ErrNotInitialised)
	}

	k := prefixKey(bucket, key)
	if value, found := l.cache.Get(string(k)); found {
		return value, nil
	}

	value, err := l.db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrRecordNotFound
	} else if nil != err {
		return nil, fault.NewPersistenceError("get", key, err)
	}

	l.cache.Set(dbPut, string(k), value)
	return value, nil
}

// a single leveldb Put is atomic; Sync makes it durable before return
func (l *levelDB) Put(bucket Bucket, key string, value []byte) error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.NewPersistenceError("put", key, fault.ErrNotInitialised)
	}

	k := prefixKey(bucket, key)
	err := l.db.Put(k, value, &ldb_opt.WriteOptions{Sync: true})
	if nil != err {
		l.log.Errorf("put: %s/%q error: %s", bucket, key, err)
		return fault.NewPersistenceError("put", key, err)
	}
	l.cache.Set(dbPut, string(k), value)
	return nil
}

func (l *levelDB) Delete(bucket Bucket, key string) error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.NewPersistenceError("delete", key, fault.ErrNotInitialised)
	}

	k := prefixKey(bucket, key)
	err := l.db.Delete(k, &ldb_opt.WriteOptions{Sync: true})
	if nil != err {
		return fault.NewPersistenceError("delete", key, err)
	}
	l.cache.Set(dbDelete, string(k), nil)
	return nil
}

func (l *levelDB) Keys(bucket Bucket) ([]string, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, fault.NewPersistenceError("keys", bucket.String(), fault.ErrNotInitialised)
	}

	keys := []string{}
	iter := l.db.NewIterator(ldb_util.BytesPrefix([]byte{byte(bucket)}), nil)
	for iter.Next() {
		keys = append(keys, string(iter.Key()[1:]))
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return nil, fault.NewPersistenceError("keys", bucket.String(), err)
	}
	return keys, nil
}

func (l *levelDB) Close() error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return nil
	}
	l.cache.Clear()
	err := l.db.Close()
	l.db = nil
	return err
}
