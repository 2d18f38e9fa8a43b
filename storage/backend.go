// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"strings"

	"github.com/bitmark-inc/batchmintd/fault"
)

// Bucket - a named key space, one byte so it can prefix leveldb keys
type Bucket byte

// the buckets in use
const (
	Units    Bucket = 'U'
	Schedule Bucket = 'S'
)

// String - printable bucket name
func (b Bucket) String() string {
	switch b {
	case Units:
		return "units"
	case Schedule:
		return "schedule"
	default:
		return string([]byte{byte(b)})
	}
}

// Backend - durable key/value records
//
// a Put either replaces the whole value or leaves the previous one,
// a missing key returns fault.ErrRecordNotFound and every other
// failure is a *fault.PersistenceError
type Backend interface {
	Get(bucket Bucket, key string) ([]byte, error)
	Put(bucket Bucket, key string, value []byte) error
	Delete(bucket Bucket, key string) error
	Keys(bucket Bucket) ([]string, error)
	Close() error
}

// backend kinds
const (
	LevelDB = "leveldb"
	SQLite  = "sqlite"
	File    = "file"
)

// Open - create or open a backend of the given kind at path
//
// leveldb and file use path as a directory, sqlite as a file
func Open(kind string, path string) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(kind) {
	case LevelDB, "":
		backend, err = openLevelDB(path, false)
	case SQLite:
		backend, err = openSQLite(path)
	case File:
		backend, err = openFile(path)
	default:
		return nil, fault.ErrInvalidBackend
	}
	if nil != err {
		return nil, err
	}
	return backend, nil
}

// OpenReadOnly - inspect a leveldb backend without modifying it
//
// other kinds are opened normally
func OpenReadOnly(kind string, path string) (Backend, error) {
	if LevelDB != strings.ToLower(kind) && "" != kind {
		return Open(kind, path)
	}
	db, err := openLevelDB(path, true)
	if nil != err {
		return nil, err
	}
	return db, nil
}
