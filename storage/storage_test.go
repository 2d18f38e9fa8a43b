// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/fixtures"
	"github.com/bitmark-inc/batchmintd/storage"
)

// each backend with the path it is opened at
func backends(t *testing.T) map[string]string {
	dir := t.TempDir()
	return map[string]string{
		storage.LevelDB: filepath.Join(dir, "test.leveldb"),
		storage.SQLite:  filepath.Join(dir, "test.sqlite3"),
		storage.File:    filepath.Join(dir, "records"),
	}
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestPutGet(t *testing.T) {
	for kind, path := range backends(t) {
		db, err := storage.Open(kind, path)
		require.Nil(t, err, kind)

		_, err = db.Get(storage.Units, "missing")
		assert.Equal(t, fault.ErrRecordNotFound, err, kind)

		err = db.Put(storage.Units, "owner-one", []byte("data-one"))
		assert.Nil(t, err, kind)
		err = db.Put(storage.Units, "owner-one", []byte("data-one(NEW)"))
		assert.Nil(t, err, kind)

		value, err := db.Get(storage.Units, "owner-one")
		assert.Nil(t, err, kind)
		assert.Equal(t, []byte("data-one(NEW)"), value, kind)

		// same key, different bucket
		_, err = db.Get(storage.Schedule, "owner-one")
		assert.Equal(t, fault.ErrRecordNotFound, err, kind)

		assert.Nil(t, db.Close(), kind)
	}
}

func TestKeysAndDelete(t *testing.T) {
	for kind, path := range backends(t) {
		db, err := storage.Open(kind, path)
		require.Nil(t, err, kind)

		for _, k := range []string{"key-two", "key-one", "key-three"} {
			require.Nil(t, db.Put(storage.Units, k, []byte(k)), kind)
		}
		require.Nil(t, db.Put(storage.Schedule, "state", []byte("s")), kind)

		keys, err := db.Keys(storage.Units)
		assert.Nil(t, err, kind)
		assert.Equal(t, []string{"key-one", "key-three", "key-two"}, keys, kind)

		assert.Nil(t, db.Delete(storage.Units, "key-one"), kind)
		assert.Nil(t, db.Delete(storage.Units, "never-existed"), kind)

		_, err = db.Get(storage.Units, "key-one")
		assert.Equal(t, fault.ErrRecordNotFound, err, kind)

		keys, err = db.Keys(storage.Units)
		assert.Nil(t, err, kind)
		assert.Equal(t, []string{"key-three", "key-two"}, keys, kind)

		assert.Nil(t, db.Close(), kind)
	}
}

func TestReopen(t *testing.T) {
	for kind, path := range backends(t) {
		db, err := storage.Open(kind, path)
		require.Nil(t, err, kind)
		require.Nil(t, db.Put(storage.Schedule, "state", []byte(`{"enabled":true}`)), kind)
		require.Nil(t, db.Close(), kind)

		db, err = storage.Open(kind, path)
		require.Nil(t, err, kind)
		value, err := db.Get(storage.Schedule, "state")
		assert.Nil(t, err, kind)
		assert.Equal(t, []byte(`{"enabled":true}`), value, kind)
		assert.Nil(t, db.Close(), kind)
	}
}

func TestFileBackendLeavesNoTemporaries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "records")
	db, err := storage.Open(storage.File, dir)
	require.Nil(t, err)
	defer db.Close()

	for i := 0; i < 5; i += 1 {
		require.Nil(t, db.Put(storage.Units, "owner", []byte{byte(i)}))
	}

	entries, err := os.ReadDir(filepath.Join(dir, storage.Units.String()))
	require.Nil(t, err)
	assert.Equal(t, 1, len(entries), "only the record file should remain")
}

func TestLevelDBReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.leveldb")

	_, err := storage.OpenReadOnly(storage.LevelDB, path)
	assert.True(t, fault.IsErrPersistence(err), "missing database must fail")

	db, err := storage.Open(storage.LevelDB, path)
	require.Nil(t, err)
	require.Nil(t, db.Put(storage.Units, "owner", []byte("v")))
	require.Nil(t, db.Close())

	db, err = storage.OpenReadOnly(storage.LevelDB, path)
	require.Nil(t, err)
	defer db.Close()

	value, err := db.Get(storage.Units, "owner")
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), value)
}

func TestInvalidBackend(t *testing.T) {
	_, err := storage.Open("memcache", t.TempDir())
	assert.Equal(t, fault.ErrInvalidBackend, err)
}

func TestClosedLevelDB(t *testing.T) {
	db, err := storage.Open(storage.LevelDB, filepath.Join(t.TempDir(), "test.leveldb"))
	require.Nil(t, err)
	require.Nil(t, db.Close())

	err = db.Put(storage.Units, "owner", []byte("v"))
	assert.True(t, fault.IsErrPersistence(err))
}
