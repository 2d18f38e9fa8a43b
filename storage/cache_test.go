// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheWriteThenRead(t *testing.T) {
	c := newCache()

	key := "Utest"
	expected := []byte{'a', 'b', 'c', 'd'}

	_, found := c.Get(key)
	assert.False(t, found, "key should not exist yet")

	c.Set(dbPut, key, expected)
	actual, found := c.Get(key)
	assert.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestCacheReturnsCopy(t *testing.T) {
	c := newCache()

	value := []byte{1, 2, 3}
	c.Set(dbPut, "k", value)
	value[0] = 99

	actual, _ := c.Get("k")
	assert.Equal(t, []byte{1, 2, 3}, actual, "cache must not alias caller data")

	actual[1] = 42
	again, _ := c.Get("k")
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestCacheDeleteHidesValue(t *testing.T) {
	c := newCache()

	c.Set(dbPut, "k", []byte("v"))
	c.Set(dbDelete, "k", nil)

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestCacheClear(t *testing.T) {
	c := newCache()

	c.Set(dbPut, "k", []byte("v"))
	c.Clear()

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestTransientSQLiteErrors(t *testing.T) {
	calls := 0
	err := retryOp(retryConfig{maxRetries: 2, baseDelay: 1, maxDelay: 1}, func() error {
		calls += 1
		if calls < 3 {
			return sqliteBusy("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	permanent := sqliteBusy("no such table: records")
	err = retryOp(retryConfig{maxRetries: 2, baseDelay: 1, maxDelay: 1}, func() error {
		calls += 1
		return permanent
	})
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

type sqliteBusy string

func (e sqliteBusy) Error() string { return string(e) }
