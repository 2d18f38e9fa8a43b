// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/logger"
)

const (
	recordSuffix = ".json"
	tempPattern  = ".tmp-*"
)

// one file per record under <directory>/<bucket>/
type fileDB struct {
	sync.Mutex
	log       *logger.L
	directory string
}

func openFile(directory string) (*fileDB, error) {
	for _, b := range []Bucket{Units, Schedule} {
		if err := os.MkdirAll(filepath.Join(directory, b.String()), 0700); nil != err {
			return nil, fault.NewPersistenceError("open", directory, err)
		}
	}

	log := logger.New("storage")
	log.Infof("file: %q", directory)

	return &fileDB{
		log:       log,
		directory: directory,
	}, nil
}

// keys are owner addresses or fixed names; hex keeps them file system safe
func (f *fileDB) fileName(bucket Bucket, key string) string {
	return filepath.Join(f.directory, bucket.String(), hex.EncodeToString([]byte(key))+recordSuffix)
}

func (f *fileDB) Get(bucket Bucket, key string) ([]byte, error) {
	f.Lock()
	defer f.Unlock()

	value, err := os.ReadFile(f.fileName(bucket, key))
	if os.IsNotExist(err) {
		return nil, fault.ErrRecordNotFound
	} else if nil != err {
		return nil, fault.NewPersistenceError("get", key, err)
	}
	return value, nil
}

// write to a temporary file in the same directory, flush, then
// rename over the old record so a crash leaves either version intact
func (f *fileDB) Put(bucket Bucket, key string, value []byte) error {
	f.Lock()
	defer f.Unlock()

	name := f.fileName(bucket, key)
	dir := filepath.Dir(name)

	tmp, err := os.CreateTemp(dir, tempPattern)
	if nil != err {
		return fault.NewPersistenceError("put", key, err)
	}
	tmpName := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); nil != err {
		tmp.Close()
		return fault.NewPersistenceError("put", key, err)
	}
	if err := tmp.Sync(); nil != err {
		tmp.Close()
		return fault.NewPersistenceError("put", key, err)
	}
	if err := tmp.Close(); nil != err {
		return fault.NewPersistenceError("put", key, err)
	}
	if err := os.Rename(tmpName, name); nil != err {
		f.log.Errorf("put: rename: %q error: %s", name, err)
		return fault.NewPersistenceError("put", key, err)
	}
	ok = true

	syncDirectory(dir)
	return nil
}

func (f *fileDB) Delete(bucket Bucket, key string) error {
	f.Lock()
	defer f.Unlock()

	err := os.Remove(f.fileName(bucket, key))
	if nil != err && !os.IsNotExist(err) {
		return fault.NewPersistenceError("delete", key, err)
	}
	return nil
}

func (f *fileDB) Keys(bucket Bucket) ([]string, error) {
	f.Lock()
	defer f.Unlock()

	entries, err := os.ReadDir(filepath.Join(f.directory, bucket.String()))
	if nil != err {
		return nil, fault.NewPersistenceError("keys", bucket.String(), err)
	}

	keys := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordSuffix) {
			continue
		}
		key, err := hex.DecodeString(strings.TrimSuffix(name, recordSuffix))
		if nil != err {
			continue
		}
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fileDB) Close() error {
	return nil
}

// make the rename durable; not all platforms allow this
func syncDirectory(dir string) {
	d, err := os.Open(dir)
	if nil != err {
		return
	}
	d.Sync()
	d.Close()
}
