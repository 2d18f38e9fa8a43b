// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/logger"
)

const (
	currentSQLiteVersion = 1

	sqliteSchema = `
	CREATE TABLE IF NOT EXISTS records (
		bucket     TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (bucket, key)
	);`
)

type sqliteDB struct {
	log *logger.L
	db  *sql.DB
}

func openSQLite(name string) (*sqliteDB, error) {
	log := logger.New("storage")

	dsn := name + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if nil != err {
		return nil, fault.NewPersistenceError("open", name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrateSQLite(db); nil != err {
		db.Close()
		return nil, fault.NewPersistenceError("open", name, err)
	}

	log.Infof("sqlite: %q  version: %d", name, currentSQLiteVersion)

	return &sqliteDB{
		log: log,
		db:  db,
	}, nil
}

func migrateSQLite(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); nil != err {
		return err
	}

	version := 0
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); nil != err {
		return err
	}
	if version > currentSQLiteVersion {
		return fault.ErrIncompatibleVersion
	}
	if version < currentSQLiteVersion {
		_, err := db.Exec(`PRAGMA user_version = 1`)
		return err
	}
	return nil
}

func (s *sqliteDB) Get(bucket Bucket, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM records WHERE bucket = ? AND key = ?`,
		bucket.String(), key,
	).Scan(&value)
	if sql.ErrNoRows == err {
		return nil, fault.ErrRecordNotFound
	} else if nil != err {
		return nil, fault.NewPersistenceError("get", key, err)
	}
	return value, nil
}

// upsert runs in its own transaction so readers never see a partial row
func (s *sqliteDB) Put(bucket Bucket, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnContention(func() error {
		tx, err := s.db.Begin()
		if nil != err {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO records (bucket, key, value, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			bucket.String(), key, value, now,
		)
		if nil != err {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if nil != err {
		s.log.Errorf("put: %s/%q error: %s", bucket, key, err)
		return fault.NewPersistenceError("put", key, err)
	}
	return nil
}

func (s *sqliteDB) Delete(bucket Bucket, key string) error {
	err := retryOnContention(func() error {
		_, err := s.db.Exec(`DELETE FROM records WHERE bucket = ? AND key = ?`, bucket.String(), key)
		return err
	})
	return fault.NewPersistenceError("delete", key, err)
}

func (s *sqliteDB) Keys(bucket Bucket) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM records WHERE bucket = ? ORDER BY key`, bucket.String())
	if nil != err {
		return nil, fault.NewPersistenceError("keys", bucket.String(), err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); nil != err {
			return nil, fault.NewPersistenceError("keys", bucket.String(), err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); nil != err {
		return nil, fault.NewPersistenceError("keys", bucket.String(), err)
	}
	return keys, nil
}

func (s *sqliteDB) Close() error {
	return s.db.Close()
}
