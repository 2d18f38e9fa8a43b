// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - durable records for the unit store and the scheduler
//
// three backends share one interface:
//
//   leveldb  - bucket byte prefixed keys, synchronous writes, read cache
//   sqlite   - one records table, upsert per write
//   file     - one file per record, replaced by rename
//
// all of them replace a record atomically
package storage
