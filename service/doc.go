// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package service - one owner's store, orchestrator and scheduler
//
// scheduled runs arrive as messagebus.CycleRequested items and are
// executed one at a time by a background consumer; a scheduled run
// that finds a manual operation in progress is logged and dropped
package service
