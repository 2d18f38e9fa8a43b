// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package schedule - durable timer for the recurring production cycle
//
// the next run is cooldown + safety buffer after the last completed
// cycle; when due, a messagebus.CycleRequested is queued and the
// pending run is cleared until the consumer records a completion
package schedule
