// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unitstore - durable local cache of the units one owner holds
//
// the record is keyed by the lower case owner and stored in the
// storage.Units bucket; conversions consume the oldest units first in
// groups of GroupSize
package unitstore
