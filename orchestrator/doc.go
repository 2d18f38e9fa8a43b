// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package orchestrator - batch production and grouped conversion
//
// productions are capped by a daily quota and run one at a time; held
// units are converted in groups of unitstore.GroupSize, oldest first,
// stopping at the first failed group
package orchestrator
