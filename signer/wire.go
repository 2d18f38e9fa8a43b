// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"github.com/bitmark-inc/batchmintd/unit"
)

// DescribeArguments - ask the agent which operations it offers
type DescribeArguments struct {
	Owner string `json:"owner"`
}

// DescribeReply - operation names the agent accepts
type DescribeReply struct {
	Operations []string `json:"operations"`
}

// ProductionArguments - produce one unit for the owner
type ProductionArguments struct {
	Owner string `json:"owner"`
}

// ConversionArguments - consume exactly one group
type ConversionArguments struct {
	Owner   string    `json:"owner"`
	UnitIDs []unit.ID `json:"unitIds"`
}

// BalanceArguments - read the authoritative unit count
type BalanceArguments struct {
	Owner string `json:"owner"`
}

// ReceiptReply - final transaction outcome
type ReceiptReply struct {
	Success   bool      `json:"success"`
	UnitIDs   []unit.ID `json:"unitIds"`
	Reference string    `json:"reference"`
	Message   string    `json:"message"`
}

// BalanceReply - number of units held
type BalanceReply struct {
	Balance int `json:"balance"`
}
