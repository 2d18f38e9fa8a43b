// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package submitter - contract with the external transaction service
package submitter

import (
	"context"

	"github.com/bitmark-inc/batchmintd/unit"
)

// Receipt - final outcome of one external transaction, never pending
type Receipt struct {
	Success   bool      `json:"success"`
	UnitIDs   []unit.ID `json:"unitIds,omitempty"`
	Reference string    `json:"reference"`
	Message   string    `json:"message,omitempty"`
}

// Submitter - the external service
//
// each call blocks until the transaction is confirmed or has failed,
// bounded by ctx; a failed receipt carries the reason in Message
type Submitter interface {
	SubmitProduction(ctx context.Context) (Receipt, error)
	SubmitConversion(ctx context.Context, group []unit.ID) (Receipt, error)
	ExternalBalance(ctx context.Context) (int, error)
}
