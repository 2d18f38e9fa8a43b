// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"

	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/unit"
)

var _ submitter.Submitter = (*Client)(nil)

// SubmitProduction - produce one unit and wait for the receipt
func (c *Client) SubmitProduction(ctx context.Context) (submitter.Receipt, error) {
	var reply ReceiptReply
	args := ProductionArguments{
		Owner: c.owner,
	}
	if err := c.call(ctx, c.production, &args, &reply); nil != err {
		return submitter.Receipt{}, err
	}
	c.log.Debugf("production: %s  success: %v  units: %s", reply.Reference, reply.Success, unit.Summary(reply.UnitIDs))
	return toReceipt(reply), nil
}

// SubmitConversion - consume one group and wait for the receipt
func (c *Client) SubmitConversion(ctx context.Context, group []unit.ID) (submitter.Receipt, error) {
	var reply ReceiptReply
	args := ConversionArguments{
		Owner:   c.owner,
		UnitIDs: group,
	}
	if err := c.call(ctx, c.conversion, &args, &reply); nil != err {
		return submitter.Receipt{}, err
	}
	c.log.Debugf("conversion: %s  success: %v  units: %s", reply.Reference, reply.Success, unit.Summary(group))
	return toReceipt(reply), nil
}

// ExternalBalance - authoritative count of units held by the owner
func (c *Client) ExternalBalance(ctx context.Context) (int, error) {
	var reply BalanceReply
	args := BalanceArguments{
		Owner: c.owner,
	}
	if err := c.call(ctx, c.balance, &args, &reply); nil != err {
		return 0, err
	}
	return reply.Balance, nil
}

func toReceipt(reply ReceiptReply) submitter.Receipt {
	return submitter.Receipt{
		Success:   reply.Success,
		UnitIDs:   reply.UnitIDs,
		Reference: reply.Reference,
		Message:   reply.Message,
	}
}
