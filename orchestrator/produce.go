// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/unit"
)

// ProduceOne - a single production within the daily limit
func (o *Orchestrator) ProduceOne(ctx context.Context) (UnitResult, error) {
	if o.quota.Remaining() <= 0 {
		return UnitResult{DailyTotal: o.quota.Used()}, fault.ErrDailyLimitReached
	}
	if err := o.transition(eventProduce); nil != err {
		return UnitResult{}, err
	}
	defer o.finish()

	return o.produceOne(ctx), nil
}

// one external call, no retry
//
// a stop request does not abandon a call already sent, the
// submitter's own timeout bounds it
func (o *Orchestrator) produceOne(ctx context.Context) UnitResult {
	receipt, err := o.submitter.SubmitProduction(context.WithoutCancel(ctx))
	if failed := submitter.Check(submitter.Production, receipt, err); nil != failed {
		prometheusProductions.WithLabelValues(outcome(false)).Inc()
		o.log.Errorf("production failed: %s", failed)
		return UnitResult{
			Reference:  receipt.Reference,
			DailyTotal: o.quota.Used(),
			Err:        failed,
			Failure:    fault.NewReport(failed),
		}
	}

	prometheusProductions.WithLabelValues(outcome(true)).Inc()
	prometheusUnitsProduced.Add(float64(len(receipt.UnitIDs)))

	// counted before the write: the agent has already produced it, even
	// if the log entry that would reseed the quota is never saved
	result := UnitResult{
		Success:    true,
		UnitIDs:    receipt.UnitIDs,
		Reference:  receipt.Reference,
		DailyTotal: o.quota.Add(1),
	}

	if 0 == len(receipt.UnitIDs) {
		o.log.Warnf("production: %s  %s", receipt.Reference, fault.ErrReceiptWithoutUnits)
	}

	if _, err := o.store.AddUnits(receipt.UnitIDs, receipt.Reference); nil != err {
		o.log.Criticalf("production: %s  units: %s not recorded: %s", receipt.Reference, unit.Summary(receipt.UnitIDs), err)
		result.Err = err
		result.Failure = fault.NewReport(err)
		return result
	}
	prometheusUnitsHeld.Set(float64(o.store.Count()))

	o.log.Infof("produced: %s  ref: %s  today: %d/%d", unit.Summary(receipt.UnitIDs), receipt.Reference, result.DailyTotal, o.quota.Limit())
	return result
}

// ProduceBatch - up to requested productions, capped by the daily limit
//
// calls are sequential and paced; the first failure ends the batch and
// is reported in the result alongside the productions that succeeded
func (o *Orchestrator) ProduceBatch(ctx context.Context, requested int) (BatchResult, error) {
	if requested <= 0 {
		return BatchResult{Requested: requested}, fault.ErrInvalidCount
	}
	if err := o.transition(eventProduce); nil != err {
		return BatchResult{Requested: requested}, err
	}
	defer o.finish()

	return o.produceBatch(ctx, requested)
}

// must be in the producing state
func (o *Orchestrator) produceBatch(ctx context.Context, requested int) (BatchResult, error) {
	remaining := o.quota.Remaining()
	allowed := requested
	if allowed > remaining {
		allowed = remaining
	}

	result := BatchResult{
		Requested:  requested,
		Allowed:    allowed,
		Units:      []unit.ID{},
		Outcomes:   []UnitResult{},
		DailyTotal: o.quota.Used(),
		DailyLimit: o.quota.Limit(),
	}

	if allowed <= 0 {
		result.Capped = true
		result.Shortfall = requested
		o.log.Warnf("daily limit: %d reached", result.DailyLimit)
		return result, fault.ErrDailyLimitReached
	}
	if allowed < requested {
		result.Capped = true
		result.Shortfall = requested - allowed
		o.log.Warnf("requested: %d  capped to: %d  by daily limit: %d", requested, allowed, result.DailyLimit)
	}

	o.log.Infof("producing: %d", allowed)

loop:
	for i := 0; i < allowed; i += 1 {
		var err error
		if 0 == i {
			err = stopped(ctx)
		} else {
			err = o.pause(ctx, o.conf.ProductionPacing)
		}
		if nil != err {
			o.log.Warnf("production stopped after: %d of %d", i, allowed)
			result.fail(err)
			break loop
		}

		r := o.produceOne(ctx)
		result.Outcomes = append(result.Outcomes, r)
		result.DailyTotal = r.DailyTotal

		if r.Success {
			result.Produced += 1
			result.Units = append(result.Units, r.UnitIDs...)
		} else {
			result.Failed += 1
		}
		if nil != r.Err {
			result.fail(r.Err)
			break loop
		}
	}

	o.log.Infof("produced: %d of %d  failed: %d  today: %d/%d", result.Produced, allowed, result.Failed, result.DailyTotal, result.DailyLimit)
	return result, nil
}
