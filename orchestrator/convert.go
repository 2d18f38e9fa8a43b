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
	"github.com/bitmark-inc/batchmintd/unitstore"
)

// ConvertGroups - convert every full group of held units
//
// in test mode only the plan is returned: nothing is submitted and the
// store is not touched
func (o *Orchestrator) ConvertGroups(ctx context.Context, testMode bool) (ConversionResult, error) {
	if testMode {
		groups, remainder := o.store.PlanConversionGroups()
		plan := newPlan(groups, remainder, unitstore.GroupSize)
		plan.TestMode = true
		plan.Remaining = plan.Units
		if 0 == plan.Groups {
			return plan, fault.ErrInsufficientUnits
		}
		o.log.Infof("dry run: groups: %d  would consume: %d  remainder: %d", plan.Groups, plan.WouldConsume, plan.Remainder)
		return plan, nil
	}

	if err := o.transition(eventConvert); nil != err {
		return ConversionResult{}, err
	}
	defer o.finish()

	return o.convertGroups(ctx)
}

// must be in the converting state
func (o *Orchestrator) convertGroups(ctx context.Context) (ConversionResult, error) {
	groups, remainder := o.store.PlanConversionGroups()
	result := newPlan(groups, remainder, unitstore.GroupSize)
	result.Remaining = result.Units

	if 0 == result.Groups {
		o.log.Warnf("units: %d  fewer than a group of: %d", result.Units, unitstore.GroupSize)
		return result, fault.ErrInsufficientUnits
	}

	o.log.Infof("converting: %d groups  remainder: %d", result.Groups, result.Remainder)

loop:
	for i, group := range groups {
		var err error
		if 0 == i {
			err = stopped(ctx)
		} else {
			err = o.pause(ctx, o.conf.ConversionPacing)
		}
		if nil != err {
			o.log.Warnf("conversion stopped after: %d of %d groups", i, result.Groups)
			result.fail(err)
			break loop
		}

		index := i + 1
		// a confirmed conversion must be removed locally, so the call
		// outlives a stop request
		receipt, err := o.submitter.SubmitConversion(context.WithoutCancel(ctx), group)
		if failed := submitter.Check(submitter.Conversion, receipt, err); nil != failed {
			prometheusConversions.WithLabelValues(outcome(false)).Inc()
			o.log.Errorf("group: %d of %d  units: %s  failed: %s", index, result.Groups, unit.Summary(group), failed)
			result.FailedAt = index
			result.fail(failed)
			break loop
		}
		prometheusConversions.WithLabelValues(outcome(true)).Inc()

		removed, err := o.store.RemoveUnits(group, unitstore.OperationConversion)
		result.Completed = append(result.Completed, GroupResult{
			Index:     index,
			UnitIDs:   group,
			Reference: receipt.Reference,
			Removed:   removed,
		})
		result.Converted += 1
		if nil != err {
			o.log.Criticalf("group: %d  ref: %s converted but not removed: %s", index, receipt.Reference, err)
			result.fail(err)
			break loop
		}
		result.Consumed += removed
		prometheusUnitsConsumed.Add(float64(removed))
		o.log.Infof("group: %d of %d  units: %s  ref: %s", index, result.Groups, unit.Summary(group), receipt.Reference)
	}

	result.Remaining = o.store.Count()
	prometheusUnitsHeld.Set(float64(result.Remaining))

	o.log.Infof("converted: %d of %d groups  consumed: %d  remaining: %d", result.Converted, result.Groups, result.Consumed, result.Remaining)
	return result, nil
}
