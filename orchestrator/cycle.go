// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/bitmark-inc/batchmintd/fault"
)

// RunFullCycle - produce up to target, let the results settle, then
// convert every full group
//
// the cycle is aborted when nothing was produced or the produced ids
// could not be recorded; having fewer units than a group is not a
// failure
func (o *Orchestrator) RunFullCycle(ctx context.Context, target int) (CycleResult, error) {
	if target <= 0 {
		return CycleResult{Target: target}, fault.ErrInvalidCount
	}
	if err := o.transition(eventProduce); nil != err {
		return CycleResult{Target: target}, err
	}
	defer o.finish()

	result := CycleResult{
		ID:        uuid.New(),
		Target:    target,
		StartedAt: o.clock.Now().UTC(),
	}
	o.log.Infof("cycle: %s  target: %d  starting…", result.ID, target)

	o.runCycle(ctx, &result)

	result.FinishedAt = o.clock.Now().UTC()
	prometheusCycles.WithLabelValues(outcome(result.Success)).Inc()
	if result.Success {
		o.log.Infof("cycle: %s  finished", result.ID)
	} else {
		o.log.Errorf("cycle: %s  failed: %s", result.ID, result.Err)
	}
	return result, nil
}

func (o *Orchestrator) runCycle(ctx context.Context, result *CycleResult) {
	production, err := o.produceBatch(ctx, result.Target)
	result.Production = production
	if nil != err {
		result.fail(err)
		return
	}

	switch err := production.Err; {
	case 0 == production.Produced && nil != err:
		result.fail(err)
		return
	case 0 == production.Produced:
		result.fail(fault.ErrProductionFailed)
		return
	case fault.IsErrPersistence(err), fault.ErrStopped == err:
		result.fail(err)
		return
	case nil != err:
		o.log.Warnf("cycle: %s  partial production: %d of %d, continuing", result.ID, production.Produced, production.Allowed)
	}

	if err := o.transition(eventSettle); nil != err {
		result.fail(err)
		return
	}
	o.log.Infof("cycle: %s  settling for: %s", result.ID, o.conf.SettleDelay)
	if err := o.pause(ctx, o.conf.SettleDelay); nil != err {
		result.fail(err)
		return
	}

	if err := o.transition(eventConvert); nil != err {
		result.fail(err)
		return
	}
	conversion, err := o.convertGroups(ctx)
	result.Conversion = &conversion
	switch {
	case fault.ErrInsufficientUnits == err:
		o.log.Infof("cycle: %s  nothing to convert", result.ID)
	case nil != err:
		result.fail(err)
		return
	case nil != conversion.Err:
		result.fail(conversion.Err)
		return
	}

	result.Success = true
}
