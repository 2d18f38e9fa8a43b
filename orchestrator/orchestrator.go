// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bitmark-inc/logger"
	"github.com/looplab/fsm"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/quota"
	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/unitstore"
)

// default pacing
const (
	DefaultProductionPacing = time.Second
	DefaultConversionPacing = 3 * time.Second
	DefaultSettleDelay      = 10 * time.Second
)

// Configuration - delays between external calls
type Configuration struct {
	ProductionPacing time.Duration
	ConversionPacing time.Duration
	SettleDelay      time.Duration
}

// Orchestrator - drives production and conversion for one store
//
// only one operation runs at a time, a second request fails with
// fault.ErrOperationInProgress
type Orchestrator struct {
	log       *logger.L
	store     *unitstore.Store
	submitter submitter.Submitter
	quota     *quota.Quota
	clock     clock.Clock
	machine   *fsm.FSM
	conf      Configuration
}

// New - create an idle orchestrator
//
// zero durations are not replaced by defaults, so tests can run
// without pacing
func New(store *unitstore.Store, sub submitter.Submitter, q *quota.Quota, conf Configuration, clk clock.Clock) *Orchestrator {
	if nil == clk {
		clk = clock.New()
	}
	initPrometheusMetrics()
	prometheusUnitsHeld.Set(float64(store.Count()))

	return &Orchestrator{
		log:       logger.New("orchestrator"),
		store:     store,
		submitter: sub,
		quota:     q,
		clock:     clk,
		machine:   newStateMachine(),
		conf:      conf,
	}
}

// DefaultConfiguration - the production pacing
func DefaultConfiguration() Configuration {
	return Configuration{
		ProductionPacing: DefaultProductionPacing,
		ConversionPacing: DefaultConversionPacing,
		SettleDelay:      DefaultSettleDelay,
	}
}

// pause - wait for d unless ctx ends first
func (o *Orchestrator) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return stopped(ctx)
	}
	t := o.clock.Timer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fault.ErrStopped
	case <-t.C:
		return nil
	}
}

func stopped(ctx context.Context) error {
	if nil != ctx.Err() {
		return fault.ErrStopped
	}
	return nil
}
