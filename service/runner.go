// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package service

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/batchmintd/messagebus"
)

// cycleRunner - the single consumer of scheduled cycle requests
type cycleRunner struct {
	log     *logger.L
	service *Service
}

// wait for requests and run them one at a time
func (r *cycleRunner) Run(args interface{}, shutdown <-chan struct{}) {

	log := r.log

	log.Info("starting…")

	queue := r.service.queue.Chan()
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item := <-queue:
			r.handle(item)
		}
	}

	log.Info("shutting down…")
}

func (r *cycleRunner) handle(item messagebus.Message) {

	log := r.log

	request, ok := item.Item.(messagebus.CycleRequested)
	if !ok {
		log.Warnf("from: %s  unexpected item: %T", item.From, item.Item)
		return
	}

	log.Infof("request: %s  quantity: %d  requested at: %s", request.ID, request.Quantity, request.RequestedAt)

	result, err := r.service.RunFullCycle(r.service.ctx, request.Quantity)
	switch {
	case nil != err && result.Success:
		log.Errorf("request: %s  cycle: %s  finished but not recorded: %s  schedule not re-armed", request.ID, result.ID, err)
	case nil != err:
		log.Errorf("request: %s  not run: %s", request.ID, err)
	case result.Success:
		log.Infof("request: %s  cycle: %s  finished", request.ID, result.ID)
	default:
		log.Errorf("request: %s  cycle: %s  failed: %s  schedule not re-armed", request.ID, result.ID, result.Err)
	}
}
