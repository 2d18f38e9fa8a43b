// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/bitmark-inc/batchmintd/fault"
)

// orchestrator states
const (
	StateIdle        = "idle"
	StateProducing   = "producing"
	StateSettling    = "settling"
	StateConverting  = "converting"
	StateMaintaining = "maintaining"
)

// events
const (
	eventProduce  = "produce"
	eventSettle   = "settle"
	eventConvert  = "convert"
	eventFinish   = "finish"
	eventMaintain = "maintain"
)

// newStateMachine - the lifecycle of a batch
//
//	idle -> producing -> settling -> converting -> idle
//
// producing may return directly to idle, a standalone conversion
// starts from idle and maintaining covers direct store edits
func newStateMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{
				Name: eventProduce,
				Src:  []string{StateIdle},
				Dst:  StateProducing,
			},
			{
				Name: eventSettle,
				Src:  []string{StateProducing},
				Dst:  StateSettling,
			},
			{
				Name: eventConvert,
				Src: []string{
					StateIdle,
					StateSettling,
				},
				Dst: StateConverting,
			},
			{
				Name: eventMaintain,
				Src:  []string{StateIdle},
				Dst:  StateMaintaining,
			},
			{
				Name: eventFinish,
				Src: []string{
					StateProducing,
					StateSettling,
					StateConverting,
					StateMaintaining,
				},
				Dst: StateIdle,
			},
		},
		fsm.Callbacks{},
	)
}

// State - current lifecycle state
func (o *Orchestrator) State() string {
	return o.machine.Current()
}

// transition - any refused event means another operation holds the machine
func (o *Orchestrator) transition(event string) error {
	if err := o.machine.Event(context.Background(), event); nil != err {
		o.log.Warnf("%s refused in state: %s", event, o.machine.Current())
		return fault.ErrOperationInProgress
	}
	return nil
}

// Exclusive - run f with the machine held so no batch can start
//
// fails with fault.ErrOperationInProgress unless idle
func (o *Orchestrator) Exclusive(f func() error) error {
	if err := o.transition(eventMaintain); nil != err {
		return err
	}
	defer o.finish()

	return f()
}

// back to idle from wherever the operation stopped
func (o *Orchestrator) finish() {
	if StateIdle == o.machine.Current() {
		return
	}
	if err := o.machine.Event(context.Background(), eventFinish); nil != err {
		o.log.Errorf("finish from: %s  error: %s", o.machine.Current(), err)
	}
}
