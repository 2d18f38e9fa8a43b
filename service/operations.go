// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package service

import (
	"context"

	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/orchestrator"
	"github.com/bitmark-inc/batchmintd/schedule"
	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/unitstore"
)

// Status - overview for operators
type Status struct {
	Owner      string          `json:"owner"`
	State      string          `json:"state"`
	Units      int             `json:"units"`
	DailyUsed  int             `json:"dailyUsed"`
	DailyLimit int             `json:"dailyLimit"`
	Queued     int             `json:"queued"`
	Schedule   schedule.Status `json:"schedule"`
}

// Reconciliation - outcome of comparing with the external balance
type Reconciliation struct {
	External int  `json:"external"`
	Local    int  `json:"local"`
	Cleared  int  `json:"cleared"`
	InSync   bool `json:"inSync"`
}

// Produce - a batch of productions capped by the daily limit
func (s *Service) Produce(ctx context.Context, quantity int) (orchestrator.BatchResult, error) {
	ctx, done := s.join(ctx)
	defer done()
	return s.orchestrator.ProduceBatch(ctx, quantity)
}

// Convert - convert held units, or only plan it in test mode
func (s *Service) Convert(ctx context.Context, testMode bool) (orchestrator.ConversionResult, error) {
	ctx, done := s.join(ctx)
	defer done()
	return s.orchestrator.ConvertGroups(ctx, testMode)
}

// RunFullCycle - produce then convert; a successful cycle re-arms the
// schedule from its finish time
func (s *Service) RunFullCycle(ctx context.Context, quantity int) (orchestrator.CycleResult, error) {
	ctx, done := s.join(ctx)
	defer done()

	if quantity <= 0 {
		quantity = s.conf.CycleQuantity
	}

	result, err := s.orchestrator.RunFullCycle(ctx, quantity)
	if nil != err {
		return result, err
	}
	if !result.Success {
		return result, nil
	}

	// the units are accounted for, but the schedule cannot re-arm
	if _, err := s.scheduler.RecordCompletion(result.FinishedAt); nil != err {
		s.log.Errorf("cycle: %s  completion not recorded: %s", result.ID, err)
		result.Err = err
		result.Failure = fault.NewReport(err)
		return result, err
	}
	return result, nil
}

// EnableSchedule - turn on daily automation
func (s *Service) EnableSchedule() (schedule.Status, error) {
	return s.scheduler.Enable()
}

// DisableSchedule - turn off daily automation
func (s *Service) DisableSchedule() (schedule.Status, error) {
	return s.scheduler.Disable()
}

// ScheduleStatus - current schedule
func (s *Service) ScheduleStatus() schedule.Status {
	return s.scheduler.Status()
}

// StoreSnapshot - copy of the owner's record
func (s *Service) StoreSnapshot() unitstore.Record {
	return s.store.Snapshot()
}

// Stats - summary of the owner's record
func (s *Service) Stats() unitstore.Stats {
	return s.store.Stats()
}

// Status - one line view of everything
func (s *Service) Status() Status {
	return Status{
		Owner:      s.store.Owner(),
		State:      s.orchestrator.State(),
		Units:      s.store.Count(),
		DailyUsed:  s.quota.Used(),
		DailyLimit: s.quota.Limit(),
		Queued:     s.queue.Len(),
		Schedule:   s.scheduler.Status(),
	}
}

// Reconcile - compare local units with a balance read elsewhere
//
// Local is the count that was compared, before any clear
func (s *Service) Reconcile(externalBalance int) (Reconciliation, error) {
	r := Reconciliation{
		External: externalBalance,
		Local:    s.store.Count(),
	}
	err := s.orchestrator.Exclusive(func() error {
		r.Local = s.store.Count()
		cleared, inSync, err := s.store.ReconcileWithExternalBalance(externalBalance)
		r.Cleared = cleared
		r.InSync = inSync
		return err
	})
	return r, err
}

// ReconcileExternal - read the balance from the submitter then reconcile
func (s *Service) ReconcileExternal(ctx context.Context) (Reconciliation, error) {
	ctx, done := s.join(ctx)
	defer done()

	balance, err := s.submitter.ExternalBalance(ctx)
	if failed := submitter.Check(submitter.Balance, submitter.Receipt{Success: true}, err); nil != failed {
		s.log.Errorf("external balance: %s", failed)
		return Reconciliation{Local: s.store.Count()}, failed
	}
	return s.Reconcile(balance)
}

// Reset - forget every held unit, refused while a batch is running
func (s *Service) Reset() (bool, error) {
	ok := false
	err := s.orchestrator.Exclusive(func() error {
		var err error
		ok, err = s.store.Reset()
		return err
	})
	return ok, err
}
