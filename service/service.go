// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/batchmintd/background"
	"github.com/bitmark-inc/batchmintd/fault"
	"github.com/bitmark-inc/batchmintd/messagebus"
	"github.com/bitmark-inc/batchmintd/orchestrator"
	"github.com/bitmark-inc/batchmintd/quota"
	"github.com/bitmark-inc/batchmintd/schedule"
	"github.com/bitmark-inc/batchmintd/storage"
	"github.com/bitmark-inc/batchmintd/submitter"
	"github.com/bitmark-inc/batchmintd/unitstore"
)

// defaults
const (
	DefaultDailyLimit    = 1000
	DefaultCycleQuantity = 1000
)

// Configuration - everything needed to run one owner
type Configuration struct {
	Owner         string
	DailyLimit    int
	Location      *time.Location
	CycleQuantity int
	Orchestrator  orchestrator.Configuration
	Schedule      schedule.Configuration
}

// Service - the store, orchestrator and scheduler of one owner
type Service struct {
	sync.Mutex
	log          *logger.L
	conf         Configuration
	clock        clock.Clock
	store        *unitstore.Store
	quota        *quota.Quota
	orchestrator *orchestrator.Orchestrator
	scheduler    *schedule.Scheduler
	queue        *messagebus.Queue
	submitter    submitter.Submitter
	runner       *cycleRunner
	background   *background.T

	ctx    context.Context
	cancel context.CancelFunc
}

// New - open the owner's store and build the core around it
//
// the daily quota is seeded from today's productions so a restart
// does not reset it
func New(backend storage.Backend, sub submitter.Submitter, conf Configuration, clk clock.Clock) (*Service, error) {
	if nil == clk {
		clk = clock.New()
	}
	if conf.DailyLimit <= 0 {
		conf.DailyLimit = DefaultDailyLimit
	}
	if conf.CycleQuantity <= 0 {
		conf.CycleQuantity = DefaultCycleQuantity
	}
	if conf.Schedule.Quantity <= 0 {
		conf.Schedule.Quantity = conf.CycleQuantity
	}

	log := logger.New("service")

	store, err := unitstore.OpenWithClock(backend, conf.Owner, clk.Now)
	if nil != err {
		return nil, err
	}

	q := quota.New(conf.DailyLimit, conf.Location, clk.Now)
	from, to := q.Window()
	q.Seed(store.ProductionsBetween(from, to))
	log.Infof("owner: %s  units: %d  produced today: %d/%d", store.Owner(), store.Count(), q.Used(), q.Limit())

	queue := messagebus.New(messagebus.DefaultQueueSize)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		log:          log,
		conf:         conf,
		clock:        clk,
		store:        store,
		quota:        q,
		orchestrator: orchestrator.New(store, sub, q, conf.Orchestrator, clk),
		scheduler:    schedule.New(backend, queue, conf.Schedule, clk),
		queue:        queue,
		submitter:    sub,
		ctx:          ctx,
		cancel:       cancel,
	}
	s.runner = &cycleRunner{
		log:     logger.New("cycle"),
		service: s,
	}
	return s, nil
}

// Load - restore the schedule without consuming cycle requests
//
// for one-shot use: requests queued by the scheduler are run by
// RunPending
func (s *Service) Load() (schedule.Status, error) {
	return s.scheduler.OnLoad()
}

// Start - restore the schedule and start consuming cycle requests
func (s *Service) Start() (schedule.Status, error) {
	s.Lock()
	defer s.Unlock()

	if nil != s.background {
		return s.scheduler.Status(), fault.ErrAlreadyInitialised
	}

	status, err := s.scheduler.OnLoad()
	if nil != err {
		return status, err
	}

	processes := background.Processes{
		s.runner,
	}
	s.background = background.Start(processes, nil)

	s.log.Info("started")
	return status, nil
}

// RunPending - run any queued cycle requests in the caller, returns
// the number handled
func (s *Service) RunPending() int {
	n := 0
	for {
		select {
		case item := <-s.queue.Chan():
			s.runner.handle(item)
			n += 1
		default:
			return n
		}
	}
}

// Stop - cancel any running operation between units and wait for the
// consumer to finish
func (s *Service) Stop() {
	s.Lock()
	defer s.Unlock()

	s.cancel()
	s.scheduler.Stop()
	if nil != s.background {
		s.background.Stop()
	}
	s.log.Info("stopped")
}

// join - ctx that also ends when the service stops
func (s *Service) join(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	release := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		release()
		cancel()
	}
}
